package inventory

import (
	"context"

	"github.com/canonical/sosreport-agent/internal/config"
)

// Client is a connection to the cluster controller's inventory API.
type Client interface {
	// ListModels returns the names of the models known to the controller.
	ListModels(ctx context.Context) ([]string, error)
	// Model returns the inventory snapshot of the named model.
	Model(ctx context.Context, name string) (*Model, error)
	// Close releases the underlying connection.
	Close() error
}

// DialFunc opens an authenticated controller connection. The caller owns
// the returned client and must close it.
type DialFunc func(ctx context.Context, cfg config.Controller) (Client, error)
