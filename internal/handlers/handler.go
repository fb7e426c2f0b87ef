package handlers

import (
	"context"
	"errors"

	"github.com/canonical/sosreport-agent/internal/models"
	"github.com/canonical/sosreport-agent/internal/services"
)

// Pipeline is the slice of the services layer the action surface needs.
type Pipeline interface {
	Collect(ctx context.Context, req services.CollectRequest) ([]string, error)
	Upload(ctx context.Context, caseID string, cleanup bool) (models.UploadReport, *models.CleanupReport, error)
	Cleanup(ctx context.Context, caseID string) (models.CleanupReport, error)
	Runs(ctx context.Context) ([]models.Run, error)
	Run(ctx context.Context, id string) (*models.Run, error)
}

type Handler struct {
	pipeline Pipeline
}

func New(pipeline Pipeline) *Handler {
	return &Handler{pipeline: pipeline}
}

// isRequestError reports whether the failure was caused by the operator's
// input rather than by the pipeline itself.
func isRequestError(err error) bool {
	var modelErr *services.ModelNotFoundError
	var appErr *services.ApplicationNotFoundError
	var unitErr *services.UnitNotFoundError
	var machineErr *services.MachineNotFoundError
	return errors.Is(err, services.ErrModelRequired) ||
		errors.As(err, &modelErr) ||
		errors.As(err, &appErr) ||
		errors.As(err, &unitErr) ||
		errors.As(err, &machineErr)
}
