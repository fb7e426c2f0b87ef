// Package uploader ships collected sos reports to the intake server. A
// closed set of upload methods is recognized; only sftp is implemented, the
// others are deliberately rejected with a distinct error so an operator can
// tell a typo from a method that simply is not there yet.
package uploader

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/canonical/sosreport-agent/internal/config"
	"github.com/canonical/sosreport-agent/internal/models"
)

const (
	// collectorPrefix is the name prefix sos collect gives its archives.
	collectorPrefix = "sos-collector"
	// intakePrefix is the prefix the intake server expects; files named
	// this way are filed against the case automatically.
	intakePrefix = "sosreport"
)

// Methods is the closed set of recognized upload method names.
var Methods = []string{"sftp", "scp", "http"}

// Uploader transfers local report files to the intake server.
type Uploader interface {
	// Upload sends each file over one authenticated session. Session
	// establishment failures are returned as an error before any file is
	// touched; per-file failures are recorded in the report and the batch
	// continues (best effort).
	Upload(ctx context.Context, files []string) (models.UploadReport, error)
}

// UnknownMethodError is returned for a method name outside the recognized
// set.
type UnknownMethodError struct {
	Method string
}

func (e *UnknownMethodError) Error() string {
	return fmt.Sprintf("unknown upload method %q. Supported upload methods are [%s]",
		e.Method, strings.Join(Methods, ", "))
}

// NotImplementedError is returned for a recognized method that has no
// implementation.
type NotImplementedError struct {
	Method string
}

func (e *NotImplementedError) Error() string {
	return fmt.Sprintf("upload method %q is not implemented. Supported upload methods are [%s]",
		e.Method, strings.Join(Methods, ", "))
}

// New returns the uploader for the configured method.
func New(cfg config.Upload) (Uploader, error) {
	switch cfg.Method {
	case "sftp":
		return newSFTPUploader(cfg), nil
	case "scp", "http":
		return nil, &NotImplementedError{Method: cfg.Method}
	default:
		return nil, &UnknownMethodError{Method: cfg.Method}
	}
}

// RemoteName computes the intake-facing path for a local report: the
// leftmost collector prefix in the base name is replaced, exactly once,
// and the directory is kept as is.
func RemoteName(localPath string) string {
	dir, base := filepath.Split(localPath)
	return filepath.Join(dir, strings.Replace(base, collectorPrefix, intakePrefix, 1))
}
