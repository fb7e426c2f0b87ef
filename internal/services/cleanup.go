package services

import (
	"errors"
	"io/fs"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/canonical/sosreport-agent/internal/models"
)

// CleanupManager removes local report files once they are no longer needed.
type CleanupManager struct {
	fs afero.Fs
}

func NewCleanupManager(fs afero.Fs) *CleanupManager {
	return &CleanupManager{fs: fs}
}

// Cleanup deletes each file independently; one failure never stops the
// rest. The report records per-file outcomes, distinguishing missing files
// from permission failures, and succeeds only when every deletion did.
func (m *CleanupManager) Cleanup(files []string) models.CleanupReport {
	report := models.CleanupReport{Success: true, Results: make([]models.CleanupResult, 0, len(files))}

	for _, file := range files {
		zap.S().Infow("removing report", "path", file)
		err := m.fs.Remove(file)
		if err == nil {
			report.Results = append(report.Results, models.CleanupResult{Path: file, Removed: true})
			continue
		}

		report.Success = false
		result := models.CleanupResult{Path: file, Error: err.Error()}
		switch {
		case errors.Is(err, fs.ErrNotExist):
			result.Kind = models.CleanupFailureNotFound
		case errors.Is(err, fs.ErrPermission):
			result.Kind = models.CleanupFailurePermissionDenied
		default:
			result.Kind = models.CleanupFailureOther
		}
		zap.S().Errorw("failed to remove report", "path", file, "kind", result.Kind, "error", err)
		report.Results = append(report.Results, result)
	}

	return report
}
