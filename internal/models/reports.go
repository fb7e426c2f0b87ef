package models

// TransferResult is the outcome of one file upload.
type TransferResult struct {
	LocalPath  string `json:"local-path"`
	RemotePath string `json:"remote-path"`
	Uploaded   bool   `json:"uploaded"`
	Error      string `json:"error,omitempty"`
}

// UploadReport is the itemized outcome of one upload batch. Success is true
// only when every individual transfer succeeded; the per-file results are
// kept so a partial failure is attributable.
type UploadReport struct {
	Success bool             `json:"success"`
	Results []TransferResult `json:"results"`
}

// CleanupFailureKind classifies why a local report could not be removed.
type CleanupFailureKind string

const (
	CleanupFailureNotFound         CleanupFailureKind = "not-found"
	CleanupFailurePermissionDenied CleanupFailureKind = "permission-denied"
	CleanupFailureOther            CleanupFailureKind = "error"
)

// CleanupResult is the outcome of one file deletion.
type CleanupResult struct {
	Path    string             `json:"path"`
	Removed bool               `json:"removed"`
	Kind    CleanupFailureKind `json:"kind,omitempty"`
	Error   string             `json:"error,omitempty"`
}

// CleanupReport is the itemized outcome of one cleanup pass.
type CleanupReport struct {
	Success bool            `json:"success"`
	Results []CleanupResult `json:"results"`
}
