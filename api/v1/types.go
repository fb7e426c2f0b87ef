package v1

// CollectRequest are the parameters of the collect action. Apps, Units and
// Machines are comma separated selector lists.
type CollectRequest struct {
	CaseID    string `json:"case-id" binding:"required"`
	ModelName string `json:"model-name"`
	Apps      string `json:"apps"`
	Units     string `json:"units"`
	Machines  string `json:"machines"`
	ExtraArgs string `json:"extra-args"`
}

// CollectResponse lists the report files a collection produced.
type CollectResponse struct {
	SosReports []string `json:"sos-reports"`
}

// UploadRequest are the parameters of the upload action.
type UploadRequest struct {
	CaseID  string `json:"case-id" binding:"required"`
	Cleanup bool   `json:"cleanup"`
}

// CleanupRequest are the parameters of the cleanup action.
type CleanupRequest struct {
	CaseID string `json:"case-id" binding:"required"`
}
