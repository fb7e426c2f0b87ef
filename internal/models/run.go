package models

import "time"

// RunAction identifies which operator action produced a run record.
type RunAction string

const (
	RunActionCollect RunAction = "collect"
	RunActionUpload  RunAction = "upload"
	RunActionCleanup RunAction = "cleanup"
)

// FileOutcome is one per-file row of a run record. For uploads RemotePath is
// the intake-facing path; for collect rows it is empty and LocalPath is the
// discovered report.
type FileOutcome struct {
	LocalPath  string `json:"local-path"`
	RemotePath string `json:"remote-path,omitempty"`
	OK         bool   `json:"ok"`
	Detail     string `json:"detail,omitempty"`
}

// Run is the persisted record of one pipeline invocation.
type Run struct {
	ID         string        `json:"id"`
	Action     RunAction     `json:"action"`
	CaseID     string        `json:"case-id"`
	Model      string        `json:"model,omitempty"`
	Nodes      []string      `json:"nodes,omitempty"`
	Success    bool          `json:"success"`
	Error      string        `json:"error,omitempty"`
	StartedAt  time.Time     `json:"started-at"`
	FinishedAt time.Time     `json:"finished-at"`
	Files      []FileOutcome `json:"files,omitempty"`
}
