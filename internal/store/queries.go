package store

// Run history queries
const (
	queryInsertRun = `
		INSERT INTO runs (id, action, case_id, model, nodes, success, error, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	queryInsertRunFile = `
		INSERT INTO run_files (run_id, local_path, remote_path, ok, detail)
		VALUES (?, ?, ?, ?, ?)`

	queryGetRun = `
		SELECT id, action, case_id, model, nodes, success, error, started_at, finished_at
		FROM runs WHERE id = ?`

	queryListRuns = `
		SELECT id, action, case_id, model, nodes, success, error, started_at, finished_at
		FROM runs ORDER BY started_at DESC`

	queryListRunFiles = `
		SELECT local_path, remote_path, ok, detail
		FROM run_files WHERE run_id = ?`
)
