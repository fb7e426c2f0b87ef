package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/canonical/sosreport-agent/internal/models"
)

// ErrNotFound is returned when a record is not found.
var ErrNotFound = errors.New("not found")

// RunsStore handles run history storage using DuckDB.
type RunsStore struct {
	db *sql.DB
}

// NewRunsStore creates a new run history store.
func NewRunsStore(db *sql.DB) *RunsStore {
	return &RunsStore{db: db}
}

// Save persists a run together with its per-file outcomes.
func (s *RunsStore) Save(ctx context.Context, run *models.Run) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, queryInsertRun,
		run.ID, string(run.Action), run.CaseID, run.Model, strings.Join(run.Nodes, ","),
		run.Success, run.Error, run.StartedAt, run.FinishedAt)
	if err != nil {
		return err
	}

	for _, f := range run.Files {
		if _, err := tx.ExecContext(ctx, queryInsertRunFile,
			run.ID, f.LocalPath, f.RemotePath, f.OK, f.Detail); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Get retrieves one run by id, including its per-file outcomes.
func (s *RunsStore) Get(ctx context.Context, id string) (*models.Run, error) {
	row := s.db.QueryRowContext(ctx, queryGetRun, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	files, err := s.files(ctx, run.ID)
	if err != nil {
		return nil, err
	}
	run.Files = files
	return run, nil
}

// List retrieves all runs, newest first, without per-file outcomes.
func (s *RunsStore) List(ctx context.Context) ([]models.Run, error) {
	rows, err := s.db.QueryContext(ctx, queryListRuns)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var runs []models.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

func (s *RunsStore) files(ctx context.Context, runID string) ([]models.FileOutcome, error) {
	rows, err := s.db.QueryContext(ctx, queryListRunFiles, runID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var files []models.FileOutcome
	for rows.Next() {
		var f models.FileOutcome
		if err := rows.Scan(&f.LocalPath, &f.RemotePath, &f.OK, &f.Detail); err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*models.Run, error) {
	var run models.Run
	var action, nodes string
	if err := row.Scan(&run.ID, &action, &run.CaseID, &run.Model, &nodes,
		&run.Success, &run.Error, &run.StartedAt, &run.FinishedAt); err != nil {
		return nil, err
	}
	run.Action = models.RunAction(action)
	if nodes != "" {
		run.Nodes = strings.Split(nodes, ",")
	}
	return &run, nil
}
