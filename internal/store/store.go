package store

import "database/sql"

// Store provides access to all storage repositories.
type Store struct {
	db   *sql.DB
	runs *RunsStore
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:   db,
		runs: NewRunsStore(db),
	}
}

func (s *Store) Runs() *RunsStore {
	return s.runs
}

func (s *Store) Close() error {
	return s.db.Close()
}
