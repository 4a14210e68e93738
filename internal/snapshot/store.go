// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package snapshot keeps a local archive of assembled project documents
// in a SQLite database, one row per extraction pass. Snapshots back the
// offline diff command: two passes can be compared without touching the
// document store.
package snapshot

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/NationalGenomicsInfrastructure/LIMS2DB/pkg/types"
)

const dbFile = "snapshots.db"

// Store manages the snapshot SQLite database.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the snapshot database under cfg.Dir,
// creating the schema if it does not exist.
func NewStore(cfg types.SnapshotConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating snapshot directory: %w", err)
	}

	dbPath := filepath.Join(cfg.Dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS snapshots (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			project_id TEXT NOT NULL,
			taken_at TEXT NOT NULL,
			doc TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_project ON snapshots(project_id, taken_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Save archives one assembled document for a project.
func (s *Store) Save(ctx context.Context, projectID string, doc map[string]any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding snapshot for %s: %w", projectID, err)
	}
	takenAt := time.Now().UTC().Format(time.RFC3339Nano)
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO snapshots (project_id, taken_at, doc) VALUES (?, ?, ?)`,
		projectID, takenAt, string(raw),
	)
	if err != nil {
		return fmt.Errorf("inserting snapshot for %s: %w", projectID, err)
	}
	return nil
}

// Latest returns the most recent archived document for a project, or nil
// when the project has never been snapshotted.
func (s *Store) Latest(ctx context.Context, projectID string) (map[string]any, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT doc FROM snapshots WHERE project_id = ? ORDER BY taken_at DESC, rowid DESC LIMIT 1`,
		projectID,
	).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying snapshot for %s: %w", projectID, err)
	}
	var doc map[string]any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("decoding snapshot for %s: %w", projectID, err)
	}
	return doc, nil
}

// Prune removes all but the newest keep snapshots per project.
func (s *Store) Prune(ctx context.Context, projectID string, keep int) error {
	if keep < 1 {
		keep = 1
	}
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM snapshots WHERE project_id = ? AND rowid NOT IN (
			SELECT rowid FROM snapshots WHERE project_id = ?
			ORDER BY taken_at DESC, rowid DESC LIMIT ?
		)`,
		projectID, projectID, keep,
	)
	if err != nil {
		return fmt.Errorf("pruning snapshots for %s: %w", projectID, err)
	}
	return nil
}
