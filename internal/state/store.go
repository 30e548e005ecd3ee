// Package state persists build history and per-document content hashes in
// SQLite so watch mode can skip unchanged documents.
package state

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"git.home.luguber.info/inful/pressgen/internal/manifest"
)

// Store is a SQLite-backed build cache.
// Use ":memory:" for an in-memory database, or a file path for persistence.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens (and initializes) the cache database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		source_path TEXT PRIMARY KEY,
		content_hash TEXT NOT NULL,
		output_path TEXT NOT NULL,
		build_id TEXT NOT NULL,
		updated INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS builds (
		build_id TEXT PRIMARY KEY,
		finished INTEGER NOT NULL,
		pages INTEGER NOT NULL,
		fingerprint TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_builds_finished ON builds(finished);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Unchanged reports whether sourcePath was last built from exactly the same
// content bytes.
func (s *Store) Unchanged(ctx context.Context, sourcePath, contentHash string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stored string
	err := s.db.QueryRowContext(ctx,
		"SELECT content_hash FROM documents WHERE source_path = ?", sourcePath).Scan(&stored)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query document hash: %w", err)
	}
	return stored == contentHash, nil
}

// RecordDocument upserts the hash and output path of a built document.
func (s *Store) RecordDocument(ctx context.Context, sourcePath, contentHash, outputPath, buildID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (source_path, content_hash, output_path, build_id, updated)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(source_path) DO UPDATE SET
			content_hash = excluded.content_hash,
			output_path = excluded.output_path,
			build_id = excluded.build_id,
			updated = excluded.updated`,
		sourcePath, contentHash, outputPath, buildID, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("record document: %w", err)
	}
	return nil
}

// RecordBuild stores a finished build's summary.
func (s *Store) RecordBuild(ctx context.Context, sum manifest.Summary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO builds (build_id, finished, pages, fingerprint) VALUES (?, ?, ?, ?)",
		sum.BuildID, sum.Generated.Unix(), sum.Pages, sum.Fingerprint)
	if err != nil {
		return fmt.Errorf("record build: %w", err)
	}
	return nil
}

// LastBuild returns the most recently finished build summary, if any.
func (s *Store) LastBuild(ctx context.Context) (manifest.Summary, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var sum manifest.Summary
	var finished int64
	err := s.db.QueryRowContext(ctx,
		"SELECT build_id, finished, pages, fingerprint FROM builds ORDER BY finished DESC, build_id DESC LIMIT 1").
		Scan(&sum.BuildID, &finished, &sum.Pages, &sum.Fingerprint)
	if err == sql.ErrNoRows {
		return manifest.Summary{}, false, nil
	}
	if err != nil {
		return manifest.Summary{}, false, fmt.Errorf("query last build: %w", err)
	}
	sum.Generated = time.Unix(finished, 0).UTC()
	return sum, true, nil
}

// Prune drops document rows whose source paths are no longer present,
// keeping the cache from growing across renames and deletions.
func (s *Store) Prune(ctx context.Context, livePaths []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	live := map[string]bool{}
	for _, p := range livePaths {
		live[p] = true
	}

	rows, err := s.db.QueryContext(ctx, "SELECT source_path FROM documents")
	if err != nil {
		return fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var stale []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return err
		}
		if !live[p] {
			stale = append(stale, p)
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, p := range stale {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE source_path = ?", p); err != nil {
			return fmt.Errorf("prune %s: %w", p, err)
		}
	}
	return nil
}
