// Package runstore records planning runs: which idea was planned, with what
// model, whether recovery succeeded, and how it failed when it did not.
//
// Backed by Postgres when a DSN is configured, otherwise by an in-process map.
// Recent lookups go through an LRU cache either way.
package runstore

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// ErrNotFound is returned by Get when no run exists for the id.
var ErrNotFound = errors.New("run not found")

// Run is one recorded planning attempt.
type Run struct {
	ID         string    `json:"id"`
	IdeaName   string    `json:"idea_name"`
	Model      string    `json:"model"`
	Status     string    `json:"status"`
	ErrorKind  string    `json:"error_kind,omitempty"`
	DurationMS int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

// Run statuses.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

type Store struct {
	db *sql.DB

	mu   sync.RWMutex
	byID map[string]Run

	cache *lru.Cache[string, Run]

	schemaOnce sync.Once
	schemaErr  error
}

// New returns an in-memory store.
func New(cacheSize int) *Store {
	if cacheSize <= 0 {
		cacheSize = 128
	}
	cache, _ := lru.New[string, Run](cacheSize)
	return &Store{
		byID:  make(map[string]Run),
		cache: cache,
	}
}

// NewPostgres opens a Postgres-backed store via the pgx stdlib driver.
func NewPostgres(dsn string, cacheSize int) (*Store, error) {
	db, err := sql.Open("pgx", strings.TrimSpace(dsn))
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	s := New(cacheSize)
	s.db = db
	return s, nil
}

// NewFromDSN falls back to the in-memory store when the DSN is empty or the
// database is unreachable.
func NewFromDSN(dsn string, cacheSize int) *Store {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return New(cacheSize)
	}
	s, err := NewPostgres(dsn, cacheSize)
	if err != nil {
		return New(cacheSize)
	}
	return s
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) ensureSchema(ctx context.Context) error {
	s.schemaOnce.Do(func() {
		_, s.schemaErr = s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS plan_runs (
    id          TEXT PRIMARY KEY,
    idea_name   TEXT NOT NULL,
    model       TEXT NOT NULL,
    status      TEXT NOT NULL,
    error_kind  TEXT NOT NULL DEFAULT '',
    duration_ms BIGINT NOT NULL DEFAULT 0,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`)
	})
	return s.schemaErr
}

// Record stores a run. CreatedAt defaults to now when unset.
func (s *Store) Record(ctx context.Context, run Run) error {
	if s == nil {
		return errors.New("store is nil")
	}
	if strings.TrimSpace(run.ID) == "" {
		return errors.New("run id is required")
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	s.cache.Add(run.ID, run)

	if s.db == nil {
		s.mu.Lock()
		s.byID[run.ID] = run
		s.mu.Unlock()
		return nil
	}

	if err := s.ensureSchema(ctx); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO plan_runs (id, idea_name, model, status, error_kind, duration_ms, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (id) DO UPDATE SET
    idea_name = EXCLUDED.idea_name,
    model = EXCLUDED.model,
    status = EXCLUDED.status,
    error_kind = EXCLUDED.error_kind,
    duration_ms = EXCLUDED.duration_ms`,
		run.ID, run.IdeaName, run.Model, run.Status, run.ErrorKind, run.DurationMS, run.CreatedAt)
	return err
}

func (s *Store) Get(ctx context.Context, id string) (Run, error) {
	if s == nil {
		return Run{}, errors.New("store is nil")
	}
	if run, ok := s.cache.Get(id); ok {
		return run, nil
	}

	if s.db == nil {
		s.mu.RLock()
		run, ok := s.byID[id]
		s.mu.RUnlock()
		if !ok {
			return Run{}, ErrNotFound
		}
		s.cache.Add(id, run)
		return run, nil
	}

	if err := s.ensureSchema(ctx); err != nil {
		return Run{}, err
	}
	var run Run
	err := s.db.QueryRowContext(ctx, `
SELECT id, idea_name, model, status, error_kind, duration_ms, created_at
FROM plan_runs WHERE id = $1`, id).
		Scan(&run.ID, &run.IdeaName, &run.Model, &run.Status, &run.ErrorKind, &run.DurationMS, &run.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrNotFound
	}
	if err != nil {
		return Run{}, err
	}
	s.cache.Add(id, run)
	return run, nil
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if s == nil {
		return nil, errors.New("store is nil")
	}
	if limit <= 0 {
		limit = 20
	}

	if s.db == nil {
		s.mu.RLock()
		runs := make([]Run, 0, len(s.byID))
		for _, r := range s.byID {
			runs = append(runs, r)
		}
		s.mu.RUnlock()
		sort.Slice(runs, func(i, j int) bool { return runs[i].CreatedAt.After(runs[j].CreatedAt) })
		if len(runs) > limit {
			runs = runs[:limit]
		}
		return runs, nil
	}

	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, idea_name, model, status, error_kind, duration_ms, created_at
FROM plan_runs ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.IdeaName, &run.Model, &run.Status, &run.ErrorKind, &run.DurationMS, &run.CreatedAt); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
