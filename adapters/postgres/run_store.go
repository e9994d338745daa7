// Package postgres archives parsed export tables so later analysis runs can
// query past experiments without re-parsing the raw files.
package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"bspace/domain/tidy"
	apperrors "bspace/internal/errors"
)

// RunStore persists tidy tables, one row per record field
type RunStore struct {
	db *sqlx.DB
}

// NewRunStore creates a store over an open connection
func NewRunStore(db *sqlx.DB) *RunStore {
	return &RunStore{db: db}
}

// Open connects to the archive database and verifies the connection
func Open(ctx context.Context, url string) (*RunStore, error) {
	db, err := sqlx.Open("postgres", url)
	if err != nil {
		return nil, apperrors.StoreError("open archive database", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, apperrors.StoreError("ping archive database", err)
	}
	return NewRunStore(db), nil
}

// Close releases the underlying connection pool
func (s *RunStore) Close() error {
	return s.db.Close()
}

// Schema returns the DDL the store expects
func Schema() string {
	return `
CREATE TABLE IF NOT EXISTS import_batches (
	id          UUID PRIMARY KEY,
	source_file TEXT NOT NULL,
	layout      TEXT NOT NULL,
	record_count INTEGER NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS run_values (
	batch_id   UUID NOT NULL REFERENCES import_batches(id) ON DELETE CASCADE,
	record_idx INTEGER NOT NULL,
	label      TEXT NOT NULL,
	kind       TEXT NOT NULL,
	value      TEXT,
	PRIMARY KEY (batch_id, record_idx, label)
);

CREATE INDEX IF NOT EXISTS run_values_label_idx ON run_values (label);
`
}

// EnsureSchema creates the archive tables if they do not exist
func (s *RunStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema()); err != nil {
		return apperrors.StoreError("create archive schema", err)
	}
	return nil
}

// ImportBatch identifies one archived parse result
type ImportBatch struct {
	ID          uuid.UUID `db:"id"`
	SourceFile  string    `db:"source_file"`
	Layout      string    `db:"layout"`
	RecordCount int       `db:"record_count"`
	CreatedAt   time.Time `db:"created_at"`
}

// SaveTable archives one parsed table under a fresh batch id, in a single
// transaction: a failed import leaves no partial batch behind.
func (s *RunStore) SaveTable(ctx context.Context, sourceFile, layout string, t *tidy.Table) (*ImportBatch, error) {
	batch := &ImportBatch{
		ID:          uuid.New(),
		SourceFile:  sourceFile,
		Layout:      layout,
		RecordCount: t.Len(),
		CreatedAt:   time.Now().UTC(),
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, apperrors.StoreError("begin import transaction", err)
	}
	defer tx.Rollback()

	_, err = tx.NamedExecContext(ctx,
		`INSERT INTO import_batches (id, source_file, layout, record_count, created_at)
		 VALUES (:id, :source_file, :layout, :record_count, :created_at)`, batch)
	if err != nil {
		return nil, apperrors.StoreError("insert import batch", err)
	}

	const insertValue = `INSERT INTO run_values (batch_id, record_idx, label, kind, value)
		VALUES ($1, $2, $3, $4, $5)`
	for i, rec := range t.Records {
		for _, label := range rec.Keys() {
			v, _ := rec.Get(label)
			var value *string
			if !v.IsAbsent() {
				rendered := v.String()
				value = &rendered
			}
			if _, err := tx.ExecContext(ctx, insertValue, batch.ID, i, label, string(v.Type), value); err != nil {
				return nil, apperrors.StoreError("insert run value", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, apperrors.StoreError("commit import", err)
	}
	return batch, nil
}

// Batches lists archived imports, newest first
func (s *RunStore) Batches(ctx context.Context) ([]ImportBatch, error) {
	var out []ImportBatch
	err := s.db.SelectContext(ctx, &out,
		`SELECT id, source_file, layout, record_count, created_at
		 FROM import_batches ORDER BY created_at DESC`)
	if err != nil {
		return nil, apperrors.StoreError("list import batches", err)
	}
	return out, nil
}

// BatchCount returns the number of archived imports
func (s *RunStore) BatchCount(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM import_batches`); err != nil {
		return 0, apperrors.StoreError("count import batches", err)
	}
	return n, nil
}
