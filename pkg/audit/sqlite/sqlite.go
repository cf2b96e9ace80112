// Package sqlite provides a SQLite-backed audit driver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/lingopod/lingopod/pkg/audit"
)

// Driver persists audit records in a SQLite database.
type Driver struct {
	db *sql.DB
}

// New opens (or creates) the database at dbPath and ensures the schema
// exists. Use ":memory:" for an in-memory database.
func New(dbPath string) (*Driver, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	d := &Driver{db: db}

	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return d, nil
}

func (d *Driver) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS audit_records (
		id TEXT PRIMARY KEY,
		task TEXT NOT NULL,
		model TEXT,
		request_id TEXT NOT NULL,
		duration_ms INTEGER NOT NULL,
		ok INTEGER NOT NULL,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_audit_created_at ON audit_records(created_at);
	`

	_, err := d.db.Exec(schema)
	return err
}

func (d *Driver) Put(ctx context.Context, record audit.Record) error {
	query := `INSERT OR IGNORE INTO audit_records
		(id, task, model, request_id, duration_ms, ok, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := d.db.ExecContext(ctx, query,
		record.ID, record.Task, record.Model, record.RequestID,
		record.DurationMS, record.OK, record.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert record: %w", err)
	}

	return nil
}

func (d *Driver) List(ctx context.Context, limit int) ([]audit.Record, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT id, task, model, request_id, duration_ms, ok, created_at
		FROM audit_records ORDER BY created_at DESC, id DESC LIMIT ?`

	rows, err := d.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var records []audit.Record
	for rows.Next() {
		var r audit.Record
		var model sql.NullString
		if err := rows.Scan(&r.ID, &r.Task, &model, &r.RequestID,
			&r.DurationMS, &r.OK, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		r.Model = model.String
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return records, nil
}

func (d *Driver) Close() error {
	return d.db.Close()
}

var _ audit.Driver = (*Driver)(nil)
