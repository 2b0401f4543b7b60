// Package storage keeps an optional sqlite history of published reports.
// It is auxiliary only: the pipeline's durable state is the timestamp
// file, not this database.
package storage

import (
	"context"
	"database/sql"
	"time"

	_ "modernc.org/sqlite"
)

type DB struct {
	sql *sql.DB
}

// Report is one published run: which calendar dates it covered, how many
// encounters it carried, and the exact payload that was posted.
type Report struct {
	ID          int64
	PublishedAt time.Time
	Dates       string
	Encounters  int
	Payload     string
}

func Open(path string) (*DB, error) {
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	// Ensure schema exists for convenience.
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS published_reports (
  id           INTEGER PRIMARY KEY,
  published_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  dates        TEXT NOT NULL,
  encounters   INTEGER NOT NULL,
  payload      TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_reports_published ON published_reports(published_at);
	`); err != nil {
		return nil, err
	}
	return &DB{sql: db}, nil
}

func (d *DB) Close() error {
	if d == nil || d.sql == nil {
		return nil
	}
	return d.sql.Close()
}

// RecordReport stores one published run.
func (d *DB) RecordReport(ctx context.Context, dates string, encounters int, payload string) error {
	_, err := d.sql.ExecContext(ctx,
		`INSERT INTO published_reports(published_at, dates, encounters, payload) VALUES(?,?,?,?)`,
		time.Now().UTC(), dates, encounters, payload)
	return err
}

// ListReports returns the most recent published runs, newest first.
// The payload column is included so a run can be replayed by hand.
func (d *DB) ListReports(ctx context.Context, limit int) ([]Report, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := d.sql.QueryContext(ctx,
		`SELECT id, published_at, dates, encounters, payload FROM published_reports ORDER BY published_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []Report
	for rows.Next() {
		var r Report
		if err := rows.Scan(&r.ID, &r.PublishedAt, &r.Dates, &r.Encounters, &r.Payload); err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}
