// Package repository persists assembled analysis reports. Two backends
// implement domain.ReportStore: an embedded SQLite file for single-node
// deployments and PostgreSQL for shared ones. Both store the full report as
// JSON next to the indexed columns the listing endpoints query.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/neuroquant-report-server/internal/domain"
)

// SQLiteStore implements domain.ReportStore using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStore creates a new SQLite report store.
// It creates the database file and schema if they don't exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	// Open database
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	// Create schema
	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// createSchema creates the database tables and indexes.
func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS reports (
		id TEXT PRIMARY KEY,
		created_at DATETIME NOT NULL,
		age REAL NOT NULL,
		sex TEXT NOT NULL,
		risk TEXT NOT NULL,
		estimated_icv INTEGER NOT NULL,
		bpf REAL,
		payload TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_reports_created_at ON reports(created_at);
	CREATE INDEX IF NOT EXISTS idx_reports_risk ON reports(risk);
	`

	_, err := db.Exec(schema)
	return err
}

// bpfValue extracts the nullable BPF column value from a report.
func bpfValue(report *domain.AnalysisReport) interface{} {
	if report.BPF == nil {
		return nil
	}
	return report.BPF.Value
}

// Save stores an assembled report. Reports are immutable, so saving an
// existing ID replaces the stored payload wholesale.
func (s *SQLiteStore) Save(ctx context.Context, report *domain.AnalysisReport) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO reports (id, created_at, age, sex, risk, estimated_icv, bpf, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			created_at = excluded.created_at,
			age = excluded.age,
			sex = excluded.sex,
			risk = excluded.risk,
			estimated_icv = excluded.estimated_icv,
			bpf = excluded.bpf,
			payload = excluded.payload
	`,
		report.ID,
		report.CreatedAt,
		report.Age,
		string(report.Sex),
		string(report.Risk),
		report.EstimatedICV,
		bpfValue(report),
		string(payload),
	)
	if err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}

// Get retrieves a stored report by ID. A missing ID returns
// domain.ErrNotFound.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*domain.AnalysisReport, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		"SELECT payload FROM reports WHERE id = ?", id,
	).Scan(&payload)

	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	report := &domain.AnalysisReport{}
	if err := json.Unmarshal([]byte(payload), report); err != nil {
		return nil, fmt.Errorf("failed to decode report: %w", err)
	}
	return report, nil
}

// List returns report summaries, newest first, with pagination.
func (s *SQLiteStore) List(ctx context.Context, limit, offset int) ([]*domain.ReportSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, age, sex, risk, estimated_icv, bpf
		FROM reports
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	var result []*domain.ReportSummary
	for rows.Next() {
		summary, err := scanSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		result = append(result, summary)
	}
	return result, rows.Err()
}

// scanner is an interface for sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanSummary scans an indexed-columns row into a ReportSummary.
func scanSummary(s scanner) (*domain.ReportSummary, error) {
	summary := &domain.ReportSummary{}
	var sex, risk string
	var bpf sql.NullFloat64

	err := s.Scan(
		&summary.ID, &summary.CreatedAt, &summary.Age,
		&sex, &risk, &summary.EstimatedICV, &bpf,
	)
	if err != nil {
		return nil, err
	}

	summary.Sex = domain.Sex(sex)
	summary.Risk = domain.RiskLevel(risk)
	if bpf.Valid {
		summary.BPF = &bpf.Float64
	}
	return summary, nil
}

// Count returns the total number of stored reports.
func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM reports").Scan(&count)
	return count, err
}

// Delete removes a stored report by ID.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM reports WHERE id = ?", id)
	return err
}

// Close closes the store and releases resources.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
