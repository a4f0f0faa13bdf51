package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/neuroquant-report-server/internal/domain"
)

// PostgresStore implements domain.ReportStore using PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL report store.
// It expects the database and schema to already exist (created via migrations).
func NewPostgresStore(db *sql.DB) (*PostgresStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	// Verify connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// NewPostgresStoreFromDSN creates a new PostgreSQL report store from a
// connection string.
func NewPostgresStoreFromDSN(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	store, err := NewPostgresStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

// Save stores an assembled report, replacing any previous payload under the
// same ID.
func (s *PostgresStore) Save(ctx context.Context, report *domain.AnalysisReport) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	query := `
		INSERT INTO reports (id, created_at, age, sex, risk, estimated_icv, bpf, payload)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			created_at = EXCLUDED.created_at,
			age = EXCLUDED.age,
			sex = EXCLUDED.sex,
			risk = EXCLUDED.risk,
			estimated_icv = EXCLUDED.estimated_icv,
			bpf = EXCLUDED.bpf,
			payload = EXCLUDED.payload
	`

	_, err = s.db.ExecContext(ctx, query,
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
func (s *PostgresStore) Get(ctx context.Context, id string) (*domain.AnalysisReport, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		"SELECT payload FROM reports WHERE id = $1", id,
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
func (s *PostgresStore) List(ctx context.Context, limit, offset int) ([]*domain.ReportSummary, error) {
	query := `
		SELECT id, created_at, age, sex, risk, estimated_icv, bpf
		FROM reports
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := s.db.QueryContext(ctx, query, limit, offset)
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

// Count returns the total number of stored reports.
func (s *PostgresStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM reports").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count reports: %w", err)
	}
	return count, nil
}

// Delete removes a stored report by ID.
func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM reports WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}
	return nil
}

// Close closes the store and releases resources.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
