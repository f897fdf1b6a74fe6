package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

const createTable = `
	CREATE TABLE IF NOT EXISTS migrated_tickets (
		id          BIGSERIAL PRIMARY KEY,
		project     TEXT        NOT NULL,
		ticket_id   BIGINT      NOT NULL,
		issue_key   TEXT        NOT NULL,
		run_id      TEXT        NOT NULL DEFAULT '',
		migrated_at TIMESTAMPTZ NOT NULL
	)
`

// PostgresStore keeps records in the migrated_tickets table.
type PostgresStore struct {
	db      *sql.DB
	project string
}

// NewPostgresStore connects to the database and creates the table if needed.
func NewPostgresStore(ctx context.Context, dsn, project string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if _, err := db.ExecContext(ctx, createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("create migrated_tickets table: %w", err)
	}
	return &PostgresStore{db: db, project: project}, nil
}

func (s *PostgresStore) Append(ctx context.Context, rec Record) error {
	query := `
		INSERT INTO migrated_tickets (project, ticket_id, issue_key, run_id, migrated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := s.db.ExecContext(ctx, query, s.project, rec.TicketID, rec.IssueKey, rec.RunID, rec.MigratedAt); err != nil {
		return fmt.Errorf("append record: %w", err)
	}
	return nil
}

func (s *PostgresStore) ReadAll(ctx context.Context) ([]Record, error) {
	query := `
		SELECT ticket_id, issue_key, run_id, migrated_at
		FROM migrated_tickets
		WHERE project = $1
		ORDER BY id
	`
	rows, err := s.db.QueryContext(ctx, query, s.project)
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.TicketID, &rec.IssueKey, &rec.RunID, &rec.MigratedAt); err != nil {
			return records, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
