// Package repository provides persistence implementations for the remote
// document store and account registry using a PostgreSQL database.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrAbsent is returned when a requested row does not exist.
var ErrAbsent = errors.New("not found")

// PostgresDocumentRepository implements per-user document persistence
// against the app_state table: one row per user id, one column holding
// the encoded document text.
type PostgresDocumentRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresDocumentRepository creates a repository using the provided
// *sql.DB. db must be a valid connection to a PostgreSQL instance.
func NewPostgresDocumentRepository(db *sql.DB) *PostgresDocumentRepository {
	return &PostgresDocumentRepository{DB: db}
}

// GetDocument fetches the encoded document for the given user id.
// Returns ErrAbsent if no row exists.
func (r *PostgresDocumentRepository) GetDocument(ctx context.Context, userID string) (string, error) {
	var state string
	err := r.DB.QueryRowContext(ctx, `
		SELECT state_json FROM app_state WHERE id = $1
	`, userID).Scan(&state)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrAbsent
	}
	if err != nil {
		return "", fmt.Errorf("GetDocument: %w", err)
	}
	return state, nil
}

// PutDocument upserts the encoded document for the given user id.
func (r *PostgresDocumentRepository) PutDocument(ctx context.Context, userID, state string) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO app_state (id, state_json)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET state_json = EXCLUDED.state_json
	`, userID, state)
	if err != nil {
		return fmt.Errorf("PutDocument: %w", err)
	}
	return nil
}

// ListDocuments returns every stored document in result-set order.
// This is a full-table scan used only by master-view aggregation; it is
// O(#users) per call, an accepted ceiling at this scale.
func (r *PostgresDocumentRepository) ListDocuments(ctx context.Context) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT state_json FROM app_state`)
	if err != nil {
		return nil, fmt.Errorf("ListDocuments: %w", err)
	}
	defer rows.Close()

	var docs []string
	for rows.Next() {
		var state string
		if err := rows.Scan(&state); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		docs = append(docs, state)
	}
	return docs, rows.Err()
}
