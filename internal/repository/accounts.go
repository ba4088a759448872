// Package repository provides persistence implementations for the remote
// document store and account registry.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Account is a remote credential row. PasswordHash is a bcrypt hash and
// never leaves this layer.
type Account struct {
	ID           string
	Email        string
	PasswordHash []byte
	Name         string
	Role         string
	CreatedAt    time.Time
}

// PostgresAccountRepository implements credential persistence against a
// PostgreSQL database.
type PostgresAccountRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresAccountRepository creates a repository with the given
// database connection.
func NewPostgresAccountRepository(db *sql.DB) *PostgresAccountRepository {
	return &PostgresAccountRepository{DB: db}
}

// AccountExists checks whether an account with the given email exists.
func (r *PostgresAccountRepository) AccountExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(
		ctx,
		`SELECT EXISTS(SELECT 1 FROM accounts WHERE email = $1)`,
		email,
	).Scan(&exists)
	return exists, err
}

// CreateAccount inserts a new account row.
func (r *PostgresAccountRepository) CreateAccount(ctx context.Context, a Account) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO accounts (id, email, password_hash, name, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, a.ID, a.Email, a.PasswordHash, a.Name, a.Role, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("CreateAccount: %w", err)
	}
	return nil
}

// AccountByEmail fetches the account with the given email. Returns
// ErrAbsent if no such account exists.
func (r *PostgresAccountRepository) AccountByEmail(ctx context.Context, email string) (*Account, error) {
	var a Account
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, email, password_hash, name, role, created_at
		FROM accounts WHERE email = $1
	`, email).Scan(&a.ID, &a.Email, &a.PasswordHash, &a.Name, &a.Role, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAbsent
	}
	if err != nil {
		return nil, fmt.Errorf("AccountByEmail: %w", err)
	}
	return &a, nil
}

// AccountByID fetches the account with the given id. Returns ErrAbsent
// if no such account exists.
func (r *PostgresAccountRepository) AccountByID(ctx context.Context, id string) (*Account, error) {
	var a Account
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, email, password_hash, name, role, created_at
		FROM accounts WHERE id = $1
	`, id).Scan(&a.ID, &a.Email, &a.PasswordHash, &a.Name, &a.Role, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAbsent
	}
	if err != nil {
		return nil, fmt.Errorf("AccountByID: %w", err)
	}
	return &a, nil
}
