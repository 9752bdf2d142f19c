package credstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

const pgUniqueViolation = "23505"

// Postgres is a Store backed by a PostgreSQL database. The schema is managed
// by the embedded migrations in credstore/migrations.
type Postgres struct {
	db *sql.DB
}

// NewPostgres wraps an open database handle. The caller owns the handle and
// is responsible for running migrations before first use.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// Add persists a new record, failing with ErrDuplicateUser if the username is
// already present.
func (s *Postgres) Add(ctx context.Context, record *Record) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO credentials
		   (username, password_hash, salt, role, encrypted_email, wrapped_user_key, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		record.Username, record.PasswordHash, record.Salt, record.Role,
		record.EncryptedEmail, record.WrappedUserKey, record.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrDuplicateUser
		}
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Get returns the record for username or ErrNotFound.
func (s *Postgres) Get(ctx context.Context, username string) (*Record, error) {
	record := &Record{}
	err := s.db.QueryRowContext(ctx,
		`SELECT username, password_hash, salt, role, encrypted_email, wrapped_user_key, created_at
		   FROM credentials WHERE username = $1`, username).
		Scan(&record.Username, &record.PasswordHash, &record.Salt, &record.Role,
			&record.EncryptedEmail, &record.WrappedUserKey, &record.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return record, nil
}

// Update merges the supplied fields into an existing record inside a
// transaction so concurrent updaters cannot interleave partial writes.
func (s *Postgres) Update(ctx context.Context, username string, fields Fields) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	defer tx.Rollback()

	record := &Record{}
	err = tx.QueryRowContext(ctx,
		`SELECT role, encrypted_email, wrapped_user_key
		   FROM credentials WHERE username = $1 FOR UPDATE`, username).
		Scan(&record.Role, &record.EncryptedEmail, &record.WrappedUserKey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	record.apply(fields)

	_, err = tx.ExecContext(ctx,
		`UPDATE credentials
		    SET role = $2, encrypted_email = $3, wrapped_user_key = $4
		  WHERE username = $1`,
		username, record.Role, record.EncryptedEmail, record.WrappedUserKey)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return true, nil
}

// Delete removes the record and reports whether one existed.
func (s *Postgres) Delete(ctx context.Context, username string) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM credentials WHERE username = $1`, username)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return n > 0, nil
}
