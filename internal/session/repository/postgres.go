package repository

import (
	"context"
	"database/sql"
	"errors"

	"authplane/internal/db"
	"authplane/internal/session/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a session repository that uses the given db for persistence.
func NewPostgresRepository(sqldb *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: sqldb}
}

func (r *PostgresRepository) conn(ctx context.Context) db.DBTX {
	return db.Conn(ctx, r.db)
}

const sessionColumns = `token_hash, user_id, trust, ip_address, user_agent, created_at, expires_at`

// Create persists the session to the database. The session must have TokenHash set.
func (r *PostgresRepository) Create(ctx context.Context, s *domain.Session) error {
	_, err := r.conn(ctx).ExecContext(ctx,
		`INSERT INTO sessions (token_hash, user_id, trust, ip_address, user_agent, created_at, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		s.TokenHash, s.UserID, string(s.Trust), s.IPAddress, s.UserAgent, s.CreatedAt, s.ExpiresAt)
	return err
}

// GetByTokenHash returns the session for the token hash, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*domain.Session, error) {
	row := r.conn(ctx).QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE token_hash = $1`, tokenHash)
	s, err := scanSession(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return s, nil
}

// ListByUser returns all sessions for the user, oldest first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Session, error) {
	rows, err := r.conn(ctx).QueryContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSessions(rows)
}

// Delete removes the session for the token hash, if present.
func (r *PostgresRepository) Delete(ctx context.Context, tokenHash string) error {
	_, err := r.conn(ctx).ExecContext(ctx,
		`DELETE FROM sessions WHERE token_hash = $1`, tokenHash)
	return err
}

// DeleteAllByUserExcept removes every session of the user except the one
// with keepTokenHash and returns the removed sessions.
func (r *PostgresRepository) DeleteAllByUserExcept(ctx context.Context, userID, keepTokenHash string) ([]*domain.Session, error) {
	rows, err := r.conn(ctx).QueryContext(ctx,
		`DELETE FROM sessions WHERE user_id = $1 AND token_hash <> $2
		 RETURNING `+sessionColumns, userID, keepTokenHash)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSessions(rows)
}

func collectSessions(rows *sql.Rows) ([]*domain.Session, error) {
	var out []*domain.Session
	for rows.Next() {
		s, err := scanSession(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func scanSession(scan func(dest ...any) error) (*domain.Session, error) {
	var (
		s     domain.Session
		trust string
	)
	if err := scan(&s.TokenHash, &s.UserID, &trust, &s.IPAddress, &s.UserAgent, &s.CreatedAt, &s.ExpiresAt); err != nil {
		return nil, err
	}
	s.Trust = domain.Trust(trust)
	return &s, nil
}
