package repository

import (
	"context"
	"database/sql"
	"errors"

	"authplane/internal/db"
	"authplane/internal/mfa/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an MFA repository that uses the given db for persistence.
func NewPostgresRepository(sqldb *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: sqldb}
}

func (r *PostgresRepository) conn(ctx context.Context) db.DBTX {
	return db.Conn(ctx, r.db)
}

// GetByUser returns the configuration for the user, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByUser(ctx context.Context, userID string) (*domain.Configuration, error) {
	row := r.conn(ctx).QueryRowContext(ctx,
		`SELECT user_id, totp_secret, created_at, updated_at
		 FROM mfa_configurations WHERE user_id = $1`, userID)
	var c domain.Configuration
	if err := row.Scan(&c.UserID, &c.TotpSecret, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

// Upsert creates or replaces the user's configuration.
func (r *PostgresRepository) Upsert(ctx context.Context, c *domain.Configuration) error {
	_, err := r.conn(ctx).ExecContext(ctx,
		`INSERT INTO mfa_configurations (user_id, totp_secret, created_at, updated_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id) DO UPDATE SET totp_secret = $2, updated_at = $4`,
		c.UserID, c.TotpSecret, c.CreatedAt, c.UpdatedAt)
	return err
}

// Delete removes the user's configuration, if present.
func (r *PostgresRepository) Delete(ctx context.Context, userID string) error {
	_, err := r.conn(ctx).ExecContext(ctx,
		`DELETE FROM mfa_configurations WHERE user_id = $1`, userID)
	return err
}

// ListRecoveryCodeHashes returns the user's unconsumed recovery-code hashes.
func (r *PostgresRepository) ListRecoveryCodeHashes(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.conn(ctx).QueryContext(ctx,
		`SELECT code_hash FROM mfa_recovery_codes WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var hashes []string
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, err
		}
		hashes = append(hashes, h)
	}
	return hashes, rows.Err()
}

// ReplaceRecoveryCodeHashes swaps the user's recovery-code set for hashes.
// Runs inside the caller's transaction so the swap is atomic.
func (r *PostgresRepository) ReplaceRecoveryCodeHashes(ctx context.Context, userID string, hashes []string) error {
	conn := r.conn(ctx)
	if _, err := conn.ExecContext(ctx,
		`DELETE FROM mfa_recovery_codes WHERE user_id = $1`, userID); err != nil {
		return err
	}
	for _, h := range hashes {
		if _, err := conn.ExecContext(ctx,
			`INSERT INTO mfa_recovery_codes (user_id, code_hash) VALUES ($1, $2)`,
			userID, h); err != nil {
			return err
		}
	}
	return nil
}

// ConsumeRecoveryCodeHash deletes the hash if still present; reports
// whether a row was removed.
func (r *PostgresRepository) ConsumeRecoveryCodeHash(ctx context.Context, userID, hash string) (bool, error) {
	res, err := r.conn(ctx).ExecContext(ctx,
		`DELETE FROM mfa_recovery_codes WHERE user_id = $1 AND code_hash = $2`,
		userID, hash)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
