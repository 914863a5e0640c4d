// Package repository defines persistence for sessions.
package repository

import (
	"context"

	"authplane/internal/session/domain"
)

// Repository is the persistence surface for sessions, keyed by token
// hash. Lookups return (nil, nil) for missing rows; errors are database
// failures only.
type Repository interface {
	// Create persists the session. The session must have TokenHash set.
	Create(ctx context.Context, s *domain.Session) error
	// GetByTokenHash returns the session for the token hash, or nil if not found.
	GetByTokenHash(ctx context.Context, tokenHash string) (*domain.Session, error)
	// ListByUser returns all sessions for the user, oldest first.
	ListByUser(ctx context.Context, userID string) ([]*domain.Session, error)
	// Delete removes the session for the token hash, if present.
	Delete(ctx context.Context, tokenHash string) error
	// DeleteAllByUserExcept removes every session of the user except the
	// one with keepTokenHash and returns the removed sessions.
	DeleteAllByUserExcept(ctx context.Context, userID, keepTokenHash string) ([]*domain.Session, error)
}
