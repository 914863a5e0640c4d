// Package repository defines persistence for users.
package repository

import (
	"context"

	"authplane/internal/user/domain"
)

// Repository is the persistence surface for users. Lookups return
// (nil, nil) for missing rows; errors are database failures only.
type Repository interface {
	// GetByID returns the user for id, or nil if not found.
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// GetByIdentifier returns the user whose name or email equals
	// identifier, or nil if not found.
	GetByIdentifier(ctx context.Context, identifier string) (*domain.User, error)
	// Create persists the user. The user must have ID set.
	Create(ctx context.Context, u *domain.User) error
}
