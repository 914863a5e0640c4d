// Package repository defines persistence for MFA configurations and
// recovery-code hashes.
package repository

import (
	"context"

	"authplane/internal/mfa/domain"
)

// Repository is the persistence surface for a user's MFA configuration.
// Lookups return (nil, nil) for missing rows; errors are database
// failures only.
type Repository interface {
	// GetByUser returns the configuration for the user, or nil if MFA is
	// not configured.
	GetByUser(ctx context.Context, userID string) (*domain.Configuration, error)
	// Upsert creates or replaces the user's configuration.
	Upsert(ctx context.Context, c *domain.Configuration) error
	// Delete removes the user's configuration, if present.
	Delete(ctx context.Context, userID string) error
	// ListRecoveryCodeHashes returns the user's unconsumed recovery-code
	// hashes.
	ListRecoveryCodeHashes(ctx context.Context, userID string) ([]string, error)
	// ReplaceRecoveryCodeHashes atomically swaps the user's recovery-code
	// set for hashes. An empty or nil slice clears the set.
	ReplaceRecoveryCodeHashes(ctx context.Context, userID string, hashes []string) error
	// ConsumeRecoveryCodeHash deletes the hash if it is still present and
	// reports whether a row was removed. The conditional delete is what
	// keeps a code from being spent twice under concurrent verification.
	ConsumeRecoveryCodeHash(ctx context.Context, userID, hash string) (bool, error)
}
