// Package repository defines persistence for audit log entries.
package repository

import (
	"context"

	"authplane/internal/audit/domain"
)

// Repository persists audit log entries. Entries are append-only.
type Repository interface {
	// Create persists the entry. The entry must have ID set.
	Create(ctx context.Context, entry *domain.AuditLog) error
	// ListByUser returns entries for the user, newest first, paginated by
	// limit and offset.
	ListByUser(ctx context.Context, userID string, limit, offset int32) ([]*domain.AuditLog, error)
}
