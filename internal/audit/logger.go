// Package audit records authentication events for later review.
package audit

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"authplane/internal/audit/domain"
	auditrepo "authplane/internal/audit/repository"
)

// Actions recorded by the authentication and session code paths.
const (
	ActionLogin            = "auth.login"
	ActionLoginFailure     = "auth.login_failure"
	ActionMfaVerify        = "auth.mfa_verify"
	ActionMfaSetup         = "auth.mfa_setup"
	ActionMfaDisable       = "auth.mfa_disable"
	ActionRecoveryReset    = "auth.recovery_reset"
	ActionLogout           = "auth.logout"
	ActionSessionRenew     = "session.renew"
	ActionInvalidateOthers = "session.invalidate_others"
)

// AuditLogger writes a single audit event with explicit action/resource.
// Used by auth and session code paths.
// LogEvent is best-effort: failures are logged and do not affect the caller.
type AuditLogger interface {
	LogEvent(ctx context.Context, userID, action, resource, ip, metadata string)
}

// Logger implements AuditLogger using the audit repository.
type Logger struct {
	repo auditrepo.Repository
}

// NewLogger returns an AuditLogger that persists to repo.
func NewLogger(repo auditrepo.Repository) *Logger {
	return &Logger{repo: repo}
}

// LogEvent writes one audit log entry. Best-effort: errors are logged and not returned.
func (l *Logger) LogEvent(ctx context.Context, userID, action, resource, ip, metadata string) {
	if l.repo == nil {
		return
	}
	if ip == "" {
		ip = "unknown"
	}
	entry := &domain.AuditLog{
		ID:        uuid.New().String(),
		UserID:    userID,
		Action:    action,
		Resource:  resource,
		IP:        ip,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}
	if err := l.repo.Create(ctx, entry); err != nil {
		log.Printf("audit: failed to log event %s/%s: %v", action, resource, err)
	}
}
