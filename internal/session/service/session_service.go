// Package service implements the session lifecycle: creation, lookup,
// trust-gated user resolution, atomic renewal, enumeration, and
// invalidation.
package service

import (
	"context"
	"log"
	"time"

	"authplane/internal/db"
	"authplane/internal/errdefs"
	"authplane/internal/security"
	"authplane/internal/session/domain"
	userdomain "authplane/internal/user/domain"
)

// Repository is the minimal session repository needed by the session service.
type Repository interface {
	Create(ctx context.Context, s *domain.Session) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*domain.Session, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Session, error)
	Delete(ctx context.Context, tokenHash string) error
	DeleteAllByUserExcept(ctx context.Context, userID, keepTokenHash string) ([]*domain.Session, error)
}

// UserRepo is the minimal user repository needed by the session service.
type UserRepo interface {
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
}

// Service owns the session entity lifecycle.
type Service struct {
	sessions Repository
	users    UserRepo
	tx       db.TxRunner
	ttl      time.Duration
	now      func() time.Time
}

// NewService returns a Service with the given dependencies. ttl is the
// session lifetime applied to every minted session.
func NewService(sessions Repository, users UserRepo, tx db.TxRunner, ttl time.Duration) *Service {
	return &Service{
		sessions: sessions,
		users:    users,
		tx:       tx,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create mints a new unique token, persists the session, and returns the
// cleartext token. Callers must invoke it only after password
// verification succeeded; trust records whether a second factor is still
// pending.
func (s *Service) Create(ctx context.Context, userID, ip, userAgent string, trust domain.Trust) (string, error) {
	var token string
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		token, err = s.insertSession(ctx, userID, ip, userAgent, trust)
		return err
	})
	if err != nil {
		return "", err
	}
	return token, nil
}

// Get returns the session for the token. A missing or expired session
// yields ErrNotFound.
func (s *Service) Get(ctx context.Context, token string) (*domain.Session, error) {
	sess, err := s.sessions.GetByTokenHash(ctx, security.HashSessionToken(token))
	if err != nil {
		return nil, err
	}
	if sess == nil || sess.Expired(s.now()) {
		return nil, errdefs.ErrNotFound
	}
	return sess, nil
}

// GetUser resolves the session's user. It fails with ErrRestrictedSession
// when allowRestricted is false and the session has not completed every
// required factor; this is the gate that keeps a partially-authenticated
// session from acting as the user anywhere except the MFA-completion
// path.
func (s *Service) GetUser(ctx context.Context, token string, allowRestricted bool) (*userdomain.User, error) {
	sess, err := s.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	if sess.Restricted() && !allowRestricted {
		return nil, errdefs.ErrRestrictedSession
	}
	user, err := s.users.GetByID(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errdefs.ErrNotFound
	}
	return user, nil
}

// Renew invalidates oldToken and issues a new full-trust token bound to
// the same user, in one transaction: there is no window where both
// tokens validate. It fails with ErrSessionUserMismatch when userID does
// not own the old session.
func (s *Service) Renew(ctx context.Context, oldToken, userID, ip, userAgent string) (string, error) {
	var token string
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		old, err := s.Get(ctx, oldToken)
		if err != nil {
			return err
		}
		if old.UserID != userID {
			log.Printf("session: renew user id %s does not match session user %s", userID, old.UserID)
			return errdefs.ErrSessionUserMismatch
		}
		token, err = s.insertSession(ctx, userID, ip, userAgent, domain.TrustFull)
		if err != nil {
			return err
		}
		return s.sessions.Delete(ctx, old.TokenHash)
	})
	if err != nil {
		return "", err
	}
	return token, nil
}

// GetAll returns every session of the user, oldest first.
func (s *Service) GetAll(ctx context.Context, userID string) ([]*domain.Session, error) {
	return s.sessions.ListByUser(ctx, userID)
}

// GetOtherSessions splits the user's sessions into the one matching
// currentToken and the rest. The caller's own session was just used to
// authenticate the call, so not finding it among the user's sessions is
// a broken invariant reported as ErrNotFound.
func (s *Service) GetOtherSessions(ctx context.Context, userID, currentToken string) (current *domain.Session, others []*domain.Session, err error) {
	sessions, err := s.GetAll(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	for _, sess := range sessions {
		if current == nil && security.SessionTokenHashEqual(currentToken, sess.TokenHash) {
			current = sess
			continue
		}
		others = append(others, sess)
	}
	if current == nil {
		log.Printf("session: cannot find own session token in list of all sessions, must be invalid")
		return nil, nil, errdefs.ErrNotFound
	}
	return current, others, nil
}

// Invalidate destroys the session for the token. Destroying an unknown
// token is not an error.
func (s *Service) Invalidate(ctx context.Context, token string) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		return s.sessions.Delete(ctx, security.HashSessionToken(token))
	})
}

// InvalidateOthers destroys every session of userID except the one for
// token, and returns the destroyed sessions for audit and UI purposes.
// The caller's own session is never removed.
func (s *Service) InvalidateOthers(ctx context.Context, token, userID string) ([]*domain.Session, error) {
	var invalidated []*domain.Session
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		sess, err := s.Get(ctx, token)
		if err != nil {
			return err
		}
		if sess.UserID != userID {
			return errdefs.ErrSessionUserMismatch
		}
		invalidated, err = s.sessions.DeleteAllByUserExcept(ctx, userID, sess.TokenHash)
		return err
	})
	if err != nil {
		return nil, err
	}
	return invalidated, nil
}

func (s *Service) insertSession(ctx context.Context, userID, ip, userAgent string, trust domain.Trust) (string, error) {
	token, err := security.MintSessionToken()
	if err != nil {
		return "", err
	}
	now := s.now().UTC()
	sess := &domain.Session{
		TokenHash: security.HashSessionToken(token),
		UserID:    userID,
		Trust:     trust,
		IPAddress: ip,
		UserAgent: userAgent,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return "", err
	}
	return token, nil
}
