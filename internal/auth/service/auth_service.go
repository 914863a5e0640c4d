// Package service implements login and second-factor verification on
// top of the user, session, and MFA layers.
package service

import (
	"context"
	"errors"

	"authplane/internal/db"
	"authplane/internal/errdefs"
	"authplane/internal/mfa"
	mfadomain "authplane/internal/mfa/domain"
	sessiondomain "authplane/internal/session/domain"
	userdomain "authplane/internal/user/domain"
)

// Credentials is a login attempt. Identifier is a user name or email
// address; the caller cannot tell which form was used from the outcome.
type Credentials struct {
	Identifier string
	Password   string
	IPAddress  string
	UserAgent  string
}

// LoginOutput is the result of a successful password check. When
// NeedsMFA is set the token is restricted until the second factor
// passes.
type LoginOutput struct {
	SessionToken string
	NeedsMFA     bool
}

// UserRepo resolves users during login.
type UserRepo interface {
	GetByIdentifier(ctx context.Context, identifier string) (*userdomain.User, error)
}

// MfaRepo exposes the MFA configuration lookup login needs to decide
// whether a second factor is required.
type MfaRepo interface {
	GetByUser(ctx context.Context, userID string) (*mfadomain.Configuration, error)
}

// SessionManager mints, resolves, and rotates sessions.
type SessionManager interface {
	Create(ctx context.Context, userID, ipAddress, userAgent string, trust sessiondomain.Trust) (string, error)
	Get(ctx context.Context, token string) (*sessiondomain.Session, error)
	Renew(ctx context.Context, oldToken, userID, ipAddress, userAgent string) (string, error)
}

// SecondFactorVerifier checks TOTP and recovery codes.
type SecondFactorVerifier interface {
	Verify(ctx context.Context, userID, code string) error
	VerifyRecovery(ctx context.Context, userID, code string) error
}

// PasswordVerifier is the slice of the hasher login needs.
type PasswordVerifier interface {
	CompareSleep(hash string, password []byte, sleepOnFailure bool) error
	FailureSleep()
}

// Service ties credentials, sessions, and the second factor together.
type Service struct {
	users    UserRepo
	mfaCfgs  MfaRepo
	sessions SessionManager
	verifier SecondFactorVerifier
	hasher   PasswordVerifier
	tx       db.TxRunner
}

func NewService(
	users UserRepo,
	mfaCfgs MfaRepo,
	sessions SessionManager,
	verifier SecondFactorVerifier,
	hasher PasswordVerifier,
	tx db.TxRunner,
) *Service {
	return &Service{
		users:    users,
		mfaCfgs:  mfaCfgs,
		sessions: sessions,
		verifier: verifier,
		hasher:   hasher,
		tx:       tx,
	}
}

// Login verifies the credentials and mints a session. An empty password
// is rejected up front, before any store access. When the user has MFA
// enabled, the minted session is restricted and NeedsMFA is set; the
// caller must follow up with VerifyMfa to obtain a full session.
//
// Every failure surfaces as one of three public errors: empty password,
// invalid authentication, or internal error. Which account exists, and
// which part of the check failed, never leaks.
func (s *Service) Login(ctx context.Context, creds Credentials) (*LoginOutput, error) {
	if creds.Password == "" {
		return nil, errdefs.ErrEmptyPassword
	}

	var out *LoginOutput
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		user, needsMFA, err := s.authenticatePassword(ctx, creds.Identifier, creds.Password)
		if err != nil {
			return err
		}

		trust := sessiondomain.TrustFull
		if needsMFA {
			trust = sessiondomain.TrustRestricted
		}
		token, err := s.sessions.Create(ctx, user.ID, creds.IPAddress, creds.UserAgent, trust)
		if err != nil {
			return err
		}
		out = &LoginOutput{SessionToken: token, NeedsMFA: needsMFA}
		return nil
	})
	if err != nil {
		return nil, errdefs.CollapseLogin(err)
	}
	return out, nil
}

// authenticatePassword resolves the identifier and checks the password.
// Unknown users and users without a stored hash burn the same fixed
// delay a wrong password does.
func (s *Service) authenticatePassword(ctx context.Context, identifier, password string) (*userdomain.User, bool, error) {
	user, err := s.users.GetByIdentifier(ctx, identifier)
	if err != nil {
		return nil, false, err
	}
	if user == nil || user.PasswordHash == "" {
		s.hasher.FailureSleep()
		return nil, false, errdefs.ErrInvalidAuthentication
	}

	if err := s.hasher.CompareSleep(user.PasswordHash, []byte(password), true); err != nil {
		return nil, false, errdefs.ErrInvalidAuthentication
	}

	cfg, err := s.mfaCfgs.GetByUser(ctx, user.ID)
	if err != nil {
		return nil, false, err
	}
	return user, cfg.State() == mfadomain.StateEnabled, nil
}

// VerifyMfa completes a login that required a second factor. The token
// must name a live restricted session; the submitted code is dispatched
// by shape to either the TOTP or the recovery-code check. On success the
// restricted session is atomically replaced by a full one and the new
// token returned. Failures collapse the same way Login failures do.
func (s *Service) VerifyMfa(ctx context.Context, sessionToken, code, ipAddress, userAgent string) (string, error) {
	var newToken string
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		sess, err := s.sessions.Get(ctx, sessionToken)
		if err != nil {
			if errors.Is(err, errdefs.ErrNotFound) {
				return errdefs.ErrInvalidAuthentication
			}
			return err
		}
		// A full session has nothing left to verify; treating the
		// attempt as invalid keeps verification single-shot.
		if !sess.Restricted() {
			return errdefs.ErrInvalidAuthentication
		}

		if mfa.IsRecoveryCode(code) {
			err = s.verifier.VerifyRecovery(ctx, sess.UserID, code)
		} else {
			err = s.verifier.Verify(ctx, sess.UserID, code)
		}
		if err != nil {
			return err
		}

		newToken, err = s.sessions.Renew(ctx, sessionToken, sess.UserID, ipAddress, userAgent)
		return err
	})
	if err != nil {
		return "", errdefs.CollapseLogin(err)
	}
	return newToken, nil
}
