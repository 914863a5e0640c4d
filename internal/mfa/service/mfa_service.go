// Package service orchestrates TOTP and recovery-code setup,
// verification, disabling, and recovery-code reset for a user's MFA
// configuration.
package service

import (
	"context"
	"time"

	"authplane/internal/db"
	"authplane/internal/errdefs"
	"authplane/internal/mfa"
	"authplane/internal/mfa/domain"
	userdomain "authplane/internal/user/domain"
)

// PasswordHasher is the narrow hash/verify/sleep capability used for
// recovery codes. The constant-time and fixed-delay contracts live
// behind it so this service cannot bypass them with a naive comparison.
type PasswordHasher interface {
	Hash(password []byte) (string, error)
	CompareSleep(hash string, password []byte, sleepOnFailure bool) error
	FailureSleep()
}

// Totp generates secrets and validates time-step codes.
type Totp interface {
	GenerateSecret(accountName string) (secret, provisioningURI string, err error)
	Validate(code, secret string) (bool, error)
}

// Repository is the minimal MFA repository needed by the service.
type Repository interface {
	GetByUser(ctx context.Context, userID string) (*domain.Configuration, error)
	Upsert(ctx context.Context, c *domain.Configuration) error
	Delete(ctx context.Context, userID string) error
	ListRecoveryCodeHashes(ctx context.Context, userID string) ([]string, error)
	ReplaceRecoveryCodeHashes(ctx context.Context, userID string, hashes []string) error
	ConsumeRecoveryCodeHash(ctx context.Context, userID, hash string) (bool, error)
}

// SetupOutput is returned once from Setup; the recovery codes are never
// shown again.
type SetupOutput struct {
	TotpSecret      string
	ProvisioningURI string
	RecoveryCodes   []string
}

// Service implements the MFA lifecycle.
type Service struct {
	repo      Repository
	hasher    PasswordHasher
	totp      Totp
	tx        db.TxRunner
	codeCount int
	now       func() time.Time
}

// NewService returns a Service with the given dependencies. codeCount is
// how many recovery codes a setup or reset produces.
func NewService(repo Repository, hasher PasswordHasher, totp Totp, tx db.TxRunner, codeCount int) *Service {
	if codeCount <= 0 {
		codeCount = mfa.DefaultRecoveryCodeCount
	}
	return &Service{
		repo:      repo,
		hasher:    hasher,
		totp:      totp,
		tx:        tx,
		codeCount: codeCount,
		now:       time.Now,
	}
}

// Setup generates a fresh TOTP secret and recovery-code batch for the
// user, persists both, and returns the cleartext exactly once. Only
// hashes of the recovery codes are retained.
func (s *Service) Setup(ctx context.Context, user *userdomain.User) (*SetupOutput, error) {
	var out *SetupOutput
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		secret, uri, err := s.totp.GenerateSecret(user.Email)
		if err != nil {
			return err
		}
		codes, hashes, err := s.freshRecoveryCodes()
		if err != nil {
			return err
		}
		now := s.now().UTC()
		cfg := &domain.Configuration{
			UserID:     user.ID,
			TotpSecret: secret,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := s.repo.Upsert(ctx, cfg); err != nil {
			return err
		}
		if err := s.repo.ReplaceRecoveryCodeHashes(ctx, user.ID, hashes); err != nil {
			return err
		}
		out = &SetupOutput{TotpSecret: secret, ProvisioningURI: uri, RecoveryCodes: codes}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Verify checks the entered TOTP code against the user's secret. A user
// without MFA configured fails: any code is invalid then, never silently
// valid. The code comparison is constant-time regardless of outcome.
func (s *Service) Verify(ctx context.Context, userID, enteredCode string) error {
	cfg, err := s.repo.GetByUser(ctx, userID)
	if err != nil {
		return err
	}
	if cfg.State() != domain.StateEnabled {
		return errdefs.ErrInvalidAuthentication
	}
	ok, err := s.totp.Validate(enteredCode, cfg.TotpSecret)
	if err != nil {
		return err
	}
	if !ok {
		return errdefs.ErrInvalidAuthentication
	}
	return nil
}

// VerifyRecovery checks the code against every stored hash, even after
// a match is found, so the amount of work does not depend on the
// position or existence of a match. A matched code is consumed. On
// failure the fixed failure sleep runs before returning, whether or not
// any hashes existed to compare against.
func (s *Service) VerifyRecovery(ctx context.Context, userID, code string) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		hashes, err := s.repo.ListRecoveryCodeHashes(ctx, userID)
		if err != nil {
			return err
		}

		matched := ""
		for _, hash := range hashes {
			if s.hasher.CompareSleep(hash, []byte(code), false) == nil {
				matched = hash
			}
		}
		if matched == "" {
			s.hasher.FailureSleep()
			return errdefs.ErrInvalidAuthentication
		}

		removed, err := s.repo.ConsumeRecoveryCodeHash(ctx, userID, matched)
		if err != nil {
			return err
		}
		if !removed {
			// Lost a race with a concurrent use of the same code.
			s.hasher.FailureSleep()
			return errdefs.ErrInvalidAuthentication
		}
		return nil
	})
}

// Disable removes the user's TOTP secret and all recovery-code hashes,
// returning the configuration to Disabled.
func (s *Service) Disable(ctx context.Context, userID string) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.repo.ReplaceRecoveryCodeHashes(ctx, userID, nil); err != nil {
			return err
		}
		return s.repo.Delete(ctx, userID)
	})
}

// ResetRecoveryCodes regenerates the user's recovery-code batch,
// discarding unused old codes, and returns the new cleartext codes once.
// Fails when MFA is not enabled for the user.
func (s *Service) ResetRecoveryCodes(ctx context.Context, user *userdomain.User) ([]string, error) {
	var codes []string
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		cfg, err := s.repo.GetByUser(ctx, user.ID)
		if err != nil {
			return err
		}
		if cfg.State() != domain.StateEnabled {
			return errdefs.ErrInvalidAuthentication
		}
		var hashes []string
		codes, hashes, err = s.freshRecoveryCodes()
		if err != nil {
			return err
		}
		return s.repo.ReplaceRecoveryCodeHashes(ctx, user.ID, hashes)
	})
	if err != nil {
		return nil, err
	}
	return codes, nil
}

func (s *Service) freshRecoveryCodes() (codes, hashes []string, err error) {
	codes, err = mfa.GenerateRecoveryCodes(s.codeCount)
	if err != nil {
		return nil, nil, err
	}
	hashes = make([]string, len(codes))
	for i, code := range codes {
		h, err := s.hasher.Hash([]byte(code))
		if err != nil {
			return nil, nil, err
		}
		hashes[i] = h
	}
	return codes, hashes, nil
}
