package auth

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/coursedesk/coursedesk/internal/shared"
)

// MinPasswordLength is the floor enforced on password changes.
const MinPasswordLength = 8

// Service wraps authentication business rules.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Authenticate validates email/password credentials. The returned error is
// identical whether the email is unknown or the password wrong, so accounts
// cannot be enumerated.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrInvalidCredentials
		}
		return nil, shared.StorageError(err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return user, nil
}

// ChangePassword re-verifies the current password before accepting the new
// one. The new hash is persisted only when every check passes.
func (s *Service) ChangePassword(ctx context.Context, principalID int64, current, next string) error {
	user, err := s.repo.FindByID(ctx, principalID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.ErrInvalidCredentials
		}
		return shared.StorageError(err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)) != nil {
		return shared.ErrInvalidCredentials
	}
	if len(next) < MinPasswordLength {
		return shared.NewValidationError("new_password")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePasswordHash(ctx, user.ID, string(hash)); err != nil {
		return shared.StorageError(err)
	}
	return nil
}

// RegisterSession persists session metadata in postgres.
func (s *Service) RegisterSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	return s.repo.CreateSession(ctx, id, userID, expiresAt, ip, ua)
}

// RemoveSession deletes a session record from postgres.
func (s *Service) RemoveSession(ctx context.Context, id string) error {
	return s.repo.DeleteSession(ctx, id)
}

// PurgeExpiredSessions drops stale session records; run from the worker.
func (s *Service) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	return s.repo.PurgeExpiredSessions(ctx, time.Now())
}
