package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/whitepeony/storefront/internal/domain"
	"github.com/whitepeony/storefront/internal/repository"
	apperrors "github.com/whitepeony/storefront/pkg/errors"
)

// SessionService manages the stored commerce platform session that backs
// all upstream calls.
type SessionService struct {
	repo   repository.SessionRepository
	logger *slog.Logger
}

// NewSessionService creates a new session service.
func NewSessionService(repo repository.SessionRepository, logger *slog.Logger) *SessionService {
	return &SessionService{
		repo:   repo,
		logger: logger,
	}
}

// Start stores the commerce platform token for a user.
func (s *SessionService) Start(ctx context.Context, userID, token string, expiresAt time.Time) (*domain.Session, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}
	if token == "" {
		return nil, apperrors.InvalidInput("token is required")
	}
	if !expiresAt.IsZero() && expiresAt.Before(time.Now()) {
		return nil, apperrors.InvalidInput("token is already expired")
	}

	session := &domain.Session{
		UserID:    userID,
		Token:     token,
		ExpiresAt: expiresAt,
	}
	if err := s.repo.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	s.logger.InfoContext(ctx, "session started",
		slog.String("user_id", userID),
	)

	return session, nil
}

// End removes the stored session for a user.
func (s *SessionService) End(ctx context.Context, userID string) error {
	if userID == "" {
		return apperrors.InvalidInput("user id is required")
	}
	if err := s.repo.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	s.logger.InfoContext(ctx, "session ended",
		slog.String("user_id", userID),
	)

	return nil
}
