package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/whitepeony/storefront/internal/domain"
	"github.com/whitepeony/storefront/internal/event"
	"github.com/whitepeony/storefront/internal/repository"
	apperrors "github.com/whitepeony/storefront/pkg/errors"
)

// WishlistService keeps the local wishlist mirror in step with the commerce
// platform. Mutations apply locally first and roll back if the upstream
// call fails, so the UI reflects the tap immediately. Without a live
// session mutations are local only and final.
type WishlistService struct {
	repo        repository.WishlistRepository
	sessionRepo repository.SessionRepository
	commerce    CommerceAPI
	producer    *event.Producer
	logger      *slog.Logger

	guard *inflightGuard
}

// NewWishlistService creates a new wishlist service.
func NewWishlistService(
	repo repository.WishlistRepository,
	sessionRepo repository.SessionRepository,
	commerce CommerceAPI,
	producer *event.Producer,
	logger *slog.Logger,
) *WishlistService {
	return &WishlistService{
		repo:        repo,
		sessionRepo: sessionRepo,
		commerce:    commerce,
		producer:    producer,
		logger:      logger,
		guard:       newInflightGuard(),
	}
}

// token returns the stored bearer token, or "" when the user has no live
// session. An anonymous user's wishlist mutations stay local.
func (s *WishlistService) token(ctx context.Context, userID string) (string, error) {
	session, err := s.sessionRepo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("load session: %w", err)
	}
	if session.Expired() {
		return "", nil
	}
	return session.Token, nil
}

// load returns the user's wishlist, treating a missing key as an empty
// list.
func (s *WishlistService) load(ctx context.Context, userID string) (*domain.Wishlist, error) {
	wishlist, err := s.repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return domain.NewWishlist(userID, nil), nil
		}
		return nil, fmt.Errorf("load wishlist: %w", err)
	}
	return wishlist, nil
}

// List returns the user's wishlist.
func (s *WishlistService) List(ctx context.Context, userID string) (*domain.Wishlist, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}
	return s.load(ctx, userID)
}

// IsWishlisted reports whether the product is on the user's wishlist,
// answered from the local mirror without a network call.
func (s *WishlistService) IsWishlisted(ctx context.Context, userID, productID string) (bool, error) {
	if userID == "" {
		return false, apperrors.InvalidInput("user id is required")
	}
	productID, err := validProductID(productID)
	if err != nil {
		return false, err
	}
	wishlist, err := s.load(ctx, userID)
	if err != nil {
		return false, err
	}
	return wishlist.Has(productID), nil
}

// Add puts a product on the wishlist. Adding a product already present is a
// no-op with no network call. A second mutation for the same product while
// one is in flight is rejected with a conflict.
func (s *WishlistService) Add(ctx context.Context, userID, productID string) (*domain.Wishlist, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}
	productID, err := validProductID(productID)
	if err != nil {
		return nil, err
	}

	key := userID + "|" + productID
	if !s.guard.acquire(key) {
		return nil, apperrors.Conflict("a wishlist update for this product is already in progress")
	}
	defer s.guard.release(key)

	return s.add(ctx, userID, productID)
}

// Remove takes a product off the wishlist. Removing an absent product is a
// no-op with no network call.
func (s *WishlistService) Remove(ctx context.Context, userID, productID string) (*domain.Wishlist, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}
	productID, err := validProductID(productID)
	if err != nil {
		return nil, err
	}

	key := userID + "|" + productID
	if !s.guard.acquire(key) {
		return nil, apperrors.Conflict("a wishlist update for this product is already in progress")
	}
	defer s.guard.release(key)

	return s.remove(ctx, userID, productID)
}

// Toggle adds the product when absent and removes it when present, under a
// single in-flight guard so the two halves cannot interleave.
func (s *WishlistService) Toggle(ctx context.Context, userID, productID string) (*domain.Wishlist, bool, error) {
	if userID == "" {
		return nil, false, apperrors.InvalidInput("user id is required")
	}
	productID, err := validProductID(productID)
	if err != nil {
		return nil, false, err
	}

	key := userID + "|" + productID
	if !s.guard.acquire(key) {
		return nil, false, apperrors.Conflict("a wishlist update for this product is already in progress")
	}
	defer s.guard.release(key)

	wishlist, err := s.load(ctx, userID)
	if err != nil {
		return nil, false, err
	}

	if wishlist.Has(productID) {
		wishlist, err = s.remove(ctx, userID, productID)
		return wishlist, false, err
	}
	wishlist, err = s.add(ctx, userID, productID)
	return wishlist, true, err
}

func (s *WishlistService) add(ctx context.Context, userID, productID string) (*domain.Wishlist, error) {
	wishlist, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if wishlist.Has(productID) {
		return wishlist, nil
	}

	token, err := s.token(ctx, userID)
	if err != nil {
		return nil, err
	}
	if token == "" {
		// Anonymous: local state is final.
		wishlist.Add(productID)
		if err := s.repo.Save(ctx, wishlist); err != nil {
			return nil, fmt.Errorf("add to wishlist: %w", err)
		}
	} else {
		txn := optimisticTxn[*domain.Wishlist]{
			Snapshot: func(context.Context) (*domain.Wishlist, error) {
				return wishlist.Clone(), nil
			},
			Apply: func(ctx context.Context) error {
				wishlist.Add(productID)
				return s.repo.Save(ctx, wishlist)
			},
			Remote: func(ctx context.Context) error {
				return s.commerce.AddToWishlist(ctx, token, productID)
			},
			Rollback: func(ctx context.Context, prev *domain.Wishlist) error {
				return s.repo.Save(ctx, prev)
			},
		}
		if err := txn.Run(ctx); err != nil {
			return nil, fmt.Errorf("add to wishlist: %w", err)
		}
	}

	s.publishChanged(ctx, wishlist, productID, "added")

	s.logger.InfoContext(ctx, "wishlist product added",
		slog.String("user_id", userID),
		slog.String("product_id", productID),
	)

	return wishlist, nil
}

func (s *WishlistService) remove(ctx context.Context, userID, productID string) (*domain.Wishlist, error) {
	wishlist, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !wishlist.Has(productID) {
		return wishlist, nil
	}

	token, err := s.token(ctx, userID)
	if err != nil {
		return nil, err
	}
	if token == "" {
		wishlist.Remove(productID)
		if err := s.repo.Save(ctx, wishlist); err != nil {
			return nil, fmt.Errorf("remove from wishlist: %w", err)
		}
	} else {
		txn := optimisticTxn[*domain.Wishlist]{
			Snapshot: func(context.Context) (*domain.Wishlist, error) {
				return wishlist.Clone(), nil
			},
			Apply: func(ctx context.Context) error {
				wishlist.Remove(productID)
				return s.repo.Save(ctx, wishlist)
			},
			Remote: func(ctx context.Context) error {
				return s.commerce.RemoveFromWishlist(ctx, token, productID)
			},
			Rollback: func(ctx context.Context, prev *domain.Wishlist) error {
				return s.repo.Save(ctx, prev)
			},
		}
		if err := txn.Run(ctx); err != nil {
			return nil, fmt.Errorf("remove from wishlist: %w", err)
		}
	}

	s.publishChanged(ctx, wishlist, productID, "removed")

	s.logger.InfoContext(ctx, "wishlist product removed",
		slog.String("user_id", userID),
		slog.String("product_id", productID),
	)

	return wishlist, nil
}

// Refresh replaces the local wishlist with the upstream one. Local entries
// not present upstream are dropped, not merged back. On fetch failure the
// local mirror is left untouched.
func (s *WishlistService) Refresh(ctx context.Context, userID string) (*domain.Wishlist, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}

	token, err := s.token(ctx, userID)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, apperrors.Unauthorized("no active session")
	}

	ids, err := s.commerce.FetchWishlist(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("refresh wishlist: %w", err)
	}

	wishlist := domain.NewWishlist(userID, ids)
	if err := s.repo.Save(ctx, wishlist); err != nil {
		return nil, fmt.Errorf("save wishlist: %w", err)
	}

	s.publishChanged(ctx, wishlist, "", "refreshed")

	s.logger.InfoContext(ctx, "wishlist refreshed",
		slog.String("user_id", userID),
		slog.Int("size", wishlist.Len()),
	)

	return wishlist, nil
}

// publishChanged publishes a wishlist.changed event; log but do not fail on
// error.
func (s *WishlistService) publishChanged(ctx context.Context, wishlist *domain.Wishlist, productID, action string) {
	if err := s.producer.PublishWishlistChanged(ctx, wishlist, productID, action); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish wishlist.changed event",
			slog.String("user_id", wishlist.UserID),
			slog.String("action", action),
			slog.String("error", err.Error()),
		)
	}
}
