package repository

import (
	"context"

	"github.com/whitepeony/storefront/internal/domain"
)

// CartRepository caches the reconciled cart snapshot and the applied coupon
// per user. Implementations return apperrors.ErrNotFound when no value
// exists.
type CartRepository interface {
	Get(ctx context.Context, userID string) (*domain.CartSnapshot, error)
	Save(ctx context.Context, snapshot *domain.CartSnapshot) error
	Delete(ctx context.Context, userID string) error

	GetCoupon(ctx context.Context, userID string) (*domain.Coupon, error)
	SaveCoupon(ctx context.Context, userID string, coupon *domain.Coupon) error
	DeleteCoupon(ctx context.Context, userID string) error
}

// WishlistRepository persists the wishlist as one whole value per user.
// Mutations always replace the full list.
type WishlistRepository interface {
	Get(ctx context.Context, userID string) (*domain.Wishlist, error)
	Save(ctx context.Context, wishlist *domain.Wishlist) error
	Delete(ctx context.Context, userID string) error
}

// SessionRepository stores the authenticated session backing upstream
// calls.
type SessionRepository interface {
	Get(ctx context.Context, userID string) (*domain.Session, error)
	Save(ctx context.Context, session *domain.Session) error
	Delete(ctx context.Context, userID string) error
}
