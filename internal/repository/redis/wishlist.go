package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/whitepeony/storefront/internal/domain"
	apperrors "github.com/whitepeony/storefront/pkg/errors"
)

const wishlistKeyPrefix = "wishlist:"

// WishlistRepository implements repository.WishlistRepository using Redis.
// The whole list is one JSON value per user, replaced on every write.
type WishlistRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewWishlistRepository creates a Redis-backed wishlist repository.
func NewWishlistRepository(client *redis.Client, ttl time.Duration) *WishlistRepository {
	return &WishlistRepository{
		client: client,
		ttl:    ttl,
	}
}

// Get retrieves the wishlist for a user.
func (r *WishlistRepository) Get(ctx context.Context, userID string) (*domain.Wishlist, error) {
	data, err := r.client.Get(ctx, wishlistKeyPrefix+userID).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, apperrors.NotFound("wishlist", userID)
		}
		return nil, fmt.Errorf("redis get wishlist: %w", err)
	}

	var wishlist domain.Wishlist
	if err := json.Unmarshal(data, &wishlist); err != nil {
		return nil, fmt.Errorf("unmarshal wishlist: %w", err)
	}

	return &wishlist, nil
}

// Save persists the full wishlist with the configured TTL.
func (r *WishlistRepository) Save(ctx context.Context, wishlist *domain.Wishlist) error {
	data, err := json.Marshal(wishlist)
	if err != nil {
		return fmt.Errorf("marshal wishlist: %w", err)
	}

	if err := r.client.Set(ctx, wishlistKeyPrefix+wishlist.UserID, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set wishlist: %w", err)
	}

	return nil
}

// Delete removes the wishlist for a user.
func (r *WishlistRepository) Delete(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, wishlistKeyPrefix+userID).Err(); err != nil {
		return fmt.Errorf("redis del wishlist: %w", err)
	}
	return nil
}
