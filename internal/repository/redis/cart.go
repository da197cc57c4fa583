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

const (
	cartKeyPrefix   = "cart:"
	couponKeyPrefix = "cart:coupon:"
)

// CartRepository implements repository.CartRepository using Redis. The
// snapshot and coupon are stored as whole JSON values; partial updates are
// never written.
type CartRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCartRepository creates a Redis-backed cart repository.
func NewCartRepository(client *redis.Client, ttl time.Duration) *CartRepository {
	return &CartRepository{
		client: client,
		ttl:    ttl,
	}
}

// Get retrieves the cached cart snapshot for a user.
func (r *CartRepository) Get(ctx context.Context, userID string) (*domain.CartSnapshot, error) {
	key := cartKeyPrefix + userID

	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, apperrors.NotFound("cart", userID)
		}
		return nil, fmt.Errorf("redis get cart: %w", err)
	}

	var snapshot domain.CartSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal cart snapshot: %w", err)
	}

	return &snapshot, nil
}

// Save persists a cart snapshot with the configured TTL.
func (r *CartRepository) Save(ctx context.Context, snapshot *domain.CartSnapshot) error {
	key := cartKeyPrefix + snapshot.UserID

	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal cart snapshot: %w", err)
	}

	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set cart: %w", err)
	}

	return nil
}

// Delete removes the cached snapshot for a user.
func (r *CartRepository) Delete(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, cartKeyPrefix+userID).Err(); err != nil {
		return fmt.Errorf("redis del cart: %w", err)
	}
	return nil
}

// GetCoupon retrieves the applied coupon for a user.
func (r *CartRepository) GetCoupon(ctx context.Context, userID string) (*domain.Coupon, error) {
	key := couponKeyPrefix + userID

	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, apperrors.NotFound("coupon", userID)
		}
		return nil, fmt.Errorf("redis get coupon: %w", err)
	}

	var coupon domain.Coupon
	if err := json.Unmarshal(data, &coupon); err != nil {
		return nil, fmt.Errorf("unmarshal coupon: %w", err)
	}

	return &coupon, nil
}

// SaveCoupon persists the applied coupon with the configured TTL.
func (r *CartRepository) SaveCoupon(ctx context.Context, userID string, coupon *domain.Coupon) error {
	data, err := json.Marshal(coupon)
	if err != nil {
		return fmt.Errorf("marshal coupon: %w", err)
	}

	if err := r.client.Set(ctx, couponKeyPrefix+userID, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set coupon: %w", err)
	}

	return nil
}

// DeleteCoupon removes the applied coupon for a user.
func (r *CartRepository) DeleteCoupon(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, couponKeyPrefix+userID).Err(); err != nil {
		return fmt.Errorf("redis del coupon: %w", err)
	}
	return nil
}
