package service

import (
	"context"
	"io"
	"log/slog"

	"github.com/stretchr/testify/mock"

	"github.com/whitepeony/storefront/internal/domain"
	"github.com/whitepeony/storefront/internal/event"
	"github.com/whitepeony/storefront/internal/upstream"
	pkgkafka "github.com/whitepeony/storefront/pkg/kafka"
)

type mockCartRepository struct {
	mock.Mock
}

func (m *mockCartRepository) Get(ctx context.Context, userID string) (*domain.CartSnapshot, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CartSnapshot), args.Error(1)
}

func (m *mockCartRepository) Save(ctx context.Context, snapshot *domain.CartSnapshot) error {
	args := m.Called(ctx, snapshot)
	return args.Error(0)
}

func (m *mockCartRepository) Delete(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *mockCartRepository) GetCoupon(ctx context.Context, userID string) (*domain.Coupon, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Coupon), args.Error(1)
}

func (m *mockCartRepository) SaveCoupon(ctx context.Context, userID string, coupon *domain.Coupon) error {
	args := m.Called(ctx, userID, coupon)
	return args.Error(0)
}

func (m *mockCartRepository) DeleteCoupon(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type mockWishlistRepository struct {
	mock.Mock
}

func (m *mockWishlistRepository) Get(ctx context.Context, userID string) (*domain.Wishlist, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wishlist), args.Error(1)
}

func (m *mockWishlistRepository) Save(ctx context.Context, wishlist *domain.Wishlist) error {
	args := m.Called(ctx, wishlist)
	return args.Error(0)
}

func (m *mockWishlistRepository) Delete(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type mockSessionRepository struct {
	mock.Mock
}

func (m *mockSessionRepository) Get(ctx context.Context, userID string) (*domain.Session, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *mockSessionRepository) Save(ctx context.Context, session *domain.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *mockSessionRepository) Delete(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type mockCommerce struct {
	mock.Mock
}

func (m *mockCommerce) FetchCart(ctx context.Context, token string) (*upstream.CartData, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*upstream.CartData), args.Error(1)
}

func (m *mockCommerce) UpdateCart(ctx context.Context, token, productID, variantID string, quantity int) error {
	args := m.Called(ctx, token, productID, variantID, quantity)
	return args.Error(0)
}

func (m *mockCommerce) RemoveCartItem(ctx context.Context, token, productID, variantID string) error {
	args := m.Called(ctx, token, productID, variantID)
	return args.Error(0)
}

func (m *mockCommerce) ListCoupons(ctx context.Context, token string) ([]domain.Coupon, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Coupon), args.Error(1)
}

func (m *mockCommerce) PlaceOrder(ctx context.Context, token string, req domain.OrderRequest) (*domain.OrderResult, error) {
	args := m.Called(ctx, token, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OrderResult), args.Error(1)
}

func (m *mockCommerce) FetchWishlist(ctx context.Context, token string) ([]string, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockCommerce) AddToWishlist(ctx context.Context, token, productID string) error {
	args := m.Called(ctx, token, productID)
	return args.Error(0)
}

func (m *mockCommerce) RemoveFromWishlist(ctx context.Context, token, productID string) error {
	args := m.Called(ctx, token, productID)
	return args.Error(0)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testProducer() *event.Producer {
	logger := testLogger()
	cfg := pkgkafka.DefaultProducerConfig([]string{"localhost:9092"})
	return event.NewProducer(pkgkafka.NewProducer(cfg, logger), logger)
}
