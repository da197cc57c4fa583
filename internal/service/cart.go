package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/whitepeony/storefront/internal/domain"
	"github.com/whitepeony/storefront/internal/event"
	"github.com/whitepeony/storefront/internal/repository"
	"github.com/whitepeony/storefront/internal/upstream"
	apperrors "github.com/whitepeony/storefront/pkg/errors"
)

// CommerceAPI is the subset of the commerce platform client the services
// use. upstream.CommerceClient satisfies this.
type CommerceAPI interface {
	FetchCart(ctx context.Context, token string) (*upstream.CartData, error)
	UpdateCart(ctx context.Context, token, productID, variantID string, quantity int) error
	RemoveCartItem(ctx context.Context, token, productID, variantID string) error
	ListCoupons(ctx context.Context, token string) ([]domain.Coupon, error)
	PlaceOrder(ctx context.Context, token string, req domain.OrderRequest) (*domain.OrderResult, error)
	FetchWishlist(ctx context.Context, token string) ([]string, error)
	AddToWishlist(ctx context.Context, token, productID string) error
	RemoveFromWishlist(ctx context.Context, token, productID string) error
}

// CartView is the response shape for all cart operations: the current
// snapshot plus coupon-derived totals, always computed together.
type CartView struct {
	Snapshot   *domain.CartSnapshot `json:"cart"`
	Coupon     *domain.Coupon       `json:"coupon,omitempty"`
	Discount   int64                `json:"discount"`
	GrandTotal int64                `json:"grand_total"`
}

// CartService reconciles the remote cart into locally cached snapshots.
// Totals are always recomputed from line items; totals reported by the
// commerce platform are never trusted.
type CartService struct {
	cartRepo    repository.CartRepository
	sessionRepo repository.SessionRepository
	commerce    CommerceAPI
	producer    *event.Producer
	logger      *slog.Logger

	lineGuard *inflightGuard
	fetchGen  *generationGuard
}

// NewCartService creates a new cart service.
func NewCartService(
	cartRepo repository.CartRepository,
	sessionRepo repository.SessionRepository,
	commerce CommerceAPI,
	producer *event.Producer,
	logger *slog.Logger,
) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		sessionRepo: sessionRepo,
		commerce:    commerce,
		producer:    producer,
		logger:      logger,
		lineGuard:   newInflightGuard(),
		fetchGen:    newGenerationGuard(),
	}
}

// invalidIDValues are product IDs that mobile clients have been observed
// sending when a lookup failed on their side.
var invalidIDValues = map[string]struct{}{
	"": {}, "nan": {}, "null": {}, "undefined": {},
}

func validProductID(id string) (string, error) {
	id = domain.NormalizeProductID(id)
	if _, bad := invalidIDValues[strings.ToLower(id)]; bad {
		return "", apperrors.InvalidInput("product id is missing or malformed")
	}
	return id, nil
}

// token resolves the user's session token for upstream calls.
func (s *CartService) token(ctx context.Context, userID string) (string, error) {
	session, err := s.sessionRepo.Get(ctx, userID)
	if err != nil {
		return "", apperrors.Unauthorized("no active session")
	}
	if session.Expired() {
		return "", apperrors.Unauthorized("session expired")
	}
	return session.Token, nil
}

// GetCart fetches the remote cart, reconciles it into a fresh snapshot, and
// caches it. When the fetch fails the cached snapshot is reset to empty
// before the error propagates, so stale totals are never served. Responses
// that lose the race to a newer fetch are discarded.
func (s *CartService) GetCart(ctx context.Context, userID string) (*CartView, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}

	token, err := s.token(ctx, userID)
	if err != nil {
		return nil, err
	}

	gen := s.fetchGen.next(userID)

	data, err := s.commerce.FetchCart(ctx, token)
	if err != nil {
		if s.fetchGen.isCurrent(userID, gen) {
			empty := domain.EmptySnapshot(userID)
			if saveErr := s.cartRepo.Save(ctx, empty); saveErr != nil {
				s.logger.ErrorContext(ctx, "failed to reset cart snapshot after fetch failure",
					slog.String("user_id", userID),
					slog.String("error", saveErr.Error()),
				)
			}
			if delErr := s.cartRepo.DeleteCoupon(ctx, userID); delErr != nil {
				s.logger.ErrorContext(ctx, "failed to clear coupon after fetch failure",
					slog.String("user_id", userID),
					slog.String("error", delErr.Error()),
				)
			}
		}
		return nil, fmt.Errorf("fetch cart: %w", err)
	}

	if !s.fetchGen.isCurrent(userID, gen) {
		// A newer fetch finished first; serve its snapshot instead of
		// clobbering it with this one.
		s.logger.InfoContext(ctx, "discarding superseded cart fetch",
			slog.String("user_id", userID),
		)
		snapshot, repoErr := s.cartRepo.Get(ctx, userID)
		if repoErr != nil {
			return nil, fmt.Errorf("load current cart snapshot: %w", repoErr)
		}
		return s.buildView(ctx, snapshot)
	}

	snapshot := &domain.CartSnapshot{
		CartID:    data.CartID,
		UserID:    userID,
		Items:     data.Items,
		FetchedAt: time.Now().UTC(),
	}
	snapshot.Recompute()

	if err := s.cartRepo.Save(ctx, snapshot); err != nil {
		return nil, fmt.Errorf("save cart snapshot: %w", err)
	}

	// Publish event; log but do not fail on error.
	if err := s.producer.PublishCartSynced(ctx, snapshot); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.synced event",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "cart synced",
		slog.String("user_id", userID),
		slog.Int("item_count", snapshot.ItemCount()),
		slog.Int64("subtotal", snapshot.SubtotalDiscounted),
	)

	return s.buildView(ctx, snapshot)
}

// UpdateQuantity applies a signed quantity change to a cart line and
// refetches the cart for authoritative state. Changes that would push the
// quantity outside [1, 99] are rejected locally without touching the
// network. A second update for the same line while one is in flight is
// rejected with a conflict.
func (s *CartService) UpdateQuantity(ctx context.Context, userID, productID, variantID string, delta int) (*CartView, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}
	productID, err := validProductID(productID)
	if err != nil {
		return nil, err
	}

	snapshot, err := s.cartRepo.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("load cart snapshot: %w", err)
		}
		view, fetchErr := s.GetCart(ctx, userID)
		if fetchErr != nil {
			return nil, fetchErr
		}
		snapshot = view.Snapshot
	}

	idx := snapshot.FindItem(productID, variantID)
	if idx < 0 && variantID == "" {
		for i := range snapshot.Items {
			if snapshot.Items[i].ProductID == productID {
				idx = i
				break
			}
		}
	}
	if idx < 0 {
		return nil, apperrors.NotFound("cart item", productID)
	}
	item := snapshot.Items[idx]
	if variantID == "" {
		variantID = item.VariantID
	}

	quantity := item.Quantity + delta
	if quantity < domain.MinQuantityPerItem || quantity > domain.MaxQuantityPerItem {
		return nil, apperrors.InvalidInput(fmt.Sprintf("quantity must stay between %d and %d", domain.MinQuantityPerItem, domain.MaxQuantityPerItem))
	}

	lineKey := userID + "|" + productID + "|" + variantID
	if !s.lineGuard.acquire(lineKey) {
		return nil, apperrors.Conflict("an update for this item is already in progress")
	}
	defer s.lineGuard.release(lineKey)

	token, err := s.token(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.commerce.UpdateCart(ctx, token, productID, variantID, quantity); err != nil {
		return nil, fmt.Errorf("update quantity: %w", err)
	}

	s.logger.InfoContext(ctx, "cart quantity updated",
		slog.String("user_id", userID),
		slog.String("product_id", productID),
		slog.Int("delta", delta),
		slog.Int("quantity", quantity),
	)

	return s.GetCart(ctx, userID)
}

// RemoveItem deletes a cart line and refetches the cart. When no variant ID
// is given it is resolved from the cached snapshot, matching how the line
// was stored upstream.
func (s *CartService) RemoveItem(ctx context.Context, userID, productID, variantID string) (*CartView, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}
	productID, err := validProductID(productID)
	if err != nil {
		return nil, err
	}

	if variantID == "" {
		if snapshot, repoErr := s.cartRepo.Get(ctx, userID); repoErr == nil {
			for _, item := range snapshot.Items {
				if item.ProductID == productID {
					variantID = item.VariantID
					break
				}
			}
		}
	}

	lineKey := userID + "|" + productID + "|" + variantID
	if !s.lineGuard.acquire(lineKey) {
		return nil, apperrors.Conflict("an update for this item is already in progress")
	}
	defer s.lineGuard.release(lineKey)

	token, err := s.token(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.commerce.RemoveCartItem(ctx, token, productID, variantID); err != nil {
		return nil, fmt.Errorf("remove item: %w", err)
	}

	s.logger.InfoContext(ctx, "cart item removed",
		slog.String("user_id", userID),
		slog.String("product_id", productID),
	)

	return s.GetCart(ctx, userID)
}

// ListCoupons returns the promo codes available to the user.
func (s *CartService) ListCoupons(ctx context.Context, userID string) ([]domain.Coupon, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}
	token, err := s.token(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.commerce.ListCoupons(ctx, token)
}

// ApplyCoupon validates a promo code against the upstream list and stores
// it. The discount itself is never stored; it is re-derived from the
// current subtotal on every view.
func (s *CartService) ApplyCoupon(ctx context.Context, userID, code string) (*CartView, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, apperrors.InvalidInput("coupon code is required")
	}

	snapshot, err := s.cartRepo.Get(ctx, userID)
	if err != nil || snapshot.IsEmpty() {
		return nil, apperrors.InvalidInput("cannot apply a coupon to an empty cart")
	}

	token, err := s.token(ctx, userID)
	if err != nil {
		return nil, err
	}

	coupons, err := s.commerce.ListCoupons(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("validate coupon: %w", err)
	}

	var matched *domain.Coupon
	for i := range coupons {
		if strings.EqualFold(coupons[i].Code, code) {
			matched = &coupons[i]
			break
		}
	}
	if matched == nil {
		return nil, apperrors.NotFound("coupon", code)
	}

	if err := s.cartRepo.SaveCoupon(ctx, userID, matched); err != nil {
		return nil, fmt.Errorf("save coupon: %w", err)
	}

	s.logger.InfoContext(ctx, "coupon applied",
		slog.String("user_id", userID),
		slog.String("code", matched.Code),
	)

	return s.buildView(ctx, snapshot)
}

// RemoveCoupon clears the applied coupon.
func (s *CartService) RemoveCoupon(ctx context.Context, userID string) (*CartView, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}

	if err := s.cartRepo.DeleteCoupon(ctx, userID); err != nil {
		return nil, fmt.Errorf("remove coupon: %w", err)
	}

	snapshot, err := s.cartRepo.Get(ctx, userID)
	if err != nil {
		snapshot = domain.EmptySnapshot(userID)
	}
	return s.buildView(ctx, snapshot)
}

// PlaceOrder submits the order upstream, then clears the local cart state.
func (s *CartService) PlaceOrder(ctx context.Context, userID string, req domain.OrderRequest) (*domain.OrderResult, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}
	if req.CartID == "" {
		return nil, apperrors.InvalidInput("cart id is required")
	}
	if req.AddressID == "" {
		return nil, apperrors.InvalidInput("address id is required")
	}
	if req.ShippingID == "" {
		return nil, apperrors.InvalidInput("shipping id is required")
	}

	token, err := s.token(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.CouponCode == "" {
		coupon, couponErr := s.cartRepo.GetCoupon(ctx, userID)
		switch {
		case couponErr == nil:
			req.CouponCode = coupon.Code
		case !errors.Is(couponErr, apperrors.ErrNotFound):
			s.logger.WarnContext(ctx, "could not load stored coupon for checkout",
				slog.String("user_id", userID),
				slog.String("error", couponErr.Error()),
			)
		}
	}

	result, err := s.commerce.PlaceOrder(ctx, token, req)
	if err != nil {
		return nil, fmt.Errorf("place order: %w", err)
	}

	if err := s.cartRepo.Delete(ctx, userID); err != nil {
		s.logger.ErrorContext(ctx, "failed to clear cart after order",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}
	if err := s.cartRepo.DeleteCoupon(ctx, userID); err != nil {
		s.logger.ErrorContext(ctx, "failed to clear coupon after order",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}

	// Publish event; log but do not fail on error.
	if err := s.producer.PublishOrderPlaced(ctx, userID, result); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.placed event",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "order placed",
		slog.String("user_id", userID),
		slog.String("order_id", result.OrderID),
		slog.Int64("grand_total", result.GrandTotal),
	)

	return result, nil
}

// buildView assembles the response view, re-deriving the coupon discount
// from the current subtotal. A coupon on an empty cart is cleared rather
// than reported.
func (s *CartService) buildView(ctx context.Context, snapshot *domain.CartSnapshot) (*CartView, error) {
	view := &CartView{
		Snapshot:   snapshot,
		GrandTotal: snapshot.SubtotalDiscounted,
	}

	coupon, err := s.cartRepo.GetCoupon(ctx, snapshot.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return view, nil
		}
		return nil, fmt.Errorf("load coupon: %w", err)
	}

	if snapshot.IsEmpty() {
		if delErr := s.cartRepo.DeleteCoupon(ctx, snapshot.UserID); delErr != nil {
			s.logger.ErrorContext(ctx, "failed to clear coupon on empty cart",
				slog.String("user_id", snapshot.UserID),
				slog.String("error", delErr.Error()),
			)
		}
		return view, nil
	}

	view.Coupon = coupon
	view.Discount = coupon.Discount(snapshot.SubtotalDiscounted)
	view.GrandTotal = domain.GrandTotal(snapshot.SubtotalDiscounted, view.Discount)
	return view, nil
}
