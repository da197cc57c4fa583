package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/whitepeony/storefront/internal/domain"
	apperrors "github.com/whitepeony/storefront/pkg/errors"
	"github.com/whitepeony/storefront/pkg/httpclient"
)

// maxResponseBytes bounds how much of an upstream body is read.
const maxResponseBytes = 4 << 20

// Doer executes HTTP requests. Both httpclient.Client and
// httpclient.CircuitBreakerClient satisfy this.
type Doer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// CartData is the decoded result of a cart fetch: the upstream cart ID plus
// the reconciled lines. Lines the API returned without a resolvable product
// ID or price are already dropped.
type CartData struct {
	CartID string
	Items  []domain.CartItem
}

// CommerceClient talks to the commerce platform's REST API. Every call
// carries the caller's bearer token; the client holds no per-user state.
type CommerceClient struct {
	http    Doer
	baseURL string
	logger  *slog.Logger
}

// NewCommerceClient creates a commerce API client. baseURL must not have a
// trailing slash.
func NewCommerceClient(doer Doer, baseURL string, logger *slog.Logger) *CommerceClient {
	return &CommerceClient{
		http:    doer,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// Ping reports whether the commerce platform is reachable. The status code
// is not inspected; reachability is enough for a readiness probe.
func (c *CommerceClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return fmt.Errorf("build ping request: %w", err)
	}
	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("ping commerce: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
	return nil
}

// FetchCart retrieves the user's cart and reconciles its lines.
func (c *CommerceClient) FetchCart(ctx context.Context, token string) (*CartData, error) {
	body, err := c.call(ctx, token, http.MethodGet, "/cart", nil)
	if err != nil {
		return nil, fmt.Errorf("fetch cart: %w", err)
	}

	var raw rawCartResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode cart response: %w", err)
	}

	lines := raw.lines()
	data := &CartData{
		CartID: raw.cartID(),
		Items:  make([]domain.CartItem, 0, len(lines)),
	}
	var dropped int
	for _, line := range lines {
		item, ok := line.toItem()
		if !ok {
			dropped++
			continue
		}
		data.Items = append(data.Items, item)
	}
	if dropped > 0 {
		c.logger.WarnContext(ctx, "dropped cart lines with unresolvable id or price",
			slog.Int("dropped", dropped),
			slog.Int("kept", len(data.Items)),
		)
	}
	return data, nil
}

// UpdateCart sets the quantity for a cart line. The response body is
// ignored; callers refetch the cart for authoritative state.
func (c *CommerceClient) UpdateCart(ctx context.Context, token, productID, variantID string, quantity int) error {
	payload := map[string]any{
		"product_id": productID,
		"quantity":   quantity,
	}
	if variantID != "" {
		payload["variant_id"] = variantID
	}
	if _, err := c.call(ctx, token, http.MethodPost, "/updatecart", payload); err != nil {
		return fmt.Errorf("update cart: %w", err)
	}
	return nil
}

// RemoveCartItem deletes a cart line by product ID, optionally scoped to a
// variant.
func (c *CommerceClient) RemoveCartItem(ctx context.Context, token, productID, variantID string) error {
	path := "/cart/product/" + url.PathEscape(productID)
	if variantID != "" {
		path += "?variant_id=" + url.QueryEscape(variantID)
	}
	if _, err := c.call(ctx, token, http.MethodDelete, path, nil); err != nil {
		return fmt.Errorf("remove cart item: %w", err)
	}
	return nil
}

type rawCoupon struct {
	Code          flexID    `json:"code"`
	Description   string    `json:"description"`
	DiscountType  string    `json:"discount_type"`
	DiscountValue flexFloat `json:"discount_value"`
	MaxDiscount   flexFloat `json:"max_discount"`
}

// ListCoupons retrieves the promo codes available to the user.
func (c *CommerceClient) ListCoupons(ctx context.Context, token string) ([]domain.Coupon, error) {
	body, err := c.call(ctx, token, http.MethodGet, "/promocode", nil)
	if err != nil {
		return nil, fmt.Errorf("list coupons: %w", err)
	}

	body = bytes.TrimSpace(body)
	var raws []rawCoupon
	if len(body) > 0 && body[0] == '[' {
		if err := json.Unmarshal(body, &raws); err != nil {
			return nil, fmt.Errorf("decode coupons response: %w", err)
		}
	} else {
		var wrapper struct {
			Items      []rawCoupon `json:"items"`
			Promocodes []rawCoupon `json:"promocodes"`
		}
		if err := json.Unmarshal(body, &wrapper); err != nil {
			return nil, fmt.Errorf("decode coupons response: %w", err)
		}
		raws = wrapper.Items
		if len(raws) == 0 {
			raws = wrapper.Promocodes
		}
	}

	coupons := make([]domain.Coupon, 0, len(raws))
	for _, r := range raws {
		code := strings.TrimSpace(r.Code.String())
		if code == "" {
			continue
		}
		coupons = append(coupons, domain.Coupon{
			Code:          code,
			Description:   r.Description,
			DiscountType:  strings.ToLower(strings.TrimSpace(r.DiscountType)),
			DiscountValue: r.DiscountValue.Value,
			MaxDiscount:   r.MaxDiscount.Cents(),
		})
	}
	return coupons, nil
}

// PlaceOrder submits the order. RedirectURL on the result is set when the
// payment provider wants a browser handoff.
func (c *CommerceClient) PlaceOrder(ctx context.Context, token string, req domain.OrderRequest) (*domain.OrderResult, error) {
	payload := map[string]any{
		"cart_id":     req.CartID,
		"address_id":  req.AddressID,
		"shipping_id": req.ShippingID,
	}
	if req.CouponCode != "" {
		payload["coupon_code"] = req.CouponCode
	}

	body, err := c.call(ctx, token, http.MethodPost, "/placeorder", payload)
	if err != nil {
		return nil, fmt.Errorf("place order: %w", err)
	}

	var raw struct {
		OrderID     flexID    `json:"order_id"`
		ID          flexID    `json:"id"`
		Status      string    `json:"status"`
		GrandTotal  flexFloat `json:"grand_total"`
		RedirectURL string    `json:"redirect_url"`
		PaymentURL  string    `json:"payment_url"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode place order response: %w", err)
	}

	result := &domain.OrderResult{
		OrderID:     raw.OrderID.String(),
		Status:      raw.Status,
		GrandTotal:  raw.GrandTotal.Cents(),
		RedirectURL: raw.RedirectURL,
		PlacedAt:    time.Now().UTC(),
	}
	if result.OrderID == "" {
		result.OrderID = raw.ID.String()
	}
	if result.RedirectURL == "" {
		result.RedirectURL = raw.PaymentURL
	}
	return result, nil
}

// FetchWishlist retrieves the user's wishlist product IDs.
func (c *CommerceClient) FetchWishlist(ctx context.Context, token string) ([]string, error) {
	body, err := c.call(ctx, token, http.MethodGet, "/wishlist", nil)
	if err != nil {
		return nil, fmt.Errorf("fetch wishlist: %w", err)
	}
	ids, err := decodeWishlistIDs(body)
	if err != nil {
		return nil, fmt.Errorf("decode wishlist response: %w", err)
	}
	return ids, nil
}

// AddToWishlist adds a product to the remote wishlist. The platform expects
// its own numeric product IDs, so IDs that parse as integers go over the
// wire as JSON numbers.
func (c *CommerceClient) AddToWishlist(ctx context.Context, token, productID string) error {
	payload := map[string]any{"product_id": productID}
	if n, err := strconv.ParseInt(productID, 10, 64); err == nil {
		payload["product_id"] = n
	}
	if _, err := c.call(ctx, token, http.MethodPost, "/wishlist/add", payload); err != nil {
		return fmt.Errorf("add to wishlist: %w", err)
	}
	return nil
}

// RemoveFromWishlist removes a product from the remote wishlist.
func (c *CommerceClient) RemoveFromWishlist(ctx context.Context, token, productID string) error {
	path := "/wishlist/product/" + url.PathEscape(productID)
	if _, err := c.call(ctx, token, http.MethodDelete, path, nil); err != nil {
		return fmt.Errorf("remove from wishlist: %w", err)
	}
	return nil
}

// call executes one authenticated request and returns the raw response
// body. Non-2xx responses are mapped to the service error taxonomy.
func (c *CommerceClient) call(ctx context.Context, token, method, path string, payload any) ([]byte, error) {
	if token == "" {
		return nil, apperrors.Unauthorized("missing session token")
	}

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("call commerce api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, httpclient.ParseResponseError(resp, "commerce")
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return data, nil
}
