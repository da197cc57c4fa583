package domain

import "time"

// OrderRequest carries everything needed to place an order from the current
// cart.
type OrderRequest struct {
	CartID     string `json:"cart_id" validate:"required"`
	AddressID  string `json:"address_id" validate:"required"`
	ShippingID string `json:"shipping_id" validate:"required"`
	CouponCode string `json:"coupon_code,omitempty"`
}

// OrderResult is the upstream confirmation for a placed order. RedirectURL
// is set when the payment provider requires a browser handoff.
type OrderResult struct {
	OrderID     string    `json:"order_id"`
	Status      string    `json:"status"`
	GrandTotal  int64     `json:"grand_total"`
	RedirectURL string    `json:"redirect_url,omitempty"`
	PlacedAt    time.Time `json:"placed_at"`
}

// Session is the authenticated storefront session backing upstream calls.
type Session struct {
	UserID    string    `json:"user_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session token is past its expiry.
func (s Session) Expired() bool {
	return !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt)
}
