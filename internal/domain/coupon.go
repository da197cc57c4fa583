package domain

import "math"

// Coupon discount kinds.
const (
	DiscountTypePercentage = "percentage"
	DiscountTypeFixed      = "fixed"
)

// Coupon is a promotional code applicable to the cart subtotal. For
// percentage coupons DiscountValue is a percentage; for fixed coupons it is
// a currency amount. MaxDiscount caps percentage coupons in cents, zero
// meaning unbounded.
type Coupon struct {
	Code          string  `json:"code"`
	Description   string  `json:"description,omitempty"`
	DiscountType  string  `json:"discount_type"`
	DiscountValue float64 `json:"discount_value"`
	MaxDiscount   int64   `json:"max_discount,omitempty"`
}

// Discount computes the discount in cents for the given subtotal. The result
// is always within [0, subtotal].
func (c Coupon) Discount(subtotal int64) int64 {
	if subtotal <= 0 {
		return 0
	}
	var discount int64
	switch c.DiscountType {
	case DiscountTypePercentage:
		discount = int64(math.Round(float64(subtotal) * c.DiscountValue / 100))
		if c.MaxDiscount > 0 && discount > c.MaxDiscount {
			discount = c.MaxDiscount
		}
	case DiscountTypeFixed:
		discount = int64(math.Round(c.DiscountValue * 100))
	default:
		return 0
	}
	if discount < 0 {
		return 0
	}
	if discount > subtotal {
		return subtotal
	}
	return discount
}

// GrandTotal returns the amount payable after applying a discount, floored
// at zero.
func GrandTotal(subtotal, discount int64) int64 {
	total := subtotal - discount
	if total < 0 {
		return 0
	}
	return total
}
