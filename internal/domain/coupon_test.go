package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCouponDiscount(t *testing.T) {
	tests := []struct {
		name     string
		coupon   Coupon
		subtotal int64
		want     int64
	}{
		{
			name:     "percentage",
			coupon:   Coupon{DiscountType: DiscountTypePercentage, DiscountValue: 10},
			subtotal: 1600,
			want:     160,
		},
		{
			name:     "percentage rounds half up",
			coupon:   Coupon{DiscountType: DiscountTypePercentage, DiscountValue: 15},
			subtotal: 999,
			want:     150,
		},
		{
			name:     "percentage capped by max discount",
			coupon:   Coupon{DiscountType: DiscountTypePercentage, DiscountValue: 10, MaxDiscount: 100},
			subtotal: 1600,
			want:     100,
		},
		{
			name:     "zero max discount means unbounded",
			coupon:   Coupon{DiscountType: DiscountTypePercentage, DiscountValue: 50},
			subtotal: 10000,
			want:     5000,
		},
		{
			name:     "fixed amount",
			coupon:   Coupon{DiscountType: DiscountTypeFixed, DiscountValue: 2.50},
			subtotal: 1600,
			want:     250,
		},
		{
			name:     "fixed amount clamped to subtotal",
			coupon:   Coupon{DiscountType: DiscountTypeFixed, DiscountValue: 5},
			subtotal: 300,
			want:     300,
		},
		{
			name:     "percentage clamped to subtotal",
			coupon:   Coupon{DiscountType: DiscountTypePercentage, DiscountValue: 200},
			subtotal: 1000,
			want:     1000,
		},
		{
			name:     "negative value yields nothing",
			coupon:   Coupon{DiscountType: DiscountTypeFixed, DiscountValue: -5},
			subtotal: 1000,
			want:     0,
		},
		{
			name:     "unknown type yields nothing",
			coupon:   Coupon{DiscountType: "bogo", DiscountValue: 10},
			subtotal: 1000,
			want:     0,
		},
		{
			name:     "zero subtotal yields nothing",
			coupon:   Coupon{DiscountType: DiscountTypePercentage, DiscountValue: 10},
			subtotal: 0,
			want:     0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.coupon.Discount(tt.subtotal))
		})
	}
}

func TestGrandTotal(t *testing.T) {
	assert.Equal(t, int64(1440), GrandTotal(1600, 160))
	assert.Equal(t, int64(0), GrandTotal(100, 100))
	assert.Equal(t, int64(0), GrandTotal(100, 500))
}
