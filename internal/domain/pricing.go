package domain

import "math"

// PriceSource carries every price field an upstream cart line may expose.
// Fields are pointers so an absent field is distinguishable from an explicit
// zero. All amounts are in cents.
type PriceSource struct {
	VariantActualPrice   *int64
	ItemActualPrice      *int64
	VariantPrice         *int64
	ItemTotalPrice       *int64
	VariantOriginalPrice *int64
	ItemOriginalPrice    *int64
	DiscountPercent      *float64
}

// firstPrice returns the first non-nil candidate.
func firstPrice(candidates ...*int64) (int64, bool) {
	for _, c := range candidates {
		if c != nil {
			return *c, true
		}
	}
	return 0, false
}

// clampDiscountPercent bounds a discount percentage to [0, 99] so the
// back-calculation below never divides by zero or inflates the original
// price past 100x.
func clampDiscountPercent(p float64) float64 {
	if math.IsNaN(p) || p < 0 {
		return 0
	}
	if p > 99 {
		return 99
	}
	return p
}

// ResolveUnitPrices derives the unit actual and original prices for a cart
// line from whatever subset of price fields the upstream response included.
//
// The actual price is the first present of: variant actual price, item
// actual price, variant price, item total price. The original price is the
// first present of: variant original price, item original price; when
// neither is present but a discount percentage is, it is back-calculated as
// round(actual * 100 / (100 - percent)). The original price never ends up
// below the actual price.
func ResolveUnitPrices(src PriceSource) (actual, original int64, ok bool) {
	actual, ok = firstPrice(src.VariantActualPrice, src.ItemActualPrice, src.VariantPrice, src.ItemTotalPrice)
	if !ok {
		return 0, 0, false
	}
	if actual < 0 {
		actual = 0
	}

	original, found := firstPrice(src.VariantOriginalPrice, src.ItemOriginalPrice)
	if !found {
		original = actual
		if src.DiscountPercent != nil {
			p := clampDiscountPercent(*src.DiscountPercent)
			if p > 0 {
				original = int64(math.Round(float64(actual) * 100 / (100 - p)))
			}
		}
	}
	if original < actual {
		original = actual
	}
	return actual, original, true
}
