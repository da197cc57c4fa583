package domain

import "time"

// Quantity bounds for a single cart line.
const (
	MinQuantityPerItem = 1
	MaxQuantityPerItem = 99
)

// CartItem is a single reconciled cart line. Prices are unit prices in cents;
// UnitActualPrice is the discounted price the customer pays and is never
// greater than UnitOriginalPrice.
type CartItem struct {
	ProductID         string `json:"product_id"`
	VariantID         string `json:"variant_id,omitempty"`
	Name              string `json:"name"`
	SKU               string `json:"sku,omitempty"`
	Quantity          int    `json:"quantity"`
	UnitOriginalPrice int64  `json:"unit_original_price"`
	UnitActualPrice   int64  `json:"unit_actual_price"`
	ImageURL          string `json:"image_url,omitempty"`
}

// LineOriginal returns the pre-discount line total in cents.
func (i CartItem) LineOriginal() int64 {
	return i.UnitOriginalPrice * int64(i.Quantity)
}

// LineActual returns the discounted line total in cents.
func (i CartItem) LineActual() int64 {
	return i.UnitActualPrice * int64(i.Quantity)
}

// CartSnapshot is a fully recomputed, internally consistent view of the
// remote cart at a point in time. Snapshots replace prior state wholesale;
// derived totals are never patched in place.
type CartSnapshot struct {
	CartID             string     `json:"cart_id,omitempty"`
	UserID             string     `json:"user_id"`
	Items              []CartItem `json:"items"`
	SubtotalOriginal   int64      `json:"subtotal_original"`
	SubtotalDiscounted int64      `json:"subtotal_discounted"`
	TotalSavings       int64      `json:"total_savings"`
	FetchedAt          time.Time  `json:"fetched_at"`
}

// EmptySnapshot returns a snapshot with no items and zeroed totals.
func EmptySnapshot(userID string) *CartSnapshot {
	return &CartSnapshot{
		UserID:    userID,
		Items:     []CartItem{},
		FetchedAt: time.Now().UTC(),
	}
}

// Recompute recalculates all derived totals from the item lines. Savings
// never go negative even if a line carries an original price below the
// actual one.
func (s *CartSnapshot) Recompute() {
	var original, discounted int64
	for _, item := range s.Items {
		original += item.LineOriginal()
		discounted += item.LineActual()
	}
	s.SubtotalOriginal = original
	s.SubtotalDiscounted = discounted
	s.TotalSavings = original - discounted
	if s.TotalSavings < 0 {
		s.TotalSavings = 0
	}
}

// IsEmpty reports whether the snapshot has no items.
func (s *CartSnapshot) IsEmpty() bool {
	return len(s.Items) == 0
}

// ItemCount returns the total quantity across all lines.
func (s *CartSnapshot) ItemCount() int {
	var count int
	for _, item := range s.Items {
		count += item.Quantity
	}
	return count
}

// FindItem returns the index of the line matching the given product and
// variant IDs, or -1 if not present.
func (s *CartSnapshot) FindItem(productID, variantID string) int {
	for i := range s.Items {
		if s.Items[i].ProductID == productID && s.Items[i].VariantID == variantID {
			return i
		}
	}
	return -1
}
