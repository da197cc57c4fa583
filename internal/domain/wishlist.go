package domain

import (
	"strings"
	"time"
)

// NormalizeProductID canonicalizes a product identifier for membership
// checks. Upstream responses mix numeric and string IDs, so everything is
// compared as a trimmed string.
func NormalizeProductID(id string) string {
	return strings.TrimSpace(id)
}

// Wishlist is a deduplicated, insertion-ordered set of product IDs for one
// user. IDs are stored normalized.
type Wishlist struct {
	UserID    string    `json:"user_id"`
	IDs       []string  `json:"ids"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewWishlist builds a wishlist from the given IDs, normalizing and
// dropping duplicates and empty entries.
func NewWishlist(userID string, ids []string) *Wishlist {
	w := &Wishlist{
		UserID:    userID,
		IDs:       make([]string, 0, len(ids)),
		UpdatedAt: time.Now().UTC(),
	}
	for _, id := range ids {
		w.Add(id)
	}
	return w
}

// Has reports whether the product is on the wishlist.
func (w *Wishlist) Has(productID string) bool {
	id := NormalizeProductID(productID)
	for _, existing := range w.IDs {
		if existing == id {
			return true
		}
	}
	return false
}

// Add inserts the product, reporting whether the list changed. Empty IDs
// are ignored.
func (w *Wishlist) Add(productID string) bool {
	id := NormalizeProductID(productID)
	if id == "" || w.Has(id) {
		return false
	}
	w.IDs = append(w.IDs, id)
	w.UpdatedAt = time.Now().UTC()
	return true
}

// Remove deletes the product, reporting whether the list changed.
func (w *Wishlist) Remove(productID string) bool {
	id := NormalizeProductID(productID)
	for i, existing := range w.IDs {
		if existing == id {
			w.IDs = append(w.IDs[:i], w.IDs[i+1:]...)
			w.UpdatedAt = time.Now().UTC()
			return true
		}
	}
	return false
}

// Replace swaps the full membership for the given IDs, normalizing and
// deduplicating as NewWishlist does.
func (w *Wishlist) Replace(ids []string) {
	w.IDs = w.IDs[:0]
	for _, id := range ids {
		w.Add(id)
	}
	w.UpdatedAt = time.Now().UTC()
}

// Clone returns a deep copy, used to snapshot state before an optimistic
// mutation.
func (w *Wishlist) Clone() *Wishlist {
	ids := make([]string, len(w.IDs))
	copy(ids, w.IDs)
	return &Wishlist{UserID: w.UserID, IDs: ids, UpdatedAt: w.UpdatedAt}
}

// Len returns the number of products on the list.
func (w *Wishlist) Len() int {
	return len(w.IDs)
}
