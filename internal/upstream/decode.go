package upstream

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/whitepeony/storefront/internal/domain"
)

// The commerce API is loose about JSON types: numbers arrive as numbers or
// quoted strings, identifiers as integers or strings, and optional price
// fields are sometimes null. The flex types below absorb that so the rest
// of the code works with clean Go values.

// flexID decodes an identifier that may be a JSON string or number into a
// trimmed string. null and empty values decode to "".
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexID(n.String())
	return nil
}

func (f flexID) String() string { return string(f) }

// flexInt decodes an integer that may arrive as a number or a numeric
// string. Unparseable values decode to 0 rather than failing the whole
// payload.
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = 0
		return nil
	}
	s := string(b)
	if b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) {
		*f = 0
		return nil
	}
	*f = flexInt(int(v))
	return nil
}

// flexFloat decodes a float that may arrive as a number or a numeric
// string. Absent or unparseable values leave Valid false.
type flexFloat struct {
	Value float64
	Valid bool
}

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	s := string(b)
	if b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) {
		return nil
	}
	f.Value = v
	f.Valid = true
	return nil
}

// Cents returns the value converted from currency units to cents.
func (f flexFloat) Cents() int64 {
	return int64(math.Round(f.Value * 100))
}

func (f flexFloat) centsPtr() *int64 {
	if !f.Valid {
		return nil
	}
	c := f.Cents()
	return &c
}

func (f flexFloat) floatPtr() *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Value
	return &v
}

// rawVariant is a product variant as embedded in a cart line.
type rawVariant struct {
	ID              flexID    `json:"id"`
	VariantID       flexID    `json:"variant_id"`
	Name            string    `json:"name"`
	SKU             string    `json:"sku"`
	Price           flexFloat `json:"price"`
	ActualPrice     flexFloat `json:"actual_price"`
	OriginalPrice   flexFloat `json:"original_price"`
	DiscountPercent flexFloat `json:"discount_percent"`
}

// rawProduct is the product object some cart line shapes nest the ID under.
type rawProduct struct {
	ID       flexID `json:"id"`
	Name     string `json:"name"`
	SKU      string `json:"sku"`
	ImageURL string `json:"image_url"`
}

// rawCartLine is one cart entry as the commerce API returns it. Which price
// fields are populated varies by product type.
type rawCartLine struct {
	ID            flexID      `json:"id"`
	ProductID     flexID      `json:"product_id"`
	VariantID     flexID      `json:"variant_id"`
	Product       *rawProduct `json:"product"`
	Name          string      `json:"name"`
	Quantity      flexInt     `json:"quantity"`
	Price         flexFloat   `json:"price"`
	ActualPrice   flexFloat   `json:"actual_price"`
	OriginalPrice flexFloat   `json:"original_price"`
	TotalPrice    flexFloat   `json:"total_price"`
	ImageURL      string      `json:"image_url"`
	Variant       *rawVariant `json:"variant"`
}

// productID resolves the line's product identifier, trying the direct
// fields before the nested product object.
func (l rawCartLine) productID() string {
	if id := l.ProductID.String(); id != "" {
		return id
	}
	if id := l.ID.String(); id != "" {
		return id
	}
	if l.Product != nil {
		return l.Product.ID.String()
	}
	return ""
}

// toItem converts a raw line into a reconciled cart item. Lines with no
// resolvable product ID or no usable price are dropped, reported via ok.
func (l rawCartLine) toItem() (domain.CartItem, bool) {
	productID := domain.NormalizeProductID(l.productID())
	if productID == "" {
		return domain.CartItem{}, false
	}

	src := domain.PriceSource{
		ItemActualPrice:   l.ActualPrice.centsPtr(),
		ItemTotalPrice:    l.TotalPrice.centsPtr(),
		ItemOriginalPrice: l.OriginalPrice.centsPtr(),
	}
	if src.ItemActualPrice == nil && l.Price.Valid {
		// A bare price field counts as the item total when nothing
		// more specific is present.
		src.ItemTotalPrice = l.Price.centsPtr()
	}

	item := domain.CartItem{
		ProductID: productID,
		VariantID: l.VariantID.String(),
		Name:      l.Name,
		Quantity:  int(l.Quantity),
		ImageURL:  l.ImageURL,
	}
	if l.Product != nil {
		if item.Name == "" {
			item.Name = l.Product.Name
		}
		if item.ImageURL == "" {
			item.ImageURL = l.Product.ImageURL
		}
		item.SKU = l.Product.SKU
	}
	if l.Variant != nil {
		// Explicit variant_id wins over the variant's own identifiers.
		if item.VariantID == "" {
			item.VariantID = l.Variant.VariantID.String()
		}
		if item.VariantID == "" {
			item.VariantID = l.Variant.ID.String()
		}
		if l.Variant.SKU != "" {
			item.SKU = l.Variant.SKU
		}
		src.VariantActualPrice = l.Variant.ActualPrice.centsPtr()
		src.VariantPrice = l.Variant.Price.centsPtr()
		src.VariantOriginalPrice = l.Variant.OriginalPrice.centsPtr()
		src.DiscountPercent = l.Variant.DiscountPercent.floatPtr()
	}

	actual, original, ok := domain.ResolveUnitPrices(src)
	if !ok {
		return domain.CartItem{}, false
	}
	item.UnitActualPrice = actual
	item.UnitOriginalPrice = original

	if item.Quantity < domain.MinQuantityPerItem {
		item.Quantity = domain.MinQuantityPerItem
	}
	if item.Quantity > domain.MaxQuantityPerItem {
		item.Quantity = domain.MaxQuantityPerItem
	}
	return item, true
}

// rawCartResponse covers the cart endpoint's envelope variants: lines under
// "items", "products", or "cart_items".
type rawCartResponse struct {
	CartID    flexID        `json:"cart_id"`
	ID        flexID        `json:"id"`
	Items     []rawCartLine `json:"items"`
	Products  []rawCartLine `json:"products"`
	CartItems []rawCartLine `json:"cart_items"`
}

func (r rawCartResponse) lines() []rawCartLine {
	switch {
	case len(r.Items) > 0:
		return r.Items
	case len(r.Products) > 0:
		return r.Products
	default:
		return r.CartItems
	}
}

func (r rawCartResponse) cartID() string {
	if id := r.CartID.String(); id != "" {
		return id
	}
	return r.ID.String()
}

// rawWishlistEntry is one wishlist element: a bare ID, or an object keyed
// by id, product_id, or a nested product.id.
type rawWishlistEntry struct {
	id string
}

func (e *rawWishlistEntry) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] != '{' {
		var id flexID
		if err := json.Unmarshal(b, &id); err != nil {
			return err
		}
		e.id = id.String()
		return nil
	}
	var obj struct {
		ID        flexID      `json:"id"`
		ProductID flexID      `json:"product_id"`
		Product   *rawProduct `json:"product"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	switch {
	case obj.ID.String() != "":
		e.id = obj.ID.String()
	case obj.ProductID.String() != "":
		e.id = obj.ProductID.String()
	case obj.Product != nil:
		e.id = obj.Product.ID.String()
	}
	return nil
}

// decodeWishlistIDs accepts either a bare JSON array or an object wrapping
// the array under "items", "products", or "wishlist". Entries without a
// resolvable ID are discarded.
func decodeWishlistIDs(b []byte) ([]string, error) {
	b = bytes.TrimSpace(b)
	var entries []rawWishlistEntry
	if len(b) > 0 && b[0] == '[' {
		if err := json.Unmarshal(b, &entries); err != nil {
			return nil, err
		}
	} else {
		var wrapper struct {
			Items    []rawWishlistEntry `json:"items"`
			Products []rawWishlistEntry `json:"products"`
			Wishlist []rawWishlistEntry `json:"wishlist"`
		}
		if err := json.Unmarshal(b, &wrapper); err != nil {
			return nil, err
		}
		switch {
		case len(wrapper.Items) > 0:
			entries = wrapper.Items
		case len(wrapper.Products) > 0:
			entries = wrapper.Products
		default:
			entries = wrapper.Wishlist
		}
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if id := domain.NormalizeProductID(e.id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}
