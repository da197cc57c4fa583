package upstream

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whitepeony/storefront/internal/domain"
	apperrors "github.com/whitepeony/storefront/pkg/errors"
	"github.com/whitepeony/storefront/pkg/httpclient"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *CommerceClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := httpclient.DefaultConfig()
	cfg.MaxRetries = 0
	return NewCommerceClient(httpclient.New(cfg), server.URL, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestFetchCart(t *testing.T) {
	t.Run("mixed line shapes", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/cart", r.URL.Path)
			assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
			w.Write([]byte(`{
				"cart_id": 77,
				"items": [
					{
						"product_id": 10,
						"name": "Silver Needle",
						"quantity": "2",
						"variant": {"id": "v1", "actual_price": "9.00", "discount_percent": 10}
					},
					{
						"product": {"id": "20", "name": "Shou Mei"},
						"quantity": 1,
						"actual_price": 4.50,
						"original_price": 6.00
					},
					{"name": "no id or price", "quantity": 1}
				]
			}`))
		})

		data, err := client.FetchCart(context.Background(), "tok-1")
		require.NoError(t, err)

		assert.Equal(t, "77", data.CartID)
		require.Len(t, data.Items, 2)

		first := data.Items[0]
		assert.Equal(t, "10", first.ProductID)
		assert.Equal(t, "v1", first.VariantID)
		assert.Equal(t, 2, first.Quantity)
		assert.Equal(t, int64(900), first.UnitActualPrice)
		assert.Equal(t, int64(1000), first.UnitOriginalPrice)

		second := data.Items[1]
		assert.Equal(t, "20", second.ProductID)
		assert.Equal(t, "Shou Mei", second.Name)
		assert.Equal(t, int64(450), second.UnitActualPrice)
		assert.Equal(t, int64(600), second.UnitOriginalPrice)
	})

	t.Run("lines under products key", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"id": "c-1", "products": [{"id": 5, "price": "3.00", "quantity": 1}]}`))
		})

		data, err := client.FetchCart(context.Background(), "tok")
		require.NoError(t, err)
		assert.Equal(t, "c-1", data.CartID)
		require.Len(t, data.Items, 1)
		assert.Equal(t, int64(300), data.Items[0].UnitActualPrice)
	})

	t.Run("upstream error is mapped", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error": {"code": "UNAUTHORIZED", "message": "token expired"}}`))
		})

		_, err := client.FetchCart(context.Background(), "stale")
		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})

	t.Run("missing token rejected without network call", func(t *testing.T) {
		var called bool
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			called = true
		})

		_, err := client.FetchCart(context.Background(), "")
		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
		assert.False(t, called)
	})
}

func TestUpdateAndRemoveCart(t *testing.T) {
	t.Run("update posts product and quantity", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/updatecart", r.URL.Path)
			w.Write([]byte(`{}`))
		})

		err := client.UpdateCart(context.Background(), "tok", "10", "v1", 3)
		assert.NoError(t, err)
	})

	t.Run("remove encodes variant in query", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodDelete, r.Method)
			assert.Equal(t, "/cart/product/10", r.URL.Path)
			assert.Equal(t, "v 1", r.URL.Query().Get("variant_id"))
			w.Write([]byte(`{}`))
		})

		err := client.RemoveCartItem(context.Background(), "tok", "10", "v 1")
		assert.NoError(t, err)
	})
}

func TestListCoupons(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/promocode", r.URL.Path)
		w.Write([]byte(`{"items": [
			{"code": "TEA10", "discount_type": "Percentage", "discount_value": "10", "max_discount": 1.00},
			{"code": "", "discount_type": "fixed", "discount_value": 5}
		]}`))
	})

	coupons, err := client.ListCoupons(context.Background(), "tok")
	require.NoError(t, err)
	require.Len(t, coupons, 1, "coupons without a code are dropped")

	assert.Equal(t, "TEA10", coupons[0].Code)
	assert.Equal(t, domain.DiscountTypePercentage, coupons[0].DiscountType)
	assert.Equal(t, float64(10), coupons[0].DiscountValue)
	assert.Equal(t, int64(100), coupons[0].MaxDiscount)
}

func TestPlaceOrder(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/placeorder", r.URL.Path)
		w.Write([]byte(`{"id": 900, "status": "pending", "grand_total": "14.40", "payment_url": "https://pay.example/x"}`))
	})

	result, err := client.PlaceOrder(context.Background(), "tok", domain.OrderRequest{
		CartID: "77", AddressID: "a1", ShippingID: "s1",
	})
	require.NoError(t, err)

	assert.Equal(t, "900", result.OrderID)
	assert.Equal(t, int64(1440), result.GrandTotal)
	assert.Equal(t, "https://pay.example/x", result.RedirectURL)
}

func TestFetchWishlist(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{
			name: "bare array of mixed scalars",
			body: `[1, "2", " 3 "]`,
			want: []string{"1", "2", "3"},
		},
		{
			name: "object entries with id fallbacks",
			body: `{"items": [{"id": 1}, {"product_id": "2"}, {"product": {"id": 3}}, {"note": "no id"}]}`,
			want: []string{"1", "2", "3"},
		},
		{
			name: "wishlist wrapper key",
			body: `{"wishlist": [{"product_id": 9}]}`,
			want: []string{"9"},
		},
		{
			name: "empty object",
			body: `{}`,
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			})

			ids, err := client.FetchWishlist(context.Background(), "tok")
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestWishlistMutations(t *testing.T) {
	t.Run("add sends numeric id", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/wishlist/add", r.URL.Path)

			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, float64(42), body["product_id"])
			w.Write([]byte(`{}`))
		})
		assert.NoError(t, client.AddToWishlist(context.Background(), "tok", "42"))
	})

	t.Run("non-numeric id stays a string", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "sku-white-peony", body["product_id"])
			w.Write([]byte(`{}`))
		})
		assert.NoError(t, client.AddToWishlist(context.Background(), "tok", "sku-white-peony"))
	})

	t.Run("remove failure maps to taxonomy", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"message": "not on wishlist"}`))
		})
		err := client.RemoveFromWishlist(context.Background(), "tok", "42")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestPing(t *testing.T) {
	t.Run("any response counts as reachable", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Empty(t, r.Header.Get("Authorization"))
			w.WriteHeader(http.StatusNotFound)
		})
		assert.NoError(t, client.Ping(context.Background()))
	})

	t.Run("unreachable host is an error", func(t *testing.T) {
		cfg := httpclient.DefaultConfig()
		cfg.MaxRetries = 0
		client := NewCommerceClient(httpclient.New(cfg), "http://127.0.0.1:1", slog.New(slog.NewTextHandler(io.Discard, nil)))
		assert.Error(t, client.Ping(context.Background()))
	})
}

func TestVariantIDResolution(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items": [
			{"product_id": 1, "quantity": 1, "variant_id": "explicit", "variant": {"id": "v9", "actual_price": "1.00"}},
			{"product_id": 2, "quantity": 1, "variant": {"variant_id": "v-field", "id": "v9", "actual_price": "1.00"}},
			{"product_id": 3, "quantity": 1, "variant": {"id": "v9", "actual_price": "1.00"}}
		]}`))
	})

	data, err := client.FetchCart(context.Background(), "tok")
	require.NoError(t, err)
	require.Len(t, data.Items, 3)
	assert.Equal(t, "explicit", data.Items[0].VariantID)
	assert.Equal(t, "v-field", data.Items[1].VariantID)
	assert.Equal(t, "v9", data.Items[2].VariantID)
}

func TestQuantityClampedToBounds(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items": [
			{"product_id": 1, "quantity": 150, "actual_price": "1.00"},
			{"product_id": 2, "quantity": 0, "actual_price": "1.00"}
		]}`))
	})

	data, err := client.FetchCart(context.Background(), "tok")
	require.NoError(t, err)
	require.Len(t, data.Items, 2)
	assert.Equal(t, 99, data.Items[0].Quantity)
	assert.Equal(t, 1, data.Items[1].Quantity)
}
