package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/whitepeony/storefront/internal/domain"
	"github.com/whitepeony/storefront/internal/service"
	"github.com/whitepeony/storefront/pkg/httputil"
	"github.com/whitepeony/storefront/pkg/validator"
)

// CartHandler handles HTTP requests for cart and checkout endpoints.
type CartHandler struct {
	service *service.CartService
	logger  *slog.Logger
}

// NewCartHandler creates a new cart HTTP handler.
func NewCartHandler(svc *service.CartService, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// UpdateQuantityRequest is the JSON request body for changing a line's
// quantity by a signed step. Bounds are enforced against the line's current
// quantity, so they live in the service rather than in struct tags.
type UpdateQuantityRequest struct {
	VariantID string `json:"variant_id"`
	Delta     int    `json:"delta" validate:"required,gte=-98,lte=98"`
}

// ApplyCouponRequest is the JSON request body for applying a promo code.
type ApplyCouponRequest struct {
	Code string `json:"code" validate:"required,min=1,max=64"`
}

// PlaceOrderRequest is the JSON request body for checkout.
type PlaceOrderRequest struct {
	CartID     string `json:"cart_id" validate:"required"`
	AddressID  string `json:"address_id" validate:"required"`
	ShippingID string `json:"shipping_id" validate:"required"`
	CouponCode string `json:"coupon_code"`
}

// --- Handlers ---

// GetCart handles GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())

	view, err := h.service.GetCart(r.Context(), userID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: view})
}

// UpdateQuantity handles PUT /api/v1/cart/items/{productID}
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())
	productID := chi.URLParam(r, "productID")

	var req UpdateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	view, err := h.service.UpdateQuantity(r.Context(), userID, productID, req.VariantID, req.Delta)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: view})
}

// RemoveItem handles DELETE /api/v1/cart/items/{productID}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())
	productID := chi.URLParam(r, "productID")
	variantID := r.URL.Query().Get("variant_id")

	view, err := h.service.RemoveItem(r.Context(), userID, productID, variantID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: view})
}

// ListCoupons handles GET /api/v1/cart/coupons
func (h *CartHandler) ListCoupons(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())

	coupons, err := h.service.ListCoupons(r.Context(), userID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: coupons})
}

// ApplyCoupon handles POST /api/v1/cart/coupon
func (h *CartHandler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())

	var req ApplyCouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	view, err := h.service.ApplyCoupon(r.Context(), userID, req.Code)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: view})
}

// RemoveCoupon handles DELETE /api/v1/cart/coupon
func (h *CartHandler) RemoveCoupon(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())

	view, err := h.service.RemoveCoupon(r.Context(), userID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: view})
}

// PlaceOrder handles POST /api/v1/checkout
func (h *CartHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())

	var req PlaceOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	result, err := h.service.PlaceOrder(r.Context(), userID, domain.OrderRequest{
		CartID:     req.CartID,
		AddressID:  req.AddressID,
		ShippingID: req.ShippingID,
		CouponCode: req.CouponCode,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: result})
}
