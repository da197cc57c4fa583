package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/whitepeony/storefront/internal/service"
	"github.com/whitepeony/storefront/pkg/httputil"
	"github.com/whitepeony/storefront/pkg/validator"
)

// WishlistHandler handles HTTP requests for wishlist endpoints.
type WishlistHandler struct {
	service *service.WishlistService
	logger  *slog.Logger
}

// NewWishlistHandler creates a new wishlist HTTP handler.
func NewWishlistHandler(svc *service.WishlistService, logger *slog.Logger) *WishlistHandler {
	return &WishlistHandler{
		service: svc,
		logger:  logger,
	}
}

// AddProductRequest is the JSON request body for adding a wishlist product.
type AddProductRequest struct {
	ProductID string `json:"product_id" validate:"required"`
}

// List handles GET /api/v1/wishlist
func (h *WishlistHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())

	wishlist, err := h.service.List(r.Context(), userID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: wishlist})
}

// Add handles POST /api/v1/wishlist/items
func (h *WishlistHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())

	var req AddProductRequest
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

	wishlist, err := h.service.Add(r.Context(), userID, req.ProductID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: wishlist})
}

// Remove handles DELETE /api/v1/wishlist/items/{productID}
func (h *WishlistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())
	productID := chi.URLParam(r, "productID")

	wishlist, err := h.service.Remove(r.Context(), userID, productID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: wishlist})
}

// Toggle handles POST /api/v1/wishlist/items/{productID}/toggle
func (h *WishlistHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())
	productID := chi.URLParam(r, "productID")

	wishlist, added, err := h.service.Toggle(r.Context(), userID, productID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]any{
		"wishlist": wishlist,
		"added":    added,
	}})
}

// Status handles GET /api/v1/wishlist/items/{productID}
func (h *WishlistHandler) Status(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())
	productID := chi.URLParam(r, "productID")

	wishlisted, err := h.service.IsWishlisted(r.Context(), userID, productID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]bool{
		"wishlisted": wishlisted,
	}})
}

// Refresh handles POST /api/v1/wishlist/refresh
func (h *WishlistHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())

	wishlist, err := h.service.Refresh(r.Context(), userID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: wishlist})
}
