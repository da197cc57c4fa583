package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/whitepeony/storefront/internal/service"
	"github.com/whitepeony/storefront/pkg/httputil"
	"github.com/whitepeony/storefront/pkg/validator"
)

// SessionHandler handles HTTP requests for session endpoints.
type SessionHandler struct {
	service *service.SessionService
	logger  *slog.Logger
}

// NewSessionHandler creates a new session HTTP handler.
func NewSessionHandler(svc *service.SessionService, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		service: svc,
		logger:  logger,
	}
}

// StartSessionRequest is the JSON request body for storing a commerce
// platform token.
type StartSessionRequest struct {
	Token     string    `json:"token" validate:"required"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Start handles PUT /api/v1/session
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())

	var req StartSessionRequest
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

	session, err := h.service.Start(r.Context(), userID, req.Token, req.ExpiresAt)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]any{
		"user_id":    session.UserID,
		"expires_at": session.ExpiresAt,
	}})
}

// End handles DELETE /api/v1/session
func (h *SessionHandler) End(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())

	if err := h.service.End(r.Context(), userID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"status": "ended"}})
}
