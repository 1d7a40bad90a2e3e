package handlers

import (
	"errors"
	"net/http"
	"strings"

	"flight_board/internal/auth"
	"flight_board/internal/models"

	"go.uber.org/zap"
)

type AuthHandler struct {
	auth   auth.Authenticator
	logger *zap.Logger
	errs   errorResponder
}

func NewAuthHandler(a auth.Authenticator, logger *zap.Logger, exposeErrors bool) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{
		auth:   a,
		logger: logger,
		errs:   errorResponder{logger: logger, exposeErrors: exposeErrors},
	}
}

// POST /api/login
// 200: { "success": true, "role": "...", "username": "..." }
// 400: malformed body
// 401: { "success": false, "message": "Invalid username or password" }
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}

	username := strings.TrimSpace(req.Username)
	role, err := h.auth.Verify(r.Context(), username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			h.logger.Info("login rejected", zap.String("username", username))
		}
		h.errs.write(w, r, err)
		return
	}

	h.logger.Info("login", zap.String("username", username), zap.String("role", string(role)))
	writeJSON(w, http.StatusOK, models.LoginResponse{
		Success:  true,
		Role:     string(role),
		Username: username,
	})
}
