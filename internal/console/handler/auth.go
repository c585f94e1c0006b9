package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/xela07ax/dashboard-daddy/internal/domain"
)

type TokenIssuer interface {
	GenerateToken(ctx context.Context, username, password string) (*domain.TokenResponse, error)
}

type AuthHandler struct {
	auth TokenIssuer
}

func NewAuthHandler(auth TokenIssuer) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Login POST /auth/token — обмен логина и пароля на JWT.
// Неверные учетные данные и отсутствующий пользователь не различаются.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorCode(w, http.StatusBadRequest, "INVALID_REQUEST_BODY", "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeErrorCode(w, http.StatusBadRequest, "VALIDATION_ERROR", "username and password are required")
		return
	}

	token, err := h.auth.GenerateToken(r.Context(), req.Username, req.Password)
	if err != nil {
		writeErrorCode(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid credentials")
		return
	}

	writeJSON(w, http.StatusOK, token)
}
