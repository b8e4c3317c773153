package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/casaguide/concierge/internal/domain"
	"github.com/casaguide/concierge/internal/http/response"
	"github.com/casaguide/concierge/internal/service"
)

// Login issues an admin access token.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}
	if req.Email == "" || req.Password == "" {
		response.BadRequest(w, "Email and password are required")
		return
	}

	token, expiresIn, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Unauthorized(w, "Invalid credentials")
			return
		}
		response.InternalError(w, "Login failed")
		return
	}

	response.WriteJSON(w, http.StatusOK, domain.LoginRes{
		AccessToken: token,
		ExpiresIn:   expiresIn,
	})
}
