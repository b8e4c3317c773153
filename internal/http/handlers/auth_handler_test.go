package handlers_test

import (
	"net/http"
	"testing"

	"github.com/casaguide/concierge/internal/domain"
	"github.com/casaguide/concierge/internal/service"
)

func TestLoginRequiresCredentials(t *testing.T) {
	e := newEnv(at(t, "2024-06-01T12:00"))

	rec := e.do(t, http.MethodPost, "/auth/login", map[string]any{"email": "admin@casaguide.local"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	e := newEnv(at(t, "2024-06-01T12:00"))
	e.auth.err = service.ErrInvalidCredentials

	rec := e.do(t, http.MethodPost, "/auth/login", map[string]any{
		"email":    "admin@casaguide.local",
		"password": "wrong",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestLoginIssuesToken(t *testing.T) {
	e := newEnv(at(t, "2024-06-01T12:00"))
	e.auth.token = "signed-token"
	e.auth.ttl = 43200

	rec := e.do(t, http.MethodPost, "/auth/login", map[string]any{
		"email":    "admin@casaguide.local",
		"password": "correct",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body domain.LoginRes
	decodeBody(t, rec, &body)
	if body.AccessToken != "signed-token" || body.ExpiresIn != 43200 {
		t.Errorf("login response = %+v", body)
	}
}
