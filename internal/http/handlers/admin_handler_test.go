package handlers_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/casaguide/concierge/internal/domain"
	"github.com/casaguide/concierge/internal/service"
)

func TestCreateReservationValidationError(t *testing.T) {
	e := newEnv(at(t, "2024-06-01T12:00"))
	e.reservations.createFn = func(_ context.Context, _ *domain.ReservationCreateReq, _ int64) (*domain.Reservation, error) {
		return nil, fmt.Errorf("%w: guest_name is required", service.ErrValidation)
	}

	rec := e.do(t, http.MethodPost, "/admin/reservations/", map[string]any{"property_id": "lili"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestCreateReservationSuccess(t *testing.T) {
	e := newEnv(at(t, "2024-06-01T12:00"))
	var gotTemplateID int64
	e.reservations.createFn = func(_ context.Context, req *domain.ReservationCreateReq, templateID int64) (*domain.Reservation, error) {
		gotTemplateID = templateID
		res := liliReservation()
		res.GuestName = req.GuestName
		return res, nil
	}

	rec := e.do(t, http.MethodPost, "/admin/reservations/?template_id=7", map[string]any{
		"property_id":    "lili",
		"guest_name":     "Ana",
		"check_in_date":  "2024-06-10",
		"check_in_time":  "14:00",
		"checkout_date":  "2024-06-13",
		"check_out_time": "11:00",
		"lock_code":      "4521",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body)
	}
	if gotTemplateID != 7 {
		t.Errorf("template_id = %d, want 7", gotTemplateID)
	}

	var body domain.Reservation
	decodeBody(t, rec, &body)
	if body.GuestToken == "" {
		t.Error("created reservation missing guest_token for the magic link")
	}
}

func TestGetReservationErrors(t *testing.T) {
	e := newEnv(at(t, "2024-06-01T12:00"))

	rec := e.do(t, http.MethodGet, "/admin/reservations/abc", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("non-numeric id: status = %d, want 400", rec.Code)
	}

	rec = e.do(t, http.MethodGet, "/admin/reservations/99", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown id: status = %d, want 404", rec.Code)
	}
}

func TestListReservationsRejectsBadProperty(t *testing.T) {
	e := newEnv(at(t, "2024-06-01T12:00"))

	rec := e.do(t, http.MethodGet, "/admin/reservations/?property_id=penthouse", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestDeleteReservation(t *testing.T) {
	e := newEnv(at(t, "2024-06-01T12:00"))
	e.reservations = newFakeReservations(liliReservation())

	rec := e.do(t, http.MethodDelete, "/admin/reservations/1", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}

	rec = e.do(t, http.MethodDelete, "/admin/reservations/1", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second delete: status = %d, want 404", rec.Code)
	}
}

func TestDangerZoneDoublePressCommits(t *testing.T) {
	e := newEnv(at(t, "2024-06-01T12:00"))
	e.reservations = newFakeReservations(liliReservation())

	var body struct {
		Status             string `json:"status"`
		ManualDeactivation bool   `json:"manual_deactivation"`
	}

	rec := e.do(t, http.MethodPost, "/admin/reservations/1/deactivate", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("first press: status = %d", rec.Code)
	}
	decodeBody(t, rec, &body)
	if body.Status != "awaiting_confirm" || body.ManualDeactivation {
		t.Fatalf("first press = %+v, want awaiting_confirm and unchanged value", body)
	}
	if len(e.reservations.deactivations) != 0 {
		t.Fatal("single press persisted an override")
	}

	rec = e.do(t, http.MethodPost, "/admin/reservations/1/deactivate", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("second press: status = %d", rec.Code)
	}
	decodeBody(t, rec, &body)
	if body.Status != "committed" || !body.ManualDeactivation {
		t.Fatalf("second press = %+v, want committed with the new value", body)
	}
	if len(e.reservations.deactivations) != 1 || e.reservations.deactivations[0] != (deactivationCall{ID: 1, Value: true}) {
		t.Fatalf("persisted calls = %v, want exactly one deactivate for id 1", e.reservations.deactivations)
	}
}

func TestDangerZoneUnknownReservation(t *testing.T) {
	e := newEnv(at(t, "2024-06-01T12:00"))

	rec := e.do(t, http.MethodPost, "/admin/reservations/42/deactivate", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestDangerZonePersistFailureReturnsBadGateway(t *testing.T) {
	e := newEnv(at(t, "2024-06-01T12:00"))
	e.reservations = newFakeReservations(liliReservation())
	e.reservations.deactivateErr = errors.New("db down")

	if rec := e.do(t, http.MethodPost, "/admin/reservations/1/deactivate", nil); rec.Code != http.StatusOK {
		t.Fatalf("arm press: status = %d", rec.Code)
	}
	rec := e.do(t, http.MethodPost, "/admin/reservations/1/deactivate", nil)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("failed commit: status = %d, want 502", rec.Code)
	}
}

func TestCreateTemplateValidation(t *testing.T) {
	e := newEnv(at(t, "2024-06-01T12:00"))

	rec := e.do(t, http.MethodPost, "/admin/templates/", map[string]any{"property_id": "lili"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing name: status = %d, want 400", rec.Code)
	}

	rec = e.do(t, http.MethodPost, "/admin/templates/", map[string]any{
		"name": "Standard", "property_id": "penthouse",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad property: status = %d, want 400", rec.Code)
	}
}

func TestTemplateLifecycle(t *testing.T) {
	e := newEnv(at(t, "2024-06-01T12:00"))

	rec := e.do(t, http.MethodPost, "/admin/templates/", map[string]any{
		"name":            "Integração default",
		"property_id":     "integracao",
		"flat_number":     "104",
		"welcome_message": "Bem-vindo!",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status = %d: %s", rec.Code, rec.Body)
	}

	var created domain.Template
	decodeBody(t, rec, &created)

	rec = e.do(t, http.MethodGet, "/admin/templates/", nil)
	var list []domain.Template
	decodeBody(t, rec, &list)
	if len(list) != 1 {
		t.Fatalf("list has %d templates, want 1", len(list))
	}

	rec = e.do(t, http.MethodDelete, fmt.Sprintf("/admin/templates/%d", created.ID), nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: status = %d, want 204", rec.Code)
	}
}

func TestListTemplatesEmptyIsArray(t *testing.T) {
	e := newEnv(at(t, "2024-06-01T12:00"))

	rec := e.do(t, http.MethodGet, "/admin/templates/", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Body.String(); got != "[]\n" {
		t.Errorf("empty list body = %q, want a JSON array", got)
	}
}
