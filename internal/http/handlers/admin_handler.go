package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/casaguide/concierge/internal/domain"
	"github.com/casaguide/concierge/internal/http/response"
	"github.com/casaguide/concierge/internal/service"
)

// CreateReservation creates a reservation, optionally prefilled from a
// template named by ?template_id.
func (h *Handlers) CreateReservation(w http.ResponseWriter, r *http.Request) {
	var req domain.ReservationCreateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	var templateID int64
	if raw := r.URL.Query().Get("template_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			response.BadRequest(w, "Invalid template_id")
			return
		}
		templateID = id
	}

	res, err := h.reservations.Create(r.Context(), &req, templateID)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			response.BadRequest(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to create reservation")
		return
	}

	response.WriteJSON(w, http.StatusCreated, res)
}

func (h *Handlers) ListReservations(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	var propertyPtr *domain.PropertyID
	if raw := r.URL.Query().Get("property_id"); raw != "" {
		prop, ok := domain.ParsePropertyID(raw)
		if !ok {
			response.BadRequest(w, "Invalid property_id parameter")
			return
		}
		propertyPtr = &prop
	}

	reservations, err := h.reservations.List(r.Context(), propertyPtr, limit, offset)
	if err != nil {
		response.InternalError(w, "Failed to retrieve reservations")
		return
	}

	response.WriteJSON(w, http.StatusOK, reservations)
}

func (h *Handlers) GetReservation(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid reservation ID")
		return
	}

	res, err := h.reservations.Get(r.Context(), id)
	if err != nil {
		response.InternalError(w, "Failed to retrieve reservation")
		return
	}
	if res == nil {
		response.NotFound(w, "Reservation not found")
		return
	}

	response.WriteJSON(w, http.StatusOK, res)
}

func (h *Handlers) UpdateReservation(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid reservation ID")
		return
	}

	var patch domain.ReservationPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	res, err := h.reservations.Update(r.Context(), id, patch)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			response.BadRequest(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to update reservation")
		return
	}
	if res == nil {
		response.NotFound(w, "Reservation not found")
		return
	}

	response.WriteJSON(w, http.StatusOK, res)
}

func (h *Handlers) DeleteReservation(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid reservation ID")
		return
	}

	ok, err := h.reservations.Delete(r.Context(), id)
	if err != nil {
		response.InternalError(w, "Failed to delete reservation")
		return
	}
	if !ok {
		response.NotFound(w, "Reservation not found")
		return
	}

	h.dangerZone.Release(id)
	w.WriteHeader(http.StatusNoContent)
}

type dangerZoneRes struct {
	Status             string `json:"status"`
	ManualDeactivation bool   `json:"manual_deactivation"`
}

// Deactivate presses the danger-zone deactivate action. The first press
// within the confirmation window arms it, the second commits.
func (h *Handlers) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.dangerZonePress(w, r, true)
}

// Reactivate presses the danger-zone reactivate action.
func (h *Handlers) Reactivate(w http.ResponseWriter, r *http.Request) {
	h.dangerZonePress(w, r, false)
}

func (h *Handlers) dangerZonePress(w http.ResponseWriter, r *http.Request, target bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid reservation ID")
		return
	}

	// The danger zone only exists for reservations that already exist.
	res, err := h.reservations.Get(r.Context(), id)
	if err != nil {
		response.InternalError(w, "Failed to retrieve reservation")
		return
	}
	if res == nil {
		response.NotFound(w, "Reservation not found")
		return
	}

	var status string
	var presErr error
	if target {
		st, e := h.dangerZone.RequestDeactivate(r.Context(), id, res.ManualDeactivation)
		status, presErr = string(st), e
	} else {
		st, e := h.dangerZone.RequestReactivate(r.Context(), id, res.ManualDeactivation)
		status, presErr = string(st), e
	}

	out := dangerZoneRes{Status: status, ManualDeactivation: res.ManualDeactivation}
	if status == "committed" {
		out.ManualDeactivation = target
	}

	if presErr != nil {
		// The commit failed to persist; local state is settled but the
		// admin must know the backend disagrees.
		response.WriteError(w, http.StatusBadGateway, "Failed to persist override; retry", response.CodeInternalError)
		return
	}

	response.WriteJSON(w, http.StatusOK, out)
}

// Templates

func (h *Handlers) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req domain.TemplateCreateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}
	if req.Name == "" {
		response.BadRequest(w, "Template name is required")
		return
	}
	if _, ok := domain.ParsePropertyID(req.PropertyID); !ok {
		response.BadRequest(w, "Invalid property_id")
		return
	}

	tpl, err := h.templates.Create(r.Context(), &req)
	if err != nil {
		response.InternalError(w, "Failed to create template")
		return
	}

	response.WriteJSON(w, http.StatusCreated, tpl)
}

func (h *Handlers) ListTemplates(w http.ResponseWriter, r *http.Request) {
	tpls, err := h.templates.List(r.Context())
	if err != nil {
		response.InternalError(w, "Failed to retrieve templates")
		return
	}
	if tpls == nil {
		tpls = []domain.Template{}
	}
	response.WriteJSON(w, http.StatusOK, tpls)
}

func (h *Handlers) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid template ID")
		return
	}

	ok, err := h.templates.Delete(r.Context(), id)
	if err != nil {
		response.InternalError(w, "Failed to delete template")
		return
	}
	if !ok {
		response.NotFound(w, "Template not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
