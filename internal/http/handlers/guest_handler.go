package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/casaguide/concierge/internal/domain"
	"github.com/casaguide/concierge/internal/http/response"
	"github.com/casaguide/concierge/internal/service"
	"github.com/casaguide/concierge/internal/stay"
)

// GetGuestStay serves the guest page payload for a magic-link token:
// the safe reservation projection plus the derived lifecycle view.
func (h *Handlers) GetGuestStay(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	res, err := h.reservations.GetByToken(r.Context(), token)
	if err != nil {
		response.InternalError(w, "Failed to retrieve reservation")
		return
	}
	if res == nil {
		response.NotFound(w, "Reservation not found")
		return
	}

	response.WriteJSON(w, http.StatusOK, h.stays.BuildGuestView(r.Context(), res))
}

// RevealAccess flips the one-way disclosure flag for the stay's credential.
func (h *Handlers) RevealAccess(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	res, err := h.reservations.GetByToken(r.Context(), token)
	if err != nil {
		response.InternalError(w, "Failed to retrieve reservation")
		return
	}
	if res == nil {
		response.NotFound(w, "Reservation not found")
		return
	}

	if err := h.stays.Reveal(r.Context(), res); err != nil {
		response.InternalError(w, "Failed to save disclosure")
		return
	}

	response.WriteJSON(w, http.StatusOK, h.stays.BuildGuestView(r.Context(), res))
}

// SubmitFeedback records the post-stay rating. Only accepted once the stay
// has reached checkout.
func (h *Handlers) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	var req domain.FeedbackReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	res, err := h.reservations.GetByToken(r.Context(), token)
	if err != nil {
		response.InternalError(w, "Failed to retrieve reservation")
		return
	}
	if res == nil {
		response.NotFound(w, "Reservation not found")
		return
	}

	view := h.stays.BuildGuestView(r.Context(), res)
	if view.View.Stage != stay.StageCheckout && view.View.Stage != stay.StagePostCheckout {
		response.Conflict(w, "Feedback opens at checkout")
		return
	}

	if err := h.reservations.SubmitFeedback(r.Context(), token, &req); err != nil {
		if errors.Is(err, service.ErrValidation) {
			response.BadRequest(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to save feedback")
		return
	}

	response.WriteJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}
