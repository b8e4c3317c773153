package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/casaguide/concierge/internal/http/response"
	"github.com/casaguide/concierge/internal/proxy"
	"github.com/casaguide/concierge/pkg/logger"
)

type chatReq struct {
	Message           string           `json:"message"`
	History           []proxy.ChatTurn `json:"history"`
	GuestName         string           `json:"guestName"`
	SystemInstruction string           `json:"systemInstruction"`
}

type textRes struct {
	Text string `json:"text"`
}

// Chat brokers guest chat turns to the AI provider.
func (h *Handlers) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}
	if req.Message == "" {
		response.BadRequest(w, "message is required")
		return
	}

	instruction := req.SystemInstruction
	if instruction == "" && req.GuestName != "" {
		instruction = "You are a helpful concierge assistant. The guest's name is " + req.GuestName + "."
	}

	text, err := h.gemini.Generate(r.Context(), "", instruction, req.History, req.Message)
	if err != nil {
		h.upstreamError(w, r, "gemini", err)
		return
	}

	response.WriteJSON(w, http.StatusOK, textRes{Text: text})
}

type translateReq struct {
	Prompt string `json:"prompt"`
	Model  string `json:"model"`
}

// Translate brokers one-shot translation prompts to the AI provider.
func (h *Handlers) Translate(w http.ResponseWriter, r *http.Request) {
	var req translateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}
	if req.Prompt == "" {
		response.BadRequest(w, "prompt is required")
		return
	}

	text, err := h.gemini.Generate(r.Context(), req.Model, "", nil, req.Prompt)
	if err != nil {
		h.upstreamError(w, r, "gemini", err)
		return
	}

	response.WriteJSON(w, http.StatusOK, textRes{Text: text})
}

type ttsReq struct {
	Text string `json:"text"`
	Lang string `json:"lang"`
}

type ttsRes struct {
	AudioContent string `json:"audioContent"`
}

// TTS brokers text-to-speech synthesis.
func (h *Handlers) TTS(w http.ResponseWriter, r *http.Request) {
	var req ttsReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}
	if req.Text == "" {
		response.BadRequest(w, "text is required")
		return
	}

	audio, err := h.tts.Synthesize(r.Context(), req.Text, req.Lang)
	if err != nil {
		h.upstreamError(w, r, "tts", err)
		return
	}

	response.WriteJSON(w, http.StatusOK, ttsRes{AudioContent: audio})
}

// CreatePayment brokers PIX payment creation to Mercado Pago.
func (h *Handlers) CreatePayment(w http.ResponseWriter, r *http.Request) {
	var req proxy.PaymentReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}
	if req.TransactionAmount <= 0 {
		response.BadRequest(w, "transaction_amount must be positive")
		return
	}
	if req.Payer.Email == "" {
		response.BadRequest(w, "payer.email is required")
		return
	}

	payment, err := h.mercadoPago.CreatePIXPayment(r.Context(), &req)
	if err != nil {
		h.upstreamError(w, r, "mercadopago", err)
		return
	}

	response.WriteJSON(w, http.StatusOK, payment)
}

// upstreamError maps provider failures to a 500 with a generic message; the
// raw provider error only goes to the log.
func (h *Handlers) upstreamError(w http.ResponseWriter, r *http.Request, provider string, err error) {
	logger.ErrorContext(r.Context(), "Upstream provider call failed", "provider", provider, "error", err)
	if h.metrics != nil {
		h.metrics.UpstreamErrors.WithLabelValues(provider).Inc()
	}
	if errors.Is(err, proxy.ErrNotConfigured) {
		response.WriteError(w, http.StatusInternalServerError, "Service not configured", response.CodeUpstreamError)
		return
	}
	response.WriteError(w, http.StatusInternalServerError, "Upstream service failed", response.CodeUpstreamError)
}
