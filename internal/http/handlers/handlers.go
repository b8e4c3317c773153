package handlers

import (
	"net/http"
	"strconv"

	"github.com/casaguide/concierge/internal/proxy"
	"github.com/casaguide/concierge/internal/repo/postgres"
	"github.com/casaguide/concierge/internal/service"
	"github.com/casaguide/concierge/pkg/metrics"
)

type Handlers struct {
	auth         service.AuthService
	reservations service.ReservationService
	stays        service.StayService
	dangerZone   *service.DangerZoneManager
	templates    postgres.TemplateRepo

	gemini      *proxy.GeminiClient
	tts         *proxy.TTSClient
	mercadoPago *proxy.MercadoPagoClient

	metrics *metrics.Metrics
}

func New(
	auth service.AuthService,
	reservations service.ReservationService,
	stays service.StayService,
	dangerZone *service.DangerZoneManager,
	templates postgres.TemplateRepo,
	gemini *proxy.GeminiClient,
	tts *proxy.TTSClient,
	mercadoPago *proxy.MercadoPagoClient,
	m *metrics.Metrics,
) *Handlers {
	return &Handlers{
		auth:         auth,
		reservations: reservations,
		stays:        stays,
		dangerZone:   dangerZone,
		templates:    templates,
		gemini:       gemini,
		tts:          tts,
		mercadoPago:  mercadoPago,
		metrics:      m,
	}
}

func parsePagination(r *http.Request) (limit, offset int) {
	limit = 20
	offset = 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			limit = v
		}
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			offset = v
		}
	}
	return limit, offset
}
