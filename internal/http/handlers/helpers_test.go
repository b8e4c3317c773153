package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/casaguide/concierge/internal/dangerzone"
	"github.com/casaguide/concierge/internal/disclosure"
	"github.com/casaguide/concierge/internal/domain"
	"github.com/casaguide/concierge/internal/http/handlers"
	"github.com/casaguide/concierge/internal/proxy"
	"github.com/casaguide/concierge/internal/service"
	"github.com/casaguide/concierge/pkg/clock"
	"github.com/casaguide/concierge/pkg/config"
	"github.com/casaguide/concierge/pkg/events"
)

// fakeReservations backs handler tests with an in-memory reservation set.
type fakeReservations struct {
	byID    map[int64]*domain.Reservation
	byToken map[string]*domain.Reservation

	createFn func(ctx context.Context, req *domain.ReservationCreateReq, templateID int64) (*domain.Reservation, error)

	deactivations []deactivationCall
	deactivateErr error

	feedback    []domain.FeedbackReq
	feedbackErr error
}

type deactivationCall struct {
	ID    int64
	Value bool
}

func newFakeReservations(list ...*domain.Reservation) *fakeReservations {
	f := &fakeReservations{
		byID:    make(map[int64]*domain.Reservation),
		byToken: make(map[string]*domain.Reservation),
	}
	for _, r := range list {
		f.byID[r.ID] = r
		f.byToken[r.GuestToken] = r
	}
	return f
}

func (f *fakeReservations) Create(ctx context.Context, req *domain.ReservationCreateReq, templateID int64) (*domain.Reservation, error) {
	if f.createFn == nil {
		return nil, errors.New("create not wired in this test")
	}
	return f.createFn(ctx, req, templateID)
}

func (f *fakeReservations) Get(_ context.Context, id int64) (*domain.Reservation, error) {
	return f.byID[id], nil
}

func (f *fakeReservations) GetByToken(_ context.Context, token string) (*domain.Reservation, error) {
	return f.byToken[token], nil
}

func (f *fakeReservations) List(_ context.Context, propertyID *domain.PropertyID, _, _ int) ([]domain.Reservation, error) {
	var out []domain.Reservation
	for _, r := range f.byID {
		if propertyID != nil && r.PropertyID != *propertyID {
			continue
		}
		out = append(out, *r)
	}
	return out, nil
}

func (f *fakeReservations) Update(_ context.Context, id int64, patch domain.ReservationPatch) (*domain.Reservation, error) {
	r, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	if patch.GuestName != nil {
		r.GuestName = *patch.GuestName
	}
	return r, nil
}

func (f *fakeReservations) SetManualDeactivation(_ context.Context, id int64, value bool) error {
	if f.deactivateErr != nil {
		return f.deactivateErr
	}
	f.deactivations = append(f.deactivations, deactivationCall{ID: id, Value: value})
	if r, ok := f.byID[id]; ok {
		r.ManualDeactivation = value
	}
	return nil
}

func (f *fakeReservations) SubmitFeedback(_ context.Context, _ string, req *domain.FeedbackReq) error {
	if f.feedbackErr != nil {
		return f.feedbackErr
	}
	f.feedback = append(f.feedback, *req)
	return nil
}

func (f *fakeReservations) Delete(_ context.Context, id int64) (bool, error) {
	r, ok := f.byID[id]
	if !ok {
		return false, nil
	}
	delete(f.byID, id)
	delete(f.byToken, r.GuestToken)
	return true, nil
}

type fakeTemplates struct {
	byID   map[int64]*domain.Template
	nextID int64
}

func newFakeTemplates() *fakeTemplates {
	return &fakeTemplates{byID: make(map[int64]*domain.Template), nextID: 1}
}

func (f *fakeTemplates) Create(_ context.Context, in *domain.TemplateCreateReq) (*domain.Template, error) {
	t := &domain.Template{
		ID:             f.nextID,
		Name:           in.Name,
		PropertyID:     domain.PropertyID(in.PropertyID),
		GuestName:      in.GuestName,
		GuestPhone:     in.GuestPhone,
		FlatNumber:     in.FlatNumber,
		WelcomeMessage: in.WelcomeMessage,
		AdminNotes:     in.AdminNotes,
		CreatedAt:      time.Now(),
	}
	f.byID[t.ID] = t
	f.nextID++
	return t, nil
}

func (f *fakeTemplates) GetByID(_ context.Context, id int64) (*domain.Template, error) {
	return f.byID[id], nil
}

func (f *fakeTemplates) List(_ context.Context) ([]domain.Template, error) {
	var out []domain.Template
	for _, t := range f.byID {
		out = append(out, *t)
	}
	return out, nil
}

func (f *fakeTemplates) Delete(_ context.Context, id int64) (bool, error) {
	if _, ok := f.byID[id]; !ok {
		return false, nil
	}
	delete(f.byID, id)
	return true, nil
}

type fakeAuth struct {
	token string
	ttl   int64
	err   error
}

func (f *fakeAuth) Login(context.Context, string, string) (string, int64, error) {
	return f.token, f.ttl, f.err
}

// env wires handlers to fakes and in-memory services, mirroring the
// production router layout without the auth middleware.
type env struct {
	now          time.Time
	reservations *fakeReservations
	templates    *fakeTemplates
	auth         *fakeAuth

	gemini      *proxy.GeminiClient
	tts         *proxy.TTSClient
	mercadoPago *proxy.MercadoPagoClient

	router http.Handler
}

func newEnv(now time.Time) *env {
	return &env{
		now:          now,
		reservations: newFakeReservations(),
		templates:    newFakeTemplates(),
		auth:         &fakeAuth{},
		gemini:       proxy.NewGeminiClient(config.GeminiConfig{}),
		tts:          proxy.NewTTSClient(config.TTSConfig{}),
		mercadoPago:  proxy.NewMercadoPagoClient(config.MercadoPagoConfig{}),
	}
}

func (e *env) handler() http.Handler {
	policy := disclosure.New(disclosure.NewMemoryStore(), events.NopBus{})
	stays := service.NewStayService(clock.Fixed{T: e.now}, time.UTC, policy, nil)
	dangerZone := service.NewDangerZoneManager(clock.Fixed{T: e.now}, dangerzone.TimerScheduler{}, 3*time.Second, e.reservations, nil)
	h := handlers.New(e.auth, e.reservations, stays, dangerZone, e.templates, e.gemini, e.tts, e.mercadoPago, nil)

	r := chi.NewRouter()
	r.Post("/auth/login", h.Login)
	r.Route("/guest/stays/{token}", func(r chi.Router) {
		r.Get("/", h.GetGuestStay)
		r.Post("/reveal", h.RevealAccess)
		r.Post("/feedback", h.SubmitFeedback)
	})
	r.Route("/admin/reservations", func(r chi.Router) {
		r.Post("/", h.CreateReservation)
		r.Get("/", h.ListReservations)
		r.Get("/{id}", h.GetReservation)
		r.Patch("/{id}", h.UpdateReservation)
		r.Delete("/{id}", h.DeleteReservation)
		r.Post("/{id}/deactivate", h.Deactivate)
		r.Post("/{id}/reactivate", h.Reactivate)
	})
	r.Route("/admin/templates", func(r chi.Router) {
		r.Post("/", h.CreateTemplate)
		r.Get("/", h.ListTemplates)
		r.Delete("/{id}", h.DeleteTemplate)
	})
	r.Route("/api", func(r chi.Router) {
		r.Post("/chat", h.Chat)
		r.Post("/translate", h.Translate)
		r.Post("/tts", h.TTS)
		r.Post("/create-payment", h.CreatePayment)
	})
	return r
}

func (e *env) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	// Built once so in-memory state survives across requests in a test.
	if e.router == nil {
		e.router = e.handler()
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(out); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
}

func liliReservation() *domain.Reservation {
	return &domain.Reservation{
		ID:             1,
		GuestToken:     "tok-lili",
		PropertyID:     domain.PropertyLili,
		GuestName:      "Ana",
		CheckInDate:    "2024-06-10",
		CheckInTime:    "14:00",
		CheckoutDate:   "2024-06-13",
		CheckOutTime:   "11:00",
		LockCode:       "4521",
		WelcomeMessage: "Bem-vinda!",
		AdminNotes:     "repeat guest",
	}
}

func at(t *testing.T, value string) time.Time {
	t.Helper()
	out, err := time.ParseInLocation("2006-01-02T15:04", value, time.UTC)
	if err != nil {
		t.Fatalf("bad test timestamp %q: %v", value, err)
	}
	return out
}
