package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/casaguide/concierge/internal/domain"
	"github.com/casaguide/concierge/internal/service"
	"github.com/casaguide/concierge/pkg/config"
	"github.com/casaguide/concierge/pkg/events"
)

type repoStub struct {
	created []domain.ReservationCreateReq
	nextID  int64
}

func (r *repoStub) Create(_ context.Context, in *domain.ReservationCreateReq) (*domain.Reservation, error) {
	r.created = append(r.created, *in)
	r.nextID++
	return &domain.Reservation{
		ID:           r.nextID,
		GuestToken:   "tok",
		PropertyID:   domain.PropertyID(in.PropertyID),
		GuestName:    in.GuestName,
		GuestEmail:   in.GuestEmail,
		CheckInDate:  in.CheckInDate,
		CheckInTime:  in.CheckInTime,
		CheckoutDate: in.CheckoutDate,
		CheckOutTime: in.CheckOutTime,
		LockCode:     in.LockCode,
		FlatNumber:   in.FlatNumber,
		CreatedAt:    time.Now(),
	}, nil
}

func (r *repoStub) GetByID(context.Context, int64) (*domain.Reservation, error)      { return nil, nil }
func (r *repoStub) GetByToken(context.Context, string) (*domain.Reservation, error)  { return nil, nil }
func (r *repoStub) SetManualDeactivation(context.Context, int64, bool) error         { return nil }
func (r *repoStub) SetFeedback(context.Context, string, int, string) (bool, error)   { return true, nil }
func (r *repoStub) Delete(context.Context, int64) (bool, error)                      { return true, nil }
func (r *repoStub) Update(context.Context, int64, domain.ReservationPatch) (*domain.Reservation, error) {
	return nil, nil
}
func (r *repoStub) List(context.Context, *domain.PropertyID, int, int) ([]domain.Reservation, error) {
	return nil, nil
}

type templateRepoStub struct {
	byID map[int64]*domain.Template
}

func (t *templateRepoStub) Create(context.Context, *domain.TemplateCreateReq) (*domain.Template, error) {
	return nil, nil
}
func (t *templateRepoStub) GetByID(_ context.Context, id int64) (*domain.Template, error) {
	return t.byID[id], nil
}
func (t *templateRepoStub) List(context.Context) ([]domain.Template, error) { return nil, nil }
func (t *templateRepoStub) Delete(context.Context, int64) (bool, error)     { return false, nil }

type mailStub struct {
	sent []string
}

func (m *mailStub) SendGuideLink(toEmail, _, _, _ string) error {
	m.sent = append(m.sent, toEmail)
	return nil
}

func newService(repo *repoStub, templates *templateRepoStub, mail *mailStub) service.ReservationService {
	if templates == nil {
		templates = &templateRepoStub{byID: map[int64]*domain.Template{}}
	}
	if mail == nil {
		mail = &mailStub{}
	}
	cfg := &config.Config{}
	cfg.Server.PublicURL = "https://guide.example"
	return service.NewReservationService(repo, templates, events.NopBus{}, mail, cfg)
}

func validLiliReq() *domain.ReservationCreateReq {
	return &domain.ReservationCreateReq{
		PropertyID:   "lili",
		GuestName:    "Ana",
		CheckInDate:  "2024-06-10",
		CheckInTime:  "14:00",
		CheckoutDate: "2024-06-13",
		CheckOutTime: "11:00",
		LockCode:     "4521",
	}
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*domain.ReservationCreateReq)
	}{
		{"unknown property", func(r *domain.ReservationCreateReq) { r.PropertyID = "penthouse" }},
		{"missing guest name", func(r *domain.ReservationCreateReq) { r.GuestName = "" }},
		{"flat number on lili", func(r *domain.ReservationCreateReq) { r.FlatNumber = "104" }},
		{"bad check-in date", func(r *domain.ReservationCreateReq) { r.CheckInDate = "10/06/2024" }},
		{"bad checkout time", func(r *domain.ReservationCreateReq) { r.CheckOutTime = "11h" }},
		{"checkout precedes check-in", func(r *domain.ReservationCreateReq) { r.CheckoutDate = "2024-06-01" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &repoStub{}
			svc := newService(repo, nil, nil)

			req := validLiliReq()
			tc.mutate(req)

			_, err := svc.Create(context.Background(), req, 0)
			if !errors.Is(err, service.ErrValidation) {
				t.Fatalf("err = %v, want validation error", err)
			}
			if len(repo.created) != 0 {
				t.Fatal("invalid request reached the repository")
			}
		})
	}
}

func TestCreateRejectsLockCodeOnIntegracao(t *testing.T) {
	repo := &repoStub{}
	svc := newService(repo, nil, nil)

	req := validLiliReq()
	req.PropertyID = "integracao"
	req.LockCode = "4521"

	if _, err := svc.Create(context.Background(), req, 0); !errors.Is(err, service.ErrValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestCreateAppliesTemplatePrefill(t *testing.T) {
	repo := &repoStub{}
	templates := &templateRepoStub{byID: map[int64]*domain.Template{
		3: {
			ID:             3,
			Name:           "Integração default",
			PropertyID:     domain.PropertyIntegracao,
			FlatNumber:     "104",
			WelcomeMessage: "Bem-vindo!",
		},
	}}
	svc := newService(repo, templates, nil)

	req := &domain.ReservationCreateReq{
		GuestName:    "Bruno",
		CheckInDate:  "2024-07-01",
		CheckInTime:  "15:00",
		CheckoutDate: "2024-07-04",
		CheckOutTime: "10:00",
	}

	res, err := svc.Create(context.Background(), req, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.PropertyID != domain.PropertyIntegracao {
		t.Errorf("property = %s, want template's integracao", res.PropertyID)
	}
	if res.FlatNumber != "104" {
		t.Errorf("flat_number = %q, want template prefill", res.FlatNumber)
	}
}

func TestCreateUnknownTemplate(t *testing.T) {
	svc := newService(&repoStub{}, nil, nil)

	_, err := svc.Create(context.Background(), validLiliReq(), 99)
	if !errors.Is(err, service.ErrValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestCreateSendsGuideLinkWhenEmailPresent(t *testing.T) {
	mail := &mailStub{}
	svc := newService(&repoStub{}, nil, mail)

	req := validLiliReq()
	req.GuestEmail = "ana@example.com"

	if _, err := svc.Create(context.Background(), req, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mail.sent) != 1 || mail.sent[0] != "ana@example.com" {
		t.Fatalf("sent = %v, want one guide link to the guest", mail.sent)
	}

	mail.sent = nil
	if _, err := svc.Create(context.Background(), validLiliReq(), 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mail.sent) != 0 {
		t.Fatal("guide link sent without a guest email")
	}
}

func TestSubmitFeedbackValidatesRating(t *testing.T) {
	svc := newService(&repoStub{}, nil, nil)

	for _, rating := range []int{0, 6, -1} {
		err := svc.SubmitFeedback(context.Background(), "tok", &domain.FeedbackReq{Rating: rating})
		if !errors.Is(err, service.ErrValidation) {
			t.Errorf("rating %d: err = %v, want validation error", rating, err)
		}
	}
}
