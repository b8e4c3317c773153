package service

import (
	"context"
	"time"

	"github.com/casaguide/concierge/internal/disclosure"
	"github.com/casaguide/concierge/internal/domain"
	"github.com/casaguide/concierge/internal/stay"
	"github.com/casaguide/concierge/pkg/clock"
	"github.com/casaguide/concierge/pkg/logger"
	"github.com/casaguide/concierge/pkg/metrics"
)

// GuestStayRes is the full payload the guest page renders from: the safe
// reservation projection, the derived lifecycle view and the selected card.
type GuestStayRes struct {
	Reservation domain.GuestReservationDTO `json:"reservation"`
	View        stay.View                  `json:"view"`
	Card        stay.CardVariant           `json:"card"`

	// AccessCode is present only while the credential is released.
	AccessCode     string `json:"access_code,omitempty"`
	AccessRevealed bool   `json:"access_revealed"`
}

type StayService interface {
	BuildGuestView(ctx context.Context, res *domain.Reservation) GuestStayRes
	Reveal(ctx context.Context, res *domain.Reservation) error
}

type stayService struct {
	clk     clock.Clock
	loc     *time.Location
	policy  *disclosure.Policy
	metrics *metrics.Metrics
}

func NewStayService(clk clock.Clock, loc *time.Location, policy *disclosure.Policy, m *metrics.Metrics) StayService {
	return &stayService{clk: clk, loc: loc, policy: policy, metrics: m}
}

func (s *stayService) BuildGuestView(ctx context.Context, res *domain.Reservation) GuestStayRes {
	now := s.clk.Now()

	view, err := stay.Derive(res, now, s.loc)
	if err != nil {
		// Fail closed, never fail the guest page.
		logger.ErrorContext(ctx, "Reservation has unusable date fields",
			"error", err, "reservation_id", res.ID)
	}

	if s.metrics != nil {
		s.metrics.StageEvaluations.WithLabelValues(string(view.Stage)).Inc()
	}

	out := GuestStayRes{
		Reservation: res.GuestDTO(),
		View:        view,
		Card:        stay.SelectCard(view),
	}

	// Past the first day the reveal ritual no longer serves a purpose.
	alwaysVisible := view.Stage == stay.StageMiddle || view.Stage == stay.StagePreCheckout

	revealed, derr := s.policy.IsRevealed(ctx, res.PropertyID, res.AccessCode(), alwaysVisible)
	if derr != nil {
		logger.WarnContext(ctx, "Disclosure lookup failed", "error", derr, "reservation_id", res.ID)
	}
	out.AccessRevealed = revealed

	if view.PasswordReleased {
		out.AccessCode = res.AccessCode()
	}

	return out
}

func (s *stayService) Reveal(ctx context.Context, res *domain.Reservation) error {
	committed, err := s.policy.Reveal(ctx, res.PropertyID, res.AccessCode())
	if committed && s.metrics != nil {
		s.metrics.RevealsTotal.Inc()
	}
	return err
}
