package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/casaguide/concierge/internal/domain"
	"github.com/casaguide/concierge/internal/platform/mailer"
	"github.com/casaguide/concierge/internal/repo/postgres"
	"github.com/casaguide/concierge/pkg/config"
	"github.com/casaguide/concierge/pkg/events"
	"github.com/casaguide/concierge/pkg/logger"
)

var ErrValidation = errors.New("validation")

func validationErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrValidation}, args...)...)
}

type ReservationService interface {
	Create(ctx context.Context, req *domain.ReservationCreateReq, templateID int64) (*domain.Reservation, error)
	Get(ctx context.Context, id int64) (*domain.Reservation, error)
	GetByToken(ctx context.Context, token string) (*domain.Reservation, error)
	List(ctx context.Context, propertyID *domain.PropertyID, limit, offset int) ([]domain.Reservation, error)
	Update(ctx context.Context, id int64, patch domain.ReservationPatch) (*domain.Reservation, error)
	SetManualDeactivation(ctx context.Context, id int64, value bool) error
	SubmitFeedback(ctx context.Context, token string, req *domain.FeedbackReq) error
	Delete(ctx context.Context, id int64) (bool, error)
}

type reservationService struct {
	reservations postgres.ReservationRepo
	templates    postgres.TemplateRepo
	bus          events.Publisher
	mail         mailer.Service
	cfg          *config.Config
}

func NewReservationService(
	reservations postgres.ReservationRepo,
	templates postgres.TemplateRepo,
	bus events.Publisher,
	mail mailer.Service,
	cfg *config.Config,
) ReservationService {
	return &reservationService{
		reservations: reservations,
		templates:    templates,
		bus:          bus,
		mail:         mail,
		cfg:          cfg,
	}
}

func (s *reservationService) Create(ctx context.Context, req *domain.ReservationCreateReq, templateID int64) (*domain.Reservation, error) {
	if templateID > 0 {
		tpl, err := s.templates.GetByID(ctx, templateID)
		if err != nil {
			return nil, fmt.Errorf("load template: %w", err)
		}
		if tpl == nil {
			return nil, validationErrorf("template %d not found", templateID)
		}
		tpl.Apply(req)
	}

	if err := validateCreate(req); err != nil {
		return nil, err
	}

	res, err := s.reservations.Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create reservation: %w", err)
	}

	ev := events.ReservationCreatedEvent{
		ReservationID: res.ID,
		PropertyID:    string(res.PropertyID),
		GuestName:     res.GuestName,
		CheckInDate:   res.CheckInDate,
		CheckoutDate:  res.CheckoutDate,
		CreatedAt:     res.CreatedAt,
	}
	if err := s.bus.Publish(ctx, events.ReservationCreated, ev); err != nil {
		logger.ErrorContext(ctx, "Failed to publish reservation created event", "error", err, "reservation_id", res.ID)
	}

	if res.GuestEmail != "" {
		guideURL := fmt.Sprintf("%s/guest/stays/%s", s.cfg.Server.PublicURL, res.GuestToken)
		if err := s.mail.SendGuideLink(res.GuestEmail, res.GuestName, propertyName(res.PropertyID), guideURL); err != nil {
			// Delivery is best effort; the admin can always copy the link.
			logger.WarnContext(ctx, "Failed to send guide link email", "error", err, "reservation_id", res.ID)
		}
	}

	return res, nil
}

func (s *reservationService) Get(ctx context.Context, id int64) (*domain.Reservation, error) {
	return s.reservations.GetByID(ctx, id)
}

func (s *reservationService) GetByToken(ctx context.Context, token string) (*domain.Reservation, error) {
	return s.reservations.GetByToken(ctx, token)
}

func (s *reservationService) List(ctx context.Context, propertyID *domain.PropertyID, limit, offset int) ([]domain.Reservation, error) {
	return s.reservations.List(ctx, propertyID, limit, offset)
}

func (s *reservationService) Update(ctx context.Context, id int64, patch domain.ReservationPatch) (*domain.Reservation, error) {
	if err := validatePatch(patch); err != nil {
		return nil, err
	}

	res, err := s.reservations.Update(ctx, id, patch)
	if err != nil || res == nil {
		return res, err
	}

	ev := events.ReservationUpdatedEvent{
		ReservationID: res.ID,
		Changes:       patchChanges(patch),
		UpdatedAt:     res.UpdatedAt,
	}
	if err := s.bus.Publish(ctx, events.ReservationUpdated, ev); err != nil {
		logger.ErrorContext(ctx, "Failed to publish reservation updated event", "error", err, "reservation_id", res.ID)
	}

	return res, nil
}

// SetManualDeactivation is the danger-zone commit target. The value arrives
// explicitly from the controller, never read back from shared state.
func (s *reservationService) SetManualDeactivation(ctx context.Context, id int64, value bool) error {
	if err := s.reservations.SetManualDeactivation(ctx, id, value); err != nil {
		return fmt.Errorf("persist manual deactivation: %w", err)
	}

	subject := events.ReservationReactivated
	if value {
		subject = events.ReservationDeactivated
	}
	ev := events.ReservationDeactivatedEvent{
		ReservationID: id,
		Deactivated:   value,
		At:            time.Now(),
	}
	if err := s.bus.Publish(ctx, subject, ev); err != nil {
		logger.ErrorContext(ctx, "Failed to publish deactivation event", "error", err, "reservation_id", id)
	}

	return nil
}

func (s *reservationService) SubmitFeedback(ctx context.Context, token string, req *domain.FeedbackReq) error {
	if req.Rating < 1 || req.Rating > 5 {
		return validationErrorf("rating must be between 1 and 5")
	}

	res, err := s.reservations.GetByToken(ctx, token)
	if err != nil {
		return err
	}
	if res == nil {
		return validationErrorf("reservation not found")
	}

	ok, err := s.reservations.SetFeedback(ctx, token, req.Rating, req.Feedback)
	if err != nil {
		return fmt.Errorf("save feedback: %w", err)
	}
	if !ok {
		return validationErrorf("reservation not found")
	}

	ev := events.FeedbackSubmittedEvent{
		ReservationID: res.ID,
		Rating:        req.Rating,
		SubmittedAt:   time.Now(),
	}
	if err := s.bus.Publish(ctx, events.FeedbackSubmitted, ev); err != nil {
		logger.ErrorContext(ctx, "Failed to publish feedback event", "error", err, "reservation_id", res.ID)
	}

	return nil
}

func (s *reservationService) Delete(ctx context.Context, id int64) (bool, error) {
	ok, err := s.reservations.Delete(ctx, id)
	if err != nil || !ok {
		return ok, err
	}

	ev := events.ReservationDeletedEvent{ReservationID: id, DeletedAt: time.Now()}
	if err := s.bus.Publish(ctx, events.ReservationDeleted, ev); err != nil {
		logger.ErrorContext(ctx, "Failed to publish reservation deleted event", "error", err, "reservation_id", id)
	}

	return true, nil
}

func propertyName(p domain.PropertyID) string {
	if p == domain.PropertyLili {
		return "Lili"
	}
	return "Integração"
}

func validateCreate(req *domain.ReservationCreateReq) error {
	prop, ok := domain.ParsePropertyID(req.PropertyID)
	if !ok {
		return validationErrorf("unknown property_id %q", req.PropertyID)
	}
	if req.GuestName == "" {
		return validationErrorf("guest_name is required")
	}

	// The credential field set follows the property: Lili has a door lock
	// code, Integração has a flat number.
	switch prop {
	case domain.PropertyLili:
		if req.FlatNumber != "" {
			return validationErrorf("flat_number does not apply to lili")
		}
	case domain.PropertyIntegracao:
		if req.LockCode != "" {
			return validationErrorf("lock_code does not apply to integracao")
		}
	}

	checkIn, err := combineStamp(req.CheckInDate, req.CheckInTime)
	if err != nil {
		return validationErrorf("invalid check-in: %v", err)
	}
	checkOut, err := combineStamp(req.CheckoutDate, req.CheckOutTime)
	if err != nil {
		return validationErrorf("invalid checkout: %v", err)
	}
	if checkOut.Before(checkIn) {
		return validationErrorf("checkout precedes check-in")
	}

	return nil
}

func validatePatch(patch domain.ReservationPatch) error {
	for name, v := range map[string]*string{
		"check_in_date": patch.CheckInDate,
		"checkout_date": patch.CheckoutDate,
	} {
		if v != nil {
			if _, err := time.Parse("2006-01-02", *v); err != nil {
				return validationErrorf("invalid %s %q", name, *v)
			}
		}
	}
	for name, v := range map[string]*string{
		"check_in_time":  patch.CheckInTime,
		"check_out_time": patch.CheckOutTime,
	} {
		if v != nil {
			if _, err := time.Parse("15:04", *v); err != nil {
				return validationErrorf("invalid %s %q", name, *v)
			}
		}
	}
	return nil
}

func combineStamp(date, clock string) (time.Time, error) {
	return time.Parse("2006-01-02 15:04", date+" "+clock)
}

func patchChanges(patch domain.ReservationPatch) []string {
	var out []string
	add := func(name string, set bool) {
		if set {
			out = append(out, name)
		}
	}
	add("guest_name", patch.GuestName != nil)
	add("guest_phone", patch.GuestPhone != nil)
	add("check_in_date", patch.CheckInDate != nil)
	add("check_in_time", patch.CheckInTime != nil)
	add("checkout_date", patch.CheckoutDate != nil)
	add("check_out_time", patch.CheckOutTime != nil)
	add("lock_code", patch.LockCode != nil)
	add("flat_number", patch.FlatNumber != nil)
	add("guest_alert_active", patch.GuestAlertActive != nil)
	add("guest_alert_text", patch.GuestAlertText != nil)
	add("welcome_message", patch.WelcomeMessage != nil)
	add("admin_notes", patch.AdminNotes != nil)
	return out
}
