package domain

import "time"

type PropertyID string

const (
	PropertyLili       PropertyID = "lili"
	PropertyIntegracao PropertyID = "integracao"
)

func ParsePropertyID(s string) (PropertyID, bool) {
	switch PropertyID(s) {
	case PropertyLili, PropertyIntegracao:
		return PropertyID(s), true
	default:
		return "", false
	}
}

// Reservation is the persisted record for one guest stay. Date and time
// components are stored as wall-clock strings (YYYY-MM-DD, HH:MM) in the
// property's single deployment timezone.
type Reservation struct {
	ID         int64      `json:"id"`
	GuestToken string     `json:"guest_token"`
	PropertyID PropertyID `json:"property_id"`

	GuestName  string `json:"guest_name"`
	GuestPhone string `json:"guest_phone"`
	// GuestEmail is optional; when present it is only used to deliver the
	// magic guide link, never shown on the guest page.
	GuestEmail string `json:"guest_email,omitempty"`

	CheckInDate  string `json:"check_in_date"`
	CheckInTime  string `json:"check_in_time"`
	CheckoutDate string `json:"checkout_date"`
	CheckOutTime string `json:"check_out_time"`

	// Exactly one of these is active, selected by PropertyID.
	LockCode   string `json:"lock_code,omitempty"`
	FlatNumber string `json:"flat_number,omitempty"`

	ManualDeactivation bool `json:"manual_deactivation"`

	GuestAlertActive bool   `json:"guest_alert_active"`
	GuestAlertText   string `json:"guest_alert_text,omitempty"`

	WelcomeMessage string `json:"welcome_message,omitempty"`
	AdminNotes     string `json:"admin_notes,omitempty"`

	GuestRating   *int   `json:"guest_rating,omitempty"`
	GuestFeedback string `json:"guest_feedback,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AccessCode returns the credential the guest unlocks with, as selected
// by the property type.
func (r *Reservation) AccessCode() string {
	if r.PropertyID == PropertyLili {
		return r.LockCode
	}
	return r.FlatNumber
}

type ReservationCreateReq struct {
	PropertyID   string `json:"property_id"`
	GuestName    string `json:"guest_name"`
	GuestPhone   string `json:"guest_phone"`
	GuestEmail   string `json:"guest_email"`
	CheckInDate  string `json:"check_in_date"`
	CheckInTime  string `json:"check_in_time"`
	CheckoutDate string `json:"checkout_date"`
	CheckOutTime string `json:"check_out_time"`
	LockCode     string `json:"lock_code"`
	FlatNumber   string `json:"flat_number"`

	WelcomeMessage string `json:"welcome_message"`
	AdminNotes     string `json:"admin_notes"`
}

// ReservationPatch carries partial admin edits. Nil fields are untouched.
type ReservationPatch struct {
	GuestName    *string `json:"guest_name"`
	GuestPhone   *string `json:"guest_phone"`
	CheckInDate  *string `json:"check_in_date"`
	CheckInTime  *string `json:"check_in_time"`
	CheckoutDate *string `json:"checkout_date"`
	CheckOutTime *string `json:"check_out_time"`
	LockCode     *string `json:"lock_code"`
	FlatNumber   *string `json:"flat_number"`

	GuestAlertActive *bool   `json:"guest_alert_active"`
	GuestAlertText   *string `json:"guest_alert_text"`
	WelcomeMessage   *string `json:"welcome_message"`
	AdminNotes       *string `json:"admin_notes"`
}

type FeedbackReq struct {
	Rating   int    `json:"rating"`
	Feedback string `json:"feedback"`
}

// GuestReservationDTO is the guest-visible projection of a reservation.
// Admin-only fields (notes, rating, feedback) are stripped, and the guest
// token is not echoed back.
type GuestReservationDTO struct {
	PropertyID   PropertyID `json:"property_id"`
	GuestName    string     `json:"guest_name"`
	CheckInDate  string     `json:"check_in_date"`
	CheckInTime  string     `json:"check_in_time"`
	CheckoutDate string     `json:"checkout_date"`
	CheckOutTime string     `json:"check_out_time"`

	GuestAlertActive bool   `json:"guest_alert_active"`
	GuestAlertText   string `json:"guest_alert_text,omitempty"`
	WelcomeMessage   string `json:"welcome_message,omitempty"`
}

func (r *Reservation) GuestDTO() GuestReservationDTO {
	return GuestReservationDTO{
		PropertyID:       r.PropertyID,
		GuestName:        r.GuestName,
		CheckInDate:      r.CheckInDate,
		CheckInTime:      r.CheckInTime,
		CheckoutDate:     r.CheckoutDate,
		CheckOutTime:     r.CheckOutTime,
		GuestAlertActive: r.GuestAlertActive,
		GuestAlertText:   r.GuestAlertText,
		WelcomeMessage:   r.WelcomeMessage,
	}
}
