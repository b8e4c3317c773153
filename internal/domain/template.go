package domain

import "time"

// Template is a named, reusable subset of reservation fields used to
// prefill new reservations. Create/apply/delete only; no further lifecycle.
type Template struct {
	ID             int64      `json:"id"`
	Name           string     `json:"name"`
	PropertyID     PropertyID `json:"property_id"`
	GuestName      string     `json:"guest_name,omitempty"`
	GuestPhone     string     `json:"guest_phone,omitempty"`
	FlatNumber     string     `json:"flat_number,omitempty"`
	WelcomeMessage string     `json:"welcome_message,omitempty"`
	AdminNotes     string     `json:"admin_notes,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

type TemplateCreateReq struct {
	Name           string `json:"name"`
	PropertyID     string `json:"property_id"`
	GuestName      string `json:"guest_name"`
	GuestPhone     string `json:"guest_phone"`
	FlatNumber     string `json:"flat_number"`
	WelcomeMessage string `json:"welcome_message"`
	AdminNotes     string `json:"admin_notes"`
}

// Apply copies the template's prefill fields onto a create request,
// leaving fields the request already sets untouched.
func (t *Template) Apply(req *ReservationCreateReq) {
	if req.PropertyID == "" {
		req.PropertyID = string(t.PropertyID)
	}
	if req.GuestName == "" {
		req.GuestName = t.GuestName
	}
	if req.GuestPhone == "" {
		req.GuestPhone = t.GuestPhone
	}
	if req.FlatNumber == "" {
		req.FlatNumber = t.FlatNumber
	}
	if req.WelcomeMessage == "" {
		req.WelcomeMessage = t.WelcomeMessage
	}
	if req.AdminNotes == "" {
		req.AdminNotes = t.AdminNotes
	}
}
