// Package stay derives the guest-facing lifecycle state for a reservation.
// Everything here is pure: callers supply the reservation snapshot and the
// current time, and get back the stage plus the derived flags that gate
// credential disclosure and card selection.
package stay

import (
	"fmt"
	"time"

	"github.com/casaguide/concierge/internal/domain"
)

type Stage string

const (
	StagePreCheckin   Stage = "pre_checkin"
	StageCheckin      Stage = "checkin"
	StageMiddle       Stage = "middle"
	StagePreCheckout  Stage = "pre_checkout"
	StageCheckout     Stage = "checkout"
	StagePostCheckout Stage = "post_checkout"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// View is the full derived output for one evaluation.
type View struct {
	Stage            Stage `json:"stage"`
	TimeVerified     bool  `json:"is_time_verified"`
	PasswordReleased bool  `json:"is_password_released"`
	SingleNight      bool  `json:"is_single_night"`
	CheckoutToday    bool  `json:"is_checkout_today"`

	// Deactivated mirrors the record's manual override. The stage above is
	// always the time-derived one so the audit trail of "what stage would
	// have applied" survives; presentation handles the override.
	Deactivated bool `json:"deactivated"`
}

// failClosed is the view shown when the record's date fields cannot be
// trusted: the most conservative stage, nothing released.
func failClosed(now time.Time, deactivated bool) View {
	return View{
		Stage:        StagePreCheckin,
		TimeVerified: !now.IsZero(),
		Deactivated:  deactivated,
	}
}

func combine(date, clock string, loc *time.Location) (time.Time, error) {
	if date == "" || clock == "" {
		return time.Time{}, fmt.Errorf("missing date/time component (%q, %q)", date, clock)
	}
	return time.ParseInLocation(dateLayout+" "+timeLayout, date+" "+clock, loc)
}

// Derive maps a reservation snapshot and the current time to the stay view.
//
// A non-nil error reports a data-quality problem with the record's date
// fields; the returned view is still usable (failed closed to pre_checkin,
// nothing released) so the guest screen never hard-fails.
func Derive(res *domain.Reservation, now time.Time, loc *time.Location) (View, error) {
	deactivated := res.ManualDeactivation

	checkIn, err := combine(res.CheckInDate, res.CheckInTime, loc)
	if err != nil {
		return failClosed(now, deactivated), fmt.Errorf("check-in: %w", err)
	}
	checkOut, err := combine(res.CheckoutDate, res.CheckOutTime, loc)
	if err != nil {
		return failClosed(now, deactivated), fmt.Errorf("checkout: %w", err)
	}
	if checkOut.Before(checkIn) {
		return failClosed(now, deactivated), fmt.Errorf("checkout %s precedes check-in %s", checkOut, checkIn)
	}

	const day = 24 * time.Hour

	v := View{
		TimeVerified: !now.IsZero(),
		Deactivated:  deactivated,
	}

	inDate, _ := time.ParseInLocation(dateLayout, res.CheckInDate, loc)
	outDate, _ := time.ParseInLocation(dateLayout, res.CheckoutDate, loc)
	v.SingleNight = outDate.Sub(inDate) <= day
	v.CheckoutToday = now.In(loc).Format(dateLayout) == res.CheckoutDate

	switch {
	case now.Before(checkIn.Add(-day)):
		v.Stage = StagePreCheckin
	case now.Before(checkIn):
		v.Stage = StagePreCheckin
		v.PasswordReleased = true
	case now.Before(checkOut):
		v.PasswordReleased = true
		switch {
		// First-day grace wins over the pre-checkout window so single-night
		// stays hold the arrival card until checkout time.
		case now.Before(checkIn.Add(day)):
			v.Stage = StageCheckin
		case !now.Before(checkOut.Add(-day)):
			v.Stage = StagePreCheckout
		default:
			v.Stage = StageMiddle
		}
	case now.Before(checkOut.Add(day)):
		v.Stage = StageCheckout
	default:
		v.Stage = StagePostCheckout
	}

	// Manual deactivation revokes every stage-derived unlock.
	if deactivated {
		v.PasswordReleased = false
	}

	return v, nil
}
