package appointment

import (
	"strings"
	"time"

	"github.com/SaltaGet/Back-SIJAC/internal/httperr"
	"github.com/SaltaGet/Back-SIJAC/internal/models"
	"github.com/SaltaGet/Back-SIJAC/internal/timezone"
)

// ClientFields is what a client supplies when claiming a slot.
type ClientFields struct {
	FullName  string
	Email     string
	Cellphone string
	Reason    string
}

func (f ClientFields) normalized() ClientFields {
	return ClientFields{
		FullName:  strings.TrimSpace(f.FullName),
		Email:     strings.ToLower(strings.TrimSpace(f.Email)),
		Cellphone: strings.TrimSpace(f.Cellphone),
		Reason:    strings.TrimSpace(f.Reason),
	}
}

func StateOf(ap *models.Appointment) State {
	return State(ap.State)
}

func IsClaimed(ap *models.Appointment) bool {
	return ap.FullName != nil && ap.Email != nil
}

// ===============================
// Validations
// ===============================

// CanReserve checks that a slot is open and dated after today.
func CanReserve(ap *models.Appointment, today time.Time) error {
	if StateOf(ap) != StateNull {
		return httperr.ErrInvalidState("appointment_not_open", "the slot was already claimed")
	}
	if !timezone.BeforeDate(today, ap.Date) {
		return httperr.ErrBusiness("appointment_date_passed")
	}
	return nil
}

// CanDecide enforces the lock-out window before the slot starts.
func CanDecide(ap *models.Appointment, now time.Time, buffer time.Duration) error {
	loc := now.Location()
	start, err := timezone.At(timezone.DateIn(ap.Date, loc), ap.StartTime, loc)
	if err != nil {
		return httperr.ErrInvalidOperation("invalid_start_time", ap.StartTime)
	}
	if !start.After(now.Add(buffer)) {
		return httperr.ErrBusiness("decision_window_closed")
	}
	return nil
}

// ===============================
// Domain Actions
// ===============================

func Reserve(ap *models.Appointment, in ClientFields, token string, today time.Time) error {
	if err := CanReserve(ap, today); err != nil {
		return err
	}

	in = in.normalized()
	ap.FullName = &in.FullName
	ap.Email = &in.Email
	ap.Cellphone = &in.Cellphone
	ap.Reason = &in.Reason
	ap.State = string(StateReserved)
	ap.Token = &token
	return nil
}

func Confirm(ap *models.Appointment) error {
	if StateOf(ap) != StateReserved {
		return httperr.ErrInvalidState("already_confirmed", "the reservation is no longer awaiting confirmation")
	}
	ap.State = string(StatePending)
	return nil
}

// Decide applies an accept or reject decision on a claimed slot. Client
// fields are kept; the confirmation token is spent.
func Decide(ap *models.Appointment, to State) error {
	if !to.IsDecision() {
		return httperr.ErrInvalidOperation("invalid_decision", to.String())
	}
	if StateOf(ap) == StateNull || !IsClaimed(ap) {
		return httperr.ErrInvalidState("appointment_not_claimed", "")
	}
	ap.State = string(to)
	ap.Token = nil
	return nil
}

// Reset returns the slot to the open state.
func Reset(ap *models.Appointment) {
	ap.State = string(StateNull)
	ap.FullName = nil
	ap.Email = nil
	ap.Cellphone = nil
	ap.Reason = nil
	ap.Token = nil
}

// IsExpirable reports whether an expiry job may still reset the slot.
func IsExpirable(ap *models.Appointment) bool {
	return StateOf(ap) == StateReserved && ap.Token != nil
}
