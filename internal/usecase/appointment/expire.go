package appointment

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/SaltaGet/Back-SIJAC/internal/audit"
	domain "github.com/SaltaGet/Back-SIJAC/internal/domain/appointment"
	"github.com/SaltaGet/Back-SIJAC/internal/scheduler"
)

// ExpireReservation is the compensating action behind every reservation.
// It re-reads the slot and only resets it if it is still reserved and its
// stored token has run out. A newer reservation of the same slot carries a
// fresh token and is left alone.
type ExpireReservation struct {
	store  domain.Store
	tokens ConfirmationTokens
	audit  *audit.Dispatcher
	log    *zap.Logger
	now    func() time.Time
}

func NewExpireReservation(
	store domain.Store,
	tokens ConfirmationTokens,
	audit *audit.Dispatcher,
	log *zap.Logger,
	now func() time.Time,
) *ExpireReservation {
	return &ExpireReservation{
		store:  store,
		tokens: tokens,
		audit:  audit,
		log:    log,
		now:    now,
	}
}

// Handle adapts Execute to the scheduler.
func (uc *ExpireReservation) Handle(ctx context.Context, job scheduler.Job) error {
	_, err := uc.Execute(ctx, job.AppointmentID)
	return err
}

// Execute reports whether the slot was released.
func (uc *ExpireReservation) Execute(ctx context.Context, appointmentID string) (bool, error) {
	released := false

	err := uc.store.Transaction(ctx, func(tx domain.Repository) error {
		ap, err := tx.GetAppointmentForUpdate(ctx, appointmentID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil
			}
			return err
		}

		if !domain.IsExpirable(ap) {
			return nil
		}

		if claims, err := uc.tokens.ParseConfirmation(*ap.Token); err == nil && claims.ExpiresAt.After(uc.now()) {
			return nil
		}

		domain.Reset(ap)
		if err := tx.UpdateAppointment(ctx, ap); err != nil {
			return err
		}

		released = true
		return nil
	})
	if err != nil {
		return false, err
	}

	if released {
		uc.log.Info("reservation expired",
			zap.String("appointment_id", appointmentID),
			zap.String("state", string(domain.StateNull)),
		)

		uc.audit.Dispatch(audit.Event{
			Action:   "appointment_reservation_expired",
			Entity:   "appointment",
			EntityID: &appointmentID,
		})
	}

	return released, nil
}
