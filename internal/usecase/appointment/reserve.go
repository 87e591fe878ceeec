package appointment

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/SaltaGet/Back-SIJAC/internal/audit"
	domain "github.com/SaltaGet/Back-SIJAC/internal/domain/appointment"
	"github.com/SaltaGet/Back-SIJAC/internal/httperr"
	"github.com/SaltaGet/Back-SIJAC/internal/models"
	"github.com/SaltaGet/Back-SIJAC/internal/scheduler"
	"github.com/SaltaGet/Back-SIJAC/internal/timezone"
)

// ======================================================
// INPUT
// ======================================================

type ReserveInput struct {
	AppointmentID string

	FullName  string
	Email     string
	Cellphone string
	Reason    string
}

// ======================================================
// USE CASE
// ======================================================

type ReserveAppointment struct {
	store     domain.Store
	tokens    ConfirmationTokens
	scheduler JobScheduler
	notifier  domain.Notifier
	audit     *audit.Dispatcher
	log       *zap.Logger
	now       func() time.Time
	ttl       time.Duration
}

func NewReserveAppointment(
	store domain.Store,
	tokens ConfirmationTokens,
	scheduler JobScheduler,
	notifier domain.Notifier,
	audit *audit.Dispatcher,
	log *zap.Logger,
	now func() time.Time,
	ttl time.Duration,
) *ReserveAppointment {
	return &ReserveAppointment{
		store:     store,
		tokens:    tokens,
		scheduler: scheduler,
		notifier:  notifier,
		audit:     audit,
		log:       log,
		now:       now,
		ttl:       ttl,
	}
}

// ======================================================
// EXECUTE
// ======================================================

// Execute claims an open slot for a client. The expiry job is queued inside
// the transaction so a reservation never commits without one; a job left
// behind by a rolled back reservation finds nothing to expire.
func (uc *ReserveAppointment) Execute(
	ctx context.Context,
	in ReserveInput,
) (*models.Appointment, error) {

	var ap *models.Appointment

	err := uc.store.Transaction(ctx, func(tx domain.Repository) error {
		var err error

		ap, err = tx.GetAppointmentForUpdate(ctx, in.AppointmentID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return httperr.ErrNotFound("appointment_not_found", "")
			}
			return err
		}

		today := timezone.DateOf(uc.now())
		if err := domain.CanReserve(ap, today); err != nil {
			return err
		}

		tok, expiresAt, err := uc.tokens.MintConfirmation(ap.ID, ap.UserID, uc.ttl)
		if err != nil {
			return err
		}

		fields := domain.ClientFields{
			FullName:  in.FullName,
			Email:     in.Email,
			Cellphone: in.Cellphone,
			Reason:    in.Reason,
		}
		if err := domain.Reserve(ap, fields, tok, today); err != nil {
			return err
		}

		if err := tx.UpdateAppointment(ctx, ap); err != nil {
			return err
		}

		return uc.scheduler.Schedule(ctx, scheduler.NewJob(ap.ID, expiresAt))
	})
	if err != nil {
		return nil, err
	}

	notifyClient(ctx, uc.notifier, uc.log, domain.NoticeConfirmRequest, *ap, "")

	uc.log.Info("appointment reserved",
		zap.String("appointment_id", ap.ID),
		zap.String("user_id", ap.UserID),
		zap.String("state", ap.State),
	)

	uc.audit.Dispatch(audit.Event{
		Action:   "appointment_reserved",
		Entity:   "appointment",
		EntityID: &ap.ID,
		Metadata: map[string]any{"email": *ap.Email},
	})

	return ap, nil
}
