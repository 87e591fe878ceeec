package appointment

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/SaltaGet/Back-SIJAC/internal/audit"
	domain "github.com/SaltaGet/Back-SIJAC/internal/domain/appointment"
	"github.com/SaltaGet/Back-SIJAC/internal/httperr"
	"github.com/SaltaGet/Back-SIJAC/internal/models"
	"github.com/SaltaGet/Back-SIJAC/internal/token"
)

type ConfirmAppointment struct {
	store    domain.Store
	tokens   ConfirmationTokens
	notifier domain.Notifier
	audit    *audit.Dispatcher
	log      *zap.Logger
}

func NewConfirmAppointment(
	store domain.Store,
	tokens ConfirmationTokens,
	notifier domain.Notifier,
	audit *audit.Dispatcher,
	log *zap.Logger,
) *ConfirmAppointment {
	return &ConfirmAppointment{
		store:    store,
		tokens:   tokens,
		notifier: notifier,
		audit:    audit,
		log:      log,
	}
}

// Execute moves a reservation to pending. The token must still be the one
// stored on the row, so links from an earlier reservation of the same slot
// are refused.
func (uc *ConfirmAppointment) Execute(
	ctx context.Context,
	raw string,
) (*models.Appointment, error) {

	claims, err := uc.tokens.ParseConfirmation(raw)
	if err != nil {
		if errors.Is(err, token.ErrExpired) {
			return nil, httperr.ErrUnauthorized("token_expired", "the confirmation link has expired")
		}
		return nil, httperr.ErrUnauthorized("invalid_token", "")
	}

	var ap *models.Appointment

	err = uc.store.Transaction(ctx, func(tx domain.Repository) error {
		var err error

		ap, err = tx.GetAppointmentForUpdate(ctx, claims.AppointmentID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return errConfirmNotFound
			}
			return err
		}

		if ap.UserID != claims.UserID || ap.Token == nil || *ap.Token != raw {
			return errConfirmNotFound
		}

		if err := domain.Confirm(ap); err != nil {
			return err
		}

		return tx.UpdateAppointment(ctx, ap)
	})
	if err != nil {
		return nil, err
	}

	staff, err := uc.store.GetUser(ctx, ap.UserID)
	if err != nil {
		uc.log.Warn("staff lookup failed", zap.String("user_id", ap.UserID), zap.Error(err))
		staff = nil
	}
	if err := uc.notifier.NotifyStaff(ctx, *ap, staff); err != nil {
		uc.log.Warn("staff notification failed", zap.String("appointment_id", ap.ID), zap.Error(err))
	}

	uc.log.Info("appointment confirmed",
		zap.String("appointment_id", ap.ID),
		zap.String("user_id", ap.UserID),
		zap.String("state", ap.State),
	)

	uc.audit.Dispatch(audit.Event{
		Action:   "appointment_confirmed",
		Entity:   "appointment",
		EntityID: &ap.ID,
	})

	return ap, nil
}

var errConfirmNotFound = httperr.ErrNotFound("appointment_not_found", "no reservation matches this link")
