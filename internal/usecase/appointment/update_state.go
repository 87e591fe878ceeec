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
)

type UpdateStateInput struct {
	AppointmentID string
	UserID        string
	State         domain.State
	Reason        string
}

type UpdateAppointmentState struct {
	store    domain.Store
	notifier domain.Notifier
	audit    *audit.Dispatcher
	log      *zap.Logger
	now      func() time.Time
	buffer   time.Duration
}

func NewUpdateAppointmentState(
	store domain.Store,
	notifier domain.Notifier,
	audit *audit.Dispatcher,
	log *zap.Logger,
	now func() time.Time,
	buffer time.Duration,
) *UpdateAppointmentState {
	return &UpdateAppointmentState{
		store:    store,
		notifier: notifier,
		audit:    audit,
		log:      log,
		now:      now,
		buffer:   buffer,
	}
}

// Execute applies a staff decision. Accept and reject keep the client data;
// any other target resets the slot, and cancel tells the client first. The
// notice is built from the row as it was before the change.
func (uc *UpdateAppointmentState) Execute(
	ctx context.Context,
	in UpdateStateInput,
) (*models.Appointment, error) {

	var (
		ap       *models.Appointment
		snapshot models.Appointment
		notice   domain.Notice
	)

	err := uc.store.Transaction(ctx, func(tx domain.Repository) error {
		var err error

		ap, err = tx.GetAppointmentForUpdate(ctx, in.AppointmentID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return errAppointmentNotFound
			}
			return err
		}
		if ap.UserID != in.UserID {
			return errAppointmentNotFound
		}

		if err := domain.CanDecide(ap, uc.now(), uc.buffer); err != nil {
			return err
		}

		snapshot = *ap

		if in.State.IsDecision() {
			if err := domain.Decide(ap, in.State); err != nil {
				return err
			}
			notice = domain.NoticeFor(in.State)
		} else {
			if in.State == domain.StateCancel && domain.IsClaimed(&snapshot) {
				notice = domain.NoticeCancelled
			}
			domain.Reset(ap)
		}

		return tx.UpdateAppointment(ctx, ap)
	})
	if err != nil {
		return nil, err
	}

	if notice != "" {
		notifyClient(ctx, uc.notifier, uc.log, notice, snapshot, in.Reason)
	}

	uc.log.Info("appointment state updated",
		zap.String("appointment_id", ap.ID),
		zap.String("user_id", in.UserID),
		zap.String("from", snapshot.State),
		zap.String("state", ap.State),
	)

	uc.audit.Dispatch(audit.Event{
		UserID:   &in.UserID,
		Action:   "appointment_state_updated",
		Entity:   "appointment",
		EntityID: &ap.ID,
		Metadata: map[string]any{
			"from":      snapshot.State,
			"requested": in.State.String(),
			"to":        ap.State,
		},
	})

	return ap, nil
}

var errAppointmentNotFound = httperr.ErrNotFound("appointment_not_found", "")
