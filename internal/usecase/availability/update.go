package availability

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/SaltaGet/Back-SIJAC/internal/audit"
	domain "github.com/SaltaGet/Back-SIJAC/internal/domain/appointment"
	"github.com/SaltaGet/Back-SIJAC/internal/httperr"
	"github.com/SaltaGet/Back-SIJAC/internal/models"
	"github.com/SaltaGet/Back-SIJAC/internal/timezone"
)

type UpdateInput struct {
	ID     string
	UserID string

	StartTime         string
	EndTime           string
	StartTimeOptional *string
	EndTimeOptional   *string
}

type UpdateAvailability struct {
	store    domain.Store
	notifier domain.Notifier
	audit    *audit.Dispatcher
	log      *zap.Logger
	now      func() time.Time
	slots    SlotSettings
}

func NewUpdateAvailability(
	store domain.Store,
	notifier domain.Notifier,
	audit *audit.Dispatcher,
	log *zap.Logger,
	now func() time.Time,
	slots SlotSettings,
) *UpdateAvailability {
	return &UpdateAvailability{
		store:    store,
		notifier: notifier,
		audit:    audit,
		log:      log,
		now:      now,
		slots:    slots,
	}
}

// Execute replaces the windows of an availability. Active slots are kept
// and must fit the new windows; everything else is regenerated. Holders of
// removed reservations are notified once the transaction commits.
func (uc *UpdateAvailability) Execute(
	ctx context.Context,
	in UpdateInput,
) (*models.Availability, error) {

	sched, err := domain.NewSchedule(
		in.StartTime,
		in.EndTime,
		in.StartTimeOptional,
		in.EndTimeOptional,
	)
	if err != nil {
		return nil, err
	}

	var (
		av   *models.Availability
		plan domain.Plan
	)

	err = uc.store.Transaction(ctx, func(tx domain.Repository) error {
		var err error

		av, err = loadOwned(ctx, tx, in.ID, in.UserID)
		if err != nil {
			return err
		}

		if timezone.SameDate(av.Date, uc.now()) {
			return httperr.ErrBusiness("availability_is_today")
		}

		current, err := tx.ListAppointmentsForUpdate(ctx, domain.AppointmentFilter{
			AvailabilityID: av.ID,
		})
		if err != nil {
			return err
		}

		plan, err = domain.PlanUpdate(current, sched, uc.slots.Interval)
		if err != nil {
			return err
		}

		for _, ap := range plan.Remove {
			if err := tx.DeleteAppointment(ctx, ap.ID); err != nil {
				return err
			}
		}

		created := domain.BuildSlots(av, plan.Create, uc.slots.duration())
		if len(created) > 0 {
			if err := tx.CreateAppointments(ctx, created); err != nil {
				return err
			}
		}

		domain.ApplySchedule(av, sched)
		if err := tx.UpdateAvailability(ctx, av); err != nil {
			return err
		}

		av.Appointments = append(append([]models.Appointment{}, plan.Keep...), created...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	notifyRemoved(ctx, uc.notifier, uc.log, plan.Notify, domain.ReasonAvailabilityModified)

	uc.log.Info("availability updated",
		zap.String("availability_id", av.ID),
		zap.String("user_id", av.UserID),
		zap.Int("kept", len(plan.Keep)),
		zap.Int("removed", len(plan.Remove)),
		zap.Int("created", len(plan.Create)),
	)

	uc.audit.Dispatch(audit.Event{
		UserID:   &in.UserID,
		Action:   "availability_updated",
		Entity:   "availability",
		EntityID: &av.ID,
		Metadata: map[string]any{
			"kept":     len(plan.Keep),
			"removed":  len(plan.Remove),
			"created":  len(plan.Create),
			"notified": len(plan.Notify),
		},
	})

	return av, nil
}

// loadOwned locks the availability and checks ownership.
func loadOwned(
	ctx context.Context,
	tx domain.Repository,
	id string,
	userID string,
) (*models.Availability, error) {

	av, err := tx.GetAvailabilityForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, httperr.ErrNotFound("availability_not_found", "")
		}
		return nil, err
	}

	if av.UserID != userID {
		return nil, httperr.ErrForbidden("not_owner", "the availability belongs to another user")
	}

	return av, nil
}
