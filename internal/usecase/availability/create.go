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

// ======================================================
// INPUT
// ======================================================

type CreateInput struct {
	UserID string

	Date              string
	StartTime         string
	EndTime           string
	StartTimeOptional *string
	EndTimeOptional   *string
}

// ======================================================
// USE CASE
// ======================================================

type CreateAvailability struct {
	store domain.Store
	audit *audit.Dispatcher
	log   *zap.Logger
	now   func() time.Time
	slots SlotSettings
}

func NewCreateAvailability(
	store domain.Store,
	audit *audit.Dispatcher,
	log *zap.Logger,
	now func() time.Time,
	slots SlotSettings,
) *CreateAvailability {
	return &CreateAvailability{
		store: store,
		audit: audit,
		log:   log,
		now:   now,
		slots: slots,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *CreateAvailability) Execute(
	ctx context.Context,
	in CreateInput,
) (*models.Availability, error) {

	now := uc.now()

	// --------------------------------------------------
	// 1. Date must be after today
	// --------------------------------------------------
	date, err := timezone.ParseDate(in.Date, now.Location())
	if err != nil {
		return nil, httperr.ErrInvalidOperation("invalid_date", in.Date)
	}
	if !timezone.BeforeDate(now, date) {
		return nil, httperr.ErrBusiness("date_must_be_future")
	}

	// --------------------------------------------------
	// 2. Windows
	// --------------------------------------------------
	sched, err := domain.NewSchedule(
		in.StartTime,
		in.EndTime,
		in.StartTimeOptional,
		in.EndTimeOptional,
	)
	if err != nil {
		return nil, err
	}

	av := &models.Availability{
		UserID: in.UserID,
		Date:   date,
	}
	domain.ApplySchedule(av, sched)

	// --------------------------------------------------
	// 3. Availability + slots, atomically
	// --------------------------------------------------
	err = uc.store.Transaction(ctx, func(tx domain.Repository) error {
		_, err := tx.FindAvailabilityByDate(ctx, in.UserID, date)
		switch {
		case err == nil:
			return errAvailabilityExists
		case !errors.Is(err, domain.ErrNotFound):
			return err
		}

		if err := tx.CreateAvailability(ctx, av); err != nil {
			if errors.Is(err, domain.ErrDuplicate) {
				return errAvailabilityExists
			}
			return err
		}

		slots := domain.BuildSlots(av, sched.SlotStarts(uc.slots.Interval), uc.slots.duration())
		if len(slots) > 0 {
			if err := tx.CreateAppointments(ctx, slots); err != nil {
				return err
			}
		}

		av.Appointments = slots
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info("availability created",
		zap.String("availability_id", av.ID),
		zap.String("user_id", av.UserID),
		zap.Int("slots", len(av.Appointments)),
	)

	uc.audit.Dispatch(audit.Event{
		UserID:   &in.UserID,
		Action:   "availability_created",
		Entity:   "availability",
		EntityID: &av.ID,
		Metadata: map[string]any{
			"date":  in.Date,
			"slots": len(av.Appointments),
		},
	})

	return av, nil
}

var errAvailabilityExists = httperr.ErrConflict(
	"availability_exists",
	"an availability already exists for this date",
)
