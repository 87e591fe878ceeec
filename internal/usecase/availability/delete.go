package availability

import (
	"context"

	"go.uber.org/zap"

	"github.com/SaltaGet/Back-SIJAC/internal/audit"
	domain "github.com/SaltaGet/Back-SIJAC/internal/domain/appointment"
)

type DeleteAvailability struct {
	store    domain.Store
	notifier domain.Notifier
	audit    *audit.Dispatcher
	log      *zap.Logger
}

func NewDeleteAvailability(
	store domain.Store,
	notifier domain.Notifier,
	audit *audit.Dispatcher,
	log *zap.Logger,
) *DeleteAvailability {
	return &DeleteAvailability{
		store:    store,
		notifier: notifier,
		audit:    audit,
		log:      log,
	}
}

func (uc *DeleteAvailability) Execute(
	ctx context.Context,
	id string,
	userID string,
) error {

	var plan domain.Plan

	err := uc.store.Transaction(ctx, func(tx domain.Repository) error {
		av, err := loadOwned(ctx, tx, id, userID)
		if err != nil {
			return err
		}

		current, err := tx.ListAppointmentsForUpdate(ctx, domain.AppointmentFilter{
			AvailabilityID: av.ID,
		})
		if err != nil {
			return err
		}

		plan = domain.PlanDelete(current)
		for _, ap := range plan.Remove {
			if err := tx.DeleteAppointment(ctx, ap.ID); err != nil {
				return err
			}
		}

		return tx.DeleteAvailability(ctx, av.ID)
	})
	if err != nil {
		return err
	}

	notifyRemoved(ctx, uc.notifier, uc.log, plan.Notify, domain.ReasonAvailabilityDeleted)

	uc.log.Info("availability deleted",
		zap.String("availability_id", id),
		zap.String("user_id", userID),
		zap.Int("removed", len(plan.Remove)),
		zap.Int("notified", len(plan.Notify)),
	)

	uc.audit.Dispatch(audit.Event{
		UserID:   &userID,
		Action:   "availability_deleted",
		Entity:   "availability",
		EntityID: &id,
		Metadata: map[string]any{"notified": len(plan.Notify)},
	})

	return nil
}
