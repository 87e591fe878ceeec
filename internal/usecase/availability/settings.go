package availability

import (
	"context"
	"time"

	"go.uber.org/zap"

	domain "github.com/SaltaGet/Back-SIJAC/internal/domain/appointment"
	"github.com/SaltaGet/Back-SIJAC/internal/models"
)

// SlotSettings controls how windows are cut into appointments. Interval is
// the step between slot starts; Duration the length of each slot.
type SlotSettings struct {
	Interval time.Duration
	Duration time.Duration
}

func (s SlotSettings) duration() time.Duration {
	if s.Duration <= 0 {
		return s.Interval
	}
	return s.Duration
}

// notifyRemoved sends the fixed cancellation notice to every snapshot.
// Delivery is best-effort.
func notifyRemoved(
	ctx context.Context,
	n domain.Notifier,
	log *zap.Logger,
	snapshots []models.Appointment,
	reason string,
) {
	for _, ap := range snapshots {
		if err := n.NotifyClient(ctx, domain.NoticeCancelled, ap, reason); err != nil {
			log.Warn("client notification failed",
				zap.String("appointment_id", ap.ID),
				zap.Error(err),
			)
		}
	}
}
