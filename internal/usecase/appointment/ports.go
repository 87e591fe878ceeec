package appointment

import (
	"context"
	"time"

	"go.uber.org/zap"

	domain "github.com/SaltaGet/Back-SIJAC/internal/domain/appointment"
	"github.com/SaltaGet/Back-SIJAC/internal/models"
	"github.com/SaltaGet/Back-SIJAC/internal/scheduler"
	"github.com/SaltaGet/Back-SIJAC/internal/token"
)

// ConfirmationTokens mints and verifies the link tokens e-mailed to
// clients.
type ConfirmationTokens interface {
	MintConfirmation(appointmentID, userID string, ttl time.Duration) (string, time.Time, error)
	ParseConfirmation(raw string) (token.Confirmation, error)
}

type JobScheduler interface {
	Schedule(ctx context.Context, job scheduler.Job) error
}

func notifyClient(
	ctx context.Context,
	n domain.Notifier,
	log *zap.Logger,
	kind domain.Notice,
	ap models.Appointment,
	reason string,
) {
	if err := n.NotifyClient(ctx, kind, ap, reason); err != nil {
		log.Warn("client notification failed",
			zap.String("appointment_id", ap.ID),
			zap.String("notice", string(kind)),
			zap.Error(err),
		)
	}
}
