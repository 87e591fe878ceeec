package appointment

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/SaltaGet/Back-SIJAC/internal/audit"
	domain "github.com/SaltaGet/Back-SIJAC/internal/domain/appointment"
	"github.com/SaltaGet/Back-SIJAC/internal/timezone"
)

// BackupTask is an off-box copy run after the purge.
type BackupTask interface {
	Name() string
	Run(ctx context.Context) error
}

type SweepResult struct {
	Purged        int      `json:"purged"`
	PurgeFailures int      `json:"purge_failures"`
	Released      int      `json:"released"`
	BackupsOK     []string `json:"backups_ok"`
	BackupsFailed []string `json:"backups_failed"`
}

// SweepStaleAppointments purges open slots dated before today, releases
// reservations whose expiry job never ran, and then runs the backups.
// Every step is best-effort.
type SweepStaleAppointments struct {
	store   domain.Store
	expire  *ExpireReservation
	backups []BackupTask
	audit   *audit.Dispatcher
	log     *zap.Logger
	now     func() time.Time
}

func NewSweepStaleAppointments(
	store domain.Store,
	expire *ExpireReservation,
	backups []BackupTask,
	audit *audit.Dispatcher,
	log *zap.Logger,
	now func() time.Time,
) *SweepStaleAppointments {
	return &SweepStaleAppointments{
		store:   store,
		expire:  expire,
		backups: backups,
		audit:   audit,
		log:     log,
		now:     now,
	}
}

func (uc *SweepStaleAppointments) Execute(ctx context.Context) (SweepResult, error) {
	var res SweepResult

	// --------------------------------------------------
	// 1. Stale open slots
	// --------------------------------------------------
	today := timezone.DateOf(uc.now())

	stale, err := uc.store.ListAppointments(ctx, domain.AppointmentFilter{
		States:     []domain.State{domain.StateNull},
		DateBefore: &today,
	})
	if err != nil {
		return res, err
	}

	for _, ap := range stale {
		if err := uc.store.DeleteAppointment(ctx, ap.ID); err != nil {
			res.PurgeFailures++
			uc.log.Warn("stale appointment purge failed",
				zap.String("appointment_id", ap.ID),
				zap.Error(err),
			)
			continue
		}
		res.Purged++
	}

	// --------------------------------------------------
	// 2. Reservations whose expiry job was lost
	// --------------------------------------------------
	if uc.expire != nil {
		reserved, err := uc.store.ListAppointments(ctx, domain.AppointmentFilter{
			States: []domain.State{domain.StateReserved},
		})
		if err != nil {
			uc.log.Warn("listing reservations failed", zap.Error(err))
		}
		for _, ap := range reserved {
			released, err := uc.expire.Execute(ctx, ap.ID)
			if err != nil {
				uc.log.Warn("reservation release failed",
					zap.String("appointment_id", ap.ID),
					zap.Error(err),
				)
				continue
			}
			if released {
				res.Released++
			}
		}
	}

	// --------------------------------------------------
	// 3. Backups
	// --------------------------------------------------
	for _, task := range uc.backups {
		if err := task.Run(ctx); err != nil {
			res.BackupsFailed = append(res.BackupsFailed, task.Name())
			uc.log.Error("backup failed", zap.String("task", task.Name()), zap.Error(err))
			continue
		}
		res.BackupsOK = append(res.BackupsOK, task.Name())
	}

	uc.log.Info("maintenance sweep finished",
		zap.Int("purged", res.Purged),
		zap.Int("purge_failures", res.PurgeFailures),
		zap.Int("released", res.Released),
		zap.Strings("backups_failed", res.BackupsFailed),
	)

	uc.audit.Dispatch(audit.Event{
		Action:   "maintenance_sweep",
		Entity:   "appointment",
		Metadata: res,
	})

	return res, nil
}
