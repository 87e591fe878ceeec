// Package app assembles the service from configuration. Both the HTTP
// server and the one-shot CLI commands build on the same container.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/SaltaGet/Back-SIJAC/internal/audit"
	"github.com/SaltaGet/Back-SIJAC/internal/backup"
	"github.com/SaltaGet/Back-SIJAC/internal/config"
	dbpkg "github.com/SaltaGet/Back-SIJAC/internal/db"
	infraRepo "github.com/SaltaGet/Back-SIJAC/internal/infra/repository"
	"github.com/SaltaGet/Back-SIJAC/internal/notify"
	"github.com/SaltaGet/Back-SIJAC/internal/scheduler"
	"github.com/SaltaGet/Back-SIJAC/internal/storage"
	"github.com/SaltaGet/Back-SIJAC/internal/timezone"
	"github.com/SaltaGet/Back-SIJAC/internal/token"
	ucAppointment "github.com/SaltaGet/Back-SIJAC/internal/usecase/appointment"
	ucAvailability "github.com/SaltaGet/Back-SIJAC/internal/usecase/availability"
)

type App struct {
	Cfg *config.Config
	Log *zap.Logger
	Loc *time.Location
	Now func() time.Time

	DB    *gorm.DB
	Pool  *pgxpool.Pool
	Redis *redis.Client

	Objects   storage.ObjectStore
	Scheduler scheduler.Scheduler
	Tokens    *token.Codec
	Notifier  *notify.EmailNotifier

	AuditLog *audit.Logger
	Audit    *audit.Dispatcher

	Appointments *infraRepo.AppointmentGormRepository
	Blogs        *infraRepo.BlogGormRepository
	Cases        *infraRepo.CaseGormRepository

	// Reconciler
	CreateAvailability *ucAvailability.CreateAvailability
	UpdateAvailability *ucAvailability.UpdateAvailability
	DeleteAvailability *ucAvailability.DeleteAvailability
	ListAvailabilities *ucAvailability.ListAvailabilities

	// Lifecycle
	Reserve     *ucAppointment.ReserveAppointment
	Confirm     *ucAppointment.ConfirmAppointment
	UpdateState *ucAppointment.UpdateAppointmentState
	Expire      *ucAppointment.ExpireReservation
	Sweep       *ucAppointment.SweepStaleAppointments
	List        *ucAppointment.ListAppointments
}

func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	a := &App{
		Cfg: cfg,
		Log: log,
		Loc: timezone.Location(cfg.Timezone),
		Now: timezone.Clock(cfg.Timezone),
	}

	var err error

	// --------------------------------------------------
	// Infra
	// --------------------------------------------------
	a.DB, err = dbpkg.NewDB(cfg)
	if err != nil {
		return nil, err
	}

	a.Pool, err = dbpkg.NewPool(ctx, cfg.DBUrl, 2)
	if err != nil {
		a.Close()
		return nil, err
	}

	if cfg.S3.Bucket != "" {
		a.Objects, err = storage.NewS3Store(cfg.S3)
		if err != nil {
			a.Close()
			return nil, err
		}
	} else {
		log.Warn("S3_BUCKET not set, objects are kept in memory")
		a.Objects = storage.NewMemoryStore()
	}

	if cfg.RedisURL != "" {
		a.Redis, err = storage.NewRedisClient(ctx, cfg.RedisURL, cfg.RedisPassword)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		a.Scheduler = scheduler.NewRedis(a.Redis, log)
	} else {
		log.Warn("REDIS_URL not set, reservation expiry uses in-process timers")
		a.Scheduler = scheduler.NewMemory(log)
	}

	a.Tokens = token.NewCodec(cfg.JWTSecret)
	a.Notifier = notify.NewEmailNotifier(
		notify.NewMailer(cfg.SMTP, log),
		cfg.ConfirmURL,
		cfg.StaffNotifyEmail,
		cfg.ReservationTTL(),
	)

	a.AuditLog = audit.New(a.DB)
	a.Audit = audit.NewDispatcher(a.AuditLog, log)

	a.Appointments = infraRepo.NewAppointmentGormRepository(a.DB)
	a.Blogs = infraRepo.NewBlogGormRepository(a.DB)
	a.Cases = infraRepo.NewCaseGormRepository(a.DB)

	// --------------------------------------------------
	// Use cases
	// --------------------------------------------------
	slots := ucAvailability.SlotSettings{
		Interval: cfg.SlotInterval(),
		Duration: cfg.SlotDuration(),
	}

	a.CreateAvailability = ucAvailability.NewCreateAvailability(a.Appointments, a.Audit, log, a.Now, slots)
	a.UpdateAvailability = ucAvailability.NewUpdateAvailability(a.Appointments, a.Notifier, a.Audit, log, a.Now, slots)
	a.DeleteAvailability = ucAvailability.NewDeleteAvailability(a.Appointments, a.Notifier, a.Audit, log)
	a.ListAvailabilities = ucAvailability.NewListAvailabilities(a.Appointments, a.Now)

	a.Reserve = ucAppointment.NewReserveAppointment(
		a.Appointments, a.Tokens, a.Scheduler, a.Notifier, a.Audit, log, a.Now, cfg.ReservationTTL(),
	)
	a.Confirm = ucAppointment.NewConfirmAppointment(a.Appointments, a.Tokens, a.Notifier, a.Audit, log)
	a.UpdateState = ucAppointment.NewUpdateAppointmentState(
		a.Appointments, a.Notifier, a.Audit, log, a.Now, cfg.DecisionBuffer(),
	)
	a.Expire = ucAppointment.NewExpireReservation(a.Appointments, a.Tokens, a.Audit, log, a.Now)
	a.List = ucAppointment.NewListAppointments(a.Appointments, a.Now)

	a.Sweep = ucAppointment.NewSweepStaleAppointments(
		a.Appointments, a.Expire, a.backups(), a.Audit, log, a.Now,
	)

	return a, nil
}

func (a *App) backups() []ucAppointment.BackupTask {
	return []ucAppointment.BackupTask{
		backup.NewDatabaseTask(
			backup.NewPgxExporter(a.Pool),
			a.Objects,
			a.Cfg.BackupPrefix,
			nil,
			a.Log,
			a.Now,
		),
		backup.NewImagesTask(a.Blogs, a.Objects, a.Cfg.BackupPrefix, a.Log),
	}
}

// RunScheduler feeds due expiry jobs to the expiry use case until ctx ends.
func (a *App) RunScheduler(ctx context.Context) error {
	return a.Scheduler.Run(ctx, a.Expire.Handle)
}

// RunDailySweep runs the sweep once a day at 03:00 office time.
func (a *App) RunDailySweep(ctx context.Context) {
	for {
		wait := untilNext(a.Now(), 3)
		a.Log.Info("next sweep scheduled", zap.Duration("in", wait))

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return
		case <-t.C:
		}

		res, err := a.Sweep.Execute(ctx)
		if err != nil {
			a.Log.Error("sweep failed", zap.Error(err))
			continue
		}
		a.Log.Info("sweep finished",
			zap.Int("purged", res.Purged),
			zap.Int("released", res.Released),
			zap.Strings("backups_failed", res.BackupsFailed),
		)
	}
}

func untilNext(now time.Time, hour int) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}

// Close flushes the audit queue before the database goes away.
func (a *App) Close() {
	if a.Audit != nil {
		a.Audit.Close()
	}
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if a.Pool != nil {
		a.Pool.Close()
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}
