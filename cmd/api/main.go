package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/SaltaGet/Back-SIJAC/internal/app"
	"github.com/SaltaGet/Back-SIJAC/internal/config"
	dbpkg "github.com/SaltaGet/Back-SIJAC/internal/db"
	"github.com/SaltaGet/Back-SIJAC/internal/logger"
	"github.com/SaltaGet/Back-SIJAC/internal/routes"
	"github.com/SaltaGet/Back-SIJAC/internal/validators"
)

func main() {
	root := &cobra.Command{
		Use:           "sijac",
		Short:         "SIJAC scheduling backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(serveCmd(), sweepCmd(), migrateCmd())

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// ======================================================
// SERVE
// ======================================================

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg := config.Load()
			log := logger.New(cfg.Env)
			defer func() { _ = log.Sync() }()

			a, err := app.New(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := dbpkg.Migrate(ctx, a.DB); err != nil {
				return err
			}
			if err := dbpkg.SeedAdmin(ctx, a.DB, cfg.AdminEmail, cfg.AdminPassword, log); err != nil {
				return err
			}
			if err := validators.Register(); err != nil {
				return err
			}

			go func() {
				if err := a.RunScheduler(ctx); err != nil && !errors.Is(err, context.Canceled) {
					log.Error("scheduler stopped", zap.Error(err))
				}
			}()
			if cfg.SweepInProcess {
				go a.RunDailySweep(ctx)
			}

			if cfg.IsProduction() {
				gin.SetMode(gin.ReleaseMode)
			}
			r := gin.New()
			r.Use(gin.Recovery())
			routes.RegisterRoutes(r, a)

			srv := &http.Server{
				Addr:              cfg.Addr(),
				Handler:           r,
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				log.Info("server running", zap.String("addr", cfg.Addr()))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("listen: %w", err)
				}
			case <-ctx.Done():
			}

			log.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}

// ======================================================
// SWEEP (cron entry point)
// ======================================================

func sweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Purge stale slots, release lost reservations and take backups",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			log := logger.New(cfg.Env)
			defer func() { _ = log.Sync() }()

			a, err := app.New(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.Sweep.Execute(cmd.Context())
			if err != nil {
				return err
			}

			out := json.NewEncoder(cmd.OutOrStdout())
			out.SetIndent("", "  ")
			return out.Encode(res)
		},
	}
}

// ======================================================
// MIGRATE
// ======================================================

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			log := logger.New(cfg.Env)
			defer func() { _ = log.Sync() }()

			db, err := dbpkg.NewDB(cfg)
			if err != nil {
				return err
			}
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			defer sqlDB.Close()

			if err := dbpkg.Migrate(cmd.Context(), db); err != nil {
				return err
			}
			version, err := dbpkg.MigrationVersion(cmd.Context(), db)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "database at version %d\n", version)
			return nil
		},
	}
}
