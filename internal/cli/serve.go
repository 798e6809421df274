// Copyright (c) 2025 MC Youniverse
//
// This file is part of the attendance service.
//
// attendance is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@mcyouniverse.com for commercial licensing options.

package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mcyouniverse/attendance/internal/config"
	"github.com/mcyouniverse/attendance/internal/rest"
	"github.com/mcyouniverse/attendance/internal/store/postgres"
	"github.com/mcyouniverse/attendance/pkg/attendance"
	"github.com/mcyouniverse/attendance/pkg/health"
	"github.com/mcyouniverse/attendance/pkg/webauthn"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the attendance HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := newLogger(cfg.Logging)
		slog.SetDefault(logger)
		return runServe(cmd.Context(), cfg, logger)
	},
}

func runServe(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stores, cleanup, err := buildStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	service, err := webauthn.NewService(webauthn.ServiceParams{
		Config:          &cfg.WebAuthn,
		EmployeeStore:   stores.employees,
		CredentialStore: stores.credentials,
		SessionStore:    stores.sessions,
		AttendanceStore: stores.attendance,
		Logger:          logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create ceremony service: %w", err)
	}

	sessionManager, err := rest.NewSessionManager(
		[]byte(cfg.Session.Secret), cfg.Session.TTL, cfg.Session.Secure)
	if err != nil {
		return err
	}

	checker := health.NewChecker()
	if stores.ping != nil {
		checker.RegisterCheck("database", health.PingCheck("database", stores.ping))
	}

	handler := rest.NewHandler(service, attendance.NewReporter(stores.attendance), sessionManager).
		WithLogger(logger).
		WithHealthChecker(checker)

	server, err := rest.NewServer(&rest.Config{
		Listen:             cfg.Server.Listen,
		AllowedOrigins:     cfg.CORS.AllowedOrigins,
		RateLimitPerMinute: cfg.Server.RateLimitPerMinute,
		RateLimitBurst:     cfg.Server.RateLimitBurst,
		MetricsEnabled:     cfg.Metrics.Enabled,
	}, handler, logger)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// serviceStores bundles the four store implementations behind the ceremony
// service. ping is nil for the in-memory stores.
type serviceStores struct {
	employees   webauthn.EmployeeStore
	credentials webauthn.CredentialStore
	sessions    webauthn.SessionStore
	attendance  attendance.Store
	ping        func(ctx context.Context) error
}

// buildStores selects postgres or in-memory stores from the configuration.
// The in-memory stores exist for local development; they lose everything on
// restart.
func buildStores(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*serviceStores, func(), error) {
	if cfg.Database.URL == "" {
		logger.Warn("no database configured, using in-memory stores")
		return &serviceStores{
			employees:   webauthn.NewMemoryEmployeeStore(),
			credentials: webauthn.NewMemoryCredentialStore(),
			sessions:    webauthn.NewMemorySessionStore(cfg.WebAuthn.SessionTTL),
			attendance:  attendance.NewMemoryStore(),
		}, func() {}, nil
	}

	pool, err := postgres.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if cfg.Database.Migrate {
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("failed to run schema migration: %w", err)
		}
	}

	return &serviceStores{
		employees:   postgres.NewEmployeeStore(pool),
		credentials: postgres.NewCredentialStore(pool),
		sessions:    postgres.NewSessionStore(pool, cfg.WebAuthn.SessionTTL),
		attendance:  postgres.NewAttendanceStore(pool).WithLogger(logger),
		ping:        pool.Ping,
	}, pool.Close, nil
}
