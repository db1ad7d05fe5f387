package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/httplog/v2"
	"golang.org/x/sync/errgroup"

	api "github.com/dkolesnikov/linkcut/internal/api/http"
	"github.com/dkolesnikov/linkcut/internal/config"
	pgrepo "github.com/dkolesnikov/linkcut/internal/database/postgres"
	"github.com/dkolesnikov/linkcut/internal/scheduler"
	"github.com/dkolesnikov/linkcut/internal/service"
	"github.com/dkolesnikov/linkcut/pkg/postgres"
)

// Run wires the application together and blocks until ctx is cancelled or a
// fatal error occurs.
func Run(ctx context.Context, cfg *config.Config) error {
	const op = "app.Run"

	logger := httplog.NewLogger("linkcut", httplog.Options{
		JSON:     cfg.Env == config.EnvProd,
		LogLevel: slog.LevelInfo,
		Concise:  cfg.Env != config.EnvProd,
	})

	db, err := postgres.New(
		ctx,
		cfg.Postgres.DSN(),
		postgres.WithConnMaxIdleTime(cfg.Postgres.ConnMaxIdleTime),
		postgres.WithConnMaxLifetime(cfg.Postgres.ConnMaxLifetime),
		postgres.WithMaxIdleConns(cfg.Postgres.MaxIdleConns),
		postgres.WithMaxOpenConns(cfg.Postgres.MaxOpenConns),
	)
	if err != nil {
		return fmt.Errorf("%s: failed to connect to database: %w", op, err)
	}
	defer db.Close()

	if err := postgres.RunMigrations("file://migrations", cfg.Postgres.DSN()); err != nil {
		return fmt.Errorf("%s: failed to run migrations: %w", op, err)
	}

	linkRepo := pgrepo.NewLinkRepository(db)
	userRepo := pgrepo.NewUserRepository(db)

	linkSvc := service.NewLinkService(linkRepo, cfg.ShortCode.Length, cfg.ShortCode.TTL)
	authSvc := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.TokenTTL)

	sched := scheduler.New(linkRepo, logger.Logger, scheduler.Intervals{
		Sweep:       cfg.Scheduler.SweepInterval,
		HourlyReset: cfg.Scheduler.HourlyResetInterval,
		DailyReset:  cfg.Scheduler.DailyResetInterval,
	})

	server := &http.Server{
		Addr:           cfg.HTTPServer.Addr(),
		Handler:        api.NewRouter(logger, linkSvc, authSvc),
		ReadTimeout:    cfg.HTTPServer.ReadTimeout,
		WriteTimeout:   cfg.HTTPServer.WriteTimeout,
		IdleTimeout:    cfg.HTTPServer.IdleTimeout,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	g, ctx := errgroup.WithContext(ctx)

	sched.Start(ctx)

	g.Go(func() error {
		var err error

		switch cfg.Env {
		case config.EnvProd:
			err = server.ListenAndServeTLS(cfg.HTTPServer.CertFile, cfg.HTTPServer.KeyFile)
		default:
			err = server.ListenAndServe()
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%s: server error occurred: %w", op, err)
		}

		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		sched.Stop()

		if err := server.Shutdown(context.Background()); err != nil {
			return fmt.Errorf("%s: failed to shutdown server: %w", op, err)
		}

		return nil
	})

	return g.Wait()
}
