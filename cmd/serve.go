package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/DhavalSuthar-24/padel/internal/match"
	"github.com/DhavalSuthar-24/padel/internal/message"
	"github.com/DhavalSuthar-24/padel/internal/realtime"
	"github.com/DhavalSuthar-24/padel/internal/user"
	"github.com/DhavalSuthar-24/padel/internal/weather"
	"github.com/DhavalSuthar-24/padel/pkg/redislock"
	"github.com/DhavalSuthar-24/padel/pkg/token"
	"github.com/DhavalSuthar-24/padel/routes"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	var autoMigrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and websocket server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := bootstrap()
			if err != nil {
				return err
			}
			if autoMigrate {
				if err := rt.migrate(); err != nil {
					return eris.Wrap(err, "AutoMigrate failed")
				}
				rt.log.Info().Msg("AutoMigrate successful")
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, rt)
		},
	}
	cmd.Flags().BoolVar(&autoMigrate, "migrate", true, "run AutoMigrate before serving")
	return cmd
}

func serve(ctx context.Context, rt *runtime) error {
	cfg, log := rt.cfg, rt.log

	users := user.NewGormUserRepository(rt.db)
	matches := match.NewGormMatchRepository(rt.db)
	messages := message.NewGormMessageRepository(rt.db)

	var wp weather.Provider = weather.Disabled{}
	if cfg.Weather.APIKey != "" {
		wp = weather.NewOpenWeatherClient(weather.Options{
			APIKey:   cfg.Weather.APIKey,
			BaseURL:  cfg.Weather.BaseURL,
			Timeout:  cfg.Weather.Timeout,
			CacheTTL: cfg.Weather.CacheTTL,
		}, log)
	} else {
		log.Warn().Msg("WEATHER_API_KEY not set, matches get no forecast")
	}

	service := match.NewService(matches, users, wp, rt.loc, log)
	sweeper := match.NewSweeper(matches, rt.loc, log)

	registry := realtime.NewRegistry()
	defer registry.Close()
	verifier := token.NewJWTVerifier(cfg.JWT.AccessTokenSecret)
	relay := realtime.NewRelay(registry, messages, log)
	handler := realtime.NewHandler(registry, relay, verifier, realtime.Options{
		PingInterval:     cfg.Realtime.PingInterval,
		WriteTimeout:     cfg.Realtime.WriteTimeout,
		OperationTimeout: cfg.Realtime.OperationTimeout,
		SendBuffer:       cfg.Realtime.SendBuffer,
		MaxMessageBytes:  cfg.Realtime.MaxMessageBytes,
		AllowedOrigins:   cfg.App.AllowedOrigins,
	}, log)

	if cfg.Sweeper.Enabled {
		var locker gocron.Locker
		if cfg.Redis.URL != "" {
			rl, err := redislock.NewFromURL(ctx, cfg.Redis.URL, cfg.Redis.LockTTL)
			if err != nil {
				return err
			}
			defer rl.Close()
			locker = rl
		}
		sched, err := sweeper.Start(ctx, cfg.Sweeper.Interval, locker)
		if err != nil {
			return err
		}
		defer func() {
			if err := sched.Shutdown(); err != nil {
				log.Error().Err(err).Msg("scheduler shutdown failed")
			}
		}()
	}

	r := routes.SetupRoutes(routes.Deps{
		Config:   cfg,
		Users:    users,
		Messages: messages,
		Matches:  service,
		Sweeper:  sweeper,
		Registry: registry,
		Realtime: handler,
		Verifier: verifier,
		Logger:   log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.App.Port).Str("env", cfg.App.Env).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			return eris.Wrap(err, "failed to run server")
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	// Hijacked websocket connections are not tracked by the server; the
	// deferred registry.Close ends them.
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return eris.Wrap(err, "server shutdown failed")
	}
	return nil
}
