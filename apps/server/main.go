package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"yatzy-lite/apps/server/internal/auth"
	"yatzy-lite/apps/server/internal/config"
	"yatzy-lite/apps/server/internal/gateway"
	"yatzy-lite/apps/server/internal/ledger"
	"yatzy-lite/apps/server/internal/lobby"
	"yatzy-lite/apps/server/internal/session"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	setupLogging(cfg)

	authService, err := auth.NewService(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("init auth service")
	}
	defer authService.Close()
	ledgerService, err := ledger.NewService(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("init ledger service")
	}
	defer ledgerService.Close()

	lby := lobby.New(ledgerService, session.Options{})
	defer lby.Close()
	gw := gateway.New(lby, authService)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		ExposedHeaders: []string{"X-Session-Token"},
		MaxAge:         300,
	}))
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Get("/ws", gw.HandleWebSocket)
	auth.NewHTTPHandler(authService).RegisterRoutes(r)
	ledger.NewHTTPHandler(authService, ledgerService).RegisterRoutes(r)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go reapLoop(ctx, lby, authService, cfg.Session.IdleTTL)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info().
		Str("addr", cfg.Addr).
		Str("auth", cfg.Auth.Mode).
		Str("ledger", cfg.Ledger.Mode).
		Msg("starting server")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server failed")
	}
	log.Info().Msg("server stopped")
}

func setupLogging(cfg config.Config) {
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil || cfg.Log.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339
	if cfg.Log.Pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

// reapLoop stops sessions nobody has been attached to for idleTTL and drops
// expired auth sessions.
func reapLoop(ctx context.Context, lby *lobby.Lobby, authService auth.Service, idleTTL time.Duration) {
	interval := idleTTL / 4
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	pruner, _ := authService.(interface{ PruneExpired(time.Time) int })
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			lby.ReapIdle(idleTTL)
			if pruner != nil {
				if n := pruner.PruneExpired(now); n > 0 {
					log.Debug().Int("expired", n).Msg("pruned auth sessions")
				}
			}
		}
	}
}
