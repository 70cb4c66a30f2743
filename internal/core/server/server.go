package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mohammed-shakir/restaurant-roulette/internal/core/health"
	"github.com/mohammed-shakir/restaurant-roulette/internal/core/middleware"
	"github.com/mohammed-shakir/restaurant-roulette/internal/location"
	"github.com/mohammed-shakir/restaurant-roulette/internal/signup"
)

type Deps struct {
	Logger    *slog.Logger
	Signup    *signup.Service
	Locations *location.Store
	Ready     map[string]health.Check
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recover(d.Logger))
	r.Use(middleware.Logging(d.Logger))
	r.Use(middleware.CORS())
	r.Use(middleware.Metrics())

	r.Get("/healthz", health.Liveness())
	r.Get("/readyz", health.Readiness(d.Ready, 2*time.Second))
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Post("/signup", signup.Handler(d.Signup, d.Logger))
	r.Post("/LocalServer", location.Submit(d.Locations, d.Logger))
	r.Get("/getLocation", location.Current(d.Locations))
	return r
}

// sets up http and starts serving
func Run(ctx context.Context, addr string, logger *slog.Logger, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http listen", "addr", addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		return err
	}
}
