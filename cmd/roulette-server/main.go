package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mohammed-shakir/restaurant-roulette/internal/core/config"
	"github.com/mohammed-shakir/restaurant-roulette/internal/core/health"
	"github.com/mohammed-shakir/restaurant-roulette/internal/core/observability"
	"github.com/mohammed-shakir/restaurant-roulette/internal/core/server"
	"github.com/mohammed-shakir/restaurant-roulette/internal/location"
	"github.com/mohammed-shakir/restaurant-roulette/internal/logger"
	"github.com/mohammed-shakir/restaurant-roulette/internal/signup"
)

var Version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	addrFlag := flag.String("addr", "", "listen address (overrides ADDR)")
	envFile := flag.String("env-file", ".env", "optional dotenv file")
	flag.Parse()

	if err := config.LoadDotenv(*envFile); err != nil {
		_, _ = os.Stderr.WriteString("load env file: " + err.Error() + "\n")
		return 1
	}
	cfg := config.FromEnv()
	if *addrFlag != "" {
		cfg.Addr = strings.TrimSpace(*addrFlag)
	}

	zl := logger.Build(logger.Config{
		Level:     cfg.LogLevel,
		Console:   cfg.LogConsole,
		SampleN:   cfg.LogSampleN,
		Service:   "roulette-server",
		Component: "server",
	}, os.Stdout)
	appLog := logger.NewSlog(&zl)

	observability.ExposeBuildInfo(Version)
	appLog.Info("starting roulette-server",
		"addr", cfg.Addr,
		"version", Version,
		"h3_res", cfg.H3Res,
		"postgres", cfg.PostgresDSN != "")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var store signup.Store = signup.NewMemoryStore()
	if cfg.PostgresDSN != "" {
		pg, err := signup.OpenPostgres(cfg.PostgresDSN)
		if err != nil {
			appLog.Error("postgres open failed", "err", err)
			return 1
		}
		defer func() { _ = pg.Close() }()

		schemaCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		err = pg.EnsureSchema(schemaCtx)
		cancel()
		if err != nil {
			appLog.Error("postgres schema setup failed", "err", err)
			return 1
		}
		store = pg
	} else {
		appLog.Warn("POSTGRES_DSN not set, signup records are kept in memory")
	}

	handler := server.NewRouter(server.Deps{
		Logger:    appLog,
		Signup:    signup.NewService(store, appLog),
		Locations: location.NewStore(cfg.H3Res),
		Ready:     map[string]health.Check{"signup_store": store.Ping},
	})

	if err := server.Run(ctx, cfg.Addr, appLog, handler); err != nil {
		appLog.Error("server exited with error", "err", err)
		return 1
	}
	appLog.Info("server stopped")
	return 0
}
