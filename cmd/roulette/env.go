package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/urfave/cli"

	"github.com/mohammed-shakir/restaurant-roulette/internal/core/config"
	"github.com/mohammed-shakir/restaurant-roulette/internal/core/httpclient"
	"github.com/mohammed-shakir/restaurant-roulette/internal/events"
	"github.com/mohammed-shakir/restaurant-roulette/internal/logger"
	"github.com/mohammed-shakir/restaurant-roulette/internal/search"
	"github.com/mohammed-shakir/restaurant-roulette/internal/session"
	"github.com/mohammed-shakir/restaurant-roulette/internal/signup"
)

// env is everything a command needs, built from config plus global flags.
type env struct {
	ctx      context.Context
	cfg      config.Config
	log      *slog.Logger
	out      io.Writer
	sessions *session.Service
	search   *search.Client
	signup   *signup.Client

	closers []func() error
}

func newEnv(c *cli.Context) (*env, error) {
	if err := config.LoadDotenv(c.GlobalString("env-file")); err != nil {
		return nil, fmt.Errorf("load env file: %w", err)
	}
	cfg := config.FromEnv()
	if v := c.GlobalString("backend-url"); v != "" {
		cfg.BackendURL = v
	}
	if v := c.GlobalString("signup-url"); v != "" {
		cfg.SignupURL = v
	}
	if v := c.GlobalString("session-driver"); v != "" {
		cfg.Session.Driver = v
	}
	if v := c.GlobalString("session-file"); v != "" {
		cfg.Session.File = v
	}
	if v := c.GlobalString("log-level"); v != "" {
		cfg.LogLevel = v
	}
	return buildEnv(context.Background(), cfg, c.App.Writer)
}

func buildEnv(ctx context.Context, cfg config.Config, out io.Writer) (*env, error) {
	if out == nil {
		out = os.Stdout
	}
	zl := logger.Build(logger.Config{
		Level:     cfg.LogLevel,
		Console:   cfg.LogConsole,
		SampleN:   cfg.LogSampleN,
		Service:   "roulette",
		Component: "cli",
	}, os.Stderr)
	e := &env{ctx: ctx, cfg: cfg, log: logger.NewSlog(&zl), out: out}

	store, err := e.sessionStore(ctx)
	if err != nil {
		return nil, err
	}
	e.sessions = session.New(store, e.log, session.WithH3Resolution(cfg.H3Res))

	var sink events.Sink = events.Nop{}
	if cfg.Events.Enabled {
		pub, err := events.NewPublisher(cfg.Events.Brokers, cfg.Events.Topic, cfg.Events.Queue, e.log)
		if err != nil {
			e.log.Warn("search events disabled", "err", err)
		} else {
			sink = pub
			e.closers = append(e.closers, pub.Close)
		}
	}

	hc := httpclient.NewOutbound(cfg.SearchTimeout)
	e.search, err = search.New(e.log, hc, cfg.BackendURL,
		search.WithProbeTimeout(cfg.ProbeTimeout),
		search.WithEvents(sink),
		search.WithH3Resolution(cfg.H3Res))
	if err != nil {
		_ = e.Close()
		return nil, err
	}
	e.signup = signup.NewClient(hc, cfg.SignupURL)
	return e, nil
}

func (e *env) sessionStore(ctx context.Context) (session.Store, error) {
	switch e.cfg.Session.Driver {
	case "memory":
		return session.NewMemoryStore(), nil
	case "redis":
		rs, err := session.NewRedisStore(ctx, e.cfg.Session.RedisAddr, e.cfg.Session.Namespace)
		if err != nil {
			return nil, fmt.Errorf("session store: %w", err)
		}
		e.closers = append(e.closers, rs.Close)
		return rs, nil
	case "file", "":
		return session.NewFileStore(e.cfg.Session.File)
	default:
		return nil, fmt.Errorf("unknown session driver %q", e.cfg.Session.Driver)
	}
}

func (e *env) Close() error {
	var first error
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	e.closers = nil
	return first
}

// withEnv adapts a command body to a cli action.
func withEnv(fn func(c *cli.Context, e *env) error) func(c *cli.Context) error {
	return func(c *cli.Context) error {
		e, err := newEnv(c)
		if err != nil {
			return err
		}
		defer func() { _ = e.Close() }()

		ctx, stop := signal.NotifyContext(e.ctx, os.Interrupt)
		defer stop()
		e.ctx = ctx
		return fn(c, e)
	}
}
