package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrymomot/backoffice/core/authapi"
	"github.com/dmitrymomot/backoffice/core/guard"
	"github.com/dmitrymomot/backoffice/core/i18n"
	"github.com/dmitrymomot/backoffice/core/logger"
	"github.com/dmitrymomot/backoffice/core/session"
	"github.com/dmitrymomot/backoffice/core/store"
	"github.com/dmitrymomot/backoffice/core/transport"
	"github.com/dmitrymomot/backoffice/integration/database/redis"
	"github.com/dmitrymomot/backoffice/integration/database/sqlite"
)

const redisKeyPrefix = "backoffice:"

// app is the wired client for one command invocation.
type app struct {
	cfg    AppConfig
	log    *slog.Logger
	stdout io.Writer
	stderr io.Writer

	store    store.Store
	file     *store.File
	registry *prometheus.Registry
	i18n     *i18n.I18n
	pref     *i18n.Preference
	session  *session.Manager
	guard    *guard.Guard
	http     *http.Client

	loginOnce     sync.Once
	loginRequired chan struct{}
	closers       []func() error
	checks        []func(context.Context) error
}

func newApp(ctx context.Context, cfg AppConfig, stdout, stderr io.Writer) (*app, error) {
	a := &app{
		cfg:           cfg,
		stdout:        stdout,
		stderr:        stderr,
		registry:      prometheus.NewRegistry(),
		loginRequired: make(chan struct{}),
	}
	a.log = newLogger(cfg, stderr)

	if err := a.openStore(ctx); err != nil {
		return nil, err
	}

	bundle, err := i18n.Default(i18n.WithMissingKeyHandler(func(lang, namespace, key string) {
		a.log.Debug("missing translation", logger.Key("lang", lang), logger.Key("key", key))
	}))
	if err != nil {
		a.Close()
		return nil, err
	}
	a.i18n = bundle
	a.pref = i18n.NewPreference(a.store, bundle)

	metrics, err := session.NewMetrics(a.registry)
	if err != nil {
		a.Close()
		return nil, err
	}

	// The auth API client talks to the backend directly: routing it through the
	// augmenting transport would feed its own failures back into the session.
	api, err := authapi.New(cfg.APIURL, authapi.WithLogger(a.log))
	if err != nil {
		a.Close()
		return nil, err
	}

	a.session, err = session.New(api, a.store,
		session.WithLogger(a.log),
		session.WithMetrics(metrics),
		session.WithStaleAfter(cfg.StaleAfter),
		session.WithRefreshTimeout(cfg.RefreshTimeout),
		session.WithNavigator(session.NavigatorFuncs{
			Login:    func(context.Context) error { a.requireLogin(); return nil },
			Redirect: func(context.Context) { a.requireLogin() },
		}),
	)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.guard = guard.New(a.session, guard.WithLogger(a.log))
	a.http = transport.New(http.DefaultTransport,
		transport.WithTokenSource(a.session.AccessToken),
		transport.WithLanguageSource(a.pref.Get),
		transport.WithErrorHandler(a.session.HandleTransportError),
		transport.WithLogger(a.log),
	).Client()

	return a, nil
}

func newLogger(cfg AppConfig, w io.Writer) *slog.Logger {
	opts := []logger.Option{
		logger.WithOutput(w),
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithAttr(slog.String("service", "backoffice")),
	}
	if cfg.LogFormat == "json" {
		opts = append(opts, logger.WithJSONFormatter())
	} else {
		opts = append(opts, logger.WithTextFormatter())
	}
	return logger.New(opts...)
}

func (a *app) openStore(ctx context.Context) error {
	switch a.cfg.Store {
	case storeMemory:
		a.store = store.NewMemory()

	case storeFile:
		var opts []store.FileOption
		if a.cfg.StoreKey != "" {
			opts = append(opts, store.WithPassphrase(a.cfg.StoreKey))
		}
		f, err := store.NewFile(a.cfg.StorePath, opts...)
		if err != nil {
			return err
		}
		a.file = f
		a.store = f

	case storeSQLite:
		db, err := sqlite.Open(ctx, a.cfg.StorePath)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, db.Close)
		a.checks = append(a.checks, db.PingContext)
		a.store = sqlite.NewStore(db)

	case storeRedis:
		client, err := redis.Connect(ctx, a.cfg.Redis)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, client.Close)
		a.checks = append(a.checks, redis.Healthcheck(client))
		a.store = redis.NewStore(client, redisKeyPrefix)

	default:
		return errors.New("unknown store backend " + a.cfg.Store)
	}

	a.log.Debug("session store opened", logger.Key("backend", a.cfg.Store))
	return nil
}

// requireLogin is the command-line navigation target: it signals long-running
// commands that the session ended.
func (a *app) requireLogin() {
	a.loginOnce.Do(func() { close(a.loginRequired) })
}

func (a *app) translator(ctx context.Context) *i18n.Translator {
	return a.pref.Translator(ctx)
}

// Close releases the store connections.
func (a *app) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	a.closers = nil
	return errors.Join(errs...)
}
