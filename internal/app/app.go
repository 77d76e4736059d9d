package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/specialistvlad/covergrid/internal/config"
	"github.com/specialistvlad/covergrid/internal/coverart"
	"github.com/specialistvlad/covergrid/internal/ctxlog"
	"github.com/specialistvlad/covergrid/internal/grid"
	"github.com/specialistvlad/covergrid/internal/httpapi"
	"github.com/specialistvlad/covergrid/internal/lookup"
)

// Option overrides a collaborator NewApp would otherwise build from config.
type Option func(*options)

type options struct {
	lookup coverart.Lookup
	client coverart.HTTPDoer
}

// WithLookup replaces the SQL lookup datastore.
func WithLookup(l coverart.Lookup) Option {
	return func(o *options) { o.lookup = l }
}

// WithHTTPClient replaces the client used to reach the remote asset host.
func WithHTTPClient(c coverart.HTTPDoer) Option {
	return func(o *options) { o.client = c }
}

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	ctx    context.Context
	logger *slog.Logger
	config *config.Model

	lookupCloser io.Closer
	handler      http.Handler
	httpServer   *http.Server
}

// NewApp is the constructor for the main application. It loads the service
// file, applies the command-line overrides and wires the resolver, assembler
// and HTTP routes. A configuration that cannot be loaded is a fatal startup
// error and panics.
func NewApp(outW io.Writer, appConfig *Config, loader config.Loader, opts ...Option) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	model, err := loader.Load(ctx, appConfig.ConfigPath)
	if err != nil {
		panic(fmt.Errorf("failed to load configuration: %w", err))
	}
	if appConfig.Listen != "" {
		model.Server.Listen = appConfig.Listen
	}
	if appConfig.CacheDir != "" {
		model.Cache.Dir = appConfig.CacheDir
	}
	if err := model.Validate(); err != nil {
		panic(fmt.Errorf("invalid configuration: %w", err))
	}
	logger.Debug("Configuration loaded.", "listen", model.Server.Listen, "cache_dir", model.Cache.Dir)

	a := &App{
		outW:   outW,
		ctx:    ctx,
		logger: logger,
		config: model,
	}

	l := o.lookup
	if l == nil {
		sqlLookup, err := lookup.Open(ctx, model.Lookup.Driver, model.Lookup.DSN, model.Lookup.Query)
		if err != nil {
			panic(fmt.Errorf("failed to open lookup datastore: %w", err))
		}
		a.lookupCloser = sqlLookup
		l = sqlLookup
		logger.Debug("Lookup datastore opened.", "driver", model.Lookup.Driver)
	}

	client := o.client
	if client == nil {
		client = coverart.NewHTTPClient(model.Upstream.Timeout)
	}

	resolver, err := coverart.NewResolver(coverart.Options{
		CacheDir:              model.Cache.Dir,
		URLTemplate:           model.Upstream.URLTemplate,
		UserAgent:             model.Upstream.UserAgent,
		PlaceholderIdentifier: model.Placeholder.Identifier,
		PlaceholderURL:        model.Placeholder.URL,
		Lookup:                l,
		Client:                client,
	})
	if err != nil {
		panic(fmt.Errorf("failed to create resolver: %w", err))
	}
	if model.Placeholder.URL == "" {
		logger.Warn("No placeholder URL configured; the placeholder-image policy will fail.")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", a.healthHandler)
	mux.Handle("GET /metrics", promhttp.Handler())
	httpapi.NewHandler(grid.NewAssembler(resolver), httpapi.Options{
		RequireUUID: model.Server.RequireUUID,
		Logger:      logger,
	}).Register(mux)
	a.handler = mux
	logger.Debug("HTTP routes registered.")

	return a
}

// Handler returns the application's HTTP handler. This is primarily for testing.
func (a *App) Handler() http.Handler {
	return a.handler
}

// Config returns the effective configuration after overrides.
func (a *App) Config() *config.Model {
	return a.config
}
