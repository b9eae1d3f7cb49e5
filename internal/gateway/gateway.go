// ABOUTME: Gateway orchestrator that owns the HTTP server, store and services
// ABOUTME: Manages listener setup (TCP or Tailscale), routing, and graceful shutdown

package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"tailscale.com/tsnet"

	"github.com/2389/quill/internal/auth"
	"github.com/2389/quill/internal/config"
	"github.com/2389/quill/internal/generation"
	"github.com/2389/quill/internal/journal"
	"github.com/2389/quill/internal/metrics"
	"github.com/2389/quill/internal/store"
)

// Gateway orchestrates the quill server components.
type Gateway struct {
	config      *config.Config
	store       store.Store
	accounts    *auth.Service
	issuer      *auth.JWTIssuer
	journal     *journal.Service
	metrics     *metrics.Metrics
	httpServer  *http.Server
	tsnetServer *tsnet.Server
	logger      *slog.Logger
}

// initStore opens the SQLite store at the configured path.
func initStore(cfg *config.Config) (store.Store, error) {
	s, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("creating store: %w", err)
	}
	return s, nil
}

// New creates a Gateway backed by SQLite and the Gemini client.
func New(cfg *config.Config, logger *slog.Logger) (*Gateway, error) {
	s, err := initStore(cfg)
	if err != nil {
		return nil, err
	}

	gen := generation.NewGeminiClient(generation.Config{
		APIKey:   cfg.Generation.APIKey,
		Model:    cfg.Generation.Model,
		Endpoint: cfg.Generation.Endpoint,
		Timeout:  cfg.Generation.Timeout,
	}, logger)
	if cfg.Generation.APIKey == "" {
		logger.Warn("generation.api_key not set, every entry will use the fallback response")
	}

	gw, err := newGateway(cfg, s, gen, logger)
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	return gw, nil
}

// newGateway wires services and routes around an existing store and generator.
func newGateway(cfg *config.Config, s store.Store, gen generation.Generator, logger *slog.Logger) (*Gateway, error) {
	issuer, err := auth.NewJWTIssuer([]byte(cfg.Auth.JWTSecret))
	if err != nil {
		return nil, fmt.Errorf("creating token issuer: %w", err)
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		if err := config.ValidateMetricsPath(cfg.Metrics.Path); err != nil {
			return nil, err
		}
		m = metrics.New()
	}

	gw := &Gateway{
		config:   cfg,
		store:    s,
		issuer:   issuer,
		accounts: auth.NewService(s, auth.NewBcryptHasher(), issuer, logger),
		journal:  journal.NewService(s, gen, m, cfg.Generation.Timeout, logger),
		metrics:  m,
		logger:   logger.With("component", "gateway"),
	}

	gw.httpServer = &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           gw.buildHandler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return gw, nil
}

// buildHandler registers routes and wraps them in the middleware chain.
func (g *Gateway) buildHandler() http.Handler {
	mux := http.NewServeMux()
	requireAuth := auth.HTTPAuthMiddleware(g.issuer, g.logger)

	mux.HandleFunc("GET /health", g.handleHealth)
	mux.HandleFunc("GET /ready", g.handleReady)

	mux.HandleFunc("POST /auth/register", g.handleRegister)
	mux.HandleFunc("POST /auth/login", g.handleLogin)

	// /journal serves legacy clients
	for _, base := range []string{"/entries", "/journal"} {
		mux.Handle("POST "+base, requireAuth(http.HandlerFunc(g.handleCreateEntry)))
		mux.Handle("GET "+base, requireAuth(http.HandlerFunc(g.handleListEntries)))
	}

	if g.metrics != nil {
		mux.Handle("GET "+g.config.Metrics.Path, g.metrics.Handler())
	}

	mux.HandleFunc("/", g.handleNotFound)

	var h http.Handler = g.metrics.InstrumentHandler(mux)
	h = corsMiddleware(g.config.Server.CORSOrigins)(h)
	h = requestLogger(g.logger)(h)
	return h
}

// Handler returns the root HTTP handler.
func (g *Gateway) Handler() http.Handler {
	return g.httpServer.Handler
}

// setupTCPListener creates a standard TCP listener for HTTP.
func (g *Gateway) setupTCPListener() (net.Listener, error) {
	ln, err := net.Listen("tcp", g.config.Server.HTTPAddr)
	if err != nil {
		return nil, fmt.Errorf("listening on HTTP address: %w", err)
	}
	return ln, nil
}

// setupListener creates the listener based on configuration (Tailscale or TCP).
func (g *Gateway) setupListener(ctx context.Context) (net.Listener, error) {
	if g.config.Tailscale.Enabled {
		if g.config.Server.HTTPAddr != "" {
			g.logger.Warn("server.http_addr is ignored when tailscale is enabled",
				"http_addr", g.config.Server.HTTPAddr,
			)
		}
		return g.setupTailscaleListener(ctx)
	}
	return g.setupTCPListener()
}

// startServer starts the HTTP server in a goroutine, returning its error channel.
func (g *Gateway) startServer(ln net.Listener) chan error {
	errCh := make(chan error, 1)

	go func() {
		g.logger.Info("HTTP server listening", "addr", ln.Addr().String())
		if err := g.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	return errCh
}

// Run starts the HTTP server and blocks until the context is canceled.
// Returns nil on graceful shutdown (context canceled), or an error if the server fails.
func (g *Gateway) Run(ctx context.Context) error {
	ln, err := g.setupListener(ctx)
	if err != nil {
		g.closeStore()
		return err
	}

	errCh := g.startServer(ln)

	var serverErr error
	select {
	case <-ctx.Done():
		g.logger.Info("context canceled, initiating shutdown")
	case serverErr = <-errCh:
		g.logger.Error("server error", "error", serverErr)
	}

	shutdownErr := g.gracefulShutdown()

	if serverErr != nil {
		return serverErr
	}
	return shutdownErr
}

// gracefulShutdown performs shutdown with a fresh context and timeout.
// The Run context is already canceled at this point.
func (g *Gateway) gracefulShutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return g.Shutdown(ctx)
}

// appendCloseError appends an error with label if err is non-nil.
func appendCloseError(errs []error, label string, err error) []error {
	if err != nil {
		return append(errs, fmt.Errorf("%s: %w", label, err))
	}
	return errs
}

func (g *Gateway) closeStore() {
	if err := g.store.Close(); err != nil {
		g.logger.Error("closing store", "error", err)
	}
}

// Shutdown drains in-flight requests, then releases the listener and store.
// In-flight entry writes complete before the store is closed.
func (g *Gateway) Shutdown(ctx context.Context) error {
	g.logger.Info("shutting down gateway")

	var errs []error
	errs = appendCloseError(errs, "HTTP shutdown", g.httpServer.Shutdown(ctx))

	if g.tsnetServer != nil {
		errs = appendCloseError(errs, "tailscale shutdown", g.tsnetServer.Close())
	}
	errs = appendCloseError(errs, "store close", g.store.Close())

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %w", errors.Join(errs...))
	}
	return nil
}
