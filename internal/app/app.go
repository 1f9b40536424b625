// Package app wires the storefront together and runs the HTTP server.
package app

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	mathrand "math/rand/v2"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/stonemarket/storefront/internal/api"
	"github.com/stonemarket/storefront/internal/api/metrics"
	"github.com/stonemarket/storefront/internal/api/middleware"
	"github.com/stonemarket/storefront/internal/core/domain"
	"github.com/stonemarket/storefront/internal/core/service"
	"github.com/stonemarket/storefront/internal/infrastructure/config"
	"github.com/stonemarket/storefront/internal/infrastructure/memory"
	"github.com/stonemarket/storefront/internal/infrastructure/password"
	"github.com/stonemarket/storefront/internal/infrastructure/queue"
	"github.com/stonemarket/storefront/internal/infrastructure/seed"
)

const shutdownTimeout = 15 * time.Second

// Registry is where the app's Prometheus metrics live.
type Registry struct {
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// DefaultRegistry is the process-wide Prometheus registry.
func DefaultRegistry() Registry {
	return Registry{Registerer: prometheus.DefaultRegisterer, Gatherer: prometheus.DefaultGatherer}
}

// App is a fully wired, seeded storefront.
type App struct {
	Echo  *echo.Echo
	audit *queue.Dispatcher
	log   zerolog.Logger

	stopSweep context.CancelFunc
	sweeps    sync.WaitGroup
}

// Build wires stores, services and the router, seeds the catalog and the
// demo user, and starts the audit workers and the anonymous session sweeper.
func Build(ctx context.Context, cfg *config.Config, log zerolog.Logger, reg Registry) (*App, error) {
	if cfg.IsProduction() && cfg.Session.Secret == "" {
		return nil, errors.New("SESSION_SECRET is required in production")
	}
	shipping, err := cfg.ShippingRate()
	if err != nil {
		return nil, err
	}

	hasher, err := password.NewArgon2(password.Config{
		MemoryKB:    cfg.Password.MemoryKB,
		Time:        cfg.Password.Time,
		Parallelism: cfg.Password.Parallelism,
		SaltLength:  password.DefaultConfig().SaltLength,
		KeyLength:   password.DefaultConfig().KeyLength,
	})
	if err != nil {
		return nil, err
	}

	users := memory.NewUserStore(hasher)
	sessions := memory.NewSessionStore()
	inventory := memory.NewInventoryStore()
	carts := memory.NewCartStore(inventory)

	audit := queue.NewDispatcher(cfg.Audit.Workers, cfg.Audit.Buffer, queue.NewLogRecorder(log), log)
	audit.Start(ctx)

	auth, err := service.NewAuthService(users, sessions, hasher, audit, log.With().Str("component", "auth").Logger())
	if err != nil {
		audit.Close()
		return nil, err
	}
	catalog := service.NewCatalogService(inventory)
	cartService := service.NewCartService(carts, inventory, audit, shipping, log.With().Str("component", "cart").Logger())

	rng := mathrand.New(mathrand.NewPCG(uint64(time.Now().UnixNano()), 0))
	if err := seed.Products(ctx, inventory, cfg.Seed.Products, rng); err != nil {
		audit.Close()
		return nil, err
	}
	if cfg.Seed.Email != "" {
		signup := domain.Signup{Email: cfg.Seed.Email, Username: cfg.Seed.Username, Password: cfg.Seed.Password}
		if err := seed.User(ctx, users, signup, log); err != nil {
			audit.Close()
			return nil, err
		}
	}

	secret, err := sessionSecret(cfg.Session.Secret)
	if err != nil {
		audit.Close()
		return nil, err
	}
	if cfg.Session.Secret == "" {
		log.Warn().Msg("SESSION_SECRET not set, sessions will not survive a restart")
	}

	metrics.RegisterGauges(reg.Registerer,
		func() float64 { return float64(sessions.Count(context.Background())) },
		func() float64 { return float64(audit.Dropped()) },
	)

	e := api.NewRouter(api.Deps{
		Auth:    auth,
		Catalog: catalog,
		Carts:   cartService,
		Cookies: &middleware.SessionCookies{
			Name:   cfg.Session.CookieName,
			Secure: cfg.Session.CookieSecure,
			Codec:  middleware.NewSessionCodec(secret),
		},
		Log:        log,
		Registerer: reg.Registerer,
		Gatherer:   reg.Gatherer,
	})

	a := &App{Echo: e, audit: audit, log: log}
	a.startSweeper(auth, cfg.Session.AnonymousTTL, cfg.Session.SweepInterval)
	return a, nil
}

// startSweeper prunes anonymous sessions every interval until Close.
func (a *App) startSweeper(auth *service.AuthService, ttl, interval time.Duration) {
	if ttl <= 0 || interval <= 0 {
		a.stopSweep = func() {}
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.stopSweep = cancel
	a.sweeps.Add(1)
	go func() {
		defer a.sweeps.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				auth.PruneAnonymous(ctx, ttl)
			}
		}
	}()
}

// Close stops the session sweeper and flushes pending audit events.
func (a *App) Close() {
	a.stopSweep()
	a.sweeps.Wait()
	a.audit.Close()
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, cfg *config.Config, addr string, log zerolog.Logger) error {
	return runWithRegistry(ctx, cfg, addr, log, DefaultRegistry())
}

func runWithRegistry(ctx context.Context, cfg *config.Config, addr string, log zerolog.Logger, reg Registry) error {
	a, err := Build(ctx, cfg, log, reg)
	if err != nil {
		return err
	}
	defer a.Close()

	server := &http.Server{
		Addr:         addr,
		Handler:      a.Echo,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("storefront listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info().Msg("storefront stopped")
	return nil
}

func sessionSecret(configured string) ([]byte, error) {
	if configured != "" {
		return []byte(configured), nil
	}
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("session secret: %w", err)
	}
	return secret, nil
}
