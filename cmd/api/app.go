package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/mindfulu-platform/internal/api/router"
	"github.com/wolfman30/mindfulu-platform/internal/app/bootstrap"
	"github.com/wolfman30/mindfulu-platform/internal/booking"
	"github.com/wolfman30/mindfulu-platform/internal/bookings"
	"github.com/wolfman30/mindfulu-platform/internal/chat"
	"github.com/wolfman30/mindfulu-platform/internal/community"
	appconfig "github.com/wolfman30/mindfulu-platform/internal/config"
	"github.com/wolfman30/mindfulu-platform/internal/dashboard"
	httpmiddleware "github.com/wolfman30/mindfulu-platform/internal/http/middleware"
	"github.com/wolfman30/mindfulu-platform/internal/identity"
	"github.com/wolfman30/mindfulu-platform/internal/notify"
	"github.com/wolfman30/mindfulu-platform/internal/observability/metrics"
	"github.com/wolfman30/mindfulu-platform/internal/resources"
	"github.com/wolfman30/mindfulu-platform/internal/webchat"
	"github.com/wolfman30/mindfulu-platform/pkg/logging"
)

const sweepInterval = time.Minute

// application owns everything main has to start and stop.
type application struct {
	cfg         *appconfig.Config
	logger      *logging.Logger
	handler     http.Handler
	wizards     *booking.Registry
	bookings    *bookings.Service
	chats       *chat.Manager
	chatMetrics *metrics.ChatMetrics
	limiter     *httpmiddleware.RateLimiter
	redis       *redis.Client
	pool        *pgxpool.Pool
	closers     []func() error
}

// setupMetrics builds a private registry with runtime collectors and the
// /metrics handler that serves it.
func setupMetrics() (*prometheus.Registry, http.Handler) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg, promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

func buildApplication(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (*application, error) {
	app := &application{cfg: cfg, logger: logger}
	reg, metricsHandler := setupMetrics()

	app.redis = bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	if app.redis != nil {
		app.closers = append(app.closers, app.redis.Close)
	}
	pool, err := bootstrap.BuildPostgresPool(ctx, cfg)
	if err != nil {
		_ = app.close()
		return nil, err
	}
	app.pool = pool
	if pool != nil {
		app.closers = append(app.closers, func() error { pool.Close(); return nil })
	}

	// Booking
	loc := cfg.Location()
	bookingMetrics := metrics.NewBookingMetrics(reg)
	provider := booking.NewMockProvider(loc, cfg.BookingDateWindowDays)
	app.wizards = booking.NewRegistry(provider, bookingMetrics)
	store := bootstrap.BuildBookingStore(pool, logger)
	notifier := notify.NewService(bootstrap.BuildEmailSender(cfg, logger), logger)
	app.bookings = bookings.NewService(store, notifier, logger)
	bookingHandler := booking.NewHandler(app.wizards, provider, app.bookings, logger)

	// Chat
	generator, closeGenerator, err := bootstrap.BuildReplyGenerator(ctx, cfg, logger)
	if err != nil {
		_ = app.close()
		return nil, err
	}
	app.closers = append(app.closers, closeGenerator)
	app.chatMetrics = metrics.NewChatMetrics(reg)
	app.chats = chat.NewManager(chat.Options{
		Generator: generator,
		Delay:     bootstrap.BuildReplyDelay(cfg),
		Archive:   bootstrap.BuildChatArchive(app.redis, cfg),
		Observer:  app.chatMetrics,
		Logger:    logger,
	})

	// Community
	board := community.NewBoard(bootstrap.BuildCommunityStore(app.redis))
	if err := seedBoard(ctx, board); err != nil {
		logger.Warn("community seed failed", "error", err)
	}

	resourcesHandler := resources.NewHandler(resources.NewCatalog())
	dashboardHandler := dashboard.NewHandler(dashboard.Sources{
		Bookings:  store,
		Stats:     bootstrap.BuildStatsRepository(pool),
		Chats:     app.chats,
		Wizards:   app.wizards,
		Moods:     board,
		Resources: resourcesHandler,
		Location:  loc,
	}, logger)

	if cfg.RateLimitRPS > 0 {
		app.limiter = httpmiddleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
	if cfg.AuthJWTSecret == "" {
		logger.Warn("AUTH_JWT_SECRET not set; sign-in is disabled and admin routes are unreachable")
	}

	app.handler = router.New(&router.Config{
		Logger:             logger,
		Issuer:             identity.NewIssuer(cfg.AuthJWTSecret, cfg.AuthTokenTTL),
		BookingHandler:     bookingHandler,
		ChatHandler:        webchat.NewHandler(app.chats, logger),
		ResourcesHandler:   resourcesHandler,
		CommunityHandler:   community.NewHandler(board, logger),
		DashboardHandler:   dashboardHandler,
		MetricsHandler:     metricsHandler,
		RequestObserver:    metrics.NewHTTPMetrics(reg),
		RateLimiter:        app.limiter,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		Ready:              app.ready,
	})
	return app, nil
}

// seedBoard fills an empty community board with starter posts.
func seedBoard(ctx context.Context, board *community.Board) error {
	existing, err := board.Moods(ctx, 1)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	return board.Seed(ctx)
}

func (a *application) ready(r *http.Request) error {
	if a.redis != nil {
		if err := a.redis.Ping(r.Context()).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	if a.pool != nil {
		if err := a.pool.Ping(r.Context()); err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
	}
	return nil
}

// sweep evicts idle wizards and chat sessions once.
func (a *application) sweep() {
	wizards := a.wizards.Sweep(a.cfg.WizardIdleTTL)
	chats := a.chats.Sweep(a.cfg.ChatSessionIdleTTL)
	if wizards > 0 || chats > 0 {
		a.logger.Info("swept idle state", "wizards", wizards, "chat_sessions", chats)
	}
}

// runBackground sweeps on a ticker until ctx is done.
func (a *application) runBackground(ctx context.Context) {
	if a.limiter != nil {
		go a.limiter.Run(ctx, 5*time.Minute, 10*time.Minute)
	}
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.sweep()
		}
	}
}

// close stops chat sessions, lets queued confirmation emails finish and then
// releases infrastructure.
func (a *application) close() error {
	if a.chats != nil {
		a.chats.CloseAll()
	}
	if a.bookings != nil {
		a.bookings.Wait()
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
