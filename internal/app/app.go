package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"ContentStudio/internal/api"
	"ContentStudio/internal/config"
	"ContentStudio/internal/generation"
	"ContentStudio/internal/infrastructure/email"
	"ContentStudio/internal/infrastructure/links"
	"ContentStudio/internal/infrastructure/llm"
	"ContentStudio/internal/infrastructure/media"
	"ContentStudio/internal/infrastructure/scheduler"
	"ContentStudio/internal/infrastructure/storage"
	"ContentStudio/internal/logging"
	"ContentStudio/internal/ports"
	"ContentStudio/internal/ratelimit"
	"ContentStudio/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg         config.Config
	logger      *slog.Logger
	store       *storage.Store
	redis       *redis.Client
	server      *http.Server
	maintenance *usecase.Maintenance
}

// New builds the application. Backends are connected eagerly so that
// misconfiguration fails at startup.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}
	a := &Application{cfg: cfg, logger: baseLogger}

	metrics := prometheus.NewRegistry()
	if err := registerMetrics(metrics); err != nil {
		return nil, err
	}

	limiterStore, sweeper, err := a.limiterStore(ctx)
	if err != nil {
		return nil, err
	}
	window := ratelimit.New(limiterStore, ratelimit.Config{
		Name:   "window",
		Max:    cfg.Generation.PerWindow,
		Window: cfg.Generation.Window,
	})
	daily := ratelimit.NewDaily(limiterStore, cfg.Generation.DailyLimit, nil)

	gateway, err := buildGateway(cfg, window, daily, baseLogger)
	if err != nil {
		a.close()
		return nil, err
	}

	store, err := storage.Open(ctx, cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		a.close()
		return nil, err
	}
	a.store = store

	signer, err := links.NewSigner(a.signingKey(), cfg.Approval.LinkTTL, nil)
	if err != nil {
		a.close()
		return nil, err
	}

	var mediaStore ports.MediaStore
	if cfg.Media.Endpoint != "" {
		ms, err := media.New(ctx, media.Config{
			Endpoint:  cfg.Media.Endpoint,
			AccessKey: cfg.Media.AccessKey,
			SecretKey: cfg.Media.SecretKey,
			Bucket:    cfg.Media.Bucket,
			UseSSL:    cfg.Media.UseSSL,
			URLExpiry: cfg.Media.URLExpiry,
		}, baseLogger.With("component", "media"))
		if err != nil {
			a.close()
			return nil, err
		}
		mediaStore = ms
	}

	workflow := usecase.NewWorkflow(usecase.WorkflowDeps{
		Clients:         store,
		Audits:          store,
		Calendar:        store,
		Scripts:         store,
		Schedules:       store,
		Notifications:   store,
		Generator:       gateway,
		Approvals:       email.NewNotifier(cfg.Email.From, a.mailSender(), baseLogger.With("component", "email")),
		Links:           signer,
		Media:           mediaStore,
		ApprovalBaseURL: cfg.Approval.BaseURL,
		PreferredModel:  cfg.Generation.PreferredModel,
		Logger:          baseLogger.With("component", "workflow"),
	})

	srv := api.NewServer(api.Deps{
		Workflow:          workflow,
		Gatherer:          metrics,
		Health:            store.Ping,
		GenerationTimeout: cfg.HTTP.GenerationTimeout,
		Logger:            baseLogger.With("component", "api"),
	})
	a.server = &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if sweeper != nil {
		a.maintenance = usecase.NewMaintenance(
			scheduler.NewTickerScheduler(cfg.Maintenance.SweepInterval),
			baseLogger.With("component", "maintenance"),
			sweeper,
		)
	}
	return a, nil
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (a *Application) Run(ctx context.Context) error {
	defer a.close()

	if a.maintenance != nil {
		if err := a.maintenance.Start(ctx); err != nil {
			return fmt.Errorf("start maintenance: %w", err)
		}
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.Warn("http shutdown incomplete", "error", err)
	}
	if a.maintenance != nil {
		if err := a.maintenance.Stop(shutdownCtx); err != nil {
			a.logger.Warn("maintenance stop incomplete", "error", err)
		}
	}

	if serveErr != nil {
		return fmt.Errorf("serve http: %w", serveErr)
	}
	a.logger.Info("application stopped")
	return nil
}

func (a *Application) close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("close store", "error", err)
		}
		a.store = nil
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("close redis", "error", err)
		}
		a.redis = nil
	}
}

// limiterStore picks Redis when configured so that limits hold across
// replicas, and process memory otherwise. The memory store is also returned
// as a sweeper.
func (a *Application) limiterStore(ctx context.Context) (ratelimit.Store, usecase.Sweeper, error) {
	if a.cfg.Redis.Addr == "" {
		mem := ratelimit.NewMemoryStore()
		return mem, mem, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     a.cfg.Redis.Addr,
		Password: a.cfg.Redis.Password,
		DB:       a.cfg.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("connect redis %s: %w", a.cfg.Redis.Addr, err)
	}
	a.redis = client
	a.logger.Info("rate limits shared through redis", "addr", a.cfg.Redis.Addr)
	return ratelimit.NewRedisStore(client), nil, nil
}

func (a *Application) signingKey() string {
	if a.cfg.Approval.SigningKey != "" {
		return a.cfg.Approval.SigningKey
	}
	buf := make([]byte, 32)
	_, _ = rand.Read(buf)
	a.logger.Warn("APPROVAL_SIGNING_KEY is not set, approval links will not survive a restart")
	return hex.EncodeToString(buf)
}

func (a *Application) mailSender() email.Sender {
	if a.cfg.Email.Host == "" {
		return email.LogSender{Logger: a.logger.With("component", "email")}
	}
	return email.NewSMTPSender(email.SMTPConfig{
		Host:     a.cfg.Email.Host,
		Port:     a.cfg.Email.Port,
		Username: a.cfg.Email.Username,
		Password: a.cfg.Email.Password,
	})
}

func buildGateway(cfg config.Config, window llm.WindowLimiter, daily llm.QuotaLimiter, logger *slog.Logger) (*generation.Gateway, error) {
	registry := generation.NewRegistry()
	var configured []string
	for _, spec := range llm.Specs(cfg.Providers) {
		registry.Register(llm.NewAdapter(spec, llm.AdapterDeps{
			Window:     window,
			Daily:      daily,
			RetryDelay: cfg.Generation.RetryDelay,
			Logger:     logger.With("component", "llm."+spec.Name),
		}))
		if spec.APIKey != "" {
			configured = append(configured, spec.Label)
		}
	}

	chain, err := registry.Chain(cfg.Generation.Order)
	if err != nil {
		return nil, fmt.Errorf("build provider chain: %w", err)
	}
	if len(configured) == 0 {
		logger.Warn("no AI provider key is set, generation requests will fail")
	} else {
		logger.Info("AI providers configured", "providers", strings.Join(configured, ", "), "order", strings.Join(cfg.Generation.Order, " -> "))
	}

	return generation.NewGateway(generation.GatewayDeps{
		Providers: chain,
		Logger:    logger.With("component", "gateway"),
	}), nil
}

func registerMetrics(reg *prometheus.Registry) error {
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	for _, register := range []func(prometheus.Registerer) error{
		ratelimit.RegisterMetrics,
		generation.RegisterMetrics,
		api.RegisterMetrics,
	} {
		if err := register(reg); err != nil {
			return fmt.Errorf("register metrics: %w", err)
		}
	}
	return nil
}
