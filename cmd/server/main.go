package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"stacia/internal/admin"
	adminadapters "stacia/internal/admin/adapters"
	analysishandler "stacia/internal/analysis/handler"
	analysismetrics "stacia/internal/analysis/metrics"
	analysisservice "stacia/internal/analysis/service"
	analysisstore "stacia/internal/analysis/store"
	analysisworker "stacia/internal/analysis/worker"
	consenthandler "stacia/internal/consent/handler"
	consentmetrics "stacia/internal/consent/metrics"
	"stacia/internal/consent/notifier"
	consentservice "stacia/internal/consent/service"
	consentstore "stacia/internal/consent/store"
	"stacia/internal/platform/config"
	"stacia/internal/platform/httpserver"
	"stacia/internal/platform/logger"
	"stacia/internal/platform/metrics"
	"stacia/internal/platform/postgres"
	"stacia/internal/platform/redis"
	ratelimitmetrics "stacia/internal/ratelimit/metrics"
	ratelimitmw "stacia/internal/ratelimit/middleware"
	ratelimitservice "stacia/internal/ratelimit/service"
	"stacia/internal/ratelimit/store/bucket"
	httptransport "stacia/internal/transport/http"
	audit "stacia/pkg/platform/audit"
	"stacia/pkg/platform/audit/publisher"
	kafkasink "stacia/pkg/platform/audit/publishers/kafka"
	auditmemory "stacia/pkg/platform/audit/store/memory"
	auditpostgres "stacia/pkg/platform/audit/store/postgres"
	auditworker "stacia/pkg/platform/audit/worker"
)

const (
	shutdownGrace   = 10 * time.Second
	auditOutboxSize = 1024
)

// main wires dependencies and runs the HTTP server, the analysis clock and
// audit fan-out until SIGINT or SIGTERM. Business logic lives in internal
// service packages.
func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("stacia exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("stacia stopped")
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	healthChecks := map[string]httptransport.HealthCheck{}

	auditStore, db, err := buildAuditStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	if db != nil {
		defer func() { _ = db.Close() }()
		healthChecks["postgres"] = db.PingContext
	}

	sinks, closeSinks, err := buildAuditSinks(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeSinks()

	pubOpts := []publisher.Option{
		publisher.WithLogger(log),
		publisher.WithMetrics(publisher.NewMetrics()),
	}
	if len(sinks) > 0 {
		pubOpts = append(pubOpts, publisher.WithAsyncBuffer(auditOutboxSize))
	}
	pub := publisher.NewPublisher(auditStore, pubOpts...)

	consentOpts := []consentservice.Option{
		consentservice.WithLogger(log),
		consentservice.WithAuditPublisher(pub),
		consentservice.WithMetrics(consentmetrics.New()),
		consentservice.WithNotifier(notifier.NewLogNotifier(log)),
		consentservice.WithStrictKeys(cfg.Server.StrictKeys()),
	}
	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
		healthChecks["redis"] = redisClient.Health
	}
	sessions := buildSessionStore(cfg, redisClient, log)
	if redisSessions, ok := sessions.(*consentstore.RedisStore); ok {
		consentOpts = append(consentOpts, consentservice.WithTx(newConsentRedisTx(redisSessions)))
	}
	consent := consentservice.New(sessions, consentOpts...)

	analysis := analysisservice.New(analysisstore.NewInMemory(),
		analysisservice.WithLogger(log),
		analysisservice.WithAuditPublisher(pub),
		analysisservice.WithMetrics(analysismetrics.New()))

	adminService := admin.NewService(adminadapters.NewAuditStoreAdapter(pub),
		admin.WithAuditPublisher(pub),
		admin.WithLogger(log))
	if cfg.Server.AdminToken == "" {
		log.Warn("ADMIN_API_TOKEN not set, admin routes will reject every request")
	}

	rateLimit, err := buildRateLimit(cfg, redisClient, log)
	if err != nil {
		return err
	}

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Logger:         log,
		RequestTimeout: cfg.Server.RequestTimeout,
		Metrics:        metrics.New(),
		RateLimit:      rateLimit,
		HealthChecks:   healthChecks,
	},
		consenthandler.New(consent, log),
		analysishandler.New(analysis, log),
		admin.NewHandler(adminService, cfg.Server.AdminToken, log),
	)
	srv := httpserver.New(cfg.Server.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting stacia",
			"addr", cfg.Server.Addr,
			"environment", cfg.Server.Environment,
			"strict_keys", cfg.Server.StrictKeys())
		return httpserver.Run(gctx, srv, shutdownGrace)
	})
	g.Go(func() error {
		return analysisworker.New(analysis, cfg.Server.AnalysisTick, analysisworker.WithLogger(log)).Run(gctx)
	})
	if outbox := pub.Outbox(); outbox != nil {
		g.Go(func() error {
			return auditworker.NewWorker(outbox, log, sinks).Run(gctx)
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		return pub.Close()
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// buildAuditStore returns the open database when audit events go to
// PostgreSQL; the caller owns closing it.
func buildAuditStore(ctx context.Context, cfg config.Config, log *slog.Logger) (audit.Store, *sql.DB, error) {
	db, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("audit database: %w", err)
	}
	if db == nil {
		log.Info("DATABASE_URL not set, audit events are kept in memory")
		return auditmemory.NewInMemoryStore(), nil, nil
	}
	store := auditpostgres.New(db)
	if err := store.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("audit schema: %w", err)
	}
	log.Info("audit events stored in postgres")
	return store, db, nil
}

func buildSessionStore(cfg config.Config, client *redis.Client, log *slog.Logger) consentservice.Store {
	if client == nil {
		log.Info("REDIS_URL not set, consent sessions are kept in memory")
		return consentstore.NewInMemory()
	}
	log.Info("consent sessions stored in redis", "ttl", cfg.Server.SessionTTL.String())
	return consentstore.NewRedis(client.Client, consentstore.WithTTL(cfg.Server.SessionTTL))
}

// buildRateLimit shares buckets across instances when Redis is configured.
func buildRateLimit(cfg config.Config, client *redis.Client, log *slog.Logger) (func(http.Handler) http.Handler, error) {
	if cfg.RateLimit.Disabled {
		log.Info("rate limiting disabled")
		return nil, nil
	}
	var store ratelimitservice.BucketStore = bucket.NewInMemoryBucketStore()
	if client != nil {
		store = bucket.NewRedisBucketStore(client.Client)
	}
	limiter, err := ratelimitservice.New(store,
		ratelimitservice.PerMinute(cfg.RateLimit.ReadPerMinute, cfg.RateLimit.WritePerMinute))
	if err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}
	mw := ratelimitmw.New(limiter, log, ratelimitmw.WithMetrics(ratelimitmetrics.New()))
	return mw.RateLimit, nil
}

func buildAuditSinks(ctx context.Context, cfg config.Config, log *slog.Logger) ([]audit.Sink, func(), error) {
	if !cfg.Kafka.Enabled() {
		return nil, func() {}, nil
	}
	client, err := kafkasink.NewClient(cfg.Kafka.Brokers, cfg.Kafka.AuditTopic)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka client: %w", err)
	}
	if err := kafkasink.EnsureTopic(ctx, client, cfg.Kafka.AuditTopic); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("kafka audit topic: %w", err)
	}
	log.Info("forwarding audit events to kafka", "topic", cfg.Kafka.AuditTopic)
	return []audit.Sink{kafkasink.NewSink(client, cfg.Kafka.AuditTopic)}, client.Close, nil
}
