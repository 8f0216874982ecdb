package main

import (
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"sendgate/internal/contacts"
	"sendgate/internal/fingerprint"
	identitysvc "sendgate/internal/identity/service"
	identitystore "sendgate/internal/identity/store"
	jwttoken "sendgate/internal/jwt_token"
	"sendgate/internal/platform/config"
	"sendgate/internal/platform/dispatch"
	"sendgate/internal/platform/httpserver"
	"sendgate/internal/platform/logger"
	"sendgate/internal/platform/metrics"
	"sendgate/internal/platform/otel"
	"sendgate/internal/platform/postgres"
	"sendgate/internal/platform/redis"
	httptransport "sendgate/internal/transport/http"
	"sendgate/internal/trustgate"
	gatemetrics "sendgate/internal/trustgate/metrics"
	"sendgate/internal/trustgate/presenter"
	"sendgate/pkg/platform/audit"
	"sendgate/pkg/platform/audit/publisher"
	"sendgate/pkg/platform/audit/publishers/kafka"
	auditmemory "sendgate/pkg/platform/audit/store/memory"
	auditpostgres "sendgate/pkg/platform/audit/store/postgres"
)

const shutdownTimeout = 10 * time.Second

// main loads configuration and hands over to run. Business logic lives in the
// internal packages; this file only wires them together.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("sendgate stopped with error", "error", err)
		os.Exit(1)
	}
}

type infra struct {
	db     *sql.DB
	redis  *redis.Client
	kafka  *kafka.Sink
	otelFn func(context.Context) error
}

func (i *infra) close(ctx context.Context, log *slog.Logger) {
	if i.kafka != nil {
		i.kafka.Close()
	}
	if i.redis != nil {
		if err := i.redis.Close(); err != nil {
			log.Warn("failed to close redis", "error", err)
		}
	}
	if i.db != nil {
		if err := i.db.Close(); err != nil {
			log.Warn("failed to close postgres", "error", err)
		}
	}
	if i.otelFn != nil {
		if err := i.otelFn(ctx); err != nil {
			log.Warn("failed to flush traces", "error", err)
		}
	}
}

func (i *infra) healthChecks() map[string]func(context.Context) error {
	checks := make(map[string]func(context.Context) error)
	if i.db != nil {
		checks["postgres"] = i.db.PingContext
	}
	if i.redis != nil {
		checks["redis"] = i.redis.Health
	}
	return checks
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	res := &infra{}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		res.close(closeCtx, log)
	}()

	var err error
	if res.otelFn, err = otel.Setup(ctx, cfg.Telemetry); err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	if res.db, err = postgres.Open(ctx, cfg.Database); err != nil {
		return err
	}
	if res.redis, err = redis.New(ctx, cfg.Redis); err != nil {
		return err
	}

	trustStore := buildTrustStore(cfg, res, log)
	names := buildDirectory(res)

	auditStore, err := buildAuditStore(ctx, cfg, res, log)
	if err != nil {
		return err
	}
	auditPublisher := publisher.NewPublisher(auditStore,
		publisher.WithAsyncBuffer(cfg.Audit.BufferSize),
		publisher.WithLogger(log),
	)
	defer auditPublisher.Close()

	localKey, err := base64.StdEncoding.DecodeString(cfg.Fingerprint.LocalIdentityKey)
	if err != nil {
		return fmt.Errorf("decode SENDGATE_LOCAL_IDENTITY_KEY: %w", err)
	}
	if len(localKey) == 0 {
		log.Warn("no local identity key configured, safety numbers are unavailable")
	}
	fingerprints := fingerprint.New(cfg.Fingerprint.LocalIdentifier, localKey,
		fingerprint.WithIterations(cfg.Fingerprint.Iterations))

	commits := dispatch.NewQueue("commits",
		dispatch.WithWorkers(cfg.CommitWorkers),
		dispatch.WithLogger(log),
	)
	interactive := dispatch.NewQueue("interactive", dispatch.WithLogger(log))
	prompts := presenter.NewRegistry(presenter.WithTTL(cfg.PromptTTL), presenter.WithLogger(log))

	gate := trustgate.New(trustStore, fingerprints, names, prompts,
		trustgate.WithLogger(log),
		trustgate.WithMetrics(gatemetrics.New()),
		trustgate.WithAuditPublisher(auditPublisher),
		trustgate.WithCommitQueue(commits),
		trustgate.WithInteractiveQueue(interactive),
	)
	identities := identitysvc.New(trustStore,
		identitysvc.WithLogger(log),
		identitysvc.WithAuditPublisher(auditPublisher),
	)

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer)
	router := httptransport.NewRouter(httptransport.RouterDeps{
		Logger:    log,
		Validator: jwttoken.NewJWTServiceAdapter(jwtService),
		Metrics:   metrics.New(),
		Gatherer:  prometheus.DefaultGatherer,
		Gate:      httptransport.NewGateHandler(gate, prompts, log, cfg.DecisionWait),
		Identity:  httptransport.NewIdentityHandler(identities, gate, names, log),

		HealthChecks: res.healthChecks(),
	})
	srv := httpserver.New(cfg.Addr, router, cfg.DecisionWait)

	// Queues and the sweeper outlive the HTTP server so in-flight decisions
	// can finish during shutdown.
	bgCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()
	bg, bgCtx := errgroup.WithContext(bgCtx)
	bg.Go(func() error { return ignoreCanceled(commits.Run(bgCtx)) })
	bg.Go(func() error { return ignoreCanceled(interactive.Run(bgCtx)) })
	bg.Go(func() error { return ignoreCanceled(prompts.Run(bgCtx)) })

	serveErr := make(chan error, 1)
	go func() {
		log.Info("starting sendgate", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-serveErr:
		if err != nil {
			stopBackground()
			_ = bg.Wait()
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
	stopBackground()
	return bg.Wait()
}

// identityBackend is what both the gate and the identity service need.
type identityBackend interface {
	trustgate.TrustStore
	identitysvc.Store
}

func buildTrustStore(cfg config.Server, res *infra, log *slog.Logger) identityBackend {
	var backend identitystore.Backend = identitystore.NewInMemoryStore()
	if res.db != nil {
		backend = identitystore.NewPostgres(res.db)
		log.Info("identity store: postgres")
	} else {
		log.Info("identity store: in-memory")
	}
	if res.redis != nil {
		log.Info("identity cache: redis", "ttl", cfg.Redis.CacheTTL)
		return identitystore.NewCached(backend, res.redis.Client,
			identitystore.WithCacheTTL(cfg.Redis.CacheTTL),
			identitystore.WithCacheLogger(log),
		)
	}
	return backend
}

type directory interface {
	trustgate.NameResolver
	httptransport.ContactDirectory
}

func buildDirectory(res *infra) directory {
	if res.db != nil {
		return contacts.NewPostgres(res.db)
	}
	return contacts.NewInMemoryDirectory()
}

func buildAuditStore(ctx context.Context, cfg config.Server, res *infra, log *slog.Logger) (audit.Store, error) {
	var primary audit.Store = auditmemory.NewInMemoryStore()
	if res.db != nil {
		primary = auditpostgres.New(res.db)
	}
	if len(cfg.Audit.KafkaBrokers) == 0 {
		return primary, nil
	}
	sink, err := kafka.New(cfg.Audit.KafkaBrokers, cfg.Audit.KafkaTopic)
	if err != nil {
		return nil, err
	}
	res.kafka = sink
	if err := sink.EnsureTopic(ctx, 3, 1); err != nil {
		log.Warn("could not ensure audit topic", "topic", cfg.Audit.KafkaTopic, "error", err)
	}
	return audit.Fanout{primary, sink}, nil
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
