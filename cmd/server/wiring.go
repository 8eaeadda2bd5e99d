package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"

	citizenhandler "idcard/internal/citizen/handler"
	citizenmetrics "idcard/internal/citizen/metrics"
	"idcard/internal/citizen/policy"
	citizenservice "idcard/internal/citizen/service"
	citizenstore "idcard/internal/citizen/store"
	jwttoken "idcard/internal/jwt_token"
	"idcard/internal/platform/config"
	"idcard/internal/platform/database"
	"idcard/internal/platform/health"
	"idcard/internal/platform/kafka"
	"idcard/internal/platform/kafka/producer"
	redisclient "idcard/internal/platform/redis"
	httptransport "idcard/internal/transport/http"
	"idcard/migrations"
	"idcard/pkg/platform/circuit"
	"idcard/pkg/platform/middleware/auth"
	"idcard/pkg/platform/middleware/metadata"
	"idcard/pkg/platform/middleware/request"
	"idcard/pkg/platform/outbox"
	outboxmetrics "idcard/pkg/platform/outbox/metrics"
	outboxpostgres "idcard/pkg/platform/outbox/postgres"
	"idcard/pkg/platform/outbox/worker"
)

// app holds everything main starts and stops.
type app struct {
	router  http.Handler
	storage string
	worker  *worker.Worker
	log     *slog.Logger
	closers []io.Closer
}

func (a *app) start() {
	if a.worker != nil {
		a.worker.Start()
	}
}

// stop drains the outbox worker before the producer is closed.
func (a *app) stop(ctx context.Context) {
	if a.worker != nil {
		if err := a.worker.Stop(ctx); err != nil {
			a.log.Error("outbox worker stop failed", "error", err)
		}
		a.worker = nil
	}
}

func (a *app) close() {
	a.stop(context.Background())
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.log.Warn("close failed", "error", err)
		}
	}
}

type citizenBackend struct {
	store  citizenservice.Store
	tx     citizenservice.StoreTx
	events outbox.Store
}

func build(ctx context.Context, cfg config.Config, log *slog.Logger) (*app, error) {
	a := &app{log: log, storage: "memory"}
	fail := func(err error) (*app, error) {
		a.close()
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	pool, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return fail(err)
	}
	backend := citizenBackend{
		store:  citizenstore.NewInMemory(),
		tx:     citizenstore.NewShardedTx(reg),
		events: outbox.NewInMemoryStore(),
	}
	if pool != nil {
		a.closers = append(a.closers, pool)
		a.storage = "postgres"
		if cfg.Database.AutoMigrate {
			applied, err := migrations.Up(ctx, pool.DB())
			if err != nil {
				return fail(fmt.Errorf("apply migrations: %w", err))
			}
			if len(applied) > 0 {
				log.Info("applied migrations", "versions", strings.Join(applied, ","))
			}
		}
		if err := pool.RegisterMetrics(reg); err != nil {
			return fail(fmt.Errorf("register db metrics: %w", err))
		}
		backend = citizenBackend{
			store:  citizenstore.NewPostgres(pool.DB()),
			tx:     citizenstore.NewPostgresTx(pool.DB(), cfg.Database.TxTimeout),
			events: outboxpostgres.New(pool.DB()),
		}
	}
	probes := health.New(cfg.Server.Environment, a.storage)
	if pool != nil {
		probes.RegisterCheck("database", pool.Health)
	}

	rdb, err := redisclient.New(ctx, cfg.Redis)
	if err != nil {
		return fail(err)
	}
	var (
		stats   citizenservice.StatsCache = citizenstore.NewInMemoryStatsCache(cfg.Citizen.StatsCacheTTL)
		revoked auth.TokenRevocationChecker
	)
	if rdb != nil {
		a.closers = append(a.closers, rdb)
		if err := rdb.RegisterMetrics(reg); err != nil {
			return fail(fmt.Errorf("register redis metrics: %w", err))
		}
		stats = citizenstore.NewGuardedStatsCache(
			citizenstore.NewRedisStatsCache(rdb.Client, "", cfg.Citizen.StatsCacheTTL),
			circuit.New("stats-cache"),
			log,
		)
		revoked = jwttoken.NewRedisRevocationList(rdb.Client)
		probes.RegisterCheck("redis", rdb.Health)
	} else {
		revoked = jwttoken.NewInMemoryRevocationList()
	}

	var publisher worker.Publisher
	if cfg.Kafka.Brokers != "" {
		pcfg := kafka.DefaultProducerConfig(cfg.Kafka.Brokers)
		pcfg.Acks = cfg.Kafka.Acks
		p, err := producer.New(pcfg, log)
		if err != nil {
			return fail(fmt.Errorf("kafka producer: %w", err))
		}
		a.closers = append(a.closers, p)
		publisher = p
		probes.RegisterCheck("kafka", kafka.NewHealthChecker(cfg.Kafka.Brokers, 2*time.Second).Check)
	} else {
		p := producer.NewNoopProducer(log)
		a.closers = append(a.closers, p)
		publisher = p
	}
	a.worker = worker.New(backend.events, publisher,
		worker.WithTopic(cfg.Kafka.Topic),
		worker.WithBatchSize(cfg.Kafka.BatchSize),
		worker.WithPollInterval(cfg.Kafka.PollInterval),
		worker.WithRetention(cfg.Kafka.Retention),
		worker.WithMetrics(outboxmetrics.NewWith(reg)),
		worker.WithLogger(log),
	)

	svc := citizenservice.New(backend.store, policy.NewGate(),
		citizenservice.WithLogger(log),
		citizenservice.WithMetrics(citizenmetrics.NewWith(reg)),
		citizenservice.WithTracer(otel.Tracer("idcard/citizen")),
		citizenservice.WithTx(backend.tx),
		citizenservice.WithStatsCache(stats),
		citizenservice.WithEvents(backend.events),
		citizenservice.WithBusinessIDPrefix(cfg.Citizen.BusinessIDPrefix),
		citizenservice.WithBulkConcurrency(cfg.Citizen.BulkConcurrency),
		citizenservice.WithMaxBatch(cfg.Citizen.MaxBatch),
	)
	citizens := citizenhandler.New(svc, log)

	trusted, err := metadata.ParseTrustedProxies(cfg.Server.TrustedProxies)
	if err != nil {
		return fail(fmt.Errorf("TRUSTED_PROXIES: %w", err))
	}
	tokens := jwttoken.NewJWTService(cfg.Server.JWTSigningKey, cfg.Server.JWTIssuer, cfg.Server.JWTAudience, cfg.Server.TokenTTL)

	a.router = httptransport.NewRouter(httptransport.Config{
		Logger:         log,
		RequestTimeout: cfg.Server.RequestTimeout,
		MaxBodyBytes:   cfg.Server.MaxBodyBytes,
		ClientIP:       metadata.NewResolver(trusted),
		Metrics:        request.NewMetrics(reg),
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
	},
		probes,
		[]httptransport.PublicRoutes{citizens},
		auth.RequireAuth(jwttoken.NewJWTServiceAdapter(tokens), revoked, log),
		citizens,
	)
	return a, nil
}
