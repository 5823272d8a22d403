package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alem-hub/studyhub/config"
	"github.com/alem-hub/studyhub/internal/application"
	"github.com/alem-hub/studyhub/internal/application/command"
	"github.com/alem-hub/studyhub/internal/application/query"
	"github.com/alem-hub/studyhub/internal/domain/platform"
	"github.com/alem-hub/studyhub/internal/domain/streak"
	"github.com/alem-hub/studyhub/internal/infrastructure/lock"
	"github.com/alem-hub/studyhub/internal/infrastructure/messaging"
	"github.com/alem-hub/studyhub/internal/infrastructure/metrics"
	"github.com/alem-hub/studyhub/internal/infrastructure/persistence/badger"
	"github.com/alem-hub/studyhub/internal/infrastructure/persistence/kv"
	"github.com/alem-hub/studyhub/internal/infrastructure/persistence/postgres"
	"github.com/alem-hub/studyhub/internal/infrastructure/persistence/records"
	"github.com/alem-hub/studyhub/internal/infrastructure/persistence/redis"
	httpapi "github.com/alem-hub/studyhub/internal/interface/http"
	"github.com/alem-hub/studyhub/pkg/circuitbreaker"
	"github.com/alem-hub/studyhub/pkg/logger"
	"github.com/alem-hub/studyhub/pkg/retry"
)

// components is everything serve and stats need, with their cleanup.
type components struct {
	backend kv.Store
	store   *records.Store
	cache   *redis.Cache
	bus     *messaging.InMemoryEventBus
	app     *application.App
	health  *httpapi.HealthChecker

	closers []func() error
}

func (c *components) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		errs = append(errs, c.closers[i]())
	}
	return errors.Join(errs...)
}

// openBackend opens the configured kv backend.
func openBackend(ctx context.Context, cfg *config.Config, log *logger.Logger) (kv.Store, error) {
	switch cfg.Store.Backend {
	case config.BackendPostgres:
		conn, err := retry.DoWithData(ctx, connectRetrier(log, "postgres"), func(ctx context.Context) (*postgres.Connection, error) {
			return postgres.NewConnection(ctx, postgresConfig(cfg))
		})
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		return postgres.NewStore(conn), nil
	default:
		b, err := badger.Open(badger.Config{
			Path:           cfg.Store.BadgerPath,
			InMemory:       cfg.Store.BadgerInMemory,
			SyncWrites:     cfg.Store.BadgerSyncWrites,
			GCInterval:     cfg.Store.BadgerGCInterval,
			GCDiscardRatio: badger.DefaultConfig().GCDiscardRatio,
			Logger:         log,
		})
		if err != nil {
			return nil, fmt.Errorf("open badger: %w", err)
		}
		return b, nil
	}
}

// connectRetrier retries startup dials a few times so the service survives
// dependencies that come up after it.
func connectRetrier(log *logger.Logger, component string) *retry.Retrier {
	return retry.ConnectRetrier(func(attempt int, err error, delay time.Duration) {
		log.Warn("dependency not reachable, retrying",
			logger.Component(component), logger.Int("attempt", attempt), logger.Err(err), logger.Duration("delay", delay))
	})
}

func postgresConfig(cfg *config.Config) postgres.Config {
	pc := postgres.DefaultConfig()
	pc.URL = cfg.Store.DatabaseURL
	pc.MaxConns = int32(cfg.Store.MaxConns)
	pc.MinConns = int32(cfg.Store.MinConns)
	pc.MaxConnLifetime = cfg.Store.ConnMaxLifetime
	pc.MaxConnIdleTime = cfg.Store.ConnMaxIdleTime
	return pc
}

func redisConfig(cfg *config.Config) redis.Config {
	rc := redis.DefaultConfig()
	rc.Host = cfg.Redis.Host
	rc.Port = cfg.Redis.Port
	rc.Password = cfg.Redis.Password
	rc.DB = cfg.Redis.DB
	rc.PoolSize = cfg.Redis.PoolSize
	rc.MinIdleConns = cfg.Redis.MinIdleConns
	rc.DialTimeout = cfg.Redis.DialTimeout
	rc.ReadTimeout = cfg.Redis.ReadTimeout
	rc.WriteTimeout = cfg.Redis.WriteTimeout
	return rc
}

// build wires storage, locking, events and the use case handlers.
func build(ctx context.Context, cfg *config.Config, log *logger.Logger) (_ *components, err error) {
	c := &components{health: httpapi.NewHealthChecker(cfg.App.Version)}
	defer func() {
		if err != nil {
			_ = c.Close()
		}
	}()

	c.backend, err = openBackend(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	c.closers = append(c.closers, c.backend.Close)
	c.health.AddCheck("store", c.backend.Ping)

	storeOpts := []records.Option{records.WithLogger(log.Named("store"))}
	if cfg.Observability.MetricsEnabled {
		storeOpts = append(storeOpts, records.WithConflictHook(metrics.RecordStoreConflict))
	}
	c.store = records.NewStore(c.backend, storeOpts...)

	var locker platform.Locker = lock.NewKeyed()
	subs := messaging.Subscribers{Logger: log}
	var statsCache query.StatsCache

	if cfg.Redis.Enabled {
		c.cache, err = retry.DoWithData(ctx, connectRetrier(log, "redis"), func(ctx context.Context) (*redis.Cache, error) {
			return redis.NewCache(ctx, redisConfig(cfg))
		})
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		c.closers = append(c.closers, c.cache.Close)
		c.health.AddCheck("redis", httpapi.PingCheck(c.cache))

		sc := redis.NewStatsCache(c.cache, cfg.Redis.StatsTTL,
			circuitbreaker.WithFailureThreshold(cfg.Redis.BreakerFailures),
			circuitbreaker.WithSuccessThreshold(cfg.Redis.BreakerSuccesses),
			circuitbreaker.WithOpenTimeout(cfg.Redis.BreakerOpenTimeout),
			circuitbreaker.WithOnStateChange(func(name string, from, to circuitbreaker.State) {
				log.Warn("circuit breaker state changed",
					logger.Component(name), logger.String("from", from.String()), logger.String("to", to.String()))
			}))
		statsCache = sc
		subs.Stats = sc
		if cfg.Redis.RelayEvents {
			subs.Relay = c.cache
			subs.Channel = redis.EventChannel
		}
		if cfg.Lock.Backend == config.LockRedis {
			locker = redis.NewLocker(c.cache, cfg.Lock.TTL)
		}
	}

	busCfg := messaging.DefaultInMemoryEventBusConfig()
	busCfg.Logger = log.Named("events")
	if cfg.Observability.MetricsEnabled {
		busCfg.Observer = metrics.EventObserver{}
	}
	c.bus = messaging.NewInMemoryEventBus(busCfg)
	c.closers = append(c.closers, c.bus.Close)
	if err := messaging.Wire(c.bus, subs); err != nil {
		return nil, fmt.Errorf("wire subscribers: %w", err)
	}

	var observe func(string, time.Duration, error)
	if cfg.Observability.MetricsEnabled {
		observe = metrics.RecordOperation
	}

	c.app = application.New(application.Options{
		Commands: command.Deps{
			Store:   c.store,
			Locker:  locker,
			Events:  c.bus,
			Logger:  log.Named("command"),
			Observe: observe,
		},
		Queries: query.Deps{
			Store:   c.store,
			Observe: observe,
		},
		StreakPolicy: streak.Policy{MinInterval: cfg.Streak.MinInterval},
		StatsCache:   statsCache,
		Logger:       log.Named("query"),
	})
	return c, nil
}
