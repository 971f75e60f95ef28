package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/aescanero/tripplanner/internal/application/agents"
	"github.com/aescanero/tripplanner/internal/application/orchestrator"
	"github.com/aescanero/tripplanner/internal/application/workers"
	"github.com/aescanero/tripplanner/internal/config"
	"github.com/aescanero/tripplanner/pkg/adapters/events/memory"
	redisevents "github.com/aescanero/tripplanner/pkg/adapters/events/redis"
	"github.com/aescanero/tripplanner/pkg/adapters/images/unsplash"
	"github.com/aescanero/tripplanner/pkg/adapters/llm"
	"github.com/aescanero/tripplanner/pkg/adapters/metrics/prometheus"
	filestore "github.com/aescanero/tripplanner/pkg/adapters/storage/file"
	memorystore "github.com/aescanero/tripplanner/pkg/adapters/storage/memory"
	redisstore "github.com/aescanero/tripplanner/pkg/adapters/storage/redis"
	sqlitestore "github.com/aescanero/tripplanner/pkg/adapters/storage/sqlite"
	"github.com/aescanero/tripplanner/pkg/ports"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// app holds the wired planner and everything that needs closing
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	redis    *goredis.Client
	cache    ports.CacheStore
	eventBus ports.EventBus
	metrics  *prometheus.Collector
	pool     *workers.Pool
	manager  *orchestrator.Manager
}

// newRedisClient connects to Redis when a backend needs it
func newRedisClient(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:         cfg.Redis.Addr,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		MaxRetries:   cfg.Redis.MaxRetries,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	logger.Info("connected to Redis", zap.String("addr", cfg.Redis.Addr))

	return client, nil
}

// newCacheStore builds the configured cache backend
func newCacheStore(cfg *config.Config, client *goredis.Client, logger *zap.Logger) (ports.CacheStore, error) {
	switch cfg.Cache.Backend {
	case "file":
		return filestore.New(cfg.Cache.File, cfg.TTL(), logger), nil
	case "memory":
		return memorystore.New(cfg.TTL(), memorystore.WithShards(cfg.Cache.Shards)), nil
	case "sqlite":
		store, err := sqlitestore.New(cfg.Cache.SQLitePath, cfg.TTL())
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite cache: %w", err)
		}
		return store, nil
	case "redis":
		if client == nil {
			return nil, fmt.Errorf("redis cache requires a Redis client")
		}
		return redisstore.NewStore(client, cfg.TTL(), cfg.Cache.RedisKey, logger), nil
	default:
		return nil, fmt.Errorf("unsupported cache backend: %s", cfg.Cache.Backend)
	}
}

// newEventBus builds the configured plan event bus
func newEventBus(cfg *config.Config, client *goredis.Client, logger *zap.Logger) ports.EventBus {
	if cfg.Events.Backend == "redis" && client != nil {
		consumer := cfg.Events.ConsumerName
		if consumer == "" && cfg.Events.ConsumerGroup != "" {
			consumer = fmt.Sprintf("tripplanner-%d", os.Getpid())
		}
		return redisevents.NewStreamsEventBus(client, cfg.Events.StreamPrefix, cfg.Events.ConsumerGroup, consumer, logger)
	}
	return memory.NewEventBus(cfg.Events.Buffer, logger)
}

// needsRedis reports whether any configured backend talks to Redis
func needsRedis(cfg *config.Config) bool {
	return cfg.Cache.Backend == "redis" || cfg.Events.Backend == "redis"
}

// requireCredentials fails when an API key is not configured
func requireCredentials(cfg *config.Config) error {
	if missing := cfg.MissingCredentials(); len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return nil
}

// newApp wires the planner from configuration. Without API keys the planner
// is left unset and only the cache, events, metrics and pool are built.
func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	if needsRedis(cfg) {
		client, err := newRedisClient(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		a.redis = client
	}

	cache, err := newCacheStore(cfg, a.redis, logger)
	if err != nil {
		a.close()
		return nil, err
	}
	a.cache = cache
	a.eventBus = newEventBus(cfg, a.redis, logger)

	a.metrics = prometheus.NewCollector(nil)

	a.pool = workers.NewPool(cfg.Workers.PoolSize, a.metrics, logger, cfg.Workers.HealthCheckInterval)
	if err := a.pool.Start(); err != nil {
		a.close()
		return nil, fmt.Errorf("failed to start worker pool: %w", err)
	}

	if missing := cfg.MissingCredentials(); len(missing) > 0 {
		logger.Warn("API keys not configured, planning disabled",
			zap.Strings("missing", missing))
		return a, nil
	}

	generator, err := llm.NewClient(&llm.Config{
		Provider:   cfg.LLM.Provider,
		APIKey:     cfg.LLM.APIKey,
		Model:      cfg.LLM.Model,
		MaxTokens:  cfg.LLM.MaxTokens,
		BaseURL:    cfg.LLM.BaseURL,
		MaxRetries: cfg.LLM.MaxRetries,
		Timeout:    cfg.LLM.RequestTimeout,
		Logger:     logger,
	})
	if err != nil {
		a.shutdown(ctx)
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	images, err := unsplash.NewClient(cfg.Images.AccessKey, cfg.Images.BaseURL, cfg.Images.RequestTimeout, logger)
	if err != nil {
		a.shutdown(ctx)
		return nil, fmt.Errorf("failed to create image client: %w", err)
	}

	crew := agents.NewCrew(generator, images, agents.DefaultLimits(), logger)

	a.manager = orchestrator.NewManager(
		a.cache,
		crew,
		a.pool,
		a.eventBus,
		a.metrics,
		orchestrator.NewValidator(),
		logger,
		orchestrator.Timeouts{
			Trend:  cfg.Timeouts.Trend,
			Task:   cfg.Timeouts.Task,
			FanOut: cfg.Timeouts.FanOut,
		},
	)

	return a, nil
}

// shutdown stops planning and releases every backend
func (a *app) shutdown(ctx context.Context) {
	switch {
	case a.manager != nil:
		if err := a.manager.Shutdown(ctx); err != nil {
			a.logger.Error("orchestrator shutdown error", zap.Error(err))
		}
	case a.pool != nil:
		if err := a.pool.Shutdown(ctx); err != nil {
			a.logger.Error("worker pool shutdown error", zap.Error(err))
		}
	}
	a.close()
}

func (a *app) close() {
	if a.eventBus != nil {
		if err := a.eventBus.Close(); err != nil {
			a.logger.Error("event bus close error", zap.Error(err))
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("cache close error", zap.Error(err))
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error("Redis close error", zap.Error(err))
		}
	}
}
