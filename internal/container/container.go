package container

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"trendyol/parser/internal/api"
	"trendyol/parser/internal/client"
	"trendyol/parser/internal/config"
	"trendyol/parser/internal/normalizer"
	"trendyol/parser/internal/queue"
	"trendyol/parser/internal/repository"
	"trendyol/parser/internal/service"
	"trendyol/parser/internal/state"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Container holds all initialized components
type Container struct {
	Config       *config.Config
	Client       client.TrendyolClient
	Parser       *service.Parser
	Repository   repository.ResultRepository
	Queue        queue.Queue
	StateManager state.StateManager

	Service *service.Service
	Server  *http.Server

	db    *pgxpool.Pool
	redis *redis.Client
}

// NewParser builds the upstream client and the orchestrator. It needs no
// storage and backs the one-shot CLI as well as the server.
func NewParser(cfg *config.Config) (client.TrendyolClient, *service.Parser) {
	trendyolClient := client.NewTrendyolClient(cfg.Trendyol)
	n := normalizer.New(cfg.Trendyol.ImageBaseURL, cfg.Trendyol.BaseURL)
	return trendyolClient, service.NewParser(trendyolClient, n)
}

// New creates a new container with all dependencies initialized
func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	container := &Container{
		Config: cfg,
	}

	container.Client, container.Parser = NewParser(cfg)

	db, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to create database pool: %w", err)
	}
	container.db = db

	resultRepo := repository.NewResultRepository(db)
	if err := resultRepo.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	container.Repository = resultRepo
	log.Info("✅ Connected to PostgreSQL successfully")

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.Database,
	})
	container.redis = rdb

	// Test connection
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		container.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	log.Info("✅ Connected to Redis successfully")

	redisQueue, err := queue.NewRedisQueue(ctx, rdb, cfg.Redis)
	if err != nil {
		container.Close()
		return nil, err
	}
	container.Queue = redisQueue

	container.StateManager = state.NewRedisStateManager(rdb, time.Duration(cfg.Redis.JobTTL)*time.Second)

	container.Service = service.NewService(
		container.Parser,
		redisQueue,
		container.StateManager,
		resultRepo,
		cfg.Trendyol.BaseURL,
		cfg.Redis.ConsumerGroup,
		cfg.Redis.MinIdleTime,
	)

	container.Server = &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           api.NewRouter(api.NewHandlers(container.Parser, container.Service, cfg.Trendyol.BaseURL)),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return container, nil
}

// Run serves the API and runs the job workers until ctx is cancelled
func (c *Container) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Infof("🌐 API listening on %s", c.Server.Addr)
		if err := c.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(),
			time.Duration(c.Config.Server.ShutdownTimeout)*time.Second)
		defer cancel()
		return c.Server.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		return c.Service.RunWorkers(ctx, c.Config.Workers.Count)
	})

	return g.Wait()
}

// Close performs cleanup when shutting down
func (c *Container) Close() error {
	log.Info("Shutting down container...")

	if c.db != nil {
		c.db.Close()
	}
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			return fmt.Errorf("failed to close Redis client: %w", err)
		}
	}

	log.Info("Container shut down successfully")
	return nil
}
