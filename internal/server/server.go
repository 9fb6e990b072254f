package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"broadcast-service/internal/config"
	"broadcast-service/internal/dispatch"
	httphandler "broadcast-service/internal/handler/http"
	wshandler "broadcast-service/internal/handler/ws"
	"broadcast-service/internal/middleware"
	"broadcast-service/internal/repository"
	"broadcast-service/internal/router"
	"broadcast-service/pkg/broker"
	brokerws "broadcast-service/pkg/broker/ws"
)

// NewServer wires the broadcast service: snapshot repository, dispatcher,
// deferred worker, Redis transport, and the WebSocket fan-out edge.
func NewServer(ctx context.Context, cfg config.AppConfig) *http.Server {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}

	// --- DB connection ---
	dbpool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	// --- Redis ---
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       0,
	})

	// --- Repo ---
	repo := repository.NewRepository(dbpool)

	// --- Transport + queue + dispatcher ---
	transport := broker.NewRedisTransport(rdb, logger)
	queue := dispatch.NewRedisQueue(rdb, cfg.QueueKey, cfg.QueueRetryKey)
	dispatcher := dispatch.WithLogging(
		dispatch.NewDispatcher(transport, queue, logger),
		logger,
	)

	// --- Deferred worker ---
	worker := dispatch.NewWorker(rdb, queue, transport, logger, cfg.WorkerCount)
	go worker.Run(ctx)

	// --- WS manager bridged to Redis ---
	bridge := brokerws.NewRedisBridge(ctx, rdb, logger)
	wsManager := brokerws.NewManager(bridge, logger)
	go bridge.Listen(ctx, wsManager)
	go wsManager.Heartbeat(ctx, 30*time.Second)

	// --- Auth ---
	auth := middleware.NewAuth(cfg.JWTSecret)

	// --- Handlers ---
	restHandler := httphandler.NewBroadcastHandler(repo, dispatcher, logger)
	wsHandler := wshandler.NewWSHandler(wsManager, repo, logger)

	healthCheck := func() error {
		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			return err
		}
		return dbpool.Ping(pingCtx)
	}

	// --- HTTP routes ---
	r := chi.NewRouter()
	r = router.SetupRoutes(r, restHandler, wsHandler, auth, rdb, healthCheck).(*chi.Mux)

	return &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}
}
