package http

import (
	"context"
	"fmt"
	"log"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"inkwell/internal/cache"
	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/handler"
	"inkwell/internal/queue"
	appredis "inkwell/internal/redis"
	"inkwell/internal/repository"
	"inkwell/internal/service"
	"inkwell/internal/worker"
)

// Run wires the whole application together and blocks until shutdown:
// config -> stores -> services -> fan-out workers -> HTTP server.
func Run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	redisClient, err := appredis.NewClient(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to create redis client: %w", err)
	}
	defer redisClient.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := redisClient.Ping(ctx); err != nil {
		return fmt.Errorf("failed to reach redis: %w", err)
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	followRepo := repository.NewFollowRepository(db)

	// Redis-backed plumbing
	feedCache := cache.NewFeedCache(redisClient.Client)
	publisher := queue.NewPublisher(redisClient.Client)
	consumer := queue.NewConsumer(redisClient.Client)

	// Services
	authService := service.NewAuthService(cfg.JWTSecret, cfg.TokenMaxAge)
	userService := service.NewUserService(userRepo, postRepo, followRepo)
	postService := service.NewPostService(postRepo, publisher)
	followService := service.NewFollowService(followRepo, userRepo, publisher)
	feedService := service.NewFeedService(postRepo, userRepo, followRepo, feedCache)

	// Feed fan-out workers
	workerManager := worker.NewManager(
		consumer,
		worker.NewHandler(feedCache, followRepo, postRepo),
		worker.ManagerConfig{
			WorkerCount: cfg.FeedWorkerCount,
			BatchSize:   cfg.FeedBatchSize,
		},
	)
	if err := workerManager.Start(ctx); err != nil {
		return fmt.Errorf("failed to start feed workers: %w", err)
	}
	defer workerManager.Stop()

	router := NewRouter(RouterConfig{
		AuthHandler:   handler.NewAuthHandler(userService, authService),
		UserHandler:   handler.NewUserHandler(userService),
		PostHandler:   handler.NewPostHandler(postService, feedService),
		FollowHandler: handler.NewFollowHandler(followService, userService),
		FeedHandler:   handler.NewFeedHandler(feedService),
		AuthService:   authService,
	})

	server := &stdhttp.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[Server] listening on :%s", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Println("[Server] shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
