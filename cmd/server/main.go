package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/planhub/backend/api/handler"
	"github.com/planhub/backend/internal/config"
	"github.com/planhub/backend/internal/infrastructure/monitor"
	pgInfra "github.com/planhub/backend/internal/infrastructure/postgres"
	redisInfra "github.com/planhub/backend/internal/infrastructure/redis"
	"github.com/planhub/backend/internal/middleware"
	"github.com/planhub/backend/internal/oauth"
	"github.com/planhub/backend/internal/router"
	"github.com/planhub/backend/internal/services/lifecycle"
	"github.com/planhub/backend/pkg/httpcontext"
	"github.com/planhub/backend/pkg/logger"
	"github.com/planhub/backend/pkg/token"
	"github.com/planhub/backend/repository/postgres"
	redisRepo "github.com/planhub/backend/repository/redis"
	authUC "github.com/planhub/backend/usecase/auth"
	identityUC "github.com/planhub/backend/usecase/identity"
	profileUC "github.com/planhub/backend/usecase/profile"
	projectUC "github.com/planhub/backend/usecase/project"
	taskUC "github.com/planhub/backend/usecase/task"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	if cfg.JWT.Secret == "" {
		zapLogger.Fatal("JWT_SECRET is required")
	}

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
		zapLogger.Fatal("migrations failed", zap.Error(err))
	}

	pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("postgres connection failed", zap.Error(err))
	}
	manager.Register("postgres", func(ctx context.Context) error {
		pool.Close()
		return nil
	})

	redisClient, err := redisInfra.NewClient(cfg.Redis)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	manager.Register("redis", func(ctx context.Context) error {
		return redisClient.Close()
	})

	mon := monitor.New(pool, redisClient, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	userRepo := postgres.NewUserRepository(pool)
	projectRepo := postgres.NewProjectRepository(pool)
	taskRepo := postgres.NewTaskRepository(pool)
	revocationStore := redisRepo.NewRevocationStore(redisClient)

	tokenService := token.NewService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TTL)

	identityUseCase := identityUC.New(userRepo, zapLogger)
	authUseCase := authUC.New(userRepo, identityUseCase, tokenService, revocationStore, zapLogger)
	profileUseCase := profileUC.New(userRepo, zapLogger)
	projectUseCase := projectUC.New(projectRepo, taskRepo, userRepo, zapLogger)
	taskUseCase := taskUC.New(taskRepo, projectRepo, zapLogger)

	oauthClient := oauth.NewClient(cfg.OAuth, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:    apiHandler.NewAuthHandler(authUseCase, oauthClient, ctxAdapter, zapLogger, cfg.OAuth.SuccessRedirect, cfg.OAuth.ErrorRedirect),
		Profile: apiHandler.NewProfileHandler(profileUseCase, ctxAdapter, zapLogger),
		Project: apiHandler.NewProjectHandler(projectUseCase, ctxAdapter, zapLogger),
		Task:    apiHandler.NewTaskHandler(taskUseCase, ctxAdapter, zapLogger),
		Health:  apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.BearerAuth(authUseCase, ctxAdapter, zapLogger)
	r := router.New(handlers, authMiddleware)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.Shutdown()
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
