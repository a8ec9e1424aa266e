package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"branch-api/internal/config"
	"branch-api/internal/db"
	apihttp "branch-api/internal/http"
	"branch-api/internal/repository"
	"branch-api/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	if err := db.Migrate(ctx, cfg.DatabaseURL); err != nil {
		logger.Fatal("db migrate", zap.Error(err))
	}

	cacheTTL := time.Duration(cfg.ProfileCacheTTLSeconds) * time.Second
	var profileCache service.ProfileCache
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			profileCache = service.NewRedisProfileCache(redisClient, cacheTTL)
		}
		cancel()
	}
	if profileCache == nil {
		profileCache = service.NewMemoryProfileCache(cacheTTL)
	}

	tokenSvc := service.NewTokenService(
		cfg.JWTSecret,
		time.Duration(cfg.JWTAccessTTLMinutes)*time.Minute,
	)

	userRepo := repository.NewPgUserRepository(pool)
	userSvc := service.NewUserService(logger, userRepo, profileCache)
	linkSvc := service.NewLinkService(logger, userRepo, profileCache)
	userHandler := apihttp.NewUserHandler(logger, userSvc, tokenSvc)
	linkHandler := apihttp.NewLinkHandler(logger, linkSvc)
	router := apihttp.NewRouter(logger, tokenSvc, userSvc, userHandler, linkHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
