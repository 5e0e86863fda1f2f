// @title                       Job Portal Account API
// @version                     1.0
// @description                 Registration, login, session and profile management for job seekers and recruiters.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/jobportal/account-service/internal/api"
	"github.com/jobportal/account-service/internal/api/handler"
	"github.com/jobportal/account-service/internal/api/metrics"
	"github.com/jobportal/account-service/internal/core/service"
	"github.com/jobportal/account-service/internal/infrastructure/db/mongo"
	"github.com/jobportal/account-service/internal/infrastructure/db/redis"
	"github.com/jobportal/account-service/internal/infrastructure/http/handlers"
	"github.com/jobportal/account-service/internal/infrastructure/queue"
	"github.com/jobportal/account-service/internal/infrastructure/storage/s3"
	"github.com/jobportal/account-service/internal/pkg/config"
	"github.com/jobportal/account-service/pkg/logger"
)

const (
	serviceName     = "account-service"
	shutdownTimeout = 15 * time.Second
)

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: serviceName,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Storage ---
	mongoClient, db, err := mongo.Connect(ctx, mongo.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  serviceName,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()

	accounts := mongo.NewAccountRepository(db)
	if err := accounts.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("ensure account indexes failed")
	}

	rdb, err := redis.Connect(ctx, redis.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() { _ = rdb.Close() }()

	storageCfg := s3.Config{
		Bucket:          cfg.Storage.Bucket,
		Region:          cfg.Storage.Region,
		Endpoint:        cfg.Storage.Endpoint,
		AccessKeyID:     cfg.Storage.AccessKeyID,
		SecretAccessKey: cfg.Storage.SecretAccessKey,
		PublicBaseURL:   cfg.Storage.PublicBaseURL,
		UsePathStyle:    cfg.Storage.UsePathStyle,
		Timeout:         cfg.Upload.Timeout,
	}
	s3Client, err := s3.NewClient(ctx, storageCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("object storage client failed")
	}
	assets := s3.New(s3Client, storageCfg, metrics.ObserveAssetUpload)

	// --- Core ---
	cleanup := queue.NewDispatcher(cfg.Upload.CleanupWorkers, assets, log)
	tokens := service.NewTokenManager(cfg.JWTSecret, cfg.Auth.TokenTTL)
	authService := service.NewAuthService(
		accounts,
		assets,
		cleanup,
		redis.NewRegistrationGuard(rdb, cfg.Redis.GuardTTL),
		tokens,
		service.AuthConfig{BcryptCost: cfg.Auth.BcryptCost, MaxPhotoBytes: cfg.Upload.MaxPhotoBytes},
		log,
	)
	profileService := service.NewProfileService(accounts, assets, cleanup, cfg.Upload.MaxResumeBytes, log)

	// --- HTTP ---
	e := api.NewRouter(api.RouterConfig{
		AuthService:    authService,
		ProfileService: profileService,
		Verifier:       tokens,
		Cookie:         handler.CookieConfig{Secure: cfg.CookieSecure, TTL: cfg.Auth.TokenTTL},
		AllowedOrigins: cfg.AllowedOrigins,
		BodyLimit:      cfg.BodyLimit,
		Dependencies: map[string]handlers.Pinger{
			"mongodb": handlers.MongoPinger(db),
			"redis":   handlers.RedisPinger(rdb),
		},
		Logger: log,
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return cleanup.Run(gctx)
	})

	g.Go(func() error {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("http server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info().Msg("shutting down")
		return e.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("service stopped with error")
		os.Exit(1)
	}
	log.Info().Msg("service stopped")
}
