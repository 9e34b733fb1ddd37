package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"civic-tracker-be/config"
	"civic-tracker-be/notify"
	"civic-tracker-be/repository"
	"civic-tracker-be/routes"
	"civic-tracker-be/services"
	"civic-tracker-be/storage"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg := config.Load()
	config.SetupLogger(cfg.LogLevel, cfg.LogPretty)
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, closeRepo, err := openIssueRepository(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open issue store")
	}
	defer closeRepo()

	photos, err := openPhotoStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize photo storage")
	}

	notifier, closeNotifier, err := openNotifier(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize notifications")
	}

	var limiter *redis.Client
	if cfg.RedisAddr != "" {
		limiter, err = config.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer limiter.Close()
	} else {
		log.Info().Msg("REDIS_ADDRESS not set, report rate limiting disabled")
	}

	issues := services.NewIssueService(repo, notifier)

	r := routes.SetupRouter(routes.Deps{
		Issues:          issues,
		Photos:          photos,
		Limiter:         limiter,
		ReportRateLimit: cfg.ReportRateLimit,
		CORSOrigins:     cfg.CORSOrigins,
		JWTSecret:       cfg.JWTSecret,
		SecureCookies:   cfg.GinMode == gin.ReleaseMode,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("address", srv.Addr).Msg("Backend running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	if err := closeNotifier(); err != nil {
		log.Error().Err(err).Msg("Failed to close notifier")
	}

	log.Info().Msg("Server exited gracefully")
}

func openIssueRepository(ctx context.Context, cfg *config.Config) (services.IssueRepository, func(), error) {
	if cfg.StoreDriver == "memory" {
		log.Warn().Msg("Using in-memory issue store; reports are lost on restart")
		return repository.NewMemoryIssueRepository(), func() {}, nil
	}

	client, db, err := config.ConnectDB(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		return nil, nil, err
	}

	repo := repository.NewMongoIssueRepository(db.Collection(repository.IssueCollection))
	if err := repo.EnsureIndexes(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to create issue indexes")
	}

	closeFn := func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("Failed to disconnect from MongoDB")
		}
	}
	return repo, closeFn, nil
}

func openPhotoStore(cfg *config.Config) (storage.PhotoStore, error) {
	if cfg.PhotoStorage == "minio" {
		return storage.NewMinIOStore(cfg.MinIOEndpoint, cfg.MinIOAccessKey, cfg.MinIOSecretKey, cfg.MinIOBucket, cfg.MinIOUseSSL)
	}
	return storage.NewDiskStore(cfg.UploadDir)
}

// openNotifier selects RabbitMQ when configured, otherwise an in-process queue.
func openNotifier(ctx context.Context, cfg *config.Config) (notify.Notifier, func() error, error) {
	var mailer notify.Mailer = notify.DisabledMailer{}
	if cfg.MailEnabled() {
		mailer = notify.NewSMTPMailer(notify.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.EmailUser,
			Password: cfg.EmailPass,
			From:     cfg.MailFrom,
		})
	} else {
		log.Info().Msg("EMAIL_USER/EMAIL_PASS not set, notification emails disabled")
	}

	if cfg.RabbitMQURL == "" {
		d := notify.NewDispatcher(mailer, cfg.NotifyWorkers, cfg.NotifyQueueSize)
		return d, d.Close, nil
	}

	publisher, err := notify.NewAMQPPublisher(cfg.RabbitMQURL, cfg.RabbitMQExchange)
	if err != nil {
		return nil, nil, err
	}
	consumer, err := notify.NewAMQPConsumer(cfg.RabbitMQURL, cfg.RabbitMQExchange, cfg.RabbitMQQueue, mailer)
	if err != nil {
		publisher.Close()
		return nil, nil, err
	}

	go func() {
		if err := consumer.Consume(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("Notification consumer stopped")
		}
	}()

	closers := []io.Closer{publisher, consumer}
	closeFn := func() error {
		var errs []error
		for _, c := range closers {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}
	return publisher, closeFn, nil
}
