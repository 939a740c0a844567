package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	kafka_impl "commission-tracker/internal/broker/kafka"
	"commission-tracker/internal/config"
	auth_h "commission-tracker/internal/http-server/handler/auth"
	commission_h "commission-tracker/internal/http-server/handler/commission"
	file_h "commission-tracker/internal/http-server/handler/file"
	"commission-tracker/internal/http-server/middleware"
	"commission-tracker/internal/http-server/router"
	minio_repo "commission-tracker/internal/repository/commission/cloud/minio"
	postgres_repo "commission-tracker/internal/repository/commission/db/postgres"
	redis_repo "commission-tracker/internal/repository/session/redis"
	user_repo "commission-tracker/internal/repository/user/db/postgres"
	auth_uc "commission-tracker/internal/usecase/auth"
	commission_uc "commission-tracker/internal/usecase/commission"
	file_uc "commission-tracker/internal/usecase/file"
	"commission-tracker/internal/usecase/processor"
	"commission-tracker/internal/usecase/processor/operations"

	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/zlog"
)

type App struct {
	cfg      *config.Config
	server   *http.Server
	logger   *zlog.Zerolog
	db       *dbpg.DB
	producer *kafka_impl.ProducerClient
	sessions *redis_repo.SessionStore
}

func NewApp(ctx context.Context, cfg *config.Config, logger *zlog.Zerolog) (*App, error) {
	retries := cfg.DefaultRetryStrategy()

	db, err := OpenDB(cfg)
	if err != nil {
		return nil, err
	}

	if err := postgres_repo.Migrate(ctx, db, logger); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	fileRepo, err := minio_repo.NewMinIORepository(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create file repository: %w", err)
	}
	if err := fileRepo.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("failed to prepare bucket: %w", err)
	}

	sessions := redis_repo.NewSessionStore(cfg)
	if err := sessions.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	producer := kafka_impl.NewProducerClient(cfg)

	commissionRepo := postgres_repo.NewCommissionsRepository(db, retries)
	userRepo := user_repo.NewUsersRepository(db, retries)

	uploader := processor.NewUploader(fileRepo, logger)
	imageProcessor := processor.NewImageProcessor(uploader, logger)

	commissionUsecase := commission_uc.NewCommissionUsecase(commissionRepo, fileRepo, uploader, imageProcessor, producer, logger, retries)
	fileUsecase := file_uc.NewFileUsecase(fileRepo, operations.NewResizer(), logger)
	authUsecase := auth_uc.NewAuthUsecase(userRepo, sessions, cfg.Session.KeyPrefix, cfg.Session.TTL, logger)

	h := &router.Handler{
		CommissionHandler: commission_h.NewCommissionHandler(commissionUsecase, cfg.Server.MaxUploadSize, logger),
		FileHandler:       file_h.NewFileHandler(fileUsecase, logger),
		AuthHandler: auth_h.NewAuthHandler(authUsecase, auth_h.CookieOptions{
			Name:   cfg.Session.CookieName,
			TTL:    cfg.Session.TTL,
			Secure: cfg.Session.Secure,
		}, logger),
		RequireSession: middleware.RequireSession(authUsecase, cfg.Session.CookieName),
	}

	server := &http.Server{
		Addr:         ":" + cfg.Server.Addr,
		Handler:      router.SetupRouter(h),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &App{
		cfg:      cfg,
		server:   server,
		logger:   logger,
		db:       db,
		producer: producer,
		sessions: sessions,
	}, nil
}

// OpenDB connects to Postgres with the configured pool settings.
func OpenDB(cfg *config.Config) (*dbpg.DB, error) {
	dbOpts := &dbpg.Options{
		MaxOpenConns:    cfg.DB.MaxOpenConns,
		MaxIdleConns:    cfg.DB.MaxIdleConns,
		ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
	}

	db, err := dbpg.New(cfg.DBDSN(), []string{}, dbOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

func (a *App) Run() error {
	a.logger.Info().Str("addr", a.cfg.Server.Addr).Msg("Starting server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go a.handleSignals(cancel)

	serverErr := make(chan error, 1)
	go func() {
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		a.logger.Error().Err(err).Msg("Server error")
		a.close()
		return err
	case <-ctx.Done():
		a.logger.Info().Msg("Shutting down server")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.logger.Error().Err(err).Msg("Server shutdown failed")
		}

		a.close()
		a.logger.Info().Msg("Server stopped gracefully")
		return nil
	}
}

func (a *App) close() {
	if a.db != nil && a.db.Master != nil {
		if err := a.db.Master.Close(); err != nil {
			a.logger.Error().Err(err).Msg("Failed to close database")
		}
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error().Err(err).Msg("Failed to close producer")
		}
	}

	if a.sessions != nil {
		if err := a.sessions.Close(); err != nil {
			a.logger.Error().Err(err).Msg("Failed to close session store")
		}
	}
}

func (a *App) handleSignals(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	a.logger.Info().Str("signal", sig.String()).Msg("Received signal")
	cancel()
}
