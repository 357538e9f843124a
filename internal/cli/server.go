package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"study-aid-service/internal/ai"
	"study-aid-service/internal/app"
	"study-aid-service/internal/config"
	"study-aid-service/internal/infra/memory"
	pgslot "study-aid-service/internal/infra/postgres"
	redisinfra "study-aid-service/internal/infra/redis"
	"study-aid-service/internal/ingest"
	"study-aid-service/internal/logger"
	"study-aid-service/internal/store"
	transport "study-aid-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the study aid server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	return logger.New(logger.Options{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}
	sessionTTL := config.TTLDuration(cfg.Redis.SessionTTL, 30*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	var slot store.Slot
	switch {
	case pool != nil:
		cacheTTL := config.TTLDuration(cfg.Postgres.CacheTTL, time.Minute)
		slot = memory.NewCachedSlot(pgslot.NewSlot(pool), cacheTTL)
		log.Info("study sets stored in postgres", zap.Duration("cacheTTL", cacheTTL))
	case redisClient != nil:
		slot = redisinfra.NewSlot(redisClient, cfg.Redis.Prefix, 0)
		log.Info("study sets stored in redis", zap.String("addr", cfg.Redis.Addr))
	default:
		slot = memory.NewSlot()
		log.Warn("no durable store configured; study sets live in memory")
	}

	var sessions app.SessionRepository
	if redisClient != nil {
		sessions = redisinfra.NewSessionStore(redisClient, sessionTTL)
	} else {
		sessions = memory.NewSessionStore()
	}

	generator, err := ai.NewGemini(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, log)
	if err != nil {
		return err
	}

	service := app.NewStudyService(
		sessions,
		ingest.NewExtractor(cfg.Upload.MaxBytes),
		generator,
		store.NewStudySets(slot, log),
		store.NewPreferences(slot),
		log,
	)

	janitorCtx, stopJanitor := context.WithCancel(ctx)
	defer stopJanitor()
	go service.RunJanitor(janitorCtx, time.Minute, sessionTTL)

	mux := http.NewServeMux()
	transport.NewAPIHandler(service, cfg.Upload.MaxBytes, log).Register(mux)
	mux.HandleFunc("/ws", transport.NewWSHandler(service, log).ServeWS)

	// generation calls can take well over a minute
	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 3 * time.Minute,
	}

	go func() {
		log.Info("starting study aid service", zap.String("port", finalPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("failed to start server", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
