package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/example/outfit-stylist/internal/config"
	"github.com/example/outfit-stylist/internal/handlers"
	"github.com/example/outfit-stylist/internal/logging"
	"github.com/example/outfit-stylist/internal/predictor"
	"github.com/example/outfit-stylist/internal/repository"
	"github.com/example/outfit-stylist/internal/server"
	"github.com/example/outfit-stylist/internal/session"
	"github.com/example/outfit-stylist/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := logging.NewLogger(cfg.Environment)
	if err != nil {
		panic(err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	repo := initRepository(ctx, cfg, logger)
	previews := initPreviewStore(ctx, cfg, logger)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router, sessions := newRouter(cfg, previews, repo, logger)

	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	defer stopSweeper()
	go sessions.RunSweeper(sweepCtx, cfg.SweepInterval, cfg.SessionIdleTTL)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("stylist listening",
		zap.String("addr", cfg.HTTPAddr),
		zap.String("predict_url", cfg.PredictURL),
		zap.Duration("predict_timeout", cfg.PredictTimeout),
	)
	if err := server.Serve(srv, cfg.ShutdownTimeout, logger); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

// newRouter assembles the session manager, use case and Gin routes.
func newRouter(cfg *config.Config, previews session.PreviewStore, repo usecase.SubmissionRepository, logger *zap.Logger) (*gin.Engine, *session.Manager) {
	sessions := session.NewManager(previews, cfg.PlaceholderImageURL, logger)
	client := predictor.NewHTTPClient(cfg.PredictURL, cfg.PredictTimeout, logger)
	uc := usecase.NewStylingUseCase(sessions, client, repo, cfg.PredictTimeout, logger)

	r := gin.Default()
	r.MaxMultipartMemory = cfg.MaxUploadBytes
	handlers.RegisterRoutes(r, uc, handlers.SessionMiddleware(cfg.IsProduction()), cfg.MaxUploadBytes)
	return r, sessions
}

// initRepository returns nil when no database is configured, which disables
// the submission log and the metrics endpoint.
func initRepository(ctx context.Context, cfg *config.Config, zapLogger *zap.Logger) usecase.SubmissionRepository {
	if cfg.DatabaseDSN == "" {
		zapLogger.Info("DATABASE_DSN not set, submission log disabled")
		return nil
	}

	db := initDatabase(ctx, cfg, zapLogger)
	repo := repository.NewSubmissionRepository(db, zapLogger)
	if err := repo.AutoMigrate(ctx); err != nil {
		zapLogger.Fatal("auto migrate failed", zap.Error(err))
	}
	return repo
}

func initDatabase(ctx context.Context, cfg *config.Config, zapLogger *zap.Logger) *gorm.DB {
	logLevel := gormlogger.Info
	if cfg.IsProduction() {
		logLevel = gormlogger.Warn
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{Logger: gormlogger.Default.LogMode(logLevel)})
	if err != nil {
		zapLogger.Fatal("failed to connect to database", zap.Error(err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		zapLogger.Fatal("failed to access db handle", zap.Error(err))
	}
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.PingContext(ctx); err != nil {
		zapLogger.Fatal("database ping failed", zap.Error(err))
	}

	return db
}

// initPreviewStore keeps previews in Redis when REDIS_ADDR is set and in
// process memory otherwise.
func initPreviewStore(ctx context.Context, cfg *config.Config, zapLogger *zap.Logger) session.PreviewStore {
	if cfg.RedisAddr == "" {
		return session.NewMemoryPreviewStore()
	}

	redisCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	client := initRedis(redisCtx, cfg.RedisAddr, zapLogger)
	return session.NewRedisPreviewStore(session.NewRedisCache(client), cfg.PreviewTTL, zapLogger)
}

func initRedis(ctx context.Context, addr string, zapLogger *zap.Logger) *redis.Client {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	return client
}
