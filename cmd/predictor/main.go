// Command predictor serves the reference recommendation endpoint the stylist
// posts uploaded garments to.
package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/outfit-stylist/internal/config"
	"github.com/example/outfit-stylist/internal/logging"
	"github.com/example/outfit-stylist/internal/server"
	"github.com/example/outfit-stylist/internal/stylist"
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

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	svc := stylist.NewService(stylist.NewRandomClassifier(time.Now().UnixNano()), stylist.DefaultCatalog, logger)

	r := gin.Default()
	r.MaxMultipartMemory = stylist.MaxUploadSize
	stylist.RegisterRoutes(r, svc)

	srv := &http.Server{
		Addr:              cfg.PredictorAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("predictor listening", zap.String("addr", cfg.PredictorAddr))
	if err := server.Serve(srv, cfg.ShutdownTimeout, logger); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}
