package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"statforest/internal/api"
	"statforest/internal/config"
	"statforest/internal/store"
	"statforest/pkg/utils"
)

func main() {
	logger := utils.Logger()
	defer logger.Sync()

	cfg, err := config.FromEnv()
	if err != nil {
		logger.Fatal("Invalid environment", zap.Error(err))
	}
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, closeStore, err := store.Open(ctx, cfg.Store)
	if err != nil {
		logger.Fatal("Failed to open model store", zap.Error(err))
	}
	defer closeStore(context.Background())

	srv := api.NewServer(st, cfg.ModelName, cfg.APIKey, logger)
	if err := srv.Reload(ctx); err != nil {
		logger.Warn("No model loaded at start; POST /reload once one is trained", zap.String("name", cfg.ModelName), zap.Error(err))
	}

	httpSrv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Port),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("Listening", zap.String("addr", httpSrv.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown failed", zap.Error(err))
	}
}
