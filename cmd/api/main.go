package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/markdave123-py/Sectora/internal/app"
	"github.com/markdave123-py/Sectora/internal/config"
	"github.com/markdave123-py/Sectora/internal/logging"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle SIGINT/SIGTERM for graceful shutdown
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
		<-c
		cancel()
	}()

	cfg := config.LoadConfig()
	logging.Init(cfg.LogLevel, cfg.LogFormat)
	defer logging.Sync()

	application, err := app.NewApp(ctx, cfg)
	if err != nil {
		logging.Fatalf("startup failed: %v", err)
	}
	defer application.Close()

	go application.Server.Start()
	logging.Infof("Sectora is running; DB connected and bootstrapped")

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := application.Server.Shutdown(shutdownCtx); err != nil {
		logging.Errorf("shutdown: %v", err)
	}
}
