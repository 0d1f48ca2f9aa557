package main

import (
	"context"
	"github.com/langowen/converter/deploy/config"
	converterApp "github.com/langowen/converter/internal/converter_api/app"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	cfg := config.NewConfig()

	ctx, cancel := context.WithCancel(context.Background())

	app := converterApp.NewConverterApp(cfg)
	appDone := app.Start(ctx)

	done := make(chan os.Signal, 1)

	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	<-done
	slog.Info("Gracefully shutting down")

	cancel()
	slog.Info("stopping server")

	<-appDone
	slog.Info("server stopped")
}
