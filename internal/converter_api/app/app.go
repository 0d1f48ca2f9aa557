package converterApp

import (
	"context"
	"github.com/langowen/converter/deploy/config"
	"github.com/langowen/converter/internal/converter_api/adapter/storage/postgres"
	"github.com/langowen/converter/internal/converter_api/adapter/storage/redis"
	"github.com/langowen/converter/internal/converter_api/metrics"
	"github.com/langowen/converter/internal/converter_api/ports/http/public"
	"github.com/langowen/converter/internal/converter_api/probe"
	"github.com/langowen/converter/internal/converter_api/service"
	"github.com/langowen/converter/pkg/converter"
	"github.com/langowen/converter/pkg/gateway"
	"github.com/prometheus/client_golang/prometheus"
	redisPack "github.com/redis/go-redis/v9"
	"log"
	"log/slog"
	"os"
)

type ConverterApp struct {
	cfg *config.Config
}

func NewConverterApp(cfg *config.Config) *ConverterApp {
	return &ConverterApp{cfg: cfg}
}

func (a *ConverterApp) Start(ctx context.Context) <-chan struct{} {
	a.initLogger()
	slog.Info("Logger initialized")

	slog.With("config", a.cfg).Info("starting server")

	pgStorage := a.initDatabase(ctx)
	slog.Info("Storage initialized")

	rdStorage := a.initRedis(ctx)
	slog.Info("Redis client initialized")

	m := metrics.New(prometheus.DefaultRegisterer)

	conv := a.initConverter()
	slog.Info("Converter initialized", "base_url", a.cfg.Converter.BaseURL)

	converterService := a.initService(conv, pgStorage, rdStorage, m)
	slog.Info("Service initialized")

	a.startProbe(ctx, conv, m)

	serverDone := a.StartServer(ctx, converterService)
	slog.Info("server started", "port", a.cfg.HTTPServer.Port)

	appDone := make(chan struct{})

	go func() {
		<-serverDone

		pgStorage.Close()
		if err := rdStorage.Close(); err != nil {
			slog.Error("Failed to close Redis client", "error", err)
		}

		close(appDone)
	}()

	return appDone
}

func (a *ConverterApp) initLogger() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level:     a.cfg.Log.SlogLevel(),
		AddSource: false,
	}))
	slog.SetDefault(logger)
}

func (a *ConverterApp) initDatabase(ctx context.Context) *postgres.Storage {
	pgStorage, err := postgres.InitStorage(ctx, postgres.DSN(a.cfg.Storage), a.cfg.Storage.Timeout)
	if err != nil {
		log.Fatalln("Failed to initialize PostgresSQL storage", "error", err)
	}

	return pgStorage
}

func (a *ConverterApp) initRedis(ctx context.Context) *redis.Storage {
	options := &redisPack.Options{
		Addr:     a.cfg.Redis.Host,
		Password: a.cfg.Redis.Password,
		DB:       a.cfg.Redis.DB,
	}

	rdStorage, err := redis.InitStorage(ctx, options, a.cfg.Redis.Channel)
	if err != nil {
		log.Fatalln("Failed to initialize Redis storage", "error", err)
	}

	return rdStorage
}

func (a *ConverterApp) initConverter() *converter.Converter {
	gw := gateway.New(gateway.WithTimeout(a.cfg.Converter.Timeout))

	conv, err := converter.New(gw, a.cfg.Converter.APIKey, converter.WithBaseURL(a.cfg.Converter.BaseURL))
	if err != nil {
		log.Fatalln("Failed to initialize converter", "error", err)
	}

	return conv
}

func (a *ConverterApp) initService(conv *converter.Converter, storage *postgres.Storage, redis *redis.Storage, m *metrics.Metrics) *service.Service {
	converterService, err := service.NewService(conv, storage, redis, m)
	if err != nil {
		log.Fatalln("Failed to initialize converter service", "error", err)
	}

	return converterService
}

func (a *ConverterApp) startProbe(ctx context.Context, conv *converter.Converter, m *metrics.Metrics) {
	p := probe.NewProbe(conv, m, a.cfg.Probe.Interval, a.cfg.Converter.Timeout)

	go func() {
		if err := p.Start(ctx); err != nil {
			slog.Info("Provider probe stopped", "error", err)
		}
	}()
}

func (a *ConverterApp) StartServer(ctx context.Context, converterService *service.Service) <-chan struct{} {
	serverDone := public.StartServer(ctx, converterService, a.cfg)

	return serverDone
}
