package config

import (
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"log"
	"log/slog"
	"strings"
	"time"
)

var ErrEmptyAPIKey = errors.New("CONVERTER_API_KEY is empty")

type Config struct {
	Converter  Converter
	Storage    Storage
	Redis      Redis
	HTTPServer HTTPServer
	Probe      Probe
	Log        Log
}

type Converter struct {
	APIKey  string        `env:"CONVERTER_API_KEY" env-required:"true"`
	BaseURL string        `env:"CONVERTER_BASE_URL" env-default:"https://v6.exchangerate-api.com/v6"`
	Timeout time.Duration `env:"CONVERTER_TIMEOUT" env-default:"10s"`
}

type Storage struct {
	Timeout  time.Duration `env:"BD_TIMEOUT" env-default:"10s"`
	Host     string        `env:"BD_HOST" env-default:"localhost"`
	Port     int           `env:"BD_PORT" env-default:"5432"`
	User     string        `env:"BD_USER" env-default:"postgres"`
	Password string        `env:"BD_PASSWORD" env-default:""`
	DBName   string        `env:"BD_DBNAME" env-default:"converter"`
	SSLMode  string        `env:"BD_SSL_MODE" env-default:"disable"`
	Schema   string        `env:"BD_SCHEMA" env-default:"public"`
}

type Redis struct {
	Host     string `env:"REDIS_HOST" env-default:"localhost:6379"`
	Password string `env:"REDIS_PASSWORD" env-default:""`
	DB       int    `env:"REDIS_DB" env-default:"0"`
	Channel  string `env:"REDIS_CHANNEL" env-default:"conversion_completed"`
}

type HTTPServer struct {
	Port            string        `env:"HTTP_PORT" env-default:"8082"`
	Timeout         time.Duration `env:"HTTP_TIMEOUT" env-default:"2m"`
	IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"5s"`
}

type Probe struct {
	Interval time.Duration `env:"PROBE_INTERVAL" env-default:"0s"`
}

type Log struct {
	Level string `env:"LOG_LEVEL" env-default:"info"`
}

// LogValue keeps the api key and database password out of logs.
func (c Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("converter_base_url", c.Converter.BaseURL),
		slog.Duration("converter_timeout", c.Converter.Timeout),
		slog.String("bd_host", c.Storage.Host),
		slog.Int("bd_port", c.Storage.Port),
		slog.String("bd_name", c.Storage.DBName),
		slog.String("redis_host", c.Redis.Host),
		slog.String("http_port", c.HTTPServer.Port),
		slog.Duration("probe_interval", c.Probe.Interval),
		slog.String("log_level", c.Log.Level),
	)
}

func Load() (*Config, error) {
	const op = "config.Load"

	cfg := &Config{}

	_ = godotenv.Load(".env")

	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, errors.Wrap(err, op)
	}

	if strings.TrimSpace(cfg.Converter.APIKey) == "" {
		return nil, errors.Wrap(ErrEmptyAPIKey, op)
	}

	return cfg, nil
}

func NewConfig() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatal("Error reading env: ", err)
	}

	return cfg
}

func (l Log) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
