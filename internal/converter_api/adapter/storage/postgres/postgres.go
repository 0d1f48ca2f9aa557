package postgres

import (
	"context"
	"fmt"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/langowen/converter/deploy/config"
	"github.com/langowen/converter/internal/entities"
	"github.com/pkg/errors"
	"log/slog"
	"time"
)

const schema = `
CREATE TABLE IF NOT EXISTS conversions (
	id               UUID PRIMARY KEY,
	base             TEXT NOT NULL,
	quote            TEXT NOT NULL,
	amount           DOUBLE PRECISION NOT NULL,
	rate             DOUBLE PRECISION NOT NULL,
	result           DOUBLE PRECISION NOT NULL,
	rates_updated_at TIMESTAMPTZ,
	created_at       TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS conversions_created_at_idx ON conversions (created_at DESC);
`

type Storage struct {
	db *pgxpool.Pool
}

func NewStorage(pool *pgxpool.Pool) *Storage {
	return &Storage{
		db: pool,
	}
}

func DSN(cfg config.Storage) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s search_path=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.DBName,
		cfg.SSLMode,
		cfg.Schema,
	)
}

func InitStorage(ctx context.Context, dsn string, timeout time.Duration) (*Storage, error) {
	const op = "storage.postgres.InitStorage"

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}
	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = 10 * time.Minute
	poolConfig.MaxConnIdleTime = 5 * time.Minute

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}

	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, op)
	}

	storageBD := NewStorage(pool)

	if err = storageBD.InitSchema(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, op)
	}

	slog.Info("PostgresSQL storage initialized successfully")
	return storageBD, nil
}

func (s *Storage) InitSchema(ctx context.Context) error {
	const op = "storage.postgres.InitSchema"

	if _, err := s.db.Exec(ctx, schema); err != nil {
		return errors.Wrap(err, op)
	}

	return nil
}

func (s *Storage) SaveConversion(ctx context.Context, conversion *entities.Conversion) error {
	const op = "storage.postgres.SaveConversion"

	var ratesUpdatedAt *time.Time
	if !conversion.RatesUpdatedAt.IsZero() {
		ratesUpdatedAt = &conversion.RatesUpdatedAt
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO conversions (id, base, quote, amount, rate, result, rates_updated_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, conversion.ID, conversion.Base, conversion.Quote, conversion.Amount,
		conversion.Rate, conversion.Result, ratesUpdatedAt, conversion.CreatedAt)
	if err != nil {
		return errors.Wrap(err, op)
	}

	return nil
}

func (s *Storage) ListConversions(ctx context.Context, limit int) ([]entities.Conversion, error) {
	const op = "storage.postgres.ListConversions"

	rows, err := s.db.Query(ctx, `
		SELECT id, base, quote, amount, rate, result, rates_updated_at, created_at
		FROM conversions
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}
	defer rows.Close()

	conversions, err := pgx.CollectRows(rows, scanConversion)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}

	return conversions, nil
}

func (s *Storage) Close() {
	s.db.Close()
}

func scanConversion(row pgx.CollectableRow) (entities.Conversion, error) {
	var (
		c              entities.Conversion
		ratesUpdatedAt *time.Time
	)

	err := row.Scan(&c.ID, &c.Base, &c.Quote, &c.Amount, &c.Rate, &c.Result, &ratesUpdatedAt, &c.CreatedAt)
	if err != nil {
		return c, err
	}

	if ratesUpdatedAt != nil {
		c.RatesUpdatedAt = ratesUpdatedAt.UTC()
	}
	c.CreatedAt = c.CreatedAt.UTC()

	return c, nil
}
