package service

import (
	"context"
	"github.com/langowen/converter/internal/converter_api/metrics"
	"github.com/langowen/converter/internal/entities"
	"github.com/pkg/errors"
	"log/slog"
	"time"
)

const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

type Service struct {
	converter Converter
	storage   Storage
	redis     RedisStorage
	metrics   *metrics.Metrics
}

func NewService(converter Converter, storage Storage, redis RedisStorage, m *metrics.Metrics) (*Service, error) {
	if converter == nil || storage == nil || redis == nil || m == nil {
		return nil, errors.New("service.NewService: nil dependency")
	}

	return &Service{
		converter: converter,
		storage:   storage,
		redis:     redis,
		metrics:   m,
	}, nil
}

func (s *Service) Currencies(ctx context.Context) ([]string, error) {
	const op = "service.Currencies"

	defer s.observe("currencies", time.Now())

	codes, err := s.converter.SupportedCurrencyCodes(ctx)
	if err != nil {
		s.fail("currencies", err)
		return nil, errors.Wrap(err, op)
	}

	return codes, nil
}

func (s *Service) IsValid(ctx context.Context, code string) (bool, error) {
	const op = "service.IsValid"

	defer s.observe("is_valid", time.Now())

	ok, err := s.converter.IsCurrencyValid(ctx, code)
	if err != nil {
		s.fail("is_valid", err)
		return false, errors.Wrap(err, op)
	}

	return ok, nil
}

// Convert runs the conversion, then journals and announces it. Journal and
// publish failures are logged; the conversion result is still returned.
func (s *Service) Convert(ctx context.Context, base, quote string, amount float64) (*entities.Conversion, error) {
	const op = "service.Convert"

	defer s.observe("convert", time.Now())

	res, err := s.converter.Exchange(ctx, base, quote, amount)
	if err != nil {
		s.fail("convert", err)
		return nil, errors.Wrap(err, op)
	}

	conversion := entities.NewConversion(res.Base, res.Quote, res.Amount, res.Rate, res.Value, res.RatesUpdatedAt)

	s.metrics.ConversionsTotal.WithLabelValues(res.Base, res.Quote).Inc()

	if err := s.storage.SaveConversion(ctx, conversion); err != nil {
		slog.Error("Failed to save conversion", "op", op, "id", conversion.ID, "error", err)
	}

	if err := s.redis.PublishConversion(ctx, conversion); err != nil {
		slog.Error("Failed to publish conversion", "op", op, "id", conversion.ID, "error", err)
	}

	slog.Debug("Conversion completed",
		"id", conversion.ID,
		"base", conversion.Base,
		"quote", conversion.Quote,
		"amount", conversion.Amount,
		"result", conversion.Result,
	)

	return conversion, nil
}

// History returns the latest journaled conversions, newest first. limit 0
// means DefaultHistoryLimit.
func (s *Service) History(ctx context.Context, limit int) ([]entities.Conversion, error) {
	const op = "service.History"

	if limit == 0 {
		limit = DefaultHistoryLimit
	}

	if limit < 0 || limit > MaxHistoryLimit {
		return nil, errors.Wrap(entities.ErrInvalidLimit, op)
	}

	conversions, err := s.storage.ListConversions(ctx, limit)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}

	return conversions, nil
}

func (s *Service) observe(operation string, start time.Time) {
	s.metrics.ConversionDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func (s *Service) fail(operation string, err error) {
	kind := ErrorKind(err)
	s.metrics.ConversionErrorsTotal.WithLabelValues(operation, kind).Inc()
	slog.Warn("Converter operation failed", "operation", operation, "kind", kind, "error", err)
}
