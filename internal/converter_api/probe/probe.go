package probe

import (
	"context"
	"github.com/langowen/converter/internal/converter_api/metrics"
	"github.com/pkg/errors"
	"log/slog"
	"time"
)

type Lister interface {
	SupportedCurrencyCodes(ctx context.Context) ([]string, error)
}

// Probe periodically lists the provider's currencies and reports provider
// health through metrics. Rates are never stored.
type Probe struct {
	lister   Lister
	metrics  *metrics.Metrics
	interval time.Duration
	timeout  time.Duration
}

func NewProbe(lister Lister, m *metrics.Metrics, interval, timeout time.Duration) *Probe {
	return &Probe{
		lister:   lister,
		metrics:  m,
		interval: interval,
		timeout:  timeout,
	}
}

// Start runs the probe loop until ctx is done. A non-positive interval
// disables probing and Start returns nil immediately.
func (p *Probe) Start(ctx context.Context) error {
	const op = "probe.Start"

	if p.interval <= 0 {
		slog.Info("Provider probe disabled")
		return nil
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.Check(ctx)

	for {
		select {
		case <-ticker.C:
			p.Check(ctx)

		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), op)
		}
	}
}

// Check performs a single probe and reports whether the provider answered.
func (p *Probe) Check(ctx context.Context) bool {
	const op = "probe.Check"

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	start := time.Now()
	codes, err := p.lister.SupportedCurrencyCodes(ctx)
	p.metrics.ProbeDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		p.metrics.ProviderUp.Set(0)
		slog.Error("Provider probe failed", "op", op, "error", err)
		return false
	}

	p.metrics.ProviderUp.Set(1)
	p.metrics.SupportedCurrencies.Set(float64(len(codes)))
	slog.Debug("Provider probe succeeded", "currencies", len(codes))

	return true
}
