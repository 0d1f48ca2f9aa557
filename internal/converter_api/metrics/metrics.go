package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	ConversionsTotal      *prometheus.CounterVec
	ConversionErrorsTotal *prometheus.CounterVec
	ConversionDuration    *prometheus.HistogramVec
	ProviderUp            prometheus.Gauge
	SupportedCurrencies   prometheus.Gauge
	ProbeDuration         prometheus.Histogram
}

// New registers the converter metrics on reg. Pass prometheus.DefaultRegisterer
// to expose them through promhttp.Handler().
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ConversionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "conversions_total",
				Help: "Completed currency conversions",
			},
			[]string{"base", "quote"},
		),

		ConversionErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "conversion_errors_total",
				Help: "Failed converter operations by error kind",
			},
			[]string{"operation", "kind"},
		),

		ConversionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "converter_operation_duration_seconds",
				Help:    "Duration of converter operations including provider round trips",
				Buckets: prometheus.ExponentialBuckets(0.01, 2, 10),
			},
			[]string{"operation"},
		),

		ProviderUp: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "provider_up",
				Help: "1 when the last provider probe succeeded",
			},
		),

		SupportedCurrencies: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "supported_currencies",
				Help: "Number of currency codes reported by the last successful probe",
			},
		),

		ProbeDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "provider_probe_duration_seconds",
				Help:    "Duration of provider probes",
				Buckets: prometheus.ExponentialBuckets(0.01, 2, 10),
			},
		),
	}
}
