package observability

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/i474232898/brightsky-weather/internal/weather"
)

// Metrics records coordinator refresh outcomes in Prometheus.
type Metrics struct {
	refreshes   *prometheus.CounterVec
	duration    prometheus.Histogram
	lastSuccess prometheus.Gauge
	hourly      prometheus.Gauge
}

// NewMetrics creates the refresh metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		refreshes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "brightsky_refresh_total",
				Help: "Refresh attempts by result.",
			},
			[]string{"result"},
		),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "brightsky_refresh_duration_seconds",
			Help:    "Duration of refresh attempts.",
			Buckets: prometheus.DefBuckets,
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "brightsky_last_success_timestamp_seconds",
			Help: "Unix time of the last successful refresh.",
		}),
		hourly: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "brightsky_hourly_entries",
			Help: "Hourly forecast entries in the current snapshot.",
		}),
	}
	reg.MustRegister(m.refreshes, m.duration, m.lastSuccess, m.hourly)
	return m
}

// ObserveRefresh implements weather.RefreshObserver.
func (m *Metrics) ObserveRefresh(result string, d time.Duration, hourlyEntries int, at time.Time) {
	m.refreshes.WithLabelValues(result).Inc()
	if result == weather.ResultSkipped {
		return
	}
	m.duration.Observe(d.Seconds())
	if result == weather.ResultSuccess {
		m.lastSuccess.Set(float64(at.Unix()))
		m.hourly.Set(float64(hourlyEntries))
	}
}

// SetupTracing installs a global tracer provider. Spans are exported over
// OTLP/HTTP when endpoint is set and dropped otherwise.
func SetupTracing(ctx context.Context, serviceName, endpoint string) (shutdown func(context.Context) error, err error) {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	res, err := resource.New(ctx, resource.WithAttributes(attribute.String("service.name", serviceName)))
	if err != nil {
		return nil, err
	}

	var tp *sdktrace.TracerProvider
	if endpoint != "" {
		exp, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(endpoint))
		if err != nil {
			return nil, err
		}
		tp = sdktrace.NewTracerProvider(sdktrace.WithBatcher(exp), sdktrace.WithResource(res))
		slog.Info("trace export enabled", "endpoint", endpoint)
	} else {
		tp = sdktrace.NewTracerProvider(sdktrace.WithResource(res))
	}
	otel.SetTracerProvider(tp)

	return tp.Shutdown, nil
}
