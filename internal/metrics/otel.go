package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/NoahAizen44/SmarterTips/schema"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

// DefaultServiceName is reported as the OpenTelemetry service name.
const DefaultServiceName = "smartertips"

var (
	promReaderFactory = prometheusComponents
	otlpReaderFactory = buildOTLPReader
)

// TelemetryConfig controls how metrics are exported.
type TelemetryConfig struct {
	Enabled      bool
	ServiceName  string
	OtlpEndpoint string
	OtlpInsecure bool
}

// Setup configures OpenTelemetry metrics with a Prometheus exporter and optional OTLP exporter.
// It returns a Recorder, the Prometheus HTTP handler, and a shutdown function.
func Setup(ctx context.Context, cfg TelemetryConfig) (*Recorder, http.Handler, func(context.Context) error, error) {
	if !cfg.Enabled {
		return NewRecorder(), nil, func(context.Context) error { return nil }, nil
	}

	if cfg.ServiceName == "" {
		cfg.ServiceName = DefaultServiceName
	}

	promReader, promHandler, err := promReaderFactory()
	if err != nil {
		return nil, nil, nil, err
	}

	opts := []sdkmetric.Option{sdkmetric.WithReader(promReader)}

	if cfg.OtlpEndpoint != "" {
		otlpReader, err := otlpReaderFactory(ctx, cfg.OtlpEndpoint, cfg.OtlpInsecure)
		if err != nil {
			return nil, nil, nil, err
		}
		opts = append(opts, sdkmetric.WithReader(otlpReader))
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceName(cfg.ServiceName)),
	)
	if err != nil {
		return nil, nil, nil, err
	}
	opts = append(opts, sdkmetric.WithResource(res))

	provider := sdkmetric.NewMeterProvider(opts...)

	otelInst, err := newOtelInstruments(provider)
	if err != nil {
		return nil, nil, nil, err
	}

	shutdown := func(c context.Context) error {
		return provider.Shutdown(c)
	}
	return newRecorder(otelInst), promHandler, shutdown, nil
}

func buildOTLPReader(ctx context.Context, endpoint string, insecure bool) (sdkmetric.Reader, error) {
	otlpOpts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(endpoint)}
	if insecure {
		otlpOpts = append(otlpOpts, otlpmetrichttp.WithInsecure())
	}
	otlpExp, err := otlpmetrichttp.New(ctx, otlpOpts...)
	if err != nil {
		return nil, err
	}
	return sdkmetric.NewPeriodicReader(otlpExp, sdkmetric.WithInterval(15*time.Second)), nil
}

func prometheusComponents() (sdkmetric.Reader, http.Handler, error) {
	reg := prometheus.NewRegistry()
	promExp, err := promexporter.New(promexporter.WithRegisterer(reg))
	if err != nil {
		return nil, nil, err
	}
	return promExp, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), nil
}

type otelInstruments struct {
	ctx             context.Context
	outcomes        metric.Int64Counter
	coefficients    metric.Int64Counter
	fitLatencyMs    metric.Float64Histogram
	batches         metric.Int64Counter
	batchDurationMs metric.Float64Histogram
}

func newOtelInstruments(provider metric.MeterProvider) (*otelInstruments, error) {
	meter := provider.Meter(DefaultServiceName)

	outcomes, err := meter.Int64Counter("retrain_targets_total")
	if err != nil {
		return nil, err
	}
	coefficients, err := meter.Int64Counter("retrain_coefficients_written_total")
	if err != nil {
		return nil, err
	}
	fitLatency, err := meter.Float64Histogram("retrain_fit_duration_ms")
	if err != nil {
		return nil, err
	}
	batches, err := meter.Int64Counter("retrain_batches_total")
	if err != nil {
		return nil, err
	}
	batchDuration, err := meter.Float64Histogram("retrain_batch_duration_ms")
	if err != nil {
		return nil, err
	}

	return &otelInstruments{
		ctx:             context.Background(),
		outcomes:        outcomes,
		coefficients:    coefficients,
		fitLatencyMs:    fitLatency,
		batches:         batches,
		batchDurationMs: batchDuration,
	}, nil
}

func (o *otelInstruments) recordOutcome(outcome schema.TrainOutcome, duration time.Duration) {
	if o == nil {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String(AttrTeam, outcome.Team),
		attribute.String(AttrOutcome, string(outcome.Status)),
	}
	o.outcomes.Add(o.ctx, 1, metric.WithAttributes(attrs...))
	o.fitLatencyMs.Record(o.ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
	if outcome.Coefficients > 0 {
		o.coefficients.Add(o.ctx, int64(outcome.Coefficients), metric.WithAttributes(attribute.String(AttrTeam, outcome.Team)))
	}
}

func (o *otelInstruments) recordBatch(summary schema.RetrainSummary) {
	if o == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String(AttrVersion, summary.ModelVersion))
	o.batches.Add(o.ctx, 1, attrs)
	o.batchDurationMs.Record(o.ctx, float64(summary.Elapsed.Milliseconds()), attrs)
}
