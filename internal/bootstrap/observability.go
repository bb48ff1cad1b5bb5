package bootstrap

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/target/tenderwatch/config"
	"github.com/target/tenderwatch/internal/observability/metrics"
	"github.com/target/tenderwatch/internal/observability/statsd"
)

// ObservabilityContainer groups shared observability dependencies.
type ObservabilityContainer struct {
	Statsd   *statsd.Client
	Recorder *metrics.GuardRecorder
	Proxy    *metrics.ProxyRecorder
	// Handler serves /metrics; nil when Prometheus exposition is disabled.
	Handler http.Handler
}

// Close releases the StatsD connection.
func (o ObservabilityContainer) Close() error {
	return o.Statsd.Close()
}

// BuildObservability configures metrics sinks. Failures degrade to no-op sinks.
func BuildObservability(logger *slog.Logger, cfg config.ObservabilityConfig) ObservabilityContainer {
	if logger == nil {
		logger = slog.Default()
	}

	var out ObservabilityContainer
	opts := metrics.GuardRecorderOptions{}

	if cfg.Metrics.IsEnabled() {
		client, err := statsd.NewClient(statsd.Config{
			Enabled: true,
			Address: cfg.Metrics.StatsdAddress,
			Prefix:  cfg.Metrics.StatsdPrefix,
			Logger:  logger,
		})
		if err != nil {
			logger.Error("failed to initialise statsd client", "error", err)
		} else {
			out.Statsd = client
			opts.Sink = client
		}
	}

	if cfg.Metrics.PrometheusEnabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		opts.Registerer = reg
		out.Handler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	}

	recorder, err := metrics.NewGuardRecorder(opts)
	if err != nil {
		logger.Error("failed to initialise guard metrics", "error", err)
		recorder, _ = metrics.NewGuardRecorder(metrics.GuardRecorderOptions{Sink: opts.Sink})
	}
	out.Recorder = recorder

	proxyRecorder, err := metrics.NewProxyRecorder(metrics.ProxyRecorderOptions{Sink: opts.Sink, Registerer: opts.Registerer})
	if err != nil {
		logger.Error("failed to initialise proxy metrics", "error", err)
		proxyRecorder, _ = metrics.NewProxyRecorder(metrics.ProxyRecorderOptions{Sink: opts.Sink})
	}
	out.Proxy = proxyRecorder
	return out
}
