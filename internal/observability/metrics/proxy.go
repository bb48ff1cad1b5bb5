package metrics

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/target/tenderwatch/internal/observability/statsd"
)

// ProxyRecorderOptions groups the sinks a ProxyRecorder fans out to. Both are optional.
type ProxyRecorderOptions struct {
	Sink       statsd.Sink
	Registerer prometheus.Registerer
}

// ProxyRecorder times round trips to the procurement API through the dev proxy.
type ProxyRecorder struct {
	sink     statsd.Sink
	duration *prometheus.HistogramVec
}

// NewProxyRecorder builds a recorder and registers its Prometheus collector when a Registerer is given.
func NewProxyRecorder(opts ProxyRecorderOptions) (*ProxyRecorder, error) {
	r := &ProxyRecorder{sink: opts.Sink}
	if opts.Registerer == nil {
		return r, nil
	}

	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "tenderwatch",
		Subsystem: "proxy",
		Name:      "upstream_duration_seconds",
		Help:      "Procurement API round-trip time through the proxy, by status class.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"status"})

	if err := opts.Registerer.Register(duration); err != nil {
		var already prometheus.AlreadyRegisteredError
		if !errors.As(err, &already) {
			return nil, fmt.Errorf("register proxy metrics: %w", err)
		}
		existing, ok := already.ExistingCollector.(*prometheus.HistogramVec)
		if !ok {
			return nil, fmt.Errorf("register proxy metrics: %w", err)
		}
		duration = existing
	}
	r.duration = duration
	return r, nil
}

// RecordUpstream records one proxied request that reached (or failed to reach) the upstream.
func (r *ProxyRecorder) RecordUpstream(status int, elapsed time.Duration) {
	if r == nil {
		return
	}
	class := statusClass(status)

	if r.sink != nil {
		r.sink.Timing("proxy.upstream", elapsed, map[string]string{"status": class})
	}
	if r.duration != nil {
		r.duration.WithLabelValues(class).Observe(elapsed.Seconds())
	}
}

// statusClass collapses a status code to "2xx", "5xx" and so on to keep label cardinality small.
func statusClass(status int) string {
	if status < 100 || status > 599 {
		return "unknown"
	}
	return strconv.Itoa(status/100) + "xx"
}
