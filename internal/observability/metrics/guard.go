package metrics

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/target/tenderwatch/internal/domain/guard"
	"github.com/target/tenderwatch/internal/observability/statsd"
)

// Tag values for the client dimension of guard metrics.
const (
	ClientBrowser = "browser"
	ClientAPI     = "api"
)

// GuardRecorderOptions groups the sinks a GuardRecorder fans out to. Both are optional.
type GuardRecorderOptions struct {
	Sink       statsd.Sink
	Registerer prometheus.Registerer
}

// GuardRecorder counts access guard decisions by kind and client type.
type GuardRecorder struct {
	sink      statsd.Sink
	decisions *prometheus.CounterVec
}

// NewGuardRecorder builds a recorder and registers its Prometheus collector when a Registerer is given.
func NewGuardRecorder(opts GuardRecorderOptions) (*GuardRecorder, error) {
	r := &GuardRecorder{sink: opts.Sink}
	if opts.Registerer == nil {
		return r, nil
	}

	decisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tenderwatch",
		Subsystem: "guard",
		Name:      "decisions_total",
		Help:      "Access guard decisions by outcome and client type.",
	}, []string{"decision", "client"})

	if err := opts.Registerer.Register(decisions); err != nil {
		var already prometheus.AlreadyRegisteredError
		if !errors.As(err, &already) {
			return nil, fmt.Errorf("register guard metrics: %w", err)
		}
		existing, ok := already.ExistingCollector.(*prometheus.CounterVec)
		if !ok {
			return nil, fmt.Errorf("register guard metrics: %w", err)
		}
		decisions = existing
	}
	r.decisions = decisions
	return r, nil
}

// RecordDecision counts one guard evaluation.
func (r *GuardRecorder) RecordDecision(kind guard.Kind, api bool) {
	if r == nil {
		return
	}
	client := ClientBrowser
	if api {
		client = ClientAPI
	}

	if r.sink != nil {
		r.sink.Count("guard.decision", 1, map[string]string{"decision": kind.String(), "client": client})
	}
	if r.decisions != nil {
		r.decisions.WithLabelValues(kind.String(), client).Inc()
	}
}
