package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type timingSink struct {
	mu      sync.Mutex
	names   []string
	values  []time.Duration
	tagsets []map[string]string
}

func (s *timingSink) Count(string, int64, map[string]string) {}

func (s *timingSink) Timing(name string, value time.Duration, tags map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.names = append(s.names, name)
	s.values = append(s.values, value)
	s.tagsets = append(s.tagsets, tags)
}

func TestProxyRecorder_RecordUpstream(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink := &timingSink{}
	r, err := NewProxyRecorder(ProxyRecorderOptions{Sink: sink, Registerer: reg})
	require.NoError(t, err)

	r.RecordUpstream(200, 120*time.Millisecond)
	r.RecordUpstream(502, 2*time.Second)

	require.Len(t, sink.names, 2)
	assert.Equal(t, "proxy.upstream", sink.names[0])
	assert.Equal(t, 120*time.Millisecond, sink.values[0])
	assert.Equal(t, map[string]string{"status": "5xx"}, sink.tagsets[1])
	assert.Equal(t, 2, testutil.CollectAndCount(r.duration))
}

func TestProxyRecorder_ReusesRegisteredCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewProxyRecorder(ProxyRecorderOptions{Registerer: reg})
	require.NoError(t, err)
	second, err := NewProxyRecorder(ProxyRecorderOptions{Registerer: reg})
	require.NoError(t, err)

	assert.Same(t, first.duration, second.duration)
}

func TestProxyRecorder_NilSafe(t *testing.T) {
	var r *ProxyRecorder
	r.RecordUpstream(200, time.Second)

	bare, err := NewProxyRecorder(ProxyRecorderOptions{})
	require.NoError(t, err)
	bare.RecordUpstream(200, time.Second)
}

func TestStatusClass(t *testing.T) {
	assert.Equal(t, "2xx", statusClass(204))
	assert.Equal(t, "4xx", statusClass(404))
	assert.Equal(t, "unknown", statusClass(0))
}
