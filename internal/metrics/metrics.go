// Package metrics provides Prometheus metrics for acquisition sessions.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// SessionMetrics contains the Prometheus metrics for one or more sessions.
// A nil *SessionMetrics is valid and records nothing.
type SessionMetrics struct {
	FramesLoaded    *prometheus.CounterVec // accepted fetches by channel
	FramesSkipped   *prometheus.CounterVec // rejected fetches by channel and reason
	HeartbeatMisses prometheus.Counter     // failed liveness probes
	SessionReady    prometheus.Gauge       // 1 while a session is open
	DeviceAlive     prometheus.Gauge       // 1 while heartbeats succeed
}

// NewSessionMetrics creates the metrics and registers them with registry.
func NewSessionMetrics(registry *prometheus.Registry) (*SessionMetrics, error) {
	m := &SessionMetrics{
		FramesLoaded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "depthsense_frames_loaded_total",
				Help: "Total number of sample arrays copied into channel buffers, by channel",
			},
			[]string{"channel"},
		),
		FramesSkipped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "depthsense_frames_skipped_total",
				Help: "Total number of fetched sample arrays left uncopied, by channel and reason",
			},
			[]string{"channel", "reason"}, // reason: empty, size_mismatch
		),
		HeartbeatMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "depthsense_heartbeat_misses_total",
			Help: "Total number of failed device liveness probes",
		}),
		SessionReady: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "depthsense_session_ready",
			Help: "Whether the device session is open (1) or not (0)",
		}),
		DeviceAlive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "depthsense_device_alive",
			Help: "Whether the device answered its last liveness probes (1) or not (0)",
		}),
	}

	for _, c := range []prometheus.Collector{m.FramesLoaded, m.FramesSkipped, m.HeartbeatMisses, m.SessionReady, m.DeviceAlive} {
		if err := registry.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register session metrics: %w", err)
		}
	}
	return m, nil
}

// RecordLoad counts an accepted fetch.
func (m *SessionMetrics) RecordLoad(channel string) {
	if m == nil {
		return
	}
	m.FramesLoaded.WithLabelValues(channel).Inc()
}

// RecordSkip counts a rejected fetch.
func (m *SessionMetrics) RecordSkip(channel, reason string) {
	if m == nil {
		return
	}
	m.FramesSkipped.WithLabelValues(channel, reason).Inc()
}

// RecordHeartbeat records the outcome of a liveness probe and the
// resulting alive state.
func (m *SessionMetrics) RecordHeartbeat(ok, alive bool) {
	if m == nil {
		return
	}
	if !ok {
		m.HeartbeatMisses.Inc()
	}
	m.DeviceAlive.Set(boolFloat(alive))
}

// SetAlive updates the device-alive gauge without counting a probe.
func (m *SessionMetrics) SetAlive(alive bool) {
	if m == nil {
		return
	}
	m.DeviceAlive.Set(boolFloat(alive))
}

// SetReady updates the session-open gauge.
func (m *SessionMetrics) SetReady(ready bool) {
	if m == nil {
		return
	}
	m.SessionReady.Set(boolFloat(ready))
}

func boolFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
