package client

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeOK      = "ok"
	outcomeAPI     = "api_error"
	outcomeNetwork = "network_error"
	outcomeDecode  = "decode_error"
)

// Metrics records per-operation request counts and latencies.
type Metrics struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// NewMetrics creates the client collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reorder_api_requests_total",
				Help: "Requests sent to the reorder API by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "reorder_api_request_duration_seconds",
				Help:    "Latency of reorder API requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.requests, m.latency)
	}
	return m
}

func (m *Metrics) observe(op string, started time.Time, err error) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(op, outcome(err)).Inc()
	m.latency.WithLabelValues(op).Observe(time.Since(started).Seconds())
}

func outcome(err error) string {
	var (
		apiErr    *APIError
		netErr    *NetworkError
		decodeErr *DecodeError
	)
	switch {
	case err == nil:
		return outcomeOK
	case errors.As(err, &apiErr):
		return outcomeAPI
	case errors.As(err, &netErr):
		return outcomeNetwork
	case errors.As(err, &decodeErr):
		return outcomeDecode
	default:
		return outcomeNetwork
	}
}
