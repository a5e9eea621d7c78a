// Package metrics instruments the HTTP traffic of a desec.Client with
// Prometheus collectors.
package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collectors are the metrics recorded for every API round trip.
type Collectors struct {
	// Requests counts completed round trips by status code and method.
	Requests *prometheus.CounterVec
	// Duration observes round trip latency by status code and method.
	Duration *prometheus.HistogramVec
	// InFlight tracks requests currently waiting for a response.
	InFlight prometheus.Gauge
}

// NewCollectors creates the collectors and registers them with reg.
func NewCollectors(reg prometheus.Registerer) (*Collectors, error) {
	c := &Collectors{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "desec_client_requests_total",
			Help: "Total number of deSEC API requests by status code and method",
		}, []string{"code", "method"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "desec_client_request_duration_seconds",
			Help:    "Histogram of deSEC API request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"code", "method"}),
		InFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "desec_client_requests_in_flight",
			Help: "Number of deSEC API requests awaiting a response",
		}),
	}
	for _, col := range []prometheus.Collector{c.Requests, c.Duration, c.InFlight} {
		if err := reg.Register(col); err != nil {
			return nil, fmt.Errorf("register deSEC client metrics: %w", err)
		}
	}
	return c, nil
}

// RoundTripper wraps next so that every request is counted and timed.
// A nil next uses http.DefaultTransport.
func (c *Collectors) RoundTripper(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return promhttp.InstrumentRoundTripperInFlight(c.InFlight,
		promhttp.InstrumentRoundTripperCounter(c.Requests,
			promhttp.InstrumentRoundTripperDuration(c.Duration, next),
		),
	)
}

// NewTransport registers the collectors with reg and returns next wrapped
// with them.
func NewTransport(reg prometheus.Registerer, next http.RoundTripper) (http.RoundTripper, error) {
	c, err := NewCollectors(reg)
	if err != nil {
		return nil, err
	}
	return c.RoundTripper(next), nil
}
