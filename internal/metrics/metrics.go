package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector exposes Prometheus metrics for inbound HTTP requests and for the
// aggregation/routing pipeline.
type Collector struct {
	registry        *prometheus.Registry
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec

	adapterFetchDuration *prometheus.HistogramVec
	adapterEventsTotal   *prometheus.CounterVec
	adapterFailures      *prometheus.CounterVec
	providerCallsTotal   *prometheus.CounterVec
	fallbackTotal        prometheus.Counter
	degradedTotal        prometheus.Counter
}

// NewCollector constructs a collector with default histograms/counters.
func NewCollector() (*Collector, error) {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "localpulse",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Latency distribution for inbound HTTP requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "localpulse",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of inbound HTTP requests.",
	}, []string{"method", "path", "status"})

	adapterFetchDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "localpulse",
		Subsystem: "aggregation",
		Name:      "adapter_fetch_duration_seconds",
		Help:      "Latency distribution for source adapter fetches.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"adapter"})

	adapterEventsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "localpulse",
		Subsystem: "aggregation",
		Name:      "adapter_events_total",
		Help:      "Total raw events returned by each source adapter.",
	}, []string{"adapter"})

	adapterFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "localpulse",
		Subsystem: "aggregation",
		Name:      "adapter_failures_total",
		Help:      "Total failed source adapter fetches.",
	}, []string{"adapter"})

	providerCallsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "localpulse",
		Subsystem: "routing",
		Name:      "provider_calls_total",
		Help:      "Total language-model provider calls by outcome.",
	}, []string{"provider", "status"})

	fallbackTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "localpulse",
		Subsystem: "routing",
		Name:      "fallback_total",
		Help:      "Total chat turns answered by the fallback provider.",
	})

	degradedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "localpulse",
		Subsystem: "aggregation",
		Name:      "degraded_responses_total",
		Help:      "Total aggregation calls that returned the degraded notice.",
	})

	collectors := []prometheus.Collector{
		requestDuration, requestTotal,
		adapterFetchDuration, adapterEventsTotal, adapterFailures,
		providerCallsTotal, fallbackTotal, degradedTotal,
	}
	for _, c := range collectors {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}

	return &Collector{
		registry:             registry,
		requestDuration:      requestDuration,
		requestTotal:         requestTotal,
		adapterFetchDuration: adapterFetchDuration,
		adapterEventsTotal:   adapterEventsTotal,
		adapterFailures:      adapterFailures,
		providerCallsTotal:   providerCallsTotal,
		fallbackTotal:        fallbackTotal,
		degradedTotal:        degradedTotal,
	}, nil
}

// Handler returns an HTTP handler for exposing Prometheus metrics.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// ObserveAdapterFetch records the outcome of one source adapter fetch.
func (c *Collector) ObserveAdapterFetch(adapter string, elapsed time.Duration, events int, succeeded bool) {
	c.adapterFetchDuration.WithLabelValues(adapter).Observe(elapsed.Seconds())
	c.adapterEventsTotal.WithLabelValues(adapter).Add(float64(events))
	if !succeeded {
		c.adapterFailures.WithLabelValues(adapter).Inc()
	}
}

// ObserveProviderCall records one language-model call outcome.
func (c *Collector) ObserveProviderCall(provider string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	c.providerCallsTotal.WithLabelValues(provider, status).Inc()
}

// ObserveFallback records a chat turn that was answered via fallback.
func (c *Collector) ObserveFallback() {
	c.fallbackTotal.Inc()
}

// ObserveDegraded records an aggregation call that degraded to the
// synthetic notice.
func (c *Collector) ObserveDegraded() {
	c.degradedTotal.Inc()
}

// InstrumentHandler wraps the provided handler to record HTTP metrics.
func (c *Collector) InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(rw.status)
		path := r.URL.Path

		c.requestTotal.WithLabelValues(r.Method, path, status).Inc()
		c.requestDuration.WithLabelValues(r.Method, path, status).Observe(duration)
	})
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (w *responseWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
