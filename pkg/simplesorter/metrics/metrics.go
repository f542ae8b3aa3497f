package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tendant/simple-sorter/pkg/simplesorter"
)

// Collector holds all Prometheus metrics for the sorter. It is also an
// EventSink so the service reports order changes directly.
type Collector struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Ordering metrics
	OrdersSaved      *prometheus.CounterVec
	ItemsRepositions *prometheus.CounterVec
	ItemsShifted     *prometheus.CounterVec
}

var _ simplesorter.EventSink = (*Collector)(nil)

// NewCollector creates a collector with its own registry
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		OrdersSaved: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "orders_saved_total",
				Help:      "Total number of full reorders committed",
			},
			[]string{"category"},
		),
		ItemsRepositions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "items_repositioned_total",
				Help:      "Total number of moves and inserts",
			},
			[]string{"category", "kind"},
		),
		ItemsShifted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "items_shifted_total",
				Help:      "Total number of sort order shifts written for other items",
			},
			[]string{"category"},
		),
	}

	registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.OrdersSaved,
		c.ItemsRepositions,
		c.ItemsShifted,
	)

	return c
}

// Registry returns the collector's registry
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the collected metrics
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// OrderSaved counts a committed full reorder
func (c *Collector) OrderSaved(ctx context.Context, category string, itemIDs []uuid.UUID) error {
	c.OrdersSaved.WithLabelValues(category).Inc()
	return nil
}

// ItemRepositioned counts a move or insert and the shifts it caused
func (c *Collector) ItemRepositioned(ctx context.Context, result *simplesorter.RepositionResult) error {
	kind := "move"
	if result.IsInsert() {
		kind = "insert"
	}
	c.ItemsRepositions.WithLabelValues(result.Category, kind).Inc()
	c.ItemsShifted.WithLabelValues(result.Category).Add(float64(len(result.Shifts)))
	return nil
}

// Middleware records request counts and durations by route pattern
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rw, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		c.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(rw.status)).Inc()
		c.HTTPDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
