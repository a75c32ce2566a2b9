package contour

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects Prometheus metrics for contour requests. A nil *Metrics
// records nothing.
type Metrics struct {
	requests  *prometheus.CounterVec
	values    prometheus.Counter
	polylines prometheus.Counter
	points    prometheus.Counter
	duration  prometheus.Histogram
	ponds     *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "contour",
			Name:      "requests_total",
			Help:      "Contour requests by result",
		}, []string{"result"}),
		values: f.NewCounter(prometheus.CounterOpts{
			Namespace: "contour",
			Name:      "values_total",
			Help:      "Contour values plotted",
		}),
		polylines: f.NewCounter(prometheus.CounterOpts{
			Namespace: "contour",
			Name:      "polylines_total",
			Help:      "Contour polylines delivered to handlers",
		}),
		points: f.NewCounter(prometheus.CounterOpts{
			Namespace: "contour",
			Name:      "points_total",
			Help:      "Points in delivered contour polylines",
		}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "contour",
			Name:      "request_duration_seconds",
			Help:      "Duration of contour requests",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		ponds: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "contour",
			Name:      "pond_cache_lookups_total",
			Help:      "Depression register cache lookups by result",
		}, []string{"result"}),
	}
}

// Result labels.
const (
	resultOK        = "ok"
	resultCancelled = "cancelled"
	resultError     = "error"

	lookupHit  = "hit"
	lookupMiss = "miss"
)

func resultOf(err error) string {
	switch {
	case err == nil:
		return resultOK
	case errors.Is(err, ErrUserCancelled):
		return resultCancelled
	default:
		return resultError
	}
}

func (m *Metrics) observeRequest(err error, d time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(resultOf(err)).Inc()
	m.duration.Observe(d.Seconds())
}

func (m *Metrics) observeValue() {
	if m != nil {
		m.values.Inc()
	}
}

func (m *Metrics) observePolyline(n int) {
	if m == nil {
		return
	}
	m.polylines.Inc()
	m.points.Add(float64(n))
}

func (m *Metrics) observePondLookup(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.ponds.WithLabelValues(lookupHit).Inc()
	} else {
		m.ponds.WithLabelValues(lookupMiss).Inc()
	}
}
