package georadius

import (
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups collectors of radius selection. Nil *Metrics is valid and records nothing
type Metrics struct {
	aggregations *prometheus.CounterVec
	skipped      prometheus.Counter
	duration     prometheus.Histogram
	matched      *prometheus.HistogramVec
	gestures     *prometheus.CounterVec
}

// NewMetrics creates and registers collectors on given registerer
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		aggregations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "georadius",
			Name:      "aggregations_total",
			Help:      "Number of finalized radius selections by outcome.",
		}, []string{"outcome"}),
		skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "georadius",
			Name:      "features_skipped_total",
			Help:      "Features skipped because geometry kernel failed on them.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "georadius",
			Name:      "aggregation_duration_seconds",
			Help:      "Time spent in intersection and aggregation.",
			Buckets:   []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
		}),
		matched: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "georadius",
			Name:      "matched_features",
			Help:      "Number of features inside radius per selection.",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 500, 1000},
		}, []string{"kind"}),
		gestures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "georadius",
			Name:      "gestures_total",
			Help:      "Draw gestures by how they ended.",
		}, []string{"end"}),
	}
	for _, c := range []prometheus.Collector{m.aggregations, m.skipped, m.duration, m.matched, m.gestures} {
		if err := reg.Register(c); err != nil {
			return nil, errors.Wrap(err, "Can't register collector")
		}
	}
	return m, nil
}

func (m *Metrics) observeAggregation(outcome string, took time.Duration, hubs, peripheries, skipped int) {
	if m == nil {
		return
	}
	m.aggregations.WithLabelValues(outcome).Inc()
	m.duration.Observe(took.Seconds())
	m.matched.WithLabelValues(KindHub.String()).Observe(float64(hubs))
	m.matched.WithLabelValues(KindPeriphery.String()).Observe(float64(peripheries))
	m.skipped.Add(float64(skipped))
}

func (m *Metrics) observeGesture(end string) {
	if m == nil {
		return
	}
	m.gestures.WithLabelValues(end).Inc()
}
