package web

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shouni/gemini-image-studio/pkg/domain"
	"github.com/shouni/gemini-image-studio/pkg/studio"
)

// Metrics は Studio のリクエスト結果を Prometheus に記録します。studio.Recorder を満たします。
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics はコレクターを登録して Metrics を返します。
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "studio",
			Name:      "requests_total",
			Help:      "Image requests by mode and outcome.",
		}, []string{"mode", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "studio",
			Name:      "request_duration_seconds",
			Help:      "Time spent handling an image request, including validation.",
			Buckets:   []float64{0.01, 0.1, 0.5, 1, 2.5, 5, 10, 20, 40, 80},
		}, []string{"mode"}),
	}
	reg.MustRegister(m.requests, m.duration)
	return m
}

// Observe は1回分の結果を記録します。
func (m *Metrics) Observe(mode domain.ActiveMode, outcome studio.Outcome, elapsed time.Duration) {
	m.requests.WithLabelValues(mode.String(), string(outcome)).Inc()
	m.duration.WithLabelValues(mode.String()).Observe(elapsed.Seconds())
}

// RegisterSessionGauge は保持中のセッション数を公開します。
func RegisterSessionGauge(reg prometheus.Registerer, store *SessionStore) {
	reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "studio",
		Name:      "sessions",
		Help:      "Number of live browser sessions.",
	}, func() float64 { return float64(store.Len()) }))
}
