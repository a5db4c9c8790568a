// Package metrics exposes bell counters to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "awareness_bell"

// Error kinds used as the "kind" label.
const (
	KindPlayback = "playback"
	KindSpeech   = "speech"
	KindQuote    = "quote"
	KindStore    = "store"
)

// Metrics holds the collectors on a private registry. A nil *Metrics is a
// valid no-op recorder.
type Metrics struct {
	registry *prometheus.Registry

	tones         prometheus.Counter
	quotes        prometheus.Counter
	errors        *prometheus.CounterVec
	speechDropped prometheus.Counter
	running       prometheus.Gauge
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		tones: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tones_total",
			Help:      "Quarter-hour tones played.",
		}),
		quotes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quotes_total",
			Help:      "Hourly quotes picked and dispatched.",
		}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Failures by kind.",
		}, []string{"kind"}),
		speechDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "speech_dropped_total",
			Help:      "Quotes not spoken because speech was still busy.",
		}),
		running: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "running",
			Help:      "1 while the schedule controller is running.",
		}),
	}
	reg.MustRegister(
		m.tones, m.quotes, m.errors, m.speechDropped, m.running,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) ToneFired() {
	if m != nil {
		m.tones.Inc()
	}
}

func (m *Metrics) QuoteFired() {
	if m != nil {
		m.quotes.Inc()
	}
}

func (m *Metrics) Failed(kind string) {
	if m != nil {
		m.errors.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) SpeechDropped() {
	if m != nil {
		m.speechDropped.Inc()
	}
}

func (m *Metrics) SetRunning(running bool) {
	if m == nil {
		return
	}
	if running {
		m.running.Set(1)
	} else {
		m.running.Set(0)
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
