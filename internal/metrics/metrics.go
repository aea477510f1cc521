package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "solana_twitter"

// Metrics holds the service's Prometheus collectors. It implements
// domain.Observer and stream.SubscriberGauge.
type Metrics struct {
	registry *prometheus.Registry

	tweetsCreated  prometheus.Counter
	tweetsRejected *prometheus.CounterVec
	lamportsLocked prometheus.Counter
	subscribers    prometheus.Gauge
}

// New creates the collectors and registers them, along with the Go runtime
// and process collectors, on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		tweetsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tweets_created_total",
			Help:      "Tweet accounts successfully created",
		}),
		tweetsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tweet_rejections_total",
			Help:      "send_tweet calls that did not create an account, by reason",
		}, []string{"reason"}),
		lamportsLocked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lamports_locked_total",
			Help:      "Lamports moved into tweet accounts as rent-exempt balance",
		}),
		subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "subscribers",
			Help:      "Connected websocket stream subscribers",
		}),
	}

	m.registry.MustRegister(
		m.tweetsCreated,
		m.tweetsRejected,
		m.lamportsLocked,
		m.subscribers,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) TweetCreated(lamports uint64) {
	m.tweetsCreated.Inc()
	m.lamportsLocked.Add(float64(lamports))
}

func (m *Metrics) TweetRejected(reason string) {
	m.tweetsRejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) SubscriberAdded() {
	m.subscribers.Inc()
}

func (m *Metrics) SubscriberRemoved() {
	m.subscribers.Dec()
}
