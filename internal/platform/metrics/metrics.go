package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments for the session manager.
type Metrics struct {
	LoginsInitiated prometheus.Counter
	TokenExchanges  *prometheus.CounterVec
	ExchangeSeconds prometheus.Histogram
	TokensInjected  prometheus.Counter
	Logouts         prometheus.Counter
}

// New creates and registers all Prometheus metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		LoginsInitiated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "walletgate_logins_initiated_total",
			Help: "Login flows started (authorize redirects built)",
		}),
		TokenExchanges: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "walletgate_token_exchanges_total",
			Help: "Authorization-code token exchanges by outcome",
		}, []string{"outcome"}),
		ExchangeSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "walletgate_token_exchange_duration_seconds",
			Help:    "Latency of the token endpoint round trip",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		TokensInjected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "walletgate_tokens_injected_total",
			Help: "Token sets injected by the native bridge",
		}),
		Logouts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "walletgate_logouts_total",
			Help: "Explicit logouts",
		}),
	}
}

// ObserveExchange records one exchange outcome with its latency.
func (m *Metrics) ObserveExchange(outcome string, seconds float64) {
	m.TokenExchanges.WithLabelValues(outcome).Inc()
	m.ExchangeSeconds.Observe(seconds)
}
