package refresher

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	resultSuccess = "success"
	resultFailure = "failure"
)

var (
	refreshAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "token_refresh_attempts_total",
		Help: "Token refresh attempts by result",
	}, []string{"result"})

	sweepDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "token_refresh_sweep_duration_seconds",
		Help:    "Duration of a full refresh sweep",
		Buckets: []float64{0.1, 0.5, 1.0, 5.0, 15.0, 60.0},
	})

	expiringGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "credentials_expiring_within_hour",
		Help: "Connected credentials whose access token is due within the hour",
	})

	invalidGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "credentials_invalid",
		Help: "Connected credentials that are marked invalid",
	})
)

// MetricsHandler registers the refresher metrics and returns the handler
// for the /metrics endpoint.
func MetricsHandler() http.Handler {
	for _, collector := range []prometheus.Collector{refreshAttempts, sweepDuration, expiringGauge, invalidGauge} {
		if err := prometheus.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				panic(err)
			}
		}
	}

	return promhttp.Handler()
}
