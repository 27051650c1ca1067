package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	Checkouts *prometheus.CounterVec
	Callbacks *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	checkouts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sokopay",
		Name:      "checkouts_total",
		Help:      "Total number of checkout requests by outcome.",
	}, []string{"outcome"})
	callbacks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sokopay",
		Name:      "callbacks_total",
		Help:      "Total number of gateway callbacks by result.",
	}, []string{"result"})

	prometheus.MustRegister(checkouts, callbacks)
	return &Metrics{Checkouts: checkouts, Callbacks: callbacks}
}

func Handler() http.Handler {
	return promhttp.Handler()
}
