package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	registry     *prometheus.Registry
	plansTotal   *prometheus.CounterVec
	planFailures *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

func newMetrics() *metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())

	return &metrics{
		registry: reg,
		plansTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "archplan_plans_total",
			Help: "Planning runs by outcome.",
		}, []string{"status"}),
		planFailures: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "archplan_plan_failures_total",
			Help: "Failed planning runs by failure kind.",
		}, []string{"kind"}),
		httpDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "archplan_http_request_duration_seconds",
			Help:    "Request duration by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}
}
