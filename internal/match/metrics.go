// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Abduction Contributors

package match

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// TicksTotal counts completed ticks by outcome.
// Use RegisterMetrics to register this with a Prometheus registry.
var TicksTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "abduction_ticks_total",
		Help: "Total number of match ticks by status",
	},
	[]string{"status"},
)

// TickDuration is the histogram of tick resolution time, flush included.
var TickDuration = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "abduction_tick_duration_seconds",
		Help:    "Time taken to resolve and flush one tick",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
	},
)

// ActionsTotal counts resolved player actions by kind and outcome.
var ActionsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "abduction_actions_total",
		Help: "Total number of resolved player actions",
	},
	[]string{"kind", "outcome"},
)

// EntitiesGauge tracks live entities in the running match.
var EntitiesGauge = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "abduction_entities",
		Help: "Live entities in the running match",
	},
	[]string{"kind"},
)

// FlushFailures counts failed flushes after retries were exhausted.
var FlushFailures = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "abduction_flush_failures_total",
		Help: "Total number of entity flushes that failed after retrying",
	},
)

// Tick status labels.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// RegisterMetrics registers match metrics with the given registry.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(TicksTotal)
	reg.MustRegister(TickDuration)
	reg.MustRegister(ActionsTotal)
	reg.MustRegister(EntitiesGauge)
	reg.MustRegister(FlushFailures)
}

func recordTick(status string, d time.Duration) {
	TicksTotal.WithLabelValues(status).Inc()
	TickDuration.Observe(d.Seconds())
}

func recordReport(r Report) {
	for _, a := range r.Actions {
		ActionsTotal.WithLabelValues(string(a.Kind), a.Outcome.String()).Inc()
	}
	EntitiesGauge.WithLabelValues("all").Set(float64(r.Entities))
	EntitiesGauge.WithLabelValues("player").Set(float64(r.Players))
}
