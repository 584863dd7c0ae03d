package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	readingsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "firewatch_readings_processed_total",
		Help: "Raw samples normalized and fed to a zone evaluator, by zone.",
	}, []string{"zone"})
	readingsInvalid = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "firewatch_readings_invalid_total",
		Help: "Samples rejected as invalid (unknown channel, out of domain), by zone.",
	}, []string{"zone"})
	readingsShed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "firewatch_readings_shed_total",
		Help: "Samples dropped because a zone's ingest queue was full, by zone.",
	}, []string{"zone"})
	zoneLevel = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "firewatch_zone_level",
		Help: "Confirmed zone level severity (0 unknown, 1 normal, 2 warning, 3 critical).",
	}, []string{"zone"})
)
