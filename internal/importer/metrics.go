package importer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// sheetsTotal counts classified sheets by outcome
	sheetsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "importer_sheets_total",
		Help: "Total number of sheets classified by outcome",
	}, []string{"outcome"})

	// recordsTotal counts records kept after deduplication
	recordsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "importer_records_total",
		Help: "Total number of records extracted by record type",
	}, []string{"record_type"})

	duplicatesDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "importer_duplicates_dropped_total",
		Help: "Total number of duplicate records dropped by record type",
	}, []string{"record_type"})

	importDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "importer_duration_seconds",
		Help:    "Time taken to import one workbook",
		Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
	})
)
