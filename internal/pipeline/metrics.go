package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// runsTotal counts pipeline runs by final status
var runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "pipeline_runs_total",
	Help: "Total number of import runs by status",
}, []string{"status"})
