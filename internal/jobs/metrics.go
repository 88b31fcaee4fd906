package jobs

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// cleanedTotal counts rows and files removed or updated by the cleanup job
var cleanedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "import_runs_cleaned_total",
	Help: "Total number of import runs failed or pruned and archived files deleted by cleanup",
}, []string{"action"})
