package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Global instruments, registered on import through promauto.

var (
	// SelectionsTotal counts view selections, labeled by outcome ("ok", "error").
	SelectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "molgraph_selections_total",
			Help: "Total number of query selections executed",
		},
		[]string{"status"},
	)

	// SelectionDuration measures how long a selection takes end to end.
	// Buckets span small ligands (microseconds) to large assemblies.
	SelectionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "molgraph_selection_duration_seconds",
			Help:    "Duration of query selections in seconds",
			Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
	)

	// QueryErrorsTotal counts queries that failed to parse or compile.
	QueryErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "molgraph_query_errors_total",
			Help: "Total number of queries rejected at parse or compile time",
		},
	)

	// TraceRunsTotal counts directionality traces.
	TraceRunsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "molgraph_trace_runs_total",
			Help: "Total number of bond directionality traces",
		},
	)

	// CoordinateSyncsTotal counts coordinate propagations by direction
	// ("xcs_to_ics", "ics_to_xcs").
	CoordinateSyncsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "molgraph_coordinate_syncs_total",
			Help: "Total number of coordinate system synchronizations",
		},
		[]string{"direction"},
	)

	// OrganizerRebuildsTotal counts full spatial index rebuilds.
	OrganizerRebuildsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "molgraph_organizer_rebuilds_total",
			Help: "Total number of full spatial index rebuilds",
		},
	)

	// EntitiesOpen tracks entities held by engines in this process.
	EntitiesOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "molgraph_entities_open",
			Help: "Number of entities currently registered in an engine",
		},
	)
)
