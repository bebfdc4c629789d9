package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// analytics pipeline.
type Metrics struct {
	RowsMerged        prometheus.Counter
	ScenarioRowsBuilt prometheus.Counter
	CountiesProjected prometheus.Counter
	CountiesSkipped   prometheus.Counter
	DerivedFallbacks  prometheus.Counter
	ZeroSpreadCohorts prometheus.Counter
	PipelineRunning   prometheus.Gauge

	// Per-stage wall time for a pipeline run.
	StageDuration *prometheus.HistogramVec // label: stage

	// Raw data acquisition metrics.
	DownloadRequests *prometheus.CounterVec   // labels: dataset, outcome={success,error,skipped}
	DownloadDuration *prometheus.HistogramVec // label: dataset

	// Postgres upload metrics.
	TablesReplaced prometheus.Counter
	RowsUploaded   prometheus.Counter
	UploadErrors   prometheus.Counter

	// Data Commons metrics.
	DataCommonsRequests    *prometheus.CounterVec // labels: outcome={success,error,empty}
	DataCommonsCache       *prometheus.CounterVec // labels: result={hit,miss}
	DataCommonsAPIDuration prometheus.Histogram
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		RowsMerged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "climate_pipeline",
			Name:      "rows_merged_total",
			Help:      "Total county-year rows produced by the domain merge.",
		}),
		ScenarioRowsBuilt: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "climate_pipeline",
			Name:      "scenario_rows_built_total",
			Help:      "Total rows emitted by scenario expansion, baselines included.",
		}),
		CountiesProjected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "climate_pipeline",
			Name:      "counties_projected_total",
			Help:      "Counties carried through scenario expansion.",
		}),
		CountiesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "climate_pipeline",
			Name:      "counties_skipped_total",
			Help:      "Counties dropped for missing or unusable baseline population.",
		}),
		DerivedFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "climate_pipeline",
			Name:      "derived_fallbacks_total",
			Help:      "Counties whose derived metrics used a fallback denominator of 1.",
		}),
		ZeroSpreadCohorts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "climate_pipeline",
			Name:      "zero_spread_cohorts_total",
			Help:      "Scenario cohorts whose z-scores were zeroed for lack of spread.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "climate_pipeline",
			Name:      "pipeline_running",
			Help:      "1 when a pipeline run is active, 0 otherwise.",
		}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "climate_pipeline",
			Name:      "stage_duration_seconds",
			Help:      "Wall time per pipeline stage.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300, 600},
		}, []string{"stage"}),
		DownloadRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "climate_pipeline",
			Name:      "download_requests_total",
			Help:      "Raw data downloads by dataset and outcome.",
		}, []string{"dataset", "outcome"}),
		DownloadDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "climate_pipeline",
			Name:      "download_duration_seconds",
			Help:      "Duration of a single raw data download.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"dataset"}),
		TablesReplaced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "climate_pipeline",
			Name:      "tables_replaced_total",
			Help:      "Warehouse tables rebuilt from an output file.",
		}),
		RowsUploaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "climate_pipeline",
			Name:      "rows_uploaded_total",
			Help:      "Total rows inserted into Postgres.",
		}),
		UploadErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "climate_pipeline",
			Name:      "upload_errors_total",
			Help:      "Total table upload failures.",
		}),
		DataCommonsRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "climate_pipeline",
			Name:      "datacommons_requests_total",
			Help:      "Data Commons API requests by outcome.",
		}, []string{"outcome"}),
		DataCommonsCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "climate_pipeline",
			Name:      "datacommons_cache_total",
			Help:      "Data Commons series cache lookups by result.",
		}, []string{"result"}),
		DataCommonsAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "climate_pipeline",
			Name:      "datacommons_api_duration_seconds",
			Help:      "Data Commons API request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
	}

	prometheus.MustRegister(
		m.RowsMerged,
		m.ScenarioRowsBuilt,
		m.CountiesProjected,
		m.CountiesSkipped,
		m.DerivedFallbacks,
		m.ZeroSpreadCohorts,
		m.PipelineRunning,
		m.StageDuration,
		m.DownloadRequests,
		m.DownloadDuration,
		m.TablesReplaced,
		m.RowsUploaded,
		m.UploadErrors,
		m.DataCommonsRequests,
		m.DataCommonsCache,
		m.DataCommonsAPIDuration,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		RowsMerged:             prometheus.NewCounter(prometheus.CounterOpts{Namespace: "climate_pipeline", Name: "rows_merged_total"}),
		ScenarioRowsBuilt:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: "climate_pipeline", Name: "scenario_rows_built_total"}),
		CountiesProjected:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: "climate_pipeline", Name: "counties_projected_total"}),
		CountiesSkipped:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "climate_pipeline", Name: "counties_skipped_total"}),
		DerivedFallbacks:       prometheus.NewCounter(prometheus.CounterOpts{Namespace: "climate_pipeline", Name: "derived_fallbacks_total"}),
		ZeroSpreadCohorts:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: "climate_pipeline", Name: "zero_spread_cohorts_total"}),
		PipelineRunning:        prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "climate_pipeline", Name: "pipeline_running"}),
		StageDuration:          prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "climate_pipeline", Name: "stage_duration_seconds"}, []string{"stage"}),
		DownloadRequests:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "climate_pipeline", Name: "download_requests_total"}, []string{"dataset", "outcome"}),
		DownloadDuration:       prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "climate_pipeline", Name: "download_duration_seconds"}, []string{"dataset"}),
		TablesReplaced:         prometheus.NewCounter(prometheus.CounterOpts{Namespace: "climate_pipeline", Name: "tables_replaced_total"}),
		RowsUploaded:           prometheus.NewCounter(prometheus.CounterOpts{Namespace: "climate_pipeline", Name: "rows_uploaded_total"}),
		UploadErrors:           prometheus.NewCounter(prometheus.CounterOpts{Namespace: "climate_pipeline", Name: "upload_errors_total"}),
		DataCommonsRequests:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "climate_pipeline", Name: "datacommons_requests_total"}, []string{"outcome"}),
		DataCommonsCache:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "climate_pipeline", Name: "datacommons_cache_total"}, []string{"result"}),
		DataCommonsAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "climate_pipeline", Name: "datacommons_api_duration_seconds"}),
	}
}
