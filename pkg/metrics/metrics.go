package metrics

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Custom histogram buckets optimized for API response times ranging from milliseconds to 30+ seconds
	// This provides better granularity for monitoring store operations and media uploads
	// Note: Removed 60s bucket to avoid histogram_quantile interpolation issues with low sample counts
	CustomAPIBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5, 8, 13, 21, 34, 55}

	// HTTP Metrics
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_server_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"http_request_method", "http_route", "http_response_status_code"},
	)

	HTTPRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_server_request_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"http_request_method", "http_route", "http_response_status_code"},
	)

	ActiveRequests = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "http_server_active_requests",
			Help: "Number of active HTTP requests",
		},
		[]string{"http_request_method"},
	)

	// Document Store Metrics (Postgres)
	StoreRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_client_operation_duration_seconds",
			Help:    "Document store operation duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"operation", "status"},
	)

	StoreRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_client_operation_total",
			Help: "Total number of document store operations",
		},
		[]string{"operation", "status"},
	)

	// Catalog Mirror Metrics
	MirrorModules = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "catalog_mirror_modules",
			Help: "Number of modules held in the in-memory catalog mirror",
		},
		[]string{"mirror_name"},
	)

	MirrorSnapshots = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_mirror_snapshots_total",
			Help: "Total number of snapshots applied to the catalog mirror",
		},
		[]string{"mirror_name"},
	)

	MirrorDroppedModules = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_mirror_dropped_modules_total",
			Help: "Total number of modules dropped from snapshots for missing required fields",
		},
		[]string{"mirror_name"},
	)

	MirrorErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_mirror_errors_total",
			Help: "Total number of catalog subscription errors",
		},
		[]string{"mirror_name"},
	)

	// Media Storage Metrics
	MediaStorageRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storage_client_operation_duration_seconds",
			Help:    "Media storage client operation duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"operation", "status"},
	)

	MediaStorageRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storage_client_operation_total",
			Help: "Total number of media storage client operations",
		},
		[]string{"operation", "status"},
	)

	// Business Metrics
	ModuleDetailViews = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lambdaart_module_detail_views_total",
			Help: "Total number of module detail page views",
		},
		[]string{"module_slug"},
	)

	RegistrationLinks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lambdaart_registration_links_total",
			Help: "Total number of registration link generations",
		},
		[]string{"status"},
	)

	CommentLinks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lambdaart_comment_links_total",
			Help: "Total number of module comment link generations",
		},
		[]string{"status"},
	)

	ContactLinks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lambdaart_contact_links_total",
			Help: "Total number of bare contact link generations",
		},
		[]string{"status"},
	)

	ModuleSaves = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lambdaart_module_saves_total",
			Help: "Total number of editor module save attempts",
		},
		[]string{"mode", "status"},
	)

	MediaUploads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lambdaart_media_uploads_total",
			Help: "Total number of media uploads",
		},
		[]string{"kind", "status"},
	)

	ConnectivityProbes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lambdaart_connectivity_probes_total",
			Help: "Total number of store connectivity probes before editor saves",
		},
		[]string{"status"},
	)

	AdminLogins = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lambdaart_admin_logins_total",
			Help: "Total admin login attempts",
		},
		[]string{"status"},
	)

	// Infrastructure Metrics
	GoRoutines = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "process_runtime_go_goroutines",
			Help: "Number of goroutines",
		},
	)

	HeapAlloc = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "process_runtime_go_mem_heap_alloc_bytes",
			Help: "Heap allocated bytes",
		},
	)
)

// RecordInfrastructureMetrics collects infrastructure metrics periodically
func RecordInfrastructureMetrics() {
	ticker := time.NewTicker(15 * time.Second)
	go func() {
		for range ticker.C {
			var m runtime.MemStats
			runtime.ReadMemStats(&m)

			GoRoutines.Set(float64(runtime.NumGoroutine()))
			HeapAlloc.Set(float64(m.HeapAlloc))
		}
	}()
}

// MeasureDuration measures the duration of an operation
func MeasureDuration(start time.Time) float64 {
	return time.Since(start).Seconds()
}
