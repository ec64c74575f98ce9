package prometheus

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "masterdata"

var (
	// AuthErrorsCounter counts rejected authentications by reason
	AuthErrorsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_errors_total",
			Help:      "Total number of authentication errors",
		},
		[]string{"reason"},
	)

	// AuthSuccessCounter counts authenticated requests
	AuthSuccessCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_success_total",
			Help:      "Total number of successful authentications",
		},
	)

	// PrivilegeDeniedCounter counts requests rejected by the privilege gate
	PrivilegeDeniedCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "privilege_denied_total",
			Help:      "Total number of requests denied for missing privileges",
		},
		[]string{"path"},
	)

	// TenantViolationCounter counts attempts to touch another tenant's records
	TenantViolationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tenant_violations_total",
			Help:      "Total number of cross-tenant write attempts",
		},
		[]string{"table", "operation"},
	)

	// DbOperationDuration records the duration of repository calls
	DbOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "db_operation_duration_seconds",
			Help:      "Duration of database operations in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"table", "operation_type"},
	)

	// EntityOperationsCounter counts service operations per entity
	EntityOperationsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entity_operations_total",
			Help:      "Total number of entity operations",
		},
		[]string{"entity", "operation"},
	)

	// ImportRowsCounter counts XLSX import rows by outcome
	ImportRowsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "import_rows_total",
			Help:      "Total number of imported spreadsheet rows by outcome",
		},
		[]string{"entity", "outcome"},
	)

	registerOnce sync.Once
)

// InitMetrics registers the service collectors with the given registerer once
func InitMetrics(reg prometheus.Registerer) {
	registerOnce.Do(func() {
		reg.MustRegister(
			AuthErrorsCounter,
			AuthSuccessCounter,
			PrivilegeDeniedCounter,
			TenantViolationCounter,
			DbOperationDuration,
			EntityOperationsCounter,
			ImportRowsCounter,
		)
	})
}

// TrackDBOperation returns a function that records the duration of a database operation
func TrackDBOperation(table, operationType string) func(startTime time.Time) {
	return func(startTime time.Time) {
		DbOperationDuration.WithLabelValues(table, operationType).Observe(time.Since(startTime).Seconds())
	}
}

// RecordAuthError increments the authentication error counter
func RecordAuthError(reason string) {
	AuthErrorsCounter.WithLabelValues(reason).Inc()
}

// RecordEntityOperation increments the counter for entity operations
func RecordEntityOperation(entity, operation string) {
	EntityOperationsCounter.WithLabelValues(entity, operation).Inc()
}

// RecordTenantViolation increments the cross-tenant attempt counter
func RecordTenantViolation(table, operation string) {
	TenantViolationCounter.WithLabelValues(table, operation).Inc()
}

// RecordImportRows adds n rows with the given outcome
func RecordImportRows(entity, outcome string, n int) {
	ImportRowsCounter.WithLabelValues(entity, outcome).Add(float64(n))
}
