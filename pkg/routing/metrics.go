package routing

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// selections tracks successful selections by reason
	selections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "switchboard_selections_total",
			Help: "Total successful model selections by reason",
		},
		[]string{"reason"},
	)

	// selectionFailures tracks failed selections by cause
	selectionFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "switchboard_selection_failures_total",
			Help: "Total failed model selections by cause",
		},
		[]string{"cause"},
	)

	// registryLoads tracks catalog load attempts by outcome
	registryLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "switchboard_registry_loads_total",
			Help: "Total catalog load attempts by outcome",
		},
		[]string{"outcome"},
	)

	// defaultRepairs tracks default-flag conflicts repaired at load time
	defaultRepairs = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "switchboard_registry_default_repairs_total",
			Help: "Total default-flag conflicts repaired during catalog loads",
		},
	)

	// snapshotModels tracks models in the current snapshot by state
	snapshotModels = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "switchboard_registry_models",
			Help: "Models in the current snapshot by state",
		},
		[]string{"state"},
	)

	// snapshotVersion tracks the current snapshot version
	snapshotVersion = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "switchboard_registry_snapshot_version",
			Help: "Version of the currently published catalog snapshot",
		},
	)
)

// recordSelection increments the selection counter
func recordSelection(reason string) {
	selections.WithLabelValues(reason).Inc()
}

// recordSelectionFailure increments the failure counter
func recordSelectionFailure(cause string) {
	selectionFailures.WithLabelValues(cause).Inc()
}

// recordRegistryLoad increments the load counter
func recordRegistryLoad(outcome string) {
	registryLoads.WithLabelValues(outcome).Inc()
}

// recordDefaultRepair increments the repair counter
func recordDefaultRepair() {
	defaultRepairs.Inc()
}

// setSnapshotGauges updates the per-snapshot gauges
func setSnapshotGauges(snap *Snapshot) {
	enabled := len(snap.Enabled())
	snapshotModels.WithLabelValues("enabled").Set(float64(enabled))
	snapshotModels.WithLabelValues("disabled").Set(float64(snap.Len() - enabled))
	snapshotVersion.Set(float64(snap.Version()))
}
