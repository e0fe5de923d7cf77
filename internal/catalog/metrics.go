// Copyright 2025 The Switchboard Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package catalog

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// watcherEvents tracks file events seen by the catalog watcher
	watcherEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "switchboard_catalog_watcher_events_total",
			Help: "Total catalog file events by event type",
		},
		[]string{"event_type"},
	)

	// watcherReloads tracks reloads triggered by the watcher
	watcherReloads = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "switchboard_catalog_watcher_reloads_total",
			Help: "Total catalog reloads triggered by file events",
		},
	)

	// watcherReloadFailures tracks reloads that failed
	watcherReloadFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "switchboard_catalog_watcher_reload_failures_total",
			Help: "Total watcher-triggered catalog reloads that failed",
		},
	)

	// watcherRateLimited tracks reloads dropped by the rate limiter
	watcherRateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "switchboard_catalog_watcher_rate_limited_total",
			Help: "Total catalog reloads dropped by the rate limiter",
		},
	)

	// watcherExcluded tracks events excluded by pattern matching
	watcherExcluded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "switchboard_catalog_watcher_excluded_total",
			Help: "Total catalog file events excluded by pattern matching",
		},
	)
)

// recordWatcherEvent increments the event counter
func recordWatcherEvent(eventType string) {
	watcherEvents.WithLabelValues(eventType).Inc()
}

// recordWatcherReload increments the reload counter
func recordWatcherReload() {
	watcherReloads.Inc()
}

// recordWatcherReloadFailure increments the failure counter
func recordWatcherReloadFailure() {
	watcherReloadFailures.Inc()
}

// recordWatcherRateLimited increments the rate-limited counter
func recordWatcherRateLimited() {
	watcherRateLimited.Inc()
}

// recordWatcherExcluded increments the excluded counter
func recordWatcherExcluded() {
	watcherExcluded.Inc()
}
