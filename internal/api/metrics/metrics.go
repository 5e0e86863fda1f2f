// Package metrics defines and registers the custom Prometheus metrics of the
// account service. It is the single source of truth for metric names, labels
// and help strings.
//
// All metrics are registered with the default registry through promauto and
// exposed on /metrics next to the echoprometheus HTTP metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "jobportal"

// ── Account metrics ───────────────────────────────────────────────────────────

// RegistrationsTotal counts registration attempts.
// Labels:
//   - role: requested role ("jobseeker", "recruiter", or "invalid")
//   - result: "created", "conflict", "invalid" or "error"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registration attempts, by role and result.",
	},
	[]string{"role", "result"},
)

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "rejected" or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// ProfileUpdatesTotal counts profile update attempts.
// Label:
//   - result: "updated", "conflict", "invalid" or "error"
var ProfileUpdatesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "profile_updates_total",
		Help:      "Total number of profile update attempts, by result.",
	},
	[]string{"result"},
)

// ── Asset metrics ─────────────────────────────────────────────────────────────

// AssetUploadsTotal counts object storage uploads.
// Labels:
//   - namespace: "profile-photos" or "resumes"
//   - result: "ok" or "error"
var AssetUploadsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "asset_uploads_total",
		Help:      "Total number of asset uploads, by namespace and result.",
	},
	[]string{"namespace", "result"},
)

// AssetUploadDuration measures how long a single upload takes.
var AssetUploadDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "asset_upload_duration_seconds",
		Help:      "Duration of asset uploads to object storage.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"namespace"},
)

// CleanupQueueDepth tracks pending deletions in each cleanup worker channel.
// Label:
//   - worker_id: numeric worker index
var CleanupQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "asset_cleanup_queue_depth",
		Help:      "Current number of asset deletions pending in each cleanup worker channel.",
	},
	[]string{"worker_id"},
)

// CleanupTotal counts processed cleanup jobs.
// Label:
//   - result: "deleted", "failed" or "dropped"
var CleanupTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "asset_cleanup_total",
		Help:      "Total number of asset cleanup jobs, by result.",
	},
	[]string{"result"},
)

// ObserveAssetUpload records one upload outcome.
func ObserveAssetUpload(ns string, err error, elapsed time.Duration) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	AssetUploadsTotal.WithLabelValues(ns, result).Inc()
	AssetUploadDuration.WithLabelValues(ns).Observe(elapsed.Seconds())
}
