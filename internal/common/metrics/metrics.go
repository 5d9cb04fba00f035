// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FaultsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "faults_created_total",
			Help: "Total number of faults registered",
		},
		[]string{"type", "status"},
	)

	TransitionsApplied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fault_transitions_total",
			Help: "Total number of status transitions applied",
		},
		[]string{"from", "to"},
	)

	TransitionsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fault_transitions_rejected_total",
			Help: "Total number of status transitions rejected",
		},
		[]string{"reason"},
	)

	SignaturesCaptured = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fault_signatures_captured_total",
			Help: "Total number of signatures captured by party",
		},
		[]string{"party"},
	)

	Compositions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "act_compositions_total",
			Help: "Total number of act composition attempts",
		},
		[]string{"result"},
	)

	ArchiveDocuments = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "archive_documents_total",
			Help: "Total number of act documents bundled into archives",
		},
	)

	ArchiveSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "archive_documents_skipped_total",
			Help: "Total number of faults skipped during archiving",
		},
	)

	NotificationDrafts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_drafts_total",
			Help: "Total number of notification drafts prepared",
		},
		[]string{"status"},
	)
)
