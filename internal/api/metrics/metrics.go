// Package metrics defines and registers all custom Prometheus metrics for the
// invoicing API. It is the single source of truth for metric names, labels,
// and help strings. Metrics register with the default registry at package
// init via promauto; the HTTP layer exposes them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "invoicing"

// InvoicesCreatedTotal counts invoices successfully created.
// Label:
//   - attachment: "none", "image_link", or "uploaded_file"
var InvoicesCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "invoices_created_total",
		Help:      "Total number of invoices created, by attachment variant.",
	},
	[]string{"attachment"},
)

// InvoicesDeletedTotal counts invoices hard deleted.
var InvoicesDeletedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "invoices_deleted_total",
		Help:      "Total number of invoices deleted.",
	},
)

// AttachmentUploadsTotal counts attachment files uploaded to blob storage.
var AttachmentUploadsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "attachment_uploads_total",
		Help:      "Total number of attachment files uploaded to blob storage.",
	},
)

// ExportsTotal counts PDF export attempts.
// Label:
//   - result: "success" or "error"
var ExportsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "exports_total",
		Help:      "Total number of invoice PDF exports, by result.",
	},
	[]string{"result"},
)

// ExportDuration measures how long a full export takes (render, convert, write).
var ExportDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "export_duration_seconds",
		Help:      "Duration of invoice PDF export from request to file on disk.",
		Buckets:   prometheus.DefBuckets,
	},
)
