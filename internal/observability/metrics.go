package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the review queue service.
// Metrics are organized by subsystem: claims, submissions, items, payouts,
// and the outbox publisher. All counters and histograms are registered via
// promauto for automatic registration with the default Prometheus registry.
type Metrics struct {
	// ClaimsIssued counts items successfully handed to a reviewer, labeled by modality.
	ClaimsIssued *prometheus.CounterVec

	// ClaimsEmpty counts claim requests that found no eligible item.
	ClaimsEmpty prometheus.Counter

	// ClaimsReclaimed counts claims that took over a stale lock from another reviewer.
	ClaimsReclaimed prometheus.Counter

	// ClaimDuration observes the duration of claim operations in seconds.
	ClaimDuration prometheus.Histogram

	// SubmissionsTotal counts review submissions, labeled by action.
	SubmissionsTotal *prometheus.CounterVec

	// SubmissionsFailed counts rejected submissions, labeled by reason.
	SubmissionsFailed *prometheus.CounterVec

	// SubmissionDuration observes the duration of submission transactions in seconds.
	SubmissionDuration prometheus.Histogram

	// ItemsFinalized counts items that reached the terminal state, labeled by path
	// (reviews or skips).
	ItemsFinalized *prometheus.CounterVec

	// ItemsGold counts items promoted to gold standard.
	ItemsGold prometheus.Counter

	// ItemsCreated counts items created, labeled by modality.
	ItemsCreated *prometheus.CounterVec

	// ItemsFlagged counts flag reports filed against items.
	ItemsFlagged prometheus.Counter

	// PayoutCredited counts the total amount credited to reviewer balances.
	PayoutCredited prometheus.Counter

	// PayoutRequests counts payout requests, labeled by resolution status.
	PayoutRequests *prometheus.CounterVec

	// OutboxPublished counts outbox events delivered to the broker.
	OutboxPublished prometheus.Counter

	// OutboxFailed counts outbox events that exhausted their delivery attempts.
	OutboxFailed prometheus.Counter

	// OutboxLag observes the age of events at publish time in seconds.
	OutboxLag prometheus.Histogram
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
// The namespace is used as a prefix for all metric names.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		// Claims
		ClaimsIssued: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "claims_issued_total",
			Help:      "Total number of items claimed by reviewers by modality",
		}, []string{"modality"}),
		ClaimsEmpty: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "claims_empty_total",
			Help:      "Total number of claim requests that found no eligible item",
		}),
		ClaimsReclaimed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "claims_reclaimed_total",
			Help:      "Total number of claims that reclaimed a stale lock",
		}),
		ClaimDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "claim_duration_seconds",
			Help:      "Duration of claim operations in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),

		// Submissions
		SubmissionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Total number of review submissions by action",
		}, []string{"action"}),
		SubmissionsFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_failed_total",
			Help:      "Total number of rejected review submissions by reason",
		}, []string{"reason"}),
		SubmissionDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "submission_duration_seconds",
			Help:      "Duration of review submission transactions in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),

		// Items
		ItemsFinalized: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_finalized_total",
			Help:      "Total number of items finalized by path",
		}, []string{"path"}),
		ItemsGold: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_gold_total",
			Help:      "Total number of items promoted to gold standard",
		}),
		ItemsCreated: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_created_total",
			Help:      "Total number of items created by modality",
		}, []string{"modality"}),
		ItemsFlagged: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_flagged_total",
			Help:      "Total number of flag reports filed against items",
		}),

		// Payouts
		PayoutCredited: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payout_credited_total",
			Help:      "Total amount credited to reviewer balances",
		}),
		PayoutRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payout_requests_total",
			Help:      "Total number of payout requests by status",
		}, []string{"status"}),

		// Outbox
		OutboxPublished: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_published_total",
			Help:      "Total number of outbox events published to the broker",
		}),
		OutboxFailed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_failed_total",
			Help:      "Total number of outbox events that exhausted delivery attempts",
		}),
		OutboxLag: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "outbox_lag_seconds",
			Help:      "Age of outbox events at publish time in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 300},
		}),
	}
}

// RecordClaimIssued records a successful claim.
func (m *Metrics) RecordClaimIssued(modality string, reclaimed bool, durationSeconds float64) {
	m.ClaimsIssued.WithLabelValues(modality).Inc()
	m.ClaimDuration.Observe(durationSeconds)
	if reclaimed {
		m.ClaimsReclaimed.Inc()
	}
}

// RecordClaimEmpty records a claim request that returned no item.
func (m *Metrics) RecordClaimEmpty(durationSeconds float64) {
	m.ClaimsEmpty.Inc()
	m.ClaimDuration.Observe(durationSeconds)
}

// RecordSubmission records an accepted review submission.
func (m *Metrics) RecordSubmission(action string, durationSeconds float64) {
	m.SubmissionsTotal.WithLabelValues(action).Inc()
	m.SubmissionDuration.Observe(durationSeconds)
}

// RecordSubmissionFailed records a rejected review submission.
func (m *Metrics) RecordSubmissionFailed(reason string) {
	m.SubmissionsFailed.WithLabelValues(reason).Inc()
}

// RecordItemFinalized records an item reaching the terminal state.
func (m *Metrics) RecordItemFinalized(path string) {
	m.ItemsFinalized.WithLabelValues(path).Inc()
}

// RecordItemGold records an item promoted to gold standard.
func (m *Metrics) RecordItemGold() {
	m.ItemsGold.Inc()
}

// RecordItemsCreated records items created for a modality.
func (m *Metrics) RecordItemsCreated(modality string, count int) {
	m.ItemsCreated.WithLabelValues(modality).Add(float64(count))
}

// RecordItemFlagged records a flag report.
func (m *Metrics) RecordItemFlagged() {
	m.ItemsFlagged.Inc()
}

// RecordPayoutCredited records an amount credited to a reviewer balance.
func (m *Metrics) RecordPayoutCredited(amount float64) {
	m.PayoutCredited.Add(amount)
}

// RecordPayoutRequest records a payout request resolution.
func (m *Metrics) RecordPayoutRequest(status string) {
	m.PayoutRequests.WithLabelValues(status).Inc()
}

// RecordOutboxPublished records an event delivered to the broker.
func (m *Metrics) RecordOutboxPublished(lagSeconds float64) {
	m.OutboxPublished.Inc()
	m.OutboxLag.Observe(lagSeconds)
}

// RecordOutboxFailed records an event that exhausted its delivery attempts.
func (m *Metrics) RecordOutboxFailed() {
	m.OutboxFailed.Inc()
}
