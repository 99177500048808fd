// Package metrics defines and registers all custom Prometheus metrics for the
// story API. It is the single source of truth for metric names, labels, and
// help strings.
//
// Metrics are registered with the default Prometheus registry at import time
// via promauto; the /metrics endpoint exposes them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "story"

// ── Credit ledger metrics ─────────────────────────────────────────────────────

// CreditsDebitedTotal counts credits actually consumed.
// Label:
//   - pool: "text" or "audio"
var CreditsDebitedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "credits_debited_total",
		Help:      "Total number of credits debited, by pool.",
	},
	[]string{"pool"},
)

// DebitsSkippedTotal counts debit attempts that were no-ops because the
// account was an active (unmetered) subscriber.
// Label:
//   - pool: "text" or "audio"
var DebitsSkippedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "debits_skipped_total",
		Help:      "Total number of debit attempts skipped for unmetered accounts, by pool.",
	},
	[]string{"pool"},
)

// DebitsLostRaceTotal counts post-generation debits that found the balance
// already drained by a concurrent request.
// Label:
//   - pool: "text" or "audio"
var DebitsLostRaceTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "debits_lost_race_total",
		Help:      "Total number of debits that failed on insufficient balance after the work was done.",
	},
	[]string{"pool"},
)

// ── Billing metrics ───────────────────────────────────────────────────────────

// BillingEventsTotal counts webhook billing events by outcome.
// Labels:
//   - type: billing event type (e.g. "RENEWAL")
//   - result: "applied", "duplicate", "ignored", or "error"
var BillingEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "billing_events_total",
		Help:      "Total number of billing webhook events, by type and result.",
	},
	[]string{"type", "result"},
)

// BillingDedupTotal counts replay-guard decisions.
// Label:
//   - result: "hit" (duplicate, skipped) or "miss" (new event, processed)
var BillingDedupTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "billing_dedup_total",
		Help:      "Total number of billing replay-guard checks, labelled by result (hit/miss).",
	},
	[]string{"result"},
)

// ── Sweep metrics ─────────────────────────────────────────────────────────────

// SweepAccountsTotal counts accounts touched by the scheduled sweep.
// Labels:
//   - sweep: "text_reset" or "yearly_bonus"
//   - result: "applied", "skipped", or "error"
var SweepAccountsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sweep_accounts_total",
		Help:      "Total number of accounts processed by the scheduled sweep, by sweep kind and result.",
	},
	[]string{"sweep", "result"},
)

// ── Generation metrics ────────────────────────────────────────────────────────

// GenerationDuration measures how long one generation pipeline takes end-to-end.
// Labels:
//   - kind: "text" or "audio"
//   - outcome: "success" or "error"
var GenerationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "generation_duration_seconds",
		Help:      "Duration of a story generation pipeline from request to persisted artifact.",
		Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 120},
	},
	[]string{"kind", "outcome"},
)
