// Package metrics exposes the Prometheus collectors for the moderation flow.
//
// Label sets are kept small and bounded: categories and actions are fixed
// enumerations, results are two-valued.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// SubmissionsTotal counts tickets created by operators, per category.
	SubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moderation_submissions_total",
			Help: "Total number of tickets created by operator submissions.",
		},
		[]string{"category"},
	)

	// DecisionsTotal counts moderator decision attempts. result is "won" for
	// the action that claimed the ticket, "already_handled" for the losers.
	DecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moderation_decisions_total",
			Help: "Total number of moderator decision attempts.",
		},
		[]string{"action", "result"},
	)

	// FanoutDeliveriesTotal counts per-destination fan-out results.
	FanoutDeliveriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moderation_fanout_deliveries_total",
			Help: "Total number of per-destination fan-out delivery attempts.",
		},
		[]string{"result"}, // delivered | failed
	)

	// SubmitterNotificationsTotal counts outcome notifications sent to submitters.
	SubmitterNotificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moderation_submitter_notifications_total",
			Help: "Total number of outcome notifications delivered to submitters.",
		},
		[]string{"outcome"}, // approved | declined | modify
	)
)

// Result label values for FanoutDeliveriesTotal.
const (
	ResultDelivered = "delivered"
	ResultFailed    = "failed"
)

// MustRegister attaches all collectors to the given registerer.
func MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(
		SubmissionsTotal,
		DecisionsTotal,
		FanoutDeliveriesTotal,
		SubmitterNotificationsTotal,
	)
}
