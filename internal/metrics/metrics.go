package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TicketsIssued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clubdoor_tickets_issued_total",
			Help: "Tickets issued, by type",
		},
		[]string{"type"},
	)

	TicketsCancelled = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "clubdoor_tickets_cancelled_total",
			Help: "Tickets cancelled by their holders",
		},
	)

	AdmissionRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clubdoor_admission_rejected_total",
			Help: "Ticket requests rejected, by reason",
		},
		[]string{"reason"},
	)

	ReferralAttributions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clubdoor_referral_attributions_total",
			Help: "Referral credits recorded, by source kind",
		},
		[]string{"kind"},
	)

	WaitlistJoins = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "clubdoor_waitlist_joins_total",
			Help: "Waitlist entries created",
		},
	)

	WaitlistLeaves = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "clubdoor_waitlist_leaves_total",
			Help: "Waitlist entries removed by their owners",
		},
	)

	Scans = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clubdoor_scans_total",
			Help: "Scan attempts, by outcome",
		},
		[]string{"outcome"},
	)

	DegradedOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clubdoor_degraded_outcomes_total",
			Help: "Operations whose primary effect stood but a side effect failed",
		},
		[]string{"effect"},
	)
)
