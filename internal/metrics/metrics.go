package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LedgerHoursCredited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ledger_hours_credited_total",
		Help: "Teaching hours credited to student ledgers by approved payments.",
	})
	LedgerHoursDebited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ledger_hours_debited_total",
		Help: "Teaching hours debited from student ledgers by completed bookings.",
	})
	BookingsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bookings_completed_total",
		Help: "Bookings transitioned to completed.",
	})
	BookingsCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bookings_cancelled_total",
		Help: "Bookings transitioned to cancelled.",
	})
	PaymentsReviewed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payments_reviewed_total",
		Help: "Payments transitioned to a terminal review state.",
	}, []string{"status"})
	ActivationsLinked = promauto.NewCounter(prometheus.CounterOpts{
		Name: "activations_linked_total",
		Help: "LINE identities linked through the activation protocol.",
	})
)
