package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Reconciliation metrics
	RosterPublishes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "voicebridge_roster_publishes_total",
			Help: "Roster updates delivered downstream",
		},
	)

	RosterSuppressed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "voicebridge_roster_suppressed_total",
			Help: "Reconciliations skipped because the roster was unchanged",
		},
	)

	ReconcileErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "voicebridge_reconcile_errors_total",
			Help: "Reconciliations abandoned on fetch or publish error",
		},
	)

	DebounceResets = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "voicebridge_debounce_resets_total",
			Help: "Pending room scans superseded by a newer event",
		},
	)

	// Batch executor metrics
	MemberMoves = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voicebridge_member_moves_total",
			Help: "Reassignment commands by outcome",
		},
		[]string{"result"}, // "ok", "not_in_voice", "error"
	)

	// Notifier metrics
	LeaderNotices = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voicebridge_leader_notices_total",
			Help: "Leader direct messages by outcome",
		},
		[]string{"result"}, // "ok", "error"
	)
)
