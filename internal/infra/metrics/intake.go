package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		intakeTransitionsTotal,
		intakeValidationFailuresTotal,
		reservationsHandedOffTotal,
		activeConversations,
		conversationsEvictedTotal,
	)
}

var (
	intakeTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "intake_transitions_total",
			Help:      "State machine steps by outcome (started, advanced, confirmed, cancelled, ...).",
		},
		[]string{"channel", "outcome"},
	)

	intakeValidationFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "intake_validation_failures_total",
			Help:      "Answers rejected by a field validator.",
		},
		[]string{"field"},
	)

	reservationsHandedOffTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reservations_handed_off_total",
			Help:      "Confirmed reservations by handoff result (saved/failed).",
		},
		[]string{"result"},
	)

	activeConversations = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "intake_active_conversations",
			Help:      "Conversations currently held by the in-memory store.",
		},
	)

	conversationsEvictedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "intake_conversations_evicted_total",
			Help:      "Idle conversations dropped after their TTL.",
		},
	)
)

func IncTransition(channel, outcome string) {
	intakeTransitionsTotal.WithLabelValues(norm(channel), norm(outcome)).Inc()
}

func IncValidationFailure(field string) {
	intakeValidationFailuresTotal.WithLabelValues(norm(field)).Inc()
}

func IncHandoff(result string) {
	reservationsHandedOffTotal.WithLabelValues(norm(result)).Inc()
}

func SetActiveConversations(n int) {
	activeConversations.Set(float64(n))
}

func AddConversationsEvicted(n int) {
	conversationsEvictedTotal.Add(float64(n))
}
