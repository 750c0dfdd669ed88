package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		inboundEventsTotal,
		deliveryFailuresTotal,
		webhookRejectedTotal,
		rateLimitTriggeredTotal,
	)
}

var (
	inboundEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inbound_events_total",
			Help:      "Counts incoming text messages per channel.",
		},
		[]string{"channel"},
	)

	deliveryFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "delivery_failures_total",
			Help:      "Replies that the messaging platform did not accept.",
		},
		[]string{"channel"},
	)

	webhookRejectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhook_rejected_total",
			Help:      "Webhook requests refused before processing.",
		},
		[]string{"reason"}, // signature, payload
	)

	rateLimitTriggeredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limit_triggered_total",
			Help:      "Total number of times users have been rate-limited.",
		},
	)
)

func IncInboundEvent(channel string) {
	inboundEventsTotal.WithLabelValues(norm(channel)).Inc()
}

func IncDeliveryFailure(channel string) {
	deliveryFailuresTotal.WithLabelValues(norm(channel)).Inc()
}

func IncWebhookRejected(reason string) {
	webhookRejectedTotal.WithLabelValues(norm(reason)).Inc()
}

func IncRateLimitTriggered() {
	rateLimitTriggeredTotal.Inc()
}
