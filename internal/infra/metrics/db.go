package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(reservationDBPool) }

var reservationDBPool = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "reservation_db_pool_connections",
		Help:      "Connections of the reservation database pool by state.",
	},
	[]string{"state"}, // 'total', 'idle', 'in_use'
)

// SetDBPoolStats is refreshed by the sweeper loop while Postgres is in use.
func SetDBPoolStats(total, idle, inUse int32) {
	reservationDBPool.WithLabelValues("total").Set(float64(total))
	reservationDBPool.WithLabelValues("idle").Set(float64(idle))
	reservationDBPool.WithLabelValues("in_use").Set(float64(inUse))
}
