package metrics

import (
	"errors"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Every series of the bot is exported under this prefix.
const namespace = "reservation_bot"

var (
	once       sync.Once
	collectors []prometheus.Collector
)

// register queues collectors from the init of each metrics file.
func register(cs ...prometheus.Collector) {
	collectors = append(collectors, cs...)
}

// RegisterTo adds the queued collectors to reg. Collectors already present
// are skipped so a test registry can be filled more than once.
func RegisterTo(reg prometheus.Registerer) error {
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	return nil
}

// MustRegister fills the default registry once.
func MustRegister() {
	once.Do(func() {
		if err := RegisterTo(prometheus.DefaultRegisterer); err != nil {
			panic(err)
		}
	})
}

// norm lowercases a label value; a blank one becomes "unknown".
func norm(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "unknown"
	}
	return s
}
