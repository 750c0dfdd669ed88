package metrics

import (
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(buildInfo)
}

var buildInfo = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "build_info",
		Help:      "Always 1; labels carry the release, toolchain and prompt locale.",
	},
	[]string{"version", "commit", "go_version", "locale"},
)

// SetBuildInfo publishes the running release and the prompt catalog locale.
func SetBuildInfo(version, commit, locale string) {
	buildInfo.Reset()
	buildInfo.WithLabelValues(version, commit, runtime.Version(), norm(locale)).Set(1)
}
