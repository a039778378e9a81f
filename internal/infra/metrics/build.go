package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(buildInfo)
}

var buildInfo = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "fulfillment_build_info",
		Help: "Constant 1, labeled by version, commit and runtime environment.",
	},
	[]string{"version", "commit", "env"},
)

func SetBuildInfo(version, commit, env string) {
	buildInfo.WithLabelValues(version, commit, norm(env)).Set(1)
}
