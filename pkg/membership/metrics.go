package membership

import (
	"github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"

	dcometrics "github.com/fluxcd/dco/pkg/metrics"
)

const labelCache = dcometrics.LabelCache

var (
	cacheRequests = prometheus.NewCounterFrom(stdprometheus.CounterOpts{
		Namespace: "dco",
		Subsystem: "membership",
		Name:      "cache_requests_total",
		Help:      "Membership cache lookups, by outcome (hit, miss, error).",
	}, []string{labelCache})
)
