package checker

import (
	"context"
	"fmt"
	"time"

	"github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"

	"github.com/fluxcd/dco/pkg/dco"
	dcometrics "github.com/fluxcd/dco/pkg/metrics"
)

var (
	// Most of a check is spent waiting on GitHub: one request for the
	// settings, one per page of commits, one per organisation member.
	checkDuration = prometheus.NewHistogramFrom(stdprometheus.HistogramOpts{
		Namespace: "dco",
		Subsystem: "checker",
		Name:      "check_duration_seconds",
		Help:      "Duration of pull request checks, in seconds.",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
	}, []string{dcometrics.LabelSuccess})

	verdicts = prometheus.NewCounterFrom(stdprometheus.CounterOpts{
		Namespace: "dco",
		Subsystem: "checker",
		Name:      "verdicts_total",
		Help:      "Count of verdicts reached, by state.",
	}, []string{dcometrics.LabelState})
)

type instrumentedService struct {
	next Service
}

func Instrument(s Service) Service {
	return instrumentedService{s}
}

func (i instrumentedService) CheckPullRequest(ctx context.Context, pr PullRequest) (verdict dco.Verdict, err error) {
	defer func(begin time.Time) {
		checkDuration.With(
			dcometrics.LabelSuccess, fmt.Sprint(err == nil),
		).Observe(time.Since(begin).Seconds())
		if err == nil {
			verdicts.With(dcometrics.LabelState, string(verdict.State)).Add(1)
		}
	}(time.Now())
	return i.next.CheckPullRequest(ctx, pr)
}
