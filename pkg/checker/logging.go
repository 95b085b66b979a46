package checker

import (
	"context"
	"time"

	"github.com/go-kit/kit/log"

	"github.com/fluxcd/dco/pkg/dco"
)

type loggingService struct {
	next   Service
	logger log.Logger
}

// LoggingMiddleware logs the outcome of every check.
func LoggingMiddleware(logger log.Logger) func(Service) Service {
	return func(next Service) Service {
		return loggingService{next: next, logger: logger}
	}
}

func (s loggingService) CheckPullRequest(ctx context.Context, pr PullRequest) (verdict dco.Verdict, err error) {
	defer func(begin time.Time) {
		if err != nil {
			s.logger.Log("method", "CheckPullRequest", "pr", pr, "sha", pr.HeadSHA, "took", time.Since(begin), "err", err)
			return
		}
		s.logger.Log("method", "CheckPullRequest", "pr", pr, "sha", pr.HeadSHA, "took", time.Since(begin), "state", verdict.State, "description", verdict.Description)
	}(time.Now())
	return s.next.CheckPullRequest(ctx, pr)
}
