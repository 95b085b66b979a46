// Package webhook serves the GitHub webhook: pull request events are
// checked for sign-offs and the verdict is posted back to GitHub.
package webhook

import (
	"fmt"
	"net/http"

	"github.com/go-kit/kit/log"
	gh "github.com/google/go-github/v28/github"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
	"github.com/weaveworks/common/middleware"

	"github.com/fluxcd/dco/pkg/checker"
	transport "github.com/fluxcd/dco/pkg/http"
	dcometrics "github.com/fluxcd/dco/pkg/metrics"
)

var (
	requestDuration = stdprometheus.NewHistogramVec(stdprometheus.HistogramOpts{
		Namespace: "dco",
		Name:      "request_duration_seconds",
		Help:      "Time (in seconds) spent serving HTTP requests.",
		Buckets:   stdprometheus.DefBuckets,
	}, []string{dcometrics.LabelMethod, dcometrics.LabelRoute, "status_code", "ws"})

	eventsReceived = stdprometheus.NewCounterVec(stdprometheus.CounterOpts{
		Namespace: "dco",
		Subsystem: "webhook",
		Name:      "events_total",
		Help:      "Count of webhook deliveries, by event type.",
	}, []string{dcometrics.LabelEvent})
)

func init() {
	stdprometheus.MustRegister(requestDuration, eventsReceived)
}

// The pull request actions that change which commits need checking.
var checkedActions = map[string]bool{
	"opened":      true,
	"reopened":    true,
	"synchronize": true,
}

// NewHandler attaches the webhook handlers to r, which should come
// from transport.NewAPIRouter.
func NewHandler(s checker.Service, secret []byte, logger log.Logger, r *mux.Router) http.Handler {
	handle := Server{
		checker: s,
		secret:  secret,
		logger:  logger,
	}

	r.Get(transport.Webhook).HandlerFunc(handle.Webhook)
	r.Get(transport.Health).HandlerFunc(handle.Health)
	transport.NotFoundRoute(r)

	return middleware.Instrument{
		RouteMatcher: r,
		Duration:     requestDuration,
	}.Wrap(r)
}

type Server struct {
	checker checker.Service
	secret  []byte
	logger  log.Logger
}

func (s Server) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "ok")
}

func (s Server) Webhook(w http.ResponseWriter, r *http.Request) {
	delivery := gh.DeliveryID(r)
	if delivery == "" {
		delivery = uuid.New().String()
	}
	eventType := gh.WebHookType(r)
	logger := log.With(s.logger, "delivery", delivery, "event", eventType)

	payload, err := gh.ValidatePayload(r, s.secret)
	if err != nil {
		logger.Log("err", err)
		transport.WriteError(w, r, http.StatusUnauthorized, transport.ErrorUnauthorized)
		return
	}
	eventsReceived.WithLabelValues(eventType).Inc()

	event, err := gh.ParseWebHook(eventType, payload)
	if err != nil {
		logger.Log("err", err)
		transport.WriteError(w, r, http.StatusBadRequest, transport.MakeBadPayload(err))
		return
	}

	switch e := event.(type) {
	case *gh.PingEvent:
		logger.Log("info", "ping", "zen", e.GetZen())
		w.WriteHeader(http.StatusNoContent)
	case *gh.PullRequestEvent:
		if !checkedActions[e.GetAction()] {
			ignore(w, logger, "action "+e.GetAction())
			return
		}
		pr := pullRequest(e)
		verdict, err := s.checker.CheckPullRequest(r.Context(), pr)
		if err != nil {
			logger.Log("pr", pr, "err", err)
			transport.ErrorResponse(w, r, err)
			return
		}
		transport.JSONResponse(w, r, verdict)
	default:
		ignore(w, logger, "event "+eventType)
	}
}

func ignore(w http.ResponseWriter, logger log.Logger, what string) {
	logger.Log("info", "ignored", "reason", what)
	w.WriteHeader(http.StatusAccepted)
}

func pullRequest(e *gh.PullRequestEvent) checker.PullRequest {
	repo := e.GetRepo()
	return checker.PullRequest{
		Owner:      repo.GetOwner().GetLogin(),
		Repo:       repo.GetName(),
		Number:     e.GetNumber(),
		HeadSHA:    e.GetPullRequest().GetHead().GetSHA(),
		OwnerIsOrg: repo.GetOwner().GetType() == "Organization" || e.Organization != nil,
	}
}
