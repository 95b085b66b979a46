package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-kit/kit/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluxcd/dco/pkg/checker"
	"github.com/fluxcd/dco/pkg/dco"
	dcoerr "github.com/fluxcd/dco/pkg/errors"
	transport "github.com/fluxcd/dco/pkg/http"
)

var secret = []byte("it's a secret to everybody")

type mockChecker struct {
	verdict dco.Verdict
	err     error
	checked []checker.PullRequest
}

func (m *mockChecker) CheckPullRequest(ctx context.Context, pr checker.PullRequest) (dco.Verdict, error) {
	m.checked = append(m.checked, pr)
	return m.verdict, m.err
}

func sign(body []byte) string {
	mac := hmac.New(sha1.New, secret)
	mac.Write(body)
	return "sha1=" + hex.EncodeToString(mac.Sum(nil))
}

func deliver(t *testing.T, h http.Handler, event string, body []byte, signature string) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest("POST", "/webhook", bytes.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	r.Header.Set("X-GitHub-Event", event)
	r.Header.Set("X-GitHub-Delivery", "72d3162e-cc78-11e3-81ab-4c9367dc0958")
	r.Header.Set("X-Hub-Signature", signature)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func pullRequestEvent(action, ownerType string) []byte {
	return []byte(`{
		"action": "` + action + `",
		"number": 42,
		"pull_request": {"number": 42, "head": {"sha": "deadbeef"}},
		"repository": {"name": "dco", "owner": {"login": "fluxcd", "type": "` + ownerType + `"}}
	}`)
}

func newHandler(c checker.Service) http.Handler {
	return NewHandler(c, secret, log.NewNopLogger(), transport.NewAPIRouter())
}

func TestPullRequestOpened(t *testing.T) {
	c := &mockChecker{verdict: dco.Failure("The sign-off is missing.")}
	h := newHandler(c)

	body := pullRequestEvent("opened", "Organization")
	w := deliver(t, h, "pull_request", body, sign(body))
	require.Equal(t, http.StatusOK, w.Code)

	var got dco.Verdict
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, c.verdict, got)
	assert.Equal(t, []checker.PullRequest{{
		Owner: "fluxcd", Repo: "dco", Number: 42, HeadSHA: "deadbeef", OwnerIsOrg: true,
	}}, c.checked)
}

func TestPullRequestUserOwned(t *testing.T) {
	c := &mockChecker{verdict: dco.Success()}
	body := pullRequestEvent("synchronize", "User")
	w := deliver(t, newHandler(c), "pull_request", body, sign(body))
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, c.checked, 1)
	assert.False(t, c.checked[0].OwnerIsOrg)
}

func TestPullRequestIgnoredAction(t *testing.T) {
	c := &mockChecker{}
	body := pullRequestEvent("labeled", "Organization")
	w := deliver(t, newHandler(c), "pull_request", body, sign(body))
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Empty(t, c.checked)
}

func TestIgnoredEvent(t *testing.T) {
	c := &mockChecker{}
	body := []byte(`{"ref": "refs/heads/master"}`)
	w := deliver(t, newHandler(c), "push", body, sign(body))
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Empty(t, c.checked)
}

func TestPing(t *testing.T) {
	body := []byte(`{"zen": "Keep it logically awesome.", "hook_id": 1}`)
	w := deliver(t, newHandler(&mockChecker{}), "ping", body, sign(body))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestBadSignature(t *testing.T) {
	c := &mockChecker{}
	body := pullRequestEvent("opened", "Organization")
	w := deliver(t, newHandler(c), "pull_request", body, "sha1=0000000000000000000000000000000000000000")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, c.checked)
}

func TestBadPayload(t *testing.T) {
	body := []byte(`{"action": `)
	w := deliver(t, newHandler(&mockChecker{}), "pull_request", body, sign(body))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckError(t *testing.T) {
	c := &mockChecker{err: &dcoerr.Error{Type: dcoerr.Missing, Err: errors.New("no such PR")}}
	body := pullRequestEvent("opened", "Organization")
	w := deliver(t, newHandler(c), "pull_request", body, sign(body))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthAndNotFound(t *testing.T) {
	h := newHandler(&mockChecker{})

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/webhook", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
