package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestVerifyOutcomeCountsByKind(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.VerifyOutcome("verified")
	c.VerifyOutcome("verified")
	c.VerifyOutcome("not_a_member")

	if got := testutil.ToFloat64(c.verifyOutcomes.WithLabelValues("verified")); got != 2 {
		t.Errorf("verified = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.verifyOutcomes.WithLabelValues("not_a_member")); got != 1 {
		t.Errorf("not_a_member = %v, want 1", got)
	}
}

func TestFetchDurationCountsFailures(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.FetchDuration(200*time.Millisecond, nil)
	c.FetchDuration(3*time.Second, errors.New("timeout"))

	if got := testutil.ToFloat64(c.fetchFail); got != 1 {
		t.Errorf("fetch failures = %v, want 1", got)
	}
	if n := testutil.CollectAndCount(c.fetchLatency); n != 1 {
		t.Errorf("histogram series = %d, want 1", n)
	}
}

func TestCommandHandledResultLabel(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.CommandHandled("verify", nil)
	c.CommandHandled("verify", errors.New("boom"))

	if got := testutil.ToFloat64(c.commands.WithLabelValues("verify", "ok")); got != 1 {
		t.Errorf("ok = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.commands.WithLabelValues("verify", "error")); got != 1 {
		t.Errorf("error = %v, want 1", got)
	}
}

func TestHandlerServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.MemberRegistered("api")

	w := httptest.NewRecorder()
	Handler(reg).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `startbot_member_registrations_total{source="api"} 1`) {
		t.Errorf("registration counter missing from:\n%s", body)
	}
}

func TestNopSatisfiesRecorder(t *testing.T) {
	var r Recorder = Nop{}
	r.VerifyOutcome("verified")
	r.FetchDuration(time.Second, nil)
	r.MemberRegistered("bot")
	r.CommandHandled("status", nil)
}
