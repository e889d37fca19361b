// Package metrics exposes Prometheus counters for verification, forum
// fetches, registrations and slash commands.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what the bot and API report into.
type Recorder interface {
	VerifyOutcome(kind string)
	FetchDuration(d time.Duration, err error)
	MemberRegistered(source string)
	CommandHandled(command string, err error)
}

// Collector records into Prometheus metrics.
type Collector struct {
	verifyOutcomes *prometheus.CounterVec
	fetchLatency   prometheus.Histogram
	fetchFail      prometheus.Counter
	registrations  *prometheus.CounterVec
	commands       *prometheus.CounterVec
}

// NewCollector creates a Collector and registers it with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		verifyOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "startbot_verify_outcomes_total",
			Help: "Verification attempts by outcome.",
		}, []string{"outcome"}),
		fetchLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "startbot_forum_fetch_seconds",
			Help:    "Forum profile fetch latency, including retries.",
			Buckets: prometheus.DefBuckets,
		}),
		fetchFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "startbot_forum_fetch_fail_total",
			Help: "Forum profile fetches that failed after retries.",
		}),
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "startbot_member_registrations_total",
			Help: "New member links by source.",
		}, []string{"source"}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "startbot_commands_total",
			Help: "Slash commands handled.",
		}, []string{"command", "result"}),
	}

	reg.MustRegister(
		c.verifyOutcomes,
		c.fetchLatency,
		c.fetchFail,
		c.registrations,
		c.commands,
	)
	return c
}

func (c *Collector) VerifyOutcome(kind string) {
	c.verifyOutcomes.WithLabelValues(kind).Inc()
}

func (c *Collector) FetchDuration(d time.Duration, err error) {
	c.fetchLatency.Observe(d.Seconds())
	if err != nil {
		c.fetchFail.Inc()
	}
}

func (c *Collector) MemberRegistered(source string) {
	c.registrations.WithLabelValues(source).Inc()
}

func (c *Collector) CommandHandled(command string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.commands.WithLabelValues(command, result).Inc()
}

// Nop discards everything.
type Nop struct{}

func (Nop) VerifyOutcome(string)               {}
func (Nop) FetchDuration(time.Duration, error) {}
func (Nop) MemberRegistered(string)            {}
func (Nop) CommandHandled(string, error)       {}

// Handler serves the gatherer's metrics for scraping.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
