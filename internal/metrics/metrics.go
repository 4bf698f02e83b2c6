// Package metrics exposes Prometheus instrumentation for agent runs.
package metrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/expfmt"

	"phoneclaw/internal/agent"
	"phoneclaw/internal/agent/call"
)

// Metrics owns a private registry and the run, model and tool collectors.
type Metrics struct {
	Registry *prometheus.Registry

	RunsTotal          *prometheus.CounterVec
	RunDuration        prometheus.Histogram
	RunSteps           prometheus.Histogram
	ActiveRuns         prometheus.Gauge
	LLMRequestDuration *prometheus.HistogramVec
	ToolCallsTotal     *prometheus.CounterVec
}

// New builds and registers the collectors.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "phoneclaw_runs_total",
			Help: "Finished agent runs by terminal status.",
		}, []string{"status"}), // completed | aborted | step_limit_exceeded | failed
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "phoneclaw_run_duration_seconds",
			Help:    "Wall time of agent runs.",
			Buckets: []float64{1, 2.5, 5, 10, 30, 60, 120, 300, 600},
		}),
		RunSteps: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "phoneclaw_run_steps",
			Help:    "Model steps taken per run.",
			Buckets: prometheus.LinearBuckets(1, 2, 15),
		}),
		ActiveRuns: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "phoneclaw_active_runs",
			Help: "Runs currently executing.",
		}),
		LLMRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "phoneclaw_llm_request_duration_seconds",
			Help:    "Model request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"mode", "outcome"}), // stream | blocking; ok | error | cancelled
		ToolCallsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "phoneclaw_tool_calls_total",
			Help: "Tool calls by tool and outcome.",
		}, []string{"tool", "outcome"}), // ok | error
	}
	m.Registry.MustRegister(m.RunsTotal, m.RunDuration, m.RunSteps, m.ActiveRuns, m.LLMRequestDuration, m.ToolCallsTotal)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// WritePrometheus writes the text exposition format to w.
func (m *Metrics) WritePrometheus(w io.Writer) error {
	families, err := m.Registry.Gather()
	if err != nil {
		return err
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, family := range families {
		if err := enc.Encode(family); err != nil {
			return err
		}
	}
	return nil
}

// Hook returns a call hook that records run outcomes.
func (m *Metrics) Hook() call.CallHook {
	return runHook{m: m}
}

type runHook struct {
	m *Metrics
}

func (h runHook) BeforeCall(context.Context, call.CallInput) error {
	h.m.ActiveRuns.Inc()
	return nil
}

func (h runHook) AfterCall(_ context.Context, _ call.CallInput, result call.CallResult) error {
	h.m.ActiveRuns.Dec()
	h.m.RunsTotal.WithLabelValues(string(result.Status)).Inc()
	h.m.RunDuration.Observe(result.Metrics.WallTime.Seconds())
	h.m.RunSteps.Observe(float64(result.Metrics.Steps))
	for tool, count := range result.Metrics.ToolCalls {
		failed := result.Metrics.ToolFailures[tool]
		if ok := count - failed; ok > 0 {
			h.m.ToolCallsTotal.WithLabelValues(tool, "ok").Add(float64(ok))
		}
		if failed > 0 {
			h.m.ToolCallsTotal.WithLabelValues(tool, "error").Add(float64(failed))
		}
	}
	return nil
}

// WrapProvider times every Complete call of p.
func (m *Metrics) WrapProvider(p agent.Provider, stream bool) agent.Provider {
	mode := "blocking"
	if stream {
		mode = "stream"
	}
	return agent.ProviderFunc(func(ctx context.Context, prompt agent.Prompt, onChunk agent.ChunkHandler) (agent.Response, error) {
		start := time.Now()
		resp, err := p.Complete(ctx, prompt, onChunk)
		m.LLMRequestDuration.WithLabelValues(mode, outcome(err)).Observe(time.Since(start).Seconds())
		return resp, err
	})
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, context.Canceled):
		return "cancelled"
	default:
		return "error"
	}
}
