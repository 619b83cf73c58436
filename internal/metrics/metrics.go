// Package metrics instruments the agent with Prometheus collectors.
package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/quocvuong92/johnathan-agent/internal/logging"
)

// Tool call outcomes
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
	OutcomeUnknown = "unknown_tool"
)

// Recorder holds the agent's collectors on a private registry.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry

	RoundsTotal           prometheus.Counter
	StreamEventsTotal     *prometheus.CounterVec
	ToolCallsTotal        *prometheus.CounterVec
	ToolLatencySeconds    *prometheus.HistogramVec
	ToolLoopExceededTotal prometheus.Counter
}

// New creates a Recorder with its own registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		RoundsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "agent_rounds_total",
			Help: "Total number of request/response rounds sent to the completion service",
		}),
		StreamEventsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agent_stream_events_total",
				Help: "Total number of decoded stream events",
			},
			[]string{"type"},
		),
		ToolCallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agent_tool_calls_total",
				Help: "Total number of tool calls",
			},
			[]string{"tool", "outcome"},
		),
		ToolLatencySeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "agent_tool_latency_seconds",
				Help:    "Latency of tool calls in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"tool"},
		),
		ToolLoopExceededTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "agent_tool_loop_exceeded_total",
			Help: "Total number of turns aborted because the model kept requesting tools",
		}),
	}
}

// Registry returns the registry the collectors are registered on.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// ObserveRound counts one round.
func (r *Recorder) ObserveRound() {
	if r == nil {
		return
	}
	r.RoundsTotal.Inc()
}

// ObserveEvent counts one decoded stream event by type.
func (r *Recorder) ObserveEvent(eventType string) {
	if r == nil {
		return
	}
	r.StreamEventsTotal.WithLabelValues(eventType).Inc()
}

// ObserveToolCall records one tool execution.
func (r *Recorder) ObserveToolCall(tool, outcome string, d time.Duration) {
	if r == nil {
		return
	}
	r.ToolCallsTotal.WithLabelValues(tool, outcome).Inc()
	r.ToolLatencySeconds.WithLabelValues(tool).Observe(d.Seconds())
}

// ObserveToolLoopExceeded counts one aborted turn.
func (r *Recorder) ObserveToolLoopExceeded() {
	if r == nil {
		return
	}
	r.ToolLoopExceededTotal.Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled.
// It returns once the listener is bound; serving happens in the background.
func (r *Recorder) Serve(ctx context.Context, addr string) (net.Addr, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", r.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Metrics server stopped", err, logging.Fields{"addr": addr})
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logging.Info("Metrics server listening", logging.Fields{"addr": ln.Addr().String()})
	return ln.Addr(), nil
}
