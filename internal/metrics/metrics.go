// Package metrics exports Prometheus metrics for command dispatch and
// interaction routing.
package metrics

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/keshon/cmdtree/pkg/cmd"
)

// Metrics holds the collectors. Labels use dotted paths and interaction
// kinds, never raw interaction identifiers: those may be one-shot.
type Metrics struct {
	// Labels: path, outcome (ok|rejected|error|decode_error)
	CommandCounter *prometheus.CounterVec
	// Labels: path
	CommandDuration *prometheus.HistogramVec
	// Labels: kind (component|modal), outcome
	InteractionCounter *prometheus.CounterVec
	// Labels: event (command|interaction)
	UnmatchedCounter *prometheus.CounterVec
	// Labels: guild scope (guild|global), result (created|deleted|unchanged|error)
	SyncCounter *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New registers the collectors with reg. A nil reg uses a fresh registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		CommandCounter: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cmdtree_commands_total",
			Help: "Dispatched commands by path and outcome",
		}, []string{"path", "outcome"}),
		CommandDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cmdtree_command_duration_seconds",
			Help:    "Command handler latency",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 3, 10},
		}, []string{"path"}),
		InteractionCounter: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cmdtree_interactions_total",
			Help: "Routed interactions by kind and outcome",
		}, []string{"kind", "outcome"}),
		UnmatchedCounter: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cmdtree_unmatched_total",
			Help: "Events no command or interaction handler matched",
		}, []string{"event"}),
		SyncCounter: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cmdtree_definition_sync_total",
			Help: "Slash command definition sync operations",
		}, []string{"scope", "result"}),
		gatherer: reg,
	}
}

// Middleware counts and times every dispatched command.
func (m *Metrics) Middleware() cmd.Middleware {
	return func(next cmd.Handler) cmd.Handler {
		return func(ctx context.Context, inv *cmd.Invocation) (cmd.Response, error) {
			start := time.Now()
			resp, err := next(ctx, inv)
			m.CommandDuration.WithLabelValues(inv.Path).Observe(time.Since(start).Seconds())
			m.CommandCounter.WithLabelValues(inv.Path, outcome(resp, err)).Inc()
			return resp, err
		}
	}
}

// InteractionMiddleware counts every routed interaction.
func (m *Metrics) InteractionMiddleware() cmd.InteractionMiddleware {
	return func(next cmd.InteractionHandler) cmd.InteractionHandler {
		return func(ctx context.Context, in *cmd.Interaction) (cmd.Response, error) {
			resp, err := next(ctx, in)
			m.InteractionCounter.WithLabelValues(in.Kind.String(), outcome(resp, err)).Inc()
			return resp, err
		}
	}
}

// ObserveResult records what middleware cannot see: unmatched events and
// decode failures, which stop before the handler chain.
func (m *Metrics) ObserveResult(ev cmd.Event, res cmd.Result) {
	kind := "command"
	if _, ok := ev.(*cmd.InteractionEvent); ok {
		kind = "interaction"
	}
	switch {
	case !res.Matched:
		m.UnmatchedCounter.WithLabelValues(kind).Inc()
	case kind == "command" && cmd.IsDecodeError(res.Err):
		m.CommandCounter.WithLabelValues(res.Target, "decode_error").Inc()
	}
}

// ObserveSync records one definition sync step.
func (m *Metrics) ObserveSync(guildID, result string) {
	scope := "guild"
	if guildID == "" {
		scope = "global"
	}
	m.SyncCounter.WithLabelValues(scope, result).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[INFO] Metrics listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func outcome(resp cmd.Response, err error) string {
	switch {
	case err != nil:
		return "error"
	case resp.Status == cmd.StatusError:
		return "rejected"
	default:
		return "ok"
	}
}
