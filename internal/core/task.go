// Package core wires the per-alert pipeline spec §2 describes: Scheduler ->
// Signal producer -> Time-Series Window -> Deviation Evaluator -> Cooloff
// Gate -> Renderer -> Sink. It is the Go analogue of the original's
// AlertTask: one task per alert, registered with the Scheduler at the
// alert's poll_rate.
package core

import (
	"context"
	"fmt"
	"time"

	"sigalert/internal/alertcfg"
	"sigalert/internal/evaluator"
	"sigalert/internal/signal"
	"sigalert/internal/sink"
	"sigalert/internal/timeseries"
)

// Observer receives evaluation-lifecycle events for metrics. A nil Observer
// is valid; every method is called unconditionally so real implementations
// don't need nil checks of their own.
type Observer interface {
	AlertEvaluated(alertID string)
	DeviationFired(alertID string)
	CooloffSuppressed(alertID string)
	Notified(sinkKind string)
	SamplerError(signalName string)
	SamplerDuration(signalName string, d time.Duration)
}

type nopObserver struct{}

func (nopObserver) AlertEvaluated(string)             {}
func (nopObserver) DeviationFired(string)              {}
func (nopObserver) CooloffSuppressed(string)           {}
func (nopObserver) Notified(string)                    {}
func (nopObserver) SamplerError(string)                {}
func (nopObserver) SamplerDuration(string, time.Duration) {}

// AlertTask binds one alert to its signal sampler, window, cooloff gate, and
// sink, and is the function handed to the Scheduler (spec §4.3/§4.4).
type AlertTask struct {
	Alert    *alertcfg.Alert
	Registry *signal.Registry
	Windows  *timeseries.Store
	Cooloff  *evaluator.CooloffGate
	Sink     sink.Sink
	SinkKind string
	Observer Observer
}

// NewAlertTask returns an AlertTask with a no-op Observer if obs is nil.
func NewAlertTask(alert *alertcfg.Alert, registry *signal.Registry, windows *timeseries.Store, cooloff *evaluator.CooloffGate, deliverySink sink.Sink, sinkKind string, obs Observer) *AlertTask {
	if obs == nil {
		obs = nopObserver{}
	}
	return &AlertTask{
		Alert:    alert,
		Registry: registry,
		Windows:  windows,
		Cooloff:  cooloff,
		Sink:     deliverySink,
		SinkKind: sinkKind,
		Observer: obs,
	}
}

// Run executes one pass: sample, ingest, truncate, evaluate, and (if
// warranted) deliver. Sampler and sink failures are returned as errors,
// which the scheduler logs before carrying on with later iterations; an
// empty window or a zero denominator is skipped silently and returns nil.
func (t *AlertTask) Run(ctx context.Context) error {
	name := t.Alert.Condition.Signal

	start := time.Now()
	value, err := t.Registry.Sample(ctx, name)
	t.Observer.SamplerDuration(name, time.Since(start))
	if err != nil {
		t.Observer.SamplerError(name)
		return fmt.Errorf("core: sample %s: %w", name, err)
	}

	now := time.Now().UTC()
	t.Windows.Ingest(name, value, now)
	readings := t.Windows.Truncate(name, now, t.Alert.Condition.Timeframe.Duration)

	t.Observer.AlertEvaluated(t.Alert.ID())

	reading, ok := evaluator.Evaluate(t.Alert.Strategy, readings)
	if !ok {
		return nil
	}

	if reading.Diff < float64(t.Alert.Condition.Difference) {
		return nil
	}

	t.Observer.DeviationFired(t.Alert.ID())

	if !t.Cooloff.Allow(t.Alert, now) {
		t.Observer.CooloffSuppressed(t.Alert.ID())
		return nil
	}

	if err := t.Sink(ctx, t.Alert, reading); err != nil {
		return fmt.Errorf("core: sink delivery for alert %s: %w", t.Alert.ID(), err)
	}

	t.Observer.Notified(t.SinkKind)
	return nil
}
