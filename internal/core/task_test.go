package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sigalert/internal/alertcfg"
	"sigalert/internal/evaluator"
	"sigalert/internal/signal"
	"sigalert/internal/timeseries"
)

type scriptedSampler struct {
	values []float64
	i      int
}

func (s *scriptedSampler) Sample(context.Context) (float64, error) {
	v := s.values[s.i]
	if s.i < len(s.values)-1 {
		s.i++
	}
	return v, nil
}

func newTestAlert() *alertcfg.Alert {
	a := &alertcfg.Alert{
		Condition: alertcfg.DeviationCondition{
			Signal:     "server_load_1m",
			Timeframe:  alertcfg.Duration{Duration: time.Minute},
			Difference: 50,
		},
		Message:  "{{signal}} {{direction}} {{diff}}%",
		Cooloff:  alertcfg.Duration{Duration: 10 * time.Second},
		PollRate: 1,
	}
	a.Normalize()
	return a
}

func TestAlertTaskFiresOnThresholdCrossing(t *testing.T) {
	registry := signal.NewRegistry()
	registry.Register("server_load_1m", &scriptedSampler{values: []float64{1.0, 2.5}})

	windows := timeseries.NewStore()
	cooloff := evaluator.NewCooloffGate()

	var delivered []string
	deliverySink := func(_ context.Context, _ *alertcfg.Alert, reading evaluator.SignalReading) error {
		delivered = append(delivered, reading.Direction())
		return nil
	}

	task := NewAlertTask(newTestAlert(), registry, windows, cooloff, deliverySink, "test", nil)

	require.NoError(t, task.Run(context.Background()))
	require.NoError(t, task.Run(context.Background()))

	require.Len(t, delivered, 1, "exactly one notification expected")
	assert.Equal(t, "up", delivered[0])
}

func TestAlertTaskRespectsCooloff(t *testing.T) {
	registry := signal.NewRegistry()
	registry.Register("server_load_1m", &scriptedSampler{values: []float64{1.0, 2.5, 5.0}})

	windows := timeseries.NewStore()
	cooloff := evaluator.NewCooloffGate()

	deliveries := 0
	deliverySink := func(context.Context, *alertcfg.Alert, evaluator.SignalReading) error {
		deliveries++
		return nil
	}

	alert := newTestAlert()
	task := NewAlertTask(alert, registry, windows, cooloff, deliverySink, "test", nil)

	require.NoError(t, task.Run(context.Background()))
	require.NoError(t, task.Run(context.Background()))
	require.Equal(t, 1, deliveries)

	require.NoError(t, task.Run(context.Background()))
	assert.Equal(t, 1, deliveries, "still within cooloff, must not notify again")
}

func TestAlertTaskDoesNotNotifyBelowThreshold(t *testing.T) {
	registry := signal.NewRegistry()
	registry.Register("server_load_1m", &scriptedSampler{values: []float64{10.0, 10.5}})

	windows := timeseries.NewStore()
	cooloff := evaluator.NewCooloffGate()

	deliveries := 0
	deliverySink := func(context.Context, *alertcfg.Alert, evaluator.SignalReading) error {
		deliveries++
		return nil
	}

	task := NewAlertTask(newTestAlert(), registry, windows, cooloff, deliverySink, "test", nil)
	require.NoError(t, task.Run(context.Background()))
	require.NoError(t, task.Run(context.Background()))

	assert.Equal(t, 0, deliveries)
}
