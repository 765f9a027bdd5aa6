package evaluator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sigalert/internal/alertcfg"
	"sigalert/internal/timeseries"
)

func reading(t time.Time, v float64) timeseries.Reading {
	return timeseries.Reading{Timestamp: t, Value: v}
}

func TestDeviation(t *testing.T) {
	diff, ok := Deviation(1.0, 2.5)
	require.True(t, ok)
	assert.Equal(t, 60.0, diff)

	diff, ok = Deviation(5, 5)
	require.True(t, ok)
	assert.Equal(t, 0.0, diff)

	_, ok = Deviation(5, 0)
	assert.False(t, ok, "zero last must be skipped, not divide by zero")
}

func TestEvaluateOldestNewest(t *testing.T) {
	now := time.Now().UTC()
	readings := []timeseries.Reading{
		reading(now, 1.0),
		reading(now.Add(time.Second), 2.5),
	}

	r, ok := Evaluate(alertcfg.StrategyOldestNewest, readings)
	require.True(t, ok)
	assert.Equal(t, 60.0, r.Diff)
	assert.True(t, r.Increased)
	assert.Equal(t, "up", r.Direction())
}

func TestEvaluateMinMax(t *testing.T) {
	now := time.Now().UTC()
	values := []float64{10, 8, 12, 9, 13}
	var readings []timeseries.Reading
	for i, v := range values {
		readings = append(readings, reading(now.Add(time.Duration(i)*time.Second), v))
	}

	r, ok := Evaluate(alertcfg.StrategyMinMax, readings)
	require.True(t, ok)
	assert.Equal(t, 8.0, r.First)
	assert.Equal(t, 13.0, r.Last)
	assert.Equal(t, 38.0, r.Diff)
	assert.True(t, r.Increased)
}

func TestEvaluateSinglePointIsInert(t *testing.T) {
	now := time.Now().UTC()
	readings := []timeseries.Reading{reading(now, 42.0)}

	r, ok := Evaluate(alertcfg.StrategyOldestNewest, readings)
	require.True(t, ok)
	assert.Equal(t, 0.0, r.Diff)
}

func TestEvaluateEmptyWindow(t *testing.T) {
	_, ok := Evaluate(alertcfg.StrategyOldestNewest, nil)
	assert.False(t, ok)
}
