package evaluator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sigalert/internal/alertcfg"
)

func TestCooloffGateSuppressesWithinInterval(t *testing.T) {
	gate := NewCooloffGate()
	alert := &alertcfg.Alert{
		Condition: alertcfg.DeviationCondition{Signal: "server_load_1m", Difference: 50},
		Cooloff:   alertcfg.Duration{Duration: 10 * time.Second},
	}

	now := time.Now().UTC()
	require.True(t, gate.Allow(alert, now), "first notification must be allowed")
	assert.False(t, gate.Allow(alert, now.Add(5*time.Second)), "second notification within cooloff must be suppressed")
	assert.True(t, gate.Allow(alert, now.Add(10*time.Second)), "notification at exactly the cooloff boundary must be allowed")
}

func TestCooloffGateFallsBackToTimeframe(t *testing.T) {
	gate := NewCooloffGate()
	alert := &alertcfg.Alert{
		Condition: alertcfg.DeviationCondition{
			Signal:    "server_load_1m",
			Timeframe: alertcfg.Duration{Duration: time.Minute},
			Difference: 50,
		},
	}

	now := time.Now().UTC()
	require.True(t, gate.Allow(alert, now))
	assert.False(t, gate.Allow(alert, now.Add(30*time.Second)))
	assert.True(t, gate.Allow(alert, now.Add(time.Minute)))
}
