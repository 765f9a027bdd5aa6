package alertcfg

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDurationUnmarshalUnitMap(t *testing.T) {
	var d Duration
	err := yaml.Unmarshal([]byte("minutes: 30"), &d)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, d.Duration)
}

func TestDurationUnmarshalMultipleUnits(t *testing.T) {
	var d Duration
	err := yaml.Unmarshal([]byte("minutes: 1\nseconds: 30"), &d)
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, d.Duration)
}

func TestDurationUnmarshalScalar(t *testing.T) {
	var d Duration
	err := yaml.Unmarshal([]byte(`"10s"`), &d)
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, d.Duration)
}

func TestDurationUnmarshalUnknownUnit(t *testing.T) {
	var d Duration
	err := yaml.Unmarshal([]byte("fortnights: 1"), &d)
	assert.Error(t, err)
}

func TestDurationJSONRoundTrip(t *testing.T) {
	d := Duration{Duration: 90 * time.Second}
	data, err := d.MarshalJSON()
	require.NoError(t, err)

	var decoded Duration
	require.NoError(t, decoded.UnmarshalJSON(data))
	assert.Equal(t, d.Duration, decoded.Duration)
}
