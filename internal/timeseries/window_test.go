package timeseries

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindowTruncation(t *testing.T) {
	store := NewStore()
	now := time.Now().UTC()

	store.Ingest("server_load_1m", 1.0, now.Add(-10*time.Minute))
	store.Ingest("server_load_1m", 2.0, now.Add(-1*time.Minute))
	store.Ingest("server_load_1m", 3.0, now)

	readings := store.Truncate("server_load_1m", now, 2*time.Minute)

	require.Len(t, readings, 2)
	assert.Equal(t, 2.0, readings[0].Value)
	assert.Equal(t, 3.0, readings[1].Value)
}

func TestWindowAppendKeepsSortedOrder(t *testing.T) {
	store := NewStore()
	now := time.Now().UTC()

	store.Ingest("signal", 3.0, now.Add(2*time.Second))
	store.Ingest("signal", 1.0, now)
	store.Ingest("signal", 2.0, now.Add(1*time.Second))

	readings := store.Snapshot("signal")
	require.Len(t, readings, 3)
	assert.Equal(t, []float64{1.0, 2.0, 3.0}, []float64{readings[0].Value, readings[1].Value, readings[2].Value})
}

func TestWindowTruncationDropsNaN(t *testing.T) {
	store := NewStore()
	now := time.Now().UTC()

	store.Ingest("signal", nan(), now)
	store.Ingest("signal", 5.0, now)

	readings := store.Truncate("signal", now, time.Minute)
	require.Len(t, readings, 1)
	assert.Equal(t, 5.0, readings[0].Value)
}

func nan() float64 {
	var zero float64
	return zero / zero
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	readings := []Reading{
		{Timestamp: now, Value: 1.5},
		{Timestamp: now.Add(time.Second), Value: -2.25},
	}

	data := Encode(readings)
	decoded, err := Decode(data)
	require.NoError(t, err)
	require.Len(t, decoded, 2)
	assert.True(t, readings[0].Timestamp.Equal(decoded[0].Timestamp))
	assert.Equal(t, readings[0].Value, decoded[0].Value)
	assert.True(t, readings[1].Timestamp.Equal(decoded[1].Timestamp))
	assert.Equal(t, readings[1].Value, decoded[1].Value)
}

func TestDecodeRejectsTruncatedFrame(t *testing.T) {
	_, err := Decode([]byte{0, 0, 0, 2, 1})
	assert.Error(t, err)
}
