package signal

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryIsBuiltinIsCaseInsensitive(t *testing.T) {
	r := NewRegistry()
	r.Register("server_load_1m", SamplerFunc(func(context.Context) (float64, error) { return 1.0, nil }))

	assert.True(t, r.IsBuiltin("server_load_1m"))
	assert.True(t, r.IsBuiltin("SERVER_LOAD_1M"))
	assert.False(t, r.IsBuiltin("not_a_signal"))
}

func TestRegistrySampleUnknownName(t *testing.T) {
	r := NewRegistry()
	_, err := r.Sample(context.Background(), "nonexistent")
	assert.Error(t, err)
}

func TestRegistryNamesSorted(t *testing.T) {
	r := NewRegistry()
	noop := SamplerFunc(func(context.Context) (float64, error) { return 0, nil })
	r.Register("zeta", noop)
	r.Register("alpha", noop)

	require.Equal(t, []string{"alpha", "zeta"}, r.Names())
}

func TestHostSignalsRegistersEveryBuiltin(t *testing.T) {
	r := NewRegistry()
	RegisterHostSignals(r, "/")

	for _, name := range []string{
		"server_load_1m", "server_load_5m", "server_load_15m",
		"server_memory_usage_percentage", "server_memory_usage_used", "server_memory_usage_free",
		"server_memory_swap_usage_percentage", "server_memory_swap_usage_used", "server_memory_swap_usage_free",
		"server_disk_usage_percent", "server_disk_usage_free", "server_disk_usage_used",
	} {
		assert.True(t, r.IsBuiltin(name), "expected %s to be registered", name)
	}
}
