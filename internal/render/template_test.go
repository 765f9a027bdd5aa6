package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderInterpolatesFields(t *testing.T) {
	out := Render("{{signal}} is up {{diff}}% ({{direction}})", map[string]string{
		"signal":    "server_load_1m",
		"diff":      "60",
		"direction": "up",
	})
	assert.Equal(t, "server_load_1m is up 60% (up)", out)
}

func TestRenderLeavesUnknownPlaceholdersUntouched(t *testing.T) {
	out := Render("value: {{nonexistent}}", map[string]string{"signal": "x"})
	assert.Equal(t, "value: {{nonexistent}}", out)
}

func TestRenderToleratesWhitespaceInsidePlaceholder(t *testing.T) {
	out := Render("{{ signal }}", map[string]string{"signal": "btc_price"})
	assert.Equal(t, "btc_price", out)
}

func TestMergeLaterWins(t *testing.T) {
	merged := Merge(map[string]string{"a": "1", "b": "2"}, map[string]string{"b": "3"})
	assert.Equal(t, "1", merged["a"])
	assert.Equal(t, "3", merged["b"])
}
