package modes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCycleNextClosure(t *testing.T) {
	tests := []struct {
		name  string
		items []string
	}{
		{"single", []string{"a"}},
		{"pair", []string{"a", "b"}},
		{"five", []string{"a", "b", "c", "d", "e"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCycle(tt.items)
			start := c.Current()

			for i := 0; i < len(tt.items); i++ {
				c.Next()
			}
			assert.Equal(t, start, c.Current(), "N calls to Next should return to start")

			for i := 0; i < len(tt.items); i++ {
				c.Previous()
			}
			assert.Equal(t, start, c.Current(), "N calls to Previous should return to start")
		})
	}
}

func TestCycleNegativeWraparound(t *testing.T) {
	c := NewCycle([]int{10, 20, 30})

	assert.Equal(t, 30, c.Previous())
	assert.Equal(t, 2, c.Index())
	assert.Equal(t, 20, c.Previous())
	assert.Equal(t, 10, c.Previous())
	assert.Equal(t, 0, c.Index())
}

func TestCycleQualityModes(t *testing.T) {
	qm := DefaultQualityModes()
	require.NotEmpty(t, qm)

	c := NewCycle(qm)
	assert.Equal(t, "Eco", c.Current().Label)
	assert.Equal(t, "Standard", c.Next().Label)
	assert.Equal(t, "Eco", c.Previous().Label)
	assert.Equal(t, "Ultra", c.Previous().Label)
}

func TestDefaultPromptsNonEmpty(t *testing.T) {
	for _, p := range DefaultPrompts() {
		assert.NotEmpty(t, p.Label)
		assert.NotEmpty(t, p.Prompt)
	}
}
