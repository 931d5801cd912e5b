package pager

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadWrapsAtWidth(t *testing.T) {
	tests := []struct {
		name  string
		input string
		width int
	}{
		{"short text unchanged", "Hello world", 80},
		{"long text wrapped", "This is a very long sentence that should be wrapped at the configured display width for the small screen.", 20},
		{"single huge word chopped", "Pneumonoultramicroscopicsilicovolcanoconiosis", 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Load(tt.input, tt.width, 5, false)
			for i, line := range p.Lines() {
				assert.LessOrEqual(t, len([]rune(line)), tt.width,
					"line %d exceeds wrap width: %q", i, line)
			}
		})
	}
}

func TestScrollClamping(t *testing.T) {
	// Eight one-word lines, three visible: max scroll position is 5.
	p := Load("A\nB\nC\nD\nE\nF\nG\nH", 20, 3, false)

	assert.Equal(t, 8, p.TotalLines())
	assert.False(t, p.ScrollUp(), "scroll up at top must report no change")
	assert.Equal(t, 0, p.ScrollPos())

	assert.True(t, p.ScrollDown())
	assert.Equal(t, 3, p.ScrollPos())
	assert.True(t, p.ScrollDown())
	assert.Equal(t, 5, p.ScrollPos(), "must clamp at total-linesPerPage")
	assert.False(t, p.ScrollDown(), "scroll down at bottom must report no change")
	assert.Equal(t, 5, p.ScrollPos())

	assert.True(t, p.ScrollUp())
	assert.Equal(t, 2, p.ScrollPos())
}

func TestVerseSplitting(t *testing.T) {
	p := Load("old pond stillness / a frog leaps into water / sound of the splash", 40, 3, true)

	lines := p.Lines()
	assert.Equal(t, []string{
		"old pond stillness",
		"a frog leaps into water",
		"sound of the splash",
	}, lines)

	// Without the verse flag the delimiter is ordinary text.
	p = Load("one / two", 40, 3, false)
	assert.Equal(t, []string{"one / two"}, p.Lines())
}

func TestIsVerseLabel(t *testing.T) {
	assert.True(t, IsVerseLabel("Haiku"))
	assert.True(t, IsVerseLabel("Short Poem"))
	assert.False(t, IsVerseLabel("Describe"))
}

func TestIndicator(t *testing.T) {
	p := Load("A\nB\nC\nD\nE\nF\nG\nH", 20, 3, false)
	assert.Equal(t, "▼ go down", p.Indicator())

	p.ScrollDown()
	assert.Equal(t, "▲ go up  ▼ go down", p.Indicator())

	p.ScrollDown() // clamped at bottom
	assert.Equal(t, "▲ go up", p.Indicator())

	single := Load("just one line", 40, 3, false)
	assert.Equal(t, "page 1/1", single.Indicator())
}

func TestPageWindow(t *testing.T) {
	p := Load("A\nB\nC\nD\nE", 20, 3, false)
	assert.Equal(t, []string{"A", "B", "C"}, p.Page())

	p.ScrollDown()
	assert.Equal(t, []string{"C", "D", "E"}, p.Page())
}
