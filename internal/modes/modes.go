package modes

// QualityMode is a named capture preset bundling the sensor resolution with
// the JPEG sizes we expect it to produce. The sizes drive the pre-flight
// checks before an image is handed to the vision client.
type QualityMode struct {
	Resolution    Resolution
	Label         string
	TargetSizeKB  int
	MaxExpectedKB int
	Icon          rune
}

// Resolution identifies a sensor frame size preset.
type Resolution int

const (
	ResQVGA Resolution = iota // 320x240
	ResVGA                    // 640x480
	ResXGA                    // 1024x768
	ResSXGA                   // 1280x1024
	ResUXGA                   // 1600x1200
)

// PromptDefinition pairs a short label shown on the status bar with the full
// prompt text sent alongside the image.
type PromptDefinition struct {
	Label  string
	Prompt string
}

// Cycle selects one element of a fixed, ordered sequence by index. Next and
// Previous wrap with modulo arithmetic so cycling is defined for any length,
// including single-element sequences and negative-direction wraparound.
// Selecting is a side-effect-free read; applying the selection to hardware is
// the caller's responsibility.
type Cycle[T any] struct {
	items []T
	index int
}

// NewCycle creates a selector over items. The slice must be non-empty; the
// caller validates configuration before constructing one.
func NewCycle[T any](items []T) *Cycle[T] {
	return &Cycle[T]{items: items}
}

// Len returns the number of selectable items.
func (c *Cycle[T]) Len() int {
	return len(c.items)
}

// Index returns the current position.
func (c *Cycle[T]) Index() int {
	return c.index
}

// Current returns the selected item.
func (c *Cycle[T]) Current() T {
	return c.items[c.index]
}

// Next advances the selection by one, wrapping past the end.
func (c *Cycle[T]) Next() T {
	c.index = (c.index + 1) % len(c.items)
	return c.items[c.index]
}

// Previous moves the selection back by one, wrapping past the start.
func (c *Cycle[T]) Previous() T {
	c.index = (c.index - 1 + len(c.items)) % len(c.items)
	return c.items[c.index]
}

// DefaultQualityModes returns the factory preset table, ordered from smallest
// to largest capture.
func DefaultQualityModes() []QualityMode {
	return []QualityMode{
		{Resolution: ResQVGA, Label: "Eco", TargetSizeKB: 20, MaxExpectedKB: 60, Icon: '▂'},
		{Resolution: ResVGA, Label: "Standard", TargetSizeKB: 60, MaxExpectedKB: 160, Icon: '▃'},
		{Resolution: ResXGA, Label: "Fine", TargetSizeKB: 140, MaxExpectedKB: 350, Icon: '▅'},
		{Resolution: ResSXGA, Label: "Super", TargetSizeKB: 220, MaxExpectedKB: 520, Icon: '▆'},
		{Resolution: ResUXGA, Label: "Ultra", TargetSizeKB: 320, MaxExpectedKB: 780, Icon: '█'},
	}
}

// DefaultPrompts returns the factory prompt table used when settings.toml
// does not define its own.
func DefaultPrompts() []PromptDefinition {
	return []PromptDefinition{
		{Label: "Describe", Prompt: "Describe what you see in this image in two or three short sentences."},
		{Label: "Identify", Prompt: "Identify the main object in this image and state what it is used for."},
		{Label: "Read", Prompt: "Read any text visible in this image and transcribe it exactly."},
		{Label: "Haiku", Prompt: "Write a haiku about this image. Separate the three lines with / characters."},
	}
}
