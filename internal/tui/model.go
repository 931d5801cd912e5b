// Package tui is the terminal simulator for the appliance: keyboard keys
// stand in for the physical buttons and a bordered box stands in for the
// panel, while the real controller loop runs underneath unchanged.
package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/cloudfx/visioncam/internal/app"
	"github.com/cloudfx/visioncam/internal/device"
	"github.com/cloudfx/visioncam/internal/tui/styles"
)

// tickInterval paces the controller loop.
const tickInterval = 50 * time.Millisecond

// tickMsg advances the controller by one loop iteration.
type tickMsg time.Time

// keyMap binds keyboard keys to the appliance's buttons.
type keyMap struct {
	Shutter   key.Binding
	Autofocus key.Binding
	Up        key.Binding
	Down      key.Binding
	Left      key.Binding
	Right     key.Binding
	Select    key.Binding
	OK        key.Binding
	Quit      key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Shutter:   key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "shutter")),
		Autofocus: key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "autofocus")),
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑", "up")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓", "down")),
		Left:      key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←", "left")),
		Right:     key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→", "right")),
		Select:    key.NewBinding(key.WithKeys("tab", "s"), key.WithHelp("tab", "select")),
		OK:        key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "ok")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// Model is the bubbletea model wrapping the controller and its simulated
// devices.
type Model struct {
	ctx        context.Context
	controller *app.Controller
	input      *device.QueueInput
	display    *device.BufferDisplay
	theme      *styles.Theme
	keys       keyMap

	width  int
	height int
}

// NewModel creates the simulator model. The input queue and display buffer
// must be the same instances the controller was wired with.
func NewModel(ctx context.Context, controller *app.Controller, input *device.QueueInput, display *device.BufferDisplay) *Model {
	return &Model{
		ctx:        ctx,
		controller: controller,
		input:      input,
		display:    display,
		theme:      styles.NewTheme(),
		keys:       newKeyMap(),
	}
}

// Init starts the tick loop.
func (m *Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update feeds key presses to the button queue and runs the controller one
// tick at a time.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Shutter):
			m.input.Push(device.EventShutterShort)
		case key.Matches(msg, m.keys.Autofocus):
			m.input.Push(device.EventShutterLong)
		case key.Matches(msg, m.keys.Up):
			m.input.Push(device.EventUp)
		case key.Matches(msg, m.keys.Down):
			m.input.Push(device.EventDown)
		case key.Matches(msg, m.keys.Left):
			m.input.Push(device.EventLeft)
		case key.Matches(msg, m.keys.Right):
			m.input.Push(device.EventRight)
		case key.Matches(msg, m.keys.Select):
			m.input.Push(device.EventSelect)
		case key.Matches(msg, m.keys.OK):
			m.input.Push(device.EventOK)
		}

	case tickMsg:
		// The analyze call blocks this tick for its full duration; that is
		// the appliance's real behavior and is accepted here too.
		m.controller.Tick(m.ctx)
		return m, tick()
	}

	return m, nil
}

// View draws the simulated panel and the key help.
func (m *Model) View() string {
	lines, overlay, clr := m.display.Snapshot()

	var b strings.Builder
	b.WriteString(m.theme.Title.Render("visioncam"))
	b.WriteString("\n")

	content := strings.Join(lines, "\n")
	if overlay != "" {
		style := m.theme.Busy
		if clr == device.OverlayError {
			style = m.theme.Error
		}
		content = style.Render(overlay)
	}
	b.WriteString(m.theme.Screen.Render(content))
	b.WriteString("\n")

	b.WriteString(m.theme.Status.Render("state: " + m.controller.State().String()))
	b.WriteString("\n")
	b.WriteString(m.theme.Help.Render(
		"space shutter • f autofocus • ↑↓ quality/scroll • ←→ prompt/browse • tab gallery • enter ok • q quit"))
	return b.String()
}
