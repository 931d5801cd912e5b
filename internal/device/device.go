// Package device defines the narrow hardware interfaces the controller is
// written against: camera, display, button input, and removable storage.
// Real appliance drivers and the terminal simulator both implement them, and
// tests substitute fakes.
package device

import "github.com/cloudfx/visioncam/internal/modes"

// Event is a discrete button edge event polled once per loop tick.
type Event int

const (
	EventNone Event = iota
	EventShutterShort
	EventShutterLong
	EventUp
	EventDown
	EventLeft
	EventRight
	EventSelect
	EventOK
)

// String returns the event name used in log records.
func (e Event) String() string {
	switch e {
	case EventShutterShort:
		return "shutter_short"
	case EventShutterLong:
		return "shutter_long"
	case EventUp:
		return "up"
	case EventDown:
		return "down"
	case EventLeft:
		return "left"
	case EventRight:
		return "right"
	case EventSelect:
		return "select"
	case EventOK:
		return "ok"
	default:
		return "none"
	}
}

// Input polls button events. Poll must never block; it returns EventNone and
// false when no event is pending this tick.
type Input interface {
	Poll() (Event, bool)
}

// Frame is a live viewfinder frame exposing per-pixel access for brightness
// sampling.
type Frame interface {
	Width() int
	Height() int
	// PixelRGB returns the 8-bit color components at (x, y).
	PixelRGB(x, y int) (r, g, b uint8)
}

// Camera abstracts the sensor driver.
type Camera interface {
	// CaptureFrame grabs a live frame for brightness sampling. It may fail
	// transiently while the sensor pipeline warms up.
	CaptureFrame() (Frame, error)
	// CaptureStill takes a full-quality still, writes it to storage, and
	// returns the stored file path.
	CaptureStill() (string, error)
	// SetResolution applies a quality mode to the sensor.
	SetResolution(mode modes.QualityMode) error
	// Autofocus runs one autofocus pass.
	Autofocus() error
	// SetFlash turns the flash LED on or off for the next still.
	SetFlash(on bool)
}

// OverlayColor selects the accent color of a rendered overlay.
type OverlayColor int

const (
	OverlayNeutral OverlayColor = iota
	OverlayBusy
	OverlayError
)

// Display abstracts the panel driver. Rendering is synchronous; callers must
// not mutate buffers they have handed to the display until Refresh returns.
type Display interface {
	// RenderLines replaces the text area with the given lines.
	RenderLines(lines []string)
	// RenderOverlay shows a short one-line banner over the text area.
	RenderOverlay(text string, color OverlayColor)
	// Refresh pushes the composed frame to the panel.
	Refresh()
}
