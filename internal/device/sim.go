package device

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"math/rand"
	"sync"

	"github.com/cloudfx/visioncam/internal/modes"
)

// resolutionSize maps a quality preset to pixel dimensions.
func resolutionSize(r modes.Resolution) (w, h int) {
	switch r {
	case modes.ResQVGA:
		return 320, 240
	case modes.ResVGA:
		return 640, 480
	case modes.ResXGA:
		return 1024, 768
	case modes.ResSXGA:
		return 1280, 1024
	case modes.ResUXGA:
		return 1600, 1200
	default:
		return 640, 480
	}
}

// ImageFrame adapts a decoded image.Image to the Frame interface.
type ImageFrame struct {
	Img image.Image
}

func (f ImageFrame) Width() int  { return f.Img.Bounds().Dx() }
func (f ImageFrame) Height() int { return f.Img.Bounds().Dy() }

func (f ImageFrame) PixelRGB(x, y int) (uint8, uint8, uint8) {
	b := f.Img.Bounds()
	r, g, bl, _ := f.Img.At(b.Min.X+x, b.Min.Y+y).RGBA()
	return uint8(r >> 8), uint8(g >> 8), uint8(bl >> 8)
}

// SimCamera is the simulator's stand-in for the sensor driver. Stills are
// synthetic gradient JPEGs written to storage as sequentially numbered
// img_NNNN.jpg files, so the gallery and response store operate on real
// files during development.
type SimCamera struct {
	mu      sync.Mutex
	storage *Storage
	mode    modes.QualityMode
	seq     int
	flash   bool
	rng     *rand.Rand
}

// NewSimCamera creates a simulator camera writing stills through storage.
func NewSimCamera(storage *Storage, seed int64) *SimCamera {
	return &SimCamera{
		storage: storage,
		mode:    modes.DefaultQualityModes()[1],
		rng:     rand.New(rand.NewSource(seed)),
	}
}

// SetResolution applies the quality mode to subsequent captures.
func (c *SimCamera) SetResolution(mode modes.QualityMode) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = mode
	return nil
}

// SetFlash records the flash decision; the synthetic scene brightens when it
// is on.
func (c *SimCamera) SetFlash(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.flash = on
}

// Autofocus is a no-op for the simulator.
func (c *SimCamera) Autofocus() error {
	return nil
}

// CaptureFrame returns a small synthetic viewfinder frame.
func (c *SimCamera) CaptureFrame() (Frame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ImageFrame{Img: c.scene(64, 48)}, nil
}

// CaptureStill renders the synthetic scene at the selected resolution,
// encodes it as JPEG, and writes it to storage under the next sequential
// name.
func (c *SimCamera) CaptureStill() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	w, h := resolutionSize(c.mode.Resolution)
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, c.scene(w, h), &jpeg.Options{Quality: 85}); err != nil {
		return "", fmt.Errorf("encode still: %w", err)
	}

	c.seq++
	name := fmt.Sprintf("img_%04d.jpg", c.seq)
	if err := c.storage.WriteFile(name, buf.Bytes()); err != nil {
		return "", fmt.Errorf("write still: %w", err)
	}
	return name, nil
}

// scene draws a gradient with a little noise. Flash lifts the base level.
func (c *SimCamera) scene(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	base := 40
	if c.flash {
		base = 140
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := base + (x*120)/w + c.rng.Intn(16)
			if v > 255 {
				v = 255
			}
			img.Set(x, y, color.RGBA{uint8(v), uint8(v), uint8(v / 2), 255})
		}
	}
	return img
}

// QueueInput is a non-blocking button source fed by the simulator front-end
// (and by tests).
type QueueInput struct {
	mu     sync.Mutex
	events []Event
}

// Push appends a button event.
func (q *QueueInput) Push(e Event) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.events = append(q.events, e)
}

// Poll pops the oldest pending event, if any.
func (q *QueueInput) Poll() (Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.events) == 0 {
		return EventNone, false
	}
	e := q.events[0]
	q.events = q.events[1:]
	return e, true
}

// BufferDisplay collects rendered output in memory. The simulator's View
// reads it back; tests assert on it.
type BufferDisplay struct {
	mu      sync.Mutex
	lines   []string
	overlay string
	color   OverlayColor
	dirty   bool
}

func (d *BufferDisplay) RenderLines(lines []string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lines = append([]string(nil), lines...)
	d.overlay = ""
	d.dirty = true
}

func (d *BufferDisplay) RenderOverlay(text string, color OverlayColor) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.overlay = text
	d.color = color
	d.dirty = true
}

func (d *BufferDisplay) Refresh() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dirty = false
}

// Snapshot returns the current text area, overlay, and overlay color.
func (d *BufferDisplay) Snapshot() ([]string, string, OverlayColor) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.lines...), d.overlay, d.color
}
