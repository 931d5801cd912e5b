// Package app drives the capture/analyze/display loop: a finite-state
// controller that polls button input once per tick, advances by at most one
// transition, and renders through the display interface.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/cloudfx/visioncam/internal/config"
	"github.com/cloudfx/visioncam/internal/device"
	"github.com/cloudfx/visioncam/internal/flash"
	"github.com/cloudfx/visioncam/internal/gallery"
	"github.com/cloudfx/visioncam/internal/modes"
	"github.com/cloudfx/visioncam/internal/pager"
	"github.com/cloudfx/visioncam/internal/vision"
)

// Analyzer is the part of the vision client the controller needs.
type Analyzer interface {
	Analyze(ctx context.Context, imageBytes []byte, promptText string) vision.Outcome
}

// Controller owns the application state and the current capture/response for
// the duration of one cycle. It is single-threaded by construction: Tick is
// only ever called from one goroutine.
type Controller struct {
	cfg     *config.Config
	camera  device.Camera
	display device.Display
	input   device.Input
	storage *device.Storage
	client  Analyzer
	sampler *flash.Sampler
	store   *gallery.ResponseStore
	browser *gallery.Browser
	quality *modes.Cycle[modes.QualityMode]
	prompts *modes.Cycle[modes.PromptDefinition]
	log     zerolog.Logger
	now     func() time.Time

	state      State
	current    *CapturedImage
	page       *pager.Pager
	errorMsg   string
	errorUntil time.Time
	dirty      bool
}

// New wires a controller from its collaborators. The quality selector starts
// on the configured initial mode.
func New(
	cfg *config.Config,
	camera device.Camera,
	display device.Display,
	input device.Input,
	storage *device.Storage,
	client Analyzer,
	log zerolog.Logger,
) *Controller {
	quality := modes.NewCycle(modes.DefaultQualityModes())
	for i := 0; i < cfg.Camera.InitialMode; i++ {
		quality.Next()
	}

	c := &Controller{
		cfg:     cfg,
		camera:  camera,
		display: display,
		input:   input,
		storage: storage,
		client:  client,
		sampler: flash.NewSampler(cfg.Flash.DarkThreshold, log),
		store:   gallery.NewResponseStore(storage, log),
		browser: gallery.NewBrowser(storage),
		quality: quality,
		prompts: modes.NewCycle(cfg.PromptDefinitions()),
		log:     log.With().Str("component", "controller").Logger(),
		now:     time.Now,
		state:   StateViewfinder,
		dirty:   true,
	}
	_ = camera.SetResolution(quality.Current())
	return c
}

// State returns the active UI state.
func (c *Controller) State() State {
	return c.state
}

// Run executes the cooperative loop until the context is canceled, one tick
// per interval.
func (c *Controller) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Tick(ctx)
		}
	}
}

// Tick advances the loop by one iteration: poll input, make at most one
// state transition, render. A panic escaping a hardware driver is degraded
// to an error flash; the device never halts mid-session.
func (c *Controller) Tick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error().Interface("panic", r).Msg("hardware fault in tick")
			c.fail(vision.Failure(vision.ErrHardware, "hardware fault"))
			c.render()
		}
	}()

	switch c.state {
	case StateCapturing:
		// Blocking states consume no input; pending presses stay queued.
		c.performCapture()

	case StateSending:
		c.performSend(ctx)

	case StateErrorDisplay:
		// Presses during the error flash are deliberately discarded.
		c.input.Poll()
		if !c.now().Before(c.errorUntil) {
			c.setState(StateViewfinder)
		}

	default:
		if ev, ok := c.input.Poll(); ok {
			c.handleEvent(ev)
		}
	}

	c.render()
}

// handleEvent applies one button event to the current state.
func (c *Controller) handleEvent(ev device.Event) {
	c.log.Debug().Stringer("event", ev).Stringer("state", c.state).Msg("button")

	switch c.state {
	case StateViewfinder:
		c.handleViewfinder(ev)
	case StateViewing:
		c.handleViewing(ev)
	case StateBrowsing:
		c.handleBrowsing(ev)
	}
}

func (c *Controller) handleViewfinder(ev device.Event) {
	switch ev {
	case device.EventShutterShort:
		c.releaseCycle()
		c.setState(StateCapturing)

	case device.EventShutterLong:
		// Autofocus is a side effect; the state does not change.
		if err := c.camera.Autofocus(); err != nil {
			c.log.Warn().Err(err).Msg("autofocus failed")
			c.fail(vision.Failure(vision.ErrHardware, "autofocus failed"))
		}

	case device.EventUp:
		c.applyQuality(c.quality.Next())
	case device.EventDown:
		c.applyQuality(c.quality.Previous())

	case device.EventLeft:
		c.prompts.Previous()
		c.dirty = true
	case device.EventRight:
		c.prompts.Next()
		c.dirty = true

	case device.EventSelect:
		files, err := c.browser.List()
		if err != nil {
			c.fail(vision.Failure(vision.ErrStorage, "cannot read storage"))
			return
		}
		if len(files) == 0 {
			c.fail(vision.Failure(vision.ErrStorage, "no images stored"))
			return
		}
		c.setState(StateBrowsing)
	}
}

func (c *Controller) handleViewing(ev device.Event) {
	switch ev {
	case device.EventOK:
		c.releaseCycle()
		c.setState(StateViewfinder)
	case device.EventUp:
		if c.page.ScrollUp() {
			c.dirty = true
		}
	case device.EventDown:
		if c.page.ScrollDown() {
			c.dirty = true
		}
	}
}

func (c *Controller) handleBrowsing(ev device.Event) {
	switch ev {
	case device.EventLeft:
		c.browser.Previous()
		c.dirty = true
	case device.EventRight:
		c.browser.Next()
		c.dirty = true
	case device.EventSelect:
		c.setState(StateViewfinder)
	case device.EventOK:
		// Re-submit the browsed image.
		name := c.browser.Current()
		fi, err := c.storage.Stat(name)
		if err != nil {
			c.fail(vision.Failure(vision.ErrStorage, "cannot read image"))
			return
		}
		c.current = &CapturedImage{Path: name, SizeBytes: fi.Size(), CapturedAt: fi.ModTime()}
		c.setState(StateSending)
	}
}

// applyQuality pushes a newly selected mode to the sensor.
func (c *Controller) applyQuality(mode modes.QualityMode) {
	if err := c.camera.SetResolution(mode); err != nil {
		c.log.Warn().Err(err).Str("mode", mode.Label).Msg("set resolution failed")
	}
	c.dirty = true
}

// performCapture runs the auto-flash decision and takes the still, then
// hands off to the sending state.
func (c *Controller) performCapture() {
	if c.cfg.Flash.AutoEnabled {
		dark := c.sampler.IsDark(c.camera.CaptureFrame)
		c.camera.SetFlash(dark)
		defer c.camera.SetFlash(false)
	}

	path, err := c.camera.CaptureStill()
	if err != nil {
		c.log.Error().Err(err).Msg("capture failed")
		c.fail(vision.Failure(vision.ErrHardware, "capture failed"))
		return
	}

	fi, err := c.storage.Stat(path)
	if err != nil {
		c.fail(vision.Failure(vision.ErrStorage, "stored image unreadable"))
		return
	}
	if fi.Size() > int64(c.cfg.API.MaxImageKB)*1024 {
		c.fail(vision.Failure(vision.ErrEncoding,
			fmt.Sprintf("image too large (%d KB)", fi.Size()/1024)))
		return
	}

	c.current = &CapturedImage{Path: path, SizeBytes: fi.Size(), CapturedAt: c.now()}
	c.log.Info().Str("path", path).Int64("bytes", fi.Size()).
		Str("mode", c.quality.Current().Label).Msg("still captured")
	c.setState(StateSending)
}

// performSend submits the current image and either shows the response or
// flashes the failure. The network call blocks the loop; only one request
// can ever be in flight because no other state reaches here.
func (c *Controller) performSend(ctx context.Context) {
	data, err := c.storage.ReadFile(c.current.Path)
	if err != nil {
		c.fail(vision.Failure(vision.ErrStorage, "cannot read image"))
		return
	}

	prompt := c.prompts.Current()
	out := c.client.Analyze(ctx, data, prompt.Prompt)
	if !out.OK {
		c.fail(out)
		return
	}

	// A failed save never aborts display of the response we already have.
	c.store.Save(c.current.Path, out.Text, prompt.Label)

	c.page = pager.Load(out.Text, c.cfg.Display.Columns, c.cfg.Display.LinesPerPage,
		pager.IsVerseLabel(prompt.Label))
	c.setState(StateViewing)
}

// fail renders a failure as a short human message and schedules the return
// to the viewfinder.
func (c *Controller) fail(out vision.Outcome) {
	c.errorMsg = displayMessage(out)
	c.errorUntil = c.now().Add(c.cfg.ErrorInterval())
	c.log.Warn().Stringer("kind", out.Kind).Str("message", out.Message).Msg("cycle failed")
	c.setState(StateErrorDisplay)
}

// releaseCycle drops the current image and page references so their backing
// memory can be reclaimed before the next cycle starts.
func (c *Controller) releaseCycle() {
	c.current = nil
	c.page = nil
}

func (c *Controller) setState(s State) {
	if c.state != s {
		c.log.Debug().Stringer("from", c.state).Stringer("to", s).Msg("transition")
	}
	c.state = s
	c.dirty = true
}

// displayMessage maps a failure to the short, bounded text shown on the
// panel. Raw errors never reach the user.
func displayMessage(out vision.Outcome) string {
	msg := out.Message
	switch out.Kind {
	case vision.ErrAuth:
		msg = "API key rejected"
	case vision.ErrRetriesExhausted:
		msg = "network unavailable, try again"
	case vision.ErrParse:
		msg = "bad response from API"
	}
	if msg == "" {
		msg = "something went wrong"
	}
	return vision.Truncate(msg, 80)
}
