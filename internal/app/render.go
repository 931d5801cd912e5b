package app

import (
	"fmt"

	"github.com/cloudfx/visioncam/internal/device"
)

// render composes the display for the current state. Redraws are suppressed
// while nothing changed; scroll calls at a boundary, for example, leave the
// panel untouched.
func (c *Controller) render() {
	if !c.dirty {
		return
	}
	c.dirty = false

	switch c.state {
	case StateViewfinder:
		c.display.RenderLines(c.viewfinderLines())

	case StateCapturing:
		c.display.RenderOverlay("capturing…", device.OverlayBusy)

	case StateSending:
		// This lands on the panel at the end of the tick that entered
		// Sending, before the next tick's Analyze blocks the loop.
		c.display.RenderOverlay(fmt.Sprintf("asking %s…", c.prompts.Current().Label), device.OverlayBusy)

	case StateViewing:
		lines := append([]string(nil), c.page.Page()...)
		lines = append(lines, "", c.page.Indicator())
		c.display.RenderLines(lines)

	case StateBrowsing:
		pos, total := c.browser.Position()
		c.display.RenderLines([]string{
			"gallery",
			c.browser.Current(),
			fmt.Sprintf("%d/%d", pos, total),
			"",
			"◀ ▶ browse   OK send   SEL back",
		})

	case StateErrorDisplay:
		c.display.RenderOverlay(c.errorMsg, device.OverlayError)
	}

	c.display.Refresh()
}

// viewfinderLines is the idle status readout: selected quality mode, prompt,
// and flash policy.
func (c *Controller) viewfinderLines() []string {
	mode := c.quality.Current()
	flashLabel := "off"
	if c.cfg.Flash.AutoEnabled {
		flashLabel = "auto"
	}
	return []string{
		"ready",
		fmt.Sprintf("%c %s (~%d KB)", mode.Icon, mode.Label, mode.TargetSizeKB),
		fmt.Sprintf("prompt: %s", c.prompts.Current().Label),
		fmt.Sprintf("flash: %s", flashLabel),
		"",
		"⏺ capture   ▲▼ quality   ◀▶ prompt",
	}
}
