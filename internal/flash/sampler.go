// Package flash decides whether the flash LED should fire for the next
// capture, based on sampled scene brightness.
package flash

import (
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/cloudfx/visioncam/internal/device"
)

// minFrameDim rejects degenerate frames the sensor sometimes produces while
// the pipeline is still warming up.
const minFrameDim = 8

// retryPause is the wait before the single frame-fetch retry.
const retryPause = 50 * time.Millisecond

var errDegenerateFrame = errors.New("frame smaller than 8x8")

// FrameFunc fetches a live viewfinder frame.
type FrameFunc func() (device.Frame, error)

// Sampler classifies scene brightness against a configured threshold.
//
// The policy is fail-open: if no usable frame can be obtained the verdict is
// "not dark", so a sampler failure can never force the flash. This mirrors
// the appliance's original behavior and is a deliberate product decision.
type Sampler struct {
	threshold int
	pause     time.Duration
	log       zerolog.Logger
}

// NewSampler creates a sampler with the configured darkness threshold
// (average luminance strictly below threshold means dark).
func NewSampler(threshold int, log zerolog.Logger) *Sampler {
	return &Sampler{
		threshold: threshold,
		pause:     retryPause,
		log:       log.With().Str("component", "flash").Logger(),
	}
}

// IsDark fetches a frame and reports whether the scene is dark. A failed
// fetch is retried once after a short pause; a second failure returns false.
func (s *Sampler) IsDark(fetch FrameFunc) bool {
	frame, err := fetch()
	if err != nil {
		time.Sleep(s.pause)
		frame, err = fetch()
	}
	if err != nil {
		s.log.Warn().Err(err).Msg("frame fetch failed, assuming not dark")
		return false
	}

	avg, err := s.averageLuminance(frame)
	if err != nil {
		s.log.Warn().Err(err).Msg("unusable frame, assuming not dark")
		return false
	}

	dark := avg < s.threshold
	s.log.Debug().Int("avg_luminance", avg).Int("threshold", s.threshold).Bool("dark", dark).
		Msg("brightness sampled")
	return dark
}

// averageLuminance samples five fixed positions (center plus the four
// quadrant centers) and averages their perceptual luminance.
func (s *Sampler) averageLuminance(f device.Frame) (int, error) {
	w, h := f.Width(), f.Height()
	if w < minFrameDim || h < minFrameDim {
		return 0, errDegenerateFrame
	}

	points := [5][2]int{
		{w / 2, h / 2},
		{w / 4, h / 4},
		{3 * w / 4, h / 4},
		{w / 4, 3 * h / 4},
		{3 * w / 4, 3 * h / 4},
	}

	sum := 0
	for _, pt := range points {
		r, g, b := f.PixelRGB(pt[0], pt[1])
		sum += luminance(r, g, b)
	}
	return sum / len(points), nil
}

// luminance computes perceptual luminance with the classic integer-weighted
// sum (30R + 59G + 11B) / 100.
func luminance(r, g, b uint8) int {
	return (30*int(r) + 59*int(g) + 11*int(b)) / 100
}
