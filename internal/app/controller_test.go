package app

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudfx/visioncam/internal/config"
	"github.com/cloudfx/visioncam/internal/device"
	"github.com/cloudfx/visioncam/internal/modes"
	"github.com/cloudfx/visioncam/internal/vision"
)

// fakeCamera records driver calls and writes deterministic stills through
// storage.
type fakeCamera struct {
	storage     *device.Storage
	seq         int
	stillSize   int
	stillErr    error
	focusErr    error
	focusCalls  int
	flashStates []bool
	resolutions []string
}

func (f *fakeCamera) CaptureFrame() (device.Frame, error) {
	img := image.NewRGBA(image.Rect(0, 0, 64, 48))
	for y := 0; y < 48; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, color.RGBA{200, 200, 200, 255})
		}
	}
	return device.ImageFrame{Img: img}, nil
}

func (f *fakeCamera) CaptureStill() (string, error) {
	if f.stillErr != nil {
		return "", f.stillErr
	}
	f.seq++
	name := fmt.Sprintf("img_%04d.jpg", f.seq)
	if err := f.storage.WriteFile(name, make([]byte, f.stillSize)); err != nil {
		return "", err
	}
	return name, nil
}

func (f *fakeCamera) SetResolution(mode modes.QualityMode) error {
	f.resolutions = append(f.resolutions, mode.Label)
	return nil
}

func (f *fakeCamera) Autofocus() error {
	f.focusCalls++
	return f.focusErr
}

func (f *fakeCamera) SetFlash(on bool) {
	f.flashStates = append(f.flashStates, on)
}

// stubAnalyzer returns a fixed outcome and counts calls.
type stubAnalyzer struct {
	outcome vision.Outcome
	calls   int
	prompt  string
}

func (s *stubAnalyzer) Analyze(_ context.Context, _ []byte, promptText string) vision.Outcome {
	s.calls++
	s.prompt = promptText
	return s.outcome
}

type fixture struct {
	c       *Controller
	camera  *fakeCamera
	input   *device.QueueInput
	display *device.BufferDisplay
	client  *stubAnalyzer
	storage *device.Storage
	clock   time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cfg := &config.Config{
		API:     config.APIConfig{MaxImageKB: 1024, MaxTokens: 300, Key: "k", Endpoint: "e"},
		Network: config.NetworkConfig{MaxRetries: 3, RetryDelaySeconds: 1},
		Camera:  config.CameraConfig{InitialMode: 1},
		Flash:   config.FlashConfig{AutoEnabled: true, DarkThreshold: 40},
		Display: config.DisplayConfig{Columns: 30, LinesPerPage: 3, ErrorSeconds: 2},
		Storage: config.StorageConfig{ImageDir: "/sd"},
		Prompts: []config.PromptConfig{
			{Label: "Describe", Prompt: "Describe this."},
			{Label: "Haiku", Prompt: "Haiku, with / breaks."},
		},
	}

	storage := device.NewStorage(afero.NewMemMapFs(), "/sd")
	require.NoError(t, storage.Ensure())

	f := &fixture{
		camera:  &fakeCamera{storage: storage, stillSize: 100},
		input:   &device.QueueInput{},
		display: &device.BufferDisplay{},
		client:  &stubAnalyzer{outcome: vision.Success("a quiet street at dusk")},
		storage: storage,
		clock:   time.Unix(1700000000, 0),
	}
	f.c = New(cfg, f.camera, f.display, f.input, storage, f.client, zerolog.Nop())
	f.c.now = func() time.Time { return f.clock }
	return f
}

func (f *fixture) press(ev device.Event) {
	f.input.Push(ev)
	f.c.Tick(context.Background())
}

func (f *fixture) tick() {
	f.c.Tick(context.Background())
}

func TestCaptureCycleHappyPath(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, StateViewfinder, f.c.State())

	f.press(device.EventShutterShort)
	assert.Equal(t, StateCapturing, f.c.State())

	f.tick() // capture
	assert.Equal(t, StateSending, f.c.State())
	assert.Zero(t, f.client.calls, "analyze must not run in the capturing tick")

	f.tick() // send
	assert.Equal(t, StateViewing, f.c.State())
	assert.Equal(t, 1, f.client.calls)
	assert.Equal(t, "Describe this.", f.client.prompt)

	lines, _, _ := f.display.Snapshot()
	assert.Contains(t, lines[0], "a quiet street at dusk")

	// The response companion was saved next to the capture.
	data, err := f.storage.ReadFile("img_0001_Describe.txt")
	require.NoError(t, err)
	assert.Equal(t, "a quiet street at dusk", string(data))

	// OK closes the view.
	f.press(device.EventOK)
	assert.Equal(t, StateViewfinder, f.c.State())
	assert.Nil(t, f.c.page, "page memory released on close")
	assert.Nil(t, f.c.current)
}

func TestFailureReturnsToViewfinderAfterInterval(t *testing.T) {
	f := newFixture(t)
	f.client.outcome = vision.Failure(vision.ErrAuth, "invalid API key")

	f.press(device.EventShutterShort)
	f.tick() // capture
	f.tick() // send fails
	assert.Equal(t, StateErrorDisplay, f.c.State())

	_, overlay, clr := f.display.Snapshot()
	assert.Equal(t, "API key rejected", overlay)
	assert.Equal(t, device.OverlayError, clr)

	// Still inside the display interval.
	f.tick()
	assert.Equal(t, StateErrorDisplay, f.c.State())

	f.clock = f.clock.Add(3 * time.Second)
	f.tick()
	assert.Equal(t, StateViewfinder, f.c.State())
}

func TestCaptureFailureIsHardwareError(t *testing.T) {
	f := newFixture(t)
	f.camera.stillErr = errors.New("sensor timeout")

	f.press(device.EventShutterShort)
	f.tick()
	assert.Equal(t, StateErrorDisplay, f.c.State())
	assert.Zero(t, f.client.calls)
}

func TestOversizeCaptureRejectedBeforeSend(t *testing.T) {
	f := newFixture(t)
	f.camera.stillSize = 2 << 20 // over the 1 MB test ceiling

	f.press(device.EventShutterShort)
	f.tick()
	assert.Equal(t, StateErrorDisplay, f.c.State())
	assert.Zero(t, f.client.calls, "oversize image must not reach the network")
}

func TestAutoFlashDecisionOnBrightScene(t *testing.T) {
	f := newFixture(t)

	// The fake frame is bright gray: flash stays off.
	f.press(device.EventShutterShort)
	f.tick()
	require.NotEmpty(t, f.camera.flashStates)
	assert.False(t, f.camera.flashStates[0])
}

func TestQualityCyclingInViewfinder(t *testing.T) {
	f := newFixture(t)

	// InitialMode 1 = Standard; up goes to Fine, down twice back to Standard
	// then Eco.
	f.press(device.EventUp)
	f.press(device.EventDown)
	f.press(device.EventDown)
	assert.Equal(t, StateViewfinder, f.c.State())
	assert.Equal(t, []string{"Standard", "Fine", "Standard", "Eco"}, f.camera.resolutions)
}

func TestPromptCyclingInViewfinder(t *testing.T) {
	f := newFixture(t)

	f.press(device.EventRight)
	assert.Equal(t, "Haiku", f.c.prompts.Current().Label)
	f.press(device.EventLeft)
	assert.Equal(t, "Describe", f.c.prompts.Current().Label)
}

func TestLongPressRunsAutofocusWithoutTransition(t *testing.T) {
	f := newFixture(t)

	f.press(device.EventShutterLong)
	assert.Equal(t, StateViewfinder, f.c.State())
	assert.Equal(t, 1, f.camera.focusCalls)

	f.camera.focusErr = errors.New("lens stuck")
	f.press(device.EventShutterLong)
	assert.Equal(t, StateErrorDisplay, f.c.State())
}

func TestBrowsingGuardOnEmptyGallery(t *testing.T) {
	f := newFixture(t)

	f.press(device.EventSelect)
	assert.Equal(t, StateErrorDisplay, f.c.State())
	_, overlay, _ := f.display.Snapshot()
	assert.Equal(t, "no images stored", overlay)
}

func TestBrowsingCycleAndResend(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.storage.WriteFile("img_0001.jpg", make([]byte, 10)))
	require.NoError(t, f.storage.WriteFile("img_0002.jpg", make([]byte, 10)))

	f.press(device.EventSelect)
	assert.Equal(t, StateBrowsing, f.c.State())

	// Cursor starts on the newest image; right wraps to the oldest.
	assert.Equal(t, "img_0002.jpg", f.c.browser.Current())
	f.press(device.EventRight)
	assert.Equal(t, "img_0001.jpg", f.c.browser.Current())

	// Select backs out without sending.
	f.press(device.EventSelect)
	assert.Equal(t, StateViewfinder, f.c.State())
	assert.Zero(t, f.client.calls)

	// OK re-submits the browsed image.
	f.press(device.EventSelect)
	f.press(device.EventOK)
	assert.Equal(t, StateSending, f.c.State())
	f.tick()
	assert.Equal(t, StateViewing, f.c.State())
	assert.Equal(t, 1, f.client.calls)
}

func TestViewingScrollAndRedrawSuppression(t *testing.T) {
	f := newFixture(t)
	f.client.outcome = vision.Success("A\nB\nC\nD\nE\nF\nG\nH")

	f.press(device.EventShutterShort)
	f.tick()
	f.tick()
	require.Equal(t, StateViewing, f.c.State())

	// Scrolling up at the top changes nothing and leaves the panel alone.
	f.press(device.EventUp)
	assert.Equal(t, 0, f.c.page.ScrollPos())

	f.press(device.EventDown)
	assert.Equal(t, 3, f.c.page.ScrollPos())
	lines, _, _ := f.display.Snapshot()
	assert.Equal(t, "D", lines[0])
}

func TestVersePromptRendersStanzaLines(t *testing.T) {
	f := newFixture(t)
	f.press(device.EventRight) // switch to Haiku
	f.client.outcome = vision.Success("old pond / a frog leaps in / water's sound")

	f.press(device.EventShutterShort)
	f.tick()
	f.tick()
	require.Equal(t, StateViewing, f.c.State())

	lines, _, _ := f.display.Snapshot()
	assert.Equal(t, "old pond", lines[0])
	assert.Equal(t, "a frog leaps in", lines[1])
}

func TestTickWithoutInput(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 5; i++ {
		f.tick()
	}
	assert.Equal(t, StateViewfinder, f.c.State())
}
