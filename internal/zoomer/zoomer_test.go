package zoomer

import (
	"image"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/framezoom/internal/config"
	"github.com/ivlev/framezoom/internal/ticker"
)

// layoutHost models the zoom window layout: the image fills the wrapper
// width and keeps its aspect ratio.
type layoutHost struct {
	natural      Size
	viewport     Size
	wrapperWidth float64
	right        float64
	bottom       float64
	frame        Box
	frameVisible bool
}

func (h *layoutHost) Mount(img image.Image, w config.Window) error {
	b := img.Bounds()
	h.natural = Size{W: float64(b.Dx()), H: float64(b.Dy())}
	h.viewport = Size{W: w.Width.Resolve(h.natural.W), H: w.Height.Resolve(h.natural.H)}
	h.ResetLayout()
	return nil
}

func (h *layoutHost) NaturalSize() Size  { return h.natural }
func (h *layoutHost) ViewportSize() Size { return h.viewport }
func (h *layoutHost) ImageSize() Size {
	return Size{W: h.wrapperWidth, H: h.wrapperWidth * h.natural.H / h.natural.W}
}
func (h *layoutHost) SetWrapperWidth(w float64)              { h.wrapperWidth = w }
func (h *layoutHost) SetWrapperOffset(right, bottom float64) { h.right, h.bottom = right, bottom }
func (h *layoutHost) SetFrame(b Box)                         { h.frame = b }
func (h *layoutHost) SetFrameVisible(v bool)                 { h.frameVisible = v }
func (h *layoutHost) ResetLayout() {
	h.wrapperWidth = h.viewport.W
	h.right, h.bottom = 0, 0
	h.frame = Box{}
}

var epoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func testConfig(durationMs int) *config.Config {
	cfg := config.Defaults()
	cfg.AnimationDuration = durationMs
	cfg.ZoomWindow = config.Window{Width: config.Pixels(550), Height: config.Pixels(350)}
	cfg.Frame.Padding = 10
	return cfg
}

func newTestZoomer(t *testing.T, cfg *config.Config) (*FrameZoomer, *layoutHost, *ticker.Manual) {
	t.Helper()
	host := &layoutHost{}
	sched := ticker.NewManual(epoch, 100*time.Millisecond)
	z, err := New(cfg, image.NewGray(image.Rect(0, 0, 1100, 700)), host, sched)
	require.NoError(t, err)
	return z, host, sched
}

func TestNewErrors(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 1100, 700))
	sched := ticker.NewManual(epoch, time.Millisecond)

	_, err := New(nil, img, &layoutHost{}, sched)
	assert.ErrorIs(t, err, ErrMissingInput)

	_, err = New(testConfig(1000), nil, &layoutHost{}, sched)
	assert.ErrorIs(t, err, ErrMissingInput)

	_, err = New(testConfig(1000), img, nil, sched)
	assert.ErrorIs(t, err, ErrMissingInput)

	_, err = New(testConfig(1000), image.NewGray(image.Rect(0, 0, 500, 700)), &layoutHost{}, sched)
	assert.ErrorIs(t, err, ErrInsufficientImageScale)

	_, err = New(testConfig(1000), image.NewGray(image.Rect(0, 0, 1100, 350)), &layoutHost{}, sched)
	assert.ErrorIs(t, err, ErrInsufficientImageScale)

	// A larger zoomRatio makes a small image usable.
	cfg := testConfig(1000)
	cfg.ZoomRatio = 2
	_, err = New(cfg, image.NewGray(image.Rect(0, 0, 500, 300)), &layoutHost{}, sched)
	assert.NoError(t, err)

	cfg = testConfig(1000)
	cfg.ZoomRatio = 0
	_, err = New(cfg, img, &layoutHost{}, sched)
	assert.Error(t, err)
}

func TestZoomInReachesFullProgress(t *testing.T) {
	// Viewport 550x350, image 1100x700, region (143,90,418,94), padding 10.
	z, host, sched := newTestZoomer(t, testConfig(1200))

	var started, completed []AnimationParams
	done := z.ZoomIn(Region{X: 143, Y: 90, Width: 418, Height: 94},
		func(p AnimationParams) { started = append(started, p) },
		func(p AnimationParams) { completed = append(completed, p) },
	)

	require.Len(t, started, 1)
	assert.True(t, started[0].AnimationInProcess)
	assert.Equal(t, 138.0, started[0].InitialX())
	assert.Equal(t, 85.0, started[0].InitialY())
	assert.Equal(t, 428.0, started[0].FrameWidth())
	assert.Equal(t, 104.0, started[0].FrameHeight())
	assert.True(t, z.IsAnimationInProcess())
	assert.False(t, host.frameVisible)

	prev := 0.0
	for z.IsAnimationInProcess() {
		require.Equal(t, 1, sched.Step())
		p := z.Params()
		assert.GreaterOrEqual(t, p.RatioProgress, prev)
		prev = p.RatioProgress
	}

	require.Len(t, completed, 1)
	final := completed[0]
	assert.Equal(t, 1.0, final.RatioProgress)
	assert.Equal(t, 12, final.Ticks)
	assert.False(t, final.AnimationInProcess)
	assert.InDelta(t, 0.5, final.RatioWidth, 1e-9)

	// The frame ends centered horizontally; vertically the offset is
	// floored at zero. Neither axis reaches the image edge:
	//   x: limit = 550/2 - 428/2 = 61; 138 - 138 < 61, so 138 is pulled to
	//      138 - 61 = 77; 1100 - (77 + 550) = 473 > 0, no sticking.
	//   y: limit = 350/2 - 104/2 = 123; 85 - 123 < 0, floored to 0;
	//      700 - (0 + 350) = 350 > 0, no sticking.
	assert.InDelta(t, 77, final.OffsetX(), 1e-9)
	assert.InDelta(t, 0, final.OffsetY(), 1e-9)
	assert.False(t, final.IsStickingRight())
	assert.False(t, final.IsStickingBottom())

	assert.InDelta(t, 1100, host.wrapperWidth, 1e-9)
	assert.InDelta(t, 77, host.right, 1e-9)
	assert.Equal(t, 0.0, host.bottom)
	assert.True(t, host.frameVisible)
	assert.InDelta(t, 138, host.frame.Left, 1e-9)
	assert.InDelta(t, 428, host.frame.Width, 1e-9)

	select {
	case p, ok := <-done:
		require.True(t, ok)
		assert.Equal(t, final, p)
	default:
		t.Fatal("done channel not fed")
	}
	assert.Equal(t, 0, sched.Len())
}

func TestZoomInSticksToImageEdges(t *testing.T) {
	z, host, sched := newTestZoomer(t, testConfig(1200))

	z.ZoomIn(Region{X: 1000, Y: 600, Width: 80, Height: 60}, nil, nil)

	for z.IsAnimationInProcess() {
		sched.Step()
		p := z.Params()
		if p.IsStickingRight() {
			assert.GreaterOrEqual(t, p.StickingRightPosition(), 0.0)
		}
		if p.IsStickingBottom() {
			assert.GreaterOrEqual(t, p.StickingBottomPosition(), 0.0)
		}
	}

	final := z.Params()
	assert.Equal(t, 1.0, final.RatioProgress)
	assert.True(t, final.IsStickingRight())
	assert.InDelta(t, 550, final.StickingRightPosition(), 1e-9)
	assert.True(t, final.IsStickingBottom())
	assert.InDelta(t, 350, final.StickingBottomPosition(), 1e-9)

	// Sticking positions win over the raw offsets.
	assert.InDelta(t, 550, host.right, 1e-9)
	assert.InDelta(t, 350, host.bottom, 1e-9)
}

func TestZoomInCentersRegionWithinLimits(t *testing.T) {
	z, host, sched := newTestZoomer(t, testConfig(1200))

	z.ZoomIn(Region{X: 500, Y: 330, Width: 100, Height: 40}, nil, nil)

	for z.IsAnimationInProcess() {
		sched.Step()
		p := z.Params()
		assert.False(t, p.IsStickingRight(), "tick %d", p.Ticks)
		assert.False(t, p.IsStickingBottom(), "tick %d", p.Ticks)
	}

	final := z.Params()
	assert.InDelta(t, 275, final.OffsetX(), 1e-9)
	assert.InDelta(t, 175, final.OffsetY(), 1e-9)

	// The frame box is centered in the viewport.
	left := host.frame.Left - host.right
	top := host.frame.Top - host.bottom
	assert.InDelta(t, 550/2, left+host.frame.Width/2, 1e-9)
	assert.InDelta(t, 350/2, top+host.frame.Height/2, 1e-9)
}

func TestZoomInStopsWhenFrameFillsViewport(t *testing.T) {
	z, _, sched := newTestZoomer(t, testConfig(1200))

	completed := 0
	var final AnimationParams
	z.ZoomIn(Region{X: 5, Y: 100, Width: 1080, Height: 100}, nil, func(p AnimationParams) {
		completed++
		final = p
	})

	assert.Equal(t, 1, sched.RunUntilIdle(100))
	assert.Equal(t, 1, completed)
	assert.Equal(t, 1, final.Ticks)
	assert.Less(t, final.RatioProgress, 1.0)
	assert.GreaterOrEqual(t, final.Frame.Width, 550.0)
}

func TestZeroDurationCompletesOnFirstTick(t *testing.T) {
	z, _, sched := newTestZoomer(t, testConfig(0))

	completed := 0
	var final AnimationParams
	z.ZoomIn(Region{X: 143, Y: 90, Width: 418, Height: 94}, nil, func(p AnimationParams) {
		completed++
		final = p
	})
	assert.Equal(t, 0, completed)

	sched.Step()
	assert.Equal(t, 1, completed)
	assert.Equal(t, 1.0, final.RatioProgress)
	assert.Equal(t, 1, final.Ticks)
	assert.Equal(t, 0, sched.Len())
}

func TestZoomOutIsIdempotent(t *testing.T) {
	z, host, sched := newTestZoomer(t, testConfig(1200))

	z.ZoomIn(Region{X: 143, Y: 90, Width: 418, Height: 94}, nil, nil)
	sched.Step()
	sched.Step()

	z.ZoomOut()
	onceHost := *host
	onceParams := z.Params()

	z.ZoomOut()
	assert.Equal(t, onceHost, *host)
	assert.Equal(t, onceParams, z.Params())

	assert.False(t, z.IsAnimationInProcess())
	assert.False(t, host.frameVisible)
	assert.Equal(t, 550.0, host.wrapperWidth)
	assert.Equal(t, Box{}, host.frame)
	assert.Equal(t, 0, sched.Len())
}

func TestZoomRoundTrip(t *testing.T) {
	z, _, sched := newTestZoomer(t, testConfig(1200))
	region := Region{X: 143, Y: 90, Width: 418, Height: 94}

	first := <-runToCompletion(z, sched, region)
	z.ZoomOut()
	sched.Advance(3 * time.Second)
	second := <-runToCompletion(z, sched, region)

	first.Start, second.Start = time.Time{}, time.Time{}
	assert.Equal(t, first, second)
}

func runToCompletion(z *FrameZoomer, sched *ticker.Manual, r Region) <-chan AnimationParams {
	done := z.ZoomIn(r, nil, nil)
	sched.RunUntilIdle(1000)
	return done
}

func TestZoomInSupersedesRunningRun(t *testing.T) {
	z, _, sched := newTestZoomer(t, testConfig(1200))

	firstCompleted := false
	first := z.ZoomIn(Region{X: 143, Y: 90, Width: 418, Height: 94}, nil, func(AnimationParams) {
		firstCompleted = true
	})
	sched.Step()

	second := z.ZoomIn(Region{X: 500, Y: 330, Width: 100, Height: 40}, nil, nil)
	_, ok := <-first
	assert.False(t, ok, "superseded run must close its channel empty")

	sched.RunUntilIdle(1000)
	assert.False(t, firstCompleted)
	p, ok := <-second
	require.True(t, ok)
	assert.Equal(t, 495.0, p.InitialX())
}

func TestZoomOutFromOnStart(t *testing.T) {
	z, _, sched := newTestZoomer(t, testConfig(1200))

	done := z.ZoomIn(Region{X: 143, Y: 90, Width: 418, Height: 94}, func(AnimationParams) {
		z.ZoomOut()
	}, nil)

	assert.Equal(t, 0, sched.Len())
	_, ok := <-done
	assert.False(t, ok)
	assert.False(t, z.IsAnimationInProcess())
}

func TestDrawFrame(t *testing.T) {
	z, host, _ := newTestZoomer(t, testConfig(1200))

	b := z.DrawFrame(100, 50, 200, 80)
	assert.Equal(t, Box{Left: 50, Top: 25, Width: 100, Height: 40}, b)
	assert.Equal(t, b, host.frame)
	assert.True(t, host.frameVisible)
}

func TestZoomInWithTimer(t *testing.T) {
	host := &layoutHost{}
	z, err := New(testConfig(60), image.NewGray(image.Rect(0, 0, 1100, 700)), host, ticker.NewTimer())
	require.NoError(t, err)

	done := z.ZoomIn(Region{X: 143, Y: 90, Width: 418, Height: 94}, nil, nil)
	select {
	case p := <-done:
		assert.Equal(t, 1.0, p.RatioProgress)
		assert.False(t, z.IsAnimationInProcess())
	case <-time.After(5 * time.Second):
		t.Fatal("run did not complete")
	}
}
