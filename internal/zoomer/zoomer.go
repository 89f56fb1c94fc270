// Package zoomer animates a viewport so that a region of an image grows to
// fill it. The geometry is computed per tick from the elapsed time and the
// host's layout metrics; drawing and frame pacing are delegated to the Host
// and the Scheduler.
package zoomer

import (
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/ivlev/framezoom/internal/config"
)

// FrameZoomer drives zoom runs for one image. At most one run is live at a
// time: starting a run supersedes the previous one.
type FrameZoomer struct {
	cfg   *config.Config
	host  Host
	sched Scheduler

	mu      sync.Mutex
	params  AnimationParams
	run     uint64 // generation of the live run
	pending int    // scheduled tick, 0 when none
	done    chan AnimationParams
}

// New mounts img on the host and checks that the image, scaled by
// zoomRatio, is larger than the zoom window on both axes.
func New(cfg *config.Config, img image.Image, host Host, sched Scheduler) (*FrameZoomer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: the config has not been set", ErrMissingInput)
	}
	if img == nil {
		return nil, fmt.Errorf("%w: the image has not been set", ErrMissingInput)
	}
	if host == nil || sched == nil {
		return nil, fmt.Errorf("%w: host and scheduler are required", ErrMissingInput)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if err := host.Mount(img, cfg.ZoomWindow); err != nil {
		return nil, fmt.Errorf("mount image: %w", err)
	}

	z := &FrameZoomer{cfg: cfg, host: host, sched: sched}
	host.SetFrameVisible(false)
	if err := z.checkImageBoundaries(); err != nil {
		return nil, err
	}
	return z, nil
}

func (z *FrameZoomer) checkImageBoundaries() error {
	natural := z.scaledNaturalSize()
	viewport := z.host.ViewportSize()
	if natural.W <= viewport.W {
		return fmt.Errorf("%w: image width %.0f does not exceed zoom window width %.0f, increase zoomRatio",
			ErrInsufficientImageScale, natural.W, viewport.W)
	}
	if natural.H <= viewport.H {
		return fmt.Errorf("%w: image height %.0f does not exceed zoom window height %.0f, increase zoomRatio",
			ErrInsufficientImageScale, natural.H, viewport.H)
	}
	return nil
}

func (z *FrameZoomer) scaledNaturalSize() Size {
	n := z.host.NaturalSize()
	return Size{W: n.W * z.cfg.ZoomRatio, H: n.H * z.cfg.ZoomRatio}
}

// ZoomIn starts a run towards r. onStart is called before the first tick
// and onComplete after the last one; both may be nil. The returned channel
// receives the final params, or is closed empty if the run is superseded
// by another ZoomIn or by ZoomOut.
func (z *FrameZoomer) ZoomIn(r Region, onStart, onComplete func(AnimationParams)) <-chan AnimationParams {
	done := make(chan AnimationParams, 1)

	z.mu.Lock()
	z.cancelLocked()
	z.run++
	run := z.run
	z.params = newParams(r, z.cfg.Frame.Padding, z.cfg.ZoomRatio, z.sched.Now())
	z.done = done
	z.host.SetFrameVisible(false)
	started := z.params
	z.mu.Unlock()

	if onStart != nil {
		onStart(started)
	}

	z.mu.Lock()
	// onStart may have stopped or replaced the run.
	if z.run == run {
		z.pending = z.sched.Schedule(func(now time.Time) {
			z.step(run, now, onComplete)
		})
	}
	z.mu.Unlock()

	return done
}

func (z *FrameZoomer) step(run uint64, now time.Time, onComplete func(AnimationParams)) {
	z.mu.Lock()
	if run != z.run || !z.params.AnimationInProcess {
		z.mu.Unlock()
		return
	}
	z.pending = 0

	natural := z.scaledNaturalSize()
	viewport := z.host.ViewportSize()
	progress := Progress(now, z.params.Start, z.cfg.Duration())
	ratioWidth := WidthRatio(progress, InitialScalingRatio(viewport.W, natural.W))
	z.host.SetWrapperWidth(WrapperWidth(natural.W, ratioWidth, viewport.W))

	m := Metrics{Natural: natural, Image: z.host.ImageSize(), Viewport: viewport}
	next := advance(z.params, progress, ratioWidth, m)

	z.host.SetFrame(next.Frame)
	z.host.SetFrameVisible(true)
	z.host.SetWrapperOffset(next.Horizontal.Applied(), next.Vertical.Applied())

	if shouldContinue(next, m) {
		z.params = next
		z.pending = z.sched.Schedule(func(now time.Time) {
			z.step(run, now, onComplete)
		})
		z.mu.Unlock()
		return
	}

	next.AnimationInProcess = false
	z.params = next
	done := z.done
	z.done = nil
	z.mu.Unlock()

	if onComplete != nil {
		onComplete(next)
	}
	if done != nil {
		done <- next
		close(done)
	}
}

// cancelLocked drops the pending tick and releases the waiter of the live
// run. z.mu must be held.
func (z *FrameZoomer) cancelLocked() {
	if z.pending != 0 {
		z.sched.Cancel(z.pending)
		z.pending = 0
	}
	if z.done != nil {
		close(z.done)
		z.done = nil
	}
}

// ZoomOut stops any run and restores the neutral layout.
func (z *FrameZoomer) ZoomOut() {
	z.mu.Lock()
	defer z.mu.Unlock()

	z.cancelLocked()
	z.run++
	z.params.AnimationInProcess = false
	z.host.SetFrameVisible(false)
	z.host.ResetLayout()
}

// IsAnimationInProcess reports whether a run is live.
func (z *FrameZoomer) IsAnimationInProcess() bool {
	z.mu.Lock()
	defer z.mu.Unlock()
	return z.params.AnimationInProcess
}

// Params returns a copy of the current run's params.
func (z *FrameZoomer) Params() AnimationParams {
	z.mu.Lock()
	defer z.mu.Unlock()
	return z.params
}

// DrawFrame draws the frame box directly, without animating. Coordinates
// are in logical image units.
func (z *FrameZoomer) DrawFrame(x, y, width, height float64) Box {
	z.mu.Lock()
	defer z.mu.Unlock()

	ratio := ImageScalingRatio(z.host.ImageSize().W, z.scaledNaturalSize().W)
	b := FrameBox(x, y, width, height, ratio)
	z.host.SetFrame(b)
	z.host.SetFrameVisible(true)
	return b
}
