// Package viewer plays a scenario interactively in an ebiten window. The
// zoomer ticks are queued and pumped once per Update, so the animation runs
// at the window's frame rate on the wall clock.
package viewer

import (
	"fmt"
	"image"
	"log"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"golang.org/x/image/draw"

	"github.com/ivlev/framezoom/internal/config"
	"github.com/ivlev/framezoom/internal/director"
	"github.com/ivlev/framezoom/internal/renderer"
	"github.com/ivlev/framezoom/internal/ticker"
	"github.com/ivlev/framezoom/internal/zoomer"
)

type state int

const (
	stateIdle state = iota
	stateZooming
	stateHolding
)

// Viewer implements ebiten.Game.
//
// Space or Right starts the next step, Escape zooms out, Q quits. With
// AutoPlay set the steps follow each other using their hold times.
type Viewer struct {
	AutoPlay bool

	host   *renderer.Host
	queue  *ticker.Queue
	zoomer *zoomer.FrameZoomer
	steps  []director.Step

	next      int
	state     state
	holdUntil time.Time
	done      <-chan zoomer.AnimationParams

	canvas *ebiten.Image
	buf    *image.RGBA
	size   image.Point
}

func New(img image.Image, scenario *director.Scenario, width, height int) (*Viewer, error) {
	cfg := scenario.Config
	if cfg == nil {
		cfg = config.Defaults()
	}
	b := img.Bounds()
	if err := scenario.Validate(b.Dx(), b.Dy()); err != nil {
		return nil, err
	}

	host, err := renderer.NewHost(width, height, cfg.Frame)
	if err != nil {
		return nil, err
	}
	queue := ticker.NewQueue()
	z, err := zoomer.New(cfg, img, host, queue)
	if err != nil {
		return nil, err
	}

	vp := host.ViewportSize()
	return &Viewer{
		host:   host,
		queue:  queue,
		zoomer: z,
		steps:  scenario.Steps,
		size:   image.Pt(int(vp.W), int(vp.H)),
	}, nil
}

// Size is the window size the viewer wants.
func (v *Viewer) Size() (int, int) { return v.size.X, v.size.Y }

func (v *Viewer) Update() error {
	now := time.Now()

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyQ):
		return ebiten.Termination
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		v.zoomer.ZoomOut()
		v.state = stateIdle
	case inpututil.IsKeyJustPressed(ebiten.KeySpace), inpututil.IsKeyJustPressed(ebiten.KeyArrowRight):
		v.startNext()
	}

	v.queue.Pump(now)

	switch v.state {
	case stateIdle:
		if v.AutoPlay && v.next < len(v.steps) {
			v.startNext()
		}
	case stateZooming:
		select {
		case p, ok := <-v.done:
			if !ok {
				return nil
			}
			st := v.steps[v.next-1]
			log.Printf("[*] %s: %d ticks, offset %.0f/%.0f", st.Focus, p.Ticks,
				p.Horizontal.Applied(), p.Vertical.Applied())
			v.state = stateHolding
			v.holdUntil = now.Add(time.Duration(st.Hold * float64(time.Second)))
		default:
		}
	case stateHolding:
		if v.AutoPlay && !now.Before(v.holdUntil) {
			v.zoomer.ZoomOut()
			v.state = stateIdle
		}
	}
	return nil
}

func (v *Viewer) startNext() {
	if len(v.steps) == 0 {
		return
	}
	if v.next >= len(v.steps) {
		v.next = 0
	}
	st := v.steps[v.next]
	v.next++
	v.done = v.zoomer.ZoomIn(st.Rect.Region(), nil, nil)
	v.state = stateZooming
	ebiten.SetWindowTitle(v.Title())
}

func (v *Viewer) Draw(screen *ebiten.Image) {
	frame := v.host.Render()
	if v.canvas == nil {
		v.canvas = ebiten.NewImage(v.size.X, v.size.Y)
		v.buf = image.NewRGBA(image.Rect(0, 0, v.size.X, v.size.Y))
	}
	// WritePixels takes premultiplied alpha
	draw.Draw(v.buf, v.buf.Bounds(), frame, image.Point{}, draw.Src)
	v.canvas.WritePixels(v.buf.Pix)
	screen.DrawImage(v.canvas, nil)
}

func (v *Viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	return v.size.X, v.size.Y
}

// Title describes the current step for the window title.
func (v *Viewer) Title() string {
	if v.next == 0 {
		return "framezoom"
	}
	return fmt.Sprintf("framezoom - %s (%d/%d)", v.steps[v.next-1].Focus, v.next, len(v.steps))
}
