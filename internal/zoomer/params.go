package zoomer

import "time"

// Region is the rectangle to zoom into, in unscaled image coordinates.
type Region struct {
	X, Y, Width, Height float64
}

// AxisState is the per-axis part of a run.
type AxisState struct {
	Initial          float64 `yaml:"initial"`     // padded, ratio-scaled start offset
	FrameExtent      float64 `yaml:"frameExtent"` // padded, ratio-scaled frame size
	Offset           float64 `yaml:"offset"`
	Sticking         bool    `yaml:"sticking"`
	StickingPosition float64 `yaml:"stickingPosition"` // zero unless Sticking
}

// Applied is the wrapper offset written to the host for this axis.
func (s AxisState) Applied() float64 {
	if s.Sticking {
		return s.StickingPosition
	}
	return s.Offset
}

// AnimationParams is the state of one run. Every tick builds a new value
// from the previous one; callbacks receive copies.
type AnimationParams struct {
	Horizontal         AxisState `yaml:"horizontal"`
	Vertical           AxisState `yaml:"vertical"`
	Start              time.Time `yaml:"start"`
	RatioProgress      float64   `yaml:"ratioProgress"`
	RatioWidth         float64   `yaml:"ratioWidth"`
	AnimationInProcess bool      `yaml:"animationInProcess"`
	Frame              Box       `yaml:"frame"`
	Ticks              int       `yaml:"ticks"`
}

func (p AnimationParams) InitialX() float64               { return p.Horizontal.Initial }
func (p AnimationParams) InitialY() float64               { return p.Vertical.Initial }
func (p AnimationParams) FrameWidth() float64             { return p.Horizontal.FrameExtent }
func (p AnimationParams) FrameHeight() float64            { return p.Vertical.FrameExtent }
func (p AnimationParams) OffsetX() float64                { return p.Horizontal.Offset }
func (p AnimationParams) OffsetY() float64                { return p.Vertical.Offset }
func (p AnimationParams) IsStickingRight() bool           { return p.Horizontal.Sticking }
func (p AnimationParams) IsStickingBottom() bool          { return p.Vertical.Sticking }
func (p AnimationParams) StickingRightPosition() float64  { return p.Horizontal.StickingPosition }
func (p AnimationParams) StickingBottomPosition() float64 { return p.Vertical.StickingPosition }

// newParams builds the record for a fresh run.
func newParams(r Region, padding, zoomRatio float64, start time.Time) AnimationParams {
	x := (r.X - padding/2) * zoomRatio
	y := (r.Y - padding/2) * zoomRatio
	return AnimationParams{
		Horizontal: AxisState{
			Initial:     x,
			Offset:      x,
			FrameExtent: (r.Width + padding) * zoomRatio,
		},
		Vertical: AxisState{
			Initial:     y,
			Offset:      y,
			FrameExtent: (r.Height + padding) * zoomRatio,
		},
		Start:              start,
		AnimationInProcess: true,
	}
}

// Metrics is a snapshot of the host layout taken during a tick.
type Metrics struct {
	Natural  Size // natural image size scaled by zoomRatio
	Image    Size // displayed image size
	Viewport Size
}

// advance computes the geometry of one tick. The wrapper must already have
// been resized for progress, so m.Image reflects this tick's scale.
func advance(prev AnimationParams, progress, ratioWidth float64, m Metrics) AnimationParams {
	next := prev
	next.RatioProgress = progress
	next.RatioWidth = ratioWidth
	next.Ticks = prev.Ticks + 1

	scale := ImageScalingRatio(m.Image.W, m.Natural.W)
	next.Frame = FrameBox(prev.Horizontal.Initial, prev.Vertical.Initial,
		prev.Horizontal.FrameExtent, prev.Vertical.FrameExtent, scale)

	next.Horizontal = horizontal.advance(prev.Horizontal, progress, next.Frame, m)
	next.Vertical = vertical.advance(prev.Vertical, progress, next.Frame, m)
	return next
}

// shouldContinue reports whether another tick is needed after p.
func shouldContinue(p AnimationParams, m Metrics) bool {
	return p.RatioProgress < 1 &&
		m.Image.W <= m.Natural.W &&
		p.Frame.Width < m.Viewport.W
}
