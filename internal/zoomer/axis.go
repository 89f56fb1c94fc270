package zoomer

// axis is the boundary sticking logic for one direction. The horizontal and
// vertical instances differ only in their accessors and in the trailing edge
// re-anchor, which only the horizontal axis applies.
type axis struct {
	name               string
	viewport           func(Metrics) float64
	image              func(Metrics) float64
	edge               func(Box) float64 // leading edge of the frame
	extent             func(Box) float64 // on-screen size of the frame
	anchorTrailingEdge bool
}

var horizontal = axis{
	name:               "horizontal",
	viewport:           func(m Metrics) float64 { return m.Viewport.W },
	image:              func(m Metrics) float64 { return m.Image.W },
	edge:               func(b Box) float64 { return b.Left },
	extent:             func(b Box) float64 { return b.Width },
	anchorTrailingEdge: true,
}

var vertical = axis{
	name:     "vertical",
	viewport: func(m Metrics) float64 { return m.Viewport.H },
	image:    func(m Metrics) float64 { return m.Image.H },
	edge:     func(b Box) float64 { return b.Top },
	extent:   func(b Box) float64 { return b.Height },
}

// advance runs the three phases for one tick. s carries the previous tick's
// sticking decision into the centering test.
func (a axis) advance(s AxisState, progress float64, frame Box, m Metrics) AxisState {
	viewport := a.viewport(m)
	edge := a.edge(frame)

	// Phase A: time-linear offset.
	s.Offset = s.Initial * progress

	// Phase B: keep the frame within the centering limit.
	limit := a.offsetLimit(s, viewport)
	if gap := a.trailingGap(s, frame, viewport); a.anchorTrailingEdge && gap <= 0 {
		s.Offset -= gap
	} else if edge-s.Applied() < limit {
		s.Offset = edge - limit
		if s.Offset < 0 {
			s.Offset = 0
		}
	}

	// Phase C: never expose space past the image edge.
	image := a.image(m)
	s.Sticking = image-(s.Offset+viewport) < 0
	s.StickingPosition = 0
	if s.Sticking {
		s.StickingPosition = image - viewport
	}
	return s
}

// offsetLimit is the frame offset inside the viewport at which the frame is
// centered.
func (a axis) offsetLimit(s AxisState, viewport float64) float64 {
	return viewport/2 - s.FrameExtent/2
}

// trailingGap is the distance between the frame's trailing edge and the
// viewport's trailing edge; the edge is hidden when it is not positive.
func (a axis) trailingGap(s AxisState, frame Box, viewport float64) float64 {
	return (s.Offset + viewport) - (a.edge(frame) + a.extent(frame))
}
