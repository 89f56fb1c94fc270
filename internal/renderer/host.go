package renderer

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/ivlev/framezoom/internal/config"
	"github.com/ivlev/framezoom/internal/zoomer"
)

// Host is a software implementation of zoomer.Host. It keeps the layout of
// the zoom window (viewport, wrapper, image, frame) and composes the visible
// part into an image on demand.
//
// Percentage sizes of the zoom window resolve against the canvas size.
type Host struct {
	canvas zoomer.Size
	style  config.FrameStyle
	fill   color.RGBA

	img          image.Image
	natural      zoomer.Size
	viewport     zoomer.Size
	wrapperWidth float64
	right        float64
	bottom       float64
	frame        zoomer.Box
	frameVisible bool
}

func NewHost(canvasWidth, canvasHeight int, style config.FrameStyle) (*Host, error) {
	if canvasWidth <= 0 || canvasHeight <= 0 {
		return nil, fmt.Errorf("invalid canvas size %dx%d", canvasWidth, canvasHeight)
	}
	fill, err := config.ParseColor(style.Background)
	if err != nil {
		return nil, err
	}
	return &Host{
		canvas: zoomer.Size{W: float64(canvasWidth), H: float64(canvasHeight)},
		style:  style,
		fill:   fill,
	}, nil
}

func (h *Host) Mount(img image.Image, window config.Window) error {
	b := img.Bounds()
	if b.Empty() {
		return fmt.Errorf("image has no pixels")
	}
	h.img = img
	h.natural = zoomer.Size{W: float64(b.Dx()), H: float64(b.Dy())}
	h.viewport = zoomer.Size{
		W: math.Round(window.Width.Resolve(h.canvas.W)),
		H: math.Round(window.Height.Resolve(h.canvas.H)),
	}
	if h.viewport.W <= 0 || h.viewport.H <= 0 {
		return fmt.Errorf("zoom window resolves to %vx%v", h.viewport.W, h.viewport.H)
	}
	h.frameVisible = false
	h.ResetLayout()
	return nil
}

func (h *Host) NaturalSize() zoomer.Size  { return h.natural }
func (h *Host) ViewportSize() zoomer.Size { return h.viewport }

// ImageSize is the displayed image size: the image spans the wrapper width
// and keeps its aspect ratio.
func (h *Host) ImageSize() zoomer.Size {
	return zoomer.Size{W: h.wrapperWidth, H: h.wrapperWidth * h.natural.H / h.natural.W}
}

func (h *Host) SetWrapperWidth(w float64) { h.wrapperWidth = w }

func (h *Host) SetWrapperOffset(right, bottom float64) {
	h.right, h.bottom = right, bottom
}

func (h *Host) SetFrame(b zoomer.Box)        { h.frame = b }
func (h *Host) SetFrameVisible(visible bool) { h.frameVisible = visible }

func (h *Host) ResetLayout() {
	h.wrapperWidth = h.viewport.W
	h.right, h.bottom = 0, 0
	h.frame = zoomer.Box{}
}

func (h *Host) Frame() (zoomer.Box, bool) { return h.frame, h.frameVisible }

func (h *Host) WrapperOffset() (right, bottom float64) { return h.right, h.bottom }

// Render composes the viewport: the image scaled to its displayed size and
// shifted by the wrapper offsets, then the frame box blended on top.
func (h *Host) Render() *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, int(h.viewport.W), int(h.viewport.H)))
	if h.img == nil {
		return dst
	}

	size := h.ImageSize()
	sx := size.W / h.natural.W
	sy := size.H / h.natural.H
	sr := h.img.Bounds()
	s2d := f64.Aff3{
		sx, 0, -h.right - float64(sr.Min.X)*sx,
		0, sy, -h.bottom - float64(sr.Min.Y)*sy,
	}
	draw.ApproxBiLinear.Transform(dst, s2d, h.img, sr, draw.Src, nil)

	if !h.frameVisible {
		return dst
	}
	fw := int(math.Round(h.frame.Width))
	fh := int(math.Round(h.frame.Height))
	if fw <= 0 || fh <= 0 {
		return dst
	}
	pos := image.Pt(
		int(math.Round(h.frame.Left-h.right)),
		int(math.Round(h.frame.Top-h.bottom)),
	)
	return imaging.Overlay(dst, imaging.New(fw, fh, h.fill), pos, h.style.Opacity)
}
