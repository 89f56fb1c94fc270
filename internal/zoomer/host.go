package zoomer

import (
	"image"
	"time"

	"github.com/ivlev/framezoom/internal/config"
)

// Size is a width/height pair in pixels.
type Size struct {
	W, H float64
}

// Box is the frame rectangle in on-screen pixels, relative to the wrapper.
type Box struct {
	Left   float64 `yaml:"left"`
	Top    float64 `yaml:"top"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// Host is the rendering layer the zoomer draws through. The image sits in a
// wrapper at 100% of the wrapper width; the wrapper lives inside the zoom
// window (the viewport) and is shifted left/up by its right/bottom offsets.
type Host interface {
	// Mount attaches the image and lays out the zoom window.
	Mount(img image.Image, window config.Window) error

	NaturalSize() Size
	ImageSize() Size // displayed size of the image
	ViewportSize() Size

	SetWrapperWidth(w float64)
	SetWrapperOffset(right, bottom float64)
	SetFrame(b Box)
	SetFrameVisible(visible bool)

	// ResetLayout restores the neutral layout: wrapper at full viewport
	// width with zero offsets and an empty frame box.
	ResetLayout()
}

// Scheduler runs callbacks once per display frame.
type Scheduler interface {
	Now() time.Time
	Schedule(fn func(now time.Time)) int
	Cancel(id int)
}
