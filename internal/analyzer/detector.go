package analyzer

import (
	"image"

	"github.com/ivlev/framezoom/internal/director"
)

// Block represents a detected region of interest in an image
type Block struct {
	Rect       image.Rectangle
	Type       string  // "text", "wide", "tall"
	Confidence float64 // 0.0-1.0
}

// Rectangle converts the block to scenario coordinates
func (b Block) Rectangle() director.Rectangle {
	return director.Rectangle{X: b.Rect.Min.X, Y: b.Rect.Min.Y, W: b.Rect.Dx(), H: b.Rect.Dy()}
}

// Detector is the interface for image analysis strategies
type Detector interface {
	Detect(img image.Image) ([]Block, error)
}

// Regions runs the detector and returns the zoom targets it found.
func Regions(d Detector, img image.Image) ([]director.Rectangle, error) {
	blocks, err := d.Detect(img)
	if err != nil {
		return nil, err
	}
	regions := make([]director.Rectangle, 0, len(blocks))
	for _, b := range blocks {
		regions = append(regions, b.Rectangle())
	}
	return regions, nil
}
