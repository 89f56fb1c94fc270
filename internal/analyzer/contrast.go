package analyzer

import (
	"image"
	"image/color"
	"math"
	"sort"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
)

// ContrastDetector implements edge-based region detection using Sobel operator.
// Block rectangles are relative to the image bounds.
type ContrastDetector struct {
	MinBlockArea  int     // Minimum area in source pixels²
	EdgeThreshold float64 // Gradient magnitude threshold
	MaxCoverage   float64 // Blocks covering more of the image are dropped
	MaxBlocks     int     // Largest blocks kept, 0 keeps all
	AnalysisWidth int     // Wider images are downscaled to this width first
}

// NewContrastDetector creates a new contrast-based detector with default settings
func NewContrastDetector() *ContrastDetector {
	return &ContrastDetector{
		MinBlockArea:  500,  // ~22x22 pixels minimum
		EdgeThreshold: 30.0, // Moderate sensitivity
		MaxCoverage:   0.9,
		MaxBlocks:     8,
		AnalysisWidth: 800,
	}
}

// Detect finds regions of interest using edge detection and morphology
func (d *ContrastDetector) Detect(img image.Image) ([]Block, error) {
	size := img.Bounds().Size()

	// Large pages (PDFs at print DPI) are analysed at a lower resolution
	work := img
	scale := 1.0
	if d.AnalysisWidth > 0 && size.X > d.AnalysisWidth {
		work = imaging.Resize(img, d.AnalysisWidth, 0, imaging.Box)
		scale = float64(size.X) / float64(work.Bounds().Dx())
	}

	gray := toGrayscale(work)
	edges := sobelEdgeDetection(gray, d.EdgeThreshold)

	// Connect nearby edges (letters into lines, lines into paragraphs)
	dilated := dilate(edges, 5, 2)

	return d.selectBlocks(findContours(dilated), scale, size), nil
}

// selectBlocks maps contours back to image pixels, drops the ones that are
// too small or cover the whole image and keeps the MaxBlocks largest.
func (d *ContrastDetector) selectBlocks(contours []image.Rectangle, scale float64, size image.Point) []Block {
	bounds := image.Rectangle{Max: size}
	total := float64(size.X * size.Y)

	blocks := []Block{}
	for _, c := range contours {
		rect := image.Rect(
			int(math.Floor(float64(c.Min.X)*scale)),
			int(math.Floor(float64(c.Min.Y)*scale)),
			int(math.Ceil(float64(c.Max.X)*scale)),
			int(math.Ceil(float64(c.Max.Y)*scale)),
		).Intersect(bounds)

		a := rectArea(rect)
		if a < d.MinBlockArea {
			continue
		}
		if d.MaxCoverage > 0 && float64(a) > d.MaxCoverage*total {
			continue
		}
		blocks = append(blocks, Block{
			Rect:       rect,
			Type:       classify(rect),
			Confidence: 0.7, // Moderate confidence for edge-based detection
		})
	}

	sort.SliceStable(blocks, func(i, j int) bool {
		return rectArea(blocks[i].Rect) > rectArea(blocks[j].Rect)
	})
	if d.MaxBlocks > 0 && len(blocks) > d.MaxBlocks {
		blocks = blocks[:d.MaxBlocks]
	}
	return blocks
}

func rectArea(r image.Rectangle) int {
	return r.Dx() * r.Dy()
}

// classify guesses the block type from its aspect ratio
func classify(r image.Rectangle) string {
	w, h := r.Dx(), r.Dy()
	switch {
	case w >= 4*h:
		return "text"
	case w >= h:
		return "wide"
	default:
		return "tall"
	}
}

// toGrayscale converts an image to grayscale with its origin at 0,0
func toGrayscale(img image.Image) *image.Gray {
	b := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(gray, gray.Bounds(), img, b.Min, draw.Src)
	return gray
}

// sobelEdgeDetection applies Sobel operator to detect edges
func sobelEdgeDetection(gray *image.Gray, threshold float64) *image.Gray {
	bounds := gray.Bounds()
	edges := image.NewGray(bounds)

	// Sobel kernels
	gx := [3][3]int{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	}
	gy := [3][3]int{
		{-1, -2, -1},
		{0, 0, 0},
		{1, 2, 1},
	}

	for y := bounds.Min.Y + 1; y < bounds.Max.Y-1; y++ {
		for x := bounds.Min.X + 1; x < bounds.Max.X-1; x++ {
			var sumX, sumY float64
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					pixel := float64(gray.GrayAt(x+kx, y+ky).Y)
					sumX += pixel * float64(gx[ky+1][kx+1])
					sumY += pixel * float64(gy[ky+1][kx+1])
				}
			}

			if math.Hypot(sumX, sumY) > threshold {
				edges.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}

	return edges
}

// dilate performs morphological dilation to connect nearby edges
func dilate(img *image.Gray, kernelSize, iterations int) *image.Gray {
	bounds := img.Bounds()
	result := image.NewGray(bounds)
	copy(result.Pix, img.Pix)

	half := kernelSize / 2

	for iter := 0; iter < iterations; iter++ {
		temp := image.NewGray(bounds)

		for y := bounds.Min.Y + half; y < bounds.Max.Y-half; y++ {
			for x := bounds.Min.X + half; x < bounds.Max.X-half; x++ {
				maxVal := uint8(0)
				for ky := -half; ky <= half && maxVal < 255; ky++ {
					for kx := -half; kx <= half; kx++ {
						if val := result.GrayAt(x+kx, y+ky).Y; val > maxVal {
							maxVal = val
						}
					}
				}
				temp.SetGray(x, y, color.Gray{Y: maxVal})
			}
		}

		result = temp
	}

	return result
}

// findContours finds bounding rectangles of connected white regions
func findContours(img *image.Gray) []image.Rectangle {
	bounds := img.Bounds()
	visited := make([]bool, bounds.Dx()*bounds.Dy())
	index := func(x, y int) int {
		return (y-bounds.Min.Y)*bounds.Dx() + (x - bounds.Min.X)
	}

	contours := []image.Rectangle{}
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if img.GrayAt(x, y).Y > 128 && !visited[index(x, y)] {
				contours = append(contours, floodFill(img, visited, index, x, y))
			}
		}
	}

	return contours
}

// floodFill performs flood fill and returns bounding rectangle
func floodFill(img *image.Gray, visited []bool, index func(x, y int) int, startX, startY int) image.Rectangle {
	bounds := img.Bounds()
	minX, minY := startX, startY
	maxX, maxY := startX, startY

	stack := []image.Point{{X: startX, Y: startY}}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		x, y := p.X, p.Y
		if !p.In(bounds) || visited[index(x, y)] || img.GrayAt(x, y).Y <= 128 {
			continue
		}
		visited[index(x, y)] = true

		minX, maxX = min(minX, x), max(maxX, x)
		minY, maxY = min(minY, y), max(maxY, y)

		stack = append(stack,
			image.Point{X: x + 1, Y: y},
			image.Point{X: x - 1, Y: y},
			image.Point{X: x, Y: y + 1},
			image.Point{X: x, Y: y - 1},
		)
	}

	return image.Rect(minX, minY, maxX+1, maxY+1)
}
