package zoomer

import "time"

// Progress returns the elapsed fraction of the run, clamped to [0,1].
// A non-positive duration finishes the run on its first tick.
func Progress(now, start time.Time, duration time.Duration) float64 {
	if duration <= 0 {
		return 1
	}
	p := float64(now.Sub(start)) / float64(duration)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// InitialScalingRatio is the share of the fully scaled image width already
// covered by the viewport.
func InitialScalingRatio(viewportW, scaledNaturalW float64) float64 {
	return viewportW / scaledNaturalW
}

// WidthRatio is the growth of the wrapper beyond the viewport width. The
// part of the final width the viewport already occupies is subtracted.
func WidthRatio(progress, initialScaling float64) float64 {
	return progress - progress*initialScaling
}

// ImageScalingRatio converts logical image units into displayed pixels.
func ImageScalingRatio(displayedW, scaledNaturalW float64) float64 {
	return displayedW / scaledNaturalW
}

// WrapperWidth is the displayed image width for ratioWidth.
func WrapperWidth(scaledNaturalW, ratioWidth, viewportW float64) float64 {
	return scaledNaturalW*ratioWidth + viewportW
}

// FrameBox scales a rectangle given in logical image units to on-screen
// pixels. No clamping happens here.
func FrameBox(x, y, width, height, ratio float64) Box {
	return Box{
		Left:   ratio * x,
		Top:    ratio * y,
		Width:  ratio * width,
		Height: ratio * height,
	}
}
