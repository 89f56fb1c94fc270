package zoomer

import "errors"

var (
	// ErrMissingInput is returned when the config, image, host or scheduler
	// is absent.
	ErrMissingInput = errors.New("missing input")

	// ErrInsufficientImageScale is returned when the image scaled by
	// zoomRatio is not larger than the zoom window.
	ErrInsufficientImageScale = errors.New("insufficient image scale")
)
