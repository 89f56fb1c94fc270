package director

import (
	"fmt"

	"github.com/ivlev/framezoom/internal/config"
	"github.com/ivlev/framezoom/internal/zoomer"
)

// Scenario is a sequence of zoom steps over one image
type Scenario struct {
	Version string         `yaml:"version"`
	Input   string         `yaml:"input,omitempty"`
	Page    int            `yaml:"page"`
	Config  *config.Config `yaml:"config,omitempty"`
	Steps   []Step         `yaml:"steps"`
}

// Step zooms into Rect, keeps the zoomed view for Hold seconds and zooms out
type Step struct {
	Focus string    `yaml:"focus"`
	Rect  Rectangle `yaml:"rect"`
	Hold  float64   `yaml:"hold"`
}

// Rectangle is a region in unscaled image coordinates
type Rectangle struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
	W int `yaml:"w"`
	H int `yaml:"h"`
}

func (r Rectangle) Region() zoomer.Region {
	return zoomer.Region{X: float64(r.X), Y: float64(r.Y), Width: float64(r.W), Height: float64(r.H)}
}

// Validate checks every step against an image of the given size.
func (s *Scenario) Validate(width, height int) error {
	if len(s.Steps) == 0 {
		return fmt.Errorf("scenario has no steps")
	}
	for i, st := range s.Steps {
		r := st.Rect
		if r.W <= 0 || r.H <= 0 {
			return fmt.Errorf("step %d (%s): empty rect %dx%d", i+1, st.Focus, r.W, r.H)
		}
		if r.X < 0 || r.Y < 0 || r.X+r.W > width || r.Y+r.H > height {
			return fmt.Errorf("step %d (%s): rect %d,%d %dx%d outside image %dx%d",
				i+1, st.Focus, r.X, r.Y, r.W, r.H, width, height)
		}
		if st.Hold < 0 {
			return fmt.Errorf("step %d (%s): negative hold %v", i+1, st.Focus, st.Hold)
		}
	}
	return nil
}
