package director

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Director plans a scenario from a set of regions of interest
type Director struct {
	MinHold float64 // Minimum time on a region (seconds)
	MaxHold float64 // Maximum time on a region (seconds)
}

// NewDirector creates a new Director with default settings
func NewDirector() *Director {
	return &Director{
		MinHold: 1.0,
		MaxHold: 3.0,
	}
}

// Plan orders the regions and spreads totalDuration over them. Every step
// spends animation zooming in, then holds.
func (d *Director) Plan(input string, regions []Rectangle, totalDuration float64, animation time.Duration) (*Scenario, error) {
	if len(regions) == 0 {
		return nil, fmt.Errorf("no regions to zoom into")
	}

	sorted := d.sortRegions(regions)
	hold := d.calculateHoldTime(totalDuration, animation.Seconds(), len(sorted))

	steps := make([]Step, 0, len(sorted))
	for i, r := range sorted {
		steps = append(steps, Step{
			Focus: fmt.Sprintf("region_%d", i+1),
			Rect:  r,
			Hold:  hold,
		})
	}

	return &Scenario{
		Version: "1.0",
		Input:   input,
		Steps:   steps,
	}, nil
}

// sortRegions sorts regions in reading order (top-to-bottom, left-to-right)
func (d *Director) sortRegions(regions []Rectangle) []Rectangle {
	sorted := make([]Rectangle, len(regions))
	copy(sorted, regions)

	sort.SliceStable(sorted, func(i, j int) bool {
		// Threshold for "same row" (20 pixels)
		threshold := 20

		yDiff := sorted[i].Y - sorted[j].Y
		if abs(yDiff) > threshold {
			return sorted[i].Y < sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	return sorted
}

// calculateHoldTime shares what is left of totalDuration after the zoom
// animations between the steps
func (d *Director) calculateHoldTime(totalDuration, animation float64, count int) float64 {
	available := totalDuration - animation*float64(count)
	if available <= 0 {
		return d.MinHold
	}

	hold := available / float64(count)
	if hold < d.MinHold {
		hold = d.MinHold
	}
	if hold > d.MaxHold {
		hold = d.MaxHold
	}
	return hold
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// ParseRegions parses a list of rectangles written as "x,y,w,h;x,y,w,h".
func ParseRegions(s string) ([]Rectangle, error) {
	var regions []Rectangle
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		fields := strings.Split(part, ",")
		if len(fields) != 4 {
			return nil, fmt.Errorf("region %q: expected x,y,w,h", part)
		}
		var v [4]int
		for i, f := range fields {
			n, err := strconv.Atoi(strings.TrimSpace(f))
			if err != nil {
				return nil, fmt.Errorf("region %q: %w", part, err)
			}
			v[i] = n
		}
		regions = append(regions, Rectangle{X: v[0], Y: v[1], W: v[2], H: v[3]})
	}
	return regions, nil
}
