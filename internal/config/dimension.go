package config

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Dimension is a length given either in pixels or as a percentage of the
// enclosing container.
type Dimension struct {
	Value   float64
	Percent bool
}

func Pixels(v float64) Dimension  { return Dimension{Value: v} }
func Percent(v float64) Dimension { return Dimension{Value: v, Percent: true} }

// ParseDimension accepts "550", "550px" or "100%".
func ParseDimension(s string) (Dimension, error) {
	s = strings.TrimSpace(s)
	percent := strings.HasSuffix(s, "%")
	num := strings.TrimSuffix(strings.TrimSuffix(s, "%"), "px")
	v, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
	if err != nil {
		return Dimension{}, fmt.Errorf("invalid dimension %q", s)
	}
	return Dimension{Value: v, Percent: percent}, nil
}

// Resolve returns the length in pixels inside a container of the given size.
func (d Dimension) Resolve(parent float64) float64 {
	if d.Percent {
		return parent * d.Value / 100
	}
	return d.Value
}

func (d Dimension) String() string {
	v := strconv.FormatFloat(d.Value, 'f', -1, 64)
	if d.Percent {
		return v + "%"
	}
	return v + "px"
}

func (d *Dimension) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: dimension must be a number or a percentage", node.Line)
	}
	parsed, err := ParseDimension(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*d = parsed
	return nil
}

func (d Dimension) MarshalYAML() (interface{}, error) {
	if d.Percent {
		return d.String(), nil
	}
	return d.Value, nil
}
