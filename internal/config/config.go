package config

import (
	"fmt"
	"image/color"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/image/colornames"
	"gopkg.in/yaml.v3"
)

// Config holds the magnifier options. Values decoded from YAML are merged
// over Defaults, so a document only needs the keys it overrides.
type Config struct {
	ZoomRatio         float64    `yaml:"zoomRatio"`
	AnimationDuration int        `yaml:"animationDuration"` // milliseconds
	ZoomWindow        Window     `yaml:"zoomWindow"`
	Frame             FrameStyle `yaml:"frame"`
}

// Window is the size of the viewport the magnified image is seen through.
type Window struct {
	Width  Dimension `yaml:"width"`
	Height Dimension `yaml:"height"`
}

type FrameStyle struct {
	Padding    float64 `yaml:"padding"`
	Opacity    float64 `yaml:"opacity"`
	Background string  `yaml:"background"`
}

// RenderConfig carries the command line settings of the offline renderer.
type RenderConfig struct {
	InputPath    string
	OutputVideo  string
	FramesDir    string
	FrameFormat  string
	TracePath    string
	Width        int
	Height       int
	FPS          int
	Workers      int
	DPI          int
	PageIndex    int
	VideoEncoder string
	Quality      int
	ShowStats    bool
	BuildVersion string
}

func Defaults() *Config {
	return &Config{
		ZoomRatio:         1,
		AnimationDuration: 1000,
		ZoomWindow: Window{
			Width:  Percent(100),
			Height: Percent(100),
		},
		Frame: FrameStyle{
			Padding:    10,
			Opacity:    0.5,
			Background: "green",
		},
	}
}

// Duration returns AnimationDuration as a time.Duration.
func (c *Config) Duration() time.Duration {
	return time.Duration(c.AnimationDuration) * time.Millisecond
}

func (c *Config) Validate() error {
	if c.ZoomRatio <= 0 {
		return fmt.Errorf("zoomRatio must be positive, got %v", c.ZoomRatio)
	}
	if c.AnimationDuration < 0 {
		return fmt.Errorf("animationDuration must not be negative, got %d", c.AnimationDuration)
	}
	if c.ZoomWindow.Width.Value <= 0 || c.ZoomWindow.Height.Value <= 0 {
		return fmt.Errorf("zoomWindow must have a positive size, got %s x %s", c.ZoomWindow.Width, c.ZoomWindow.Height)
	}
	if c.Frame.Padding < 0 {
		return fmt.Errorf("frame.padding must not be negative, got %v", c.Frame.Padding)
	}
	if c.Frame.Opacity < 0 || c.Frame.Opacity > 1 {
		return fmt.Errorf("frame.opacity must be within [0,1], got %v", c.Frame.Opacity)
	}
	if _, err := ParseColor(c.Frame.Background); err != nil {
		return fmt.Errorf("frame.background: %w", err)
	}
	return nil
}

// Parse decodes a YAML document over the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads a YAML config file. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return Defaults(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// ParseColor accepts a CSS colour name or a #rgb / #rrggbb hex value.
func ParseColor(s string) (color.RGBA, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := colornames.Map[s]; ok {
		return c, nil
	}
	if !strings.HasPrefix(s, "#") {
		return color.RGBA{}, fmt.Errorf("unknown colour %q", s)
	}
	hex := s[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid hex colour %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid hex colour %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}
