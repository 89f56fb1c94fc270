package director

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ivlev/framezoom/internal/zoomer"
)

func TestDirectorPlan(t *testing.T) {
	director := NewDirector()

	regions := []Rectangle{
		{X: 300, Y: 160, W: 100, H: 40},
		{X: 50, Y: 150, W: 200, H: 80},
		{X: 50, Y: 20, W: 150, H: 50},
	}

	scenario, err := director.Plan("test.png", regions, 10.0, time.Second)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}

	if scenario.Version != "1.0" {
		t.Errorf("Expected version 1.0, got %s", scenario.Version)
	}
	if len(scenario.Steps) != 3 {
		t.Fatalf("Expected 3 steps, got %d", len(scenario.Steps))
	}

	// Reading order: top row first, then left to right within a row
	want := []Rectangle{regions[2], regions[1], regions[0]}
	for i, st := range scenario.Steps {
		if st.Rect != want[i] {
			t.Errorf("Step %d: expected %+v, got %+v", i, want[i], st.Rect)
		}
		// (10 - 3*1) / 3 = 2.33
		if st.Hold < 2.33 || st.Hold > 2.34 {
			t.Errorf("Step %d: unexpected hold %f", i, st.Hold)
		}
	}

	if _, err := director.Plan("test.png", nil, 10, time.Second); err == nil {
		t.Error("Expected error for empty regions")
	}
}

func TestCalculateHoldTime(t *testing.T) {
	d := NewDirector()

	tests := []struct {
		name      string
		total     float64
		animation float64
		count     int
		want      float64
	}{
		{"no time left", 2, 1, 3, 1.0},
		{"clamped to max", 100, 1, 2, 3.0},
		{"clamped to min", 4, 1, 3, 1.0},
		{"shared", 8, 1, 4, 1.0},
		{"exact", 9, 0.5, 3, 2.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := d.calculateHoldTime(tt.total, tt.animation, tt.count); got != tt.want {
				t.Errorf("calculateHoldTime() = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestScenarioValidate(t *testing.T) {
	tests := []struct {
		name    string
		steps   []Step
		wantErr bool
	}{
		{"ok", []Step{{Focus: "a", Rect: Rectangle{X: 0, Y: 0, W: 100, H: 50}, Hold: 1}}, false},
		{"no steps", nil, true},
		{"empty rect", []Step{{Rect: Rectangle{X: 10, Y: 10}}}, true},
		{"outside", []Step{{Rect: Rectangle{X: 1050, Y: 0, W: 100, H: 50}}}, true},
		{"negative origin", []Step{{Rect: Rectangle{X: -1, Y: 0, W: 10, H: 10}}}, true},
		{"negative hold", []Step{{Rect: Rectangle{W: 10, H: 10}, Hold: -1}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Scenario{Steps: tt.steps}
			err := s.Validate(1100, 700)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRectangleRegion(t *testing.T) {
	got := Rectangle{X: 143, Y: 90, W: 418, H: 94}.Region()
	want := zoomer.Region{X: 143, Y: 90, Width: 418, Height: 94}
	if got != want {
		t.Errorf("Region() = %+v, want %+v", got, want)
	}
}

func TestScenarioWriteRead(t *testing.T) {
	scenario := &Scenario{
		Version: "1.0",
		Input:   "test.png",
		Steps: []Step{
			{Focus: "title", Rect: Rectangle{X: 0, Y: 0, W: 400, H: 80}, Hold: 1.5},
			{Focus: "block1", Rect: Rectangle{X: 100, Y: 100, W: 200, H: 150}, Hold: 2},
		},
	}

	tmpFile := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := WriteScenario(scenario, tmpFile); err != nil {
		t.Fatalf("WriteScenario failed: %v", err)
	}

	readScenario, err := ReadScenario(tmpFile)
	if err != nil {
		t.Fatalf("ReadScenario failed: %v", err)
	}

	if readScenario.Version != scenario.Version {
		t.Errorf("Version mismatch: expected %s, got %s", scenario.Version, readScenario.Version)
	}
	if len(readScenario.Steps) != len(scenario.Steps) {
		t.Fatalf("Step count mismatch: expected %d, got %d", len(scenario.Steps), len(readScenario.Steps))
	}
	if readScenario.Steps[1] != scenario.Steps[1] {
		t.Errorf("Step mismatch: expected %+v, got %+v", scenario.Steps[1], readScenario.Steps[1])
	}

	// No config section means defaults
	if readScenario.Config == nil || readScenario.Config.ZoomRatio != 1 {
		t.Errorf("Expected default config, got %+v", readScenario.Config)
	}
}

func TestReadScenarioConfig(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "good.yaml")
	os.WriteFile(good, []byte(`version: "1.0"
config:
  zoomRatio: 2
  zoomWindow:
    width: 550px
steps:
  - focus: a
    rect: {x: 1, y: 2, w: 3, h: 4}
    hold: 1
`), 0644)

	s, err := ReadScenario(good)
	if err != nil {
		t.Fatalf("ReadScenario failed: %v", err)
	}
	if s.Config.ZoomRatio != 2 {
		t.Errorf("Expected zoomRatio 2, got %v", s.Config.ZoomRatio)
	}
	if s.Config.AnimationDuration != 1000 {
		t.Errorf("Expected default duration, got %d", s.Config.AnimationDuration)
	}
	if s.Config.ZoomWindow.Width.Percent || s.Config.ZoomWindow.Width.Value != 550 {
		t.Errorf("Unexpected window width %v", s.Config.ZoomWindow.Width)
	}
	if !s.Config.ZoomWindow.Height.Percent {
		t.Errorf("Expected default height in percent, got %v", s.Config.ZoomWindow.Height)
	}

	bad := filepath.Join(dir, "bad.yaml")
	os.WriteFile(bad, []byte("config:\n  zoomRatio: -1\nsteps: []\n"), 0644)
	if _, err := ReadScenario(bad); err == nil {
		t.Error("Expected error for negative zoomRatio")
	}
}

func TestWriteTrace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.yaml")
	traces := []StepTrace{{
		Step:  1,
		Focus: "title",
		Ticks: []zoomer.AnimationParams{{RatioProgress: 0.5, Ticks: 1}},
	}}

	if err := WriteTrace(traces, path); err != nil {
		t.Fatalf("WriteTrace failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "ratioProgress: 0.5") {
		t.Errorf("Trace missing progress:\n%s", data)
	}
}

func TestParseRegions(t *testing.T) {
	regions, err := ParseRegions("143,90,418,94; 1000, 600, 80, 60;")
	if err != nil {
		t.Fatalf("ParseRegions failed: %v", err)
	}
	want := []Rectangle{{X: 143, Y: 90, W: 418, H: 94}, {X: 1000, Y: 600, W: 80, H: 60}}
	if len(regions) != len(want) {
		t.Fatalf("Expected %d regions, got %d", len(want), len(regions))
	}
	for i := range want {
		if regions[i] != want[i] {
			t.Errorf("Region %d: expected %+v, got %+v", i, want[i], regions[i])
		}
	}

	for _, bad := range []string{"1,2,3", "a,b,c,d"} {
		if _, err := ParseRegions(bad); err == nil {
			t.Errorf("Expected error for %q", bad)
		}
	}
}
