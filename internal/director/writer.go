package director

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ivlev/framezoom/internal/config"
	"github.com/ivlev/framezoom/internal/zoomer"
)

// WriteScenario writes a scenario to a YAML file
func WriteScenario(scenario *Scenario, path string) error {
	data, err := yaml.Marshal(scenario)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// ReadScenario reads a scenario from a YAML file. The config section is
// merged over the defaults; a scenario without one gets the defaults.
func ReadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	scenario := Scenario{Config: config.Defaults()}
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if err := scenario.Config.Validate(); err != nil {
		return nil, fmt.Errorf("scenario config: %w", err)
	}

	return &scenario, nil
}

// StepTrace records the params of every tick of one zoom step
type StepTrace struct {
	Step  int                      `yaml:"step"`
	Focus string                   `yaml:"focus"`
	Ticks []zoomer.AnimationParams `yaml:"ticks"`
}

// WriteTrace dumps per-tick animation params as YAML
func WriteTrace(traces []StepTrace, path string) error {
	data, err := yaml.Marshal(traces)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
