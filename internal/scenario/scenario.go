package scenario

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/heatwire/internal/config"
	"github.com/san-kum/heatwire/internal/heat"
	"github.com/san-kum/heatwire/internal/sim"
)

// Scenario lists runs executed together as an ensemble.
type Scenario struct {
	Name        string    `yaml:"name"`
	Description string    `yaml:"description"`
	Parallel    int       `yaml:"parallel"`
	Runs        []RunSpec `yaml:"runs"`
}

// RunSpec starts from a preset (reference when empty) and applies
// overrides written with the same keys as a config file.
type RunSpec struct {
	Name      string    `yaml:"name"`
	Preset    string    `yaml:"preset"`
	Overrides yaml.Node `yaml:"overrides"`
}

// Load reads a scenario from a YAML file
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	if len(sc.Runs) == 0 {
		return nil, fmt.Errorf("scenario %q has no runs", sc.Name)
	}
	return &sc, nil
}

// Resolve turns every run into a validated config.
func (sc *Scenario) Resolve() ([]*config.Config, error) {
	cfgs := make([]*config.Config, 0, len(sc.Runs))
	seen := make(map[string]bool, len(sc.Runs))
	for i, run := range sc.Runs {
		name := run.Name
		if name == "" {
			name = fmt.Sprintf("run%d", i+1)
		}
		if seen[name] {
			return nil, fmt.Errorf("run %d: duplicate name %q", i+1, name)
		}
		seen[name] = true

		preset := run.Preset
		if preset == "" {
			preset = "reference"
		}
		cfg := config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("run %s: unknown preset %q", name, preset)
		}
		if !run.Overrides.IsZero() {
			if err := run.Overrides.Decode(cfg); err != nil {
				return nil, fmt.Errorf("run %s: %w", name, err)
			}
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("run %s: %w", name, err)
		}
		sc.Runs[i].Name = name
		cfgs = append(cfgs, cfg)
	}
	return cfgs, nil
}

// Members resolves the scenario into ensemble members.
func (sc *Scenario) Members() ([]sim.Member, error) {
	cfgs, err := sc.Resolve()
	if err != nil {
		return nil, err
	}
	members := make([]sim.Member, len(cfgs))
	for i, cfg := range cfgs {
		members[i] = sim.Member{Name: sc.Runs[i].Name, Params: cfg.Params()}
	}
	return members, nil
}

// Run executes every run of the scenario concurrently. A failing run
// cancels the others.
func Run(ctx context.Context, sc *Scenario, newMetrics func(heat.Params) []sim.Metric, opts ...sim.Option) ([]*sim.Result, error) {
	members, err := sc.Members()
	if err != nil {
		return nil, err
	}
	return sim.NewEnsemble(members, sc.Parallel, newMetrics, opts...).Run(ctx)
}
