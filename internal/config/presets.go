package config

import "sort"

// Presets are applied over DefaultConfig.
var Presets = map[string]func(*Config){
	"reference": func(*Config) {},
	"coarse": func(c *Config) {
		c.Length, c.Points, c.Steps = 1.25, 5, 50
	},
	"fine": func(c *Config) {
		c.Points, c.Dt, c.Steps = 200, 0.001, 5000
		c.Render.Stride = 10
	},
	"insulated": func(c *Config) {
		c.FarEnd, c.Steps = "insulated", 2000
		c.Render.Stride = 4
	},
	"unstable": func(c *Config) {
		c.Dt, c.Steps, c.AllowUnstable = 0.025, 200, true
	},
}

var presetDescriptions = map[string]string{
	"reference": "1 m wire, 50 points, 500 steps of 10 ms",
	"coarse":    "five point wire with dx = 0.25",
	"fine":      "200 points at r = 0.4",
	"insulated": "zero-flux far end, long run",
	"unstable":  "r = 0.625, diverges",
}

func GetPreset(name string) *Config {
	apply, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	apply(cfg)
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func DescribePreset(name string) string {
	return presetDescriptions[name]
}
