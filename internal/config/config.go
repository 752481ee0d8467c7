package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/heatwire/internal/heat"
)

const (
	DefaultWidth  = 600
	DefaultHeight = 700
	DefaultFPS    = 20
	DefaultFormat = "gif"
)

type Config struct {
	Length        float64      `yaml:"length" validate:"gt=0"`
	Points        int          `yaml:"points" validate:"min=3"`
	Dt            float64      `yaml:"dt" validate:"gt=0"`
	Alpha         float64      `yaml:"alpha" validate:"gte=0"`
	HotEnd        float64      `yaml:"hot_end"`
	Steps         int          `yaml:"steps" validate:"gte=0"`
	FarEnd        string       `yaml:"far_end" validate:"omitempty,oneof=frozen insulated"`
	AllowUnstable bool         `yaml:"allow_unstable"`
	Workers       int          `yaml:"workers" validate:"gte=-1"`
	Render        RenderConfig `yaml:"render"`
	Log           LogConfig    `yaml:"log"`
}

type RenderConfig struct {
	Width  int    `yaml:"width" validate:"min=300"`
	Height int    `yaml:"height" validate:"min=300"`
	FPS    int    `yaml:"fps" validate:"min=1,max=100"`
	Stride int    `yaml:"stride" validate:"min=1"`
	Format string `yaml:"format" validate:"oneof=gif mjpeg png"`
}

type LogConfig struct {
	Level       string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Development bool   `yaml:"development"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func DefaultConfig() *Config {
	p := heat.DefaultParams()
	return &Config{
		Length: p.Length,
		Points: p.Points,
		Dt:     p.Dt,
		Alpha:  p.Alpha,
		HotEnd: p.HotEnd,
		Steps:  p.Steps,
		FarEnd: string(p.FarEnd),
		Render: RenderConfig{
			Width:  DefaultWidth,
			Height: DefaultHeight,
			FPS:    DefaultFPS,
			Stride: 1,
			Format: DefaultFormat,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads a YAML file over DefaultConfig and validates the result.
func Load(path string) (*Config, error) {
	return LoadOver(path, DefaultConfig())
}

// LoadOver reads a YAML file over a copy of base, so keys missing from the
// file keep the base values.
func LoadOver(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := base.Clone()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate runs the struct tags and then the solver's own checks. Failures
// unwrap to heat.ErrInvalidConfiguration.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fieldError(verrs[0])
		}
		return err
	}
	return c.Params().Validate()
}

func fieldError(e validator.FieldError) error {
	name := e.Namespace()
	if i := strings.IndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	var reason string
	switch e.Tag() {
	case "gt":
		reason = "must be > " + e.Param()
	case "gte", "min":
		reason = "must be >= " + e.Param()
	case "max":
		reason = "must be <= " + e.Param()
	case "oneof":
		reason = "must be one of: " + e.Param()
	default:
		reason = "is invalid"
	}
	return &heat.ConfigError{Field: name, Value: e.Value(), Reason: reason}
}

// Params converts the solver section to heat.Params.
func (c *Config) Params() heat.Params {
	return heat.Params{
		Length:        c.Length,
		Points:        c.Points,
		Dt:            c.Dt,
		Alpha:         c.Alpha,
		HotEnd:        c.HotEnd,
		Steps:         c.Steps,
		FarEnd:        heat.FarEnd(c.FarEnd),
		AllowUnstable: c.AllowUnstable,
		Workers:       c.Workers,
	}
}

func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}
