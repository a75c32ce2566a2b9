package contour

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/paulmach/orb"
	"gopkg.in/yaml.v3"
)

// Config is the declarative form of the request options, as read from
// YAML:
//
//	interval: 0.5
//	registration: 0
//	range: {min: 100, max: 200}
//	smoothing: {mode: spline, factor: 2.5, density: 5}
//	fence:
//	  type: shape
//	  rule: inside
//	  points: [[0, 0], [10, 0], [10, 10], [0, 10], [0, 0]]
//	depressions: true
//
// Out of range smoothing parameters are replaced by their defaults when
// the request runs; structural problems are rejected by Validate.
type Config struct {
	Interval     float64         `yaml:"interval" validate:"gte=0"`
	Registration float64         `yaml:"registration"`
	Range        *RangeConfig    `yaml:"range"`
	Values       []float64       `yaml:"values"`
	Smoothing    SmoothingConfig `yaml:"smoothing"`
	Fence        *FenceConfig    `yaml:"fence"`
	MaxSlope     float64         `yaml:"max_slope" validate:"gte=0"`
	Depressions  bool            `yaml:"depressions"`
	MaxPoints    int             `yaml:"max_points" validate:"gte=0"`
}

// RangeConfig limits the regular series.
type RangeConfig struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max" validate:"gtefield=Min"`
}

// SmoothingConfig selects the smoothing method.
type SmoothingConfig struct {
	Mode    string  `yaml:"mode" validate:"omitempty,oneof=none vertex spline spline-no-overlap"`
	Factor  float64 `yaml:"factor"`
	Density int     `yaml:"density"`
}

// FenceConfig describes a fence polygon as [x, y] pairs.
type FenceConfig struct {
	Type   string      `yaml:"type" validate:"required,oneof=block shape"`
	Rule   string      `yaml:"rule" validate:"omitempty,oneof=inside overlap outside"`
	Points [][]float64 `yaml:"points" validate:"required,min=5,dive,len=2"`
}

var configValidate = validator.New()

var (
	smoothingModes = map[string]Smoothing{
		"":                  SmoothNone,
		"none":              SmoothNone,
		"vertex":            SmoothVertex,
		"spline":            SmoothSpline,
		"spline-no-overlap": SmoothSplineNoOverlap,
	}
	fenceTypes = map[string]FenceType{
		"block": FenceBlock,
		"shape": FenceShape,
	}
	fenceRules = map[string]FenceRule{
		"":        FenceInside,
		"inside":  FenceInside,
		"overlap": FenceOverlap,
		"outside": FenceOutside,
	}
)

// ParseConfig reads and validates a YAML configuration. Unknown keys are
// rejected. An empty document yields the zero Config.
func ParseConfig(r io.Reader) (*Config, error) {
	var c Config
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadConfig reads the configuration file at path.
func LoadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("contour: load config: %w", err)
	}
	defer f.Close()

	c, err := ParseConfig(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Validate checks the structure of c.
func (c *Config) Validate() error {
	if err := configValidate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Options converts c to request options. c must be valid.
func (c *Config) Options() []Option {
	var opts []Option
	if c.Interval > 0 || c.Registration != 0 {
		interval := c.Interval
		if interval == 0 {
			interval = 1
		}
		opts = append(opts, WithInterval(interval, c.Registration))
	}
	if c.Range != nil {
		opts = append(opts, WithRange(c.Range.Min, c.Range.Max))
	}
	if len(c.Values) > 0 {
		opts = append(opts, WithValues(c.Values...))
	}
	if mode := smoothingModes[c.Smoothing.Mode]; mode != SmoothNone {
		opts = append(opts, WithSmoothing(mode, c.Smoothing.Factor, c.Smoothing.Density))
	}
	if c.Fence != nil {
		pts := make([]orb.Point, 0, len(c.Fence.Points))
		for _, p := range c.Fence.Points {
			if len(p) == 2 {
				pts = append(pts, orb.Point{p[0], p[1]})
			}
		}
		opts = append(opts, WithFence(Fence{
			Type:   fenceTypes[c.Fence.Type],
			Rule:   fenceRules[c.Fence.Rule],
			Points: pts,
		}))
	}
	if c.MaxSlope > 0 {
		opts = append(opts, WithMaxSlope(c.MaxSlope))
	}
	if c.Depressions {
		opts = append(opts, WithDepressions())
	}
	if c.MaxPoints > 0 {
		opts = append(opts, WithMaxPoints(c.MaxPoints))
	}
	return opts
}
