package config

import (
	"fmt"
	"math"
	"os"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/trail"
	"gonum.org/v1/gonum/spatial/r2"
	"gopkg.in/yaml.v3"
)

const (
	DefaultMass   = 5000000.0
	DefaultRadius = 0.05
	DefaultSpeed  = 0.01
	DefaultSteps  = 10000
	DefaultColor  = "#ffffff"
)

type Config struct {
	Name        string       `yaml:"name"`
	G           float64      `yaml:"g"`
	Dt          float64      `yaml:"dt"`
	TrailLength int          `yaml:"trail_length"`
	MinDistance float64      `yaml:"min_distance"`
	Steps       int          `yaml:"steps"`
	Bodies      []BodyConfig `yaml:"bodies"`
}

type BodyConfig struct {
	Name   string     `yaml:"name"`
	Mass   float64    `yaml:"mass"`
	Radius float64    `yaml:"radius"`
	Pos    [2]float64 `yaml:"pos,flow"`
	Vel    [2]float64 `yaml:"vel,flow"`
	Color  string     `yaml:"color,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Name:        "default",
		G:           dynamo.DefaultG,
		Dt:          dynamo.DefaultDt,
		TrailLength: trail.DefaultLength,
		Steps:       DefaultSteps,
		Bodies: []BodyConfig{
			{Name: "a", Mass: DefaultMass, Radius: DefaultRadius, Pos: [2]float64{-0.5, 0}, Vel: [2]float64{0, DefaultSpeed}, Color: DefaultColor},
			{Name: "b", Mass: DefaultMass, Radius: DefaultRadius, Pos: [2]float64{0.5, 0}, Vel: [2]float64{0, -DefaultSpeed}, Color: DefaultColor},
		},
	}
}

// Load reads a yaml file over the defaults. Fields missing from the file keep
// their default values.
func Load(path string) (*Config, error) {
	return LoadOver(path, DefaultConfig())
}

// LoadOver reads a yaml file over a copy of base.
func LoadOver(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := base.Clone()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
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

func (c *Config) Validate() error {
	if err := c.SimConfig().Validate(); err != nil {
		return err
	}
	if c.Steps < 1 {
		return fmt.Errorf("steps must be positive, got %d: %w", c.Steps, dynamo.ErrParameterBounds)
	}
	if len(c.Bodies) != 2 {
		return fmt.Errorf("got %d bodies: %w", len(c.Bodies), dynamo.ErrBodyCount)
	}
	for i, b := range c.Bodies {
		for _, v := range [...]float64{b.Pos[0], b.Pos[1], b.Vel[0], b.Vel[1]} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("body %d: non-finite position or velocity: %w", i, dynamo.ErrParameterBounds)
			}
		}
	}
	return nil
}

func (c *Config) SimConfig() dynamo.Config {
	return dynamo.Config{
		G:             c.G,
		Dt:            c.Dt,
		TrailLength:   c.TrailLength,
		MinDistance:   c.MinDistance,
		ValidateState: true,
	}
}

// Build constructs the two bodies described by the config.
func (c *Config) Build() (*dynamo.Body, *dynamo.Body, error) {
	if err := c.Validate(); err != nil {
		return nil, nil, err
	}
	var bodies [2]*dynamo.Body
	for i, bc := range c.Bodies {
		name := bc.Name
		if name == "" {
			name = fmt.Sprintf("body%d", i+1)
		}
		b, err := dynamo.NewBody(name, bc.Mass, bc.Radius,
			r2.Vec{X: bc.Pos[0], Y: bc.Pos[1]},
			r2.Vec{X: bc.Vel[0], Y: bc.Vel[1]})
		if err != nil {
			return nil, nil, err
		}
		if bc.Color != "" {
			b.Color = bc.Color
		}
		bodies[i] = b
	}
	return bodies[0], bodies[1], nil
}

// Clone returns a deep copy so presets are never mutated by callers.
func (c *Config) Clone() *Config {
	cp := *c
	cp.Bodies = append([]BodyConfig(nil), c.Bodies...)
	return &cp
}
