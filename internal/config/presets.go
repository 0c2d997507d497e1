package config

import (
	"math"
	"sort"
)

func preset(name string, mutate func(c *Config)) *Config {
	c := DefaultConfig()
	c.Name = name
	mutate(c)
	return c
}

// circularSpeed returns the speed each of two equal masses needs for a
// circular orbit about their midpoint at the given separation.
func circularSpeed(g, mass, separation float64) float64 {
	return math.Sqrt(g * mass / (2 * separation))
}

var Presets = map[string]*Config{
	"default": DefaultConfig(),
	"binary": preset("binary", func(c *Config) {
		v := circularSpeed(c.G, DefaultMass, 1.0)
		c.Bodies[0].Vel = [2]float64{0, v}
		c.Bodies[1].Vel = [2]float64{0, -v}
		c.Bodies[1].Color = "#66ccff"
	}),
	// Faster than circular but below escape speed.
	"eccentric": preset("eccentric", func(c *Config) {
		c.Bodies[0].Vel = [2]float64{0, 0.016}
		c.Bodies[1].Vel = [2]float64{0, -0.016}
		c.Bodies[0].Color = "#ffcc66"
		c.TrailLength = 120
	}),
	"heavy-light": preset("heavy-light", func(c *Config) {
		heavy, light, r := 5e7, 1e4, 0.6
		c.Bodies[0] = BodyConfig{Name: "star", Mass: heavy, Radius: 0.08, Color: "#ffaa33"}
		c.Bodies[1] = BodyConfig{
			Name:   "planet",
			Mass:   light,
			Radius: 0.03,
			Pos:    [2]float64{r, 0},
			Vel:    [2]float64{0, math.Sqrt(c.G * (heavy + light) / r)},
			Color:  "#66ccff",
		}
		c.TrailLength = 200
	}),
	// Both bodies start on the same point; min_distance keeps the step finite.
	"coincident": preset("coincident", func(c *Config) {
		c.Bodies[0].Pos = [2]float64{0, 0}
		c.Bodies[1].Pos = [2]float64{0, 0}
		c.MinDistance = 0.01
	}),
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
