package experiment

import (
	"math"
	"slices"

	"github.com/san-kum/gravsim/internal/dynamo"
)

type param struct {
	get func(*Config) float64
	set func(*Config, float64)
}

var params = map[string]param{
	"bodies": {
		func(c *Config) float64 { return float64(c.Bodies) },
		func(c *Config, v float64) { c.Bodies = int(math.Round(v)) },
	},
	"step_size": {
		func(c *Config) float64 { return c.StepSize },
		func(c *Config, v float64) { c.StepSize = v },
	},
	"g": {
		func(c *Config) float64 { return c.ForceParams.G },
		func(c *Config, v float64) { c.ForceParams.G = v },
	},
	"damping": {
		func(c *Config) float64 { return c.ForceParams.Damping },
		func(c *Config, v float64) { c.ForceParams.Damping = v },
	},
	"eps": {
		func(c *Config) float64 { return c.ForceParams.Eps },
		func(c *Config, v float64) { c.ForceParams.Eps = v },
	},
	"sigma": {
		func(c *Config) float64 { return c.ForceParams.Sigma },
		func(c *Config, v float64) { c.ForceParams.Sigma = v },
	},
	"theta": {
		func(c *Config) float64 { return c.ForceParams.Theta },
		func(c *Config, v float64) { c.ForceParams.Theta = v },
	},
	"speed": {
		func(c *Config) float64 { return c.DistParams.Speed },
		func(c *Config, v float64) { c.DistParams.Speed = v },
	},
}

// SetParam sets a tunable numeric field by name. Values are checked later,
// when Setup builds the engine.
func SetParam(cfg *Config, name string, v float64) error {
	p, ok := params[name]
	if !ok {
		return dynamo.Invalid("param", "unknown parameter %q", name)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return dynamo.Invalid(name, "must be finite, got %g", v)
	}
	p.set(cfg, v)
	return nil
}

func GetParam(cfg *Config, name string) (float64, error) {
	p, ok := params[name]
	if !ok {
		return 0, dynamo.Invalid("param", "unknown parameter %q", name)
	}
	return p.get(cfg), nil
}

func ListParams() []string {
	names := make([]string, 0, len(params))
	for k := range params {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}
