package config

import (
	"maps"
	"math"
	"slices"

	"github.com/san-kum/gravsim/internal/distrib"
	"github.com/san-kum/gravsim/internal/experiment"
)

var Presets = map[string]*Config{
	// Slowly rotating disc under softened gravity.
	"galaxy": {
		Bodies: 2000, Steps: 400, StepSize: 0.5, Integrator: "euler",
		Distribution: DistributionConfig{Kind: "cylinder", DistParams: experiment.DistParams{
			Radius: distrib.Range{Min: 0.1, Max: 1},
			Angle:  distrib.Range{Min: 0, Max: 2 * math.Pi},
			Height: distrib.Range{Min: -0.05, Max: 0.05},
			Speed:  0.01,
		}},
		Force: ForceConfig{Kind: "gravity", ForceParams: experiment.ForceParams{G: 1e-5, Damping: 1e-5}},
	},
	// Large disc through the octree approximation.
	"cluster": {
		Bodies: 5000, Steps: 200, StepSize: 0.5, Integrator: "euler",
		Distribution: DistributionConfig{Kind: "sphere", DistParams: experiment.DistParams{
			Radius: distrib.Range{Min: 0, Max: 1},
		}},
		Force: ForceConfig{Kind: "barneshut", ForceParams: experiment.ForceParams{G: 1e-5, Damping: 1e-5, Theta: 0.5}},
	},
	"gas": {
		Bodies: 500, Steps: 300, StepSize: 0.05, Integrator: "rk4",
		Distribution: DistributionConfig{Kind: "sphere", DistParams: experiment.DistParams{
			Radius: distrib.Range{Min: 0, Max: 1},
		}},
		Force: ForceConfig{Kind: "lj", ForceParams: experiment.ForceParams{Eps: 1, Sigma: 1e-3}},
	},
	"binary": {
		Bodies: 2, Steps: 1000, StepSize: 0.01, Integrator: "verlet",
		Distribution: DistributionConfig{Kind: "cylinder", DistParams: experiment.DistParams{
			Radius: distrib.Range{Min: 0.5, Max: 0.5},
			Angle:  distrib.Range{Min: 0, Max: 2 * math.Pi},
			Height: distrib.Range{Min: 0, Max: 0},
			Speed:  0.5,
		}},
		Force: ForceConfig{Kind: "gravity", ForceParams: experiment.ForceParams{G: 1, Damping: 1e-5}},
	},
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
	return slices.Sorted(maps.Keys(Presets))
}
