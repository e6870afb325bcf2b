package distrib

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Sphere places bodies uniformly by volume in a spherical shell, at rest.
type Sphere struct {
	Radius Range `yaml:"radius"`
}

func DefaultSphere() Sphere {
	return Sphere{Radius: Range{Min: 0, Max: 1}}
}

func (s Sphere) Name() string { return "sphere" }

func (s Sphere) Validate() error {
	return validateRadius(s.Radius)
}

// Fill draws r, cos(theta), then phi for each body in index order.
func (s Sphere) Fill(src Source, vel, pos []r3.Vec) {
	rmin, rmax := s.Radius.Min, s.Radius.Max
	volume := Range{Min: rmin * rmin * rmin, Max: rmax * rmax * rmax}
	polar := Range{Min: -1, Max: 1}
	azimuth := Range{Min: 0, Max: 2 * math.Pi}

	for i := range pos {
		r := math.Cbrt(Uniform(src, volume))
		cost := Uniform(src, polar)
		sint := math.Sqrt(1 - cost*cost)
		phi := Uniform(src, azimuth)

		sinp, cosp := math.Sincos(phi)
		pos[i] = r3.Vec{X: r * sint * cosp, Y: r * sint * sinp, Z: r * cost}
		vel[i] = r3.Vec{}
	}
}
