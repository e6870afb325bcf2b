package distrib

import (
	"math"

	"github.com/san-kum/gravsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

// Cylinder places bodies uniformly by area in an annulus of the xz-plane,
// spread along y, moving tangentially so the outermost bodies have Speed.
type Cylinder struct {
	Radius Range   `yaml:"radius"`
	Angle  Range   `yaml:"angle"`
	Height Range   `yaml:"height"`
	Speed  float64 `yaml:"speed"`
}

func DefaultCylinder() Cylinder {
	return Cylinder{
		Radius: Range{Min: 0.1, Max: 1},
		Angle:  Range{Min: 0, Max: 2 * math.Pi},
		Height: Range{Min: -0.05, Max: 0.05},
		Speed:  0.01,
	}
}

func (c Cylinder) Name() string { return "cylinder" }

func (c Cylinder) Validate() error {
	if err := validateRadius(c.Radius); err != nil {
		return err
	}
	if c.Radius.Max == 0 {
		return dynamo.Invalid("radius", "max must be positive to scale speed")
	}
	if err := c.Angle.Validate("angle"); err != nil {
		return err
	}
	if err := c.Height.Validate("height"); err != nil {
		return err
	}
	if math.IsNaN(c.Speed) || math.IsInf(c.Speed, 0) {
		return dynamo.Invalid("speed", "must be finite, got %g", c.Speed)
	}
	return nil
}

// Fill draws r, phi, then y for each body in index order.
func (c Cylinder) Fill(src Source, vel, pos []r3.Vec) {
	area := Range{Min: c.Radius.Min * c.Radius.Min, Max: c.Radius.Max * c.Radius.Max}
	scale := c.Speed / c.Radius.Max

	for i := range pos {
		r := math.Sqrt(Uniform(src, area))
		phi := Uniform(src, c.Angle)
		y := Uniform(src, c.Height)

		sin, cos := math.Sincos(phi)
		pos[i] = r3.Vec{X: r * cos, Y: y, Z: r * sin}
		// d(pos)/d(phi), scaled so r == rmax moves at Speed
		vel[i] = r3.Scale(r*scale, r3.Vec{X: -sin, Y: 0, Z: cos})
	}
}
