package distrib

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/gravsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

const tol = 1e-9

// seqSource replays a fixed stream of uniform draws.
type seqSource struct {
	vals []float64
	i    int
}

func (s *seqSource) Float64() float64 {
	v := s.vals[s.i%len(s.vals)]
	s.i++
	return v
}

func TestSphere_Bounds(t *testing.T) {
	s := Sphere{Radius: Range{Min: 0.5, Max: 2}}
	pos, vel, err := Sample(s, 2000, NewSource(7))
	if err != nil {
		t.Fatalf("sample failed: %v", err)
	}

	for i := range pos {
		r := r3.Norm(pos[i])
		if r < s.Radius.Min-tol || r > s.Radius.Max+tol {
			t.Fatalf("body %d: radius %f outside [%f, %f]", i, r, s.Radius.Min, s.Radius.Max)
		}
		if vel[i] != (r3.Vec{}) {
			t.Fatalf("body %d: expected zero velocity, got %v", i, vel[i])
		}
	}
}

func TestCylinder_Bounds(t *testing.T) {
	c := Cylinder{
		Radius: Range{Min: 0.2, Max: 1.5},
		Angle:  Range{Min: 0, Max: math.Pi},
		Height: Range{Min: -0.1, Max: 0.3},
		Speed:  0.4,
	}
	pos, vel, err := Sample(c, 2000, NewSource(11))
	if err != nil {
		t.Fatalf("sample failed: %v", err)
	}

	for i := range pos {
		radial := math.Hypot(pos[i].X, pos[i].Z)
		if !c.Radius.Contains(radial, tol) {
			t.Fatalf("body %d: radial %f outside %v", i, radial, c.Radius)
		}
		if !c.Height.Contains(pos[i].Y, tol) {
			t.Fatalf("body %d: height %f outside %v", i, pos[i].Y, c.Height)
		}

		want := c.Speed * radial / c.Radius.Max
		if got := r3.Norm(vel[i]); math.Abs(got-want) > tol {
			t.Fatalf("body %d: expected speed %f, got %f", i, want, got)
		}
		if math.Abs(r3.Dot(vel[i], pos[i])) > tol {
			t.Fatalf("body %d: velocity not tangential", i)
		}
	}
}

func TestCylinder_OuterSpeed(t *testing.T) {
	c := Cylinder{
		Radius: Range{Min: 2, Max: 2},
		Angle:  Range{Min: 0, Max: 2 * math.Pi},
		Height: Range{Min: 0, Max: 0},
		Speed:  3,
	}
	_, vel, err := Sample(c, 50, NewSource(3))
	if err != nil {
		t.Fatalf("sample failed: %v", err)
	}
	for i, v := range vel {
		if got := r3.Norm(v); math.Abs(got-c.Speed) > tol {
			t.Errorf("body %d at rmax: expected speed %f, got %f", i, c.Speed, got)
		}
	}
}

func TestCylinder_DrawOrder(t *testing.T) {
	c := Cylinder{
		Radius: Range{Min: 0, Max: 2},
		Angle:  Range{Min: 0, Max: math.Pi},
		Height: Range{Min: 10, Max: 20},
		Speed:  1,
	}
	// r² = 0.25·4 = 1, phi = π/2, y = 15
	src := &seqSource{vals: []float64{0.25, 0.5, 0.5}}
	pos := make([]r3.Vec, 1)
	vel := make([]r3.Vec, 1)
	c.Fill(src, vel, pos)

	if math.Abs(pos[0].X) > tol || math.Abs(pos[0].Y-15) > tol || math.Abs(pos[0].Z-1) > tol {
		t.Errorf("unexpected position %v", pos[0])
	}
	// tangent at phi=π/2 is (-1, 0, 0), speed 1·1/2
	if math.Abs(vel[0].X+0.5) > tol || math.Abs(vel[0].Z) > tol {
		t.Errorf("unexpected velocity %v", vel[0])
	}
	if src.i != 3 {
		t.Errorf("expected 3 draws per body, got %d", src.i)
	}
}

func TestSphere_DrawOrder(t *testing.T) {
	s := Sphere{Radius: Range{Min: 0, Max: 2}}
	// r³ = 0.125·8 = 1, cosθ = -1 + 2·1 = 1, phi = 0
	src := &seqSource{vals: []float64{0.125, 1.0, 0.0}}
	pos := make([]r3.Vec, 1)
	vel := make([]r3.Vec, 1)
	s.Fill(src, vel, pos)

	want := r3.Vec{X: 0, Y: 0, Z: 1}
	if r3.Norm(r3.Sub(pos[0], want)) > tol {
		t.Errorf("expected %v, got %v", want, pos[0])
	}
}

func TestSample_Deterministic(t *testing.T) {
	dists := []Distribution{DefaultCylinder(), DefaultSphere()}

	for _, d := range dists {
		t.Run(d.Name(), func(t *testing.T) {
			p1, v1, err := Sample(d, 500, NewSource(42))
			if err != nil {
				t.Fatal(err)
			}
			p2, v2, err := Sample(d, 500, NewSource(42))
			if err != nil {
				t.Fatal(err)
			}
			for i := range p1 {
				if p1[i] != p2[i] || v1[i] != v2[i] {
					t.Fatalf("body %d differs between runs", i)
				}
			}

			p3, _, _ := Sample(d, 500, NewSource(43))
			if p1[0] == p3[0] {
				t.Error("different seeds produced the same first body")
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		d    Distribution
	}{
		{"sphere inverted radius", Sphere{Radius: Range{Min: 2, Max: 1}}},
		{"sphere negative radius", Sphere{Radius: Range{Min: -1, Max: 1}}},
		{"cylinder inverted angle", Cylinder{Radius: Range{Max: 1}, Angle: Range{Min: 1, Max: 0}}},
		{"cylinder inverted height", Cylinder{Radius: Range{Max: 1}, Height: Range{Min: 1, Max: 0}}},
		{"cylinder zero rmax", Cylinder{Radius: Range{Min: 0, Max: 0}}},
		{"cylinder nan speed", Cylinder{Radius: Range{Max: 1}, Speed: math.NaN()}},
		{"sphere infinite radius", Sphere{Radius: Range{Min: 0, Max: math.Inf(1)}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.d.Validate()
			if !errors.Is(err, dynamo.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}

	if err := DefaultCylinder().Validate(); err != nil {
		t.Errorf("default cylinder invalid: %v", err)
	}
	if err := DefaultSphere().Validate(); err != nil {
		t.Errorf("default sphere invalid: %v", err)
	}
}

func TestSample_ZeroBodies(t *testing.T) {
	_, _, err := Sample(DefaultSphere(), 0, NewSource(1))
	if !errors.Is(err, dynamo.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestPoints(t *testing.T) {
	p := Points{
		Positions:  []r3.Vec{{X: 1}, {Y: 2}},
		Velocities: []r3.Vec{{Z: 3}},
	}
	if err := p.Validate(); err != nil {
		t.Fatal(err)
	}

	pos, vel, err := Sample(p, 3, nil)
	if err != nil {
		t.Fatal(err)
	}
	if pos[0] != (r3.Vec{X: 1}) || pos[1] != (r3.Vec{Y: 2}) || pos[2] != (r3.Vec{}) {
		t.Errorf("unexpected positions %v", pos)
	}
	if vel[0] != (r3.Vec{Z: 3}) || vel[1] != (r3.Vec{}) {
		t.Errorf("unexpected velocities %v", vel)
	}

	bad := []Points{
		{},
		{Positions: []r3.Vec{{}}, Velocities: []r3.Vec{{}, {}}},
		{Positions: []r3.Vec{{X: math.Inf(1)}}},
	}
	for i, b := range bad {
		if err := b.Validate(); !errors.Is(err, dynamo.ErrInvalidConfig) {
			t.Errorf("case %d: expected ErrInvalidConfig, got %v", i, err)
		}
	}
}
