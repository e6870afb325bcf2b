package dynamo

import (
	"iter"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// BodySet is one generation of body storage. Index i in both arrays refers
// to the same body. The length is fixed at construction.
type BodySet struct {
	Velocities []r3.Vec
	Positions  []r3.Vec
}

func NewBodySet(n int) BodySet {
	return BodySet{
		Velocities: make([]r3.Vec, n),
		Positions:  make([]r3.Vec, n),
	}
}

func (b *BodySet) Len() int { return len(b.Positions) }

// IsValid reports whether every component of every vector is finite.
func (b *BodySet) IsValid() bool {
	return allFinite(b.Velocities) && allFinite(b.Positions)
}

func allFinite(vs []r3.Vec) bool {
	for _, v := range vs {
		if !IsFinite(v) {
			return false
		}
	}
	return true
}

func IsFinite(v r3.Vec) bool {
	for _, c := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// View is a read-only window onto a vector array. It does not copy; the
// owner decides how long the underlying storage stays stable.
type View struct {
	vs []r3.Vec
}

func NewView(vs []r3.Vec) View { return View{vs: vs} }

func (v View) Len() int { return len(v.vs) }

func (v View) At(i int) r3.Vec { return v.vs[i] }

func (v View) All() iter.Seq2[int, r3.Vec] {
	return func(yield func(int, r3.Vec) bool) {
		for i, p := range v.vs {
			if !yield(i, p) {
				return
			}
		}
	}
}

// CopyTo copies the view into dst, growing it if needed, and returns it.
func (v View) CopyTo(dst []r3.Vec) []r3.Vec {
	if cap(dst) < len(v.vs) {
		dst = make([]r3.Vec, len(v.vs))
	}
	dst = dst[:len(v.vs)]
	copy(dst, v.vs)
	return dst
}
