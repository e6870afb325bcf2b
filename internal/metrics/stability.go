package metrics

import (
	"github.com/san-kum/gravsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

// Stability is the fraction of observations in which every body stayed
// within threshold of the centre of mass. Escapers and non-finite states
// count as violations.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(pos, _ dynamo.View, _ float64) {
	s.samples++
	if pos.Len() == 0 {
		return
	}
	var com r3.Vec
	for _, p := range pos.All() {
		com = r3.Add(com, p)
	}
	com = r3.Scale(1/float64(pos.Len()), com)
	if !dynamo.IsFinite(com) {
		s.violations++
		return
	}
	t2 := s.threshold * s.threshold
	for _, p := range pos.All() {
		if r3.Norm2(r3.Sub(p, com)) > t2 {
			s.violations++
			break
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}
