// Package life runs a toroidal Game of Life on the same double buffer as
// the N-body engine. Each cell also carries a drift vector that leans
// towards its live neighbours, used for shading.
package life

import (
	"image/color"
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/gravsim/internal/distrib"
	"github.com/san-kum/gravsim/internal/doublebuf"
	"github.com/san-kum/gravsim/internal/dynamo"
)

type CellState uint8

const (
	Dead CellState = iota
	Live
)

// Grid is one generation, stored row-major.
type Grid struct {
	Width, Height int
	Cells         []CellState
	Drift         []mgl64.Vec2
	Shade         []color.RGBA
}

func newGrid(width, height int) Grid {
	n := width * height
	return Grid{
		Width:  width,
		Height: height,
		Cells:  make([]CellState, n),
		Drift:  make([]mgl64.Vec2, n),
		Shade:  make([]color.RGBA, n),
	}
}

func (g *Grid) index(x, y int) int { return y*g.Width + x }

// neighbours lists the eight offsets, top row first, with the drift weight
// each contributes when that neighbour is alive.
var neighbours = [8]struct {
	dx, dy int
	w      mgl64.Vec2
}{
	{-1, 1, mgl64.Vec2{-0.7, 0.7}}, {0, 1, mgl64.Vec2{0, 1}}, {1, 1, mgl64.Vec2{0.7, 0.7}},
	{-1, 0, mgl64.Vec2{-1, 0}}, {1, 0, mgl64.Vec2{1, 0}},
	{-1, -1, mgl64.Vec2{-0.7, -0.7}}, {0, -1, mgl64.Vec2{0, -1}}, {1, -1, mgl64.Vec2{0.7, -0.7}},
}

type click struct {
	x, y  int
	state CellState
}

type Sim struct {
	width, height int
	workers       int

	// clickMu guards clicks only; AddClick may be called from an input
	// goroutine while a step runs.
	clickMu sync.Mutex
	clicks  []click

	mu         sync.RWMutex
	game       *doublebuf.Buffer[Grid]
	generation int
}

func New(width, height int) (*Sim, error) {
	if width <= 0 || height <= 0 {
		return nil, dynamo.Invalid("grid", "dimensions must be positive, got %dx%d", width, height)
	}
	return &Sim{
		width:  width,
		height: height,
		game: doublebuf.New(func() Grid {
			return newGrid(width, height)
		}),
	}, nil
}

// SetWorkers caps the goroutines used per generation; 0 means GOMAXPROCS.
func (s *Sim) SetWorkers(n int) {
	s.mu.Lock()
	s.workers = n
	s.mu.Unlock()
}

func (s *Sim) Width() int  { return s.width }
func (s *Sim) Height() int { return s.height }

// AddClick queues a cell change. It is applied to the current generation
// at the start of the next Step; when several queued clicks hit the same
// cell, the first one queued wins.
func (s *Sim) AddClick(x, y int, state CellState) error {
	if x < 0 || x >= s.width || y < 0 || y >= s.height {
		return dynamo.Invalid("click", "(%d, %d) outside %dx%d grid", x, y, s.width, s.height)
	}
	s.clickMu.Lock()
	s.clicks = append(s.clicks, click{x, y, state})
	s.clickMu.Unlock()
	return nil
}

// Randomize sets every cell of the current generation live with the given
// probability.
func (s *Sim) Randomize(src distrib.Source, density float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := s.game.Read()
	for i := range g.Cells {
		if src.Float64() < density {
			g.Cells[i] = Live
		} else {
			g.Cells[i] = Dead
		}
	}
}

func (s *Sim) Step() {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, w := s.game.Read(), s.game.Write()

	// Newest first, so the earliest click on a cell wins.
	s.clickMu.Lock()
	for i := len(s.clicks) - 1; i >= 0; i-- {
		c := s.clicks[i]
		r.Cells[r.index(c.x, c.y)] = c.state
	}
	s.clicks = s.clicks[:0]
	s.clickMu.Unlock()

	dynamo.ParallelFor(s.height, s.workers, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < s.width; x++ {
				s.advanceCell(r, w, x, y)
			}
		}
	})

	s.game.Swap()
	s.generation++
}

func (s *Sim) advanceCell(r, w *Grid, x, y int) {
	var pull mgl64.Vec2
	live := 0
	for _, n := range neighbours {
		nx := (x + n.dx + s.width) % s.width
		ny := (y + n.dy + s.height) % s.height
		if r.Cells[r.index(nx, ny)] == Live {
			live++
			pull = pull.Add(n.w)
		}
	}
	pull = pull.Mul(1.0 / 8)

	i := r.index(x, y)
	next := Dead
	switch {
	case r.Cells[i] == Live && (live == 2 || live == 3):
		next = Live
	case r.Cells[i] == Dead && live == 3:
		next = Live
	}

	drift := r.Drift[i].Add(pull).Mul(0.5)
	w.Cells[i] = next
	w.Drift[i] = drift
	w.Shade[i] = shade(next, drift)
}

// shade maps a live cell's drift to red and blue; dead cells are black.
func shade(state CellState, drift mgl64.Vec2) color.RGBA {
	if state == Dead {
		return color.RGBA{A: 255}
	}
	c := func(v float64) uint8 {
		return uint8(math.Min(math.Abs(v)*5+0.2, 1) * 255)
	}
	return color.RGBA{R: c(drift.X()), B: c(drift.Y()), A: 255}
}

// WithGrid calls fn with the current generation. fn must not retain or
// modify it.
func (s *Sim) WithGrid(fn func(*Grid)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.game.Read())
}

func (s *Sim) At(x, y int) CellState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g := s.game.Read()
	return g.Cells[g.index(x, y)]
}

// Cells returns a copy of the current generation's states.
func (s *Sim) Cells() []CellState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]CellState(nil), s.game.Read().Cells...)
}

func (s *Sim) Alive() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, c := range s.game.Read().Cells {
		if c == Live {
			n++
		}
	}
	return n
}

func (s *Sim) Generation() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}
