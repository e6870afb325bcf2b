package dynamo

import (
	"errors"
	"math"
	"sync/atomic"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestParallelFor_CoversEveryIndexOnce(t *testing.T) {
	tests := []struct {
		name    string
		n       int
		workers int
	}{
		{"empty", 0, 4},
		{"single", 1, 4},
		{"below chunk", MinChunk - 1, 8},
		{"uneven", 1000, 7},
		{"default workers", 4096, 0},
		{"one worker", 500, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hits := make([]int32, tt.n)
			ParallelFor(tt.n, tt.workers, func(start, end int) {
				for i := start; i < end; i++ {
					atomic.AddInt32(&hits[i], 1)
				}
			})
			for i, h := range hits {
				if h != 1 {
					t.Fatalf("index %d visited %d times", i, h)
				}
			}
		})
	}
}

func TestBodySet(t *testing.T) {
	set := NewBodySet(3)
	if set.Len() != 3 {
		t.Errorf("expected 3 bodies, got %d", set.Len())
	}
	if len(set.Velocities) != len(set.Positions) {
		t.Error("velocity and position arrays differ in length")
	}
	if !set.IsValid() {
		t.Error("fresh body set should be valid")
	}

	set.Positions[1] = r3.Vec{X: math.NaN()}
	if set.IsValid() {
		t.Error("expected NaN position to invalidate the set")
	}
}

func TestView(t *testing.T) {
	src := []r3.Vec{{X: 1}, {Y: 2}, {Z: 3}}
	v := NewView(src)

	if v.Len() != 3 {
		t.Errorf("expected len 3, got %d", v.Len())
	}
	if v.At(1) != (r3.Vec{Y: 2}) {
		t.Errorf("unexpected At(1): %v", v.At(1))
	}

	n := 0
	for i, p := range v.All() {
		if p != src[i] {
			t.Errorf("All yielded %v at %d, want %v", p, i, src[i])
		}
		n++
	}
	if n != 3 {
		t.Errorf("expected 3 elements, got %d", n)
	}

	dst := v.CopyTo(nil)
	dst[0] = r3.Vec{}
	if src[0] != (r3.Vec{X: 1}) {
		t.Error("CopyTo did not create an independent copy")
	}
}

func TestConfigError(t *testing.T) {
	err := Invalid("n_bodies", "must be positive, got %d", 0)

	if !errors.Is(err, ErrInvalidConfig) {
		t.Error("expected errors.Is(err, ErrInvalidConfig)")
	}

	var ce *ConfigError
	if !errors.As(err, &ce) {
		t.Fatal("expected *ConfigError")
	}
	if ce.Field != "n_bodies" {
		t.Errorf("expected field n_bodies, got %s", ce.Field)
	}

	want := "dynamo: invalid configuration: n_bodies: must be positive, got 0"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
