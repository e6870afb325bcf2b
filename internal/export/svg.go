// Package export renders stored runs to files.
package export

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/san-kum/gravsim/internal/viz"
	"gonum.org/v1/gonum/spatial/r3"
)

type SVGOptions struct {
	Width, Height int
	// Extent is the radius that fills the shorter side at zoom 1.
	Extent float64
	Color  string
	Camera *viz.Camera
}

func DefaultSVGOptions() SVGOptions {
	return SVGOptions{Width: 800, Height: 800, Extent: 1, Color: "#c9b6ff", Camera: viz.NewCamera()}
}

// PositionsSVG draws bodies as dots seen through the camera, far bodies
// first and dimmer.
func PositionsSVG(w io.Writer, positions []r3.Vec, opts SVGOptions) error {
	if opts.Camera == nil {
		opts.Camera = viz.NewCamera()
	}
	if opts.Extent <= 0 {
		opts.Extent = 1
	}

	type dot struct {
		x, y  int
		depth float64
	}
	view := opts.Camera.View()
	dots := make([]dot, 0, len(positions))
	lo, hi := 0.0, 0.0
	for _, p := range positions {
		x, y, d, ok := opts.Camera.Project(view, p, opts.Width, opts.Height, opts.Extent)
		if !ok {
			continue
		}
		if len(dots) == 0 {
			lo, hi = d, d
		}
		lo, hi = min(lo, d), max(hi, d)
		dots = append(dots, dot{x, y, d})
	}
	// Camera looks down -z: smaller depth is further away.
	sort.Slice(dots, func(i, j int) bool { return dots[i].depth < dots[j].depth })

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g fill="%s">
`, opts.Width, opts.Height, opts.Width, opts.Height, opts.Color)

	rng := hi - lo
	for _, d := range dots {
		opacity := 1.0
		if rng > 0 {
			opacity = 0.3 + 0.7*(d.depth-lo)/rng
		}
		fmt.Fprintf(&sb, `<circle cx="%d" cy="%d" r="1.5" fill-opacity="%.2f"/>
`, d.x, d.y, opacity)
	}
	sb.WriteString("</g>\n</svg>\n")

	_, err := io.WriteString(w, sb.String())
	return err
}

// TrajectoryToSVG draws a polyline through (xs[i], ys[i]), scaled to fit.
func TrajectoryToSVG(xs, ys []float64, width, height int, strokeColor string) string {
	n := min(len(xs), len(ys))
	if n < 2 {
		return ""
	}

	minX, maxX := xs[0], xs[0]
	minY, maxY := ys[0], ys[0]
	for i := 0; i < n; i++ {
		minX, maxX = min(minX, xs[i]), max(maxX, xs[i])
		minY, maxY = min(minY, ys[i]), max(maxY, ys[i])
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	minY -= rangeY * 0.1
	rangeX *= 1.2
	rangeY *= 1.2

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, strokeColor)

	for i := 0; i < n; i++ {
		x := (xs[i] - minX) / rangeX * float64(width)
		y := float64(height) - (ys[i]-minY)/rangeY*float64(height)
		if i == 0 {
			fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}

	sb.WriteString("\"/>\n</svg>\n")
	return sb.String()
}
