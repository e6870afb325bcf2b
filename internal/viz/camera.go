package viz

import (
	"math"

	"github.com/charmbracelet/harmonica"
	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/spatial/r3"
)

// Camera is an orthographic view that orbits the origin.
type Camera struct {
	Yaw, Pitch float64
	Zoom       float64

	// Zoom springs towards zoomTarget on Settle when animated.
	animated   bool
	zoomTarget float64
	zoomVel    float64
	spring     harmonica.Spring
}

// NewCamera looks slightly down onto the xz-plane so a disc reads as an
// ellipse rather than a line.
func NewCamera() *Camera {
	return &Camera{
		Pitch:      0.6,
		Zoom:       1,
		animated:   true,
		zoomTarget: 1,
		spring:     harmonica.NewSpring(harmonica.FPS(frameRate), 8, 1),
	}
}

func (c *Camera) Rotate(yaw, pitch float64) {
	c.Yaw += yaw
	c.Pitch = mgl64.Clamp(c.Pitch+pitch, -math.Pi/2, math.Pi/2)
}

func (c *Camera) ZoomIn()  { c.setZoom(math.Min(20, c.ZoomTarget()*1.2)) }
func (c *Camera) ZoomOut() { c.setZoom(math.Max(0.05, c.ZoomTarget()/1.2)) }

// ZoomTarget is the zoom the camera is settling towards.
func (c *Camera) ZoomTarget() float64 {
	if c.animated {
		return c.zoomTarget
	}
	return c.Zoom
}

func (c *Camera) setZoom(z float64) {
	if c.animated {
		c.zoomTarget = z
		return
	}
	c.Zoom = z
}

// Settle advances the zoom one frame along its spring.
func (c *Camera) Settle() {
	if !c.animated {
		return
	}
	c.Zoom, c.zoomVel = c.spring.Update(c.Zoom, c.zoomVel, c.zoomTarget)
}

// View is the world to camera rotation: yaw about y, then pitch about x.
func (c *Camera) View() mgl64.Mat3 {
	return mgl64.Rotate3DX(c.Pitch).Mul3(mgl64.Rotate3DY(c.Yaw))
}

// Project maps p onto a w×h dot grid where a ball of radius extent fills
// the shorter side at zoom 1. It also returns the camera-space depth and
// whether the point lands on the grid.
func (c *Camera) Project(view mgl64.Mat3, p r3.Vec, w, h int, extent float64) (int, int, float64, bool) {
	q := view.Mul3x1(mgl64.Vec3{p.X, p.Y, p.Z})
	scale := c.Zoom * float64(min(w, h)) / (2 * extent)
	sx := int(math.Floor(q.X()*scale)) + w/2
	sy := int(math.Floor(-q.Y()*scale)) + h/2
	return sx, sy, q.Z(), sx >= 0 && sx < w && sy >= 0 && sy < h
}
