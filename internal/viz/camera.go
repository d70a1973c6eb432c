package viz

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Camera orbits a target point. Yaw turns around world Y, Pitch raises the
// eye above the ground.
type Camera struct {
	Target   mgl64.Vec3
	Yaw      float64
	Pitch    float64
	Distance float64
	FovY     float64 // radians
	Near     float64
	Far      float64
}

// NewCamera places the camera so that it looks from eye at target.
func NewCamera(eye, target mgl64.Vec3, fovDeg float64) *Camera {
	d := eye.Sub(target)
	dist := d.Len()
	if dist < 1e-6 {
		d, dist = mgl64.Vec3{0, 0, 1}, 1
	}
	return &Camera{
		Target:   target,
		Yaw:      math.Atan2(d.X(), d.Z()),
		Pitch:    math.Asin(d.Y() / dist),
		Distance: dist,
		FovY:     mgl64.DegToRad(fovDeg),
		Near:     0.1,
		Far:      200,
	}
}

func (c *Camera) Eye() mgl64.Vec3 {
	cp := math.Cos(c.Pitch)
	return c.Target.Add(mgl64.Vec3{
		math.Sin(c.Yaw) * cp,
		math.Sin(c.Pitch),
		math.Cos(c.Yaw) * cp,
	}.Mul(c.Distance))
}

func (c *Camera) Orbit(a float64) { c.Yaw += a }

func (c *Camera) Raise(a float64) {
	c.Pitch = math.Max(-1.5, math.Min(1.5, c.Pitch+a))
}

func (c *Camera) ZoomIn()  { c.Distance = math.Max(1, c.Distance/1.2) }
func (c *Camera) ZoomOut() { c.Distance = math.Min(100, c.Distance*1.2) }

// projector caches the matrices for one frame.
type projector struct {
	view, proj mgl64.Mat4
	near       float64
	w, h       int
}

func (c *Camera) projector(w, h int) projector {
	aspect := float64(w) / float64(max(h, 1))
	return projector{
		view: mgl64.LookAtV(c.Eye(), c.Target, mgl64.Vec3{0, 1, 0}),
		proj: mgl64.Perspective(c.FovY, aspect, c.Near, c.Far),
		near: c.Near,
		w:    w,
		h:    h,
	}
}

// project maps a world point to canvas sub-pixels. depth is the distance in
// front of the eye; ok is false for points behind the near plane.
func (p projector) project(v mgl64.Vec3) (x, y int, depth float64, ok bool) {
	eye := p.view.Mul4x1(v.Vec4(1))
	if -eye.Z() < p.near {
		return 0, 0, 0, false
	}
	win := mgl64.Project(v, p.view, p.proj, 0, 0, p.w, p.h)
	return int(math.Round(win.X())), p.h - 1 - int(math.Round(win.Y())), -eye.Z(), true
}
