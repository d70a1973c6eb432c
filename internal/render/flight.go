package render

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Flight eases a camera from one placement to another, one tween per
// coordinate of the eye and of the target.
type Flight struct {
	to     Camera
	eye    [3]*gween.Tween
	target [3]*gween.Tween
	done   bool
}

func NewFlight(from, to Camera, duration float32, fn ease.TweenFunc) *Flight {
	f := &Flight{to: to, done: duration <= 0}
	for i := 0; i < 3; i++ {
		f.eye[i] = gween.New(from.Position[i], to.Position[i], duration, fn)
		f.target[i] = gween.New(from.Target[i], to.Target[i], duration, fn)
	}
	return f
}

// Update advances the flight by dt seconds and returns the camera to use for
// this frame.
func (f *Flight) Update(dt float32) (Camera, bool) {
	if f.done {
		return f.to, true
	}
	cam := f.to
	finished := true
	var eye, target mgl32.Vec3
	for i := 0; i < 3; i++ {
		var d1, d2 bool
		eye[i], d1 = f.eye[i].Update(dt)
		target[i], d2 = f.target[i].Update(dt)
		finished = finished && d1 && d2
	}
	cam.Position, cam.Target = eye, target
	f.done = finished
	return cam, finished
}

func (f *Flight) Done() bool { return f.done }
