package gui

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/san-kum/dominoes/internal/render"
	"github.com/san-kum/dominoes/internal/scene"
)

// StartFunc builds a session drawing into the window. Run calls it again on
// reset.
type StartFunc func(r render.Renderer) (*scene.Session, error)

// Run starts a session and drives it from the display refresh until the
// window is closed.
func (w *Window) Run(start StartFunc) error {
	s, err := start(w)
	if err != nil {
		return err
	}

	for !rl.WindowShouldClose() {
		if rl.IsKeyPressed(rl.KeySpace) {
			w.paused = !w.paused
		}
		if rl.IsKeyPressed(rl.KeyR) {
			next, err := start(w)
			if err != nil {
				slog.Error("reset failed", "error", err)
			} else {
				s, w.paused = next, false
			}
		}
		if w.flight.Done() {
			w.handleCamera(rl.GetFrameTime())
		}

		if w.paused {
			if err := w.Draw(w.last); err != nil {
				return err
			}
			continue
		}
		s.OnFrame(float64(rl.GetFrameTime()))
	}
	return s.Close()
}

// handleCamera orbits the eye around the target with the arrow keys and
// zooms with the mouse wheel.
func (w *Window) handleCamera(dt float32) {
	target := mgl32.Vec3{w.camera.Target.X, w.camera.Target.Y, w.camera.Target.Z}
	offset := mgl32.Vec3{w.camera.Position.X, w.camera.Position.Y, w.camera.Position.Z}.Sub(target)

	speed := 1.5 * dt
	if rl.IsKeyDown(rl.KeyLeft) {
		offset = mgl32.Rotate3DY(-speed).Mul3x1(offset)
	}
	if rl.IsKeyDown(rl.KeyRight) {
		offset = mgl32.Rotate3DY(speed).Mul3x1(offset)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		offset[1] += 4 * dt
	}
	if rl.IsKeyDown(rl.KeyDown) {
		offset[1] = max(offset[1]-4*dt, 0.2)
	}
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		dist := offset.Len()
		next := min(max(dist*(1-0.1*wheel), 1), 60)
		offset = offset.Mul(next / dist)
	}

	w.camera.Position = vec3(target.Add(offset))
}
