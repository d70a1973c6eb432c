package render

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/tanema/gween/ease"
)

func TestFlight(t *testing.T) {
	from := Camera{Position: mgl32.Vec3{0, 10, 20}, Target: mgl32.Vec3{2, 0, 0}, FovY: 30}
	to := Camera{Position: mgl32.Vec3{0, 4, 6}, Up: mgl32.Vec3{0, 1, 0}, FovY: 50}
	f := NewFlight(from, to, 1, ease.Linear)

	cam, done := f.Update(0.5)
	assert.False(t, done)
	assert.InDelta(t, 7, cam.Position.Y(), 1e-5)
	assert.InDelta(t, 13, cam.Position.Z(), 1e-5)
	assert.InDelta(t, 1, cam.Target.X(), 1e-5)
	assert.Equal(t, to.FovY, cam.FovY)
	assert.Equal(t, to.Up, cam.Up)

	cam, done = f.Update(0.75)
	assert.True(t, done)
	assert.True(t, f.Done())
	assert.Equal(t, to, cam)
}

func TestFlight_ZeroDuration(t *testing.T) {
	to := Camera{Position: mgl32.Vec3{1, 2, 3}}
	f := NewFlight(Camera{}, to, 0, ease.OutCubic)

	cam, done := f.Update(0.016)
	assert.True(t, done)
	assert.Equal(t, to, cam)
}
