package physics

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/dominoes/internal/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dt = 1.0 / 60

var groundPose = geom.Pose{Rotation: mgl64.Vec3{-math.Pi / 2, 0, 0}}

func newGroundWorld(t *testing.T, cfg Config) *World {
	t.Helper()
	w, err := NewWorld(cfg)
	require.NoError(t, err)
	_, err = w.CreatePlane(groundPose)
	require.NoError(t, err)
	return w
}

func run(w *World, seconds float64) {
	for i := 0; i < int(math.Round(seconds/dt)); i++ {
		w.Step(dt)
	}
}

func tilt(w *World, h Handle) float64 {
	up := w.Orientation(h).Rotate(mgl64.Vec3{0, 1, 0})
	return math.Acos(math.Max(-1, math.Min(1, up.Dot(mgl64.Vec3{0, 1, 0}))))
}

func TestWorld_SphereComesToRest(t *testing.T) {
	w := newGroundWorld(t, DefaultConfig())
	ball, err := w.CreateSphere(geom.At(0, 1, 0), 0.3, 1)
	require.NoError(t, err)

	run(w, 5)

	assert.InDelta(t, 0.3, w.Position(ball).Y(), 0.05)
	assert.InDelta(t, 0, w.Position(ball).X(), 1e-6)
	assert.Less(t, w.Velocity(ball).Len(), 0.1)
}

func TestWorld_BoxSettlesUpright(t *testing.T) {
	w := newGroundWorld(t, DefaultConfig())
	box, err := w.CreateBox(geom.At(0, 0.51, 0), mgl64.Vec3{0.05, 0.5, 0.25}, 1)
	require.NoError(t, err)

	run(w, 3)

	assert.InDelta(t, 0.5, w.Position(box).Y(), 0.02)
	assert.Less(t, tilt(w, box), 0.02)
}

func TestWorld_ImpulseTopplesBox(t *testing.T) {
	w := newGroundWorld(t, DefaultConfig())
	box, err := w.CreateBox(geom.At(0, 0.5, 0), mgl64.Vec3{0.05, 0.5, 0.25}, 1)
	require.NoError(t, err)

	require.NoError(t, w.ApplyImpulse(box, mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0, 0.4, 0}))
	run(w, 3)

	assert.Greater(t, tilt(w, box), 1.0)
	assert.Greater(t, w.Position(box).X(), 0.0)
	assert.Less(t, w.Position(box).Y(), 0.2)
}

func TestWorld_StackedCubes(t *testing.T) {
	w := newGroundWorld(t, DefaultConfig())
	half := mgl64.Vec3{0.5, 0.5, 0.5}
	bottom, err := w.CreateBox(geom.At(0, 0.5, 0), half, 1)
	require.NoError(t, err)
	top, err := w.CreateBox(geom.At(0, 1.5, 0), half, 1)
	require.NoError(t, err)

	run(w, 3)

	assert.InDelta(t, 0.5, w.Position(bottom).Y(), 0.03)
	assert.InDelta(t, 1.5, w.Position(top).Y(), 0.05)
	assert.Less(t, tilt(w, top), 0.02)
}

func TestWorld_SphereCollisionConservesMomentum(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Gravity = mgl64.Vec3{}
	cfg.LinearDamping = 0
	cfg.AngularDamping = 0
	cfg.AllowSleep = false
	w, err := NewWorld(cfg)
	require.NoError(t, err)

	a, err := w.CreateSphere(geom.At(-1, 0, 0), 0.3, 1)
	require.NoError(t, err)
	b, err := w.CreateSphere(geom.At(1, 0, 0), 0.3, 2)
	require.NoError(t, err)
	require.NoError(t, w.ApplyImpulse(a, mgl64.Vec3{3, 0, 0}, mgl64.Vec3{}))

	run(w, 2)

	momentum := w.Velocity(a).Mul(w.Mass(a)).Add(w.Velocity(b).Mul(w.Mass(b)))
	assert.InDelta(t, 3, momentum.X(), 1e-6)
	assert.Greater(t, w.Velocity(b).X(), 0.5, "b should have been struck")
	assert.Less(t, w.Position(a).X(), w.Position(b).X())
}

func TestWorld_SleepAndWake(t *testing.T) {
	w := newGroundWorld(t, DefaultConfig())
	box, err := w.CreateBox(geom.At(0, 0.5, 0), mgl64.Vec3{0.05, 0.5, 0.25}, 1)
	require.NoError(t, err)

	run(w, 3)
	require.True(t, w.Sleeping(box))
	before := w.Pose(box)

	run(w, 1)
	assert.Equal(t, before, w.Pose(box), "sleeping bodies must not move")

	require.NoError(t, w.ApplyImpulse(box, mgl64.Vec3{0, 2, 0}, mgl64.Vec3{}))
	assert.False(t, w.Sleeping(box))
	w.Step(dt)
	assert.Greater(t, w.Position(box).Y(), before.Position.Y())
}

func TestWorld_NoSleepWhenDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AllowSleep = false
	w := newGroundWorld(t, cfg)
	box, err := w.CreateBox(geom.At(0, 0.5, 0), mgl64.Vec3{0.05, 0.5, 0.25}, 1)
	require.NoError(t, err)

	run(w, 3)
	assert.False(t, w.Sleeping(box))
}

func TestWorld_PoseBeforeStep(t *testing.T) {
	w, err := NewWorld(DefaultConfig())
	require.NoError(t, err)

	p := geom.Pose{Position: mgl64.Vec3{1, 2, 3}, Rotation: mgl64.Vec3{0, 0.7, 0}}
	h, err := w.CreateBox(p, mgl64.Vec3{0.1, 0.1, 0.1}, 1)
	require.NoError(t, err)

	got := w.Pose(h)
	assertVec(t, p.Position, got.Position, 1e-12)
	assert.InDelta(t, 0, geom.AngleBetween(got.Quat(), p.Quat()), 1e-9)
}

func TestWorld_StepIgnoresNonPositiveDt(t *testing.T) {
	w, err := NewWorld(DefaultConfig())
	require.NoError(t, err)
	ball, err := w.CreateSphere(geom.At(0, 5, 0), 0.3, 1)
	require.NoError(t, err)

	w.Step(0)
	w.Step(-1)
	w.Step(math.NaN())

	assert.Equal(t, 0, w.StepCount())
	assert.Equal(t, mgl64.Vec3{0, 5, 0}, w.Position(ball))
}

func TestWorld_FreeFall(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LinearDamping = 0
	w, err := NewWorld(cfg)
	require.NoError(t, err)
	ball, err := w.CreateSphere(geom.At(0, 100, 0), 0.3, 1)
	require.NoError(t, err)

	run(w, 1)

	assert.InDelta(t, DefaultGravity, w.Velocity(ball).Y(), 1e-9)
	assert.InDelta(t, 1.0, w.Time(), 1e-9)
	assert.Equal(t, 60, w.StepCount())
}

func TestWorld_InvalidBodies(t *testing.T) {
	w, err := NewWorld(DefaultConfig())
	require.NoError(t, err)

	tests := []struct {
		name   string
		create func() (Handle, error)
		want   error
	}{
		{"zero extent", func() (Handle, error) { return w.CreateBox(geom.Pose{}, mgl64.Vec3{0, 1, 1}, 1) }, ErrInvalidShape},
		{"negative extent", func() (Handle, error) { return w.CreateBox(geom.Pose{}, mgl64.Vec3{1, -1, 1}, 1) }, ErrInvalidShape},
		{"nan extent", func() (Handle, error) { return w.CreateBox(geom.Pose{}, mgl64.Vec3{1, math.NaN(), 1}, 1) }, ErrInvalidShape},
		{"zero box mass", func() (Handle, error) { return w.CreateBox(geom.Pose{}, mgl64.Vec3{1, 1, 1}, 0) }, ErrInvalidMass},
		{"zero radius", func() (Handle, error) { return w.CreateSphere(geom.Pose{}, 0, 1) }, ErrInvalidShape},
		{"negative sphere mass", func() (Handle, error) { return w.CreateSphere(geom.Pose{}, 1, -1) }, ErrInvalidMass},
		{"infinite pose", func() (Handle, error) { return w.CreatePlane(geom.At(math.Inf(1), 0, 0)) }, ErrInvalidShape},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := tt.create()
			assert.ErrorIs(t, err, tt.want)
			assert.False(t, w.Valid(h))

			var bodyErr *BodyError
			assert.True(t, errors.As(err, &bodyErr))
		})
	}
	assert.Equal(t, 0, w.NumBodies())
}

func TestWorld_ApplyImpulseErrors(t *testing.T) {
	w, err := NewWorld(DefaultConfig())
	require.NoError(t, err)
	plane, err := w.CreatePlane(groundPose)
	require.NoError(t, err)

	assert.ErrorIs(t, w.ApplyImpulse(Handle(7), mgl64.Vec3{1, 0, 0}, mgl64.Vec3{}), ErrUnknownBody)
	assert.ErrorIs(t, w.ApplyImpulse(Handle(-1), mgl64.Vec3{1, 0, 0}, mgl64.Vec3{}), ErrUnknownBody)
	assert.ErrorIs(t, w.ApplyImpulse(plane, mgl64.Vec3{1, 0, 0}, mgl64.Vec3{}), ErrInvalidMass)
}

func TestNewWorld_InvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"broadphase", func(c *Config) { c.Broadphase = "grid" }},
		{"iterations", func(c *Config) { c.Iterations = 0 }},
		{"tolerance", func(c *Config) { c.Tolerance = -1 }},
		{"restitution", func(c *Config) { c.Material.Restitution = 1.5 }},
		{"stiffness", func(c *Config) { c.Material.ContactStiffness = 0 }},
		{"damping", func(c *Config) { c.LinearDamping = 1 }},
		{"gravity", func(c *Config) { c.Gravity = mgl64.Vec3{0, math.NaN(), 0} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			_, err := NewWorld(cfg)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestWorld_UnknownHandleAccessors(t *testing.T) {
	w, err := NewWorld(DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, geom.Pose{}, w.Pose(3))
	assert.Equal(t, mgl64.Ident4(), w.Transform(3))
	assert.False(t, w.Sleeping(3))
	assert.Zero(t, w.Mass(3))
	_, ok := w.Shape(3)
	assert.False(t, ok)
}

func TestWorld_BroadphasesAgree(t *testing.T) {
	build := func(broadphase string) *World {
		cfg := DefaultConfig()
		cfg.Broadphase = broadphase
		w := newGroundWorld(t, cfg)
		for i := 0; i < 6; i++ {
			_, err := w.CreateBox(geom.At(float64(i)*0.3, 0.5, 0), mgl64.Vec3{0.05, 0.5, 0.25}, 1)
			require.NoError(t, err)
		}
		_, err := w.CreateSphere(geom.At(-0.5, 0.75, 0), 0.3, 1)
		require.NoError(t, err)
		require.NoError(t, w.ApplyImpulse(Handle(w.NumBodies()-1), mgl64.Vec3{3, 0, 0}, mgl64.Vec3{}))
		return w
	}

	naive, sap := build(BroadphaseNaive), build(BroadphaseSAP)
	for i := 0; i < 120; i++ {
		naive.Step(dt)
		sap.Step(dt)
	}

	for h := Handle(0); int(h) < naive.NumBodies(); h++ {
		assert.Equal(t, naive.Pose(h), sap.Pose(h), "body %d", h)
	}
}
