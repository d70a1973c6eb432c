package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/dominoes/internal/geom"
)

// World owns every body and advances them together. It is not safe for
// concurrent use; Step and ApplyImpulse are meant to run on one loop.
type World struct {
	cfg    Config
	bodies []*body

	time     float64
	steps    int
	contacts []contact
	solver   solver
}

func NewWorld(cfg Config) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &World{
		cfg:    cfg,
		bodies: make([]*body, 0, 64),
		solver: solver{iterations: cfg.Iterations, tolerance: cfg.Tolerance},
	}, nil
}

func (w *World) Config() Config { return w.cfg }

// CreateBox adds a dynamic box. half holds the half extents.
func (w *World) CreateBox(p geom.Pose, half mgl64.Vec3, mass float64) (Handle, error) {
	for _, v := range half {
		if v <= 0 || !finite(v) {
			return -1, &BodyError{Op: "create box", Param: "half_extents", Value: half, Wrapped: ErrInvalidShape}
		}
	}
	if err := checkMass("create box", mass); err != nil {
		return -1, err
	}
	return w.add(&body{shape: ShapeBox, half: half}, p, mass)
}

func (w *World) CreateSphere(p geom.Pose, radius, mass float64) (Handle, error) {
	if radius <= 0 || !finite(radius) {
		return -1, &BodyError{Op: "create sphere", Param: "radius", Value: radius, Wrapped: ErrInvalidShape}
	}
	if err := checkMass("create sphere", mass); err != nil {
		return -1, err
	}
	return w.add(&body{shape: ShapeSphere, radius: radius}, p, mass)
}

// CreatePlane adds an immovable infinite plane. Its normal is the local +Z
// axis of the pose.
func (w *World) CreatePlane(p geom.Pose) (Handle, error) {
	return w.add(&body{shape: ShapePlane}, p, 0)
}

func (w *World) add(b *body, p geom.Pose, mass float64) (Handle, error) {
	for _, v := range append(p.Position[:], p.Rotation[:]...) {
		if !finite(v) {
			return -1, &BodyError{Op: "create " + b.shape.String(), Param: "pose", Value: p, Wrapped: ErrInvalidShape}
		}
	}
	b.pos = p.Position
	b.quat = p.Quat()
	b.setMass(mass)
	b.updateDerived()
	w.bodies = append(w.bodies, b)
	return Handle(len(w.bodies) - 1), nil
}

func checkMass(op string, mass float64) error {
	if mass <= 0 || !finite(mass) {
		return &BodyError{Op: op, Param: "mass", Value: mass, Wrapped: ErrInvalidMass}
	}
	return nil
}

func (w *World) body(h Handle) *body {
	if h < 0 || int(h) >= len(w.bodies) {
		return nil
	}
	return w.bodies[h]
}

// ApplyImpulse changes the body's momentum once. impulse is in world
// coordinates, localPoint in the body frame relative to its centre.
func (w *World) ApplyImpulse(h Handle, impulse, localPoint mgl64.Vec3) error {
	b := w.body(h)
	if b == nil {
		return &BodyError{Op: "apply impulse", Param: "handle", Value: h, Wrapped: ErrUnknownBody}
	}
	if !b.dynamic() {
		return &BodyError{Op: "apply impulse", Param: "mass", Value: b.mass, Wrapped: ErrInvalidMass}
	}
	b.wake()
	b.applyImpulse(impulse, b.quat.Rotate(localPoint))
	return nil
}

// Step advances the world by dt seconds. Non-positive dt is ignored.
func (w *World) Step(dt float64) {
	if dt <= 0 || !finite(dt) {
		return
	}

	for _, b := range w.bodies {
		if b.dynamic() && b.sleep != asleep {
			b.force = b.force.Add(w.cfg.Gravity.Mul(b.mass))
		}
	}

	pairs := w.broadphase()
	w.contacts = w.contacts[:0]
	for _, p := range pairs {
		w.contacts = collide(w.bodies[p[0]], w.bodies[p[1]], w.contacts)
	}
	w.wakeTouched()

	for _, b := range w.bodies {
		b.updateSolveMass()
	}
	w.solver.solve(dt, w.contacts, w.cfg)
	for _, b := range w.bodies {
		if b.invMassSolve == 0 {
			continue
		}
		b.vel = b.vel.Add(b.vlambda)
		b.angVel = b.angVel.Add(b.wlambda)
	}

	linear := math.Pow(1-w.cfg.LinearDamping, dt)
	angular := math.Pow(1-w.cfg.AngularDamping, dt)
	for _, b := range w.bodies {
		if !b.dynamic() || b.sleep == asleep {
			continue
		}
		b.vel = b.vel.Mul(linear)
		b.angVel = b.angVel.Mul(angular)
	}

	for _, b := range w.bodies {
		b.integrate(dt)
		b.force = mgl64.Vec3{}
		b.torque = mgl64.Vec3{}
	}

	w.time += dt
	w.steps++

	if w.cfg.AllowSleep {
		for _, b := range w.bodies {
			b.sleepTick(dt, w.cfg.SleepSpeedLimit, w.cfg.SleepTimeLimit)
		}
	}
}

// wakeTouched wakes sleeping bodies that a fast awake body ran into.
func (w *World) wakeTouched() {
	limit := 2 * w.cfg.SleepSpeedLimit * w.cfg.SleepSpeedLimit
	for _, c := range w.contacts {
		a, b := c.a, c.b
		if a.sleep == asleep && b.dynamic() && b.sleep == awake && b.speedSqr() >= limit {
			a.wakeAfter = true
		}
		if b.sleep == asleep && a.dynamic() && a.sleep == awake && a.speedSqr() >= limit {
			b.wakeAfter = true
		}
	}
	for _, b := range w.bodies {
		if b.wakeAfter {
			b.wake()
			b.wakeAfter = false
		}
	}
}

// Pose reports the current pose. Before the first Step it is the pose the
// body was created with. Unknown handles yield the zero pose.
func (w *World) Pose(h Handle) geom.Pose {
	b := w.body(h)
	if b == nil {
		return geom.Pose{}
	}
	return geom.PoseFrom(b.pos, b.quat)
}

// Transform is the body's model matrix.
func (w *World) Transform(h Handle) mgl64.Mat4 {
	b := w.body(h)
	if b == nil {
		return mgl64.Ident4()
	}
	return geom.Transform(b.pos, b.quat)
}

func (w *World) Position(h Handle) mgl64.Vec3 {
	if b := w.body(h); b != nil {
		return b.pos
	}
	return mgl64.Vec3{}
}

func (w *World) Orientation(h Handle) mgl64.Quat {
	if b := w.body(h); b != nil {
		return b.quat
	}
	return mgl64.QuatIdent()
}

func (w *World) Velocity(h Handle) mgl64.Vec3 {
	if b := w.body(h); b != nil {
		return b.vel
	}
	return mgl64.Vec3{}
}

func (w *World) AngularVelocity(h Handle) mgl64.Vec3 {
	if b := w.body(h); b != nil {
		return b.angVel
	}
	return mgl64.Vec3{}
}

func (w *World) Sleeping(h Handle) bool {
	b := w.body(h)
	return b != nil && b.sleep == asleep
}

func (w *World) Mass(h Handle) float64 {
	if b := w.body(h); b != nil {
		return b.mass
	}
	return 0
}

func (w *World) KineticEnergy(h Handle) float64 {
	if b := w.body(h); b != nil {
		return b.kineticEnergy()
	}
	return 0
}

func (w *World) Shape(h Handle) (Shape, bool) {
	b := w.body(h)
	if b == nil {
		return 0, false
	}
	return b.shape, true
}

func (w *World) Valid(h Handle) bool { return w.body(h) != nil }

func (w *World) NumBodies() int { return len(w.bodies) }

// Contacts is the number of contact points found by the last step.
func (w *World) Contacts() int { return len(w.contacts) }

func (w *World) Time() float64 { return w.time }

func (w *World) StepCount() int { return w.steps }
