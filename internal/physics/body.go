package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Handle identifies a body inside the World that created it.
type Handle int

type Shape int

const (
	ShapeBox Shape = iota
	ShapeSphere
	ShapePlane
)

func (s Shape) String() string {
	switch s {
	case ShapeBox:
		return "box"
	case ShapeSphere:
		return "sphere"
	case ShapePlane:
		return "plane"
	}
	return "unknown"
}

type sleepState int

const (
	awake sleepState = iota
	sleepy
	asleep
)

type body struct {
	shape  Shape
	half   mgl64.Vec3
	radius float64

	mass       float64
	invMass    float64
	invInertia mgl64.Vec3 // body frame, diagonal

	pos    mgl64.Vec3
	quat   mgl64.Quat
	vel    mgl64.Vec3
	angVel mgl64.Vec3
	force  mgl64.Vec3
	torque mgl64.Vec3

	invInertiaWorld mgl64.Mat3

	// solver scratch
	invMassSolve    float64
	invInertiaSolve mgl64.Mat3
	vlambda         mgl64.Vec3
	wlambda         mgl64.Vec3

	sleep      sleepState
	sleepyTime float64
	wakeAfter  bool

	aabbMin, aabbMax mgl64.Vec3
}

func (b *body) static() bool { return b.invMass == 0 }

func (b *body) dynamic() bool { return b.invMass > 0 }

// rotation returns the body axes as matrix columns.
func (b *body) rotation() mgl64.Mat3 {
	m := b.quat.Mat4()
	return mgl64.Mat3{m[0], m[1], m[2], m[4], m[5], m[6], m[8], m[9], m[10]}
}

func (b *body) axes() [3]mgl64.Vec3 {
	r := b.rotation()
	return [3]mgl64.Vec3{r.Col(0), r.Col(1), r.Col(2)}
}

func (b *body) setMass(mass float64) {
	b.mass = mass
	if mass <= 0 {
		return
	}
	b.invMass = 1 / mass

	var inertia mgl64.Vec3
	switch b.shape {
	case ShapeBox:
		sx, sy, sz := 2*b.half[0], 2*b.half[1], 2*b.half[2]
		inertia = mgl64.Vec3{
			mass / 12 * (sy*sy + sz*sz),
			mass / 12 * (sx*sx + sz*sz),
			mass / 12 * (sx*sx + sy*sy),
		}
	case ShapeSphere:
		i := 2.0 / 5.0 * mass * b.radius * b.radius
		inertia = mgl64.Vec3{i, i, i}
	}
	for k := range inertia {
		if inertia[k] > 0 {
			b.invInertia[k] = 1 / inertia[k]
		}
	}
}

// updateDerived refreshes the world inertia and bounding box after the pose
// changed.
func (b *body) updateDerived() {
	r := b.rotation()
	b.invInertiaWorld = r.Mul3(mgl64.Diag3(b.invInertia)).Mul3(r.Transpose())

	switch b.shape {
	case ShapeBox:
		var ext mgl64.Vec3
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				ext[i] += math.Abs(r.At(i, j)) * b.half[j]
			}
		}
		b.aabbMin, b.aabbMax = b.pos.Sub(ext), b.pos.Add(ext)
	case ShapeSphere:
		ext := mgl64.Vec3{b.radius, b.radius, b.radius}
		b.aabbMin, b.aabbMax = b.pos.Sub(ext), b.pos.Add(ext)
	case ShapePlane:
		inf := math.Inf(1)
		b.aabbMin = mgl64.Vec3{-inf, -inf, -inf}
		b.aabbMax = mgl64.Vec3{inf, inf, inf}
	}
}

func (b *body) updateSolveMass() {
	b.vlambda = mgl64.Vec3{}
	b.wlambda = mgl64.Vec3{}
	if b.sleep == asleep || b.static() {
		b.invMassSolve = 0
		b.invInertiaSolve = mgl64.Mat3{}
		return
	}
	b.invMassSolve = b.invMass
	b.invInertiaSolve = b.invInertiaWorld
}

func (b *body) wake() {
	if b.static() {
		return
	}
	b.sleep = awake
	b.sleepyTime = 0
}

func (b *body) speedSqr() float64 {
	return b.vel.LenSqr() + b.angVel.LenSqr()
}

func (b *body) sleepTick(dt, speedLimit, timeLimit float64) {
	if !b.dynamic() || b.sleep == asleep {
		return
	}
	limitSqr := speedLimit * speedLimit
	speed := b.speedSqr()

	switch {
	case b.sleep == awake && speed < limitSqr:
		b.sleep = sleepy
		b.sleepyTime = 0
	case b.sleep == sleepy && speed > limitSqr:
		b.wake()
	case b.sleep == sleepy:
		b.sleepyTime += dt
		if b.sleepyTime > timeLimit {
			b.sleep = asleep
			b.vel = mgl64.Vec3{}
			b.angVel = mgl64.Vec3{}
		}
	}
}

// applyImpulse changes velocities as if impulse acted at the world offset r
// from the centre of mass.
func (b *body) applyImpulse(impulse, r mgl64.Vec3) {
	if !b.dynamic() {
		return
	}
	b.vel = b.vel.Add(impulse.Mul(b.invMass))
	b.angVel = b.angVel.Add(b.invInertiaWorld.Mul3x1(r.Cross(impulse)))
}

func (b *body) integrate(dt float64) {
	if !b.dynamic() || b.sleep == asleep {
		return
	}
	b.vel = b.vel.Add(b.force.Mul(b.invMass * dt))
	b.angVel = b.angVel.Add(b.invInertiaWorld.Mul3x1(b.torque).Mul(dt))

	b.pos = b.pos.Add(b.vel.Mul(dt))

	spin := mgl64.Quat{W: 0, V: b.angVel}.Mul(b.quat).Scale(0.5 * dt)
	b.quat = b.quat.Add(spin).Normalize()

	b.updateDerived()
}

func (b *body) kineticEnergy() float64 {
	if !b.dynamic() {
		return 0
	}
	linear := 0.5 * b.mass * b.vel.LenSqr()

	// angular part in the body frame, where the inertia is diagonal
	w := b.quat.Conjugate().Rotate(b.angVel)
	angular := 0.0
	for i := 0; i < 3; i++ {
		if b.invInertia[i] > 0 {
			angular += 0.5 * w[i] * w[i] / b.invInertia[i]
		}
	}
	return linear + angular
}

func aabbOverlap(a, b *body) bool {
	for i := 0; i < 3; i++ {
		if a.aabbMax[i] < b.aabbMin[i] || b.aabbMax[i] < a.aabbMin[i] {
			return false
		}
	}
	return true
}
