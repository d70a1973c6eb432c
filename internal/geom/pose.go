package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

var (
	AxisX = mgl64.Vec3{1, 0, 0}
	AxisY = mgl64.Vec3{0, 1, 0}
	AxisZ = mgl64.Vec3{0, 0, 1}
)

// Pose places a rigid body in the world. Rotation holds Euler angles in
// radians applied in XYZ order (R = Rx * Ry * Rz).
type Pose struct {
	Position mgl64.Vec3 `yaml:"position" json:"position"`
	Rotation mgl64.Vec3 `yaml:"rotation" json:"rotation"`
}

func At(x, y, z float64) Pose {
	return Pose{Position: mgl64.Vec3{x, y, z}}
}

func (p Pose) Quat() mgl64.Quat {
	return EulerToQuat(p.Rotation)
}

func (p Pose) Mat4() mgl64.Mat4 {
	return Transform(p.Position, p.Quat())
}

func EulerToQuat(e mgl64.Vec3) mgl64.Quat {
	qx := mgl64.QuatRotate(e[0], AxisX)
	qy := mgl64.QuatRotate(e[1], AxisY)
	qz := mgl64.QuatRotate(e[2], AxisZ)
	return qx.Mul(qy).Mul(qz).Normalize()
}

// QuatToEuler is the inverse of EulerToQuat. Near the Y singularity the Z
// angle is folded into X.
func QuatToEuler(q mgl64.Quat) mgl64.Vec3 {
	m := q.Normalize().Mat4()
	m13 := clamp(m.At(0, 2), -1, 1)

	y := math.Asin(m13)
	if math.Abs(m13) < 0.9999999 {
		return mgl64.Vec3{
			math.Atan2(-m.At(1, 2), m.At(2, 2)),
			y,
			math.Atan2(-m.At(0, 1), m.At(0, 0)),
		}
	}
	return mgl64.Vec3{math.Atan2(m.At(2, 1), m.At(1, 1)), y, 0}
}

func PoseFrom(pos mgl64.Vec3, q mgl64.Quat) Pose {
	return Pose{Position: pos, Rotation: QuatToEuler(q)}
}

func Transform(pos mgl64.Vec3, q mgl64.Quat) mgl64.Mat4 {
	return mgl64.Translate3D(pos[0], pos[1], pos[2]).Mul4(q.Normalize().Mat4())
}

// AngleBetween returns the rotation angle taking a onto b, in [0, pi].
func AngleBetween(a, b mgl64.Quat) float64 {
	r := a.Normalize().Conjugate().Mul(b.Normalize())
	return 2 * math.Atan2(r.V.Len(), math.Abs(r.W))
}

// Mat4To32 narrows a transform for GPU upload.
func Mat4To32(m mgl64.Mat4) mgl32.Mat4 {
	var out mgl32.Mat4
	for i := range m {
		out[i] = float32(m[i])
	}
	return out
}

func Vec3To32(v mgl64.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{float32(v[0]), float32(v[1]), float32(v[2])}
}

// Lerp maps v from [inMin, inMax] onto [outMin, outMax]. A degenerate input
// range maps everything to outMin.
func Lerp(v, inMin, inMax, outMin, outMax float64) float64 {
	if inMax == inMin {
		return outMin
	}
	return outMin + (v-inMin)*(outMax-outMin)/(inMax-inMin)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Tilt is the angle between the body's local up axis and world up.
func Tilt(q mgl64.Quat) float64 {
	up := q.Normalize().Rotate(AxisY)
	return math.Acos(clamp(up.Dot(AxisY), -1, 1))
}
