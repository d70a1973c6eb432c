package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	BroadphaseNaive = "naive"
	BroadphaseSAP   = "sap"
)

const (
	DefaultGravity            = -9.82
	DefaultIterations         = 20
	DefaultTolerance          = 1e-4
	DefaultFriction           = 0.9
	DefaultRestitution        = 0.7
	DefaultContactStiffness   = 1e7
	DefaultContactRelaxation  = 1.0
	DefaultFrictionStiffness  = 1e7
	DefaultFrictionRelaxation = 2.0
	DefaultSleepSpeedLimit    = 0.1
	DefaultSleepTimeLimit     = 1.0
	DefaultLinearDamping      = 0.01
	DefaultAngularDamping     = 0.01
)

// Material is shared by every contact in a world.
type Material struct {
	Friction           float64 `yaml:"friction"`
	Restitution        float64 `yaml:"restitution"`
	ContactStiffness   float64 `yaml:"contact_stiffness"`
	ContactRelaxation  float64 `yaml:"contact_relaxation"`
	FrictionStiffness  float64 `yaml:"friction_stiffness"`
	FrictionRelaxation float64 `yaml:"friction_relaxation"`
}

type Config struct {
	Gravity         mgl64.Vec3 `yaml:"gravity"`
	AllowSleep      bool       `yaml:"allow_sleep"`
	Broadphase      string     `yaml:"broadphase"`
	Iterations      int        `yaml:"iterations"`
	Tolerance       float64    `yaml:"tolerance"`
	SleepSpeedLimit float64    `yaml:"sleep_speed_limit"`
	SleepTimeLimit  float64    `yaml:"sleep_time_limit"`
	LinearDamping   float64    `yaml:"linear_damping"`
	AngularDamping  float64    `yaml:"angular_damping"`
	Material        Material   `yaml:"material"`
}

func DefaultMaterial() Material {
	return Material{
		Friction:           DefaultFriction,
		Restitution:        DefaultRestitution,
		ContactStiffness:   DefaultContactStiffness,
		ContactRelaxation:  DefaultContactRelaxation,
		FrictionStiffness:  DefaultFrictionStiffness,
		FrictionRelaxation: DefaultFrictionRelaxation,
	}
}

func DefaultConfig() Config {
	return Config{
		Gravity:         mgl64.Vec3{0, DefaultGravity, 0},
		AllowSleep:      true,
		Broadphase:      BroadphaseNaive,
		Iterations:      DefaultIterations,
		Tolerance:       DefaultTolerance,
		SleepSpeedLimit: DefaultSleepSpeedLimit,
		SleepTimeLimit:  DefaultSleepTimeLimit,
		LinearDamping:   DefaultLinearDamping,
		AngularDamping:  DefaultAngularDamping,
		Material:        DefaultMaterial(),
	}
}

func (c Config) Validate() error {
	invalid := func(param string, value any) error {
		return &BodyError{Op: "configure", Param: param, Value: value, Wrapped: ErrInvalidConfig}
	}

	for _, v := range c.Gravity {
		if !finite(v) {
			return invalid("gravity", c.Gravity)
		}
	}
	switch {
	case c.Broadphase != BroadphaseNaive && c.Broadphase != BroadphaseSAP:
		return invalid("broadphase", c.Broadphase)
	case c.Iterations < 1:
		return invalid("iterations", c.Iterations)
	case c.Tolerance < 0 || !finite(c.Tolerance):
		return invalid("tolerance", c.Tolerance)
	case c.SleepSpeedLimit < 0:
		return invalid("sleep_speed_limit", c.SleepSpeedLimit)
	case c.SleepTimeLimit < 0:
		return invalid("sleep_time_limit", c.SleepTimeLimit)
	case c.LinearDamping < 0 || c.LinearDamping >= 1:
		return invalid("linear_damping", c.LinearDamping)
	case c.AngularDamping < 0 || c.AngularDamping >= 1:
		return invalid("angular_damping", c.AngularDamping)
	}

	m := c.Material
	switch {
	case m.Friction < 0 || !finite(m.Friction):
		return invalid("material.friction", m.Friction)
	case m.Restitution < 0 || m.Restitution > 1:
		return invalid("material.restitution", m.Restitution)
	case m.ContactStiffness <= 0 || !finite(m.ContactStiffness):
		return invalid("material.contact_stiffness", m.ContactStiffness)
	case m.ContactRelaxation < 0 || !finite(m.ContactRelaxation):
		return invalid("material.contact_relaxation", m.ContactRelaxation)
	case m.FrictionStiffness <= 0 || !finite(m.FrictionStiffness):
		return invalid("material.friction_stiffness", m.FrictionStiffness)
	case m.FrictionRelaxation < 0 || !finite(m.FrictionRelaxation):
		return invalid("material.friction_relaxation", m.FrictionRelaxation)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
