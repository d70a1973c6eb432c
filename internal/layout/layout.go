package layout

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/dominoes/internal/geom"
)

// The rows stop short of x = 3 so the arc's end dominoes, at (3, ±2), have
// room to fall without landing on them.
const (
	DefaultArcCount       = 10
	DefaultArcRadius      = 2.0
	DefaultArcCenterX     = 3.0
	DefaultArcHeight      = 0.5
	DefaultStraightCount  = 15
	DefaultStraightMinX   = -5.0
	DefaultStraightMaxX   = 1.0
	DefaultStraightOffset = 2.0
	DefaultStraightHeight = 0.51
)

// DefaultBoxSize is the full width, height and depth of one domino.
var DefaultBoxSize = mgl64.Vec3{0.1, 1.0, 0.5}

var ErrInvalidSpec = errors.New("layout: invalid domino spec")

type SpecError struct {
	Field  string
	Value  any
	Reason string
}

func (e *SpecError) Error() string {
	return fmt.Sprintf("layout: %s=%v: %s", e.Field, e.Value, e.Reason)
}

func (e *SpecError) Unwrap() error {
	return ErrInvalidSpec
}

// Spec describes the domino path: an arc of ArcCount dominoes followed by
// two parallel rows of StraightCount dominoes each.
type Spec struct {
	ArcCount       int        `yaml:"arc_count"`
	ArcRadius      float64    `yaml:"arc_radius"`
	ArcCenterX     float64    `yaml:"arc_center_x"`
	ArcHeight      float64    `yaml:"arc_height"`
	StraightCount  int        `yaml:"straight_count"`
	StraightMinX   float64    `yaml:"straight_min_x"`
	StraightMaxX   float64    `yaml:"straight_max_x"`
	StraightOffset float64    `yaml:"straight_offset"`
	StraightHeight float64    `yaml:"straight_height"`
	BoxSize        mgl64.Vec3 `yaml:"box_size"`
}

func DefaultSpec() Spec {
	return Spec{
		ArcCount:       DefaultArcCount,
		ArcRadius:      DefaultArcRadius,
		ArcCenterX:     DefaultArcCenterX,
		ArcHeight:      DefaultArcHeight,
		StraightCount:  DefaultStraightCount,
		StraightMinX:   DefaultStraightMinX,
		StraightMaxX:   DefaultStraightMaxX,
		StraightOffset: DefaultStraightOffset,
		StraightHeight: DefaultStraightHeight,
		BoxSize:        DefaultBoxSize,
	}
}

func (s Spec) HalfExtents() mgl64.Vec3 {
	return s.BoxSize.Mul(0.5)
}

// Count is the number of poses Generate returns for s.
func (s Spec) Count() int {
	return max(s.ArcCount, 0) + 2*max(s.StraightCount, 0)
}

// Validate reports the first field that cannot produce a physical layout.
func (s Spec) Validate() error {
	switch {
	case s.ArcCount < 0:
		return &SpecError{"arc_count", s.ArcCount, "must not be negative"}
	case s.StraightCount < 0:
		return &SpecError{"straight_count", s.StraightCount, "must not be negative"}
	case !finite(s.ArcRadius) || s.ArcRadius < 0 || (s.ArcRadius == 0 && s.ArcCount > 1):
		return &SpecError{"arc_radius", s.ArcRadius, "must be positive when the arc has more than one domino"}
	case s.StraightOffset < 0 || !finite(s.StraightOffset):
		return &SpecError{"straight_offset", s.StraightOffset, "must be a non-negative number"}
	case s.StraightMaxX < s.StraightMinX:
		return &SpecError{"straight_max_x", s.StraightMaxX, fmt.Sprintf("must not be below straight_min_x (%g)", s.StraightMinX)}
	}
	for i, v := range s.BoxSize {
		if v <= 0 || !finite(v) {
			return &SpecError{fmt.Sprintf("box_size[%d]", i), v, "must be positive"}
		}
	}
	return nil
}

// Generate returns the initial domino poses. Indices [0, ArcCount) follow the
// arc; the rows follow, interleaved as (-offset, +offset) per step. The order
// is stable and is what instance indices refer to. Negative counts produce no
// poses for that segment.
func Generate(s Spec) []geom.Pose {
	poses := make([]geom.Pose, 0, s.Count())

	for i := 0; i < s.ArcCount; i++ {
		theta := geom.Lerp(float64(i), 0, float64(s.ArcCount-1), 0, math.Pi)
		poses = append(poses, geom.Pose{
			Position: mgl64.Vec3{
				s.ArcRadius*math.Sin(theta) + s.ArcCenterX,
				s.ArcHeight,
				s.ArcRadius * math.Cos(theta),
			},
			Rotation: mgl64.Vec3{0, theta, 0},
		})
	}

	for i := 0; i < s.StraightCount; i++ {
		x := geom.Lerp(float64(i), 0, float64(s.StraightCount-1), s.StraightMinX, s.StraightMaxX)
		poses = append(poses,
			geom.At(x, s.StraightHeight, -s.StraightOffset),
			geom.At(x, s.StraightHeight, s.StraightOffset),
		)
	}

	return poses
}

// Segment names the part of the path an index belongs to.
func (s Spec) Segment(i int) string {
	arc := max(s.ArcCount, 0)
	switch {
	case i < 0 || i >= s.Count():
		return ""
	case i < arc:
		return "arc"
	case (i-arc)%2 == 0:
		return "row-"
	default:
		return "row+"
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
