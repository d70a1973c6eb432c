package layout

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

const eps = 1e-9

func near(a, b mgl64.Vec3) bool {
	for i := range a {
		if math.Abs(a[i]-b[i]) > eps {
			return false
		}
	}
	return true
}

func TestGenerate_Count(t *testing.T) {
	tests := []struct {
		arc, straight int
		expected      int
	}{
		{10, 15, 40},
		{0, 0, 0},
		{1, 0, 1},
		{0, 1, 2},
		{3, 7, 17},
		{-2, 4, 8},
		{5, -1, 5},
	}

	for _, tt := range tests {
		spec := DefaultSpec()
		spec.ArcCount = tt.arc
		spec.StraightCount = tt.straight

		poses := Generate(spec)
		if len(poses) != tt.expected {
			t.Errorf("A=%d S=%d: expected %d poses, got %d", tt.arc, tt.straight, tt.expected, len(poses))
		}
		if spec.Count() != tt.expected {
			t.Errorf("A=%d S=%d: Count() = %d, expected %d", tt.arc, tt.straight, spec.Count(), tt.expected)
		}
	}
}

func TestGenerate_ArcAngles(t *testing.T) {
	spec := DefaultSpec()
	poses := Generate(spec)

	if got := poses[0].Rotation.Y(); math.Abs(got) > eps {
		t.Errorf("first arc rotation: expected 0, got %f", got)
	}
	if got := poses[spec.ArcCount-1].Rotation.Y(); math.Abs(got-math.Pi) > eps {
		t.Errorf("last arc rotation: expected pi, got %f", got)
	}

	for i := 1; i < spec.ArcCount; i++ {
		if poses[i].Rotation.Y() < poses[i-1].Rotation.Y() {
			t.Errorf("arc angle decreased at %d: %f < %f", i, poses[i].Rotation.Y(), poses[i-1].Rotation.Y())
		}
	}
}

func TestGenerate_ArcPositions(t *testing.T) {
	spec := DefaultSpec()
	poses := Generate(spec)

	for i := 0; i < spec.ArcCount; i++ {
		theta := poses[i].Rotation.Y()
		want := mgl64.Vec3{
			spec.ArcRadius*math.Sin(theta) + spec.ArcCenterX,
			spec.ArcHeight,
			spec.ArcRadius * math.Cos(theta),
		}
		if !near(poses[i].Position, want) {
			t.Errorf("arc %d: expected %v, got %v", i, want, poses[i].Position)
		}
		if poses[i].Rotation.X() != 0 || poses[i].Rotation.Z() != 0 {
			t.Errorf("arc %d: expected rotation about y only, got %v", i, poses[i].Rotation)
		}
	}
}

func TestGenerate_SingleArc(t *testing.T) {
	spec := DefaultSpec()
	spec.ArcCount = 1
	spec.StraightCount = 0

	poses := Generate(spec)
	if len(poses) != 1 {
		t.Fatalf("expected 1 pose, got %d", len(poses))
	}
	r := poses[0].Rotation.Y()
	if math.IsNaN(r) || r != 0 {
		t.Errorf("single arc domino: expected angle 0, got %f", r)
	}
}

func TestGenerate_Rows(t *testing.T) {
	spec := DefaultSpec()
	spec.StraightMinX = -5
	spec.StraightMaxX = 3
	spec.StraightOffset = 2
	poses := Generate(spec)

	rows := poses[spec.ArcCount:]
	if len(rows) != 2*spec.StraightCount {
		t.Fatalf("expected %d row poses, got %d", 2*spec.StraightCount, len(rows))
	}

	for i := 0; i < spec.StraightCount; i++ {
		a, b := rows[2*i], rows[2*i+1]
		if a.Position.X() != b.Position.X() {
			t.Errorf("row %d: x differs: %f vs %f", i, a.Position.X(), b.Position.X())
		}
		if d := b.Position.Z() - a.Position.Z(); math.Abs(d-4) > eps {
			t.Errorf("row %d: expected z gap 4, got %f", i, d)
		}
		if a.Position.Y() != spec.StraightHeight || b.Position.Y() != spec.StraightHeight {
			t.Errorf("row %d: expected height %f", i, spec.StraightHeight)
		}
		if a.Rotation != (mgl64.Vec3{}) || b.Rotation != (mgl64.Vec3{}) {
			t.Errorf("row %d: expected identity rotation", i)
		}
	}

	if got := rows[0].Position.X(); math.Abs(got+5) > eps {
		t.Errorf("first row x: expected -5, got %f", got)
	}
	if got := rows[len(rows)-1].Position.X(); math.Abs(got-3) > eps {
		t.Errorf("last row x: expected 3, got %f", got)
	}
}

func TestGenerate_SingleRow(t *testing.T) {
	spec := DefaultSpec()
	spec.ArcCount = 0
	spec.StraightCount = 1

	poses := Generate(spec)
	if len(poses) != 2 {
		t.Fatalf("expected 2 poses, got %d", len(poses))
	}
	if poses[0].Position.X() != spec.StraightMinX {
		t.Errorf("expected x at range start %f, got %f", spec.StraightMinX, poses[0].Position.X())
	}
}

func TestGenerate_Idempotent(t *testing.T) {
	spec := DefaultSpec()
	first := Generate(spec)
	second := Generate(spec)

	if !reflect.DeepEqual(first, second) {
		t.Error("expected identical pose sequences for identical specs")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Spec)
		field  string
	}{
		{"default", func(*Spec) {}, ""},
		{"empty", func(s *Spec) { s.ArcCount, s.StraightCount = 0, 0 }, ""},
		{"negative arc", func(s *Spec) { s.ArcCount = -1 }, "arc_count"},
		{"negative straight", func(s *Spec) { s.StraightCount = -3 }, "straight_count"},
		{"negative radius", func(s *Spec) { s.ArcRadius = -1 }, "arc_radius"},
		{"nan radius", func(s *Spec) { s.ArcRadius = math.NaN() }, "arc_radius"},
		{"zero radius", func(s *Spec) { s.ArcRadius = 0 }, "arc_radius"},
		{"zero radius single domino", func(s *Spec) { s.ArcRadius, s.ArcCount = 0, 1 }, ""},
		{"negative offset", func(s *Spec) { s.StraightOffset = -2 }, "straight_offset"},
		{"inverted bounds", func(s *Spec) { s.StraightMinX, s.StraightMaxX = 3, -5 }, "straight_max_x"},
		{"flat box", func(s *Spec) { s.BoxSize[1] = 0 }, "box_size[1]"},
		{"negative box", func(s *Spec) { s.BoxSize[0] = -0.1 }, "box_size[0]"},
	}

	for _, tt := range tests {
		spec := DefaultSpec()
		tt.mutate(&spec)
		err := spec.Validate()

		if tt.field == "" {
			if err != nil {
				t.Errorf("%s: unexpected error: %v", tt.name, err)
			}
			continue
		}

		if !errors.Is(err, ErrInvalidSpec) {
			t.Errorf("%s: expected ErrInvalidSpec, got %v", tt.name, err)
			continue
		}
		var specErr *SpecError
		if !errors.As(err, &specErr) || specErr.Field != tt.field {
			t.Errorf("%s: expected field %s, got %v", tt.name, tt.field, err)
		}
	}
}

func TestGenerate_DefaultPlacement(t *testing.T) {
	spec := DefaultSpec()
	poses := Generate(spec)

	if first := poses[0].Position; !near(first, mgl64.Vec3{3, 0.5, 2}) {
		t.Errorf("expected first arc domino at (3, 0.5, 2), got %v", first)
	}
	if last := poses[spec.ArcCount-1].Position; !near(last, mgl64.Vec3{3, 0.5, -2}) {
		t.Errorf("expected last arc domino at (3, 0.5, -2), got %v", last)
	}

	// a falling arc end must not reach a row domino
	reach := spec.BoxSize.Y() + spec.BoxSize.X()
	for _, end := range []int{0, spec.ArcCount - 1} {
		for i := spec.ArcCount; i < len(poses); i++ {
			if d := poses[i].Position.Sub(poses[end].Position).Len(); d <= reach {
				t.Errorf("row domino %d is %.2f from arc end %d, within falling reach %.2f", i, d, end, reach)
			}
		}
	}
}

func TestHalfExtents(t *testing.T) {
	half := DefaultSpec().HalfExtents()
	if !near(half, mgl64.Vec3{0.05, 0.5, 0.25}) {
		t.Errorf("expected half extents (0.05, 0.5, 0.25), got %v", half)
	}
}

func TestSegment(t *testing.T) {
	spec := DefaultSpec()
	tests := []struct {
		index int
		want  string
	}{
		{0, "arc"},
		{9, "arc"},
		{10, "row-"},
		{11, "row+"},
		{39, "row+"},
		{40, ""},
		{-1, ""},
	}
	for _, tt := range tests {
		if got := spec.Segment(tt.index); got != tt.want {
			t.Errorf("segment(%d): expected %q, got %q", tt.index, tt.want, got)
		}
	}
}
