package instance

import (
	"math/rand/v2"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/dominoes/internal/physics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWorld struct {
	transforms map[physics.Handle]mgl64.Mat4
	reads      map[physics.Handle]int
}

func (f *fakeWorld) Transform(h physics.Handle) mgl64.Mat4 {
	f.reads[h]++
	return f.transforms[h]
}

func newFakeWorld(n int) (*fakeWorld, []physics.Handle) {
	f := &fakeWorld{transforms: map[physics.Handle]mgl64.Mat4{}, reads: map[physics.Handle]int{}}
	handles := make([]physics.Handle, n)
	for i := range handles {
		h := physics.Handle(i + 1)
		handles[i] = h
		f.transforms[h] = mgl64.Translate3D(float64(i), 0.5, -float64(i))
	}
	return f, handles
}

func TestPaletteLinear(t *testing.T) {
	colors, err := Palette{"#ffffff", "#000000", "#808080"}.Linear()
	require.NoError(t, err)
	require.Len(t, colors, 3)

	assert.InDelta(t, 1, colors[0].R, 1e-6)
	assert.InDelta(t, 0, colors[1].G, 1e-6)
	// sRGB mid grey is darker in linear space
	assert.InDelta(t, 0.216, colors[2].B, 0.005)
}

func TestPaletteLinear_Errors(t *testing.T) {
	_, err := Palette{}.Linear()
	assert.ErrorIs(t, err, ErrEmptyPalette)

	_, err = Palette{"#ffffff", "chartreuse"}.Linear()
	assert.ErrorIs(t, err, ErrBadColor)
}

func TestAssignColors(t *testing.T) {
	linear, err := DefaultPalette.Linear()
	require.NoError(t, err)

	colors, err := AssignColors(40, DefaultPalette, rand.New(rand.NewPCG(1, 2)))
	require.NoError(t, err)
	require.Len(t, colors, 40)
	for i, c := range colors {
		assert.Contains(t, linear, c, "colour %d is not from the palette", i)
	}

	again, err := AssignColors(40, DefaultPalette, rand.New(rand.NewPCG(1, 2)))
	require.NoError(t, err)
	assert.Equal(t, colors, again, "same seed should give the same colours")
}

func TestAssignColors_Empty(t *testing.T) {
	colors, err := AssignColors(0, DefaultPalette, rand.New(rand.NewPCG(1, 2)))
	require.NoError(t, err)
	assert.Empty(t, colors)

	_, err = AssignColors(3, nil, rand.New(rand.NewPCG(1, 2)))
	assert.ErrorIs(t, err, ErrEmptyPalette)
}

func TestSync_WritesEverySlot(t *testing.T) {
	world, handles := newFakeWorld(5)
	colors, err := AssignColors(5, DefaultPalette, rand.New(rand.NewPCG(3, 4)))
	require.NoError(t, err)
	batch := NewBatch(colors)

	require.NoError(t, Sync(world, handles, batch))

	assert.Equal(t, uint64(1), batch.Version())
	for i, h := range handles {
		assert.Equal(t, 1, world.reads[h], "slot %d read count", i)
		want := mgl32.Translate3D(float32(i), 0.5, -float32(i))
		assert.Equal(t, want, batch.Transform(i))
	}
	assert.Equal(t, colors, batch.Colors(), "sync must not touch colours")
}

func TestSync_FollowsWorld(t *testing.T) {
	world, handles := newFakeWorld(3)
	batch := NewBatch(make([]Color, 3))
	require.NoError(t, Sync(world, handles, batch))

	before := batch.Snapshot()
	world.transforms[handles[1]] = mgl64.Translate3D(9, 9, 9)
	require.NoError(t, Sync(world, handles, batch))

	assert.Equal(t, before[0], batch.Transform(0))
	assert.Equal(t, mgl32.Translate3D(9, 9, 9), batch.Transform(1))
	assert.NotEqual(t, before[1], batch.Transform(1), "snapshot must not alias the live buffer")
	assert.Equal(t, uint64(2), batch.Version())
}

func TestSync_LengthMismatch(t *testing.T) {
	world, handles := newFakeWorld(3)
	batch := NewBatch(make([]Color, 4))

	err := Sync(world, handles, batch)
	assert.ErrorIs(t, err, ErrLengthMismatch)
	assert.Equal(t, uint64(0), batch.Version())
}

func TestSync_EmptyBatch(t *testing.T) {
	world, _ := newFakeWorld(0)
	batch := NewBatch(nil)

	require.NoError(t, Sync(world, nil, batch))
	assert.Equal(t, 0, batch.Len())
}

func TestNewBatch_IdentityTransforms(t *testing.T) {
	batch := NewBatch(make([]Color, 2))
	assert.Equal(t, mgl32.Ident4(), batch.Transform(0))
	assert.Equal(t, mgl32.Ident4(), batch.Transform(1))
}

func TestColorHex(t *testing.T) {
	colors, err := Palette{"#f38630"}.Linear()
	require.NoError(t, err)
	assert.Equal(t, "#f38630", colors[0].Hex())
}
