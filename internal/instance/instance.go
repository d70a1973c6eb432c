// Package instance keeps the per-domino render data: one colour and one
// transform per domino, indexed the same way as the layout.
package instance

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/san-kum/dominoes/internal/geom"
	"github.com/san-kum/dominoes/internal/physics"
)

var (
	ErrEmptyPalette   = errors.New("instance: palette is empty")
	ErrBadColor       = errors.New("instance: bad palette colour")
	ErrLengthMismatch = errors.New("instance: handle count does not match batch")
)

// Palette is a list of sRGB hex colours such as "#69d2e7".
type Palette []string

var DefaultPalette = Palette{"#69d2e7", "#a7dbd8", "#e0e4cc", "#f38630", "#fa6900"}

// Color is a linear RGB triple ready for vertex upload.
type Color struct {
	R, G, B float32
}

func (c Color) Hex() string {
	return colorful.LinearRgb(float64(c.R), float64(c.G), float64(c.B)).Clamped().Hex()
}

// Linear parses every palette entry and converts it out of sRGB.
func (p Palette) Linear() ([]Color, error) {
	if len(p) == 0 {
		return nil, ErrEmptyPalette
	}
	out := make([]Color, len(p))
	for i, hex := range p {
		c, err := colorful.Hex(hex)
		if err != nil {
			return nil, fmt.Errorf("%w %q: %v", ErrBadColor, hex, err)
		}
		r, g, b := c.LinearRgb()
		out[i] = Color{float32(r), float32(g), float32(b)}
	}
	return out, nil
}

// AssignColors picks n colours uniformly from the palette, with replacement.
func AssignColors(n int, p Palette, rng *rand.Rand) ([]Color, error) {
	linear, err := p.Linear()
	if err != nil {
		return nil, err
	}
	colors := make([]Color, max(n, 0))
	for i := range colors {
		colors[i] = linear[rng.IntN(len(linear))]
	}
	return colors, nil
}

// Batch is the instanced draw data for the dominoes. Colours are fixed at
// creation; transforms are rewritten by Sync every frame.
type Batch struct {
	colors     []Color
	transforms []mgl32.Mat4
	version    uint64
}

func NewBatch(colors []Color) *Batch {
	b := &Batch{
		colors:     append([]Color(nil), colors...),
		transforms: make([]mgl32.Mat4, len(colors)),
	}
	for i := range b.transforms {
		b.transforms[i] = mgl32.Ident4()
	}
	return b
}

func (b *Batch) Len() int { return len(b.colors) }

func (b *Batch) Color(i int) Color { return b.colors[i] }

// Colors returns a copy of the colour buffer.
func (b *Batch) Colors() []Color {
	return append([]Color(nil), b.colors...)
}

func (b *Batch) Transform(i int) mgl32.Mat4 { return b.transforms[i] }

// Transforms exposes the live transform buffer. Callers must not keep it
// past the next Sync; use Snapshot for that.
func (b *Batch) Transforms() []mgl32.Mat4 { return b.transforms }

// Version counts completed syncs.
func (b *Batch) Version() uint64 { return b.version }

func (b *Batch) Snapshot() []mgl32.Mat4 {
	return append([]mgl32.Mat4(nil), b.transforms...)
}

// TransformSource is the part of the physics world Sync reads from.
type TransformSource interface {
	Transform(h physics.Handle) mgl64.Mat4
}

// Sync copies the current transform of body handles[i] into slot i, for
// every slot.
func Sync(src TransformSource, handles []physics.Handle, b *Batch) error {
	if len(handles) != len(b.transforms) {
		return fmt.Errorf("%w: %d handles, %d slots", ErrLengthMismatch, len(handles), len(b.transforms))
	}
	for i, h := range handles {
		b.transforms[i] = geom.Mat4To32(src.Transform(h))
	}
	b.version++
	return nil
}
