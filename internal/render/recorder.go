package render

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

var ErrClosed = errors.New("render: renderer closed")

// Recorder is a renderer without a display. It checks that textures decode
// and keeps a copy of the most recent frame.
type Recorder struct {
	Textures     []Texture
	Scene        *Scene
	Frames       int
	Last         Frame
	LastDominoes []mgl32.Mat4

	// FailDraw, when set, is returned from every Draw.
	FailDraw error

	closed bool
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) LoadTexture(path string) (Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return Texture{}, err
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return Texture{}, fmt.Errorf("decode %s: %w", path, err)
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return Texture{}, fmt.Errorf("decode %s: empty %s image", path, format)
	}

	tex := Texture{ID: len(r.Textures) + 1, Path: path, Width: cfg.Width, Height: cfg.Height}
	r.Textures = append(r.Textures, tex)
	return tex, nil
}

func (r *Recorder) Setup(scene Scene) error {
	if r.closed {
		return ErrClosed
	}
	r.Scene = &scene
	return nil
}

func (r *Recorder) Draw(frame Frame) error {
	if r.closed {
		return ErrClosed
	}
	if r.FailDraw != nil {
		return r.FailDraw
	}
	r.Frames++
	r.Last = frame
	if frame.Dominoes != nil {
		r.LastDominoes = frame.Dominoes.Snapshot()
	}
	return nil
}

func (r *Recorder) Close() error {
	r.closed = true
	return nil
}
