// Package scene builds the domino world and drives it frame by frame.
//
// Start validates the configuration, loads textures through the renderer,
// creates one physics body per domino plus the ground and the sphere, hands
// the scene description to the renderer and gives the sphere its push.
// After that the host calls OnFrame once per displayed frame, or lets Run
// and Advance do it.
package scene

import (
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/san-kum/dominoes/internal/config"
	"github.com/san-kum/dominoes/internal/geom"
	"github.com/san-kum/dominoes/internal/instance"
	"github.com/san-kum/dominoes/internal/layout"
	"github.com/san-kum/dominoes/internal/physics"
	"github.com/san-kum/dominoes/internal/render"
)

func Start(cfg *config.Config, r render.Renderer) (*Session, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if r == nil {
		return nil, &ResourceError{Asset: "renderer", Err: errNoRenderer}
	}

	sc := cfg.Scene
	sphereMap, err := loadTexture(r, sc.AssetPath(sc.Sphere.NormalMap))
	if err != nil {
		return nil, err
	}
	planeMap, err := loadTexture(r, sc.AssetPath(sc.Ground.NormalMap))
	if err != nil {
		return nil, err
	}

	world, err := physics.NewWorld(cfg.Physics)
	if err != nil {
		return nil, err
	}

	s := &Session{
		cfg:      cfg,
		world:    world,
		renderer: r,
	}

	if s.plane, err = world.CreatePlane(sc.Ground.Pose); err != nil {
		return nil, fmt.Errorf("scene: ground: %w", err)
	}

	poses := layout.Generate(cfg.Layout)
	half := cfg.Layout.HalfExtents()
	s.handles = make([]physics.Handle, len(poses))
	for i, p := range poses {
		if s.handles[i], err = world.CreateBox(p, half, sc.DominoMass); err != nil {
			return nil, fmt.Errorf("scene: domino %d: %w", i, err)
		}
	}

	if s.sphere, err = world.CreateSphere(sc.Sphere.Pose, sc.Sphere.Radius, sc.Sphere.Mass); err != nil {
		return nil, fmt.Errorf("scene: sphere: %w", err)
	}

	rng := rand.New(rand.NewPCG(sc.Seed, sc.Seed^0x9e3779b97f4a7c15))
	colors, err := instance.AssignColors(len(poses), sc.Palette, rng)
	if err != nil {
		return nil, err
	}
	s.batch = instance.NewBatch(colors)
	if err := instance.Sync(world, s.handles, s.batch); err != nil {
		return nil, err
	}
	s.tilts = make([]float64, len(s.handles))

	if err := r.Setup(s.describe(sphereMap, planeMap)); err != nil {
		return nil, fmt.Errorf("scene: renderer setup: %w", err)
	}

	if err := world.ApplyImpulse(s.sphere, sc.Sphere.Impulse, sc.Sphere.ImpulsePoint); err != nil {
		return nil, fmt.Errorf("scene: push sphere: %w", err)
	}

	slog.Info("scene started",
		"dominoes", len(s.handles),
		"arc", max(cfg.Layout.ArcCount, 0),
		"straight", max(cfg.Layout.StraightCount, 0),
		"broadphase", cfg.Physics.Broadphase)
	return s, nil
}

func loadTexture(r render.Renderer, path string) (render.Texture, error) {
	tex, err := r.LoadTexture(path)
	if err != nil {
		return render.Texture{}, &ResourceError{Asset: path, Err: err}
	}
	return tex, nil
}

func (s *Session) describe(sphereMap, planeMap render.Texture) render.Scene {
	sc := s.cfg.Scene
	repeat := float32(sc.Ground.MapRepeat)
	return render.Scene{
		Camera: render.Camera{
			Position: geom.Vec3To32(sc.Camera.Position),
			Target:   geom.Vec3To32(sc.Camera.Target),
			Up:       mgl32.Vec3{0, 1, 0},
			FovY:     float32(sc.Camera.FovY),
		},
		Light: render.Light{
			Ambient:    float32(sc.Light.Ambient),
			Position:   geom.Vec3To32(sc.Light.Position),
			Intensity:  float32(sc.Light.Intensity),
			CastShadow: sc.Light.Shadows,
		},
		Fog:        render.Fog{Color: sc.Fog.Color, Near: float32(sc.Fog.Near), Far: float32(sc.Fog.Far)},
		Background: sc.Background,
		Sphere: render.SphereMesh{
			Radius: float32(sc.Sphere.Radius),
			Material: render.Material{
				Color:     sc.Sphere.Color,
				NormalMap: sphereMap,
				Repeat:    [2]float32{repeat, repeat},
			},
		},
		Plane: render.PlaneMesh{
			Size: [2]float32{float32(sc.Ground.Size), float32(sc.Ground.Size)},
			Material: render.Material{
				Color:     sc.Ground.Color,
				NormalMap: planeMap,
				Repeat:    [2]float32{repeat, repeat},
			},
		},
		Dominoes: render.BoxBatch{
			Size:          geom.Vec3To32(s.cfg.Layout.BoxSize),
			Batch:         s.batch,
			CastShadow:    sc.Light.Shadows,
			ReceiveShadow: sc.Light.Shadows,
		},
	}
}

// Close releases the renderer. The session must not be used afterwards.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.renderer.Close()
}
