package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/dominoes/internal/geom"
	"github.com/san-kum/dominoes/internal/instance"
	"github.com/san-kum/dominoes/internal/layout"
	"github.com/san-kum/dominoes/internal/physics"
	"gopkg.in/yaml.v3"
)

const (
	DefaultFixedDt      = 1.0 / 60
	DefaultMaxDt        = 0.1
	DefaultDuration     = 10.0
	DefaultSeed         = 1
	DefaultDominoMass   = 1.0
	DefaultSphereRadius = 0.3
	DefaultSphereMass   = 1.0
	DefaultGroundSize   = 100.0
	DefaultAssetDir     = "assets"
	DefaultSphereMap    = "textures/map-sphere.png"
	DefaultPlaneMap     = "textures/map-plane.png"
	DefaultMapRepeat    = 10.0
)

var (
	ErrInvalid       = errors.New("config: invalid value")
	ErrUnknownPreset = errors.New("config: unknown preset")
)

type Error struct {
	Field  string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

func (e *Error) Unwrap() error {
	return ErrInvalid
}

type Config struct {
	Layout   layout.Spec    `yaml:"layout"`
	Physics  physics.Config `yaml:"physics"`
	Scene    SceneConfig    `yaml:"scene"`
	Duration float64        `yaml:"duration"`
}

type SceneConfig struct {
	Seed       uint64           `yaml:"seed"`
	Palette    instance.Palette `yaml:"palette"`
	DominoMass float64          `yaml:"domino_mass"`
	Sphere     SphereConfig     `yaml:"sphere"`
	Ground     GroundConfig     `yaml:"ground"`
	AssetDir   string           `yaml:"asset_dir"`
	FixedDt    float64          `yaml:"fixed_dt"`
	MaxDt      float64          `yaml:"max_dt"`
	Camera     CameraConfig     `yaml:"camera"`
	Light      LightConfig      `yaml:"light"`
	Fog        FogConfig        `yaml:"fog"`
	Background string           `yaml:"background"`
}

// SphereConfig places the striker. Impulse is in world space, ImpulsePoint
// in the sphere's local frame.
type SphereConfig struct {
	Radius       float64    `yaml:"radius"`
	Mass         float64    `yaml:"mass"`
	Pose         geom.Pose  `yaml:"pose"`
	Impulse      mgl64.Vec3 `yaml:"impulse"`
	ImpulsePoint mgl64.Vec3 `yaml:"impulse_point"`
	Color        string     `yaml:"color"`
	NormalMap    string     `yaml:"normal_map"`
}

type GroundConfig struct {
	Pose      geom.Pose `yaml:"pose"`
	Size      float64   `yaml:"size"`
	Color     string    `yaml:"color"`
	NormalMap string    `yaml:"normal_map"`
	MapRepeat float64   `yaml:"map_repeat"`
}

type CameraConfig struct {
	Position mgl64.Vec3 `yaml:"position"`
	Target   mgl64.Vec3 `yaml:"target"`
	FovY     float64    `yaml:"fov_y"`
}

type LightConfig struct {
	Ambient   float64    `yaml:"ambient"`
	Position  mgl64.Vec3 `yaml:"position"`
	Intensity float64    `yaml:"intensity"`
	Shadows   bool       `yaml:"shadows"`
}

type FogConfig struct {
	Color string  `yaml:"color"`
	Near  float64 `yaml:"near"`
	Far   float64 `yaml:"far"`
}

func DefaultConfig() *Config {
	return &Config{
		Layout:   layout.DefaultSpec(),
		Physics:  physics.DefaultConfig(),
		Duration: DefaultDuration,
		Scene: SceneConfig{
			Seed:       DefaultSeed,
			Palette:    append(instance.Palette(nil), instance.DefaultPalette...),
			DominoMass: DefaultDominoMass,
			Sphere: SphereConfig{
				Radius:    DefaultSphereRadius,
				Mass:      DefaultSphereMass,
				Pose:      geom.At(2.5, 0.75, 2),
				Impulse:   mgl64.Vec3{3, 0, 0},
				Color:     "#262A53",
				NormalMap: DefaultSphereMap,
			},
			Ground: GroundConfig{
				Pose:      geom.Pose{Rotation: mgl64.Vec3{-math.Pi / 2, 0, 0}},
				Size:      DefaultGroundSize,
				Color:     "#7C83FD",
				NormalMap: DefaultPlaneMap,
				MapRepeat: DefaultMapRepeat,
			},
			AssetDir: DefaultAssetDir,
			FixedDt:  DefaultFixedDt,
			MaxDt:    DefaultMaxDt,
			Camera: CameraConfig{
				Position: mgl64.Vec3{0, 4, 6},
				FovY:     50,
			},
			Light: LightConfig{
				Ambient:   0.4,
				Position:  mgl64.Vec3{10, 10, 10},
				Intensity: 0.8,
				Shadows:   true,
			},
			Fog:        FogConfig{Color: "#7C83FD", Near: 0, Far: 40},
			Background: "#7C83FD",
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Resolve starts from the named preset, or the defaults when preset is
// empty, and lets the file at path override any field it sets.
func Resolve(preset, path string) (*Config, error) {
	cfg := DefaultConfig()
	if preset != "" {
		if cfg = GetPreset(preset); cfg == nil {
			return nil, fmt.Errorf("%w: %s", ErrUnknownPreset, preset)
		}
	}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// AssetPath resolves an asset name against AssetDir.
func (s SceneConfig) AssetPath(name string) string {
	if filepath.IsAbs(name) || s.AssetDir == "" {
		return name
	}
	return filepath.Join(s.AssetDir, name)
}

// Validate checks every section. Layout and physics errors keep their own
// types so callers can tell them apart with errors.As.
func (c *Config) Validate() error {
	if err := c.Layout.Validate(); err != nil {
		return fmt.Errorf("config: layout: %w", err)
	}
	if err := c.Physics.Validate(); err != nil {
		return fmt.Errorf("config: physics: %w", err)
	}

	s := c.Scene
	switch {
	case !(s.DominoMass > 0):
		return &Error{"scene.domino_mass", "must be positive"}
	case !(s.Sphere.Radius > 0):
		return &Error{"scene.sphere.radius", "must be positive"}
	case !(s.Sphere.Mass > 0):
		return &Error{"scene.sphere.mass", "must be positive"}
	case s.FixedDt < 0:
		return &Error{"scene.fixed_dt", "must not be negative"}
	case !(s.MaxDt > 0):
		return &Error{"scene.max_dt", "must be positive"}
	case c.Duration < 0:
		return &Error{"duration", "must not be negative"}
	case s.Sphere.NormalMap == "" || s.Ground.NormalMap == "":
		return &Error{"scene.normal_map", "texture path is required"}
	}
	if _, err := s.Palette.Linear(); err != nil {
		return &Error{"scene.palette", err.Error()}
	}
	return nil
}
