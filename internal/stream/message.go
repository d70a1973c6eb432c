package stream

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/san-kum/dominoes/internal/render"
)

const (
	TypeScene = "scene"
	TypeFrame = "frame"
)

// SceneMessage is sent once per Setup and to every client as it joins.
type SceneMessage struct {
	Type         string     `json:"type"`
	Dominoes     int        `json:"dominoes"`
	BoxSize      mgl32.Vec3 `json:"box_size"`
	Colors       []string   `json:"colors"`
	SphereRadius float32    `json:"sphere_radius"`
	SphereColor  string     `json:"sphere_color"`
	GroundSize   [2]float32 `json:"ground_size"`
	GroundColor  string     `json:"ground_color"`
	Background   string     `json:"background"`
	Camera       CameraJSON `json:"camera"`
}

type CameraJSON struct {
	Position mgl32.Vec3 `json:"position"`
	Target   mgl32.Vec3 `json:"target"`
	FovY     float32    `json:"fov_y"`
}

// FrameMessage carries every transform of one frame as column-major 4x4
// matrices.
type FrameMessage struct {
	Type     string       `json:"type"`
	Index    int          `json:"index"`
	Time     float64      `json:"time"`
	Sphere   mgl32.Mat4   `json:"sphere"`
	Dominoes []mgl32.Mat4 `json:"dominoes"`
	Toppled  int          `json:"toppled"`
	Awake    int          `json:"awake"`
	Contacts int          `json:"contacts"`
	Energy   float64      `json:"energy"`
}

func sceneMessage(s render.Scene) SceneMessage {
	m := SceneMessage{
		Type:         TypeScene,
		BoxSize:      s.Dominoes.Size,
		SphereRadius: s.Sphere.Radius,
		SphereColor:  s.Sphere.Material.Color,
		GroundSize:   s.Plane.Size,
		GroundColor:  s.Plane.Material.Color,
		Background:   s.Background,
		Camera: CameraJSON{
			Position: s.Camera.Position,
			Target:   s.Camera.Target,
			FovY:     s.Camera.FovY,
		},
	}
	if b := s.Dominoes.Batch; b != nil {
		m.Dominoes = b.Len()
		for _, c := range b.Colors() {
			m.Colors = append(m.Colors, c.Hex())
		}
	}
	return m
}

func frameMessage(f render.Frame) FrameMessage {
	m := FrameMessage{
		Type:     TypeFrame,
		Index:    f.Index,
		Time:     f.Time,
		Sphere:   f.Sphere,
		Toppled:  f.Stats.Toppled,
		Awake:    f.Stats.Awake,
		Contacts: f.Stats.Contacts,
		Energy:   f.Stats.Energy,
	}
	if f.Dominoes != nil {
		m.Dominoes = f.Dominoes.Snapshot()
	}
	return m
}
