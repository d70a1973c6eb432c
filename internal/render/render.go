// Package render describes what the scene hands to a drawing backend. The
// backends live in gui (raylib window), viz (terminal) and stream
// (websocket); Recorder is the headless one used by tests and batch runs.
package render

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/san-kum/dominoes/internal/instance"
)

type Texture struct {
	ID     int
	Path   string
	Width  int
	Height int
}

type Material struct {
	Color     string // sRGB hex
	NormalMap Texture
	Repeat    [2]float32
}

type Camera struct {
	Position mgl32.Vec3
	Target   mgl32.Vec3
	Up       mgl32.Vec3
	FovY     float32
}

type Light struct {
	Ambient    float32
	Position   mgl32.Vec3
	Intensity  float32
	CastShadow bool
}

type Fog struct {
	Color string
	Near  float32
	Far   float32
}

type SphereMesh struct {
	Radius   float32
	Material Material
}

type PlaneMesh struct {
	Size     [2]float32
	Material Material
}

// BoxBatch is the instanced domino mesh. Size is the full box size.
type BoxBatch struct {
	Size          mgl32.Vec3
	Batch         *instance.Batch
	CastShadow    bool
	ReceiveShadow bool
}

// Scene is passed once to Setup before the first frame.
type Scene struct {
	Camera     Camera
	Light      Light
	Fog        Fog
	Background string
	Sphere     SphereMesh
	Plane      PlaneMesh
	Dominoes   BoxBatch
}

type Stats struct {
	Toppled  int
	Awake    int
	Contacts int
	Energy   float64
}

// Frame is one drawn step. Dominoes points at the live batch and is only
// valid for the duration of Draw.
type Frame struct {
	Index    int
	Time     float64
	Sphere   mgl32.Mat4
	Plane    mgl32.Mat4
	Dominoes *instance.Batch
	Stats    Stats
}

// Renderer is a drawing backend. LoadTexture is called before Setup; Draw
// is called once per frame from the loop goroutine.
type Renderer interface {
	LoadTexture(path string) (Texture, error)
	Setup(scene Scene) error
	Draw(frame Frame) error
	Close() error
}
