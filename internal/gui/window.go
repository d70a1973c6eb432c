// Package gui draws the domino scene in a raylib window.
package gui

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/san-kum/dominoes/internal/render"
	"github.com/tanema/gween/ease"
)

const flightSeconds = 2.0

var (
	errNoTexture = errors.New("gui: texture not loaded")
	errNotSetUp  = errors.New("gui: draw before setup")
)

var (
	ColText    = rl.NewColor(235, 235, 235, 255)
	ColTextDim = rl.NewColor(150, 150, 170, 255)
)

type uniforms struct {
	viewPos, lightPos    int32
	ambient, intensity   int32
	useNormalMap, tiling int32
	fogColor, fogNear    int32
	fogFar               int32
}

// Window is a render.Renderer backed by raylib. Every method must be called
// from the goroutine that created it.
type Window struct {
	textures map[string]rl.Texture2D

	scene      render.Scene
	ready      bool
	closed     bool
	shader     rl.Shader
	loc        uniforms
	cube       rl.Mesh
	ball       rl.Mesh
	ground     rl.Mesh
	boxMat     rl.Material
	ballMat    rl.Material
	groundMat  rl.Material
	colors     []color.RGBA
	background color.RGBA
	fog        [3]float32

	camera rl.Camera3D
	flight *render.Flight
	last   render.Frame
	paused bool
}

// NewWindow opens the window. Close shuts it again.
func NewWindow(width, height int32, title string) *Window {
	rl.SetConfigFlags(rl.FlagMsaa4xHint)
	rl.InitWindow(width, height, title)
	rl.SetTargetFPS(60)
	return &Window{textures: make(map[string]rl.Texture2D)}
}

// LoadTexture loads a texture once per path; later calls reuse it.
func (w *Window) LoadTexture(path string) (render.Texture, error) {
	tex, ok := w.textures[path]
	if !ok {
		if _, err := os.Stat(path); err != nil {
			return render.Texture{}, err
		}
		tex = rl.LoadTexture(path)
		if tex.ID == 0 {
			return render.Texture{}, fmt.Errorf("gui: cannot decode %s", path)
		}
		rl.SetTextureWrap(tex, rl.WrapRepeat)
		w.textures[path] = tex
	}
	return render.Texture{ID: int(tex.ID), Path: path, Width: int(tex.Width), Height: int(tex.Height)}, nil
}

func (w *Window) Setup(scene render.Scene) error {
	colors, err := sceneColors(scene)
	if err != nil {
		return err
	}
	sphereMap, ok := w.textures[scene.Sphere.Material.NormalMap.Path]
	if !ok {
		return fmt.Errorf("%w: %s", errNoTexture, scene.Sphere.Material.NormalMap.Path)
	}
	planeMap, ok := w.textures[scene.Plane.Material.NormalMap.Path]
	if !ok {
		return fmt.Errorf("%w: %s", errNoTexture, scene.Plane.Material.NormalMap.Path)
	}

	w.releaseScene()
	w.scene = scene
	w.colors = colors.dominoes
	w.background = colors.background
	w.fog = colors.fog

	w.shader = rl.LoadShaderFromMemory(vertexShader, fragmentShader)
	w.loc = uniforms{
		viewPos:      rl.GetShaderLocation(w.shader, "viewPos"),
		lightPos:     rl.GetShaderLocation(w.shader, "lightPos"),
		ambient:      rl.GetShaderLocation(w.shader, "ambient"),
		intensity:    rl.GetShaderLocation(w.shader, "intensity"),
		useNormalMap: rl.GetShaderLocation(w.shader, "useNormalMap"),
		tiling:       rl.GetShaderLocation(w.shader, "tiling"),
		fogColor:     rl.GetShaderLocation(w.shader, "fogColor"),
		fogNear:      rl.GetShaderLocation(w.shader, "fogNear"),
		fogFar:       rl.GetShaderLocation(w.shader, "fogFar"),
	}

	size := scene.Dominoes.Size
	w.cube = rl.GenMeshCube(size.X(), size.Y(), size.Z())
	w.ball = rl.GenMeshSphere(scene.Sphere.Radius, 32, 32)
	rl.GenMeshTangents(&w.ball)
	w.ground = rl.GenMeshPlane(scene.Plane.Size[0], scene.Plane.Size[1], 1, 1)
	rl.GenMeshTangents(&w.ground)

	w.boxMat = w.material(colors.box, rl.Texture2D{})
	w.ballMat = w.material(colors.sphere, sphereMap)
	w.groundMat = w.material(colors.ground, planeMap)

	w.camera = rl.NewCamera3D(vec3(scene.Camera.Position), vec3(scene.Camera.Target), vec3(scene.Camera.Up), scene.Camera.FovY, rl.CameraPerspective)
	w.flight = render.NewFlight(approach(scene.Camera), scene.Camera, flightSeconds, ease.OutCubic)
	w.ready = true
	return nil
}

func (w *Window) material(c color.RGBA, normalMap rl.Texture2D) rl.Material {
	m := rl.LoadMaterialDefault()
	m.Shader = w.shader
	m.GetMap(rl.MapDiffuse).Color = c
	if normalMap.ID != 0 {
		rl.SetMaterialTexture(&m, rl.MapNormal, normalMap)
	}
	return m
}

// approach is where the opening flight starts: further out and higher than
// the resting camera.
func approach(c render.Camera) render.Camera {
	from := c
	from.Position = c.Target.Add(c.Position.Sub(c.Target).Mul(2.5)).Add(mgl32.Vec3{0, 4, 0})
	return from
}

func (w *Window) Draw(frame render.Frame) error {
	if !w.ready {
		return errNotSetUp
	}
	w.last = frame

	if !w.flight.Done() {
		cam, _ := w.flight.Update(rl.GetFrameTime())
		w.camera.Position, w.camera.Target = vec3(cam.Position), vec3(cam.Target)
	}

	rl.BeginDrawing()
	rl.ClearBackground(w.background)
	rl.BeginMode3D(w.camera)
	w.setLighting()

	w.setSurface(w.scene.Plane.Material)
	// raylib planes lie in XZ, the ground body's plane in its local XY
	rl.DrawMesh(w.ground, w.groundMat, matrix(frame.Plane.Mul4(mgl32.HomogRotate3DX(math.Pi/2))))

	w.setSurface(w.scene.Sphere.Material)
	rl.DrawMesh(w.ball, w.ballMat, matrix(frame.Sphere))

	// one DrawMesh per slot: DrawMeshInstanced cannot vary the colour per
	// instance, so each slot sets its own diffuse colour first
	if b := frame.Dominoes; b != nil {
		w.setSurface(render.Material{})
		diffuse := w.boxMat.GetMap(rl.MapDiffuse)
		for i, m := range b.Transforms() {
			if i < len(w.colors) {
				diffuse.Color = w.colors[i]
			}
			rl.DrawMesh(w.cube, w.boxMat, matrix(m))
		}
	}
	rl.EndMode3D()

	w.drawHUD(frame)
	rl.EndDrawing()
	return nil
}

func (w *Window) setLighting() {
	light := w.scene.Light
	rl.SetShaderValue(w.shader, w.loc.viewPos, []float32{w.camera.Position.X, w.camera.Position.Y, w.camera.Position.Z}, rl.ShaderUniformVec3)
	rl.SetShaderValue(w.shader, w.loc.lightPos, light.Position[:], rl.ShaderUniformVec3)
	rl.SetShaderValue(w.shader, w.loc.ambient, []float32{light.Ambient}, rl.ShaderUniformFloat)
	rl.SetShaderValue(w.shader, w.loc.intensity, []float32{light.Intensity}, rl.ShaderUniformFloat)
	rl.SetShaderValue(w.shader, w.loc.fogColor, w.fog[:], rl.ShaderUniformVec3)
	rl.SetShaderValue(w.shader, w.loc.fogNear, []float32{w.scene.Fog.Near}, rl.ShaderUniformFloat)
	rl.SetShaderValue(w.shader, w.loc.fogFar, []float32{w.scene.Fog.Far}, rl.ShaderUniformFloat)
}

func (w *Window) setSurface(m render.Material) {
	use, tiling := float32(0), []float32{1, 1}
	if m.NormalMap.ID != 0 {
		use = 1
		tiling = m.Repeat[:]
	}
	rl.SetShaderValue(w.shader, w.loc.useNormalMap, []float32{use}, rl.ShaderUniformFloat)
	rl.SetShaderValue(w.shader, w.loc.tiling, tiling, rl.ShaderUniformVec2)
}

func (w *Window) drawHUD(frame render.Frame) {
	total := 0
	if frame.Dominoes != nil {
		total = frame.Dominoes.Len()
	}
	st := frame.Stats
	rl.DrawText("dominoes", 20, 20, 24, ColText)
	rl.DrawText(fmt.Sprintf("t %.2fs  toppled %d/%d  awake %d  contacts %d", frame.Time, st.Toppled, total, st.Awake, st.Contacts), 20, 52, 16, ColText)
	if w.paused {
		rl.DrawText("PAUSED", 20, 76, 16, ColTextDim)
	}
	rl.DrawText("[SPACE] PAUSE  [R] RESET  [ARROWS] ORBIT  [WHEEL] ZOOM  [ESC] QUIT", 20, int32(rl.GetScreenHeight())-30, 14, ColTextDim)
	rl.DrawFPS(int32(rl.GetScreenWidth())-100, 20)
}

func (w *Window) releaseScene() {
	if !w.ready {
		return
	}
	// materials share the shader and the textures, which are freed on their own
	rl.UnloadMesh(&w.cube)
	rl.UnloadMesh(&w.ball)
	rl.UnloadMesh(&w.ground)
	rl.UnloadShader(w.shader)
	w.ready = false
}

func (w *Window) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	w.releaseScene()
	for path, tex := range w.textures {
		rl.UnloadTexture(tex)
		delete(w.textures, path)
	}
	rl.CloseWindow()
	return nil
}

var _ render.Renderer = (*Window)(nil)

type palette struct {
	box, sphere, ground, background color.RGBA
	fog                             [3]float32
	dominoes                        []color.RGBA
}

func sceneColors(scene render.Scene) (palette, error) {
	var p palette
	var err error
	if p.sphere, err = rgba(scene.Sphere.Material.Color); err != nil {
		return p, err
	}
	if p.ground, err = rgba(scene.Plane.Material.Color); err != nil {
		return p, err
	}
	if p.background, err = rgba(scene.Background); err != nil {
		return p, err
	}
	fog, err := colorful.Hex(scene.Fog.Color)
	if err != nil {
		return p, fmt.Errorf("gui: fog colour: %w", err)
	}
	p.fog = [3]float32{float32(fog.R), float32(fog.G), float32(fog.B)}
	p.box = rl.White
	if b := scene.Dominoes.Batch; b != nil {
		for _, c := range b.Colors() {
			r, g, bl := colorful.LinearRgb(float64(c.R), float64(c.G), float64(c.B)).Clamped().RGB255()
			p.dominoes = append(p.dominoes, rl.NewColor(r, g, bl, 255))
		}
	}
	return p, nil
}

func rgba(hex string) (color.RGBA, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("gui: colour %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return rl.NewColor(r, g, b, 255), nil
}

func vec3(v mgl32.Vec3) rl.Vector3 { return rl.NewVector3(v.X(), v.Y(), v.Z()) }

// matrix converts a column-major mgl32 matrix; raylib names its fields by
// the same column-major index.
func matrix(m mgl32.Mat4) rl.Matrix {
	return rl.Matrix{
		M0: m[0], M1: m[1], M2: m[2], M3: m[3],
		M4: m[4], M5: m[5], M6: m[6], M7: m[7],
		M8: m[8], M9: m[9], M10: m[10], M11: m[11],
		M12: m[12], M13: m[13], M14: m[14], M15: m[15],
	}
}
