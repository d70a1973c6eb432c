package viz

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/dominoes/internal/render"
)

const (
	DefaultWidth    = 80
	DefaultHeight   = 24
	historyCapacity = 600
	groundHalf      = 8.0
	groundLines     = 9
)

var errNotSetUp = errors.New("viz: draw before setup")

// Renderer draws frames onto a Braille canvas. It is driven by Model but
// works with any loop that calls Draw.
type Renderer struct {
	canvas *Canvas
	camera *Camera
	theme  Theme
	wire   Wireframe

	scene   render.Scene
	ready   bool
	colors  []lipgloss.Color
	last    render.Frame
	energy  []float64
	toppled []float64
}

func NewRenderer(width, height int) *Renderer {
	return &Renderer{
		canvas: NewCanvas(width, height),
		camera: NewCamera(mgl64.Vec3{0, 4, 6}, mgl64.Vec3{}, 50),
		theme:  Themes[0],
	}
}

// LoadTexture only checks that the file is there; the terminal has no use
// for the pixels.
func (r *Renderer) LoadTexture(path string) (render.Texture, error) {
	info, err := os.Stat(path)
	if err != nil {
		return render.Texture{}, err
	}
	if info.IsDir() {
		return render.Texture{}, fmt.Errorf("%s is a directory", path)
	}
	return render.Texture{Path: path}, nil
}

func (r *Renderer) Setup(scene render.Scene) error {
	r.scene = scene
	r.ready = true
	r.camera = NewCamera(toVec64(scene.Camera.Position), toVec64(scene.Camera.Target), float64(scene.Camera.FovY))

	r.colors = r.colors[:0]
	if b := scene.Dominoes.Batch; b != nil {
		for _, c := range b.Colors() {
			r.colors = append(r.colors, lipgloss.Color(c.Hex()))
		}
	}
	r.energy = r.energy[:0]
	r.toppled = r.toppled[:0]
	return nil
}

func (r *Renderer) Draw(frame render.Frame) error {
	if !r.ready {
		return errNotSetUp
	}
	r.last = frame
	r.energy = appendCapped(r.energy, frame.Stats.Energy)
	r.toppled = appendCapped(r.toppled, float64(frame.Stats.Toppled))
	r.redraw()
	return nil
}

func (r *Renderer) Close() error {
	r.ready = false
	return nil
}

// redraw rebuilds the canvas from the last frame. Camera moves call it too,
// so a paused scene can still be looked around.
func (r *Renderer) redraw() {
	r.wire.Clear()
	r.wire.AddGrid(groundHalf, groundLines, r.theme.Ground)

	if b := r.last.Dominoes; b != nil {
		size := r.scene.Dominoes.Size
		for i, m := range b.Transforms() {
			color := r.theme.Primary
			if i < len(r.colors) {
				color = r.colors[i]
			}
			r.wire.AddBox(m, size, color)
		}
	}
	if r.scene.Sphere.Radius > 0 {
		r.wire.AddSphere(r.last.Sphere, r.scene.Sphere.Radius, r.theme.Sphere)
	}

	r.canvas.Clear()
	Render3D(r.canvas, &r.wire, r.camera)
}

func (r *Renderer) Camera() *Camera { return r.camera }

func (r *Renderer) Canvas() *Canvas { return r.canvas }

func (r *Renderer) SetTheme(t Theme) {
	r.theme = t
	if r.ready {
		r.redraw()
	}
}

// View lays the canvas next to a stats panel.
func (r *Renderer) View(status string) string {
	var s strings.Builder
	s.WriteString(GradientText("DOMINOES", r.theme.Primary, r.theme.Secondary) + "\n")
	s.WriteString(status + "\n\n")

	total := 0
	if b := r.last.Dominoes; b != nil {
		total = b.Len()
	}
	st := r.last.Stats
	s.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("%.2fs", r.last.Time)) + "\n")
	s.WriteString(labelStyle.Render("Frame") + valueStyle.Render(humanize.Comma(int64(r.last.Index))) + "\n")
	s.WriteString(labelStyle.Render("Toppled") + valueStyle.Render(fmt.Sprintf("%d / %d", st.Toppled, total)) + "\n")
	if total > 0 {
		s.WriteString(labelStyle.Render("") + ProgressBar(float64(st.Toppled)/float64(total), 20) + "\n")
	}
	s.WriteString(labelStyle.Render("Awake") + valueStyle.Render(fmt.Sprintf("%d", st.Awake)) + "\n")
	s.WriteString(labelStyle.Render("Contacts") + valueStyle.Render(fmt.Sprintf("%d", st.Contacts)) + "\n")
	s.WriteString(labelStyle.Render("Energy") + valueStyle.Render(fmt.Sprintf("%.3f J", st.Energy)) + "\n")
	s.WriteString(labelStyle.Render("") + SparklineChart(r.energy, 20) + "\n")

	if len(r.toppled) > 1 {
		chart := asciigraph.Plot(r.toppled, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Toppled"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}
	s.WriteString(helpStyle.Render("─────────────────────\nSP:Pause R:Restart Q:Quit\n←→↑↓:Orbit +-:Zoom T:Theme"))

	canvasView := canvasStyle.Render(r.canvas.String())
	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
}

func appendCapped(s []float64, v float64) []float64 {
	s = append(s, v)
	if len(s) > historyCapacity {
		s = s[1:]
	}
	return s
}

var _ render.Renderer = (*Renderer)(nil)
