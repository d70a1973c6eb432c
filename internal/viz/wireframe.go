package viz

import (
	"math"
	"sort"

	"github.com/charmbracelet/lipgloss"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

type Edge struct {
	Start, End mgl64.Vec3
	Color      lipgloss.Color
}

type Wireframe struct{ Edges []Edge }

func (w *Wireframe) AddEdge(s, e mgl64.Vec3, c lipgloss.Color) {
	w.Edges = append(w.Edges, Edge{s, e, c})
}

func (w *Wireframe) Clear() { w.Edges = w.Edges[:0] }

var boxEdges = [12][2]int{
	{0, 1}, {1, 3}, {3, 2}, {2, 0},
	{4, 5}, {5, 7}, {7, 6}, {6, 4},
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}

// AddBox adds the twelve edges of a box of the given full size placed by m.
func (w *Wireframe) AddBox(m mgl32.Mat4, size mgl32.Vec3, c lipgloss.Color) {
	var corners [8]mgl64.Vec3
	for i := range corners {
		local := mgl32.Vec4{size[0] / 2, size[1] / 2, size[2] / 2, 1}
		for k := 0; k < 3; k++ {
			if i&(1<<k) == 0 {
				local[k] = -local[k]
			}
		}
		corners[i] = toVec64(m.Mul4x1(local).Vec3())
	}
	for _, e := range boxEdges {
		w.AddEdge(corners[e[0]], corners[e[1]], c)
	}
}

// AddSphere approximates a sphere with three rings in its local planes.
func (w *Wireframe) AddSphere(m mgl32.Mat4, radius float32, c lipgloss.Color) {
	const segments = 16
	centre := toVec64(m.Col(3).Vec3())
	axes := [3]mgl64.Vec3{
		toVec64(m.Col(0).Vec3()).Mul(float64(radius)),
		toVec64(m.Col(1).Vec3()).Mul(float64(radius)),
		toVec64(m.Col(2).Vec3()).Mul(float64(radius)),
	}
	for ring := 0; ring < 3; ring++ {
		u, v := axes[ring], axes[(ring+1)%3]
		prev := centre.Add(u)
		for s := 1; s <= segments; s++ {
			a := 2 * math.Pi * float64(s) / segments
			next := centre.Add(u.Mul(math.Cos(a))).Add(v.Mul(math.Sin(a)))
			w.AddEdge(prev, next, c)
			prev = next
		}
	}
}

// AddGrid lays a square grid on the y=0 plane.
func (w *Wireframe) AddGrid(half float64, lines int, c lipgloss.Color) {
	if lines < 2 {
		return
	}
	for i := 0; i < lines; i++ {
		t := -half + 2*half*float64(i)/float64(lines-1)
		w.AddEdge(mgl64.Vec3{t, 0, -half}, mgl64.Vec3{t, 0, half}, c)
		w.AddEdge(mgl64.Vec3{-half, 0, t}, mgl64.Vec3{half, 0, t}, c)
	}
}

type projectedEdge struct {
	x1, y1, x2, y2 int
	depth          float64
	color          lipgloss.Color
}

// Render3D draws the wireframe far to near so closer edges win the cell
// colour.
func Render3D(c *Canvas, w *Wireframe, cam *Camera) {
	if c == nil || w == nil || cam == nil {
		return
	}
	sw, sh := c.SubPixels()
	p := cam.projector(sw, sh)
	far := func(x, y int) bool {
		return absInt(x) > 8*sw || absInt(y) > 8*sh
	}
	proj := make([]projectedEdge, 0, len(w.Edges))
	for _, e := range w.Edges {
		x1, y1, d1, ok1 := p.project(e.Start)
		x2, y2, d2, ok2 := p.project(e.End)
		if ok1 && ok2 && !far(x1, y1) && !far(x2, y2) {
			proj = append(proj, projectedEdge{x1, y1, x2, y2, (d1 + d2) / 2, e.Color})
		}
	}
	sort.Slice(proj, func(i, j int) bool { return proj[i].depth > proj[j].depth })
	for _, e := range proj {
		c.DrawLine(e.x1, e.y1, e.x2, e.y2, e.color)
	}
}

func toVec64(v mgl32.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{float64(v[0]), float64(v[1]), float64(v[2])}
}
