package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/dominoes/internal/geom"
	"github.com/san-kum/dominoes/internal/instance"
)

// SVGOptions controls LayoutToSVG. Colors, when set, must have one entry per
// pose. Trail is drawn as a path, typically the sphere's positions.
type SVGOptions struct {
	Width  int
	Height int
	Half   mgl64.Vec3
	Colors []instance.Color
	Trail  []mgl64.Vec3
}

const defaultFill = "#e0e4cc"

// LayoutToSVG draws the dominoes from above: world x to the right and world
// z downwards. Each domino is its footprint rectangle, turned by its yaw.
func LayoutToSVG(poses []geom.Pose, opts SVGOptions) string {
	width, height := opts.Width, opts.Height
	if width <= 0 {
		width = 800
	}
	if height <= 0 {
		height = 600
	}

	minX, maxX := math.Inf(1), math.Inf(-1)
	minZ, maxZ := math.Inf(1), math.Inf(-1)
	grow := func(p mgl64.Vec3, r float64) {
		minX = math.Min(minX, p.X()-r)
		maxX = math.Max(maxX, p.X()+r)
		minZ = math.Min(minZ, p.Z()-r)
		maxZ = math.Max(maxZ, p.Z()+r)
	}
	reach := math.Hypot(opts.Half.X(), opts.Half.Z())
	for _, p := range poses {
		grow(p.Position, reach)
	}
	for _, p := range opts.Trail {
		grow(p, 0)
	}
	if math.IsInf(minX, 1) {
		minX, maxX, minZ, maxZ = -1, 1, -1, 1
	}

	// pad and keep the aspect ratio so the footprints are not stretched
	rangeX := math.Max(maxX-minX, 1e-3)
	rangeZ := math.Max(maxZ-minZ, 1e-3)
	minX -= rangeX * 0.1
	minZ -= rangeZ * 0.1
	rangeX *= 1.2
	rangeZ *= 1.2
	scale := math.Min(float64(width)/rangeX, float64(height)/rangeZ)
	toSVG := func(p mgl64.Vec3) (float64, float64) {
		return (p.X() - minX) * scale, (p.Z() - minZ) * scale
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g stroke="#262A53" stroke-width="0.5">
`, width, height, width, height))

	w := 2 * opts.Half.X() * scale
	d := 2 * opts.Half.Z() * scale
	for i, p := range poses {
		fill := defaultFill
		if i < len(opts.Colors) {
			fill = opts.Colors[i].Hex()
		}
		cx, cy := toSVG(p.Position)
		yaw := geom.QuatToEuler(p.Quat()).Y()
		sb.WriteString(fmt.Sprintf(`<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s" transform="translate(%.1f %.1f) rotate(%.1f)"/>
`, -w/2, -d/2, w, d, fill, cx, cy, -yaw*180/math.Pi))
	}
	sb.WriteString("</g>\n")

	if len(opts.Trail) >= 2 {
		sb.WriteString(`<path fill="none" stroke="#7C83FD" stroke-width="1.5" d="M`)
		for i, p := range opts.Trail {
			x, y := toSVG(p)
			if i == 0 {
				sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
			}
		}
		sb.WriteString("\"/>\n")
	}

	sb.WriteString("</svg>")
	return sb.String()
}
