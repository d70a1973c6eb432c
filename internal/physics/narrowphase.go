package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// contact is one touching point. normal points from a to b; ra and rb are
// the world offsets of the touching surface points from each centre.
type contact struct {
	a, b   *body
	normal mgl64.Vec3
	ra, rb mgl64.Vec3
	depth  float64
}

func newContact(a, b *body, normal, pointA, pointB mgl64.Vec3) contact {
	return contact{
		a:      a,
		b:      b,
		normal: normal,
		ra:     pointA.Sub(a.pos),
		rb:     pointB.Sub(b.pos),
		depth:  -normal.Dot(pointB.Sub(pointA)),
	}
}

// collide appends the contacts between a and b to out.
func collide(a, b *body, out []contact) []contact {
	if a.shape > b.shape {
		a, b = b, a
	}
	switch {
	case a.shape == ShapeBox && b.shape == ShapeBox:
		return boxBox(a, b, out)
	case a.shape == ShapeBox && b.shape == ShapeSphere:
		return boxSphere(a, b, out)
	case a.shape == ShapeBox && b.shape == ShapePlane:
		return planeBox(b, a, out)
	case a.shape == ShapeSphere && b.shape == ShapeSphere:
		return sphereSphere(a, b, out)
	case a.shape == ShapeSphere && b.shape == ShapePlane:
		return planeSphere(b, a, out)
	}
	return out
}

func planeNormal(p *body) mgl64.Vec3 {
	return p.quat.Rotate(mgl64.Vec3{0, 0, 1})
}

func planeSphere(p, s *body, out []contact) []contact {
	n := planeNormal(p)
	height := s.pos.Sub(p.pos).Dot(n)
	if height-s.radius > 0 {
		return out
	}
	onPlane := s.pos.Sub(n.Mul(height))
	onSphere := s.pos.Sub(n.Mul(s.radius))
	return append(out, newContact(p, s, n, onPlane, onSphere))
}

func planeBox(p, bx *body, out []contact) []contact {
	n := planeNormal(p)
	for _, v := range boxCorners(bx) {
		d := v.Sub(p.pos).Dot(n)
		if d > 0 {
			continue
		}
		out = append(out, newContact(p, bx, n, v.Sub(n.Mul(d)), v))
	}
	return out
}

func sphereSphere(a, b *body, out []contact) []contact {
	d := b.pos.Sub(a.pos)
	dist := d.Len()
	if dist > a.radius+b.radius {
		return out
	}
	n := mgl64.Vec3{0, 1, 0}
	if dist > 1e-12 {
		n = d.Mul(1 / dist)
	}
	return append(out, newContact(a, b, n, a.pos.Add(n.Mul(a.radius)), b.pos.Sub(n.Mul(b.radius))))
}

func boxSphere(bx, s *body, out []contact) []contact {
	inv := bx.quat.Conjugate()
	local := inv.Rotate(s.pos.Sub(bx.pos))

	var closest mgl64.Vec3
	for i := 0; i < 3; i++ {
		closest[i] = math.Max(-bx.half[i], math.Min(bx.half[i], local[i]))
	}

	var localNormal mgl64.Vec3
	diff := local.Sub(closest)
	dist := diff.Len()

	if dist > 1e-12 {
		if dist > s.radius {
			return out
		}
		localNormal = diff.Mul(1 / dist)
	} else {
		// centre inside the box: push out through the nearest face
		axis, best := 0, math.Inf(1)
		for i := 0; i < 3; i++ {
			if gap := bx.half[i] - math.Abs(local[i]); gap < best {
				axis, best = i, gap
			}
		}
		sign := 1.0
		if local[axis] < 0 {
			sign = -1
		}
		localNormal[axis] = sign
		closest[axis] = sign * bx.half[axis]
	}

	n := bx.quat.Rotate(localNormal)
	onBox := bx.pos.Add(bx.quat.Rotate(closest))
	onSphere := s.pos.Sub(n.Mul(s.radius))
	return append(out, newContact(bx, s, n, onBox, onSphere))
}

func boxCorners(b *body) [8]mgl64.Vec3 {
	ax := b.axes()
	var corners [8]mgl64.Vec3
	for i := 0; i < 8; i++ {
		p := b.pos
		for k := 0; k < 3; k++ {
			s := -1.0
			if i&(1<<k) != 0 {
				s = 1
			}
			p = p.Add(ax[k].Mul(s * b.half[k]))
		}
		corners[i] = p
	}
	return corners
}

func projectedRadius(axes [3]mgl64.Vec3, half mgl64.Vec3, l mgl64.Vec3) float64 {
	r := 0.0
	for i := 0; i < 3; i++ {
		r += math.Abs(axes[i].Dot(l)) * half[i]
	}
	return r
}

// Edge axes must beat the best face axis by this margin to be chosen; it
// keeps resting faces from flickering into edge contacts.
const (
	edgeRelTolerance = 0.95
	edgeAbsTolerance = 0.01
)

func boxBox(a, b *body, out []contact) []contact {
	axA, axB := a.axes(), b.axes()
	d := b.pos.Sub(a.pos)

	test := func(l mgl64.Vec3) (float64, bool) {
		overlap := projectedRadius(axA, a.half, l) + projectedRadius(axB, b.half, l) - math.Abs(d.Dot(l))
		return overlap, overlap >= 0
	}

	bestFace, faceDepth := -1, math.Inf(1)
	for i := 0; i < 6; i++ {
		l := axA[i%3]
		if i >= 3 {
			l = axB[i%3]
		}
		overlap, ok := test(l)
		if !ok {
			return out
		}
		if overlap < faceDepth {
			bestFace, faceDepth = i, overlap
		}
	}

	edgeI, edgeJ, edgeDepth := -1, -1, math.Inf(1)
	var edgeAxis mgl64.Vec3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			l := axA[i].Cross(axB[j])
			if l.LenSqr() < 1e-10 {
				continue
			}
			l = l.Normalize()
			overlap, ok := test(l)
			if !ok {
				return out
			}
			if overlap < edgeDepth {
				edgeI, edgeJ, edgeDepth, edgeAxis = i, j, overlap, l
			}
		}
	}

	if edgeI >= 0 && edgeDepth < edgeRelTolerance*faceDepth-edgeAbsTolerance {
		n := edgeAxis
		if n.Dot(d) < 0 {
			n = n.Mul(-1)
		}
		return append(out, edgeContact(a, b, axA, axB, edgeI, edgeJ, n))
	}

	if bestFace < 3 {
		n := axA[bestFace]
		if n.Dot(d) < 0 {
			n = n.Mul(-1)
		}
		return faceContacts(a, b, axA, axB, bestFace, n, false, out)
	}
	n := axB[bestFace-3]
	if n.Dot(d) > 0 {
		n = n.Mul(-1)
	}
	return faceContacts(b, a, axB, axA, bestFace-3, n, true, out)
}

// faceContacts clips the incident box's most opposed face against the side
// planes of the reference face. n is the reference face normal pointing
// towards the incident box. flipped reports that ref is the pair's b body.
func faceContacts(ref, inc *body, axR, axI [3]mgl64.Vec3, axis int, n mgl64.Vec3, flipped bool, out []contact) []contact {
	incAxis, incSign, most := 0, 1.0, math.Inf(1)
	for j := 0; j < 3; j++ {
		dot := axI[j].Dot(n)
		if dot < most {
			incAxis, incSign, most = j, 1, dot
		}
		if -dot < most {
			incAxis, incSign, most = j, -1, -dot
		}
	}

	u, v := (incAxis+1)%3, (incAxis+2)%3
	centre := inc.pos.Add(axI[incAxis].Mul(incSign * inc.half[incAxis]))
	du, dv := axI[u].Mul(inc.half[u]), axI[v].Mul(inc.half[v])
	poly := []mgl64.Vec3{
		centre.Add(du).Add(dv),
		centre.Sub(du).Add(dv),
		centre.Sub(du).Sub(dv),
		centre.Add(du).Sub(dv),
	}

	refCentre := ref.pos.Add(n.Mul(ref.half[axis]))
	for _, k := range [2]int{(axis + 1) % 3, (axis + 2) % 3} {
		side := axR[k]
		offset := side.Dot(ref.pos)
		poly = clipPolygon(poly, side, offset+ref.half[k])
		poly = clipPolygon(poly, side.Mul(-1), -offset+ref.half[k])
		if len(poly) == 0 {
			return out
		}
	}

	for _, p := range poly {
		sep := n.Dot(p.Sub(refCentre))
		if sep > 0 {
			continue
		}
		onRef := p.Sub(n.Mul(sep))
		if flipped {
			out = append(out, newContact(inc, ref, n.Mul(-1), p, onRef))
		} else {
			out = append(out, newContact(ref, inc, n, onRef, p))
		}
	}
	return out
}

// clipPolygon keeps the part of poly with plane.Dot(p) <= offset.
func clipPolygon(poly []mgl64.Vec3, plane mgl64.Vec3, offset float64) []mgl64.Vec3 {
	if len(poly) == 0 {
		return poly
	}
	out := make([]mgl64.Vec3, 0, len(poly)+2)
	prev := poly[len(poly)-1]
	prevDist := plane.Dot(prev) - offset
	for _, cur := range poly {
		dist := plane.Dot(cur) - offset
		if (prevDist <= 0) != (dist <= 0) {
			t := prevDist / (prevDist - dist)
			out = append(out, prev.Add(cur.Sub(prev).Mul(t)))
		}
		if dist <= 0 {
			out = append(out, cur)
		}
		prev, prevDist = cur, dist
	}
	return out
}

// edgeContact touches the supporting edge of a along axis i with the
// supporting edge of b along axis j.
func edgeContact(a, b *body, axA, axB [3]mgl64.Vec3, i, j int, n mgl64.Vec3) contact {
	pa := supportEdge(a, axA, i, n)
	pb := supportEdge(b, axB, j, n.Mul(-1))

	sa, sb := closestOnSegments(pa, axA[i], a.half[i], pb, axB[j], b.half[j])
	onA := pa.Add(axA[i].Mul(sa))
	onB := pb.Add(axB[j].Mul(sb))
	return newContact(a, b, n, onA, onB)
}

// supportEdge returns the midpoint of the edge parallel to axes[skip] that
// lies furthest along dir.
func supportEdge(b *body, axes [3]mgl64.Vec3, skip int, dir mgl64.Vec3) mgl64.Vec3 {
	p := b.pos
	for k := 0; k < 3; k++ {
		if k == skip {
			continue
		}
		s := 1.0
		if axes[k].Dot(dir) < 0 {
			s = -1
		}
		p = p.Add(axes[k].Mul(s * b.half[k]))
	}
	return p
}

// closestOnSegments returns the parameters of the closest points between
// the segments pa+s*da and pb+t*db, with |s| <= ha and |t| <= hb. da and db
// are unit vectors.
func closestOnSegments(pa, da mgl64.Vec3, ha float64, pb, db mgl64.Vec3, hb float64) (float64, float64) {
	r := pa.Sub(pb)
	c := da.Dot(db)
	e := da.Dot(r)
	f := db.Dot(r)
	denom := 1 - c*c

	s := 0.0
	if denom > 1e-12 {
		s = clampf((c*f-e)/denom, -ha, ha)
	}
	t := clampf(c*s+f, -hb, hb)
	s = clampf(c*t-e, -ha, ha)
	return s, t
}

func clampf(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
