package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const maxContactForce = 1e6

type jacobian struct {
	spatial    mgl64.Vec3
	rotational mgl64.Vec3
}

func (j jacobian) multiply(v, w mgl64.Vec3) float64 {
	return j.spatial.Dot(v) + j.rotational.Dot(w)
}

// equation is one scalar velocity constraint between two bodies, stabilised
// with the SPOOK parameters a, b and eps.
type equation struct {
	bi, bj         *body
	ga, gb         jacobian
	minForce       float64
	maxForce       float64
	a, b, eps      float64
	rhs, invC      float64
	lambda         float64
	offset         float64 // constraint violation, negative when penetrating
	friction       float64
	normal         *equation // friction rows are bounded by the normal row's lambda
	linearGWFactor float64
}

func spook(stiffness, relaxation, h float64) (a, b, eps float64) {
	d := 1 + 4*relaxation
	return 4 / (h * d), 4 * relaxation / d, 4 / (h * h * stiffness * d)
}

func (e *equation) computeB(h float64) float64 {
	gw := e.linearGWFactor*(e.ga.spatial.Dot(e.bi.vel)+e.gb.spatial.Dot(e.bj.vel)) +
		e.ga.rotational.Dot(e.bi.angVel) + e.gb.rotational.Dot(e.bj.angVel)
	return -e.offset*e.a - gw*e.b - h*e.computeGiMf()
}

func (e *equation) computeGiMf() float64 {
	fa := e.bi.force.Mul(e.bi.invMassSolve)
	fb := e.bj.force.Mul(e.bj.invMassSolve)
	ta := e.bi.invInertiaSolve.Mul3x1(e.bi.torque)
	tb := e.bj.invInertiaSolve.Mul3x1(e.bj.torque)
	return e.ga.multiply(fa, ta) + e.gb.multiply(fb, tb)
}

func (e *equation) computeC() float64 {
	c := e.ga.spatial.LenSqr()*e.bi.invMassSolve + e.gb.spatial.LenSqr()*e.bj.invMassSolve
	c += e.ga.rotational.Dot(e.bi.invInertiaSolve.Mul3x1(e.ga.rotational))
	c += e.gb.rotational.Dot(e.bj.invInertiaSolve.Mul3x1(e.gb.rotational))
	return c + e.eps
}

func (e *equation) computeGWlambda() float64 {
	return e.ga.multiply(e.bi.vlambda, e.bi.wlambda) + e.gb.multiply(e.bj.vlambda, e.bj.wlambda)
}

func (e *equation) addToWlambda(dl float64) {
	bi, bj := e.bi, e.bj
	bi.vlambda = bi.vlambda.Add(e.ga.spatial.Mul(bi.invMassSolve * dl))
	bj.vlambda = bj.vlambda.Add(e.gb.spatial.Mul(bj.invMassSolve * dl))
	bi.wlambda = bi.wlambda.Add(bi.invInertiaSolve.Mul3x1(e.ga.rotational).Mul(dl))
	bj.wlambda = bj.wlambda.Add(bj.invInertiaSolve.Mul3x1(e.gb.rotational).Mul(dl))
}

type solver struct {
	iterations int
	tolerance  float64
	equations  []*equation

	// Iterations used by the last solve.
	lastIterations int
}

// build turns each contact into one normal and two friction rows.
func (s *solver) build(h float64, contacts []contact, m Material) {
	s.equations = s.equations[:0]
	ca, cb, ceps := spook(m.ContactStiffness, m.ContactRelaxation, h)
	fa, fb, feps := spook(m.FrictionStiffness, m.FrictionRelaxation, h)

	for _, c := range contacts {
		n := c.normal
		normal := &equation{
			bi: c.a, bj: c.b,
			ga:             jacobian{n.Mul(-1), c.ra.Cross(n).Mul(-1)},
			gb:             jacobian{n, c.rb.Cross(n)},
			minForce:       0,
			maxForce:       maxContactForce,
			a:              ca,
			b:              cb,
			eps:            ceps,
			offset:         -c.depth,
			linearGWFactor: 1 + m.Restitution,
		}
		s.equations = append(s.equations, normal)

		t1, t2 := tangents(n)
		for _, t := range [2]mgl64.Vec3{t1, t2} {
			s.equations = append(s.equations, &equation{
				bi: c.a, bj: c.b,
				ga:             jacobian{t.Mul(-1), c.ra.Cross(t).Mul(-1)},
				gb:             jacobian{t, c.rb.Cross(t)},
				a:              fa,
				b:              fb,
				eps:            feps,
				friction:       m.Friction,
				normal:         normal,
				linearGWFactor: 1,
			})
		}
	}
}

// solve runs projected Gauss-Seidel and leaves the velocity corrections in
// each body's vlambda and wlambda.
func (s *solver) solve(h float64, contacts []contact, cfg Config) {
	s.build(h, contacts, cfg.Material)
	s.lastIterations = 0
	if len(s.equations) == 0 {
		return
	}

	for _, e := range s.equations {
		e.lambda = 0
		e.rhs = e.computeB(h)
		e.invC = 1 / e.computeC()
	}

	tolSqr := s.tolerance * s.tolerance
	for iter := 0; iter < s.iterations; iter++ {
		s.lastIterations = iter + 1
		total := 0.0
		for _, e := range s.equations {
			if e.normal != nil {
				bound := e.friction * e.normal.lambda
				e.minForce, e.maxForce = -bound, bound
			}

			dl := e.invC * (e.rhs - e.computeGWlambda() - e.eps*e.lambda)
			switch {
			case e.lambda+dl < e.minForce:
				dl = e.minForce - e.lambda
			case e.lambda+dl > e.maxForce:
				dl = e.maxForce - e.lambda
			}
			e.lambda += dl
			total += math.Abs(dl)
			e.addToWlambda(dl)
		}
		if total*total < tolSqr {
			break
		}
	}
}

// tangents returns two unit vectors orthogonal to n and to each other.
func tangents(n mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3) {
	ref := mgl64.Vec3{1, 0, 0}
	if math.Abs(n[0]) > 0.9 {
		ref = mgl64.Vec3{0, 1, 0}
	}
	t1 := n.Cross(ref).Normalize()
	return t1, n.Cross(t1)
}
