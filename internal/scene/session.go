package scene

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/san-kum/dominoes/internal/config"
	"github.com/san-kum/dominoes/internal/geom"
	"github.com/san-kum/dominoes/internal/instance"
	"github.com/san-kum/dominoes/internal/metrics"
	"github.com/san-kum/dominoes/internal/physics"
	"github.com/san-kum/dominoes/internal/render"
)

// Session owns the world and the instance batch of one running scene. It is
// not safe for concurrent use; every call must come from the loop goroutine.
type Session struct {
	cfg      *config.Config
	world    *physics.World
	renderer render.Renderer

	handles []physics.Handle
	sphere  physics.Handle
	plane   physics.Handle
	batch   *instance.Batch

	metrics   []metrics.Metric
	observers []metrics.Observer

	tilts      []float64
	sample     metrics.Sample
	frame      int
	drawErrors int
	closed     bool
}

func (s *Session) AddMetric(m metrics.Metric)     { s.metrics = append(s.metrics, m) }
func (s *Session) AddObserver(o metrics.Observer) { s.observers = append(s.observers, o) }

// StepDt is the physics step OnFrame takes for a frame of length dt.
func (s *Session) StepDt(dt float64) float64 {
	if fixed := s.cfg.Scene.FixedDt; fixed > 0 {
		return fixed
	}
	return math.Min(dt, s.cfg.Scene.MaxDt)
}

// OnFrame advances the world by one step, copies the new body transforms
// into the batch and draws. Draw failures are logged and the loop goes on.
func (s *Session) OnFrame(dt float64) {
	if s.closed {
		return
	}

	s.world.Step(s.StepDt(dt))

	if err := instance.Sync(s.world, s.handles, s.batch); err != nil {
		slog.Error("instance sync failed", "error", err)
		return
	}

	s.observe()
	s.frame++

	frame := render.Frame{
		Index:    s.frame,
		Time:     s.world.Time(),
		Sphere:   geom.Mat4To32(s.world.Transform(s.sphere)),
		Plane:    geom.Mat4To32(s.world.Transform(s.plane)),
		Dominoes: s.batch,
		Stats: render.Stats{
			Toppled:  metrics.CountToppled(s.tilts, metrics.DefaultToppleAngle),
			Awake:    s.sample.Awake,
			Contacts: s.sample.Contacts,
			Energy:   s.sample.Energy,
		},
	}
	if err := s.renderer.Draw(frame); err != nil {
		s.drawErrors++
		slog.Warn("draw failed", "frame", s.frame, "error", err)
	}
}

func (s *Session) observe() {
	energy := s.world.KineticEnergy(s.sphere)
	awake := 0
	if !s.world.Sleeping(s.sphere) {
		awake++
	}
	for i, h := range s.handles {
		s.tilts[i] = geom.Tilt(s.world.Orientation(h))
		energy += s.world.KineticEnergy(h)
		if !s.world.Sleeping(h) {
			awake++
		}
	}

	s.sample = metrics.Sample{
		Time:     s.world.Time(),
		Tilt:     s.tilts,
		Energy:   energy,
		Awake:    awake,
		Contacts: s.world.Contacts(),
	}
	for _, m := range s.metrics {
		m.Observe(s.sample)
	}
	for _, o := range s.observers {
		o.OnSample(s.sample)
	}
}

// Run calls OnFrame on every tick of interval until ctx is done.
func (s *Session) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			s.OnFrame(now.Sub(last).Seconds())
			last = now
		}
	}
}

// Advance runs frames back to back until the world has moved forward by
// seconds of simulated time, and returns the number of frames drawn.
func (s *Session) Advance(seconds float64) int {
	dt := s.StepDt(s.cfg.Scene.MaxDt)
	if dt <= 0 || seconds <= 0 {
		return 0
	}
	n := int(math.Round(seconds / dt))
	for i := 0; i < n; i++ {
		s.OnFrame(dt)
	}
	return n
}

// Results reports every registered metric by name.
func (s *Session) Results() map[string]float64 {
	out := make(map[string]float64, len(s.metrics))
	for _, m := range s.metrics {
		out[m.Name()] = m.Value()
	}
	return out
}

func (s *Session) Config() *config.Config { return s.cfg }
func (s *Session) World() *physics.World  { return s.world }
func (s *Session) Batch() *instance.Batch { return s.batch }
func (s *Session) Sphere() physics.Handle { return s.sphere }
func (s *Session) Plane() physics.Handle  { return s.plane }
func (s *Session) Frame() int             { return s.frame }
func (s *Session) DrawErrors() int        { return s.drawErrors }
func (s *Session) Sample() metrics.Sample { return s.sample }
func (s *Session) NumDominoes() int       { return len(s.handles) }

// Handles returns the physics handle of every domino, in instance order.
func (s *Session) Handles() []physics.Handle {
	return append([]physics.Handle(nil), s.handles...)
}

// Tilt returns how far domino i has rotated away from upright.
func (s *Session) Tilt(i int) float64 {
	return geom.Tilt(s.world.Orientation(s.handles[i]))
}
