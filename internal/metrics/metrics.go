// Package metrics observes the domino chain as it falls.
package metrics

// Sample is what the scene reports after each step. Tilt holds one angle
// per domino, in instance order.
type Sample struct {
	Time     float64
	Tilt     []float64
	Energy   float64
	Awake    int
	Contacts int
}

type Metric interface {
	Name() string
	Observe(s Sample)
	Value() float64
	Reset()
}

type Observer interface {
	OnSample(s Sample)
}

// DefaultToppleAngle is the tilt past which a domino counts as fallen.
const DefaultToppleAngle = 0.5

func CountToppled(tilts []float64, threshold float64) int {
	n := 0
	for _, t := range tilts {
		if t > threshold {
			n++
		}
	}
	return n
}

type Toppled struct {
	name      string
	threshold float64
	count     int
}

func NewToppled(threshold float64) *Toppled {
	return &Toppled{name: "toppled", threshold: threshold}
}

func (m *Toppled) Name() string { return m.name }

func (m *Toppled) Observe(s Sample) {
	m.count = CountToppled(s.Tilt, m.threshold)
}

func (m *Toppled) Value() float64 { return float64(m.count) }

func (m *Toppled) Reset() { m.count = 0 }

// ChainTime is the time at which the toppled count last grew, i.e. how long
// the chain reaction ran.
type ChainTime struct {
	name      string
	threshold float64
	best      int
	last      float64
}

func NewChainTime(threshold float64) *ChainTime {
	return &ChainTime{name: "chain_time", threshold: threshold}
}

func (m *ChainTime) Name() string { return m.name }

func (m *ChainTime) Observe(s Sample) {
	if n := CountToppled(s.Tilt, m.threshold); n > m.best {
		m.best = n
		m.last = s.Time
	}
}

func (m *ChainTime) Value() float64 { return m.last }

func (m *ChainTime) Reset() {
	m.best = 0
	m.last = 0
}

// PeakEnergy tracks the largest total kinetic energy seen.
type PeakEnergy struct {
	name string
	peak float64
}

func NewPeakEnergy() *PeakEnergy {
	return &PeakEnergy{name: "peak_energy"}
}

func (m *PeakEnergy) Name() string { return m.name }

func (m *PeakEnergy) Observe(s Sample) {
	m.peak = max(m.peak, s.Energy)
}

func (m *PeakEnergy) Value() float64 { return m.peak }

func (m *PeakEnergy) Reset() { m.peak = 0 }

type Awake struct {
	name  string
	count int
}

func NewAwake() *Awake {
	return &Awake{name: "awake"}
}

func (m *Awake) Name() string { return m.name }

func (m *Awake) Observe(s Sample) { m.count = s.Awake }

func (m *Awake) Value() float64 { return float64(m.count) }

func (m *Awake) Reset() { m.count = 0 }

// Standard returns the metrics the CLI reports.
func Standard() []Metric {
	return []Metric{
		NewToppled(DefaultToppleAngle),
		NewChainTime(DefaultToppleAngle),
		NewPeakEnergy(),
		NewAwake(),
	}
}
