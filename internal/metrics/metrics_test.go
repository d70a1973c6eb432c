package metrics

import (
	"testing"
)

func TestToppled(t *testing.T) {
	m := NewToppled(0.5)

	m.Observe(Sample{Tilt: []float64{0, 0.1, 0.6, 1.4}})
	if m.Value() != 2 {
		t.Errorf("expected 2 toppled, got %f", m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero after reset")
	}
}

func TestChainTime(t *testing.T) {
	m := NewChainTime(0.5)

	m.Observe(Sample{Time: 0.5, Tilt: []float64{0, 0}})
	m.Observe(Sample{Time: 1.0, Tilt: []float64{1, 0}})
	m.Observe(Sample{Time: 1.5, Tilt: []float64{1, 1}})
	m.Observe(Sample{Time: 3.0, Tilt: []float64{1, 1}})

	if m.Value() != 1.5 {
		t.Errorf("expected chain time 1.5, got %f", m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero after reset")
	}
}

func TestPeakEnergy(t *testing.T) {
	m := NewPeakEnergy()
	for _, e := range []float64{1, 5, 2} {
		m.Observe(Sample{Energy: e})
	}
	if m.Value() != 5 {
		t.Errorf("expected peak 5, got %f", m.Value())
	}
}

func TestAwake(t *testing.T) {
	m := NewAwake()
	m.Observe(Sample{Awake: 7})
	if m.Value() != 7 {
		t.Errorf("expected 7, got %f", m.Value())
	}
}

func TestStandardNames(t *testing.T) {
	seen := map[string]bool{}
	for _, m := range Standard() {
		if seen[m.Name()] {
			t.Errorf("duplicate metric %s", m.Name())
		}
		seen[m.Name()] = true
	}
}

func TestHistory(t *testing.T) {
	h := NewHistory(2, 3)
	for i := 0; i < 10; i++ {
		h.OnSample(Sample{Time: float64(i), Tilt: []float64{float64(i) / 10}, Energy: float64(i)})
	}

	// kept samples 0,2,4,6,8; the limit drops the first two
	if h.Len() != 3 {
		t.Fatalf("expected 3 points, got %d", h.Len())
	}
	if h.Times[0] != 4 || h.Times[2] != 8 {
		t.Errorf("unexpected times %v", h.Times)
	}
	if h.Toppled[2] != 1 || h.Toppled[0] != 0 {
		t.Errorf("unexpected toppled series %v", h.Toppled)
	}
}
