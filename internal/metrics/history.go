package metrics

// History keeps a downsampled series of samples for plotting. Every Stride-th
// sample is kept; once Limit points are stored the oldest are dropped.
type History struct {
	Stride    int
	Limit     int
	threshold float64
	seen      int

	Times   []float64
	Toppled []float64
	Energy  []float64
}

func NewHistory(stride, limit int) *History {
	return &History{Stride: max(stride, 1), Limit: limit, threshold: DefaultToppleAngle}
}

func (h *History) OnSample(s Sample) {
	h.seen++
	if (h.seen-1)%h.Stride != 0 {
		return
	}
	h.Times = append(h.Times, s.Time)
	h.Toppled = append(h.Toppled, float64(CountToppled(s.Tilt, h.threshold)))
	h.Energy = append(h.Energy, s.Energy)

	if h.Limit > 0 && len(h.Times) > h.Limit {
		drop := len(h.Times) - h.Limit
		h.Times = h.Times[drop:]
		h.Toppled = h.Toppled[drop:]
		h.Energy = h.Energy[drop:]
	}
}

func (h *History) Len() int { return len(h.Times) }
