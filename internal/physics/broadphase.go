package physics

import (
	"sort"
)

type pair [2]int

func (w *World) broadphase() []pair {
	if w.cfg.Broadphase == BroadphaseSAP {
		return sweepAndPrune(w.bodies)
	}
	return naivePairs(w.bodies)
}

// needsTest skips pairs where neither body can move this step.
func needsTest(a, b *body) bool {
	idleA := a.static() || a.sleep == asleep
	idleB := b.static() || b.sleep == asleep
	return !(idleA && idleB)
}

func naivePairs(bodies []*body) []pair {
	var pairs []pair
	for i := 0; i < len(bodies); i++ {
		for j := i + 1; j < len(bodies); j++ {
			if needsTest(bodies[i], bodies[j]) && aabbOverlap(bodies[i], bodies[j]) {
				pairs = append(pairs, pair{i, j})
			}
		}
	}
	return pairs
}

// sweepAndPrune sorts bodies along x and only tests neighbours whose x
// intervals overlap. Planes have infinite bounds and sort first. The result
// is in the same order naivePairs produces.
func sweepAndPrune(bodies []*body) []pair {
	order := make([]int, len(bodies))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return bodies[order[i]].aabbMin[0] < bodies[order[j]].aabbMin[0]
	})

	var pairs []pair
	for oi, i := range order {
		a := bodies[i]
		for _, j := range order[oi+1:] {
			b := bodies[j]
			if b.aabbMin[0] > a.aabbMax[0] {
				break
			}
			if needsTest(a, b) && aabbOverlap(a, b) {
				pairs = append(pairs, pair{min(i, j), max(i, j)})
			}
		}
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i][0] != pairs[j][0] {
			return pairs[i][0] < pairs[j][0]
		}
		return pairs[i][1] < pairs[j][1]
	})
	return pairs
}
