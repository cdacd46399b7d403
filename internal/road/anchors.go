package road

import (
	"math"
	"sort"

	"github.com/golang/geo/r1"
)

// anchors picks SideRoads positions along the main road (measured along the axis).
//
// Each anchor is found by rejection sampling within the anchor window, a
// candidate must be MinSeparation from every anchor so far and leave enough
// room for the anchors still to come. When the retries run out we take the
// best candidate seen (preferring ones that keep every anchor placeable).
func (b *builder) anchors() []float64 {
	want := b.cfg.SideRoads
	sep := b.cfg.MinSeparation

	free := b.anchorWindow()
	if len(free) == 0 {
		return []float64{}
	}

	chosen := []float64{}
	for i := 0; i < want; i++ {
		remaining := want - i - 1

		tried := []float64{}
		found := false
		for try := 0; try < b.cfg.AnchorRetries; try++ {
			c := sampleIntervals(b.rng.Float64(), b.rng.Intn(len(free)), free)
			tried = append(tried, c)
			if separated(c, chosen, sep) && fits(carve(free, append(chosen, c), sep), sep, remaining) {
				chosen = append(chosen, c)
				found = true
				break
			}
		}
		if found {
			continue
		}

		// retries exhausted, take the best we can find out of what we tried
		// and the tightest packing of what's left
		pool := append(tried, packing(carve(free, chosen, sep), sep, remaining+1)...)
		chosen = append(chosen, best(pool, chosen, free, sep, remaining))
	}

	return chosen
}

// anchorWindow returns the stretches of the main road anchors may sit on.
// The window is AnchorSpan of the tiled road centred on its middle, widened
// to fit SideRoads anchors, minus any part that runs through the restricted
// zone. If the tiles are too short to hold every anchor the window may grow
// out to the padded bounds.
func (b *builder) anchorWindow() []r1.Interval {
	along := b.axis.along(b.padded)

	// widened by epsilon so a window exactly (K-1)*D long still packs K
	// anchors after rounding
	need := float64(b.cfg.SideRoads-1)*b.cfg.MinSeparation + epsilon
	w := math.Max(b.cfg.AnchorSpan*b.tiled.Length(), need)
	w = math.Min(w, along.Length())

	centre := b.tiled.Center()
	window := r1.Interval{Lo: centre - w/2, Hi: centre + w/2}
	if b.cfg.Restricted == nil {
		return []r1.Interval{window}
	}

	road := r1.Interval{Lo: b.offset - b.width/2, Hi: b.offset + b.width/2}
	if !road.Intersects(b.axis.cross(*b.cfg.Restricted)) {
		return []r1.Interval{window}
	}

	// the main road runs through the zone, anchors must avoid that stretch
	zone := b.axis.along(*b.cfg.Restricted).Expanded(b.width / 2)
	return subtract([]r1.Interval{window}, zone, false)
}

// subtract removes cut from every interval. If open is set the cut's own
// end points are kept (the cut is treated as an open interval).
func subtract(in []r1.Interval, cut r1.Interval, open bool) []r1.Interval {
	out := []r1.Interval{}
	for _, i := range in {
		if !i.Intersects(cut) || (open && (i.Hi <= cut.Lo || i.Lo >= cut.Hi)) {
			out = append(out, i)
			continue
		}
		left := r1.Interval{Lo: i.Lo, Hi: cut.Lo}
		right := r1.Interval{Lo: cut.Hi, Hi: i.Hi}
		if !open {
			// closed cut; nudge the pieces so they don't include the cut
			left.Hi = math.Nextafter(cut.Lo, math.Inf(-1))
			right.Lo = math.Nextafter(cut.Hi, math.Inf(1))
		}
		if !left.IsEmpty() {
			out = append(out, left)
		}
		if !right.IsEmpty() {
			out = append(out, right)
		}
	}
	return out
}

// carve removes everything within sep of the given points
func carve(free []r1.Interval, points []float64, sep float64) []r1.Interval {
	if sep <= 0 {
		return free
	}
	out := free
	for _, p := range points {
		out = subtract(out, r1.Interval{Lo: p - sep, Hi: p + sep}, true)
	}
	return out
}

// packing returns the greedy left-most packing of up to limit points at
// least sep apart within the intervals. Greedy packing fits the most points.
func packing(free []r1.Interval, sep float64, limit int) []float64 {
	sorted := make([]r1.Interval, len(free))
	copy(sorted, free)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Lo < sorted[j].Lo
	})

	out := []float64{}
	last := math.Inf(-1)
	for _, i := range sorted {
		start := math.Max(i.Lo, last+sep)
		for k := 0; len(out) < limit; k++ {
			// step from start rather than accumulating so error doesn't build up
			p := start + float64(k)*sep
			if p > i.Hi+epsilon {
				break
			}
			p = math.Min(p, i.Hi)
			out = append(out, p)
			last = p
			if sep <= 0 {
				break
			}
		}
	}
	return out
}

// fits returns if n points sep apart fit into the intervals
func fits(free []r1.Interval, sep float64, n int) bool {
	if n <= 0 {
		return true
	}
	if sep <= 0 {
		return len(free) > 0
	}
	return len(packing(free, sep, n)) >= n
}

// separated returns if p is at least sep from every point
func separated(p float64, points []float64, sep float64) bool {
	return minGap(p, points) >= sep-epsilon
}

// minGap returns the distance from p to the nearest point
func minGap(p float64, points []float64) float64 {
	gap := math.Inf(1)
	for _, o := range points {
		gap = math.Min(gap, math.Abs(p-o))
	}
	return gap
}

// best returns the candidate that keeps the most anchors placeable, then the
// one furthest from existing anchors.
func best(pool, chosen []float64, free []r1.Interval, sep float64, remaining int) float64 {
	bestP := pool[0]
	bestOk := false
	bestGap := math.Inf(-1)
	for _, p := range pool {
		ok := separated(p, chosen, sep) && fits(carve(free, append(chosen, p), sep), sep, remaining)
		gap := minGap(p, chosen)
		if (ok && !bestOk) || (ok == bestOk && gap > bestGap) {
			bestP, bestOk, bestGap = p, ok, gap
		}
	}
	return bestP
}

// sampleIntervals maps u in [0,1) onto the union of the intervals, weighted by
// length. If the intervals have no length we use the one at index pick.
func sampleIntervals(u float64, pick int, free []r1.Interval) float64 {
	total := 0.0
	for _, i := range free {
		total += i.Length()
	}
	if total <= 0 {
		return free[pick].Lo
	}

	target := u * total
	for _, i := range free {
		if target <= i.Length() {
			return i.Lo + target
		}
		target -= i.Length()
	}
	last := free[len(free)-1]
	return last.Hi
}
