// Package timeline holds the pure position arithmetic for shot timelines:
// allocating collision-free integer positions, spacing batches of new entries,
// computing duplicate midpoints and closing the leading gap after deletes.
// Nothing in this package performs I/O.
package timeline

// DefaultGap is the spacing appended entries leave between each other. The
// fixed gap leaves room for later midpoint insertions without renumbering the
// rest of the timeline.
const DefaultGap = 50

// NextAvailable returns a free position given the occupied set. With a
// preferred position it keeps it when free, otherwise probes upward by +1 to
// the smallest free integer ≥ preferred, so a drop lands as close as possible
// to where the user aimed. Without a preference it appends at max+gap, or 0
// on an empty timeline.
func NextAvailable(existing map[int]bool, preferred *int, gap int) int {
	if gap < 1 {
		gap = DefaultGap
	}
	if preferred != nil {
		p := *preferred
		for existing[p] {
			p++
		}
		return p
	}
	if len(existing) == 0 {
		return 0
	}
	max := 0
	first := true
	for p := range existing {
		if first || p > max {
			max = p
			first = false
		}
	}
	return max + gap
}

// Midpoint returns the position for an entry duplicated in place, halfway
// between before and its successor, rounding toward before. With no successor
// (duplicating the last entry) it returns before+gap. ok is false when the two
// neighbors are adjacent integers and no position exists between them; the
// caller must widen the range (shift the suffix) and retry rather than ever
// reuse either bound.
func Midpoint(before int, after *int, gap int) (pos int, ok bool) {
	if gap < 1 {
		gap = DefaultGap
	}
	if after == nil {
		return before + gap, true
	}
	span := *after - before
	if span < 2 {
		return 0, false
	}
	half := span / 2
	if half < 1 {
		half = 1
	}
	return before + half, true
}

// Plan produces count strictly-increasing positions, each ≥ start and absent
// from existing, preferring start+i*spacing for the i-th item and probing +1
// past any collision. Single inserts and batch inserts share the same
// collision policy this way.
func Plan(count, start int, existing map[int]bool, spacing int) []int {
	if count <= 0 {
		return nil
	}
	if spacing < 1 {
		spacing = 1
	}
	taken := make(map[int]bool, len(existing)+count)
	for p := range existing {
		taken[p] = true
	}
	out := make([]int, 0, count)
	floor := start
	for i := 0; i < count; i++ {
		p := start + i*spacing
		if p < floor {
			p = floor
		}
		for taken[p] {
			p++
		}
		out = append(out, p)
		taken[p] = true
		floor = p + 1
	}
	return out
}

// LeadingGapShift returns how far remaining positions should shift down after
// a delete. The shift applies only when the deleted entry held the unique
// minimum position: the original first gap (secondLowest − lowest) is closed
// so the timeline stays anchored at its old minimum. Deleting any other entry
// returns 0 — interior gaps are left alone to avoid cascading rewrites.
func LeadingGapShift(deletedPos int, remaining []int) int {
	if len(remaining) == 0 {
		return 0
	}
	min := remaining[0]
	for _, p := range remaining[1:] {
		if p < min {
			min = p
		}
	}
	if deletedPos >= min {
		return 0
	}
	return min - deletedPos
}

// OccupiedSet collects non-nil positions into a set usable by the allocator.
func OccupiedSet(positions []*int) map[int]bool {
	set := make(map[int]bool, len(positions))
	for _, p := range positions {
		if p != nil {
			set[*p] = true
		}
	}
	return set
}
