package timeline

import (
	"reflect"
	"testing"
)

func set(ps ...int) map[int]bool {
	m := make(map[int]bool, len(ps))
	for _, p := range ps {
		m[p] = true
	}
	return m
}

func intp(v int) *int { return &v }

func TestNextAvailable_Append(t *testing.T) {
	if got := NextAvailable(set(0, 50, 100), nil, DefaultGap); got != 150 {
		t.Errorf("NextAvailable({0,50,100}) = %d, want 150", got)
	}
}

func TestNextAvailable_Empty(t *testing.T) {
	if got := NextAvailable(set(), nil, DefaultGap); got != 0 {
		t.Errorf("NextAvailable({}) = %d, want 0", got)
	}
}

func TestNextAvailable_PreferredFree(t *testing.T) {
	if got := NextAvailable(set(0, 50, 100), intp(75), DefaultGap); got != 75 {
		t.Errorf("NextAvailable(preferred=75) = %d, want 75", got)
	}
}

func TestNextAvailable_PreferredCollides(t *testing.T) {
	if got := NextAvailable(set(0, 50, 100), intp(50), DefaultGap); got != 51 {
		t.Errorf("NextAvailable(preferred=50) = %d, want 51", got)
	}
	// Consecutive collisions probe past the whole run.
	if got := NextAvailable(set(10, 11, 12), intp(10), DefaultGap); got != 13 {
		t.Errorf("NextAvailable(preferred=10, run 10..12) = %d, want 13", got)
	}
}

func TestMidpoint(t *testing.T) {
	tests := []struct {
		name   string
		before int
		after  *int
		want   int
		wantOK bool
	}{
		{"between", 50, intp(100), 75, true},
		{"last entry", 50, nil, 100, true},
		{"rounds toward before", 50, intp(53), 51, true},
		{"gap of two", 50, intp(52), 51, true},
		{"no room", 50, intp(51), 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Midpoint(tt.before, tt.after, DefaultGap)
			if ok != tt.wantOK {
				t.Fatalf("Midpoint(%d, %v) ok = %v, want %v", tt.before, tt.after, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("Midpoint(%d, %v) = %d, want %d", tt.before, tt.after, got, tt.want)
			}
			if ok && tt.after != nil && (got <= tt.before || got >= *tt.after) {
				t.Errorf("Midpoint(%d, %d) = %d, not strictly between", tt.before, *tt.after, got)
			}
		})
	}
}

func TestPlan_SkipsOccupiedRun(t *testing.T) {
	got := Plan(3, 10, set(10, 11), 1)
	want := []int{12, 13, 14}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Plan(3, 10, {10,11}, 1) = %v, want %v", got, want)
	}
}

func TestPlan_Spacing(t *testing.T) {
	got := Plan(3, 0, set(), 50)
	want := []int{0, 50, 100}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Plan(3, 0, {}, 50) = %v, want %v", got, want)
	}
}

func TestPlan_StrictlyIncreasingUnique(t *testing.T) {
	existing := set(0, 1, 2, 3, 50, 51, 99, 100)
	got := Plan(6, 0, existing, 25)
	seen := make(map[int]bool)
	prev := -1
	for _, p := range got {
		if p <= prev {
			t.Fatalf("Plan not strictly increasing: %v", got)
		}
		if existing[p] || seen[p] {
			t.Fatalf("Plan produced collision at %d: %v", p, got)
		}
		seen[p] = true
		prev = p
	}
}

func TestLeadingGapShift(t *testing.T) {
	// Container [0, 20, 45]: deleting the minimum closes the first gap.
	if got := LeadingGapShift(0, []int{20, 45}); got != 20 {
		t.Errorf("LeadingGapShift(0, [20 45]) = %d, want 20", got)
	}
	// Deleting a non-minimum entry leaves the rest untouched.
	if got := LeadingGapShift(20, []int{0, 45}); got != 0 {
		t.Errorf("LeadingGapShift(20, [0 45]) = %d, want 0", got)
	}
	// Last entry removed: nothing to shift.
	if got := LeadingGapShift(0, nil); got != 0 {
		t.Errorf("LeadingGapShift(0, []) = %d, want 0", got)
	}
}

func TestLeadingGapShiftApplied(t *testing.T) {
	remaining := []int{20, 45}
	shift := LeadingGapShift(0, remaining)
	got := make([]int, len(remaining))
	for i, p := range remaining {
		got[i] = p - shift
	}
	want := []int{0, 25}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("shifted positions = %v, want %v", got, want)
	}
}

func TestOccupiedSet(t *testing.T) {
	got := OccupiedSet([]*int{intp(0), nil, intp(50)})
	if len(got) != 2 || !got[0] || !got[50] {
		t.Errorf("OccupiedSet = %v, want {0,50}", got)
	}
}
