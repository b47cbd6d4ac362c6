package history

import (
	"slices"
	"testing"
)

func ringContents(r *ring[int]) []int {
	out := make([]int, r.Len())
	for i := range out {
		out[i] = r.at(i)
	}
	return out
}

func TestRingPushEvictsOldest(t *testing.T) {
	r := newRing[int](3)

	for i := 1; i <= 3; i++ {
		if _, evicted := r.push(i); evicted {
			t.Fatalf("push(%d) evicted below capacity", i)
		}
	}
	old, evicted := r.push(4)
	if !evicted || old != 1 {
		t.Errorf("push(4) = %d, %v; want 1, true", old, evicted)
	}
	if got := ringContents(r); !slices.Equal(got, []int{2, 3, 4}) {
		t.Errorf("contents = %v, want [2 3 4]", got)
	}
}

func TestRingPopAndPeek(t *testing.T) {
	r := newRing[int](2)
	if _, ok := r.pop(); ok {
		t.Error("pop on empty ring = ok")
	}
	if _, ok := r.peek(); ok {
		t.Error("peek on empty ring = ok")
	}

	r.push(1)
	r.push(2)
	r.push(3) // wraps

	if v, _ := r.peek(); v != 3 {
		t.Errorf("peek() = %d, want 3", v)
	}
	if v, _ := r.pop(); v != 3 {
		t.Errorf("pop() = %d, want 3", v)
	}
	if v, _ := r.popOldest(); v != 2 {
		t.Errorf("popOldest() = %d, want 2", v)
	}
	if r.Len() != 0 {
		t.Errorf("Len() = %d, want 0", r.Len())
	}
}

func TestRingResize(t *testing.T) {
	r := newRing[int](4)
	for i := 1; i <= 6; i++ {
		r.push(i)
	}

	dropped := r.resize(2)
	if !slices.Equal(dropped, []int{3, 4}) {
		t.Errorf("dropped = %v, want [3 4]", dropped)
	}
	if got := ringContents(r); !slices.Equal(got, []int{5, 6}) {
		t.Errorf("contents = %v, want [5 6]", got)
	}

	r.resize(5)
	r.push(7)
	if got := ringContents(r); !slices.Equal(got, []int{5, 6, 7}) {
		t.Errorf("contents after grow = %v, want [5 6 7]", got)
	}
	if r.Cap() != 5 {
		t.Errorf("Cap() = %d, want 5", r.Cap())
	}
}

func TestRingClear(t *testing.T) {
	r := newRing[int](3)
	r.push(1)
	r.push(2)
	r.clear()
	if r.Len() != 0 {
		t.Errorf("Len() = %d after clear", r.Len())
	}
	r.push(9)
	if v, _ := r.peek(); v != 9 {
		t.Errorf("peek() = %d, want 9", v)
	}
}
