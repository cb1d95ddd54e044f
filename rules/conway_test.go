package rules

import "testing"

func TestApplyConwayRules(t *testing.T) {
	tests := []struct {
		neighbors int
		alive     bool
		want      bool
	}{
		{0, true, false},
		{1, true, false},
		{2, true, true},
		{3, true, true},
		{4, true, false},
		{8, true, false},
		{2, false, false},
		{3, false, true},
		{4, false, false},
	}
	for _, tt := range tests {
		if got := ApplyConwayRules(tt.neighbors, tt.alive); got != tt.want {
			t.Fatalf("ApplyConwayRules(%d, %v) = %v, want %v", tt.neighbors, tt.alive, got, tt.want)
		}
	}
}

func TestWrap(t *testing.T) {
	tests := []struct{ v, n, want int }{
		{-1, 5, 4},
		{5, 5, 0},
		{-6, 5, 4},
		{3, 5, 3},
	}
	for _, tt := range tests {
		if got := Wrap(tt.v, tt.n); got != tt.want {
			t.Fatalf("Wrap(%d, %d) = %d, want %d", tt.v, tt.n, got, tt.want)
		}
	}
}

func TestCountToroidalCorners(t *testing.T) {
	const h, w = 4, 5
	live := map[[2]int]bool{{h - 1, w - 1}: true}
	alive := func(x, y int) bool { return live[[2]int{x, y}] }

	if got := CountToroidal(0, 0, h, w, alive); got != 1 {
		t.Fatalf("corner (0,0) sees %d neighbours across the wrap, want 1", got)
	}
	if got := CountToroidal(0, 0, 1, 1, func(x, y int) bool { return x == 0 && y == 0 }); got != 8 {
		t.Fatalf("single cell torus sees %d neighbours, want 8", got)
	}

	live = map[[2]int]bool{{0, 0}: true}
	if got := CountToroidal(h-1, w-1, h, w, alive); got != 1 {
		t.Fatalf("corner (%d,%d) sees %d neighbours across the wrap, want 1", h-1, w-1, got)
	}
}
