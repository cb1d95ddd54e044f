package model

import (
	"bytes"
	"log"
	"strings"
	"testing"
)

func quietGrid(h, w int) (*Grid, *bytes.Buffer) {
	var buf bytes.Buffer
	g := NewGrid(h, w)
	g.SetLogger(log.New(&buf, "", 0))
	return g, &buf
}

func TestSetGetCell(t *testing.T) {
	g, logs := quietGrid(3, 4)

	if !g.SetCell(2, 3, true) {
		t.Fatal("SetCell(2,3) reported no write on an in-range cell")
	}
	if !g.GetCell(2, 3) {
		t.Fatal("GetCell(2,3) = false after SetCell")
	}
	if logs.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %q", logs.String())
	}

	for _, c := range [][2]int{{-1, 0}, {0, -1}, {3, 0}, {0, 4}} {
		if g.SetCell(c[0], c[1], true) {
			t.Fatalf("SetCell(%d,%d) reported a write outside the grid", c[0], c[1])
		}
		if g.GetCell(c[0], c[1]) {
			t.Fatalf("GetCell(%d,%d) = true outside the grid", c[0], c[1])
		}
	}
	if got := strings.Count(logs.String(), "out of bounds"); got != 8 {
		t.Fatalf("logged %d bounds violations, want 8", got)
	}
	if got := g.CountLivingCells(); got != 1 {
		t.Fatalf("CountLivingCells = %d, want 1", got)
	}
}

func TestLinearIndex(t *testing.T) {
	g, logs := quietGrid(3, 4)

	if x, y := g.To2D(7); x != 1 || y != 3 {
		t.Fatalf("To2D(7) = (%d,%d), want (1,3)", x, y)
	}
	if !g.SetCellAt(7, true) {
		t.Fatal("SetCellAt(7) failed")
	}
	if !g.GetCell(1, 3) || !g.GetCellAt(7) {
		t.Fatal("linear and 2D accessors disagree")
	}
	if g.SetCellAt(12, true) || g.SetCellAt(-1, true) || g.GetCellAt(12) {
		t.Fatal("out of range linear index was accepted")
	}
	if !strings.Contains(logs.String(), "[SetCellAt]") {
		t.Fatalf("expected SetCellAt diagnostic, got %q", logs.String())
	}
}

func TestResizeIsIdempotent(t *testing.T) {
	g, _ := quietGrid(5, 5)
	g.Stamp(Beacon, 0, 0)

	for _, size := range [][2]int{{8, 3}, {8, 3}, {2, 9}, {0, 0}, {6, 6}} {
		if err := g.Resize(size[0], size[1]); err != nil {
			t.Fatalf("Resize(%d,%d): %v", size[0], size[1], err)
		}
		if g.Height() != size[0] || g.Width() != size[1] {
			t.Fatalf("Resize(%d,%d) produced %dx%d", size[0], size[1], g.Height(), g.Width())
		}
		if n := g.CountLivingCells(); n != 0 {
			t.Fatalf("Resize(%d,%d) left %d live cells", size[0], size[1], n)
		}
		if len(g.Next()) != size[0] {
			t.Fatalf("next buffer has %d rows after resize, want %d", len(g.Next()), size[0])
		}
		g.Stamp(Glider, 0, 0)
	}

	if err := g.Resize(-1, 4); err == nil {
		t.Fatal("Resize accepted a negative height")
	}
	if g.Height() != 6 || g.Width() != 6 {
		t.Fatal("failed Resize changed the grid")
	}
}

func TestOversizedDimensionsRejected(t *testing.T) {
	huge := 1 << 62
	if err := CheckDimensions(1, huge); err == nil {
		t.Fatal("CheckDimensions accepted an overflowing size")
	}
	if err := CheckDimensions(MaxCells, 1); err != nil {
		t.Fatalf("CheckDimensions(MaxCells, 1): %v", err)
	}
	if err := CheckDimensions(MaxCells/2+1, 2); err == nil {
		t.Fatal("CheckDimensions accepted more than MaxCells")
	}

	g, _ := quietGrid(3, 3)
	if err := g.Resize(huge, huge); err == nil {
		t.Fatal("Resize accepted an overflowing size")
	}
	if g.Height() != 3 || g.Width() != 3 {
		t.Fatal("failed Resize changed the grid")
	}

	if g := NewGrid(1, huge); g.Height() != 0 || g.Width() != 0 {
		t.Fatalf("NewGrid(1, 1<<62) = %dx%d, want 0x0", g.Height(), g.Width())
	}
}

func TestNewGridClampsNegative(t *testing.T) {
	g := NewGrid(-3, 4)
	if g.Height() != 0 || g.Width() != 0 {
		t.Fatalf("NewGrid(-3,4) = %dx%d, want 0x0", g.Height(), g.Width())
	}
}

func TestSwapAndIsStable(t *testing.T) {
	g, _ := quietGrid(4, 4)
	g.SetCell(1, 1, true)

	copy(g.Next()[1], g.Current()[1])
	if !g.IsStable() {
		t.Fatal("identical buffers should be stable")
	}

	g.Next()[2][2] = true
	g.Swap()
	if !g.GetCell(2, 2) || g.GetCell(1, 1) {
		t.Fatal("Swap did not exchange generations")
	}
	if g.IsStable() {
		t.Fatal("differing buffers reported stable")
	}
}

func TestLoadAndSnapshot(t *testing.T) {
	g, _ := quietGrid(2, 3)
	cells := [][]bool{
		{true, false, true},
		{false, true, false},
	}
	if err := g.Load(cells); err != nil {
		t.Fatalf("Load: %v", err)
	}
	snap := g.Snapshot()
	snap[0][0] = false
	if !g.GetCell(0, 0) {
		t.Fatal("Snapshot aliases the current generation")
	}
	if err := g.Load([][]bool{{true}}); err == nil {
		t.Fatal("Load accepted a mismatched matrix")
	}

	other, _ := quietGrid(2, 3)
	other.Load(cells)
	if !g.Equal(other) {
		t.Fatal("grids with the same content are not Equal")
	}
}
