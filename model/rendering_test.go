package model

import (
	"bytes"
	"testing"
)

func TestTerminalRendererRender(t *testing.T) {
	g, _ := quietGrid(2, 3)
	g.SetCell(0, 0, true)
	g.SetCell(1, 2, true)

	var buf bytes.Buffer
	r := &TerminalRenderer{Out: &buf}
	r.Render(4, g)

	if got, want := buf.String(), "Generation 4:\nO..\n..O\n"; got != want {
		t.Fatalf("Render wrote %q, want %q", got, want)
	}
}

func TestGridPoolReuse(t *testing.T) {
	pool := NewGridPool()
	g := pool.Get(5, 6)
	if g.Height() != 5 || g.Width() != 6 {
		t.Fatalf("pool returned %dx%d, want 5x6", g.Height(), g.Width())
	}
	g.Stamp(Glider, 0, 0)
	GridToPool(g, pool)

	again := pool.Get(5, 6)
	if again.CountLivingCells() != 0 {
		t.Fatal("pooled grid was not cleared")
	}
	resized := pool.Get(3, 3)
	if resized.Height() != 3 || resized.Width() != 3 {
		t.Fatalf("pool returned %dx%d, want 3x3", resized.Height(), resized.Width())
	}
	GridToPool(nil, pool)
	GridToPool(again, nil)
}
