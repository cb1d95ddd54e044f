package model

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
)

func TestReadSeed(t *testing.T) {
	g, err := ReadSeed(strings.NewReader("2 3\n1 0 1\n0 1\n0\n"))
	if err != nil {
		t.Fatalf("ReadSeed: %v", err)
	}
	if g.Height() != 2 || g.Width() != 3 {
		t.Fatalf("got %dx%d grid, want 2x3", g.Height(), g.Width())
	}
	want := [][]bool{{true, false, true}, {false, true, false}}
	for x, row := range want {
		for y, alive := range row {
			if g.GetCell(x, y) != alive {
				t.Fatalf("cell (%d,%d) = %v, want %v", x, y, !alive, alive)
			}
		}
	}
}

func TestReadSeedRejectsMalformed(t *testing.T) {
	for _, in := range []string{
		"",
		"3",
		"2 2 1 0 1",
		"2 2 1 0 2 0",
		"-1 2",
		"2 x",
		"1 4611686018427387904\n0 1",
		"4611686018427387904 4611686018427387904",
		"100000 100000\n0 1 0",
	} {
		if _, err := ReadSeed(strings.NewReader(in)); err == nil {
			t.Fatalf("ReadSeed(%q) succeeded", in)
		}
	}
}

func TestSeedFileRoundTrip(t *testing.T) {
	g, _ := quietGrid(6, 7)
	g.Stamp(RPentomino, 1, 2)

	path := filepath.Join(t.TempDir(), "seed.txt")
	if err := g.SaveSeedFile(path); err != nil {
		t.Fatalf("SaveSeedFile: %v", err)
	}
	loaded, err := LoadSeedFile(path)
	if err != nil {
		t.Fatalf("LoadSeedFile: %v", err)
	}
	if !loaded.Equal(g) {
		t.Fatal("loaded grid differs from saved grid")
	}
}

func TestLoadSeedFileMissing(t *testing.T) {
	_, err := LoadSeedFile(filepath.Join(t.TempDir(), "nope.txt"))
	if err == nil || !os.IsNotExist(errors.Cause(err)) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestWriteSeedFormat(t *testing.T) {
	g, _ := quietGrid(1, 2)
	g.SetCell(0, 1, true)
	var buf bytes.Buffer
	if err := g.WriteSeed(&buf); err != nil {
		t.Fatalf("WriteSeed: %v", err)
	}
	if got := buf.String(); got != "1 2\n0 1 \n" {
		t.Fatalf("WriteSeed = %q", got)
	}
}
