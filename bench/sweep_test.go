package bench

import (
	"bytes"
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/sheikhrachel/torus-gol/evolve"
	"github.com/sheikhrachel/torus-gol/model"
)

var quiet = log.New(io.Discard, "", 0)

// countingEvolver records the grids it is asked to step.
type countingEvolver struct {
	evolve.Evolver
	sizes []int
	alive []int
	fail  bool
}

func (c *countingEvolver) Step(ctx context.Context, g *model.Grid) error {
	c.sizes = append(c.sizes, g.Height())
	c.alive = append(c.alive, g.CountLivingCells())
	if c.fail {
		return errors.New("step failed")
	}
	return c.Evolver.Step(ctx, g)
}

func TestSweepRunsEverySizeOnFreshGrids(t *testing.T) {
	ev := &countingEvolver{Evolver: evolve.NewSequential()}
	results, err := Sweep(context.Background(), ev, Options{Sizes: []int{4, 12}, Runs: 3, Logger: quiet})
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if len(results) != 2 || results[0].Height != 4 || results[1].Width != 12 || results[1].Runs != 3 {
		t.Fatalf("results = %+v", results)
	}
	if len(ev.sizes) != 6 {
		t.Fatalf("stepped %d grids, want 6", len(ev.sizes))
	}
	for i, size := range ev.sizes {
		want := 0
		if size > 5 {
			want = 8
		}
		if ev.alive[i] != want {
			t.Fatalf("run %d on %dx%d started with %d live cells, want %d", i, size, size, ev.alive[i], want)
		}
	}
}

func TestSweepStopsOnFailure(t *testing.T) {
	ev := &countingEvolver{Evolver: evolve.NewSequential(), fail: true}
	results, err := Sweep(context.Background(), ev, Options{Sizes: []int{8}, Runs: 2, Logger: quiet})
	if err == nil || len(results) != 0 {
		t.Fatalf("results = %v, err = %v", results, err)
	}
	if _, err := Sweep(context.Background(), evolve.NewSequential(), Options{Sizes: []int{0}, Logger: quiet}); err == nil {
		t.Fatal("zero size accepted")
	}
	if _, err := Sweep(context.Background(), evolve.NewSequential(), Options{Sizes: []int{1 << 40}, Logger: quiet}); err == nil {
		t.Fatal("oversized grid accepted")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Sweep(ctx, evolve.NewSequential(), Options{Sizes: []int{8}, Logger: quiet}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestWriteResults(t *testing.T) {
	var buf bytes.Buffer
	results := []Result{
		{Height: 10, Width: 10, Mean: 300 * time.Microsecond},
		{Height: 1000, Width: 1000, Mean: 42 * time.Millisecond},
	}
	if err := WriteResults(&buf, results); err != nil {
		t.Fatal(err)
	}
	if got, want := buf.String(), "10 10 0\n1000 1000 42\n"; got != want {
		t.Fatalf("output = %q, want %q", got, want)
	}

	path := filepath.Join(t.TempDir(), "times.txt")
	if err := SaveResults(path, results); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "10 10 0\n") {
		t.Fatalf("file = %q", data)
	}
}

func TestCheckParity(t *testing.T) {
	device := evolve.NewHostDevice(evolve.DeviceOptions{Workers: 4, Logger: quiet})
	defer device.Close()
	parallel := evolve.NewParallel(device, evolve.WithLogger(quiet))

	if err := CheckParity(context.Background(), evolve.NewSequential(), parallel, 160, 5, quiet); err != nil {
		t.Fatalf("host device diverged: %v", err)
	}

	broken := &countingEvolver{Evolver: evolve.NewSequential(), fail: true}
	if err := CheckParity(context.Background(), evolve.NewSequential(), broken, 16, 1, quiet); err == nil {
		t.Fatal("failing evolver passed parity")
	}
}

func BenchmarkSweepSequential(b *testing.B) {
	for b.Loop() {
		if _, err := Sweep(context.Background(), evolve.NewSequential(), Options{Sizes: []int{100}, Runs: 1, Logger: quiet}); err != nil {
			b.Fatal(err)
		}
	}
}
