// Package bench times a single evolution step across a range of grid sizes.
package bench

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/sheikhrachel/torus-gol/evolve"
	"github.com/sheikhrachel/torus-gol/model"
)

// DefaultSizes are the square edge lengths swept when none are given.
var DefaultSizes = []int{10, 20, 100, 1000}

// DefaultRuns is the number of timed steps averaged per size.
const DefaultRuns = 5

// Options configures a sweep.
type Options struct {
	Sizes  []int
	Runs   int
	Logger *log.Logger
	Pool   *model.GridPool
}

func (o Options) withDefaults() Options {
	if len(o.Sizes) == 0 {
		o.Sizes = DefaultSizes
	}
	if o.Runs <= 0 {
		o.Runs = DefaultRuns
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	if o.Pool == nil {
		o.Pool = model.NewGridPool()
	}
	return o
}

// Result is the averaged step time for one grid size.
type Result struct {
	Height int
	Width  int
	Runs   int
	Mean   time.Duration
}

// Millis is the mean step time truncated to whole milliseconds.
func (r Result) Millis() int64 { return r.Mean.Milliseconds() }

// Sweep times one step of ev on an all-dead square grid of each size, with a
// beacon stamped at (5,5) when the grid is larger than 5x5. Each size is
// measured opts.Runs times on a fresh grid and averaged.
func Sweep(ctx context.Context, ev evolve.Evolver, opts Options) ([]Result, error) {
	opts = opts.withDefaults()

	results := make([]Result, 0, len(opts.Sizes))
	for _, size := range opts.Sizes {
		if size <= 0 {
			return results, errors.Errorf("[Sweep] grid size must be positive, got %d", size)
		}
		if err := model.CheckDimensions(size, size); err != nil {
			return results, errors.Wrap(err, "[Sweep] bad size")
		}
		var total time.Duration
		for run := range opts.Runs {
			if err := ctx.Err(); err != nil {
				return results, errors.Wrapf(err, "[Sweep] cancelled at size %d run %d", size, run)
			}
			elapsed, err := timeStep(ctx, ev, opts.Pool, size, opts.Logger)
			if err != nil {
				return results, errors.Wrapf(err, "[Sweep] size %dx%d run %d", size, size, run)
			}
			total += elapsed
		}
		r := Result{Height: size, Width: size, Runs: opts.Runs, Mean: total / time.Duration(opts.Runs)}
		opts.Logger.Printf("Average time for grid size (%d, %d): %d ms", r.Height, r.Width, r.Millis())
		results = append(results, r)
	}
	return results, nil
}

func timeStep(ctx context.Context, ev evolve.Evolver, pool *model.GridPool, size int, logger *log.Logger) (time.Duration, error) {
	g := pool.Get(size, size)
	defer model.GridToPool(g, pool)
	g.SetLogger(logger)

	if size > 5 {
		g.Stamp(model.Beacon, 5, 5)
	}
	start := time.Now()
	if err := ev.Step(ctx, g); err != nil {
		return 0, err
	}
	return time.Since(start), nil
}

// WriteResults writes one "height width ms" line per result.
func WriteResults(w io.Writer, results []Result) error {
	bw := bufio.NewWriter(w)
	for _, r := range results {
		if _, err := fmt.Fprintf(bw, "%d %d %d\n", r.Height, r.Width, r.Millis()); err != nil {
			return errors.Wrap(err, "[WriteResults] write failed")
		}
	}
	return errors.Wrap(bw.Flush(), "[WriteResults] flush failed")
}

// SaveResults writes results to path, replacing any existing file.
func SaveResults(path string, results []Result) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "[SaveResults] failed to create file: %+v", path)
	}
	if err := WriteResults(f, results); err != nil {
		f.Close()
		return err
	}
	return errors.Wrapf(f.Close(), "[SaveResults] failed to close file: %+v", path)
}

// CheckParity evolves identical seeded grids with want and got side by side
// for the given number of generations and reports the first generation at
// which they disagree.
func CheckParity(ctx context.Context, want, got evolve.Evolver, size, generations int, logger *log.Logger) error {
	if logger == nil {
		logger = log.Default()
	}
	a, b := model.NewGrid(size, size), model.NewGrid(size, size)
	for _, g := range []*model.Grid{a, b} {
		g.SetLogger(logger)
		g.Apply(model.DefaultLayout...)
		if size > 5 {
			g.Stamp(model.Beacon, 5, 5)
		}
	}

	for gen := 1; gen <= generations; gen++ {
		eg, egCtx := errgroup.WithContext(ctx)
		eg.Go(func() error { return want.Step(egCtx, a) })
		eg.Go(func() error { return got.Step(egCtx, b) })
		if err := eg.Wait(); err != nil {
			return errors.Wrapf(err, "[CheckParity] generation %d", gen)
		}
		if !a.Equal(b) {
			return errors.Errorf("[CheckParity] %s and %s disagree at generation %d", want.Name(), got.Name(), gen)
		}
	}
	return nil
}
