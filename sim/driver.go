// Package sim runs a grid through a bounded number of generations and
// reports how long it took.
package sim

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/pkg/errors"

	"github.com/sheikhrachel/torus-gol/evolve"
	"github.com/sheikhrachel/torus-gol/model"
	"github.com/sheikhrachel/torus-gol/utils"
)

// State is a phase of a simulation run.
type State int

const (
	StateSeeding State = iota
	StateRunning
	// StateStable: a step produced no change.
	StateStable
	// StateExhausted: the generation budget ran out first.
	StateExhausted
	// StateAborted: a step failed or the context was cancelled; the
	// generation sequence is truncated.
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateSeeding:
		return "seeding"
	case StateRunning:
		return "running"
	case StateStable:
		return "stable"
	case StateExhausted:
		return "exhausted"
	case StateAborted:
		return "aborted"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Renderer receives the current generation before each step. generation is
// 1-based.
type Renderer interface {
	Render(generation int, g *model.Grid)
}

// Options configures a Driver.
type Options struct {
	// Generations is the step budget. Zero runs no steps.
	Generations int
	// Delay is slept after every step that did not end the run.
	Delay time.Duration
	// Renderer, when set, is shown every generation before it is evolved.
	Renderer Renderer
	// Seed is stamped onto the grid before the first step.
	Seed []model.Placement
	// RandomPatterns stamps that many stock patterns using RNG.
	RandomPatterns int
	RNG            model.Intner
	Logger         *log.Logger
}

// Report summarises a finished run.
type Report struct {
	State       State
	Evolver     string
	Generations int
	Elapsed     time.Duration
	Err         error
	Stats       *utils.Stats
}

// ElapsedMillis is the run's wall-clock cost in whole milliseconds.
func (r Report) ElapsedMillis() int64 {
	return r.Elapsed.Milliseconds()
}

func (r Report) String() string {
	s := fmt.Sprintf("%s run %s after %d generations in %d ms", r.Evolver, r.State, r.Generations, r.ElapsedMillis())
	if r.Err != nil {
		s += ": " + r.Err.Error()
	}
	return s
}

// Driver owns one grid and one evolver for the duration of a run.
type Driver struct {
	grid    *model.Grid
	evolver evolve.Evolver
	opts    Options
	state   State
	logger  *log.Logger
}

// NewDriver prepares a run of evolver over grid. The evolver is fixed for
// the driver's lifetime.
func NewDriver(grid *model.Grid, evolver evolve.Evolver, opts Options) *Driver {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Driver{
		grid:    grid,
		evolver: evolver,
		opts:    opts,
		state:   StateSeeding,
		logger:  logger,
	}
}

// State returns the driver's current phase.
func (d *Driver) State() State { return d.state }

// Grid returns the grid being evolved.
func (d *Driver) Grid() *model.Grid { return d.grid }

// Seed stamps the configured placements and random patterns. Run calls it
// automatically; calling it again stamps again.
func (d *Driver) Seed() {
	d.grid.Apply(d.opts.Seed...)
	if d.opts.RandomPatterns > 0 && d.opts.RNG == nil {
		d.logger.Printf("[Driver.Seed] %d random patterns requested without a generator, skipping", d.opts.RandomPatterns)
		return
	}
	for range d.opts.RandomPatterns {
		pl := d.grid.PlaceRandom(d.opts.RNG)
		d.logger.Printf("[Driver.Seed] placed %s at (%d,%d)", pl.Pattern.Name(), pl.X, pl.Y)
	}
}

// Run seeds the grid and evolves it until it is stable, the budget is
// spent, a step fails, or ctx is cancelled. Cancellation only prevents
// further steps; a started step completes.
func (d *Driver) Run(ctx context.Context) Report {
	if d.state != StateSeeding {
		return Report{State: d.state, Evolver: d.evolver.Name(), Err: errors.New("[Driver.Run] driver already ran")}
	}
	d.Seed()

	var (
		stats     = utils.NewStats()
		report    = Report{Evolver: d.evolver.Name(), Stats: stats}
		startTime = time.Now()
	)
	d.state = StateRunning

	for d.state == StateRunning {
		if report.Generations >= d.opts.Generations {
			d.state = StateExhausted
			break
		}
		if err := ctx.Err(); err != nil {
			report.Err = errors.Wrap(err, "[Driver.Run] cancelled")
			d.state = StateAborted
			break
		}

		generation := report.Generations + 1
		if d.opts.Renderer != nil {
			d.opts.Renderer.Render(generation, d.grid)
		}

		stepStart := time.Now()
		if err := d.evolver.Step(ctx, d.grid); err != nil {
			d.logger.Printf("[Driver.Run] generation %d aborted: %v", generation, err)
			report.Err = err
			d.state = StateAborted
			break
		}
		report.Generations = generation
		stats.Update(generation, d.grid.CountLivingCells(), time.Since(stepStart))

		if d.grid.IsStable() {
			d.logger.Printf("Stable configuration detected at generation %d.", generation)
			d.state = StateStable
			break
		}
		if report.Generations < d.opts.Generations && d.opts.Delay > 0 {
			if !sleepCtx(ctx, d.opts.Delay) {
				report.Err = errors.Wrap(ctx.Err(), "[Driver.Run] cancelled")
				d.state = StateAborted
			}
		}
	}

	report.Elapsed = time.Since(startTime)
	report.State = d.state
	d.logger.Printf("Total calculation time (%s) for %d generations: %d ms",
		report.Evolver, report.Generations, report.ElapsedMillis())
	return report
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
