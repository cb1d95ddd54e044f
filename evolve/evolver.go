// Package evolve computes successive generations of a model.Grid.
//
// Two strategies share one rule and one wrap policy: Sequential scans the grid
// on the calling goroutine, Parallel marshals the grid into a TransferBuffer
// and runs the life_step kernel on a Device. Given the same input both leave
// bit-identical generations behind.
package evolve

import (
	"context"

	"github.com/pkg/errors"

	"github.com/sheikhrachel/torus-gol/model"
	"github.com/sheikhrachel/torus-gol/rules"
)

// Evolver advances a grid by one generation. Implementations write the new
// generation into the grid's next buffer and swap, so on success current
// holds the new generation and next the superseded one.
type Evolver interface {
	Name() string
	Step(ctx context.Context, g *model.Grid) error
}

// Sequential is the single-goroutine full-grid scan.
type Sequential struct{}

// NewSequential returns the sequential evolver.
func NewSequential() *Sequential {
	return &Sequential{}
}

// Name identifies the strategy in reports.
func (s *Sequential) Name() string { return "sequential" }

// Step computes the next generation. The context is consulted once before
// the scan; a started scan always runs to completion.
func (s *Sequential) Step(ctx context.Context, g *model.Grid) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, "[Sequential.Step] not started")
	}

	var (
		height = g.Height()
		width  = g.Width()
		cur    = g.Current()
		next   = g.Next()
		alive  = func(x, y int) bool { return cur[x][y] }
	)
	for x := range height {
		for y := range width {
			next[x][y] = rules.NextState(x, y, height, width, alive)
		}
	}
	g.Swap()
	return nil
}
