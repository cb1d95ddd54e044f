//go:build !ebiten

package view

import (
	"context"

	"github.com/pkg/errors"

	"github.com/sheikhrachel/torus-gol/model"
	"github.com/sheikhrachel/torus-gol/sim"
)

// Viewer is a placeholder for headless builds.
type Viewer struct{}

// New returns a viewer that cannot open a window.
func New(string, int, int, int) *Viewer { return &Viewer{} }

// Render is a no-op in the headless build.
func (v *Viewer) Render(int, *model.Grid) {}

// Run reports that the window is unavailable without calling drive.
func (v *Viewer) Run(context.Context, func(context.Context, sim.Renderer) error) error {
	return errors.New("the viewer requires the ebiten build tag; rebuild with -tags ebiten")
}
