//go:build ebiten

package view

import (
	"context"
	"fmt"
	"image/color"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/pkg/errors"
	"golang.org/x/image/font/basicfont"

	"github.com/sheikhrachel/torus-gol/model"
	"github.com/sheikhrachel/torus-gol/sim"
)

const hudHeight = 18

// Viewer is a sim.Renderer that shows each generation in a window.
type Viewer struct {
	title  string
	scale  int
	height int
	width  int

	mu      sync.Mutex
	resumed *sync.Cond
	latest  frame
	paused  bool
	closed  bool
	done    bool
	ctx     context.Context

	img    *ebiten.Image
	pixels []byte
}

// New returns a viewer for a height x width grid drawn scale pixels per cell.
func New(title string, height, width, scale int) *Viewer {
	v := &Viewer{
		title:  title,
		scale:  max(1, scale),
		height: max(1, height),
		width:  max(1, width),
		ctx:    context.Background(),
	}
	v.resumed = sync.NewCond(&v.mu)
	return v
}

// Render copies g's current generation for the next frame. While the window
// is paused Render blocks, which holds the driver between generations.
func (v *Viewer) Render(generation int, g *model.Grid) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for v.paused && !v.closed {
		v.resumed.Wait()
	}
	copyFrame(&v.latest, generation, g.Current())
}

func (v *Viewer) setPaused(paused bool) {
	v.mu.Lock()
	v.paused = paused
	v.mu.Unlock()
	v.resumed.Broadcast()
}

func (v *Viewer) close() {
	v.mu.Lock()
	v.closed = true
	v.mu.Unlock()
	v.resumed.Broadcast()
}

// Update handles input. Q or Escape closes the window, Space toggles pause.
func (v *Viewer) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if v.ctx.Err() != nil {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		v.mu.Lock()
		paused := !v.paused
		v.mu.Unlock()
		v.setPaused(paused)
	}
	return nil
}

// Draw blits the latest generation and a status line.
func (v *Viewer) Draw(screen *ebiten.Image) {
	v.mu.Lock()
	f := &v.latest
	if f.height > 0 && f.width > 0 {
		if v.img == nil || v.img.Bounds().Dx() != f.width || v.img.Bounds().Dy() != f.height {
			v.img = ebiten.NewImage(f.width, f.height)
			v.pixels = make([]byte, 4*f.width*f.height)
		}
		fillCells(v.pixels, f.cells, aliveColor, deadColor)
	}
	status := fmt.Sprintf("gen %d  pop %d", f.generation, f.population)
	switch {
	case v.done:
		status += "  [finished]"
	case v.paused:
		status += "  [paused]"
	}
	v.mu.Unlock()

	screen.Fill(deadColor)
	if v.img != nil {
		v.img.WritePixels(v.pixels)
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Scale(float64(v.scale), float64(v.scale))
		op.GeoM.Translate(0, hudHeight)
		screen.DrawImage(v.img, op)
	}
	text.Draw(screen, status, basicfont.Face7x13, 4, 13, color.RGBA{R: 200, G: 200, B: 210, A: 255})
}

// Layout returns the logical screen size.
func (v *Viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	return v.width * v.scale, v.height*v.scale + hudHeight
}

// Run opens the window and calls drive on another goroutine with the viewer
// as its renderer. Closing the window cancels drive's context; the window
// stays open after drive returns until the user closes it or ctx is done.
func (v *Viewer) Run(ctx context.Context, drive func(ctx context.Context, r sim.Renderer) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	v.ctx = ctx

	errc := make(chan error, 1)
	go func() {
		err := drive(ctx, v)
		v.mu.Lock()
		v.done = true
		v.mu.Unlock()
		errc <- err
	}()

	ebiten.SetWindowTitle(v.title)
	ebiten.SetWindowSize(v.width*v.scale, v.height*v.scale+hudHeight)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	runErr := ebiten.RunGame(v)

	cancel()
	v.close()
	err := <-errc
	if runErr != nil {
		return errors.Wrap(runErr, "[Viewer.Run] window failed")
	}
	return err
}
