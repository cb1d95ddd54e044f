package evolve

import (
	"context"
	"log"

	"github.com/pkg/errors"

	"github.com/sheikhrachel/torus-gol/model"
)

// Parallel computes generations by dispatching LifeKernel on a Device:
// flatten, upload, dispatch, wait, download, decode, swap. A failure at any
// stage aborts the step with a *StepError and leaves the grid untouched.
type Parallel struct {
	device Device
	kernel Kernel
	logger *log.Logger

	captureDiagnostics bool
	diagnostics        []byte

	in  *TransferBuffer
	out *TransferBuffer
}

// ParallelOption configures a Parallel evolver.
type ParallelOption func(*Parallel)

// WithDiagnostics asks the device for its per-cell auxiliary buffer after
// each step. Devices that cannot provide one are stepped normally.
func WithDiagnostics() ParallelOption {
	return func(p *Parallel) { p.captureDiagnostics = true }
}

// WithLogger routes step diagnostics to l.
func WithLogger(l *log.Logger) ParallelOption {
	return func(p *Parallel) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithKernel overrides the dispatched kernel identity.
func WithKernel(k Kernel) ParallelOption {
	return func(p *Parallel) { p.kernel = k }
}

// NewParallel returns an evolver that runs on device. The evolver does not
// own the device; callers close it.
func NewParallel(device Device, opts ...ParallelOption) *Parallel {
	p := &Parallel{
		device: device,
		kernel: LifeKernel,
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name identifies the strategy and its backend in reports.
func (p *Parallel) Name() string { return "parallel/" + p.device.Name() }

// Device returns the backend the evolver dispatches to.
func (p *Parallel) Device() Device { return p.device }

// Step computes the next generation on the device.
func (p *Parallel) Step(ctx context.Context, g *model.Grid) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, "[Parallel.Step] not started")
	}
	height, width := g.Height(), g.Width()
	if height == 0 || width == 0 {
		g.Swap()
		return nil
	}

	enc := p.device.Encoding()
	p.in = p.in.reset(enc, height, width)
	p.in.Flatten(g.Current())

	if err := p.device.Upload(p.in); err != nil {
		return p.fail(StageUpload, err)
	}
	if err := p.device.Dispatch(p.kernel, Dims{Height: height, Width: width}); err != nil {
		return p.fail(StageDispatch, err)
	}
	if err := p.device.Wait(); err != nil {
		return p.fail(StageWait, err)
	}

	p.out = p.out.reset(enc, height, width)
	if err := p.device.Download(p.out); err != nil {
		return p.fail(StageDownload, err)
	}
	if p.out.Height != height || p.out.Width != width || p.out.Encoding != enc {
		return p.fail(StageDownload, errors.Errorf("device returned %dx%d buffer in encoding v%d", p.out.Height, p.out.Width, p.out.Encoding.Version))
	}
	if p.captureDiagnostics {
		p.readDiagnostics(height * width)
	}

	if err := p.out.Unflatten(g.Next()); err != nil {
		return p.fail(StageDecode, err)
	}
	g.Swap()
	return nil
}

func (p *Parallel) readDiagnostics(cells int) {
	r, ok := p.device.(DiagnosticReader)
	if !ok {
		return
	}
	size := cells * DiagnosticStride
	if cap(p.diagnostics) < size {
		p.diagnostics = make([]byte, size)
	}
	p.diagnostics = p.diagnostics[:size]
	if err := r.ReadDiagnostics(p.diagnostics); err != nil {
		p.logger.Printf("[Parallel.Step] diagnostics unavailable on %s: %v", p.device.Name(), err)
		p.diagnostics = p.diagnostics[:0]
	}
}

// Diagnostics returns the auxiliary buffer captured by the last step, or
// nil when none was captured. The slice is reused by the next step.
func (p *Parallel) Diagnostics() []byte {
	if len(p.diagnostics) == 0 {
		return nil
	}
	return p.diagnostics
}

func (p *Parallel) fail(stage Stage, err error) error {
	serr := &StepError{Stage: stage, Device: p.device.Name(), Err: err}
	p.logger.Printf("[Parallel.Step] %v", serr)
	return serr
}
