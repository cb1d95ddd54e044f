package evolve

import (
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/sheikhrachel/torus-gol/rules"
)

// HostDevice runs the life_step kernel in-process. Its "device memory" is a
// pair of byte slices owned by the device; a dispatch fans the 2D index
// space out over goroutines in row bands and Wait is the barrier.
type HostDevice struct {
	enc         Encoding
	workers     int
	diagnostics bool

	input  []byte
	output []byte
	diag   []byte
	dims   Dims

	pending *errgroup.Group
	ready   bool
	closed  bool
}

func init() {
	RegisterDevice("host", func(opts DeviceOptions) (Device, error) {
		return NewHostDevice(opts), nil
	})
}

// NewHostDevice returns a host backend.
func NewHostDevice(opts DeviceOptions) *HostDevice {
	opts = opts.withDefaults()
	return &HostDevice{
		enc:         opts.Encoding,
		workers:     opts.Workers,
		diagnostics: opts.Diagnostics,
	}
}

// Name identifies the backend.
func (d *HostDevice) Name() string { return "host" }

// Encoding returns the byte encoding the kernel was bound to.
func (d *HostDevice) Encoding() Encoding { return d.enc }

// Upload copies src into device memory.
func (d *HostDevice) Upload(src *TransferBuffer) error {
	if d.closed {
		return errors.New("[HostDevice.Upload] device closed")
	}
	if d.pending != nil {
		return errors.New("[HostDevice.Upload] previous dispatch still in flight")
	}
	if src.Encoding != d.enc {
		return errors.Errorf("[HostDevice.Upload] buffer encoding v%d does not match device encoding v%d", src.Encoding.Version, d.enc.Version)
	}
	if len(src.Cells) != src.Height*src.Width {
		return errors.Errorf("[HostDevice.Upload] %d bytes for %dx%d grid", len(src.Cells), src.Height, src.Width)
	}
	d.input = append(d.input[:0], src.Cells...)
	d.dims = Dims{Height: src.Height, Width: src.Width}
	d.ready = false
	return nil
}

// Dispatch launches one work item per cell and returns without waiting.
func (d *HostDevice) Dispatch(k Kernel, dims Dims) error {
	if d.closed {
		return errors.New("[HostDevice.Dispatch] device closed")
	}
	if k.Name != LifeKernel.Name || k.Version != LifeKernel.Version {
		return errors.Errorf("[HostDevice.Dispatch] unsupported kernel %s", k)
	}
	if d.pending != nil {
		return errors.New("[HostDevice.Dispatch] previous dispatch still in flight")
	}
	if dims != d.dims || dims.Size() != len(d.input) {
		return errors.Errorf("[HostDevice.Dispatch] index space %dx%d does not match uploaded %dx%d buffer", dims.Height, dims.Width, d.dims.Height, d.dims.Width)
	}

	size := dims.Size()
	if cap(d.output) < size {
		d.output = make([]byte, size)
	}
	d.output = d.output[:size]
	if d.diagnostics {
		if cap(d.diag) < size*DiagnosticStride {
			d.diag = make([]byte, size*DiagnosticStride)
		}
		d.diag = d.diag[:size*DiagnosticStride]
	}

	var (
		eg            errgroup.Group
		numWorkers    = max(1, min(d.workers, dims.Height))
		rowsPerWorker = (dims.Height + numWorkers - 1) / max(1, numWorkers) // Ceiling division
		input, output = d.input, d.output
		diag          []byte
		enc           = d.enc
	)
	if d.diagnostics {
		diag = d.diag
	}
	eg.SetLimit(numWorkers)

	for i := range numWorkers {
		var (
			startRow = i * rowsPerWorker
			endRow   = min(startRow+rowsPerWorker, dims.Height)
		)
		if startRow >= dims.Height {
			break
		}
		eg.Go(func() error {
			for x := startRow; x < endRow; x++ {
				for y := range dims.Width {
					if err := lifeWorkItem(input, output, diag, x, y, dims, enc); err != nil {
						return err
					}
				}
			}
			return nil
		})
	}
	d.pending = &eg
	return nil
}

// lifeWorkItem is the host rendition of the life_step kernel body. It reads
// only input and writes only its own output and diagnostic slots.
func lifeWorkItem(input, output, diag []byte, x, y int, dims Dims, enc Encoding) error {
	idx := x*dims.Width + y
	self := input[idx]
	if self != enc.Alive && self != enc.Dead {
		return errors.Errorf("[life_step] cell (%d,%d) holds byte %q outside encoding v%d", x, y, self, enc.Version)
	}
	count := 0
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			if dx == 0 && dy == 0 {
				continue
			}
			nx := rules.Wrap(x+dx, dims.Height)
			ny := rules.Wrap(y+dy, dims.Width)
			if input[nx*dims.Width+ny] == enc.Alive {
				count++
			}
		}
	}
	alive := self == enc.Alive
	out := enc.Encode(rules.ApplyConwayRules(count, alive))
	output[idx] = out
	if diag != nil {
		writeDiagnostic(diag[idx*DiagnosticStride:(idx+1)*DiagnosticStride], x, y, count, out)
	}
	return nil
}

// Wait blocks until every work item of the last dispatch has finished.
func (d *HostDevice) Wait() error {
	if d.pending == nil {
		return errors.New("[HostDevice.Wait] nothing dispatched")
	}
	err := d.pending.Wait()
	d.pending = nil
	if err != nil {
		return errors.Wrap(err, "[HostDevice.Wait] work item failed")
	}
	d.ready = true
	return nil
}

// Download copies the result of the last completed dispatch into dst.
func (d *HostDevice) Download(dst *TransferBuffer) error {
	if d.closed {
		return errors.New("[HostDevice.Download] device closed")
	}
	if !d.ready {
		return errors.New("[HostDevice.Download] no completed dispatch to read")
	}
	dst.reset(d.enc, d.dims.Height, d.dims.Width)
	copy(dst.Cells, d.output)
	return nil
}

// ReadDiagnostics copies the auxiliary buffer of the last completed dispatch.
func (d *HostDevice) ReadDiagnostics(dst []byte) error {
	if !d.diagnostics {
		return errors.New("[HostDevice.ReadDiagnostics] diagnostics not enabled")
	}
	if !d.ready {
		return errors.New("[HostDevice.ReadDiagnostics] no completed dispatch to read")
	}
	if len(dst) != len(d.diag) {
		return errors.Errorf("[HostDevice.ReadDiagnostics] destination holds %d bytes, want %d", len(dst), len(d.diag))
	}
	copy(dst, d.diag)
	return nil
}

// Close releases device memory. A dispatch still in flight is waited for.
func (d *HostDevice) Close() error {
	if d.pending != nil {
		_ = d.pending.Wait()
		d.pending = nil
	}
	d.input, d.output, d.diag = nil, nil, nil
	d.closed = true
	return nil
}
