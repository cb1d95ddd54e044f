//go:build opencl

package evolve

import (
	"log"
	"strings"
	"unsafe"

	"github.com/jgillich/go-opencl/cl"
	"github.com/pkg/errors"
)

// OpenCLDevice runs LifeKernel through an OpenCL command queue.
type OpenCLDevice struct {
	enc         Encoding
	diagnostics bool
	logger      *log.Logger

	device  *cl.Device
	context *cl.Context
	queue   *cl.CommandQueue
	program *cl.Program
	kernel  *cl.Kernel

	currBuf *cl.MemObject
	nextBuf *cl.MemObject
	diagBuf *cl.MemObject
	bufSize int
	dims    Dims

	pending bool
	ready   bool
}

func init() {
	RegisterDevice("opencl", func(opts DeviceOptions) (Device, error) {
		return NewOpenCLDevice(opts)
	})
}

// NewOpenCLDevice picks a GPU (falling back to a CPU) and compiles the
// kernel for each candidate in turn, in its own context. Devices whose build
// fails are reported with their compiler log; the first device that built
// is used.
func NewOpenCLDevice(opts DeviceOptions) (*OpenCLDevice, error) {
	opts = opts.withDefaults()

	candidates, err := discoverDevices()
	if err != nil {
		return nil, err
	}

	var failed DeviceErrors
	for _, device := range candidates {
		d, err := openOn(device, opts)
		if err != nil {
			opts.Logger.Printf("[NewOpenCLDevice] %s: %v", device.Name(), err)
			failed = append(failed, errors.WithMessage(err, device.Name()))
			continue
		}
		return d, nil
	}
	return nil, errors.Wrap(failed, "building OpenCL program")
}

// openOn builds the context, queue, program and kernel for a single device.
// Build failures come back as *CompileError.
func openOn(device *cl.Device, opts DeviceOptions) (*OpenCLDevice, error) {
	context, err := cl.CreateContext([]*cl.Device{device})
	if err != nil {
		return nil, errors.Wrap(err, "creating OpenCL context")
	}
	queue, err := context.CreateCommandQueue(device, 0)
	if err != nil {
		context.Release()
		return nil, errors.Wrap(err, "creating OpenCL command queue")
	}
	program, err := context.CreateProgramWithSource([]string{LifeKernel.Source})
	if err != nil {
		queue.Release()
		context.Release()
		return nil, errors.Wrap(err, "creating OpenCL program")
	}
	if err := program.BuildProgram([]*cl.Device{device}, buildOptions(opts.Encoding)); err != nil {
		program.Release()
		queue.Release()
		context.Release()
		cerr := &CompileError{Device: device.Name(), Log: err.Error()}
		if buildErr, ok := err.(cl.BuildError); ok {
			cerr.Log = string(buildErr)
		}
		return nil, cerr
	}
	kernel, err := program.CreateKernel(LifeKernel.Name)
	if err != nil {
		program.Release()
		queue.Release()
		context.Release()
		return nil, errors.Wrapf(err, "creating OpenCL kernel %s", LifeKernel)
	}

	return &OpenCLDevice{
		enc:         opts.Encoding,
		diagnostics: opts.Diagnostics,
		logger:      opts.Logger,
		device:      device,
		context:     context,
		queue:       queue,
		program:     program,
		kernel:      kernel,
	}, nil
}

func discoverDevices() ([]*cl.Device, error) {
	platforms, err := cl.GetPlatforms()
	if err != nil {
		msg := "querying OpenCL platforms"
		if strings.Contains(err.Error(), "-1001") {
			msg += ": no ICD loader reported any platforms; install OpenCL drivers and verify with `clinfo`"
		}
		return nil, errors.Wrap(err, msg)
	}
	if len(platforms) == 0 {
		return nil, errors.New("no OpenCL platforms available; ensure a vendor driver is installed and detected by `clinfo`")
	}
	for _, kind := range []cl.DeviceType{cl.DeviceTypeGPU, cl.DeviceTypeCPU} {
		for _, p := range platforms {
			devices, derr := p.GetDevices(kind)
			if derr != nil && derr != cl.ErrDeviceNotFound {
				continue
			}
			if len(devices) > 0 {
				return devices, nil
			}
		}
	}
	return nil, errors.New("no suitable OpenCL devices found")
}

// Name identifies the backend and the selected device.
func (d *OpenCLDevice) Name() string { return "opencl:" + d.device.Name() }

// Encoding returns the byte encoding the kernel was compiled with.
func (d *OpenCLDevice) Encoding() Encoding { return d.enc }

func (d *OpenCLDevice) ensureBuffers(size int) error {
	if size == d.bufSize && d.currBuf != nil {
		return nil
	}
	d.releaseBuffers()

	var err error
	if d.currBuf, err = d.context.CreateEmptyBuffer(cl.MemReadOnly, size); err != nil {
		return errors.Wrap(err, "allocating current buffer")
	}
	if d.nextBuf, err = d.context.CreateEmptyBuffer(cl.MemWriteOnly, size); err != nil {
		d.releaseBuffers()
		return errors.Wrap(err, "allocating next buffer")
	}
	diagSize := DiagnosticStride
	if d.diagnostics {
		diagSize = size * DiagnosticStride
	}
	if d.diagBuf, err = d.context.CreateEmptyBuffer(cl.MemWriteOnly, diagSize); err != nil {
		d.releaseBuffers()
		return errors.Wrap(err, "allocating diagnostic buffer")
	}
	d.bufSize = size
	return nil
}

// Upload writes src into the device's current buffer and blocks until the
// transfer completes.
func (d *OpenCLDevice) Upload(src *TransferBuffer) error {
	if d.queue == nil {
		return errors.New("device closed")
	}
	if src.Encoding != d.enc {
		return errors.Errorf("buffer encoding v%d does not match device encoding v%d", src.Encoding.Version, d.enc.Version)
	}
	if len(src.Cells) == 0 || len(src.Cells) != src.Height*src.Width {
		return errors.Errorf("%d bytes for %dx%d grid", len(src.Cells), src.Height, src.Width)
	}
	if err := d.ensureBuffers(len(src.Cells)); err != nil {
		return err
	}
	ev, err := d.queue.EnqueueWriteBuffer(d.currBuf, true, 0, len(src.Cells), unsafe.Pointer(&src.Cells[0]), nil)
	releaseEvent(ev)
	if err != nil {
		return errors.Wrap(err, "writing current buffer")
	}
	d.dims = Dims{Height: src.Height, Width: src.Width}
	d.ready = false
	return nil
}

// Dispatch enqueues one work item per cell over a height x width range.
func (d *OpenCLDevice) Dispatch(k Kernel, dims Dims) error {
	if k.Name != LifeKernel.Name || k.Version != LifeKernel.Version {
		return errors.Errorf("unsupported kernel %s", k)
	}
	if dims != d.dims {
		return errors.Errorf("index space %dx%d does not match uploaded %dx%d buffer", dims.Height, dims.Width, d.dims.Height, d.dims.Width)
	}
	capture := int32(0)
	if d.diagnostics {
		capture = 1
	}
	if err := d.kernel.SetArgs(
		d.currBuf,
		d.nextBuf,
		int32(dims.Height),
		int32(dims.Width),
		d.diagBuf,
		capture,
	); err != nil {
		return errors.Wrap(err, "setting kernel arguments")
	}
	ev, err := d.queue.EnqueueNDRangeKernel(d.kernel, nil, []int{dims.Height, dims.Width}, nil, nil)
	releaseEvent(ev)
	if err != nil {
		return errors.Wrap(err, "enqueueing kernel")
	}
	d.pending = true
	return nil
}

// Wait blocks until the queue has drained.
func (d *OpenCLDevice) Wait() error {
	if !d.pending {
		return errors.New("nothing dispatched")
	}
	d.pending = false
	if err := d.queue.Finish(); err != nil {
		return errors.Wrap(err, "finishing command queue")
	}
	d.ready = true
	return nil
}

// Download reads the next buffer into dst.
func (d *OpenCLDevice) Download(dst *TransferBuffer) error {
	if !d.ready {
		return errors.New("no completed dispatch to read")
	}
	dst.reset(d.enc, d.dims.Height, d.dims.Width)
	ev, err := d.queue.EnqueueReadBuffer(d.nextBuf, true, 0, len(dst.Cells), unsafe.Pointer(&dst.Cells[0]), nil)
	releaseEvent(ev)
	if err != nil {
		return errors.Wrap(err, "reading next buffer")
	}
	return nil
}

// ReadDiagnostics reads the auxiliary buffer of the last completed dispatch.
func (d *OpenCLDevice) ReadDiagnostics(dst []byte) error {
	if !d.diagnostics {
		return errors.New("diagnostics not enabled")
	}
	if !d.ready {
		return errors.New("no completed dispatch to read")
	}
	if len(dst) != d.bufSize*DiagnosticStride || len(dst) == 0 {
		return errors.Errorf("destination holds %d bytes, want %d", len(dst), d.bufSize*DiagnosticStride)
	}
	ev, err := d.queue.EnqueueReadBuffer(d.diagBuf, true, 0, len(dst), unsafe.Pointer(&dst[0]), nil)
	releaseEvent(ev)
	return errors.Wrap(err, "reading diagnostic buffer")
}

func (d *OpenCLDevice) releaseBuffers() {
	if d.diagBuf != nil {
		d.diagBuf.Release()
		d.diagBuf = nil
	}
	if d.nextBuf != nil {
		d.nextBuf.Release()
		d.nextBuf = nil
	}
	if d.currBuf != nil {
		d.currBuf.Release()
		d.currBuf = nil
	}
	d.bufSize = 0
}

// Close releases every OpenCL object in reverse order of creation.
func (d *OpenCLDevice) Close() error {
	d.releaseBuffers()
	if d.kernel != nil {
		d.kernel.Release()
		d.kernel = nil
	}
	if d.queue != nil {
		d.queue.Release()
		d.queue = nil
	}
	if d.program != nil {
		d.program.Release()
		d.program = nil
	}
	if d.context != nil {
		d.context.Release()
		d.context = nil
	}
	return nil
}

func releaseEvent(ev *cl.Event) {
	if ev != nil {
		ev.Release()
	}
}
