package evolve

import (
	"fmt"
	"log"
	"runtime"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Dims is the 2D index space of a dispatch.
type Dims struct {
	Height, Width int
}

// Size returns the number of work items.
func (d Dims) Size() int { return d.Height * d.Width }

// Device is a compute backend with its own memory. Each call is a blocking
// synchronisation point except Dispatch, which only enqueues work; results
// may be downloaded only after Wait returned nil.
type Device interface {
	Name() string
	Encoding() Encoding
	Upload(src *TransferBuffer) error
	Dispatch(k Kernel, dims Dims) error
	Wait() error
	Download(dst *TransferBuffer) error
	Close() error
}

// DiagnosticReader is implemented by devices that can return the auxiliary
// per-cell buffer of the last dispatch.
type DiagnosticReader interface {
	ReadDiagnostics(dst []byte) error
}

// DeviceOptions configures a device at open time.
type DeviceOptions struct {
	Encoding    Encoding
	Workers     int
	Diagnostics bool
	Logger      *log.Logger
}

func (o DeviceOptions) withDefaults() DeviceOptions {
	if o.Encoding == (Encoding{}) {
		o.Encoding = EncodingV1
	}
	if o.Workers <= 0 {
		o.Workers = runtime.NumCPU()
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	return o
}

// DeviceOpener constructs a device.
type DeviceOpener func(opts DeviceOptions) (Device, error)

var devices = map[string]DeviceOpener{}

// RegisterDevice adds a backend under name.
func RegisterDevice(name string, open DeviceOpener) {
	if name == "" || open == nil {
		return
	}
	devices[name] = open
}

// DeviceNames lists registered backends.
func DeviceNames() []string {
	names := make([]string, 0, len(devices))
	for name := range devices {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// OpenDevice opens the backend registered under name. The kernel is compiled
// here, once per device.
func OpenDevice(name string, opts DeviceOptions) (Device, error) {
	open, ok := devices[name]
	if !ok {
		return nil, errors.Errorf("[OpenDevice] unknown device %q (have %s)", name, strings.Join(DeviceNames(), ", "))
	}
	opts = opts.withDefaults()
	if err := opts.Encoding.Validate(); err != nil {
		return nil, errors.Wrapf(err, "[OpenDevice] %s", name)
	}
	dev, err := open(opts)
	if err != nil {
		return nil, errors.Wrapf(err, "[OpenDevice] %s", name)
	}
	return dev, nil
}

// Stage names a point in the parallel pipeline where a step can fail.
type Stage string

const (
	StageUpload   Stage = "upload"
	StageDispatch Stage = "dispatch"
	StageWait     Stage = "wait"
	StageDownload Stage = "download"
	StageDecode   Stage = "decode"
)

// StepError reports a failed parallel step. The grid is untouched when a
// StepError is returned.
type StepError struct {
	Stage  Stage
	Device string
	Err    error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s step failed at %s: %v", e.Device, e.Stage, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Cause lets errors.Cause see the backend error.
func (e *StepError) Cause() error { return e.Err }

// CompileError carries the compiler log of one device.
type CompileError struct {
	Device string
	Log    string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("building kernel for device %s:\n%s", e.Device, e.Log)
}

// DeviceErrors aggregates per-device failures.
type DeviceErrors []error

func (errs DeviceErrors) Error() string {
	msgs := make([]string, len(errs))
	for i, err := range errs {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "\n")
}

// Unwrap exposes the individual failures to errors.As.
func (errs DeviceErrors) Unwrap() []error { return errs }
