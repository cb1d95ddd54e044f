//go:build !opencl

package evolve

import "github.com/pkg/errors"

func init() {
	RegisterDevice("opencl", func(DeviceOptions) (Device, error) {
		return nil, errors.New("OpenCL support is not enabled; rebuild with -tags opencl")
	})
}
