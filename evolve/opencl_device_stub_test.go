//go:build !opencl

package evolve

import (
	"strings"
	"testing"
)

func TestOpenCLRequiresBuildTag(t *testing.T) {
	_, err := OpenDevice("opencl", DeviceOptions{})
	if err == nil || !strings.Contains(err.Error(), "-tags opencl") {
		t.Fatalf("expected rebuild hint, got %v", err)
	}
}
