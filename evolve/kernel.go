package evolve

import "fmt"

// DiagnosticStride is the number of auxiliary bytes a kernel may emit per
// cell: row low/high, column low/high, live-neighbour count, output byte.
const DiagnosticStride = 6

// Kernel identifies a compute program by name and version.
type Kernel struct {
	Name    string
	Version int
	Source  string
}

func (k Kernel) String() string {
	return fmt.Sprintf("%s/v%d", k.Name, k.Version)
}

// LifeKernel is the B3/S23 toroidal step. ALIVE and DEAD are injected at
// build time from the device's Encoding.
var LifeKernel = Kernel{Name: "life_step", Version: 1, Source: lifeKernelSource}

const lifeKernelSource = `__kernel void life_step(
    __global const uchar* current,
    __global uchar* next_gen,
    const int height,
    const int width,
    __global uchar* diag,
    const int capture_diag)
{
    int x = get_global_id(0);
    int y = get_global_id(1);
    if (x >= height || y >= width) {
        return;
    }
    int count = 0;
    for (int dx = -1; dx <= 1; dx++) {
        for (int dy = -1; dy <= 1; dy++) {
            if (dx == 0 && dy == 0) {
                continue;
            }
            int nx = (x + dx + height) % height;
            int ny = (y + dy + width) % width;
            count += current[nx * width + ny] == ALIVE;
        }
    }
    int idx = x * width + y;
    int alive = current[idx] == ALIVE;
    uchar out = ((alive && (count == 2 || count == 3)) || (!alive && count == 3)) ? ALIVE : DEAD;
    next_gen[idx] = out;
    if (capture_diag) {
        __global uchar* d = diag + idx * 6;
        d[0] = (uchar)(x & 0xff);
        d[1] = (uchar)((x >> 8) & 0xff);
        d[2] = (uchar)(y & 0xff);
        d[3] = (uchar)((y >> 8) & 0xff);
        d[4] = (uchar)count;
        d[5] = out;
    }
}`

// buildOptions returns the compiler defines that bind the kernel to enc.
func buildOptions(enc Encoding) string {
	return fmt.Sprintf("-D ALIVE=%d -D DEAD=%d", enc.Alive, enc.Dead)
}

// writeDiagnostic fills one DiagnosticStride record.
func writeDiagnostic(dst []byte, x, y, count int, out byte) {
	dst[0] = byte(x)
	dst[1] = byte(x >> 8)
	dst[2] = byte(y)
	dst[3] = byte(y >> 8)
	dst[4] = byte(count)
	dst[5] = out
}

// Diagnostic is a decoded per-cell record.
type Diagnostic struct {
	X, Y      int
	Neighbors int
	Out       byte
}

// DecodeDiagnostics splits a diagnostic buffer into records.
func DecodeDiagnostics(buf []byte) []Diagnostic {
	out := make([]Diagnostic, 0, len(buf)/DiagnosticStride)
	for i := 0; i+DiagnosticStride <= len(buf); i += DiagnosticStride {
		r := buf[i : i+DiagnosticStride]
		out = append(out, Diagnostic{
			X:         int(r[0]) | int(r[1])<<8,
			Y:         int(r[2]) | int(r[3])<<8,
			Neighbors: int(r[4]),
			Out:       r[5],
		})
	}
	return out
}
