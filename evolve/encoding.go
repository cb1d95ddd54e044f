package evolve

import (
	"github.com/pkg/errors"

	"github.com/sheikhrachel/torus-gol/model"
)

// Encoding is the versioned byte representation of a cell at the device
// boundary.
type Encoding struct {
	Version uint8
	Alive   byte
	Dead    byte
}

// EncodingV1 is the first life_step byte layout.
var EncodingV1 = Encoding{Version: 1, Alive: '0', Dead: '.'}

// Validate rejects encodings whose sentinels cannot be told apart.
func (e Encoding) Validate() error {
	if e.Version == 0 {
		return errors.New("[Encoding.Validate] version must be non-zero")
	}
	if e.Alive == e.Dead {
		return errors.Errorf("[Encoding.Validate] v%d alive and dead share byte %q", e.Version, e.Alive)
	}
	return nil
}

// Encode returns the byte for a cell state.
func (e Encoding) Encode(alive bool) byte {
	if alive {
		return e.Alive
	}
	return e.Dead
}

// Decode maps a byte back to a cell state.
func (e Encoding) Decode(b byte) (bool, error) {
	switch b {
	case e.Alive:
		return true, nil
	case e.Dead:
		return false, nil
	}
	return false, errors.Errorf("[Encoding.Decode] byte %q is not part of encoding v%d", b, e.Version)
}

// TransferBuffer is a flat row-major generation, one byte per cell.
type TransferBuffer struct {
	Encoding Encoding
	Height   int
	Width    int
	Cells    []byte
}

// NewTransferBuffer allocates a buffer for a height x width grid.
func NewTransferBuffer(enc Encoding, height, width int) *TransferBuffer {
	return (*TransferBuffer)(nil).reset(enc, height, width)
}

// reset reshapes b for a new step, reusing its backing array when large enough.
func (b *TransferBuffer) reset(enc Encoding, height, width int) *TransferBuffer {
	if b == nil {
		b = &TransferBuffer{}
	}
	size := height * width
	if cap(b.Cells) < size {
		b.Cells = make([]byte, size)
	}
	b.Cells = b.Cells[:size]
	b.Encoding = enc
	b.Height = height
	b.Width = width
	return b
}

// Len returns the number of cells.
func (b *TransferBuffer) Len() int { return len(b.Cells) }

// Flatten encodes cells (height rows of width columns) into b.
func (b *TransferBuffer) Flatten(cells [][]bool) {
	for x, row := range cells[:b.Height] {
		base := x * b.Width
		for y, alive := range row[:b.Width] {
			b.Cells[base+y] = b.Encoding.Encode(alive)
		}
	}
}

// FlattenGrid encodes the current generation of g into a fresh buffer.
func FlattenGrid(enc Encoding, g *model.Grid) *TransferBuffer {
	b := NewTransferBuffer(enc, g.Height(), g.Width())
	b.Flatten(g.Current())
	return b
}

// Validate checks the buffer's shape and that every byte is a sentinel.
func (b *TransferBuffer) Validate() error {
	if len(b.Cells) != b.Height*b.Width {
		return errors.Errorf("[TransferBuffer.Validate] %d bytes for %dx%d grid", len(b.Cells), b.Height, b.Width)
	}
	for i, c := range b.Cells {
		if c != b.Encoding.Alive && c != b.Encoding.Dead {
			return errors.Errorf("[TransferBuffer.Validate] cell %d holds byte %q outside encoding v%d", i, c, b.Encoding.Version)
		}
	}
	return nil
}

// Unflatten decodes b into dst. The whole buffer is validated before dst is
// touched, so a bad buffer leaves dst as it was.
func (b *TransferBuffer) Unflatten(dst [][]bool) error {
	if err := b.Validate(); err != nil {
		return err
	}
	if len(dst) != b.Height {
		return errors.Errorf("[TransferBuffer.Unflatten] destination has %d rows, buffer has %d", len(dst), b.Height)
	}
	for x, row := range dst {
		if len(row) != b.Width {
			return errors.Errorf("[TransferBuffer.Unflatten] destination row %d has %d columns, buffer has %d", x, len(row), b.Width)
		}
	}
	for x, row := range dst {
		base := x * b.Width
		for y := range row {
			row[y] = b.Cells[base+y] == b.Encoding.Alive
		}
	}
	return nil
}
