package model

import (
	"log"

	"github.com/pkg/errors"
)

// Grid is the dense double-buffered board. Rows are indexed by x and columns
// by y, so (x, y) addresses current[x][y].
type Grid struct {
	height  int
	width   int
	current [][]bool
	next    [][]bool

	logger *log.Logger
}

// MaxCells bounds height*width for any grid.
const MaxCells = 1 << 28

// CheckDimensions rejects negative sizes and grids whose cell count
// overflows or exceeds MaxCells.
func CheckDimensions(height, width int) error {
	if height < 0 || width < 0 {
		return errors.Errorf("[CheckDimensions] invalid dimensions %dx%d", height, width)
	}
	if height > 0 && width > MaxCells/height {
		return errors.Errorf("[CheckDimensions] %dx%d grid exceeds %d cells", height, width, MaxCells)
	}
	return nil
}

// NewGrid creates an all-dead grid with the specified dimensions. Invalid
// sizes are logged and replaced by 0x0.
func NewGrid(height, width int) *Grid {
	g := &Grid{logger: log.Default()}
	if err := CheckDimensions(height, width); err != nil {
		g.logger.Printf("[NewGrid] %v, using 0x0", err)
		height, width = 0, 0
	}
	g.alloc(height, width)
	return g
}

// SetLogger routes bounds diagnostics to l. A nil logger restores log.Default.
func (g *Grid) SetLogger(l *log.Logger) {
	if l == nil {
		l = log.Default()
	}
	g.logger = l
}

func (g *Grid) alloc(height, width int) {
	g.height = height
	g.width = width
	g.current = makeCells(height, width)
	g.next = makeCells(height, width)
}

func makeCells(height, width int) [][]bool {
	cells := make([][]bool, height)
	backing := make([]bool, height*width)
	for i := range cells {
		cells[i] = backing[i*width : (i+1)*width : (i+1)*width]
	}
	return cells
}

// Height returns the number of rows.
func (g *Grid) Height() int {
	return g.height
}

// Width returns the number of columns.
func (g *Grid) Width() int {
	return g.width
}

// Size returns height*width.
func (g *Grid) Size() int {
	return g.height * g.width
}

// Resize reallocates both generations to height x width with every cell dead.
// Existing content is discarded.
func (g *Grid) Resize(height, width int) error {
	if err := CheckDimensions(height, width); err != nil {
		return errors.Wrap(err, "[Resize] not resized")
	}
	g.alloc(height, width)
	return nil
}

// Clear kills every cell in both generations without reallocating.
func (g *Grid) Clear() {
	for x := range g.height {
		clear(g.current[x])
		clear(g.next[x])
	}
}

func (g *Grid) inBounds(x, y int) bool {
	return x >= 0 && x < g.height && y >= 0 && y < g.width
}

// SetCell sets cell (x, y) of the current generation. Out-of-range
// coordinates are logged and ignored; the return value reports whether the
// write happened.
func (g *Grid) SetCell(x, y int, alive bool) bool {
	if !g.inBounds(x, y) {
		g.logger.Printf("[SetCell] coordinates (%d,%d) out of bounds for %dx%d grid", x, y, g.height, g.width)
		return false
	}
	g.current[x][y] = alive
	return true
}

// GetCell returns the state of cell (x, y). Out-of-range coordinates are
// logged and read as dead.
func (g *Grid) GetCell(x, y int) bool {
	if !g.inBounds(x, y) {
		g.logger.Printf("[GetCell] coordinates (%d,%d) out of bounds for %dx%d grid", x, y, g.height, g.width)
		return false
	}
	return g.current[x][y]
}

// To2D converts a row-major linear index to (row, column).
func (g *Grid) To2D(p int) (int, int) {
	if g.width == 0 {
		return -1, -1
	}
	return p / g.width, p % g.width
}

// SetCellAt is SetCell addressed by linear index.
func (g *Grid) SetCellAt(p int, alive bool) bool {
	if p < 0 || p >= g.Size() {
		g.logger.Printf("[SetCellAt] index %d out of bounds for %dx%d grid", p, g.height, g.width)
		return false
	}
	x, y := g.To2D(p)
	return g.SetCell(x, y, alive)
}

// GetCellAt is GetCell addressed by linear index.
func (g *Grid) GetCellAt(p int) bool {
	if p < 0 || p >= g.Size() {
		g.logger.Printf("[GetCellAt] index %d out of bounds for %dx%d grid", p, g.height, g.width)
		return false
	}
	x, y := g.To2D(p)
	return g.GetCell(x, y)
}

// Current exposes the current generation. Callers must treat it as read-only.
func (g *Grid) Current() [][]bool {
	return g.current
}

// Next exposes the scratch generation an evolver writes into before Swap.
func (g *Grid) Next() [][]bool {
	return g.next
}

// Swap exchanges the current and next generations.
func (g *Grid) Swap() {
	g.current, g.next = g.next, g.current
}

// IsStable reports whether the last step produced no change, i.e. the
// superseded generation in next equals current cell for cell. It is only
// meaningful right after an evolution step.
func (g *Grid) IsStable() bool {
	for x := range g.height {
		for y := range g.width {
			if g.current[x][y] != g.next[x][y] {
				return false
			}
		}
	}
	return true
}

// Load replaces the current generation with cells, which must be a
// height x width row-major matrix.
func (g *Grid) Load(cells [][]bool) error {
	if len(cells) != g.height {
		return errors.Errorf("[Load] got %d rows, grid has %d", len(cells), g.height)
	}
	for x, row := range cells {
		if len(row) != g.width {
			return errors.Errorf("[Load] row %d has %d columns, grid has %d", x, len(row), g.width)
		}
	}
	for x, row := range cells {
		copy(g.current[x], row)
	}
	return nil
}

// Snapshot returns a deep copy of the current generation.
func (g *Grid) Snapshot() [][]bool {
	out := makeCells(g.height, g.width)
	for x := range g.height {
		copy(out[x], g.current[x])
	}
	return out
}

// Equal reports whether other has the same dimensions and current generation.
func (g *Grid) Equal(other *Grid) bool {
	if other == nil || g.height != other.height || g.width != other.width {
		return false
	}
	for x := range g.height {
		for y := range g.width {
			if g.current[x][y] != other.current[x][y] {
				return false
			}
		}
	}
	return true
}

// CountLivingCells returns the total number of living cells
func (g *Grid) CountLivingCells() (count int) {
	for x := range g.height {
		for y := range g.width {
			if g.current[x][y] {
				count++
			}
		}
	}
	return
}
