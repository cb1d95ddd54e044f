package rules

/*
ApplyConwayRules applies Conway's Game of Life rules to determine the next state of a cell.

B3/S23: a live cell survives with 2 or 3 live neighbours, a dead cell is born with exactly 3.
*/
func ApplyConwayRules(neighbors int, alive bool) bool {
	return (alive && neighbors == 2) || neighbors == 3
}

// Offsets lists the eight (dx, dy) neighbour displacements in scan order.
var Offsets = [8][2]int{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

// Wrap maps v onto [0, n) treating the axis as circular. Any int is accepted.
func Wrap(v, n int) int {
	return ((v % n) + n) % n
}

// CountToroidal counts live neighbours of (x, y) on a height x width torus.
// alive is queried with already-wrapped coordinates, so callers can back it
// with any storage layout.
func CountToroidal(x, y, height, width int, alive func(x, y int) bool) (count int) {
	for _, d := range Offsets {
		if alive(Wrap(x+d[0], height), Wrap(y+d[1], width)) {
			count++
		}
	}
	return
}

// NextState computes the successor of (x, y) under B3/S23 on a torus.
func NextState(x, y, height, width int, alive func(x, y int) bool) bool {
	return ApplyConwayRules(CountToroidal(x, y, height, width, alive), alive(x, y))
}
