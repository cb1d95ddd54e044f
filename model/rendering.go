package model

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

const (
	gridPosAlive = 'O'
	gridPosDead  = '.'

	ansiClear = "\033[H\033[2J"
)

// TerminalRenderer prints generations as rows of 'O' and '.'.
type TerminalRenderer struct {
	Out io.Writer
	// ClearScreen resets the terminal before each frame.
	ClearScreen bool
}

// NewTerminalRenderer returns a renderer writing to stdout.
func NewTerminalRenderer(clearScreen bool) *TerminalRenderer {
	return &TerminalRenderer{Out: os.Stdout, ClearScreen: clearScreen}
}

// Render draws one generation with its 1-based number as a header.
func (r *TerminalRenderer) Render(generation int, g *Grid) {
	if r.ClearScreen {
		r.Clear()
	}
	fmt.Fprintf(r.out(), "Generation %d:\n", generation)
	r.Display(g)
}

// Display renders the grid to the terminal
func (r *TerminalRenderer) Display(g *Grid) {
	bw := bufio.NewWriter(r.out())
	for x := range g.height {
		for y := range g.width {
			if g.current[x][y] {
				bw.WriteByte(gridPosAlive)
			} else {
				bw.WriteByte(gridPosDead)
			}
		}
		bw.WriteByte('\n')
	}
	if err := bw.Flush(); err != nil {
		fmt.Fprintln(os.Stderr, "Error rendering grid:", err)
	}
}

// Clear clears the terminal screen
func (r *TerminalRenderer) Clear() {
	fmt.Fprint(r.out(), ansiClear)
}

func (r *TerminalRenderer) out() io.Writer {
	if r.Out == nil {
		return os.Stdout
	}
	return r.Out
}
