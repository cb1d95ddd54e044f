// Package view shows a running simulation in a window. The window needs the
// ebiten build tag; headless builds get a stub whose Run reports that.
package view

import "image/color"

var (
	aliveColor = color.RGBA{R: 0xf0, G: 0xf0, B: 0xf0, A: 0xff}
	deadColor  = color.RGBA{R: 0x10, G: 0x12, B: 0x18, A: 0xff}
)

// fillCells converts a row-major generation into RGBA pixels in buf, one
// pixel per cell. buf must hold 4*rows*cols bytes.
func fillCells(buf []byte, cells [][]bool, on, off color.Color) {
	rOn, gOn, bOn, aOn := on.RGBA()
	rOff, gOff, bOff, aOff := off.RGBA()
	i := 0
	for _, row := range cells {
		for _, alive := range row {
			base := i * 4
			i++
			if alive {
				buf[base+0] = uint8(rOn >> 8)
				buf[base+1] = uint8(gOn >> 8)
				buf[base+2] = uint8(bOn >> 8)
				buf[base+3] = uint8(aOn >> 8)
				continue
			}
			buf[base+0] = uint8(rOff >> 8)
			buf[base+1] = uint8(gOff >> 8)
			buf[base+2] = uint8(bOff >> 8)
			buf[base+3] = uint8(aOff >> 8)
		}
	}
}

// frame is the latest generation handed over by the driver.
type frame struct {
	generation int
	height     int
	width      int
	population int
	cells      [][]bool
}

func copyFrame(dst *frame, generation int, cells [][]bool) {
	dst.generation = generation
	dst.height = len(cells)
	dst.width = 0
	if dst.height > 0 {
		dst.width = len(cells[0])
	}
	if len(dst.cells) != dst.height || (dst.height > 0 && len(dst.cells[0]) != dst.width) {
		dst.cells = make([][]bool, dst.height)
		for x := range dst.cells {
			dst.cells[x] = make([]bool, dst.width)
		}
	}
	dst.population = 0
	for x, row := range cells {
		copy(dst.cells[x], row)
		for _, alive := range row {
			if alive {
				dst.population++
			}
		}
	}
}
