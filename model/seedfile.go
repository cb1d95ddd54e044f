package model

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/pkg/errors"
)

// ReadSeed parses a seed stream: "height width" followed by height*width
// whitespace-separated 0/1 values in row-major order. The returned grid is
// only handed out when the whole stream parsed.
func ReadSeed(r io.Reader) (*Grid, error) {
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)

	next := func(what string) (int, error) {
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return 0, errors.Wrapf(err, "[ReadSeed] reading %s", what)
			}
			return 0, errors.Errorf("[ReadSeed] unexpected end of input reading %s", what)
		}
		v, err := strconv.Atoi(sc.Text())
		if err != nil {
			return 0, errors.Wrapf(err, "[ReadSeed] parsing %s", what)
		}
		return v, nil
	}

	height, err := next("height")
	if err != nil {
		return nil, err
	}
	width, err := next("width")
	if err != nil {
		return nil, err
	}
	if err := CheckDimensions(height, width); err != nil {
		return nil, errors.Wrap(err, "[ReadSeed] bad header")
	}

	g := NewGrid(height, width)
	for x := range height {
		for y := range width {
			v, err := next(fmt.Sprintf("cell (%d,%d)", x, y))
			if err != nil {
				return nil, err
			}
			if v != 0 && v != 1 {
				return nil, errors.Errorf("[ReadSeed] cell (%d,%d) has value %d, want 0 or 1", x, y, v)
			}
			g.current[x][y] = v == 1
		}
	}
	return g, nil
}

// LoadSeedFile reads a seed file from disk.
func LoadSeedFile(path string) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "[LoadSeedFile] failed to open file: %+v", path)
	}
	defer f.Close()

	g, err := ReadSeed(f)
	if err != nil {
		return nil, errors.Wrapf(err, "[LoadSeedFile] failed to parse file: %+v", path)
	}
	return g, nil
}

// WriteSeed writes the current generation in seed format, one row per line.
func (g *Grid) WriteSeed(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d %d\n", g.height, g.width)
	for x := range g.height {
		for y := range g.width {
			if g.current[x][y] {
				bw.WriteString("1 ")
			} else {
				bw.WriteString("0 ")
			}
		}
		bw.WriteByte('\n')
	}
	return errors.Wrap(bw.Flush(), "[WriteSeed] flush")
}

// SaveSeedFile writes the current generation to path.
func (g *Grid) SaveSeedFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "[SaveSeedFile] failed to create file: %+v", path)
	}
	if err = g.WriteSeed(f); err != nil {
		f.Close()
		return errors.Wrapf(err, "[SaveSeedFile] failed to write file: %+v", path)
	}
	return errors.Wrapf(f.Close(), "[SaveSeedFile] failed to close file: %+v", path)
}
