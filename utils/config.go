package utils

import (
	"encoding/json"
	"flag"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/sheikhrachel/torus-gol/model"
)

// Evolver names accepted by Config.Evolver.
const (
	EvolverSequential = "sequential"
	EvolverParallel   = "parallel"
)

// Config holds the configuration for a simulation or benchmark run
type Config struct {
	Height         int           `json:"height"`
	Width          int           `json:"width"`
	Generations    int           `json:"generations"`
	FrameRate      time.Duration `json:"frame_rate"`
	Evolver        string        `json:"evolver"`
	Device         string        `json:"device"`
	Workers        int           `json:"workers"`
	Diagnostics    bool          `json:"diagnostics"`
	Seed           int64         `json:"seed"`
	RandomPatterns int           `json:"random_patterns"`
	DefaultLayout  bool          `json:"default_layout"`
	SeedFile       string        `json:"seed_file"`
	SaveFile       string        `json:"save_file"`
	Print          bool          `json:"print"`
	View           bool          `json:"view"`
	Compare        bool          `json:"compare"`
	Bench          bool          `json:"bench"`
	BenchSizes     []int         `json:"bench_sizes"`
	BenchRuns      int           `json:"bench_runs"`
	BenchOutput    string        `json:"bench_output"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Height:         200,
		Width:          200,
		Generations:    100,
		FrameRate:      0,
		Evolver:        EvolverSequential,
		Device:         "host",
		Workers:        0, // one per CPU
		Seed:           42,
		RandomPatterns: 0,
		DefaultLayout:  true,
		Print:          false,
		BenchSizes:     []int{10, 20, 100, 1000},
		BenchRuns:      5,
		BenchOutput:    "times.txt",
	}
}

// LoadConfig loads configuration from JSON file
func LoadConfig(filename string) (Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return config, errors.Wrapf(err, "[LoadConfig] failed to read file: %+v", filename)
	}

	if err = json.Unmarshal(data, &config); err != nil {
		return config, errors.Wrapf(err, "[LoadConfig] failed to unmarshal data from file: %+v", filename)
	}

	return config, nil
}

// Bind attaches the configuration to fs so flags override file values.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.IntVar(&c.Height, "height", c.Height, "grid rows")
	fs.IntVar(&c.Width, "width", c.Width, "grid columns")
	fs.IntVar(&c.Generations, "generations", c.Generations, "generation budget")
	fs.DurationVar(&c.FrameRate, "delay", c.FrameRate, "pause between generations")
	fs.StringVar(&c.Evolver, "evolver", c.Evolver, "evolution strategy: sequential or parallel")
	fs.StringVar(&c.Device, "device", c.Device, "compute device for the parallel evolver: host or opencl")
	fs.IntVar(&c.Workers, "workers", c.Workers, "host device worker goroutines (0 = one per CPU)")
	fs.BoolVar(&c.Diagnostics, "diagnostics", c.Diagnostics, "capture the per-cell diagnostic buffer")
	fs.Int64Var(&c.Seed, "seed", c.Seed, "seed for random pattern placement")
	fs.IntVar(&c.RandomPatterns, "random", c.RandomPatterns, "number of randomly placed stock patterns")
	fs.BoolVar(&c.DefaultLayout, "layout", c.DefaultLayout, "stamp the default glider/toad/beacon/r-pentomino layout")
	fs.StringVar(&c.SeedFile, "seed-file", c.SeedFile, "load the initial generation from a seed file")
	fs.StringVar(&c.SaveFile, "save", c.SaveFile, "write the final generation to a seed file")
	fs.BoolVar(&c.Print, "print", c.Print, "print every generation to the terminal")
	fs.BoolVar(&c.View, "view", c.View, "show the run in a window (requires -tags ebiten)")
	fs.BoolVar(&c.Compare, "compare", c.Compare, "time the sequential and parallel evolvers on identical seeds")
	fs.BoolVar(&c.Bench, "bench", c.Bench, "run the grid size benchmark sweep instead of a simulation")
	fs.Var((*intList)(&c.BenchSizes), "bench-sizes", "comma separated square grid sizes for the sweep")
	fs.IntVar(&c.BenchRuns, "bench-runs", c.BenchRuns, "timed runs per benchmark size")
	fs.StringVar(&c.BenchOutput, "bench-output", c.BenchOutput, "benchmark results file")
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch {
	case c.SeedFile == "" && (c.Height <= 0 || c.Width <= 0):
		return errors.Errorf("[Config.Validate] grid size must be positive, got %dx%d", c.Height, c.Width)
	case c.SeedFile == "" && model.CheckDimensions(c.Height, c.Width) != nil:
		return errors.Wrap(model.CheckDimensions(c.Height, c.Width), "[Config.Validate] bad grid size")
	case c.Generations < 0:
		return errors.Errorf("[Config.Validate] generations must not be negative, got %d", c.Generations)
	case c.FrameRate < 0:
		return errors.Errorf("[Config.Validate] delay must not be negative, got %v", c.FrameRate)
	case c.Evolver != EvolverSequential && c.Evolver != EvolverParallel:
		return errors.Errorf("[Config.Validate] unknown evolver %q", c.Evolver)
	case c.RandomPatterns < 0:
		return errors.Errorf("[Config.Validate] random patterns must not be negative, got %d", c.RandomPatterns)
	case c.Compare && (c.Bench || c.View):
		return errors.New("[Config.Validate] compare cannot be combined with bench or view")
	case c.Bench && c.BenchRuns <= 0:
		return errors.Errorf("[Config.Validate] bench runs must be positive, got %d", c.BenchRuns)
	}
	for _, size := range c.BenchSizes {
		if size <= 0 {
			return errors.Errorf("[Config.Validate] bench size must be positive, got %d", size)
		}
		if err := model.CheckDimensions(size, size); err != nil {
			return errors.Wrap(err, "[Config.Validate] bad bench size")
		}
	}
	return nil
}

type intList []int

func (l *intList) String() string {
	if l == nil {
		return ""
	}
	parts := make([]string, len(*l))
	for i, v := range *l {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

func (l *intList) Set(s string) error {
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.Atoi(part)
		if err != nil {
			return errors.Wrapf(err, "[intList.Set] bad size %q", part)
		}
		out = append(out, v)
	}
	*l = out
	return nil
}
