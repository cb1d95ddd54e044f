package utils

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{"height": 50, "width": 60, "evolver": "parallel", "frame_rate": 1000000, "bench_sizes": [8, 16]}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Height != 50 || cfg.Width != 60 || cfg.Evolver != EvolverParallel {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.FrameRate != time.Millisecond {
		t.Fatalf("frame_rate = %v, want 1ms", cfg.FrameRate)
	}
	if cfg.Generations != DefaultConfig().Generations || cfg.Device != "host" {
		t.Fatalf("unset fields lost their defaults: %+v", cfg)
	}
	if len(cfg.BenchSizes) != 2 || cfg.BenchSizes[1] != 16 {
		t.Fatalf("bench_sizes = %v", cfg.BenchSizes)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("missing file accepted")
	}
	path := filepath.Join(t.TempDir(), "bad.json")
	os.WriteFile(path, []byte("{"), 0o644)
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("malformed JSON accepted")
	}
}

func TestBindFlags(t *testing.T) {
	cfg := DefaultConfig()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg.Bind(fs)
	args := []string{"-height", "7", "-evolver", "parallel", "-delay", "20ms", "-bench-sizes", "10, 30", "-random", "3"}
	if err := fs.Parse(args); err != nil {
		t.Fatal(err)
	}
	if cfg.Height != 7 || cfg.Evolver != EvolverParallel || cfg.FrameRate != 20*time.Millisecond || cfg.RandomPatterns != 3 {
		t.Fatalf("flags not applied: %+v", cfg)
	}
	if len(cfg.BenchSizes) != 2 || cfg.BenchSizes[0] != 10 || cfg.BenchSizes[1] != 30 {
		t.Fatalf("bench sizes = %v", cfg.BenchSizes)
	}
	if err := fs.Parse([]string{"-bench-sizes", "a"}); err == nil {
		t.Fatal("bad bench size accepted")
	}
}

func TestValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
	tests := []func(*Config){
		func(c *Config) { c.Height = 0 },
		func(c *Config) { c.Generations = -1 },
		func(c *Config) { c.Evolver = "gpu" },
		func(c *Config) { c.FrameRate = -time.Second },
		func(c *Config) { c.RandomPatterns = -2 },
		func(c *Config) { c.Bench = true; c.BenchRuns = 0 },
		func(c *Config) { c.BenchSizes = []int{10, 0} },
		func(c *Config) { c.Height, c.Width = 1, 1<<62 },
		func(c *Config) { c.BenchSizes = []int{1 << 40} },
		func(c *Config) { c.Compare, c.Bench = true, true },
	}
	for i, mutate := range tests {
		cfg := DefaultConfig()
		mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("case %d: invalid config accepted: %+v", i, cfg)
		}
	}

	cfg := DefaultConfig()
	cfg.Height, cfg.SeedFile = 0, "seed.txt"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("seed file should make size optional: %v", err)
	}
}

func TestStatsUpdate(t *testing.T) {
	s := NewStats()
	s.Update(1, 10, 10*time.Millisecond)
	s.Update(2, 20, 30*time.Millisecond)
	if s.TotalGenerations != 2 || s.Population != 20 {
		t.Fatalf("stats = %+v", s)
	}
	if s.AveragePopulation != 11 {
		t.Fatalf("AveragePopulation = %v, want 11", s.AveragePopulation)
	}
	if s.MeanStepTime() != 20*time.Millisecond {
		t.Fatalf("MeanStepTime = %v", s.MeanStepTime())
	}
}
