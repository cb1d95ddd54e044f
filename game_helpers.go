package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/pkg/errors"

	"github.com/sheikhrachel/torus-gol/bench"
	"github.com/sheikhrachel/torus-gol/evolve"
	"github.com/sheikhrachel/torus-gol/model"
	"github.com/sheikhrachel/torus-gol/sim"
	"github.com/sheikhrachel/torus-gol/utils"
)

const defaultConfigFile = "config.json"

// parseConfig loads the configuration file named by -config, falling back to
// defaults when it is missing, then applies the remaining flags on top.
func parseConfig(args []string, logger *log.Logger) (utils.Config, error) {
	probe := flag.NewFlagSet("probe", flag.ContinueOnError)
	probe.SetOutput(io.Discard)
	path := probe.String("config", defaultConfigFile, "")
	scratch := utils.DefaultConfig()
	scratch.Bind(probe)
	_ = probe.Parse(args)

	config, err := utils.LoadConfig(*path)
	if err != nil {
		if *path != defaultConfigFile || !errors.Is(err, os.ErrNotExist) {
			return config, err
		}
		logger.Printf("Using default configuration (%s not found)", *path)
		config = utils.DefaultConfig()
	}

	fs := flag.NewFlagSet("torus-gol", flag.ContinueOnError)
	fs.String("config", *path, "JSON configuration file")
	config.Bind(fs)
	if err := fs.Parse(args); err != nil {
		return config, errors.Wrap(err, "[parseConfig] bad flags")
	}
	return config, config.Validate()
}

// openEvolver builds the configured evolver. The returned func releases the
// device, if one was opened.
func openEvolver(config utils.Config, logger *log.Logger) (evolve.Evolver, func(), error) {
	if config.Evolver == utils.EvolverSequential {
		return evolve.NewSequential(), func() {}, nil
	}
	return openParallel(config, logger)
}

func openParallel(config utils.Config, logger *log.Logger) (*evolve.Parallel, func(), error) {
	device, err := evolve.OpenDevice(config.Device, evolve.DeviceOptions{
		Workers:     config.Workers,
		Diagnostics: config.Diagnostics,
		Logger:      logger,
	})
	if err != nil {
		return nil, nil, err
	}
	closeDevice := func() {
		if err := device.Close(); err != nil {
			logger.Printf("[openParallel] closing %s: %v", device.Name(), err)
		}
	}

	opts := []evolve.ParallelOption{evolve.WithLogger(logger)}
	if config.Diagnostics {
		opts = append(opts, evolve.WithDiagnostics())
	}
	return evolve.NewParallel(device, opts...), closeDevice, nil
}

// compareEvolvers runs the sequential evolver and then the parallel one on
// identically seeded grids. Reports come back in that order; the second run
// is skipped when the first was cancelled.
func compareEvolvers(ctx context.Context, config utils.Config, logger *log.Logger) ([]sim.Report, error) {
	parallel, closeDevice, err := openParallel(config, logger)
	if err != nil {
		return nil, err
	}
	defer closeDevice()

	var (
		reports []sim.Report
		grids   []*model.Grid
	)
	for _, evolver := range []evolve.Evolver{evolve.NewSequential(), parallel} {
		grid, err := initializeGame(config, logger)
		if err != nil {
			return reports, err
		}
		report := sim.NewDriver(grid, evolver, driverOptions(config, nil, logger)).Run(ctx)
		reports = append(reports, report)
		grids = append(grids, grid)
		if report.Err != nil {
			return reports, report.Err
		}
	}
	if !grids[0].Equal(grids[1]) {
		return reports, errors.Errorf("[compareEvolvers] %s and %s finished on different generations", reports[0].Evolver, reports[1].Evolver)
	}
	return reports, nil
}

// initializeGame builds the starting grid from the seed file or from the
// configured size. Pattern stamping is left to the driver.
func initializeGame(config utils.Config, logger *log.Logger) (*model.Grid, error) {
	if config.SeedFile != "" {
		grid, err := model.LoadSeedFile(config.SeedFile)
		if err != nil {
			return nil, err
		}
		grid.SetLogger(logger)
		return grid, nil
	}
	grid := model.NewGrid(config.Height, config.Width)
	grid.SetLogger(logger)
	return grid, nil
}

func driverOptions(config utils.Config, renderer sim.Renderer, logger *log.Logger) sim.Options {
	opts := sim.Options{
		Generations:    config.Generations,
		Delay:          config.FrameRate,
		Renderer:       renderer,
		RandomPatterns: config.RandomPatterns,
		RNG:            model.NewRNG(config.Seed),
		Logger:         logger,
	}
	if config.DefaultLayout && config.SeedFile == "" {
		opts.Seed = model.DefaultLayout
	}
	return opts
}

func terminalRenderer(config utils.Config) sim.Renderer {
	if !config.Print {
		return nil
	}
	return model.NewTerminalRenderer(true)
}

// viewScale picks a cell size that keeps the window near 800 pixels.
func viewScale(grid *model.Grid) int {
	edge := max(grid.Height(), grid.Width(), 1)
	return max(1, 800/edge)
}

// displayGameInfo shows the initial game information
func displayGameInfo(config utils.Config, grid *model.Grid, evolver evolve.Evolver) {
	fmt.Printf("Evolver: %s | Grid: %dx%d | Generations: %d\n",
		evolver.Name(), grid.Height(), grid.Width(), config.Generations)
	fmt.Println("Press Ctrl+C to exit gracefully")
	fmt.Println()
}

// displayReport shows how the run ended and how fast it went.
func displayReport(report sim.Report) {
	fmt.Println(report)
	if stats := report.Stats; stats != nil && stats.TotalGenerations > 0 {
		fmt.Printf("Final stats: %.1f gen/sec, %.1f avg population, %s mean step\n",
			stats.GenerationsPerSecond, stats.AveragePopulation, stats.MeanStepTime())
	}
}

// displayComparison prints the timing of each evolver side by side.
func displayComparison(reports []sim.Report) {
	for _, report := range reports {
		fmt.Println(report)
	}
	if len(reports) == 2 {
		fmt.Printf("Time taken: %s %d ms | %s %d ms\n",
			reports[0].Evolver, reports[0].ElapsedMillis(),
			reports[1].Evolver, reports[1].ElapsedMillis())
	}
}

// runBench checks evolver against the sequential reference and then times
// it over the configured grid sizes.
func runBench(ctx context.Context, config utils.Config, evolver evolve.Evolver, logger *log.Logger) error {
	if evolver.Name() != evolve.NewSequential().Name() {
		if err := bench.CheckParity(ctx, evolve.NewSequential(), evolver, 64, 8, logger); err != nil {
			return err
		}
	}
	results, err := bench.Sweep(ctx, evolver, bench.Options{
		Sizes:  config.BenchSizes,
		Runs:   config.BenchRuns,
		Logger: logger,
	})
	if err != nil {
		return err
	}
	if err := bench.WriteResults(os.Stdout, results); err != nil {
		return err
	}
	if config.BenchOutput == "" {
		return nil
	}
	return bench.SaveResults(config.BenchOutput, results)
}
