package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"

	"github.com/sheikhrachel/torus-gol/sim"
	"github.com/sheikhrachel/torus-gol/view"
)

func main() {
	logger := log.New(os.Stderr, "", log.LstdFlags)
	if err := run(os.Args[1:], logger); err != nil {
		logger.Printf("%+v", err)
		os.Exit(1)
	}
}

func run(args []string, logger *log.Logger) error {
	config, err := parseConfig(args, logger)
	if err != nil {
		return err
	}

	// Handle Ctrl+C gracefully
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if config.Compare {
		reports, err := compareEvolvers(ctx, config, logger)
		displayComparison(reports)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}

	evolver, closeDevice, err := openEvolver(config, logger)
	if err != nil {
		return err
	}
	defer closeDevice()

	if config.Bench {
		return runBench(ctx, config, evolver, logger)
	}

	grid, err := initializeGame(config, logger)
	if err != nil {
		return err
	}
	displayGameInfo(config, grid, evolver)

	var report sim.Report
	drive := func(ctx context.Context, renderer sim.Renderer) error {
		report = sim.NewDriver(grid, evolver, driverOptions(config, renderer, logger)).Run(ctx)
		return report.Err
	}
	if config.View {
		err = view.New("torus-gol", grid.Height(), grid.Width(), viewScale(grid)).Run(ctx, drive)
	} else {
		err = drive(ctx, terminalRenderer(config))
	}

	displayReport(report)
	if config.SaveFile != "" {
		if serr := grid.SaveSeedFile(config.SaveFile); serr != nil {
			return serr
		}
		fmt.Printf("Final generation saved to %s\n", config.SaveFile)
	}
	if errors.Is(err, context.Canceled) {
		fmt.Println("\nShutting down gracefully...")
		return nil
	}
	return err
}
