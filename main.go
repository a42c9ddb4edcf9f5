package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"runtime/pprof"
	"syscall"

	"github.com/charmbracelet/log"

	"github.com/lumipallolabs/nanovis/internal/cli"
	"github.com/lumipallolabs/nanovis/internal/logging"
)

var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	logger := logging.New(os.Stderr, log.InfoLevel)

	// Enable CPU profiling if CPUPROFILE env var is set
	if cpuProfile := os.Getenv("CPUPROFILE"); cpuProfile != "" {
		f, err := os.Create(cpuProfile)
		if err != nil {
			logger.Error("could not create CPU profile", "err", err)
			return 1
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			logger.Error("could not start CPU profile", "err", err)
			return 1
		}
		defer pprof.StopCPUProfile()
		logger.Info("CPU profiling enabled", "path", cpuProfile)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cli.SetVersion(version)
	if err := cli.Execute(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return 130 // Standard shell convention for SIGINT
		}
		logger.Error(err)
		return 1
	}
	return 0
}
