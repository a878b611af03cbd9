// Command connectk-ckp runs the engine over CKP on stdin and stdout.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/pprof"

	"github.com/rs/zerolog"

	"github.com/hailam/connectk/internal/config"
	"github.com/hailam/connectk/internal/protocol"
)

func main() {
	cfg := config.New()
	if err := cfg.Load(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	// stdout belongs to the protocol; logs go to stderr
	logger := cfg.NewLogger(os.Stderr, false)
	zerolog.DefaultContextLogger = &logger
	logger.Debug().Msgf("Loaded config: %v", cfg.AllSettings())

	if path := os.Getenv("CPUPROFILE"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			logger.Fatal().Err(err).Msg("could not create CPU profile")
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			logger.Fatal().Err(err).Msg("could not start CPU profile")
		}
		defer pprof.StopCPUProfile()
		logger.Info().Str("path", path).Msg("CPU profiling enabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	p := protocol.New(protocol.OptionsFrom(cfg), os.Stdout, os.Stderr, logger)
	if err := p.Run(ctx, os.Stdin); err != nil {
		logger.Error().Err(err).Msg("protocol loop ended")
	}
}
