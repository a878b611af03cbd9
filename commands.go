package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/hailam/connectk/internal/arena"
	"github.com/hailam/connectk/internal/board"
	"github.com/hailam/connectk/internal/book"
	"github.com/hailam/connectk/internal/engine"
	"github.com/hailam/connectk/internal/protocol"
	"github.com/hailam/connectk/internal/storage"
	"github.com/hailam/connectk/internal/suite"
)

func limits() engine.SearchLimits {
	return engine.SearchLimits{
		MoveTime:     cfg.MoveTime(),
		Depth:        cfg.Depth(),
		SafetyMargin: cfg.SafetyMargin(),
	}
}

func runCKP(cmd *cobra.Command, _ []string) error {
	p := protocol.New(protocol.OptionsFrom(cfg), os.Stdout, os.Stderr, log.Logger)
	return p.Run(cmd.Context(), os.Stdin)
}

func runArena(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	specOne, _ := flags.GetString("one")
	specTwo, _ := flags.GetString("two")
	geometry, _ := flags.GetString("board")
	seed, _ := flags.GetUint64("seed")
	noSave, _ := flags.GetBool("no-save")

	empty, err := board.ParseNotation(geometry)
	if err != nil {
		return err
	}
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	nameOne, nameTwo := playerNames(specOne, specTwo)
	one, err := arena.ParsePlayer(specOne, nameOne, cfg.EvalCacheMB(), limits(), seed)
	if err != nil {
		return err
	}
	two, err := arena.ParsePlayer(specTwo, nameTwo, cfg.EvalCacheMB(), limits(), seed+1<<32)
	if err != nil {
		return err
	}

	var store *storage.Storage
	if !noSave {
		if store, err = storage.Open(cfg.DataDir()); err != nil {
			return err
		}
		defer store.Close()
	}

	match := arena.Config{
		Width:    empty.Width(),
		Height:   empty.Height(),
		K:        empty.K(),
		Gravity:  empty.Gravity(),
		Games:    cfg.Games(),
		Parallel: cfg.Parallel(),
	}
	log.Info().Str("board", geometry).Str("one", nameOne).Str("two", nameTwo).
		Int("games", match.Games).Uint64("seed", seed).Msg("starting match")

	summary, err := arena.New(match, one, two, store).Run(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Print(renderSummary(summary, []string{nameOne, nameTwo}))
	return nil
}

// playerNames keeps the two players apart in the statistics when both
// sides use the same spec.
func playerNames(one, two string) (string, string) {
	if one == two {
		return one + "#1", two + "#2"
	}
	return one, two
}

func runSuite(cmd *cobra.Command, args []string) error {
	eng := engine.NewEngine(cfg.EvalCacheMB())
	failed := 0
	for _, path := range args {
		cases, err := suite.Load(path)
		if err != nil {
			return err
		}
		report, err := suite.Run(cmd.Context(), eng, cases, limits())
		if err != nil {
			return err
		}
		fmt.Print(renderReport(path, report))
		failed += len(report.Failed())
	}
	if failed > 0 {
		return fmt.Errorf("%d suite cases failed", failed)
	}
	return nil
}

func runBook(cmd *cobra.Command, args []string) error {
	plies, _ := cmd.Flags().GetInt("plies")
	if plies < 1 {
		return fmt.Errorf("plies must be at least 1, got %d", plies)
	}

	store, err := storage.Open(cfg.DataDir())
	if err != nil {
		return err
	}
	defer store.Close()

	games, err := store.Games(0)
	if err != nil {
		return err
	}
	openings, err := book.FromGames(games, plies)
	if err != nil {
		return err
	}
	path, err := storage.DefaultBookPath(cfg.DataDir())
	if err != nil {
		return err
	}
	if len(args) == 1 {
		path = args[0]
	}
	if err := openings.Save(path); err != nil {
		return err
	}
	log.Info().Str("path", path).Int("games", len(games)).Int("positions", openings.Size()).Msg("book written")
	return nil
}

func runShow(cmd *cobra.Command, _ []string) error {
	limit, _ := cmd.Flags().GetInt("limit")

	store, err := storage.Open(cfg.DataDir())
	if err != nil {
		return err
	}
	defer store.Close()

	players, err := store.Players()
	if err != nil {
		return err
	}
	games, err := store.Games(0)
	if err != nil {
		return err
	}
	fmt.Print(renderPlayers(players))
	fmt.Print(renderGames(recent(games, limit)))
	return nil
}
