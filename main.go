// ConnectK - a deadline-bounded K-in-a-row engine
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/hailam/connectk/internal/config"
)

var cfg = config.New()

var (
	rootCmd = &cobra.Command{
		Use:   "connectk",
		Short: "K-in-a-row engine, arena and test suite runner",
		Long: `connectk plays K-in-a-row games on W×H boards, with or without gravity.
It speaks CKP for match drivers, plays engine matches and runs position suites.`,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
	}

	ckpCmd = &cobra.Command{
		Use:   "ckp",
		Short: "Run the engine over CKP on stdin and stdout",
		Args:  cobra.NoArgs,
		RunE:  runCKP,
	}

	arenaCmd = &cobra.Command{
		Use:   "arena",
		Short: "Play a match between two players and record the games",
		Long: `Play a series of games between two players. Players are "random", "engine"
or "engine:<easy|medium|hard>". Sides alternate every game.`,
		Args: cobra.NoArgs,
		RunE: runArena,
	}

	suiteCmd = &cobra.Command{
		Use:   "suite <file>...",
		Short: "Run the engine against YAML position suites",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runSuite,
	}

	bookCmd = &cobra.Command{
		Use:   "book [file]",
		Short: "Build an opening book from the recorded games",
		Long: `Replay every recorded game and book the opening moves of the winning side,
and of both sides in drawn games. The file defaults to openings.bin in the
data directory. Load the result with --book or setoption.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runBook,
	}

	showCmd = &cobra.Command{
		Use:   "show",
		Short: "Show player statistics and recent games from the match database",
		Args:  cobra.NoArgs,
		RunE:  runShow,
	}
)

func init() {
	cfg.AddFlags(rootCmd.PersistentFlags())

	arenaCmd.Flags().String("one", "engine", "first player")
	arenaCmd.Flags().String("two", "random", "second player")
	arenaCmd.Flags().String("board", "7x6:4:g", "board geometry as WxH:K:g|n")
	arenaCmd.Flags().Uint64("seed", 0, "seed for random players, 0 picks one")
	arenaCmd.Flags().Bool("no-save", false, "do not record games in the database")

	bookCmd.Flags().Int("plies", 8, "opening plies to book per game")

	showCmd.Flags().Int("limit", 10, "recent games to list")

	rootCmd.AddCommand(ckpCmd, arenaCmd, suiteCmd, bookCmd, showCmd)
}

// setup binds the persistent flags and installs the process logger.
func setup(cmd *cobra.Command, _ []string) error {
	if err := cfg.BindFlags(cmd.Flags()); err != nil {
		return err
	}
	// CKP owns stdout, so only the other commands get the console writer
	logger := cfg.NewLogger(os.Stderr, cmd != ckpCmd)
	log.Logger = logger
	zerolog.DefaultContextLogger = &logger
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("error: "+err.Error()))
		os.Exit(1)
	}
}
