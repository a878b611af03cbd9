package main

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/matryer/is"

	"github.com/hailam/connectk/internal/arena"
	"github.com/hailam/connectk/internal/board"
	"github.com/hailam/connectk/internal/engine"
	"github.com/hailam/connectk/internal/storage"
	"github.com/hailam/connectk/internal/suite"
)

func TestPlayerNames(t *testing.T) {
	is := is.New(t)

	one, two := playerNames("engine", "random")
	is.Equal(one, "engine")
	is.Equal(two, "random")

	one, two = playerNames("engine:hard", "engine:hard")
	is.Equal(one, "engine:hard#1")
	is.Equal(two, "engine:hard#2")
}

func TestRecentGames(t *testing.T) {
	is := is.New(t)

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	games := []*storage.GameRecord{
		{PlayerOne: "a", PlayedAt: base},
		{PlayerOne: "b", PlayedAt: base.Add(2 * time.Minute)},
		{PlayerOne: "c", PlayedAt: base.Add(time.Minute)},
	}

	got := recent(games, 2)
	is.Equal(len(got), 2)
	is.Equal(got[0].PlayerOne, "b")
	is.Equal(got[1].PlayerOne, "c")
	is.Equal(games[0].PlayerOne, "a") // input untouched

	is.Equal(len(recent(games, 0)), 3)
}

func TestRenderSummary(t *testing.T) {
	is := is.New(t)

	random := func(name string) arena.PlayerFactory {
		return func(game int) arena.Player { return arena.NewRandomPlayer(name, uint64(game)+1) }
	}
	ar := arena.New(arena.Config{Width: 3, Height: 3, K: 3, Games: 2, Parallel: 1},
		random("left"), random("right"), nil)
	summary, err := ar.Run(context.Background())
	is.NoErr(err)

	out := renderSummary(summary, []string{"left", "right", "absent"})
	is.True(containsAll(out, "Match: 2 games", "left", "right"))
	is.True(!containsAll(out, "absent"))
}

func TestRenderReport(t *testing.T) {
	is := is.New(t)

	cases, err := suite.Parse([]byte(`
cases:
  - name: take the win
    position: "7x6:4:g 7/7/7/7/7/xxx1ooo"
    side: x
    best: ["3"]
    depth: 2
`))
	is.NoErr(err)
	report, err := suite.Run(context.Background(), engine.NewEngine(0), cases, engine.SearchLimits{})
	is.NoErr(err)

	out := renderReport("basic.yaml", report)
	is.True(containsAll(out, "basic.yaml: 1/1 passed", "take the win", "ok"))
}

func TestRenderGames(t *testing.T) {
	is := is.New(t)

	out := renderGames([]*storage.GameRecord{{
		Width: 7, Height: 6, K: 4, Gravity: true,
		PlayerOne: "engine", PlayerTwo: "random",
		Moves:  []board.Move{{X: 3, Y: 0}},
		Result: board.OneWins,
	}})
	is.True(containsAll(out, "7x6:4:g", "engine vs random", "1 moves"))

	is.True(containsAll(renderPlayers(nil), "no games recorded"))
}

func containsAll(s string, subs ...string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}
