package main

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"

	"github.com/hailam/connectk/internal/arena"
	"github.com/hailam/connectk/internal/storage"
	"github.com/hailam/connectk/internal/suite"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	passStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

func renderSummary(s *arena.Summary, names []string) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(fmt.Sprintf("Match: %d games in %s", len(s.Records), s.Elapsed.Round(time.Millisecond))))
	sb.WriteByte('\n')
	for _, name := range names {
		sc, ok := s.Scores[name]
		if !ok {
			continue
		}
		fmt.Fprintf(&sb, "  %-16s %3d W %3d L %3d D\n", name, sc.Wins, sc.Losses, sc.Draws)
	}
	return sb.String()
}

func renderReport(path string, r *suite.Report) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(fmt.Sprintf("%s: %d/%d passed", path, r.Passed, len(r.Results))))
	sb.WriteByte('\n')
	for _, res := range r.Results {
		mark := passStyle.Render("ok  ")
		if !res.Passed {
			mark = errorStyle.Render("FAIL")
		}
		fmt.Fprintf(&sb, "  %s %-32s %-6s %s\n", mark, res.Case.Name,
			res.Move.String(), dimStyle.Render(res.Elapsed.Round(time.Millisecond).String()))
	}
	return sb.String()
}

func renderPlayers(players []*storage.PlayerStats) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Players"))
	sb.WriteByte('\n')
	if len(players) == 0 {
		sb.WriteString(dimStyle.Render("  no games recorded"))
		sb.WriteByte('\n')
		return sb.String()
	}
	for _, p := range players {
		fmt.Fprintf(&sb, "  %-16s %4d games %3d W %3d L %3d D  %5.1f%%  best streak %d\n",
			p.Name, p.GamesPlayed, p.Wins, p.Losses, p.Draws, p.GetWinRate(), p.LongestWinStrk)
	}
	return sb.String()
}

func renderGames(games []*storage.GameRecord) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Recent games"))
	sb.WriteByte('\n')
	for _, g := range games {
		gravity := lo.Ternary(g.Gravity, "g", "n")
		winner := lo.Ternary(g.Winner() == "", "draw", g.Winner())
		fmt.Fprintf(&sb, "  %s  %dx%d:%d:%s  %s vs %s  %-12s %3d moves\n",
			dimStyle.Render(g.PlayedAt.Format(time.DateTime)), g.Width, g.Height, g.K, gravity,
			g.PlayerOne, g.PlayerTwo, winner, len(g.Moves))
	}
	return sb.String()
}

// recent returns the limit most recently played games, newest first.
func recent(games []*storage.GameRecord, limit int) []*storage.GameRecord {
	sorted := slices.Clone(games)
	slices.SortStableFunc(sorted, func(a, b *storage.GameRecord) int {
		return b.PlayedAt.Compare(a.PlayedAt)
	})
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}
