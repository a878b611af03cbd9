// Package suite runs the engine against a file of test positions with
// known good and bad answers.
package suite

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/hailam/connectk/internal/board"
	"github.com/hailam/connectk/internal/engine"
)

// ErrInvalidCase is wrapped by errors in a suite file.
var ErrInvalidCase = errors.New("invalid suite case")

// Case is one entry of a suite file.
type Case struct {
	Name     string   `yaml:"name"`
	Position string   `yaml:"position"`
	Side     string   `yaml:"side,omitempty"`     // x or o; defaults to the side to move
	Best     []string `yaml:"best,omitempty"`     // any of these passes
	Avoid    []string `yaml:"avoid,omitempty"`    // none of these may be chosen
	MoveTime int      `yaml:"movetime,omitempty"` // milliseconds, overrides the default
	Depth    int      `yaml:"depth,omitempty"`

	grid  *board.Grid
	side  board.Side
	best  []board.Move
	avoid []board.Move
}

// File is the top level of a suite file.
type File struct {
	Cases []*Case `yaml:"cases"`
}

// Load reads and validates a suite file.
func Load(path string) ([]*Case, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes and validates suite YAML.
func Parse(data []byte) ([]*Case, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode suite: %w", err)
	}
	for i, c := range f.Cases {
		if err := c.prepare(); err != nil {
			return nil, fmt.Errorf("case %d (%s): %w", i, c.Name, err)
		}
	}
	return f.Cases, nil
}

func (c *Case) prepare() error {
	g, err := board.ParseNotation(c.Position)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCase, err)
	}
	if g.Result().Over() {
		return fmt.Errorf("%w: game is already over", ErrInvalidCase)
	}
	c.grid = g

	c.side = g.SideToMove()
	if c.Side != "" {
		s, ok := board.ParseSide(c.Side)
		if !ok {
			return fmt.Errorf("%w: side %q", ErrInvalidCase, c.Side)
		}
		c.side = s
	}

	if len(c.Best) == 0 && len(c.Avoid) == 0 {
		return fmt.Errorf("%w: needs best or avoid moves", ErrInvalidCase)
	}
	if c.best, err = parseMoves(c.Best, g.Gravity()); err != nil {
		return err
	}
	if c.avoid, err = parseMoves(c.Avoid, g.Gravity()); err != nil {
		return err
	}
	return nil
}

func parseMoves(tokens []string, gravity bool) ([]board.Move, error) {
	moves := make([]board.Move, 0, len(tokens))
	for _, tok := range tokens {
		m, err := board.ParseMove(tok, gravity)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidCase, err)
		}
		moves = append(moves, m)
	}
	return moves, nil
}

// Result is the outcome of one case.
type Result struct {
	Case    *Case
	Move    board.Move
	Passed  bool
	Elapsed time.Duration
}

// Report summarizes a run.
type Report struct {
	Results []Result
	Passed  int
}

// Failed returns the results that did not pass.
func (r *Report) Failed() []Result {
	return lo.Filter(r.Results, func(res Result, _ int) bool { return !res.Passed })
}

// Run searches every case with eng. defaults supplies the limits a case
// does not override.
func Run(ctx context.Context, eng *engine.Engine, cases []*Case, defaults engine.SearchLimits) (*Report, error) {
	logger := zerolog.Ctx(ctx)
	report := &Report{}
	for _, c := range cases {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		limits := defaults
		if c.MoveTime > 0 {
			limits.MoveTime = time.Duration(c.MoveTime) * time.Millisecond
		}
		if c.Depth > 0 {
			limits.Depth = c.Depth
		}

		start := time.Now()
		eng.Clear()
		m := eng.ChooseMove(ctx, c.grid, c.side, limits)
		res := Result{Case: c, Move: m, Elapsed: time.Since(start)}
		res.Passed = c.accepts(m)
		if res.Passed {
			report.Passed++
		}
		report.Results = append(report.Results, res)

		logger.Info().Str("case", c.Name).Str("move", m.Format(c.grid.Gravity())).
			Bool("passed", res.Passed).Dur("elapsed", res.Elapsed).Msg("suite case")
	}
	return report, nil
}

func (c *Case) accepts(m board.Move) bool {
	gravity := c.grid.Gravity()
	same := func(o board.Move) bool { return o.Same(m, gravity) }
	if lo.ContainsBy(c.avoid, same) {
		return false
	}
	return len(c.best) == 0 || lo.ContainsBy(c.best, same)
}
