package suite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hailam/connectk/internal/board"
	"github.com/hailam/connectk/internal/engine"
)

func TestLoadAndRun(t *testing.T) {
	cases, err := Load("testdata/basic.yaml")
	require.NoError(t, err)
	require.Len(t, cases, 4)
	assert.Equal(t, board.One, cases[0].side)
	// side defaults to the side to move
	assert.Equal(t, board.One, cases[2].side)

	report, err := Run(context.Background(), engine.NewEngine(4), cases, engine.SearchLimits{MoveTime: time.Second})
	require.NoError(t, err)
	for _, res := range report.Failed() {
		t.Errorf("%s: played %s", res.Case.Name, res.Move)
	}
	assert.Equal(t, 4, report.Passed)
}

func TestAvoid(t *testing.T) {
	cases, err := Parse([]byte(`
cases:
  - name: do not leave the threat
    position: "7x6:4:g 7/7/7/7/2x4/1xooo1x"
    avoid: ["0", "1", "2", "3", "4", "6"]
    depth: 2
`))
	require.NoError(t, err)
	c := cases[0]
	assert.True(t, c.accepts(board.NewMove(5, 0)))
	assert.False(t, c.accepts(board.NewMove(3, 2)))
}

func TestParseErrors(t *testing.T) {
	for name, doc := range map[string]string{
		"bad notation": `cases: [{name: a, position: "7x6:4:q", best: ["1"]}]`,
		"bad side":     `cases: [{name: a, position: "7x6:4:g", side: z, best: ["1"]}]`,
		"no answers":   `cases: [{name: a, position: "7x6:4:g"}]`,
		"bad move":     `cases: [{name: a, position: "5x5:4:n", best: ["1"]}]`,
		"finished":     `cases: [{name: a, position: "5x1:3:n xxx2", best: ["3,0"]}]`,
	} {
		_, err := Parse([]byte(doc))
		assert.True(t, errors.Is(err, ErrInvalidCase), "%s: %v", name, err)
	}

	_, err := Parse([]byte("cases: {"))
	assert.Error(t, err)
	_, err = Load("testdata/missing.yaml")
	assert.Error(t, err)
}
