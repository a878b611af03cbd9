// Package protocol implements CKP, a line-oriented engine protocol modeled
// on UCI, so that match drivers can run the engine as a child process.
package protocol

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/hailam/connectk/internal/board"
	"github.com/hailam/connectk/internal/book"
	"github.com/hailam/connectk/internal/config"
	"github.com/hailam/connectk/internal/engine"
)

// ErrUnknownCommand is reported for commands the protocol does not define.
var ErrUnknownCommand = errors.New("unknown command")

// Options are the engine settings a session starts with. setoption
// changes them for the rest of the session.
type Options struct {
	MoveTime     time.Duration
	Depth        int
	SafetyMargin time.Duration
	EvalCacheMB  int
	Book         string // opening book file, empty for none
	Debug        bool
}

// DefaultOptions mirrors the configuration defaults.
var DefaultOptions = Options{
	MoveTime:     time.Second,
	SafetyMargin: engine.DefaultSafetyMargin,
	EvalCacheMB:  16,
}

// OptionsFrom reads session defaults from the loaded configuration.
func OptionsFrom(c *config.Config) Options {
	return Options{
		MoveTime:     c.MoveTime(),
		Depth:        c.Depth(),
		SafetyMargin: c.SafetyMargin(),
		EvalCacheMB:  c.EvalCacheMB(),
		Book:         c.Book(),
		Debug:        c.LogLevel() == "debug",
	}
}

// CKP is one protocol session.
type CKP struct {
	engine   *engine.Engine
	book     *book.Book
	position *board.Grid
	opts     Options

	out    io.Writer
	errOut io.Writer
	mu     sync.Mutex // serializes writes to out

	logger zerolog.Logger

	// Search state
	cancel     context.CancelFunc
	searchDone chan struct{}
	infinite   bool // running search only ends on stop
}

// New creates a session writing replies to out and diagnostics to errOut.
func New(opts Options, out, errOut io.Writer, logger zerolog.Logger) *CKP {
	p := &CKP{
		engine:   engine.NewEngine(opts.EvalCacheMB),
		position: board.MustGrid(7, 6, 4, true),
		opts:     opts,
		out:      out,
		errOut:   errOut,
		logger:   logger,
	}
	p.applyDebug()
	if opts.Book != "" {
		if err := p.loadBook(opts.Book); err != nil {
			fmt.Fprintf(errOut, "info string %v\n", err)
		}
	}
	return p
}

// Run reads commands from in until quit or end of input.
func (p *CKP) Run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parts := strings.Fields(line)
		if parts[0] == "quit" {
			p.handleStop()
			return nil
		}
		if err := p.Handle(ctx, parts[0], parts[1:]); err != nil {
			p.logger.Debug().Err(err).Str("line", line).Msg("command failed")
			fmt.Fprintf(p.errOut, "info string %v\n", err)
		}
	}
	// End of input lets a bounded search finish and stops an infinite one.
	if p.infinite {
		p.handleStop()
	}
	p.Wait()
	return scanner.Err()
}

// Handle executes a single command.
func (p *CKP) Handle(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "ckp":
		p.handleCKP()
	case "isready":
		p.println("readyok")
	case "newgame":
		return p.handleNewGame(args)
	case "position":
		return p.handlePosition(args)
	case "go":
		return p.handleGo(ctx, args)
	case "stop":
		p.handleStop()
	case "setoption":
		return p.handleSetOption(args)
	// Debug commands
	case "d":
		p.println(strings.TrimRight(p.position.String(), "\n"))
	case "eval":
		side := p.position.SideToMove()
		p.println(fmt.Sprintf("eval %s %d", side, p.engine.Evaluate(p.position, side)))
	case "candidates":
		moves := engine.Candidates(p.position, p.position.SideToMove(), true)
		moves = lo.Filter(moves, func(m board.Move, _ int) bool {
			_, ok := p.position.Resolve(m)
			return ok
		})
		tokens := lo.Map(moves, func(m board.Move, _ int) string {
			return m.Format(p.position.Gravity())
		})
		p.println(strings.TrimSpace("candidates " + strings.Join(tokens, " ")))
	default:
		return fmt.Errorf("%w: %s", ErrUnknownCommand, cmd)
	}
	return nil
}

func (p *CKP) handleCKP() {
	p.println("id name connectk")
	p.println("id author connectk developers")
	p.println("")
	p.println(fmt.Sprintf("option name MoveTime type spin default %d min 1 max 3600000", p.opts.MoveTime.Milliseconds()))
	p.println(fmt.Sprintf("option name Depth type spin default %d min 0 max 1024", p.opts.Depth))
	p.println(fmt.Sprintf("option name SafetyMargin type spin default %d min 0 max 10000", p.opts.SafetyMargin.Milliseconds()))
	p.println(fmt.Sprintf("option name EvalCache type spin default %d min 0 max 4096", p.opts.EvalCacheMB))
	p.println(fmt.Sprintf("option name Book type string default %s", lo.Ternary(p.opts.Book == "", "<empty>", p.opts.Book)))
	p.println(fmt.Sprintf("option name Debug type check default %v", p.opts.Debug))
	p.println("ckpok")
}

// handleNewGame sets up an empty board.
// Format: newgame <width> <height> <k> <g|n>
func (p *CKP) handleNewGame(args []string) error {
	if len(args) != 4 {
		return fmt.Errorf("newgame: want <width> <height> <k> <g|n>, got %d arguments", len(args))
	}
	g, err := board.ParseNotation(fmt.Sprintf("%sx%s:%s:%s", args[0], args[1], args[2], args[3]))
	if err != nil {
		return fmt.Errorf("newgame: %w", err)
	}
	p.handleStop()
	p.engine.Clear()
	p.position = g
	return nil
}

// handlePosition parses and sets up a position.
// Formats:
//   - position empty
//   - position empty moves 3 4 3
//   - position <notation>
//   - position <notation> moves 2,2 3,3
func (p *CKP) handlePosition(args []string) error {
	if len(args) == 0 {
		return errors.New("position: missing notation")
	}

	moveStart := lo.IndexOf(args, "moves")
	spec := args
	if moveStart >= 0 {
		spec = args[:moveStart]
	}

	var g *board.Grid
	var err error
	if len(spec) == 1 && spec[0] == "empty" {
		cur := p.position
		g, err = board.NewGrid(cur.Width(), cur.Height(), cur.K(), cur.Gravity())
	} else {
		g, err = board.ParseNotation(strings.Join(spec, " "))
	}
	if err != nil {
		return fmt.Errorf("position: %w", err)
	}

	if moveStart >= 0 {
		for _, tok := range args[moveStart+1:] {
			m, err := board.ParseMove(tok, g.Gravity())
			if err != nil {
				return fmt.Errorf("position: %w", err)
			}
			if g, err = g.Play(m, g.SideToMove()); err != nil {
				return fmt.Errorf("position: %w", err)
			}
		}
	}

	p.position = g
	p.logger.Debug().Str("notation", g.Notation()).Msg("position set")
	return nil
}

// GoOptions holds parsed "go" command options.
type GoOptions struct {
	Depth    int
	MoveTime time.Duration
	Infinite bool
}

func parseGoOptions(args []string) (GoOptions, error) {
	var opts GoOptions
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "infinite":
			opts.Infinite = true
		case "depth", "movetime":
			if i+1 >= len(args) {
				return opts, fmt.Errorf("go: %s needs a value", args[i])
			}
			n, err := strconv.Atoi(args[i+1])
			if err != nil || n < 0 {
				return opts, fmt.Errorf("go: bad %s %q", args[i], args[i+1])
			}
			if args[i] == "depth" {
				opts.Depth = n
			} else {
				opts.MoveTime = time.Duration(n) * time.Millisecond
			}
			i++
		default:
			return opts, fmt.Errorf("go: unknown option %q", args[i])
		}
	}
	return opts, nil
}

// limits combines go options with the session defaults.
func (p *CKP) limits(opts GoOptions) engine.SearchLimits {
	limits := engine.SearchLimits{
		MoveTime:     p.opts.MoveTime,
		Depth:        p.opts.Depth,
		SafetyMargin: p.opts.SafetyMargin,
	}
	if opts.Infinite {
		limits.MoveTime = 0
		limits.Depth = 0
		return limits
	}
	if opts.MoveTime > 0 {
		limits.MoveTime = opts.MoveTime
	}
	if opts.Depth > 0 {
		limits.Depth = opts.Depth
		if opts.MoveTime == 0 {
			limits.MoveTime = 0
		}
	}
	return limits
}

// handleGo starts a search in the background. The best move is printed
// when it finishes or is stopped.
func (p *CKP) handleGo(ctx context.Context, args []string) error {
	opts, err := parseGoOptions(args)
	if err != nil {
		return err
	}
	pos := p.position
	if pos.Result().Over() {
		return fmt.Errorf("go: game is over (%s)", pos.Result())
	}
	p.handleStop()

	limits := p.limits(opts)
	side := pos.SideToMove()
	gravity := pos.Gravity()

	if !opts.Infinite {
		if m, ok := p.book.Probe(pos); ok {
			p.logger.Debug().Str("move", m.String()).Msg("book move")
			p.println("info string book move")
			p.println("bestmove " + m.Format(gravity))
			return nil
		}
	}

	p.engine.OnInfo = func(info engine.SearchInfo) {
		p.sendInfo(info, gravity)
	}

	logger := p.logger
	eng := p.engine
	sctx, cancel := context.WithCancel(logger.WithContext(ctx))
	p.cancel = cancel
	p.infinite = opts.Infinite
	done := make(chan struct{})
	p.searchDone = done

	go func() {
		defer close(done)
		move := eng.ChooseMove(sctx, pos, side, limits)
		if _, ok := pos.Resolve(move); !ok {
			logger.Warn().Str("move", move.String()).Msg("search returned an unplayable move")
			fmt.Fprintf(p.errOut, "info string search returned unplayable move %s\n", move)
			p.println("bestmove none")
			return
		}
		p.println("bestmove " + move.Format(gravity))
	}()
	return nil
}

// sendInfo outputs search info in CKP format.
func (p *CKP) sendInfo(info engine.SearchInfo, gravity bool) {
	parts := []string{
		fmt.Sprintf("depth %d", info.Depth),
		fmt.Sprintf("score %d", info.Score),
		fmt.Sprintf("nodes %d", info.Nodes),
		fmt.Sprintf("time %d", info.Time.Milliseconds()),
	}
	if info.Fill > 0 {
		parts = append(parts, fmt.Sprintf("cachefull %d", info.Fill))
	}
	parts = append(parts, "move "+info.Move.Format(gravity))
	p.println("info " + strings.Join(parts, " "))
}

// handleStop cancels the running search and waits for its bestmove.
func (p *CKP) handleStop() {
	if p.cancel == nil {
		return
	}
	p.cancel()
	<-p.searchDone
	p.cancel = nil
	p.infinite = false
}

// Wait blocks until the running search, if any, has printed its move.
func (p *CKP) Wait() {
	if p.searchDone != nil {
		<-p.searchDone
	}
}

// handleSetOption processes "setoption name <name> value <value>".
func (p *CKP) handleSetOption(args []string) error {
	var name, value []string
	var cur *[]string
	for _, arg := range args {
		switch arg {
		case "name":
			cur = &name
		case "value":
			cur = &value
		default:
			if cur != nil {
				*cur = append(*cur, arg)
			}
		}
	}
	n, v := strings.Join(name, " "), strings.Join(value, " ")

	switch strings.ToLower(n) {
	case "movetime":
		ms, err := optionInt(n, v, 1)
		if err != nil {
			return err
		}
		p.opts.MoveTime = time.Duration(ms) * time.Millisecond
	case "depth":
		d, err := optionInt(n, v, 0)
		if err != nil {
			return err
		}
		p.opts.Depth = d
	case "safetymargin":
		ms, err := optionInt(n, v, 0)
		if err != nil {
			return err
		}
		p.opts.SafetyMargin = time.Duration(ms) * time.Millisecond
		if ms == 0 {
			// zero would fall back to the default margin
			p.opts.SafetyMargin = time.Nanosecond
		}
	case "evalcache":
		mb, err := optionInt(n, v, 0)
		if err != nil {
			return err
		}
		p.handleStop()
		p.opts.EvalCacheMB = mb
		p.engine = engine.NewEngine(mb)
	case "book":
		if v == "" || v == "<empty>" {
			p.opts.Book, p.book = "", nil
			return nil
		}
		return p.loadBook(v)
	case "debug":
		p.opts.Debug = strings.EqualFold(v, "true")
		p.applyDebug()
	default:
		return fmt.Errorf("setoption: unknown option %q", n)
	}
	return nil
}

func (p *CKP) loadBook(path string) error {
	b, err := book.Load(path)
	if err != nil {
		return fmt.Errorf("book %s: %w", path, err)
	}
	p.opts.Book, p.book = path, b
	p.logger.Info().Str("path", path).Int("positions", b.Size()).Msg("opening book loaded")
	return nil
}

func optionInt(name, value string, floor int) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil || n < floor {
		return 0, fmt.Errorf("setoption: bad value %q for %s", value, name)
	}
	return n, nil
}

func (p *CKP) applyDebug() {
	if p.opts.Debug {
		p.logger = p.logger.Level(zerolog.DebugLevel)
	} else if p.logger.GetLevel() < zerolog.InfoLevel {
		p.logger = p.logger.Level(zerolog.InfoLevel)
	}
}

func (p *CKP) println(s string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, s)
}
