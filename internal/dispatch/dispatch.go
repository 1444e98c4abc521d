// Released under an MIT license. See LICENSE.

// Package dispatch maps verbs to handlers and coordinates expression
// evaluation, flow control, the pattern engine, and the block device
// to execute one command sequence at a time. Handlers are looked up in
// a flat "verb name -> handler function" map and driven straight off
// the shared character cursor, since commands are a semicolon
// separated verb sequence rather than a parsed tree.
package dispatch

import (
	"fmt"
	"io"
	"strings"

	"github.com/samiam95124/diskdiagnostic/internal/breaksig"
	"github.com/samiam95124/diskdiagnostic/internal/builtins"
	"github.com/samiam95124/diskdiagnostic/internal/control"
	"github.com/samiam95124/diskdiagnostic/internal/cursor"
	"github.com/samiam95124/diskdiagnostic/internal/device"
	"github.com/samiam95124/diskdiagnostic/internal/diagerr"
	"github.com/samiam95124/diskdiagnostic/internal/eval"
	"github.com/samiam95124/diskdiagnostic/internal/outcome"
	"github.com/samiam95124/diskdiagnostic/internal/pager"
	"github.com/samiam95124/diskdiagnostic/internal/pattern"
	"github.com/samiam95124/diskdiagnostic/internal/program"
	"github.com/samiam95124/diskdiagnostic/internal/sector"
	"github.com/samiam95124/diskdiagnostic/internal/stats"
	"github.com/samiam95124/diskdiagnostic/internal/vars"
)

// Version is the banner string printed at startup and by the version
// verb.
const Version = "discdiag 1.0"

// Engine holds every subsystem the dispatcher coordinates, and the
// transient per-process state: the write protect and exit-on-error
// flags, and the cached size of the current drive.
type Engine struct {
	Program  *program.T
	Vars     *vars.Stack
	Interp   *control.Stack
	Loops    *control.LoopStack
	Device   device.T
	Builtins *builtins.T
	WriteBuf *sector.Buffer
	ReadBuf  *sector.Buffer
	Stats    *stats.T
	Pager    *pager.T
	Break    *breaksig.T
	Out      io.Writer

	Policy       *pattern.MismatchPolicy
	WriteProtect bool
	ExitOnError  bool

	// DriveSize is the current drive's capacity in sectors, cached by
	// the drive verb; valid only while a current drive is set.
	DriveSize int64

	lastErrored bool
}

// New creates an engine with fresh subsystem state over dev, with
// bufSectors-sector I/O buffers (NOSECS).
func New(dev device.T, bufSectors int, out io.Writer) *Engine {
	v := vars.New()

	e := &Engine{
		Program:      program.New(),
		Vars:         v,
		Loops:        control.NewLoopStack(),
		Device:       dev,
		Builtins:     builtins.New(dev, bufSectors),
		WriteBuf:     sector.NewBuffer(bufSectors),
		ReadBuf:      sector.NewBuffer(bufSectors),
		Stats:        &stats.T{},
		Pager:        pager.New(out),
		Break:        breaksig.New(),
		Out:          out,
		WriteProtect: true,
	}
	e.Policy = pattern.NewMismatchPolicy(func(line string) { e.println(line) })
	e.Interp = control.NewStack(v.Mark())

	return e
}

func (e *Engine) println(s string) {
	fmt.Fprintln(e.Out, s)
}

// checkBreak samples and clears the break flag.
func (e *Engine) checkBreak() bool {
	return e.Break.Check()
}

// RunLine executes one line of REPL input: if it begins (after
// optional leading whitespace) with a decimal integer it is an edit of
// the stored program; otherwise it is an immediate command sequence,
// timed and reported.
func (e *Engine) RunLine(line string) outcome.T {
	// A break raised while the line was being entered cancels nothing;
	// consume it so it cannot abort the command just typed.
	e.checkBreak()

	if n, rest, ok := parseLineEdit(line); ok {
		e.editProgram(n, rest)
		return outcome.Ok
	}

	window := stats.Begin(e.Stats)

	e.Interp.SetImmediateText(line)

	o := e.run()

	e.println(window.Report())

	return o
}

// LastErrored reports whether the most recently completed top-level
// command failed, used by main to compute the process exit status.
func (e *Engine) LastErrored() bool {
	return e.lastErrored
}

func parseLineEdit(line string) (n int, rest string, ok bool) {
	t := strings.TrimLeft(line, " \t")

	i := 0
	for i < len(t) && t[i] >= '0' && t[i] <= '9' {
		i++
	}

	if i == 0 {
		return 0, "", false
	}

	val := 0
	for j := 0; j < i; j++ {
		val = val*10 + int(t[j]-'0')
	}

	return val, strings.TrimLeft(t[i:], " \t"), true
}

func (e *Engine) editProgram(n int, rest string) {
	if rest == "" {
		e.Program.Delete(n)
		return
	}

	e.Program.Insert(n, rest)
}

// run drives the interpreter stack until the sentinel frame's text is
// exhausted with the stack back at depth 1, or a non-continuing
// outcome is produced.
func (e *Engine) run() outcome.T {
	e.lastErrored = false

	for {
		if e.checkBreak() {
			e.unwindToImmediate()

			if e.ExitOnError {
				return outcome.Exit
			}

			return outcome.Stop
		}

		frame := e.Interp.Top()

		if frame.Cursor >= len(frame.Text) {
			if !e.fallThroughOrPop(frame) {
				return outcome.Ok
			}

			continue
		}

		c := cursor.New(frame.Text)
		c.SetPos(frame.Cursor)
		c.SkipWS()

		if c.AtEnd() {
			frame.Cursor = c.Pos()
			continue
		}

		if c.Peek() == ';' {
			c.Next()
			frame.Cursor = c.Pos()

			continue
		}

		if c.Peek() == '!' {
			frame.Cursor = len(frame.Text)
			continue
		}

		verbStart := c.Pos()
		verb := c.TakeWord()

		o, err, moved := e.dispatchVerb(verb, c, frame, verbStart)

		if !moved {
			c.SkipWS()
			frame.Cursor = c.Pos()
		}

		switch o {
		case outcome.Ok, outcome.Continue:
			continue
		case outcome.Restart:
			frame.Cursor = 0
			continue
		case outcome.Error:
			e.lastErrored = true

			e.println(err.Error())

			e.unwindToImmediate()

			if e.ExitOnError {
				return outcome.Exit
			}

			return outcome.Stop
		case outcome.Exit:
			e.unwindToImmediate()

			return outcome.Exit
		case outcome.Stop:
			e.unwindToImmediate()

			return outcome.Stop
		default:
			continue
		}
	}
}

// unwindToImmediate drains the interpreter and loop stacks back to
// immediate mode, destroying every variable pushed by the abandoned
// calls along the way; a procedure that never reaches its end must
// still leave the variables stack as it was at entry.
func (e *Engine) unwindToImmediate() {
	if mark, ok := e.Interp.ResetToImmediate(); ok {
		e.Vars.Pop(mark)
	}

	e.Loops.Clear()
}

// fallThroughOrPop is called when the current frame's text is
// exhausted. For a called frame (Line != nil) it tries to advance to
// the physically next stored program line; if none remains it pops
// the frame exactly as "end" would, so running off the end of the
// program always terminates execution, draining the stack if need be.
// It returns false when the whole command is finished (back at the
// sentinel with nothing left).
func (e *Engine) fallThroughOrPop(frame *control.Frame) bool {
	if frame.Line != nil {
		idx := e.Program.Index(frame.Line)
		if idx > 0 {
			if next := e.Program.Line(idx + 1); next != nil {
				frame.Line = next
				frame.Text = next.Text
				frame.Cursor = 0

				return true
			}
		}

		if e.Interp.Depth() == 1 {
			frame.Line = nil
			frame.Text = ""
			frame.Cursor = 0

			return false
		}

		popped := e.Interp.Pop()
		e.Vars.Pop(popped.Mark)
		e.Loops.TruncateTo(popped.LoopMark)

		return true
	}

	return false
}

// dispatchVerb looks up verb (first a program label, then the
// built-in table) and runs it. moved reports whether the handler
// already repositioned the interpreter frame itself (procedure call,
// go, loop entry/skip), in which case the caller must not also sync
// the cursor from c.
func (e *Engine) dispatchVerb(verb string, c *cursor.T, frame *control.Frame, verbStart int) (outcome.T, error, bool) {
	if verb == "" {
		return outcome.Ok, nil, false
	}

	if line := e.Program.Lookup(verb); line != nil {
		return e.callProcedure(line, c, frame)
	}

	h, ok := verbTable[verb]
	if !ok {
		return outcome.Error, diagerr.New(diagerr.Name, "Verb %q invalid", verb), false
	}

	return h(e, c, verbStart)
}

// callProcedure evaluates arguments in the caller's scope, pushes
// them as locals in parameter order, then transfers control to the
// labeled line.
func (e *Engine) callProcedure(line *program.Line, c *cursor.T, caller *control.Frame) (outcome.T, error, bool) {
	args := make([]int64, 0, len(line.Params))

	for range line.Params {
		c.SkipWS()

		v, err := eval.Eval(c, e.Builtins, e.Vars)
		if err != nil {
			return outcome.Error, err, false
		}

		args = append(args, v)
	}

	c.SkipWS()
	caller.Cursor = c.Pos()

	mark := e.Vars.Mark()

	for i, p := range line.Params {
		e.Vars.Local(p, args[i])
	}

	e.Interp.Push(&control.Frame{Line: line, Text: line.Text, Cursor: 0, Mark: mark, LoopMark: e.Loops.Depth()})

	return outcome.Ok, nil, true
}

func (e *Engine) evalExpr(c *cursor.T) (int64, error) {
	return eval.Eval(c, e.Builtins, e.Vars)
}

// checkBreakDuring is the hook pattern.Compare uses, sampling the
// break flag between bytes.
func (e *Engine) checkBreakDuring() bool {
	return e.checkBreak()
}
