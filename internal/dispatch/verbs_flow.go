// Released under an MIT license. See LICENSE.

package dispatch

import (
	"github.com/samiam95124/diskdiagnostic/internal/control"
	"github.com/samiam95124/diskdiagnostic/internal/cursor"
	"github.com/samiam95124/diskdiagnostic/internal/diagerr"
	"github.com/samiam95124/diskdiagnostic/internal/outcome"
	"github.com/samiam95124/diskdiagnostic/internal/program"
)

// progLineSource walks the command stream a loop or select skip scans
// forward across: one semicolon-separated command at a time, falling
// through to the physically next stored program line when a line's
// commands run out. It implements control.LineSource.
type progLineSource struct {
	e    *Engine
	line *program.Line // nil in immediate mode
	text string
	pos  int // start of the current candidate command
}

func newProgLineSource(e *Engine, line *program.Line, text string, pos int) *progLineSource {
	return &progLineSource{e: e, line: line, text: text, pos: pos}
}

// Text returns the current candidate command, from pos up to the next
// ';' or the end of the line's text.
func (s *progLineSource) Text() string {
	end := s.pos
	for end < len(s.text) && s.text[end] != ';' {
		end++
	}

	return s.text[s.pos:end]
}

// Advance consumes the rest of the current command and positions pos
// at the next one, crossing semicolons and, when a line's text is
// exhausted, following to the physically next stored line. It returns
// false once there is nowhere left to go.
func (s *progLineSource) Advance() bool {
	for s.pos < len(s.text) && s.text[s.pos] != ';' {
		s.pos++
	}

	if s.pos < len(s.text) && s.text[s.pos] == ';' {
		s.pos++
	}

	for {
		for s.pos < len(s.text) && (s.text[s.pos] == ' ' || s.text[s.pos] == '\t') {
			s.pos++
		}

		if s.pos < len(s.text) {
			return true
		}

		if !s.advanceLine() {
			return false
		}
	}
}

func (s *progLineSource) advanceLine() bool {
	if s.line == nil {
		return false
	}

	idx := s.e.Program.Index(s.line)

	next := s.e.Program.Line(idx + 1)
	if next == nil {
		return false
	}

	s.line = next
	s.text = next.Text
	s.pos = 0

	return true
}

// Resume reports where execution should continue after SkipToTerminator
// finds a match: the line it now lives on (nil in immediate mode), that
// line's text, and the byte cursor just past the matched verb word.
func (s *progLineSource) Resume() (*program.Line, string, int) {
	_, end := control.LeadingVerbEnd(s.Text())
	return s.line, s.text, s.pos + end
}

// loopText is the text a LoopFrame's saved cursor addresses: the
// stored line's text if one backs it, or the current frame's
// (assumed-unchanged) immediate-mode text otherwise.
func loopText(frame *control.Frame, lf *control.LoopFrame) string {
	if lf.Line != nil {
		return lf.Line.Text
	}

	return frame.Text
}

func vWhile(e *Engine, c *cursor.T, verbStart int) (outcome.T, error, bool) {
	frame := e.Interp.Top()

	c.SkipWS()

	condStart := c.Pos()

	v, err := e.evalExpr(c)
	if err != nil {
		return outcome.Error, err, false
	}

	c.SkipWS()

	if v == 0 {
		src := newProgLineSource(e, frame.Line, frame.Text, c.Pos())

		if _, err := control.SkipToTerminator(src, "wend"); err != nil {
			return outcome.Error, err, false
		}

		line, text, pos := src.Resume()
		frame.Line = line
		frame.Text = text
		frame.Cursor = pos

		return outcome.Ok, nil, true
	}

	e.Loops.Push(&control.LoopFrame{Kind: control.KindWhile, Line: frame.Line, Cursor: condStart})
	frame.Cursor = c.Pos()

	return outcome.Ok, nil, true
}

func vWend(e *Engine, _ *cursor.T, verbStart int) (outcome.T, error, bool) {
	lf := e.Loops.Top()
	if lf == nil || lf.Kind != control.KindWhile {
		return outcome.Error, diagerr.New(diagerr.Flow, "No \"while\" is active"), false
	}

	frame := e.Interp.Top()
	text := loopText(frame, lf)

	rc := cursor.New(text)
	rc.SetPos(lf.Cursor)

	v, err := e.evalExpr(rc)
	if err != nil {
		return outcome.Error, err, false
	}

	if v != 0 {
		frame.Line = lf.Line
		frame.Text = text
		frame.Cursor = rc.Pos()

		return outcome.Ok, nil, true
	}

	e.Loops.Pop()

	return outcome.Ok, nil, false
}

func vRepeat(e *Engine, c *cursor.T, verbStart int) (outcome.T, error, bool) {
	frame := e.Interp.Top()
	e.Loops.Push(&control.LoopFrame{Kind: control.KindRepeat, Line: frame.Line, Cursor: c.Pos()})

	return outcome.Ok, nil, false
}

func vUntil(e *Engine, c *cursor.T, verbStart int) (outcome.T, error, bool) {
	lf := e.Loops.Top()
	if lf == nil || lf.Kind != control.KindRepeat {
		return outcome.Error, diagerr.New(diagerr.Flow, "No \"repeat\" is active"), false
	}

	c.SkipWS()

	v, err := e.evalExpr(c)
	if err != nil {
		return outcome.Error, err, false
	}

	if v == 0 {
		frame := e.Interp.Top()
		frame.Line = lf.Line
		frame.Text = loopText(frame, lf)
		frame.Cursor = lf.Cursor

		return outcome.Ok, nil, true
	}

	e.Loops.Pop()

	return outcome.Ok, nil, false
}

func vFor(e *Engine, c *cursor.T, verbStart int) (outcome.T, error, bool) {
	frame := e.Interp.Top()

	c.SkipWS()

	name := c.TakeIdentifier()
	if name == "" {
		return outcome.Error, diagerr.New(diagerr.Syntax, "expected loop variable"), false
	}

	c.SkipWS()

	start, err := e.evalExpr(c)
	if err != nil {
		return outcome.Error, err, false
	}

	c.SkipWS()

	endCursor := c.Pos()

	end, err := e.evalExpr(c)
	if err != nil {
		return outcome.Error, err, false
	}

	step, err := e.optionalArg(c, 1)
	if err != nil {
		return outcome.Error, err, false
	}

	c.SkipWS()

	e.Vars.Set(name, start)

	empty := (step >= 0 && start > end) || (step < 0 && start < end)
	if empty {
		src := newProgLineSource(e, frame.Line, frame.Text, c.Pos())

		if _, err := control.SkipToTerminator(src, "fend"); err != nil {
			return outcome.Error, err, false
		}

		line, text, pos := src.Resume()
		frame.Line = line
		frame.Text = text
		frame.Cursor = pos

		return outcome.Ok, nil, true
	}

	e.Loops.Push(&control.LoopFrame{
		Kind:      control.KindFor,
		Line:      frame.Line,
		Cursor:    c.Pos(),
		Var:       name,
		Step:      step,
		EndCursor: endCursor,
	})
	frame.Cursor = c.Pos()

	return outcome.Ok, nil, true
}

func vFend(e *Engine, _ *cursor.T, verbStart int) (outcome.T, error, bool) {
	lf := e.Loops.Top()
	if lf == nil || lf.Kind != control.KindFor {
		return outcome.Error, diagerr.New(diagerr.Flow, "No \"for\" is active"), false
	}

	frame := e.Interp.Top()
	text := loopText(frame, lf)

	cur, _ := e.Vars.Lookup(lf.Var)
	next := cur + lf.Step

	// The end bound may reference variables the body changes, so it is
	// re-evaluated from its saved cursor on every pass.
	ec := cursor.New(text)
	ec.SetPos(lf.EndCursor)

	end, err := e.evalExpr(ec)
	if err != nil {
		return outcome.Error, err, false
	}

	inRange := (lf.Step >= 0 && next <= end) || (lf.Step < 0 && next >= end)

	e.Vars.Set(lf.Var, next)

	if inRange {
		frame.Line = lf.Line
		frame.Text = text
		frame.Cursor = lf.Cursor

		return outcome.Ok, nil, true
	}

	e.Loops.Pop()

	return outcome.Ok, nil, false
}

// loopCounter backs l/loop and lq/loopq: both restart the current
// physical line from its beginning until their per-site counter
// reaches n, then fall through and reset. With no count the line
// restarts unconditionally, until a break. loop announces each
// iteration; loopq is the quiet form.
func loopCounter(e *Engine, c *cursor.T, verbStart int, announce bool) (outcome.T, error, bool) {
	n, err := e.optionalArg(c, -1)
	if err != nil {
		return outcome.Error, err, false
	}

	frame := e.Interp.Top()
	count := frame.IncCounter(verbStart)

	if announce {
		e.println("Iteration: " + intToString(int64(count)))
	}

	if n < 0 || int64(count) < n {
		return outcome.Restart, nil, false
	}

	frame.ResetCounter(verbStart)

	return outcome.Ok, nil, false
}

func vLoop(e *Engine, c *cursor.T, verbStart int) (outcome.T, error, bool) {
	return loopCounter(e, c, verbStart, true)
}

func vLoopQ(e *Engine, c *cursor.T, verbStart int) (outcome.T, error, bool) {
	return loopCounter(e, c, verbStart, false)
}

func vUntilRestart(e *Engine, c *cursor.T, verbStart int) (outcome.T, error, bool) {
	c.SkipWS()

	v, err := e.evalExpr(c)
	if err != nil {
		return outcome.Error, err, false
	}

	if v == 0 {
		return outcome.Restart, nil, false
	}

	return outcome.Ok, nil, false
}

// evalCaseList evaluates a comma-separated list of expressions at c,
// reporting whether any equals val.
func (e *Engine) evalCaseList(c *cursor.T, val int64) (bool, error) {
	matched := false

	for {
		c.SkipWS()

		v, err := e.evalExpr(c)
		if err != nil {
			return false, err
		}

		if v == val {
			matched = true
		}

		c.SkipWS()

		if c.Peek() == ',' {
			c.Next()
			continue
		}

		break
	}

	return matched, nil
}

// vSelect runs the entire case-matching scan itself: it evaluates the
// selector, then repeatedly skips forward to the next case, default,
// or send at this nesting level. A case whose value list contains the
// selector falls through into its body; default always falls through;
// send ends the construct without a match. The case/default/send verbs
// reached by the dispatcher afterward are only ever arrived at by
// falling off the end of a matched body.
func vSelect(e *Engine, c *cursor.T, verbStart int) (outcome.T, error, bool) {
	c.SkipWS()

	val, err := e.evalExpr(c)
	if err != nil {
		return outcome.Error, err, false
	}

	frame := e.Interp.Top()
	pos := c.Pos()

	for {
		src := newProgLineSource(e, frame.Line, frame.Text, pos)

		verb, err := control.SkipToTerminator(src, "case", "default", "send")
		if err != nil {
			return outcome.Error, err, false
		}

		line, text, cpos := src.Resume()

		if verb != "case" {
			// default falls through; send exits without a match.
			frame.Line, frame.Text, frame.Cursor = line, text, cpos
			return outcome.Ok, nil, true
		}

		cc := cursor.New(text)
		cc.SetPos(cpos)

		matched, err := e.evalCaseList(cc, val)
		if err != nil {
			return outcome.Error, err, false
		}

		frame.Line, frame.Text = line, text

		if matched {
			frame.Cursor = cc.Pos()
			return outcome.Ok, nil, true
		}

		pos = cc.Pos()
	}
}

// skipToSend advances past the rest of the select construct. A case or
// default reached by the dispatcher marks the end of the matched body,
// so everything up to the construct's send is skipped wholesale.
func (e *Engine) skipToSend(frame *control.Frame, pos int) (outcome.T, error, bool) {
	src := newProgLineSource(e, frame.Line, frame.Text, pos)

	if _, err := control.SkipToTerminator(src, "send"); err != nil {
		return outcome.Error, err, false
	}

	line, text, cpos := src.Resume()

	frame.Line, frame.Text, frame.Cursor = line, text, cpos

	return outcome.Ok, nil, true
}

func vCase(e *Engine, c *cursor.T, verbStart int) (outcome.T, error, bool) {
	return e.skipToSend(e.Interp.Top(), c.Pos())
}

func vDefault(e *Engine, c *cursor.T, verbStart int) (outcome.T, error, bool) {
	return e.skipToSend(e.Interp.Top(), c.Pos())
}

// vSend marks the end of a select series; select and skipToSend do all
// the real work, so reaching one in sequence is a no-op.
func vSend(e *Engine, _ *cursor.T, verbStart int) (outcome.T, error, bool) {
	return outcome.Ok, nil, false
}
