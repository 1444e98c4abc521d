// Released under an MIT license. See LICENSE.

package dispatch

import (
	"fmt"

	"github.com/samiam95124/diskdiagnostic/internal/cursor"
	"github.com/samiam95124/diskdiagnostic/internal/diagerr"
	"github.com/samiam95124/diskdiagnostic/internal/format"
	"github.com/samiam95124/diskdiagnostic/internal/outcome"
)

func vPrint(e *Engine, c *cursor.T, verbStart int) (outcome.T, error, bool) {
	return e.print(c, true)
}

func vPrintN(e *Engine, c *cursor.T, verbStart int) (outcome.T, error, bool) {
	return e.print(c, false)
}

// print implements p/print and pn/printn: an optional double-quoted
// format string followed by a whitespace-separated list of
// expressions.
func (e *Engine) print(c *cursor.T, newline bool) (outcome.T, error, bool) {
	c.SkipWS()

	var spec string

	hasSpec := false

	if c.Peek() == '"' {
		s, ok := c.TakeQuotedString()
		if !ok {
			return outcome.Error, unterminatedFormat(), false
		}

		spec = s
		hasSpec = true
	}

	var args []int64

	for {
		c.SkipWS()

		if c.AtEnd() || c.Peek() == ';' {
			break
		}

		v, err := e.evalExpr(c)
		if err != nil {
			return outcome.Error, err, false
		}

		args = append(args, v)
	}

	var out string

	if hasSpec {
		out = format.Render(spec, args)
	} else if len(args) > 0 {
		out = decimalJoin(args)
	}

	if newline {
		fmt.Fprintln(e.Out, out)
	} else {
		fmt.Fprint(e.Out, out)
	}

	return outcome.Ok, nil, false
}

func decimalJoin(args []int64) string {
	s := ""

	for i, v := range args {
		if i > 0 {
			s += " "
		}

		s += intToString(v)
	}

	return s
}

func vEcho(e *Engine, c *cursor.T, verbStart int) (outcome.T, error, bool) {
	fmt.Fprintln(e.Out, takeToSemicolon(c))
	return outcome.Ok, nil, false
}

func vEchoN(e *Engine, c *cursor.T, verbStart int) (outcome.T, error, bool) {
	fmt.Fprint(e.Out, takeToSemicolon(c))
	return outcome.Ok, nil, false
}

// takeToSemicolon consumes and returns everything from c (past any
// leading whitespace) up to, not including, the next ';', or the rest
// of the text if none.
func takeToSemicolon(c *cursor.T) string {
	c.SkipWS()

	start := c.Pos()

	for !c.AtEnd() && c.Peek() != ';' {
		c.Next()
	}

	return c.Text()[start:c.Pos()]
}

func unterminatedFormat() error {
	return diagerr.New(diagerr.Syntax, "unterminated format string")
}
