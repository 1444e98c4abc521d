// Released under an MIT license. See LICENSE.

package dispatch

import (
	"github.com/samiam95124/diskdiagnostic/internal/cursor"
	"github.com/samiam95124/diskdiagnostic/internal/diagerr"
	"github.com/samiam95124/diskdiagnostic/internal/outcome"
	"github.com/samiam95124/diskdiagnostic/internal/pattern"
)

func vCompMode(e *Engine, c *cursor.T, verbStart int) (outcome.T, error, bool) {
	c.SkipWS()

	switch c.TakeWord() {
	case "all":
		e.Policy.Mode = pattern.ModeAll
	case "one":
		e.Policy.Mode = pattern.ModeOne
	case "fail":
		e.Policy.Mode = pattern.ModeFail
	default:
		return outcome.Error, diagerr.New(diagerr.Name, "mode not recognized"), false
	}

	return outcome.Ok, nil, false
}

func vPattern(e *Engine, c *cursor.T, verbStart int) (outcome.T, error, bool) {
	name := optionalWord(c)
	if name == "" {
		name = pattern.Cnt
	}

	val, err := e.optionalArg(c, 0)
	if err != nil {
		return outcome.Error, err, false
	}

	length, err := e.optionalArg(c, int64(e.WriteBuf.Count()))
	if err != nil {
		return outcome.Error, err, false
	}

	if int(length) > e.WriteBuf.Count() {
		return outcome.Error, diagerr.New(diagerr.Bounds, "length %d exceeds buffer", length), false
	}

	if err := pattern.Generate(e.WriteBuf, name, val, int(length)); err != nil {
		return outcome.Error, err, false
	}

	return outcome.Ok, nil, false
}

func vCompare(e *Engine, c *cursor.T, verbStart int) (outcome.T, error, bool) {
	name := optionalWord(c)
	if name == "" {
		name = pattern.Cnt
	}

	val, err := e.optionalArg(c, 0)
	if err != nil {
		return outcome.Error, err, false
	}

	length, err := e.optionalArg(c, int64(e.ReadBuf.Count()))
	if err != nil {
		return outcome.Error, err, false
	}

	if int(length) > e.ReadBuf.Count() {
		return outcome.Error, diagerr.New(diagerr.Bounds, "length %d exceeds buffer", length), false
	}

	// Generated patterns are verified where pattn deposits them, in the
	// write buffer; buffs checks what a read brought back against it.
	buf := e.WriteBuf
	if name == pattern.Buffs {
		buf = e.ReadBuf
	}

	o, err := pattern.Compare(buf, e.WriteBuf, name, val, int(length), e.Policy, e.checkBreakDuring, e.ExitOnError)
	if err != nil {
		return outcome.Error, err, false
	}

	return o, nil, false
}
