// Released under an MIT license. See LICENSE.

package dispatch

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/samiam95124/diskdiagnostic/internal/cursor"
	"github.com/samiam95124/diskdiagnostic/internal/diagerr"
	"github.com/samiam95124/diskdiagnostic/internal/outcome"
	"github.com/samiam95124/diskdiagnostic/internal/program"
	"github.com/samiam95124/diskdiagnostic/internal/rng"
)

func vExit(e *Engine, _ *cursor.T, _ int) (outcome.T, error, bool) {
	return outcome.Exit, nil, false
}

func vExitOnError(e *Engine, _ *cursor.T, _ int) (outcome.T, error, bool) {
	e.ExitOnError = true
	return outcome.Ok, nil, false
}

func vInput(e *Engine, c *cursor.T, verbStart int) (outcome.T, error, bool) {
	c.SkipWS()

	name := c.TakeIdentifier()
	if name == "" {
		return outcome.Error, diagerr.New(diagerr.Syntax, "expected variable name"), false
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return outcome.Error, diagerr.New(diagerr.IO, "%v", err), false
	}

	ic := cursor.New(strings.TrimRight(line, "\r\n"))
	ic.SkipWS()

	v, err := e.evalExpr(ic)
	if err != nil {
		return outcome.Error, err, false
	}

	e.Vars.Set(name, v)

	return outcome.Ok, nil, false
}

func vSrand(e *Engine, _ *cursor.T, _ int) (outcome.T, error, bool) {
	rng.Global.SetSeed(rng.ResetSeed)
	return outcome.Ok, nil, false
}

func vList(e *Engine, _ *cursor.T, _ int) (outcome.T, error, bool) {
	e.Program.Each(func(n int, line *program.Line) bool {
		e.println(fmt.Sprintf("%d: %s", n, renderLine(line)))
		return true
	})

	return outcome.Ok, nil, false
}

// renderLine renders a stored line back to its textual form, the same
// shape save/load round-trips.
func renderLine(l *program.Line) string {
	if l.Label == "" {
		return l.Text
	}

	if l.Params == nil {
		return l.Label + ": " + l.Text
	}

	return l.Label + "(" + strings.Join(l.Params, " ") + "): " + l.Text
}

func vClear(e *Engine, _ *cursor.T, _ int) (outcome.T, error, bool) {
	e.Program.Clear()
	return outcome.Ok, nil, false
}

func vSave(e *Engine, c *cursor.T, verbStart int) (outcome.T, error, bool) {
	c.SkipWS()

	name := c.TakeWord()
	if name == "" {
		return outcome.Error, diagerr.New(diagerr.Syntax, "expected file name"), false
	}

	if err := os.WriteFile(name, []byte(e.Program.Save()+"\n"), 0o644); err != nil {
		return outcome.Error, diagerr.New(diagerr.IO, "%v", err), false
	}

	return outcome.Ok, nil, false
}

func vLoad(e *Engine, c *cursor.T, verbStart int) (outcome.T, error, bool) {
	c.SkipWS()

	name := c.TakeWord()
	if name == "" {
		return outcome.Error, diagerr.New(diagerr.Syntax, "expected file name"), false
	}

	data, err := os.ReadFile(name)
	if err != nil {
		return outcome.Error, diagerr.New(diagerr.IO, "%v", err), false
	}

	e.Program.Load(string(data))

	return outcome.Ok, nil, false
}

func vDelt(e *Engine, c *cursor.T, verbStart int) (outcome.T, error, bool) {
	c.SkipWS()

	n, err := e.evalExpr(c)
	if err != nil {
		return outcome.Error, err, false
	}

	e.Program.Delete(int(n))

	return outcome.Ok, nil, false
}

func vEnd(e *Engine, _ *cursor.T, _ int) (outcome.T, error, bool) {
	if e.Interp.Depth() <= 1 {
		return outcome.Error, diagerr.New(diagerr.Fatal, "interpreter stack underflow"), false
	}

	popped := e.Interp.Pop()
	e.Vars.Pop(popped.Mark)
	e.Loops.TruncateTo(popped.LoopMark)

	return outcome.Ok, nil, true
}

func vGo(e *Engine, c *cursor.T, verbStart int) (outcome.T, error, bool) {
	c.SkipWS()

	label := c.TakeIdentifier()
	if label == "" {
		return outcome.Error, diagerr.New(diagerr.Syntax, "expected label"), false
	}

	line := e.Program.Lookup(label)
	if line == nil {
		return outcome.Error, diagerr.New(diagerr.Name, "Label %q invalid", label), false
	}

	frame := e.Interp.Top()
	frame.Line = line
	frame.Text = line.Text
	frame.Cursor = 0

	return outcome.Ok, nil, true
}

func vIf(e *Engine, c *cursor.T, verbStart int) (outcome.T, error, bool) {
	c.SkipWS()

	v, err := e.evalExpr(c)
	if err != nil {
		return outcome.Error, err, false
	}

	if v == 0 {
		frame := e.Interp.Top()
		frame.Cursor = len(frame.Text)

		return outcome.Ok, nil, true
	}

	return outcome.Ok, nil, false
}

func vSet(e *Engine, c *cursor.T, verbStart int) (outcome.T, error, bool) {
	c.SkipWS()

	name := c.TakeIdentifier()
	if name == "" {
		return outcome.Error, diagerr.New(diagerr.Syntax, "expected variable name"), false
	}

	c.SkipWS()

	v, err := e.evalExpr(c)
	if err != nil {
		return outcome.Error, err, false
	}

	e.Vars.Set(name, v)

	return outcome.Ok, nil, false
}

func vLocal(e *Engine, c *cursor.T, verbStart int) (outcome.T, error, bool) {
	c.SkipWS()

	name := c.TakeIdentifier()
	if name == "" {
		return outcome.Error, diagerr.New(diagerr.Syntax, "expected variable name"), false
	}

	c.SkipWS()

	v, err := e.evalExpr(c)
	if err != nil {
		return outcome.Error, err, false
	}

	e.Vars.Local(name, v)

	return outcome.Ok, nil, false
}

func vVersion(e *Engine, _ *cursor.T, _ int) (outcome.T, error, bool) {
	e.println(Version)
	return outcome.Ok, nil, false
}

// helpGroups orders the registry's verbs by the part of the program
// they drive. Names absent from verbTable are dropped at print time so
// the summary cannot drift from the implemented set.
var helpGroups = []struct {
	title string
	verbs []string
}{
	{"i/o", []string{"read", "r", "write", "w", "drive", "listdrives", "ld", "unprot"}},
	{"pattern", []string{"pattn", "pt", "comp", "c", "compmode", "cm", "dumpwrite", "dw", "dumpread", "dr", "srand"}},
	{"flow", []string{"if", "go", "end", "loop", "l", "loopq", "lq", "u", "while", "wend", "repeat", "until", "for", "fend", "select", "case", "default", "send"}},
	{"program", []string{"list", "clear", "save", "load", "delt"}},
	{"misc", []string{"p", "print", "pn", "printn", "echo", "echon", "set", "s", "local", "input", "i", "exit", "exitonerror", "version", "help", "?", "stat"}},
}

func vHelp(e *Engine, _ *cursor.T, _ int) (outcome.T, error, bool) {
	listed := map[string]bool{}

	for _, g := range helpGroups {
		names := make([]string, 0, len(g.verbs))

		for _, n := range g.verbs {
			if _, ok := verbTable[n]; ok {
				names = append(names, n)
				listed[n] = true
			}
		}

		e.println(g.title + ": " + strings.Join(names, " "))
	}

	// Anything registered but not yet grouped still gets shown.
	var extra []string

	for name := range verbTable {
		if !listed[name] {
			extra = append(extra, name)
		}
	}

	if len(extra) > 0 {
		sort.Strings(extra)
		e.println("other: " + strings.Join(extra, " "))
	}

	return outcome.Ok, nil, false
}

func vStat(e *Engine, _ *cursor.T, _ int) (outcome.T, error, bool) {
	s := e.Stats

	e.println(fmt.Sprintf(
		"IOR: %d IOW: %d BR: %d BW: %d",
		s.IOPRead, s.IOPWrite, s.ByteRead, s.ByteWrite,
	))

	return outcome.Ok, nil, false
}
