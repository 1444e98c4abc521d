// Released under an MIT license. See LICENSE.

// Package pager provides discdiag's screen pager: it pauses voluminous
// output every screenful of lines and honors the break flag.
package pager

import (
	"bufio"
	"fmt"
	"io"
)

// DefaultHeight is the number of lines printed before the pager pauses.
const DefaultHeight = 23

// T pages output written through Println/Printf, prompting for
// "more" every Height lines.
type T struct {
	Out    io.Writer
	Height int

	// Prompt reads one line from the user after the pause message; it
	// returns ok=false if the user asked to stop paging (e.g. 'q'), and
	// brk reports whether a break was sampled while waiting.
	Prompt func() (ok bool, brk bool)

	lines  int
	paging bool
}

// New creates a pager writing to out.
func New(out io.Writer) *T {
	return &T{Out: out, Height: DefaultHeight, paging: true}
}

// SetPaging enables or disables pausing; dumps that the caller knows
// are short can disable it.
func (p *T) SetPaging(on bool) {
	p.paging = on
}

// Println writes one line, pausing for "more" every Height lines. It
// returns false if the caller should stop producing further output
// (user quit the pager or a break was sampled).
func (p *T) Println(line string) bool {
	fmt.Fprintln(p.Out, line)

	if !p.paging || p.Height <= 0 {
		return true
	}

	p.lines++
	if p.lines < p.Height {
		return true
	}

	p.lines = 0

	if p.Prompt == nil {
		return true
	}

	fmt.Fprint(p.Out, "*** Hit return to continue ***")

	ok, brk := p.Prompt()

	return ok && !brk
}

// Lines writes each of lines through Println, stopping early if
// Println reports the caller should stop.
func (p *T) Lines(lines []string) bool {
	for _, l := range lines {
		if !p.Println(l) {
			return false
		}
	}

	return true
}

// NewPrompter builds a Prompt function that reads a single line from r
// and reports ok=false if it is "q" (quit paging), checking brk via
// the supplied break-check function.
func NewPrompter(r *bufio.Reader, checkBreak func() bool) func() (bool, bool) {
	return func() (bool, bool) {
		if checkBreak != nil && checkBreak() {
			return false, true
		}

		line, _ := r.ReadString('\n')

		return line != "q\n" && line != "q", false
	}
}
