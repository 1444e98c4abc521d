// Released under an MIT license. See LICENSE.

package control

import (
	"strings"

	"github.com/samiam95124/diskdiagnostic/internal/diagerr"
)

// closerFor pairs each nesting opener verb with the closer that ends
// its construct. The skip scan keeps one counter per construct so an
// inner loop's terminator never satisfies an outer search.
var closerFor = map[string]string{
	"while":  "wend",
	"repeat": "until",
	"for":    "fend",
	"select": "send",
}

var openerFor = map[string]string{
	"wend":  "while",
	"until": "repeat",
	"fend":  "for",
	"send":  "select",
}

// LineSource lets SkipToTerminator walk forward across the command
// stream one command at a time without the control package needing to
// know how program lines are stored.
type LineSource interface {
	// Text returns the full text of the current command.
	Text() string
	// Advance moves to the next command. It returns false when there is
	// no further command (off the end of the program or input).
	Advance() bool
}

// leadingVerb returns the first whitespace-delimited word of a
// command's text, skipping a leading "label:" if present. Blank
// commands and comments (starting with !) yield "".
func leadingVerb(text string) string {
	verb, _ := LeadingVerbEnd(text)
	return verb
}

// LeadingVerbEnd returns the first whitespace-delimited word of a
// command's text and the byte offset in text immediately following
// it, skipping a leading "label:" or "label(params):" prefix first.
// Blank commands and comments (starting with !) yield ("", 0).
// Exported so the dispatcher can position a cursor right after a
// terminator verb SkipToTerminator just matched.
func LeadingVerbEnd(text string) (verb string, end int) {
	start := 0
	for start < len(text) && (text[start] == ' ' || text[start] == '\t') {
		start++
	}

	if start >= len(text) || text[start] == '!' {
		return "", 0
	}

	if colon := strings.IndexByte(text[start:], ':'); colon >= 0 {
		label := text[start : start+colon]
		if isLabelToken(label) {
			start += colon + 1
			for start < len(text) && (text[start] == ' ' || text[start] == '\t') {
				start++
			}
		}
	}

	wend := start
	for wend < len(text) && text[wend] != ' ' && text[wend] != '\t' {
		wend++
	}

	return text[start:wend], wend
}

func isLabelToken(s string) bool {
	if s == "" {
		return false
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')) {
			return false
		}
	}

	return true
}

// SkipToTerminator advances src command by command looking for one of
// terminators, keeping a per-construct nesting counter for each of
// while, repeat, for, and select. A closer verb consumes an open
// nesting level of its own construct before it can match; an excess
// closer with no matching opener is treated as a no-op rather than a
// failure (at that point the program is playing games with nesting and
// the scan keeps its own books consistent). Any terminator is accepted
// only with every counter at zero.
//
// It returns the matched terminator verb. If src runs out of commands
// before a match, it returns a Flow error; the caller unwinds to
// immediate mode.
func SkipToTerminator(src LineSource, terminators ...string) (string, error) {
	want := make(map[string]bool, len(terminators))
	for _, t := range terminators {
		want[t] = true
	}

	depth := map[string]int{}

	for src.Advance() {
		verb := leadingVerb(src.Text())
		if verb == "" {
			continue
		}

		if closer, ok := closerFor[verb]; ok {
			depth[closer]++
			continue
		}

		if _, ok := openerFor[verb]; ok && depth[verb] > 0 {
			depth[verb]--
			continue
		}

		if want[verb] && nestedDepth(depth) == 0 {
			return verb, nil
		}
	}

	return "", diagerr.New(diagerr.Flow, "unterminated block, expected %s", strings.Join(terminators, " or "))
}

func nestedDepth(depth map[string]int) int {
	total := 0
	for _, d := range depth {
		total += d
	}

	return total
}
