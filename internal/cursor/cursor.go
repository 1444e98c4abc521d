// Released under an MIT license. See LICENSE.

// Package cursor provides the shared mutable character-cursor helper
// that the expression evaluator, the command dispatcher, and every
// flow-control verb advance as they walk a command line's text: a
// small synchronous peek/take API over one line at a time.
package cursor

import "strings"

// T is a position within a text buffer that callers advance in place.
type T struct {
	text string
	pos  int
}

// New creates a cursor over text starting at position 0.
func New(text string) *T {
	return &T{text: text}
}

// Text returns the full text the cursor is walking.
func (c *T) Text() string {
	return c.text
}

// Pos returns the cursor's current byte offset into Text.
func (c *T) Pos() int {
	return c.pos
}

// SetPos moves the cursor to an explicit byte offset.
func (c *T) SetPos(p int) {
	c.pos = p
}

// AtEnd reports whether the cursor has consumed all of the text.
func (c *T) AtEnd() bool {
	return c.pos >= len(c.text)
}

// Peek returns the byte at the cursor without advancing, or 0 at end.
func (c *T) Peek() byte {
	if c.AtEnd() {
		return 0
	}

	return c.text[c.pos]
}

// PeekAt returns the byte n positions ahead of the cursor without
// advancing, or 0 past the end.
func (c *T) PeekAt(n int) byte {
	if c.pos+n >= len(c.text) || c.pos+n < 0 {
		return 0
	}

	return c.text[c.pos+n]
}

// Next consumes and returns the byte at the cursor, or 0 at end.
func (c *T) Next() byte {
	b := c.Peek()
	if !c.AtEnd() {
		c.pos++
	}

	return b
}

// SkipWS advances over spaces and tabs. Expressions do not permit
// embedded whitespace, so this is used between tokens, not inside
// expression parsing.
func (c *T) SkipWS() {
	for !c.AtEnd() && (c.Peek() == ' ' || c.Peek() == '\t') {
		c.pos++
	}
}

// TakeWord consumes and returns a run of non-whitespace,
// non-semicolon bytes starting at the cursor (a verb or bare
// argument token).
func (c *T) TakeWord() string {
	start := c.pos
	for !c.AtEnd() && !isWordBreak(c.Peek()) {
		c.pos++
	}

	return c.text[start:c.pos]
}

func isWordBreak(b byte) bool {
	return b == ' ' || b == '\t' || b == ';' || b == 0
}

// TakeIdentifier consumes and returns a run of identifier characters
// (letters, digits, underscore) starting at the cursor, not requiring
// the first character to be a letter.
func (c *T) TakeIdentifier() string {
	start := c.pos
	for !c.AtEnd() && isIdentChar(c.Peek()) {
		c.pos++
	}

	return c.text[start:c.pos]
}

func isIdentChar(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9')
}

// TakeQuotedString consumes a double-quoted string starting at the
// cursor (the opening quote must be at the cursor) and returns its
// content with backslash escapes resolved. The closing quote is
// consumed; ok is false if the string is unterminated.
func (c *T) TakeQuotedString() (s string, ok bool) {
	if c.Peek() != '"' {
		return "", false
	}

	c.pos++

	var b strings.Builder

	for {
		if c.AtEnd() {
			return b.String(), false
		}

		ch := c.Next()
		if ch == '"' {
			return b.String(), true
		}

		if ch == '\\' {
			if c.AtEnd() {
				return b.String(), false
			}

			b.WriteByte(c.Next())

			continue
		}

		b.WriteByte(ch)
	}
}

// RestOfLine returns everything from the cursor to the end of the
// text without advancing.
func (c *T) RestOfLine() string {
	return c.text[c.pos:]
}

// Copy returns an independent cursor over the same text at the same
// position, used when a construct needs to probe ahead without
// disturbing the caller's cursor.
func (c *T) Copy() *T {
	cp := *c
	return &cp
}
