// Released under an MIT license. See LICENSE.

// Package format implements the print family's format-string
// directives: %[width[.prec]]{d|x|o} on a 64-bit signed value,
// backslash escapes, and unmatched % falling back to default decimal.
package format

import (
	"fmt"
	"strconv"
	"strings"
)

// Render expands format against args in order. Each %...d/x/o
// directive consumes the next value from args; if a directive is
// reached with no argument left, it is silently skipped: no text is
// emitted for that directive, but surrounding literal text still is,
// so the filler prints while the missing value is suppressed.
func Render(spec string, args []int64) string {
	var b strings.Builder

	i := 0
	next := 0

	for i < len(spec) {
		ch := spec[i]

		if ch == '\\' && i+1 < len(spec) {
			b.WriteByte(spec[i+1])
			i += 2

			continue
		}

		if ch != '%' {
			b.WriteByte(ch)
			i++

			continue
		}

		consumed, text, hasValue := directive(spec[i:])
		i += consumed

		if !hasValue {
			b.WriteString(text)
			continue
		}

		if next >= len(args) {
			next++
			continue
		}

		b.WriteString(renderValue(text, args[next]))
		next++
	}

	return b.String()
}

// directive parses a %... directive starting at s[0]=='%'. It returns
// how many bytes of s it consumed, the directive spec with the
// leading % stripped (e.g. "4.4x"), and whether a value should be
// consumed for it. An unmatched % (no trailing d/x/o) consumes just
// the '%' itself and reports hasValue=true with an empty spec, so the
// caller prints the next value in default decimal.
func directive(s string) (consumed int, spec string, hasValue bool) {
	i := 1 // skip '%'

	start := i
	for i < len(s) && (isDigit(s[i]) || s[i] == '.') {
		i++
	}

	if i < len(s) && (s[i] == 'd' || s[i] == 'x' || s[i] == 'o') {
		return i + 1, s[start:i] + string(s[i]), true
	}

	// Unmatched: treat the lone '%' as "print next value, decimal".
	return 1, "", true
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// renderValue renders v according to a parsed directive spec of the
// form "[width[.prec]]{d|x|o}", or default decimal if spec is empty.
func renderValue(spec string, v int64) string {
	if spec == "" {
		return strconv.FormatInt(v, 10)
	}

	verb := spec[len(spec)-1]
	widthPrec := spec[:len(spec)-1]

	width, prec, hasPrec := 0, 0, false

	if dot := strings.IndexByte(widthPrec, '.'); dot >= 0 {
		width = atoiDefault(widthPrec[:dot], 0)
		prec = atoiDefault(widthPrec[dot+1:], 0)
		hasPrec = true
	} else {
		width = atoiDefault(widthPrec, 0)
	}

	var base string

	switch verb {
	case 'x':
		base = strconv.FormatUint(uint64(v), 16)
	case 'o':
		base = strconv.FormatUint(uint64(v), 8)
	default:
		base = strconv.FormatInt(v, 10)
	}

	if hasPrec && len(base) < prec {
		base = strings.Repeat("0", prec-len(base)) + base
	}

	if width > len(base) {
		return fmt.Sprintf("%*s", width, base)
	}

	return base
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}

	return n
}
