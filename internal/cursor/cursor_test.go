// Released under an MIT license. See LICENSE.

package cursor

import "testing"

func TestPeekAndNext(t *testing.T) {
	c := New("ab")

	if c.Peek() != 'a' {
		t.Fatalf("Peek() = %q, want 'a'", c.Peek())
	}

	if c.Next() != 'a' || c.Next() != 'b' {
		t.Fatal("Next() did not return expected bytes")
	}

	if !c.AtEnd() {
		t.Fatal("expected AtEnd() after consuming all bytes")
	}

	if c.Next() != 0 {
		t.Fatal("Next() at end should return 0")
	}
}

func TestSkipWS(t *testing.T) {
	c := New("  \tx")
	c.SkipWS()

	if c.Peek() != 'x' {
		t.Fatalf("after SkipWS, Peek() = %q, want 'x'", c.Peek())
	}
}

func TestTakeWordStopsAtWhitespaceAndSemicolon(t *testing.T) {
	c := New("read 0 1;p x")

	if w := c.TakeWord(); w != "read" {
		t.Fatalf("TakeWord() = %q, want read", w)
	}

	c.SkipWS()

	if w := c.TakeWord(); w != "0" {
		t.Fatalf("TakeWord() = %q, want 0", w)
	}
}

func TestTakeQuotedStringResolvesEscapes(t *testing.T) {
	c := New(`"a\"b" rest`)

	s, ok := c.TakeQuotedString()
	if !ok {
		t.Fatal("TakeQuotedString failed")
	}

	if s != `a"b` {
		t.Fatalf("s = %q, want a\"b", s)
	}

	if c.RestOfLine() != " rest" {
		t.Fatalf("RestOfLine() = %q, want \" rest\"", c.RestOfLine())
	}
}

func TestTakeQuotedStringUnterminated(t *testing.T) {
	c := New(`"abc`)

	_, ok := c.TakeQuotedString()
	if ok {
		t.Fatal("expected ok = false for an unterminated string")
	}
}

func TestCopyIsIndependent(t *testing.T) {
	c := New("abc")
	c.Next()

	cp := c.Copy()
	cp.Next()

	if c.Pos() != 1 {
		t.Fatalf("original cursor moved: Pos() = %d, want 1", c.Pos())
	}

	if cp.Pos() != 2 {
		t.Fatalf("copy did not advance: Pos() = %d, want 2", cp.Pos())
	}
}

func TestPeekAtOutOfRange(t *testing.T) {
	c := New("a")

	if c.PeekAt(5) != 0 {
		t.Fatal("PeekAt past the end should return 0")
	}
}
