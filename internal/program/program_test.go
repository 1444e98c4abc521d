// Released under an MIT license. See LICENSE.

package program

import "testing"

func TestInsertAppendsWhenNBeyondEnd(t *testing.T) {
	p := New()

	p.Insert(99, "p 1")
	p.Insert(99, "p 2")

	if p.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", p.Len())
	}

	if p.Line(1).Text != "p 1" || p.Line(2).Text != "p 2" {
		t.Fatalf("unexpected order: %q, %q", p.Line(1).Text, p.Line(2).Text)
	}
}

func TestInsertBeforeNthLine(t *testing.T) {
	p := New()

	p.Insert(0, "p 1")
	p.Insert(0, "p 2")
	p.Insert(1, "p 3")

	var texts []string
	p.Each(func(_ int, l *Line) bool {
		texts = append(texts, l.Text)
		return true
	})

	want := []string{"p 3", "p 1", "p 2"}
	for i, w := range want {
		if texts[i] != w {
			t.Fatalf("order = %v, want %v", texts, want)
		}
	}
}

func TestLabelAndParamsParsed(t *testing.T) {
	p := New()

	p.Insert(0, "add(a b): p a+b")

	line := p.Lookup("add")
	if line == nil {
		t.Fatal("Lookup(add) = nil")
	}

	if line.Text != "p a+b" {
		t.Fatalf("Text = %q, want %q", line.Text, "p a+b")
	}

	if len(line.Params) != 2 || line.Params[0] != "a" || line.Params[1] != "b" {
		t.Fatalf("Params = %v, want [a b]", line.Params)
	}
}

func TestBareLabelWithoutParams(t *testing.T) {
	p := New()

	p.Insert(0, "init: set x 0")

	line := p.Lookup("init")
	if line == nil || line.Params != nil {
		t.Fatalf("line = %+v, want label init with nil params", line)
	}
}

func TestOrdinaryCommandIsNotMistakenForLabel(t *testing.T) {
	p := New()

	p.Insert(0, "s x 3")

	if p.Line(1).Label != "" {
		t.Fatalf("Label = %q, want empty", p.Line(1).Label)
	}
}

func TestDeleteFreesLabel(t *testing.T) {
	p := New()

	p.Insert(0, "sub: end")

	if !p.Delete(1) {
		t.Fatal("Delete(1) = false")
	}

	if p.Lookup("sub") != nil {
		t.Fatal("label should be freed after Delete")
	}

	if p.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", p.Len())
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	p := New()

	p.Insert(0, "s x 1")
	p.Insert(0, "add(a b): p a+b")
	p.Insert(0, "init: echo hi")

	saved := p.Save()

	p2 := New()
	p2.Load(saved)

	if p2.Len() != p.Len() {
		t.Fatalf("Len after round-trip = %d, want %d", p2.Len(), p.Len())
	}

	for i := 1; i <= p.Len(); i++ {
		a, b := p.Line(i), p2.Line(i)
		if a.Label != b.Label || a.Text != b.Text {
			t.Fatalf("line %d mismatch: %+v vs %+v", i, a, b)
		}
	}

	if add := p2.Lookup("add"); add == nil || len(add.Params) != 2 {
		t.Fatal("add label/params did not survive round-trip")
	}
}

func TestLoopCounterKeyedByOffset(t *testing.T) {
	p := New()

	p.Insert(0, "s n n+1; l 3")

	line := p.Line(1)

	if got := line.Counter(10); got != 0 {
		t.Fatalf("fresh counter = %d, want 0", got)
	}

	line.IncCounter(10)
	line.IncCounter(10)

	if got := line.Counter(10); got != 2 {
		t.Fatalf("counter after two increments = %d, want 2", got)
	}

	if got := line.Counter(20); got != 0 {
		t.Fatalf("a different site's counter = %d, want 0", got)
	}

	line.ResetCounter(10)

	if got := line.Counter(10); got != 0 {
		t.Fatalf("counter after reset = %d, want 0", got)
	}
}

func TestLoadClearsPreviousStore(t *testing.T) {
	p := New()

	p.Insert(0, "p 1")
	p.Insert(0, "old: p 2")

	p.Load("p 3")

	if p.Len() != 1 || p.Line(1).Text != "p 3" {
		t.Fatalf("Load should clear the store first, got %d lines", p.Len())
	}

	if p.Lookup("old") != nil {
		t.Fatal("old label should not survive Load")
	}
}

func TestLoadAcceptsCRLF(t *testing.T) {
	p := New()

	p.Load("p 1\r\np 2\r\n")

	if p.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", p.Len())
	}
}
