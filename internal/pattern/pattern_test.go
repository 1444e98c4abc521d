// Released under an MIT license. See LICENSE.

package pattern

import (
	"testing"

	"github.com/samiam95124/diskdiagnostic/internal/outcome"
	"github.com/samiam95124/diskdiagnostic/internal/sector"
)

func noBreak() bool { return false }

func TestGenerateCompareRoundTrip(t *testing.T) {
	names := []string{Cnt, Dwcnt, Val, Rand}

	for _, name := range names {
		name := name
		t.Run(name, func(t *testing.T) {
			for _, length := range []int{1, 3, sector.DefaultCount} {
				buf := sector.NewBuffer(sector.DefaultCount)

				if err := Generate(buf, name, 0xdeadbeef, length); err != nil {
					t.Fatalf("generate: %v", err)
				}

				policy := NewMismatchPolicy(func(s string) { t.Errorf("unexpected mismatch: %s", s) })

				o, err := Compare(buf, buf, name, 0xdeadbeef, length, policy, noBreak, false)
				if err != nil {
					t.Fatalf("compare: %v", err)
				}

				if o != outcome.Ok {
					t.Fatalf("compare outcome = %v, want ok", o)
				}
			}
		})
	}
}

func TestLbaPattern(t *testing.T) {
	buf := sector.NewBuffer(sector.DefaultCount)

	if err := Generate(buf, Lba, 100, 4); err != nil {
		t.Fatalf("generate: %v", err)
	}

	policy := NewMismatchPolicy(func(s string) { t.Errorf("unexpected mismatch: %s", s) })

	o, err := Compare(buf, buf, Lba, 100, 4, policy, noBreak, false)
	if err != nil || o != outcome.Ok {
		t.Fatalf("compare = %v, %v", o, err)
	}
}

func TestValFirstFourBytes(t *testing.T) {
	buf := sector.NewBuffer(sector.DefaultCount)

	if err := Generate(buf, Val, 0xdeadbeef, 1); err != nil {
		t.Fatalf("generate: %v", err)
	}

	got := buf.Sector(0)[:4]
	want := []byte{0xde, 0xad, 0xbe, 0xef}

	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("byte %d = 0x%02x, want 0x%02x", i, got[i], want[i])
		}
	}
}

func TestWriteThenReadThenBuffsCompare(t *testing.T) {
	write := sector.NewBuffer(sector.DefaultCount)
	read := sector.NewBuffer(sector.DefaultCount)

	if err := Generate(write, Cnt, 0, 5); err != nil {
		t.Fatalf("generate: %v", err)
	}

	copy(read.Bytes(), write.Bytes())

	policy := NewMismatchPolicy(func(s string) { t.Errorf("unexpected mismatch: %s", s) })

	o, err := Compare(read, write, Buffs, 0, 5, policy, noBreak, false)
	if err != nil || o != outcome.Ok {
		t.Fatalf("compare = %v, %v", o, err)
	}
}

func TestUnknownPattern(t *testing.T) {
	buf := sector.NewBuffer(sector.DefaultCount)

	if err := Generate(buf, "bogus", 0, 1); err == nil {
		t.Fatal("expected error for unknown pattern")
	}
}

func TestMismatchModeFailStopsAtFirst(t *testing.T) {
	write := sector.NewBuffer(sector.DefaultCount)
	read := sector.NewBuffer(sector.DefaultCount)

	write.Sector(0)[10] = 0xAA
	read.Sector(0)[10] = 0xBB

	reports := 0
	policy := NewMismatchPolicy(func(string) { reports++ })
	policy.Mode = ModeFail

	o, err := Compare(read, write, Buffs, 0, 1, policy, noBreak, false)
	if o != outcome.Error || err == nil {
		t.Fatalf("expected compare error, got %v %v", o, err)
	}
}

func TestMismatchModeOneSuppressesRepeats(t *testing.T) {
	write := sector.NewBuffer(sector.DefaultCount)
	read := sector.NewBuffer(sector.DefaultCount)

	for i := 0; i < sector.Size; i++ {
		write.Sector(0)[i] = 0
		read.Sector(0)[i] = 1
	}

	reports := 0
	policy := NewMismatchPolicy(func(string) { reports++ })

	o, err := Compare(read, write, Buffs, 0, 1, policy, noBreak, false)
	if err != nil || o != outcome.Ok {
		t.Fatalf("compare = %v, %v", o, err)
	}

	// Only the first mismatch of the compare is reported; in this mode the
	// later ones are neither reported nor counted, so no summary follows.
	if reports != 1 {
		t.Fatalf("reports = %d, want 1", reports)
	}
}
