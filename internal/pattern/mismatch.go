// Released under an MIT license. See LICENSE.

package pattern

import "fmt"

// Mode selects how a compare reports mismatches.
type Mode int

const (
	// ModeOne reports only the first mismatch of a compare; later
	// mismatches are neither reported nor counted. Default.
	ModeOne Mode = iota
	// ModeAll reports every mismatch, collapsing only exact repeats of
	// the immediately preceding (got, expected) pair into a count.
	ModeAll
	// ModeFail aborts the compare at the first mismatch with a
	// Compare error.
	ModeFail
)

type verdict int

const (
	mismatchContinue verdict = iota
	mismatchFail
)

// MismatchPolicy holds the state threaded across an entire compare
// invocation: the reporting mode, whether this is the first mismatch
// seen, the last reported (got, expected) pair, and how many times in
// a row that exact pair has repeated.
type MismatchPolicy struct {
	Mode Mode

	// Report receives rendered mismatch lines and run-length summaries;
	// nil discards them (useful in tests).
	Report func(line string)

	first       bool
	dataset     bool
	a, b        byte // last reported (got, expected) pair
	repeatCount int
}

// NewMismatchPolicy creates a policy in the default mode.
func NewMismatchPolicy(report func(string)) *MismatchPolicy {
	return &MismatchPolicy{Mode: ModeOne, Report: report}
}

// beginCompare resets per-invocation state at the start of every
// compare.
func (p *MismatchPolicy) beginCompare() {
	p.first = true
	p.dataset = false
	p.repeatCount = 0
}

// observe processes one mismatching byte at the given buffer offset
// and returns whether the compare must abort with a Compare error
// (ModeFail).
func (p *MismatchPolicy) observe(offset int, got, want byte) verdict {
	report := p.first || p.Mode == ModeAll

	if report {
		if p.dataset && got == p.a && want == p.b {
			p.repeatCount++
		} else {
			p.flushRepeats()
			p.emit(offset, got, want)
			p.a, p.b = got, want
			p.dataset = true
		}
	}

	p.first = false

	if p.Mode == ModeFail {
		return mismatchFail
	}

	return mismatchContinue
}

// endCompare flushes any pending run-length summary at the end of a
// compare.
func (p *MismatchPolicy) endCompare() {
	p.flushRepeats()
}

func (p *MismatchPolicy) flushRepeats() {
	if p.repeatCount > 0 {
		p.emitf("*** Info: There were %d occurrences of the above mismatch", p.repeatCount)
		p.repeatCount = 0
	}
}

func (p *MismatchPolicy) emit(offset int, got, want byte) {
	p.emitf("*** Error: Buffer miscompare: %8.8x: %2.2x s/b %2.2x", offset, got, want)
}

func (p *MismatchPolicy) emitf(format string, args ...interface{}) {
	if p.Report == nil {
		return
	}

	p.Report(fmt.Sprintf(format, args...))
}
