// Released under an MIT license. See LICENSE.

package dispatch

import (
	"bytes"
	"strings"
	"testing"

	"github.com/samiam95124/diskdiagnostic/internal/device/simfile"
	"github.com/samiam95124/diskdiagnostic/internal/outcome"
)

func newTestEngine(t *testing.T) (*Engine, *bytes.Buffer) {
	t.Helper()

	var out bytes.Buffer

	dev := simfile.New(t.TempDir())
	if err := dev.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}

	e := New(dev, 4, &out)

	return e, &out
}

// lastLine returns the last non-empty printed line before the
// trailing timing report RunLine always appends.
func lastLine(out *bytes.Buffer) string {
	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	for i := len(lines) - 2; i >= 0; i-- {
		if strings.TrimSpace(lines[i]) != "" {
			return lines[i]
		}
	}

	return ""
}

func TestWhileLoopSkipsWhenFalse(t *testing.T) {
	e, out := newTestEngine(t)

	o := e.RunLine(`set x 0; while x; set x 1; wend; p x`)
	if o != outcome.Ok {
		t.Fatalf("outcome = %v", o)
	}

	if got := lastLine(out); got != "0" {
		t.Fatalf("p x = %q, want 0", got)
	}
}

func TestWhileLoopRunsUntilFalse(t *testing.T) {
	e, out := newTestEngine(t)

	o := e.RunLine(`set n 3; set t 0; while n; set t t+n; set n n-1; wend; p t`)
	if o != outcome.Ok {
		t.Fatalf("outcome = %v", o)
	}

	if got := lastLine(out); got != "6" {
		t.Fatalf("p t = %q, want 6", got)
	}
}

func TestRepeatUntilRunsOnce(t *testing.T) {
	e, out := newTestEngine(t)

	o := e.RunLine(`set n 0; repeat; set n n+1; until 1; p n`)
	if o != outcome.Ok {
		t.Fatalf("outcome = %v", o)
	}

	if got := lastLine(out); got != "1" {
		t.Fatalf("p n = %q, want 1", got)
	}
}

func TestForLoopBindsAndLeavesOnePast(t *testing.T) {
	e, out := newTestEngine(t)

	o := e.RunLine(`set s 0; for i 1 3; set s s+i; fend; p s; p i`)
	if o != outcome.Ok {
		t.Fatalf("outcome = %v", o)
	}

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	if len(lines) < 3 {
		t.Fatalf("expected at least 3 lines of output, got %v", lines)
	}

	if lines[0] != "6" {
		t.Fatalf("p s = %q, want 6", lines[0])
	}

	if lines[1] != "4" {
		t.Fatalf("p i = %q, want 4", lines[1])
	}
}

func TestForLoopEmptyRangeSkipsBody(t *testing.T) {
	e, out := newTestEngine(t)

	o := e.RunLine(`set s 0; for i 3 1; set s 99; fend; p s`)
	if o != outcome.Ok {
		t.Fatalf("outcome = %v", o)
	}

	if got := lastLine(out); got != "0" {
		t.Fatalf("p s = %q, want 0", got)
	}
}

func TestForLoopNegativeStep(t *testing.T) {
	e, out := newTestEngine(t)

	o := e.RunLine(`set s 0; for i 3 1 0-1; set s s+i; fend; p s`)
	if o != outcome.Ok {
		t.Fatalf("outcome = %v", o)
	}

	if got := lastLine(out); got != "6" {
		t.Fatalf("p s = %q, want 6", got)
	}
}

func TestLoopQRestartsWholeLine(t *testing.T) {
	e, out := newTestEngine(t)

	e.RunLine(`set n 0`)

	o := e.RunLine(`set n n+1; lq 3; p n`)
	if o != outcome.Ok {
		t.Fatalf("outcome = %v", o)
	}

	if got := lastLine(out); got != "3" {
		t.Fatalf("p n = %q, want 3", got)
	}
}

func TestLoopAnnouncesIterations(t *testing.T) {
	e, out := newTestEngine(t)

	e.RunLine(`set n 0`)
	e.RunLine(`set n n+1; l 2`)

	if !strings.Contains(out.String(), "Iteration: 1") ||
		!strings.Contains(out.String(), "Iteration: 2") {
		t.Fatalf("loop should announce each iteration, got %q", out.String())
	}
}

func TestUntilRestartVerb(t *testing.T) {
	e, out := newTestEngine(t)

	e.RunLine(`set n 0`)

	o := e.RunLine(`set n n+1; u n=3; p n`)
	if o != outcome.Ok {
		t.Fatalf("outcome = %v", o)
	}

	if got := lastLine(out); got != "3" {
		t.Fatalf("p n = %q, want 3", got)
	}
}

func TestSelectMatchingCase(t *testing.T) {
	e, out := newTestEngine(t)

	o := e.RunLine(`set v 2; select v; case 1; p 10; case 2; p 20; default; p 99; send`)
	if o != outcome.Ok {
		t.Fatalf("outcome = %v", o)
	}

	if got := lastLine(out); got != "20" {
		t.Fatalf("select result = %q, want 20", got)
	}
}

func TestSelectFallsBackToDefault(t *testing.T) {
	e, out := newTestEngine(t)

	o := e.RunLine(`set v 7; select v; case 1; p 10; case 2; p 20; default; p 99; send`)
	if o != outcome.Ok {
		t.Fatalf("outcome = %v", o)
	}

	if got := lastLine(out); got != "99" {
		t.Fatalf("select result = %q, want 99", got)
	}
}

func TestSelectMatchedArmStopsAtNextCase(t *testing.T) {
	e, out := newTestEngine(t)

	o := e.RunLine(`set v 1; select v; case 1; p 10; case 2; p 20; default; p 99; send`)
	if o != outcome.Ok {
		t.Fatalf("outcome = %v", o)
	}

	lines := strings.Split(out.String(), "\n")
	if lines[0] != "10" {
		t.Fatalf("select result = %q, want 10", lines[0])
	}

	if !strings.HasPrefix(lines[1], "Time:") {
		t.Fatalf("later arms should have been skipped, got %q", lines[1])
	}
}

func TestSelectCommaList(t *testing.T) {
	e, out := newTestEngine(t)

	o := e.RunLine(`set v 5; select v; case 3,4,5; p 1; default; p 0; send`)
	if o != outcome.Ok {
		t.Fatalf("outcome = %v", o)
	}

	if got := lastLine(out); got != "1" {
		t.Fatalf("select result = %q, want 1", got)
	}
}

func TestSelectNoMatchNoDefaultRunsNothing(t *testing.T) {
	e, out := newTestEngine(t)

	o := e.RunLine(`set v 9; select v; case 1; p 10; case 2; p 20; send; p 33`)
	if o != outcome.Ok {
		t.Fatalf("outcome = %v", o)
	}

	lines := strings.Split(out.String(), "\n")
	if lines[0] != "33" {
		t.Fatalf("no arm should have run and execution should resume after send, got %q", lines[0])
	}
}

func TestNestedWhileInsideFor(t *testing.T) {
	e, out := newTestEngine(t)

	o := e.RunLine(`set total 0; for i 1 2; set j 0; while j<2; set total total+1; set j j+1; wend; fend; p total`)
	if o != outcome.Ok {
		t.Fatalf("outcome = %v", o)
	}

	if got := lastLine(out); got != "4" {
		t.Fatalf("p total = %q, want 4", got)
	}
}

func TestProcedureLoopScopedToCall(t *testing.T) {
	e, _ := newTestEngine(t)

	e.Program.Insert(0, `sub: set n 0; while n<3; set n n+1; wend; end`)

	o := e.RunLine("sub")
	if o != outcome.Ok {
		t.Fatalf("outcome = %v", o)
	}

	if e.Loops.Depth() != 0 {
		t.Fatalf("loop stack depth after call = %d, want 0", e.Loops.Depth())
	}
}

func TestIfFalseDiscardsRestOfLine(t *testing.T) {
	e, out := newTestEngine(t)

	o := e.RunLine(`if 0; p 1; p 2`)
	if o != outcome.Ok {
		t.Fatalf("outcome = %v", o)
	}

	for _, line := range strings.Split(out.String(), "\n") {
		if line == "1" || line == "2" {
			t.Fatalf("if 0 should have discarded the rest of the line, got %q", line)
		}
	}
}

func TestProcedureCallBindsParameters(t *testing.T) {
	e, out := newTestEngine(t)

	e.RunLine(`1 add(a b): p a+b`)

	o := e.RunLine(`add 40 2`)
	if o != outcome.Ok {
		t.Fatalf("outcome = %v", o)
	}

	if got := lastLine(out); got != "42" {
		t.Fatalf("add 40 2 = %q, want 42", got)
	}

	out.Reset()

	o = e.RunLine(`p a`)
	if o != outcome.Stop {
		t.Fatalf("outcome = %v, want Stop (parameter must not leak)", o)
	}

	if !strings.Contains(out.String(), `Variable "a" invalid`) {
		t.Fatalf("output = %q, want a Variable invalid error", out.String())
	}
}

func TestHexFormatPrint(t *testing.T) {
	e, out := newTestEngine(t)

	o := e.RunLine(`s x 0x10; p "%4.4x" x`)
	if o != outcome.Ok {
		t.Fatalf("outcome = %v", o)
	}

	if got := lastLine(out); got != "0010" {
		t.Fatalf("p %%4.4x x = %q, want 0010", got)
	}
}

func TestPatternThenCompareIsClean(t *testing.T) {
	e, out := newTestEngine(t)

	for _, cmd := range []string{
		`pt cnt; c cnt 0 1`,
		`pt dwcnt; c dwcnt 0 2`,
		`pt val 0xdeadbeef 1; c val 0xdeadbeef 1`,
		`pt rand; c rand 0 1`,
		`pt lba 100 4; c lba 100 4`,
	} {
		out.Reset()

		o := e.RunLine(cmd)
		if o != outcome.Ok {
			t.Fatalf("%q outcome = %v", cmd, o)
		}

		if strings.Contains(out.String(), "miscompare") {
			t.Fatalf("%q reported a miscompare: %q", cmd, out.String())
		}
	}
}

func TestCompModeFailRaisesCompareError(t *testing.T) {
	e, out := newTestEngine(t)

	e.RunLine(`pt cnt`)
	e.WriteBuf.Sector(0)[0] ^= 0xff

	e.RunLine(`cm fail`)

	o := e.RunLine(`c cnt 0 1`)
	if o != outcome.Stop {
		t.Fatalf("outcome = %v, want Stop from the compare error", o)
	}

	if !strings.Contains(out.String(), "miscompare") {
		t.Fatalf("output = %q, want a miscompare error", out.String())
	}
}

func TestCompModeRejectsUnknownMode(t *testing.T) {
	e, out := newTestEngine(t)

	o := e.RunLine(`cm sometimes`)
	if o != outcome.Stop {
		t.Fatalf("outcome = %v, want Stop", o)
	}

	if !strings.Contains(out.String(), "mode not recognized") {
		t.Fatalf("output = %q, want mode not recognized", out.String())
	}
}

func TestValPatternFillsWriteBuffer(t *testing.T) {
	e, _ := newTestEngine(t)

	if o := e.RunLine(`pt val 0xdeadbeef 1`); o != outcome.Ok {
		t.Fatalf("outcome = %v", o)
	}

	got := e.WriteBuf.Sector(0)[:4]
	want := []byte{0xde, 0xad, 0xbe, 0xef}

	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("write buffer byte %d = 0x%02x, want 0x%02x", i, got[i], want[i])
		}
	}
}

func TestWriteReadBuffsRoundTrip(t *testing.T) {
	e, out := newTestEngine(t)

	for _, cmd := range []string{
		`drive 9`,
		`unprot`,
		`pt rand`,
		`w 0 4`,
		`r 0 4`,
		`c buffs 0 4`,
	} {
		o := e.RunLine(cmd)
		if o != outcome.Ok {
			t.Fatalf("%q outcome = %v: %s", cmd, o, out.String())
		}
	}

	if strings.Contains(out.String(), "miscompare") {
		t.Fatalf("round trip miscompared: %q", out.String())
	}
}

func TestWriteProtectBlocksWrite(t *testing.T) {
	e, out := newTestEngine(t)

	e.RunLine(`drive 9`)

	o := e.RunLine(`w 0 1`)
	if o != outcome.Stop {
		t.Fatalf("outcome = %v, want Stop from the write protect error", o)
	}

	if !strings.Contains(out.String(), "write protected") {
		t.Fatalf("output = %q, want a write protect error", out.String())
	}
}

func TestDriveChangeRestoresWriteProtect(t *testing.T) {
	e, _ := newTestEngine(t)

	e.RunLine(`drive 9`)
	e.RunLine(`unprot`)

	if e.WriteProtect {
		t.Fatal("unprot should clear the write protect")
	}

	e.RunLine(`drive 8`)

	if !e.WriteProtect {
		t.Fatal("changing drives must restore the write protect")
	}
}

func TestReadBeyondDriveIsBoundsError(t *testing.T) {
	e, out := newTestEngine(t)

	e.RunLine(`drive 9`)

	o := e.RunLine(`r drvsiz 1`)
	if o != outcome.Stop {
		t.Fatalf("outcome = %v, want Stop from the bounds error", o)
	}

	if !strings.Contains(out.String(), "overruns") {
		t.Fatalf("output = %q, want an overrun error", out.String())
	}
}

func TestErrorInsideProcedureDropsItsLocals(t *testing.T) {
	e, _ := newTestEngine(t)

	e.Program.Insert(0, `proc(n): local x 99; bogus; end`)

	o := e.RunLine("proc 1")
	if o != outcome.Stop {
		t.Fatalf("outcome = %v, want Stop", o)
	}

	if e.Interp.Depth() != 1 {
		t.Fatalf("interpreter stack depth after error = %d, want 1 (back at sentinel)", e.Interp.Depth())
	}

	if _, ok := e.Vars.Lookup("x"); ok {
		t.Fatal("x was local to the aborted call to proc and should not survive it")
	}

	if _, ok := e.Vars.Lookup("n"); ok {
		t.Fatal("n was proc's parameter and should not survive the aborted call")
	}
}

func TestUnknownVerbIsNameError(t *testing.T) {
	e, out := newTestEngine(t)

	e.RunLine("bogus")

	if !strings.Contains(out.String(), "Verb \"bogus\" invalid") {
		t.Fatalf("output = %q, want a Verb invalid error", out.String())
	}
}

func TestLastErroredTracksMostRecentCommand(t *testing.T) {
	e, _ := newTestEngine(t)

	e.RunLine("bogus")

	if !e.LastErrored() {
		t.Fatal("LastErrored should be true after a failed command")
	}

	e.RunLine("p 1")

	if e.LastErrored() {
		t.Fatal("LastErrored should clear after a successful command")
	}
}

func TestExitOnErrorEscalatesToExit(t *testing.T) {
	e, _ := newTestEngine(t)

	e.RunLine("exitonerror")

	o := e.RunLine("bogus")
	if o != outcome.Exit {
		t.Fatalf("outcome = %v, want Exit with exitonerror active", o)
	}

	if !e.LastErrored() {
		t.Fatal("the escalated command still counts as an error")
	}
}

func TestBreakDuringLineEntryIsConsumed(t *testing.T) {
	e, out := newTestEngine(t)

	// A break raised while the line was being typed must not abort the
	// command the user then submits.
	e.Break.Set()

	o := e.RunLine(`p 5`)
	if o != outcome.Ok {
		t.Fatalf("outcome = %v, want Ok", o)
	}

	if got := lastLine(out); got != "5" {
		t.Fatalf("p 5 = %q, want 5", got)
	}
}

func TestBreakBeforeCompareStopsIt(t *testing.T) {
	e, _ := newTestEngine(t)

	e.RunLine(`pt cnt`)

	// Raised after line entry, the flag is live when the run loop samples
	// it between commands, so the compare is never dispatched.
	e.Interp.SetImmediateText(`c cnt`)
	e.Break.Set()

	o := e.run()
	if o != outcome.Stop {
		t.Fatalf("outcome = %v, want Stop", o)
	}

	if e.Interp.Depth() != 1 {
		t.Fatalf("depth = %d, want 1", e.Interp.Depth())
	}
}

func TestEchoPrintsRemainderOfCommand(t *testing.T) {
	e, out := newTestEngine(t)

	e.RunLine(`echo hello world; p 1`)

	lines := strings.Split(out.String(), "\n")
	if lines[0] != "hello world" {
		t.Fatalf("echo = %q, want %q", lines[0], "hello world")
	}

	if lines[1] != "1" {
		t.Fatalf("command after echo = %q, want 1", lines[1])
	}
}

func TestCommentDiscardsRestOfLine(t *testing.T) {
	e, out := newTestEngine(t)

	e.RunLine(`p 1; ! p 2; p 3`)

	if strings.Contains(out.String(), "2") || strings.Contains(out.String(), "3") {
		t.Fatalf("! should comment out the rest of the line, got %q", out.String())
	}
}

func TestProgramEditInsertAndDelete(t *testing.T) {
	e, _ := newTestEngine(t)

	e.RunLine(`1 p 10`)
	e.RunLine(`1 p 20`)

	if e.Program.Len() != 2 {
		t.Fatalf("program length = %d, want 2", e.Program.Len())
	}

	// Inserting before line 1 puts the newer line first.
	if e.Program.Line(1).Text != "p 20" {
		t.Fatalf("line 1 = %q, want %q", e.Program.Line(1).Text, "p 20")
	}

	e.RunLine(`delt 1`)

	if e.Program.Len() != 1 || e.Program.Line(1).Text != "p 10" {
		t.Fatalf("after delt: len=%d line1=%q", e.Program.Len(), e.Program.Line(1).Text)
	}
}

func TestGoRedirectsWithoutCall(t *testing.T) {
	e, out := newTestEngine(t)

	e.Program.Insert(0, `skip: p 7`)

	o := e.RunLine(`go skip`)
	if o != outcome.Ok {
		t.Fatalf("outcome = %v", o)
	}

	if got := lastLine(out); got != "7" {
		t.Fatalf("go skip printed %q, want 7", got)
	}

	if e.Interp.Depth() != 1 {
		t.Fatalf("go must not push a frame, depth = %d", e.Interp.Depth())
	}
}
