// Released under an MIT license. See LICENSE.

package dispatch

import (
	"github.com/samiam95124/diskdiagnostic/internal/cursor"
	"github.com/samiam95124/diskdiagnostic/internal/diagerr"
	"github.com/samiam95124/diskdiagnostic/internal/outcome"
	"github.com/samiam95124/diskdiagnostic/internal/sector"
)

// optionalArg evaluates an expression if one follows at c, or returns
// def if the command ends here (end of text or a ';').
func (e *Engine) optionalArg(c *cursor.T, def int64) (int64, error) {
	c.SkipWS()

	if c.AtEnd() || c.Peek() == ';' {
		return def, nil
	}

	return e.evalExpr(c)
}

// optionalWord reads a bare identifier token if one follows, or "" if
// the command ends here.
func optionalWord(c *cursor.T) string {
	c.SkipWS()

	if c.AtEnd() || c.Peek() == ';' {
		return ""
	}

	return c.TakeWord()
}

func (e *Engine) requireDrive() error {
	if _, ok := e.Device.GetDrive(); !ok {
		return diagerr.New(diagerr.State, "no current drive")
	}

	return nil
}

func vRead(e *Engine, c *cursor.T, verbStart int) (outcome.T, error, bool) {
	if err := e.requireDrive(); err != nil {
		return outcome.Error, err, false
	}

	lba, err := e.optionalArg(c, 0)
	if err != nil {
		return outcome.Error, err, false
	}

	n, err := e.optionalArg(c, 1)
	if err != nil {
		return outcome.Error, err, false
	}

	if n <= 0 || int(n) > e.ReadBuf.Count() {
		return outcome.Error, diagerr.New(diagerr.Bounds, "sector count %d exceeds buffer", n), false
	}

	if lba < 0 || lba+n > e.DriveSize {
		return outcome.Error, diagerr.New(diagerr.Bounds, "lba %d count %d overruns drive of %d sectors", lba, n, e.DriveSize), false
	}

	if err := e.Device.ReadSectors(e.ReadBuf.Bytes(), int(lba), int(n)); err != nil {
		return outcome.Error, diagerr.New(diagerr.IO, "%v", err), false
	}

	e.Stats.RecordRead(n * sector.Size)

	return outcome.Ok, nil, false
}

func vWrite(e *Engine, c *cursor.T, verbStart int) (outcome.T, error, bool) {
	if err := e.requireDrive(); err != nil {
		return outcome.Error, err, false
	}

	if e.WriteProtect {
		return outcome.Error, diagerr.New(diagerr.State, "drive is write protected"), false
	}

	lba, err := e.optionalArg(c, 0)
	if err != nil {
		return outcome.Error, err, false
	}

	n, err := e.optionalArg(c, 1)
	if err != nil {
		return outcome.Error, err, false
	}

	if n <= 0 || int(n) > e.WriteBuf.Count() {
		return outcome.Error, diagerr.New(diagerr.Bounds, "sector count %d exceeds buffer", n), false
	}

	if lba < 0 || lba+n > e.DriveSize {
		return outcome.Error, diagerr.New(diagerr.Bounds, "lba %d count %d overruns drive of %d sectors", lba, n, e.DriveSize), false
	}

	if err := e.Device.WriteSectors(e.WriteBuf.Bytes(), int(lba), int(n)); err != nil {
		return outcome.Error, diagerr.New(diagerr.IO, "%v", err), false
	}

	e.Stats.RecordWrite(n * sector.Size)

	return outcome.Ok, nil, false
}

func vDrive(e *Engine, c *cursor.T, verbStart int) (outcome.T, error, bool) {
	c.SkipWS()

	if c.AtEnd() || c.Peek() == ';' {
		if n, ok := e.Device.GetDrive(); ok {
			e.println("Current drive is: " + intToString(int64(n)))
		} else {
			e.println("Current drive is: Not set")
		}

		return outcome.Ok, nil, false
	}

	n, err := e.evalExpr(c)
	if err != nil {
		return outcome.Error, err, false
	}

	// The write protect goes back on with every drive change; drive 0
	// is usually the system drive, so flag that too.
	e.WriteProtect = true

	if n == 0 {
		e.println("*** Warning: You have selected the system drive")
	}

	if err := e.Device.SetDrive(int(n)); err != nil {
		return outcome.Error, diagerr.New(diagerr.IO, "%v", err), false
	}

	bytes, err := e.Device.SizeCurrent()
	if err != nil {
		return outcome.Error, diagerr.New(diagerr.IO, "%v", err), false
	}

	e.DriveSize = bytes / sector.Size
	if bytes%sector.Size != 0 {
		e.println("*** Warning: Drive total size is not an even number of sectors")
	}

	e.Stats.Reset()

	return outcome.Ok, nil, false
}

func vListDrives(e *Engine, _ *cursor.T, _ int) (outcome.T, error, bool) {
	for n := 0; n <= 9; n++ {
		name, ok := e.Device.DriveName(n)
		if !ok {
			continue
		}

		if err := e.Device.TestDrive(n); err != nil {
			continue
		}

		bytes, err := e.Device.SizeOf(n)
		if err != nil {
			e.println(intToString(int64(n)) + ": " + name + " unavailable")
			continue
		}

		e.println(intToString(int64(n)) + ": " + name + " " + intToString(bytes/sector.Size) + " sectors")
	}

	return outcome.Ok, nil, false
}

func vUnprot(e *Engine, _ *cursor.T, _ int) (outcome.T, error, bool) {
	e.WriteProtect = false
	return outcome.Ok, nil, false
}

func vDumpWrite(e *Engine, c *cursor.T, verbStart int) (outcome.T, error, bool) {
	return e.dump(c, e.WriteBuf)
}

func vDumpRead(e *Engine, c *cursor.T, verbStart int) (outcome.T, error, bool) {
	return e.dump(c, e.ReadBuf)
}

func (e *Engine) dump(c *cursor.T, buf *sector.Buffer) (outcome.T, error, bool) {
	n, err := e.optionalArg(c, 1)
	if err != nil {
		return outcome.Error, err, false
	}

	if n <= 0 || int(n) > buf.Count() {
		return outcome.Error, diagerr.New(diagerr.Bounds, "sector count %d exceeds buffer", n), false
	}

	for s := 0; s < int(n); s++ {
		sec := buf.Sector(s)

		for row := 0; row < len(sec); row += 16 {
			end := row + 16
			if end > len(sec) {
				end = len(sec)
			}

			if !e.Pager.Println(dumpRow(s*sector.Size+row, sec[row:end])) {
				if e.checkBreak() {
					if e.ExitOnError {
						return outcome.Exit, nil, false
					}

					return outcome.Stop, nil, false
				}

				return outcome.Ok, nil, false
			}
		}

		if e.checkBreak() {
			if e.ExitOnError {
				return outcome.Exit, nil, false
			}

			return outcome.Stop, nil, false
		}
	}

	return outcome.Ok, nil, false
}

func dumpRow(offset int, row []byte) string {
	const hexDigits = "0123456789abcdef"

	out := make([]byte, 0, 8+2+16*3+2+16)

	out = append(out, hexOffset(offset)...)
	out = append(out, ':', ' ')

	for i, b := range row {
		if i > 0 && i%4 == 0 {
			out = append(out, ' ')
		}

		out = append(out, hexDigits[b>>4], hexDigits[b&0xf], ' ')
	}

	for i := len(row); i < 16; i++ {
		out = append(out, "   "...)
	}

	out = append(out, ' ')

	for _, b := range row {
		if b >= 0x20 && b < 0x7f {
			out = append(out, b)
		} else {
			out = append(out, '.')
		}
	}

	return string(out)
}

func hexOffset(n int) string {
	const hexDigits = "0123456789abcdef"

	buf := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		buf[i] = hexDigits[n&0xf]
		n >>= 4
	}

	return string(buf)
}

func intToString(v int64) string {
	neg := v < 0

	if neg {
		v = -v
	}

	if v == 0 {
		return "0"
	}

	var digits [20]byte

	i := len(digits)
	for v > 0 {
		i--
		digits[i] = byte('0' + v%10)
		v /= 10
	}

	if neg {
		i--
		digits[i] = '-'
	}

	return string(digits[i:])
}
