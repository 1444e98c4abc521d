// Released under an MIT license. See LICENSE.

// Package pattern provides discdiag's write-side generation and
// read-side verification of the cnt, dwcnt, val, rand, lba, and buffs
// sector patterns, and the mismatch policy that governs compare
// output.
package pattern

import (
	"encoding/binary"

	"github.com/samiam95124/diskdiagnostic/internal/diagerr"
	"github.com/samiam95124/diskdiagnostic/internal/outcome"
	"github.com/samiam95124/diskdiagnostic/internal/rng"
	"github.com/samiam95124/diskdiagnostic/internal/sector"
)

// Names of the supported patterns.
const (
	Cnt   = "cnt"
	Dwcnt = "dwcnt"
	Val   = "val"
	Rand  = "rand"
	Lba   = "lba"
	Buffs = "buffs"
)

// withSeed saves the process-global RNG seed, resets it to
// rng.ResetSeed, runs f, and restores the saved seed on every exit
// path including error, so that RNG-based user scripts see a stream
// independent of pattern/compare use.
func withSeed(f func()) {
	saved := rng.Global.Seed()
	rng.Reset()

	defer rng.Global.SetSeed(saved)

	f()
}

// Generate fills buf's first length sectors with the named pattern,
// starting from val. length <= 0 means buf's full capacity.
func Generate(buf *sector.Buffer, name string, val int64, length int) error {
	if length <= 0 {
		length = buf.Count()
	}

	switch name {
	case Cnt:
		writeCnt(buf, length)
	case Dwcnt:
		writeDwcnt(buf, length)
	case Val:
		writeVal(buf, val, length)
	case Rand:
		withSeed(func() { writeRand(buf, length) })
	case Lba:
		writeLba(buf, val, length)
	case Buffs:
		return diagerr.New(diagerr.Name, "pattern %q has no write side", name)
	default:
		return diagerr.New(diagerr.Name, "unknown pattern %q", name)
	}

	return nil
}

func writeCnt(buf *sector.Buffer, length int) {
	i := 0
	for s := 0; s < length; s++ {
		sec := buf.Sector(s)
		for j := range sec {
			sec[j] = byte(i % 256)
			i++
		}
	}
}

func writeDwcnt(buf *sector.Buffer, length int) {
	var counter uint32

	for s := 0; s < length; s++ {
		sec := buf.Sector(s)
		for j := 0; j+4 <= len(sec); j += 4 {
			binary.BigEndian.PutUint32(sec[j:j+4], counter)
			counter++
		}
	}
}

func writeVal(buf *sector.Buffer, val int64, length int) {
	v := uint32(val)

	for s := 0; s < length; s++ {
		sec := buf.Sector(s)
		for j := 0; j+4 <= len(sec); j += 4 {
			binary.BigEndian.PutUint32(sec[j:j+4], v)
		}
	}
}

func writeRand(buf *sector.Buffer, length int) {
	for s := 0; s < length; s++ {
		rng.Reset()

		sec := buf.Sector(s)
		for j := range sec {
			sec[j] = byte(rng.Global.Rand64() & 0xFF)
		}
	}
}

func writeLba(buf *sector.Buffer, val int64, length int) {
	for s := 0; s < length; s++ {
		sec := buf.Sector(s)
		binary.BigEndian.PutUint32(sec[0:4], uint32(val)+uint32(s))
	}
}

// Compare verifies buf's first length sectors against the named
// pattern (or, for buffs, compares buf against writeBuf byte for
// byte), reporting mismatches through policy. checkBreak is sampled
// after every byte; if it reports a pending break, Compare returns
// outcome.Exit when exitOnError is set, else outcome.Stop.
func Compare(
	buf, writeBuf *sector.Buffer,
	name string,
	val int64,
	length int,
	policy *MismatchPolicy,
	checkBreak func() bool,
	exitOnError bool,
) (outcome.T, error) {
	if length <= 0 {
		length = buf.Count()
	}

	policy.beginCompare()

	var result outcome.T = outcome.Ok
	var resultErr error

	done := false

	// report is called for every byte compared, matching or not: a
	// mismatch updates the policy state, but the break flag is sampled
	// after every byte regardless.
	report := func(offset int, got, want byte) bool {
		if got != want {
			if policy.observe(offset, got, want) == mismatchFail {
				result, resultErr = outcome.Error, diagerr.New(diagerr.Compare,
					"compare mismatch at offset %d: got 0x%02x expected 0x%02x", offset, got, want)
				return false
			}
		}

		if checkBreak != nil && checkBreak() {
			if exitOnError {
				result = outcome.Exit
			} else {
				result = outcome.Stop
			}

			return false
		}

		return true
	}

	switch name {
	case Cnt:
		i := 0
		for s := 0; s < length && !done; s++ {
			sec := buf.Sector(s)
			for j := range sec {
				want := byte(i % 256)
				if !report(s*sector.Size+j, sec[j], want) {
					done = true
					break
				}
				i++
			}
		}
	case Dwcnt:
		var counter uint32
		for s := 0; s < length && !done; s++ {
			sec := buf.Sector(s)
			for j := 0; j+4 <= len(sec); j += 4 {
				var want [4]byte
				binary.BigEndian.PutUint32(want[:], counter)
				if !compareCell(sec[j:j+4], want[:], s*sector.Size+j, report) {
					done = true
					break
				}
				counter++
			}
		}
	case Val:
		var want [4]byte
		binary.BigEndian.PutUint32(want[:], uint32(val))
		for s := 0; s < length && !done; s++ {
			sec := buf.Sector(s)
			for j := 0; j+4 <= len(sec); j += 4 {
				if !compareCell(sec[j:j+4], want[:], s*sector.Size+j, report) {
					done = true
					break
				}
			}
		}
	case Rand:
		withSeed(func() {
			for s := 0; s < length && !done; s++ {
				rng.Reset()

				sec := buf.Sector(s)
				for j := range sec {
					want := byte(rng.Global.Rand64() & 0xFF)
					if !report(s*sector.Size+j, sec[j], want) {
						done = true
						break
					}
				}
			}
		})
	case Lba:
		for s := 0; s < length && !done; s++ {
			sec := buf.Sector(s)

			var want [4]byte
			binary.BigEndian.PutUint32(want[:], uint32(val)+uint32(s))

			if !compareCell(sec[0:4], want[:], s*sector.Size, report) {
				done = true
			}
		}
	case Buffs:
		for s := 0; s < length && !done; s++ {
			rsec := buf.Sector(s)
			wsec := writeBuf.Sector(s)

			for j := range rsec {
				if !report(s*sector.Size+j, rsec[j], wsec[j]) {
					done = true
					break
				}
			}
		}
	default:
		return outcome.Error, diagerr.New(diagerr.Name, "unknown pattern %q", name)
	}

	policy.endCompare()

	if resultErr != nil {
		return result, resultErr
	}

	return result, nil
}

func compareCell(got, want []byte, offset int, report func(int, byte, byte) bool) bool {
	for k := range got {
		if !report(offset+k, got[k], want[k]) {
			return false
		}
	}

	return true
}
