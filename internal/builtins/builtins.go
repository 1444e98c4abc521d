// Released under an MIT license. See LICENSE.

// Package builtins resolves the expression evaluator's built-in
// variable names: drvsiz, rand, lbarnd, secsiz, bufsiz.
package builtins

import (
	"github.com/samiam95124/diskdiagnostic/internal/device"
	"github.com/samiam95124/diskdiagnostic/internal/diagerr"
	"github.com/samiam95124/diskdiagnostic/internal/rng"
	"github.com/samiam95124/diskdiagnostic/internal/sector"
)

// T resolves the five built-in identifiers against the live drive and
// buffer state. It satisfies eval.Builtins.
type T struct {
	Device  device.T
	BufSize int // NOSECS, the sector-count capacity of a buffer
}

// New creates a builtins resolver over dev with the given buffer
// sector capacity.
func New(dev device.T, bufSize int) *T {
	return &T{Device: dev, BufSize: bufSize}
}

// Lookup implements eval.Builtins.
func (t *T) Lookup(name string) (int64, bool, error) {
	switch name {
	case "secsiz":
		return sector.Size, true, nil
	case "bufsiz":
		return int64(t.BufSize), true, nil
	case "rand":
		return int64(rng.Global.Rand64()), true, nil
	case "drvsiz":
		size, err := t.driveSize()
		if err != nil {
			return 0, true, err
		}

		return size, true, nil
	case "lbarnd":
		size, err := t.driveSize()
		if err != nil {
			return 0, true, err
		}

		if size == 0 {
			return 0, true, diagerr.New(diagerr.State, "current drive has no sectors")
		}

		return int64(rng.Global.Rand64() % uint64(size)), true, nil
	}

	return 0, false, nil
}

// driveSize returns the current drive's size in sectors.
func (t *T) driveSize() (int64, error) {
	if _, ok := t.Device.GetDrive(); !ok {
		return 0, diagerr.New(diagerr.State, "no current drive")
	}

	bytes, err := t.Device.SizeCurrent()
	if err != nil {
		return 0, diagerr.New(diagerr.IO, "%v", err)
	}

	return bytes / sector.Size, nil
}
