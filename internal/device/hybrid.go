// Released under an MIT license. See LICENSE.

package device

import "fmt"

// simDrive is the logical drive number always routed to the
// file-backed simulator, so package tests and discdiag.ini-driven
// smoke tests never require real hardware.
const simDrive = 9

// Simulator is the subset of T a simulated backend must provide to
// back simDrive; internal/device/simfile.T satisfies it.
type Simulator interface {
	T
}

// Hybrid routes drive simDrive to a simulator and every other drive
// in [0, 9) to a real backend, so "drive 9" always works without
// hardware while 0-8 address actual devices.
type Hybrid struct {
	real T
	sim  Simulator

	current int
	have    bool
	onSim   bool
}

// NewHybrid combines a real backend (unixdisk.T or windisk.T) with a
// simulator backend (simfile.T) behind one T.
func NewHybrid(real T, sim Simulator) *Hybrid {
	return &Hybrid{real: real, sim: sim}
}

var _ T = (*Hybrid)(nil)

func (h *Hybrid) backendFor(n int) T {
	if n == simDrive {
		return h.sim
	}

	return h.real
}

func (h *Hybrid) Init() error {
	if err := h.real.Init(); err != nil {
		return err
	}

	return h.sim.Init()
}

func (h *Hybrid) Deinit() error {
	h.CloseDrive()

	if err := h.real.Deinit(); err != nil {
		return err
	}

	return h.sim.Deinit()
}

func (h *Hybrid) SetDrive(n int) error {
	if !InRange(n) {
		return fmt.Errorf("drive %d out of range", n)
	}

	h.CloseDrive()

	if err := h.backendFor(n).SetDrive(n); err != nil {
		return err
	}

	h.current = n
	h.have = true
	h.onSim = n == simDrive

	return nil
}

func (h *Hybrid) GetDrive() (int, bool) {
	return h.current, h.have
}

func (h *Hybrid) TestDrive(n int) error {
	if !InRange(n) {
		return fmt.Errorf("drive %d out of range", n)
	}

	return h.backendFor(n).TestDrive(n)
}

func (h *Hybrid) activeBackend() T {
	if h.onSim {
		return h.sim
	}

	return h.real
}

func (h *Hybrid) ReadSectors(buf []byte, lba, count int) error {
	return h.activeBackend().ReadSectors(buf, lba, count)
}

func (h *Hybrid) WriteSectors(buf []byte, lba, count int) error {
	return h.activeBackend().WriteSectors(buf, lba, count)
}

func (h *Hybrid) SizeCurrent() (int64, error) {
	return h.activeBackend().SizeCurrent()
}

func (h *Hybrid) SizeOf(n int) (int64, error) {
	if !InRange(n) {
		return 0, fmt.Errorf("drive %d out of range", n)
	}

	return h.backendFor(n).SizeOf(n)
}

func (h *Hybrid) CloseDrive() {
	if !h.have {
		return
	}

	h.activeBackend().CloseDrive()
	h.have = false
}

func (h *Hybrid) DriveName(n int) (string, bool) {
	if !InRange(n) {
		return "", false
	}

	return h.backendFor(n).DriveName(n)
}
