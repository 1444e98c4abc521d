// Released under an MIT license. See LICENSE.

package device

import "testing"

// fakeBackend is a minimal in-memory T used to verify Hybrid's
// drive-9-goes-to-the-simulator routing without touching real hardware.
type fakeBackend struct {
	name    string
	current int
	have    bool
}

func (f *fakeBackend) Init() error   { return nil }
func (f *fakeBackend) Deinit() error { return nil }

func (f *fakeBackend) SetDrive(n int) error {
	f.current = n
	f.have = true

	return nil
}

func (f *fakeBackend) GetDrive() (int, bool) { return f.current, f.have }
func (f *fakeBackend) TestDrive(int) error   { return nil }

func (f *fakeBackend) ReadSectors([]byte, int, int) error  { return nil }
func (f *fakeBackend) WriteSectors([]byte, int, int) error { return nil }

func (f *fakeBackend) SizeCurrent() (int64, error) { return 100, nil }
func (f *fakeBackend) SizeOf(int) (int64, error)   { return 100, nil }

func (f *fakeBackend) CloseDrive() { f.have = false }

func (f *fakeBackend) DriveName(n int) (string, bool) { return f.name, true }

func TestHybridRoutesDriveNineToSimulator(t *testing.T) {
	real := &fakeBackend{name: "real"}
	sim := &fakeBackend{name: "sim"}

	h := NewHybrid(real, sim)

	if err := h.SetDrive(simDrive); err != nil {
		t.Fatalf("SetDrive(9): %v", err)
	}

	if !sim.have {
		t.Fatal("drive 9 should have opened the simulator backend")
	}

	if real.have {
		t.Fatal("drive 9 should not touch the real backend")
	}
}

func TestHybridRoutesOtherDrivesToReal(t *testing.T) {
	real := &fakeBackend{name: "real"}
	sim := &fakeBackend{name: "sim"}

	h := NewHybrid(real, sim)

	if err := h.SetDrive(0); err != nil {
		t.Fatalf("SetDrive(0): %v", err)
	}

	if !real.have {
		t.Fatal("drive 0 should have opened the real backend")
	}

	if sim.have {
		t.Fatal("drive 0 should not touch the simulator backend")
	}
}

func TestHybridRejectsOutOfRangeDrive(t *testing.T) {
	h := NewHybrid(&fakeBackend{}, &fakeBackend{})

	if err := h.SetDrive(10); err == nil {
		t.Fatal("SetDrive(10) should fail, out of [0, 9] range")
	}
}

func TestHybridSwitchingDrivesClosesThePrevious(t *testing.T) {
	real := &fakeBackend{name: "real"}
	sim := &fakeBackend{name: "sim"}

	h := NewHybrid(real, sim)

	if err := h.SetDrive(0); err != nil {
		t.Fatalf("SetDrive(0): %v", err)
	}

	if err := h.SetDrive(simDrive); err != nil {
		t.Fatalf("SetDrive(9): %v", err)
	}

	if real.have {
		t.Fatal("switching to drive 9 should close the previously open real drive")
	}
}
