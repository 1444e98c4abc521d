// Released under an MIT license. See LICENSE.

// Package simfile provides a file-backed simulator of the block
// device interface: each "drive" is a regular OS file treated as a
// flat array of 512-byte sectors, grown to a configured sector count
// on first use. Backing the drives with files rather than in-process
// byte slices means they behave like real disks across process
// restarts.
package simfile

import (
	"fmt"
	"os"

	"github.com/samiam95124/diskdiagnostic/internal/device"
	"github.com/samiam95124/diskdiagnostic/internal/sector"
)

// DefaultSectors is how many sectors a simulated drive image is
// created with the first time it is opened.
const DefaultSectors = 65536

// T is a file-backed simulator satisfying device.T.
type T struct {
	dir     string
	current int
	have    bool
	file    *os.File
}

// New creates a simulator that stores drive images under dir.
func New(dir string) *T {
	return &T{dir: dir}
}

var _ device.T = (*T)(nil)

// Init is a no-op; simulated drives are created lazily on open.
func (s *T) Init() error { return nil }

// Deinit closes any open drive.
func (s *T) Deinit() error {
	s.CloseDrive()
	return nil
}

func (s *T) DriveName(n int) (string, bool) {
	if !device.InRange(n) {
		return "", false
	}

	return fmt.Sprintf("%s/discdiag.drive%d.img", s.dir, n), true
}

func (s *T) SetDrive(n int) error {
	if !device.InRange(n) {
		return fmt.Errorf("drive %d out of range", n)
	}

	s.CloseDrive()

	name, _ := s.DriveName(n)

	f, err := s.open(name)
	if err != nil {
		return err
	}

	s.file = f
	s.current = n
	s.have = true

	return nil
}

func (s *T) open(name string) (*os.File, error) {
	f, err := os.OpenFile(name, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	if info.Size() == 0 {
		if err := f.Truncate(int64(DefaultSectors) * sector.Size); err != nil {
			f.Close()
			return nil, err
		}
	}

	return f, nil
}

func (s *T) GetDrive() (int, bool) {
	return s.current, s.have
}

func (s *T) TestDrive(n int) error {
	if !device.InRange(n) {
		return fmt.Errorf("drive %d out of range", n)
	}

	name, _ := s.DriveName(n)

	f, err := s.open(name)
	if err != nil {
		return err
	}

	return f.Close()
}

func (s *T) ReadSectors(buf []byte, lba, count int) error {
	if !s.have {
		return fmt.Errorf("no current drive")
	}

	_, err := s.file.ReadAt(buf[:count*sector.Size], int64(lba)*sector.Size)

	return err
}

func (s *T) WriteSectors(buf []byte, lba, count int) error {
	if !s.have {
		return fmt.Errorf("no current drive")
	}

	_, err := s.file.WriteAt(buf[:count*sector.Size], int64(lba)*sector.Size)

	return err
}

func (s *T) SizeCurrent() (int64, error) {
	if !s.have {
		return 0, fmt.Errorf("no current drive")
	}

	info, err := s.file.Stat()
	if err != nil {
		return 0, err
	}

	return info.Size(), nil
}

func (s *T) SizeOf(n int) (int64, error) {
	name, ok := s.DriveName(n)
	if !ok {
		return 0, fmt.Errorf("drive %d out of range", n)
	}

	info, err := os.Stat(name)
	if os.IsNotExist(err) {
		return int64(DefaultSectors) * sector.Size, nil
	}

	if err != nil {
		return 0, err
	}

	return info.Size(), nil
}

func (s *T) CloseDrive() {
	if s.file != nil {
		s.file.Close()
		s.file = nil
	}

	s.have = false
}
