// Released under an MIT license. See LICENSE.

//go:build linux || darwin

// Package unixdisk provides discdiag's real block device backend for
// Linux and Darwin: it opens /dev/<name>, sizes it via ioctl
// (BLKGETSIZE64 on Linux, DKIOCGETBLOCKCOUNT/DKIOCGETBLOCKSIZE on
// Darwin), and reads/writes at sector-aligned offsets.
package unixdisk

import (
	"fmt"
	"os"
	"runtime"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/samiam95124/diskdiagnostic/internal/sector"
)

const (
	blkGetSize64      = 0x80081272 // Linux BLKGETSIZE64
	dkIOCGetBlockSize = 0x40046418 // Darwin DKIOCGETBLOCKSIZE
	dkIOCGetBlockCnt  = 0x40086419 // Darwin DKIOCGETBLOCKCOUNT
)

// T is a real unix block device backend satisfying device.T.
type T struct {
	current int
	have    bool
	fd      *os.File
}

// New creates an unopened backend.
func New() *T {
	return &T{}
}

func (u *T) Init() error   { return nil }
func (u *T) Deinit() error { u.CloseDrive(); return nil }

// DriveName maps a drive number to its device node: /dev/sd<a..> on
// Linux, /dev/diskN on Darwin.
func (u *T) DriveName(n int) (string, bool) {
	if n < 0 || n > 9 {
		return "", false
	}

	if runtime.GOOS == "darwin" {
		return fmt.Sprintf("/dev/disk%d", n), true
	}

	return fmt.Sprintf("/dev/sd%c", 'a'+n), true
}

func (u *T) SetDrive(n int) error {
	name, ok := u.DriveName(n)
	if !ok {
		return fmt.Errorf("drive %d out of range", n)
	}

	u.CloseDrive()

	f, err := os.OpenFile(name, os.O_RDWR, 0)
	if err != nil {
		return err
	}

	u.fd = f
	u.current = n
	u.have = true

	return nil
}

func (u *T) GetDrive() (int, bool) {
	return u.current, u.have
}

func (u *T) TestDrive(n int) error {
	name, ok := u.DriveName(n)
	if !ok {
		return fmt.Errorf("drive %d out of range", n)
	}

	f, err := os.OpenFile(name, os.O_RDONLY, 0)
	if err != nil {
		return err
	}

	return f.Close()
}

func (u *T) ReadSectors(buf []byte, lba, count int) error {
	if !u.have {
		return fmt.Errorf("no current drive")
	}

	_, err := u.fd.ReadAt(buf[:count*sector.Size], int64(lba)*sector.Size)

	return err
}

func (u *T) WriteSectors(buf []byte, lba, count int) error {
	if !u.have {
		return fmt.Errorf("no current drive")
	}

	_, err := u.fd.WriteAt(buf[:count*sector.Size], int64(lba)*sector.Size)

	return err
}

func (u *T) SizeCurrent() (int64, error) {
	if !u.have {
		return 0, fmt.Errorf("no current drive")
	}

	return sizeOfFd(u.fd)
}

func (u *T) SizeOf(n int) (int64, error) {
	name, ok := u.DriveName(n)
	if !ok {
		return 0, fmt.Errorf("drive %d out of range", n)
	}

	f, err := os.OpenFile(name, os.O_RDONLY, 0)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	return sizeOfFd(f)
}

// sizeOfFd returns the device's size in bytes. Any ioctl failure is
// surfaced as an error.
func sizeOfFd(f *os.File) (int64, error) {
	if runtime.GOOS == "darwin" {
		var blockSize uint32
		if err := ioctl(f.Fd(), dkIOCGetBlockSize, uintptr(unsafe.Pointer(&blockSize))); err != nil {
			return 0, err
		}

		var blockCount uint64
		if err := ioctl(f.Fd(), dkIOCGetBlockCnt, uintptr(unsafe.Pointer(&blockCount))); err != nil {
			return 0, err
		}

		return int64(blockSize) * int64(blockCount), nil
	}

	var sizeBytes uint64
	if err := ioctl(f.Fd(), blkGetSize64, uintptr(unsafe.Pointer(&sizeBytes))); err != nil {
		return 0, err
	}

	return int64(sizeBytes), nil
}

func (u *T) CloseDrive() {
	if u.fd != nil {
		u.fd.Close()
		u.fd = nil
	}

	u.have = false
}

func ioctl(fd uintptr, req uint, arg uintptr) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, uintptr(req), arg)
	if errno != 0 {
		return errno
	}

	return nil
}
