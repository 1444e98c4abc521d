// Released under an MIT license. See LICENSE.

//go:build windows

// Package windisk provides discdiag's real block device backend for
// Windows: it opens \\.\PhysicalDriveN with CreateFile, sizes it via
// DeviceIoControl(IOCTL_DISK_GET_LENGTH_INFO), and reads/writes with
// ReadFile/WriteFile at sector-aligned offsets.
package windisk

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/samiam95124/diskdiagnostic/internal/sector"
)

const ioctlDiskGetLengthInfo = 0x0007405C

// T is a real Windows physical-drive backend satisfying device.T.
type T struct {
	current int
	have    bool
	handle  windows.Handle
}

// New creates an unopened backend.
func New() *T {
	return &T{}
}

func (w *T) Init() error   { return nil }
func (w *T) Deinit() error { w.CloseDrive(); return nil }

func (w *T) DriveName(n int) (string, bool) {
	if n < 0 || n > 9 {
		return "", false
	}

	return fmt.Sprintf(`\\.\PhysicalDrive%d`, n), true
}

func (w *T) SetDrive(n int) error {
	name, ok := w.DriveName(n)
	if !ok {
		return fmt.Errorf("drive %d out of range", n)
	}

	w.CloseDrive()

	h, err := windows.CreateFile(
		windows.StringToUTF16Ptr(name),
		windows.GENERIC_READ|windows.GENERIC_WRITE,
		windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE,
		nil,
		windows.OPEN_EXISTING,
		0,
		0,
	)
	if err != nil {
		return err
	}

	w.handle = h
	w.current = n
	w.have = true

	return nil
}

func (w *T) GetDrive() (int, bool) {
	return w.current, w.have
}

func (w *T) TestDrive(n int) error {
	name, ok := w.DriveName(n)
	if !ok {
		return fmt.Errorf("drive %d out of range", n)
	}

	h, err := windows.CreateFile(
		windows.StringToUTF16Ptr(name),
		windows.GENERIC_READ,
		windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE,
		nil,
		windows.OPEN_EXISTING,
		0,
		0,
	)
	if err != nil {
		return err
	}

	return windows.CloseHandle(h)
}

func (w *T) ReadSectors(buf []byte, lba, count int) error {
	if !w.have {
		return fmt.Errorf("no current drive")
	}

	if _, err := windows.SetFilePointer(w.handle, int32(int64(lba)*sector.Size), nil, windows.FILE_BEGIN); err != nil {
		return err
	}

	var done uint32

	return windows.ReadFile(w.handle, buf[:count*sector.Size], &done, nil)
}

func (w *T) WriteSectors(buf []byte, lba, count int) error {
	if !w.have {
		return fmt.Errorf("no current drive")
	}

	if _, err := windows.SetFilePointer(w.handle, int32(int64(lba)*sector.Size), nil, windows.FILE_BEGIN); err != nil {
		return err
	}

	var done uint32

	return windows.WriteFile(w.handle, buf[:count*sector.Size], &done, nil)
}

type lengthInfo struct {
	Length int64
}

func (w *T) SizeCurrent() (int64, error) {
	if !w.have {
		return 0, fmt.Errorf("no current drive")
	}

	return sizeOfHandle(w.handle)
}

func (w *T) SizeOf(n int) (int64, error) {
	name, ok := w.DriveName(n)
	if !ok {
		return 0, fmt.Errorf("drive %d out of range", n)
	}

	h, err := windows.CreateFile(
		windows.StringToUTF16Ptr(name),
		windows.GENERIC_READ,
		windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE,
		nil,
		windows.OPEN_EXISTING,
		0,
		0,
	)
	if err != nil {
		return 0, err
	}
	defer windows.CloseHandle(h)

	return sizeOfHandle(h)
}

// sizeOfHandle returns the device's size in bytes. Any failure here is
// surfaced as an error.
func sizeOfHandle(h windows.Handle) (int64, error) {
	var info lengthInfo

	var bytesReturned uint32

	err := windows.DeviceIoControl(
		h,
		ioctlDiskGetLengthInfo,
		nil, 0,
		(*byte)(unsafe.Pointer(&info)), uint32(unsafe.Sizeof(info)),
		&bytesReturned,
		nil,
	)
	if err != nil {
		return 0, err
	}

	return info.Length, nil
}

func (w *T) CloseDrive() {
	if w.have {
		windows.CloseHandle(w.handle)
	}

	w.have = false
}
