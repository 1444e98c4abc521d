// Released under an MIT license. See LICENSE.

//go:build windows

package device

import "github.com/samiam95124/diskdiagnostic/internal/device/windisk"

// NewReal constructs this platform's real backend:
// unixdisk on Linux/Darwin, windisk on Windows.
func NewReal() T {
	return windisk.New()
}
