// Released under an MIT license. See LICENSE.

//go:build linux || darwin

package device

import "github.com/samiam95124/diskdiagnostic/internal/device/unixdisk"

// NewReal constructs this platform's real backend:
// unixdisk on Linux/Darwin, windisk on Windows.
func NewReal() T {
	return unixdisk.New()
}
