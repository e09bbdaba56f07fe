//go:build !linux

package terminal

import "errors"

// ErrUnsupported is returned where raw mode is not implemented
var ErrUnsupported = errors.New("raw terminal mode is only supported on linux")

// MakeRaw is not available on this platform
func MakeRaw(fd uintptr) (restore func() error, err error) {
	return nil, ErrUnsupported
}

// IsTerminal always reports false on this platform
func IsTerminal(fd uintptr) bool {
	return false
}
