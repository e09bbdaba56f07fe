//go:build linux

package terminal

import (
	"golang.org/x/sys/unix"
)

// MakeRaw switches the terminal on fd to raw mode: no echo, no line
// buffering and no signal keys. The returned func restores the saved
// settings.
func MakeRaw(fd uintptr) (restore func() error, err error) {
	settings, err := unix.IoctlGetTermios(int(fd), unix.TCGETS)
	if err != nil {
		return nil, err
	}
	saved := *settings

	settings.Iflag &^= unix.BRKINT | unix.ICRNL | unix.INPCK | unix.ISTRIP | unix.IXON
	settings.Oflag &^= unix.OPOST
	settings.Lflag &^= unix.ECHO | unix.ICANON | unix.IEXTEN | unix.ISIG
	settings.Cflag &^= unix.CSIZE | unix.PARENB
	settings.Cflag |= unix.CS8
	settings.Cc[unix.VMIN] = 1
	settings.Cc[unix.VTIME] = 0

	if err := unix.IoctlSetTermios(int(fd), unix.TCSETS, settings); err != nil {
		return nil, err
	}
	return func() error {
		return unix.IoctlSetTermios(int(fd), unix.TCSETS, &saved)
	}, nil
}

// IsTerminal reports whether fd refers to a terminal
func IsTerminal(fd uintptr) bool {
	_, err := unix.IoctlGetTermios(int(fd), unix.TCGETS)
	return err == nil
}
