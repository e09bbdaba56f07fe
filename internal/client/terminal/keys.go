package terminal

import (
	"github.com/mcoot/multiplayer-demo/internal/client"
)

// Key is one decoded keystroke
type Key struct {
	Dir  client.Direction
	Quit bool
}

const (
	keyEsc   = 0x1b
	keyCtrlC = 0x03
)

// Decode turns raw terminal bytes into keystrokes. An incomplete escape
// sequence at the end of buf is returned as rest so the caller can prepend
// it to the next read. Unrecognised bytes are skipped.
func Decode(buf []byte) (keys []Key, rest []byte) {
	for i := 0; i < len(buf); i++ {
		b := buf[i]
		switch b {
		case keyCtrlC, 'q', 'Q':
			keys = append(keys, Key{Quit: true})
		case 'w', 'W':
			keys = append(keys, Key{Dir: client.DirUp})
		case 's', 'S':
			keys = append(keys, Key{Dir: client.DirDown})
		case 'a', 'A':
			keys = append(keys, Key{Dir: client.DirLeft})
		case 'd', 'D':
			keys = append(keys, Key{Dir: client.DirRight})
		case keyEsc:
			if i+1 >= len(buf) {
				return keys, buf[i:]
			}
			if buf[i+1] != '[' && buf[i+1] != 'O' {
				continue
			}
			if i+2 >= len(buf) {
				return keys, buf[i:]
			}
			if dir, ok := arrow(buf[i+2]); ok {
				keys = append(keys, Key{Dir: dir})
			}
			i += 2
		}
	}
	return keys, nil
}

func arrow(b byte) (client.Direction, bool) {
	switch b {
	case 'A':
		return client.DirUp, true
	case 'B':
		return client.DirDown, true
	case 'C':
		return client.DirRight, true
	case 'D':
		return client.DirLeft, true
	}
	return 0, false
}
