//go:build linux

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

var interactiveHistory []string

// readInteractiveLine reads one line from stdin with minimal raw-terminal
// editing: cursor movement, backspace and up/down history. Falls back to
// buffered reads when stdin is not a TTY. Returns io.EOF when input is
// closed.
func readInteractiveLine(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !stdinIsTTY(fd) {
		r := bufio.NewReader(os.Stdin)
		s, err := r.ReadString('\n')
		if err != nil {
			return "", err
		}
		return trimTrailingNewline(s), nil
	}

	oldState, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return "", err
	}
	newState := *oldState
	newState.Lflag &^= unix.ICANON | unix.ECHO
	newState.Cc[unix.VMIN] = 1
	newState.Cc[unix.VTIME] = 0
	if err := unix.IoctlSetTermios(fd, unix.TCSETS, &newState); err != nil {
		return "", err
	}
	defer func() {
		_ = unix.IoctlSetTermios(fd, unix.TCSETS, oldState)
	}()

	fmt.Print(prompt)
	line := make([]byte, 0, 128)
	cursor := 0
	histPos := len(interactiveHistory)
	draft := ""

	redraw := func() {
		fmt.Printf("\r%s%s\x1b[K", prompt, string(line))
		if cursor < len(line) {
			fmt.Printf("\r%s%s", prompt, string(line[:cursor]))
		}
	}
	setLine := func(s string) {
		line = append(line[:0], s...)
		cursor = len(line)
		redraw()
	}

	var buf [8]byte
	for {
		n, err := os.Stdin.Read(buf[:1])
		if err != nil || n == 0 {
			fmt.Println()
			return "", io.EOF
		}
		b := buf[0]

		switch {
		case b == '\r' || b == '\n':
			fmt.Println()
			out := string(line)
			if out != "" {
				interactiveHistory = append(interactiveHistory, out)
			}
			return out, nil
		case b == 0x03: // ctrl-c
			fmt.Println()
			return "", io.EOF
		case b == 0x04: // ctrl-d
			if len(line) == 0 {
				fmt.Println()
				return "", io.EOF
			}
		case b == 0x7f || b == 0x08: // backspace
			if cursor > 0 {
				line = append(line[:cursor-1], line[cursor:]...)
				cursor--
				redraw()
			}
		case b == 0x1b: // escape sequence
			if n, _ := os.Stdin.Read(buf[1:3]); n < 2 || buf[1] != '[' {
				continue
			}
			switch buf[2] {
			case 'A': // up
				if histPos > 0 {
					if histPos == len(interactiveHistory) {
						draft = string(line)
					}
					histPos--
					setLine(interactiveHistory[histPos])
				}
			case 'B': // down
				if histPos < len(interactiveHistory) {
					histPos++
					if histPos == len(interactiveHistory) {
						setLine(draft)
					} else {
						setLine(interactiveHistory[histPos])
					}
				}
			case 'C': // right
				if cursor < len(line) {
					cursor++
					redraw()
				}
			case 'D': // left
				if cursor > 0 {
					cursor--
					redraw()
				}
			}
		case b >= 0x20:
			line = append(line, 0)
			copy(line[cursor+1:], line[cursor:])
			line[cursor] = b
			cursor++
			redraw()
		}
	}
}

func stdinIsTTY(fd int) bool {
	_, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	return err == nil
}

func trimTrailingNewline(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}
