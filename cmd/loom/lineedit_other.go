//go:build !linux

package main

import (
	"bufio"
	"fmt"
	"os"
)

// readInteractiveLine reads one line from stdin. Raw-terminal editing is
// only wired up on linux; other platforms get plain buffered reads.
func readInteractiveLine(prompt string) (string, error) {
	fmt.Print(prompt)
	r := bufio.NewReader(os.Stdin)
	s, err := r.ReadString('\n')
	if err != nil {
		return "", err
	}
	return trimTrailingNewline(s), nil
}

func trimTrailingNewline(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}
