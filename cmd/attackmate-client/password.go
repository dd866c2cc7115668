package main

import (
	"os"
	"strings"

	"golang.org/x/term"
)

// readTerminalPassword reads a password without echo when f is a terminal.
// isTerm is false when f is not a terminal and nothing was read.
func readTerminalPassword(f *os.File) (pw string, isTerm bool, err error) {
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return "", false, nil
	}
	b, err := term.ReadPassword(fd)
	if err != nil {
		return "", true, err
	}
	return string(b), true, nil
}

func trimNewline(s string) string {
	return strings.TrimRight(s, "\r\n")
}
