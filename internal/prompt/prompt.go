// Package prompt reads interactive input for commands whose flags were omitted.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ErrNoInput is returned when input is required but stdin is exhausted
var ErrNoInput = errors.New("input required but none was provided")

var (
	in     io.Reader = os.Stdin
	out    io.Writer = os.Stderr
	reader *bufio.Reader
)

// IsInteractive reports whether stdin is a terminal
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func lineReader() *bufio.Reader {
	if reader == nil {
		reader = bufio.NewReader(in)
	}
	return reader
}

// Line asks for a visible value
func Line(label string) (string, error) {
	fmt.Fprintf(out, "%s: ", label)
	text, err := lineReader().ReadString('\n')
	switch {
	case errors.Is(err, io.EOF) && text == "":
		return "", ErrNoInput
	case err != nil && !errors.Is(err, io.EOF):
		return "", fmt.Errorf("read %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimRight(text, "\r\n"), nil
}

// Secret asks for a value without echoing it. Piped input is read as a plain line.
func Secret(label string) (string, error) {
	if in != os.Stdin || !IsInteractive() {
		return Line(label)
	}

	fmt.Fprintf(out, "%s: ", label)
	data, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", strings.ToLower(label), err)
	}
	return string(data), nil
}

// ValueOr returns value when set, otherwise prompts with ask
func ValueOr(value, label string, ask func(string) (string, error)) (string, error) {
	if value != "" {
		return value, nil
	}
	return ask(label)
}

// SetIO redirects prompts, used by tests and non-terminal front ends
func SetIO(r io.Reader, w io.Writer) {
	in = r
	out = w
	reader = nil
}
