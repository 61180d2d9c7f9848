package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// PasswordReader prints label and returns the password typed after it.
type PasswordReader func(label string) (string, error)

// TerminalPasswordReader reads without echo when stdin is a terminal and
// falls back to plain line reads for pipes.
func TerminalPasswordReader(stdin *os.File, prompt io.Writer) PasswordReader {
	reader := bufio.NewReader(stdin)
	return func(label string) (string, error) {
		if stdin == nil {
			return "", errors.New("stdin unavailable")
		}
		fmt.Fprint(prompt, label)

		fd := int(stdin.Fd())
		if term.IsTerminal(fd) {
			raw, err := term.ReadPassword(fd)
			fmt.Fprintln(prompt)
			if err != nil {
				return "", err
			}
			return string(raw), nil
		}

		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		if errors.Is(err, io.EOF) && line == "" {
			return "", io.ErrUnexpectedEOF
		}
		return strings.TrimRight(line, "\r\n"), nil
	}
}
