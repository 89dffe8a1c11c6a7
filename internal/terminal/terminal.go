// Package terminal provides small helpers for interactive prompts.
package terminal

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"golang.org/x/term"
)

// Interactive reports whether stdout is attached to a terminal.
func Interactive() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// Width returns the terminal width, or 80 when it cannot be determined.
func Width() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return 80
}

// ReadSecret prints prompt and reads one line from in. When stdin is a
// terminal the input is not echoed; otherwise the line is read as is and
// erased from the screen afterwards.
func ReadSecret(prompt string, in io.Reader) (string, error) {
	fmt.Print(prompt)
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Println()
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	line = strings.TrimSpace(line)
	if Interactive() {
		clearLines(LinesUsed(len(prompt)+len(line), Width()) + 1)
	}
	return line, nil
}

// LinesUsed returns how many rows n characters occupy at the given width.
func LinesUsed(n, width int) int {
	if width <= 0 {
		width = 80
	}
	lines := int(math.Ceil(float64(n) / float64(width)))
	if lines < 1 {
		return 1
	}
	return lines
}

// clearLines erases the current row and the n-1 rows above it.
func clearLines(n int) {
	for i := 0; i < n; i++ {
		fmt.Print("\r\x1b[2K")
		if i < n-1 {
			fmt.Print("\x1b[1A")
		}
	}
}
