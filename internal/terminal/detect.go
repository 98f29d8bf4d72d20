// Package terminal provides terminal detection and keypress helpers.
package terminal

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

var isTerminal = term.IsTerminal

// IsInteractive reports whether stdin and stdout are both interactive terminals.
func IsInteractive() bool {
	return isTerminal(int(os.Stdin.Fd())) && isTerminal(int(os.Stdout.Fd()))
}

// WaitForKey prints prompt to out and blocks until a line (or EOF) is read from in.
func WaitForKey(in io.Reader, out io.Writer, prompt string) error {
	if prompt != "" {
		if _, err := fmt.Fprint(out, prompt); err != nil {
			return err
		}
	}
	_, err := bufio.NewReader(in).ReadString('\n')
	if err == io.EOF {
		return nil
	}
	return err
}
