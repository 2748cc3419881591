package cli

import (
	"fmt"
	"io"
)

// consoleNotifier prints service notifications straight to the terminal.
type consoleNotifier struct {
	w io.Writer
}

func (n *consoleNotifier) Success(msg string) { fmt.Fprintln(n.w, "[ok]", msg) }
func (n *consoleNotifier) Info(msg string)    { fmt.Fprintln(n.w, "[info]", msg) }
func (n *consoleNotifier) Warning(msg string) { fmt.Fprintln(n.w, "[warn]", msg) }
func (n *consoleNotifier) Error(msg string)   { fmt.Fprintln(n.w, "[error]", msg) }
