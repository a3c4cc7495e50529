// Package console is the default sink for the lint summary and advisories.
package console

import (
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Console writes one message per Log call. Headings are colored when the
// writer is a terminal and NO_COLOR is unset.
type Console struct {
	mu        sync.Mutex
	out       io.Writer
	color     bool
	errStyle  lipgloss.Style
	warnStyle lipgloss.Style
}

// Option configures a Console.
type Option func(*Console)

// WithColor forces styling on or off.
func WithColor(on bool) Option {
	return func(c *Console) { c.color = on }
}

// New returns a Console writing to out. A nil out means stdout.
func New(out io.Writer, opts ...Option) *Console {
	if out == nil {
		out = os.Stdout
	}
	c := &Console{out: out, color: isTTYWriter(out) && os.Getenv("NO_COLOR") == ""}
	for _, opt := range opts {
		opt(c)
	}

	r := lipgloss.NewRenderer(out)
	c.errStyle = r.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	c.warnStyle = r.NewStyle().Foreground(lipgloss.Color("11"))
	return c
}

// Log writes msg followed by a newline.
func (c *Console) Log(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = io.WriteString(c.out, msg+"\n")
}

// StyleError highlights an error heading.
func (c *Console) StyleError(s string) string {
	if !c.color {
		return s
	}
	return c.errStyle.Render(s)
}

// StyleWarning highlights a warning.
func (c *Console) StyleWarning(s string) string {
	if !c.color {
		return s
	}
	return c.warnStyle.Render(s)
}

// isTTYWriter reports whether w is a terminal.
func isTTYWriter(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
