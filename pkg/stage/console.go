package stage

// Console receives the advisory and the per-pass error summary.
type Console interface {
	Log(msg string)
}

// ConsoleFunc adapts a function to Console.
type ConsoleFunc func(msg string)

// Log calls f.
func (f ConsoleFunc) Log(msg string) {
	f(msg)
}

// Styler is implemented by consoles that can highlight headings. Plain
// consoles receive unstyled text.
type Styler interface {
	StyleError(s string) string
	StyleWarning(s string) string
}

func styleError(c Console, s string) string {
	if st, ok := c.(Styler); ok {
		return st.StyleError(s)
	}
	return s
}

func styleWarning(c Console, s string) string {
	if st, ok := c.(Styler); ok {
		return st.StyleWarning(s)
	}
	return s
}
