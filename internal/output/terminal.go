package output

import (
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// IsTerminal reports whether f is attached to a terminal, Cygwin and MSYS
// pseudo terminals included.
func IsTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// ColorDisabled reports whether output to f should be plain text.
func ColorDisabled(f *os.File, noColorFlag bool) bool {
	if noColorFlag || color.NoColor {
		return true
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return true
	}
	return !IsTerminal(f)
}
