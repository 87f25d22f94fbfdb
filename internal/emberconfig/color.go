package emberconfig

import (
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// ColorMode is the --color flag's three-way setting, grounded on the
// teacher CLI's own "auto|on|off" persistent flag.
type ColorMode string

const (
	ColorAuto ColorMode = "auto"
	ColorOn   ColorMode = "on"
	ColorOff  ColorMode = "off"
)

// ApplyColorMode sets fatih/color's global NoColor switch for mode,
// deciding "auto" by whether stderr is an interactive terminal.
func ApplyColorMode(mode ColorMode) {
	switch mode {
	case ColorOn:
		color.NoColor = false
	case ColorOff:
		color.NoColor = true
	default:
		color.NoColor = !IsTerminal(os.Stderr)
	}
}

// IsTerminal reports whether f is attached to an interactive terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// ErrorColor and WarnColor style CLI diagnostics consistently across
// subcommands.
var (
	ErrorColor = color.New(color.FgRed, color.Bold)
	WarnColor  = color.New(color.FgYellow)
)
