package logging

import (
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ColorEnv overrides colour detection: "always", "never" or "auto".
const ColorEnv = "CLAUDEGUARD_COLOR"

// IsTTY reports whether w is a terminal. Anything with an Fd method
// is checked, not just *os.File.
func IsTTY(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(f.Fd()))
}

// SupportsColor reports whether ANSI colour should be written to w.
// CLAUDEGUARD_COLOR wins, then NO_COLOR and TERM=dumb disable colour,
// and otherwise w must be a terminal.
func SupportsColor(w io.Writer) bool {
	return colorDecision(IsTTY(w))
}

func colorDecision(isTTY bool) bool {
	switch strings.ToLower(os.Getenv(ColorEnv)) {
	case "always", "1", "true":
		return true
	case "never", "0", "false":
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return isTTY
}
