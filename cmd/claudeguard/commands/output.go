package commands

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/thoreinstein/claudeguard/internal/risk"
)

// headerWidth is the width of section rules.
const headerWidth = 70

var (
	bold    = color.New(color.Bold).SprintFunc()
	success = color.New(color.FgGreen).SprintFunc()
	warning = color.New(color.FgYellow).SprintFunc()
	failure = color.New(color.FgRed, color.Bold).SprintFunc()
	faint   = color.New(color.FgHiBlack).SprintFunc()
)

var riskColors = map[risk.Level]*color.Color{
	risk.Low:      color.New(color.FgGreen),
	risk.Medium:   color.New(color.FgYellow),
	risk.High:     color.New(color.FgHiRed),
	risk.Critical: color.New(color.FgRed, color.Bold),
}

// riskLabel renders a risk level padded to a fixed width, coloured by tier.
func riskLabel(l risk.Level) string {
	label := fmt.Sprintf("%-8s", l)
	if c, ok := riskColors[l]; ok {
		return c.Sprint(label)
	}
	return label
}

// printHeader writes a section title between rules.
func printHeader(w io.Writer, title string) {
	fmt.Fprintln(w, bold(title))
	fmt.Fprintln(w, strings.Repeat("-", headerWidth))
}

// truncate shortens a string to maxLen characters, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

// confirm asks question on out and reads a y/N answer from in.
// EOF counts as no.
func confirm(in io.Reader, out io.Writer, question string) (bool, error) {
	fmt.Fprintf(out, "%s [y/N]: ", strings.TrimSpace(question))
	reader := bufio.NewReader(in)
	line, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	ans := strings.TrimSpace(strings.ToLower(line))
	return ans == "y" || ans == "yes", nil
}

// stdinIsTerminal reports whether prompts can be answered interactively.
func stdinIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// isUnknownCommand matches cobra's error for an unrecognized subcommand.
func isUnknownCommand(err error) bool {
	return err != nil && strings.HasPrefix(err.Error(), "unknown command")
}
