//nolint:forbidigo // Printer is used for customer friendly output to terminal
package printer

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guumaster/logsymbols"
	"github.com/muesli/termenv"
)

//nolint:gochecknoglobals // read only, initialize objects once for performance.
var (
	successStyle      = lipgloss.NewStyle().Bold(true)
	errorStyle        = lipgloss.NewStyle().Bold(true)
	headerStyle       = lipgloss.NewStyle().Bold(true).Underline(true)
	notificationStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("178")) // Bright yellow, good for notifications
	stepStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
)

func init() {
	// NO_COLOR and dumb terminals get plain text, CI logs included
	if termenv.EnvNoColor() {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

func Successln(msg string) {
	fmt.Println(successStyle.Render(string(logsymbols.Success) + " " + msg))
}

func Successf(format string, args ...any) {
	newFormat, linesRemoved := trimAndCountTrailingNewlines(format)
	msg := successStyle.Render(string(logsymbols.Success) + " " + fmt.Sprintf(newFormat, args...))
	fmt.Print(msg)
	NewLine(linesRemoved)
}

func Errorln(msg string) {
	fmt.Fprintln(os.Stderr, errorStyle.Render(string(logsymbols.Error)+" "+msg))
}

func Warnln(msg string) {
	fmt.Println(notificationStyle.Render(string(logsymbols.Warning) + " " + msg))
}

func Infoln(msg string) {
	fmt.Println(msg)
}

func Infof(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Print(msg)
}

// Stepf prints a numbered progress line, e.g. "[2/4] Uploading archive".
func Stepf(current, total int, format string, args ...any) {
	prefix := stepStyle.Render(fmt.Sprintf("[%d/%d]", current, total))
	fmt.Println(prefix + " " + fmt.Sprintf(format, args...))
}

func Headerln(msg string) {
	fmt.Println(headerStyle.Render(msg))
}

func NewLine(numberOfLines int) {
	if numberOfLines <= 0 {
		return
	}
	fmt.Print(strings.Repeat("\n", numberOfLines))
}

// trimAndCountTrailingNewlines trims trailing newlines from a string and returns the count.
// Used for sylized output to ensure the cursor is reset properly.
func trimAndCountTrailingNewlines(s string) (string, int) {
	if s == "" {
		return "", 0
	}

	count := 0
	i := len(s)
	for i > 0 && s[i-1] == '\n' {
		i--
		count++
	}
	return s[:i], count
}
