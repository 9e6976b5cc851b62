// Package ui provides colored console output for the conductor CLI.
package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

var (
	// Colors
	Red    = color.New(color.FgRed)
	Green  = color.New(color.FgGreen)
	Yellow = color.New(color.FgYellow)
	Blue   = color.New(color.FgBlue)
	Cyan   = color.New(color.FgCyan)
	Bold   = color.New(color.Bold)
	Faint  = color.New(color.Faint)
)

var (
	out    io.Writer = color.Output
	errOut io.Writer = color.Error
)

// SetOutput redirects normal output and returns the previous writer.
func SetOutput(w io.Writer) io.Writer {
	prev := out
	out = w
	return prev
}

// SetErrorOutput redirects error output and returns the previous writer.
func SetErrorOutput(w io.Writer) io.Writer {
	prev := errOut
	errOut = w
	return prev
}

// DisableColor turns off ANSI colors for all output.
func DisableColor(disabled bool) {
	color.NoColor = disabled
}

// Success prints a green success message with checkmark.
func Success(format string, args ...any) {
	Green.Fprintf(out, "✓ "+format+"\n", args...)
}

// Error prints a red error message with X to the error output.
func Error(format string, args ...any) {
	Red.Fprintf(errOut, "✗ "+format+"\n", args...)
}

// Warning prints a yellow warning message.
func Warning(format string, args ...any) {
	Yellow.Fprintf(out, "⚠ "+format+"\n", args...)
}

// Info prints a blue info message.
func Info(format string, args ...any) {
	Blue.Fprintf(out, format+"\n", args...)
}

// Step prints a numbered step in cyan.
func Step(n int, format string, args ...any) {
	Cyan.Fprintf(out, "[%d] ", n)
	fmt.Fprintf(out, format+"\n", args...)
}

// Header prints a bold header.
func Header(format string, args ...any) {
	Bold.Fprintf(out, format+"\n", args...)
}

// Item prints an indented list entry with an optional faint detail.
func Item(name, detail string) {
	fmt.Fprintf(out, "  %s", name)
	if detail != "" {
		Faint.Fprintf(out, "  %s", detail)
	}
	fmt.Fprintln(out)
}

// Plain prints uncolored text, for output meant to be piped.
func Plain(format string, args ...any) {
	fmt.Fprintf(out, format+"\n", args...)
}

// Fatal prints an error and exits.
func Fatal(format string, args ...any) {
	Error(format, args...)
	os.Exit(1)
}
