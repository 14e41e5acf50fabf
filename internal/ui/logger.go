package ui

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Logger prints leveled, color-coded messages for the user. Diagnostics
// go through zerolog instead.
type Logger struct {
	Verbose bool
	Quiet   bool
	NoColor bool

	out io.Writer
}

// NewLoggerTo creates a logger writing to w
func NewLoggerTo(w io.Writer, verbose, quiet, noColor bool) *Logger {
	return &Logger{
		Verbose: verbose,
		Quiet:   quiet,
		NoColor: noColor,
		out:     w,
	}
}

var (
	infoColor    = color.New(color.FgBlue)
	successColor = color.New(color.FgGreen)
	warningColor = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed, color.Bold)
	debugColor   = color.New(color.FgCyan)
)

func (l *Logger) print(c *color.Color, tag, format string, args ...interface{}) {
	line := tag + " " + fmt.Sprintf(format, args...)
	if l.NoColor || color.NoColor {
		fmt.Fprintln(l.out, line)
		return
	}
	c.Fprintln(l.out, line)
}

// Info logs an informational message
func (l *Logger) Info(format string, args ...interface{}) {
	if l.Quiet {
		return
	}
	l.print(infoColor, "[INFO]", format, args...)
}

// Success logs a success message
func (l *Logger) Success(format string, args ...interface{}) {
	if l.Quiet {
		return
	}
	l.print(successColor, "[SUCCESS]", format, args...)
}

// Warning logs a warning message
func (l *Logger) Warning(format string, args ...interface{}) {
	l.print(warningColor, "[WARNING]", format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.print(errorColor, "[ERROR]", format, args...)
}

// Debug logs a debug message (only if verbose is enabled)
func (l *Logger) Debug(format string, args ...interface{}) {
	if !l.Verbose {
		return
	}
	l.print(debugColor, "[DEBUG]", format, args...)
}
