// Package output formats CLI output
package output

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// Printer writes status lines to the command's writers
type Printer struct {
	out       io.Writer
	err       io.Writer
	useColors bool
}

// ColorsEnabled reports whether colored output should be used. NO_COLOR
// and a dumb terminal turn colors off unless forced.
func ColorsEnabled(disabled bool) bool {
	if disabled {
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return os.Getenv("TERM") != "dumb"
}

// NewPrinter creates a printer over out and errOut
func NewPrinter(out, errOut io.Writer, useColors bool) *Printer {
	return &Printer{out: out, err: errOut, useColors: useColors}
}

// Out returns the standard output writer
func (p *Printer) Out() io.Writer {
	return p.out
}

// Info prints an informational message
func (p *Printer) Info(format string, args ...interface{}) {
	p.line(p.out, color.FgCyan, "", format, args...)
}

// Success prints a success message
func (p *Printer) Success(format string, args ...interface{}) {
	p.line(p.out, color.FgGreen, "[OK] ", format, args...)
}

// Warning prints a warning to the error writer
func (p *Printer) Warning(format string, args ...interface{}) {
	p.line(p.err, color.FgYellow, "[WARN] ", format, args...)
}

// Error prints an error to the error writer
func (p *Printer) Error(format string, args ...interface{}) {
	p.line(p.err, color.FgRed, "[ERROR] ", format, args...)
}

// Print prints a plain line
func (p *Printer) Print(format string, args ...interface{}) {
	fmt.Fprintf(p.out, format+"\n", args...)
}

// Field prints an aligned "label: value" pair
func (p *Printer) Field(label string, value interface{}) {
	fmt.Fprintf(p.out, "  %-10s %v\n", label+":", value)
}

// Header prints a section header
func (p *Printer) Header(title string) {
	if p.useColors {
		color.New(color.FgWhite, color.Bold).Fprintf(p.out, "\n%s\n", title)
	} else {
		fmt.Fprintf(p.out, "\n%s\n", title)
	}
	fmt.Fprintf(p.out, "%s\n", underline(len(title)))
}

// Bold returns text in bold
func (p *Printer) Bold(text string) string {
	if p.useColors {
		return color.New(color.Bold).Sprint(text)
	}
	return text
}

func (p *Printer) line(w io.Writer, attr color.Attribute, prefix, format string, args ...interface{}) {
	if p.useColors {
		color.New(attr).Fprintf(w, format+"\n", args...)
		return
	}
	fmt.Fprintf(w, prefix+format+"\n", args...)
}

func underline(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = '-'
	}
	return string(b)
}
