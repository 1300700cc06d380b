package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// Printer writes coloured status lines. Colours degrade to plain text when the
// output is not a terminal.
type Printer struct {
	out *termenv.Output
}

// NewPrinter creates a Printer for w.
func NewPrinter(w io.Writer, opts ...termenv.OutputOption) *Printer {
	return &Printer{out: termenv.NewOutput(w, opts...)}
}

// Banner prints the product name and version.
func (p *Printer) Banner(version string) {
	name := p.out.String("esgate").Foreground(p.out.Color("#818cf8")).Bold()
	ver := p.out.String(version).Foreground(p.out.Color("#a78bfa"))
	fmt.Fprintf(p.out, "%s %s\n", name, ver)
}

// Accepted prints a passing verdict.
func (p *Printer) Accepted(format string, args ...any) {
	p.verdict("✔ ACCEPTED", "#22c55e", format, args...)
}

// Rejected prints a failing verdict.
func (p *Printer) Rejected(format string, args ...any) {
	p.verdict("✘ REJECTED", "#ef4444", format, args...)
}

// Field prints a dimmed label followed by a value.
func (p *Printer) Field(label, value string) {
	fmt.Fprintf(p.out, "%s %s\n", p.out.String(label+":").Faint(), value)
}

// Warn prints a warning line.
func (p *Printer) Warn(format string, args ...any) {
	msg := p.out.String(fmt.Sprintf(format, args...)).Foreground(p.out.Color("#f59e0b"))
	fmt.Fprintln(p.out, msg)
}

func (p *Printer) verdict(label, color, format string, args ...any) {
	tag := p.out.String(label).Foreground(p.out.Color(color)).Bold()
	fmt.Fprintf(p.out, "%s %s\n", tag, fmt.Sprintf(format, args...))
}
