// Package progress renders download and unpack progress on a terminal line.
package progress

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"
)

const barWidth = 40

// Printer redraws a single status line on out. It satisfies both the
// download and the archive reporters.
type Printer struct {
	out      io.Writer
	bar      progress.Model
	name     string
	total    int64
	received int64
	entries  int
	done     int
	last     string
	width    int
}

// NewPrinter returns a Printer writing to out.
func NewPrinter(out io.Writer) *Printer {
	if out == nil {
		out = io.Discard
	}
	return &Printer{
		out: out,
		bar: progress.New(progress.WithDefaultGradient(), progress.WithWidth(barWidth)),
	}
}

// Start begins a download line. total is -1 when unknown.
func (p *Printer) Start(name string, total int64) {
	p.name = name
	p.total = total
	p.received = 0
	p.last = ""
	p.draw(p.downloadLine())
}

// Advance records n more bytes received.
func (p *Printer) Advance(n int) {
	p.received += int64(n)
	p.draw(p.downloadLine())
}

// Finish ends the download line.
func (p *Printer) Finish() {
	p.end()
}

// StartEntries begins an unpack line for total archive entries.
func (p *Printer) StartEntries(total int) {
	p.entries = total
	p.done = 0
	p.last = ""
	p.draw(p.entryLine())
}

// Entry records one extracted archive entry.
func (p *Printer) Entry(string) {
	p.done++
	p.draw(p.entryLine())
}

// FinishEntries ends the unpack line.
func (p *Printer) FinishEntries() {
	p.end()
}

func (p *Printer) downloadLine() string {
	if p.total <= 0 {
		return fmt.Sprintf("%s received", humanize.Bytes(uint64(p.received)))
	}
	return fmt.Sprintf("%s %s / %s", p.bar.ViewAs(ratio(p.received, p.total)), humanize.Bytes(uint64(p.received)), humanize.Bytes(uint64(p.total)))
}

func (p *Printer) entryLine() string {
	return fmt.Sprintf("%s %d/%d files", p.bar.ViewAs(ratio(int64(p.done), int64(p.entries))), p.done, p.entries)
}

// draw skips identical lines so per-chunk updates stay cheap. A shorter line
// is padded over the cells of the previous one.
func (p *Printer) draw(line string) {
	if line == p.last {
		return
	}
	p.last = line
	width := ansi.StringWidth(line)
	pad := ""
	if width < p.width {
		pad = strings.Repeat(" ", p.width-width)
	}
	p.width = width
	_, _ = fmt.Fprintf(p.out, "\r%s%s", line, pad)
}

func (p *Printer) end() {
	if p.last != "" {
		_, _ = fmt.Fprintln(p.out)
	}
	p.last = ""
	p.width = 0
}

func ratio(n int64, total int64) float64 {
	if total <= 0 {
		return 1
	}
	r := float64(n) / float64(total)
	if r > 1 {
		return 1
	}
	return r
}
