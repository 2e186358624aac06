package console

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

const prefix = "bgatlas: "

// Printer writes user facing messages. Messages are rendered bold magenta on
// terminals that support it.
type Printer struct {
	w     io.Writer
	style lipgloss.Style
	muted lipgloss.Style
	plain bool
	mu    sync.Mutex
}

// Option configures a Printer.
type Option func(*Printer)

// WithPlain disables styling.
func WithPlain() Option {
	return func(p *Printer) {
		p.plain = true
	}
}

// NewPrinter creates a printer writing to w. A nil w means os.Stdout.
func NewPrinter(w io.Writer, opts ...Option) *Printer {
	if w == nil {
		w = os.Stdout
	}

	renderer := lipgloss.NewRenderer(w)
	p := &Printer{
		w:     w,
		style: renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("200")),
		muted: renderer.NewStyle().Faint(true),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Discard returns a printer that drops every message.
func Discard() *Printer {
	return NewPrinter(io.Discard, WithPlain())
}

// Writer returns the destination of the printer.
func (p *Printer) Writer() io.Writer {
	return p.w
}

// Printf prints a prefixed, styled message followed by a newline.
func (p *Printer) Printf(format string, args ...any) {
	msg := prefix + fmt.Sprintf(format, args...)
	if !p.plain {
		msg = p.style.Render(msg)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = fmt.Fprintln(p.w, msg)
}

// Table prints rows as aligned columns under a header.
func (p *Printer) Table(header []string, rows [][]string) {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i := range min(len(row), len(widths)) {
			widths[i] = max(widths[i], len(row[i]))
		}
	}

	format := func(cells []string) string {
		parts := make([]string, len(widths))
		for i := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			parts[i] = cell + strings.Repeat(" ", widths[i]-len(cell))
		}
		return strings.TrimRight(strings.Join(parts, "  "), " ")
	}

	head := format(header)
	if !p.plain {
		head = p.style.Render(head)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	_, _ = fmt.Fprintln(p.w, head)
	for _, row := range rows {
		line := format(row)
		if !p.plain && len(row) > 0 && row[len(row)-1] == "" {
			line = p.muted.Render(line)
		}
		_, _ = fmt.Fprintln(p.w, line)
	}
}
