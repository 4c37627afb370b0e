// Package printer renders allocator snapshots for humans and tools.
package printer

import (
	"fmt"
	"io"

	"github.com/joshuapare/arenakit/arena"
)

// Format specifies the output format for printing.
type Format string

const (
	// FormatText outputs the classic page-by-page dump.
	FormatText Format = "text"

	// FormatJSON outputs one JSON document per snapshot.
	FormatJSON Format = "json"
)

// Options controls printing behavior.
type Options struct {
	// Format specifies output format (text, json).
	// Default: FormatText
	Format Format

	// ShowSlots lists every slot of a divided page.
	// Default: true
	ShowSlots bool

	// ShowFreePages includes free pages in the output.
	// Default: true
	ShowFreePages bool

	// HumanSizes prints sizes as "1.0 KiB" instead of raw byte counts (text format only).
	// Default: false
	HumanSizes bool
}

// DefaultOptions returns sensible defaults for printing.
func DefaultOptions() Options {
	return Options{
		Format:        FormatText,
		ShowSlots:     true,
		ShowFreePages: true,
	}
}

// Printer writes snapshots to a writer.
type Printer struct {
	writer io.Writer
	opts   Options
}

// New creates a printer writing to w.
func New(w io.Writer, opts Options) *Printer {
	if opts.Format == "" {
		opts.Format = FormatText
	}
	return &Printer{writer: w, opts: opts}
}

// Print renders s in the configured format.
func (p *Printer) Print(s arena.Snapshot) error {
	switch p.opts.Format {
	case FormatText:
		return p.printText(s)
	case FormatJSON:
		return p.printJSON(s)
	default:
		return fmt.Errorf("printer: unknown format %q", p.opts.Format)
	}
}
