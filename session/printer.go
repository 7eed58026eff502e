package session

import (
	"fmt"
	"io"
)

// Printer receives progress and diagnostic lines. Quiet runs use Discard.
type Printer interface {
	Printf(format string, args ...any)
}

type writerPrinter struct {
	w io.Writer
}

// NewPrinter returns a Printer that writes to w.
func NewPrinter(w io.Writer) Printer {
	return writerPrinter{w: w}
}

func (p writerPrinter) Printf(format string, args ...any) {
	fmt.Fprintf(p.w, format, args...)
}

// Discard drops every line.
var Discard Printer = writerPrinter{w: io.Discard}
