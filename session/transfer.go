package session

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/nedpals/mfulc/nfc"
)

// StdioTarget selects standard output for reads and standard input for writes.
const StdioTarget = "-"

// ErrOpenTarget wraps failures to open a dump file. They end the process.
var ErrOpenTarget = errors.New("could not open file")

// Mode selects the transfer direction.
type Mode int

const (
	ModeRead Mode = iota
	ModeWrite
)

// PageStatus is the outcome of one page in a transfer.
type PageStatus int

const (
	StatusOK PageStatus = iota
	StatusSkipped
	StatusFailed
)

func (s PageStatus) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusSkipped:
		return "SKIPPED"
	default:
		return "FAILED"
	}
}

// PageResult records one page handled by a transfer.
type PageResult struct {
	Index  int
	Data   nfc.Page
	Status PageStatus
	Err    error
}

// TransferReport lists the pages a transfer handled, in ascending order.
type TransferReport struct {
	Pages []PageResult
}

// Count returns the number of pages with the given status.
func (r TransferReport) Count(status PageStatus) int {
	n := 0
	for _, p := range r.Pages {
		if p.Status == status {
			n++
		}
	}
	return n
}

// Engine moves pages between a tag and a byte stream.
// The stream format is a flat concatenation of 4-byte pages starting at the
// first page of the range.
type Engine struct {
	// Out receives the per-page trace.
	Out Printer

	// Stdin and Stdout back the "-" target. They are never closed.
	Stdin  io.Reader
	Stdout io.Writer
}

// NewEngine returns an Engine bound to the process standard streams.
func NewEngine(out Printer) *Engine {
	return &Engine{Out: out, Stdin: os.Stdin, Stdout: os.Stdout}
}

func (e *Engine) printer() Printer {
	if e.Out == nil {
		return Discard
	}
	return e.Out
}

// Read copies pages rng.Start..rng.End from tag to w. It stops without
// error at the first page the driver fails to read.
func (e *Engine) Read(tag nfc.UltralightTag, rng PageRange, w io.Writer) (TransferReport, error) {
	var report TransferReport
	if err := rng.Validate(); err != nil {
		return report, err
	}
	out := e.printer()

	out.Printf("read pages...\n")
	for i := rng.Start; i <= rng.End; i++ {
		page, err := tag.ReadPage(byte(i))
		if err != nil {
			report.Pages = append(report.Pages, PageResult{Index: i, Status: StatusFailed, Err: err})
			out.Printf("%02d: read failed: %v\n", i, err)
			break
		}
		if _, err := w.Write(page[:]); err != nil {
			report.Pages = append(report.Pages, PageResult{Index: i, Data: page, Status: StatusFailed, Err: err})
			return report, fmt.Errorf("write dump: %w", err)
		}
		report.Pages = append(report.Pages, PageResult{Index: i, Data: page, Status: StatusOK})
		out.Printf("%02d: %s\n", i, page)
	}
	out.Printf("...done!\n")
	return report, nil
}

// Write copies pages from r to tag until the range or the input ends.
// A trailing partial page is ignored. Pages 0-3 are skipped unless override
// is set, and a failed page does not stop the transfer.
func (e *Engine) Write(tag nfc.UltralightTag, rng PageRange, r io.Reader, override bool) (TransferReport, error) {
	var report TransferReport
	if err := rng.Validate(); err != nil {
		return report, err
	}
	out := e.printer()

	out.Printf("write pages...\n")
	for i := rng.Start; i <= rng.End; i++ {
		var page nfc.Page
		if _, err := io.ReadFull(r, page[:]); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			out.Printf("...done!\n")
			return report, fmt.Errorf("read input: %w", err)
		}

		if Protected(i) && !override {
			report.Pages = append(report.Pages, PageResult{Index: i, Data: page, Status: StatusSkipped})
			out.Printf("%02d: %s SKIPPED. Use override.\n", i, page)
			continue
		}
		if err := tag.WritePage(byte(i), page); err != nil {
			report.Pages = append(report.Pages, PageResult{Index: i, Data: page, Status: StatusFailed, Err: err})
			out.Printf("%02d: %s FAILED\n", i, page)
			continue
		}
		report.Pages = append(report.Pages, PageResult{Index: i, Data: page, Status: StatusOK})
		out.Printf("%02d: %s OK\n", i, page)
	}
	out.Printf("...done!\n")
	return report, nil
}

// Transfer opens target, runs a Read or Write and closes target on every path.
// Failures to open the target wrap ErrOpenTarget.
func (e *Engine) Transfer(tag nfc.UltralightTag, rng PageRange, target string, mode Mode, override bool) (TransferReport, error) {
	if err := rng.Validate(); err != nil {
		return TransferReport{}, err
	}
	switch mode {
	case ModeRead:
		return e.readTo(tag, rng, target)
	case ModeWrite:
		return e.writeFrom(tag, rng, target, override)
	default:
		return TransferReport{}, fmt.Errorf("unknown transfer mode %d", int(mode))
	}
}

func (e *Engine) readTo(tag nfc.UltralightTag, rng PageRange, target string) (report TransferReport, err error) {
	var sink io.Writer
	var closer io.Closer
	if target == StdioTarget {
		sink = e.Stdout
	} else {
		f, ferr := os.Create(target)
		if ferr != nil {
			return report, fmt.Errorf("%w '%s': %v", ErrOpenTarget, target, ferr)
		}
		sink, closer = f, f
	}

	buf := bufio.NewWriter(sink)
	defer func() {
		if ferr := buf.Flush(); ferr != nil && err == nil {
			err = fmt.Errorf("flush dump: %w", ferr)
		}
		if closer != nil {
			if cerr := closer.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("close dump: %w", cerr)
			}
		}
	}()
	return e.Read(tag, rng, buf)
}

// writeFrom reads stdin unbuffered. Stdin outlives the session, so each page
// must take exactly its 4 bytes and leave the rest for the next tag.
func (e *Engine) writeFrom(tag nfc.UltralightTag, rng PageRange, target string, override bool) (TransferReport, error) {
	if target == StdioTarget {
		return e.Write(tag, rng, e.Stdin, override)
	}
	f, err := os.Open(target)
	if err != nil {
		return TransferReport{}, fmt.Errorf("%w '%s': %v", ErrOpenTarget, target, err)
	}
	defer f.Close()
	return e.Write(tag, rng, bufio.NewReader(f), override)
}
