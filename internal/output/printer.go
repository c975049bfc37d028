// Package output renders CLI results, pretty-printing JSON when stdout
// is a terminal.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

type PrinterOptions struct {
	ForcePretty  bool
	ForceCompact bool
}

type Printer struct {
	out io.Writer
	err io.Writer

	pretty bool
}

func NewPrinter(out io.Writer, err io.Writer, opts PrinterOptions) *Printer {
	pretty := false
	if opts.ForcePretty {
		pretty = true
	} else if opts.ForceCompact {
		pretty = false
	} else {
		// auto
		if f, ok := out.(*os.File); ok {
			pretty = term.IsTerminal(int(f.Fd()))
		}
	}

	return &Printer{out: out, err: err, pretty: pretty}
}

func (p *Printer) Out() io.Writer { return p.out }
func (p *Printer) Err() io.Writer { return p.err }

// PrintJSON marshals v and writes it to stdout, indented when pretty.
func (p *Printer) PrintJSON(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if p.pretty {
		var buf bytes.Buffer
		if err := json.Indent(&buf, b, "", "  "); err == nil {
			b = buf.Bytes()
		}
	}
	if _, err := p.out.Write(b); err != nil {
		return err
	}
	_, err = p.out.Write([]byte("\n"))
	return err
}

func (p *Printer) Println(args ...any) {
	fmt.Fprintln(p.out, args...)
}

func (p *Printer) Errorf(format string, args ...any) {
	fmt.Fprintf(p.err, format+"\n", args...)
}
