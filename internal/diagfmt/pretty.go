package diagfmt

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"strata/internal/diag"
	"strata/internal/source"
)

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	Color     bool
	ShowNotes bool
}

var (
	errColor  = color.New(color.FgRed, color.Bold)
	warnColor = color.New(color.FgYellow, color.Bold)
	infoColor = color.New(color.FgCyan)
	noteColor = color.New(color.Faint)
)

// Pretty formats diagnostics for terminals. Walks bag.Items() in order, so
// callers should bag.Sort() first. Each diagnostic prints as
//
//	<path>:<line>:<col>: <SEV> <CODE>: <message>
//
// followed by indented notes when ShowNotes is set. Spans with no file
// resolve to "<input>".
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	for _, d := range bag.Items() {
		fmt.Fprintf(w, "%s: %s %s: %s\n",
			position(fs, d.Primary),
			severity(d.Severity, opts.Color),
			d.Code.String(),
			d.Message)
		if !opts.ShowNotes {
			continue
		}
		for _, n := range d.Notes {
			note := "note: " + n.Msg
			if opts.Color {
				note = noteColor.Sprint(note)
			}
			fmt.Fprintf(w, "  %s\n", note)
		}
	}
}

func severity(sev diag.Severity, colored bool) string {
	s := sev.String()
	if !colored {
		return s
	}
	switch sev {
	case diag.SevError:
		return errColor.Sprint(s)
	case diag.SevWarning:
		return warnColor.Sprint(s)
	default:
		return infoColor.Sprint(s)
	}
}

func position(fs *source.FileSet, sp source.Span) string {
	if fs == nil || (sp.Empty() && sp.File == 0) {
		return "<input>"
	}
	f := fs.Get(sp.File)
	start, _ := fs.Resolve(sp)
	return fmt.Sprintf("%s:%d:%d", f.Path, start.Line, start.Col)
}
