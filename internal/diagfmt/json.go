package diagfmt

import (
	"encoding/json"
	"io"

	"strata/internal/diag"
	"strata/internal/source"
)

// DiagnosticOutput is the stable JSON shape for one diagnostic.
type DiagnosticOutput struct {
	Severity string       `json:"severity"`
	Code     string       `json:"code"`
	Message  string       `json:"message"`
	File     string       `json:"file,omitempty"`
	Line     uint32       `json:"line,omitempty"`
	Col      uint32       `json:"col,omitempty"`
	Notes    []NoteOutput `json:"notes,omitempty"`
}

// NoteOutput is one secondary message attached to a diagnostic.
type NoteOutput struct {
	Message string `json:"message"`
}

// JSON writes the bag as an indented JSON array.
func JSON(w io.Writer, bag *diag.Bag, fs *source.FileSet) error {
	out := make([]DiagnosticOutput, 0, bag.Len())
	for _, d := range bag.Items() {
		item := DiagnosticOutput{
			Severity: d.Severity.String(),
			Code:     d.Code.String(),
			Message:  d.Message,
		}
		if fs != nil && !(d.Primary.Empty() && d.Primary.File == 0) {
			f := fs.Get(d.Primary.File)
			start, _ := fs.Resolve(d.Primary)
			item.File = f.Path
			item.Line = start.Line
			item.Col = start.Col
		}
		for _, n := range d.Notes {
			item.Notes = append(item.Notes, NoteOutput{Message: n.Msg})
		}
		out = append(out, item)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
