// Package document turns PDF and DOCX form documents into the ordered line
// sequence the conversion pipeline consumes. It owns the extraction boundary:
// file validation, per-format text extraction, and boilerplate removal.
package document

// Format identifies the source document format
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
)

// TextLine is one line of extracted document text. Lines are immutable once
// produced; every later stage consumes them read-only.
type TextLine struct {
	// Text is the trimmed line content
	Text string
	// Index is the line's position within the document, monotonic
	Index int
	// FromTable marks lines that originated from a table cell or an
	// interactive form field rather than flowing prose
	FromTable bool
}

// ExtractionInfo describes how a document's text was produced
type ExtractionInfo struct {
	Path      string `json:"path"`
	Format    Format `json:"format"`
	Extractor string `json:"extractor"`
	PageCount int    `json:"page_count"`
	LineCount int    `json:"line_count"`
	// FormFieldCount is the number of interactive (AcroForm) fields found,
	// PDF only
	FormFieldCount int `json:"form_field_count,omitempty"`
}

// Document is an extracted document ready for conversion
type Document struct {
	Lines []TextLine
	Info  ExtractionInfo
}

// Text returns the raw text of every line in order
func (d *Document) Text() []string {
	out := make([]string, len(d.Lines))
	for i, l := range d.Lines {
		out[i] = l.Text
	}
	return out
}

// linesFromText builds indexed TextLines from raw strings, dropping runs of
// blank lines down to a single separator so question/option proximity
// survives without excessive gaps
func linesFromText(raw []string, fromTable bool) []TextLine {
	lines := make([]TextLine, 0, len(raw))
	blank := true
	for _, s := range raw {
		trimmed := trimLine(s)
		if trimmed == "" {
			if blank {
				continue
			}
			blank = true
		} else {
			blank = false
		}
		lines = append(lines, TextLine{
			Text:      trimmed,
			Index:     len(lines),
			FromTable: fromTable,
		})
	}
	// Trim a trailing blank separator
	for len(lines) > 0 && lines[len(lines)-1].Text == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func trimLine(s string) string {
	start, end := 0, len(s)
	for start < end && (s[start] == ' ' || s[start] == '\t' || s[start] == '\r') {
		start++
	}
	for end > start && (s[end-1] == ' ' || s[end-1] == '\t' || s[end-1] == '\r') {
		end--
	}
	return s[start:end]
}
