package document

import (
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Vertical tolerance in points when grouping positioned text fragments into
// visual lines. Form PDFs place label and blank on the same baseline, so a
// tight tolerance keeps side-by-side fields on one line without merging
// adjacent rows.
const lineTolerance = 3.0

// pdfExtractor reads text from a PDF using positioned text fragments, grouped
// into visual lines by baseline. When a page exposes no positioned content it
// falls back to the page's plain text stream.
type pdfExtractor struct{}

func (pdfExtractor) Name() string { return "pdf-text" }

func (e pdfExtractor) Extract(path string) (*Document, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		// Structural validation tells a broken file apart from a reader
		// limitation, so the caller sees the right failure
		if verr := ValidatePDF(path); verr != nil {
			return nil, fmt.Errorf("not a valid pdf: %w", verr)
		}
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	var raw []string
	pages := reader.NumPage()
	for pageNum := 1; pageNum <= pages; pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		pageLines := extractPageLines(page)
		if len(pageLines) == 0 {
			pageLines = extractPlainLines(page, pageNum)
		}
		raw = append(raw, pageLines...)
		if pageNum < pages {
			raw = append(raw, "")
		}
	}

	lines := linesFromText(raw, false)

	doc := &Document{
		Lines: lines,
		Info: ExtractionInfo{
			Path:      path,
			Format:    FormatPDF,
			Extractor: e.Name(),
			PageCount: pages,
			LineCount: len(lines),
		},
	}

	// Interactive form fields carry label text the page stream often lacks.
	// A probe failure is not fatal: scanned or malformed PDFs still convert
	// from whatever text was recovered.
	if names, err := harvestFormFieldNames(path); err == nil && len(names) > 0 {
		doc.Info.FormFieldCount = len(names)
		doc.appendFormFieldLines(names)
	}

	return doc, nil
}

// extractPageLines groups the page's positioned text fragments into visual
// lines: sort by baseline, split where the baseline moves more than the
// tolerance, then order each line's fragments left to right.
func extractPageLines(page pdf.Page) []string {
	texts := page.Content().Text
	if len(texts) == 0 {
		return nil
	}

	sort.SliceStable(texts, func(i, j int) bool {
		return texts[i].Y > texts[j].Y
	})

	var lines []string
	var current []pdf.Text
	currentY := texts[0].Y

	flush := func() {
		if len(current) == 0 {
			return
		}
		sort.SliceStable(current, func(i, j int) bool {
			return current[i].X < current[j].X
		})
		var b strings.Builder
		lastEnd := 0.0
		for i, t := range current {
			// A wide horizontal gap separates side-by-side cells; keep
			// them apart so labels don't run together.
			if i > 0 && t.X-lastEnd > t.FontSize {
				b.WriteString("   ")
			}
			b.WriteString(t.S)
			lastEnd = t.X + t.W
		}
		lines = append(lines, b.String())
		current = current[:0]
	}

	for _, t := range texts {
		if abs(t.Y-currentY) > lineTolerance {
			flush()
			currentY = t.Y
		}
		current = append(current, t)
	}
	flush()

	return lines
}

// extractPlainLines is the fallback for pages whose content stream yields no
// positioned fragments
func extractPlainLines(page pdf.Page, pageNum int) []string {
	content, err := page.GetPlainText(nil)
	if err != nil {
		log.Printf("page %d: plain text extraction failed: %v", pageNum, err)
		return nil
	}
	return strings.Split(content, "\n")
}

// appendFormFieldLines adds interactive field names as table-style lines so
// the pipeline can recover fields that exist only as widgets
func (d *Document) appendFormFieldLines(names []string) {
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		d.Lines = append(d.Lines, TextLine{
			Text:      name,
			Index:     len(d.Lines),
			FromTable: true,
		})
	}
	d.Info.LineCount = len(d.Lines)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
