package document

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"strings"
)

// docxExtractor parses a .docx file by reading word/document.xml straight out
// of the ZIP archive. Heading paragraphs are emitted with a "## " prefix so
// the section tracker can treat them as authoritative section titles, and
// table-cell paragraphs are flagged so later stages know they came from a
// grid rather than flowing prose.
type docxExtractor struct{}

func (docxExtractor) Name() string { return "docx-xml" }

func (e docxExtractor) Extract(path string) (*Document, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open docx archive: %w", err)
	}
	defer r.Close()

	var docFile *zip.File
	for _, f := range r.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return nil, fmt.Errorf("word/document.xml not found in archive")
	}

	rc, err := docFile.Open()
	if err != nil {
		return nil, fmt.Errorf("open document.xml: %w", err)
	}
	defer rc.Close()

	paras, err := walkDocumentXML(xml.NewDecoder(rc))
	if err != nil {
		return nil, fmt.Errorf("parse document.xml: %w", err)
	}

	lines := make([]TextLine, 0, len(paras))
	for _, p := range paras {
		text := strings.TrimSpace(p.text)
		if text == "" {
			continue
		}
		if docxHeadingLevel(p.style) > 0 {
			text = "## " + text
		}
		lines = append(lines, TextLine{
			Text:      text,
			Index:     len(lines),
			FromTable: p.inTable,
		})
	}

	return &Document{
		Lines: lines,
		Info: ExtractionInfo{
			Path:      path,
			Format:    FormatDOCX,
			Extractor: e.Name(),
			PageCount: 1,
			LineCount: len(lines),
		},
	}, nil
}

type docxParagraph struct {
	text    string
	style   string
	inTable bool
}

// walkDocumentXML streams through WordprocessingML and collects paragraphs in
// document order. Table nesting is tracked by depth; checkbox form elements
// are rendered as a box glyph so the pattern matcher sees them the same way
// it sees PDF checkbox glyphs.
func walkDocumentXML(decoder *xml.Decoder) ([]docxParagraph, error) {
	var (
		paras       []docxParagraph
		currentText strings.Builder
		inParagraph bool
		style       string
		tableDepth  int
	)

	for {
		tok, err := decoder.Token()
		if err != nil {
			break
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tbl":
				tableDepth++
			case "p":
				inParagraph = true
				currentText.Reset()
				style = ""
			case "pStyle":
				if inParagraph {
					for _, attr := range t.Attr {
						if attr.Name.Local == "val" {
							style = attr.Value
						}
					}
				}
			case "checkBox", "checkbox":
				if inParagraph {
					currentText.WriteString("☐ ")
				}
			case "tab":
				if inParagraph {
					currentText.WriteString("\t")
				}
			case "br":
				if inParagraph {
					currentText.WriteString(" ")
				}
			}

		case xml.CharData:
			if inParagraph {
				currentText.Write(t)
			}

		case xml.EndElement:
			switch t.Name.Local {
			case "tbl":
				if tableDepth > 0 {
					tableDepth--
				}
			case "p":
				if !inParagraph {
					continue
				}
				inParagraph = false
				paras = append(paras, docxParagraph{
					text:    currentText.String(),
					style:   style,
					inTable: tableDepth > 0,
				})
			}
		}
	}

	return paras, nil
}

// docxHeadingLevel extracts the heading level from a paragraph style name.
// e.g. "Heading1" → 1, "Title" → 1, "Subtitle" → 2.
func docxHeadingLevel(style string) int {
	lower := strings.ToLower(style)
	if lower == "title" {
		return 1
	}
	if lower == "subtitle" {
		return 2
	}
	if rest, ok := strings.CutPrefix(lower, "heading"); ok {
		if len(rest) == 1 && rest[0] >= '1' && rest[0] <= '6' {
			return int(rest[0] - '0')
		}
	}
	return 0
}
