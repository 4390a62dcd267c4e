package document

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// formatExtractor is a per-format text extraction strategy
type formatExtractor interface {
	Name() string
	Extract(path string) (*Document, error)
}

// Extractor turns a form document file into cleaned, indexed text lines
type Extractor struct {
	maxFileSize int64
	byFormat    map[Format]formatExtractor
}

// NewExtractor creates an extractor enforcing the given file size limit
func NewExtractor(maxFileSize int64) *Extractor {
	return &Extractor{
		maxFileSize: maxFileSize,
		byFormat: map[Format]formatExtractor{
			FormatPDF:  pdfExtractor{},
			FormatDOCX: docxExtractor{},
		},
	}
}

// FormatForPath maps a file extension to its document format
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return FormatPDF, nil
	case ".docx":
		return FormatDOCX, nil
	default:
		return "", fmt.Errorf("unsupported file type: %s (expected .pdf or .docx)", path)
	}
}

// Extract validates the file, runs the format's extractor, and strips
// letterhead boilerplate from the result
func (e *Extractor) Extract(path string) (*Document, error) {
	fileInfo, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("file does not exist: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot access file: %w", err)
	}
	if err := e.validateFile(path, fileInfo); err != nil {
		return nil, err
	}

	format, err := FormatForPath(path)
	if err != nil {
		return nil, err
	}

	doc, err := e.byFormat[format].Extract(path)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", filepath.Base(path), err)
	}

	return StripBoilerplate(doc), nil
}

// validateFile performs basic validation before extraction is attempted
func (e *Extractor) validateFile(path string, fileInfo os.FileInfo) error {
	if fileInfo.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", path)
	}
	if e.maxFileSize > 0 && fileInfo.Size() > e.maxFileSize {
		return fmt.Errorf("file too large: %d bytes (max: %d bytes)",
			fileInfo.Size(), e.maxFileSize)
	}
	return nil
}
