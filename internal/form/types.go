// Package form is the service layer tying extraction, conversion, and spec
// validation together for the CLI and MCP surfaces.
package form

import (
	"github.com/dentalforms/formspec/internal/document"
	"github.com/dentalforms/formspec/internal/schema"
)

// ConvertFileRequest asks for one document to be converted
type ConvertFileRequest struct {
	// Path is the source document (.pdf or .docx)
	Path string `json:"path"`
	// OutputPath overrides where the spec JSON is written; empty means next
	// to the source with a .json extension
	OutputPath string `json:"output_path,omitempty"`
	// DryRun skips writing the output file
	DryRun bool `json:"dry_run,omitempty"`
}

// ConvertFileResult describes one completed conversion
type ConvertFileResult struct {
	Path       string                  `json:"path"`
	OutputPath string                  `json:"output_path,omitempty"`
	FormType   document.FormType       `json:"form_type"`
	FieldCount int                     `json:"field_count"`
	Warnings   []string                `json:"warnings,omitempty"`
	Spec       schema.Spec             `json:"-"`
	Extraction document.ExtractionInfo `json:"extraction"`
}

// ConvertDirectoryRequest asks for every supported document in a directory
// to be converted
type ConvertDirectoryRequest struct {
	Directory string `json:"directory"`
	// OutputDirectory receives the generated JSON files; empty means next to
	// each source
	OutputDirectory string `json:"output_directory,omitempty"`
}

// ConvertDirectoryResult summarizes a batch conversion. Per-file failures do
// not abort the batch; they land in Failures.
type ConvertDirectoryResult struct {
	Directory string              `json:"directory"`
	Converted []ConvertFileResult `json:"converted"`
	Failures  []ConvertFailure    `json:"failures,omitempty"`
}

// ConvertFailure records a document that could not be converted
type ConvertFailure struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// ValidateSpecRequest asks for a spec JSON file to be checked
type ValidateSpecRequest struct {
	Path string `json:"path"`
}

// ValidateSpecResult reports the outcome of spec validation
type ValidateSpecResult struct {
	Path       string   `json:"path"`
	Valid      bool     `json:"valid"`
	FieldCount int      `json:"field_count"`
	Problems   []string `json:"problems,omitempty"`
}

// SearchDirectoryRequest asks for form documents matching a query
type SearchDirectoryRequest struct {
	Directory string `json:"directory"`
	// Query fuzzy-matches against file names; empty lists everything
	Query string `json:"query,omitempty"`
}

// SearchDirectoryResult lists the form documents found
type SearchDirectoryResult struct {
	Directory   string     `json:"directory"`
	Files       []FileInfo `json:"files"`
	TotalCount  int        `json:"total_count"`
	SearchQuery string     `json:"search_query,omitempty"`
}

// FileInfo describes one discovered form document
type FileInfo struct {
	Path         string          `json:"path"`
	Name         string          `json:"name"`
	Format       document.Format `json:"format"`
	Size         int64           `json:"size"`
	ModifiedTime string          `json:"modified_time"`
}

// ServerInfoResult describes the running service for MCP clients
type ServerInfoResult struct {
	ServerName        string     `json:"server_name"`
	Version           string     `json:"version"`
	DefaultDirectory  string     `json:"default_directory"`
	MaxFileSize       int64      `json:"max_file_size"`
	AvailableTools    []ToolInfo `json:"available_tools"`
	DirectoryContents []FileInfo `json:"directory_contents"`
	UsageGuidance     string     `json:"usage_guidance"`
}

// ToolInfo documents one MCP tool
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Usage       string `json:"usage"`
	Parameters  string `json:"parameters"`
}
