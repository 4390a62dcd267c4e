package form

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dentalforms/formspec/internal/document"
	"github.com/dentalforms/formspec/internal/pipeline"
	"github.com/dentalforms/formspec/internal/schema"
)

// OutputDirPerm is the mode used when the output directory has to be created
const OutputDirPerm = 0o750

// Service orchestrates document extraction, spec conversion, and spec
// validation
type Service struct {
	maxFileSize int64
	extractor   *document.Extractor
	converter   *pipeline.Converter
	validator   *schema.Validator
	guard       *pathGuard

	// provider, when set, replaces the {{provider}} placeholder in consent
	// text with the practice's doctor name
	provider string

	// outputDirectory is the default destination for generated spec JSON
	outputDirectory string
}

// NewService creates a form conversion service rooted at formsDirectory
func NewService(maxFileSize int64, formsDirectory string) (*Service, error) {
	guard, err := newPathGuard(formsDirectory)
	if err != nil {
		return nil, fmt.Errorf("failed to create path guard: %w", err)
	}

	return &Service{
		maxFileSize: maxFileSize,
		extractor:   document.NewExtractor(maxFileSize),
		converter:   pipeline.NewConverter(),
		validator:   schema.NewValidator(),
		guard:       guard,
	}, nil
}

// SetProvider sets the doctor name substituted into consent text
func (s *Service) SetProvider(name string) {
	if name != "" && name != "{{provider}}" {
		s.provider = name
	}
}

// SetOutputDirectory sets the default destination for generated spec JSON
func (s *Service) SetOutputDirectory(dir string) {
	s.outputDirectory = dir
}

// MaxFileSize returns the configured file size limit
func (s *Service) MaxFileSize() int64 {
	return s.maxFileSize
}

// ConvertFile converts one document into a Modento Forms spec and, unless
// DryRun is set, writes the JSON next to the source or at OutputPath
func (s *Service) ConvertFile(req ConvertFileRequest) (*ConvertFileResult, error) {
	if err := s.guard.CheckPath(req.Path); err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}

	doc, err := s.extractor.Extract(req.Path)
	if err != nil {
		return nil, err
	}

	converted := s.converter.Convert(doc)
	spec := s.applyProvider(converted.Spec)

	result := &ConvertFileResult{
		Path:       req.Path,
		FormType:   converted.FormType,
		FieldCount: len(spec),
		Warnings:   converted.Warnings,
		Spec:       spec,
		Extraction: doc.Info,
	}

	if req.DryRun {
		return result, nil
	}

	outputPath := req.OutputPath
	if outputPath == "" {
		outputPath = s.outputPathFor(req.Path)
	}
	if err := writeSpec(spec, outputPath); err != nil {
		return nil, err
	}
	result.OutputPath = outputPath
	return result, nil
}

// ConvertDirectory converts every supported document under a directory. One
// bad document never aborts the batch.
func (s *Service) ConvertDirectory(req ConvertDirectoryRequest) (*ConvertDirectoryResult, error) {
	files, err := s.FindDocuments(req.Directory)
	if err != nil {
		return nil, err
	}

	result := &ConvertDirectoryResult{Directory: req.Directory}
	for _, file := range files {
		fileReq := ConvertFileRequest{Path: file.Path}
		if req.OutputDirectory != "" {
			fileReq.OutputPath = filepath.Join(req.OutputDirectory, jsonName(file.Name))
		}
		converted, err := s.ConvertFile(fileReq)
		if err != nil {
			result.Failures = append(result.Failures, ConvertFailure{
				Path:  file.Path,
				Error: err.Error(),
			})
			continue
		}
		result.Converted = append(result.Converted, *converted)
	}
	return result, nil
}

// ValidateSpecFile checks that a JSON file is a valid Modento Forms spec
func (s *Service) ValidateSpecFile(req ValidateSpecRequest) (*ValidateSpecResult, error) {
	data, err := os.ReadFile(req.Path)
	if err != nil {
		return nil, fmt.Errorf("cannot read spec file: %w", err)
	}

	spec, err := schema.DecodeSpec(data)
	if err != nil {
		return &ValidateSpecResult{
			Path:     req.Path,
			Valid:    false,
			Problems: []string{fmt.Sprintf("not a spec document: %v", err)},
		}, nil
	}

	valid, problems, normalized := s.validator.ValidateAndNormalize(spec)
	return &ValidateSpecResult{
		Path:       req.Path,
		Valid:      valid,
		FieldCount: len(normalized),
		Problems:   problems,
	}, nil
}

// ServerInfo describes the service for MCP clients, including a bounded
// listing of the forms directory
func (s *Service) ServerInfo(serverName, version string) (*ServerInfoResult, error) {
	contents, err := s.FindDocuments(s.guard.Root())
	if err != nil {
		// A broken directory should not hide the rest of the info
		contents = nil
	}
	if len(contents) > 100 {
		contents = contents[:100]
	}

	tools := []ToolInfo{
		{
			Name:        "form_convert_file",
			Description: "Convert a dental form document (PDF or DOCX) into Modento Forms JSON",
			Usage:       "Use this tool to turn an intake or consent form into a field spec. Returns the spec JSON and any conversion warnings.",
			Parameters:  "path (required): Full path to the document, dry_run (optional): skip writing the output file",
		},
		{
			Name:        "form_validate_spec",
			Description: "Validate a Modento Forms JSON spec file",
			Usage:       "Use this tool to check a generated or hand-edited spec for schema violations.",
			Parameters:  "path (required): Full path to the spec JSON file",
		},
		{
			Name:        "form_search_directory",
			Description: "Search for form documents in a directory with optional fuzzy matching",
			Usage:       "Use this tool to discover convertible documents before running conversions.",
			Parameters:  "directory (optional): Directory to search (uses default if empty), query (optional): fuzzy filename query",
		},
		{
			Name:        "form_server_info",
			Description: "Get server information, available tools, and directory contents",
			Usage:       "Use this tool first to see what the server can do and which documents are available.",
			Parameters:  "none",
		},
	}

	guidance := `Form Conversion Server Usage Guide:

1. DISCOVER: use 'form_search_directory' to list convertible documents.
2. CONVERT: use 'form_convert_file' on a document. Conversion never fails on
   content; anything the converter could not understand comes back as a
   warning alongside a valid spec.
3. VALIDATE: use 'form_validate_spec' on generated or edited spec files
   before uploading them.

Notes:
- Supported formats are .pdf and .docx (max ` + fmt.Sprintf("%d", s.maxFileSize/(1024*1024)) + `MB per file).
- Every generated spec contains exactly one signature field followed by a
  date_signed field.
- Consent text keeps {{provider}}, {{patient_name}}, and {{tooth_or_site}}
  placeholders for per-patient substitution.`

	return &ServerInfoResult{
		ServerName:        serverName,
		Version:           version,
		DefaultDirectory:  s.guard.Root(),
		MaxFileSize:       s.maxFileSize,
		AvailableTools:    tools,
		DirectoryContents: contents,
		UsageGuidance:     guidance,
	}, nil
}

// applyProvider substitutes the configured doctor name into consent text
func (s *Service) applyProvider(spec schema.Spec) schema.Spec {
	if s.provider == "" {
		return spec
	}
	for i, f := range spec {
		tc, ok := f.Control.(schema.TextControl)
		if !ok {
			continue
		}
		tc.HTMLText = strings.ReplaceAll(tc.HTMLText, "{{provider}}", s.provider)
		tc.TemporaryHTMLText = strings.ReplaceAll(tc.TemporaryHTMLText, "{{provider}}", s.provider)
		spec[i].Control = tc
	}
	return spec
}

// outputPathFor picks the JSON destination for a source document
func (s *Service) outputPathFor(sourcePath string) string {
	name := jsonName(filepath.Base(sourcePath))
	if s.outputDirectory != "" {
		return filepath.Join(s.outputDirectory, name)
	}
	return filepath.Join(filepath.Dir(sourcePath), name)
}

func jsonName(sourceName string) string {
	return strings.TrimSuffix(sourceName, filepath.Ext(sourceName)) + ".json"
}

// writeSpec encodes the spec and writes it, creating the destination
// directory when needed
func writeSpec(spec schema.Spec, path string) error {
	data, err := spec.Encode()
	if err != nil {
		return fmt.Errorf("encode spec: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, OutputDirPerm); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write spec: %w", err)
	}
	return nil
}
