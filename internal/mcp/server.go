// Package mcp exposes the form conversion service over the Model Context
// Protocol.
package mcp

import (
	"context"
	"fmt"
	"log"

	"github.com/dentalforms/formspec/internal/config"
	"github.com/dentalforms/formspec/internal/form"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Server represents the MCP server instance
type Server struct {
	config      *config.Config
	formService *form.Service
	mcpServer   *server.MCPServer
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, formService *form.Service) (*Server, error) {
	if formService == nil {
		return nil, fmt.Errorf("formService cannot be nil")
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false), // Tool set is static
	)

	s := &Server{
		config:      cfg,
		formService: formService,
		mcpServer:   mcpServer,
	}

	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	convertTool := mcp.NewTool(
		"form_convert_file",
		mcp.WithDescription("Convert a dental form document (PDF or DOCX) into Modento Forms JSON"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the form document"),
		),
		mcp.WithBoolean("dry_run",
			mcp.Description("Return the spec without writing the output file"),
		),
		mcp.WithString("output_path",
			mcp.Description("Override where the spec JSON is written"),
		),
	)
	s.mcpServer.AddTool(convertTool, s.handleConvertFile)

	validateTool := mcp.NewTool(
		"form_validate_spec",
		mcp.WithDescription("Validate a Modento Forms JSON spec file"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the spec JSON file"),
		),
	)
	s.mcpServer.AddTool(validateTool, s.handleValidateSpec)

	searchTool := mcp.NewTool(
		"form_search_directory",
		mcp.WithDescription("Search for form documents in a directory with optional fuzzy search"),
		mcp.WithString("directory",
			mcp.Description("Directory path to search (uses default if empty)"),
		),
		mcp.WithString("query",
			mcp.Description("Optional search query for fuzzy filename matching"),
		),
	)
	s.mcpServer.AddTool(searchTool, s.handleSearchDirectory)

	infoTool := mcp.NewTool(
		"form_server_info",
		mcp.WithDescription("Get server information, available tools, directory contents, and usage guidance"),
	)
	s.mcpServer.AddTool(infoTool, s.handleServerInfo)
}

// Handler functions

func (s *Server) handleConvertFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	args := request.GetArguments()
	req := form.ConvertFileRequest{Path: path}
	if dryRun, ok := args["dry_run"].(bool); ok {
		req.DryRun = dryRun
	}
	if out, ok := args["output_path"].(string); ok && out != "" {
		req.OutputPath = out
	}

	result, err := s.formService.ConvertFile(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(s.formatConvertFileResult(result)), nil
}

func (s *Server) handleValidateSpec(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.formService.ValidateSpecFile(form.ValidateSpecRequest{Path: path})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var responseText string
	if result.Valid {
		responseText = fmt.Sprintf("Spec %s is valid (%d fields)", result.Path, result.FieldCount)
	} else {
		responseText = fmt.Sprintf("Spec validation failed for %s:\n", result.Path)
		for _, p := range result.Problems {
			responseText += fmt.Sprintf("  - %s\n", p)
		}
	}

	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleSearchDirectory(ctx context.Context, request mcp.CallToolRequest) (
	*mcp.CallToolResult, error,
) {
	args := request.GetArguments()

	directory := s.config.FormsDirectory // default
	if dir, ok := args["directory"].(string); ok && dir != "" {
		directory = dir
	}

	query := ""
	if q, ok := args["query"].(string); ok {
		query = q
	}

	result, err := s.formService.SearchDirectory(form.SearchDirectoryRequest{
		Directory: directory,
		Query:     query,
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var responseText string
	if result.TotalCount == 0 {
		responseText = fmt.Sprintf("No form documents found in directory: %s", result.Directory)
		if result.SearchQuery != "" {
			responseText += fmt.Sprintf(" (searched for: %s)", result.SearchQuery)
		}
	} else {
		responseText = s.formatSearchDirectoryResult(result)
	}

	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleServerInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := s.formService.ServerInfo(s.config.ServerName, s.config.Version)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(s.formatServerInfoResult(result)), nil
}

// Formatting methods

func (s *Server) formatConvertFileResult(result *form.ConvertFileResult) string {
	text := fmt.Sprintf("Successfully converted: %s\n", result.Path)
	text += fmt.Sprintf("Form type: %s\n", result.FormType)
	text += fmt.Sprintf("Fields: %d\n", result.FieldCount)
	text += fmt.Sprintf("Extractor: %s (%d lines", result.Extraction.Extractor, result.Extraction.LineCount)
	if result.Extraction.FormFieldCount > 0 {
		text += fmt.Sprintf(", %d interactive form fields", result.Extraction.FormFieldCount)
	}
	text += ")\n"
	if result.OutputPath != "" {
		text += fmt.Sprintf("Output: %s\n", result.OutputPath)
	}

	if len(result.Warnings) > 0 {
		text += "\nWarnings:\n"
		for _, w := range result.Warnings {
			text += fmt.Sprintf("  - %s\n", w)
		}
	}

	if data, err := result.Spec.Encode(); err == nil {
		text += "\nSpec:\n"
		text += string(data)
	}

	return text
}

func (s *Server) formatSearchDirectoryResult(result *form.SearchDirectoryResult) string {
	text := fmt.Sprintf("Found %d form document(s) in directory: %s\n", result.TotalCount, result.Directory)
	if result.SearchQuery != "" {
		text += fmt.Sprintf("Search query: %s\n", result.SearchQuery)
	}
	text += "\nFiles:\n"

	for i, file := range result.Files {
		text += fmt.Sprintf("%d. %s\n", i+1, file.Name)
		text += fmt.Sprintf("   Path: %s\n", file.Path)
		text += fmt.Sprintf("   Format: %s\n", file.Format)
		text += fmt.Sprintf("   Size: %d bytes\n", file.Size)
		text += fmt.Sprintf("   Modified: %s\n", file.ModifiedTime)
		if i < len(result.Files)-1 {
			text += "\n"
		}
	}

	return text
}

func (s *Server) formatServerInfoResult(result *form.ServerInfoResult) string {
	text := fmt.Sprintf("%s v%s - Server Information\n", result.ServerName, result.Version)
	text += fmt.Sprintf("Default Directory: %s\n", result.DefaultDirectory)
	text += fmt.Sprintf("Max File Size: %d MB\n\n", result.MaxFileSize/(1024*1024))

	if len(result.DirectoryContents) > 0 {
		text += fmt.Sprintf("Directory Contents (%d documents found):\n", len(result.DirectoryContents))
		for i, file := range result.DirectoryContents {
			if i >= 10 { // Keep the listing readable
				text += fmt.Sprintf("   ... and %d more files\n", len(result.DirectoryContents)-10)
				break
			}
			text += fmt.Sprintf("   %d. %s (%d bytes)\n", i+1, file.Name, file.Size)
		}
		text += "\n"
	} else {
		text += "Directory Contents: No form documents found in default directory\n\n"
	}

	text += "Available Tools:\n"
	for _, tool := range result.AvailableTools {
		text += fmt.Sprintf("\n• %s\n", tool.Name)
		text += fmt.Sprintf("  Description: %s\n", tool.Description)
		text += fmt.Sprintf("  Usage: %s\n", tool.Usage)
		text += fmt.Sprintf("  Parameters: %s\n", tool.Parameters)
	}

	text += "\n" + result.UsageGuidance

	return text
}

// Run starts the MCP server in the configured mode
func (s *Server) Run(ctx context.Context) error {
	if s.config.IsServerMode() {
		return s.runServerMode(ctx)
	}
	return s.runStdioMode(ctx)
}

// runStdioMode runs the server in stdio mode
func (s *Server) runStdioMode(_ context.Context) error {
	if s.config.IsDebug() {
		log.Printf("Starting form conversion MCP server in stdio mode")
		log.Printf("Forms directory: %s", s.config.FormsDirectory)
	}

	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}

// runServerMode runs the server in HTTP server mode
func (s *Server) runServerMode(ctx context.Context) error {
	// The mark3labs transport layer still only speaks stdio here; keep the
	// behavior predictable until the HTTP transport lands
	log.Printf("Server mode not yet implemented with mark3labs/mcp-go")
	log.Printf("Falling back to stdio mode")
	return s.runStdioMode(ctx)
}
