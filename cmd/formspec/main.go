package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/dentalforms/formspec/internal/config"
	"github.com/dentalforms/formspec/internal/form"
	"github.com/dentalforms/formspec/internal/mcp"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// setupLogging configures logging based on the run mode
func setupLogging(cfg *config.Config) {
	if cfg.IsStdioMode() {
		// In stdio mode, redirect log output to stderr to avoid interfering with MCP protocol
		log.SetOutput(os.Stderr)
		// Reduce log verbosity in stdio mode unless debug is enabled
		if !cfg.IsDebug() {
			log.SetOutput(os.NewFile(0, os.DevNull))
		}
	} else {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}
}

// newFormService builds the service from configuration
func newFormService(cfg *config.Config, root string) (*form.Service, error) {
	svc, err := form.NewService(cfg.MaxFileSize, root)
	if err != nil {
		return nil, err
	}
	svc.SetProvider(cfg.Provider)
	svc.SetOutputDirectory(cfg.OutputDirectory)
	return svc, nil
}

// runConvertMode converts the positional file arguments, or the whole forms
// directory when none are given
func runConvertMode(cfg *config.Config, files []string) {
	if len(files) == 0 {
		svc, err := newFormService(cfg, cfg.FormsDirectory)
		if err != nil {
			log.Fatalf("Failed to create form service: %v", err)
		}
		result, err := svc.ConvertDirectory(form.ConvertDirectoryRequest{
			Directory:       cfg.FormsDirectory,
			OutputDirectory: cfg.OutputDirectory,
		})
		if err != nil {
			log.Fatalf("Conversion failed: %v", err)
		}
		reportBatch(result)
		if len(result.Failures) > 0 && len(result.Converted) == 0 {
			os.Exit(1)
		}
		return
	}

	failed := 0
	for _, file := range files {
		// Root the service at the file's directory so ad-hoc paths outside
		// the configured forms directory still convert
		svc, err := newFormService(cfg, filepath.Dir(file))
		if err != nil {
			log.Fatalf("Failed to create form service: %v", err)
		}
		result, err := svc.ConvertFile(form.ConvertFileRequest{Path: file})
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %s: %v\n", file, err)
			failed++
			continue
		}
		reportFile(result)
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func reportFile(result *form.ConvertFileResult) {
	fmt.Printf("%s -> %s (%s, %d fields)\n",
		result.Path, result.OutputPath, result.FormType, result.FieldCount)
	for _, w := range result.Warnings {
		fmt.Printf("  warning: %s\n", w)
	}
}

func reportBatch(result *form.ConvertDirectoryResult) {
	for i := range result.Converted {
		reportFile(&result.Converted[i])
	}
	for _, f := range result.Failures {
		fmt.Fprintf(os.Stderr, "error: %s: %s\n", f.Path, f.Error)
	}
	fmt.Printf("Converted %d document(s), %d failure(s)\n",
		len(result.Converted), len(result.Failures))
}

// runServerMode handles server mode execution with signal handling
func runServerMode(ctx context.Context, cancel context.CancelFunc, server *mcp.Server) {
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- server.Run(ctx)
	}()

	select {
	case sig := <-signalCh:
		log.Printf("Received signal: %s", sig)
		log.Println("Initiating graceful shutdown...")
		cancel()

		if err := <-serverErrCh; err != nil {
			log.Printf("Server shutdown with error: %v", err)
			os.Exit(1)
		}

	case err := <-serverErrCh:
		if err != nil {
			log.Printf("Server error: %v", err)
			os.Exit(1)
		}
	}

	log.Println("Server stopped successfully")
}

// runStdioMode handles stdio mode execution
func runStdioMode(ctx context.Context, _ context.CancelFunc, server *mcp.Server) {
	// In stdio mode, the parent process controls our lifecycle
	if err := server.Run(ctx); err != nil {
		if os.Getenv("DEBUG") != "" {
			log.Printf("Server error: %v", err)
		}
		os.Exit(1)
	}
}

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			printVersion()
			return
		}
	}

	cfg, err := config.LoadFromFlags()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	setupLogging(cfg)

	// Set version if it was provided during build
	if version != "dev" {
		cfg.Version = version
	}

	if cfg.IsDebug() && cfg.IsServerMode() {
		log.Printf("Starting with configuration: %s", cfg.String())
	}

	if cfg.IsConvertMode() {
		runConvertMode(cfg, pflag.Args())
		return
	}

	formService, err := newFormService(cfg, cfg.FormsDirectory)
	if err != nil {
		log.Fatalf("Failed to create form service: %v", err)
	}

	server, err := mcp.NewServer(cfg, formService)
	if err != nil {
		log.Fatalf("Failed to create MCP server: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.IsServerMode() {
		runServerMode(ctx, cancel, server)
	} else {
		runStdioMode(ctx, cancel, server)
	}
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("formspec - dental form to Modento Forms converter\n")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Git Commit: %s\n", gitCommit)
	fmt.Printf("Built with: %s\n", runtime.Version())
}
