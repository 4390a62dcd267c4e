package form

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dentalforms/formspec/internal/document"
)

// SearchDirectory finds form documents (.pdf and .docx) under a directory,
// optionally filtered by a fuzzy filename query
func (s *Service) SearchDirectory(req SearchDirectoryRequest) (*SearchDirectoryResult, error) {
	if req.Directory == "" {
		req.Directory = s.guard.Root()
	}
	if err := s.guard.CheckDirectory(req.Directory); err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}
	if _, err := os.Stat(req.Directory); os.IsNotExist(err) {
		return nil, fmt.Errorf("directory does not exist: %s", req.Directory)
	}

	absDir, err := filepath.Abs(req.Directory)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve directory path: %w", err)
	}

	query := strings.ToLower(strings.TrimSpace(req.Query))
	var files []FileInfo

	err = filepath.WalkDir(absDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // Keep walking past unreadable entries
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != absDir {
				return filepath.SkipDir
			}
			return nil
		}

		format, err := document.FormatForPath(path)
		if err != nil {
			return nil //nolint:nilerr // Not a form document
		}
		if query != "" && !matchesQuery(d.Name(), query) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil //nolint:nilerr
		}
		if s.maxFileSize > 0 && info.Size() > s.maxFileSize {
			return nil
		}

		files = append(files, FileInfo{
			Path:         path,
			Name:         d.Name(),
			Format:       format,
			Size:         info.Size(),
			ModifiedTime: info.ModTime().Format("2006-01-02 15:04:05"),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking directory: %w", err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })

	return &SearchDirectoryResult{
		Directory:   absDir,
		Files:       files,
		TotalCount:  len(files),
		SearchQuery: req.Query,
	}, nil
}

// FindDocuments lists every form document in a directory without filtering
func (s *Service) FindDocuments(directory string) ([]FileInfo, error) {
	result, err := s.SearchDirectory(SearchDirectoryRequest{Directory: directory})
	if err != nil {
		return nil, err
	}
	return result.Files, nil
}

// matchesQuery fuzzy-matches a filename against a lowercase query: substring
// first, then per-word containment
func matchesQuery(filename, query string) bool {
	name := strings.ToLower(filename)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	if strings.Contains(name, query) {
		return true
	}

	words := splitWords(name)
	for _, qw := range splitWords(query) {
		found := false
		for _, w := range words {
			if strings.Contains(w, qw) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func splitWords(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		switch r {
		case ' ', '_', '-', '.', '(', ')', '[', ']':
			return true
		}
		return false
	})
}
