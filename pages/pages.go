// Package pages serves the static home and not-found pages from disk.
package pages

import (
	"fmt"
	"os"
)

// FilePages reads each page from disk on every call, so edits to the files
// show up without a restart.
type FilePages struct {
	HomePath     string
	NotFoundPath string
}

// NewFilePages creates a FilePages for the given paths
func NewFilePages(homePath, notFoundPath string) *FilePages {
	return &FilePages{HomePath: homePath, NotFoundPath: notFoundPath}
}

// HomePage returns the contents of the home page
func (p *FilePages) HomePage() (string, error) {
	return readPage(p.HomePath)
}

// NotFoundPage returns the contents of the not-found page
func (p *FilePages) NotFoundPage() (string, error) {
	return readPage(p.NotFoundPath)
}

func readPage(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read page %s: %w", path, err)
	}
	return string(content), nil
}
