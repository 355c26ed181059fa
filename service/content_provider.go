package service

import (
	"errors"
	"io/fs"
	"os"

	"github.com/ludo-technologies/ktscan/domain"
)

// FSContentProvider reads file contents from the local filesystem
type FSContentProvider struct{}

// NewFSContentProvider creates a filesystem content provider
func NewFSContentProvider() *FSContentProvider {
	return &FSContentProvider{}
}

// ReadContent returns the file content as a string
func (p *FSContentProvider) ReadContent(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", domain.NewFileNotFoundError(path, err)
		}
		return "", domain.NewReadError(path, err)
	}
	return string(data), nil
}
