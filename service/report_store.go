package service

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ludo-technologies/ktscan/domain"
)

// FileReportStore writes rendered reports as <dir>/<name>.md
type FileReportStore struct {
	dir string
}

// NewFileReportStore creates a report store rooted at dir
func NewFileReportStore(dir string) *FileReportStore {
	return &FileReportStore{dir: dir}
}

// Save writes content and returns the report path. An existing report with
// the same name is replaced.
func (s *FileReportStore) Save(name string, content string) (string, error) {
	if name == "" || filepath.Base(name) != name {
		return "", domain.NewInvalidInputError(fmt.Sprintf("invalid report name %q", name), nil)
	}
	path := filepath.Join(s.dir, name+".md")
	if err := writeFileAtomic(path, []byte(content)); err != nil {
		return "", domain.NewOutputError("failed to write report", err)
	}
	return path, nil
}

// writeFileAtomic writes via a temp file in the target directory and renames
// it into place
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename into %s: %w", path, err)
	}
	return nil
}
