// Package testutil provides helper functions for testing ktscan components
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ludo-technologies/ktscan/domain"
)

// WriteTree creates files under root. Keys are slash-separated relative
// paths, values are file contents.
func WriteTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("Failed to create directory for %s: %v", rel, err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("Failed to write %s: %v", rel, err)
		}
	}
}

// Descriptor builds a FileDescriptor for an in-memory test file
func Descriptor(rel string, layer domain.Layer) domain.FileDescriptor {
	return domain.FileDescriptor{
		AbsolutePath: "/project/" + rel,
		RelativePath: rel,
		Layer:        layer,
	}
}

// NewFinding builds a finding with a deterministic id
func NewFinding(analyzerID, file string, line int, category domain.Category, priority domain.Priority, title string) domain.Finding {
	return domain.Finding{
		ID:          domain.NewFindingID(analyzerID, file, line, category, title),
		AnalyzerID:  analyzerID,
		Category:    category,
		Priority:    priority,
		Title:       title,
		Description: title,
		File:        file,
		LineNumber:  line,
		Effort:      domain.EffortSmall,
	}
}

// RelativePaths extracts relative paths from descriptors
func RelativePaths(files []domain.FileDescriptor) []string {
	paths := make([]string, 0, len(files))
	for _, f := range files {
		paths = append(paths, f.RelativePath)
	}
	return paths
}

// ContainsPath reports whether a descriptor with the relative path exists
func ContainsPath(files []domain.FileDescriptor, rel string) bool {
	for _, f := range files {
		if f.RelativePath == rel {
			return true
		}
	}
	return false
}

// AssertNoError fails the test if err is not nil
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("Expected error but got nil")
	}
}

// AssertEqual fails the test if expected != actual
func AssertEqual(t *testing.T, expected, actual any) {
	t.Helper()
	if expected != actual {
		t.Errorf("Expected %v, got %v", expected, actual)
	}
}

// AssertTrue fails the test if condition is false
func AssertTrue(t *testing.T, condition bool, msg string) {
	t.Helper()
	if !condition {
		t.Error(msg)
	}
}

// AssertFalse fails the test if condition is true
func AssertFalse(t *testing.T, condition bool, msg string) {
	t.Helper()
	if condition {
		t.Error(msg)
	}
}
