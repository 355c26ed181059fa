// Package discovery walks a source tree and produces file descriptors for
// the files the analyzers should see.
package discovery

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ludo-technologies/ktscan/domain"
	ignore "github.com/sabhiram/go-gitignore"
)

// Options configures a Scanner
type Options struct {
	// BaseDir anchors relative paths and exclusion matching. Scans of a
	// directory inside BaseDir report paths relative to BaseDir so findings
	// keep stable identities across full and incremental runs.
	BaseDir string

	Extensions       []string
	ExcludePatterns  []string
	RespectGitignore bool
	MaxFileSizeKB    int
	Logger           *slog.Logger
}

// Scanner discovers analyzable files
type Scanner struct {
	baseDir    string
	extensions map[string]struct{}
	excludes   *patternSet
	gitignore  bool
	maxSize    int64
	logger     *slog.Logger
}

// NewScanner creates a scanner, compiling the exclusion patterns
func NewScanner(opts Options) (*Scanner, error) {
	excludes, err := compilePatterns(opts.ExcludePatterns)
	if err != nil {
		return nil, domain.NewConfigError("invalid exclusion patterns", err)
	}

	exts := make(map[string]struct{}, len(opts.Extensions))
	for _, ext := range opts.Extensions {
		exts[strings.ToLower(ext)] = struct{}{}
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	baseDir := opts.BaseDir
	if baseDir != "" {
		if abs, err := filepath.Abs(baseDir); err == nil {
			baseDir = abs
		}
	}

	return &Scanner{
		baseDir:    baseDir,
		extensions: exts,
		excludes:   excludes,
		gitignore:  opts.RespectGitignore,
		maxSize:    int64(opts.MaxFileSizeKB) * 1024,
		logger:     logger,
	}, nil
}

// Scan walks root and returns a descriptor for every file outside excluded
// directories. A missing or non-directory root is a DiscoveryError; files
// that cannot be stat'ed are skipped.
func (s *Scanner) Scan(root string) ([]domain.FileDescriptor, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, domain.NewDiscoveryError("cannot resolve root "+root, err)
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, domain.NewDiscoveryError("root does not exist: "+root, err)
	}
	if !info.IsDir() {
		return nil, domain.NewDiscoveryError("root is not a directory: "+root, nil)
	}

	anchor := s.anchorFor(absRoot)
	gi := s.loadGitignore(anchor)

	var files []domain.FileDescriptor
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == absRoot {
				return walkErr
			}
			s.logger.Debug("skipping unreadable path", "path", path, "error", walkErr)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(anchor, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if path != absRoot && s.isIgnored(gi, rel, true) {
				return filepath.SkipDir
			}
			return nil
		}

		if s.isIgnored(gi, rel, false) {
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			s.logger.Debug("skipping file", "path", path, "error", err)
			return nil
		}
		if !fi.Mode().IsRegular() {
			return nil
		}

		files = append(files, domain.FileDescriptor{
			AbsolutePath:            path,
			RelativePath:            rel,
			SizeBytes:               fi.Size(),
			LastModifiedEpochMillis: fi.ModTime().UnixMilli(),
			Layer:                   ClassifyLayer(rel),
		})
		return nil
	})
	if err != nil {
		return nil, domain.NewDiscoveryError("failed to walk "+root, err)
	}

	return files, nil
}

// Filter keeps the files ShouldAnalyze accepts
func (s *Scanner) Filter(files []domain.FileDescriptor) []domain.FileDescriptor {
	filtered := make([]domain.FileDescriptor, 0, len(files))
	for _, f := range files {
		if !s.ShouldAnalyze(f) {
			continue
		}
		if s.maxSize > 0 && f.SizeBytes > s.maxSize {
			s.logger.Debug("skipping large file", "path", f.RelativePath, "size", f.SizeBytes)
			continue
		}
		filtered = append(filtered, f)
	}
	return filtered
}

// ShouldAnalyze reports whether the file is outside every exclusion pattern
// and carries a recognized source extension.
func (s *Scanner) ShouldAnalyze(file domain.FileDescriptor) bool {
	if s.excludes.matches(file.RelativePath, false) {
		return false
	}
	_, ok := s.extensions[strings.ToLower(filepath.Ext(file.RelativePath))]
	return ok
}

// IsExcludedDir reports whether a directory, given relative to the scanner
// base, is pruned by the exclusion patterns.
func (s *Scanner) IsExcludedDir(relPath string) bool {
	return s.excludes.matches(filepath.ToSlash(relPath), true)
}

// BaseDir returns the directory relative paths are computed against
func (s *Scanner) BaseDir() string {
	return s.baseDir
}

// anchorFor picks the directory relative paths are computed against
func (s *Scanner) anchorFor(absRoot string) string {
	if s.baseDir == "" {
		return absRoot
	}
	rel, err := filepath.Rel(s.baseDir, absRoot)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return absRoot
	}
	return s.baseDir
}

func (s *Scanner) loadGitignore(anchor string) *ignore.GitIgnore {
	if !s.gitignore {
		return nil
	}
	path := filepath.Join(anchor, ".gitignore")
	gi, err := ignore.CompileIgnoreFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("ignoring unreadable .gitignore", "path", path, "error", err)
		}
		return nil
	}
	return gi
}

func (s *Scanner) isIgnored(gi *ignore.GitIgnore, rel string, isDir bool) bool {
	if s.excludes.matches(rel, isDir) {
		return true
	}
	if gi != nil {
		if gi.MatchesPath(rel) {
			return true
		}
		if isDir && gi.MatchesPath(rel+"/") {
			return true
		}
	}
	return false
}
