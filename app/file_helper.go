package app

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ludo-technologies/ktscan/domain"
)

// FileHelper resolves explicit target paths to analyzable files
type FileHelper struct {
	discoverer domain.FileDiscoverer
	logger     *slog.Logger
}

// NewFileHelper creates a FileHelper over a discoverer
func NewFileHelper(discoverer domain.FileDiscoverer, logger *slog.Logger) *FileHelper {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileHelper{discoverer: discoverer, logger: logger}
}

// CollectRoot discovers and filters every file under root
func (h *FileHelper) CollectRoot(root string) ([]domain.FileDescriptor, error) {
	files, err := h.discoverer.Scan(root)
	if err != nil {
		return nil, err
	}
	return h.discoverer.Filter(files), nil
}

// ResolveTargets maps each path to files. Directories are scanned. A file is
// resolved by scanning its parent directory and keeping the exact match, so
// exclusion patterns see the same directory context as a full run. Missing
// paths are skipped with a FileNotFound warning and returned in warnings.
// Results are filtered and free of duplicates, in argument order.
func (h *FileHelper) ResolveTargets(paths []string) ([]domain.FileDescriptor, []error, error) {
	var (
		files    []domain.FileDescriptor
		warnings []error
		seen     = make(map[string]struct{})
	)

	add := func(found []domain.FileDescriptor) {
		for _, f := range h.discoverer.Filter(found) {
			if _, ok := seen[f.AbsolutePath]; ok {
				continue
			}
			seen[f.AbsolutePath] = struct{}{}
			files = append(files, f)
		}
	}

	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			abs = p
		}

		info, err := os.Stat(abs)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				werr := domain.NewFileNotFoundError(p, err)
				h.logger.Warn("skipping missing target", "path", p)
				warnings = append(warnings, werr)
				continue
			}
			werr := domain.NewReadError(p, err)
			h.logger.Warn("skipping unreadable target", "path", p, "error", err)
			warnings = append(warnings, werr)
			continue
		}

		if info.IsDir() {
			found, err := h.discoverer.Scan(abs)
			if err != nil {
				return nil, warnings, err
			}
			add(found)
			continue
		}

		found, err := h.discoverer.Scan(filepath.Dir(abs))
		if err != nil {
			return nil, warnings, err
		}
		var exact []domain.FileDescriptor
		for _, f := range found {
			if f.AbsolutePath == abs {
				exact = append(exact, f)
				break
			}
		}
		if len(exact) == 0 {
			h.logger.Debug("target excluded by discovery rules", "path", p)
		}
		add(exact)
	}

	return files, warnings, nil
}

// AbsolutePaths returns the absolute path of each descriptor
func AbsolutePaths(files []domain.FileDescriptor) []string {
	paths := make([]string, 0, len(files))
	for _, f := range files {
		paths = append(paths, f.AbsolutePath)
	}
	return paths
}
