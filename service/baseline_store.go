package service

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"sort"

	"github.com/BurntSushi/toml"
	"github.com/ludo-technologies/ktscan/domain"
)

// TOMLBaselineStore keeps the baseline in a single TOML file
type TOMLBaselineStore struct {
	path string
}

// NewTOMLBaselineStore creates a baseline store at path
func NewTOMLBaselineStore(path string) *TOMLBaselineStore {
	return &TOMLBaselineStore{path: path}
}

// Path returns the baseline file location
func (s *TOMLBaselineStore) Path() string {
	return s.path
}

// Load reads the baseline. A missing file is not an error: it returns nil.
func (s *TOMLBaselineStore) Load() (*domain.Baseline, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, domain.NewReadError(s.path, err)
	}

	var b domain.Baseline
	if _, err := toml.Decode(string(data), &b); err != nil {
		return nil, domain.NewReadError(s.path, err)
	}
	// Contains relies on sorted ids; hand-edited files may not be
	sort.Strings(b.FindingIDs)
	return &b, nil
}

// Save replaces the stored baseline
func (s *TOMLBaselineStore) Save(baseline *domain.Baseline) error {
	if baseline == nil {
		return domain.NewInvalidInputError("baseline must not be nil", nil)
	}

	var buf bytes.Buffer
	buf.WriteString("# ktscan baseline: finding ids present when this snapshot was taken\n")
	if err := toml.NewEncoder(&buf).Encode(baseline); err != nil {
		return domain.NewOutputError("failed to encode baseline", err)
	}
	if err := writeFileAtomic(s.path, buf.Bytes()); err != nil {
		return domain.NewOutputError("failed to write baseline", err)
	}
	return nil
}
