// Package dedupe removes externally sourced copies of packages that have a
// custom-built counterpart, so the published index serves exactly one origin
// per package.
package dedupe

import (
	"io"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/zerr"

	"github.com/rocmforge/wheelhouse/internal/core/domain"
	"github.com/rocmforge/wheelhouse/internal/core/ports"
)

// Report summarizes a filter run.
type Report struct {
	// Kept maps normalized package names to the retained custom version.
	Kept map[string]string
	// Deleted lists the externally sourced archives removed from allDir.
	Deleted []string
	// Mismatches holds advisory metadata validation findings; never fatal.
	Mismatches []Mismatch
}

// Filter deletes externally sourced duplicates of custom-built packages.
type Filter struct {
	logger ports.Logger
}

// New creates a Filter.
func New(logger ports.Logger) *Filter {
	return &Filter{logger: logger}
}

// Filter mutates allDir in place. For every name on the allow-list that has
// at least one custom-built archive, every archive in allDir for that name
// that is not byte-identical to a custom copy is deleted. Names without a
// custom build are left untouched: absence of a custom package is the common
// case and must not block the pipeline.
func (f *Filter) Filter(customDir, allDir string, names []string) (Report, error) {
	report := Report{Kept: make(map[string]string)}

	custom, err := f.scan(customDir)
	if err != nil {
		return report, err
	}
	all, err := f.scan(allDir)
	if err != nil {
		return report, err
	}

	for _, name := range names {
		normalized := domain.NormalizeName(name)
		customArchives := custom[normalized]
		if len(customArchives) == 0 {
			continue
		}

		customHashes := make(map[uint64]bool, len(customArchives))
		for _, a := range customArchives {
			h, err := hashFile(filepath.Join(customDir, a.Filename))
			if err != nil {
				return report, err
			}
			customHashes[h] = true
			report.Kept[normalized] = a.Version
		}

		for _, a := range all[normalized] {
			path := filepath.Join(allDir, a.Filename)
			h, err := hashFile(path)
			if err != nil {
				return report, err
			}
			if customHashes[h] {
				continue
			}
			if err := os.Remove(path); err != nil {
				return report, zerr.With(zerr.Wrap(err, "failed to delete duplicate archive"), "path", path)
			}
			f.logger.Info("deleted externally sourced " + a.Filename)
			report.Deleted = append(report.Deleted, a.Filename)
		}
	}

	return report, nil
}

// scan indexes a directory's archives by normalized package name.
// Unparseable filenames are logged and skipped.
func (f *Filter) scan(dir string) (map[string][]domain.Archive, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrWheelsDirRead.Error()), "path", dir)
	}

	byName := make(map[string][]domain.Archive)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		archive, err := domain.ParseArchiveFilename(entry.Name())
		if err != nil {
			f.logger.Warn("skipping unparseable archive " + entry.Name())
			continue
		}
		byName[archive.NormalizedName()] = append(byName[archive.NormalizedName()], archive)
	}
	return byName, nil
}

func hashFile(path string) (uint64, error) {
	f, err := os.Open(path) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return 0, zerr.With(zerr.Wrap(err, "failed to open file"), "path", path)
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	hasher := xxhash.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return 0, zerr.With(zerr.Wrap(err, "failed to hash file content"), "path", path)
	}
	return hasher.Sum64(), nil
}
