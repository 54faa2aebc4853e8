// Package pin rewrites a requirements manifest so locally built packages are
// pinned to the exact versions discovered in the build output directory.
package pin

import (
	"errors"
	"io/fs"
	"os"
	"sort"
	"strings"

	"go.trai.ch/zerr"

	"github.com/rocmforge/wheelhouse/internal/core/domain"
	"github.com/rocmforge/wheelhouse/internal/core/ports"
)

// commentPrefix marks constraints superseded by an exact pin. The original
// line is kept behind it so the manifest stays auditable.
const commentPrefix = "# pinned by wheelhouse: "

// Change records one applied pin.
type Change struct {
	Name     string
	Version  string
	Replaced bool
}

// Report summarizes a pinning run.
type Report struct {
	Pinned  []Change
	Skipped []string
}

// Pinner applies exact pins to a requirements manifest.
type Pinner struct {
	logger ports.Logger
}

// New creates a Pinner.
func New(logger ports.Logger) *Pinner {
	return &Pinner{logger: logger}
}

// Pin scans installDir for built archives, matches them against the package
// mapping table and rewrites the manifest at requirementsPath in place.
// Unmapped archives are ignored; mapped archives with unparseable filenames
// are logged and skipped (container image tarballs share the directory).
// A missing manifest is fatal. Pin is idempotent.
func (p *Pinner) Pin(installDir, requirementsPath string) (Report, error) {
	var report Report

	discovered, err := p.discover(installDir, &report)
	if err != nil {
		return report, err
	}

	data, err := os.ReadFile(requirementsPath) //nolint:gosec // Path is provided by user
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return report, zerr.With(zerr.Wrap(err, domain.ErrRequirementsNotFound.Error()), "path", requirementsPath)
		}
		return report, zerr.With(zerr.Wrap(err, domain.ErrRequirementsRead.Error()), "path", requirementsPath)
	}

	rewritten, changes, dirty := rewrite(string(data), discovered)
	report.Pinned = changes

	if !dirty {
		return report, nil
	}
	if err := os.WriteFile(requirementsPath, []byte(rewritten), domain.FilePerm); err != nil {
		return report, zerr.With(zerr.Wrap(err, domain.ErrRequirementsWrite.Error()), "path", requirementsPath)
	}

	for _, c := range changes {
		p.logger.Info("pinned " + c.Name + "==" + c.Version)
	}
	return report, nil
}

// discover maps requirements names to versions found in installDir.
func (p *Pinner) discover(installDir string, report *Report) (map[string]string, error) {
	entries, err := os.ReadDir(installDir)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrWheelsDirRead.Error()), "path", installDir)
	}

	discovered := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		mapping, ok := domain.MatchPrefix(entry.Name())
		if !ok {
			continue
		}
		archive, err := domain.ParseArchiveFilename(entry.Name())
		if err != nil {
			p.logger.Warn("skipping unparseable archive " + entry.Name())
			report.Skipped = append(report.Skipped, entry.Name())
			continue
		}
		// A build output directory is expected to hold one version per
		// package. If several are present, keep the greatest version so the
		// result does not depend on directory order.
		if prev, ok := discovered[mapping.Name]; ok {
			if archive.Version < prev {
				p.logger.Warn("multiple versions of " + mapping.Name + " in " + installDir + ", keeping " + prev)
				continue
			}
			p.logger.Warn("multiple versions of " + mapping.Name + " in " + installDir + ", keeping " + archive.Version)
		}
		discovered[mapping.Name] = archive.Version
	}
	return discovered, nil
}

// rewrite applies exact pins to the manifest text, preserving comments,
// blank lines and the order of untouched lines. New pins are inserted at the
// top in name order; superseded constraints are commented out in place.
func rewrite(content string, discovered map[string]string) (string, []Change, bool) {
	lines := strings.Split(content, "\n")

	names := make([]string, 0, len(discovered))
	for name := range discovered {
		names = append(names, name)
	}
	sort.Strings(names)

	var changes []Change
	var inserts []string
	dirty := false
	for _, name := range names {
		version := discovered[name]
		exact := name + "==" + version
		normalized := domain.NormalizeName(name)

		pinned := false
		replaced := false
		for i, line := range lines {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" || strings.HasPrefix(trimmed, "#") {
				continue
			}
			if domain.NormalizeName(requirementName(trimmed)) != normalized {
				continue
			}
			if trimmed == exact {
				pinned = true
				continue
			}
			lines[i] = commentPrefix + line
			replaced = true
			dirty = true
		}

		if !pinned {
			inserts = append(inserts, exact)
			dirty = true
		}
		if !pinned || replaced {
			changes = append(changes, Change{Name: name, Version: version, Replaced: replaced})
		}
	}

	if len(inserts) > 0 {
		lines = append(inserts, lines...)
	}
	return strings.Join(lines, "\n"), changes, dirty
}

// requirementName extracts the project name from a requirements line,
// stopping at extras, version operators, markers or trailing comments.
func requirementName(line string) string {
	for i, r := range line {
		switch r {
		case '[', '<', '>', '=', '!', '~', ';', ' ', '\t', '#', '(':
			return line[:i]
		}
	}
	return line
}
