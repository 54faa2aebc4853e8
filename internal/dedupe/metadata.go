package dedupe

import (
	"archive/zip"
	"bufio"
	"io"
	"strings"

	"go.trai.ch/zerr"

	"github.com/rocmforge/wheelhouse/internal/core/domain"
)

// Mismatch is an advisory finding: the project wheel declares an exact pin
// that differs from the retained custom archive's version.
type Mismatch struct {
	Name     string
	Declared string
	Retained string
}

// ValidateProject reads Requires-Dist from the project wheel's METADATA and
// compares every exact pin against the versions retained by the filter.
// Findings are advisory: the caller logs them and moves on.
func (f *Filter) ValidateProject(projectWheel string, kept map[string]string) ([]Mismatch, error) {
	declared, err := readDeclaredPins(projectWheel)
	if err != nil {
		return nil, err
	}

	var mismatches []Mismatch
	for name, retained := range kept {
		pin, ok := declared[name]
		if !ok || pin == retained {
			continue
		}
		m := Mismatch{Name: name, Declared: pin, Retained: retained}
		mismatches = append(mismatches, m)
		f.logger.Warn(domain.ErrValidationMismatch.Error() +
			": " + name + " declares " + pin + ", retained " + retained)
	}
	return mismatches, nil
}

// readDeclaredPins extracts exact (==) Requires-Dist pins from a wheel's
// METADATA, keyed by normalized name. A wheel is a zip archive with the
// metadata under {name}-{version}.dist-info/METADATA.
func readDeclaredPins(wheelPath string) (map[string]string, error) {
	r, err := zip.OpenReader(wheelPath)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrMetadataRead.Error()), "path", wheelPath)
	}
	defer r.Close() //nolint:errcheck // Best effort close in defer

	for _, file := range r.File {
		if !strings.HasSuffix(file.Name, ".dist-info/METADATA") {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrMetadataRead.Error()), "path", wheelPath)
		}
		defer rc.Close() //nolint:errcheck // Best effort close in defer
		return parsePins(rc)
	}
	return nil, domain.Detail(domain.ErrMetadataRead, "path", wheelPath)
}

func parsePins(r io.Reader) (map[string]string, error) {
	pins := make(map[string]string)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			// Header section ends at the first blank line; the long
			// description body follows.
			break
		}
		spec, ok := strings.CutPrefix(line, "Requires-Dist: ")
		if !ok {
			continue
		}
		// Only exact pins participate in validation.
		if i := strings.Index(spec, ";"); i >= 0 {
			spec = spec[:i]
		}
		name, version, ok := strings.Cut(strings.TrimSpace(spec), "==")
		if !ok {
			continue
		}
		if i := strings.Index(name, "["); i >= 0 {
			name = name[:i]
		}
		pins[domain.NormalizeName(strings.TrimSpace(name))] = strings.TrimSpace(version)
	}
	if err := scanner.Err(); err != nil {
		return nil, zerr.Wrap(err, domain.ErrMetadataRead.Error())
	}
	return pins, nil
}
