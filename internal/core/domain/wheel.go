// Package domain holds the core value types of the wheel pipeline:
// archive filename grammar, name normalization, the package mapping table,
// and the build argument set.
package domain

import (
	"regexp"
	"strings"
)

var normalizeRe = regexp.MustCompile(`[-_.]+`)

// NormalizeName canonicalizes a package name per PEP 503: lowercase, with
// runs of hyphens, underscores and dots collapsed to a single hyphen.
// The function is idempotent.
func NormalizeName(name string) string {
	return strings.ToLower(normalizeRe.ReplaceAllString(name, "-"))
}

// Archive is a versioned, platform-tagged distribution file parsed from its
// filename. Filename keeps the original, case-preserved spelling; Name keeps
// the distribution name as spelled in the filename (underscores intact).
type Archive struct {
	Filename string
	Name     string
	Version  string
	Tags     string
}

// NormalizedName returns the PEP 503 normalization of the archive's name.
func (a Archive) NormalizedName() string {
	return NormalizeName(a.Name)
}

var versionRe = regexp.MustCompile(`^[0-9]`)

// ParseArchiveFilename splits an archive filename into name and version per
// the packaging filename grammar. Wheels follow
// {name}-{version}(-{build})?-{python}-{abi}-{platform}.whl; sdists follow
// {name}-{version}.tar.gz. Anything else yields ErrFilenameParse, which
// callers treat as skip-and-log: build output directories routinely contain
// non-package artifacts.
func ParseArchiveFilename(filename string) (Archive, error) {
	switch {
	case strings.HasSuffix(filename, ".whl"):
		return parseWheel(filename)
	case strings.HasSuffix(filename, ".tar.gz"):
		return parseSdist(filename)
	default:
		return Archive{}, Detail(ErrFilenameParse, "filename", filename)
	}
}

func parseWheel(filename string) (Archive, error) {
	stem := strings.TrimSuffix(filename, ".whl")
	parts := strings.Split(stem, "-")

	// name-version-python-abi-platform, with an optional build tag after the
	// version. The distribution name never contains a hyphen in a wheel
	// filename (escaped to underscore), so the split is unambiguous.
	if len(parts) != 5 && len(parts) != 6 {
		return Archive{}, Detail(ErrFilenameParse, "filename", filename)
	}

	name, version := parts[0], parts[1]
	if name == "" || !versionRe.MatchString(version) {
		return Archive{}, Detail(ErrFilenameParse, "filename", filename)
	}

	return Archive{
		Filename: filename,
		Name:     name,
		Version:  version,
		Tags:     strings.Join(parts[len(parts)-3:], "-"),
	}, nil
}

func parseSdist(filename string) (Archive, error) {
	stem := strings.TrimSuffix(filename, ".tar.gz")
	i := strings.LastIndex(stem, "-")
	if i <= 0 || i == len(stem)-1 {
		return Archive{}, Detail(ErrFilenameParse, "filename", filename)
	}

	name, version := stem[:i], stem[i+1:]
	if !versionRe.MatchString(version) {
		return Archive{}, Detail(ErrFilenameParse, "filename", filename)
	}

	return Archive{Filename: filename, Name: name, Version: version}, nil
}
