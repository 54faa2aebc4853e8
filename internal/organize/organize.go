// Package organize partitions built wheel archives by file size so each
// archive lands on a host that can serve it: small wheels go to the static
// pages tree, large wheels to a release-asset bucket with higher limits.
package organize

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.trai.ch/zerr"

	"github.com/rocmforge/wheelhouse/internal/core/domain"
	"github.com/rocmforge/wheelhouse/internal/core/ports"
)

// DefaultSizeLimit is the partition threshold. Archives strictly larger go
// to the large set; everything else is small enough for static page hosting.
const DefaultSizeLimit = 100 << 20

const (
	packagesDir = "packages"
	largeDir    = "packages-large"
	smallDir    = "packages-small"
)

// Report summarizes an organize run.
type Report struct {
	Large      []string
	Small      []string
	LargeBytes int64
	SmallBytes int64
}

// Organizer copies wheels into size-partitioned output directories.
type Organizer struct {
	logger ports.Logger
}

// New creates an Organizer.
func New(logger ports.Logger) *Organizer {
	return &Organizer{logger: logger}
}

// Organize walks artifactsDir recursively, collects every wheel and copies
// it under outputDir: archives over sizeLimit into packages-large, the rest
// into packages-small and additionally into packages (the static-page
// serving root). A directory with no wheels at all is fatal; an individual
// archive that cannot be copied is logged and skipped.
func (o *Organizer) Organize(artifactsDir, outputDir string, sizeLimit int64) (Report, error) {
	var report Report

	type wheel struct {
		path string
		size int64
	}
	var wheels []wheel

	err := filepath.WalkDir(artifactsDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".whl") {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		wheels = append(wheels, wheel{path: p, size: info.Size()})
		return nil
	})
	if err != nil {
		return report, zerr.With(zerr.Wrap(err, domain.ErrWheelsDirRead.Error()), "path", artifactsDir)
	}
	if len(wheels) == 0 {
		return report, domain.Detail(domain.ErrNoArchivesFound, "path", artifactsDir)
	}

	for _, dir := range []string{packagesDir, largeDir, smallDir} {
		if err := os.MkdirAll(filepath.Join(outputDir, dir), domain.DirPerm); err != nil {
			return report, zerr.With(zerr.Wrap(err, "failed to create output directory"), "path", dir)
		}
	}

	for _, w := range wheels {
		name := filepath.Base(w.path)
		if w.size > sizeLimit {
			if err := copyFile(w.path, filepath.Join(outputDir, largeDir, name)); err != nil {
				o.logger.Warn("failed to organize " + name + ": " + err.Error())
				continue
			}
			report.Large = append(report.Large, name)
			report.LargeBytes += w.size
			continue
		}

		if err := copyFile(w.path, filepath.Join(outputDir, smallDir, name)); err != nil {
			o.logger.Warn("failed to organize " + name + ": " + err.Error())
			continue
		}
		if err := copyFile(w.path, filepath.Join(outputDir, packagesDir, name)); err != nil {
			o.logger.Warn("failed to organize " + name + ": " + err.Error())
			continue
		}
		report.Small = append(report.Small, name)
		report.SmallBytes += w.size
	}

	sort.Strings(report.Large)
	sort.Strings(report.Small)
	return report, nil
}

func copyFile(src, dest string) error {
	in, err := os.Open(src) //nolint:gosec // Path comes from the walked input directory
	if err != nil {
		return err
	}
	defer in.Close() //nolint:errcheck // Read side, best effort

	out, err := os.Create(dest) //nolint:gosec // Destination is derived from caller-provided dir
	if err != nil {
		return err
	}
	defer out.Close() //nolint:errcheck // Close error surfaced below on write failure

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
