// Package publish synchronizes local wheels and a generated index tree to
// the object store under scope-derived prefixes. A single invocation either
// uploads every file to every destination or fails the run, so consumers
// never see a half-published repository.
package publish

import (
	"context"
	"io/fs"
	"path"
	"path/filepath"

	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"

	"github.com/rocmforge/wheelhouse/internal/core/domain"
	"github.com/rocmforge/wheelhouse/internal/core/ports"
)

// MainBranch is the branch whose builds are mirrored to the nightly prefix.
const MainBranch = "main"

// transferParallelism bounds concurrent puts against the store.
const transferParallelism = 8

// Options selects the destinations for one upload. Commit is mandatory;
// Branch and Release/Version add the nightly and version mirrors.
type Options struct {
	Bucket    string
	Namespace string
	Commit    string
	Branch    string
	Version   string
	Release   bool
}

// Destinations returns the object-store prefixes this upload targets.
func (o Options) Destinations() []string {
	prefixes := []string{path.Join(o.Namespace, o.Commit)}
	if o.Branch == MainBranch {
		prefixes = append(prefixes, path.Join(o.Namespace, "nightly"))
	}
	if o.Release && o.Version != "" {
		prefixes = append(prefixes, path.Join(o.Namespace, o.Version))
	}
	return prefixes
}

// Uploader copies build artifacts to the object store.
type Uploader struct {
	store  ports.ObjectStore
	logger ports.Logger
}

// New creates an Uploader.
func New(store ports.ObjectStore, logger ports.Logger) *Uploader {
	return &Uploader{store: store, logger: logger}
}

type transfer struct {
	localPath string
	relKey    string
}

// Upload copies every file under wheelsDir (flat, archives only) and
// indexDir (recursive, preserving relative paths) to each destination
// prefix. Any single failed put fails the whole invocation.
func (u *Uploader) Upload(ctx context.Context, wheelsDir, indexDir string, opts Options) error {
	transfers, err := collect(wheelsDir, indexDir)
	if err != nil {
		return err
	}

	destinations := opts.Destinations()
	grp, ctx := errgroup.WithContext(ctx)
	grp.SetLimit(transferParallelism)

	for _, dest := range destinations {
		for _, tr := range transfers {
			key := path.Join(dest, tr.relKey)
			grp.Go(func() error {
				if err := u.store.PutFile(ctx, opts.Bucket, key, tr.localPath); err != nil {
					return zerr.With(
						zerr.With(zerr.Wrap(err, domain.ErrUploadIncomplete.Error()), "bucket", opts.Bucket),
						"key", key,
					)
				}
				return nil
			})
		}
	}

	if err := grp.Wait(); err != nil {
		return err
	}

	u.logger.Info("uploaded " + wheelsDir + " and " + indexDir + " to " + path.Join(opts.Bucket, opts.Namespace))
	return nil
}

// collect builds the transfer list: wheel archives keyed by bare filename,
// index pages keyed by their path relative to indexDir.
func collect(wheelsDir, indexDir string) ([]transfer, error) {
	var transfers []transfer

	err := filepath.WalkDir(wheelsDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		transfers = append(transfers, transfer{localPath: p, relKey: d.Name()})
		return nil
	})
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrWheelsDirRead.Error()), "path", wheelsDir)
	}

	err = filepath.WalkDir(indexDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(indexDir, p)
		if err != nil {
			return err
		}
		transfers = append(transfers, transfer{localPath: p, relKey: filepath.ToSlash(rel)})
		return nil
	})
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrUploadIncomplete.Error()), "path", indexDir)
	}

	return transfers, nil
}
