// Package cache derives content-addressed build cache keys and moves cached
// build output between the local filesystem and the remote object store.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	iofs "io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"

	"github.com/rocmforge/wheelhouse/internal/core/domain"
	"github.com/rocmforge/wheelhouse/internal/core/ports"
)

// completeMarker is uploaded after all artifacts of a key. Check requires it,
// so a push that died halfway reads as a miss on the next run.
const completeMarker = ".complete"

// transferParallelism bounds concurrent object transfers. Workers write
// distinct files, so no locking is needed.
const transferParallelism = 8

// ComputeKey computes the cache key for a build recipe and argument set:
// the first 16 hex characters of the recipe digest and of the canonical
// argument digest, joined by a hyphen. Identical recipe bytes and identical
// arguments always yield the same key, independent of host or time.
func ComputeKey(recipePath string, args domain.BuildArgs) (string, error) {
	data, err := os.ReadFile(recipePath) //nolint:gosec // Path is provided by user
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrRecipeRead.Error()), "path", recipePath)
	}

	recipeSum := sha256.Sum256(data)
	argsSum := sha256.Sum256([]byte(args.Canonical()))

	return fmt.Sprintf("%s-%s",
		hex.EncodeToString(recipeSum[:])[:16],
		hex.EncodeToString(argsSum[:])[:16],
	), nil
}

// Deriver checks, pulls and pushes cached build output keyed by cache key.
type Deriver struct {
	store     ports.ObjectStore
	logger    ports.Logger
	bucket    string
	namespace string
}

// NewDeriver creates a Deriver bound to a bucket and namespace.
func NewDeriver(store ports.ObjectStore, logger ports.Logger, bucket, namespace string) *Deriver {
	return &Deriver{store: store, logger: logger, bucket: bucket, namespace: namespace}
}

func (d *Deriver) keyPrefix(key string) string {
	return path.Join(d.namespace, "cache", key) + "/"
}

// Check reports whether the key has a complete cached build. The force flag
// (sourced from the CI trigger environment, passed in explicitly) bypasses
// the lookup and always reports a miss.
func (d *Deriver) Check(ctx context.Context, key string, force bool) (bool, error) {
	if force {
		d.logger.Info("forced rebuild requested, treating cache key " + key + " as a miss")
		return false, nil
	}
	return d.store.Exists(ctx, d.bucket, d.keyPrefix(key)+completeMarker)
}

// Pull downloads every cached artifact for the key into destDir, preserving
// relative paths. Returns ErrCacheMiss when the key has no artifacts.
func (d *Deriver) Pull(ctx context.Context, key, destDir string) error {
	prefix := d.keyPrefix(key)
	keys, err := d.store.List(ctx, d.bucket, prefix)
	if err != nil {
		return err
	}

	// The completion marker alone is not a cache entry: a prefix holding
	// nothing but the marker is degenerate and reads as a miss.
	artifacts := make([]string, 0, len(keys))
	for _, objKey := range keys {
		rel := strings.TrimPrefix(objKey, prefix)
		if rel == completeMarker || rel == "" {
			continue
		}
		artifacts = append(artifacts, objKey)
	}
	if len(artifacts) == 0 {
		return domain.Detail(domain.ErrCacheMiss, "key", key)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(transferParallelism)
	for _, objKey := range artifacts {
		rel := strings.TrimPrefix(objKey, prefix)
		g.Go(func() error {
			return d.download(ctx, objKey, filepath.Join(destDir, filepath.FromSlash(rel)))
		})
	}
	return g.Wait()
}

func (d *Deriver) download(ctx context.Context, objKey, dest string) error {
	body, err := d.store.Get(ctx, d.bucket, objKey)
	if err != nil {
		return err
	}
	defer body.Close() //nolint:errcheck // Best effort close in defer

	if err := os.MkdirAll(filepath.Dir(dest), domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create destination directory"), "path", dest)
	}
	f, err := os.Create(dest) //nolint:gosec // Destination is derived from caller-provided dir
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create destination file"), "path", dest)
	}
	defer f.Close() //nolint:errcheck // Close error surfaced by the copy below on write failure

	if _, err := io.Copy(f, body); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to write cached artifact"), "path", dest)
	}
	return f.Close()
}

// Push uploads the build output directory under the key prefix, then writes
// the completion marker. The marker goes last so concurrent readers never
// see a torn cache entry as a hit.
func (d *Deriver) Push(ctx context.Context, key, srcDir string) error {
	prefix := d.keyPrefix(key)

	var files []string
	err := filepath.WalkDir(srcDir, func(p string, entry iofs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.IsDir() {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to walk build output"), "path", srcDir)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(transferParallelism)
	for _, file := range files {
		rel, err := filepath.Rel(srcDir, file)
		if err != nil {
			return zerr.With(zerr.Wrap(err, "failed to resolve relative path"), "path", file)
		}
		g.Go(func() error {
			return d.store.PutFile(gctx, d.bucket, prefix+filepath.ToSlash(rel), file)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	marker, err := emptyFile()
	if err != nil {
		return err
	}
	defer os.Remove(marker) //nolint:errcheck // Best effort temp cleanup

	return d.store.PutFile(ctx, d.bucket, prefix+completeMarker, marker)
}

func emptyFile() (string, error) {
	f, err := os.CreateTemp("", "wheelhouse-marker-*")
	if err != nil {
		return "", zerr.Wrap(err, "failed to create completion marker")
	}
	name := f.Name()
	if err := f.Close(); err != nil {
		return "", zerr.Wrap(err, "failed to close completion marker")
	}
	return name, nil
}
