// Package app implements the application layer for wheelhouse.
package app

import (
	"context"
	"fmt"

	"go.trai.ch/zerr"

	"github.com/rocmforge/wheelhouse/internal/cache"
	"github.com/rocmforge/wheelhouse/internal/core/domain"
	"github.com/rocmforge/wheelhouse/internal/core/ports"
	"github.com/rocmforge/wheelhouse/internal/dedupe"
	"github.com/rocmforge/wheelhouse/internal/index"
	"github.com/rocmforge/wheelhouse/internal/organize"
	"github.com/rocmforge/wheelhouse/internal/pin"
	"github.com/rocmforge/wheelhouse/internal/publish"
)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	store        ports.ObjectStore
	tracer       ports.Tracer
	logger       ports.Logger
}

// New creates a new App instance.
func New(loader ports.ConfigLoader, store ports.ObjectStore, tracer ports.Tracer, log ports.Logger) *App {
	return &App{
		configLoader: loader,
		store:        store,
		tracer:       tracer,
		logger:       log,
	}
}

func (a *App) config(path string) (*domain.Config, error) {
	cfg, err := a.configLoader.Load(path)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}
	return cfg, nil
}

// CacheKey computes the cache key for the recipe and the configured build
// arguments.
func (a *App) CacheKey(configPath, recipePath string) (string, error) {
	cfg, err := a.config(configPath)
	if err != nil {
		return "", err
	}
	return cache.ComputeKey(recipePath, cfg.BuildArgs)
}

// CacheCheck reports whether a cached build exists for the recipe. force
// always reports a miss.
func (a *App) CacheCheck(ctx context.Context, configPath, recipePath string, force bool) (string, bool, error) {
	cfg, err := a.config(configPath)
	if err != nil {
		return "", false, err
	}
	key, err := cache.ComputeKey(recipePath, cfg.BuildArgs)
	if err != nil {
		return "", false, err
	}
	hit, err := a.deriver(cfg).Check(ctx, key, force)
	return key, hit, err
}

// CachePull downloads the cached build for the recipe into destDir.
func (a *App) CachePull(ctx context.Context, configPath, recipePath, destDir string) (string, error) {
	cfg, err := a.config(configPath)
	if err != nil {
		return "", err
	}
	key, err := cache.ComputeKey(recipePath, cfg.BuildArgs)
	if err != nil {
		return "", err
	}
	return key, a.deriver(cfg).Pull(ctx, key, destDir)
}

// CachePush uploads srcDir as the cached build for the recipe.
func (a *App) CachePush(ctx context.Context, configPath, recipePath, srcDir string) (string, error) {
	cfg, err := a.config(configPath)
	if err != nil {
		return "", err
	}
	key, err := cache.ComputeKey(recipePath, cfg.BuildArgs)
	if err != nil {
		return "", err
	}
	return key, a.deriver(cfg).Push(ctx, key, srcDir)
}

func (a *App) deriver(cfg *domain.Config) *cache.Deriver {
	return cache.NewDeriver(a.store, a.logger, cfg.Bucket, cfg.Namespace)
}

// Pin rewrites the requirements manifest so packages built into installDir
// are pinned to their discovered versions.
func (a *App) Pin(installDir, requirementsPath string) (pin.Report, error) {
	return pin.New(a.logger).Pin(installDir, requirementsPath)
}

// DedupeOptions configures the duplicate filter run.
type DedupeOptions struct {
	CustomDir    string
	AllDir       string
	Packages     []string
	ProjectWheel string
}

// Dedupe removes externally sourced copies of custom-built packages from
// AllDir. When Packages is empty the configured allow-list applies. When a
// project wheel is given its declared pins are validated against the
// retained archives; mismatches are reported, never enforced.
func (a *App) Dedupe(configPath string, opts DedupeOptions) (dedupe.Report, error) {
	cfg, err := a.config(configPath)
	if err != nil {
		return dedupe.Report{}, err
	}

	packages := opts.Packages
	if len(packages) == 0 {
		packages = cfg.Packages
	}

	filter := dedupe.New(a.logger)
	report, err := filter.Filter(opts.CustomDir, opts.AllDir, packages)
	if err != nil {
		return report, err
	}

	if opts.ProjectWheel != "" {
		mismatches, err := filter.ValidateProject(opts.ProjectWheel, report.Kept)
		if err != nil {
			return report, err
		}
		report.Mismatches = mismatches
		for _, m := range mismatches {
			a.logger.Warn(fmt.Sprintf("declared pin mismatch for %s: declared %s, retained %s", m.Name, m.Declared, m.Retained))
		}
	}

	return report, nil
}

// Organize partitions built wheels by size under outputDir so oversized
// archives can be published through release assets instead of static pages.
func (a *App) Organize(artifactsDir, outputDir string, sizeLimit int64) (organize.Report, error) {
	return organize.New(a.logger).Organize(artifactsDir, outputDir, sizeLimit)
}

// Index generates the static package index for wheelsDir under outputDir.
// label is descriptive only and never changes the tree's structure.
func (a *App) Index(configPath, wheelsDir, outputDir, label string) error {
	cfg, err := a.config(configPath)
	if err != nil {
		return err
	}
	meta := index.Meta{Variant: cfg.Variant, BaseURL: cfg.BaseURL, Label: label}
	return index.New(a.logger).Generate(wheelsDir, outputDir, meta)
}

// UploadOptions selects the publication scopes for an upload.
type UploadOptions struct {
	WheelsDir string
	IndexDir  string
	Commit    string
	Branch    string
	Version   string
	Release   bool
}

// Upload publishes wheels and index to every scope-derived prefix.
func (a *App) Upload(ctx context.Context, configPath string, opts UploadOptions) error {
	cfg, err := a.config(configPath)
	if err != nil {
		return err
	}
	return publish.New(a.store, a.logger).Upload(ctx, opts.WheelsDir, opts.IndexDir, publish.Options{
		Bucket:    cfg.Bucket,
		Namespace: cfg.Namespace,
		Commit:    opts.Commit,
		Branch:    opts.Branch,
		Version:   opts.Version,
		Release:   opts.Release,
	})
}

// ReleaseOptions configures the full publication pipeline.
type ReleaseOptions struct {
	InstallDir   string
	Requirements string
	CustomDir    string
	WheelsDir    string
	IndexDir     string
	Label        string
	ProjectWheel string
	Commit       string
	Branch       string
	Version      string
	Release      bool
}

// Release runs pin, dedupe, index and upload as one traced pipeline. Cache
// interaction and the container build itself happen outside this process.
func (a *App) Release(ctx context.Context, configPath string, opts ReleaseOptions) error {
	cfg, err := a.config(configPath)
	if err != nil {
		return err
	}

	ctx, span := a.tracer.Start(ctx, "pin requirements")
	report, err := pin.New(a.logger).Pin(opts.InstallDir, opts.Requirements)
	if err == nil {
		for _, c := range report.Pinned {
			fmt.Fprintf(span, "pinned %s==%s\n", c.Name, c.Version)
		}
	}
	span.End(err)
	if err != nil {
		return err
	}

	ctx, span = a.tracer.Start(ctx, "filter duplicate wheels")
	filter := dedupe.New(a.logger)
	dedupeReport, err := filter.Filter(opts.CustomDir, opts.WheelsDir, cfg.Packages)
	if err == nil {
		for _, deleted := range dedupeReport.Deleted {
			fmt.Fprintf(span, "deleted %s\n", deleted)
		}
		if opts.ProjectWheel != "" {
			mismatches, verr := filter.ValidateProject(opts.ProjectWheel, dedupeReport.Kept)
			if verr != nil {
				a.logger.Warn("project metadata validation failed: " + verr.Error())
			}
			for _, m := range mismatches {
				fmt.Fprintf(span, "pin mismatch for %s: declared %s, retained %s\n", m.Name, m.Declared, m.Retained)
			}
		}
	}
	span.End(err)
	if err != nil {
		return err
	}

	ctx, span = a.tracer.Start(ctx, "generate package index")
	meta := index.Meta{Variant: cfg.Variant, BaseURL: cfg.BaseURL, Label: opts.Label}
	err = index.New(a.logger).Generate(opts.WheelsDir, opts.IndexDir, meta)
	span.End(err)
	if err != nil {
		return err
	}

	ctx, span = a.tracer.Start(ctx, "upload wheels and index")
	err = publish.New(a.store, a.logger).Upload(ctx, opts.WheelsDir, opts.IndexDir, publish.Options{
		Bucket:    cfg.Bucket,
		Namespace: cfg.Namespace,
		Commit:    opts.Commit,
		Branch:    opts.Branch,
		Version:   opts.Version,
		Release:   opts.Release,
	})
	span.End(err)
	return err
}
