// Package index emits a PEP 503 simple-repository tree for a directory of
// wheel archives: root index, one variant directory, one directory per
// normalized package name.
package index

import (
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"go.trai.ch/zerr"

	"github.com/rocmforge/wheelhouse/internal/core/domain"
	"github.com/rocmforge/wheelhouse/internal/core/ports"
)

// Meta carries the variant directory name, the optional absolute base URL
// for archive hrefs, and a free-form label rendered as a comment on the
// variant page. The label never affects the tree's structure.
type Meta struct {
	Variant string
	BaseURL string
	Label   string
}

// Generator writes static index trees.
type Generator struct {
	logger ports.Logger
}

// New creates a Generator.
func New(logger ports.Logger) *Generator {
	return &Generator{logger: logger}
}

// The simple repository protocol requires the repository-version meta tag
// and plain anchor lists; installers ignore everything else. Output is kept
// byte-stable: no timestamps, fixed ordering.
var pages = template.Must(template.New("index").Parse(`{{define "root" -}}
<!DOCTYPE html>
<html>
<head>
<meta name="pypi:repository-version" content="1.0">
<title>wheelhouse index</title>
</head>
<body>
<a href="{{.Variant}}/">{{.Variant}}/</a><br>
</body>
</html>
{{end}}

{{define "variant" -}}
<!DOCTYPE html>
<html>
<head>
<meta name="pypi:repository-version" content="1.0">
<title>wheelhouse index: {{.Variant}}</title>
</head>
<body>
{{if .Label}}<!-- {{.Label}} -->
{{end}}{{range .Packages}}<a href="{{.}}/">{{.}}</a><br>
{{end}}</body>
</html>
{{end}}

{{define "package" -}}
<!DOCTYPE html>
<html>
<head>
<meta name="pypi:repository-version" content="1.0">
<title>Links for {{.Name}}</title>
</head>
<body>
<h1>Links for {{.Name}}</h1>
{{range .Files}}<a href="{{.Href}}">{{.Filename}}</a><br>
{{end}}</body>
</html>
{{end}}`))

type fileLink struct {
	Href     string
	Filename string
}

// Generate scans wheelsDir and writes the three-level tree under outputDir.
// Repeated runs over an unchanged wheelsDir produce byte-identical output.
func (g *Generator) Generate(wheelsDir, outputDir string, meta Meta) error {
	packages, err := g.scan(wheelsDir)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(packages))
	for name := range packages {
		names = append(names, name)
	}
	sort.Strings(names)

	rootData := struct{ Variant string }{Variant: meta.Variant}
	if err := g.writePage(filepath.Join(outputDir, "index.html"), "root", rootData); err != nil {
		return err
	}

	variantData := struct {
		Variant  string
		Label    string
		Packages []string
	}{Variant: meta.Variant, Label: meta.Label, Packages: names}
	variantDir := filepath.Join(outputDir, meta.Variant)
	if err := g.writePage(filepath.Join(variantDir, "index.html"), "variant", variantData); err != nil {
		return err
	}

	for _, name := range names {
		files := packages[name]
		sort.Strings(files)

		links := make([]fileLink, 0, len(files))
		for _, f := range files {
			links = append(links, fileLink{Href: href(meta.BaseURL, f), Filename: f})
		}
		pkgData := struct {
			Name  string
			Files []fileLink
		}{Name: name, Files: links}

		page := filepath.Join(variantDir, name, "index.html")
		if err := g.writePage(page, "package", pkgData); err != nil {
			return err
		}
	}

	return nil
}

// scan groups archive filenames by normalized package name, preserving the
// original case-preserved filenames for link text.
func (g *Generator) scan(wheelsDir string) (map[string][]string, error) {
	entries, err := os.ReadDir(wheelsDir)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrWheelsDirRead.Error()), "path", wheelsDir)
	}

	packages := make(map[string][]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		archive, err := domain.ParseArchiveFilename(entry.Name())
		if err != nil {
			g.logger.Warn("skipping unparseable archive " + entry.Name())
			continue
		}
		name := archive.NormalizedName()
		packages[name] = append(packages[name], archive.Filename)
	}
	return packages, nil
}

func (g *Generator) writePage(path, name string, data any) error {
	if err := os.MkdirAll(filepath.Dir(path), domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrIndexWrite.Error()), "path", path)
	}
	var b strings.Builder
	if err := pages.ExecuteTemplate(&b, name, data); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrIndexWrite.Error()), "path", path)
	}
	if err := os.WriteFile(path, []byte(b.String()), domain.FilePerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrIndexWrite.Error()), "path", path)
	}
	return nil
}

// href builds the archive link: relative to the package page by default,
// absolute when a base URL is configured. Percent-encoding covers the local
// version separator ("+" must become %2B for installers to resolve).
func href(baseURL, filename string) string {
	escaped := strings.ReplaceAll(url.PathEscape(filename), "+", "%2B")
	if baseURL != "" {
		return strings.TrimSuffix(baseURL, "/") + "/" + escaped
	}
	return "../../" + escaped
}
