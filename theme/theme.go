// Package theme holds the default docs theme and lets a site override it
// file by file.
package theme

import (
	"embed"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gobuffalo/plush"
	"github.com/pkg/errors"
)

const (
	LayoutFile   = "layout.plush.html"
	NotFoundFile = "404.plush.html"
	ScriptFile   = "theme.js"
	StyleFile    = "theme.css"
)

//go:embed default
var defaultFS embed.FS

type Theme struct {
	files map[string]string
}

// Load returns the default theme with every file found in dir replacing
// its default counterpart. A missing dir is not an error.
func Load(dir string) (*Theme, error) {
	t := &Theme{files: make(map[string]string)}

	entries, err := fs.ReadDir(defaultFS, "default")
	if err != nil {
		return nil, errors.WithStack(err)
	}
	for _, e := range entries {
		data, err := defaultFS.ReadFile("default/" + e.Name())
		if err != nil {
			return nil, errors.WithStack(err)
		}
		t.files[e.Name()] = string(data)
	}

	if dir == "" {
		return t, nil
	}
	overrides, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return t, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "reading theme directory %s", dir)
	}
	for _, e := range overrides {
		if e.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, errors.WithStack(err)
		}
		t.files[e.Name()] = string(data)
	}

	return t, nil
}

// Source returns the contents of a theme file.
func (t *Theme) Source(name string) (string, bool) {
	src, ok := t.files[name]
	return src, ok
}

// Render executes a plush template of the theme.
func (t *Theme) Render(name string, ctx *plush.Context) (string, error) {
	src, ok := t.files[name]
	if !ok {
		return "", errors.Errorf("theme has no template %s", name)
	}

	tmpl, err := plush.Parse(src)
	if err != nil {
		return "", errors.Wrapf(err, "parsing %s", name)
	}
	out, err := tmpl.Exec(ctx)
	if err != nil {
		return "", errors.Wrapf(err, "executing %s", name)
	}
	return out, nil
}
