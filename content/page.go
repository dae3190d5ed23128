// Package content discovers and renders the Markdown pages of a docs site.
package content

import (
	"bytes"
	"html/template"
	"io/fs"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v2"
)

const (
	LayoutDoc  = "doc"
	LayoutHome = "home"
	LayoutPage = "page"
)

// Page is a rendered Markdown document.
type Page struct {
	RelPath      string // slash separated path below the site root
	Route        string
	Title        string
	Description  string
	Frontmatter  Frontmatter
	HTML         template.HTML
	Headings     []Heading
	Text         string
	LastModified time.Time
}

type Heading struct {
	Level int
	ID    string
	Text  string
}

type Frontmatter struct {
	Title       string    `yaml:"title"`
	Description string    `yaml:"description"`
	Layout      string    `yaml:"layout"`
	Hero        *Hero     `yaml:"hero"`
	Features    []Feature `yaml:"features"`
	LastUpdated *bool     `yaml:"lastUpdated"`
	EditLink    *bool     `yaml:"editLink"`
	Outline     *bool     `yaml:"outline"`
	Sidebar     *bool     `yaml:"sidebar"`
}

type Hero struct {
	Name    string   `yaml:"name"`
	Text    string   `yaml:"text"`
	Tagline string   `yaml:"tagline"`
	Actions []Action `yaml:"actions"`
}

type Action struct {
	Theme string `yaml:"theme"`
	Text  string `yaml:"text"`
	Link  string `yaml:"link"`
}

type Feature struct {
	Title   string `yaml:"title"`
	Details string `yaml:"details"`
	Link    string `yaml:"link"`
}

// Layout returns the page layout, defaulting to doc.
func (p *Page) Layout() string {
	switch p.Frontmatter.Layout {
	case LayoutHome, LayoutPage:
		return p.Frontmatter.Layout
	}
	return LayoutDoc
}

// Options controls page discovery.
type Options struct {
	// Link rewrites internal links, usually SiteConfig.Link.
	Link func(string) string
	// LastUpdated enables last modified lookups.
	LastUpdated bool
	// Exclude lists extra directories, relative to the root, to skip.
	Exclude []string
}

// Discover walks root for Markdown files and renders each one.
func Discover(root string, opts Options) ([]*Page, error) {
	excluded := map[string]bool{"public": true, "node_modules": true}
	for _, e := range opts.Exclude {
		excluded[filepath.ToSlash(filepath.Clean(e))] = true
	}

	var pages []*Page
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return errors.WithStack(err)
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if rel != "." && (strings.HasPrefix(d.Name(), ".") || excluded[rel]) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(path.Ext(rel), ".md") {
			return nil
		}

		data, err := os.ReadFile(p)
		if err != nil {
			return errors.WithStack(err)
		}
		page, err := Parse(rel, data, opts.Link)
		if err != nil {
			return err
		}
		if opts.LastUpdated {
			page.LastModified = LastModified(root, rel)
		}
		pages = append(pages, page)
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "discovering pages in %s", root)
	}

	return pages, nil
}

// Parse renders a single Markdown document. relPath is slash separated and
// relative to the site root.
func Parse(relPath string, data []byte, link func(string) string) (*Page, error) {
	if link == nil {
		link = func(s string) string { return s }
	}

	fm, body, err := splitFrontmatter(data)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing front matter of %s", relPath)
	}

	page := &Page{
		RelPath:     relPath,
		Route:       RouteFor(relPath),
		Frontmatter: fm,
		Description: fm.Description,
	}
	renderMarkdown(page, body, link)

	switch {
	case fm.Title != "":
		page.Title = fm.Title
	case fm.Hero != nil && fm.Hero.Name != "" && page.Title == "":
		page.Title = fm.Hero.Name
	case page.Title == "":
		page.Title = titleFromFile(relPath)
	}

	return page, nil
}

// RouteFor maps a Markdown file onto its route: index.md is served at its
// directory, every other file at its name without extension.
func RouteFor(relPath string) string {
	route := strings.TrimSuffix(relPath, path.Ext(relPath))
	if route == "index" {
		return "/"
	}
	if strings.HasSuffix(route, "/index") {
		return "/" + strings.TrimSuffix(route, "index")
	}
	return "/" + route
}

func splitFrontmatter(data []byte) (Frontmatter, []byte, error) {
	var fm Frontmatter

	data = bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))
	if !bytes.HasPrefix(data, []byte("---\n")) {
		return fm, data, nil
	}

	rest := data[len("---\n"):]
	var raw, body []byte
	switch {
	case bytes.HasPrefix(rest, []byte("---\n")):
		body = rest[len("---\n"):]
	default:
		end := bytes.Index(rest, []byte("\n---\n"))
		if end < 0 {
			if !bytes.HasSuffix(rest, []byte("\n---")) {
				return fm, nil, errors.New("front matter is not terminated")
			}
			end = len(rest) - len("\n---")
			raw, body = rest[:end], nil
		} else {
			raw, body = rest[:end], rest[end+len("\n---\n"):]
		}
	}

	if err := yaml.Unmarshal(raw, &fm); err != nil {
		return fm, nil, errors.WithStack(err)
	}
	return fm, body, nil
}

func titleFromFile(relPath string) string {
	name := strings.TrimSuffix(path.Base(relPath), path.Ext(relPath))
	if name == "index" {
		return ""
	}
	name = strings.NewReplacer("-", " ", "_", " ").Replace(name)
	return cases.Title(language.English).String(name)
}

// LastModified returns the last commit time of a file, falling back to its
// modification time outside a git checkout.
func LastModified(root, relPath string) time.Time {
	cmd := exec.Command("git", "log", "-1", "--format=%ct", "--", relPath)
	cmd.Dir = root
	if out, err := cmd.Output(); err == nil {
		if sec, err := strconv.ParseInt(strings.TrimSpace(string(out)), 10, 64); err == nil {
			return time.Unix(sec, 0).UTC()
		}
	}

	info, err := os.Stat(filepath.Join(root, filepath.FromSlash(relPath)))
	if err != nil {
		return time.Time{}
	}
	return info.ModTime().UTC()
}
