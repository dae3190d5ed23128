// Package builder renders a docs site into a directory of static files.
package builder

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"

	"github.com/ZacxDev/go-docs-site/handlers"
	"github.com/ZacxDev/go-docs-site/utils"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// notFoundProbe is requested to capture the rendered 404 page.
const notFoundProbe = "__docsite_not_found__"

type Options struct {
	OutDir      string
	PublicDir   string
	Concurrency int
	Logger      zerolog.Logger
}

type Result struct {
	Pages int
	Files int
}

// Build writes every route of site below opts.OutDir. The output directory
// is emptied first.
func Build(ctx context.Context, site *handlers.Site, opts Options) (*Result, error) {
	outDir := filepath.Clean(opts.OutDir)
	if opts.OutDir == "" || outDir == "/" || outDir == "." {
		return nil, errors.Errorf("refusing to build into %q", opts.OutDir)
	}
	if err := checkOutDir(outDir, site.Sources(), []string{site.PublicDir(), opts.PublicDir}); err != nil {
		return nil, err
	}
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}
	log := opts.Logger

	router := site.SetupRouter()
	server := httptest.NewServer(router)
	defer server.Close()

	log.Info().Str("dir", outDir).Msg("cleaning output directory")
	if err := os.RemoveAll(outDir); err != nil {
		return nil, errors.Wrapf(err, "removing %s", outDir)
	}
	if err := os.MkdirAll(outDir, os.ModePerm); err != nil {
		return nil, errors.Wrapf(err, "creating %s", outDir)
	}

	if opts.PublicDir != "" {
		if err := utils.CopyDir(opts.PublicDir, outDir); err != nil {
			return nil, errors.Wrap(err, "copying public files")
		}
	}

	base := site.Config.Base
	var pages, files int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, route := range site.Routes() {
		route := route
		g.Go(func() error {
			body, status, err := fetch(gctx, server, route.Path)
			if err != nil {
				return err
			}
			if status != http.StatusOK {
				return errors.Errorf("GET %s: status %d", route.Path, status)
			}

			rel := filepath.FromSlash(strings.TrimPrefix(route.Path, base))
			dest := filepath.Join(outDir, rel)
			if route.Page {
				dest = filepath.Join(dest, "index.html")
				atomic.AddInt64(&pages, 1)
			} else {
				atomic.AddInt64(&files, 1)
			}
			if err := utils.WriteFile(dest, body); err != nil {
				return err
			}
			log.Debug().Str("route", route.Path).Str("file", dest).Msg("generated")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	body, status, err := fetch(ctx, server, base+notFoundProbe)
	if err != nil {
		return nil, err
	}
	if status != http.StatusNotFound {
		return nil, errors.Errorf("404 page answered with status %d", status)
	}
	if err := utils.WriteFile(filepath.Join(outDir, "404.html"), body); err != nil {
		return nil, err
	}

	res := &Result{Pages: int(pages), Files: int(files)}
	log.Info().Int("pages", res.Pages).Int("files", res.Files).Msg("static site generated")
	return res, nil
}

// checkOutDir refuses an output directory that would be emptied on top of
// the site's own sources, or that would be copied into itself.
func checkOutDir(outDir string, sources, publicDirs []string) error {
	out, err := filepath.Abs(outDir)
	if err != nil {
		return errors.WithStack(err)
	}
	for _, src := range append(append([]string(nil), sources...), publicDirs...) {
		if src == "" {
			continue
		}
		abs, err := filepath.Abs(src)
		if err != nil {
			return errors.WithStack(err)
		}
		if within(out, abs) {
			return errors.Errorf("refusing to build into %s: it contains %s", outDir, src)
		}
	}
	for _, dir := range publicDirs {
		if dir == "" {
			continue
		}
		abs, err := filepath.Abs(dir)
		if err != nil {
			return errors.WithStack(err)
		}
		if within(abs, out) {
			return errors.Errorf("refusing to build into %s: it is inside the public dir %s", outDir, dir)
		}
	}
	return nil
}

// within reports whether path is dir or below it.
func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func fetch(ctx context.Context, server *httptest.Server, path string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+path, nil)
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}
	resp, err := server.Client().Do(req)
	if err != nil {
		return nil, 0, errors.Wrapf(err, "GET %s", path)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, errors.Wrapf(err, "reading %s", path)
	}
	return body, resp.StatusCode, nil
}
