package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ZacxDev/go-docs-site/handlers"
	"github.com/ZacxDev/go-docs-site/logger"
	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const rebuildDebounce = 500 * time.Millisecond

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the site and rebuild it when files change",
	RunE: func(cmd *cobra.Command, args []string) error {
		p := resolvePaths(cmd)
		port, _ := cmd.Flags().GetString("port")
		log := logger.WithComponent("serve")

		load := func() (http.Handler, error) {
			site, err := handlers.NewSite(p.siteOptions())
			if err != nil {
				return nil, err
			}
			return site.SetupRouter(), nil
		}

		router, err := load()
		if err != nil {
			return err
		}
		handler := handlers.NewReloadable(router)

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return errors.Wrap(err, "creating file watcher")
		}
		defer watcher.Close()

		ignored := []string{filepath.Clean(p.out)}
		if err := watchTree(watcher, p.root, ignored, log); err != nil {
			return err
		}
		if dir := filepath.Dir(p.config); !isDir(dir) {
			log.Warn().Str("dir", dir).Msg("config directory missing, config changes are not watched")
		} else if err := watcher.Add(dir); err != nil {
			log.Warn().Err(err).Str("dir", dir).Msg("cannot watch config directory")
		}

		go watchLoop(cmd.Context(), watcher, ignored, rebuildDebounce, log, func() {
			router, err := load()
			if err != nil {
				log.Error().Err(err).Msg("rebuild failed, keeping previous version")
				return
			}
			handler.Swap(router)
			log.Info().Msg("site reloaded")
		})

		srv := &http.Server{
			Addr:              ":" + port,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}
		return listen(cmd.Context(), srv, log)
	},
}

// watchLoop calls rebuild once changes have been quiet for debounce.
// Rebuilds run one at a time in the order they were scheduled.
func watchLoop(ctx context.Context, watcher *fsnotify.Watcher, ignored []string, debounce time.Duration, log zerolog.Logger, rebuild func()) {
	pending := make(chan struct{}, 1)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-pending:
				rebuild()
			}
		}
	}()
	schedule := func() {
		select {
		case pending <- struct{}{}:
		default:
		}
	}

	var timer *time.Timer
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if isIgnored(event.Name, ignored) || !event.Has(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) {
				continue
			}
			log.Debug().Str("file", event.Name).Str("op", event.Op.String()).Msg("change detected")
			if event.Has(fsnotify.Create) && isDir(event.Name) {
				if err := watchTree(watcher, event.Name, ignored, log); err != nil {
					log.Warn().Err(err).Str("dir", event.Name).Msg("cannot watch new directory")
				}
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, schedule)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Warn().Err(err).Msg("watcher error")
		}
	}
}

// watchTree adds root and every directory below it, apart from ignored ones.
func watchTree(watcher *fsnotify.Watcher, root string, ignored []string, log zerolog.Logger) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return errors.WithStack(err)
		}
		if !d.IsDir() {
			return nil
		}
		if isIgnored(path, ignored) || d.Name() == "node_modules" || d.Name() == ".git" {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return errors.Wrapf(err, "watching %s", path)
		}
		log.Debug().Str("dir", path).Msg("watching")
		return nil
	})
}

func isIgnored(path string, ignored []string) bool {
	path = filepath.Clean(path)
	for _, dir := range ignored {
		if path == dir || strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// listen runs srv until ctx is cancelled, then shuts it down.
func listen(ctx context.Context, srv *http.Server, log zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", fmt.Sprintf("http://localhost%s", srv.Addr)).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "http server")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	log.Info().Msg("shutting down")
	return errors.Wrap(srv.Shutdown(shutdownCtx), "http server shutdown")
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "9010", "Port to run the server on")
}
