package handlers

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/julienschmidt/httprouter"
)

// PreviewHandler serves a built site from dir the way a static host would:
// clean URLs map onto index.html files and unknown paths get 404.html.
func PreviewHandler(dir, base string) http.Handler {
	router := httprouter.New()
	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		serveNotFound(w, dir)
	})

	if base != "/" {
		router.GET("/", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
			http.Redirect(w, r, base, http.StatusFound)
		})
	}

	router.GET(base+"*filepath", func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		name, ok := resolveBuilt(dir, ps.ByName("filepath"))
		if !ok {
			serveNotFound(w, dir)
			return
		}
		http.ServeFile(w, r, name)
	})

	return router
}

// resolveBuilt maps a request path onto a file below dir.
func resolveBuilt(dir, p string) (string, bool) {
	clean := path.Clean("/" + p)
	candidates := []string{clean, path.Join(clean, "index.html"), clean + ".html"}
	for _, c := range candidates {
		name := filepath.Join(dir, filepath.FromSlash(strings.TrimPrefix(c, "/")))
		info, err := os.Stat(name)
		if err == nil && !info.IsDir() {
			return name, true
		}
	}
	return "", false
}

func serveNotFound(w http.ResponseWriter, dir string) {
	data, err := os.ReadFile(filepath.Join(dir, "404.html"))
	if err != nil {
		http.Error(w, "404 page not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	w.Write(data)
}
