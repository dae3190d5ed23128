package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeBuilt(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"index.html":         "home",
		"install/index.html": "install",
		"en/index.html":      "english home",
		"404.html":           "custom not found",
		"assets/theme.css":   "body{}",
	}
	for name, body := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	}
	return dir
}

func TestPreviewHandler(t *testing.T) {
	h := PreviewHandler(writeBuilt(t), "/bilix/")

	tests := []struct {
		path   string
		status int
		body   string
	}{
		{"/bilix/", http.StatusOK, "home"},
		{"/bilix/install", http.StatusOK, "install"},
		{"/bilix/install/", http.StatusOK, "install"},
		{"/bilix/en/", http.StatusOK, "english home"},
		{"/bilix/assets/theme.css", http.StatusOK, "body{}"},
		{"/bilix/missing", http.StatusNotFound, "custom not found"},
		{"/elsewhere", http.StatusNotFound, "custom not found"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			res, body := get(t, h, tt.path)
			assert.Equal(t, tt.status, res.StatusCode)
			assert.Equal(t, tt.body, body)
		})
	}

	res, _ := get(t, h, "/")
	assert.Equal(t, http.StatusFound, res.StatusCode)
	assert.Equal(t, "/bilix/", res.Header.Get("Location"))
}

func TestPreviewWithoutNotFoundPage(t *testing.T) {
	h := PreviewHandler(t.TempDir(), "/")
	res, body := get(t, h, "/nothing")
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Contains(t, body, "404 page not found")
}
