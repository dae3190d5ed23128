package utils

import (
	"encoding/xml"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSitemapContent(t *testing.T) {
	out, err := GenerateSitemapContent("https://hfrost0.github.io", []SitemapEntry{
		{Link: "/bilix/", LastMod: time.Date(2023, 3, 1, 23, 0, 0, 0, time.FixedZone("CST", 8*3600))},
		{Link: "/bilix/en/install"},
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), xml.Header))

	var sitemap Sitemap
	require.NoError(t, xml.Unmarshal(out, &sitemap))
	require.Len(t, sitemap.Urls, 2)
	assert.Equal(t, "https://hfrost0.github.io/bilix/", sitemap.Urls[0].Loc)
	assert.Equal(t, "2023-03-01", sitemap.Urls[0].LastMod)
	assert.Equal(t, "https://hfrost0.github.io/bilix/en/install", sitemap.Urls[1].Loc)
	assert.Empty(t, sitemap.Urls[1].LastMod)
}

func TestWriteFileCreatesParents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "index.html")
	require.NoError(t, WriteFile(path, []byte("first")))
	require.NoError(t, WriteFile(path, []byte("second")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}

func TestCopyDir(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(src, "img"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "favicon.ico"), []byte("ico"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "img", "logo.png"), []byte("png"), 0o644))

	require.NoError(t, CopyDir(src, dst))

	data, err := os.ReadFile(filepath.Join(dst, "img", "logo.png"))
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))

	assert.NoError(t, CopyDir(filepath.Join(src, "missing"), dst))
}
