package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadBilix(t *testing.T) *SiteConfig {
	t.Helper()
	cfg, err := Load(filepath.Join("testdata", "bilix.yaml"))
	require.NoError(t, err)
	return cfg
}

func TestLoadBilix(t *testing.T) {
	cfg := loadBilix(t)

	assert.Equal(t, "bilix", cfg.Title)
	assert.Equal(t, "/bilix/", cfg.Base)
	assert.True(t, cfg.LastUpdated)
	require.NotNil(t, cfg.ThemeConfig.Footer)
	assert.Equal(t, "Released under the Apache 2.0 License.", cfg.ThemeConfig.Footer.Message)
	require.NotNil(t, cfg.ThemeConfig.Algolia)
	assert.Equal(t, "bilix", cfg.ThemeConfig.Algolia.IndexName)

	require.Len(t, cfg.Locales, 2)
	assert.Equal(t, "root", cfg.Locales[0].Key)
	assert.Equal(t, "en", cfg.Locales[1].Key)
	assert.Equal(t, "English", cfg.Locales[1].Label)

	sidebar := cfg.Locales[1].ThemeConfig.Sidebar
	require.Len(t, sidebar, 5)
	assert.Equal(t, "Python API", sidebar[3].Text)
	require.Len(t, sidebar[3].Items, 3)
	assert.Equal(t, "/en/async", sidebar[3].Items[0].Link)

	assert.NoError(t, cfg.Validate())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLocalesKeepDeclarationOrder(t *testing.T) {
	cfg, err := Parse([]byte(`
title: t
locales:
  root: {label: English, lang: en}
  zh: {label: 中文, lang: zh}
  fr: {label: Français, lang: fr}
  de: {label: Deutsch, lang: de}
`))
	require.NoError(t, err)

	var keys []string
	for _, l := range cfg.Locales {
		keys = append(keys, l.Key)
	}
	assert.Equal(t, []string{"root", "zh", "fr", "de"}, keys)
}

func TestNormalizeBase(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", "/"},
		{"/", "/"},
		{"bilix", "/bilix/"},
		{"/bilix", "/bilix/"},
		{"/bilix/", "/bilix/"},
		{" /a/b ", "/a/b/"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeBase(tt.in), tt.in)
	}
}

func TestLink(t *testing.T) {
	cfg := &SiteConfig{Base: "/bilix/"}
	tests := []struct {
		name, in, want string
	}{
		{"root", "/", "/bilix/"},
		{"page", "/install", "/bilix/install"},
		{"md extension", "/en/install.md", "/bilix/en/install"},
		{"html extension", "/more.html", "/bilix/more"},
		{"index file", "/en/index.md", "/bilix/en/"},
		{"fragment", "/install.md#pip", "/bilix/install#pip"},
		{"external", "https://github.com/HFrost0/bilix", "https://github.com/HFrost0/bilix"},
		{"relative", "install", "install"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cfg.Link(tt.in))
		})
	}

	rootBase := &SiteConfig{Base: "/"}
	assert.Equal(t, "/install", rootBase.Link("/install"))
	assert.Equal(t, "/", rootBase.Link("/"))
}

func TestEditLinkURL(t *testing.T) {
	e := &EditLink{Pattern: "https://github.com/HFrost0/bilix/edit/master/docs/:path"}
	assert.Equal(t, "https://github.com/HFrost0/bilix/edit/master/docs/en/install.md", e.URL("/en/install.md"))
}

func TestWriteAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("title: docs\nbase: docs\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/docs/", cfg.Base)
	assert.Empty(t, cfg.Locales)
	assert.NoError(t, cfg.Validate())
}
