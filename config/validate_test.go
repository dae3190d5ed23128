package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fieldsOf(t *testing.T, err error) []string {
	t.Helper()
	var verr ValidationError
	require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
	var fields []string
	for _, e := range verr.Errors() {
		fields = append(fields, e.Field)
	}
	return fields
}

func TestValidateReportsFields(t *testing.T) {
	tests := []struct {
		name  string
		yaml  string
		field string
	}{
		{
			name:  "missing title",
			yaml:  "description: x\n",
			field: "title",
		},
		{
			name:  "empty nav link",
			yaml:  "title: t\ntheme_config:\n  nav:\n    - {text: Home, link: ''}\n",
			field: "theme_config.nav[0].link",
		},
		{
			name:  "relative sidebar link",
			yaml:  "title: t\ntheme_config:\n  sidebar:\n    - {text: Install, link: install}\n",
			field: "theme_config.sidebar[0].link",
		},
		{
			name:  "link with whitespace",
			yaml:  "title: t\ntheme_config:\n  nav:\n    - {text: Home, link: /a b}\n",
			field: "theme_config.nav[0].link",
		},
		{
			name:  "empty nav",
			yaml:  "title: t\ntheme_config:\n  nav: []\n",
			field: "theme_config.nav",
		},
		{
			name:  "empty sidebar group",
			yaml:  "title: t\ntheme_config:\n  sidebar:\n    - text: Group\n      items: []\n",
			field: "theme_config.sidebar[0].items",
		},
		{
			name:  "nested sidebar link",
			yaml:  "title: t\ntheme_config:\n  sidebar:\n    - text: Group\n      items:\n        - {text: A, link: ''}\n",
			field: "theme_config.sidebar[0].items[0].link",
		},
		{
			name:  "nav text",
			yaml:  "title: t\ntheme_config:\n  nav:\n    - {link: /}\n",
			field: "theme_config.nav[0].text",
		},
		{
			name:  "social link must be external",
			yaml:  "title: t\ntheme_config:\n  social_links:\n    - {icon: github, link: /github}\n",
			field: "theme_config.social_links[0].link",
		},
		{
			name:  "social link with whitespace",
			yaml:  "title: t\ntheme_config:\n  social_links:\n    - {icon: github, link: 'https://github.com/a b'}\n",
			field: "theme_config.social_links[0].link",
		},
		{
			name:  "social icon",
			yaml:  "title: t\ntheme_config:\n  social_links:\n    - {link: 'https://github.com'}\n",
			field: "theme_config.social_links[0].icon",
		},
		{
			name:  "edit link pattern",
			yaml:  "title: t\ntheme_config:\n  edit_link: {pattern: 'https://github.com/x/edit'}\n",
			field: "theme_config.edit_link.pattern",
		},
		{
			name:  "algolia index",
			yaml:  "title: t\ntheme_config:\n  algolia: {app_id: a, api_key: b}\n",
			field: "theme_config.algolia.index_name",
		},
		{
			name:  "locale label",
			yaml:  "title: t\nlocales:\n  root: {lang: en}\n",
			field: "locales.root.label",
		},
		{
			name:  "locale lang",
			yaml:  "title: t\nlocales:\n  root: {label: English}\n",
			field: "locales.root.lang",
		},
		{
			name:  "locale lang tag",
			yaml:  "title: t\nlocales:\n  root: {label: English, lang: 'not a tag!'}\n",
			field: "locales.root.lang",
		},
		{
			name:  "missing root locale",
			yaml:  "title: t\nlocales:\n  en: {label: English, lang: en}\n",
			field: "locales",
		},
		{
			name:  "locale key",
			yaml:  "title: t\nlocales:\n  root: {label: A, lang: en}\n  en/us: {label: B, lang: en-US}\n",
			field: "locales.en/us",
		},
		{
			name:  "locale theme",
			yaml:  "title: t\nlocales:\n  root:\n    label: A\n    lang: en\n    theme_config:\n      sidebar: []\n",
			field: "locales.root.theme_config.sidebar",
		},
		{
			name:  "reserved asset name",
			yaml:  "title: t\njavascript:\n  theme: {source: theme.js}\n",
			field: "javascript.theme",
		},
		{
			name:  "origin",
			yaml:  "title: t\norigin: example.com\n",
			field: "origin",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse([]byte(tt.yaml))
			require.NoError(t, err)
			assert.Contains(t, fieldsOf(t, cfg.Validate()), tt.field)
		})
	}
}

func TestValidateAcceptsWellFormedLinks(t *testing.T) {
	cfg, err := Parse([]byte(`
title: t
theme_config:
  nav:
    - {text: Home, link: /}
    - {text: Repo, link: 'https://github.com/HFrost0/bilix'}
    - text: More
      items:
        - {text: Mail, link: 'mailto:someone@example.com'}
        - {text: Changelog, link: /changelog.md}
  sidebar:
    - text: Group without link
      items:
        - {text: A, link: '/a#top'}
`))
	require.NoError(t, err)
	assert.NoError(t, cfg.Validate())
}

func TestValidateBaseShape(t *testing.T) {
	for _, base := range []string{"docs", "/docs", "docs/", ""} {
		cfg := &SiteConfig{Title: "t", Base: base}
		assert.Contains(t, fieldsOf(t, cfg.Validate()), "base", base)
	}
	for _, base := range []string{"/", "/bilix/"} {
		cfg := &SiteConfig{Title: "t", Base: base}
		assert.NoError(t, cfg.Validate(), base)
	}
}

func TestValidateAggregates(t *testing.T) {
	cfg, err := Parse([]byte(`
theme_config:
  nav: []
locales:
  root: {}
`))
	require.NoError(t, err)

	err = cfg.Validate()
	fields := fieldsOf(t, err)
	assert.ElementsMatch(t, []string{
		"title",
		"theme_config.nav",
		"locales.root.label",
		"locales.root.lang",
	}, fields)
	assert.Contains(t, err.Error(), "locales.root.label: must not be empty")
}
