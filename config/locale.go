package config

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Locale is one language variant of the site.
type Locale struct {
	Key         string       `yaml:"-"`
	Label       string       `yaml:"label"`
	Lang        string       `yaml:"lang"`
	Title       string       `yaml:"title"`
	Description string       `yaml:"description"`
	ThemeConfig *ThemeConfig `yaml:"theme_config"`
}

// implicitRoot stands in for a site that declares no locales.
var implicitRoot = Locale{Key: RootLocale, Lang: DefaultLang}

// Locales keeps locales in the order they were declared.
type Locales []Locale

func (l *Locales) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw yaml.MapSlice
	if err := unmarshal(&raw); err != nil {
		return err
	}

	locales := make(Locales, 0, len(raw))
	for _, item := range raw {
		key := fmt.Sprint(item.Key)

		// Re-encode the value so nested fields go through the regular decoder.
		data, err := yaml.Marshal(item.Value)
		if err != nil {
			return errors.Wrapf(err, "locale %q", key)
		}
		var locale Locale
		if err := yaml.Unmarshal(data, &locale); err != nil {
			return errors.Wrapf(err, "locale %q", key)
		}
		locale.Key = key
		locales = append(locales, locale)
	}

	*l = locales
	return nil
}

// Prefix is the route prefix the locale is served under.
func (l Locale) Prefix() string {
	if l.Key == RootLocale {
		return "/"
	}
	return "/" + l.Key + "/"
}

// Resolved is a locale with site level settings folded in.
type Resolved struct {
	Key         string
	Label       string
	Lang        string
	Prefix      string
	Title       string
	Description string
	Theme       ThemeConfig
}

// Locale resolves the locale registered under key.
func (c *SiteConfig) Locale(key string) (Resolved, bool) {
	for _, l := range c.Locales {
		if l.Key == key {
			return c.resolve(l), true
		}
	}
	if key == RootLocale && len(c.Locales) == 0 {
		return c.resolve(implicitRoot), true
	}
	return Resolved{}, false
}

// LocaleForPath resolves the locale owning a route. The locale with the
// longest matching prefix wins; routes outside every prefix belong to root.
func (c *SiteConfig) LocaleForPath(route string) Resolved {
	if !strings.HasSuffix(route, "/") {
		route += "/"
	}

	var best *Locale
	for i := range c.Locales {
		l := &c.Locales[i]
		if !strings.HasPrefix(route, l.Prefix()) {
			continue
		}
		if best == nil || len(l.Prefix()) > len(best.Prefix()) {
			best = l
		}
	}

	if best == nil {
		return c.resolve(implicitRoot)
	}
	return c.resolve(*best)
}

func (c *SiteConfig) resolve(l Locale) Resolved {
	r := Resolved{
		Key:         l.Key,
		Label:       l.Label,
		Lang:        l.Lang,
		Prefix:      l.Prefix(),
		Title:       c.Title,
		Description: c.Description,
		Theme:       c.ThemeConfig,
	}
	if l.Title != "" {
		r.Title = l.Title
	}
	if l.Description != "" {
		r.Description = l.Description
	}
	if l.ThemeConfig != nil {
		r.Theme = mergeTheme(c.ThemeConfig, *l.ThemeConfig)
	}
	return r
}

// mergeTheme lets every field set on override replace the site level value.
func mergeTheme(base, override ThemeConfig) ThemeConfig {
	out := base
	if override.Nav != nil {
		out.Nav = override.Nav
	}
	if override.Sidebar != nil {
		out.Sidebar = override.Sidebar
	}
	if override.Footer != nil {
		out.Footer = override.Footer
	}
	if override.SocialLinks != nil {
		out.SocialLinks = override.SocialLinks
	}
	if override.EditLink != nil {
		out.EditLink = override.EditLink
	}
	if override.Algolia != nil {
		out.Algolia = override.Algolia
	}
	if override.OutlineTitle != "" {
		out.OutlineTitle = override.OutlineTitle
	}
	if override.LastUpdatedText != "" {
		out.LastUpdatedText = override.LastUpdatedText
	}
	return out
}

// AllLocales returns every declared locale resolved, in declaration order. A
// site without locales yields a single implicit root locale.
func (c *SiteConfig) AllLocales() []Resolved {
	if len(c.Locales) == 0 {
		return []Resolved{c.resolve(implicitRoot)}
	}
	out := make([]Resolved, 0, len(c.Locales))
	for _, l := range c.Locales {
		out = append(out, c.resolve(l))
	}
	return out
}
