package config

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// DefaultLang is the html lang of a site that declares no locales.
const DefaultLang = "en-US"

// RootLocale is the key of the locale served at the site root.
const RootLocale = "root"

type JavascriptTarget struct {
	Source string `yaml:"source"`
}

// SiteConfig is the top level documentation site configuration.
type SiteConfig struct {
	Title           string                      `yaml:"title"`
	Description     string                      `yaml:"description"`
	Base            string                      `yaml:"base"`
	LastUpdated     bool                        `yaml:"last_updated"`
	Origin          string                      `yaml:"origin"`
	IgnoreDeadLinks bool                        `yaml:"ignore_dead_links"`
	ThemeConfig     ThemeConfig                 `yaml:"theme_config"`
	Locales         Locales                     `yaml:"locales"`
	Javascript      map[string]JavascriptTarget `yaml:"javascript"`
}

type ThemeConfig struct {
	Nav             []NavItem     `yaml:"nav"`
	Sidebar         []SidebarItem `yaml:"sidebar"`
	Footer          *Footer       `yaml:"footer"`
	SocialLinks     []SocialLink  `yaml:"social_links"`
	EditLink        *EditLink     `yaml:"edit_link"`
	Algolia         *Algolia      `yaml:"algolia"`
	OutlineTitle    string        `yaml:"outline_title"`
	LastUpdatedText string        `yaml:"last_updated_text"`
}

type NavItem struct {
	Text        string    `yaml:"text"`
	Link        string    `yaml:"link"`
	Items       []NavItem `yaml:"items"`
	ActiveMatch string    `yaml:"active_match"`
}

// SidebarItem is either a page link or a group of items.
type SidebarItem struct {
	Text      string        `yaml:"text"`
	Link      string        `yaml:"link"`
	Items     []SidebarItem `yaml:"items"`
	Collapsed bool          `yaml:"collapsed"`
}

type Footer struct {
	Message   string `yaml:"message"`
	Copyright string `yaml:"copyright"`
}

type SocialLink struct {
	Icon string `yaml:"icon"`
	Link string `yaml:"link"`
}

// EditLink builds "edit this page" URLs. Pattern must contain :path.
type EditLink struct {
	Pattern string `yaml:"pattern"`
	Text    string `yaml:"text"`
}

type Algolia struct {
	AppID     string `yaml:"app_id"`
	APIKey    string `yaml:"api_key"`
	IndexName string `yaml:"index_name"`
}

// URL returns the edit URL for a page path relative to the site root.
func (e *EditLink) URL(relPath string) string {
	return strings.ReplaceAll(e.Pattern, ":path", strings.TrimPrefix(relPath, "/"))
}

// Load reads and decodes a site configuration file and applies defaults.
// It does not validate; call Validate for that.
func Load(filename string) (*SiteConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "reading site config %s", filename)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing site config %s", filename)
	}
	return cfg, nil
}

// Parse decodes a YAML site configuration and applies defaults.
func Parse(data []byte) (*SiteConfig, error) {
	var cfg SiteConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.WithStack(err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *SiteConfig) applyDefaults() {
	c.Base = normalizeBase(c.Base)
	c.Origin = strings.TrimSuffix(c.Origin, "/")
}

func normalizeBase(base string) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return "/"
	}
	if !strings.HasPrefix(base, "/") {
		base = "/" + base
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base
}

// Link resolves a configured link for use in rendered HTML. Internal links
// are prefixed with Base and lose their .md or .html extension; external
// links are returned unchanged.
func (c *SiteConfig) Link(link string) string {
	if link == "" || IsExternal(link) || !strings.HasPrefix(link, "/") {
		return link
	}

	path, fragment := link, ""
	if i := strings.IndexAny(link, "#?"); i >= 0 {
		path, fragment = link[:i], link[i:]
	}
	path = TrimPageExt(path)

	return strings.TrimSuffix(c.Base, "/") + path + fragment
}

// TrimPageExt strips a trailing .md or .html from a route and maps index
// files onto their directory.
func TrimPageExt(route string) string {
	for _, ext := range []string{".md", ".html"} {
		route = strings.TrimSuffix(route, ext)
	}
	if route == "index" || strings.HasSuffix(route, "/index") {
		route = strings.TrimSuffix(route, "index")
	}
	return route
}

// IsExternal reports whether a link leaves the site.
func IsExternal(link string) bool {
	lower := strings.ToLower(link)
	for _, scheme := range []string{"http://", "https://", "mailto:", "//"} {
		if strings.HasPrefix(lower, scheme) {
			return true
		}
	}
	return false
}
