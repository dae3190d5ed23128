package config

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/language"
)

// FieldError is a single failed check.
type FieldError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError bundles every failed check of a configuration.
type ValidationError struct {
	errors []FieldError
}

// Errors returns the individual failures.
func (e ValidationError) Errors() []FieldError {
	return e.errors
}

func (e ValidationError) Error() string {
	msgs := make([]string, len(e.errors))
	for i, err := range e.errors {
		msgs[i] = err.Error()
	}
	return "invalid site config: " + strings.Join(msgs, "; ")
}

type validator struct {
	errors []FieldError
}

func (v *validator) addError(field, message string, value interface{}) {
	v.errors = append(v.errors, FieldError{Field: field, Value: value, Message: message})
}

func (v *validator) err() error {
	if len(v.errors) == 0 {
		return nil
	}
	copied := make([]FieldError, len(v.errors))
	copy(copied, v.errors)
	return ValidationError{errors: copied}
}

var localeKeyPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Validate checks the structure of the configuration and reports every
// problem found as a ValidationError.
func (c *SiteConfig) Validate() error {
	v := &validator{}

	if strings.TrimSpace(c.Title) == "" {
		v.addError("title", "must not be empty", c.Title)
	}
	if !strings.HasPrefix(c.Base, "/") || !strings.HasSuffix(c.Base, "/") {
		v.addError("base", "must start and end with /", c.Base)
	} else if strings.Contains(c.Base, "..") || strings.Contains(c.Base, "//") || strings.IndexFunc(c.Base, unicode.IsSpace) >= 0 {
		v.addError("base", "must be a clean path such as /docs/", c.Base)
	}
	if c.Origin != "" {
		v.absoluteURL("origin", c.Origin, "http", "https")
	}
	for name, target := range c.Javascript {
		if target.Source == "" {
			v.addError("javascript."+name+".source", "must not be empty", target.Source)
		}
		if name == "theme" {
			v.addError("javascript."+name, "name is reserved for the theme assets", name)
		}
	}

	v.theme("theme_config", c.ThemeConfig)

	seen := make(map[string]bool, len(c.Locales))
	for _, l := range c.Locales {
		field := "locales." + l.Key
		if seen[l.Key] {
			v.addError(field, "declared more than once", l.Key)
		}
		seen[l.Key] = true

		if l.Key != RootLocale && !localeKeyPattern.MatchString(l.Key) {
			v.addError(field, "key must be a single path segment", l.Key)
		}
		if strings.TrimSpace(l.Label) == "" {
			v.addError(field+".label", "must not be empty", l.Label)
		}
		if strings.TrimSpace(l.Lang) == "" {
			v.addError(field+".lang", "must not be empty", l.Lang)
		} else if _, err := language.Parse(l.Lang); err != nil {
			v.addError(field+".lang", fmt.Sprintf("not a BCP 47 language tag: %v", err), l.Lang)
		}
		if l.ThemeConfig != nil {
			v.theme(field+".theme_config", *l.ThemeConfig)
		}
	}
	if len(c.Locales) > 0 && !seen[RootLocale] {
		v.addError("locales", "must declare a root locale", nil)
	}

	return v.err()
}

func (v *validator) theme(field string, t ThemeConfig) {
	if t.Nav != nil {
		v.navItems(field+".nav", t.Nav)
	}
	if t.Sidebar != nil {
		v.sidebarItems(field+".sidebar", t.Sidebar)
	}
	if t.SocialLinks != nil {
		if len(t.SocialLinks) == 0 {
			v.addError(field+".social_links", "must not be empty when present", nil)
		}
		for i, s := range t.SocialLinks {
			f := fmt.Sprintf("%s.social_links[%d]", field, i)
			if s.Icon == "" {
				v.addError(f+".icon", "must not be empty", s.Icon)
			}
			if strings.IndexFunc(s.Link, unicode.IsSpace) >= 0 {
				v.addError(f+".link", "must not contain whitespace", s.Link)
				continue
			}
			v.absoluteURL(f+".link", s.Link, "http", "https", "mailto")
		}
	}
	if t.EditLink != nil && !strings.Contains(t.EditLink.Pattern, ":path") {
		v.addError(field+".edit_link.pattern", "must contain :path", t.EditLink.Pattern)
	}
	if a := t.Algolia; a != nil {
		if a.AppID == "" {
			v.addError(field+".algolia.app_id", "must not be empty", a.AppID)
		}
		if a.APIKey == "" {
			v.addError(field+".algolia.api_key", "must not be empty", a.APIKey)
		}
		if a.IndexName == "" {
			v.addError(field+".algolia.index_name", "must not be empty", a.IndexName)
		}
	}
}

func (v *validator) navItems(field string, items []NavItem) {
	if len(items) == 0 {
		v.addError(field, "must not be empty when present", nil)
		return
	}
	for i, item := range items {
		f := fmt.Sprintf("%s[%d]", field, i)
		if strings.TrimSpace(item.Text) == "" {
			v.addError(f+".text", "must not be empty", item.Text)
		}
		if item.Items != nil {
			v.navItems(f+".items", item.Items)
			if item.Link != "" {
				v.link(f+".link", item.Link)
			}
			continue
		}
		v.link(f+".link", item.Link)
	}
}

func (v *validator) sidebarItems(field string, items []SidebarItem) {
	if len(items) == 0 {
		v.addError(field, "must not be empty when present", nil)
		return
	}
	for i, item := range items {
		f := fmt.Sprintf("%s[%d]", field, i)
		if strings.TrimSpace(item.Text) == "" {
			v.addError(f+".text", "must not be empty", item.Text)
		}
		if item.Items != nil {
			v.sidebarItems(f+".items", item.Items)
			if item.Link != "" {
				v.link(f+".link", item.Link)
			}
			continue
		}
		v.link(f+".link", item.Link)
	}
}

// link accepts internal paths starting with / and absolute external URLs.
func (v *validator) link(field, link string) {
	switch {
	case link == "":
		v.addError(field, "must not be empty", link)
	case strings.IndexFunc(link, unicode.IsSpace) >= 0:
		v.addError(field, "must not contain whitespace", link)
	case IsExternal(link):
		v.absoluteURL(field, link, "http", "https", "mailto", "")
	case !strings.HasPrefix(link, "/"):
		v.addError(field, "internal links must start with /", link)
	}
}

func (v *validator) absoluteURL(field, value string, schemes ...string) {
	if value == "" {
		v.addError(field, "must not be empty", value)
		return
	}
	u, err := url.Parse(value)
	if err != nil {
		v.addError(field, fmt.Sprintf("invalid URL: %v", err), value)
		return
	}

	allowed := false
	for _, s := range schemes {
		if strings.EqualFold(u.Scheme, s) {
			allowed = true
			break
		}
	}
	if !allowed {
		v.addError(field, fmt.Sprintf("unsupported URL scheme %q", u.Scheme), value)
		return
	}
	if u.Scheme == "mailto" {
		if u.Opaque == "" {
			v.addError(field, "mailto link needs an address", value)
		}
		return
	}
	if u.Host == "" {
		v.addError(field, "URL must have a host", value)
	}
}
