package handlers

import (
	"html/template"
	"regexp"
	"strings"

	"github.com/ZacxDev/go-docs-site/config"
	"github.com/ZacxDev/go-docs-site/content"
)

const (
	defaultEditText        = "Edit this page"
	defaultLastUpdatedText = "Last updated"
	defaultOutlineTitle    = "On this page"
)

type NavView struct {
	Text     string
	Link     string
	Active   bool
	External bool
	HasItems bool
	Items    []NavView
}

type SidebarView struct {
	Text      string
	Link      string
	Active    bool
	HasLink   bool
	HasItems  bool
	Collapsed bool
	Items     []SidebarView
}

type LinkView struct {
	Text string
	Link string
}

type LocaleLink struct {
	Label   string
	Lang    string
	Link    string
	Current bool
}

// PageView is everything the layout needs to know about the current page.
type PageView struct {
	Title       string
	Description string
	HTML        template.HTML
	Layout      string
	IsHome      bool
	IsDoc       bool

	Hero     content.Hero
	Features []content.Feature

	Outline      []content.Heading
	HasOutline   bool
	OutlineTitle string

	EditURL     string
	EditText    string
	HasEditLink bool

	LastUpdated     string
	LastUpdatedISO  string
	LastUpdatedText string
	HasLastUpdated  bool

	Prev    LinkView
	Next    LinkView
	HasPrev bool
	HasNext bool
}

// routeOf maps a configured internal link onto the page route it targets.
func routeOf(link string) string {
	if i := strings.IndexAny(link, "#?"); i >= 0 {
		link = link[:i]
	}
	return config.TrimPageExt(link)
}

func buildNav(cfg *config.SiteConfig, items []config.NavItem, route string) []NavView {
	views := make([]NavView, 0, len(items))
	for _, item := range items {
		v := NavView{
			Text:     item.Text,
			Link:     cfg.Link(item.Link),
			External: config.IsExternal(item.Link),
		}
		if !v.External && item.Link != "" {
			v.Active = routeOf(item.Link) == route
		}
		if item.ActiveMatch != "" {
			if re, err := regexp.Compile(item.ActiveMatch); err == nil && re.MatchString(route) {
				v.Active = true
			}
		}
		if len(item.Items) > 0 {
			v.HasItems = true
			v.Items = buildNav(cfg, item.Items, route)
			for _, child := range v.Items {
				v.Active = v.Active || child.Active
			}
		}
		views = append(views, v)
	}
	return views
}

func buildSidebar(cfg *config.SiteConfig, items []config.SidebarItem, route string) []SidebarView {
	views := make([]SidebarView, 0, len(items))
	for _, item := range items {
		v := SidebarView{
			Text:      item.Text,
			Link:      cfg.Link(item.Link),
			HasLink:   item.Link != "",
			Collapsed: item.Collapsed,
		}
		if v.HasLink && !config.IsExternal(item.Link) {
			v.Active = routeOf(item.Link) == route
		}
		if len(item.Items) > 0 {
			v.HasItems = true
			v.Items = buildSidebar(cfg, item.Items, route)
			for _, child := range v.Items {
				if child.Active {
					// Never hide the group holding the current page.
					v.Collapsed = false
				}
			}
		}
		views = append(views, v)
	}
	return views
}

// flattenSidebar lists the internal sidebar links in reading order.
func flattenSidebar(items []config.SidebarItem) []config.SidebarItem {
	var out []config.SidebarItem
	for _, item := range items {
		if item.Link != "" && !config.IsExternal(item.Link) {
			out = append(out, item)
		}
		out = append(out, flattenSidebar(item.Items)...)
	}
	return out
}

// prevNext finds the neighbours of route in the sidebar reading order.
func prevNext(cfg *config.SiteConfig, items []config.SidebarItem, route string) (prev, next *LinkView) {
	flat := flattenSidebar(items)
	for i, item := range flat {
		if routeOf(item.Link) != route {
			continue
		}
		if i > 0 {
			prev = &LinkView{Text: flat[i-1].Text, Link: cfg.Link(flat[i-1].Link)}
		}
		if i < len(flat)-1 {
			next = &LinkView{Text: flat[i+1].Text, Link: cfg.Link(flat[i+1].Link)}
		}
		return prev, next
	}
	return nil, nil
}

func isTrue(b *bool) bool {
	return b == nil || *b
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
