package handlers

import (
	"fmt"
	"html/template"
	"mime"
	"net/http"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ZacxDev/go-docs-site/config"
	"github.com/ZacxDev/go-docs-site/content"
	"github.com/ZacxDev/go-docs-site/javascript"
	"github.com/ZacxDev/go-docs-site/search"
	"github.com/ZacxDev/go-docs-site/theme"
	"github.com/ZacxDev/go-docs-site/utils"
	"github.com/gobuffalo/plush"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const themeTarget = "theme"

// Options locates the parts of a docs site on disk.
type Options struct {
	Root       string
	ConfigPath string
	ThemeDir   string
	PublicDir  string
	// Exclude lists directories below Root that hold no pages.
	Exclude []string
	Logger  zerolog.Logger
}

// Route is a path the site answers. Page routes render to index.html.
type Route struct {
	Path string
	Page bool
}

// Site is a loaded docs site. It is read only once SetupRouter returned.
type Site struct {
	Config *config.SiteConfig
	Pages  []*content.Page
	Theme  *theme.Theme

	opts        Options
	log         zerolog.Logger
	byRoute     map[string]*content.Page
	files       map[string][]byte // base relative path -> generated file
	stylesheets []string
	scripts     []string
	routes      []Route
}

// NewSite loads, validates and renders everything below opts.Root.
func NewSite(opts Options) (*Site, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	th, err := theme.Load(opts.ThemeDir)
	if err != nil {
		return nil, err
	}

	pages, err := content.Discover(opts.Root, content.Options{
		Link:        cfg.Link,
		LastUpdated: cfg.LastUpdated,
		Exclude:     opts.Exclude,
	})
	if err != nil {
		return nil, err
	}

	s := &Site{
		Config:  cfg,
		Pages:   pages,
		Theme:   th,
		opts:    opts,
		log:     opts.Logger,
		byRoute: make(map[string]*content.Page, len(pages)),
		files:   make(map[string][]byte),
	}
	for _, p := range pages {
		s.byRoute[p.Route] = p
	}

	if err := s.checkDeadLinks(); err != nil {
		return nil, err
	}
	if err := s.compileAssets(); err != nil {
		return nil, err
	}
	if err := s.buildSearchIndexes(); err != nil {
		return nil, err
	}
	if err := s.buildSitemap(); err != nil {
		return nil, err
	}

	s.log.Debug().Int("pages", len(pages)).Int("files", len(s.files)).Msg("site loaded")
	return s, nil
}

func (s *Site) compileAssets() error {
	targets := []javascript.Target{}
	if src, ok := s.Theme.Source(theme.StyleFile); ok {
		targets = append(targets, javascript.Target{Name: themeTarget, Contents: src, Ext: ".css"})
	}
	if src, ok := s.Theme.Source(theme.ScriptFile); ok {
		targets = append(targets, javascript.Target{Name: themeTarget, Contents: src, Ext: ".js"})
	}

	names := make([]string, 0, len(s.Config.Javascript))
	for name := range s.Config.Javascript {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		source := s.Config.Javascript[name].Source
		if !filepath.IsAbs(source) {
			source = filepath.Join(s.opts.Root, source)
		}
		targets = append(targets, javascript.Target{Name: name, Source: source})
	}

	assets, err := javascript.Compile(targets)
	if err != nil {
		return err
	}
	// Theme assets come first so site targets can override them.
	sort.SliceStable(assets, func(i, j int) bool {
		return assets[i].Target == themeTarget && assets[j].Target != themeTarget
	})
	for _, a := range assets {
		s.files[a.Path] = a.Contents
		if a.IsMap {
			continue
		}
		link := s.Config.Base + a.Path
		if strings.HasSuffix(a.Path, ".css") {
			s.stylesheets = append(s.stylesheets, link)
		} else {
			s.scripts = append(s.scripts, link)
		}
	}
	return nil
}

func (s *Site) buildSearchIndexes() error {
	if s.Config.ThemeConfig.Algolia != nil {
		return nil
	}
	indexes := make(map[string]*search.Index)
	for _, l := range s.Config.AllLocales() {
		indexes[l.Key] = &search.Index{Locale: l.Key, Lang: l.Lang}
	}
	for _, p := range s.Pages {
		l := s.Config.LocaleForPath(p.Route)
		headings := make([]string, 0, len(p.Headings))
		for _, h := range p.Headings {
			headings = append(headings, h.Text)
		}
		indexes[l.Key].Add(search.Document{
			Title:    firstNonEmpty(p.Title, l.Title),
			Link:     s.Config.Link(p.Route),
			Headings: headings,
			Text:     p.Text,
		})
	}
	for key, idx := range indexes {
		data, err := idx.Marshal()
		if err != nil {
			return err
		}
		s.files[search.FileName(key)] = data
	}
	return nil
}

func (s *Site) buildSitemap() error {
	if s.Config.Origin == "" {
		return nil
	}
	entries := make([]utils.SitemapEntry, 0, len(s.Pages))
	for _, p := range s.sortedPages() {
		entries = append(entries, utils.SitemapEntry{Link: s.Config.Link(p.Route), LastMod: p.LastModified})
	}
	data, err := utils.GenerateSitemapContent(s.Config.Origin, entries)
	if err != nil {
		return err
	}
	s.files["sitemap.xml"] = data
	return nil
}

func (s *Site) sortedPages() []*content.Page {
	pages := append([]*content.Page(nil), s.Pages...)
	sort.Slice(pages, func(i, j int) bool { return pages[i].Route < pages[j].Route })
	return pages
}

// Routes lists every path the router renders, in a stable order.
func (s *Site) Routes() []Route {
	return s.routes
}

func (s *Site) PublicDir() string {
	return s.opts.PublicDir
}

// Sources lists the files and directories the site is read from.
func (s *Site) Sources() []string {
	var dirs []string
	for _, p := range []string{s.opts.Root, s.opts.ConfigPath, s.opts.ThemeDir, s.opts.PublicDir} {
		if p != "" {
			dirs = append(dirs, p)
		}
	}
	return dirs
}

// SetupRouter registers every page, generated file and public asset.
func (s *Site) SetupRouter() *mux.Router {
	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(s.Custom404Handler)

	s.routes = nil
	for _, page := range s.sortedPages() {
		link := s.Config.Link(page.Route)
		handler := s.DynamicHandler(page)
		router.HandleFunc(link, handler).Methods(http.MethodGet, http.MethodHead)
		if alt := toggleSlash(link); alt != "" {
			router.HandleFunc(alt, handler).Methods(http.MethodGet, http.MethodHead)
		}
		s.routes = append(s.routes, Route{Path: link, Page: true})
	}

	names := make([]string, 0, len(s.files))
	for name := range s.files {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		data := s.files[name]
		contentType := mime.TypeByExtension(path.Ext(name))
		link := s.Config.Base + name
		router.HandleFunc(link, func(w http.ResponseWriter, r *http.Request) {
			if contentType != "" {
				w.Header().Set("Content-Type", contentType)
			}
			w.Write(data)
		}).Methods(http.MethodGet, http.MethodHead)
		s.routes = append(s.routes, Route{Path: link})
	}

	if s.opts.PublicDir != "" {
		router.PathPrefix(s.Config.Base).Handler(s.publicHandler())
	}

	return router
}

func toggleSlash(link string) string {
	if link == "/" {
		return ""
	}
	if strings.HasSuffix(link, "/") {
		return strings.TrimSuffix(link, "/")
	}
	return link + "/"
}

func (s *Site) publicHandler() http.Handler {
	files := http.FileServer(http.Dir(s.opts.PublicDir))
	return http.StripPrefix(strings.TrimSuffix(s.Config.Base, "/"), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f, err := http.Dir(s.opts.PublicDir).Open(r.URL.Path)
		if err != nil {
			s.Custom404Handler(w, r)
			return
		}
		info, err := f.Stat()
		f.Close()
		if err != nil || info.IsDir() {
			s.Custom404Handler(w, r)
			return
		}
		files.ServeHTTP(w, r)
	}))
}

// DynamicHandler renders a page through the theme layout.
func (s *Site) DynamicHandler(page *content.Page) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		locale := s.Config.LocaleForPath(page.Route)
		ctx := s.layoutContext(locale, page.Route)
		view := s.pageView(locale, page)
		ctx.Set("page", view)
		ctx.Set("documentTitle", documentTitle(view.Title, locale.Title))
		ctx.Set("description", firstNonEmpty(view.Description, locale.Description))
		ctx.Set("showSidebar", view.IsDoc && len(locale.Theme.Sidebar) > 0 && isTrue(page.Frontmatter.Sidebar))

		pageHtml, err := s.Theme.Render(theme.LayoutFile, ctx)
		if err != nil {
			s.log.Error().Err(err).Str("route", page.Route).Msg("rendering page")
			http.Error(w, fmt.Sprintf("Error rendering template: %v", err), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if _, err := w.Write([]byte(pageHtml)); err != nil {
			s.log.Debug().Err(err).Str("route", page.Route).Msg("writing response")
		}
	}
}

// layoutContext sets the values shared by every page of a locale.
func (s *Site) layoutContext(locale config.Resolved, route string) *plush.Context {
	cfg := s.Config
	t := locale.Theme

	ctx := plush.NewContext()
	ctx.Set("lang", locale.Lang)
	ctx.Set("base", cfg.Base)
	ctx.Set("siteTitle", locale.Title)
	ctx.Set("homeLink", cfg.Link(locale.Prefix))
	ctx.Set("currentPath", route)
	ctx.Set("stylesheets", s.stylesheets)
	ctx.Set("scripts", s.scripts)
	ctx.Set("nav", buildNav(cfg, t.Nav, route))
	ctx.Set("sidebar", buildSidebar(cfg, t.Sidebar, route))
	ctx.Set("showSidebar", false)

	socialLinks := t.SocialLinks
	if socialLinks == nil {
		socialLinks = []config.SocialLink{}
	}
	ctx.Set("socialLinks", socialLinks)

	footer := config.Footer{}
	if t.Footer != nil {
		footer = *t.Footer
	}
	ctx.Set("footer", footer)
	ctx.Set("showFooter", t.Footer != nil)

	algolia := config.Algolia{}
	searchMode, searchIndex := "local", cfg.Base+search.FileName(locale.Key)
	if t.Algolia != nil {
		algolia = *t.Algolia
		searchMode, searchIndex = "algolia", ""
	}
	ctx.Set("algolia", algolia)
	ctx.Set("useAlgolia", t.Algolia != nil)
	ctx.Set("searchMode", searchMode)
	ctx.Set("searchIndex", searchIndex)

	locales := s.localeLinks(locale, route)
	ctx.Set("locales", locales)
	ctx.Set("hasLocales", len(locales) > 1)

	return ctx
}

func (s *Site) localeLinks(current config.Resolved, route string) []LocaleLink {
	all := s.Config.AllLocales()
	links := make([]LocaleLink, 0, len(all))
	rest := strings.TrimPrefix(route, current.Prefix)
	for _, l := range all {
		target := l.Prefix
		if _, ok := s.byRoute[l.Prefix+rest]; ok {
			target = l.Prefix + rest
		}
		links = append(links, LocaleLink{
			Label:   l.Label,
			Lang:    l.Lang,
			Link:    s.Config.Link(target),
			Current: l.Key == current.Key,
		})
	}
	return links
}

func (s *Site) pageView(locale config.Resolved, page *content.Page) PageView {
	cfg := s.Config
	t := locale.Theme
	fm := page.Frontmatter

	v := PageView{
		Title:       page.Title,
		Description: page.Description,
		HTML:        page.HTML,
		Layout:      page.Layout(),
		IsHome:      page.Layout() == content.LayoutHome,
		IsDoc:       page.Layout() == content.LayoutDoc,
		Features:    []content.Feature{},
		Outline:     []content.Heading{},
	}

	if fm.Hero != nil {
		v.Hero = *fm.Hero
		v.Hero.Actions = make([]content.Action, len(fm.Hero.Actions))
		for i, a := range fm.Hero.Actions {
			a.Link = cfg.Link(a.Link)
			v.Hero.Actions[i] = a
		}
	}
	for _, f := range fm.Features {
		f.Link = cfg.Link(f.Link)
		v.Features = append(v.Features, f)
	}

	if v.IsDoc && isTrue(fm.Outline) && len(page.Headings) > 0 {
		v.Outline = page.Headings
		v.HasOutline = true
	}
	v.OutlineTitle = firstNonEmpty(t.OutlineTitle, defaultOutlineTitle)

	if t.EditLink != nil && isTrue(fm.EditLink) {
		v.EditURL = t.EditLink.URL(page.RelPath)
		v.EditText = firstNonEmpty(t.EditLink.Text, defaultEditText)
		v.HasEditLink = true
	}

	if cfg.LastUpdated && isTrue(fm.LastUpdated) && !page.LastModified.IsZero() {
		v.LastUpdated = page.LastModified.Format("2006-01-02 15:04")
		v.LastUpdatedISO = page.LastModified.Format("2006-01-02T15:04:05Z07:00")
		v.LastUpdatedText = firstNonEmpty(t.LastUpdatedText, defaultLastUpdatedText)
		v.HasLastUpdated = true
	}

	prev, next := prevNext(cfg, t.Sidebar, page.Route)
	if prev != nil {
		v.Prev, v.HasPrev = *prev, true
	}
	if next != nil {
		v.Next, v.HasNext = *next, true
	}

	return v
}

func documentTitle(page, site string) string {
	if page == "" || page == site {
		return site
	}
	return page + " | " + site
}

// checkDeadLinks fails when a nav or sidebar entry points at a missing page.
func (s *Site) checkDeadLinks() error {
	var dead []string
	check := func(where, link string) {
		if link == "" || config.IsExternal(link) || !strings.HasPrefix(link, "/") {
			return
		}
		if !s.hasPage(routeOf(link)) {
			dead = append(dead, fmt.Sprintf("%s -> %s", where, link))
		}
	}

	for _, l := range s.Config.AllLocales() {
		for _, item := range l.Theme.Nav {
			check(l.Key+" nav", item.Link)
			for _, child := range item.Items {
				check(l.Key+" nav", child.Link)
			}
		}
		for _, item := range flattenSidebar(l.Theme.Sidebar) {
			check(l.Key+" sidebar", item.Link)
		}
	}
	if len(dead) == 0 {
		return nil
	}

	sort.Strings(dead)
	if s.Config.IgnoreDeadLinks {
		for _, d := range dead {
			s.log.Warn().Str("link", d).Msg("dead link")
		}
		return nil
	}
	return errors.Errorf("found %d dead link(s): %s", len(dead), strings.Join(dead, ", "))
}

// hasPage reports whether route, with or without its trailing slash, is a page.
func (s *Site) hasPage(route string) bool {
	if _, ok := s.byRoute[route]; ok {
		return true
	}
	if alt := toggleSlash(route); alt != "" {
		_, ok := s.byRoute[alt]
		return ok
	}
	return false
}

// Custom404Handler renders the theme's not found page inside the layout of
// the locale the request path belongs to.
func (s *Site) Custom404Handler(w http.ResponseWriter, r *http.Request) {
	route := r.URL.Path
	if strings.HasPrefix(route, s.Config.Base) {
		route = "/" + strings.TrimPrefix(route, s.Config.Base)
	}
	locale := s.Config.LocaleForPath(route)

	ctx := s.layoutContext(locale, route)
	notFoundContent, err := s.Theme.Render(theme.NotFoundFile, ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("rendering 404 page")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ctx.Set("page", PageView{
		Title:    "404",
		HTML:     template.HTML(notFoundContent),
		Layout:   content.LayoutPage,
		Features: []content.Feature{},
		Outline:  []content.Heading{},
	})
	ctx.Set("documentTitle", documentTitle("404", locale.Title))
	ctx.Set("description", locale.Description)

	pageHtml, err := s.Theme.Render(theme.LayoutFile, ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("rendering 404 layout")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte(pageHtml))
}
