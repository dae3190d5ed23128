package utils

import (
	"encoding/xml"
	"time"

	"github.com/pkg/errors"
)

type Sitemap struct {
	XMLName xml.Name `xml:"urlset"`
	Xmlns   string   `xml:"xmlns,attr"`
	Urls    []Url    `xml:"url"`
}

type Url struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

// SitemapEntry is one page of the site. Link already carries the site base.
type SitemapEntry struct {
	Link    string
	LastMod time.Time
}

// GenerateSitemapContent renders a sitemap, including the XML header, with
// every link resolved against origin.
func GenerateSitemapContent(origin string, entries []SitemapEntry) ([]byte, error) {
	sitemap := Sitemap{
		Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9",
	}

	for _, entry := range entries {
		url := Url{Loc: origin + entry.Link}
		if !entry.LastMod.IsZero() {
			url.LastMod = entry.LastMod.UTC().Format("2006-01-02")
		}
		sitemap.Urls = append(sitemap.Urls, url)
	}

	xmlOutput, err := xml.MarshalIndent(sitemap, "", "  ")
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return append([]byte(xml.Header), xmlOutput...), nil
}
