// Package search builds the client side search index used when no Algolia
// application is configured.
package search

import (
	"encoding/json"
	"sort"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// MaxTextLength caps the body text stored per document, in runes.
const MaxTextLength = 2000

type Document struct {
	Title    string   `json:"title"`
	Link     string   `json:"link"`
	Headings []string `json:"headings"`
	Text     string   `json:"text"`
}

type Index struct {
	Locale    string     `json:"locale"`
	Lang      string     `json:"lang"`
	Documents []Document `json:"documents"`
}

// FileName is the name of the index file of a locale.
func FileName(locale string) string {
	return "search-index." + locale + ".json"
}

// Add appends a document, truncating its text.
func (idx *Index) Add(doc Document) {
	doc.Text = truncate(doc.Text, MaxTextLength)
	if doc.Headings == nil {
		doc.Headings = []string{}
	}
	idx.Documents = append(idx.Documents, doc)
}

// Marshal encodes the index with documents ordered by link.
func (idx *Index) Marshal() ([]byte, error) {
	sort.SliceStable(idx.Documents, func(i, j int) bool {
		return idx.Documents[i].Link < idx.Documents[j].Link
	})
	if idx.Documents == nil {
		idx.Documents = []Document{}
	}
	data, err := json.Marshal(idx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return data, nil
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
