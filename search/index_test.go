package search

import (
	"encoding/json"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexMarshal(t *testing.T) {
	idx := &Index{Locale: "en", Lang: "en"}
	idx.Add(Document{Title: "Quickstart", Link: "/bilix/en/quickstart", Text: "bilix get_video url"})
	idx.Add(Document{Title: "Install", Link: "/bilix/en/install", Headings: []string{"pip"}, Text: "pip install bilix"})

	data, err := idx.Marshal()
	require.NoError(t, err)

	var decoded Index
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded.Documents, 2)
	assert.Equal(t, "Install", decoded.Documents[0].Title)
	assert.Equal(t, []string{"pip"}, decoded.Documents[0].Headings)
	assert.Equal(t, []string{}, decoded.Documents[1].Headings)
}

func TestEmptyIndexHasDocumentsArray(t *testing.T) {
	data, err := (&Index{Locale: "root", Lang: "zh"}).Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"documents":[]`)
}

func TestTruncateCountsRunes(t *testing.T) {
	idx := &Index{}
	idx.Add(Document{Text: strings.Repeat("下载", MaxTextLength)})
	assert.Equal(t, MaxTextLength, utf8.RuneCountInString(idx.Documents[0].Text))
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "search-index.root.json", FileName("root"))
}
