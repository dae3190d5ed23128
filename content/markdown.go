package content

import (
	"fmt"
	"html/template"
	"path"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/ast"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// renderMarkdown fills the HTML, headings, text and fallback title of page.
func renderMarkdown(page *Page, body []byte, link func(string) string) {
	extensions := parser.CommonExtensions | parser.AutoHeadingIDs
	p := parser.NewWithExtensions(extensions)
	doc := p.Parse(body)

	dir := path.Dir("/" + page.RelPath)
	ids := make(map[string]int)

	ast.WalkFunc(doc, func(node ast.Node, entering bool) ast.WalkStatus {
		if !entering {
			return ast.GoToNext
		}
		switch n := node.(type) {
		case *ast.Link:
			n.Destination = []byte(rewriteLink(string(n.Destination), dir, link))
		case *ast.Image:
			n.Destination = []byte(rewriteLink(string(n.Destination), dir, link))
		case *ast.Heading:
			if n.HeadingID != "" {
				n.HeadingID = uniqueID(ids, n.HeadingID)
			}
			text := nodeText(n)
			if n.Level == 1 && page.Title == "" {
				page.Title = text
			}
			if n.Level == 2 || n.Level == 3 {
				page.Headings = append(page.Headings, Heading{Level: n.Level, ID: n.HeadingID, Text: text})
			}
		}
		return ast.GoToNext
	})

	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.HrefTargetBlank})
	page.HTML = template.HTML(markdown.Render(doc, renderer))
	page.Text = nodeText(doc)
}

// rewriteLink resolves Markdown links relative to the page and passes
// internal ones through link.
func rewriteLink(dest, dir string, link func(string) string) string {
	if dest == "" || strings.HasPrefix(dest, "#") || strings.Contains(dest, "://") || strings.HasPrefix(dest, "mailto:") || strings.HasPrefix(dest, "//") {
		return dest
	}
	if !strings.HasPrefix(dest, "/") {
		target, fragment := dest, ""
		if i := strings.IndexAny(dest, "#?"); i >= 0 {
			target, fragment = dest[:i], dest[i:]
		}
		dest = path.Join(dir, target) + fragment
	}
	return link(dest)
}

func uniqueID(seen map[string]int, id string) string {
	n := seen[id]
	seen[id] = n + 1
	if n == 0 {
		return id
	}
	return fmt.Sprintf("%s-%d", id, n)
}

// nodeText returns the whitespace normalised text below node.
func nodeText(node ast.Node) string {
	var parts []string
	ast.WalkFunc(node, func(n ast.Node, entering bool) ast.WalkStatus {
		if !entering {
			return ast.GoToNext
		}
		switch n.(type) {
		case *ast.HTMLBlock, *ast.HTMLSpan:
			return ast.SkipChildren
		}
		if leaf := n.AsLeaf(); leaf != nil && len(leaf.Literal) > 0 {
			parts = append(parts, string(leaf.Literal))
		}
		return ast.GoToNext
	})
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}
