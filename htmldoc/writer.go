// Package htmldoc exports rendered canvases as HTML documents.
//
// The export builds an html.Node tree — one section per page with its
// extracted text fragments in a single paragraph, separated by <wbr>
// elements — and serializes it with
// golang.org/x/net/html, so the output is always well-formed markup.
package htmldoc

import (
	"fmt"
	"io"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/tsawler/vellum/viewer"
)

// PageContent pairs a 1-based page number with its rendered canvas.
type PageContent struct {
	Number int
	Canvas *viewer.Canvas
}

// Write serializes the pages as a standalone HTML document.
func Write(w io.Writer, title string, pgs []PageContent) error {
	doc := buildDocument(title, pgs)
	if err := html.Render(w, doc); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	return nil
}

// buildDocument constructs the node tree.
func buildDocument(title string, pgs []PageContent) *html.Node {
	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})

	root := element(atom.Html)
	doc.AppendChild(root)

	head := element(atom.Head)
	root.AppendChild(head)
	titleNode := element(atom.Title)
	titleNode.AppendChild(text(title))
	head.AppendChild(titleNode)

	body := element(atom.Body)
	root.AppendChild(body)

	for _, pg := range pgs {
		body.AppendChild(buildSection(pg))
	}
	return doc
}

// buildSection renders one page as a section with a heading and its text
// fragments.
func buildSection(pg PageContent) *html.Node {
	section := element(atom.Section)
	section.Attr = []html.Attribute{{Key: "id", Val: fmt.Sprintf("page-%d", pg.Number)}}

	heading := element(atom.H2)
	heading.AppendChild(text(fmt.Sprintf("Page %d", pg.Number)))
	section.AppendChild(heading)

	if pg.Canvas == nil {
		return section
	}

	p := element(atom.P)
	for i, fragment := range pg.Canvas.Strings {
		if i > 0 {
			p.AppendChild(element(atom.Wbr))
		}
		p.AppendChild(text(fragment))
	}
	section.AppendChild(p)

	if n := len(pg.Canvas.Images) + len(pg.Canvas.InlineImages); n > 0 {
		note := element(atom.P)
		note.Attr = []html.Attribute{{Key: "class", Val: "images"}}
		note.AppendChild(text(fmt.Sprintf("%d image(s) on this page", n)))
		section.AppendChild(note)
	}

	return section
}

func element(a atom.Atom) *html.Node {
	return &html.Node{Type: html.ElementNode, Data: a.String(), DataAtom: a}
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}
