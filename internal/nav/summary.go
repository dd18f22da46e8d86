package nav

import (
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// ParseSummary reads a SUMMARY.md table of contents. Only the structure of
// the document is used: an optional leading "# Title", prefix chapters as
// bare links, numbered chapters as (nested) list items, part titles as
// headings and separators as thematic breaks. Chapter links to .md files are
// rewritten to their .html output names, README.md becoming index.html.
func ParseSummary(r io.Reader) (*Tree, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading summary: %w", err)
	}

	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	t := New()
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch block := n.(type) {
		case *ast.Heading:
			// The first top-level heading is the book title, not an entry.
			if t.Len() == 0 && block.Level == 1 {
				continue
			}
			t.Add(None, Node{Label: nodeText(block, src), Kind: KindHeader})
		case *ast.ThematicBreak:
			t.Add(None, Node{Kind: KindSeparator})
		case *ast.List:
			summaryList(t, block, src, None)
		case *ast.Paragraph:
			for c := block.FirstChild(); c != nil; c = c.NextSibling() {
				if link, ok := c.(*ast.Link); ok {
					t.Add(None, linkNode(link, src))
				}
			}
		}
	}

	if t.Len() == 0 {
		return nil, ErrEmptyTree
	}
	return t, nil
}

func summaryList(t *Tree, list *ast.List, src []byte, parent ID) {
	for item := list.FirstChild(); item != nil; item = item.NextSibling() {
		id := None
		for c := item.FirstChild(); c != nil; c = c.NextSibling() {
			switch block := c.(type) {
			case *ast.Paragraph, *ast.TextBlock:
				if id != None {
					continue
				}
				if link := firstLink(block); link != nil {
					id = t.Add(parent, linkNode(link, src))
				} else if label := nodeText(block, src); label != "" {
					id = t.Add(parent, Node{Label: label, Kind: KindHeader})
				}
			case *ast.List:
				owner := id
				if owner == None {
					owner = parent
				}
				summaryList(t, block, src, owner)
			}
		}
	}
}

func firstLink(n ast.Node) *ast.Link {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if link, ok := c.(*ast.Link); ok {
			return link
		}
	}
	return nil
}

// linkNode turns a chapter link into a node. Draft chapters, whose link has
// no destination, become headers.
func linkNode(link *ast.Link, src []byte) Node {
	n := Node{Label: nodeText(link, src), Href: chapterHref(string(link.Destination))}
	if n.Href == "" {
		n.Kind = KindHeader
	}
	return n
}

func nodeText(n ast.Node, src []byte) string {
	var b strings.Builder
	var visit func(n ast.Node)
	visit = func(n ast.Node) {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			switch v := c.(type) {
			case *ast.Text:
				b.Write(v.Segment.Value(src))
				if v.SoftLineBreak() || v.HardLineBreak() {
					b.WriteByte(' ')
				}
			case *ast.String:
				b.Write(v.Value)
			default:
				visit(c)
			}
		}
	}
	visit(n)
	return strings.TrimSpace(b.String())
}

// chapterHref converts a SUMMARY.md link destination to the page it is
// published as.
func chapterHref(dest string) string {
	dest = strings.TrimSpace(dest)
	if dest == "" || isExternal(dest) {
		return dest
	}
	dest = strings.TrimPrefix(dest, "./")

	fragment := ""
	if i := strings.IndexByte(dest, '#'); i >= 0 {
		dest, fragment = dest[:i], dest[i:]
	}
	if strings.EqualFold(path.Base(dest), "README.md") {
		dest = strings.TrimSuffix(dest, path.Base(dest)) + "index.md"
	}
	return mdPathToHTML(dest) + fragment
}

func isExternal(href string) bool {
	return strings.HasPrefix(href, "//") || strings.Contains(href, "://")
}

// mdPathToHTML converts a markdown path to its HTML equivalent.
func mdPathToHTML(p string) string {
	if strings.HasSuffix(p, ".md") {
		return strings.TrimSuffix(p, ".md") + ".html"
	}
	return p
}
