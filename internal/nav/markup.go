package nav

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ParseMarkup reads a navigation tree from nested list markup, as produced by
// static-site generators for their table of contents. The first <ol> or <ul>
// in the document is the tree root.
//
// A list item holding only a nested list (no label of its own) belongs to
// the entry right before it. That sibling convention is resolved here, once,
// into explicit parent links.
func ParseMarkup(r io.Reader) (*Tree, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing nav markup: %w", err)
	}

	root := findList(doc)
	if root == nil {
		return nil, ErrEmptyTree
	}

	t := New()
	parseList(t, root, None)
	if t.Len() == 0 {
		return nil, ErrEmptyTree
	}
	return t, nil
}

func parseList(t *Tree, list *html.Node, parent ID) {
	last := None
	for li := list.FirstChild; li != nil; li = li.NextSibling {
		if li.Type != html.ElementNode || li.DataAtom != atom.Li {
			continue
		}
		classes := classSet(li)
		nested := childList(li)
		anchor := entryAnchor(li)
		label := collapseSpace(textOf(li))

		if anchor == nil && label == "" && nested != nil && !classes["spacer"] {
			owner := last
			if owner == None {
				owner = parent
			}
			parseList(t, nested, owner)
			continue
		}

		n := Node{Expanded: classes["expanded"]}
		switch {
		case classes["spacer"] || classes["separator"]:
			n.Kind = KindSeparator
		case anchor != nil:
			n.Label = collapseSpace(textOf(anchor))
			n.Href = attr(anchor, "href")
			if n.Href == "" {
				n.Kind = KindHeader
			}
		default:
			n.Label = label
			n.Kind = KindHeader
		}

		id := t.Add(parent, n)
		last = id
		if nested != nil {
			parseList(t, nested, id)
		}
	}
}

// findList returns the first <ol> or <ul> in document order.
func findList(n *html.Node) *html.Node {
	if isList(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if l := findList(c); l != nil {
			return l
		}
	}
	return nil
}

func isList(n *html.Node) bool {
	return n.Type == html.ElementNode && (n.DataAtom == atom.Ol || n.DataAtom == atom.Ul)
}

// childList returns the first list nested in li without crossing another list.
func childList(li *html.Node) *html.Node {
	var found *html.Node
	var visit func(n *html.Node)
	visit = func(n *html.Node) {
		for c := n.FirstChild; c != nil && found == nil; c = c.NextSibling {
			if isList(c) {
				found = c
				return
			}
			if c.Type == html.ElementNode {
				visit(c)
			}
		}
	}
	visit(li)
	return found
}

// entryAnchor returns the label link of li, skipping toggle controls and
// anything inside a nested list.
func entryAnchor(li *html.Node) *html.Node {
	var found *html.Node
	var visit func(n *html.Node)
	visit = func(n *html.Node) {
		for c := n.FirstChild; c != nil && found == nil; c = c.NextSibling {
			if c.Type != html.ElementNode || isList(c) {
				continue
			}
			if c.DataAtom == atom.A && !classSet(c)["toggle"] {
				found = c
				return
			}
			visit(c)
		}
	}
	visit(li)
	return found
}

// textOf concatenates the visible text under n, excluding nested lists,
// toggle controls and aria-hidden decorations such as section numbers.
func textOf(n *html.Node) string {
	var b strings.Builder
	var visit func(n *html.Node)
	visit = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch c.Type {
			case html.TextNode:
				b.WriteString(c.Data)
				b.WriteByte(' ')
			case html.ElementNode:
				if isList(c) || classSet(c)["toggle"] || attr(c, "aria-hidden") == "true" {
					continue
				}
				visit(c)
			}
		}
	}
	visit(n)
	return b.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func classSet(n *html.Node) map[string]bool {
	set := make(map[string]bool)
	for _, c := range strings.Fields(attr(n, "class")) {
		set[c] = true
	}
	return set
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
