package nav

import "errors"

// ID identifies a node inside a Tree. IDs are indices into the tree's arena
// and are stable for the lifetime of the tree.
type ID int

// None is the parent of top-level nodes and the "no node" result.
const None ID = -1

// Kind distinguishes the three sorts of entries a book table of contents has.
type Kind int

const (
	// KindLink is a chapter with an href.
	KindLink Kind = iota
	// KindHeader is a section or part title without an href.
	KindHeader
	// KindSeparator is a visual divider between groups of chapters.
	KindSeparator
)

// String returns the lowercase name used in JSON views and YAML sources.
func (k Kind) String() string {
	switch k {
	case KindLink:
		return "link"
	case KindHeader:
		return "header"
	case KindSeparator:
		return "separator"
	default:
		return "unknown"
	}
}

// ErrEmptyTree is returned by loaders when a source yields no entries.
var ErrEmptyTree = errors.New("nav: navigation tree is empty")

// Node is a single navigation entry.
type Node struct {
	Label    string
	Href     string // Root-relative or absolute. Empty for headers and separators.
	Kind     Kind
	Expanded bool // Pre-authored default expansion state.
	Parent   ID
	Children []ID
}

// HasChildren reports whether the node owns a nested list.
func (n Node) HasChildren() bool { return len(n.Children) > 0 }

// Tree is an ordered navigation tree stored as an arena of nodes with explicit
// parent indices. The zero value is an empty tree ready for use.
type Tree struct {
	nodes []Node
	roots []ID
}

// New returns an empty tree.
func New() *Tree {
	return &Tree{}
}

// Add appends n as the last child of parent (or as a top-level entry when
// parent is None) and returns its ID. Parent and Children on n are ignored.
func (t *Tree) Add(parent ID, n Node) ID {
	id := ID(len(t.nodes))
	n.Parent = None
	n.Children = nil
	if parent != None && t.valid(parent) {
		n.Parent = parent
		t.nodes[parent].Children = append(t.nodes[parent].Children, id)
	} else {
		t.roots = append(t.roots, id)
	}
	t.nodes = append(t.nodes, n)
	return id
}

// Len returns the number of nodes.
func (t *Tree) Len() int { return len(t.nodes) }

// Roots returns the top-level entries in order.
func (t *Tree) Roots() []ID { return t.roots }

// Node returns the node with the given ID. It panics on an invalid ID, like a
// slice index would.
func (t *Tree) Node(id ID) Node { return t.nodes[id] }

// Lookup returns the node with the given ID and whether it exists.
func (t *Tree) Lookup(id ID) (Node, bool) {
	if !t.valid(id) {
		return Node{}, false
	}
	return t.nodes[id], true
}

func (t *Tree) valid(id ID) bool {
	return id >= 0 && int(id) < len(t.nodes)
}

// Walk visits every node in document order (pre-order). fn receives the
// nesting depth, zero for top-level entries. Returning false from fn skips
// the node's children.
func (t *Tree) Walk(fn func(id ID, depth int) bool) {
	var visit func(ids []ID, depth int)
	visit = func(ids []ID, depth int) {
		for _, id := range ids {
			if fn(id, depth) {
				visit(t.nodes[id].Children, depth+1)
			}
		}
	}
	visit(t.roots, 0)
}

// Links returns the IDs of every node with an href, in document order.
func (t *Tree) Links() []ID {
	var links []ID
	t.Walk(func(id ID, _ int) bool {
		if t.nodes[id].Href != "" {
			links = append(links, id)
		}
		return true
	})
	return links
}

// Ancestors returns the parents of id from the nearest up to the top level.
func (t *Tree) Ancestors(id ID) []ID {
	if !t.valid(id) {
		return nil
	}
	var out []ID
	for p := t.nodes[id].Parent; p != None; p = t.nodes[p].Parent {
		out = append(out, p)
	}
	return out
}

// ApplyFold sets the default expansion of every node that has children:
// nodes shallower than level are expanded, deeper ones collapsed. A negative
// level expands everything.
func (t *Tree) ApplyFold(level int) {
	t.Walk(func(id ID, depth int) bool {
		if t.nodes[id].HasChildren() {
			t.nodes[id].Expanded = level < 0 || depth < level
		}
		return true
	})
}
