// Package sidebar computes the per-page state of a book's navigation
// sidebar: which entry is the current page, which sections are expanded,
// where relative links point from the page's depth, and how the sidebar
// should scroll when the page loads.
package sidebar

import (
	"strings"

	"github.com/ziadkadry99/booknav/internal/nav"
)

// StorageCell holds the one scroll offset that survives a single navigation.
// Take returns the stored value and clears it.
type StorageCell interface {
	Take() (offset int, ok bool)
	Put(offset int)
}

// Options are the inputs of one page load.
type Options struct {
	Tree       *nav.Tree
	CurrentURL string      // Browser address of the page, query and fragment allowed.
	RootPrefix string      // Relative path from the page back to the book root, e.g. "../".
	Storage    StorageCell // Optional; without it scroll is never restored.

	// AliasLanding treats the first link as active on the root landing page
	// (empty RootPrefix, URL ending in /index.html) even if its href differs.
	AliasLanding bool
}

// PageContext is the resolved identity of the page being displayed.
type PageContext struct {
	CurrentURL string `json:"current_url"`
	RootPrefix string `json:"root_prefix"`
}

type entryState struct {
	href     string // Href after root prefix rewriting.
	expanded bool
}

// Controller holds the sidebar state for one page load. It is not safe for
// concurrent use; create one per request.
type Controller struct {
	tree   *nav.Tree
	page   PageContext
	cell   StorageCell
	alias  bool
	state  []entryState
	active nav.ID
	scroll ScrollPlan
}

// New builds the sidebar for a page: links are rewritten, the active entry
// is marked and its sections expanded, and any persisted scroll offset is
// consumed.
func New(opts Options) *Controller {
	tree := opts.Tree
	if tree == nil {
		tree = nav.New()
	}
	c := &Controller{
		tree: tree,
		page: PageContext{
			CurrentURL: NormalizeURL(opts.CurrentURL),
			RootPrefix: opts.RootPrefix,
		},
		cell:   opts.Storage,
		alias:  opts.AliasLanding,
		state:  make([]entryState, tree.Len()),
		active: nav.None,
	}

	c.rewriteLinks()
	c.markActive()
	c.scroll = c.planScroll()
	return c
}

func (c *Controller) rewriteLinks() {
	for i := range c.state {
		n := c.tree.Node(nav.ID(i))
		c.state[i] = entryState{
			href:     RewriteHref(c.page.RootPrefix, n.Href),
			expanded: n.Expanded,
		}
	}
}

// markActive finds the first link whose resolved address is the current
// page and expands it together with every section above it.
func (c *Controller) markActive() {
	current := resolve(c.page.CurrentURL, "")
	landing := c.alias && c.page.RootPrefix == "" &&
		(strings.HasSuffix(current, "/"+DefaultDocument) || current == DefaultDocument)

	for i, id := range c.tree.Links() {
		if resolve(c.page.CurrentURL, c.state[id].href) == current || (i == 0 && landing) {
			c.active = id
			break
		}
	}
	if c.active == nav.None {
		return
	}

	c.state[c.active].expanded = true
	for _, id := range c.tree.Ancestors(c.active) {
		c.state[id].expanded = true
	}
}

// Page returns the normalized page identity.
func (c *Controller) Page() PageContext { return c.page }

// Tree returns the tree the controller renders.
func (c *Controller) Tree() *nav.Tree { return c.tree }

// Active returns the active entry, if any page matched.
func (c *Controller) Active() (nav.ID, bool) {
	return c.active, c.active != nav.None
}

// IsActive reports whether id is the active entry.
func (c *Controller) IsActive(id nav.ID) bool {
	return id != nav.None && id == c.active
}

// IsExpanded reports whether the entry currently shows its children.
func (c *Controller) IsExpanded(id nav.ID) bool {
	if !c.valid(id) {
		return false
	}
	return c.state[id].expanded
}

// Href returns the rewritten href of an entry.
func (c *Controller) Href(id nav.ID) string {
	if !c.valid(id) {
		return ""
	}
	return c.state[id].href
}

// Toggle flips the expansion of the section owning id: id itself when it
// has children, otherwise its parent. It reports whether anything changed.
func (c *Controller) Toggle(id nav.ID) bool {
	n, ok := c.tree.Lookup(id)
	if !ok {
		return false
	}
	target := id
	if !n.HasChildren() {
		target = n.Parent
	}
	if target == nav.None {
		return false
	}
	c.state[target].expanded = !c.state[target].expanded
	return true
}

// ActivateLink records the sidebar's scroll offset right before the user
// follows a link in it, so the next page can restore it.
func (c *Controller) ActivateLink(offset int) {
	if c.cell == nil {
		return
	}
	if offset < 0 {
		offset = 0
	}
	c.cell.Put(offset)
}

func (c *Controller) valid(id nav.ID) bool {
	return id >= 0 && int(id) < len(c.state)
}
