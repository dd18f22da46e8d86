package sidebar

import (
	"github.com/ziadkadry99/booknav/internal/nav"
)

// Entry is one rendered navigation entry.
type Entry struct {
	ID       nav.ID  `json:"id"`
	Label    string  `json:"label,omitempty"`
	Href     string  `json:"href,omitempty"`
	Kind     string  `json:"kind"`
	Active   bool    `json:"active,omitempty"`
	Expanded bool    `json:"expanded,omitempty"`
	Toggle   bool    `json:"toggle,omitempty"`
	Children []Entry `json:"children,omitempty"`
}

// Link is a prev/next chapter target.
type Link struct {
	ID    nav.ID `json:"id"`
	Label string `json:"label"`
	Href  string `json:"href"`
}

// View is the complete sidebar state of a page, suitable for JSON.
type View struct {
	Page    PageContext `json:"page"`
	Entries []Entry     `json:"entries"`
	Active  nav.ID      `json:"active"`
	Scroll  ScrollPlan  `json:"scroll"`
	Prev    *Link       `json:"prev,omitempty"`
	Next    *Link       `json:"next,omitempty"`
}

// View returns the structured sidebar state.
func (c *Controller) View() View {
	prev, next := c.PrevNext()
	return View{
		Page:    c.page,
		Entries: c.entries(c.tree.Roots()),
		Active:  c.active,
		Scroll:  c.scroll,
		Prev:    prev,
		Next:    next,
	}
}

func (c *Controller) entries(ids []nav.ID) []Entry {
	out := make([]Entry, 0, len(ids))
	for _, id := range ids {
		n := c.tree.Node(id)
		out = append(out, Entry{
			ID:       id,
			Label:    n.Label,
			Href:     c.state[id].href,
			Kind:     n.Kind.String(),
			Active:   id == c.active,
			Expanded: c.state[id].expanded,
			Toggle:   n.HasChildren(),
			Children: c.entries(n.Children),
		})
	}
	return out
}

// PrevNext returns the chapters before and after the active one in reading
// order. External links are not chapters and are skipped.
func (c *Controller) PrevNext() (prev, next *Link) {
	if c.active == nav.None {
		return nil, nil
	}

	var chapters []nav.ID
	for _, id := range c.tree.Links() {
		if IsRelativeLink(c.tree.Node(id).Href) {
			chapters = append(chapters, id)
		}
	}

	for i, id := range chapters {
		if id != c.active {
			continue
		}
		if i > 0 {
			prev = c.link(chapters[i-1])
		}
		if i < len(chapters)-1 {
			next = c.link(chapters[i+1])
		}
		break
	}
	return prev, next
}

func (c *Controller) link(id nav.ID) *Link {
	return &Link{ID: id, Label: c.tree.Node(id).Label, Href: c.state[id].href}
}
