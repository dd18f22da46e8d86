package sidebar

import (
	"fmt"
	"html"
	"strings"

	"github.com/ziadkadry99/booknav/internal/nav"
)

// Render returns the sidebar as nested list markup. Sections own their
// nested <ol> directly; entries with children carry a toggle control.
// Rendering has no side effects and returns the same markup every time
// until Toggle changes the state.
func (c *Controller) Render() string {
	var b strings.Builder
	b.WriteString(`<ol class="chapter">` + "\n")
	c.renderChildren(&b, c.tree.Roots())
	b.WriteString("</ol>\n")
	return b.String()
}

func (c *Controller) renderChildren(b *strings.Builder, ids []nav.ID) {
	for _, id := range ids {
		c.renderItem(b, id)
	}
}

func (c *Controller) renderItem(b *strings.Builder, id nav.ID) {
	n := c.tree.Node(id)
	st := c.state[id]

	if n.Kind == nav.KindSeparator {
		b.WriteString(`<li class="spacer"></li>` + "\n")
		return
	}
	if n.Kind == nav.KindHeader && !n.HasChildren() {
		fmt.Fprintf(b, `<li class="part-title" data-nav-id="%d">%s</li>`+"\n", id, html.EscapeString(n.Label))
		return
	}

	class := "chapter-item"
	if st.expanded {
		class += " expanded"
	}
	fmt.Fprintf(b, `<li class="%s" data-nav-id="%d">`, class, id)

	if st.href != "" {
		active := ""
		if id == c.active {
			active = ` class="active" aria-current="page"`
		}
		fmt.Fprintf(b, `<a href="%s"%s>%s</a>`, html.EscapeString(st.href), active, html.EscapeString(n.Label))
	} else {
		fmt.Fprintf(b, `<span class="section-header">%s</span>`, html.EscapeString(n.Label))
	}

	if n.HasChildren() {
		fmt.Fprintf(b, `<a class="toggle" role="button" data-nav-id="%d" aria-expanded="%t"><div>❱</div></a>`, id, st.expanded)
		b.WriteString("\n" + `<ol class="section">` + "\n")
		c.renderChildren(b, n.Children)
		b.WriteString("</ol>\n")
	}
	b.WriteString("</li>\n")
}
