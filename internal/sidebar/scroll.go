package sidebar

import (
	"fmt"

	"github.com/ziadkadry99/booknav/internal/nav"
)

// StorageKey is the session storage key the scroll offset is kept under.
const StorageKey = "sidebar-scroll"

// ScrollMode says what the sidebar container should do after the page loads.
type ScrollMode int

const (
	// ScrollNone leaves the container where the browser put it.
	ScrollNone ScrollMode = iota
	// ScrollRestore sets the container offset to a persisted value.
	ScrollRestore
	// ScrollCenter scrolls the active entry to the middle of the container.
	ScrollCenter
)

func (m ScrollMode) String() string {
	switch m {
	case ScrollNone:
		return "none"
	case ScrollRestore:
		return "restore"
	case ScrollCenter:
		return "center"
	default:
		return fmt.Sprintf("ScrollMode(%d)", int(m))
	}
}

// MarshalText encodes the mode by name for JSON views and data attributes.
func (m ScrollMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// ScrollPlan is the scroll action for the page load.
type ScrollPlan struct {
	Mode   ScrollMode `json:"mode"`
	Offset int        `json:"offset,omitempty"` // Set for ScrollRestore.
	Target nav.ID     `json:"target"`           // Active entry for ScrollCenter, nav.None otherwise.
}

// planScroll consumes the persisted offset. A stored value wins; without
// one the active entry, if any, is centered.
func (c *Controller) planScroll() ScrollPlan {
	if c.cell != nil {
		if offset, ok := c.cell.Take(); ok {
			return ScrollPlan{Mode: ScrollRestore, Offset: offset, Target: nav.None}
		}
	}
	if c.active != nav.None {
		return ScrollPlan{Mode: ScrollCenter, Target: c.active}
	}
	return ScrollPlan{Mode: ScrollNone, Target: nav.None}
}

// ScrollPlan returns the scroll action decided when the controller was built.
func (c *Controller) ScrollPlan() ScrollPlan { return c.scroll }
