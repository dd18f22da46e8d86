package nav

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// yamlEntry is one entry of a YAML navigation file:
//
//	- label: Home
//	  href: index.html
//	- label: Concepts
//	  expanded: true
//	  children:
//	    - label: CPS
//	      href: concepts/cps.html
//	- separator: true
type yamlEntry struct {
	Label     string      `yaml:"label"`
	Href      string      `yaml:"href,omitempty"`
	Expanded  bool        `yaml:"expanded,omitempty"`
	Separator bool        `yaml:"separator,omitempty"`
	Children  []yamlEntry `yaml:"children,omitempty"`
}

// ParseYAML reads a navigation tree from a YAML list of entries.
func ParseYAML(r io.Reader) (*Tree, error) {
	var entries []yamlEntry
	if err := yaml.NewDecoder(r).Decode(&entries); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyTree
		}
		return nil, fmt.Errorf("decoding yaml tree: %w", err)
	}

	t := New()
	addYAML(t, None, entries)
	if t.Len() == 0 {
		return nil, ErrEmptyTree
	}
	return t, nil
}

func addYAML(t *Tree, parent ID, entries []yamlEntry) {
	for _, e := range entries {
		n := Node{Label: e.Label, Href: e.Href, Expanded: e.Expanded}
		switch {
		case e.Separator:
			n.Kind = KindSeparator
		case e.Href == "":
			n.Kind = KindHeader
		}
		id := t.Add(parent, n)
		addYAML(t, id, e.Children)
	}
}

// MarshalYAML encodes the tree in the format ParseYAML reads.
func (t *Tree) MarshalYAML() (interface{}, error) {
	var build func(ids []ID) []yamlEntry
	build = func(ids []ID) []yamlEntry {
		out := make([]yamlEntry, 0, len(ids))
		for _, id := range ids {
			n := t.nodes[id]
			out = append(out, yamlEntry{
				Label:     n.Label,
				Href:      n.Href,
				Expanded:  n.Expanded,
				Separator: n.Kind == KindSeparator,
				Children:  build(n.Children),
			})
		}
		return out
	}
	return build(t.roots), nil
}
