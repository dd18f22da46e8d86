package nav

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// skipDirs are directory names never turned into sections.
var skipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"theme":        true,
	"css":          true,
	"js":           true,
	"fonts":        true,
}

// fileTree is the intermediate shape used while grouping paths by directory.
type fileTree struct {
	Name     string
	Title    string
	Path     string
	IsDir    bool
	Children []*fileTree
}

// LoadDir builds a navigation tree from the .md and .html pages under root.
// Directories become section headers, pages become links to their .html
// output. Include and exclude are doublestar globs matched against the
// slash-separated relative path and against the base name.
func LoadDir(root string, include, exclude []string) (*Tree, error) {
	titles := make(map[string]string)
	var paths []string

	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != root && (skipDirs[d.Name()] || strings.HasPrefix(d.Name(), ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		ext := filepath.Ext(p)
		if ext != ".md" && ext != ".html" {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if strings.EqualFold(filepath.Base(rel), "SUMMARY.md") {
			return nil
		}
		if len(include) > 0 && !matchesAny(rel, include) {
			return nil
		}
		if matchesAny(rel, exclude) {
			return nil
		}
		if ext == ".md" {
			titles[rel] = extractTitle(p, rel)
		}
		paths = append(paths, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	paths = dropRendered(paths)
	if len(paths) == 0 {
		return nil, ErrEmptyTree
	}

	return BuildFromPaths(paths, titles), nil
}

// dropRendered removes .html pages that a .md source in the same walk
// already renders to, so a book with its output alongside lists each
// chapter once.
func dropRendered(paths []string) []string {
	sources := make(map[string]bool)
	for _, p := range paths {
		if filepath.Ext(p) == ".md" {
			sources[chapterHref(p)] = true
		}
	}
	kept := paths[:0]
	for _, p := range paths {
		if filepath.Ext(p) == ".html" && sources[p] {
			continue
		}
		kept = append(kept, p)
	}
	return kept
}

// BuildFromPaths groups slash-separated page paths into a navigation tree.
// titles optionally maps a path to its display label.
func BuildFromPaths(paths []string, titles map[string]string) *Tree {
	root := &fileTree{Name: "book", IsDir: true}

	for _, p := range paths {
		p = filepath.ToSlash(p)
		parts := strings.Split(p, "/")
		current := root
		for i, part := range parts {
			isLast := i == len(parts)-1
			var next *fileTree
			for _, child := range current.Children {
				if child.Name == part && child.IsDir == !isLast {
					next = child
					break
				}
			}
			if next == nil {
				next = &fileTree{Name: part, IsDir: !isLast}
				if isLast {
					next.Path = p
					next.Title = titles[p]
				} else {
					next.Path = strings.Join(parts[:i+1], "/")
					next.Title = formatDirName(part)
				}
				current.Children = append(current.Children, next)
			}
			current = next
		}
	}

	sortTree(root)

	t := New()
	var add func(parent ID, node *fileTree)
	add = func(parent ID, node *fileTree) {
		for _, child := range node.Children {
			if child.IsDir {
				id := t.Add(parent, Node{Label: child.Title, Kind: KindHeader})
				add(id, child)
				continue
			}
			label := child.Title
			if label == "" {
				label = cleanDisplayName(child.Name)
			}
			t.Add(parent, Node{Label: label, Href: chapterHref(child.Path)})
		}
	}
	add(None, root)
	return t
}

// sortTree orders children index page first, then directories, then files,
// each group alphabetically.
func sortTree(node *fileTree) {
	rank := func(n *fileTree) int {
		switch {
		case !n.IsDir && isIndexPage(n.Name):
			return 0
		case n.IsDir:
			return 1
		default:
			return 2
		}
	}
	sort.SliceStable(node.Children, func(i, j int) bool {
		ri, rj := rank(node.Children[i]), rank(node.Children[j])
		if ri != rj {
			return ri < rj
		}
		return node.Children[i].Name < node.Children[j].Name
	})
	for _, child := range node.Children {
		if child.IsDir {
			sortTree(child)
		}
	}
}

func isIndexPage(name string) bool {
	switch strings.ToLower(name) {
	case "index.md", "index.html", "readme.md":
		return true
	}
	return false
}

// matchesAny checks relPath, then its base name, against each glob.
func matchesAny(relPath string, patterns []string) bool {
	for _, pattern := range patterns {
		pattern = filepath.ToSlash(pattern)
		if ok, err := doublestar.Match(pattern, relPath); err == nil && ok {
			return true
		}
		if ok, err := doublestar.Match(pattern, filepath.Base(relPath)); err == nil && ok {
			return true
		}
	}
	return false
}

// extractTitle returns the first "# " heading of a markdown file, falling
// back to the cleaned file name.
func extractTitle(absPath, relPath string) string {
	f, err := os.Open(absPath)
	if err != nil {
		return cleanDisplayName(filepath.Base(relPath))
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "# "))
		}
	}
	return cleanDisplayName(filepath.Base(relPath))
}

// cleanDisplayName strips the page extension from a file name.
func cleanDisplayName(name string) string {
	name = strings.TrimSuffix(name, ".md")
	return strings.TrimSuffix(name, ".html")
}

// formatDirName converts a directory slug to a human-readable label.
func formatDirName(name string) string {
	words := strings.FieldsFunc(name, func(c rune) bool {
		return c == '-' || c == '_'
	})
	for i, w := range words {
		if len(w) > 0 {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
