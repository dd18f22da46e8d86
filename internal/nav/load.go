package nav

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Format names a navigation tree source format.
type Format string

const (
	FormatAuto    Format = "auto"
	FormatHTML    Format = "html"
	FormatSummary Format = "summary"
	FormatYAML    Format = "yaml"
	FormatDir     Format = "dir"
)

// ErrUnknownFormat is returned when a source format cannot be determined.
var ErrUnknownFormat = errors.New("nav: unknown tree format")

// ParseFormat validates a format name. The empty string means FormatAuto.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatAuto, nil
	case FormatAuto, FormatHTML, FormatSummary, FormatYAML, FormatDir:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// LoadOptions controls how a tree source is read.
type LoadOptions struct {
	Format  Format
	Include []string // Glob patterns for FormatDir; empty means every page.
	Exclude []string // Glob patterns for FormatDir.
}

// DetectFormat picks a format from the source path: directories are walked,
// .html/.htm files hold nav markup, .md files are SUMMARY-style lists and
// .yml/.yaml files are YAML trees.
func DetectFormat(path string) (Format, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("accessing %s: %w", path, err)
	}
	if info.IsDir() {
		return FormatDir, nil
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return FormatHTML, nil
	case ".md", ".markdown":
		return FormatSummary, nil
	case ".yml", ".yaml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: cannot infer from %s", ErrUnknownFormat, path)
}

// Load reads a navigation tree from path.
func Load(path string, opts LoadOptions) (*Tree, error) {
	format := opts.Format
	if format == "" || format == FormatAuto {
		detected, err := DetectFormat(path)
		if err != nil {
			return nil, err
		}
		format = detected
	}

	if format == FormatDir {
		return LoadDir(path, opts.Include, opts.Exclude)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening tree source: %w", err)
	}
	defer f.Close()

	var tree *Tree
	switch format {
	case FormatHTML:
		tree, err = ParseMarkup(f)
	case FormatSummary:
		tree, err = ParseSummary(f)
	case FormatYAML:
		tree, err = ParseYAML(f)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return tree, nil
}
