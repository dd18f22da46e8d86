package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ziadkadry99/booknav/internal/nav"
)

var treeYAML bool

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Print the navigation tree",
	Long: `Loads the table of contents named in the config and prints its outline.
With --yaml the tree is written in the YAML table-of-contents format, which
converts any supported source into an editable toc.yml.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		exitOnError(err)
		tree, err := loadTree(cfg)
		exitOnError(err)

		if treeYAML {
			enc := yaml.NewEncoder(os.Stdout)
			enc.SetIndent(2)
			exitOnError(enc.Encode(tree))
			exitOnError(enc.Close())
			return
		}

		fmt.Print(outline(tree))
		if verbose {
			fmt.Fprintf(os.Stderr, "%d entries, %d links\n", tree.Len(), len(tree.Links()))
		}
	},
}

// outline renders the tree one entry per line, indented by depth.
func outline(tree *nav.Tree) string {
	var b strings.Builder
	tree.Walk(func(id nav.ID, depth int) bool {
		n := tree.Node(id)
		b.WriteString(strings.Repeat("  ", depth))
		switch {
		case n.Kind == nav.KindSeparator:
			b.WriteString("---")
		case n.Href == "":
			fmt.Fprintf(&b, "# %s", n.Label)
		default:
			fmt.Fprintf(&b, "%s -> %s", n.Label, n.Href)
		}
		if n.Expanded && n.HasChildren() {
			b.WriteString(" [expanded]")
		}
		b.WriteString("\n")
		return true
	})
	return b.String()
}

func init() {
	treeCmd.Flags().BoolVar(&treeYAML, "yaml", false, "print the tree as toc.yml")
	rootCmd.AddCommand(treeCmd)
}
