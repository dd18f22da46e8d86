package cmd

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/booknav/internal/server"
	"github.com/ziadkadry99/booknav/internal/sidebar"
)

var (
	renderURL    string
	renderPrefix string
	renderFormat string
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Print the sidebar computed for one page",
	Long: `Computes the sidebar for the page at --url and prints it as HTML markup
or as a JSON view. The root prefix is derived from the page depth unless
--prefix is given. Nothing is persisted, so the scroll plan never restores.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		tree, err := loadTree(cfg)
		if err != nil {
			return err
		}

		prefix := renderPrefix
		if !cmd.Flags().Changed("prefix") {
			p := renderURL
			if u, err := url.Parse(renderURL); err == nil {
				p = u.Path
			}
			prefix = server.RootPrefix(p)
		}

		c := sidebar.New(sidebar.Options{
			Tree:         tree,
			CurrentURL:   renderURL,
			RootPrefix:   prefix,
			AliasLanding: cfg.Sidebar.AliasLanding,
		})

		switch renderFormat {
		case "html":
			fmt.Print(c.Render())
		case "json":
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(c.View())
		default:
			return fmt.Errorf("unknown format %q: must be html or json", renderFormat)
		}

		if verbose {
			if id, ok := c.Active(); ok {
				fmt.Fprintf(os.Stderr, "Active: %s (%d)\n", tree.Node(id).Label, id)
			} else {
				fmt.Fprintln(os.Stderr, "Active: none")
			}
		}
		return nil
	},
}

func init() {
	renderCmd.Flags().StringVar(&renderURL, "url", "", "address of the page, e.g. /concepts/cps.html")
	renderCmd.Flags().StringVar(&renderPrefix, "prefix", "", "relative path from the page to the book root")
	renderCmd.Flags().StringVarP(&renderFormat, "format", "f", "html", "output format: html or json")
	renderCmd.MarkFlagRequired("url")
	rootCmd.AddCommand(renderCmd)
}
