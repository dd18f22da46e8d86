package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/booknav/internal/config"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "booknav",
	Short: "Server-side navigation sidebar for static books",
	Long: `Booknav computes the navigation sidebar of a static book for every page:
which chapter is current, which sections are expanded, where relative links
point from the page's depth, and how the sidebar scrolls when the page loads.
It can print the sidebar for a single page or serve the whole book with the
sidebar injected into every HTML page.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.ConfigFile, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
