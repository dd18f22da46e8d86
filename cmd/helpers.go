package cmd

import (
	"fmt"

	"github.com/ziadkadry99/booknav/internal/config"
	"github.com/ziadkadry99/booknav/internal/nav"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `booknav init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// loadTree reads the navigation tree named by the config and applies the
// configured default folding. A negative fold level keeps the expansion
// state recorded in the source.
func loadTree(cfg *config.Config) (*nav.Tree, error) {
	tree, err := nav.Load(cfg.TOC, cfg.LoadOptions())
	if err != nil {
		return nil, fmt.Errorf("loading navigation from %s: %w", cfg.TOC, err)
	}
	if cfg.Sidebar.FoldLevel >= 0 {
		tree.ApplyFold(cfg.Sidebar.FoldLevel)
	}
	return tree, nil
}
