package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
)

// ConfigFile is the default config file name written by the wizard.
const ConfigFile = ".booknav.yml"

// tocCandidates are the table-of-contents locations probed for a default,
// in order of preference.
var tocCandidates = []string{
	"src/SUMMARY.md",
	"SUMMARY.md",
	"toc.yml",
	"book/toc.html",
}

// bookDirCandidates are the rendered-output directories probed for a default.
var bookDirCandidates = []string{"book", "site", "public", "_site"}

// detectLayout checks the current directory for a familiar book layout.
func detectLayout() (toc string, bookDir string) {
	toc, bookDir = "src/SUMMARY.md", "book"
	for _, c := range tocCandidates {
		if _, err := os.Stat(c); err == nil {
			toc = c
			break
		}
	}
	for _, c := range bookDirCandidates {
		if info, err := os.Stat(c); err == nil && info.IsDir() {
			bookDir = c
			break
		}
	}
	return toc, bookDir
}

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to .booknav.yml.
func RunWizard() (*Config, error) {
	fmt.Println("Welcome to booknav! Let's configure your book.")
	fmt.Println()

	defaultTOC, defaultBookDir := detectLayout()
	if _, err := os.Stat(defaultTOC); err == nil {
		fmt.Printf("Detected table of contents: %s\n\n", defaultTOC)
	}

	cfg := DefaultConfig()

	// 1. Book title.
	titlePrompt := promptui.Prompt{
		Label:   "Book title",
		Default: filepath.Base(mustGetwd()),
	}
	title, err := titlePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("title: %w", err)
	}
	cfg.Title = title

	// 2. Rendered book directory.
	bookPrompt := promptui.Prompt{
		Label:   "Directory containing the rendered book",
		Default: defaultBookDir,
	}
	cfg.BookDir, err = bookPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("book dir: %w", err)
	}

	// 3. Table of contents source.
	tocPrompt := promptui.Prompt{
		Label:   "Table of contents (file or directory)",
		Default: defaultTOC,
	}
	cfg.TOC, err = tocPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("toc: %w", err)
	}

	// 4. Extra exclude patterns, only meaningful for directory trees.
	excludePrompt := promptui.Prompt{
		Label:   "Extra exclude patterns (comma-separated, leave blank for defaults)",
		Default: "",
	}
	excludeStr, err := excludePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("exclude patterns: %w", err)
	}
	if excludeStr != "" {
		cfg.Exclude = append(cfg.Exclude, splitAndTrim(excludeStr)...)
	}

	// 5. Session backend.
	backendPrompt := promptui.Select{
		Label: "Where should sidebar scroll positions be kept",
		Items: []string{
			"memory: lost when the server stops",
			"sqlite: survives restarts",
		},
	}
	idx, _, err := backendPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("session backend: %w", err)
	}
	cfg.Session.Backend = []SessionBackend{SessionMemory, SessionSQLite}[idx]

	// 6. Port.
	portPrompt := promptui.Prompt{
		Label:   "Port for booknav serve",
		Default: strconv.Itoa(cfg.Server.Port),
		Validate: func(s string) error {
			n, err := strconv.Atoi(s)
			if err != nil || n <= 0 || n > 65535 {
				return fmt.Errorf("enter a port between 1 and 65535")
			}
			return nil
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	cfg.Server.Port, _ = strconv.Atoi(portStr)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := cfg.Save(ConfigFile); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", ConfigFile)
	return cfg, nil
}

func mustGetwd() string {
	wd, err := os.Getwd()
	if err != nil {
		return "book"
	}
	return wd
}

// splitAndTrim splits a comma-separated string and trims whitespace.
func splitAndTrim(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if token := strings.TrimSpace(part); token != "" {
			result = append(result, token)
		}
	}
	return result
}
