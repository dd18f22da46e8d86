package config

// DefaultExcludes are glob patterns never turned into navigation entries
// when the tree is built from the book directory.
var DefaultExcludes = []string{
	"404.html",
	"print.html",
	"toc.html",
	"**/_*",
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Title:     "Book",
		BookDir:   "book",
		TOC:       "src/SUMMARY.md",
		TOCFormat: "auto",
		Exclude:   append([]string(nil), DefaultExcludes...),
		Sidebar: SidebarConfig{
			AliasLanding: true,
			FoldLevel:    -1,
			StorageKey:   "sidebar-scroll",
			ContainerID:  "sidebar-scrollbox",
		},
		Server: ServerConfig{
			Port:  3000,
			Watch: true,
		},
		Session: SessionConfig{
			Backend: SessionMemory,
			DataDir: ".booknav",
			Cookie:  "booknav_session",
		},
	}
}
