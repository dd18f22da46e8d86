package config

// SessionBackend selects where scroll offsets are kept between page loads.
type SessionBackend string

const (
	SessionMemory SessionBackend = "memory"
	SessionSQLite SessionBackend = "sqlite"
)

// Config is the top-level booknav configuration, corresponding to .booknav.yml.
type Config struct {
	Title     string        `yaml:"title" koanf:"title"`
	BookDir   string        `yaml:"book_dir" koanf:"book_dir"`
	TOC       string        `yaml:"toc" koanf:"toc"`
	TOCFormat string        `yaml:"toc_format" koanf:"toc_format"`
	Include   []string      `yaml:"include" koanf:"include"`
	Exclude   []string      `yaml:"exclude" koanf:"exclude"`
	Sidebar   SidebarConfig `yaml:"sidebar" koanf:"sidebar"`
	Server    ServerConfig  `yaml:"server" koanf:"server"`
	Session   SessionConfig `yaml:"session" koanf:"session"`
}

// SidebarConfig controls how the navigation sidebar is computed and placed.
type SidebarConfig struct {
	AliasLanding bool   `yaml:"alias_landing" koanf:"alias_landing"`
	StorageKey   string `yaml:"storage_key" koanf:"storage_key"`
	ContainerID  string `yaml:"container_id" koanf:"container_id"`

	// FoldLevel expands sections shallower than this depth by default.
	// Negative keeps the expansion recorded in the table of contents.
	FoldLevel int `yaml:"fold_level" koanf:"fold_level"`
}

// ServerConfig holds settings for `booknav serve`.
type ServerConfig struct {
	Port            int  `yaml:"port" koanf:"port"`
	AllowAllOrigins bool `yaml:"allow_all_origins" koanf:"allow_all_origins"`
	Watch           bool `yaml:"watch" koanf:"watch"`
}

// SessionConfig holds session storage settings.
type SessionConfig struct {
	Backend SessionBackend `yaml:"backend" koanf:"backend"`
	DataDir string         `yaml:"data_dir" koanf:"data_dir"`
	Cookie  string         `yaml:"cookie" koanf:"cookie"`
}
