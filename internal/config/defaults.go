package config

import (
	"os"
	"path/filepath"
	"time"
)

// Default values for the [judge] and [cache] sections.
const (
	DefaultBaseURL      = "http://127.0.0.1:8080"
	DefaultTimeout      = 60 * time.Second
	DefaultPollInterval = time.Second
	DefaultCacheTTL     = 24 * time.Hour
)

// defaultLanguages maps judge language names to the file patterns that
// identify them.
var defaultLanguages = map[string][]string{
	"bash":       {"**/*.sh"},
	"c":          {"**/*.c"},
	"cpp":        {"**/*.cpp", "**/*.cc", "**/*.cxx"},
	"csharp":     {"**/*.cs"},
	"golang":     {"**/*.go"},
	"java":       {"**/*.java"},
	"javascript": {"**/*.js"},
	"kotlin":     {"**/*.kt"},
	"python3":    {"**/*.py"},
	"ruby":       {"**/*.rb"},
	"rust":       {"**/*.rs"},
	"swift":      {"**/*.swift"},
	"typescript": {"**/*.ts"},
}

// NewDefaults returns a Config populated with all default values.
func NewDefaults() *Config {
	enabled := true
	langs := make(map[string]LanguageConfig, len(defaultLanguages))
	for name, patterns := range defaultLanguages {
		langs[name] = LanguageConfig{Patterns: append([]string(nil), patterns...)}
	}
	return &Config{
		Judge: JudgeConfig{
			BaseURL:      DefaultBaseURL,
			Timeout:      DefaultTimeout,
			PollInterval: DefaultPollInterval,
		},
		Cache: CacheConfig{
			Enabled: &enabled,
			Dir:     defaultCacheDir(),
			TTL:     DefaultCacheTTL,
		},
		Languages: langs,
	}
}

// defaultCacheDir places the cache under the user cache directory, falling
// back to a dot directory in the working directory.
func defaultCacheDir() string {
	base, err := os.UserCacheDir()
	if err != nil || base == "" {
		return filepath.Join(".drill", "cache")
	}
	return filepath.Join(base, "drill", "exercises")
}
