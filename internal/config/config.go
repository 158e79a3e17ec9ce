package config

import "time"

// Config is the top-level configuration structure mapping to drill.toml.
type Config struct {
	Judge     JudgeConfig               `toml:"judge"`
	Cache     CacheConfig               `toml:"cache"`
	Languages map[string]LanguageConfig `toml:"languages"`
}

// JudgeConfig maps to the [judge] section in drill.toml.
type JudgeConfig struct {
	BaseURL      string        `toml:"base_url"`
	Token        string        `toml:"token"`
	Timeout      time.Duration `toml:"timeout"`
	PollInterval time.Duration `toml:"poll_interval"`
}

// CacheConfig maps to the [cache] section in drill.toml. Enabled is a pointer
// so that an explicit "enabled = false" in the file can be told apart from an
// omitted key.
type CacheConfig struct {
	Enabled *bool         `toml:"enabled"`
	Dir     string        `toml:"dir"`
	TTL     time.Duration `toml:"ttl"`
}

// IsEnabled reports whether the exercise cache is switched on.
func (c CacheConfig) IsEnabled() bool {
	return c.Enabled != nil && *c.Enabled
}

// LanguageConfig maps to a [languages.<name>] section in drill.toml. Patterns
// are doublestar globs matched against the solution file path.
type LanguageConfig struct {
	Patterns []string `toml:"patterns"`
}
