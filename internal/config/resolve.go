package config

import (
	"sort"
	"strconv"
	"time"
)

// ConfigSource identifies where a configuration value came from.
type ConfigSource string

const (
	// SourceDefault indicates the value came from built-in defaults.
	SourceDefault ConfigSource = "default"
	// SourceFile indicates the value came from drill.toml.
	SourceFile ConfigSource = "file"
	// SourceEnv indicates the value came from an environment variable.
	SourceEnv ConfigSource = "env"
	// SourceCLI indicates the value came from a CLI flag.
	SourceCLI ConfigSource = "cli"
)

// Environment variables consulted by Resolve.
const (
	EnvBaseURL  = "DRILL_BASE_URL"
	EnvToken    = "DRILL_TOKEN"
	EnvTimeout  = "DRILL_TIMEOUT"
	EnvCacheDir = "DRILL_CACHE_DIR"
	EnvNoCache  = "DRILL_NO_CACHE"
)

// ResolvedConfig holds the merged configuration with source tracking.
type ResolvedConfig struct {
	Config  *Config
	Sources map[string]ConfigSource // dotted path, e.g. "judge.base_url"
	Path    string                  // config file used, empty if none
}

// CLIOverrides captures flag values that override configuration. A nil
// field means the flag was not given.
type CLIOverrides struct {
	BaseURL *string
	Timeout *time.Duration
	NoCache *bool
}

// EnvFunc looks up an environment variable. os.LookupEnv in production.
type EnvFunc func(key string) (string, bool)

// Resolve merges configuration in priority order:
// CLI flags > environment variables > config file > defaults.
// Any argument may be nil.
func Resolve(defaults *Config, fileConfig *Config, envFn EnvFunc, overrides *CLIOverrides) *ResolvedConfig {
	rc := &ResolvedConfig{
		Config:  &Config{Languages: map[string]LanguageConfig{}},
		Sources: make(map[string]ConfigSource),
	}
	if defaults == nil {
		defaults = &Config{}
	}
	if envFn == nil {
		envFn = func(string) (string, bool) { return "", false }
	}
	if overrides == nil {
		overrides = &CLIOverrides{}
	}

	mergeLayer(rc, defaults, SourceDefault, true)
	if fileConfig != nil {
		mergeLayer(rc, fileConfig, SourceFile, false)
	}
	resolveFromEnv(rc, envFn)
	resolveFromCLI(rc, overrides)

	return rc
}

// mergeLayer copies values from layer into rc. With force set every field is
// written (defaults); otherwise only non-zero values override.
func mergeLayer(rc *ResolvedConfig, layer *Config, src ConfigSource, force bool) {
	j := &rc.Config.Judge
	mergeString(&j.BaseURL, layer.Judge.BaseURL, "judge.base_url", src, rc.Sources, force)
	mergeString(&j.Token, layer.Judge.Token, "judge.token", src, rc.Sources, force)
	mergeDuration(&j.Timeout, layer.Judge.Timeout, "judge.timeout", src, rc.Sources, force)
	mergeDuration(&j.PollInterval, layer.Judge.PollInterval, "judge.poll_interval", src, rc.Sources, force)

	c := &rc.Config.Cache
	if layer.Cache.Enabled != nil || force {
		var enabled *bool
		if layer.Cache.Enabled != nil {
			v := *layer.Cache.Enabled
			enabled = &v
		}
		c.Enabled = enabled
		rc.Sources["cache.enabled"] = src
	}
	mergeString(&c.Dir, layer.Cache.Dir, "cache.dir", src, rc.Sources, force)
	mergeDuration(&c.TTL, layer.Cache.TTL, "cache.ttl", src, rc.Sources, force)

	// A language section in a later layer replaces that language's patterns
	// wholesale; other languages are kept.
	for name, lang := range layer.Languages {
		rc.Config.Languages[name] = LanguageConfig{Patterns: append([]string(nil), lang.Patterns...)}
		rc.Sources["languages."+name+".patterns"] = src
	}
}

func resolveFromEnv(rc *ResolvedConfig, envFn EnvFunc) {
	if v, ok := envFn(EnvBaseURL); ok && v != "" {
		rc.Config.Judge.BaseURL = v
		rc.Sources["judge.base_url"] = SourceEnv
	}
	if v, ok := envFn(EnvToken); ok && v != "" {
		rc.Config.Judge.Token = v
		rc.Sources["judge.token"] = SourceEnv
	}
	if v, ok := envFn(EnvTimeout); ok && v != "" {
		// Unparseable values are ignored here and left to Validate's
		// reporting of the surviving value.
		if d, err := time.ParseDuration(v); err == nil {
			rc.Config.Judge.Timeout = d
			rc.Sources["judge.timeout"] = SourceEnv
		}
	}
	if v, ok := envFn(EnvCacheDir); ok && v != "" {
		rc.Config.Cache.Dir = v
		rc.Sources["cache.dir"] = SourceEnv
	}
	if v, ok := envFn(EnvNoCache); ok && v != "" {
		if noCache, err := strconv.ParseBool(v); err == nil {
			enabled := !noCache
			rc.Config.Cache.Enabled = &enabled
			rc.Sources["cache.enabled"] = SourceEnv
		}
	}
}

func resolveFromCLI(rc *ResolvedConfig, overrides *CLIOverrides) {
	if overrides.BaseURL != nil {
		rc.Config.Judge.BaseURL = *overrides.BaseURL
		rc.Sources["judge.base_url"] = SourceCLI
	}
	if overrides.Timeout != nil {
		rc.Config.Judge.Timeout = *overrides.Timeout
		rc.Sources["judge.timeout"] = SourceCLI
	}
	if overrides.NoCache != nil && *overrides.NoCache {
		enabled := false
		rc.Config.Cache.Enabled = &enabled
		rc.Sources["cache.enabled"] = SourceCLI
	}
}

// LanguagePatterns flattens the [languages] table into name -> patterns.
func (c *Config) LanguagePatterns() map[string][]string {
	out := make(map[string][]string, len(c.Languages))
	for name, lang := range c.Languages {
		out[name] = append([]string(nil), lang.Patterns...)
	}
	return out
}

// LanguageNames returns the configured language names in sorted order.
func (c *Config) LanguageNames() []string {
	names := make([]string, 0, len(c.Languages))
	for name := range c.Languages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// --- Helpers ---

func mergeString(target *string, value, path string, src ConfigSource, sources map[string]ConfigSource, force bool) {
	if value != "" || force {
		*target = value
		sources[path] = src
	}
}

func mergeDuration(target *time.Duration, value time.Duration, path string, src ConfigSource, sources map[string]ConfigSource, force bool) {
	if value != 0 || force {
		*target = value
		sources[path] = src
	}
}
