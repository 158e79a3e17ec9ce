package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/bmatcuk/doublestar/v4"
)

// ValidationSeverity indicates whether a validation issue is an error or warning.
type ValidationSeverity string

const (
	// SeverityError marks a configuration that cannot be used.
	SeverityError ValidationSeverity = "error"
	// SeverityWarning marks a configuration that works but looks wrong.
	SeverityWarning ValidationSeverity = "warning"
)

// ValidationIssue represents a single validation finding.
type ValidationIssue struct {
	Severity ValidationSeverity
	Field    string // dotted path, e.g. "judge.base_url"
	Message  string
}

// ValidationResult holds all validation findings.
type ValidationResult struct {
	Issues []ValidationIssue
}

// HasErrors returns true if any issue has error severity.
func (vr *ValidationResult) HasErrors() bool {
	return len(vr.Errors()) > 0
}

// Errors returns only error-severity issues.
func (vr *ValidationResult) Errors() []ValidationIssue {
	return vr.filter(SeverityError)
}

// Warnings returns only warning-severity issues.
func (vr *ValidationResult) Warnings() []ValidationIssue {
	return vr.filter(SeverityWarning)
}

func (vr *ValidationResult) filter(sev ValidationSeverity) []ValidationIssue {
	var out []ValidationIssue
	for _, issue := range vr.Issues {
		if issue.Severity == sev {
			out = append(out, issue)
		}
	}
	return out
}

// Validate checks a resolved configuration. meta may be nil when no file was
// loaded; otherwise undecoded keys are reported as warnings.
func Validate(cfg *Config, meta *toml.MetaData) *ValidationResult {
	vr := &ValidationResult{}
	if cfg == nil {
		addError(vr, "", "configuration is nil")
		return vr
	}

	validateJudge(vr, &cfg.Judge)
	validateCache(vr, &cfg.Cache)
	validateLanguages(vr, cfg.Languages)
	validateUnknownKeys(vr, meta)

	return vr
}

func validateJudge(vr *ValidationResult, j *JudgeConfig) {
	if j.BaseURL == "" {
		addError(vr, "judge.base_url", "must not be empty")
	} else if u, err := url.Parse(j.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		addError(vr, "judge.base_url",
			fmt.Sprintf("invalid URL %q; must be an absolute http or https URL", j.BaseURL))
	}

	if j.Timeout <= 0 {
		addError(vr, "judge.timeout", "must be positive")
	}
	if j.PollInterval <= 0 {
		addError(vr, "judge.poll_interval", "must be positive")
	} else if j.Timeout > 0 && j.PollInterval >= j.Timeout {
		addWarning(vr, "judge.poll_interval",
			fmt.Sprintf("poll interval %s is not shorter than timeout %s; at most one check will run", j.PollInterval, j.Timeout))
	}
}

func validateCache(vr *ValidationResult, c *CacheConfig) {
	if !c.IsEnabled() {
		return
	}
	if c.Dir == "" {
		addError(vr, "cache.dir", "must not be empty when the cache is enabled")
	}
	if c.TTL < 0 {
		addError(vr, "cache.ttl", "must not be negative")
	}
}

func validateLanguages(vr *ValidationResult, langs map[string]LanguageConfig) {
	if len(langs) == 0 {
		addWarning(vr, "languages", "no languages configured; every file will be rejected")
	}
	for name, lang := range langs {
		prefix := "languages." + name
		if len(lang.Patterns) == 0 {
			addWarning(vr, prefix+".patterns", "no patterns; language can never be detected")
		}
		for i, p := range lang.Patterns {
			if !doublestar.ValidatePattern(p) {
				addError(vr, fmt.Sprintf("%s.patterns[%d]", prefix, i),
					fmt.Sprintf("invalid glob %q", p))
			}
		}
	}
}

func validateUnknownKeys(vr *ValidationResult, meta *toml.MetaData) {
	if meta == nil {
		return
	}
	for _, key := range meta.Undecoded() {
		addWarning(vr, strings.Join(key, "."), "unknown configuration key")
	}
}

func addError(vr *ValidationResult, field, message string) {
	vr.Issues = append(vr.Issues, ValidationIssue{Severity: SeverityError, Field: field, Message: message})
}

func addWarning(vr *ValidationResult, field, message string) {
	vr.Issues = append(vr.Issues, ValidationIssue{Severity: SeverityWarning, Field: field, Message: message})
}
