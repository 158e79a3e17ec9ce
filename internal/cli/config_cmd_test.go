package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AbdelazizMoustafa10m/codedrill/internal/config"
)

// ---- helpers ----------------------------------------------------------------

// captureOutput runs Execute() with the provided args, capturing stdout and
// stderr. It returns (stdout, stderr, exitCode).
func captureOutput(t *testing.T, args ...string) (string, string, int) {
	t.Helper()

	oldStdout := os.Stdout
	oldStderr := os.Stderr
	rOut, wOut, err := os.Pipe()
	require.NoError(t, err)
	rErr, wErr, err := os.Pipe()
	require.NoError(t, err)

	os.Stdout = wOut
	os.Stderr = wErr
	t.Cleanup(func() {
		os.Stdout = oldStdout
		os.Stderr = oldStderr
	})

	rootCmd.SetArgs(args)

	code := Execute()

	wOut.Close()
	wErr.Close()

	var stdoutBuf, stderrBuf bytes.Buffer
	_, _ = stdoutBuf.ReadFrom(rOut)
	_, _ = stderrBuf.ReadFrom(rErr)

	os.Stdout = oldStdout
	os.Stderr = oldStderr

	return stdoutBuf.String(), stderrBuf.String(), code
}

// writeMinimalToml writes a drill.toml to dir and returns its path.
func writeMinimalToml(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "drill.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// chdirTemp switches into a fresh temp dir for the rest of the test.
func chdirTemp(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	origDir, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(tmpDir))
	t.Cleanup(func() { _ = os.Chdir(origDir) })
	return tmpDir
}

// ---- registration tests -----------------------------------------------------

func TestConfigCmd_Registration(t *testing.T) {
	found, _, err := rootCmd.Find([]string{"config"})
	require.NoError(t, err)
	assert.Equal(t, configCmd, found)

	var subs []string
	for _, cmd := range configCmd.Commands() {
		subs = append(subs, cmd.Use)
	}
	assert.ElementsMatch(t, []string{"debug", "validate"}, subs)
}

func TestConfigCmd_Metadata(t *testing.T) {
	assert.Equal(t, "config", configCmd.Use)
	assert.Equal(t, "Configuration management commands", configCmd.Short)
	assert.Contains(t, configCmd.Long, "drill")
	assert.Contains(t, configDebugCmd.Short, "resolved configuration")
	assert.Contains(t, configValidateCmd.Short, "Validate")
}

func TestConfigCmd_NoSubcommand_ShowsHelp(t *testing.T) {
	resetRootCmd(t)

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"config"})

	assert.Equal(t, 0, Execute())
	assert.Contains(t, buf.String(), "debug")
	assert.Contains(t, buf.String(), "validate")
}

// ---- configDebugCmd tests ---------------------------------------------------

func TestConfigDebugCmd_DefaultsOnly_NoFile(t *testing.T) {
	resetRootCmd(t)
	chdirTemp(t)

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"config", "debug"})

	assert.Equal(t, 0, Execute())
	output := buf.String()

	assert.Contains(t, output, "none found")
	assert.Contains(t, output, "(source: default)")
	assert.NotContains(t, output, "(source: file)")

	assert.Contains(t, output, "[judge]")
	assert.Contains(t, output, config.DefaultBaseURL)
	assert.Contains(t, output, "1m0s", "default timeout")
	assert.Contains(t, output, "[cache]")
	assert.Contains(t, output, "[languages.cpp]")
	assert.Contains(t, output, `"**/*.cpp"`)
}

func TestConfigDebugCmd_WithConfigFile(t *testing.T) {
	resetRootCmd(t)
	tmpDir := chdirTemp(t)
	writeMinimalToml(t, tmpDir, `
[judge]
base_url = "https://judge.example.com"
token = "s3cret"
timeout = "90s"
`)

	stdout, _, code := captureOutput(t, "config", "debug")

	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "drill.toml")
	assert.Contains(t, stdout, "https://judge.example.com")
	assert.Contains(t, stdout, "1m30s")
	assert.Contains(t, stdout, "(source: file)")
	assert.Contains(t, stdout, "(source: default)")
	assert.NotContains(t, stdout, "s3cret", "token is masked")
	assert.Contains(t, stdout, "********")
}

func TestConfigDebugCmd_EnvOverride(t *testing.T) {
	resetRootCmd(t)
	chdirTemp(t)
	t.Setenv(config.EnvBaseURL, "http://env-judge:9000")

	stdout, _, code := captureOutput(t, "config", "debug")

	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "http://env-judge:9000")
	assert.Contains(t, stdout, "(source: env)")
}

func TestConfigDebugCmd_WithExplicitConfigFlag(t *testing.T) {
	resetRootCmd(t)
	cfgPath := writeMinimalToml(t, t.TempDir(), `
[languages.zig]
patterns = ["**/*.zig"]
`)

	stdout, _, code := captureOutput(t, "--config", cfgPath, "config", "debug")

	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, cfgPath)
	assert.Contains(t, stdout, "[languages.zig]")
}

func TestConfigDebugCmd_ExplicitConfigFlag_FileNotFound(t *testing.T) {
	resetRootCmd(t)

	_, stderr, code := captureOutput(t, "--config", "/nonexistent/path/drill.toml", "config", "debug")

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "loading config")
}

func TestConfigDebugCmd_RejectsExtraArgs(t *testing.T) {
	resetRootCmd(t)
	_, _, code := captureOutput(t, "config", "debug", "unexpected-arg")
	assert.Equal(t, 1, code)
}

// ---- configValidateCmd tests ------------------------------------------------

func TestConfigValidateCmd_Defaults_NoIssues(t *testing.T) {
	resetRootCmd(t)
	chdirTemp(t)

	stdout, stderr, code := captureOutput(t, "config", "validate")

	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "Configuration Validation")
	assert.Contains(t, stdout, "No issues found.")
	assert.NotContains(t, stderr, "Configuration Validation")
}

func TestConfigValidateCmd_InvalidConfig_ExitsOne(t *testing.T) {
	resetRootCmd(t)
	tmpDir := chdirTemp(t)
	writeMinimalToml(t, tmpDir, `
[judge]
base_url = "judge.example.com"
`)

	stdout, _, code := captureOutput(t, "config", "validate")

	assert.Equal(t, 1, code)
	assert.Contains(t, stdout, "judge.base_url")
	assert.Contains(t, stdout, "absolute http or https URL")
}

func TestConfigValidateCmd_UnknownKeys_ShowsWarning(t *testing.T) {
	resetRootCmd(t)
	tmpDir := chdirTemp(t)
	writeMinimalToml(t, tmpDir, `
[judge]
retries = 3
`)

	stdout, _, code := captureOutput(t, "config", "validate")

	assert.Equal(t, 0, code, "unknown keys are warnings")
	assert.Contains(t, stdout, "Warnings:")
	assert.Contains(t, stdout, "judge.retries")
}

func TestConfigValidateCmd_RejectsExtraArgs(t *testing.T) {
	resetRootCmd(t)
	_, _, code := captureOutput(t, "config", "validate", "unexpected-arg")
	assert.Equal(t, 1, code)
}

// ---- printer unit tests -----------------------------------------------------

func TestPrintValidationResult(t *testing.T) {
	tests := []struct {
		name    string
		result  *config.ValidationResult
		want    []string
		notWant []string
	}{
		{
			name:    "no issues",
			result:  &config.ValidationResult{},
			want:    []string{"No issues found."},
			notWant: []string{"Errors:", "Warnings:"},
		},
		{
			name: "errors and warnings",
			result: &config.ValidationResult{Issues: []config.ValidationIssue{
				{Severity: config.SeverityError, Field: "judge.timeout", Message: "must be positive"},
				{Severity: config.SeverityWarning, Field: "languages", Message: "no languages configured"},
			}},
			want: []string{"Errors:", "[judge.timeout] must be positive", "Warnings:", "1 error(s), 1 warning(s)"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			configValidateCmd.SetOut(&buf)
			t.Cleanup(func() { configValidateCmd.SetOut(nil) })

			printValidationResult(configValidateCmd, tt.result)
			for _, s := range tt.want {
				assert.Contains(t, buf.String(), s)
			}
			for _, s := range tt.notWant {
				assert.NotContains(t, buf.String(), s)
			}
		})
	}
}

func TestFmtHelpers(t *testing.T) {
	assert.Equal(t, `""`, fmtStr(""))
	assert.Equal(t, `"hello world"`, fmtStr("hello world"))
	assert.Equal(t, `""`, fmtSecret(""))
	assert.Equal(t, `"********"`, fmtSecret("token"))
	assert.Equal(t, "[]", fmtSlice(nil))
	assert.Equal(t, `["**/*.cc", "**/*.cpp"]`, fmtSlice([]string{"**/*.cc", "**/*.cpp"}))
}

// ---- loadAndResolveConfig unit tests ----------------------------------------

func TestLoadAndResolveConfig_NoFile(t *testing.T) {
	resetRootCmd(t)
	chdirTemp(t)

	resolved, meta, err := loadAndResolveConfig(nil)
	require.NoError(t, err)
	assert.Nil(t, meta, "meta should be nil when no file is found")
	assert.Empty(t, resolved.Path)
	assert.Equal(t, config.DefaultBaseURL, resolved.Config.Judge.BaseURL)
}

func TestLoadAndResolveConfig_WithFileAndOverrides(t *testing.T) {
	resetRootCmd(t)
	tmpDir := chdirTemp(t)
	writeMinimalToml(t, tmpDir, `
[judge]
timeout = "10s"
`)

	timeout := 5 * time.Second
	noCache := true
	resolved, meta, err := loadAndResolveConfig(&config.CLIOverrides{Timeout: &timeout, NoCache: &noCache})
	require.NoError(t, err)
	assert.NotNil(t, meta)
	assert.NotEmpty(t, resolved.Path)
	assert.Equal(t, timeout, resolved.Config.Judge.Timeout)
	assert.Equal(t, config.SourceCLI, resolved.Sources["judge.timeout"])
	assert.False(t, resolved.Config.Cache.IsEnabled())
}

func TestLoadAndResolveConfig_ExplicitFlagPath_Missing(t *testing.T) {
	resetRootCmd(t)
	flagConfig = "/nonexistent/drill.toml"

	_, _, err := loadAndResolveConfig(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading config")
}

func TestSourceStyle_AllSources(t *testing.T) {
	for _, src := range []config.ConfigSource{config.SourceDefault, config.SourceFile, config.SourceEnv, config.SourceCLI} {
		assert.Contains(t, sourceStyle(src).Render(string(src)), string(src))
	}
}
