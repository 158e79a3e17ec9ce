package buildinfo

import (
	"fmt"
	"runtime"
)

// Info holds structured build information suitable for JSON serialization.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// GetInfo returns the current build information as a structured type.
func GetInfo() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// String returns a human-readable version string.
// Example: "drill v1.2.0 (commit: a1b2c3d, built: 2026-02-17T10:00:00Z, go1.24.2 linux/amd64)"
func (i Info) String() string {
	s := fmt.Sprintf("drill v%s (commit: %s, built: %s", i.Version, i.Commit, i.Date)
	if i.GoVersion != "" {
		s += ", " + i.GoVersion
		if i.Platform != "" {
			s += " " + i.Platform
		}
	}
	return s + ")"
}
