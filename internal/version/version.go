// Package version exposes the build information of the chatledger binary.
//
// The variables are injected at build time:
//
//	-ldflags "-X chatledger/internal/version.version=v1.0.0 -X chatledger/internal/version.commit=abc123 -X chatledger/internal/version.buildTime=2025-01-01T00:00:00Z"
package version

import (
	"fmt"
	"io"
	"time"
)

//nolint:gochecknoglobals // Required for build-time injection via ldflags.
var (
	version   string
	commit    string
	buildTime string
)

// ApplicationName is the name of the application displayed in version output.
const ApplicationName = "ChatLedger CLI"

// Default values used when version information is not available.
const (
	DefaultVersion   = "dev"
	DefaultCommit    = "unknown"
	DefaultBuildTime = "unknown"
)

// VersionInfo holds the build information with defaults applied.
type VersionInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// NewVersionInfo reads the build-time variables.
func NewVersionInfo() *VersionInfo {
	return &VersionInfo{
		Version:   withDefault(version, DefaultVersion),
		Commit:    withDefault(commit, DefaultCommit),
		BuildTime: withDefault(buildTime, DefaultBuildTime),
	}
}

func withDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// FormatShort returns only the version number.
func (vi *VersionInfo) FormatShort() string {
	return vi.Version
}

// FormatFull returns the application name, version, commit and build time on separate lines.
func (vi *VersionInfo) FormatFull() string {
	return fmt.Sprintf("%s\nVersion: %s\nCommit: %s\nBuilt: %s\n",
		ApplicationName, vi.Version, vi.Commit, vi.BuildTime)
}

// Write writes the short or full format to w.
func (vi *VersionInfo) Write(w io.Writer, short bool) error {
	var err error
	if short {
		_, err = fmt.Fprintln(w, vi.FormatShort())
	} else {
		_, err = fmt.Fprint(w, vi.FormatFull())
	}
	return err
}

// IsDevelopment returns true if the version indicates a development build.
func (vi *VersionInfo) IsDevelopment() bool {
	return vi.Version == DefaultVersion
}

// GetBuildTime parses the build time. It returns the zero time when it is unknown or malformed.
func (vi *VersionInfo) GetBuildTime() time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if parsed, err := time.Parse(layout, vi.BuildTime); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

// SetBuildVars sets the build-time variables. Used by tests.
func SetBuildVars(ver, com, bt string) {
	version = ver
	commit = com
	buildTime = bt
}

// ResetBuildVars clears the build-time variables. Used by tests.
func ResetBuildVars() {
	SetBuildVars("", "", "")
}
