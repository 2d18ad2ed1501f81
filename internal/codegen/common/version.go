package common

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Alia5/apigen/internal/codegen/tables"
)

// Version is set via ldflags at build time: -ldflags "-X github.com/Alia5/apigen/internal/codegen/common.Version=x.y.z"
var Version = ""

// GetVersion returns the version string that was set at build time via ldflags.
// Returns "0.0.1-dev" if Version is empty (development builds only).
func GetVersion() (string, error) {
	if Version == "" {
		return "0.0.1-dev", nil
	}

	version := strings.TrimPrefix(Version, "v")
	baseVersion := strings.SplitN(version, "-", 2)[0]
	if !strings.Contains(baseVersion, ".") {
		return "", fmt.Errorf("invalid version format: %s (expected x.y.z)", Version)
	}

	return version, nil
}

// ParseProjectVersion parses the "major.minor" version the generated library
// is built for, rejecting malformed input.
func ParseProjectVersion(s string) (tables.Version, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "v")
	major, minor, ok := strings.Cut(s, ".")
	if !ok {
		return tables.Version{}, fmt.Errorf("invalid project version %q (expected major.minor)", s)
	}
	// Accept and ignore a patch component.
	minor, _, _ = strings.Cut(minor, ".")
	ma, err := strconv.Atoi(major)
	if err != nil || ma < 0 {
		return tables.Version{}, fmt.Errorf("invalid project major version %q", major)
	}
	mi, err := strconv.Atoi(minor)
	if err != nil || mi < 0 {
		return tables.Version{}, fmt.Errorf("invalid project minor version %q", minor)
	}
	return tables.Version{Major: ma, Minor: mi}, nil
}
