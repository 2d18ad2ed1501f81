package common

import (
	"fmt"
	"os"
	"strings"
)

const defaultLicenceTemplate = `%s
This file was generated by apigen. Do not edit it by hand; regenerate it
from the API definitions of the wrapped classes instead.`

// DefaultLicence returns the notice used when no licence file is configured.
func DefaultLicence(project string) string {
	return fmt.Sprintf(defaultLicenceTemplate, project)
}

// LoadLicence reads the licence text from path, or returns DefaultLicence when path is empty.
func LoadLicence(path, project string) (string, error) {
	if path == "" {
		return DefaultLicence(project), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read licence file: %w", err)
	}
	return strings.TrimRight(string(data), "\n"), nil
}

// CommentLicence wraps licence text in a C++ block comment, indenting each line.
func CommentLicence(text string) string {
	var b strings.Builder
	b.WriteString("/*\n")
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		// Keep the comment closed.
		line = strings.ReplaceAll(line, "*/", "* /")
		if line == "" {
			b.WriteString("\n")
			continue
		}
		b.WriteString("    ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("*/")
	return b.String()
}
