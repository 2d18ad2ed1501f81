package scanner

import (
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// IgnoreFileName is the exclusion pattern file looked up in the source root.
const IgnoreFileName = ".apigenignore"

// HeaderPath maps a qualified class to its declaration file.
//
//	project-local:  <source-root>/<segments after project>.hh
//	cross-project:  <headers-root>/<project>/headers/<segments after project>.hh
func (s *Scanner) HeaderPath(qualified string) string {
	parts := strings.Split(strings.TrimPrefix(qualified, "::"), "::")
	if len(parts) < 2 {
		return filepath.Join(s.opts.SourceRoot, parts[0]+".hh")
	}
	rel := filepath.Join(parts[1:]...) + ".hh"
	if parts[0] == s.tables.Project {
		return filepath.Join(s.opts.SourceRoot, rel)
	}
	return filepath.Join(s.opts.HeadersRoot, parts[0], "headers", rel)
}

// ImplementationPath is the implementation file beside a class's declaration file.
func (s *Scanner) ImplementationPath(qualified string) string {
	return strings.TrimSuffix(s.HeaderPath(qualified), ".hh") + ".cc"
}

// LoadExclusions compiles the exclusion file of the source root. A missing
// file yields nil, which excludes nothing.
func LoadExclusions(sourceRoot string) (*ignore.GitIgnore, error) {
	path := filepath.Join(sourceRoot, IgnoreFileName)
	gi, err := ignore.CompileIgnoreFile(path)
	if err != nil {
		if isNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return gi, nil
}

// Excluded reports whether a project type is excluded from wrapping by the
// exclusion patterns, matched against its source-root relative declaration path.
func (s *Scanner) Excluded(qualified string) bool {
	if s.opts.Exclusions == nil || !s.tables.IsProjectType(qualified) {
		return false
	}
	rel, err := filepath.Rel(s.opts.SourceRoot, s.HeaderPath(qualified))
	if err != nil {
		return false
	}
	return s.opts.Exclusions.MatchesPath(filepath.ToSlash(rel))
}
