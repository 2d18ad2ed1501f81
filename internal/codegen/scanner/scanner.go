package scanner

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/Alia5/apigen/internal/codegen/generror"
	"github.com/Alia5/apigen/internal/codegen/manifest"
	"github.com/Alia5/apigen/internal/codegen/tables"
)

// Options configures a Scanner.
type Options struct {
	SourceRoot  string
	HeadersRoot string
	Parser      Parser
	// Exclusions, when set, excludes matching declaration paths from wrapping.
	Exclusions *ignore.GitIgnore
}

// Record is what the scanner knows about one class declaration.
type Record struct {
	Class string
	File  string
	// Base is the fully qualified immediate public base, or "" for a root class.
	Base string
	// ExposesAPI is true when the class body has a non-pure override of the
	// API-definition accessor.
	ExposesAPI            bool
	Abstract              bool
	PublicConstructors    int
	ProtectedConstructors int
}

// Ancestry is the result of walking a class's base chain to a root marker.
type Ancestry struct {
	// Marker is the root marker reached, or "" when the chain ended without one.
	Marker string
	Role   tables.Role
	NoAPI  bool
	// Chain lists the walked classes, starting with the class itself.
	Chain []string
}

// IsPlugin reports whether the chain reached a plugin-family marker.
func (a Ancestry) IsPlugin() bool { return a.Role.IsPlugin() }

// Scanner resolves declarations for one run. Results are memoized.
type Scanner struct {
	tables   *tables.Tables
	manifest *manifest.Manifest
	opts     Options
	logger   *slog.Logger

	files    map[string]*File
	records  map[string]*Record
	ancestry map[string]Ancestry
}

// New returns a scanner over the given declaration tree.
func New(t *tables.Tables, m *manifest.Manifest, opts Options, logger *slog.Logger) *Scanner {
	if opts.Parser == nil {
		opts.Parser = NewTreeSitterParser()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Scanner{
		tables:   t,
		manifest: m,
		opts:     opts,
		logger:   logger,
		files:    make(map[string]*File),
		records:  make(map[string]*Record),
		ancestry: make(map[string]Ancestry),
	}
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

func (s *Scanner) parse(path string) (*File, error) {
	if f, ok := s.files[path]; ok {
		return f, nil
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := s.opts.Parser.Parse(path, src)
	if err != nil {
		return nil, generror.IO(path, "parse declarations", err)
	}
	s.files[path] = f
	s.logger.Debug("Parsed declaration file", "file", path, "parser", s.opts.Parser.Name(), "classes", len(f.Classes))
	return f, nil
}

// Record returns the declaration record of a qualified class.
func (s *Scanner) Record(class string) (*Record, error) {
	class = strings.TrimPrefix(class, "::")
	if r, ok := s.records[class]; ok {
		return r, nil
	}
	path := s.HeaderPath(class)
	_, short := tables.SplitQualified(class)
	pattern := "class " + short

	f, err := s.parse(path)
	if err != nil {
		if isNotExist(err) {
			return nil, generror.Configuration(class, path, pattern, "declaration file not found")
		}
		var ge *generror.Error
		if errors.As(err, &ge) {
			return nil, generror.WithClass(err, class)
		}
		return nil, &generror.Error{Kind: generror.KindIO, Class: class, File: path, Detail: "read declarations", Err: err}
	}

	defs := f.Definitions(class)
	if len(defs) == 0 {
		return nil, generror.Configuration(class, path, pattern, "no class definition found")
	}
	for _, d := range defs[1:] {
		if !d.sameShape(defs[0]) {
			return nil, generror.Ambiguity(class, path, pattern,
				fmt.Sprintf("conflicting definitions at lines %d and %d", defs[0].Line, d.Line))
		}
	}
	decl := defs[0]

	rec := &Record{Class: class, File: path}
	base, err := s.publicBase(decl, path)
	if err != nil {
		return nil, err
	}
	rec.Base = base

	for _, m := range decl.Methods {
		switch {
		case m.Name == s.tables.APIDefinitionAccessor && m.Override && !m.Pure:
			rec.ExposesAPI = true
		case m.Pure:
			rec.Abstract = true
		}
		if m.Constructor && !m.Deleted {
			if m.Access == Public {
				rec.PublicConstructors++
			} else {
				rec.ProtectedConstructors++
			}
		}
	}
	s.records[class] = rec
	return rec, nil
}

// publicBase picks the single public base of decl and qualifies it.
func (s *Scanner) publicBase(decl *ClassDecl, path string) (string, error) {
	var candidates []Base
	for _, b := range decl.Bases {
		if b.Access != Public {
			continue
		}
		if strings.HasPrefix(b.Name, "std::") {
			continue
		}
		candidates = append(candidates, b)
	}
	switch len(candidates) {
	case 0:
		return "", nil
	case 1:
	default:
		names := make([]string, len(candidates))
		for i, b := range candidates {
			names[i] = b.Name
		}
		return "", generror.Ambiguity(decl.Qualified(), path, "public <Base>",
			"more than one public base: "+strings.Join(names, ", "))
	}
	return s.qualify(decl, candidates[0].Name, path)
}

// qualify resolves a base name as written against the enclosing namespaces,
// innermost first. A candidate wins when it is a root marker or its declaration
// file exists.
func (s *Scanner) qualify(decl *ClassDecl, name, path string) (string, error) {
	if strings.HasPrefix(name, "::") {
		return strings.TrimPrefix(name, "::"), nil
	}
	for i := len(decl.Namespace); i >= 0; i-- {
		cand := name
		if i > 0 {
			cand = strings.Join(decl.Namespace[:i], "::") + "::" + name
		}
		if _, ok := s.tables.Marker(cand); ok {
			return cand, nil
		}
		if strings.Contains(cand, "::") {
			if _, err := os.Stat(s.HeaderPath(cand)); err == nil {
				return cand, nil
			}
		}
	}
	return "", generror.Configuration(decl.Qualified(), path, name,
		"base class resolves to neither a root marker nor a declaration file")
}

// ResolveBase returns the fully qualified immediate base of class, or "" for a root class.
func (s *Scanner) ResolveBase(class string) (string, error) {
	rec, err := s.Record(class)
	if err != nil {
		return "", err
	}
	return rec.Base, nil
}

// ExposesAPI reports whether class overrides the API-definition accessor.
func (s *Scanner) ExposesAPI(class string) (bool, error) {
	if _, ok := s.tables.Marker(class); ok {
		return false, nil
	}
	rec, err := s.Record(class)
	if err != nil {
		return false, err
	}
	return rec.ExposesAPI, nil
}

// Classify walks the base chain of class until a root marker or a root class.
func (s *Scanner) Classify(class string) (Ancestry, error) {
	class = strings.TrimPrefix(class, "::")
	if a, ok := s.ancestry[class]; ok {
		return a, nil
	}

	var chain []string
	visited := make(map[string]bool)
	cur := class
	result := Ancestry{Role: tables.RolePlain}
	for cur != "" {
		if a, ok := s.ancestry[cur]; ok {
			result = a
			break
		}
		if m, ok := s.tables.Marker(cur); ok {
			result = Ancestry{Marker: m.Name, Role: m.Role, NoAPI: m.NoAPI}
			if m.NoAPI || m.Role == "" {
				result.Role = tables.RolePlain
			}
			break
		}
		if visited[cur] {
			return Ancestry{}, generror.Configuration(class, s.HeaderPath(cur), "public <Base>",
				"cyclic inheritance: "+strings.Join(append(chain, cur), " -> "))
		}
		visited[cur] = true
		chain = append(chain, cur)
		base, err := s.ResolveBase(cur)
		if err != nil {
			return Ancestry{}, err
		}
		cur = base
	}

	if len(chain) == 0 {
		return result, nil
	}
	// Every class on the chain shares the same root.
	for i, c := range chain {
		a := result
		a.Chain = append(append([]string(nil), chain[i:]...), result.Chain...)
		s.ancestry[c] = a
	}
	return s.ancestry[class], nil
}

// IsPlugin reports whether class descends from a plugin-family marker.
func (s *Scanner) IsPlugin(class string) (bool, error) {
	a, err := s.Classify(class)
	if err != nil {
		return false, err
	}
	return a.IsPlugin(), nil
}

// IsNoAPI reports whether class descends from the no-API marker.
func (s *Scanner) IsNoAPI(class string) (bool, error) {
	a, err := s.Classify(class)
	if err != nil {
		return false, err
	}
	return a.NoAPI, nil
}

// WrapExcluded reports whether a project type passes through translation
// unwrapped: listed in the manifest's No_API_Types, matched by an exclusion
// pattern, or descending from the no-API marker.
func (s *Scanner) WrapExcluded(qualified string) (bool, error) {
	if s.manifest != nil && s.manifest.IsNoAPIType(qualified) {
		return true, nil
	}
	if s.Excluded(qualified) {
		return true, nil
	}
	return s.IsNoAPI(qualified)
}

// Role combines the manifest's role flags with the ancestry marker.
// A manifest that declares a plugin role the ancestry does not reach is a
// configuration error.
func (s *Scanner) Role(c *manifest.Class) (tables.Role, error) {
	a, err := s.Classify(c.Name)
	if err != nil {
		return "", err
	}
	declared := c.ManifestRole()
	if declared.IsPlugin() && !a.IsPlugin() {
		return "", generror.Configuration(c.Name, s.HeaderPath(c.Name), "Is_Plugin_Class",
			"manifest marks a plugin class but its ancestry reaches no plugin marker")
	}
	return tables.Strongest(declared, a.Role), nil
}

// ProtectedConstructors reports whether class c cannot be instantiated from
// outside. The manifest value wins when present; otherwise the constructor
// definition macros of the implementation file decide; otherwise the
// manifest's per-constructor access. An instantiable verdict for a class whose
// declaration is abstract or has only non-public constructors is an error.
func (s *Scanner) ProtectedConstructors(c *manifest.Class) (bool, error) {
	rec, err := s.Record(c.Name)
	if err != nil {
		return false, err
	}

	var protected bool
	source := "manifest"
	switch {
	case c.HasProtectedConstructors != nil:
		protected = *c.HasProtectedConstructors
	default:
		found, isProtected, err := s.scanConstructorMacros(c.Name)
		if err != nil {
			return false, err
		}
		if found {
			protected = isProtected
			source = "implementation"
		} else {
			protected = c.ConstructorsAllProtected()
			source = "constructors"
		}
	}

	if !protected && (rec.Abstract || (rec.ProtectedConstructors > 0 && rec.PublicConstructors == 0)) {
		return false, generror.Configuration(c.Name, rec.File, "public "+c.Module+"(",
			"treated as instantiable (from "+source+") but the declaration is abstract or has no public constructor")
	}
	return protected, nil
}

// scanConstructorMacros looks for the constructor definition macros in the
// implementation file beside the class declaration.
func (s *Scanner) scanConstructorMacros(class string) (found, protected bool, err error) {
	path := s.ImplementationPath(class)
	src, err := os.ReadFile(path)
	if err != nil {
		if isNotExist(err) {
			return false, false, nil
		}
		return false, false, &generror.Error{Kind: generror.KindIO, Class: class, File: path, Detail: "read implementation", Err: err}
	}
	f, err := s.opts.Parser.Parse(path, src)
	if err != nil {
		return false, false, generror.IO(path, "parse implementation", err)
	}
	_, short := tables.SplitQualified(class)
	var sawProtected, sawPublic bool
	for _, call := range f.Macros {
		// The first macro argument may be written qualified; its last segment names the class.
		if call.Arg != short {
			continue
		}
		switch call.Name {
		case s.tables.ProtectedConstructorMacro:
			sawProtected = true
		case s.tables.PublicConstructorMacro:
			sawPublic = true
		}
	}
	if sawProtected && sawPublic {
		return false, false, generror.Ambiguity(class, path, s.tables.ProtectedConstructorMacro+"( "+short+", ... )",
			"both protected and public constructor definition macros are present")
	}
	return sawProtected || sawPublic, sawProtected, nil
}
