// Package scanner reads the project's C++ class declarations to resolve each
// class's base, its root marker ancestry and role, whether it exposes an API
// definition, and whether it can be instantiated.
//
// Only the narrow declaration shapes the framework's own classes follow are
// recognized; this is not a C++ parser.
package scanner

import (
	"fmt"
	"strings"
)

// Access is a C++ member or base access level.
type Access string

const (
	Public    Access = "public"
	Protected Access = "protected"
	Private   Access = "private"
)

// Base is one entry of a class's base clause, as written.
type Base struct {
	Name    string
	Access  Access
	Virtual bool
}

// Method is a member function or constructor declared in a class body.
type Method struct {
	Name        string
	Access      Access
	Constructor bool
	Override    bool
	Pure        bool
	Deleted     bool
	Line        int
}

// ClassDecl is a class or struct found in a declaration file.
type ClassDecl struct {
	Name      string
	Namespace []string
	Forward   bool
	Bases     []Base
	Methods   []Method
	Line      int
}

// Qualified returns the namespace-qualified class name.
func (c *ClassDecl) Qualified() string {
	if len(c.Namespace) == 0 {
		return c.Name
	}
	return strings.Join(c.Namespace, "::") + "::" + c.Name
}

// sameShape reports whether two definitions agree on everything the scanner uses.
func (c *ClassDecl) sameShape(o *ClassDecl) bool {
	if len(c.Bases) != len(o.Bases) {
		return false
	}
	for i := range c.Bases {
		if c.Bases[i] != o.Bases[i] {
			return false
		}
	}
	return true
}

// MacroCall is an invocation of an upper-case, function-like macro.
type MacroCall struct {
	Name string
	// Arg is the last scope segment of the first argument, empty when that
	// argument is not a plain or qualified name.
	Arg  string
	Line int
}

// File is the parse result of one source file.
type File struct {
	Path    string
	Classes []*ClassDecl
	Macros  []MacroCall
}

// Definitions returns every non-forward declaration of the qualified class.
func (f *File) Definitions(qualified string) []*ClassDecl {
	var out []*ClassDecl
	for _, c := range f.Classes {
		if !c.Forward && c.Qualified() == qualified {
			out = append(out, c)
		}
	}
	return out
}

// Parser extracts class declarations from one source file.
type Parser interface {
	Name() string
	Parse(path string, src []byte) (*File, error)
}

// Parser names accepted by NewParser.
const (
	ParserLexical    = "lexical"
	ParserTreeSitter = "treesitter"
)

// NewParser returns the declaration parser with the given name. The
// tree-sitter parser is the default.
func NewParser(name string) (Parser, error) {
	switch name {
	case "", ParserTreeSitter:
		return NewTreeSitterParser(), nil
	case ParserLexical:
		return LexicalParser{}, nil
	default:
		return nil, fmt.Errorf("unknown declaration parser %q (want %s or %s)", name, ParserTreeSitter, ParserLexical)
	}
}
