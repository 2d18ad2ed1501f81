package translate

import (
	"fmt"

	"github.com/Alia5/apigen/internal/codegen/tables"
)

// Rule is the rewrite rule applied to a node.
type Rule int

const (
	RulePass Rule = iota
	RuleRootAPI
	RuleIndirection
	RuleContainer
	RuleWrapper
	RuleEnumeration
)

func (r Rule) String() string {
	switch r {
	case RuleRootAPI:
		return "root-api"
	case RuleIndirection:
		return "indirection"
	case RuleContainer:
		return "container"
	case RuleWrapper:
		return "wrapper"
	case RuleEnumeration:
		return "enumeration"
	default:
		return "pass"
	}
}

// Include is one header the generated code needs.
type Include struct {
	// Path is the include target as emitted, with its delimiters: <vector>, <a/B_API.hh>.
	Path string
	// Class is set for wrapper headers: the project class the header wraps.
	Class string
}

// IncludeSet is an insertion-ordered set of includes.
type IncludeSet struct {
	items []Include
	seen  map[string]bool
}

// NewIncludeSet returns an empty include set.
func NewIncludeSet() *IncludeSet {
	return &IncludeSet{seen: make(map[string]bool)}
}

// Add records an include unless already present.
func (s *IncludeSet) Add(inc Include) {
	if inc.Path == "" || s.seen[inc.Path] {
		return
	}
	s.seen[inc.Path] = true
	s.items = append(s.items, inc)
}

// AddPath records a non-wrapper include.
func (s *IncludeSet) AddPath(path string) { s.Add(Include{Path: path}) }

// Items returns the includes in discovery order.
func (s *IncludeSet) Items() []Include { return append([]Include(nil), s.items...) }

// Paths returns the include paths in discovery order.
func (s *IncludeSet) Paths() []string {
	out := make([]string, len(s.items))
	for i, inc := range s.items {
		out[i] = inc.Path
	}
	return out
}

// Len returns the number of includes.
func (s *IncludeSet) Len() int { return len(s.items) }

// ExcludeFunc reports whether a project type must not be wrapped.
type ExcludeFunc func(qualified string) (bool, error)

// Result is a translated expression with its rewritten tree.
type Result struct {
	Text string
	Tree *Node
}

// Translator applies the rewrite rules against a fixed set of tables.
type Translator struct {
	tables  *tables.Tables
	exclude ExcludeFunc
}

// New returns a translator. exclude may be nil.
func New(t *tables.Tables, exclude ExcludeFunc) *Translator {
	if exclude == nil {
		exclude = func(string) (bool, error) { return false, nil }
	}
	return &Translator{tables: t, exclude: exclude}
}

// Translate rewrites expr and appends the headers it needs to includes.
func (tr *Translator) Translate(expr string, includes *IncludeSet) (string, error) {
	res, err := tr.TranslateTree(expr, includes)
	if err != nil {
		return "", err
	}
	return res.Text, nil
}

// TranslateTree is Translate returning the rewritten tree as well.
func (tr *Translator) TranslateTree(expr string, includes *IncludeSet) (*Result, error) {
	n, err := Parse(expr)
	if err != nil {
		return nil, err
	}
	out, err := tr.node(n, includes)
	if err != nil {
		return nil, fmt.Errorf("translate %q: %w", expr, err)
	}
	return &Result{Text: out.String(), Tree: out}, nil
}

func (tr *Translator) node(n *Node, inc *IncludeSet) (*Node, error) {
	out := *n
	out.Args = nil
	out.Params = nil

	t := tr.tables
	switch {
	case n.Literal:
		out.Rule = RulePass

	case isRootAPI(t, n.Name):
		e, _ := t.RootAPIType(n.Name)
		inc.AddPath(e.Include)
		out.Rule = RuleRootAPI
		out.Args = n.Args

	case isIndirection(t, n.Name):
		reaches, err := tr.reachesProject(n.Args)
		if err != nil {
			return nil, err
		}
		if !reaches {
			out.Rule = RulePass
			out.Args = n.Args
			break
		}
		e, _ := t.Indirection(n.Name)
		out.Rule = RuleIndirection
		out.Container = string(e.Kind)
		args, err := tr.nodes(n.Args, inc)
		if err != nil {
			return nil, err
		}
		out.Args = args

	case isContainer(t, n.Name):
		e, _ := t.Container(n.Name)
		inc.AddPath(e.Include)
		out.Rule = RuleContainer
		out.Container = string(e.Kind)
		out.Name = e.ExternalName()
		args, err := tr.nodes(n.Args, inc)
		if err != nil {
			return nil, err
		}
		out.Args = args

	case tr.wrappable(n.Name):
		excluded, err := tr.exclude(n.Name)
		if err != nil {
			return nil, err
		}
		if excluded {
			out.Rule = RulePass
			out.Args = n.Args
			break
		}
		out.Rule = RuleWrapper
		out.Original = n.Name
		out.Name = t.WrapperName(n.Name)
		inc.Add(Include{Path: "<" + t.WrapperInclude(n.Name) + ">", Class: n.Name})
		args, err := tr.nodes(n.Args, inc)
		if err != nil {
			return nil, err
		}
		out.Args = args

	case isEnumeration(t, n.Name):
		e, _ := t.Enumeration(n.Name)
		inc.AddPath(e.Include)
		out.Rule = RuleEnumeration

	default:
		out.Rule = RulePass
		out.Args = n.Args
	}

	if n.IsFunc {
		params, err := tr.nodes(n.Params, inc)
		if err != nil {
			return nil, err
		}
		out.Params = params
	}
	return &out, nil
}

func (tr *Translator) nodes(in []*Node, inc *IncludeSet) ([]*Node, error) {
	if in == nil {
		return nil, nil
	}
	out := make([]*Node, 0, len(in))
	for _, a := range in {
		n, err := tr.node(a, inc)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// reachesProject reports whether any of the nodes, or their arguments, names a
// project type that a rule other than pass-through applies to.
func (tr *Translator) reachesProject(ns []*Node) (bool, error) {
	for _, n := range ns {
		if n.Literal {
			continue
		}
		switch {
		case isRootAPI(tr.tables, n.Name), isEnumeration(tr.tables, n.Name):
			return true, nil
		case tr.wrappable(n.Name):
			excluded, err := tr.exclude(n.Name)
			if err != nil {
				return false, err
			}
			if !excluded {
				return true, nil
			}
		}
		reaches, err := tr.reachesProject(n.Args)
		if err != nil || reaches {
			return reaches, err
		}
	}
	return false, nil
}

func (tr *Translator) wrappable(name string) bool {
	t := tr.tables
	if !t.IsProjectType(name) || t.IsWrapperName(name) {
		return false
	}
	if _, ok := t.Enumeration(name); ok {
		return false
	}
	return true
}

func isRootAPI(t *tables.Tables, name string) bool {
	_, ok := t.RootAPIType(name)
	return ok
}

func isIndirection(t *tables.Tables, name string) bool {
	_, ok := t.Indirection(name)
	return ok
}

func isContainer(t *tables.Tables, name string) bool {
	_, ok := t.Container(name)
	return ok
}

func isEnumeration(t *tables.Tables, name string) bool {
	_, ok := t.Enumeration(name)
	return ok
}
