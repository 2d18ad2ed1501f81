// Package manifest models the per-class API description emitted by the project's
// own API definitions, and loads it from JSON or YAML while preserving element order.
package manifest

import (
	"slices"
	"strings"

	"github.com/Alia5/apigen/internal/codegen/tables"
)

// FunctionKind is one of the four function groups of a class.
type FunctionKind string

const (
	Constructor  FunctionKind = "Constructor"
	Getter       FunctionKind = "Getter"
	Setter       FunctionKind = "Setter"
	WorkFunction FunctionKind = "Work_Function"
)

// Input is one ordered function argument.
type Input struct {
	Index       int
	Type        string
	Name        string
	Description string
}

// Output is a function's return value.
type Output struct {
	Type        string
	Name        string
	Description string
	IsEnum      bool
}

// Deprecation describes when an entry warns and when it is removed.
type Deprecation struct {
	Removal    tables.Version
	HasWarning bool
	Warning    tables.Version
	// Library names the library whose version governs the gate, if not the target library.
	Library string
}

// Function is a constructor, getter, setter or work function.
type Function struct {
	Kind        FunctionKind
	Name        string
	Description string
	Inputs      []Input
	Output      *Output

	IsConst                bool
	IsOverride             bool
	IsVirtualNonOverriding bool
	NoLock                 bool
	AlwaysNull             bool
	ReturnsThis            bool
	IsProtected            bool
	NotForUserInterface    bool

	Deprecation *Deprecation
}

// ReturnsValue reports whether the function has a non-void output.
func (f *Function) ReturnsValue() bool {
	return f.Output != nil && f.Output.Type != "" && f.Output.Type != "void"
}

// Class is the manifest entry of one class.
type Class struct {
	// Name is the fully qualified class name.
	Name        string
	Module      string
	Namespace   []string
	Description string

	IsLightweight        bool
	IsPlugin             bool
	IsEngine             bool
	IsDataRepresentation bool
	IsFileInterpreter    bool
	// HasProtectedConstructors is nil when the manifest does not say.
	HasProtectedConstructors *bool

	Constructors  []Function
	Getters       []Function
	Setters       []Function
	WorkFunctions []Function

	PluginCategories [][]string
	PluginKeywords   []string

	DataRepresentationCategories [][]string
	CompatibleEngines            []string
	IncompatibleEngines          []string
	PresentProperties            []string
	AbsentProperties             []string

	FileExtensions   []string
	FileDescriptions []string
}

// ManifestRole returns the role flags stated by the manifest, or RolePlain.
func (c *Class) ManifestRole() tables.Role {
	var rs []tables.Role
	if c.IsEngine {
		rs = append(rs, tables.RoleEngine)
	}
	if c.IsDataRepresentation {
		rs = append(rs, tables.RoleDataRepresentation)
	}
	if c.IsFileInterpreter {
		rs = append(rs, tables.RoleFileInterpreter)
	}
	if c.IsPlugin {
		rs = append(rs, tables.RolePlugin)
	}
	return tables.Strongest(rs...)
}

// Functions returns every function of the class in emission order.
func (c *Class) Functions() []*Function {
	out := make([]*Function, 0, len(c.Constructors)+len(c.Getters)+len(c.Setters)+len(c.WorkFunctions))
	for _, group := range [][]Function{c.Constructors, c.Setters, c.Getters, c.WorkFunctions} {
		for i := range group {
			out = append(out, &group[i])
		}
	}
	return out
}

// ConstructorsAllProtected reports whether the class declares at least one
// constructor and every one of them is protected.
func (c *Class) ConstructorsAllProtected() bool {
	if len(c.Constructors) == 0 {
		return false
	}
	for _, ctor := range c.Constructors {
		if !ctor.IsProtected {
			return false
		}
	}
	return true
}

// Manifest is the loaded, read-only set of classes of one library.
type Manifest struct {
	Classes    []*Class
	NoAPITypes []string

	byName map[string]*Class
}

// New builds a manifest from classes in order.
func New(classes []*Class, noAPI []string) *Manifest {
	m := &Manifest{Classes: classes, NoAPITypes: noAPI, byName: make(map[string]*Class, len(classes))}
	for _, c := range classes {
		m.byName[c.Name] = c
	}
	return m
}

// Lookup returns the class with the given qualified name.
func (m *Manifest) Lookup(name string) (*Class, bool) {
	c, ok := m.byName[name]
	return c, ok
}

// IsNoAPIType reports whether a qualified type is listed as never wrapped.
func (m *Manifest) IsNoAPIType(name string) bool {
	return slices.Contains(m.NoAPITypes, strings.TrimPrefix(name, "::"))
}
