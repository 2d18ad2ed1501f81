// Package tables holds the fixed lookup configuration shared by the scanner,
// translator, resolver and emitters: known containers, indirections,
// enumerations, root markers, root capability wrappers and the naming rule
// that maps a project class to its wrapper.
//
// A Tables value is built once per run and never mutated afterwards; every
// consumer receives it explicitly.
package tables

import (
	"fmt"
	"slices"
	"strings"
)

// Role is the capability family a class belongs to.
type Role string

const (
	RolePlain              Role = "plain"
	RolePlugin             Role = "plugin"
	RoleEngine             Role = "engine"
	RoleDataRepresentation Role = "data_representation"
	RoleFileInterpreter    Role = "file_interpreter"
)

// Roles lists every role, highest precedence first.
var Roles = []Role{RoleEngine, RoleDataRepresentation, RoleFileInterpreter, RolePlugin, RolePlain}

// IsPlugin reports whether objects of this role are instantiable through the plugin registry.
func (r Role) IsPlugin() bool {
	return r != RolePlain && r != ""
}

// Precedence returns the rank of r in Roles (lower wins).
func (r Role) Precedence() int {
	if i := slices.Index(Roles, r); i >= 0 {
		return i
	}
	return len(Roles)
}

// Strongest returns the role with the highest precedence among rs, or RolePlain.
func Strongest(rs ...Role) Role {
	best := RolePlain
	for _, r := range rs {
		if r != "" && r.Precedence() < best.Precedence() {
			best = r
		}
	}
	return best
}

// ContainerKind describes how a container's type arguments are laid out.
type ContainerKind string

const (
	KindSequence ContainerKind = "sequence"
	KindMap      ContainerKind = "map"
	KindPair     ContainerKind = "pair"
	KindSet      ContainerKind = "set"
	KindList     ContainerKind = "list"
	KindFunction ContainerKind = "function"
	KindFixed    ContainerKind = "fixed"
	KindShared   ContainerKind = "shared"
	KindWeak     ContainerKind = "weak"
)

// TypeEntry is a known type: container, indirection, enumeration or root API type.
type TypeEntry struct {
	Name string `yaml:"name" toml:"name" json:"name"`
	// External is the spelling used in generated code. Empty means Name.
	External string        `yaml:"external,omitempty" toml:"external,omitempty" json:"external,omitempty"`
	Include  string        `yaml:"include,omitempty" toml:"include,omitempty" json:"include,omitempty"`
	Kind     ContainerKind `yaml:"kind,omitempty" toml:"kind,omitempty" json:"kind,omitempty"`
}

// ExternalName returns the name to emit for this entry.
func (e TypeEntry) ExternalName() string {
	if e.External != "" {
		return e.External
	}
	return e.Name
}

// Marker is an internal root class at which ancestry walks stop.
type Marker struct {
	Name  string `yaml:"name" toml:"name" json:"name"`
	Role  Role   `yaml:"role,omitempty" toml:"role,omitempty" json:"role,omitempty"`
	NoAPI bool   `yaml:"noApi,omitempty" toml:"noApi,omitempty" json:"noApi,omitempty"`
}

// RootWrapper is a root capability wrapper and the creator base used for its role.
type RootWrapper struct {
	Role           Role   `yaml:"role" toml:"role" json:"role"`
	Name           string `yaml:"name" toml:"name" json:"name"`
	Include        string `yaml:"include" toml:"include" json:"include"`
	CreatorBase    string `yaml:"creatorBase,omitempty" toml:"creatorBase,omitempty" json:"creatorBase,omitempty"`
	CreatorInclude string `yaml:"creatorInclude,omitempty" toml:"creatorInclude,omitempty" json:"creatorInclude,omitempty"`
}

// Version is a (major, minor) project version.
type Version struct {
	Major int `yaml:"major" toml:"major" json:"major"`
	Minor int `yaml:"minor" toml:"minor" json:"minor"`
}

// Less reports whether v precedes o.
func (v Version) Less(o Version) bool {
	if v.Major != o.Major {
		return v.Major < o.Major
	}
	return v.Minor < o.Minor
}

func (v Version) String() string { return fmt.Sprintf("%d.%d", v.Major, v.Minor) }

// Naming is the rule mapping a project class to its wrapper.
type Naming struct {
	Project string `yaml:"project" toml:"project" json:"project"`
	Library string `yaml:"library" toml:"library" json:"library"`
	// APISegmentIndex is the namespace segment that receives APINamespaceSuffix,
	// clamped to the last namespace segment for short names.
	APISegmentIndex    int    `yaml:"apiSegmentIndex" toml:"apiSegmentIndex" json:"apiSegmentIndex"`
	APINamespaceSuffix string `yaml:"apiNamespaceSuffix" toml:"apiNamespaceSuffix" json:"apiNamespaceSuffix"`
	APIClassSuffix     string `yaml:"apiClassSuffix" toml:"apiClassSuffix" json:"apiClassSuffix"`
	// GeneratedSegment is inserted after the API segment when non-empty.
	GeneratedSegment string `yaml:"generatedSegment" toml:"generatedSegment" json:"generatedSegment"`
	CreatorSuffix    string `yaml:"creatorSuffix" toml:"creatorSuffix" json:"creatorSuffix"`
}

// Tables is the immutable lookup configuration of one run.
type Tables struct {
	Naming `yaml:",inline" toml:"naming" json:"naming"`

	Containers   []TypeEntry `yaml:"containers" toml:"containers" json:"containers"`
	Indirections []TypeEntry `yaml:"indirections" toml:"indirections" json:"indirections"`
	Enumerations []TypeEntry `yaml:"enumerations" toml:"enumerations" json:"enumerations"`
	// RootAPITypes pass through translation unchanged and record their include,
	// in addition to every RootWrappers entry.
	RootAPITypes []TypeEntry `yaml:"rootApiTypes" toml:"rootApiTypes" json:"rootApiTypes"`
	// ExternalNamespaces are project namespaces whose types are never wrapped.
	ExternalNamespaces []string      `yaml:"externalNamespaces" toml:"externalNamespaces" json:"externalNamespaces"`
	Markers            []Marker      `yaml:"markers" toml:"markers" json:"markers"`
	RootWrappers       []RootWrapper `yaml:"rootWrappers" toml:"rootWrappers" json:"rootWrappers"`
	// LightweightClasses names lightweight classes of other libraries, whose
	// manifests are not part of the run.
	LightweightClasses []string `yaml:"lightweightClasses" toml:"lightweightClasses" json:"lightweightClasses"`

	APIDefinitionAccessor     string `yaml:"apiDefinitionAccessor" toml:"apiDefinitionAccessor" json:"apiDefinitionAccessor"`
	ProtectedConstructorMacro string `yaml:"protectedConstructorMacro" toml:"protectedConstructorMacro" json:"protectedConstructorMacro"`
	PublicConstructorMacro    string `yaml:"publicConstructorMacro" toml:"publicConstructorMacro" json:"publicConstructorMacro"`

	// SharedPointer and WeakPointer are the spellings used for generated indirections.
	SharedPointer string `yaml:"sharedPointer" toml:"sharedPointer" json:"sharedPointer"`
	WeakPointer   string `yaml:"weakPointer" toml:"weakPointer" json:"weakPointer"`
	MakeShared    string `yaml:"makeShared" toml:"makeShared" json:"makeShared"`
	// PluginRegistry is the expression yielding the central plugin-instance registry.
	PluginRegistry        string `yaml:"pluginRegistry" toml:"pluginRegistry" json:"pluginRegistry"`
	PluginRegistryInclude string `yaml:"pluginRegistryInclude" toml:"pluginRegistryInclude" json:"pluginRegistryInclude"`
	ThrowMacro            string `yaml:"throwMacro" toml:"throwMacro" json:"throwMacro"`
	ErrorInclude          string `yaml:"errorInclude" toml:"errorInclude" json:"errorInclude"`

	Version          Version `yaml:"version" toml:"version" json:"version"`
	DeprecationMacro string  `yaml:"deprecationMacro,omitempty" toml:"deprecationMacro,omitempty" json:"deprecationMacro,omitempty"`
}

// IsExternalLightweight reports whether class is listed in LightweightClasses.
func (t *Tables) IsExternalLightweight(class string) bool {
	return slices.Contains(t.LightweightClasses, strings.TrimPrefix(class, "::"))
}

// Validate checks the invariants the consumers rely on.
func (t *Tables) Validate() error {
	if t.Project == "" {
		return fmt.Errorf("tables: project name is required")
	}
	if t.Library == "" {
		return fmt.Errorf("tables: library name is required")
	}
	if t.APINamespaceSuffix == "" && t.APIClassSuffix == "" {
		return fmt.Errorf("tables: at least one of apiNamespaceSuffix/apiClassSuffix must be set")
	}
	if t.APISegmentIndex < 0 {
		return fmt.Errorf("tables: apiSegmentIndex must be >= 0")
	}
	seen := map[Role]bool{}
	for _, rw := range t.RootWrappers {
		if rw.Name == "" {
			return fmt.Errorf("tables: root wrapper for role %q has no name", rw.Role)
		}
		seen[rw.Role] = true
	}
	for _, r := range Roles {
		if !seen[r] {
			return fmt.Errorf("tables: no root wrapper configured for role %q", r)
		}
	}
	for _, m := range t.Markers {
		if m.Role == "" && !m.NoAPI {
			return fmt.Errorf("tables: marker %q has neither a role nor noApi", m.Name)
		}
	}
	return nil
}

// DeprecationGuard is the preprocessor symbol guarding deprecated entries.
func (t *Tables) DeprecationGuard() string {
	if t.DeprecationMacro != "" {
		return t.DeprecationMacro
	}
	return strings.ToUpper(t.Project) + "_ENABLE_DEPRECATED_FUNCTIONS"
}

func findEntry(entries []TypeEntry, name string) (TypeEntry, bool) {
	for _, e := range entries {
		if e.Name == name {
			return e, true
		}
	}
	return TypeEntry{}, false
}

// Container looks up a known generic container by its internal name.
func (t *Tables) Container(name string) (TypeEntry, bool) { return findEntry(t.Containers, name) }

// Indirection looks up a known pointer-like template.
func (t *Tables) Indirection(name string) (TypeEntry, bool) { return findEntry(t.Indirections, name) }

// Enumeration looks up a known fixed enumeration.
func (t *Tables) Enumeration(name string) (TypeEntry, bool) { return findEntry(t.Enumerations, name) }

// RootAPIType looks up a root wrapper marker type that passes through translation.
func (t *Tables) RootAPIType(name string) (TypeEntry, bool) {
	for _, rw := range t.RootWrappers {
		if rw.Name == name {
			return TypeEntry{Name: rw.Name, Include: rw.Include}, true
		}
	}
	return findEntry(t.RootAPITypes, name)
}

// Marker returns the root marker with the given qualified name.
func (t *Tables) Marker(name string) (Marker, bool) {
	for _, m := range t.Markers {
		if m.Name == name {
			return m, true
		}
	}
	return Marker{}, false
}

// RootWrapper returns the root capability wrapper for a role.
func (t *Tables) RootWrapper(r Role) RootWrapper {
	for _, rw := range t.RootWrappers {
		if rw.Role == r {
			return rw
		}
	}
	for _, rw := range t.RootWrappers {
		if rw.Role == RolePlain {
			return rw
		}
	}
	return RootWrapper{Role: r}
}

// IsGenericRoot reports whether name is one of the root capability wrappers.
func (t *Tables) IsGenericRoot(name string) bool {
	for _, rw := range t.RootWrappers {
		if rw.Name == name {
			return true
		}
	}
	return false
}

// IsProjectType reports whether a qualified name lives in the project namespace
// and outside every external namespace.
func (t *Tables) IsProjectType(name string) bool {
	if !strings.HasPrefix(name, t.Project+"::") {
		return false
	}
	for _, ns := range t.ExternalNamespaces {
		if name == ns || strings.HasPrefix(name, ns+"::") {
			return false
		}
	}
	return true
}
