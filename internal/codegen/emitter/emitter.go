// Package emitter renders the forward declaration, header and implementation
// of the wrapper of one manifest class.
package emitter

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/Alia5/apigen/internal/codegen/artifact"
	"github.com/Alia5/apigen/internal/codegen/common"
	"github.com/Alia5/apigen/internal/codegen/generror"
	"github.com/Alia5/apigen/internal/codegen/lineage"
	"github.com/Alia5/apigen/internal/codegen/manifest"
	"github.com/Alia5/apigen/internal/codegen/tables"
	"github.com/Alia5/apigen/internal/codegen/translate"
)

// Lookup answers questions about classes referenced by the class being emitted.
type Lookup interface {
	IsLightweight(class string) bool
	IsPlugin(class string) (bool, error)
}

// Config holds the collaborators shared by every class of a run.
type Config struct {
	Tables     *tables.Tables
	Templates  *artifact.Templates
	Translator *translate.Translator
	Lookup     Lookup
	// Licence is the commented licence block placed atop every file.
	Licence string
	Logger  *slog.Logger
}

// Emitter renders wrapper artifacts.
type Emitter struct {
	cfg    Config
	logger *slog.Logger
}

// New returns an emitter.
func New(cfg Config) *Emitter {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Emitter{cfg: cfg, logger: logger}
}

// Class is a manifest class together with everything resolved about it.
type Class struct {
	*manifest.Class
	Lineage lineage.Lineage
	Role    tables.Role
	// NotInstantiable is set when every constructor of the class is protected.
	NotInstantiable bool
}

// Result is the output of emitting one class.
type Result struct {
	// Artifacts are the forward declaration, header and implementation, in that order.
	Artifacts []*artifact.Artifact
	// Guarded and Omitted name the deprecated entries that were gated.
	Guarded []string
	Omitted []string
}

// variant selects the template pair used for a class.
type variant int

const (
	variantRoot variant = iota
	variantDerived
	variantLightweight
	variantLightweightDerived
)

func variantOf(c *Class) variant {
	switch {
	case c.IsLightweight && c.Lineage.IsDerived:
		return variantLightweightDerived
	case c.IsLightweight:
		return variantLightweight
	case c.Lineage.IsDerived:
		return variantDerived
	default:
		return variantRoot
	}
}

func (v variant) templates() (header, source string) {
	switch v {
	case variantDerived:
		return artifact.TemplateDerivedHeader, artifact.TemplateDerivedSource
	case variantLightweight:
		return artifact.TemplateLightweightHeader, artifact.TemplateLightweightSource
	case variantLightweightDerived:
		return artifact.TemplateLightDerivedHeader, artifact.TemplateLightDerivedSource
	default:
		return artifact.TemplateClassHeader, artifact.TemplateClassSource
	}
}

func (v variant) derived() bool { return v == variantDerived || v == variantLightweightDerived }

func (v variant) lightweight() bool {
	return v == variantLightweight || v == variantLightweightDerived
}

// mutex is the expression naming the wrapper's guard.
func (v variant) mutex() string {
	if v.derived() {
		return "api_mutex()"
	}
	return "api_mutex_"
}

// inner is the member-access prefix reaching the wrapped object.
func (v variant) inner(source string, isConst bool) string {
	c := ""
	if isConst {
		c = " const"
	}
	switch v {
	case variantDerived:
		return "std::static_pointer_cast< " + source + c + " >( inner_object() )->"
	case variantLightweight:
		return "inner_object_."
	case variantLightweightDerived:
		return "static_cast< " + source + c + " & >( inner_object() )."
	default:
		return "inner_object_->"
	}
}

// unit is the per-class state of one Emit call.
type unit struct {
	e       *Emitter
	cls     *Class
	variant variant
	source  string
	api     string
	// includes collects what translated signatures need; implementation
	// collects headers only the implementation file needs.
	includes       *translate.IncludeSet
	implementation *translate.IncludeSet
}

// Emit renders the wrapper triplet of one class.
func (e *Emitter) Emit(c *Class) (*Result, error) {
	t := e.cfg.Tables
	u := &unit{
		e:              e,
		cls:            c,
		variant:        variantOf(c),
		source:         c.Name,
		api:            t.WrapperClass(c.Name),
		includes:       translate.NewIncludeSet(),
		implementation: translate.NewIncludeSet(),
	}

	groups, res, err := u.entries()
	if err != nil {
		return nil, generror.WithClass(err, c.Name)
	}
	tokens, err := u.tokens(groups)
	if err != nil {
		return nil, generror.WithClass(err, c.Name)
	}

	base := t.WrapperBasePath(c.Name)
	hhTemplate, ccTemplate := u.variant.templates()
	files := []struct {
		kind     artifact.Kind
		template string
		path     string
	}{
		{artifact.KindForward, artifact.TemplateAPIForward, base + ".fwd.hh"},
		{artifact.KindHeader, hhTemplate, base + ".hh"},
		{artifact.KindImplementation, ccTemplate, base + ".cc"},
	}
	for _, f := range files {
		tokens["FILE_PATH"] = f.path
		tokens["HEADER_GUARD_OPEN"] = common.GuardOpen(f.path)
		tokens["HEADER_GUARD_CLOSE"] = common.GuardClose(f.path)
		text, err := e.cfg.Templates.Render(f.template, tokens)
		if err != nil {
			return nil, fmt.Errorf("render %s for %s: %w", f.path, c.Name, err)
		}
		res.Artifacts = append(res.Artifacts, &artifact.Artifact{Kind: f.kind, Path: f.path, Text: text, Class: c.Name})
	}

	e.logger.Debug("Emitted wrapper", "class", c.Name, "template", hhTemplate,
		"derived", c.Lineage.IsDerived, "guarded", len(res.Guarded), "omitted", len(res.Omitted))
	return res, nil
}

// group is the rendered declarations and implementations of one function kind.
type group struct {
	prototypes      []string
	implementations []string
}

func (g *group) add(proto, impl string) {
	g.prototypes = append(g.prototypes, proto)
	g.implementations = append(g.implementations, impl)
}

func (g *group) text() (string, string) {
	return strings.Join(g.prototypes, "\n\n"), strings.Join(g.implementations, "\n\n")
}

// entries renders every manifest function of the class, grouped by kind.
func (u *unit) entries() (map[manifest.FunctionKind]*group, *Result, error) {
	t := u.e.cfg.Tables
	res := &Result{}
	groups := map[manifest.FunctionKind]*group{
		manifest.Constructor:  {},
		manifest.Setter:       {},
		manifest.Getter:       {},
		manifest.WorkFunction: {},
	}
	for _, fn := range u.cls.Functions() {
		if fn.Kind == manifest.Constructor && (fn.IsProtected || u.cls.NotInstantiable) {
			continue
		}
		gate := DeprecationGate(fn.Deprecation, t.Version)
		if gate == GateOmitted {
			res.Omitted = append(res.Omitted, fn.Name)
			u.e.logger.Debug("Omitting removed entry", "class", u.cls.Name, "entry", fn.Name, "removal", fn.Deprecation.Removal)
			continue
		}
		en, err := u.entry(fn)
		if err != nil {
			return nil, nil, err
		}
		proto, impl, err := en.render()
		if err != nil {
			return nil, nil, err
		}
		if gate == GateGuarded {
			res.Guarded = append(res.Guarded, fn.Name)
			proto = guard(t.DeprecationGuard(), proto)
			impl = guard(t.DeprecationGuard(), impl)
		}
		groups[fn.Kind].add(proto, impl)
	}
	return groups, res, nil
}

func (u *unit) tokens(groups map[manifest.FunctionKind]*group) (map[string]string, error) {
	t := u.e.cfg.Tables
	c := u.cls
	ns, last := tables.SplitQualified(c.Name)
	apiNS := t.WrapperNamespace(c.Name)

	roleProtos, roleImpls, err := u.roleEntries()
	if err != nil {
		return nil, err
	}

	// Signature includes: wrapper headers are forward declared in the header
	// and fully included, with their source class, in the implementation.
	var fwd, hh []string
	for _, inc := range u.includes.Items() {
		if inc.Class == c.Name {
			continue
		}
		if inc.Class == "" {
			fwd = append(fwd, inc.Path)
			continue
		}
		fwd = append(fwd, "<"+t.WrapperForwardInclude(inc.Class)+">")
		hh = append(hh, inc.Path)
	}
	hh = append(hh, u.implementation.Paths()...)

	brief := common.Doc("", "brief", c.Description)
	if brief == "" {
		brief = common.Doc("", "brief", "A wrapper for the "+last+" class.")
	}

	tokens := map[string]string{
		"LICENCE":                 u.e.cfg.Licence,
		"BRIEF":                   brief,
		"DETAILS":                 common.Doc("", "details", "This class provides a thread-safe API for "+c.Name+"."),
		"API_DEFINITION_ACCESSOR": t.APIDefinitionAccessor,

		"SOURCE_CLASS":           c.Name,
		"SOURCE_CLASS_NAME":      last,
		"SOURCE_CLASS_NAMESPACE": strings.Join(ns, "::"),
		"API_CLASS":              u.api,
		"API_CLASS_QUALIFIED":    t.WrapperName(c.Name),
		"API_NAMESPACE":          strings.Join(apiNS, "::"),
		"NAMESPACE_OPEN":         common.NamespaceOpen(apiNS),
		"NAMESPACE_CLOSE":        common.NamespaceClose(apiNS),

		"FWD_INCLUDE":        common.Include(t.WrapperForwardInclude(c.Name)),
		"HH_INCLUDE":         common.Include(t.WrapperInclude(c.Name)),
		"SOURCE_FWD_INCLUDE": common.Include(t.SourceForwardInclude(c.Name)),
		"SOURCE_HH_INCLUDE":  common.Include(t.SourceInclude(c.Name)),
		"BASE_INCLUDE":       common.Include(c.Lineage.BaseInclude),
		"BASE_API_CLASS":     c.Lineage.BaseWrapper,
		"ROOT_API_CLASS":     c.Lineage.Root,

		"ADDITIONAL_FWD_INCLUDES": common.Includes(fwd),
		"ADDITIONAL_HH_INCLUDES":  common.Includes(hh),

		"ROLE_PROTOTYPES":      roleProtos,
		"ROLE_IMPLEMENTATIONS": roleImpls,

		"SHARED_POINTER": t.SharedPointer,
		"WEAK_POINTER":   t.WeakPointer,
		"MAKE_SHARED":    t.MakeShared,
	}

	for kind, prefix := range map[manifest.FunctionKind]string{
		manifest.Constructor:  "CONSTRUCTOR",
		manifest.Setter:       "SETTER",
		manifest.Getter:       "GETTER",
		manifest.WorkFunction: "WORK_FUNCTION",
	} {
		tokens[prefix+"_PROTOTYPES"], tokens[prefix+"_IMPLEMENTATIONS"] = groups[kind].text()
	}

	tokens["NOT_INSTANTIABLE_DEFINE"] = ""
	tokens["PURE_IF_NOT_INSTANTIABLE"] = ""
	if c.NotInstantiable {
		tokens["NOT_INSTANTIABLE_DEFINE"] = "#define " + u.api + "_NOT_INSTANTIABLE"
		tokens["PURE_IF_NOT_INSTANTIABLE"] = " = 0"
	}
	return tokens, nil
}
