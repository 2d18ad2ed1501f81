// Package creator renders the plugin creators of plugin-capable classes and
// the registration unit that hands them to the plugin registry.
package creator

import (
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/Alia5/apigen/internal/codegen/artifact"
	"github.com/Alia5/apigen/internal/codegen/common"
	"github.com/Alia5/apigen/internal/codegen/emitter"
	"github.com/Alia5/apigen/internal/codegen/tables"
)

// Config holds the collaborators shared by every creator of a run.
type Config struct {
	Tables    *tables.Tables
	Templates *artifact.Templates
	// Licence is the commented licence block placed atop every file.
	Licence string
	Logger  *slog.Logger
}

// Generator renders creators and remembers which of them are registered.
type Generator struct {
	cfg        Config
	logger     *slog.Logger
	registered []string
}

// New returns a creator generator.
func New(cfg Config) *Generator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Generator{cfg: cfg, logger: logger}
}

// Registered returns the classes whose creators are registered, in emission order.
func (g *Generator) Registered() []string { return append([]string(nil), g.registered...) }

// Emit renders the creator triplet of a plugin-capable class. Classes of
// other roles have no creator. Non-instantiable classes get a creator whose
// instantiation is compiled out, and are not registered.
func (g *Generator) Emit(c *emitter.Class) ([]*artifact.Artifact, error) {
	if !c.Role.IsPlugin() {
		return nil, nil
	}
	t := g.cfg.Tables
	rw := t.RootWrapper(c.Role)
	if rw.CreatorBase == "" {
		return nil, fmt.Errorf("no creator base configured for role %q of %s", c.Role, c.Name)
	}
	pluginRoot := t.RootWrapper(tables.RolePlugin)
	pluginMarker := ""
	for _, m := range t.Markers {
		if m.Role == tables.RolePlugin {
			pluginMarker = m.Name
			break
		}
	}

	ns, last := tables.SplitQualified(c.Name)
	creatorNS := t.WrapperNamespace(c.Name)
	creatorClass := t.CreatorClass(c.Name)
	apiClass := t.WrapperClass(c.Name)

	protos, impls, err := roleFunctions(creatorClass, c)
	if err != nil {
		return nil, fmt.Errorf("render role functions of %s: %w", creatorClass, err)
	}

	objectParam := "object"
	if c.NotInstantiable {
		objectParam = "/*object*/"
	}

	tokens := map[string]string{
		"LICENCE":                 g.cfg.Licence,
		"SOURCE_CLASS":            c.Name,
		"SOURCE_CLASS_NAME":       last,
		"SOURCE_CLASS_NAMESPACE":  strings.Join(ns, "::"),
		"API_CLASS":               apiClass,
		"CREATOR_CLASS":           creatorClass,
		"CREATOR_CLASS_QUALIFIED": t.CreatorName(c.Name),
		"CREATOR_NAMESPACE":       strings.Join(creatorNS, "::"),
		"NAMESPACE_OPEN":          common.NamespaceOpen(creatorNS),
		"NAMESPACE_CLOSE":         common.NamespaceClose(creatorNS),
		"CREATOR_BASE":            rw.CreatorBase,
		"CREATOR_BASE_INCLUDE":    common.Include(rw.CreatorInclude),
		"CREATOR_FWD_INCLUDE":     common.Include(t.CreatorBasePath(c.Name) + ".fwd.hh"),
		"CREATOR_HH_INCLUDE":      common.Include(t.CreatorBasePath(c.Name) + ".hh"),
		"HH_INCLUDE":              common.Include(t.WrapperInclude(c.Name)),
		"SOURCE_HH_INCLUDE":       common.Include(t.SourceInclude(c.Name)),
		"ERROR_INCLUDE":           common.Include(t.ErrorInclude),
		"THROW_MACRO":             t.ThrowMacro,
		"PLUGIN_API_CLASS":        pluginRoot.Name,
		"PLUGIN_CLASS":            pluginMarker,
		"PLUGIN_CATEGORIES":       common.QuoteNestedList(c.PluginCategories),
		"PLUGIN_KEYWORDS":         common.QuoteList(c.PluginKeywords),
		"OBJECT_PARAM":            objectParam,
		"ROLE_PROTOTYPES":         protos,
		"ROLE_IMPLEMENTATIONS":    impls,
		"SHARED_POINTER":          t.SharedPointer,
		"WEAK_POINTER":            t.WeakPointer,
		"MAKE_SHARED":             t.MakeShared,
	}

	base := t.CreatorBasePath(c.Name)
	out, err := g.render(tokens, []file{
		{artifact.KindCreatorForward, artifact.TemplateCreatorForward, base + ".fwd.hh"},
		{artifact.KindCreatorHeader, artifact.TemplatePluginCreatorHeader, base + ".hh"},
		{artifact.KindCreatorImplementation, artifact.TemplatePluginCreatorSource, base + ".cc"},
	}, c.Name)
	if err != nil {
		return nil, err
	}

	if c.NotInstantiable {
		g.logger.Debug("Creator not registered", "class", c.Name, "reason", "protected constructors")
	} else {
		g.registered = append(g.registered, c.Name)
	}
	return out, nil
}

type file struct {
	kind     artifact.Kind
	template string
	path     string
}

func (g *Generator) render(tokens map[string]string, files []file, class string) ([]*artifact.Artifact, error) {
	out := make([]*artifact.Artifact, 0, len(files))
	for _, f := range files {
		tokens["FILE_PATH"] = f.path
		tokens["HEADER_GUARD_OPEN"] = common.GuardOpen(f.path)
		tokens["HEADER_GUARD_CLOSE"] = common.GuardClose(f.path)
		text, err := g.cfg.Templates.Render(f.template, tokens)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", f.path, err)
		}
		out = append(out, &artifact.Artifact{Kind: f.kind, Path: f.path, Text: text, Class: class})
	}
	return out, nil
}

// RegistrationPath returns the output path of the registration unit, without extension.
func RegistrationPath(t *tables.Tables) string {
	dir := path.Dir(t.WrapperBasePath(t.Project + "::" + t.Library + "::_"))
	return path.Join(dir, "registration", "register_"+t.Library)
}

// Registration renders the unit that constructs every registered creator and
// hands them to the plugin registry. It returns nothing when no creator was registered.
func (g *Generator) Registration() ([]*artifact.Artifact, error) {
	if len(g.registered) == 0 {
		return nil, nil
	}
	t := g.cfg.Tables
	pluginRoot := t.RootWrapper(tables.RolePlugin)
	ns := append(t.LibraryNamespace(), "registration")

	includes := make([]string, len(g.registered))
	constructions := make([]string, len(g.registered))
	for i, c := range g.registered {
		includes[i] = t.CreatorBasePath(c) + ".hh"
		constructions[i] = t.MakeShared + "< " + t.CreatorName(c) + " >()"
	}

	base := RegistrationPath(t)
	tokens := map[string]string{
		"LICENCE":                 g.cfg.Licence,
		"LIBRARY":                 t.Library,
		"NAMESPACE_OPEN":          common.NamespaceOpen(ns),
		"NAMESPACE_CLOSE":         common.NamespaceClose(ns),
		"HH_INCLUDE":              common.Include(base + ".hh"),
		"CREATOR_BASE":            pluginRoot.CreatorBase,
		"CREATOR_BASE_INCLUDE":    common.Include(pluginRoot.CreatorInclude),
		"CREATOR_INCLUDES":        common.Includes(includes),
		"CREATOR_CONSTRUCTIONS":   strings.Join(constructions, ",\n        "),
		"PLUGIN_REGISTRY":         t.PluginRegistry,
		"PLUGIN_REGISTRY_INCLUDE": common.Include(t.PluginRegistryInclude),
	}
	g.logger.Info("Registering creators", "count", len(g.registered), "path", base)
	return g.render(tokens, []file{
		{artifact.KindRegistrationHeader, artifact.TemplateRegistrationHeader, base + ".hh"},
		{artifact.KindRegistrationSource, artifact.TemplateRegistrationSource, base + ".cc"},
	}, "")
}
