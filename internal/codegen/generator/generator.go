// Package generator runs one wrapper-API generation over a library manifest.
package generator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/davecgh/go-spew/spew"

	"github.com/Alia5/apigen/internal/codegen/artifact"
	"github.com/Alia5/apigen/internal/codegen/common"
	"github.com/Alia5/apigen/internal/codegen/creator"
	"github.com/Alia5/apigen/internal/codegen/emitter"
	"github.com/Alia5/apigen/internal/codegen/generror"
	"github.com/Alia5/apigen/internal/codegen/lineage"
	"github.com/Alia5/apigen/internal/codegen/manifest"
	"github.com/Alia5/apigen/internal/codegen/scanner"
	"github.com/Alia5/apigen/internal/codegen/tables"
	"github.com/Alia5/apigen/internal/codegen/translate"
	"github.com/Alia5/apigen/internal/log"
)

// Options describes one run.
type Options struct {
	Project string
	Library string
	// Manifest is the .json, .yaml or .yml API definition of the library.
	Manifest    string
	SourceRoot  string
	HeadersRoot string
	OutputRoot  string
	// Version is the "major.minor" version the generated library is built for.
	Version string

	Tables      string
	Templates   string
	LicenceFile string
	Parser      string
	DryRun      bool
	// Trace, when set, records every written artifact.
	Trace log.ArtifactLogger
}

// Summary reports what a run produced.
type Summary struct {
	Classes    int
	Registered int
	Written    []string
	Counts     map[artifact.Kind]int
	// Guarded and Omitted list the deprecated entries, as Class::function.
	Guarded []string
	Omitted []string
	Stale   []string
}

// Generator wires the collaborators of one run.
type Generator struct {
	opts   Options
	logger *slog.Logger
}

// New returns a generator for opts.
func New(opts Options, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Generator{opts: opts, logger: logger}
}

// manifestLookup answers the emitter's questions about other classes. Classes
// of other libraries are lightweight only when the tables list them.
type manifestLookup struct {
	t  *tables.Tables
	m  *manifest.Manifest
	sc *scanner.Scanner
}

func (l manifestLookup) IsLightweight(class string) bool {
	if c, ok := l.m.Lookup(class); ok {
		return c.IsLightweight
	}
	return l.t.IsExternalLightweight(class)
}

func (l manifestLookup) IsPlugin(class string) (bool, error) { return l.sc.IsPlugin(class) }

func (g *Generator) tables() (*tables.Tables, error) {
	t := tables.Default(g.opts.Project, g.opts.Library)
	if g.opts.Tables != "" {
		var err error
		if t, err = tables.LoadOverride(g.opts.Tables, t); err != nil {
			return nil, err
		}
		g.logger.Info("Loaded tables override", "file", g.opts.Tables)
	}
	if g.opts.Version != "" {
		v, err := common.ParseProjectVersion(g.opts.Version)
		if err != nil {
			return nil, err
		}
		t.Version = v
	}
	if err := t.Validate(); err != nil {
		return nil, generror.Configuration("", g.opts.Tables, "", err.Error())
	}
	return &t, nil
}

// Run generates every artifact of the library. The first failure aborts the run.
func (g *Generator) Run() (*Summary, error) {
	t, err := g.tables()
	if err != nil {
		return nil, err
	}

	m, err := manifest.Load(g.opts.Manifest, t)
	if err != nil {
		return nil, fmt.Errorf("load manifest: %w", err)
	}
	g.logger.Info("Loaded manifest", "file", g.opts.Manifest, "classes", len(m.Classes))

	parser, err := scanner.NewParser(g.opts.Parser)
	if err != nil {
		return nil, err
	}
	exclusions, err := scanner.LoadExclusions(g.opts.SourceRoot)
	if err != nil {
		return nil, generror.IO(g.opts.SourceRoot, "load exclusion patterns", err)
	}
	sc := scanner.New(t, m, scanner.Options{
		SourceRoot:  g.opts.SourceRoot,
		HeadersRoot: g.opts.HeadersRoot,
		Parser:      parser,
		Exclusions:  exclusions,
	}, g.logger)

	roleOf := func(class string) (tables.Role, error) {
		if c, ok := m.Lookup(class); ok {
			return sc.Role(c)
		}
		a, err := sc.Classify(class)
		return a.Role, err
	}
	resolver := lineage.New(t, sc, roleOf)

	tmpl, err := artifact.LoadTemplates(g.opts.Templates)
	if err != nil {
		return nil, err
	}
	licenceText, err := common.LoadLicence(g.opts.LicenceFile, t.Project)
	if err != nil {
		return nil, err
	}
	licence := common.CommentLicence(licenceText)

	em := emitter.New(emitter.Config{
		Tables:     t,
		Templates:  tmpl,
		Translator: translate.New(t, sc.WrapExcluded),
		Lookup:     manifestLookup{t: t, m: m, sc: sc},
		Licence:    licence,
		Logger:     g.logger,
	})
	cr := creator.New(creator.Config{Tables: t, Templates: tmpl, Licence: licence, Logger: g.logger})

	var opts []artifact.WriterOption
	if g.opts.Trace != nil {
		opts = append(opts, artifact.WithTrace(g.opts.Trace))
	}
	if g.opts.DryRun {
		opts = append(opts, artifact.DryRun())
	}
	w := artifact.NewWriter(g.opts.OutputRoot, g.logger, opts...)

	sum := &Summary{Classes: len(m.Classes)}
	for _, c := range m.Classes {
		ec, err := g.resolve(sc, resolver, c)
		if err != nil {
			return nil, generror.WithClass(err, c.Name)
		}

		res, err := em.Emit(ec)
		if err != nil {
			return nil, err
		}
		sum.Guarded = append(sum.Guarded, res.Guarded...)
		sum.Omitted = append(sum.Omitted, res.Omitted...)
		if err := writeAll(w, res.Artifacts); err != nil {
			return nil, err
		}

		creators, err := cr.Emit(ec)
		if err != nil {
			return nil, generror.WithClass(err, c.Name)
		}
		if err := writeAll(w, creators); err != nil {
			return nil, err
		}
		g.logger.Info("Generated wrapper", "class", c.Name, "role", ec.Role, "derived", ec.Lineage.IsDerived,
			"files", len(res.Artifacts)+len(creators))
	}

	reg, err := cr.Registration()
	if err != nil {
		return nil, err
	}
	if err := writeAll(w, reg); err != nil {
		return nil, err
	}

	sum.Registered = len(cr.Registered())
	sum.Written = w.Written()
	sum.Counts = w.Count()
	if !g.opts.DryRun {
		if sum.Stale, err = w.Stale(); err != nil {
			return nil, err
		}
		for _, s := range sum.Stale {
			g.logger.Warn("File in output root not produced by this run", "path", s)
		}
	}
	g.logger.Info("Generation complete", "classes", sum.Classes, "files", len(sum.Written),
		"registered", sum.Registered, "deprecated_guarded", len(sum.Guarded), "deprecated_omitted", len(sum.Omitted))
	return sum, nil
}

// resolve gathers everything the emitters need to know about one class.
func (g *Generator) resolve(sc *scanner.Scanner, resolver *lineage.Resolver, c *manifest.Class) (*emitter.Class, error) {
	role, err := sc.Role(c)
	if err != nil {
		return nil, err
	}
	notInstantiable, err := sc.ProtectedConstructors(c)
	if err != nil {
		return nil, err
	}
	lin, err := resolver.Get(c.Name)
	if err != nil {
		return nil, err
	}
	ec := &emitter.Class{Class: c, Lineage: lin, Role: role, NotInstantiable: notInstantiable}
	if g.logger.Enabled(context.Background(), log.LevelTrace) {
		g.logger.Log(context.Background(), log.LevelTrace, "Resolved class", "class", c.Name, "resolution", spew.Sdump(lin, role, notInstantiable))
	}
	return ec, nil
}

func writeAll(w *artifact.Writer, as []*artifact.Artifact) error {
	for _, a := range as {
		if err := w.Write(a); err != nil {
			return err
		}
	}
	return nil
}
