package cmd

import (
	"errors"
	"log/slog"
	"os"

	"github.com/Alia5/apigen/internal/codegen/generator"
	"github.com/Alia5/apigen/internal/codegen/generror"
	"github.com/Alia5/apigen/internal/configpaths"
	"github.com/Alia5/apigen/internal/log"
)

// Generate renders the wrapper API, plugin creators and registration unit of one library.
type Generate struct {
	Project     string `help:"Project namespace and name, e.g. masala" default:"masala" env:"APIGEN_PROJECT"`
	Library     string `help:"Library whose classes are wrapped, e.g. numeric" required:"" env:"APIGEN_LIBRARY"`
	Manifest    string `help:"API definition of the library (.json, .yaml or .yml)" required:"" type:"path" env:"APIGEN_MANIFEST"`
	SourceRoot  string `help:"Root of the project's own declaration files" default:"./src" type:"path" env:"APIGEN_SOURCE_ROOT"`
	HeadersRoot string `help:"Root of the copied headers of other projects" default:"./headers" type:"path" env:"APIGEN_HEADERS_ROOT"`
	Output      string `help:"Output root for generated sources" default:"./src" type:"path" env:"APIGEN_OUTPUT"`
	Version     string `help:"Version (major.minor) the generated library is built for" default:"0.0" env:"APIGEN_VERSION"`
	Tables      string `help:"YAML or TOML file overriding the built-in lookup tables" type:"path" env:"APIGEN_TABLES"`
	Templates   string `help:"Directory of <template>.tmpl files replacing the embedded templates" type:"path" env:"APIGEN_TEMPLATES"`
	Licence     string `help:"Licence text placed atop every generated file" type:"path" env:"APIGEN_LICENCE"`
	Parser      string `help:"Declaration parser" default:"treesitter" enum:"treesitter,lexical" env:"APIGEN_PARSER"`
	DryRun      bool   `help:"Resolve and render everything without writing files" env:"APIGEN_DRY_RUN"`
}

// Run is called by Kong when the generate command is executed.
func (g *Generate) Run(logger *slog.Logger, trace log.ArtifactLogger) error {
	logger.Info("Starting wrapper API generation", "project", g.Project, "library", g.Library, "manifest", g.Manifest)
	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	g.applyProjectInputs(configpaths.FindInputs(configpaths.ProjectDir(wd), g.Library), logger)

	gen := generator.New(generator.Options{
		Project:     g.Project,
		Library:     g.Library,
		Manifest:    g.Manifest,
		SourceRoot:  g.SourceRoot,
		HeadersRoot: g.HeadersRoot,
		OutputRoot:  g.Output,
		Version:     g.Version,
		Tables:      g.Tables,
		Templates:   g.Templates,
		LicenceFile: g.Licence,
		Parser:      g.Parser,
		DryRun:      g.DryRun,
		Trace:       trace,
	}, logger)

	sum, err := gen.Run()
	if err != nil {
		var ge *generror.Error
		if errors.As(err, &ge) {
			logger.Error("Generation failed", "kind", ge.Kind, "class", ge.Class, "file", ge.File, "pattern", ge.Pattern, "detail", ge.Detail)
		}
		return err
	}
	for _, fn := range sum.Omitted {
		logger.Debug("Deprecated function omitted", "function", fn)
	}
	logger.Info("Wrapper API generated", "output", g.Output, "files", len(sum.Written), "creators", sum.Registered, "dry_run", g.DryRun)
	return nil
}

// applyProjectInputs fills the file flags left unset from the project's .apigen directory.
func (g *Generate) applyProjectInputs(in configpaths.Inputs, logger *slog.Logger) {
	for _, f := range []struct {
		name  string
		flag  *string
		found string
	}{
		{"tables", &g.Tables, in.Tables},
		{"templates", &g.Templates, in.Templates},
		{"licence", &g.Licence, in.Licence},
	} {
		if *f.flag == "" && f.found != "" {
			*f.flag = f.found
			logger.Debug("Using project input", "input", f.name, "path", f.found)
		}
	}
}
