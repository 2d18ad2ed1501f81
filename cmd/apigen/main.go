package main

import (
	"os"
	"strings"

	"github.com/Alia5/apigen/internal/codegen/common"
	"github.com/Alia5/apigen/internal/config"
	"github.com/Alia5/apigen/internal/configpaths"
	"github.com/Alia5/apigen/internal/log"

	"github.com/alecthomas/kong"
	kongtoml "github.com/alecthomas/kong-toml"
	kongyaml "github.com/alecthomas/kong-yaml"
)

func main() {

	wd, _ := os.Getwd()
	candidates := configpaths.Search(findUserConfig(os.Args[1:]), wd)

	version, err := common.GetVersion()
	if err != nil {
		version = common.Version
	}

	var cli config.CLI
	ctx := kong.Parse(&cli,
		kong.Name("apigen"),
		kong.Description("Generates thread-safe C++ wrapper APIs from class manifests"),
		kong.UsageOnError(),
		kong.Vars{"version": version},
		// Load configuration from JSON/YAML/TOML in priority order; flags/env override config values.
		kong.Configuration(kong.JSON, candidates.JSON...),
		kong.Configuration(kongyaml.Loader, candidates.YAML...),
		kong.Configuration(kongtoml.Loader, candidates.TOML...),
	)

	logger, closeFiles, err := log.SetupLogger(cli.Log.Level, cli.Log.File, cli.Log.Format)
	if err != nil {
		_, _ = os.Stderr.WriteString("failed to setup logger: " + err.Error() + "\n")
		os.Exit(2)
	}
	defer func() {
		for _, c := range closeFiles {
			_ = c.Close()
		}
	}()

	var trace log.ArtifactLogger
	if cli.Log.ArtifactFile != "" {
		f, err := os.OpenFile(cli.Log.ArtifactFile, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
		if err != nil {
			logger.Error("failed to open artifact log file", "file", cli.Log.ArtifactFile, "error", err)
			trace = log.NewArtifact(nil)
		} else {
			trace = log.NewArtifact(f)
			closeFiles = append(closeFiles, f)
		}
	} else if cli.Log.Level == "trace" {
		trace = log.NewArtifact(os.Stdout)
	} else {
		trace = log.NewArtifact(nil)
	}

	logger.Debug("apigen starting", "version", version)
	ctx.Bind(logger)
	ctx.BindTo(trace, (*log.ArtifactLogger)(nil))

	err = ctx.Run()
	ctx.FatalIfErrorf(err)
}

func findUserConfig(args []string) string {
	for i := 0; i < len(args); i++ {
		a := args[i]
		if strings.HasPrefix(a, "--config=") {
			return a[len("--config="):]
		}
		if a == "--config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	if v := os.Getenv("APIGEN_CONFIG"); v != "" {
		return v
	}
	return ""
}
