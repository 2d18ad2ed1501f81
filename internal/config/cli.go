// Package config holds the kong command-line root of apigen.
package config

import (
	"github.com/alecthomas/kong"

	"github.com/Alia5/apigen/internal/cmd"
)

// Log configures the process logger.
type Log struct {
	Level        string `help:"Log level: trace, debug, info, warn or error" default:"info" enum:"trace,debug,info,warn,error" env:"APIGEN_LOG_LEVEL"`
	File         string `help:"Write logs to this file instead of stdout/stderr" env:"APIGEN_LOG_FILE"`
	Format       string `help:"Log format: auto picks text on a terminal and json otherwise" default:"auto" enum:"auto,text,json" env:"APIGEN_LOG_FORMAT"`
	ArtifactFile string `help:"Record every written artifact (kind, size, sha256, path) to this file" env:"APIGEN_LOG_ARTIFACT_FILE"`
}

// CLI is the root command structure.
type CLI struct {
	Version kong.VersionFlag `help:"Print the apigen version and exit"`
	Config  string           `help:"Path to a configuration file (.json, .yaml, .yml or .toml)" type:"path" env:"APIGEN_CONFIG"`
	Log     Log              `embed:"" prefix:"log."`

	Generate  cmd.Generate      `cmd:"" help:"Generate the wrapper API of one library"`
	ConfigCmd cmd.ConfigCommand `cmd:"" name:"config" help:"Configuration helpers"`
}
