package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"

	"github.com/Alia5/apigen/internal/configpaths"

	toml "github.com/pelletier/go-toml"
	yaml "gopkg.in/yaml.v3"
)

// ConfigCommand groups config-related subcommands.
type ConfigCommand struct {
	Init ConfigInit `cmd:"" help:"Write a configuration file holding a command's flag defaults"`
}

// ConfigInit writes the flag defaults of a command as a configuration file
// that the configuration loaders read back.
type ConfigInit struct {
	Command string `arg:"" name:"command" help:"Command to write the configuration of" enum:"generate" default:"generate"`
	Format  string `help:"Output format (json, yaml or toml)" default:"json"`
	Output  string `help:"Destination file path (defaults to .apigen/<command>.<ext> in the project)"`
	Force   bool   `help:"Overwrite if the file already exists"`
	Global  bool   `help:"Write to the user configuration directory instead of the project"`
}

// configurable lists the commands whose flags can be set from a configuration file.
var configurable = map[string]reflect.Type{
	"generate": reflect.TypeOf(Generate{}),
}

// Run is called by Kong when the config init command is executed.
func (c *ConfigInit) Run() error {
	format, err := configpaths.ParseFormat(c.Format)
	if err != nil {
		return err
	}
	typ, ok := configurable[c.Command]
	if !ok {
		return fmt.Errorf("unknown command %q; expected 'generate'", c.Command)
	}

	dest, err := c.destination(format)
	if err != nil {
		return err
	}
	if !c.Force {
		if _, err := os.Stat(dest); err == nil {
			return errors.New("destination exists; use --force to overwrite")
		}
	}

	data, err := encode(flagDefaults(typ), format)
	if err != nil {
		return fmt.Errorf("encode %s configuration: %w", format, err)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dest, data, 0o644)
}

func (c *ConfigInit) destination(format configpaths.Format) (string, error) {
	switch {
	case c.Output != "":
		return c.Output, nil
	case c.Global:
		return configpaths.UserFile(c.Command, format)
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(configpaths.ProjectDir(wd), configpaths.ProjectDirName)
	return filepath.Join(dir, c.Command+"."+format.Ext()), nil
}

func encode(values map[string]any, format configpaths.Format) ([]byte, error) {
	switch format {
	case configpaths.YAML:
		return yaml.Marshal(values)
	case configpaths.TOML:
		tree, err := toml.TreeFromMap(values)
		if err != nil {
			return nil, err
		}
		return tree.Marshal()
	default:
		return json.MarshalIndent(values, "", "  ")
	}
}

// flagDefaults maps each flag of a command struct to its default value, keyed
// the way kong's configuration resolvers look flags up. Positional arguments
// and nested commands are not configurable.
func flagDefaults(t reflect.Type) map[string]any {
	out := map[string]any{}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() || f.Tag.Get("kong") == "-" {
			continue
		}
		if _, ok := f.Tag.Lookup("arg"); ok {
			continue
		}
		if _, ok := f.Tag.Lookup("cmd"); ok {
			continue
		}
		key := f.Tag.Get("name")
		if key == "" {
			key = configKey(f.Name)
		}
		def := f.Tag.Get("default")
		switch f.Type.Kind() {
		case reflect.String:
			out[key] = def
		case reflect.Bool:
			b, _ := strconv.ParseBool(def)
			out[key] = b
		}
	}
	return out
}

// configKey spells a field name the way kong's configuration resolvers look it
// up: snake_case, so SourceRoot becomes source_root.
func configKey(s string) string {
	r := []rune(s)
	out := make([]rune, 0, len(r)+4)
	for i, c := range r {
		if c >= 'A' && c <= 'Z' {
			if i > 0 && (r[i-1] < 'A' || r[i-1] > 'Z') {
				out = append(out, '_')
			}
			c += 'a' - 'A'
		}
		out = append(out, c)
	}
	return string(out)
}
