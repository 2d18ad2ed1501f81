// Package configpaths locates apigen's configuration files and the
// per-project generator inputs kept beside them.
//
// A project keeps its settings either in an apigen.{json,yaml,yml,toml} file at
// its root or in a .apigen directory there:
//
//	.apigen/generate.yaml           flag defaults for "apigen generate"
//	.apigen/<library>.tables.yaml   lookup table overrides for one library
//	.apigen/tables.toml             lookup table overrides for every library
//	.apigen/templates/              template overrides
//	.apigen/LICENCE                 licence text placed atop generated files
package configpaths

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// ProjectDirName is the per-project settings directory.
const ProjectDirName = ".apigen"

// Format is a configuration file syntax.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
	TOML Format = "toml"
)

// ParseFormat normalizes a format name. yml is YAML.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	case "toml":
		return TOML, nil
	}
	return "", fmt.Errorf("unsupported format: %s", name)
}

// FormatOf returns the format implied by a file's extension; unknown extensions are JSON.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML
	case ".toml":
		return TOML
	}
	return JSON
}

// Ext returns the file extension written for f, without the dot.
func (f Format) Ext() string { return string(f) }

var extensions = []string{".json", ".yaml", ".yml", ".toml"}

// Candidates are configuration files in lookup order, split by loader.
type Candidates struct {
	JSON []string
	YAML []string
	TOML []string
}

func (c *Candidates) add(path string) {
	switch FormatOf(path) {
	case YAML:
		c.YAML = append(c.YAML, path)
	case TOML:
		c.TOML = append(c.TOML, path)
	default:
		c.JSON = append(c.JSON, path)
	}
}

func (c *Candidates) addBases(dir string, bases ...string) {
	for _, base := range bases {
		for _, ext := range extensions {
			c.add(filepath.Join(dir, base+ext))
		}
	}
}

// Search lists the configuration files for a run started in wd. An explicit
// userPath comes first, then the project's files, then the user's, then the
// system's.
func Search(userPath, wd string) Candidates {
	var c Candidates
	if userPath != "" {
		c.add(userPath)
	}

	project := ProjectDir(wd)
	c.addBases(project, "apigen")
	c.addBases(filepath.Join(project, ProjectDirName), "config", "generate")

	if dir, err := UserDir(); err == nil {
		c.addBases(dir, "config", "generate")
	}
	if runtime.GOOS != "windows" {
		c.addBases("/etc/apigen", "config", "generate")
	}
	return c
}

// ProjectDir returns the nearest directory at or above start that holds a
// .apigen directory or an apigen configuration file. Without one, start is the project.
func ProjectDir(start string) string {
	start, err := filepath.Abs(start)
	if err != nil {
		return start
	}
	for dir := start; ; {
		if isDir(filepath.Join(dir, ProjectDirName)) {
			return dir
		}
		for _, ext := range extensions {
			if isFile(filepath.Join(dir, "apigen"+ext)) {
				return dir
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return start
		}
		dir = parent
	}
}

// Inputs are generator inputs found in a project's settings directory.
// Empty fields were not found.
type Inputs struct {
	Tables    string
	Templates string
	Licence   string
}

// FindInputs looks for library's inputs under the .apigen directory of project.
// Library-specific tables win over the shared ones.
func FindInputs(project, library string) Inputs {
	dir := filepath.Join(project, ProjectDirName)
	var in Inputs
	for _, base := range []string{library + ".tables", "tables"} {
		for _, ext := range []string{".yaml", ".yml", ".toml"} {
			if p := filepath.Join(dir, base+ext); in.Tables == "" && isFile(p) {
				in.Tables = p
			}
		}
	}
	if p := filepath.Join(dir, "templates"); isDir(p) {
		in.Templates = p
	}
	if p := filepath.Join(dir, "LICENCE"); isFile(p) {
		in.Licence = p
	}
	return in
}

// UserDir returns the user's apigen configuration directory.
func UserDir() (string, error) {
	if runtime.GOOS == "windows" {
		if appdata := os.Getenv("AppData"); appdata != "" {
			return filepath.Join(appdata, "apigen"), nil
		}
		return "", errors.New("AppData not set")
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "apigen"), nil
	}
	if home := os.Getenv("HOME"); home != "" {
		return filepath.Join(home, ".config", "apigen"), nil
	}
	return "", errors.New("HOME not set")
}

// UserFile returns the path of a named configuration file in the user's directory.
func UserFile(name string, f Format) (string, error) {
	dir, err := UserDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name+"."+f.Ext()), nil
}

func isDir(p string) bool {
	fi, err := os.Stat(p)
	return err == nil && fi.IsDir()
}

func isFile(p string) bool {
	fi, err := os.Stat(p)
	return err == nil && fi.Mode().IsRegular()
}
