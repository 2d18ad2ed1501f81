package tables

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"
)

// LoadOverride reads a YAML or TOML file and applies it on top of base.
// Keys absent from the file keep their base value; lists present in the file
// replace the base list entirely. The naming keys may sit at the top level or
// under a "naming" table.
func LoadOverride(path string, base Tables) (Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Tables{}, fmt.Errorf("read tables override: %w", err)
	}

	var raw map[string]any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return Tables{}, fmt.Errorf("parse tables override %s: %w", path, err)
		}
	case ".toml":
		tree, err := toml.LoadBytes(data)
		if err != nil {
			return Tables{}, fmt.Errorf("parse tables override %s: %w", path, err)
		}
		raw = tree.ToMap()
	default:
		return Tables{}, fmt.Errorf("tables override %s: unsupported extension (want .yaml, .yml or .toml)", path)
	}

	return Apply(base, raw)
}

// Apply merges a decoded key/value overlay onto base.
func Apply(base Tables, raw map[string]any) (Tables, error) {
	if naming, ok := raw["naming"].(map[string]any); ok {
		delete(raw, "naming")
		for k, v := range naming {
			if _, exists := raw[k]; !exists {
				raw[k] = v
			}
		}
	}

	// Round-trip through YAML so both formats share yaml.v3's merge-into-struct semantics.
	buf, err := yaml.Marshal(raw)
	if err != nil {
		return Tables{}, fmt.Errorf("encode tables overlay: %w", err)
	}
	out := base
	out.Containers = cloneEntries(base.Containers)
	out.Indirections = cloneEntries(base.Indirections)
	out.Enumerations = cloneEntries(base.Enumerations)
	out.RootAPITypes = cloneEntries(base.RootAPITypes)
	out.ExternalNamespaces = append([]string(nil), base.ExternalNamespaces...)
	out.Markers = append([]Marker(nil), base.Markers...)
	out.RootWrappers = append([]RootWrapper(nil), base.RootWrappers...)
	out.LightweightClasses = append([]string(nil), base.LightweightClasses...)
	if err := yaml.Unmarshal(buf, &out); err != nil {
		return Tables{}, fmt.Errorf("decode tables overlay: %w", err)
	}
	if err := out.Validate(); err != nil {
		return Tables{}, err
	}
	return out, nil
}

func cloneEntries(in []TypeEntry) []TypeEntry {
	return append([]TypeEntry(nil), in...)
}
