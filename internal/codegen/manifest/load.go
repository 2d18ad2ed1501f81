package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"gopkg.in/yaml.v3"

	"github.com/Alia5/apigen/internal/codegen/generror"
	"github.com/Alia5/apigen/internal/codegen/tables"
)

// rawElement is one undecoded manifest element in document order.
type rawElement struct {
	key  string
	body object
}

// Load reads a JSON (.json) or YAML (.yaml, .yml) manifest.
func Load(path string, t *tables.Tables) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, generror.IO(path, "read manifest", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data, path, t)
	default:
		return ParseJSON(data, path, t)
	}
}

// ParseJSON decodes a JSON manifest, keeping the order of Elements.
func ParseJSON(data []byte, file string, t *tables.Tables) (*Manifest, error) {
	dec := jsontext.NewDecoder(bytes.NewReader(data))
	bad := func(detail string, err error) error {
		return &generror.Error{Kind: generror.KindConfiguration, File: file, Pattern: "Elements", Detail: detail, Err: err}
	}

	tok, err := dec.ReadToken()
	if err != nil {
		return nil, bad("malformed manifest", err)
	}
	if tok.Kind() != '{' {
		return nil, bad("manifest root must be an object", nil)
	}

	var elements []rawElement
	var noAPI []string
	sawElements := false
	for dec.PeekKind() != '}' {
		keyTok, err := dec.ReadToken()
		if err != nil {
			return nil, bad("malformed manifest", err)
		}
		switch keyTok.String() {
		case "Elements":
			sawElements = true
			if elements, err = readJSONElements(dec); err != nil {
				return nil, bad("malformed Elements", err)
			}
		case "No_API_Types":
			val, err := dec.ReadValue()
			if err != nil {
				return nil, bad("malformed No_API_Types", err)
			}
			if err := json.Unmarshal(val, &noAPI); err != nil {
				return nil, bad("No_API_Types must be a list of strings", err)
			}
		default:
			if err := dec.SkipValue(); err != nil {
				return nil, bad("malformed manifest", err)
			}
		}
	}
	if _, err := dec.ReadToken(); err != nil {
		return nil, bad("malformed manifest", err)
	}
	if !sawElements {
		return nil, bad("required key missing", nil)
	}
	return build(elements, noAPI, file, t)
}

func readJSONElements(dec *jsontext.Decoder) ([]rawElement, error) {
	tok, err := dec.ReadToken()
	if err != nil {
		return nil, err
	}
	if tok.Kind() != '{' {
		return nil, errors.New("Elements must be an object")
	}
	var out []rawElement
	for dec.PeekKind() != '}' {
		keyTok, err := dec.ReadToken()
		if err != nil {
			return nil, err
		}
		val, err := dec.ReadValue()
		if err != nil {
			return nil, err
		}
		var body map[string]any
		if err := json.Unmarshal(val, &body); err != nil {
			return nil, fmt.Errorf("element %s: %w", keyTok.String(), err)
		}
		out = append(out, rawElement{key: keyTok.String(), body: body})
	}
	if _, err := dec.ReadToken(); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return out, nil
}

// ParseYAML decodes a YAML manifest, keeping the order of Elements.
func ParseYAML(data []byte, file string, t *tables.Tables) (*Manifest, error) {
	bad := func(detail string, err error) error {
		return &generror.Error{Kind: generror.KindConfiguration, File: file, Pattern: "Elements", Detail: detail, Err: err}
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, bad("malformed manifest", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, bad("manifest root must be a mapping", nil)
	}
	root := doc.Content[0]

	var elements []rawElement
	var noAPI []string
	sawElements := false
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, val := root.Content[i], root.Content[i+1]
		switch key.Value {
		case "Elements":
			sawElements = true
			if val.Kind != yaml.MappingNode {
				return nil, bad("Elements must be a mapping", nil)
			}
			for j := 0; j+1 < len(val.Content); j += 2 {
				var body map[string]any
				if err := val.Content[j+1].Decode(&body); err != nil {
					return nil, bad("element "+val.Content[j].Value, err)
				}
				elements = append(elements, rawElement{key: val.Content[j].Value, body: body})
			}
		case "No_API_Types":
			if err := val.Decode(&noAPI); err != nil {
				return nil, bad("No_API_Types must be a list of strings", err)
			}
		}
	}
	if !sawElements {
		return nil, bad("required key missing", nil)
	}
	return build(elements, noAPI, file, t)
}

func build(elements []rawElement, noAPI []string, file string, t *tables.Tables) (*Manifest, error) {
	classes := make([]*Class, 0, len(elements))
	seen := make(map[string]bool, len(elements))
	for _, el := range elements {
		c, err := decodeClass(el.key, el.body, file, t)
		if err != nil {
			return nil, err
		}
		if seen[c.Name] {
			return nil, generror.Configuration(c.Name, file, "Elements", "class listed more than once")
		}
		seen[c.Name] = true
		classes = append(classes, c)
	}
	return New(classes, noAPI), nil
}
