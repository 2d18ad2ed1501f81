package artifact

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"sort"
	"strings"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Template names, one per artifact skeleton.
const (
	TemplateAPIForward          = "api.fwd.hh"
	TemplateClassHeader         = "class_api.hh"
	TemplateClassSource         = "class_api.cc"
	TemplateDerivedHeader       = "derived_api.hh"
	TemplateDerivedSource       = "derived_api.cc"
	TemplateLightweightHeader   = "lightweight_api.hh"
	TemplateLightweightSource   = "lightweight_api.cc"
	TemplateLightDerivedHeader  = "lightweight_derived_api.hh"
	TemplateLightDerivedSource  = "lightweight_derived_api.cc"
	TemplateCreatorForward      = "creator.fwd.hh"
	TemplatePluginCreatorHeader = "plugin_creator.hh"
	TemplatePluginCreatorSource = "plugin_creator.cc"
	TemplateRegistrationHeader  = "registration.hh"
	TemplateRegistrationSource  = "registration.cc"
	templateExt                 = ".tmpl"
)

var tokenRe = regexp.MustCompile(`<__[A-Z0-9_]+__>`)

// Token formats a placeholder name as it appears in a template: Token("API_CLASS") is "<__API_CLASS__>".
func Token(name string) string { return "<__" + name + "__>" }

// Templates is the set of artifact skeletons used by one run.
type Templates struct {
	byName map[string]string
}

// LoadTemplates returns the embedded templates, with any file named
// "<template>.tmpl" in overrideDir replacing its embedded counterpart.
func LoadTemplates(overrideDir string) (*Templates, error) {
	t := &Templates{byName: make(map[string]string)}
	entries, err := fs.ReadDir(templateFS, "templates")
	if err != nil {
		return nil, fmt.Errorf("read embedded templates: %w", err)
	}
	for _, e := range entries {
		data, err := templateFS.ReadFile("templates/" + e.Name())
		if err != nil {
			return nil, fmt.Errorf("read embedded template %s: %w", e.Name(), err)
		}
		t.byName[strings.TrimSuffix(e.Name(), templateExt)] = string(data)
	}
	if overrideDir == "" {
		return t, nil
	}

	for name := range t.byName {
		data, err := os.ReadFile(filepath.Join(overrideDir, name+templateExt))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read template override %s: %w", name, err)
		}
		t.byName[name] = string(data)
	}
	return t, nil
}

// Names returns the template names in sorted order.
func (t *Templates) Names() []string {
	names := make([]string, 0, len(t.byName))
	for n := range t.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Render substitutes every placeholder of the named template in a single
// pass. Substituted text is never rescanned, so values may themselves contain
// placeholder-like text. A placeholder without a value is an error.
func (t *Templates) Render(name string, tokens map[string]string) (string, error) {
	src, ok := t.byName[name]
	if !ok {
		return "", fmt.Errorf("unknown template %q", name)
	}

	var missing []string
	for _, tok := range tokenRe.FindAllString(src, -1) {
		key := strings.TrimSuffix(strings.TrimPrefix(tok, "<__"), "__>")
		if _, ok := tokens[key]; !ok && !slices.Contains(missing, key) {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return "", fmt.Errorf("template %s: no value for %s", name, strings.Join(missing, ", "))
	}

	pairs := make([]string, 0, 2*len(tokens))
	for k, v := range tokens {
		pairs = append(pairs, Token(k), v)
	}
	return tidy(strings.NewReplacer(pairs...).Replace(src)), nil
}

var blankRunRe = regexp.MustCompile(`\n{3,}`)

// tidy collapses the blank lines left behind by empty placeholders.
func tidy(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t")
	}
	s = strings.Join(lines, "\n")
	s = blankRunRe.ReplaceAllString(s, "\n\n")
	return strings.TrimLeft(s, "\n")
}
