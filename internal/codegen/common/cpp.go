package common

import (
	"strings"
	"unicode"
)

// HeaderGuard returns the include guard symbol of a generated header path.
//
//	numeric_api/auto_generated_api/Foo_API.hh -> INCLUDED_numeric_api_auto_generated_api_Foo_API_hh
func HeaderGuard(path string) string {
	var b strings.Builder
	b.WriteString("INCLUDED_")
	for _, r := range path {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
			continue
		}
		b.WriteByte('_')
	}
	return b.String()
}

// GuardOpen returns the opening lines of an include guard.
func GuardOpen(path string) string {
	g := HeaderGuard(path)
	return "#ifndef " + g + "\n#define " + g
}

// GuardClose returns the closing line of an include guard.
func GuardClose(path string) string {
	return "#endif // " + HeaderGuard(path)
}

// NamespaceOpen opens each namespace segment on its own line.
func NamespaceOpen(ns []string) string {
	lines := make([]string, len(ns))
	for i, s := range ns {
		lines[i] = "namespace " + s + " {"
	}
	return strings.Join(lines, "\n")
}

// NamespaceClose closes the segments opened by NamespaceOpen, innermost first.
func NamespaceClose(ns []string) string {
	lines := make([]string, len(ns))
	for i := range ns {
		s := ns[len(ns)-1-i]
		lines[i] = "} // namespace " + s
	}
	return strings.Join(lines, "\n")
}

// Include renders an include directive. Paths without delimiters get angle brackets.
func Include(path string) string {
	if path == "" {
		return ""
	}
	if !strings.HasPrefix(path, "<") && !strings.HasPrefix(path, `"`) {
		path = "<" + path + ">"
	}
	return "#include " + path
}

// Includes renders one include directive per line.
func Includes(paths []string) string {
	lines := make([]string, 0, len(paths))
	for _, p := range paths {
		if inc := Include(p); inc != "" {
			lines = append(lines, inc)
		}
	}
	return strings.Join(lines, "\n")
}

// Quote renders s as a C++ string literal.
func Quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)
	return `"` + r.Replace(s) + `"`
}

// QuoteList renders a comma-separated list of string literals.
func QuoteList(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = Quote(s)
	}
	return strings.Join(quoted, ", ")
}

// QuoteNestedList renders { "a", "b" }, { "c" } for hierarchical lists.
func QuoteNestedList(lists [][]string) string {
	out := make([]string, len(lists))
	for i, l := range lists {
		out[i] = "{ " + QuoteList(l) + " }"
	}
	return strings.Join(out, ",\n        ")
}

// Doc renders text as "/// @tag text" lines, wrapping nothing and dropping blank input.
func Doc(indent, tag, text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	var b strings.Builder
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(indent)
		b.WriteString("/// ")
		if i == 0 && tag != "" {
			b.WriteString("@" + tag + " ")
		}
		b.WriteString(strings.TrimSpace(line))
	}
	return b.String()
}
