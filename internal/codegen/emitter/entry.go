package emitter

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/Alia5/apigen/internal/codegen/common"
	"github.com/Alia5/apigen/internal/codegen/manifest"
	"github.com/Alia5/apigen/internal/codegen/translate"
)

// param is one rendered function parameter.
type param struct {
	Type string
	Name string
	// Unused comments the name out in the implementation.
	Unused bool
	Doc    string
}

// entry is one wrapper function ready for rendering.
type entry struct {
	Class       string
	Name        string
	Constructor bool
	Brief       string
	Note        string
	Params      []param
	Return      string
	ReturnDoc   string
	Const       bool
	Override    bool
	Virtual     bool
	// Init is the constructor initializer list, one initializer per line.
	Init []string
	// Body holds the implementation lines without indentation.
	Body []string
}

const entryTemplate = `
{{- define "prototype" -}}
{{doc "    " .}}
{{- if .Constructor}}
    {{.Class}}({{params "    " false .Params}});
{{- else}}
    {{if .Virtual}}virtual {{end}}{{.Return}}
    {{.Name}}({{params "    " false .Params}}){{if .Const}} const{{end}}{{if .Override}} override{{end}};
{{- end}}
{{- end}}

{{- define "implementation" -}}
{{brief .}}
{{- if .Constructor}}
{{.Class}}::{{.Class}}({{params "" true .Params}}) :
{{join "    " ",\n" .Init}}
{}
{{- else}}
{{.Return}}
{{.Class}}::{{.Name}}({{params "" true .Params}}){{if .Const}} const{{end}} {
{{join "    " "\n" .Body}}
}
{{- end}}
{{- end}}`

var entryTemplates = template.Must(template.New("entry").Funcs(template.FuncMap{
	"doc":    entryDoc,
	"brief":  func(en *entry) string { return common.Doc("", "brief", en.Brief) },
	"params": renderParams,
	"join": func(indent, sep string, lines []string) string {
		out := make([]string, len(lines))
		for i, l := range lines {
			out[i] = indent + l
		}
		return strings.Join(out, sep)
	},
}).Parse(entryTemplate))

// render returns the declaration and the implementation of the entry.
func (en *entry) render() (string, string, error) {
	var proto, impl bytes.Buffer
	if err := entryTemplates.ExecuteTemplate(&proto, "prototype", en); err != nil {
		return "", "", fmt.Errorf("render prototype of %s: %w", en.Name, err)
	}
	if err := entryTemplates.ExecuteTemplate(&impl, "implementation", en); err != nil {
		return "", "", fmt.Errorf("render implementation of %s: %w", en.Name, err)
	}
	return strings.TrimLeft(proto.String(), "\n"), strings.TrimLeft(impl.String(), "\n"), nil
}

func entryDoc(indent string, en *entry) string {
	var lines []string
	add := func(s string) {
		if s != "" {
			lines = append(lines, s)
		}
	}
	add(common.Doc(indent, "brief", en.Brief))
	for _, p := range en.Params {
		add(common.Doc(indent, "param[in] "+p.Name, p.Doc))
	}
	add(common.Doc(indent, "returns", en.ReturnDoc))
	add(common.Doc(indent, "note", en.Note))
	return strings.Join(lines, "\n")
}

// renderParams lays parameters out one per line below the function name.
func renderParams(indent string, implementation bool, params []param) string {
	if len(params) == 0 {
		return ""
	}
	lines := make([]string, len(params))
	for i, p := range params {
		name := p.Name
		if implementation && p.Unused {
			name = "/*" + name + "*/"
		}
		lines[i] = indent + "    " + p.Type + " " + name
	}
	return "\n" + strings.Join(lines, ",\n") + "\n" + indent
}

// paramName returns the manifest name of an input, or a positional name.
func paramName(in manifest.Input, i int) string {
	if in.Name != "" {
		return in.Name
	}
	return fmt.Sprintf("input_%d", i)
}

// entry builds the wrapper function of a manifest function.
func (u *unit) entry(fn *manifest.Function) (*entry, error) {
	tr := u.e.cfg.Translator
	en := &entry{
		Class:       u.api,
		Name:        fn.Name,
		Constructor: fn.Kind == manifest.Constructor,
		Brief:       fn.Description,
		Note:        deprecationNote(fn.Deprecation),
		Const:       fn.IsConst,
		Override:    fn.IsOverride,
		Virtual:     fn.IsVirtualNonOverriding,
	}

	args := make([]string, len(fn.Inputs))
	for i, in := range fn.Inputs {
		res, err := tr.TranslateTree(in.Type, u.includes)
		if err != nil {
			return nil, err
		}
		name := paramName(in, i)
		arg, err := u.unwrapArg(fn.Name, res.Tree, name)
		if err != nil {
			return nil, err
		}
		args[i] = arg
		en.Params = append(en.Params, param{Type: res.Text, Name: name, Unused: fn.AlwaysNull, Doc: in.Description})
	}

	if en.Constructor {
		en.Init = u.constructorInit(args)
		return en, nil
	}

	out, err := u.output(fn)
	if err != nil {
		return nil, err
	}
	en.Return = out.typ
	if fn.Output != nil {
		en.ReturnDoc = fn.Output.Description
	}

	switch {
	case fn.AlwaysNull && fn.ReturnsValue():
		ret, err := u.nullReturn(fn.Name, out.typ)
		if err != nil {
			return nil, err
		}
		en.Body = []string{ret}
	case fn.AlwaysNull:
		en.Body = []string{"return;"}
	default:
		if !fn.NoLock {
			en.Body = append(en.Body, "std::lock_guard< std::mutex > lock( "+u.variant.mutex()+" );")
		}
		call := u.variant.inner(u.source, fn.IsConst) + fn.Name + callArgs(args)
		en.Body = append(en.Body, out.body(call)...)
	}
	return en, nil
}

// nullReturn is the body of an always-null function returning typ: nullptr
// for pointers and indirections, a value-initialized result otherwise.
func (u *unit) nullReturn(fn, typ string) (string, error) {
	n, err := translate.Parse(typ)
	if err != nil {
		return "", err
	}
	if _, ok := u.e.cfg.Tables.Indirection(n.Name); ok || n.IsPointer() {
		return "return nullptr;", nil
	}
	if n.IsReference() {
		return "", unsupported(fn, n, "a function that always returns null cannot return a reference")
	}
	return "return {};", nil
}

func callArgs(args []string) string {
	if len(args) == 0 {
		return "()"
	}
	return "( " + strings.Join(args, ", ") + " )"
}

// constructorInit builds the initializer list forwarding args to the wrapped constructor.
func (u *unit) constructorInit(args []string) []string {
	t := u.e.cfg.Tables
	base := u.cls.Lineage.BaseWrapper
	made := t.MakeShared + "< " + u.source + " >" + callArgs(args)
	switch u.variant {
	case variantDerived:
		return []string{base + "( " + made + " )"}
	case variantLightweight:
		return []string{base + "()", "inner_object_" + callArgs(args)}
	case variantLightweightDerived:
		return []string{base + "( " + u.source + callArgs(args) + " )"}
	default:
		return []string{base + "()", "inner_object_( " + made + " )"}
	}
}
