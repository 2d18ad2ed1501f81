package emitter

import (
	"fmt"

	"github.com/Alia5/apigen/internal/codegen/generror"
	"github.com/Alia5/apigen/internal/codegen/manifest"
	"github.com/Alia5/apigen/internal/codegen/tables"
	"github.com/Alia5/apigen/internal/codegen/translate"
)

// hasWrapper reports whether a translated tree mentions a wrapper anywhere.
func hasWrapper(n *translate.Node) bool {
	if n.Rule == translate.RuleWrapper {
		return true
	}
	for _, a := range n.Args {
		if hasWrapper(a) {
			return true
		}
	}
	for _, p := range n.Params {
		if hasWrapper(p) {
			return true
		}
	}
	return false
}

// plainWrapper reports whether n is a wrapper named directly, without pointer syntax.
func plainWrapper(n *translate.Node) bool {
	return n.Rule == translate.RuleWrapper && !n.IsPointer() && len(n.Args) == 0
}

// pointee returns the wrapper held by a shared or weak indirection, or nil.
func pointee(n *translate.Node) *translate.Node {
	if n.Rule != translate.RuleIndirection || len(n.Args) != 1 {
		return nil
	}
	a := n.Args[0]
	if !plainWrapper(a) || a.IsReference() {
		return nil
	}
	return a
}

func unsupported(fn string, n *translate.Node, detail string) error {
	return generror.Configuration("", "", "", fmt.Sprintf("%s: type %q: %s", fn, n.String(), detail))
}

// unwrapArg returns the expression handing a wrapper argument to the wrapped object.
func (u *unit) unwrapArg(fn string, n *translate.Node, name string) (string, error) {
	if !hasWrapper(n) {
		return name, nil
	}
	lookup := u.e.cfg.Lookup

	if plainWrapper(n) {
		if lookup.IsLightweight(n.Original) {
			return name + ".get_inner_object()", nil
		}
		return "*" + name + ".get_inner_object()", nil
	}
	if a := pointee(n); a != nil {
		if n.Container != string(tables.KindShared) {
			return "", unsupported(fn, n, "weak pointers to wrapped classes cannot be passed in; pass a shared pointer")
		}
		if lookup.IsLightweight(a.Original) {
			return "", unsupported(fn, n, "lightweight classes are passed by value, not through a shared pointer")
		}
		return fmt.Sprintf("( %s == nullptr ? nullptr : %s->get_inner_object() )", name, name), nil
	}
	if n.Rule == translate.RuleWrapper && n.IsPointer() {
		return "", unsupported(fn, n, "raw pointers to wrapped classes cannot be passed in")
	}
	return "", unsupported(fn, n, "containers of wrapped classes cannot be passed in; the wrapped objects cannot be extracted without copying")
}

// outputPlan is how an entry declares and produces its result.
type outputPlan struct {
	typ  string
	body func(call string) []string
}

// output plans the return of fn, re-wrapping project objects.
func (u *unit) output(fn *manifest.Function) (*outputPlan, error) {
	if !fn.ReturnsValue() {
		return &outputPlan{typ: "void", body: func(call string) []string { return []string{call + ";"} }}, nil
	}
	res, err := u.e.cfg.Translator.TranslateTree(fn.Output.Type, u.includes)
	if err != nil {
		return nil, err
	}
	n := res.Tree

	if fn.ReturnsThis {
		return &outputPlan{typ: res.Text, body: func(call string) []string {
			return []string{call + ";", "return *this;"}
		}}, nil
	}
	if !hasWrapper(n) {
		return &outputPlan{typ: res.Text, body: func(call string) []string { return []string{"return " + call + ";"} }}, nil
	}

	lookup := u.e.cfg.Lookup
	switch {
	case plainWrapper(n):
		if !lookup.IsLightweight(n.Original) {
			return nil, unsupported(fn.Name, n, "non-lightweight classes must be returned through a shared pointer")
		}
		typ := n.Base().String()
		return &outputPlan{typ: typ, body: func(call string) []string {
			return []string{"return " + typ + "( " + call + " );"}
		}}, nil

	case pointee(n) != nil:
		a := pointee(n)
		wrap, err := u.wrapPointer(fn.Name, n, a)
		if err != nil {
			return nil, err
		}
		typ := u.sharedOf(n).String()
		weak := n.Container == string(tables.KindWeak)
		return &outputPlan{typ: typ, body: func(call string) []string {
			if weak {
				call += ".lock()"
			}
			return []string{
				"auto const inner_result( " + call + " );",
				"return " + wrap("inner_result") + ";",
			}
		}}, nil

	case n.Rule == translate.RuleContainer && n.Container == string(tables.KindSequence) && len(n.Args) == 1:
		return u.sequenceOutput(fn.Name, n)
	}
	return nil, unsupported(fn.Name, n, "wrapped classes can only be returned directly, through a shared or weak pointer, or in a sequence")
}

// sharedOf returns the unqualified shared-pointer type of an indirection, promoting weak pointers.
func (u *unit) sharedOf(n *translate.Node) *translate.Node {
	out := n.Base()
	if n.Container == string(tables.KindWeak) {
		out.Name = u.e.cfg.Tables.SharedPointer
	}
	return out
}

// wrapPointer returns a function building the wrapper of a shared pointer
// expression. Null stays null. Plugin objects go through the plugin registry,
// which wraps them in the wrapper of their concrete type.
func (u *unit) wrapPointer(fn string, n, a *translate.Node) (func(x string) string, error) {
	t := u.e.cfg.Tables
	if u.e.cfg.Lookup.IsLightweight(a.Original) {
		return nil, unsupported(fn, n, "lightweight classes are returned by value, not through a pointer")
	}
	plugin, err := u.e.cfg.Lookup.IsPlugin(a.Original)
	if err != nil {
		return nil, err
	}
	constQ := ""
	if a.IsConst() {
		constQ = " const"
	}
	if plugin {
		u.implementation.AddPath(t.PluginRegistryInclude)
		encapsulate := "encapsulate_plugin_object_instance"
		if a.IsConst() {
			encapsulate = "encapsulate_const_plugin_object_instance"
		}
		return func(x string) string {
			return fmt.Sprintf("( %s == nullptr ? nullptr : std::dynamic_pointer_cast< %s%s >( %s->%s( %s ) ) )",
				x, a.Name, constQ, t.PluginRegistry, encapsulate, x)
		}, nil
	}
	return func(x string) string {
		inner := x
		if a.IsConst() {
			inner = "std::const_pointer_cast< " + a.Original + " >( " + x + " )"
		}
		return fmt.Sprintf("( %s == nullptr ? nullptr : %s< %s >( %s ) )", x, t.MakeShared, a.Name, inner)
	}, nil
}

// sequenceOutput converts a sequence of project objects element by element.
func (u *unit) sequenceOutput(fn string, n *translate.Node) (*outputPlan, error) {
	elem := n.Args[0]
	var (
		outElem *translate.Node
		convert func(x string) []string
	)
	switch {
	case plainWrapper(elem) && u.e.cfg.Lookup.IsLightweight(elem.Original):
		outElem = elem.Base()
		typ := outElem.String()
		convert = func(x string) []string { return []string{"output.push_back( " + typ + "( " + x + " ) );"} }

	case pointee(elem) != nil:
		wrap, err := u.wrapPointer(fn, n, pointee(elem))
		if err != nil {
			return nil, err
		}
		outElem = u.sharedOf(elem)
		if elem.Container == string(tables.KindWeak) {
			convert = func(x string) []string {
				return []string{
					"auto const inner_entry( " + x + ".lock() );",
					"output.push_back( " + wrap("inner_entry") + " );",
				}
			}
		} else {
			convert = func(x string) []string { return []string{"output.push_back( " + wrap(x) + " );"} }
		}

	default:
		return nil, unsupported(fn, n, "sequence elements must be lightweight classes or shared or weak pointers")
	}

	container := n.Base()
	container.Args = []*translate.Node{outElem}
	typ := container.String()
	return &outputPlan{typ: typ, body: func(call string) []string {
		lines := []string{
			"auto const & inner_result( " + call + " );",
			typ + " output;",
			"output.reserve( inner_result.size() );",
			"for( auto const & entry : inner_result ) {",
		}
		for _, l := range convert("entry") {
			lines = append(lines, "    "+l)
		}
		return append(lines, "}", "return output;")
	}}, nil
}
