package manifest

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/Alia5/apigen/internal/codegen/generror"
	"github.com/Alia5/apigen/internal/codegen/tables"
)

// object is a decoded JSON or YAML mapping.
type object map[string]any

type decoder struct {
	class string
	file  string
}

func (d *decoder) fail(key, detail string) error {
	return generror.Configuration(d.class, d.file, key, detail)
}

func asObject(v any) (object, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case object:
		return m, true
	}
	return nil, false
}

func (d *decoder) str(o object, key string) (string, error) {
	v, ok := o[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", d.fail(key, fmt.Sprintf("want string, got %T", v))
	}
	return s, nil
}

func (d *decoder) boolean(o object, key string) (bool, error) {
	v, ok := o[key]
	if !ok || v == nil {
		return false, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, d.fail(key, fmt.Sprintf("want bool, got %T", v))
	}
	return b, nil
}

func (d *decoder) optBool(o object, key string) (*bool, error) {
	if _, ok := o[key]; !ok {
		return nil, nil
	}
	b, err := d.boolean(o, key)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// integer reads a whole number. JSON decodes numbers as float64, YAML as int.
func (d *decoder) integer(o object, key string) (int, bool, error) {
	v, ok := o[key]
	if !ok || v == nil {
		return 0, false, nil
	}
	switch n := v.(type) {
	case int:
		return n, true, nil
	case int64:
		return int(n), true, nil
	case uint64:
		return int(n), true, nil
	case float64:
		if n != math.Trunc(n) {
			return 0, false, d.fail(key, fmt.Sprintf("want integer, got %v", n))
		}
		return int(n), true, nil
	}
	return 0, false, d.fail(key, fmt.Sprintf("want integer, got %T", v))
}

func (d *decoder) strings(o object, key string) ([]string, error) {
	v, ok := o[key]
	if !ok || v == nil {
		return nil, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, d.fail(key, fmt.Sprintf("want list of strings, got %T", v))
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		s, ok := item.(string)
		if !ok {
			return nil, d.fail(key, fmt.Sprintf("want string element, got %T", item))
		}
		out = append(out, s)
	}
	return out, nil
}

// stringLists reads a list of hierarchical lists; a flat list of strings is
// read as one list per string.
func (d *decoder) stringLists(o object, key string) ([][]string, error) {
	v, ok := o[key]
	if !ok || v == nil {
		return nil, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, d.fail(key, fmt.Sprintf("want list, got %T", v))
	}
	out := make([][]string, 0, len(list))
	for _, item := range list {
		switch it := item.(type) {
		case string:
			out = append(out, []string{it})
		case []any:
			inner, err := d.strings(object{key: it}, key)
			if err != nil {
				return nil, err
			}
			out = append(out, inner)
		default:
			return nil, d.fail(key, fmt.Sprintf("want list element, got %T", item))
		}
	}
	return out, nil
}

// decodeClass converts one raw element into a Class.
func decodeClass(key string, raw object, file string, t *tables.Tables) (*Class, error) {
	d := &decoder{class: key, file: file}
	c := &Class{}
	var err error

	if c.Module, err = d.str(raw, "Module"); err != nil {
		return nil, err
	}
	if c.Module == "" {
		return nil, d.fail("Module", "required key missing")
	}
	ns, err := d.str(raw, "ModuleNamespace")
	if err != nil {
		return nil, err
	}
	if ns == "" {
		return nil, d.fail("ModuleNamespace", "required key missing")
	}
	c.Namespace = strings.Split(strings.TrimPrefix(ns, "::"), "::")
	c.Name = strings.Join(c.Namespace, "::") + "::" + c.Module
	if strings.TrimPrefix(key, "::") != c.Name {
		return nil, d.fail("ModuleNamespace", fmt.Sprintf("element key does not match %s", c.Name))
	}
	d.class = c.Name

	if len(c.Namespace) < 2 || c.Namespace[0] != t.Project || c.Namespace[1] != t.Library {
		return nil, d.fail("ModuleNamespace",
			fmt.Sprintf("namespace must start with %s::%s", t.Project, t.Library))
	}

	if c.Description, err = d.str(raw, "Description"); err != nil {
		return nil, err
	}

	props, _ := asObject(raw["Properties"])
	if props == nil {
		props = object{}
	}
	// Role flags may sit in Properties or at the top level.
	for _, f := range []struct {
		key string
		dst *bool
	}{
		{"Is_Lightweight", &c.IsLightweight},
		{"Is_Plugin_Class", &c.IsPlugin},
		{"Is_Engine", &c.IsEngine},
		{"Is_Data_Representation", &c.IsDataRepresentation},
		{"Is_File_Interpreter", &c.IsFileInterpreter},
	} {
		a, err := d.boolean(props, f.key)
		if err != nil {
			return nil, err
		}
		b, err := d.boolean(raw, f.key)
		if err != nil {
			return nil, err
		}
		*f.dst = a || b
	}
	if c.HasProtectedConstructors, err = d.optBool(props, "Has_Protected_Constructors"); err != nil {
		return nil, err
	}
	if c.HasProtectedConstructors == nil {
		if c.HasProtectedConstructors, err = d.optBool(raw, "Has_Protected_Constructors"); err != nil {
			return nil, err
		}
	}

	groups := []struct {
		kind    FunctionKind
		group   string
		listKey string
		dst     *[]Function
	}{
		{Constructor, "Constructors", "Constructor_APIs", &c.Constructors},
		{Setter, "Setters", "Setter_APIs", &c.Setters},
		{Getter, "Getters", "Getter_APIs", &c.Getters},
		{WorkFunction, "WorkFunctions", "Work_Function_APIs", &c.WorkFunctions},
	}
	for _, g := range groups {
		fns, err := d.functions(raw, g.kind, g.group, g.listKey)
		if err != nil {
			return nil, err
		}
		*g.dst = fns
	}

	if c.PluginCategories, err = d.stringLists(raw, "Plugin_Categories"); err != nil {
		return nil, err
	}
	if c.PluginKeywords, err = d.strings(raw, "Plugin_Keywords"); err != nil {
		return nil, err
	}
	if c.DataRepresentationCategories, err = d.stringLists(raw, "Data_Representation_Categories"); err != nil {
		return nil, err
	}
	for _, f := range []struct {
		key string
		dst *[]string
	}{
		{"Data_Representation_Compatible_Engines", &c.CompatibleEngines},
		{"Data_Representation_Incompatible_Engines", &c.IncompatibleEngines},
		{"Data_Representation_Present_Properties", &c.PresentProperties},
		{"Data_Representation_Absent_Properties", &c.AbsentProperties},
		{"File_Interpreter_File_Extensions", &c.FileExtensions},
		{"File_Interpreter_File_Descriptions", &c.FileDescriptions},
	} {
		if *f.dst, err = d.strings(raw, f.key); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (d *decoder) functions(raw object, kind FunctionKind, group, listKey string) ([]Function, error) {
	g, ok := asObject(raw[group])
	if !ok {
		if raw[group] != nil {
			return nil, d.fail(group, "want object")
		}
		return nil, nil
	}
	v := g[listKey]
	if v == nil {
		return nil, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, d.fail(listKey, "want list")
	}
	out := make([]Function, 0, len(list))
	for i, item := range list {
		o, ok := asObject(item)
		if !ok {
			return nil, d.fail(listKey, fmt.Sprintf("entry %d is not an object", i))
		}
		fn, err := d.function(o, kind)
		if err != nil {
			return nil, err
		}
		out = append(out, fn)
	}
	return out, nil
}

func (d *decoder) function(o object, kind FunctionKind) (Function, error) {
	prefix := string(kind) + "_"
	fn := Function{Kind: kind}
	var err error
	if fn.Name, err = d.str(o, prefix+"Name"); err != nil {
		return fn, err
	}
	if fn.Name == "" {
		return fn, d.fail(prefix+"Name", "required key missing")
	}
	if fn.Description, err = d.str(o, prefix+"Description"); err != nil {
		return fn, err
	}
	if fn.Inputs, err = d.inputs(o, prefix+"Name="+fn.Name); err != nil {
		return fn, err
	}
	if n, ok, err := d.integer(o, prefix+"N_Inputs"); err != nil {
		return fn, err
	} else if ok && n != len(fn.Inputs) {
		return fn, d.fail(prefix+"N_Inputs", fmt.Sprintf("%s declares %d inputs but lists %d", fn.Name, n, len(fn.Inputs)))
	}

	if out, ok := asObject(o["Output"]); ok {
		fn.Output = &Output{}
		if fn.Output.Type, err = d.str(out, "Output_Type"); err != nil {
			return fn, err
		}
		if fn.Output.Name, err = d.str(out, "Output_Name"); err != nil {
			return fn, err
		}
		if fn.Output.Description, err = d.str(out, "Output_Description"); err != nil {
			return fn, err
		}
		if fn.Output.IsEnum, err = d.boolean(out, "Output_Is_Enum"); err != nil {
			return fn, err
		}
	}

	for _, f := range []struct {
		key string
		dst *bool
	}{
		{"Is_Const", &fn.IsConst},
		{"Is_Override_Of_Base_API_Virtual_Function", &fn.IsOverride},
		{"Is_Virtual_Not_Overriding_Base_API_Virtual_Function", &fn.IsVirtualNonOverriding},
		{"Triggers_No_Mutex_Lock", &fn.NoLock},
		{"Always_Returns_Nullptr", &fn.AlwaysNull},
		{"Returns_This_Ref", &fn.ReturnsThis},
		{"Is_Protected", &fn.IsProtected},
		{"Not_For_User_Interface", &fn.NotForUserInterface},
	} {
		if *f.dst, err = d.boolean(o, f.key); err != nil {
			return fn, err
		}
	}
	if fn.IsOverride && fn.IsVirtualNonOverriding {
		return fn, d.fail("Is_Override_Of_Base_API_Virtual_Function",
			fn.Name+" cannot both override and be a new virtual function")
	}

	deprecated, err := d.boolean(o, "Will_Be_Deprecated")
	if err != nil {
		return fn, err
	}
	if deprecated {
		dep := &Deprecation{}
		major, ok, err := d.integer(o, "Deprecation_Major_Version")
		if err != nil {
			return fn, err
		}
		if !ok {
			return fn, d.fail("Deprecation_Major_Version", fn.Name+" is marked Will_Be_Deprecated without a removal version")
		}
		minor, _, err := d.integer(o, "Deprecation_Minor_Version")
		if err != nil {
			return fn, err
		}
		dep.Removal = tables.Version{Major: major, Minor: minor}
		wmajor, ok, err := d.integer(o, "Deprecation_Warning_Major_Version")
		if err != nil {
			return fn, err
		}
		if ok && wmajor >= 0 {
			wminor, _, err := d.integer(o, "Deprecation_Warning_Minor_Version")
			if err != nil {
				return fn, err
			}
			dep.HasWarning = true
			dep.Warning = tables.Version{Major: wmajor, Minor: wminor}
			if dep.Removal.Less(dep.Warning) {
				return fn, d.fail("Deprecation_Warning_Major_Version",
					fmt.Sprintf("%s warns at %s after its removal at %s", fn.Name, dep.Warning, dep.Removal))
			}
		}
		if dep.Library, err = d.str(o, "Library_Name_For_Deprecation_Version"); err != nil {
			return fn, err
		}
		fn.Deprecation = dep
	}
	return fn, nil
}

// inputs reads "Inputs" as either an Input_N object or a list, ordered by Input_Index.
func (d *decoder) inputs(o object, where string) ([]Input, error) {
	v := o["Inputs"]
	if v == nil {
		return nil, nil
	}
	var items []object
	switch in := v.(type) {
	case []any:
		for _, item := range in {
			io, ok := asObject(item)
			if !ok {
				return nil, d.fail("Inputs", where+": input is not an object")
			}
			items = append(items, io)
		}
	default:
		m, ok := asObject(in)
		if !ok {
			return nil, d.fail("Inputs", where+": want object or list")
		}
		for _, item := range m {
			io, ok := asObject(item)
			if !ok {
				return nil, d.fail("Inputs", where+": input is not an object")
			}
			items = append(items, io)
		}
	}

	out := make([]Input, 0, len(items))
	for _, io := range items {
		var in Input
		idx, ok, err := d.integer(io, "Input_Index")
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, d.fail("Input_Index", where+": required key missing")
		}
		in.Index = idx
		if in.Type, err = d.str(io, "Input_Type"); err != nil {
			return nil, err
		}
		if in.Type == "" {
			return nil, d.fail("Input_Type", where+": required key missing")
		}
		if in.Name, err = d.str(io, "Input_Name"); err != nil {
			return nil, err
		}
		if in.Description, err = d.str(io, "Input_Description"); err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	for i, in := range out {
		if in.Index != i {
			return nil, d.fail("Input_Index", fmt.Sprintf("%s: input indices must be 0..%d without gaps", where, len(out)-1))
		}
		if in.Name == "" {
			out[i].Name = fmt.Sprintf("input%d", i)
		}
	}
	return out, nil
}
