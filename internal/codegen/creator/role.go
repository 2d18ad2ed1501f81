package creator

import (
	"bytes"
	"strings"
	"text/template"

	"github.com/Alia5/apigen/internal/codegen/common"
	"github.com/Alia5/apigen/internal/codegen/emitter"
	"github.com/Alia5/apigen/internal/codegen/tables"
)

// roleFunction is one constant-valued creator override required by a role.
type roleFunction struct {
	Class  string
	Name   string
	Return string
	Brief  string
	// Values is the rendered initializer list; empty renders as a default-constructed value.
	Values string
}

const roleTemplate = `
{{- define "prototype"}}
    /// @brief {{.Brief}}
    {{.Return}}
    {{.Name}}() const override;
{{- end}}

{{- define "implementation"}}
{{.Return}}
{{.Class}}::{{.Name}}() const {
{{- if .Values}}
    return {{.Return}}{
        {{.Values}}
    };
{{- else}}
    return {{.Return}}{};
{{- end}}
}
{{- end}}`

var roleTemplates = template.Must(template.New("role").Parse(roleTemplate))

const (
	nestedStrings = "std::vector< std::vector< std::string > >"
	strs          = "std::vector< std::string >"
)

// roleFunctions renders the overrides the creator base of the class's role declares pure.
func roleFunctions(creatorClass string, c *emitter.Class) (string, string, error) {
	var fns []roleFunction
	switch c.Role {
	case tables.RoleDataRepresentation:
		fns = []roleFunction{
			{Name: "get_data_representation_categories", Return: nestedStrings,
				Brief: "Categories of this data representation.", Values: common.QuoteNestedList(c.DataRepresentationCategories)},
			{Name: "get_compatible_masala_engines", Return: strs,
				Brief: "Engines this data representation is known to work with.", Values: common.QuoteList(c.CompatibleEngines)},
			{Name: "get_incompatible_masala_engines", Return: strs,
				Brief: "Engines this data representation is known not to work with.", Values: common.QuoteList(c.IncompatibleEngines)},
			{Name: "get_present_data_representation_properties", Return: strs,
				Brief: "Properties this data representation has.", Values: common.QuoteList(c.PresentProperties)},
			{Name: "get_possibly_present_data_representation_properties", Return: strs,
				Brief: "Properties this data representation might have."},
			{Name: "get_absent_data_representation_properties", Return: strs,
				Brief: "Properties this data representation lacks.", Values: common.QuoteList(c.AbsentProperties)},
			{Name: "get_possibly_absent_data_representation_properties", Return: strs,
				Brief: "Properties this data representation might lack."},
		}
	case tables.RoleFileInterpreter:
		fns = []roleFunction{
			{Name: "get_file_interpreter_file_descriptors", Return: strs,
				Brief: "Descriptions of the file types this interpreter reads or writes.", Values: common.QuoteList(c.FileDescriptions)},
			{Name: "get_file_interpreter_file_extensions", Return: strs,
				Brief: "Extensions of the file types this interpreter reads or writes.", Values: common.QuoteList(c.FileExtensions)},
		}
	default:
		return "", "", nil
	}

	protos := make([]string, 0, len(fns))
	impls := make([]string, 0, len(fns))
	for _, fn := range fns {
		fn.Class = creatorClass
		var p, i bytes.Buffer
		if err := roleTemplates.ExecuteTemplate(&p, "prototype", fn); err != nil {
			return "", "", err
		}
		if err := roleTemplates.ExecuteTemplate(&i, "implementation", fn); err != nil {
			return "", "", err
		}
		protos = append(protos, strings.TrimPrefix(p.String(), "\n"))
		impls = append(impls, strings.TrimPrefix(i.String(), "\n"))
	}
	head := strings.ToUpper(strings.ReplaceAll(string(c.Role), "_", " ")) + " CREATOR FUNCTIONS"
	banner := strings.Repeat("/", 80)
	section := banner + "\n// " + head + "\n" + banner + "\n\n"
	return section + strings.Join(protos, "\n\n"), section + strings.Join(impls, "\n\n"), nil
}
