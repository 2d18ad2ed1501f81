package emitter

import (
	"strings"

	"github.com/Alia5/apigen/internal/codegen/tables"
)

const banner = "////////////////////////////////////////////////////////////////////////////////"

// roleEntries renders the functions a root capability wrapper requires of
// its direct descendants. Only data representations have any, and derived
// wrappers inherit them.
func (u *unit) roleEntries() (string, string, error) {
	if u.cls.Role != tables.RoleDataRepresentation || u.variant != variantRoot {
		return "", "", nil
	}
	marker := ""
	for _, m := range u.e.cfg.Tables.Markers {
		if m.Role == tables.RoleDataRepresentation {
			marker = m.Name
			break
		}
	}
	lock := "std::lock_guard< std::mutex > lock( " + u.variant.mutex() + " );"

	var entries []*entry
	if marker != "" {
		entries = append(entries,
			override("get_inner_data_representation_object", marker+"SP", false,
				"Access the inner data representation object.",
				lock, "return inner_object_;"),
			override("get_inner_data_representation_object_const", marker+"CSP", true,
				"Const access to the inner data representation object.",
				lock, "return inner_object_;"),
		)
	}
	entries = append(entries,
		override("inner_object_empty", "bool", true,
			"Is the inner object empty?",
			lock, "return inner_object_->empty();"),
		override("inner_object_clear", "void", false,
			"Clear the data of the inner object without altering its configuration.",
			lock, "inner_object_->clear();"),
		override("inner_object_reset", "void", false,
			"Reset the inner object completely, deleting its data and configuration.",
			lock, "inner_object_->reset();"),
	)

	head := banner + "\n// DATA REPRESENTATION FUNCTIONS\n" + banner
	protos := []string{head}
	impls := []string{head}
	for _, en := range entries {
		en.Class = u.api
		p, i, err := en.render()
		if err != nil {
			return "", "", err
		}
		protos = append(protos, p)
		impls = append(impls, i)
	}
	return strings.Join(protos, "\n\n"), strings.Join(impls, "\n\n"), nil
}

// override builds a parameterless entry overriding a root capability function.
func override(name, ret string, isConst bool, brief string, body ...string) *entry {
	return &entry{Name: name, Return: ret, Const: isConst, Override: true, Brief: brief, Body: body}
}
