package tables

import (
	"path"
	"strings"
)

// SplitQualified splits "a::b::C" into its namespace segments and the final name.
func SplitQualified(name string) (ns []string, last string) {
	parts := strings.Split(strings.TrimPrefix(name, "::"), "::")
	return parts[:len(parts)-1], parts[len(parts)-1]
}

func (n Naming) apiIndex(nsLen int) int {
	idx := n.APISegmentIndex
	if idx > nsLen-1 {
		idx = nsLen - 1
	}
	if idx < 0 {
		idx = 0
	}
	return idx
}

// wrapperSegments returns the wrapper namespace segments and the index of the API segment.
func (n Naming) wrapperSegments(ns []string) ([]string, int) {
	if len(ns) == 0 {
		return nil, -1
	}
	idx := n.apiIndex(len(ns))
	out := make([]string, 0, len(ns)+1)
	out = append(out, ns[:idx]...)
	out = append(out, ns[idx]+n.APINamespaceSuffix)
	if n.GeneratedSegment != "" {
		out = append(out, n.GeneratedSegment)
	}
	out = append(out, ns[idx+1:]...)
	return out, idx
}

// WrapperNamespace returns the namespace path of the wrapper for a qualified class.
func (n Naming) WrapperNamespace(qualified string) []string {
	ns, _ := SplitQualified(qualified)
	out, _ := n.wrapperSegments(ns)
	return out
}

// WrapperClass returns the unqualified wrapper class name.
func (n Naming) WrapperClass(qualified string) string {
	_, last := SplitQualified(qualified)
	return last + n.APIClassSuffix
}

// WrapperName returns the fully qualified wrapper name of a project class.
//
//	masala::numeric::Foo -> masala::numeric_api::auto_generated_api::Foo_API
func (n Naming) WrapperName(qualified string) string {
	ns := n.WrapperNamespace(qualified)
	return strings.Join(append(ns, n.WrapperClass(qualified)), "::")
}

// wrapperDir is the include directory of the wrapper, starting at the API segment.
func (n Naming) wrapperDir(qualified string) string {
	ns, _ := SplitQualified(qualified)
	out, idx := n.wrapperSegments(ns)
	if idx < 0 {
		return ""
	}
	return path.Join(out[idx:]...)
}

// WrapperInclude returns the include path of the wrapper header.
func (n Naming) WrapperInclude(qualified string) string {
	return path.Join(n.wrapperDir(qualified), n.WrapperClass(qualified)+".hh")
}

// WrapperForwardInclude returns the include path of the wrapper forward declaration.
func (n Naming) WrapperForwardInclude(qualified string) string {
	return path.Join(n.wrapperDir(qualified), n.WrapperClass(qualified)+".fwd.hh")
}

// WrapperBasePath returns the output path of the wrapper without extension.
func (n Naming) WrapperBasePath(qualified string) string {
	return path.Join(n.wrapperDir(qualified), n.WrapperClass(qualified))
}

// CreatorClass returns the unqualified creator name of a project class.
func (n Naming) CreatorClass(qualified string) string {
	_, last := SplitQualified(qualified)
	return last + n.CreatorSuffix
}

// CreatorName returns the fully qualified creator name, which lives beside the wrapper.
func (n Naming) CreatorName(qualified string) string {
	return strings.Join(append(n.WrapperNamespace(qualified), n.CreatorClass(qualified)), "::")
}

// CreatorBasePath returns the output path of the creator without extension.
func (n Naming) CreatorBasePath(qualified string) string {
	return path.Join(n.wrapperDir(qualified), n.CreatorClass(qualified))
}

// IsWrapperName reports whether a qualified name already denotes a generated wrapper.
func (n Naming) IsWrapperName(qualified string) bool {
	ns, last := SplitQualified(qualified)
	if n.APIClassSuffix != "" && !strings.HasSuffix(last, n.APIClassSuffix) {
		return false
	}
	if n.APINamespaceSuffix == "" {
		return true
	}
	for _, s := range ns {
		if strings.HasSuffix(s, n.APINamespaceSuffix) {
			return true
		}
	}
	return false
}

// LibraryNamespace returns the wrapper namespace of the whole library, used for registration.
func (n Naming) LibraryNamespace() []string {
	return n.WrapperNamespace(n.Project + "::" + n.Library + "::_")
}

// sourceDir is the include directory of a project class: its namespace without the project segment.
func (n Naming) sourceDir(qualified string) (string, string) {
	ns, last := SplitQualified(qualified)
	if len(ns) > 0 && ns[0] == n.Project {
		ns = ns[1:]
	}
	return path.Join(ns...), last
}

// SourceInclude returns the include path of the header declaring a project class.
//
//	masala::numeric::Foo -> numeric/Foo.hh
func (n Naming) SourceInclude(qualified string) string {
	dir, last := n.sourceDir(qualified)
	return path.Join(dir, last+".hh")
}

// SourceForwardInclude returns the include path of a project class's forward declarations.
func (n Naming) SourceForwardInclude(qualified string) string {
	dir, last := n.sourceDir(qualified)
	return path.Join(dir, last+".fwd.hh")
}
