// Package lineage decides which generated wrapper each wrapper derives from.
package lineage

import (
	"strings"

	"github.com/Alia5/apigen/internal/codegen/generror"
	"github.com/Alia5/apigen/internal/codegen/tables"
)

// Lineage is the resolved parentage of one wrapper.
type Lineage struct {
	// BaseInclude is the header of BaseWrapper, with delimiters.
	BaseInclude string
	// BaseWrapper is the qualified class the wrapper derives from.
	BaseWrapper string
	// Root is the root capability the wrapper ultimately represents: a root
	// capability wrapper, or the nearest generated wrapper that replaced a
	// generic one.
	Root string
	// IsDerived is true when BaseWrapper is itself a generated wrapper.
	IsDerived bool
	// Role is the role the root capability was chosen for.
	Role tables.Role
}

// Declarations answers the base-class questions the resolver asks.
type Declarations interface {
	ResolveBase(class string) (string, error)
	ExposesAPI(class string) (bool, error)
}

// RoleFunc returns the effective role of a class.
type RoleFunc func(class string) (tables.Role, error)

// Resolver computes lineages for one run. Results are memoized.
type Resolver struct {
	tables *tables.Tables
	decls  Declarations
	roleOf RoleFunc

	memo    map[string]Lineage
	pending map[string]bool
}

// New returns a resolver. roleOf may be nil, in which case every class is plain.
func New(t *tables.Tables, decls Declarations, roleOf RoleFunc) *Resolver {
	if roleOf == nil {
		roleOf = func(string) (tables.Role, error) { return tables.RolePlain, nil }
	}
	return &Resolver{
		tables:  t,
		decls:   decls,
		roleOf:  roleOf,
		memo:    make(map[string]Lineage),
		pending: make(map[string]bool),
	}
}

// Get returns the lineage of a qualified class.
func (r *Resolver) Get(class string) (Lineage, error) {
	class = strings.TrimPrefix(class, "::")
	if l, ok := r.memo[class]; ok {
		return l, nil
	}
	if r.pending[class] {
		return Lineage{}, generror.Configuration(class, "", "public <Base>", "cyclic wrapper lineage through "+class)
	}
	r.pending[class] = true
	defer delete(r.pending, class)

	l, err := r.resolve(class)
	if err != nil {
		return Lineage{}, err
	}
	r.memo[class] = l
	return l, nil
}

func (r *Resolver) resolve(class string) (Lineage, error) {
	role, err := r.roleOf(class)
	if err != nil {
		return Lineage{}, err
	}

	skipped := map[string]bool{}
	base, err := r.decls.ResolveBase(class)
	if err != nil {
		return Lineage{}, err
	}
	for base != "" {
		if _, ok := r.tables.Marker(base); ok {
			break
		}
		if base == class || skipped[base] {
			return Lineage{}, generror.Configuration(class, "", "public <Base>", "cyclic inheritance through "+base)
		}

		exposes, err := r.decls.ExposesAPI(base)
		if err != nil {
			return Lineage{}, err
		}
		if exposes {
			parent, err := r.Get(base)
			if err != nil {
				return Lineage{}, err
			}
			wrapper := r.tables.WrapperName(base)
			root := parent.Root
			if r.tables.IsGenericRoot(root) {
				root = wrapper
			}
			return Lineage{
				BaseInclude: "<" + r.tables.WrapperInclude(base) + ">",
				BaseWrapper: wrapper,
				Root:        root,
				IsDerived:   true,
				Role:        role,
			}, nil
		}

		skipped[base] = true
		if base, err = r.decls.ResolveBase(base); err != nil {
			return Lineage{}, err
		}
	}

	rw := r.tables.RootWrapper(role)
	return Lineage{
		BaseInclude: rw.Include,
		BaseWrapper: rw.Name,
		Root:        rw.Name,
		Role:        role,
	}, nil
}
