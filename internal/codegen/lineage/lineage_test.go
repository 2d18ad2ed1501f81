package lineage

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/apigen/internal/codegen/generror"
	"github.com/Alia5/apigen/internal/codegen/manifest"
	"github.com/Alia5/apigen/internal/codegen/scanner"
	"github.com/Alia5/apigen/internal/codegen/tables"
)

type fakeDecl struct {
	base    string
	exposes bool
}

type fakeDecls struct {
	classes map[string]fakeDecl
	calls   int
}

func (f *fakeDecls) ResolveBase(class string) (string, error) {
	f.calls++
	d, ok := f.classes[class]
	if !ok {
		return "", fmt.Errorf("unknown class %s", class)
	}
	return d.base, nil
}

func (f *fakeDecls) ExposesAPI(class string) (bool, error) {
	return f.classes[class].exposes, nil
}

func masala() *tables.Tables {
	t := tables.Default("masala", "numeric")
	return &t
}

const plainMarker = "masala::base::MasalaObject"

func TestScenarioSkipsUnwrappedAncestor(t *testing.T) {
	root := t.TempDir()
	body := func(ns, name, base string, exposes bool) string {
		m := ""
		if exposes {
			m = "masala::base::api::MasalaObjectAPIDefinitionCWP get_api_definition() override;"
		}
		return fmt.Sprintf("namespace %s {\nclass %s : public %s {\npublic:\n%s\n};\n}\n", ns, name, base, m)
	}
	files := map[string]string{
		"numeric/Base.hh": body("masala::numeric", "Base", plainMarker, false),
		"numeric/Mid.hh":  body("masala::numeric", "Mid", "Base", true),
		"numeric/Leaf.hh": body("masala::numeric", "Leaf", "Mid", true),
	}
	for rel, content := range files {
		p := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	tb := masala()
	s := scanner.New(tb, manifest.New(nil, nil), scanner.Options{SourceRoot: root}, nil)
	r := New(tb, s, func(class string) (tables.Role, error) {
		a, err := s.Classify(class)
		return a.Role, err
	})

	leaf, err := r.Get("masala::numeric::Leaf")
	require.NoError(t, err)
	assert.Equal(t, Lineage{
		BaseInclude: "<numeric_api/auto_generated_api/Mid_API.hh>",
		BaseWrapper: "masala::numeric_api::auto_generated_api::Mid_API",
		Root:        "masala::numeric_api::auto_generated_api::Mid_API",
		IsDerived:   true,
		Role:        tables.RolePlain,
	}, leaf)

	mid, err := r.Get("masala::numeric::Mid")
	require.NoError(t, err)
	assert.False(t, mid.IsDerived)
	assert.Equal(t, "masala::base::api::MasalaObjectAPI", mid.BaseWrapper)
	assert.Equal(t, "<base/api/MasalaObjectAPI.hh>", mid.BaseInclude)
}

func TestRootWrapperFollowsRole(t *testing.T) {
	d := &fakeDecls{classes: map[string]fakeDecl{
		"masala::numeric::E": {base: "masala::base::managers::engine::MasalaEngine"},
		"masala::numeric::F": {base: "masala::numeric::E", exposes: false},
		"masala::numeric::G": {base: ""},
	}}
	roles := map[string]tables.Role{
		"masala::numeric::E": tables.RoleEngine,
		"masala::numeric::F": tables.RoleEngine,
	}
	r := New(masala(), d, func(c string) (tables.Role, error) {
		if role, ok := roles[c]; ok {
			return role, nil
		}
		return tables.RolePlain, nil
	})

	e, err := r.Get("masala::numeric::E")
	require.NoError(t, err)
	assert.Equal(t, "masala::base::managers::engine::MasalaEngineAPI", e.BaseWrapper)
	assert.False(t, e.IsDerived)

	f, err := r.Get("masala::numeric::F")
	require.NoError(t, err)
	assert.Equal(t, e.BaseWrapper, f.BaseWrapper)
	assert.False(t, f.IsDerived)

	g, err := r.Get("masala::numeric::G")
	require.NoError(t, err)
	assert.Equal(t, "masala::base::api::MasalaObjectAPI", g.BaseWrapper)
}

func TestConcreteRootIsInherited(t *testing.T) {
	d := &fakeDecls{classes: map[string]fakeDecl{
		"masala::numeric::A": {base: plainMarker, exposes: true},
		"masala::numeric::B": {base: "masala::numeric::A", exposes: true},
		"masala::numeric::C": {base: "masala::numeric::B", exposes: true},
	}}
	r := New(masala(), d, nil)
	c, err := r.Get("masala::numeric::C")
	require.NoError(t, err)
	assert.Equal(t, "masala::numeric_api::auto_generated_api::B_API", c.BaseWrapper)
	assert.Equal(t, "masala::numeric_api::auto_generated_api::A_API", c.Root)
	assert.True(t, c.IsDerived)
}

func TestLineageTerminatesInLinearSteps(t *testing.T) {
	for _, n := range []int{1, 2, 7, 40} {
		for _, firstExposes := range []bool{true, false} {
			t.Run(fmt.Sprintf("n=%d/exposes=%v", n, firstExposes), func(t *testing.T) {
				classes := map[string]fakeDecl{}
				anyExposes := false
				prev := plainMarker
				for i := range n {
					name := fmt.Sprintf("masala::numeric::C%d", i)
					exposes := (i%2 == 0) == firstExposes
					classes[name] = fakeDecl{base: prev, exposes: exposes}
					prev = name
				}
				leaf := fmt.Sprintf("masala::numeric::Leaf%d", n)
				classes[leaf] = fakeDecl{base: prev, exposes: true}
				for i := range n {
					anyExposes = anyExposes || classes[fmt.Sprintf("masala::numeric::C%d", i)].exposes
				}

				d := &fakeDecls{classes: classes}
				l, err := New(masala(), d, nil).Get(leaf)
				require.NoError(t, err)
				assert.Equal(t, anyExposes, l.IsDerived)
				assert.LessOrEqual(t, d.calls, n+1)
			})
		}
	}
}

func TestLineageDetectsCycles(t *testing.T) {
	d := &fakeDecls{classes: map[string]fakeDecl{
		"masala::numeric::A": {base: "masala::numeric::B"},
		"masala::numeric::B": {base: "masala::numeric::A"},
		"masala::numeric::X": {base: "masala::numeric::Y", exposes: true},
		"masala::numeric::Y": {base: "masala::numeric::X", exposes: true},
	}}
	r := New(masala(), d, nil)

	_, err := r.Get("masala::numeric::A")
	require.Error(t, err)
	assert.True(t, generror.IsKind(err, generror.KindConfiguration))

	_, err = r.Get("masala::numeric::X")
	require.Error(t, err)
	assert.True(t, generror.IsKind(err, generror.KindConfiguration))
}

func TestResolveErrorsPropagate(t *testing.T) {
	r := New(masala(), &fakeDecls{classes: map[string]fakeDecl{}}, nil)
	_, err := r.Get("masala::numeric::Ghost")
	assert.ErrorContains(t, err, "unknown class")
}
