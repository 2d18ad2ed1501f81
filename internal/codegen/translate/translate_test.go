package translate

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/apigen/internal/codegen/tables"
)

func projectXTables() *tables.Tables {
	t := tables.Default("ProjectX", "lib")
	t.GeneratedSegment = ""
	t.Containers = []tables.TypeEntry{
		{Name: "vector", External: "sequence", Include: "<sequence>", Kind: tables.KindSequence},
		{Name: "pair", External: "fixed_pair", Include: "<fixed_pair>", Kind: tables.KindPair},
	}
	return &t
}

func TestScenarioNestedContainers(t *testing.T) {
	tr := New(projectXTables(), nil)
	inc := NewIncludeSet()

	got, err := tr.Translate("vector< pair< int, ProjectX::Foo > >", inc)
	require.NoError(t, err)
	assert.Equal(t, "sequence< fixed_pair< int, ProjectX_api::Foo_API > >", got)
	if diff := cmp.Diff([]string{"<sequence>", "<fixed_pair>", "<ProjectX_api/Foo_API.hh>"}, inc.Paths()); diff != "" {
		t.Errorf("includes mismatch (-want +got):\n%s", diff)
	}
}

func masalaTables() *tables.Tables {
	t := tables.Default("masala", "numeric")
	return &t
}

func TestTranslateRules(t *testing.T) {
	tests := []struct {
		name     string
		expr     string
		want     string
		includes []string
	}{
		{
			name:     "root api type passes through with include",
			expr:     "masala::base::managers::plugin_module::MasalaPluginAPI const &",
			want:     "masala::base::managers::plugin_module::MasalaPluginAPI const &",
			includes: []string{"<base/managers/plugin_module/MasalaPluginAPI.hh>"},
		},
		{
			name:     "indirection keeps its spelling",
			expr:     "MASALA_SHARED_POINTER< masala::numeric::Foo const >",
			want:     "MASALA_SHARED_POINTER< masala::numeric_api::auto_generated_api::Foo_API const >",
			includes: []string{"<numeric_api/auto_generated_api/Foo_API.hh>"},
		},
		{
			name: "container records include once",
			expr: "std::map< masala::numeric::Foo, std::vector< std::vector< masala::numeric::Bar > > >",
			want: "std::map< masala::numeric_api::auto_generated_api::Foo_API, std::vector< std::vector< masala::numeric_api::auto_generated_api::Bar_API > > >",
			includes: []string{
				"<map>",
				"<numeric_api/auto_generated_api/Foo_API.hh>",
				"<vector>",
				"<numeric_api/auto_generated_api/Bar_API.hh>",
			},
		},
		{
			name:     "enumeration passes through with include",
			expr:     "masala::base::managers::database::elements::ElementTypeEnum",
			want:     "masala::base::managers::database::elements::ElementTypeEnum",
			includes: []string{"<base/managers/database/elements/ElementType.fwd.hh>"},
		},
		{
			name: "external namespace passes through",
			expr: "masala::base::Size",
			want: "masala::base::Size",
		},
		{
			name: "wrapper names are not wrapped again",
			expr: "masala::numeric_api::auto_generated_api::Foo_API",
			want: "masala::numeric_api::auto_generated_api::Foo_API",
		},
		{
			name: "unknown template passes through untouched",
			expr: "boost::optional<masala::numeric::Foo>",
			want: "boost::optional< masala::numeric::Foo >",
		},
		{
			name:     "function value recurses into signature",
			expr:     "std::function< void( masala::numeric::Foo const &, masala::base::Real ) >",
			want:     "std::function< void( masala::numeric_api::auto_generated_api::Foo_API const &, masala::base::Real ) >",
			includes: []string{"<functional>", "<numeric_api/auto_generated_api/Foo_API.hh>"},
		},
		{
			name:     "fixed-size numeric vector keeps literals",
			expr:     "std::array<masala::base::Real,3> const&",
			want:     "std::array< masala::base::Real, 3 > const&",
			includes: []string{"<array>"},
		},
		{
			name: "builtin multi-word names",
			expr: "const unsigned long int &",
			want: "const unsigned long int &",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inc := NewIncludeSet()
			got, err := New(masalaTables(), nil).Translate(tt.expr, inc)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			if diff := cmp.Diff(tt.includes, inc.Paths(), cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("includes mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExcludedTypesPassThrough(t *testing.T) {
	tr := New(masalaTables(), func(q string) (bool, error) {
		return q == "masala::numeric::Hidden", nil
	})
	inc := NewIncludeSet()
	got, err := tr.Translate("std::vector< masala::numeric::Hidden >", inc)
	require.NoError(t, err)
	assert.Equal(t, "std::vector< masala::numeric::Hidden >", got)
	assert.Equal(t, []string{"<vector>"}, inc.Paths())
}

func TestIndirectionOverExternalTypesPassesThrough(t *testing.T) {
	tr := New(masalaTables(), func(q string) (bool, error) {
		return q == "masala::numeric::Hidden", nil
	})
	for _, expr := range []string{
		"MASALA_SHARED_POINTER< std::vector< int > >",
		"MASALA_WEAK_POINTER< std::map< std::string, masala::numeric::Hidden > > const &",
	} {
		t.Run(expr, func(t *testing.T) {
			inc := NewIncludeSet()
			res, err := tr.TranslateTree(expr, inc)
			require.NoError(t, err)
			assert.Equal(t, expr, res.Text)
			assert.Equal(t, RulePass, res.Tree.Rule)
			assert.Zero(t, inc.Len())
		})
	}

	inc := NewIncludeSet()
	got, err := tr.Translate("MASALA_SHARED_POINTER< std::vector< masala::numeric::Foo > >", inc)
	require.NoError(t, err)
	assert.Equal(t, "MASALA_SHARED_POINTER< std::vector< masala::numeric_api::auto_generated_api::Foo_API > >", got)
	assert.Equal(t, []string{"<vector>", "<numeric_api/auto_generated_api/Foo_API.hh>"}, inc.Paths())
}

func TestExcludeErrorsPropagate(t *testing.T) {
	boom := errors.New("boom")
	tr := New(masalaTables(), func(string) (bool, error) { return false, boom })
	_, err := tr.Translate("masala::numeric::Foo", NewIncludeSet())
	assert.ErrorIs(t, err, boom)
}

func TestRoundTripPreservesShape(t *testing.T) {
	exprs := []string{
		"int",
		"std::vector< masala::numeric::A >",
		"std::map< std::string, std::vector< masala::numeric::A > > const &",
		"MASALA_SHARED_POINTER< std::vector< std::pair< masala::base::Size, masala::numeric::A > > >",
		"std::list< std::set< std::vector< std::deque< masala::numeric::A > > > >",
	}
	tr := New(masalaTables(), nil)
	for _, expr := range exprs {
		t.Run(expr, func(t *testing.T) {
			in, err := Parse(expr)
			require.NoError(t, err)
			assert.Equal(t, expr, in.String())
			assert.LessOrEqual(t, in.Depth(), 5)

			res, err := tr.TranslateTree(expr, NewIncludeSet())
			require.NoError(t, err)
			assert.Equal(t, shape(in), shape(res.Tree))

			reparsed, err := Parse(res.Text)
			require.NoError(t, err)
			assert.Equal(t, res.Text, reparsed.String())
		})
	}
}

// shape renders only the nesting structure of a tree.
func shape(n *Node) string {
	s := "T"
	if n.HasArgs {
		s += "<"
		for i, a := range n.Args {
			if i > 0 {
				s += ","
			}
			s += shape(a)
		}
		s += ">"
	}
	return s + n.Suffix
}

func TestTranslateTreeAnnotatesRules(t *testing.T) {
	res, err := New(masalaTables(), nil).TranslateTree("MASALA_SHARED_POINTER< masala::numeric::Foo >", NewIncludeSet())
	require.NoError(t, err)
	assert.Equal(t, RuleIndirection, res.Tree.Rule)
	assert.Equal(t, string(tables.KindShared), res.Tree.Container)
	require.Len(t, res.Tree.Args, 1)
	assert.Equal(t, RuleWrapper, res.Tree.Args[0].Rule)
	assert.Equal(t, "masala::numeric::Foo", res.Tree.Args[0].Original)
}

func TestParseErrors(t *testing.T) {
	for _, expr := range []string{"", "std::vector< int", "a<b>>", "std::vector< , >"} {
		_, err := Parse(expr)
		assert.Error(t, err, expr)
	}
}

func TestNodeQualifiers(t *testing.T) {
	n, err := Parse("const masala::numeric::Foo &")
	require.NoError(t, err)
	assert.True(t, n.IsConst())
	assert.True(t, n.IsReference())
	assert.False(t, n.IsPointer())
	assert.Equal(t, "masala::numeric::Foo", n.Base().String())
}
