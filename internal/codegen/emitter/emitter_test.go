package emitter

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/apigen/internal/codegen/artifact"
	"github.com/Alia5/apigen/internal/codegen/generror"
	"github.com/Alia5/apigen/internal/codegen/lineage"
	"github.com/Alia5/apigen/internal/codegen/manifest"
	"github.com/Alia5/apigen/internal/codegen/tables"
	"github.com/Alia5/apigen/internal/codegen/translate"
)

type fakeLookup struct {
	lightweight map[string]bool
	plugin      map[string]bool
}

func (f fakeLookup) IsLightweight(class string) bool     { return f.lightweight[class] }
func (f fakeLookup) IsPlugin(class string) (bool, error) { return f.plugin[class], nil }

func newEmitter(t *testing.T, version tables.Version, lookup fakeLookup) *Emitter {
	t.Helper()
	tb := tables.Default("masala", "numeric")
	tb.Version = version
	tmpl, err := artifact.LoadTemplates("")
	require.NoError(t, err)
	return New(Config{
		Tables:     &tb,
		Templates:  tmpl,
		Translator: translate.New(&tb, nil),
		Lookup:     lookup,
		Licence:    "/*\n    Test licence.\n*/",
	})
}

func rootLineage() lineage.Lineage {
	return lineage.Lineage{
		BaseInclude: "<base/api/MasalaObjectAPI.hh>",
		BaseWrapper: "masala::base::api::MasalaObjectAPI",
		Root:        "masala::base::api::MasalaObjectAPI",
	}
}

func fooClass(fns ...manifest.Function) *Class {
	c := &manifest.Class{
		Name:        "masala::numeric::Foo",
		Module:      "Foo",
		Namespace:   []string{"masala", "numeric"},
		Description: "A foo.",
	}
	for _, fn := range fns {
		switch fn.Kind {
		case manifest.Constructor:
			c.Constructors = append(c.Constructors, fn)
		case manifest.Setter:
			c.Setters = append(c.Setters, fn)
		case manifest.Getter:
			c.Getters = append(c.Getters, fn)
		default:
			c.WorkFunctions = append(c.WorkFunctions, fn)
		}
	}
	return &Class{Class: c, Lineage: rootLineage(), Role: tables.RolePlain}
}

func emit(t *testing.T, e *Emitter, c *Class) (fwd, hh, cc string, res *Result) {
	t.Helper()
	res, err := e.Emit(c)
	require.NoError(t, err)
	require.Len(t, res.Artifacts, 3)
	return res.Artifacts[0].Text, res.Artifacts[1].Text, res.Artifacts[2].Text, res
}

func TestEmitRootWrapper(t *testing.T) {
	e := newEmitter(t, tables.Version{Major: 1}, fakeLookup{})
	c := fooClass(
		manifest.Function{Kind: manifest.Constructor, Name: "Foo", Description: "Default constructor."},
		manifest.Function{Kind: manifest.Constructor, Name: "Foo", Description: "Hidden.", IsProtected: true,
			Inputs: []manifest.Input{{Type: "int", Name: "secret"}}},
		manifest.Function{Kind: manifest.Setter, Name: "set_value", Description: "Set the value.",
			Inputs: []manifest.Input{{Type: "masala::base::Real", Name: "value_in", Description: "The value."}}},
		manifest.Function{Kind: manifest.Getter, Name: "value", Description: "Get the value.", IsConst: true,
			Output: &manifest.Output{Type: "masala::base::Real", Description: "The value."}},
		manifest.Function{Kind: manifest.WorkFunction, Name: "poke", NoLock: true},
	)

	fwd, hh, cc, res := emit(t, e, c)

	paths := []string{res.Artifacts[0].Path, res.Artifacts[1].Path, res.Artifacts[2].Path}
	assert.Equal(t, []string{
		"numeric_api/auto_generated_api/Foo_API.fwd.hh",
		"numeric_api/auto_generated_api/Foo_API.hh",
		"numeric_api/auto_generated_api/Foo_API.cc",
	}, paths)
	assert.Equal(t, artifact.KindHeader, res.Artifacts[1].Kind)

	assert.Contains(t, fwd, "#ifndef INCLUDED_numeric_api_auto_generated_api_Foo_API_fwd_hh")
	assert.Contains(t, fwd, "using Foo_APISP = MASALA_SHARED_POINTER< Foo_API >;")
	assert.Contains(t, fwd, "namespace masala {\nnamespace numeric_api {\nnamespace auto_generated_api {")
	assert.True(t, len(fwd) > 0 && fwd[:2] == "/*", "licence leads the file")

	assert.Contains(t, hh, "class Foo_API : public masala::base::api::MasalaObjectAPI {")
	assert.Contains(t, hh, "#include <base/api/MasalaObjectAPI.hh>")
	assert.Contains(t, hh, "#include <numeric/Foo.fwd.hh>")
	assert.Contains(t, hh, "    /// @brief Default constructor.\n    Foo_API();")
	assert.NotContains(t, hh, "secret")
	assert.Contains(t, hh, `    /// @brief Set the value.
    /// @param[in] value_in The value.
    void
    set_value(
        masala::base::Real value_in
    );`)
	assert.Contains(t, hh, `    /// @brief Get the value.
    /// @returns The value.
    masala::base::Real
    value() const;`)
	assert.NotContains(t, hh, "_NOT_INSTANTIABLE\n")

	assert.Contains(t, cc, "#include <numeric/Foo.hh>")
	assert.Contains(t, cc, `/// @brief Default constructor.
Foo_API::Foo_API() :
    masala::base::api::MasalaObjectAPI(),
    inner_object_( masala::make_shared< masala::numeric::Foo >() )
{}`)
	assert.Contains(t, cc, `/// @brief Set the value.
void
Foo_API::set_value(
    masala::base::Real value_in
) {
    std::lock_guard< std::mutex > lock( api_mutex_ );
    inner_object_->set_value( value_in );
}`)
	assert.Contains(t, cc, `masala::base::Real
Foo_API::value() const {
    std::lock_guard< std::mutex > lock( api_mutex_ );
    return inner_object_->value();
}`)
	assert.Contains(t, cc, `void
Foo_API::poke() {
    inner_object_->poke();
}`)
}

func TestDeprecationGate(t *testing.T) {
	v := func(major, minor int) tables.Version { return tables.Version{Major: major, Minor: minor} }
	current := v(1, 0)
	tests := []struct {
		name string
		dep  *manifest.Deprecation
		want Gate
	}{
		{name: "not deprecated", want: GatePresent},
		{name: "removed at current version", dep: &manifest.Deprecation{Removal: v(1, 0)}, want: GateOmitted},
		{name: "removed before current version", dep: &manifest.Deprecation{Removal: v(0, 9)}, want: GateOmitted},
		{name: "warning reached", dep: &manifest.Deprecation{Removal: v(2, 0), HasWarning: true, Warning: v(1, 0)}, want: GateGuarded},
		{name: "warning ahead", dep: &manifest.Deprecation{Removal: v(2, 0), HasWarning: true, Warning: v(1, 5)}, want: GatePresent},
		{name: "no warning version", dep: &manifest.Deprecation{Removal: v(1, 1)}, want: GateGuarded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeprecationGate(tt.dep, current))
		})
	}
}

func TestEmitGatesDeprecatedEntries(t *testing.T) {
	e := newEmitter(t, tables.Version{Major: 1}, fakeLookup{})
	c := fooClass(
		manifest.Function{Kind: manifest.WorkFunction, Name: "gone",
			Deprecation: &manifest.Deprecation{Removal: tables.Version{Major: 1}}},
		manifest.Function{Kind: manifest.WorkFunction, Name: "fading",
			Deprecation: &manifest.Deprecation{Removal: tables.Version{Major: 2}, HasWarning: true, Warning: tables.Version{Major: 1}}},
		manifest.Function{Kind: manifest.WorkFunction, Name: "later",
			Deprecation: &manifest.Deprecation{Removal: tables.Version{Major: 3}, HasWarning: true, Warning: tables.Version{Major: 2}}},
	)
	_, hh, cc, res := emit(t, e, c)

	assert.Equal(t, []string{"gone"}, res.Omitted)
	assert.Equal(t, []string{"fading"}, res.Guarded)
	assert.NotContains(t, hh, "gone")
	assert.NotContains(t, cc, "gone")
	assert.Contains(t, hh, "#ifdef MASALA_ENABLE_DEPRECATED_FUNCTIONS\n")
	assert.Contains(t, cc, "#ifdef MASALA_ENABLE_DEPRECATED_FUNCTIONS\nvoid\nFoo_API::fading() {")
	assert.Contains(t, cc, "    inner_object_->fading();\n}\n#endif // MASALA_ENABLE_DEPRECATED_FUNCTIONS")
	assert.Contains(t, hh, "/// @note Deprecated from version 1.0; removed in version 2.0.")
	assert.Contains(t, hh, "    void\n    later();")
}

func TestEmitAlwaysNullSkipsLockAndCall(t *testing.T) {
	e := newEmitter(t, tables.Version{Major: 1}, fakeLookup{})
	c := fooClass(manifest.Function{
		Kind: manifest.Getter, Name: "get_bar", IsConst: true, AlwaysNull: true,
		Inputs: []manifest.Input{{Type: "masala::base::Size", Name: "index"}},
		Output: &manifest.Output{Type: "MASALA_SHARED_POINTER< masala::numeric::Bar >"},
	})
	_, hh, cc, _ := emit(t, e, c)

	assert.Contains(t, hh, `    MASALA_SHARED_POINTER< masala::numeric_api::auto_generated_api::Bar_API >
    get_bar(
        masala::base::Size index
    ) const;`)
	assert.Contains(t, cc, `MASALA_SHARED_POINTER< masala::numeric_api::auto_generated_api::Bar_API >
Foo_API::get_bar(
    masala::base::Size /*index*/
) const {
    return nullptr;
}`)
}

func TestEmitAlwaysNullValueReturns(t *testing.T) {
	e := newEmitter(t, tables.Version{Major: 1}, fakeLookup{})
	c := fooClass(
		manifest.Function{Kind: manifest.Getter, Name: "count", IsConst: true, AlwaysNull: true,
			Output: &manifest.Output{Type: "masala::base::Size"}},
		manifest.Function{Kind: manifest.Getter, Name: "raw", IsConst: true, AlwaysNull: true,
			Output: &manifest.Output{Type: "masala::base::Real const *"}},
	)
	_, _, cc, _ := emit(t, e, c)
	assert.Contains(t, cc, "Foo_API::count() const {\n    return {};\n}")
	assert.Contains(t, cc, "Foo_API::raw() const {\n    return nullptr;\n}")
}

func TestEmitAlwaysNullRejectsReferenceReturn(t *testing.T) {
	e := newEmitter(t, tables.Version{Major: 1}, fakeLookup{})
	c := fooClass(manifest.Function{Kind: manifest.Getter, Name: "name", IsConst: true, AlwaysNull: true,
		Output: &manifest.Output{Type: "std::string const &"}})
	_, err := e.Emit(c)
	require.Error(t, err)
	assert.True(t, generror.IsKind(err, generror.KindConfiguration))
	assert.ErrorContains(t, err, "cannot return a reference")
}

func TestEmitRewrapsOutputs(t *testing.T) {
	lookup := fakeLookup{
		lightweight: map[string]bool{"masala::numeric::Point": true},
		plugin:      map[string]bool{"masala::numeric::Scorer": true},
	}
	tests := []struct {
		name     string
		output   string
		wantType string
		wantBody string
	}{
		{
			name:     "shared pointer to const",
			output:   "MASALA_SHARED_POINTER< masala::numeric::Bar const >",
			wantType: "MASALA_SHARED_POINTER< masala::numeric_api::auto_generated_api::Bar_API const >",
			wantBody: `    auto const inner_result( inner_object_->fetch() );
    return ( inner_result == nullptr ? nullptr : masala::make_shared< masala::numeric_api::auto_generated_api::Bar_API >( std::const_pointer_cast< masala::numeric::Bar >( inner_result ) ) );`,
		},
		{
			name:     "plugin through registry",
			output:   "MASALA_SHARED_POINTER< masala::numeric::Scorer >",
			wantType: "MASALA_SHARED_POINTER< masala::numeric_api::auto_generated_api::Scorer_API >",
			wantBody: `    auto const inner_result( inner_object_->fetch() );
    return ( inner_result == nullptr ? nullptr : std::dynamic_pointer_cast< masala::numeric_api::auto_generated_api::Scorer_API >( masala::base::managers::plugin_module::MasalaPluginModuleManager::get_instance()->encapsulate_plugin_object_instance( inner_result ) ) );`,
		},
		{
			name:     "weak pointer promoted",
			output:   "MASALA_WEAK_POINTER< masala::numeric::Bar >",
			wantType: "MASALA_SHARED_POINTER< masala::numeric_api::auto_generated_api::Bar_API >",
			wantBody: `    auto const inner_result( inner_object_->fetch().lock() );`,
		},
		{
			name:     "lightweight by value",
			output:   "masala::numeric::Point const &",
			wantType: "masala::numeric_api::auto_generated_api::Point_API",
			wantBody: `    return masala::numeric_api::auto_generated_api::Point_API( inner_object_->fetch() );`,
		},
		{
			name:     "sequence converted element-wise",
			output:   "std::vector< MASALA_SHARED_POINTER< masala::numeric::Bar > > const &",
			wantType: "std::vector< MASALA_SHARED_POINTER< masala::numeric_api::auto_generated_api::Bar_API > >",
			wantBody: `    auto const & inner_result( inner_object_->fetch() );
    std::vector< MASALA_SHARED_POINTER< masala::numeric_api::auto_generated_api::Bar_API > > output;
    output.reserve( inner_result.size() );
    for( auto const & entry : inner_result ) {
        output.push_back( ( entry == nullptr ? nullptr : masala::make_shared< masala::numeric_api::auto_generated_api::Bar_API >( entry ) ) );
    }
    return output;`,
		},
		{
			name:     "external results pass through",
			output:   "std::vector< masala::base::Real > const &",
			wantType: "std::vector< masala::base::Real > const &",
			wantBody: `    return inner_object_->fetch();`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEmitter(t, tables.Version{Major: 1}, lookup)
			c := fooClass(manifest.Function{Kind: manifest.WorkFunction, Name: "fetch", Output: &manifest.Output{Type: tt.output}})
			_, _, cc, _ := emit(t, e, c)
			assert.Contains(t, cc, tt.wantType+"\nFoo_API::fetch() {\n    std::lock_guard< std::mutex > lock( api_mutex_ );\n")
			assert.Contains(t, cc, tt.wantBody)
		})
	}
}

func TestEmitPluginOutputIncludesRegistry(t *testing.T) {
	e := newEmitter(t, tables.Version{Major: 1}, fakeLookup{plugin: map[string]bool{"masala::numeric::Scorer": true}})
	c := fooClass(manifest.Function{Kind: manifest.WorkFunction, Name: "scorer",
		Output: &manifest.Output{Type: "MASALA_SHARED_POINTER< masala::numeric::Scorer const >"}})
	_, hh, cc, _ := emit(t, e, c)
	assert.Contains(t, hh, "#include <numeric_api/auto_generated_api/Scorer_API.fwd.hh>")
	assert.NotContains(t, hh, "#include <numeric_api/auto_generated_api/Scorer_API.hh>")
	assert.Contains(t, cc, "#include <numeric_api/auto_generated_api/Scorer_API.hh>")
	assert.Contains(t, cc, "#include <base/managers/plugin_module/MasalaPluginModuleManager.hh>")
	assert.Contains(t, cc, "encapsulate_const_plugin_object_instance( inner_result )")
}

func TestEmitUnwrapsInputs(t *testing.T) {
	e := newEmitter(t, tables.Version{Major: 1}, fakeLookup{lightweight: map[string]bool{"masala::numeric::Point": true}})
	c := fooClass(manifest.Function{Kind: manifest.WorkFunction, Name: "combine", Inputs: []manifest.Input{
		{Type: "masala::numeric::Bar const &", Name: "bar"},
		{Type: "MASALA_SHARED_POINTER< masala::numeric::Bar const >", Name: "maybe"},
		{Type: "masala::numeric::Point const &", Name: "point"},
		{Type: "masala::base::Size", Name: "count"},
	}})
	_, _, cc, _ := emit(t, e, c)
	assert.Contains(t, cc, "    inner_object_->combine( *bar.get_inner_object(), ( maybe == nullptr ? nullptr : maybe->get_inner_object() ), point.get_inner_object(), count );")
}

func TestEmitRejectsUnconvertibleTypes(t *testing.T) {
	tests := []struct {
		name string
		fn   manifest.Function
	}{
		{
			name: "container of wrappers as input",
			fn: manifest.Function{Kind: manifest.Setter, Name: "set_bars",
				Inputs: []manifest.Input{{Type: "std::vector< MASALA_SHARED_POINTER< masala::numeric::Bar > > const &", Name: "bars"}}},
		},
		{
			name: "weak pointer input",
			fn: manifest.Function{Kind: manifest.Setter, Name: "set_bar",
				Inputs: []manifest.Input{{Type: "MASALA_WEAK_POINTER< masala::numeric::Bar >", Name: "bar"}}},
		},
		{
			name: "heavy object returned by reference",
			fn: manifest.Function{Kind: manifest.Getter, Name: "bar", IsConst: true,
				Output: &manifest.Output{Type: "masala::numeric::Bar const &"}},
		},
		{
			name: "map of wrappers returned",
			fn: manifest.Function{Kind: manifest.Getter, Name: "bars", IsConst: true,
				Output: &manifest.Output{Type: "std::map< std::string, MASALA_SHARED_POINTER< masala::numeric::Bar > >"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEmitter(t, tables.Version{Major: 1}, fakeLookup{})
			_, err := e.Emit(fooClass(tt.fn))
			require.Error(t, err)
			assert.True(t, generror.IsKind(err, generror.KindConfiguration), err.Error())
			assert.Contains(t, err.Error(), "masala::numeric::Foo")
		})
	}
}

func TestEmitReturnsThis(t *testing.T) {
	e := newEmitter(t, tables.Version{Major: 1}, fakeLookup{})
	c := fooClass(manifest.Function{Kind: manifest.Setter, Name: "with_size", ReturnsThis: true,
		Inputs: []manifest.Input{{Type: "masala::base::Size", Name: "size"}},
		Output: &manifest.Output{Type: "masala::numeric::Foo &"}})
	_, _, cc, _ := emit(t, e, c)
	assert.Contains(t, cc, `masala::numeric_api::auto_generated_api::Foo_API &
Foo_API::with_size(
    masala::base::Size size
) {
    std::lock_guard< std::mutex > lock( api_mutex_ );
    inner_object_->with_size( size );
    return *this;
}`)
}

func TestEmitDerivedWrapper(t *testing.T) {
	e := newEmitter(t, tables.Version{Major: 1}, fakeLookup{})
	c := fooClass(
		manifest.Function{Kind: manifest.Constructor, Name: "Foo",
			Inputs: []manifest.Input{{Type: "masala::base::Size", Name: "n"}}},
		manifest.Function{Kind: manifest.Getter, Name: "size", IsConst: true, Output: &manifest.Output{Type: "masala::base::Size"}},
	)
	c.Lineage = lineage.Lineage{
		BaseInclude: "<numeric_api/auto_generated_api/Mid_API.hh>",
		BaseWrapper: "masala::numeric_api::auto_generated_api::Mid_API",
		Root:        "masala::numeric_api::auto_generated_api::Mid_API",
		IsDerived:   true,
	}
	_, hh, cc, _ := emit(t, e, c)

	assert.Contains(t, hh, "class Foo_API : public masala::numeric_api::auto_generated_api::Mid_API {")
	assert.Contains(t, hh, "#include <numeric_api/auto_generated_api/Mid_API.hh>")
	assert.Contains(t, hh, "    masala::numeric_api::auto_generated_api::Mid_APISP\n    clone() const override;")
	assert.Contains(t, cc, `Foo_API::Foo_API(
    masala::base::Size n
) :
    masala::numeric_api::auto_generated_api::Mid_API( masala::make_shared< masala::numeric::Foo >( n ) )
{}`)
	assert.Contains(t, cc, `    std::lock_guard< std::mutex > lock( api_mutex() );
    return std::static_pointer_cast< masala::numeric::Foo const >( inner_object() )->size();`)
}

func TestEmitLightweightWrapper(t *testing.T) {
	e := newEmitter(t, tables.Version{Major: 1}, fakeLookup{})
	c := fooClass(
		manifest.Function{Kind: manifest.Constructor, Name: "Foo",
			Inputs: []manifest.Input{{Type: "masala::base::Real", Name: "x"}}},
		manifest.Function{Kind: manifest.Getter, Name: "x", IsConst: true, Output: &manifest.Output{Type: "masala::base::Real"}},
	)
	c.IsLightweight = true
	_, hh, cc, _ := emit(t, e, c)

	assert.Contains(t, hh, "    masala::numeric::Foo inner_object_;")
	assert.Contains(t, cc, `) :
    masala::base::api::MasalaObjectAPI(),
    inner_object_( x )
{}`)
	assert.Contains(t, cc, "    return inner_object_.x();")
}

func TestEmitNotInstantiable(t *testing.T) {
	e := newEmitter(t, tables.Version{Major: 1}, fakeLookup{})
	c := fooClass(manifest.Function{Kind: manifest.Constructor, Name: "Foo", Description: "Public but unusable."})
	c.NotInstantiable = true
	_, hh, cc, _ := emit(t, e, c)

	assert.Contains(t, hh, "#define Foo_API_NOT_INSTANTIABLE")
	assert.Contains(t, hh, "    Foo_APISP\n    clone() const = 0;")
	assert.NotContains(t, hh, "Public but unusable.")
	assert.Contains(t, cc, "#ifndef Foo_API_NOT_INSTANTIABLE")
}

func TestEmitDataRepresentationPassThroughs(t *testing.T) {
	e := newEmitter(t, tables.Version{Major: 1}, fakeLookup{})
	c := fooClass()
	c.Role = tables.RoleDataRepresentation
	c.Lineage.BaseWrapper = "masala::base::managers::engine::MasalaDataRepresentationAPI"
	_, hh, cc, _ := emit(t, e, c)

	assert.Contains(t, hh, "    bool\n    inner_object_empty() const override;")
	assert.Contains(t, hh, "    masala::base::managers::engine::MasalaDataRepresentationCSP\n    get_inner_data_representation_object_const() const override;")
	assert.Contains(t, cc, "void\nFoo_API::inner_object_reset() {\n    std::lock_guard< std::mutex > lock( api_mutex_ );\n    inner_object_->reset();\n}")

	c.Lineage.IsDerived = true
	_, hh, _, _ = emit(t, e, c)
	assert.NotContains(t, hh, "inner_object_empty")
}

func TestEmitIsIdempotent(t *testing.T) {
	c := fooClass(
		manifest.Function{Kind: manifest.Setter, Name: "set_bars", Inputs: []manifest.Input{{Type: "std::map< std::string, masala::base::Real >", Name: "m"}}},
		manifest.Function{Kind: manifest.Getter, Name: "bar", IsConst: true, Output: &manifest.Output{Type: "MASALA_SHARED_POINTER< masala::numeric::Bar >"}},
		manifest.Function{Kind: manifest.WorkFunction, Name: "run", Output: &manifest.Output{Type: "std::vector< MASALA_WEAK_POINTER< masala::numeric::Bar const > >"}},
	)
	texts := func() []string {
		_, hh, cc, res := emit(t, newEmitter(t, tables.Version{Major: 1}, fakeLookup{}), c)
		return []string{res.Artifacts[0].Text, hh, cc}
	}
	if diff := cmp.Diff(texts(), texts()); diff != "" {
		t.Errorf("emission is not deterministic (-first +second):\n%s", diff)
	}
}
