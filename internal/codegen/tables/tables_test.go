package tables

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapperNaming(t *testing.T) {
	tb := Default("masala", "numeric")

	tests := []struct {
		name        string
		class       string
		wantName    string
		wantInclude string
		wantCreator string
	}{
		{
			name:        "library class",
			class:       "masala::numeric::Foo",
			wantName:    "masala::numeric_api::auto_generated_api::Foo_API",
			wantInclude: "numeric_api/auto_generated_api/Foo_API.hh",
			wantCreator: "masala::numeric_api::auto_generated_api::FooCreator",
		},
		{
			name:        "nested namespace",
			class:       "masala::numeric::optimization::annealing::Sched",
			wantName:    "masala::numeric_api::auto_generated_api::optimization::annealing::Sched_API",
			wantInclude: "numeric_api/auto_generated_api/optimization/annealing/Sched_API.hh",
			wantCreator: "masala::numeric_api::auto_generated_api::optimization::annealing::SchedCreator",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantName, tb.WrapperName(tt.class))
			assert.Equal(t, tt.wantInclude, tb.WrapperInclude(tt.class))
			assert.Equal(t, tt.wantCreator, tb.CreatorName(tt.class))
			assert.True(t, tb.IsWrapperName(tb.WrapperName(tt.class)))
			assert.False(t, tb.IsWrapperName(tt.class))
		})
	}
}

func TestSourceIncludes(t *testing.T) {
	tb := Default("masala", "numeric")
	assert.Equal(t, "numeric/optimization/Opt.hh", tb.SourceInclude("masala::numeric::optimization::Opt"))
	assert.Equal(t, "numeric/optimization/Opt.fwd.hh", tb.SourceForwardInclude("masala::numeric::optimization::Opt"))
	assert.Equal(t, "other/Thing.hh", tb.SourceInclude("other::Thing"))
}

func TestWrapperNamingShortNamespaceClamps(t *testing.T) {
	n := Naming{Project: "ProjectX", Library: "lib", APISegmentIndex: 1, APINamespaceSuffix: "_api", APIClassSuffix: "_API"}
	assert.Equal(t, "ProjectX_api::Foo_API", n.WrapperName("ProjectX::Foo"))
	assert.Equal(t, "ProjectX_api/Foo_API.hh", n.WrapperInclude("ProjectX::Foo"))
	assert.Equal(t, "ProjectX_api/Foo_API.fwd.hh", n.WrapperForwardInclude("ProjectX::Foo"))
}

func TestRolePrecedence(t *testing.T) {
	assert.Equal(t, RoleEngine, Strongest(RolePlugin, RoleEngine, RolePlain))
	assert.Equal(t, RoleDataRepresentation, Strongest(RoleFileInterpreter, RoleDataRepresentation))
	assert.Equal(t, RolePlain, Strongest())
	assert.True(t, RoleFileInterpreter.IsPlugin())
	assert.False(t, RolePlain.IsPlugin())
}

func TestDefaultValidates(t *testing.T) {
	tb := Default("masala", "core")
	require.NoError(t, tb.Validate())
	assert.Equal(t, "MASALA_ENABLE_DEPRECATED_FUNCTIONS", tb.DeprecationGuard())
	assert.True(t, tb.IsProjectType("masala::core::Pose"))
	assert.False(t, tb.IsProjectType("masala::base::Size"))
	assert.False(t, tb.IsProjectType("std::string"))

	m, ok := tb.Marker("masala::base::managers::engine::MasalaEngine")
	require.True(t, ok)
	assert.Equal(t, RoleEngine, m.Role)
	assert.Equal(t, "masala::base::managers::engine::MasalaEngineAPI", tb.RootWrapper(RoleEngine).Name)
}

func TestValidateRejectsMissingRootWrapper(t *testing.T) {
	tb := Default("masala", "core")
	tb.RootWrappers = tb.RootWrappers[:1]
	assert.ErrorContains(t, tb.Validate(), "no root wrapper")
}

func TestLoadOverride(t *testing.T) {
	dir := t.TempDir()
	base := Default("masala", "numeric")

	t.Run("yaml", func(t *testing.T) {
		p := filepath.Join(dir, "tables.yaml")
		require.NoError(t, os.WriteFile(p, []byte(`
generatedSegment: ""
containers:
  - name: std::vector
    external: sequence
    include: <sequence.hh>
    kind: sequence
version:
  major: 1
  minor: 0
`), 0o644))
		got, err := LoadOverride(p, base)
		require.NoError(t, err)
		assert.Equal(t, "", got.GeneratedSegment)
		assert.Equal(t, "_API", got.APIClassSuffix)
		require.Len(t, got.Containers, 1)
		assert.Equal(t, "sequence", got.Containers[0].ExternalName())
		assert.Equal(t, Version{Major: 1}, got.Version)
		assert.Len(t, base.Containers, 13)
	})

	t.Run("toml", func(t *testing.T) {
		p := filepath.Join(dir, "tables.toml")
		require.NoError(t, os.WriteFile(p, []byte(`
deprecationMacro = "NUMERIC_DEPRECATED"

[naming]
apiClassSuffix = "_Wrapper"

[version]
major = 2
minor = 3
`), 0o644))
		got, err := LoadOverride(p, base)
		require.NoError(t, err)
		assert.Equal(t, "_Wrapper", got.APIClassSuffix)
		assert.Equal(t, "NUMERIC_DEPRECATED", got.DeprecationGuard())
		assert.Equal(t, Version{Major: 2, Minor: 3}, got.Version)
		assert.Equal(t, "auto_generated_api", got.GeneratedSegment)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		p := filepath.Join(dir, "tables.ini")
		require.NoError(t, os.WriteFile(p, []byte("x=1"), 0o644))
		_, err := LoadOverride(p, base)
		assert.ErrorContains(t, err, "unsupported extension")
	})
}

func TestExternalLightweightClasses(t *testing.T) {
	p := filepath.Join(t.TempDir(), "numeric.tables.yml")
	require.NoError(t, os.WriteFile(p, []byte("lightweightClasses:\n  - masala::core::Point\n"), 0o644))
	got, err := LoadOverride(p, Default("masala", "numeric"))
	require.NoError(t, err)
	assert.True(t, got.IsExternalLightweight("::masala::core::Point"))
	assert.False(t, got.IsExternalLightweight("masala::core::Pose"))
}

func TestVersionLess(t *testing.T) {
	assert.True(t, Version{0, 9}.Less(Version{1, 0}))
	assert.True(t, Version{1, 0}.Less(Version{1, 1}))
	assert.False(t, Version{1, 0}.Less(Version{1, 0}))
	assert.Equal(t, "1.2", Version{1, 2}.String())
}
