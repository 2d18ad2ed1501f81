package generror

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMessageNamesClassFileAndPattern(t *testing.T) {
	err := Configuration("masala::numeric::Foo", "src/numeric/Foo.hh", "class Foo", "declaration not found")
	assert.Equal(t,
		`ConfigurationError [class masala::numeric::Foo] [file src/numeric/Foo.hh] [expected "class Foo"]: declaration not found`,
		err.Error())
}

func TestIOErrorUnwraps(t *testing.T) {
	err := IO("out/Foo.hh", "write artifact", os.ErrPermission)
	assert.True(t, errors.Is(err, os.ErrPermission))
	assert.True(t, IsKind(err, KindIO))
	assert.False(t, IsKind(err, KindConfiguration))
}

func TestWithClass(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantClass string
		wantKind  Kind
	}{
		{
			name:      "attributes unattributed generror",
			err:       Ambiguity("", "a.cc", "ADD_", "both kinds"),
			wantClass: "ns::A",
			wantKind:  KindParseAmbiguity,
		},
		{
			name:      "keeps existing class",
			err:       Configuration("ns::B", "", "", "x"),
			wantClass: "ns::B",
			wantKind:  KindConfiguration,
		},
		{
			name:      "wraps plain errors",
			err:       fmt.Errorf("boom"),
			wantClass: "ns::A",
			wantKind:  KindConfiguration,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WithClass(tt.err, "ns::A")
			var ge *Error
			require.True(t, errors.As(got, &ge))
			assert.Equal(t, tt.wantClass, ge.Class)
			assert.Equal(t, tt.wantKind, ge.Kind)
		})
	}
	assert.NoError(t, WithClass(nil, "ns::A"))
}
