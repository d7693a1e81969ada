// Copyright 2026 elbaro
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package syntax

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

func TestDelimiterValidate(t *testing.T) {
	tests := []struct {
		name    string
		delim   Delimiter
		wantErr bool
	}{
		{name: "line prefix only", delim: Delimiter{Middle: "//"}},
		{name: "block pair", delim: Delimiter{Top: "/*", Bottom: "*/"}},
		{name: "block pair with middle", delim: Delimiter{Top: "/*", Middle: " *", Bottom: " */"}},
		{name: "empty", delim: Delimiter{}, wantErr: true},
		{name: "top without bottom", delim: Delimiter{Top: "/*"}, wantErr: true},
		{name: "bottom without top", delim: Delimiter{Bottom: "*/"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.delim.Validate()
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestDelimiterOpen(t *testing.T) {
	require.Equal(t, "//", Delimiter{Middle: "//"}.Open())
	require.Equal(t, "/*", Delimiter{Top: "/*", Middle: " *", Bottom: " */"}.Open())
}

func TestBuiltinDelimitersAreValid(t *testing.T) {
	for name, d := range Builtin {
		require.NoError(t, d.Validate(), "builtin %q", name)
	}
}

func TestRegistryLookup(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(".go", Builtin["go"]))
	require.NoError(t, reg.Register("py", Builtin["shell"])) // missing dot is normalized

	d, err := reg.Lookup("pkg/main.go")
	require.NoError(t, err)
	require.Equal(t, "//", d.Middle)

	d, err = reg.Lookup("script.py")
	require.NoError(t, err)
	require.Equal(t, "#", d.Middle)

	_, err = reg.Lookup("image.png")
	require.ErrorIs(t, err, ErrUnsupportedFileType)

	require.True(t, reg.Supports("a/b.go"))
	require.False(t, reg.Supports("a/b.rs"))
	require.Equal(t, []string{".go", ".py"}, reg.Extensions())
}

func TestRegistryRegisterErrors(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(".go", Delimiter{Middle: "//"}))
	require.Error(t, reg.Register(".go", Delimiter{Middle: "//"}), "duplicate extension")
	require.Error(t, reg.Register(".rs", Delimiter{}), "invalid delimiter")
	require.Error(t, reg.Register("", Delimiter{Middle: "//"}), "empty extension")
}

func TestLookupErrorIsMarked(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Lookup("x.bin")
	require.True(t, errors.Is(err, ErrUnsupportedFileType))
	require.Contains(t, err.Error(), ".bin")
}
