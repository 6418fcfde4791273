/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package managed_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirpx.dev/pxr/managed"
)

type gauge struct {
	Level int
	hidden int
}

func (g *gauge) Raise(d int) int { g.Level += d; return g.Level }

func (g gauge) Read() int { return g.Level }

func (g *gauge) Pair() (int, int) { return g.Level, g.hidden }

func TestClass_DefinitionErrors(t *testing.T) {
	tbl := managed.NewClassTable()

	tests := []struct {
		name string
		cls  *managed.Class
	}{
		{"empty name", managed.NewClass[gauge]("")},
		{"pointer type", managed.NewClass[*gauge]("test/Ptr")},
		{"not a func", managed.NewClass[gauge]("test/G1").Constructor(42)},
		{"bad receiver", managed.NewClass[gauge]("test/G2").Method("m", func(int) int { return 0 })},
		{"no receiver", managed.NewClass[gauge]("test/G3").Method("m", func() {})},
		{"unexported field", managed.NewClass[gauge]("test/G4").Field("hidden")},
		{"unknown field", managed.NewClass[gauge]("test/G5").Field("Nope")},
		{"field on non-struct", managed.NewClass[int]("test/G6").Field("X")},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Error(t, tc.cls.Err())
			assert.ErrorIs(t, tc.cls.CommitTo(tbl), managed.ErrClassDefinition)
		})
	}
	assert.Empty(t, tbl.Names())
}

func TestClassTable_Duplicates(t *testing.T) {
	tbl := managed.NewClassTable()
	require.NoError(t, managed.NewClass[gauge]("test/Gauge").CommitTo(tbl))

	err := managed.NewClass[counter]("test/Gauge").CommitTo(tbl)
	assert.ErrorIs(t, err, managed.ErrDuplicateClass)

	err = managed.NewClass[gauge]("test/Other").CommitTo(tbl)
	assert.ErrorIs(t, err, managed.ErrDuplicateClass)

	assert.Equal(t, []string{"test/Gauge"}, tbl.Names())
}

func TestClassTable_ByType(t *testing.T) {
	tbl := managed.NewClassTable()
	c := managed.NewClass[gauge]("test/Gauge")
	require.NoError(t, c.CommitTo(tbl))

	got, ok := tbl.ByType(c.Type())
	require.True(t, ok)
	assert.Same(t, c, got)

	got, ok = tbl.ByType(reflect.PointerTo(c.Type()))
	require.True(t, ok)
	assert.Equal(t, "test/Gauge", got.Name())

	_, ok = tbl.ByType(nil)
	assert.False(t, ok)
}

func TestClass_Methods(t *testing.T) {
	tbl := managed.NewClassTable()
	c := managed.NewClass[gauge]("test/Gauge").
		Constructor(func(l int) *gauge { return &gauge{Level: l} }).
		Methods()
	require.NoError(t, c.CommitTo(tbl))

	// Pair has two value results and is skipped.
	assert.Equal(t, []string{"Raise", "Read"}, c.MethodNames())

	env := managed.New(managed.WithClasses(tbl))
	cls, err := env.FindProxy("test/Gauge")
	require.NoError(t, err)
	g, err := cls.Invoke(4)
	require.NoError(t, err)

	_, err = g.Call("Raise", 3)
	require.NoError(t, err)
	n, err := g.Call("Read")
	require.NoError(t, err)
	assert.Equal(t, "7", n.String())
}
