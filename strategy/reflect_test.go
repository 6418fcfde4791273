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

package strategy_test

import (
	"reflect"
	"testing"

	"golang.org/x/sync/errgroup"

	"dirpx.dev/pxr/apis"
	pxregistry "dirpx.dev/pxr/registry"
	"dirpx.dev/pxr/strategy"
)

type W[T any] struct{ V T }

func strip(c *apis.Config) { c.StripTypeParams = true }

func TestReflectStrategy_Spelling(t *testing.T) {
	s := strategy.NewReflectStrategy(nil)

	tests := []struct {
		typ  reflect.Type
		conf apis.Config
		want string
	}{
		{reflect.TypeFor[A](), cfg(), "strategy_test.A"},
		{reflect.TypeFor[*A](), cfg(), "*strategy_test.A"},
		{reflect.TypeFor[[2]A](), cfg(), "[2]strategy_test.A"},
		{reflect.TypeFor[chan A](), cfg(), "chan strategy_test.A"},
		{reflect.TypeFor[map[string][]A](), cfg(), "map[string][]strategy_test.A"},
		{reflect.TypeFor[float64](), cfg(), "float64"},
		{reflect.TypeFor[G[int]](), cfg(), "strategy_test.G[int]"},
		{reflect.TypeFor[G[int]](), cfg(strip), "strategy_test.G"},
		{reflect.TypeFor[[]W[G[int]]](), cfg(strip), "[]strategy_test.W"},
	}
	for _, tc := range tests {
		got, ok := s.TryResolveType(tc.typ, tc.conf)
		if !ok || got != tc.want {
			t.Errorf("TryResolveType(%v): got (%q,%v), want (%q,true)", tc.typ, got, ok, tc.want)
		}
	}
	if got, ok := s.TryResolve(&A{}, cfg()); !ok || got != "*strategy_test.A" {
		t.Errorf("TryResolve(&A{}): got (%q,%v)", got, ok)
	}
	if _, ok := s.TryResolve(nil, cfg()); ok {
		t.Error("TryResolve(nil) handled")
	}
}

// TestReflectStrategy_FollowsRegistry checks that memoized names track
// registrations and resets.
func TestReflectStrategy_FollowsRegistry(t *testing.T) {
	reg := pxregistry.New()
	s := strategy.NewReflectStrategy(reg)
	typ := reflect.TypeFor[[]*A]()

	steps := []struct {
		mutate func()
		want   string
	}{
		{func() {}, "[]*strategy_test.A"},
		{func() { _ = reg.Register(reflect.TypeFor[A](), "domain.A") }, "[]*domain.A"},
		{reg.Reset, "[]*strategy_test.A"},
	}
	for i, step := range steps {
		step.mutate()
		// Resolve twice so the second answer comes from the memo.
		for range 2 {
			if got, _ := s.TryResolveType(typ, cfg()); got != step.want {
				t.Fatalf("step %d: got %q, want %q", i, got, step.want)
			}
		}
	}
}

func TestReflectStrategy_MaxDepth(t *testing.T) {
	s := strategy.NewReflectStrategy(nil)
	typ := reflect.TypeFor[***A]()

	if got, ok := s.TryResolveType(typ, cfg(func(c *apis.Config) { c.MaxDepth = 1 })); ok {
		t.Fatalf("MaxDepth=1: handled as %q", got)
	}
	// The failure above is memoized per depth, not per type.
	if got, ok := s.TryResolveType(typ, cfg()); !ok || got != "***strategy_test.A" {
		t.Fatalf("MaxDepth=8: got (%q,%v), want (***strategy_test.A,true)", got, ok)
	}
}

func TestReflectStrategy_Concurrent(t *testing.T) {
	reg := pxregistry.New()
	s := strategy.NewReflectStrategy(reg)
	want := map[reflect.Type]string{
		reflect.TypeFor[A]():      "strategy_test.A",
		reflect.TypeFor[[]A]():    "[]strategy_test.A",
		reflect.TypeFor[G[int]](): "strategy_test.G[int]",
		reflect.TypeFor[int]():    "int",
	}

	var g errgroup.Group
	for range 16 {
		g.Go(func() error {
			for range 500 {
				for typ, name := range want {
					if got, ok := s.TryResolveType(typ, cfg()); !ok || got != name {
						t.Errorf("TryResolveType(%v): got (%q,%v), want %q", typ, got, ok, name)
						return nil
					}
				}
			}
			return nil
		})
	}
	_ = g.Wait()
}

func BenchmarkReflectStrategy_Memoized(b *testing.B) {
	s := strategy.NewReflectStrategy(pxregistry.New())
	typ := reflect.TypeFor[map[string][]*A]()
	for b.Loop() {
		_, _ = s.TryResolveType(typ, cfg())
	}
}
