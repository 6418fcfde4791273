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

package resolver_test

import (
	"reflect"
	"testing"

	"dirpx.dev/pxr/apis"
	"dirpx.dev/pxr/resolver"
	"dirpx.dev/pxr/strategy"
)

type widget struct{}

func TestChain_Order(t *testing.T) {
	first := strategy.LookupFunc(func(t reflect.Type) (string, bool) {
		return "first", t == reflect.TypeFor[widget]()
	})
	second := strategy.LookupFunc(func(reflect.Type) (string, bool) { return "second", true })
	r := resolver.New(nil, first, nil, second)

	if got := r.Resolve(widget{}, apis.Config{}); got != "first" {
		t.Fatalf("Resolve(widget): got %q, want first", got)
	}
	if got := r.ResolveType(reflect.TypeFor[int](), apis.Config{}); got != "second" {
		t.Fatalf("ResolveType(int): got %q, want second", got)
	}
}

func TestChain_NeverEmpty(t *testing.T) {
	r := resolver.New()
	tests := []struct {
		v    any
		want string
	}{
		{nil, "null"},
		{widget{}, "resolver_test.widget"},
		{[]int{}, "[]int"},
	}
	for _, tc := range tests {
		if got := r.Resolve(tc.v, apis.Config{}); got != tc.want {
			t.Errorf("Resolve(%T): got %q, want %q", tc.v, got, tc.want)
		}
	}
	if got := r.ResolveType(nil, apis.Config{}); got != "null" {
		t.Errorf("ResolveType(nil): got %q, want null", got)
	}
}
