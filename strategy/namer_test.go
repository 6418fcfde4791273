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

	"dirpx.dev/pxr/apis"
	"dirpx.dev/pxr/strategy"
)

type namedType struct{}

func (namedType) TypeName() string { return "custom.Name" }

type blankNamer struct{}

func (blankNamer) TypeName() string { return "" }

// ptrNamer reads its receiver, so a nil *ptrNamer panics.
type ptrNamer struct{ kind string }

func (p *ptrNamer) TypeName() string { return "custom." + p.kind }

func TestNamerStrategy(t *testing.T) {
	s := strategy.NewNamerStrategy()
	conf := apis.Config{}

	tests := []struct {
		name   string
		v      any
		want   string
		wantOK bool
	}{
		{"namer value", namedType{}, "custom.Name", true},
		{"namer pointer", &namedType{}, "custom.Name", true},
		{"not a namer", struct{}{}, "", false},
		{"blank name", blankNamer{}, "", false},
		{"nil", nil, "", false},
		{"pointer receiver", &ptrNamer{kind: "P"}, "custom.P", true},
	}
	for _, tc := range tests {
		got, ok := s.TryResolve(tc.v, conf)
		if ok != tc.wantOK || got != tc.want {
			t.Errorf("%s: TryResolve got (%q,%v), want (%q,%v)", tc.name, got, ok, tc.want, tc.wantOK)
		}
	}
}

func TestNamerStrategy_TypesFallThrough(t *testing.T) {
	s := strategy.NewNamerStrategy()
	for _, typ := range []reflect.Type{nil, reflect.TypeFor[namedType](), reflect.TypeFor[int]()} {
		if got, ok := s.TryResolveType(typ, apis.Config{}); ok || got != "" {
			t.Errorf("TryResolveType(%v): got (%q,%v), want ('',false)", typ, got, ok)
		}
	}
}

func TestNamerStrategy_PanickingNamer(t *testing.T) {
	var p *ptrNamer
	if got, ok := strategy.NewNamerStrategy().TryResolve(p, apis.Config{}); ok {
		t.Fatalf("nil *ptrNamer: got (%q,true), want miss", got)
	}
}

var _ apis.Namer = namedType{}
