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

package strategy

import (
	"reflect"

	"dirpx.dev/pxr/apis"
)

// LookupFunc adapts a type lookup to apis.Strategy. Values are looked up by
// their dynamic type; nil values and types are never handled.
type LookupFunc func(t reflect.Type) (name string, ok bool)

var _ apis.Strategy = LookupFunc(nil)

// TryResolve looks up the dynamic type of v.
func (f LookupFunc) TryResolve(v any, cfg apis.Config) (string, bool) {
	return f.TryResolveType(reflect.TypeOf(v), cfg)
}

// TryResolveType looks up t.
func (f LookupFunc) TryResolveType(t reflect.Type, _ apis.Config) (string, bool) {
	if t == nil || f == nil {
		return "", false
	}
	return f(t)
}

// NewRegistryStrategy answers exact registrations in reg. Composites of
// registered types ("*T", "[]T") miss here; the reflect strategy spells
// them around the registered name. A nil reg never handles.
func NewRegistryStrategy(reg apis.Registry) apis.Strategy {
	if reg == nil {
		return LookupFunc(nil)
	}
	return LookupFunc(reg.Lookup)
}
