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

// NewNamerStrategy returns the strategy for values implementing apis.Namer.
//
// Only values name themselves. Types are left to later strategies, since
// wrappers such as object.Object answer TypeName for their payload rather
// than for themselves. A TypeName that panics or returns "" falls through.
func NewNamerStrategy() apis.Strategy {
	return namerStrategy{}
}

type namerStrategy struct{}

func (namerStrategy) TryResolve(v any, _ apis.Config) (string, bool) {
	n, ok := v.(apis.Namer)
	if !ok {
		return "", false
	}
	return nameOf(n)
}

func (namerStrategy) TryResolveType(reflect.Type, apis.Config) (string, bool) {
	return "", false
}

// nameOf calls TypeName. Empty names and panics fall through.
func nameOf(n apis.Namer) (name string, ok bool) {
	defer func() {
		if recover() != nil {
			name, ok = "", false
		}
	}()
	name = n.TypeName()
	return name, name != ""
}
