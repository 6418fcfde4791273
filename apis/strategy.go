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

package apis

import (
	"reflect"
)

// Strategy is one step of a Resolver chain.
//
// A strategy that does not recognise its input returns ("", false) and the
// chain moves on. Handled names must be non-empty.
type Strategy interface {
	TryResolve(v any, cfg Config) (name string, handled bool)
	TryResolveType(t reflect.Type, cfg Config) (name string, handled bool)
}
