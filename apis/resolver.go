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

// Resolver names values and types by asking strategies in order; the
// first strategy that handles wins. The default chain is Namer, Registry,
// Reflect.
//
// The identifier is what Object and Proxy print and what conversion
// errors report, so it is never empty: nil resolves to "null".
type Resolver interface {
	Resolve(v any, cfg Config) string
	ResolveType(t reflect.Type, cfg Config) string
}
