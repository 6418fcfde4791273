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

// Namer lets a value choose its own type identifier.
//
// When a value implements Namer, type resolution MUST prefer TypeName over
// registry lookups and reflection. The returned name is a type-level
// contract: it describes the kind of value, not a particular instance, and
// it is what appears in conversion and dispatch errors.
//
// Implementations:
//   - MUST return a non-empty, deterministic name for a given concrete type.
//   - MUST NOT depend on mutable instance state.
//   - MUST be safe for concurrent calls and MUST NOT block.
type Namer interface {
	// TypeName returns the canonical identifier for the value's type.
	TypeName() string
}
