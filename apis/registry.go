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

import "reflect"

// Registry is a one-to-one table between Go types and the names objects
// carry across environments. The bridge codec resolves wire type names
// through TypeOf, so a name must keep meaning the same type for the life of
// the registry.
//
// Register is idempotent for an identical pair. A second name for a type or
// a second type for a name is an error.
type Registry interface {
	Register(t reflect.Type, name string) error
	Lookup(t reflect.Type) (name string, ok bool)
	TypeOf(name string) (t reflect.Type, ok bool)
	// Entries is a snapshot in no particular order.
	Entries() []Entry
	Count() int
	// Version moves whenever the entry set changes; memoizing strategies
	// compare it to drop stale names.
	Version() uint64
	Reset()
}

// Entry is one registered pair.
type Entry struct {
	Type reflect.Type
	Name string
}
