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

// ConvertFunc converts a value of a conversion's source type into a value of
// its target type. The input is never mutated. Implementations return an
// error instead of truncating values that do not fit the target.
type ConvertFunc func(v any) (any, error)

// Converters is the process-wide conversion table keyed by
// (source type, target type) pairs.
type Converters interface {
	// Register installs fn as the conversion from -> to.
	// A pair can only be registered once.
	Register(from, to reflect.Type, fn ConvertFunc) error
	// Lookup returns the conversion registered for from -> to.
	Lookup(from, to reflect.Type) (fn ConvertFunc, ok bool)
	// Entries returns a snapshot for diagnostics/docs (order is unspecified).
	Entries() []Conversion
	// Count returns the number of registered conversions.
	Count() int
	// Reset clears all registered conversions.
	Reset()
}

// Conversion is a single entry in a Converters snapshot.
type Conversion struct {
	// From is the source type.
	From reflect.Type
	// To is the target type.
	To reflect.Type
	// Func performs the conversion.
	Func ConvertFunc
	// Builtin marks conversions installed by the builder rather than by
	// user code. Builders do not migrate builtin entries between tables.
	Builtin bool
}
