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

// Package pxr is the process-wide type system behind the dynamic object and
// proxy runtime.
//
// It answers two questions for the layers above it (object, proxy, managed,
// bridge, blocks):
//
//   - What is this type called? Every value crossing a dynamic boundary is
//     described by a printable identifier ("int", "*math.Adder",
//     "map[string][]float64"). Identifiers appear in conversion errors,
//     NoSuchMethod errors and on the bridge wire.
//
//   - How do I turn a value of type A into type B? Conversions are looked
//     up in a table keyed by (source type, target type).
//
// # Design
//
// The core is a read-mostly global snapshot (state) holding:
//
//   - Config: naming and conversion knobs (see apis.Config).
//
//   - Registry: explicit, stable names for important types, with reverse
//     lookup by name. The bridge decodes wire values through it.
//
//   - Resolver: answers "what is the name of this value or type?" by
//     trying, in order:
//     1. apis.Namer on the value (TypeName()).
//     2. An exact Registry entry.
//     3. Reflection, spelling composites around registered leaves, so
//     with "math.Adder" registered *Adder is "*math.Adder".
//
//   - Converters: the conversion table, seeded with range checked numeric
//     conversions when Config.BuiltinConversions is set. Numbers are never
//     implicitly converted to strings.
//
//   - Builder: constructs the three layers above for a Config and migrates
//     user entries from the previous snapshot.
//
// Readers load the snapshot atomically and never lock:
//
//	name := pxr.TypeName(v)
//	fn, ok := pxr.Conversion(reflect.TypeFor[int](), reflect.TypeFor[int8]())
//
// Writers (SetConfig, SetBuilder, SetRegistry, SetResolver, SetAll) take a
// short build mutex, assemble a new state and publish it with a pointer
// swap.
//
// # Pinning
//
// SetRegistry and SetResolver install a layer and pin it: later SetConfig
// or SetBuilder calls keep it until UnpinRegistry/UnpinResolver. The
// conversion table is never pinned; rebuilding it keeps user conversions.
//
// # Registration
//
// Packages register names and conversions from init:
//
//	func init() {
//		_ = pxr.RegisterTypeOf[Adder]("math.Adder")
//		_ = pxr.RegisterConversion(func(m Meters) (Feet, error) { return Feet(m * 3.28084), nil })
//	}
package pxr
