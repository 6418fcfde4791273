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

// Config carries read-only knobs for type identification and conversion.
// It is passed by value and should be treated as immutable by implementations.
type Config struct {
	// MaxDepth limits recursion when naming composite types
	// (ptr/slice/array/chan/map/func). Acts as a safety guard against
	// pathological nesting; deeper types cannot be named.
	MaxDepth int

	// FullPkgPath controls whether named types are qualified by their full
	// import path ("dirpx.dev/pxr/blocks.Adder") or by the last path element
	// only ("blocks.Adder").
	FullPkgPath bool

	// StripTypeParams drops generic instantiation arguments from names:
	// "pkg.Box[int]" -> "pkg.Box". Leave it off when distinct instantiations
	// must keep distinct identifiers.
	StripTypeParams bool

	// BuiltinConversions seeds freshly built converter tables with the
	// numeric conversions (range checked) and string/[]byte conversions.
	BuiltinConversions bool
}
