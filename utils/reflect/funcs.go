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

package reflect

import (
	"errors"
	"reflect"
)

// ErrReflectNotFunc is returned when a function type is expected.
var ErrReflectNotFunc = errors.New("reflect: not a function type")

var errorType = reflect.TypeFor[error]()

// IsErrorType reports whether t is the predeclared error interface.
func IsErrorType(t reflect.Type) bool {
	return t == errorType
}

// Signature is the call shape of a function type as seen by the dynamic
// call protocol: positional parameters, at most one value result and an
// optional trailing error.
type Signature struct {
	// In lists the declared parameter types. For variadic functions the last
	// entry is the slice type.
	In []reflect.Type
	// Variadic reports whether the last parameter is variadic.
	Variadic bool
	// Out is the value result type, or nil when the function returns only an
	// error or nothing.
	Out reflect.Type
	// Err reports whether the last result is an error.
	Err bool
}

// FuncSignature inspects a function type. Functions returning more than one
// value (besides a trailing error) are rejected.
func FuncSignature(t reflect.Type) (Signature, error) {
	if t == nil {
		return Signature{}, ErrReflectNilType
	}
	if t.Kind() != reflect.Func {
		return Signature{}, ErrReflectNotFunc
	}
	sig := Signature{Variadic: t.IsVariadic()}
	for i := 0; i < t.NumIn(); i++ {
		sig.In = append(sig.In, t.In(i))
	}
	switch n := t.NumOut(); {
	case n == 0:
	case n == 1 && IsErrorType(t.Out(0)):
		sig.Err = true
	case n == 1:
		sig.Out = t.Out(0)
	case n == 2 && IsErrorType(t.Out(1)):
		sig.Out = t.Out(0)
		sig.Err = true
	default:
		return Signature{}, errors.New("reflect: functions may return at most one value and an optional error")
	}
	return sig, nil
}

// Nilable reports whether the zero value of t is nil.
func Nilable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return true
	default:
		return false
	}
}
