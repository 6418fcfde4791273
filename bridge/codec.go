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

package bridge

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/fxamacker/cbor/v2"

	"dirpx.dev/pxr"
	"dirpx.dev/pxr/object"
)

var (
	// ErrUnknownType is returned for a type identifier that names neither a
	// builtin nor a registered type.
	ErrUnknownType = errors.New("pxr(bridge): unknown type")
	// ErrNotMarshalable is returned for values whose type cannot cross the
	// boundary by value (functions, channels, unregistered named types).
	ErrNotMarshalable = errors.New("pxr(bridge): value cannot be marshalled")
)

const nullType = "null"

var builtins = map[string]reflect.Type{
	"bool":    reflect.TypeFor[bool](),
	"string":  reflect.TypeFor[string](),
	"int":     reflect.TypeFor[int](),
	"int8":    reflect.TypeFor[int8](),
	"int16":   reflect.TypeFor[int16](),
	"int32":   reflect.TypeFor[int32](),
	"int64":   reflect.TypeFor[int64](),
	"uint":    reflect.TypeFor[uint](),
	"uint8":   reflect.TypeFor[uint8](),
	"uint16":  reflect.TypeFor[uint16](),
	"uint32":  reflect.TypeFor[uint32](),
	"uint64":  reflect.TypeFor[uint64](),
	"uintptr": reflect.TypeFor[uintptr](),
	"float32": reflect.TypeFor[float32](),
	"float64": reflect.TypeFor[float64](),
	"any":     reflect.TypeFor[any](),
}

// ResolveType maps a type identifier back to its reflect.Type. It accepts
// builtin names, "*T", "[]T", "[N]T", "map[K]V", and any name registered
// with pxr.RegisterType.
func ResolveType(name string) (reflect.Type, error) {
	if t, ok := builtins[name]; ok {
		return t, nil
	}
	if t, ok := pxr.LookupType(name); ok {
		return t, nil
	}
	switch {
	case strings.HasPrefix(name, "*"):
		e, err := ResolveType(name[1:])
		if err != nil {
			return nil, err
		}
		return reflect.PointerTo(e), nil
	case strings.HasPrefix(name, "[]"):
		e, err := ResolveType(name[2:])
		if err != nil {
			return nil, err
		}
		return reflect.SliceOf(e), nil
	case strings.HasPrefix(name, "map["):
		end := closing(name, len("map"))
		if end < 0 {
			break
		}
		k, err := ResolveType(name[len("map["):end])
		if err != nil {
			return nil, err
		}
		v, err := ResolveType(name[end+1:])
		if err != nil {
			return nil, err
		}
		if !k.Comparable() {
			break
		}
		return reflect.MapOf(k, v), nil
	case strings.HasPrefix(name, "["):
		end := strings.IndexByte(name, ']')
		var n int
		if end < 0 {
			break
		}
		if _, err := fmt.Sscanf(name[1:end], "%d", &n); err != nil || n < 0 {
			break
		}
		e, err := ResolveType(name[end+1:])
		if err != nil {
			return nil, err
		}
		return reflect.ArrayOf(n, e), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownType, name)
}

// closing returns the index of the ']' matching the '[' at open.
func closing(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// encode marshals o by value. The type identifier must resolve back to the
// same type on the receiving side.
func encode(o object.Object) (value, error) {
	if o.IsNull() {
		return value{Type: nullType}, nil
	}
	name := o.TypeName()
	if t, err := ResolveType(name); err != nil || t != o.Type() {
		return value{}, fmt.Errorf("%w: %s", ErrNotMarshalable, name)
	}
	data, err := encMode.Marshal(o.Value())
	if err != nil {
		return value{}, fmt.Errorf("%w: %s: %v", ErrNotMarshalable, name, err)
	}
	return value{Type: name, Data: data}, nil
}

// decode unmarshals a by-value payload into a new Object.
func decode(v value) (object.Object, error) {
	if v.Type == nullType || v.Type == "" {
		return object.Null, nil
	}
	t, err := ResolveType(v.Type)
	if err != nil {
		return object.Null, err
	}
	ptr := reflect.New(t)
	if err := cbor.Unmarshal(v.Data, ptr.Interface()); err != nil {
		return object.Null, fmt.Errorf("pxr(bridge): decode %s: %w", v.Type, err)
	}
	return object.Make(ptr.Elem().Interface()), nil
}
