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

// Package object implements Object, the type-erased value container every
// dynamic call argument and result travels in.
package object

import (
	"errors"
	"fmt"
	"reflect"
	"sync/atomic"

	"dirpx.dev/pxr"
	uref "dirpx.dev/pxr/utils/reflect"
)

// Object holds one value together with its type. Copies of an Object share
// the same payload; the payload is released when the last copy is dropped.
// The zero Object is the null object.
type Object struct {
	c *container
}

// container is the shared payload. It is never mutated after Make.
type container struct {
	// v is the stored value.
	v any
	// t is the recorded type of v. It differs from reflect.TypeOf(v) only
	// for objects made with MakeAs over an interface type.
	t reflect.Type
	// id is the process-unique identity of the payload.
	id uint64
}

// Null is the null object.
var Null Object

var (
	nextID     atomic.Uint64
	objectType = reflect.TypeFor[Object]()
)

// Make wraps v. It never fails: nil becomes the null object, and an Object
// is returned as is.
func Make(v any) Object {
	switch x := v.(type) {
	case nil:
		return Null
	case Object:
		return x
	}
	return Object{c: &container{v: v, t: reflect.TypeOf(v), id: nextID.Add(1)}}
}

// MakeAs wraps v recording T as its type, which matters when T is an
// interface type.
func MakeAs[T any](v T) Object {
	if o, ok := any(v).(Object); ok {
		return o
	}
	if any(v) == nil {
		return Null
	}
	return Object{c: &container{v: v, t: reflect.TypeFor[T](), id: nextID.Add(1)}}
}

// IsNull reports whether o is the null object.
func (o Object) IsNull() bool {
	return o.c == nil
}

// Type returns the recorded type, or nil for the null object.
func (o Object) Type() reflect.Type {
	if o.c == nil {
		return nil
	}
	return o.c.t
}

// TypeName returns the printable type identifier ("null" for the null
// object).
func (o Object) TypeName() string {
	if o.c == nil {
		return "null"
	}
	if o.c.t == reflect.TypeOf(o.c.v) {
		if name := pxr.TypeName(o.c.v); name != "" {
			return name
		}
	}
	return TypeNameOf(o.c.t)
}

// Value returns the stored value, or nil for the null object.
func (o Object) Value() any {
	if o.c == nil {
		return nil
	}
	return o.c.v
}

// ID returns the identity of the payload; 0 for the null object.
func (o Object) ID() uint64 {
	if o.c == nil {
		return 0
	}
	return o.c.id
}

// Same reports whether o and p share the same payload.
func (o Object) Same(p Object) bool {
	return o.c == p.c
}

// Equal reports whether o and p share a payload, or hold values of the same
// type that are deeply equal.
func (o Object) Equal(p Object) bool {
	if o.c == p.c {
		return true
	}
	if o.c == nil || p.c == nil {
		return false
	}
	return o.c.t == p.c.t && reflect.DeepEqual(o.c.v, p.c.v)
}

// String formats the stored value.
func (o Object) String() string {
	if o.c == nil {
		return "null"
	}
	return fmt.Sprint(o.c.v)
}

// ConvertTo converts o to type t. It tries, in order:
//   - exact type match and t == Object (o itself);
//   - the null object to the zero value of a nilable t;
//   - the global conversion table;
//   - dereference, copying a non-nil *t into a t;
//   - assignability (t is an interface the value implements).
//
// Anything else fails with a *ConversionError. o is never modified.
func (o Object) ConvertTo(t reflect.Type) (Object, error) {
	if t == nil {
		return Null, NewConversionError(o.Type(), nil, uref.ErrReflectNilType)
	}
	if t == objectType {
		return o, nil
	}
	if o.c == nil {
		if uref.Nilable(t) {
			return Object{c: &container{v: reflect.Zero(t).Interface(), t: t, id: nextID.Add(1)}}, nil
		}
		return Null, NewConversionError(nil, t, nil)
	}
	if o.c.t == t {
		return o, nil
	}
	if fn, ok := pxr.Conversion(o.c.t, t); ok {
		out, err := fn(o.c.v)
		if err != nil {
			return Null, NewConversionError(o.c.t, t, err)
		}
		if out == nil || !reflect.TypeOf(out).AssignableTo(t) {
			return Null, NewConversionError(o.c.t, t, fmt.Errorf("converter returned %T", out))
		}
		return Object{c: &container{v: out, t: t, id: nextID.Add(1)}}, nil
	}
	if rv := reflect.ValueOf(o.c.v); o.c.t.Kind() == reflect.Pointer && o.c.t.Elem() == t {
		if rv.IsNil() {
			return Null, NewConversionError(o.c.t, t, errors.New("nil pointer"))
		}
		return Object{c: &container{v: rv.Elem().Interface(), t: t, id: nextID.Add(1)}}, nil
	}
	if reflect.TypeOf(o.c.v).AssignableTo(t) {
		return Object{c: &container{v: o.c.v, t: t, id: nextID.Add(1)}}, nil
	}
	return Null, NewConversionError(o.c.t, t, nil)
}

// Convert converts o to T (see Object.ConvertTo). Converting to Object is a
// passthrough.
func Convert[T any](o Object) (T, error) {
	var zero T
	if p, ok := any(&zero).(*Object); ok {
		*p = o
		return zero, nil
	}
	r, err := o.ConvertTo(reflect.TypeFor[T]())
	if err != nil {
		return zero, err
	}
	return value[T](r)
}

// Extract returns the stored value if its type is exactly T.
func Extract[T any](o Object) (T, error) {
	var zero T
	t := reflect.TypeFor[T]()
	if o.c == nil || o.c.t != t {
		return zero, NewConversionError(o.Type(), t, nil)
	}
	return value[T](o)
}

func value[T any](o Object) (T, error) {
	var zero T
	if o.c == nil || o.c.v == nil {
		return zero, nil
	}
	v, ok := o.c.v.(T)
	if !ok {
		return zero, NewConversionError(o.c.t, reflect.TypeFor[T](), nil)
	}
	return v, nil
}

// TypeNameOf names t for diagnostics: the resolver's identifier, "null" for
// a nil type.
func TypeNameOf(t reflect.Type) string {
	if t == nil {
		return "null"
	}
	if name := pxr.TypeNameOf(t); name != "" {
		return name
	}
	return t.String()
}
