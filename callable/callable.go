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

// Package callable wraps Go functions so they can be invoked with
// type-erased arguments.
//
// A Callable converts each argument Object to the declared parameter type
// (see object.Object.ConvertTo) and reports the first argument that cannot
// be converted as an *object.ConversionError carrying its index. Functions
// may be variadic and may return one value, an error, or both.
package callable

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"dirpx.dev/pxr/object"
	uref "dirpx.dev/pxr/utils/reflect"
)

var (
	// ErrNotFunc is returned by New for values that are not functions.
	ErrNotFunc = errors.New("pxr(callable): not a function")
	// ErrBadSignature is returned by New for functions with an unsupported
	// result list.
	ErrBadSignature = errors.New("pxr(callable): unsupported function signature")
	// ErrBind is returned by Bind for an invalid parameter index.
	ErrBind = errors.New("pxr(callable): invalid bind index")
	// ErrPanic wraps a panic raised by the wrapped function.
	ErrPanic = errors.New("pxr(callable): function panicked")
)

var objectType = reflect.TypeFor[object.Object]()

// Callable is an immutable wrapper around a Go function. Bind returns a new
// Callable; the receiver is never modified, so a Callable is safe for
// concurrent use.
type Callable struct {
	// fn is the wrapped function value.
	fn reflect.Value
	// sig is the call shape of fn.
	sig uref.Signature
	// bound holds bound arguments keyed by declared parameter index.
	bound map[int]object.Object
}

// New wraps fn, which must be a non-nil function.
func New(fn any) (*Callable, error) {
	if c, ok := fn.(*Callable); ok && c != nil {
		return c, nil
	}
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return nil, fmt.Errorf("%w: %T", ErrNotFunc, fn)
	}
	sig, err := uref.FuncSignature(v.Type())
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrBadSignature, object.TypeNameOf(v.Type()), err)
	}
	return &Callable{fn: v, sig: sig}, nil
}

// Must is New that panics on error. Use it for package-level variables.
func Must(fn any) *Callable {
	c, err := New(fn)
	if err != nil {
		panic(err)
	}
	return c
}

// Type returns the wrapped function type.
func (c *Callable) Type() reflect.Type {
	return c.fn.Type()
}

// NumArgs returns the number of parameters still to be supplied by the
// caller. A variadic parameter counts as one.
func (c *Callable) NumArgs() int {
	return len(c.sig.In) - len(c.bound)
}

// IsVariadic reports whether the last parameter is variadic.
func (c *Callable) IsVariadic() bool {
	return c.sig.Variadic
}

// ArgType returns the type of the i-th unbound parameter, or nil if i is
// out of range. The variadic parameter reports its slice type.
func (c *Callable) ArgType(i int) reflect.Type {
	free := c.free()
	if i < 0 || i >= len(free) {
		return nil
	}
	return c.sig.In[free[i]]
}

// ReturnType returns the value result type, or nil if the function returns
// no value.
func (c *Callable) ReturnType() reflect.Type {
	return c.sig.Out
}

// ReturnsError reports whether the function has a trailing error result.
func (c *Callable) ReturnsError() bool {
	return c.sig.Err
}

// Bind returns a copy of c with declared parameter i fixed to v. Later
// calls supply only the remaining parameters. The variadic parameter cannot
// be bound.
func (c *Callable) Bind(i int, v any) (*Callable, error) {
	last := len(c.sig.In)
	if c.sig.Variadic {
		last--
	}
	if i < 0 || i >= last {
		return nil, fmt.Errorf("%w: %d for %s", ErrBind, i, c)
	}
	cp := &Callable{fn: c.fn, sig: c.sig, bound: make(map[int]object.Object, len(c.bound)+1)}
	for k, b := range c.bound {
		cp.bound[k] = b
	}
	cp.bound[i] = object.Make(v)
	return cp, nil
}

// Unbind returns a copy of c with declared parameter i free again.
func (c *Callable) Unbind(i int) *Callable {
	cp := &Callable{fn: c.fn, sig: c.sig, bound: make(map[int]object.Object, len(c.bound))}
	for k, b := range c.bound {
		if k != i {
			cp.bound[k] = b
		}
	}
	return cp
}

// Call converts args and invokes the function.
func (c *Callable) Call(args ...object.Object) (object.Object, error) {
	inv, err := c.Prepare(args...)
	if err != nil {
		return object.Null, err
	}
	return inv.Run()
}

// Prepare converts args to the parameter types without invoking the
// function. Overload resolution uses it to find the first candidate whose
// parameters accept the arguments.
func (c *Callable) Prepare(args ...object.Object) (*Invocation, error) {
	free := c.free()
	fixed := len(free)
	if c.sig.Variadic {
		fixed--
	}

	if len(args) < fixed {
		return nil, &object.ConversionError{
			From: "missing",
			To:   object.TypeNameOf(c.sig.In[free[len(args)]]),
			Arg:  len(args),
		}
	}
	if !c.sig.Variadic && len(args) > fixed {
		return nil, &object.ConversionError{From: args[fixed].TypeName(), To: "none", Arg: fixed}
	}

	in := make([]reflect.Value, 0, len(c.sig.In)+len(args))
	next := 0
	for p := 0; p < len(c.sig.In); p++ {
		if c.sig.Variadic && p == len(c.sig.In)-1 {
			break
		}
		t := c.sig.In[p]
		if b, ok := c.bound[p]; ok {
			v, err := argValue(b, t)
			if err != nil {
				return nil, object.ArgumentError(p, err)
			}
			in = append(in, v)
			continue
		}
		v, err := argValue(args[next], t)
		if err != nil {
			return nil, object.ArgumentError(next, err)
		}
		in = append(in, v)
		next++
	}
	if c.sig.Variadic {
		et := c.sig.In[len(c.sig.In)-1].Elem()
		for ; next < len(args); next++ {
			v, err := argValue(args[next], et)
			if err != nil {
				return nil, object.ArgumentError(next, err)
			}
			in = append(in, v)
		}
	}
	return &Invocation{c: c, in: in}, nil
}

// free returns the unbound declared parameter indices in order.
func (c *Callable) free() []int {
	out := make([]int, 0, len(c.sig.In))
	for i := range c.sig.In {
		if _, ok := c.bound[i]; !ok {
			out = append(out, i)
		}
	}
	return out
}

// String returns the function signature spelled with type identifiers.
func (c *Callable) String() string {
	var b strings.Builder
	b.WriteString("func(")
	names := make([]string, 0, len(c.sig.In))
	for _, i := range c.free() {
		t := c.sig.In[i]
		if c.sig.Variadic && i == len(c.sig.In)-1 {
			names = append(names, "..."+object.TypeNameOf(t.Elem()))
			continue
		}
		names = append(names, object.TypeNameOf(t))
	}
	b.WriteString(strings.Join(names, ", "))
	b.WriteByte(')')
	var outs []string
	if c.sig.Out != nil {
		outs = append(outs, object.TypeNameOf(c.sig.Out))
	}
	if c.sig.Err {
		outs = append(outs, "error")
	}
	switch len(outs) {
	case 0:
	case 1:
		b.WriteString(" " + outs[0])
	default:
		b.WriteString(" (" + strings.Join(outs, ", ") + ")")
	}
	return b.String()
}

// argValue converts o for a parameter of type t.
func argValue(o object.Object, t reflect.Type) (reflect.Value, error) {
	if t == objectType {
		return reflect.ValueOf(o), nil
	}
	r, err := o.ConvertTo(t)
	if err != nil {
		return reflect.Value{}, err
	}
	if r.Value() == nil {
		return reflect.Zero(t), nil
	}
	return reflect.ValueOf(r.Value()), nil
}

// Invocation is a fully converted call, ready to run.
type Invocation struct {
	c  *Callable
	in []reflect.Value
}

// Run invokes the function. A panic is returned as an error wrapping
// ErrPanic. An error returned by the function is passed through unchanged.
// The value result is wrapped with its dynamic type; a nil interface
// result is the null object.
func (iv *Invocation) Run() (out object.Object, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = object.Null
			if e, ok := r.(error); ok {
				err = fmt.Errorf("%w: %s: %w", ErrPanic, iv.c, e)
				return
			}
			err = fmt.Errorf("%w: %s: %v", ErrPanic, iv.c, r)
		}
	}()

	res := iv.c.fn.Call(slices.Clone(iv.in))
	if iv.c.sig.Err {
		if e := res[len(res)-1]; !e.IsNil() {
			return object.Null, e.Interface().(error)
		}
	}
	if iv.c.sig.Out == nil {
		return object.Null, nil
	}
	rv := res[0]
	if rv.Kind() == reflect.Interface && rv.IsNil() {
		return object.Null, nil
	}
	return object.Make(rv.Interface()), nil
}
