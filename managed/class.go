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

package managed

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"sync"

	"dirpx.dev/pxr/callable"
)

var (
	// ErrDuplicateClass is returned when a class name or type is already in
	// the table.
	ErrDuplicateClass = errors.New("pxr(managed): class already registered")
	// ErrClassDefinition is wrapped by every class builder error.
	ErrClassDefinition = errors.New("pxr(managed): invalid class definition")
)

// Class describes how the managed environment dispatches calls on values of
// one Go type: constructors ("()" on the class), methods, fields exported as
// "get:<name>"/"set:<name>", and static methods called on the class itself.
//
// Builder methods record the first error and return the class, so a class
// can be declared in one expression and checked on Commit.
type Class struct {
	name    string
	typ     reflect.Type
	ctors   []*callable.Callable
	methods map[string][]*callable.Callable
	statics map[string][]*callable.Callable
	err     error
}

// NewClass starts a class for values of type T (and *T) named name.
// Names are slash separated ("math/Adder") and double as FindProxy keys.
func NewClass[T any](name string) *Class {
	c := &Class{
		name:    name,
		typ:     reflect.TypeFor[T](),
		methods: map[string][]*callable.Callable{},
		statics: map[string][]*callable.Callable{},
	}
	if name == "" {
		c.fail("empty class name")
	}
	if c.typ.Kind() == reflect.Pointer || c.typ.Kind() == reflect.Interface {
		c.fail("class type %s must not be a pointer or interface", c.typ)
	}
	return c
}

// Name returns the class name.
func (c *Class) Name() string { return c.name }

// Type returns the class value type T.
func (c *Class) Type() reflect.Type { return c.typ }

// Err returns the first definition error.
func (c *Class) Err() error { return c.err }

func (c *Class) fail(format string, args ...any) {
	if c.err == nil {
		c.err = fmt.Errorf("%w: %s: %s", ErrClassDefinition, c.name, fmt.Sprintf(format, args...))
	}
}

func (c *Class) wrap(fn any) *callable.Callable {
	cl, err := callable.New(fn)
	if err != nil {
		c.fail("%v", err)
		return nil
	}
	return cl
}

// Constructor adds a constructor overload, invoked by calling "()" on the
// class proxy.
func (c *Class) Constructor(fn any) *Class {
	if cl := c.wrap(fn); cl != nil {
		c.ctors = append(c.ctors, cl)
	}
	return c
}

// Method adds a method overload. fn receives the receiver first, as T or *T.
func (c *Class) Method(name string, fn any) *Class {
	cl := c.wrap(fn)
	if cl == nil {
		return c
	}
	if r := cl.ArgType(0); r != c.typ && r != reflect.PointerTo(c.typ) {
		c.fail("method %q: first parameter must be %s or *%s", name, c.typ, c.typ)
		return c
	}
	c.methods[name] = append(c.methods[name], cl)
	return c
}

// StaticMethod adds a method called on the class proxy itself.
func (c *Class) StaticMethod(name string, fn any) *Class {
	if cl := c.wrap(fn); cl != nil {
		c.statics[name] = append(c.statics[name], cl)
	}
	return c
}

// Field exports the struct field as "get:<field>" and "set:<field>".
func (c *Class) Field(field string) *Class {
	if c.typ.Kind() != reflect.Struct {
		c.fail("field %q: %s is not a struct", field, c.typ)
		return c
	}
	f, ok := c.typ.FieldByName(field)
	if !ok || !f.IsExported() {
		c.fail("field %q: no exported field on %s", field, c.typ)
		return c
	}
	ptr := reflect.PointerTo(c.typ)

	getT := reflect.FuncOf([]reflect.Type{ptr}, []reflect.Type{f.Type}, false)
	get := reflect.MakeFunc(getT, func(in []reflect.Value) []reflect.Value {
		return []reflect.Value{in[0].Elem().FieldByIndex(f.Index)}
	})
	setT := reflect.FuncOf([]reflect.Type{ptr, f.Type}, nil, false)
	set := reflect.MakeFunc(setT, func(in []reflect.Value) []reflect.Value {
		in[0].Elem().FieldByIndex(f.Index).Set(in[1])
		return nil
	})

	c.Method("get:"+field, get.Interface())
	c.Method("set:"+field, set.Interface())
	return c
}

// Methods adds every exported method in the method set of *T under its Go
// name. Methods with unsupported signatures are skipped.
func (c *Class) Methods() *Class {
	ptr := reflect.PointerTo(c.typ)
	for i := 0; i < ptr.NumMethod(); i++ {
		m := ptr.Method(i)
		cl, err := callable.New(m.Func.Interface())
		if err != nil {
			continue
		}
		c.methods[m.Name] = append(c.methods[m.Name], cl)
	}
	return c
}

// Commit adds the class to DefaultClasses.
func (c *Class) Commit() error {
	return c.CommitTo(DefaultClasses())
}

// CommitTo adds the class to t.
func (c *Class) CommitTo(t *ClassTable) error {
	return t.Add(c)
}

// MethodNames lists the instance method names in sorted order.
func (c *Class) MethodNames() []string {
	out := make([]string, 0, len(c.methods))
	for name := range c.methods {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

// ClassTable indexes classes by name and by value type.
type ClassTable struct {
	mu     sync.RWMutex
	byName map[string]*Class
	byType map[reflect.Type]*Class
}

// NewClassTable returns an empty table.
func NewClassTable() *ClassTable {
	return &ClassTable{byName: map[string]*Class{}, byType: map[reflect.Type]*Class{}}
}

var defaultClasses = NewClassTable()

// DefaultClasses returns the process-wide table used by environments
// created without WithClasses.
func DefaultClasses() *ClassTable {
	return defaultClasses
}

// Add inserts c. A class with a definition error is rejected with that
// error; a second class with the same name or type with ErrDuplicateClass.
func (t *ClassTable) Add(c *Class) error {
	if c.err != nil {
		return c.err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.byName[c.name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateClass, c.name)
	}
	if old, ok := t.byType[c.typ]; ok {
		return fmt.Errorf("%w: %s already described by %q", ErrDuplicateClass, c.typ, old.name)
	}
	t.byName[c.name] = c
	t.byType[c.typ] = c
	return nil
}

// Lookup returns the class named name.
func (t *ClassTable) Lookup(name string) (*Class, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	c, ok := t.byName[name]
	return c, ok
}

// ByType returns the class for values of type rt, accepting both T and *T.
func (t *ClassTable) ByType(rt reflect.Type) (*Class, bool) {
	if rt == nil {
		return nil, false
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	if c, ok := t.byType[rt]; ok {
		return c, true
	}
	if rt.Kind() == reflect.Pointer {
		c, ok := t.byType[rt.Elem()]
		return c, ok
	}
	return nil, false
}

// Names lists class names in sorted order.
func (t *ClassTable) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]string, 0, len(t.byName))
	for name := range t.byName {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}
