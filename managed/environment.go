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

// Package managed implements the native, in-process environment. Objects
// live in a handle table and calls are dispatched through Go reflection
// using the classes registered in a ClassTable.
package managed

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"dirpx.dev/pxr/callable"
	"dirpx.dev/pxr/logging"
	"dirpx.dev/pxr/object"
	"dirpx.dev/pxr/proxy"
)

// Name is the environment kind registered with the proxy package.
const Name = "managed"

func init() {
	if err := proxy.RegisterEnvironment(Name, func() (proxy.Environment, error) {
		return New(), nil
	}); err != nil {
		panic(err)
	}
}

// Option configures an Environment.
type Option func(*Environment)

// WithLogger sets the logger; the default is logging.Default().
func WithLogger(l logging.Logger) Option {
	return func(e *Environment) {
		if l != nil {
			e.log = l
		}
	}
}

// WithClasses sets the class table; the default is DefaultClasses().
func WithClasses(t *ClassTable) Option {
	return func(e *Environment) {
		if t != nil {
			e.classes = t
		}
	}
}

// Environment is the managed proxy.Environment.
type Environment struct {
	// id is a random identity (uuid) distinguishing instances.
	id string
	// log receives handle lifecycle events at debug level.
	log logging.Logger
	// classes drives dispatch and FindProxy.
	classes *ClassTable
	// mu guards handles.
	mu sync.RWMutex
	// handles maps issued handle ids to stored objects.
	handles map[proxy.HandleID]object.Object
	// next is the last issued handle id.
	next atomic.Uint64
	// closed is set by Close.
	closed atomic.Bool
}

var _ proxy.Environment = (*Environment)(nil)

// New creates a managed environment.
func New(opts ...Option) *Environment {
	e := &Environment{
		id:      uuid.NewString(),
		log:     logging.Default(),
		classes: DefaultClasses(),
		handles: map[proxy.HandleID]object.Object{},
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// ID returns the environment identity.
func (e *Environment) ID() string { return e.id }

// Name returns "managed".
func (e *Environment) Name() string { return Name }

// Classes returns the class table used for dispatch.
func (e *Environment) Classes() *ClassTable { return e.classes }

func (e *Environment) expired() error {
	if e.closed.Load() {
		return &proxy.EnvironmentExpiredError{Env: Name}
	}
	return nil
}

// MakeProxy stores v under a fresh handle. A Proxy of this environment is
// returned unchanged, the null Proxy stores the null object, and a Proxy of
// another environment is converted to an Object by its owner.
func (e *Environment) MakeProxy(v any) (proxy.Proxy, error) {
	if err := e.expired(); err != nil {
		return proxy.Proxy{}, err
	}
	if p, ok := v.(proxy.Proxy); ok {
		switch {
		case p.IsNull():
			return e.store(object.Null), nil
		case p.Environment() == proxy.Environment(e):
			return p, nil
		}
		o, err := p.ToObject()
		if err != nil {
			return proxy.Proxy{}, err
		}
		return e.store(o), nil
	}
	return e.store(object.Make(v)), nil
}

func (e *Environment) store(o object.Object) proxy.Proxy {
	id := proxy.HandleID(e.next.Add(1))
	e.mu.Lock()
	e.handles[id] = o
	e.mu.Unlock()
	return proxy.New(e, id)
}

// ConvertProxyToObject returns the object behind p. Proxies of other
// environments are resolved by their owner.
func (e *Environment) ConvertProxyToObject(p proxy.Proxy) (object.Object, error) {
	if err := e.expired(); err != nil {
		return object.Null, err
	}
	if p.IsNull() {
		return object.Null, &proxy.NullProxyError{Op: "ConvertProxyToObject"}
	}
	if p.Environment() != proxy.Environment(e) {
		return p.ToObject()
	}
	return e.object(p.HandleID())
}

func (e *Environment) object(id proxy.HandleID) (object.Object, error) {
	e.mu.RLock()
	o, ok := e.handles[id]
	e.mu.RUnlock()
	if !ok {
		return object.Null, fmt.Errorf("%w: %d", proxy.ErrInvalidHandle, id)
	}
	return o, nil
}

// FindProxy returns a proxy to the class registered under name. Calling "()"
// on it constructs an instance; other names call static methods.
func (e *Environment) FindProxy(name string) (proxy.Proxy, error) {
	if err := e.expired(); err != nil {
		return proxy.Proxy{}, err
	}
	c, ok := e.classes.Lookup(name)
	if !ok {
		return proxy.Proxy{}, fmt.Errorf("%w: %q", proxy.ErrNotFound, name)
	}
	return e.store(object.Make(c)), nil
}

// Handle returns the dispatch handle for id.
func (e *Environment) Handle(id proxy.HandleID) (proxy.Handle, error) {
	if err := e.expired(); err != nil {
		return nil, err
	}
	o, err := e.object(id)
	if err != nil {
		return nil, err
	}
	return &handle{env: e, obj: o}, nil
}

// Release drops the handle.
func (e *Environment) Release(id proxy.HandleID) {
	if e.closed.Load() {
		return
	}
	e.mu.Lock()
	_, ok := e.handles[id]
	delete(e.handles, id)
	e.mu.Unlock()
	if ok && logging.Enabled(e.log, logging.LogLevelDebug) {
		e.log.Debug("managed.release", "env", e.id, "handle", uint64(id))
	}
}

// Close drops every handle. Later operations fail with
// *proxy.EnvironmentExpiredError.
func (e *Environment) Close() error {
	if e.closed.Swap(true) {
		return nil
	}
	e.mu.Lock()
	n := len(e.handles)
	clear(e.handles)
	e.mu.Unlock()
	e.log.Debug("managed.close", "env", e.id, "handles", n)
	return nil
}

// Expired reports whether Close was called.
func (e *Environment) Expired() bool { return e.closed.Load() }

// Len returns the number of live handles.
func (e *Environment) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.handles)
}

// handle is the dispatch target for one stored object.
type handle struct {
	env *Environment
	obj object.Object
}

func (h *handle) TypeName() string { return h.obj.TypeName() }

func (h *handle) ObjectID() uint64 { return h.obj.ID() }

func (h *handle) Call(_ context.Context, name string, args []proxy.Proxy) (proxy.Proxy, error) {
	objs := make([]object.Object, len(args))
	for i, a := range args {
		o, err := h.env.ConvertProxyToObject(a)
		if err != nil {
			return proxy.Proxy{}, object.ArgumentError(i, err)
		}
		objs[i] = o
	}
	return h.env.dispatch(h.obj, name, objs)
}

// dispatch resolves name on recv. Order: class object ("()" constructs,
// other names are statics), *callable.Callable ("()"), class of the value
// type (T or *T), plain Go func ("()").
func (e *Environment) dispatch(recv object.Object, name string, args []object.Object) (proxy.Proxy, error) {
	switch v := recv.Value().(type) {
	case *Class:
		if name == "()" {
			return e.overload(v.name, name, v.ctors, nil, args)
		}
		if cands, ok := v.statics[name]; ok {
			return e.overload(v.name, name, cands, nil, args)
		}
		return proxy.Proxy{}, &proxy.NoSuchMethodError{Type: v.name, Name: name}
	case *callable.Callable:
		if name == "()" {
			return e.overload(recv.TypeName(), name, []*callable.Callable{v}, nil, args)
		}
	}

	if c, ok := e.classes.ByType(recv.Type()); ok {
		if cands, ok := c.methods[name]; ok {
			return e.overload(recv.TypeName(), name, cands, &recv, args)
		}
	}

	if name == "()" && recv.Type() != nil && recv.Type().Kind() == reflect.Func {
		fn, err := callable.New(recv.Value())
		if err != nil {
			return proxy.Proxy{}, err
		}
		return e.overload(recv.TypeName(), name, []*callable.Callable{fn}, nil, args)
	}

	return proxy.Proxy{}, &proxy.NoSuchMethodError{Type: recv.TypeName(), Name: name}
}

// overload picks the first candidate accepting args. When none does, the
// error of the first candidate with a matching arity is returned, or the
// first error if no arity matches.
func (e *Environment) overload(typeName, name string, cands []*callable.Callable, recv *object.Object, args []object.Object) (proxy.Proxy, error) {
	if len(cands) == 0 {
		return proxy.Proxy{}, &proxy.NoSuchMethodError{Type: typeName, Name: name}
	}
	var fitErr, firstErr error
	for _, c := range cands {
		if recv != nil {
			r, err := adjustReceiver(*recv, c.ArgType(0))
			if err != nil {
				return proxy.Proxy{}, err
			}
			if c, err = c.Bind(0, r); err != nil {
				return proxy.Proxy{}, err
			}
		}
		inv, err := c.Prepare(args...)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			if fitErr == nil && arityFits(c, len(args)) {
				fitErr = err
			}
			continue
		}
		out, err := inv.Run()
		if err != nil {
			return proxy.Proxy{}, err
		}
		return e.result(out)
	}
	if fitErr != nil {
		return proxy.Proxy{}, fitErr
	}
	return proxy.Proxy{}, firstErr
}

// arityFits reports whether c accepts n arguments.
func arityFits(c *callable.Callable, n int) bool {
	if c.IsVariadic() {
		return n >= c.NumArgs()-1
	}
	return n == c.NumArgs()
}

// result stores a call result. A returned Proxy is not wrapped again. A
// class instance returned by value is stored behind a fresh *T so that
// set: and pointer methods act on the stored object rather than a copy.
func (e *Environment) result(out object.Object) (proxy.Proxy, error) {
	if p, ok := out.Value().(proxy.Proxy); ok {
		return e.MakeProxy(p)
	}
	if t := out.Type(); t != nil && t.Kind() != reflect.Pointer {
		if c, ok := e.classes.ByType(t); ok && c.Type() == t {
			ptr := reflect.New(t)
			ptr.Elem().Set(reflect.ValueOf(out.Value()))
			out = object.Make(ptr.Interface())
		}
	}
	return e.store(out), nil
}

// adjustReceiver turns recv into the receiver type a method expects,
// dereferencing *T for T or copying T into a new *T.
func adjustReceiver(recv object.Object, want reflect.Type) (object.Object, error) {
	rt := recv.Type()
	if rt == want || want == nil {
		return recv, nil
	}
	v := reflect.ValueOf(recv.Value())
	switch {
	case rt.Kind() == reflect.Pointer && rt.Elem() == want:
		if v.IsNil() {
			return object.Null, &proxy.NullProxyError{Op: "method on nil " + recv.TypeName()}
		}
		return object.Make(v.Elem().Interface()), nil
	case want.Kind() == reflect.Pointer && want.Elem() == rt:
		p := reflect.New(rt)
		p.Elem().Set(v)
		return object.Make(p.Interface()), nil
	}
	return recv, nil
}
