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

// Package proxy defines the dynamic call protocol: a Proxy is a handle to
// an object stored in some Environment, and every interaction with it goes
// through Call by name with positional arguments.
//
// Naming conventions (not reserved words):
//
//	"get:<field>"  read a property   (Get)
//	"set:<field>"  write a property  (Proxy.Set)
//	"()"           call the object   (Proxy.Invoke)
package proxy

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"runtime"
	"time"

	"dirpx.dev/pxr/object"
)

// Proxy refers to an object inside an Environment. Copies share the
// reference; when the last copy is unreachable the handle is released in
// its environment. The zero Proxy is null and every call on it fails with
// *NullProxyError.
type Proxy struct {
	r *ref
}

// ref is the shared (environment, handle) pair behind a Proxy.
type ref struct {
	env Environment
	id  HandleID
}

type releaseArg struct {
	env Environment
	id  HandleID
}

// New binds handle id of env. Environments call it once per issued handle;
// the handle is released when the returned Proxy and all its copies are
// unreachable.
func New(env Environment, id HandleID) Proxy {
	r := &ref{env: env, id: id}
	runtime.AddCleanup(r, func(a releaseArg) { a.env.Release(a.id) }, releaseArg{env: env, id: id})
	return Proxy{r: r}
}

var proxyType = reflect.TypeFor[Proxy]()

// IsNull reports whether p is the null Proxy.
func (p Proxy) IsNull() bool {
	return p.r == nil
}

// Environment returns the owning environment, or nil for the null Proxy.
func (p Proxy) Environment() Environment {
	if p.r == nil {
		return nil
	}
	return p.r.env
}

// HandleID returns the environment-local handle, or 0 for the null Proxy.
func (p Proxy) HandleID() HandleID {
	if p.r == nil {
		return 0
	}
	return p.r.id
}

// Call dispatches name on the receiver. See CallContext.
func (p Proxy) Call(name string, args ...any) (Proxy, error) {
	return p.CallContext(context.Background(), name, args...)
}

// CallContext dispatches name on the receiver with args. Each argument that
// is a Proxy of the receiver's environment is passed as is; any other value
// (including a Proxy of another environment) goes through MakeProxy.
// Conversion failures are reported per argument.
func (p Proxy) CallContext(ctx context.Context, name string, args ...any) (Proxy, error) {
	if p.r == nil {
		return Proxy{}, &NullProxyError{Op: name}
	}
	env := p.r.env
	if env.Expired() {
		return Proxy{}, &EnvironmentExpiredError{Env: env.Name()}
	}

	ctx, span := startCall(ctx, env, name)
	start := time.Now()
	res, err := p.call(ctx, env, name, args)
	endCall(ctx, span, env, time.Since(start), err)
	return res, err
}

func (p Proxy) call(ctx context.Context, env Environment, name string, args []any) (Proxy, error) {
	pargs := make([]Proxy, len(args))
	for i, a := range args {
		if ap, ok := a.(Proxy); ok && ap.r != nil && ap.r.env == env {
			pargs[i] = ap
			continue
		}
		ap, err := env.MakeProxy(a)
		if err != nil {
			if errors.Is(err, ErrEnvironmentExpired) {
				return Proxy{}, err
			}
			return Proxy{}, object.ArgumentError(i, err)
		}
		pargs[i] = ap
	}

	h, err := env.Handle(p.r.id)
	if err != nil {
		return Proxy{}, err
	}
	res, err := h.Call(ctx, name, pargs)
	runtime.KeepAlive(p.r)
	runtime.KeepAlive(pargs)
	return res, err
}

// Set calls "set:"+name with v.
func (p Proxy) Set(name string, v any) error {
	_, err := p.Call("set:"+name, v)
	return err
}

// Invoke calls "()" with args.
func (p Proxy) Invoke(args ...any) (Proxy, error) {
	return p.Call("()", args...)
}

// ToObject asks the owning environment for a local Object.
func (p Proxy) ToObject() (object.Object, error) {
	if p.r == nil {
		return object.Null, &NullProxyError{Op: "ToObject"}
	}
	o, err := p.r.env.ConvertProxyToObject(p)
	runtime.KeepAlive(p.r)
	return o, err
}

// TypeName returns the type identifier of the referenced object, "null"
// for the null Proxy, or "" when the handle is no longer valid.
func (p Proxy) TypeName() string {
	if p.r == nil {
		return "null"
	}
	h, err := p.r.env.Handle(p.r.id)
	if err != nil {
		return ""
	}
	name := h.TypeName()
	runtime.KeepAlive(p.r)
	return name
}

// Equal reports whether p and q refer to the same object in the same
// environment. Structural equality requires converting both to objects.
func (p Proxy) Equal(q Proxy) bool {
	if p.r == q.r {
		return true
	}
	if p.r == nil || q.r == nil || p.r.env.ID() != q.r.env.ID() {
		return false
	}
	hp, err := p.r.env.Handle(p.r.id)
	if err != nil {
		return false
	}
	hq, err := q.r.env.Handle(q.r.id)
	if err != nil {
		return false
	}
	eq := hp.ObjectID() == hq.ObjectID()
	runtime.KeepAlive(p.r)
	runtime.KeepAlive(q.r)
	return eq
}

// String formats the referenced value.
func (p Proxy) String() string {
	if p.r == nil {
		return "null"
	}
	o, err := p.ToObject()
	if err != nil {
		return fmt.Sprintf("<%s handle %d>", p.r.env.Name(), p.r.id)
	}
	return o.String()
}

// CallAs calls name and converts the result to T. A Proxy T receives the
// result unconverted.
func CallAs[T any](p Proxy, name string, args ...any) (T, error) {
	return CallAsContext[T](context.Background(), p, name, args...)
}

// CallAsContext is CallAs with a context.
func CallAsContext[T any](ctx context.Context, p Proxy, name string, args ...any) (T, error) {
	res, err := p.CallContext(ctx, name, args...)
	if err != nil {
		var zero T
		return zero, err
	}
	return Convert[T](res)
}

// Get returns property name converted to T; it is CallAs(p, "get:"+name).
func Get[T any](p Proxy, name string) (T, error) {
	return CallAs[T](p, "get:"+name)
}

// Convert resolves p to a local Object and converts it to T. A Proxy T is
// a passthrough.
func Convert[T any](p Proxy) (T, error) {
	var zero T
	if reflect.TypeFor[T]() == proxyType {
		return any(p).(T), nil
	}
	o, err := p.ToObject()
	if err != nil {
		return zero, err
	}
	return object.Convert[T](o)
}
