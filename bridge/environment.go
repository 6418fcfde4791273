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

// Package bridge implements a bridged environment. Objects live behind a
// Server in a separate handle space; the client Environment reaches them
// only through encoded requests, and every value crossing the boundary is
// marshalled with canonical CBOR.
//
// A value crosses by value when its type identifier resolves back to its
// type (builtins, composites of them, and types registered with
// pxr.RegisterType). Handles cross by reference.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"

	"dirpx.dev/pxr/logging"
	"dirpx.dev/pxr/object"
	"dirpx.dev/pxr/proxy"
)

// Name is the environment kind registered with the proxy package.
const Name = "bridge"

func init() {
	if err := proxy.RegisterEnvironment(Name, func() (proxy.Environment, error) {
		inner, err := proxy.NewEnvironment(proxy.HostEnvironment)
		if err != nil {
			return nil, err
		}
		srv := NewServer(inner, nil)
		return New(srv, WithCloser(srv), WithCloser(inner)), nil
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

// WithCloser adds c to the resources closed by Close, in order.
func WithCloser(c io.Closer) Option {
	return func(e *Environment) {
		if c != nil {
			e.closers = append(e.closers, c)
		}
	}
}

// Environment is the client side of a bridge.
type Environment struct {
	id      string
	tr      Transport
	log     logging.Logger
	closers []io.Closer

	closed atomic.Bool
	// remote is set once the server reports that it expired.
	remote atomic.Bool
}

var _ proxy.Environment = (*Environment)(nil)

// New returns a client environment talking to a server over tr.
func New(tr Transport, opts ...Option) *Environment {
	e := &Environment{id: uuid.NewString(), tr: tr, log: logging.Default()}
	for _, o := range opts {
		o(e)
	}
	return e
}

// ID returns the environment identity.
func (e *Environment) ID() string { return e.id }

// Name returns "bridge".
func (e *Environment) Name() string { return Name }

// Expired reports whether the client was closed or the server has expired.
func (e *Environment) Expired() bool { return e.closed.Load() || e.remote.Load() }

func (e *Environment) roundTrip(ctx context.Context, req *request) (*response, error) {
	if e.Expired() {
		return nil, &proxy.EnvironmentExpiredError{Env: Name}
	}
	b, err := encMode.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("pxr(bridge): encode request: %w", err)
	}
	out, err := e.tr.RoundTrip(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("pxr(bridge): transport: %w", err)
	}
	var resp response
	if err := cbor.Unmarshal(out, &resp); err != nil {
		return nil, fmt.Errorf("pxr(bridge): decode response: %w", err)
	}
	if resp.Err != nil {
		if resp.Err.Kind == kindExpired {
			e.remote.Store(true)
		}
		return nil, resp.Err.err()
	}
	return &resp, nil
}

func (e *Environment) proxyFor(id uint64) proxy.Proxy {
	if id == 0 {
		return proxy.Proxy{}
	}
	return proxy.New(e, proxy.HandleID(id))
}

// wireArg encodes a call argument: own proxies by reference, everything
// else by value.
func (e *Environment) wireArg(v any) (value, error) {
	if p, ok := v.(proxy.Proxy); ok {
		switch {
		case p.IsNull():
			return value{Type: nullType}, nil
		case p.Environment() == proxy.Environment(e):
			return value{Ref: uint64(p.HandleID())}, nil
		}
		o, err := p.ToObject()
		if err != nil {
			return value{}, err
		}
		return encode(o)
	}
	return encode(object.Make(v))
}

// MakeProxy sends v to the server by value. A Proxy of this environment is
// returned unchanged; a Proxy of another environment is fetched from its
// owner and sent by value.
func (e *Environment) MakeProxy(v any) (proxy.Proxy, error) {
	if p, ok := v.(proxy.Proxy); ok && !p.IsNull() && p.Environment() == proxy.Environment(e) {
		return p, nil
	}
	arg, err := e.wireArg(v)
	if err != nil {
		return proxy.Proxy{}, err
	}
	resp, err := e.roundTrip(context.Background(), &request{Op: opMake, Args: []value{arg}})
	if err != nil {
		return proxy.Proxy{}, err
	}
	return e.proxyFor(resp.Handle), nil
}

// ConvertProxyToObject fetches the value behind p and decodes it locally.
func (e *Environment) ConvertProxyToObject(p proxy.Proxy) (object.Object, error) {
	if p.IsNull() {
		return object.Null, &proxy.NullProxyError{Op: "ConvertProxyToObject"}
	}
	if p.Environment() != proxy.Environment(e) {
		return p.ToObject()
	}
	resp, err := e.roundTrip(context.Background(), &request{Op: opFetch, Handle: uint64(p.HandleID())})
	if err != nil {
		return object.Null, err
	}
	if resp.Value == nil {
		return object.Null, nil
	}
	return decode(*resp.Value)
}

// FindProxy looks name up in the server's environment.
func (e *Environment) FindProxy(name string) (proxy.Proxy, error) {
	resp, err := e.roundTrip(context.Background(), &request{Op: opFind, Name: name})
	if err != nil {
		return proxy.Proxy{}, err
	}
	return e.proxyFor(resp.Handle), nil
}

// Handle checks id with the server and returns its dispatch handle.
func (e *Environment) Handle(id proxy.HandleID) (proxy.Handle, error) {
	resp, err := e.roundTrip(context.Background(), &request{Op: opStat, Handle: uint64(id)})
	if err != nil {
		return nil, err
	}
	return &handle{env: e, id: id, typeName: resp.Type, objectID: resp.ObjectID}, nil
}

// Release tells the server one client proxy for id is gone.
func (e *Environment) Release(id proxy.HandleID) {
	if e.Expired() {
		return
	}
	if _, err := e.roundTrip(context.Background(), &request{Op: opRelease, Handle: uint64(id)}); err != nil {
		e.log.Debug("bridge.release", "env", e.id, "handle", uint64(id), "error", err)
	}
}

// Len returns the number of handles the server holds.
func (e *Environment) Len() int {
	resp, err := e.roundTrip(context.Background(), &request{Op: opLen})
	if err != nil {
		return 0
	}
	return resp.Len
}

// Close expires the client and closes the resources added with
// WithCloser.
func (e *Environment) Close() error {
	if e.closed.Swap(true) {
		return nil
	}
	var errs []error
	for _, c := range e.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

type handle struct {
	env      *Environment
	id       proxy.HandleID
	typeName string
	objectID uint64
}

func (h *handle) TypeName() string { return h.typeName }

func (h *handle) ObjectID() uint64 { return h.objectID }

func (h *handle) Call(ctx context.Context, name string, args []proxy.Proxy) (proxy.Proxy, error) {
	wargs := make([]value, len(args))
	for i, a := range args {
		w, err := h.env.wireArg(a)
		if err != nil {
			return proxy.Proxy{}, object.ArgumentError(i, err)
		}
		wargs[i] = w
	}
	resp, err := h.env.roundTrip(ctx, &request{Op: opCall, Handle: uint64(h.id), Name: name, Args: wargs})
	if err != nil {
		return proxy.Proxy{}, err
	}
	return h.env.proxyFor(resp.Handle), nil
}
