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

package pxr

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"

	"dirpx.dev/pxr/apis"
	"dirpx.dev/pxr/builder"
	"dirpx.dev/pxr/config"
)

// init publishes the default snapshot.
func init() {
	cfg := config.DefaultConfig()
	b := builder.New()
	s := &state{cfg: cfg, bld: b}
	s.reg = b.BuildRegistry(cfg, nil)
	s.res = b.BuildResolver(cfg, s.reg, nil)
	s.conv = b.BuildConverters(cfg, nil)
	st.Store(s)
}

var (
	// ErrNilRegistry is returned when a builder returns a nil registry.
	ErrNilRegistry = errors.New("pxr: builder returned nil registry")
	// ErrNilResolver is returned when a builder returns a nil resolver.
	ErrNilResolver = errors.New("pxr: builder returned nil resolver")
	// ErrNilConverters is returned when a builder returns a nil conversion table.
	ErrNilConverters = errors.New("pxr: builder returned nil conversion table")
)

// TypeName resolves the type identifier of v using the global snapshot.
// Values implementing apis.Namer name themselves.
func TypeName(v any) string {
	s := st.Load()
	return s.res.Resolve(v, s.cfg)
}

// TypeNameOf resolves the identifier of t using the global snapshot.
func TypeNameOf(t reflect.Type) string {
	s := st.Load()
	return s.res.ResolveType(t, s.cfg)
}

// RegisterType adds a type-name mapping to the global registry.
func RegisterType(t reflect.Type, name string) error {
	return st.Load().reg.Register(t, name)
}

// RegisterTypeOf is RegisterType for T.
func RegisterTypeOf[T any](name string) error {
	return RegisterType(reflect.TypeFor[T](), name)
}

// LookupType returns the type registered under name in the global registry.
func LookupType(name string) (reflect.Type, bool) {
	return st.Load().reg.TypeOf(name)
}

// RegisterConverter adds a conversion to the global conversion table.
func RegisterConverter(from, to reflect.Type, fn apis.ConvertFunc) error {
	return st.Load().conv.Register(from, to, fn)
}

// RegisterConversion adds a typed conversion From -> To to the global
// conversion table.
func RegisterConversion[From, To any](fn func(From) (To, error)) error {
	if fn == nil {
		return RegisterConverter(reflect.TypeFor[From](), reflect.TypeFor[To](), nil)
	}
	return RegisterConverter(reflect.TypeFor[From](), reflect.TypeFor[To](), func(v any) (any, error) {
		in, ok := v.(From)
		if !ok {
			return nil, fmt.Errorf("pxr: conversion expects %s, got %T", TypeNameOf(reflect.TypeFor[From]()), v)
		}
		return fn(in)
	})
}

// Conversion returns the conversion registered for from -> to.
func Conversion(from, to reflect.Type) (apis.ConvertFunc, bool) {
	return st.Load().conv.Lookup(from, to)
}

// SetAll explicitly sets all global state components.
//
// Nil arguments leave the corresponding component unchanged, except that
// nil reg/res are rebuilt with the (possibly new) builder and unpinned.
// Non-nil reg/res are pinned. The conversion table is always rebuilt.
//
// This is mainly used by tests to get a deterministic snapshot.
func SetAll(cfg *apis.Config, reg apis.Registry, res apis.Resolver, bld apis.Builder) {
	buildMu.Lock()
	defer buildMu.Unlock()

	old := st.Load()

	next := &state{
		cfg:  old.cfg,
		bld:  old.bld,
		reg:  reg,
		res:  res,
		preg: reg != nil,
		pres: res != nil,
	}
	if cfg != nil {
		next.cfg = *cfg
	}
	if bld != nil {
		next.bld = bld
	}
	if next.reg == nil {
		next.reg = next.bld.BuildRegistry(next.cfg, old.reg)
	}
	if next.res == nil {
		next.res = next.bld.BuildResolver(next.cfg, next.reg, old.res)
	}
	next.conv = next.bld.BuildConverters(next.cfg, old.conv)
	publish(next)
}

// Config returns the global configuration.
func Config() apis.Config {
	return st.Load().cfg
}

// SetConfig sets the global configuration to cfg and rebuilds every
// layer that is not pinned.
func SetConfig(cfg apis.Config) {
	buildMu.Lock()
	defer buildMu.Unlock()

	old := st.Load()
	publish(old.rebuild(cfg, old.bld))
}

// Registry returns the global registry.
func Registry() apis.Registry {
	return st.Load().reg
}

// SetRegistry installs reg as the global registry and pins it.
// The resolver is rebuilt over reg unless it is pinned.
func SetRegistry(reg apis.Registry) {
	if reg == nil {
		return
	}

	buildMu.Lock()
	defer buildMu.Unlock()

	next := *st.Load()
	next.reg = reg
	next.preg = true
	if !next.pres {
		next.res = next.bld.BuildResolver(next.cfg, reg, next.res)
	}
	publish(&next)
}

// Resolver returns the global resolver.
func Resolver() apis.Resolver {
	return st.Load().res
}

// SetResolver installs res as the global resolver and pins it.
func SetResolver(res apis.Resolver) {
	if res == nil {
		return
	}

	buildMu.Lock()
	defer buildMu.Unlock()

	next := *st.Load()
	next.res = res
	next.pres = true
	publish(&next)
}

// Converters returns the global conversion table.
func Converters() apis.Converters {
	return st.Load().conv
}

// Builder returns the global builder.
func Builder() apis.Builder {
	return st.Load().bld
}

// SetBuilder sets the global builder to b and rebuilds every layer that is
// not pinned.
func SetBuilder(b apis.Builder) {
	if b == nil {
		return
	}

	buildMu.Lock()
	defer buildMu.Unlock()

	old := st.Load()
	publish(old.rebuild(old.cfg, b))
}

// IsRegistryPinned returns whether the global registry is pinned.
func IsRegistryPinned() bool {
	return st.Load().preg
}

// PinRegistry stops the global registry from being rebuilt.
func PinRegistry() {
	setPins(func(s *state) { s.preg = true })
}

// UnpinRegistry lets the global registry be rebuilt again.
func UnpinRegistry() {
	setPins(func(s *state) { s.preg = false })
}

// IsResolverPinned returns whether the global resolver is pinned.
func IsResolverPinned() bool {
	return st.Load().pres
}

// PinResolver stops the global resolver from being rebuilt.
func PinResolver() {
	setPins(func(s *state) { s.pres = true })
}

// UnpinResolver lets the global resolver be rebuilt again.
func UnpinResolver() {
	setPins(func(s *state) { s.pres = false })
}

func setPins(fn func(*state)) {
	buildMu.Lock()
	defer buildMu.Unlock()

	next := *st.Load()
	fn(&next)
	st.Store(&next)
}

// buildMu serializes writers (reconfigurations/swaps) so we never publish
// partially-built snapshots.
var buildMu sync.Mutex

// st is the global state.
var st atomic.Pointer[state]

// state is the global state snapshot.
// Immutable snapshot published atomically via st.Store; never mutate fields
// of a published state. Writers create a new state and swap it atomically.
type state struct {
	// cfg is the global configuration.
	cfg apis.Config
	// reg is the global type registry.
	reg apis.Registry
	// res is the global resolver.
	res apis.Resolver
	// conv is the global conversion table. It is never pinned.
	conv apis.Converters
	// bld is the global builder.
	bld apis.Builder
	// preg indicates whether the reg is pinned (immutable).
	preg bool
	// pres indicates whether the res is pinned (immutable).
	pres bool
}

// rebuild derives a snapshot for cfg and b, rebuilding unpinned layers and
// migrating their entries from s.
func (s *state) rebuild(cfg apis.Config, b apis.Builder) *state {
	next := &state{
		cfg:  cfg,
		bld:  b,
		reg:  s.reg,
		res:  s.res,
		preg: s.preg,
		pres: s.pres,
	}
	if !s.preg {
		next.reg = b.BuildRegistry(cfg, s.reg)
	}
	if !s.pres {
		next.res = b.BuildResolver(cfg, next.reg, s.res)
	}
	next.conv = b.BuildConverters(cfg, s.conv)
	return next
}

// publish validates s and swaps it in. Callers hold buildMu.
func publish(s *state) {
	if s.reg == nil {
		panic(ErrNilRegistry)
	}
	if s.res == nil {
		panic(ErrNilResolver)
	}
	if s.conv == nil {
		panic(ErrNilConverters)
	}
	st.Store(s)
}
