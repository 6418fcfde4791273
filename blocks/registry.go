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

// Package blocks implements the block registry: a path-keyed table of
// factories for processing elements.
//
// Packages register factories from init or package variable declarations:
//
//	var _ = blocks.Register("/math/adder", NewAdder)
//
// Register never panics. A registration that fails validation is logged,
// counted, and dropped; the returned Registration records why. Consumers
// instantiate elements by path and use the result through the proxy call
// protocol:
//
//	adder, err := blocks.Make("/math/adder", 2, 3)
//	sum, err := proxy.CallAs[int](adder, "add")
//
// Duplicate paths keep the first registration. Factory return types are
// checked at registration: a factory must return a Block or a Topology,
// optionally followed by an error.
package blocks

import (
	"context"
	"fmt"
	"maps"
	"runtime"
	"slices"
	"sync"
	"time"

	"dirpx.dev/pxr/callable"
	"dirpx.dev/pxr/logging"
	"dirpx.dev/pxr/object"
	"dirpx.dev/pxr/proxy"
)

// Entry is one registered factory.
type Entry struct {
	// Path is the canonical path, under Prefix.
	Path string
	// Factory is the wrapped factory function.
	Factory *callable.Callable
	// Category is the element kind the factory returns.
	Category Category
	// Site is the file:line of the Register call.
	Site string
}

// Registration is the outcome of Register. A failed registration is inert.
type Registration struct {
	// Path is the canonical path, or the path as given if it was invalid.
	Path string
	// Err is a *RegistrationError, or nil.
	Err error
}

// OK reports whether the registration took effect.
func (r Registration) OK() bool { return r.Err == nil }

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger. Without it the registry logs to
// logging.Default() as it is at the time of each message.
func WithLogger(l logging.Logger) Option {
	return func(r *Registry) { r.log = l }
}

// WithEnvironment sets the environment Make creates elements in. Without
// it Make uses proxy.Host().
func WithEnvironment(env proxy.Environment) Option {
	return func(r *Registry) { r.env = env }
}

// Registry maps block paths to factories. All methods are safe for
// concurrent use; no lock is held while a factory runs.
type Registry struct {
	mu       sync.RWMutex
	entries  map[string]*Entry
	shutdown bool
	log      logging.Logger
	env      proxy.Environment
}

// NewRegistry returns an empty, open registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{entries: map[string]*Entry{}}
	for _, o := range opts {
		o(r)
	}
	return r
}

func (r *Registry) logger() logging.Logger {
	r.mu.RLock()
	l := r.log
	r.mu.RUnlock()
	if l == nil {
		return logging.Default()
	}
	return l
}

func (r *Registry) environment() (proxy.Environment, error) {
	r.mu.RLock()
	env := r.env
	r.mu.RUnlock()
	if env != nil {
		return env, nil
	}
	return proxy.Host()
}

// Register adds factory under Prefix+path. It never panics.
func (r *Registry) Register(path string, factory any) Registration {
	return r.register(path, factory, callerSite(2))
}

func (r *Registry) register(path string, factory any, site string) Registration {
	e, err := r.add(path, factory, site)
	measureRegistration(err)
	if err != nil {
		rerr := &RegistrationError{Path: path, Site: site, Err: err}
		r.logger().Error("blocks.register", "path", path, "site", site, "error", err)
		return Registration{Path: path, Err: rerr}
	}
	if l := r.logger(); logging.Enabled(l, logging.LogLevelDebug) {
		l.Debug("blocks.register", "path", e.Path, "category", e.Category.String(), "site", site)
	}
	return Registration{Path: e.Path}
}

func (r *Registry) add(path string, factory any, site string) (e *Entry, err error) {
	defer func() {
		if p := recover(); p != nil {
			e, err = nil, fmt.Errorf("%w: %v", ErrInvalidFactory, p)
		}
	}()

	canon, err := Canonical(path)
	if err != nil {
		return nil, err
	}
	fn, err := callable.New(factory)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFactory, err)
	}
	cat, ok := CategoryOf(fn.ReturnType())
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrReturnType, fn)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.shutdown {
		return nil, ErrRegistryShutdown
	}
	if old, ok := r.entries[canon]; ok {
		return nil, fmt.Errorf("%w: %q first registered at %s", ErrDuplicatePath, canon, old.Site)
	}
	e = &Entry{Path: canon, Factory: fn, Category: cat, Site: site}
	r.entries[canon] = e
	return e, nil
}

// Lookup returns the entry registered for path. path is given without
// Prefix, as passed to Register.
func (r *Registry) Lookup(path string) (Entry, error) {
	canon, err := Canonical(path)
	if err != nil {
		return Entry{}, &UnknownFactoryPathError{Path: path}
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.shutdown {
		return Entry{}, ErrRegistryShutdown
	}
	e, ok := r.entries[canon]
	if !ok {
		return Entry{}, &UnknownFactoryPathError{Path: path}
	}
	return *e, nil
}

// DoesBlockExist reports whether a factory is registered for path. It
// returns false after Shutdown.
func (r *Registry) DoesBlockExist(path string) bool {
	_, err := r.Lookup(path)
	return err == nil
}

// Paths lists the canonical paths in sorted order, or nil after Shutdown.
func (r *Registry) Paths() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.shutdown {
		return nil
	}
	return slices.Sorted(maps.Keys(r.entries))
}

// Len returns the number of registered factories, 0 while shut down.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.shutdown {
		return 0
	}
	return len(r.entries)
}

// Make instantiates the element at path in the registry's environment.
// See MakeContext.
func (r *Registry) Make(path string, args ...any) (proxy.Proxy, error) {
	return r.MakeContext(context.Background(), path, args...)
}

// MakeContext looks up the factory at path, proxies it in the registry's
// environment and calls "()" on it with args. An unknown path fails with
// *UnknownFactoryPathError; a failed call with *MakeError.
func (r *Registry) MakeContext(ctx context.Context, path string, args ...any) (p proxy.Proxy, err error) {
	ctx, span := startMake(ctx, path)
	start := time.Now()
	defer func() { endMake(ctx, span, path, time.Since(start), err) }()

	e, err := r.Lookup(path)
	if err != nil {
		return proxy.Proxy{}, err
	}
	env, err := r.environment()
	if err != nil {
		return proxy.Proxy{}, &MakeError{Path: path, Err: err}
	}
	fn, err := env.MakeProxy(e.Factory)
	if err != nil {
		return proxy.Proxy{}, &MakeError{Path: path, Err: err}
	}
	p, err = fn.CallContext(ctx, "()", args...)
	if err != nil {
		return proxy.Proxy{}, &MakeError{Path: path, Err: err}
	}
	return p, nil
}

// Instantiate calls the factory at path directly, without an environment,
// and returns the element. Arguments are converted as for Make.
func (r *Registry) Instantiate(path string, args ...any) (any, error) {
	e, err := r.Lookup(path)
	if err != nil {
		return nil, err
	}
	objs, err := objects(args)
	if err != nil {
		return nil, &MakeError{Path: path, Err: err}
	}
	out, err := e.Factory.Call(objs...)
	if err != nil {
		return nil, &MakeError{Path: path, Err: err}
	}
	return out.Value(), nil
}

// Initialize reopens the registry after Shutdown and applies opts.
// Registrations made before Shutdown are served again; registrations
// attempted while shut down were rejected and stay absent.
func (r *Registry) Initialize(opts ...Option) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shutdown = false
	for _, o := range opts {
		o(r)
	}
}

// Shutdown suspends the registry: lookups, Paths and Len see it empty and
// new registrations are rejected with ErrRegistryShutdown. Existing entries
// are retained, since they come from package initialization and could not
// be replayed after a later Initialize.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	r.shutdown = true
	n := len(r.entries)
	r.mu.Unlock()
	r.logger().Info("blocks.shutdown", "entries", n)
}

// objects wraps args as Objects. Proxies are resolved by their owners.
func objects(args []any) ([]object.Object, error) {
	out := make([]object.Object, len(args))
	for i, a := range args {
		if p, ok := a.(proxy.Proxy); ok {
			o, err := p.ToObject()
			if err != nil {
				return nil, object.ArgumentError(i, err)
			}
			out[i] = o
			continue
		}
		out[i] = object.Make(a)
	}
	return out, nil
}

// callerSite returns file:line skip frames above the caller.
func callerSite(skip int) string {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return "unknown"
	}
	return fmt.Sprintf("%s:%d", file, line)
}
