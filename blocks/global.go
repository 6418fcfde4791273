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

package blocks

import (
	"context"
	"fmt"

	"dirpx.dev/pxr/managed"
	"dirpx.dev/pxr/object"
	"dirpx.dev/pxr/proxy"
)

// ClassName is the managed class exposing the default registry to every
// environment: FindProxy(ClassName) returns it, with static methods
// "make", "exists" and "paths".
const ClassName = "pxr/BlockRegistry"

// defaultRegistry is built by package variable initialization, so it is
// ready before any importing package's init or variable declarations run.
var defaultRegistry = NewRegistry()

func init() {
	err := managed.NewClass[Registry](ClassName).
		StaticMethod("make", func(path string, args ...object.Object) (any, error) {
			return defaultRegistry.Instantiate(path, anys(args)...)
		}).
		StaticMethod("exists", func(path string) bool {
			return defaultRegistry.DoesBlockExist(path)
		}).
		StaticMethod("paths", func() []string {
			return defaultRegistry.Paths()
		}).
		Commit()
	if err != nil {
		panic(err)
	}
}

func anys(objs []object.Object) []any {
	out := make([]any, len(objs))
	for i, o := range objs {
		out[i] = o
	}
	return out
}

// Default returns the process-wide registry.
func Default() *Registry { return defaultRegistry }

// Register adds factory to the default registry under Prefix+path. It never
// panics; see Registration.
func Register(path string, factory any) Registration {
	return defaultRegistry.register(path, factory, callerSite(2))
}

// Make instantiates the element at path from the default registry in the
// host environment.
func Make(path string, args ...any) (proxy.Proxy, error) {
	return defaultRegistry.MakeContext(context.Background(), path, args...)
}

// MakeContext is Make with a context.
func MakeContext(ctx context.Context, path string, args ...any) (proxy.Proxy, error) {
	return defaultRegistry.MakeContext(ctx, path, args...)
}

// MakeIn instantiates the element at path inside env through env's
// ClassName object. It works for environments that cannot hold Go
// functions, such as a bridge, as long as env serves the managed classes.
func MakeIn(env proxy.Environment, path string, args ...any) (proxy.Proxy, error) {
	cls, err := env.FindProxy(ClassName)
	if err != nil {
		return proxy.Proxy{}, fmt.Errorf("pxr(blocks): make %q in %s: %w", path, env.Name(), err)
	}
	p, err := cls.Call("make", append([]any{path}, args...)...)
	if err != nil {
		return proxy.Proxy{}, &MakeError{Path: path, Err: err}
	}
	return p, nil
}

// DoesBlockExist reports whether the default registry has a factory for
// path.
func DoesBlockExist(path string) bool { return defaultRegistry.DoesBlockExist(path) }

// Lookup returns the default registry's entry for path.
func Lookup(path string) (Entry, error) { return defaultRegistry.Lookup(path) }

// Paths lists the default registry's canonical paths.
func Paths() []string { return defaultRegistry.Paths() }

// Initialize reopens the default registry and applies opts.
func Initialize(opts ...Option) { defaultRegistry.Initialize(opts...) }

// Shutdown shuts the default registry down.
func Shutdown() { defaultRegistry.Shutdown() }
