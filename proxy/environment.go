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

package proxy

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"dirpx.dev/pxr/object"
)

// HandleID identifies an object inside the environment that issued it.
// IDs from different environments are unrelated.
type HandleID uint64

// Handle is the dispatch target behind a Proxy.
type Handle interface {
	// Call dispatches name with positional arguments. Every argument belongs
	// to the handle's environment; so does the result.
	Call(ctx context.Context, name string, args []Proxy) (Proxy, error)
	// TypeName returns the type identifier of the underlying object.
	TypeName() string
	// ObjectID returns the identity of the underlying object. Two handles of
	// one environment with equal ObjectIDs refer to the same value.
	ObjectID() uint64
}

// Environment is a place where objects live. It issues handles for the
// values it stores and dispatches calls on them.
//
// Crossing between environments is always explicit: MakeProxy and
// ConvertProxyToObject are the only operations that accept a Proxy from a
// different environment.
//
// After Close every operation fails with *EnvironmentExpiredError.
type Environment interface {
	// ID returns a unique identity for this environment instance.
	ID() string
	// Name returns the environment kind ("managed", "bridge", ...).
	Name() string
	// MakeProxy stores v under a fresh handle. A Proxy of this environment
	// is returned unchanged; a Proxy of another environment is converted
	// through its owner first.
	MakeProxy(v any) (Proxy, error)
	// ConvertProxyToObject resolves p, which may belong to another
	// environment, into a local Object.
	ConvertProxyToObject(p Proxy) (object.Object, error)
	// FindProxy looks up a named object in the environment's namespace.
	FindProxy(name string) (Proxy, error)
	// Handle returns the live handle for id.
	Handle(id HandleID) (Handle, error)
	// Release drops the handle. Releasing an unknown handle, or releasing
	// on a closed environment, is a no-op.
	Release(id HandleID)
	// Close tears the environment down.
	Close() error
	// Expired reports whether Close was called.
	Expired() bool
	// Len returns the number of live handles.
	Len() int
}

// Factory creates an environment instance.
type Factory func() (Environment, error)

var (
	factoriesMu sync.RWMutex
	factories   = map[string]Factory{}

	hostMu sync.Mutex
	host   Environment
)

// HostEnvironment is the environment kind Host creates by default.
const HostEnvironment = "managed"

// RegisterEnvironment installs a factory for the environment kind name.
// Environment packages call it from init.
func RegisterEnvironment(name string, f Factory) error {
	if name == "" || f == nil {
		return fmt.Errorf("pxr(proxy): invalid environment registration %q", name)
	}
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	if _, ok := factories[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateEnvironment, name)
	}
	factories[name] = f
	return nil
}

// NewEnvironment creates a new environment of kind name.
func NewEnvironment(name string) (Environment, error) {
	factoriesMu.RLock()
	f, ok := factories[name]
	factoriesMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEnvironment, name)
	}
	return f()
}

// Environments lists the registered environment kinds in sorted order.
func Environments() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	out := make([]string, 0, len(factories))
	for name := range factories {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

// Host returns the environment used when no explicit environment is given.
// Unless SetHost installed one, a HostEnvironment instance is created on
// first use, and again after the current one is closed.
func Host() (Environment, error) {
	hostMu.Lock()
	defer hostMu.Unlock()
	if host != nil && !host.Expired() {
		return host, nil
	}
	env, err := NewEnvironment(HostEnvironment)
	if err != nil {
		return nil, err
	}
	host = env
	return host, nil
}

// SetHost installs env as the host environment. A nil env restores the
// lazily created default.
func SetHost(env Environment) {
	hostMu.Lock()
	defer hostMu.Unlock()
	host = env
}
