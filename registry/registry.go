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

package registry

import (
	"errors"
	"fmt"
	"maps"
	"reflect"
	"sync"
	"sync/atomic"

	"dirpx.dev/pxr/apis"
)

var (
	ErrNilType   = errors.New("pxr(registry): nil reflect.Type provided")
	ErrEmptyName = errors.New("pxr(registry): empty name provided")
	// ErrConflictingRegistration is returned when a type already carries
	// another name.
	ErrConflictingRegistration = errors.New("pxr(registry): conflicting type registration")
	// ErrNameTaken is returned when a name already belongs to another type.
	ErrNameTaken = errors.New("pxr(registry): name already registered for another type")
)

// New constructs an empty Registry. Types are matched exactly: registering
// T says nothing about *T or []T, which are named compositionally by the
// reflect strategy instead.
//
// Reads never block. Writers copy the table under a mutex and publish the
// copy, so registration is meant for init time and configuration rebuilds,
// not hot paths.
func New() apis.Registry {
	r := &registry{}
	r.cur.Store(&table{})
	return r
}

type registry struct {
	// mu serializes writers.
	mu  sync.Mutex
	cur atomic.Pointer[table]
}

// table is immutable once published.
type table struct {
	names   map[reflect.Type]string
	types   map[string]reflect.Type
	version uint64
}

func (tb *table) conflict(t reflect.Type, name string) error {
	if old, ok := tb.names[t]; ok && old != name {
		return fmt.Errorf("%w: %v is %q", ErrConflictingRegistration, t, old)
	}
	if old, ok := tb.types[name]; ok && old != t {
		return fmt.Errorf("%w: %q is %v", ErrNameTaken, name, old)
	}
	return nil
}

func (r *registry) Register(t reflect.Type, name string) error {
	switch {
	case t == nil:
		return ErrNilType
	case name == "":
		return ErrEmptyName
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	tb := r.cur.Load()
	if err := tb.conflict(t, name); err != nil {
		return err
	}
	if _, ok := tb.names[t]; ok {
		return nil
	}

	next := &table{
		names:   maps.Clone(tb.names),
		types:   maps.Clone(tb.types),
		version: tb.version + 1,
	}
	if next.names == nil {
		next.names = make(map[reflect.Type]string)
		next.types = make(map[string]reflect.Type)
	}
	next.names[t] = name
	next.types[name] = t
	r.cur.Store(next)
	return nil
}

func (r *registry) Lookup(t reflect.Type) (string, bool) {
	name, ok := r.cur.Load().names[t]
	return name, ok
}

func (r *registry) TypeOf(name string) (reflect.Type, bool) {
	t, ok := r.cur.Load().types[name]
	return t, ok
}

func (r *registry) Entries() []apis.Entry {
	tb := r.cur.Load()
	out := make([]apis.Entry, 0, len(tb.names))
	for t, name := range tb.names {
		out = append(out, apis.Entry{Type: t, Name: name})
	}
	return out
}

func (r *registry) Count() int { return len(r.cur.Load().names) }

func (r *registry) Version() uint64 { return r.cur.Load().version }

func (r *registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cur.Store(&table{version: r.cur.Load().version + 1})
}
