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

// Package converters implements the conversion table consulted when an
// object is asked for a type it does not hold exactly.
package converters

import (
	"errors"
	"reflect"
	"sync"

	"dirpx.dev/pxr/apis"
)

var (
	// ErrNilType is returned when a nil reflect.Type is provided.
	ErrNilType = errors.New("pxr(converters): nil reflect.Type provided")
	// ErrNilFunc is returned when a nil conversion function is provided.
	ErrNilFunc = errors.New("pxr(converters): nil conversion function provided")
	// ErrIdentity is returned when from and to are the same type.
	ErrIdentity = errors.New("pxr(converters): conversion to the same type")
	// ErrConflictingConversion indicates that the (from, to) pair is
	// already registered.
	ErrConflictingConversion = errors.New("pxr(converters): conversion already registered")
)

// pair keys the table.
type pair struct {
	from, to reflect.Type
}

// New constructs an empty conversion table.
func New() apis.Converters {
	return &table{}
}

// WithBuiltins constructs a table seeded with the builtin conversions.
func WithBuiltins() apis.Converters {
	t := &table{}
	for _, c := range Builtins() {
		_ = t.add(c)
	}
	return t
}

// table is a Converters implementation backed by sync.Map.
type table struct {
	// mu guards write-side consistency and counter.
	mu sync.Mutex
	// m maps pair to apis.Conversion.
	m sync.Map // map[pair]apis.Conversion
	// count tracks the number of registered entries.
	count int
}

var _ apis.Converters = (*table)(nil)

// Register installs a user conversion for from -> to.
func (t *table) Register(from, to reflect.Type, fn apis.ConvertFunc) error {
	return t.add(apis.Conversion{From: from, To: to, Func: fn})
}

func (t *table) add(c apis.Conversion) error {
	if c.From == nil || c.To == nil {
		return ErrNilType
	}
	if c.Func == nil {
		return ErrNilFunc
	}
	if c.From == c.To {
		return ErrIdentity
	}
	k := pair{c.From, c.To}
	if _, ok := t.m.Load(k); ok {
		return ErrConflictingConversion
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.m.Load(k); ok {
		return ErrConflictingConversion
	}
	t.m.Store(k, c)
	t.count++
	return nil
}

// Lookup returns the conversion registered for from -> to.
func (t *table) Lookup(from, to reflect.Type) (apis.ConvertFunc, bool) {
	if from == nil || to == nil {
		return nil, false
	}
	if v, ok := t.m.Load(pair{from, to}); ok {
		return v.(apis.Conversion).Func, true
	}
	return nil, false
}

// Entries returns a snapshot for diagnostics/docs (order is unspecified).
func (t *table) Entries() []apis.Conversion {
	out := make([]apis.Conversion, 0, t.Count())
	t.m.Range(func(_, value any) bool {
		out = append(out, value.(apis.Conversion))
		return true
	})
	return out
}

// Count returns the number of registered conversions.
func (t *table) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.count
}

// Reset clears all registered conversions, builtins included.
func (t *table) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.m.Clear()
	t.count = 0
}
