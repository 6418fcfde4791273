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

package strategy

import (
	"reflect"
	"sync"

	"dirpx.dev/pxr/apis"
	uref "dirpx.dev/pxr/utils/reflect"
)

// NewReflectStrategy creates an apis.Strategy that names types via
// reflection. Named leaves found in reg (which may be nil) keep their
// registered names inside composites, so with "math.Adder" registered
// *Adder resolves to "*math.Adder".
//
// Names are memoized per type and naming knobs. A memoized name is reused
// only while reg reports the Version it was computed under.
func NewReflectStrategy(reg apis.Registry) apis.Strategy {
	s := &reflectStrategy{reg: reg}
	if reg != nil {
		s.leaf = reg.Lookup
	}
	return s
}

type reflectStrategy struct {
	reg  apis.Registry
	leaf uref.LeafFunc
	memo sync.Map // memoKey -> memoized
}

var _ apis.Strategy = (*reflectStrategy)(nil)

type memoKey struct {
	t     reflect.Type
	depth int
	full  bool
	strip bool
}

type memoized struct {
	version uint64
	// name is empty for types too deep to name.
	name string
}

func (s *reflectStrategy) TryResolve(v any, cfg apis.Config) (string, bool) {
	return s.TryResolveType(reflect.TypeOf(v), cfg)
}

func (s *reflectStrategy) TryResolveType(t reflect.Type, cfg apis.Config) (string, bool) {
	if t == nil {
		return "", false
	}
	var version uint64
	if s.reg != nil {
		version = s.reg.Version()
	}
	key := memoKey{t: t, depth: cfg.MaxDepth, full: cfg.FullPkgPath, strip: cfg.StripTypeParams}
	if v, ok := s.memo.Load(key); ok {
		if m := v.(memoized); m.version == version {
			return m.name, m.name != ""
		}
	}
	name, err := uref.Name(t, cfg, s.leaf)
	if err != nil {
		name = ""
	}
	s.memo.Store(key, memoized{version: version, name: name})
	return name, name != ""
}
