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

// Package resolver chains type naming strategies.
package resolver

import (
	"reflect"
	"slices"

	"dirpx.dev/pxr/apis"
)

// nullName identifies the absence of a value or type.
const nullName = "null"

// New returns a Resolver trying strategies in order. Nil strategies are
// dropped. The result is safe for concurrent use when the strategies are.
//
// Identifiers are never empty: a nil value or type is "null", and a type no
// strategy handles is spelled the way reflect prints it.
func New(strategies ...apis.Strategy) apis.Resolver {
	return &chain{strategies: slices.DeleteFunc(slices.Clone(strategies), func(s apis.Strategy) bool {
		return s == nil
	})}
}

type chain struct {
	strategies []apis.Strategy
}

func (c *chain) Resolve(v any, cfg apis.Config) string {
	if v == nil {
		return nullName
	}
	for _, s := range c.strategies {
		if name, ok := s.TryResolve(v, cfg); ok {
			return name
		}
	}
	return reflect.TypeOf(v).String()
}

func (c *chain) ResolveType(t reflect.Type, cfg apis.Config) string {
	if t == nil {
		return nullName
	}
	for _, s := range c.strategies {
		if name, ok := s.TryResolveType(t, cfg); ok {
			return name
		}
	}
	return t.String()
}
