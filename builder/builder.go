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

package builder

import (
	"dirpx.dev/pxr/apis"
	"dirpx.dev/pxr/converters"
	"dirpx.dev/pxr/registry"
	"dirpx.dev/pxr/resolver"
	"dirpx.dev/pxr/strategy"
)

// New creates and returns a new instance of an apis.Builder.
func New() apis.Builder {
	return &builder{}
}

// builder is an empty struct to be used as a receiver for builder methods.
type builder struct{}

// BuildRegistry builds and returns a new apis.Registry. If a pre-existing
// registry is provided, its entries are copied into the new registry.
func (b *builder) BuildRegistry(_ apis.Config, preg apis.Registry) apis.Registry {
	nreg := registry.New()
	if preg != nil {
		for _, e := range preg.Entries() {
			_ = nreg.Register(e.Type, e.Name)
		}
	}
	return nreg
}

// BuildResolver builds and returns the Namer -> Registry -> Reflect chain
// over reg. The reflect strategy memoizes per instance, so a rebuilt
// resolver starts with a cold cache for the new configuration.
func (b *builder) BuildResolver(_ apis.Config, reg apis.Registry, _ apis.Resolver) apis.Resolver {
	return resolver.New(
		strategy.NewNamerStrategy(),
		strategy.NewRegistryStrategy(reg),
		strategy.NewReflectStrategy(reg),
	)
}

// BuildConverters builds a conversion table, seeded with the builtin
// conversions when cfg.BuiltinConversions is set. User conversions from
// pconv are carried over; its builtin entries are not.
func (b *builder) BuildConverters(cfg apis.Config, pconv apis.Converters) apis.Converters {
	var nconv apis.Converters
	if cfg.BuiltinConversions {
		nconv = converters.WithBuiltins()
	} else {
		nconv = converters.New()
	}
	if pconv != nil {
		for _, c := range pconv.Entries() {
			if c.Builtin {
				continue
			}
			_ = nconv.Register(c.From, c.To, c.Func)
		}
	}
	return nconv
}
