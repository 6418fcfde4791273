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

package config

import (
	"dirpx.dev/pxr/apis"
)

// DefaultMaxDepth bounds composite nesting when naming types. Negative
// depths given to NewConfig fall back to it.
const DefaultMaxDepth = 8

// DefaultConfig names types as short "pkg.Type" identifiers, keeps generic
// instantiations distinct, and installs the builtin numeric conversions.
func DefaultConfig() apis.Config {
	return apis.Config{
		MaxDepth:           DefaultMaxDepth,
		BuiltinConversions: true,
	}
}

// Option adjusts an apis.Config built by NewConfig.
type Option func(*apis.Config)

// NewConfig applies opts over DefaultConfig in order.
func NewConfig(opts ...Option) apis.Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.MaxDepth < 0 {
		cfg.MaxDepth = DefaultMaxDepth
	}
	return cfg
}

func WithMaxDepth(depth int) Option {
	return func(c *apis.Config) { c.MaxDepth = depth }
}

// WithFullPkgPath spells types with their full import path.
func WithFullPkgPath(full bool) Option {
	return func(c *apis.Config) { c.FullPkgPath = full }
}

// WithStripTypeParams drops type arguments, so G[int] and G[string] share
// the identifier of G.
func WithStripTypeParams(strip bool) Option {
	return func(c *apis.Config) { c.StripTypeParams = strip }
}

func WithBuiltinConversions(enabled bool) Option {
	return func(c *apis.Config) { c.BuiltinConversions = enabled }
}
