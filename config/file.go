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
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"dirpx.dev/pxr/apis"
	"dirpx.dev/pxr/logging"
)

// File is the on-disk configuration of a host process (pxr.toml).
//
//	[types]
//	max_depth = 8
//	full_pkg_path = false
//	strip_type_params = false
//	builtin_conversions = true
//
//	[log]
//	level = "warn"
//	format = "text"
type File struct {
	Types Types `toml:"types"`
	Log   Log   `toml:"log"`

	// Path is the file the configuration was read from (set at load time).
	Path string `toml:"-"`
}

// Types mirrors apis.Config. Pointers distinguish "unset" from false/zero.
type Types struct {
	MaxDepth           *int  `toml:"max_depth"`
	FullPkgPath        *bool `toml:"full_pkg_path"`
	StripTypeParams    *bool `toml:"strip_type_params"`
	BuiltinConversions *bool `toml:"builtin_conversions"`
}

// Log configures the logging sink.
type Log struct {
	Level     string `toml:"level"`
	Format    string `toml:"format"`
	AddSource bool   `toml:"add_source"`
}

// Load parses a TOML configuration file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("pxr(config): cannot read %s: %w", path, err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("pxr(config): parse error in %s: %w", path, err)
	}
	f.Path = path
	return f, nil
}

// Parse decodes TOML configuration from data. Unknown keys are rejected so
// that typos do not silently fall back to defaults.
func Parse(data []byte) (*File, error) {
	var f File
	md, err := toml.Decode(string(data), &f)
	if err != nil {
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown key %q", undecoded[0].String())
	}
	if _, err := logging.ParseLevel(f.Log.Level); err != nil {
		return nil, err
	}
	switch f.Log.Format {
	case "", "text", "json":
	default:
		return nil, fmt.Errorf("unknown log format %q", f.Log.Format)
	}
	return &f, nil
}

// Config returns the apis.Config described by the file; unset keys keep
// their defaults.
func (f *File) Config() apis.Config {
	var opts []Option
	if v := f.Types.MaxDepth; v != nil {
		opts = append(opts, WithMaxDepth(*v))
	}
	if v := f.Types.FullPkgPath; v != nil {
		opts = append(opts, WithFullPkgPath(*v))
	}
	if v := f.Types.StripTypeParams; v != nil {
		opts = append(opts, WithStripTypeParams(*v))
	}
	if v := f.Types.BuiltinConversions; v != nil {
		opts = append(opts, WithBuiltinConversions(*v))
	}
	return NewConfig(opts...)
}

// LoggerConfig returns the logging configuration described by the file.
func (f *File) LoggerConfig() *logging.LoggerConfig {
	cfg := logging.DefaultLoggerConfig()
	if f.Log.Level != "" {
		// Parse validated the level already.
		cfg.Level, _ = logging.ParseLevel(f.Log.Level)
	}
	if f.Log.Format != "" {
		cfg.Format = f.Log.Format
	}
	cfg.AddSource = f.Log.AddSource
	return cfg
}
