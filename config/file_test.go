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

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"dirpx.dev/pxr/apis"
	"dirpx.dev/pxr/config"
	"dirpx.dev/pxr/logging"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pxr.toml")
	data := `
[types]
max_depth = 4
full_pkg_path = true

[log]
level = "debug"
format = "json"
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	f, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if f.Path != path {
		t.Fatalf("Path = %q, want %q", f.Path, path)
	}

	want := apis.Config{
		MaxDepth:           4,
		FullPkgPath:        true,
		StripTypeParams:    false,
		BuiltinConversions: true,
	}
	if diff := cmp.Diff(want, f.Config()); diff != "" {
		t.Fatalf("Config() mismatch (-want +got):\n%s", diff)
	}

	lc := f.LoggerConfig()
	if lc.Level != logging.LogLevelDebug || lc.Format != "json" {
		t.Fatalf("LoggerConfig() = %+v, want debug/json", lc)
	}
}

func TestParse_Errors(t *testing.T) {
	cases := map[string]string{
		"unknown key":    "[types]\nmax_deep = 3\n",
		"bad level":      "[log]\nlevel = \"loud\"\n",
		"bad format":     "[log]\nformat = \"xml\"\n",
		"malformed toml": "[types\n",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := config.Parse([]byte(data)); err == nil {
				t.Fatalf("Parse(%q): expected error", data)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := config.Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatal("Load(missing): expected error")
	}
}

func TestParse_EmptyKeepsDefaults(t *testing.T) {
	f, err := config.Parse(nil)
	if err != nil {
		t.Fatalf("Parse(empty): %v", err)
	}
	if got := f.Config(); got != config.DefaultConfig() {
		t.Fatalf("Config() = %+v, want defaults", got)
	}
}
