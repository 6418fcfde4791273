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

package reflect

import (
	"errors"
	"path"
	"reflect"
	"strconv"
	"strings"

	"dirpx.dev/pxr/apis"
	"dirpx.dev/pxr/config"
)

var (
	// ErrReflectNilType is returned when a nil reflect.Type is provided.
	ErrReflectNilType = errors.New("reflect: nil reflect.Type provided")
	// ErrReflectTooDeep indicates that a composite type nests deeper than
	// Config.MaxDepth allows.
	ErrReflectTooDeep = errors.New("reflect: type nesting exceeds MaxDepth")
)

// LeafFunc overrides the identifier of a named type. It is consulted for
// every named type reached while naming a composite type, so a registered
// alias for T also shows up in "*T", "[]T" and "map[string]T".
type LeafFunc func(t reflect.Type) (name string, ok bool)

// Name returns the canonical identifier of t.
//
// Naming policy:
//   - named types: "pkg.Name" (last import path element, or the full path
//     with Config.FullPkgPath); builtins keep their bare name ("int");
//     generic arguments are kept unless Config.StripTypeParams is set.
//   - composites are spelled the way Go spells them: "*T", "[]T", "[4]T",
//     "map[K]V", "chan T", "func(A, B) R".
//   - the empty interface is "any"; other unnamed interfaces and structs
//     use reflect's own spelling.
//
// If MaxDepth <= 0, DefaultMaxDepth is used.
func Name(t reflect.Type, cfg apis.Config, leaf LeafFunc) (string, error) {
	if t == nil {
		return "", ErrReflectNilType
	}
	depth := cfg.MaxDepth
	if depth <= 0 {
		depth = config.DefaultMaxDepth
	}
	var b strings.Builder
	if err := writeName(&b, t, cfg, leaf, depth); err != nil {
		return "", err
	}
	return b.String(), nil
}

func writeName(b *strings.Builder, t reflect.Type, cfg apis.Config, leaf LeafFunc, depth int) error {
	if depth < 0 {
		return ErrReflectTooDeep
	}

	if t.Name() != "" {
		if leaf != nil {
			if name, ok := leaf(t); ok {
				b.WriteString(name)
				return nil
			}
		}
		b.WriteString(namedType(t, cfg))
		return nil
	}

	switch t.Kind() {
	case reflect.Pointer:
		b.WriteByte('*')
		return writeName(b, t.Elem(), cfg, leaf, depth-1)

	case reflect.Slice:
		b.WriteString("[]")
		return writeName(b, t.Elem(), cfg, leaf, depth-1)

	case reflect.Array:
		b.WriteByte('[')
		b.WriteString(strconv.Itoa(t.Len()))
		b.WriteByte(']')
		return writeName(b, t.Elem(), cfg, leaf, depth-1)

	case reflect.Chan:
		switch t.ChanDir() {
		case reflect.RecvDir:
			b.WriteString("<-chan ")
		case reflect.SendDir:
			b.WriteString("chan<- ")
		default:
			b.WriteString("chan ")
		}
		return writeName(b, t.Elem(), cfg, leaf, depth-1)

	case reflect.Map:
		b.WriteString("map[")
		if err := writeName(b, t.Key(), cfg, leaf, depth-1); err != nil {
			return err
		}
		b.WriteByte(']')
		return writeName(b, t.Elem(), cfg, leaf, depth-1)

	case reflect.Func:
		b.WriteString("func(")
		for i := 0; i < t.NumIn(); i++ {
			if i > 0 {
				b.WriteString(", ")
			}
			in := t.In(i)
			if t.IsVariadic() && i == t.NumIn()-1 {
				b.WriteString("...")
				in = in.Elem()
			}
			if err := writeName(b, in, cfg, leaf, depth-1); err != nil {
				return err
			}
		}
		b.WriteByte(')')
		switch t.NumOut() {
		case 0:
		case 1:
			b.WriteByte(' ')
			return writeName(b, t.Out(0), cfg, leaf, depth-1)
		default:
			b.WriteString(" (")
			for i := 0; i < t.NumOut(); i++ {
				if i > 0 {
					b.WriteString(", ")
				}
				if err := writeName(b, t.Out(i), cfg, leaf, depth-1); err != nil {
					return err
				}
			}
			b.WriteByte(')')
		}
		return nil

	case reflect.Interface:
		if t.NumMethod() == 0 {
			b.WriteString("any")
			return nil
		}
		b.WriteString(t.String())
		return nil

	default:
		// Unnamed structs and anything exotic.
		b.WriteString(t.String())
		return nil
	}
}

// namedType renders a named type according to cfg.
func namedType(t reflect.Type, cfg apis.Config) string {
	name := t.Name()
	if cfg.StripTypeParams {
		name = StripTypeParams(name)
	} else if !cfg.FullPkgPath {
		name = shortenTypeArgs(name)
	}
	p := t.PkgPath()
	if p == "" {
		// Builtin or predeclared ("int", "error").
		return name
	}
	if !cfg.FullPkgPath {
		p = path.Base(p)
	}
	return p + "." + name
}

// StripTypeParams removes generic type instantiation suffix: "T[int,string]" -> "T".
func StripTypeParams(s string) string {
	if i := strings.IndexByte(s, '['); i >= 0 {
		return s[:i]
	}
	return s
}

// shortenTypeArgs rewrites import paths inside generic arguments the same
// way named types are shortened: "Box[dirpx.dev/pxr/blocks.Adder]" ->
// "Box[blocks.Adder]".
func shortenTypeArgs(s string) string {
	i := strings.IndexByte(s, '[')
	if i < 0 || !strings.ContainsRune(s[i:], '/') {
		return s
	}
	var b strings.Builder
	b.WriteString(s[:i])
	seg := i
	flush := func(end int) {
		tok := s[seg:end]
		if j := strings.LastIndexByte(tok, '/'); j >= 0 {
			tok = tok[j+1:]
		}
		b.WriteString(tok)
	}
	for j := i; j < len(s); j++ {
		switch s[j] {
		case '[', ']', ',', '*', ' ', '(', ')':
			flush(j)
			b.WriteByte(s[j])
			seg = j + 1
		}
	}
	flush(len(s))
	return b.String()
}
