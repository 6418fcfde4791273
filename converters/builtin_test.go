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

package converters_test

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/google/go-cmp/cmp"

	"dirpx.dev/pxr/converters"
)

func convert[T any](t *testing.T, v any) (T, error) {
	t.Helper()
	var zero T
	fn, ok := converters.WithBuiltins().Lookup(reflect.TypeOf(v), reflect.TypeFor[T]())
	if !ok {
		t.Fatalf("no builtin conversion %T -> %v", v, reflect.TypeFor[T]())
	}
	out, err := fn(v)
	if err != nil {
		return zero, err
	}
	return out.(T), nil
}

func TestBuiltins_NumericInRange(t *testing.T) {
	if got, err := convert[int8](t, 127); err != nil || got != 127 {
		t.Fatalf("int->int8: got (%v,%v), want (127,nil)", got, err)
	}
	if got, err := convert[uint16](t, int64(65535)); err != nil || got != 65535 {
		t.Fatalf("int64->uint16: got (%v,%v), want (65535,nil)", got, err)
	}
	if got, err := convert[int](t, 3.0); err != nil || got != 3 {
		t.Fatalf("float64->int: got (%v,%v), want (3,nil)", got, err)
	}
	if got, err := convert[float32](t, 1.5); err != nil || got != 1.5 {
		t.Fatalf("float64->float32: got (%v,%v), want (1.5,nil)", got, err)
	}
	if got, err := convert[complex128](t, 2); err != nil || got != complex(2, 0) {
		t.Fatalf("int->complex128: got (%v,%v), want ((2+0i),nil)", got, err)
	}
	if got, err := convert[int](t, complex(4, 0)); err != nil || got != 4 {
		t.Fatalf("complex128->int: got (%v,%v), want (4,nil)", got, err)
	}
	if got, err := convert[complex64](t, complex(1, -1)); err != nil || got != complex64(complex(1, -1)) {
		t.Fatalf("complex128->complex64: got (%v,%v)", got, err)
	}
	if got, err := convert[uint8](t, uint64(200)); err != nil || got != 200 {
		t.Fatalf("uint64->uint8: got (%v,%v), want (200,nil)", got, err)
	}
}

func TestBuiltins_OutOfRange(t *testing.T) {
	cases := []struct {
		name string
		run  func() error
		want error
	}{
		{"int->int8 overflow", func() error { _, err := convert[int8](t, 128); return err }, converters.ErrOutOfRange},
		{"int->uint negative", func() error { _, err := convert[uint](t, -1); return err }, converters.ErrOutOfRange},
		{"uint64->int64 overflow", func() error { _, err := convert[int64](t, uint64(math.MaxUint64)); return err }, converters.ErrOutOfRange},
		{"float64->float32 overflow", func() error { _, err := convert[float32](t, 1e300); return err }, converters.ErrOutOfRange},
		{"float64->int NaN", func() error { _, err := convert[int](t, math.NaN()); return err }, converters.ErrOutOfRange},
		{"float64->int32 overflow", func() error { _, err := convert[int32](t, 1e10); return err }, converters.ErrOutOfRange},
		{"float64->int fraction", func() error { _, err := convert[int](t, 1.5); return err }, converters.ErrInexact},
		{"complex->float imaginary", func() error { _, err := convert[float64](t, complex(1, 1)); return err }, converters.ErrInexact},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.run(); !errors.Is(err, tc.want) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
		})
	}
}

func TestBuiltins_Slices(t *testing.T) {
	got, err := convert[[]float64](t, []int{1, 2, 3})
	if err != nil {
		t.Fatalf("[]int->[]float64: %v", err)
	}
	if diff := cmp.Diff([]float64{1, 2, 3}, got); diff != "" {
		t.Fatalf("[]int->[]float64 mismatch (-want +got):\n%s", diff)
	}

	_, err = convert[[]uint8](t, []int{1, 256})
	if !errors.Is(err, converters.ErrOutOfRange) {
		t.Fatalf("[]int->[]uint8: want ErrOutOfRange, got %v", err)
	}
}

func TestBuiltins_StringBytes(t *testing.T) {
	b, err := convert[[]byte](t, "hi")
	if err != nil || string(b) != "hi" {
		t.Fatalf("string->[]byte: got (%q,%v)", b, err)
	}
	s, err := convert[string](t, []byte("yo"))
	if err != nil || s != "yo" {
		t.Fatalf("[]byte->string: got (%q,%v)", s, err)
	}
}

func TestBuiltins_NoNumberToString(t *testing.T) {
	tab := converters.WithBuiltins()
	if _, ok := tab.Lookup(reflect.TypeFor[int](), reflect.TypeFor[string]()); ok {
		t.Fatal("int -> string must not be a builtin conversion")
	}
	if _, ok := tab.Lookup(reflect.TypeFor[string](), reflect.TypeFor[int]()); ok {
		t.Fatal("string -> int must not be a builtin conversion")
	}
}
