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

package converters

import (
	"errors"
	"fmt"
	"math"
	"reflect"

	"dirpx.dev/pxr/apis"
)

var (
	// ErrOutOfRange is wrapped by builtin conversions when a value does not
	// fit the target type.
	ErrOutOfRange = errors.New("pxr(converters): value out of range")
	// ErrInexact is wrapped by builtin conversions that would lose a
	// fractional or imaginary component.
	ErrInexact = errors.New("pxr(converters): value not exactly representable")
)

// Numbers lists the numeric types covered by the builtin conversions.
var Numbers = []reflect.Type{
	reflect.TypeFor[int](), reflect.TypeFor[int8](), reflect.TypeFor[int16](),
	reflect.TypeFor[int32](), reflect.TypeFor[int64](),
	reflect.TypeFor[uint](), reflect.TypeFor[uint8](), reflect.TypeFor[uint16](),
	reflect.TypeFor[uint32](), reflect.TypeFor[uint64](),
	reflect.TypeFor[float32](), reflect.TypeFor[float64](),
	reflect.TypeFor[complex64](), reflect.TypeFor[complex128](),
}

var (
	stringType = reflect.TypeFor[string]()
	bytesType  = reflect.TypeFor[[]byte]()
)

// Builtins returns the builtin conversion set:
//   - every ordered pair of distinct numeric types, range checked;
//   - the same pairs element-wise between slices of those types;
//   - string <-> []byte.
//
// There is deliberately no conversion between numbers and strings.
func Builtins() []apis.Conversion {
	out := make([]apis.Conversion, 0, 2*len(Numbers)*len(Numbers)+2)
	for _, from := range Numbers {
		for _, to := range Numbers {
			if from == to {
				continue
			}
			out = append(out,
				apis.Conversion{From: from, To: to, Func: scalar(to), Builtin: true},
				apis.Conversion{From: reflect.SliceOf(from), To: reflect.SliceOf(to), Func: vector(to), Builtin: true},
			)
		}
	}
	out = append(out,
		apis.Conversion{From: stringType, To: bytesType, Builtin: true,
			Func: func(v any) (any, error) { return []byte(v.(string)), nil }},
		apis.Conversion{From: bytesType, To: stringType, Builtin: true,
			Func: func(v any) (any, error) { return string(v.([]byte)), nil }},
	)
	return out
}

func scalar(to reflect.Type) apis.ConvertFunc {
	return func(v any) (any, error) {
		out, err := Number(reflect.ValueOf(v), to)
		if err != nil {
			return nil, err
		}
		return out.Interface(), nil
	}
}

func vector(to reflect.Type) apis.ConvertFunc {
	st := reflect.SliceOf(to)
	return func(v any) (any, error) {
		in := reflect.ValueOf(v)
		out := reflect.MakeSlice(st, in.Len(), in.Len())
		for i := 0; i < in.Len(); i++ {
			e, err := Number(in.Index(i), to)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			out.Index(i).Set(e)
		}
		return out.Interface(), nil
	}
}

// Number converts the numeric value in to type to (any int, uint, float or
// complex kind). Values that do not fit fail with ErrOutOfRange; dropping a
// fractional part or a non-zero imaginary part fails with ErrInexact.
func Number(in reflect.Value, to reflect.Type) (reflect.Value, error) {
	out := reflect.New(to).Elem()

	// Complex sources only reach real targets through their real part.
	if isComplex(in.Kind()) && !isComplex(to.Kind()) {
		c := in.Complex()
		if imag(c) != 0 {
			return out, fmt.Errorf("%w: %v has an imaginary component, cannot convert to %s", ErrInexact, c, to)
		}
		in = reflect.ValueOf(real(c))
	}

	switch k := to.Kind(); {
	case isComplex(k):
		switch {
		case isComplex(in.Kind()):
			out.SetComplex(in.Complex())
		default:
			out.SetComplex(complex(asFloat(in), 0))
		}

	case isFloat(k):
		f := asFloat(in)
		if out.OverflowFloat(f) {
			return out, rangeErr(in, to)
		}
		out.SetFloat(f)

	case isInt(k):
		var x int64
		switch {
		case isInt(in.Kind()):
			x = in.Int()
		case isUint(in.Kind()):
			u := in.Uint()
			if u > math.MaxInt64 {
				return out, rangeErr(in, to)
			}
			x = int64(u)
		default:
			f := in.Float()
			if err := integral(f, in, to); err != nil {
				return out, err
			}
			if f < math.MinInt64 || f >= math.MaxInt64 {
				return out, rangeErr(in, to)
			}
			x = int64(f)
		}
		if out.OverflowInt(x) {
			return out, rangeErr(in, to)
		}
		out.SetInt(x)

	case isUint(k):
		var u uint64
		switch {
		case isInt(in.Kind()):
			x := in.Int()
			if x < 0 {
				return out, rangeErr(in, to)
			}
			u = uint64(x)
		case isUint(in.Kind()):
			u = in.Uint()
		default:
			f := in.Float()
			if err := integral(f, in, to); err != nil {
				return out, err
			}
			if f < 0 || f >= math.MaxUint64 {
				return out, rangeErr(in, to)
			}
			u = uint64(f)
		}
		if out.OverflowUint(u) {
			return out, rangeErr(in, to)
		}
		out.SetUint(u)

	default:
		return out, fmt.Errorf("pxr(converters): %s is not a numeric type", to)
	}
	return out, nil
}

func integral(f float64, in reflect.Value, to reflect.Type) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return rangeErr(in, to)
	}
	if f != math.Trunc(f) {
		return fmt.Errorf("%w: %v has a fractional part, cannot convert to %s", ErrInexact, in, to)
	}
	return nil
}

func asFloat(v reflect.Value) float64 {
	switch k := v.Kind(); {
	case isInt(k):
		return float64(v.Int())
	case isUint(k):
		return float64(v.Uint())
	default:
		return v.Float()
	}
}

func rangeErr(in reflect.Value, to reflect.Type) error {
	return fmt.Errorf("%w: value %v out of range for output type %s", ErrOutOfRange, in, to)
}

func isInt(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Int64
}

func isUint(k reflect.Kind) bool {
	return k >= reflect.Uint && k <= reflect.Uintptr
}

func isFloat(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}

func isComplex(k reflect.Kind) bool {
	return k == reflect.Complex64 || k == reflect.Complex128
}
