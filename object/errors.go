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

package object

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrConversion matches every *ConversionError via errors.Is.
var ErrConversion = errors.New("pxr(object): conversion failed")

// ConversionError reports that a value of type From could not be converted
// to type To. Names are type identifiers as printed by pxr.TypeNameOf.
type ConversionError struct {
	// From is the source type identifier ("null" for the null object,
	// "missing" for an absent argument).
	From string
	// To is the target type identifier ("none" for a surplus argument).
	To string
	// Arg is the zero-based argument index, or -1 when the conversion was
	// not for a call argument.
	Arg int
	// Err is the converter's error, if the conversion was attempted.
	Err error
}

// NewConversionError builds a *ConversionError that is not tied to an
// argument.
func NewConversionError(from, to reflect.Type, err error) *ConversionError {
	return &ConversionError{From: TypeNameOf(from), To: TypeNameOf(to), Arg: -1, Err: err}
}

// ArgumentError ties err to argument i. A *ConversionError is copied with
// Arg set; other errors are wrapped into one with unknown types.
func ArgumentError(i int, err error) *ConversionError {
	var ce *ConversionError
	if errors.As(err, &ce) {
		cp := *ce
		cp.Arg = i
		return &cp
	}
	return &ConversionError{From: "unknown", To: "unknown", Arg: i, Err: err}
}

func (e *ConversionError) Error() string {
	var msg string
	if e.Arg >= 0 {
		msg = fmt.Sprintf("pxr(object): argument %d: cannot convert %s to %s", e.Arg, e.From, e.To)
	} else {
		msg = fmt.Sprintf("pxr(object): cannot convert %s to %s", e.From, e.To)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the converter's error.
func (e *ConversionError) Unwrap() error {
	return e.Err
}

// Is matches ErrConversion.
func (e *ConversionError) Is(target error) bool {
	return target == ErrConversion
}
