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

package bridge

import (
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"dirpx.dev/pxr/object"
	"dirpx.dev/pxr/proxy"
)

var encMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("pxr(bridge): failed to create CBOR enc mode: %v", err))
	}
	encMode = em
}

// Request operations.
const (
	opMake    = "make"
	opCall    = "call"
	opFind    = "find"
	opFetch   = "fetch"
	opStat    = "stat"
	opRelease = "release"
	opLen     = "len"
)

// value is a value crossing the boundary: either a reference to a handle
// in the server's handle space, or a type identifier with a CBOR payload.
type value struct {
	Ref  uint64          `cbor:"1,keyasint,omitempty"`
	Type string          `cbor:"2,keyasint,omitempty"`
	Data cbor.RawMessage `cbor:"3,keyasint,omitempty"`
}

type request struct {
	Op     string  `cbor:"1,keyasint"`
	Handle uint64  `cbor:"2,keyasint,omitempty"`
	Name   string  `cbor:"3,keyasint,omitempty"`
	Args   []value `cbor:"4,keyasint,omitempty"`
}

type response struct {
	Handle   uint64     `cbor:"1,keyasint,omitempty"`
	Value    *value     `cbor:"2,keyasint,omitempty"`
	Type     string     `cbor:"3,keyasint,omitempty"`
	ObjectID uint64     `cbor:"4,keyasint,omitempty"`
	Len      int        `cbor:"5,keyasint,omitempty"`
	Err      *wireError `cbor:"6,keyasint,omitempty"`
}

// Error kinds carried in a wireError.
const (
	kindConversion    = "conversion"
	kindNoSuchMethod  = "no-such-method"
	kindNullProxy     = "null-proxy"
	kindExpired       = "expired"
	kindInvalidHandle = "invalid-handle"
	kindNotFound      = "not-found"
	kindNotMarshal    = "not-marshalable"
	kindUnknownType   = "unknown-type"
	kindOther         = "other"
)

// wireError carries the proxy error taxonomy across the boundary so that
// errors.Is and errors.As behave on the client as they do on the server.
type wireError struct {
	Kind  string `cbor:"1,keyasint"`
	Msg   string `cbor:"2,keyasint,omitempty"`
	From  string `cbor:"3,keyasint,omitempty"`
	To    string `cbor:"4,keyasint,omitempty"`
	Arg   int    `cbor:"5,keyasint,omitempty"`
	Type  string `cbor:"6,keyasint,omitempty"`
	Name  string `cbor:"7,keyasint,omitempty"`
	// Cause is the codec kind behind a conversion failure, if any.
	Cause string `cbor:"8,keyasint,omitempty"`
}

// RemoteError is a server side error with no proxy counterpart.
type RemoteError struct {
	// Msg is the server's error text.
	Msg string
}

func (e *RemoteError) Error() string { return "pxr(bridge): remote: " + e.Msg }

func toWire(err error) *wireError {
	if err == nil {
		return nil
	}
	var (
		ce *object.ConversionError
		nm *proxy.NoSuchMethodError
		np *proxy.NullProxyError
	)
	switch {
	case errors.As(err, &ce):
		w := &wireError{Kind: kindConversion, From: ce.From, To: ce.To, Arg: ce.Arg}
		if ce.Err != nil {
			w.Msg = ce.Err.Error()
			w.Cause = codecKind(ce.Err)
		}
		return w
	case errors.As(err, &nm):
		return &wireError{Kind: kindNoSuchMethod, Type: nm.Type, Name: nm.Name}
	case errors.As(err, &np):
		return &wireError{Kind: kindNullProxy, Name: np.Op}
	case errors.Is(err, proxy.ErrEnvironmentExpired):
		return &wireError{Kind: kindExpired, Msg: err.Error()}
	case errors.Is(err, proxy.ErrInvalidHandle):
		return &wireError{Kind: kindInvalidHandle, Msg: err.Error()}
	case errors.Is(err, proxy.ErrNotFound):
		return &wireError{Kind: kindNotFound, Msg: err.Error()}
	}
	if k := codecKind(err); k != "" {
		return &wireError{Kind: k, Msg: err.Error()}
	}
	return &wireError{Kind: kindOther, Msg: err.Error()}
}

func codecKind(err error) string {
	switch {
	case errors.Is(err, ErrNotMarshalable):
		return kindNotMarshal
	case errors.Is(err, ErrUnknownType):
		return kindUnknownType
	}
	return ""
}

// codecErr rebuilds a codec error of kind k around the server's message.
func codecErr(k, msg string) error {
	switch k {
	case kindNotMarshal:
		return fmt.Errorf("%w: remote: %s", ErrNotMarshalable, msg)
	case kindUnknownType:
		return fmt.Errorf("%w: remote: %s", ErrUnknownType, msg)
	}
	return nil
}

func (w *wireError) err() error {
	switch w.Kind {
	case kindConversion:
		ce := &object.ConversionError{From: w.From, To: w.To, Arg: w.Arg}
		if err := codecErr(w.Cause, w.Msg); err != nil {
			ce.Err = err
		} else if w.Msg != "" {
			ce.Err = &RemoteError{Msg: w.Msg}
		}
		return ce
	case kindNoSuchMethod:
		return &proxy.NoSuchMethodError{Type: w.Type, Name: w.Name}
	case kindNullProxy:
		return &proxy.NullProxyError{Op: w.Name}
	case kindExpired:
		return &proxy.EnvironmentExpiredError{Env: Name}
	case kindInvalidHandle:
		return fmt.Errorf("%w: %s", proxy.ErrInvalidHandle, w.Msg)
	case kindNotFound:
		return fmt.Errorf("%w: %s", proxy.ErrNotFound, w.Msg)
	case kindNotMarshal, kindUnknownType:
		return codecErr(w.Kind, w.Msg)
	}
	return &RemoteError{Msg: w.Msg}
}
