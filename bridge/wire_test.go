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
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirpx.dev/pxr/object"
	"dirpx.dev/pxr/proxy"
)

// crossed sends err through the wire encoding and back.
func crossed(t *testing.T, err error) error {
	t.Helper()
	data, merr := encMode.Marshal(toWire(err))
	require.NoError(t, merr)
	var w wireError
	require.NoError(t, cbor.Unmarshal(data, &w))
	return w.err()
}

func TestWireError_Sentinels(t *testing.T) {
	tests := []struct {
		err  error
		want error
	}{
		{fmt.Errorf("%w: func()", ErrNotMarshalable), ErrNotMarshalable},
		{fmt.Errorf("%w: %q", ErrUnknownType, "geo.Nowhere"), ErrUnknownType},
		{fmt.Errorf("%w: 9", proxy.ErrInvalidHandle), proxy.ErrInvalidHandle},
		{&proxy.EnvironmentExpiredError{Env: "managed"}, proxy.ErrEnvironmentExpired},
		{object.ArgumentError(2, fmt.Errorf("%w: chan int", ErrNotMarshalable)), ErrNotMarshalable},
	}
	for _, tc := range tests {
		got := crossed(t, tc.err)
		assert.ErrorIs(t, got, tc.want, "%v", tc.err)
	}

	other := crossed(t, errors.New("disk on fire"))
	var re *RemoteError
	require.ErrorAs(t, other, &re)
	assert.Equal(t, "disk on fire", re.Msg)
}

func TestWireError_ConversionKeepsArgument(t *testing.T) {
	got := crossed(t, object.ArgumentError(2, fmt.Errorf("%w: chan int", ErrUnknownType)))
	var ce *object.ConversionError
	require.ErrorAs(t, got, &ce)
	assert.Equal(t, 2, ce.Arg)
	assert.ErrorIs(t, got, ErrUnknownType)
	assert.ErrorIs(t, got, object.ErrConversion)
}
