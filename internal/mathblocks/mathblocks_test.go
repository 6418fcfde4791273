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

package mathblocks_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirpx.dev/pxr"
	"dirpx.dev/pxr/blocks"
	"dirpx.dev/pxr/bridge"
	"dirpx.dev/pxr/internal/mathblocks"
	"dirpx.dev/pxr/logging"
	"dirpx.dev/pxr/managed"
	"dirpx.dev/pxr/object"
	"dirpx.dev/pxr/proxy"
)

func TestRegistrations(t *testing.T) {
	require.NoError(t, mathblocks.Err())
	for _, p := range []string{"/math/adder", "/math/scale", "/math/chain"} {
		assert.True(t, blocks.DoesBlockExist(p), p)
	}
	assert.False(t, blocks.DoesBlockExist("/math/nonexistent"))
}

func TestAdder(t *testing.T) {
	adder, err := blocks.Make("/math/adder", 2, 3)
	require.NoError(t, err)
	assert.Equal(t, "*math.Adder", adder.TypeName())

	sum, err := proxy.CallAs[int](adder, "add")
	require.NoError(t, err)
	assert.Equal(t, 5, sum)

	viaGet, err := proxy.Get[int](adder, "A")
	require.NoError(t, err)
	viaCall, err := proxy.CallAs[int](adder, "get:A")
	require.NoError(t, err)
	assert.Equal(t, viaCall, viaGet)

	require.NoError(t, adder.Set("B", 10))
	sum, err = proxy.CallAs[int](adder, "add")
	require.NoError(t, err)
	assert.Equal(t, 12, sum)

	a, err := proxy.Convert[*mathblocks.Adder](adder)
	require.NoError(t, err)
	assert.Equal(t, 12, a.Add())
}

func TestScaleConvertsNumbers(t *testing.T) {
	scale, err := blocks.Make("/math/scale", 2)
	require.NoError(t, err)

	y, err := proxy.CallAs[float64](scale, "apply", 1.5)
	require.NoError(t, err)
	assert.Equal(t, 3.0, y)

	n, err := proxy.CallAs[int](scale, "apply", 4)
	require.NoError(t, err)
	assert.Equal(t, 8, n)

	_, err = proxy.CallAs[int](scale, "apply", 0.25)
	assert.ErrorIs(t, err, object.ErrConversion)
}

func TestChain(t *testing.T) {
	chain, err := blocks.Make("/math/chain", 2, 3, 0.5)
	require.NoError(t, err)

	n, err := proxy.CallAs[int](chain, "len")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	y, err := proxy.CallAs[float64](chain, "apply", 1)
	require.NoError(t, err)
	assert.Equal(t, 3.0, y)

	_, err = blocks.Make("/math/chain")
	var me *blocks.MakeError
	require.ErrorAs(t, err, &me)
	assert.ErrorIs(t, err, mathblocks.ErrEmptyChain)

	e, err := blocks.Lookup("/math/chain")
	require.NoError(t, err)
	assert.Equal(t, blocks.CategoryTopology, e.Category)
}

func TestNoSuchMethodAndConversion(t *testing.T) {
	adder, err := blocks.Make("/math/adder", 1, 1)
	require.NoError(t, err)

	_, err = adder.Call("subtract")
	var nm *proxy.NoSuchMethodError
	require.ErrorAs(t, err, &nm)
	assert.Equal(t, "*math.Adder", nm.Type)
	assert.Equal(t, "subtract", nm.Name)

	host, err := proxy.Host()
	require.NoError(t, err)
	i, err := host.MakeProxy(42)
	require.NoError(t, err)
	_, err = proxy.Convert[string](i)
	var ce *object.ConversionError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "int", ce.From)
	assert.Equal(t, "string", ce.To)
}

func TestAdderOverBridge(t *testing.T) {
	env := bridge.New(bridge.NewServer(managed.New(), logging.Nop()))
	t.Cleanup(func() { _ = env.Close() })

	adder, err := blocks.MakeIn(env, "/math/adder", 20, 22)
	require.NoError(t, err)
	sum, err := proxy.CallAs[int](adder, "add")
	require.NoError(t, err)
	assert.Equal(t, 42, sum)

	local, err := proxy.Convert[*mathblocks.Adder](adder)
	require.NoError(t, err)
	assert.Equal(t, &mathblocks.Adder{A: 20, B: 22}, local)
	assert.Equal(t, "*math.Adder", pxr.TypeName(local))
}
