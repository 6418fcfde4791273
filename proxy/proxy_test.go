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

package proxy_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirpx.dev/pxr/managed"
	"dirpx.dev/pxr/object"
	"dirpx.dev/pxr/proxy"
)

func TestProxy_Null(t *testing.T) {
	var p proxy.Proxy
	assert.True(t, p.IsNull())
	assert.Nil(t, p.Environment())
	assert.Zero(t, p.HandleID())
	assert.Equal(t, "null", p.TypeName())
	assert.Equal(t, "null", p.String())
	assert.True(t, p.Equal(proxy.Proxy{}))

	_, err := p.Call("anything")
	var ne *proxy.NullProxyError
	require.ErrorAs(t, err, &ne)
	assert.Equal(t, "anything", ne.Op)

	_, err = p.ToObject()
	assert.ErrorIs(t, err, proxy.ErrNullProxy)
	_, err = proxy.Get[int](p, "x")
	assert.ErrorIs(t, err, proxy.ErrNullProxy)
}

func TestProxy_CallWrapsArguments(t *testing.T) {
	env := managed.New()
	join, err := env.MakeProxy(func(a string, b int, c object.Object) string {
		return a + ":" + c.TypeName()
	})
	require.NoError(t, err)

	arg, err := env.MakeProxy(3.5)
	require.NoError(t, err)
	s, err := proxy.CallAs[string](join, "()", "x", 1, arg)
	require.NoError(t, err)
	assert.Equal(t, "x:float64", s)

	_, err = join.Invoke("x", "y", nil)
	var ce *object.ConversionError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 1, ce.Arg)
}

func TestProxy_CallAsProxyPassthrough(t *testing.T) {
	env := managed.New()
	f, err := env.MakeProxy(func() []int { return []int{1, 2} })
	require.NoError(t, err)

	res, err := proxy.CallAs[proxy.Proxy](f, "()")
	require.NoError(t, err)
	assert.Same(t, env, res.Environment())
	assert.Equal(t, "[]int", res.TypeName())

	xs, err := proxy.Convert[[]int](res)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, xs)

	same, err := proxy.Convert[proxy.Proxy](res)
	require.NoError(t, err)
	assert.True(t, same.Equal(res))

	_, err = proxy.Convert[string](res)
	assert.ErrorIs(t, err, object.ErrConversion)
}

func TestProxy_ForeignArgument(t *testing.T) {
	a, b := managed.New(), managed.New()
	val, err := a.MakeProxy(21)
	require.NoError(t, err)
	double, err := b.MakeProxy(func(n int) int { return 2 * n })
	require.NoError(t, err)

	n, err := proxy.CallAs[int](double, "()", val)
	require.NoError(t, err)
	assert.Equal(t, 42, n)
}

func TestProxy_EqualAcrossEnvironments(t *testing.T) {
	a, b := managed.New(), managed.New()
	p, err := a.MakeProxy("v")
	require.NoError(t, err)
	o, err := p.ToObject()
	require.NoError(t, err)

	q, err := b.MakeProxy(o)
	require.NoError(t, err)
	assert.False(t, p.Equal(q))

	r, err := a.MakeProxy(o)
	require.NoError(t, err)
	assert.True(t, p.Equal(r))
	assert.Equal(t, "v", r.String())
}

func TestProxy_CallContext(t *testing.T) {
	env := managed.New()
	f, err := env.MakeProxy(func() error { return context.Canceled })
	require.NoError(t, err)

	_, err = f.CallContext(context.Background(), "()")
	assert.True(t, errors.Is(err, context.Canceled))

	v, err := proxy.CallAsContext[proxy.Proxy](context.Background(), f, "()")
	require.Error(t, err)
	assert.True(t, v.IsNull())
}

func TestProxy_Expired(t *testing.T) {
	env := managed.New()
	p, err := env.MakeProxy(1)
	require.NoError(t, err)
	require.NoError(t, env.Close())

	_, err = p.Call("()")
	assert.ErrorIs(t, err, proxy.ErrEnvironmentExpired)
	assert.Equal(t, "", p.TypeName())
	assert.Contains(t, p.String(), "managed handle")
}

func TestProxy_UnwrappableArgument(t *testing.T) {
	a, b := managed.New(), managed.New()
	val, err := a.MakeProxy(21)
	require.NoError(t, err)
	double, err := b.MakeProxy(func(n int) int { return 2 * n })
	require.NoError(t, err)

	a.Release(val.HandleID())
	_, err = double.Call("()", 1, val)
	var ce *object.ConversionError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 1, ce.Arg)
	assert.ErrorIs(t, err, proxy.ErrInvalidHandle)

	// An expired owner is reported as such, not as a conversion.
	c := managed.New()
	gone, err := c.MakeProxy(1)
	require.NoError(t, err)
	require.NoError(t, c.Close())
	_, err = double.Call("()", gone)
	assert.ErrorIs(t, err, proxy.ErrEnvironmentExpired)
	assert.NotErrorIs(t, err, object.ErrConversion)
}
