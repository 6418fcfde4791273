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

package bridge_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirpx.dev/pxr"
	"dirpx.dev/pxr/bridge"
	"dirpx.dev/pxr/managed"
	"dirpx.dev/pxr/object"
	"dirpx.dev/pxr/proxy"
)

type point struct {
	X, Y int
}

type account struct {
	Balance int
}

func init() {
	if err := pxr.RegisterTypeOf[point]("bridgetest.Point"); err != nil {
		panic(err)
	}
	if err := pxr.RegisterTypeOf[account]("bridgetest.Account"); err != nil {
		panic(err)
	}
}

func newBridge(t *testing.T) (*bridge.Environment, *bridge.Server, *managed.Environment) {
	t.Helper()
	tbl := managed.NewClassTable()
	err := managed.NewClass[account]("test/Account").
		Constructor(func(b int) *account { return &account{Balance: b} }).
		Method("deposit", func(a *account, n int) int { a.Balance += n; return a.Balance }).
		Method("move", func(a *account, p point) point { return point{X: p.X + a.Balance, Y: p.Y} }).
		Field("Balance").
		CommitTo(tbl)
	require.NoError(t, err)

	inner := managed.New(managed.WithClasses(tbl))
	srv := bridge.NewServer(inner, nil)
	env := bridge.New(srv)
	t.Cleanup(func() { _ = env.Close() })
	return env, srv, inner
}

func TestBridge_RoundTripValues(t *testing.T) {
	env, _, _ := newBridge(t)

	tests := []struct {
		name string
		in   any
	}{
		{"int", 42},
		{"string", "hello"},
		{"float", 2.5},
		{"bool", true},
		{"bytes", []byte{1, 2, 3}},
		{"slice", []int{3, 1, 2}},
		{"map", map[string]float64{"a": 1.5}},
		{"registered struct", point{X: 1, Y: 2}},
		{"pointer to registered", &point{X: 3}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p, err := env.MakeProxy(tc.in)
			require.NoError(t, err)
			assert.Equal(t, pxr.TypeName(tc.in), p.TypeName())

			o, err := p.ToObject()
			require.NoError(t, err)
			assert.Equal(t, reflect.TypeOf(tc.in), o.Type())
			assert.Equal(t, tc.in, o.Value())
		})
	}
}

func TestBridge_Calls(t *testing.T) {
	env, _, _ := newBridge(t)

	cls, err := env.FindProxy("test/Account")
	require.NoError(t, err)
	acct, err := cls.Invoke(10)
	require.NoError(t, err)
	assert.Equal(t, bridge.Name, acct.Environment().Name())

	n, err := proxy.CallAs[int](acct, "deposit", 5)
	require.NoError(t, err)
	assert.Equal(t, 15, n)

	bal, err := proxy.Get[int](acct, "Balance")
	require.NoError(t, err)
	assert.Equal(t, 15, bal)

	moved, err := proxy.CallAs[point](acct, "move", point{X: 1, Y: 7})
	require.NoError(t, err)
	assert.Equal(t, point{X: 16, Y: 7}, moved)

	res, err := acct.Call("get:Balance")
	require.NoError(t, err)
	same, err := env.MakeProxy(res)
	require.NoError(t, err)
	assert.Equal(t, res.HandleID(), same.HandleID())
}

func TestBridge_ErrorsCrossTheBoundary(t *testing.T) {
	env, _, _ := newBridge(t)
	cls, err := env.FindProxy("test/Account")
	require.NoError(t, err)
	acct, err := cls.Invoke(1)
	require.NoError(t, err)

	_, err = acct.Call("withdraw", 1)
	var nm *proxy.NoSuchMethodError
	require.ErrorAs(t, err, &nm)
	assert.Equal(t, "withdraw", nm.Name)

	_, err = acct.Call("deposit", "lots")
	var ce *object.ConversionError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 0, ce.Arg)
	assert.Equal(t, "string", ce.From)
	assert.Equal(t, "int", ce.To)

	_, err = env.FindProxy("test/Missing")
	assert.ErrorIs(t, err, proxy.ErrNotFound)

	_, err = env.Handle(1 << 40)
	assert.ErrorIs(t, err, proxy.ErrInvalidHandle)

	_, err = env.MakeProxy(func() {})
	assert.ErrorIs(t, err, bridge.ErrNotMarshalable)

	type local struct{ A int }
	_, err = env.MakeProxy(local{A: 1})
	assert.ErrorIs(t, err, bridge.ErrNotMarshalable)
	// Server side codec failures keep their sentinel on the client.
	_, err = proxy.Convert[int](cls)
	assert.ErrorIs(t, err, bridge.ErrNotMarshalable)
}

func TestBridge_ForeignProxyArgument(t *testing.T) {
	env, _, _ := newBridge(t)
	other := managed.New()
	amount, err := other.MakeProxy(7)
	require.NoError(t, err)

	cls, err := env.FindProxy("test/Account")
	require.NoError(t, err)
	acct, err := cls.Invoke(amount)
	require.NoError(t, err)

	bal, err := proxy.Get[int](acct, "Balance")
	require.NoError(t, err)
	assert.Equal(t, 7, bal)

	local, err := other.MakeProxy(acct)
	require.NoError(t, err)
	assert.Equal(t, "*bridgetest.Account", local.TypeName())
}

func TestBridge_Release(t *testing.T) {
	env, srv, _ := newBridge(t)

	p, err := env.MakeProxy(1)
	require.NoError(t, err)
	q, err := env.MakeProxy(p)
	require.NoError(t, err)
	require.Equal(t, p.HandleID(), q.HandleID())
	before := env.Len()
	require.Positive(t, before)

	env.Release(p.HandleID())
	assert.Equal(t, before-1, env.Len())

	_, err = srv.RoundTrip(context.Background(), []byte{0xff})
	assert.Error(t, err)
}

func TestBridge_ServerClose(t *testing.T) {
	env, srv, inner := newBridge(t)
	p, err := env.MakeProxy(1)
	require.NoError(t, err)

	require.NoError(t, srv.Close())
	_, err = p.ToObject()
	var ee *proxy.EnvironmentExpiredError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, bridge.Name, ee.Env)
	assert.True(t, env.Expired())
	assert.False(t, inner.Expired())

	_, err = p.Call("()")
	assert.ErrorIs(t, err, proxy.ErrEnvironmentExpired)
}

type failing struct{}

func (failing) RoundTrip(context.Context, []byte) ([]byte, error) {
	return nil, errors.New("link down")
}

func TestBridge_TransportError(t *testing.T) {
	env := bridge.New(failing{})
	_, err := env.MakeProxy(1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "link down")
	assert.False(t, env.Expired())
	assert.Zero(t, env.Len())
}

func TestBridge_Factory(t *testing.T) {
	env, err := proxy.NewEnvironment(bridge.Name)
	require.NoError(t, err)
	p, err := env.MakeProxy("x")
	require.NoError(t, err)
	s, err := proxy.Convert[string](p)
	require.NoError(t, err)
	assert.Equal(t, "x", s)

	require.NoError(t, env.Close())
	assert.True(t, env.Expired())
	_, err = env.MakeProxy(1)
	assert.ErrorIs(t, err, proxy.ErrEnvironmentExpired)
}

func TestResolveType(t *testing.T) {
	tests := []struct {
		name string
		want reflect.Type
	}{
		{"int", reflect.TypeFor[int]()},
		{"*int", reflect.TypeFor[*int]()},
		{"[]uint8", reflect.TypeFor[[]byte]()},
		{"[3]string", reflect.TypeFor[[3]string]()},
		{"map[string][]int", reflect.TypeFor[map[string][]int]()},
		{"bridgetest.Point", reflect.TypeFor[point]()},
		{"[]*bridgetest.Point", reflect.TypeFor[[]*point]()},
	}
	for _, tc := range tests {
		got, err := bridge.ResolveType(tc.name)
		require.NoError(t, err, tc.name)
		assert.Equal(t, tc.want, got, tc.name)
	}

	for _, bad := range []string{"", "nope.T", "map[string", "[x]int", "chan int"} {
		_, err := bridge.ResolveType(bad)
		assert.ErrorIs(t, err, bridge.ErrUnknownType, bad)
	}
}
