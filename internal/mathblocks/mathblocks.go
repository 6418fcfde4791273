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

// Package mathblocks registers a few arithmetic elements with the default
// block registry. Importing it for side effects makes them available:
//
//	import _ "dirpx.dev/pxr/internal/mathblocks"
package mathblocks

import (
	"errors"

	"dirpx.dev/pxr"
	"dirpx.dev/pxr/blocks"
	"dirpx.dev/pxr/managed"
)

// Adder sums two integers.
type Adder struct {
	blocks.BlockBase
	A, B int
}

// NewAdder returns an Adder for a and b.
func NewAdder(a, b int) *Adder { return &Adder{A: a, B: b} }

// Add returns A + B.
func (a *Adder) Add() int { return a.A + a.B }

// Scale multiplies its input by Factor.
type Scale struct {
	blocks.BlockBase
	Factor float64
}

// NewScale returns a Scale with the given factor.
func NewScale(factor float64) *Scale { return &Scale{Factor: factor} }

// Apply returns x * Factor.
func (s *Scale) Apply(x float64) float64 { return x * s.Factor }

// Chain applies a sequence of Scales.
type Chain struct {
	blocks.TopologyBase
	Stages []*Scale
}

// ErrEmptyChain is returned by NewChain without factors.
var ErrEmptyChain = errors.New("mathblocks: chain needs at least one stage")

// NewChain builds one Scale per factor.
func NewChain(factors ...float64) (*Chain, error) {
	if len(factors) == 0 {
		return nil, ErrEmptyChain
	}
	c := &Chain{Stages: make([]*Scale, len(factors))}
	for i, f := range factors {
		c.Stages[i] = NewScale(f)
	}
	return c, nil
}

// Apply runs x through every stage in order.
func (c *Chain) Apply(x float64) float64 {
	for _, s := range c.Stages {
		x = s.Apply(x)
	}
	return x
}

// Len returns the number of stages.
func (c *Chain) Len() int { return len(c.Stages) }

var registrations = []blocks.Registration{
	blocks.Register("/math/adder", NewAdder),
	blocks.Register("/math/scale", NewScale),
	blocks.Register("/math/chain", NewChain),
}

func init() {
	must(pxr.RegisterTypeOf[Adder]("math.Adder"))
	must(pxr.RegisterTypeOf[Scale]("math.Scale"))
	must(pxr.RegisterTypeOf[Chain]("math.Chain"))

	must(managed.NewClass[Adder]("math/Adder").
		Constructor(NewAdder).
		Method("add", (*Adder).Add).
		Field("A").
		Field("B").
		Commit())
	must(managed.NewClass[Scale]("math/Scale").
		Constructor(NewScale).
		Method("apply", (*Scale).Apply).
		Field("Factor").
		Commit())
	must(managed.NewClass[Chain]("math/Chain").
		Constructor(NewChain).
		Method("apply", (*Chain).Apply).
		Method("len", (*Chain).Len).
		Commit())
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// Err joins the errors of registrations that did not take effect.
func Err() error {
	var errs []error
	for _, r := range registrations {
		errs = append(errs, r.Err)
	}
	return errors.Join(errs...)
}
