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

package blocks

import (
	"fmt"
	"reflect"
)

// Block is a processing element. Types become Blocks by embedding
// BlockBase.
type Block interface {
	blockElement()
}

// Topology is a sub-graph of elements. Types become Topologies by
// embedding TopologyBase.
type Topology interface {
	topologyElement()
}

// BlockBase marks the embedding type as a Block.
type BlockBase struct{}

func (BlockBase) blockElement() {}

// TopologyBase marks the embedding type as a Topology.
type TopologyBase struct{}

func (TopologyBase) topologyElement() {}

// Category is the element kind a factory produces.
type Category int

const (
	// CategoryBlock is a factory returning a Block.
	CategoryBlock Category = iota + 1
	// CategoryTopology is a factory returning a Topology.
	CategoryTopology
)

func (c Category) String() string {
	switch c {
	case CategoryBlock:
		return "block"
	case CategoryTopology:
		return "topology"
	}
	return fmt.Sprintf("Category(%d)", int(c))
}

var (
	blockType    = reflect.TypeFor[Block]()
	topologyType = reflect.TypeFor[Topology]()
)

// CategoryOf returns the category of values of type t. A type that is both
// a Block and a Topology is rejected as ambiguous.
func CategoryOf(t reflect.Type) (Category, bool) {
	if t == nil {
		return 0, false
	}
	b, tp := t.Implements(blockType), t.Implements(topologyType)
	switch {
	case b && !tp:
		return CategoryBlock, true
	case tp && !b:
		return CategoryTopology, true
	}
	return 0, false
}
