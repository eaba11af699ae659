// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package graph

import (
	"fmt"
	"math/big"

	"github.com/hdlforge/hdlforge/pkg/util"
)

// memWritePort records the single write port a Mem may have. Address, Value
// and Enable all belong to the owning Mem's module.
type memWritePort struct {
	Address, Value, Enable *Signal
}

// ReadPortRef identifies one of a Mem's read ports by its (Address, Enable)
// pair, in the order ReadPort was called. The gatherer numbers read ports by
// this order when it allocates their emission names.
type ReadPortRef struct {
	Address, Enable *Signal
}

// Mem is a dual-ported memory: any number of read ports (each an
// (address, enable) pair latched on the clock edge, read-before-write), and
// at most one write port.
type Mem struct {
	module    *Module
	name      string
	addrWidth uint
	dataWidth uint

	readPorts []ReadPortRef
	writePort *memWritePort
	initial   util.Option[[]*big.Int]
}

// Name returns this memory's name, unique within its owning module.
func (mem *Mem) Name() string { return mem.name }

// Module returns the module this memory belongs to.
func (mem *Mem) Module() *Module { return mem.module }

// AddrWidth returns the bit width of this memory's address buses.
func (mem *Mem) AddrWidth() uint { return mem.addrWidth }

// DataWidth returns the bit width of this memory's stored words.
func (mem *Mem) DataWidth() uint { return mem.dataWidth }

// WritePort returns this memory's write port, or nil if none has been
// added.
func (mem *Mem) WritePort() (address, value, enable *Signal, ok bool) {
	if mem.writePort == nil {
		return nil, nil, nil, false
	}

	return mem.writePort.Address, mem.writePort.Value, mem.writePort.Enable, true
}

// InitialContents returns the dense initial contents previously set via
// SetInitialContents, or nil if none were given.
func (mem *Mem) InitialContents() []*big.Int {
	if mem.initial.IsEmpty() {
		return nil
	}

	return mem.initial.Unwrap()
}

// ReadPorts returns this memory's read ports in the order ReadPort was
// called.
func (mem *Mem) ReadPorts() []ReadPortRef {
	return mem.readPorts
}

func (mem *Mem) checkOwned(elem string, s *Signal) {
	if s.module != mem.module {
		panic(fmt.Sprintf(
			"memory %q in module %q: %s belongs to module %q",
			mem.name, mem.module.name, elem, s.module.name))
	}
}

// ReadPort adds a read port reading the word at address, latched on the
// clock edge whenever enable is asserted, and returns a signal carrying the
// latched value (undefined on the first cycle and whenever enable was low on
// the preceding edge). address must be AddrWidth bits wide and enable must
// be exactly 1 bit wide.
func (mem *Mem) ReadPort(address, enable *Signal) *Signal {
	mem.checkOwned("read address", address)
	mem.checkOwned("read enable", enable)

	if address.bitWidth != mem.addrWidth {
		panic(fmt.Sprintf(
			"memory %q in module %q: read address must be %d bits, got %d",
			mem.name, mem.module.name, mem.addrWidth, address.bitWidth))
	}

	if enable.bitWidth != 1 {
		panic(fmt.Sprintf(
			"memory %q in module %q: read enable must be 1 bit, got %d",
			mem.name, mem.module.name, enable.bitWidth))
	}

	mem.readPorts = append(mem.readPorts, ReadPortRef{Address: address, Enable: enable})

	return mem.module.newSignal(mem.dataWidth, &MemReadPortOutput{Mem: mem, Address: address, Enable: enable})
}

// WritePortSet adds this memory's write port. address must be AddrWidth
// bits, value must be DataWidth bits, and enable must be exactly 1 bit.
// Panics if a write port has already been set.
func (mem *Mem) WritePortSet(address, value, enable *Signal) {
	if mem.writePort != nil {
		panic(fmt.Sprintf("memory %q in module %q already has a write port", mem.name, mem.module.name))
	}

	mem.checkOwned("write address", address)
	mem.checkOwned("write value", value)
	mem.checkOwned("write enable", enable)

	if address.bitWidth != mem.addrWidth {
		panic(fmt.Sprintf(
			"memory %q in module %q: write address must be %d bits, got %d",
			mem.name, mem.module.name, mem.addrWidth, address.bitWidth))
	}

	if value.bitWidth != mem.dataWidth {
		panic(fmt.Sprintf(
			"memory %q in module %q: write value must be %d bits, got %d",
			mem.name, mem.module.name, mem.dataWidth, value.bitWidth))
	}

	if enable.bitWidth != 1 {
		panic(fmt.Sprintf(
			"memory %q in module %q: write enable must be 1 bit, got %d",
			mem.name, mem.module.name, enable.bitWidth))
	}

	mem.writePort = &memWritePort{Address: address, Value: value, Enable: enable}
}

// SetInitialContents gives this memory dense initial contents, one entry per
// address from 0 to 2^AddrWidth-1. Panics if the length does not match or if
// any entry does not fit in DataWidth bits, or if initial contents have
// already been set.
func (mem *Mem) SetInitialContents(values []*big.Int) {
	if mem.initial.HasValue() {
		panic(fmt.Sprintf("memory %q in module %q already has initial contents", mem.name, mem.module.name))
	}

	want := new(big.Int).Lsh(big.NewInt(1), mem.addrWidth)
	if !want.IsUint64() || uint64(len(values)) != want.Uint64() {
		panic(fmt.Sprintf(
			"memory %q in module %q: expected %s initial entries (2^%d), got %d",
			mem.name, mem.module.name, want.String(), mem.addrWidth, len(values)))
	}

	bound := new(big.Int).Lsh(big.NewInt(1), mem.dataWidth)

	for i, v := range values {
		if v.Sign() < 0 || v.Cmp(bound) >= 0 {
			panic(fmt.Sprintf(
				"memory %q in module %q: initial entry %d value %s does not fit in %d bits",
				mem.name, mem.module.name, i, v.String(), mem.dataWidth))
		}
	}

	mem.initial = util.Some(values)
}
