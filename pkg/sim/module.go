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
package sim

import "github.com/hdlforge/hdlforge/pkg/ir"

// Port names a named, width-carrying field on the generated simulator
// struct (an input or an output).
type Port struct {
	Name     string
	BitWidth uint
}

// RegisterState describes one register's storage and update program, the
// fields named by the signal compiler's "regs" emission contract entry.
type RegisterState struct {
	ValueName string
	NextName  string
	BitWidth  uint
	// Initial holds the register's reset value, nil if none was specified.
	Initial *ir.Constant
}

// ReadPort describes one memory read port's address/enable/value bindings.
type ReadPort struct {
	AddressName string
	EnableName  string
	ValueName   string
}

// WritePort describes a memory's single write port, if it has one.
type WritePort struct {
	AddressName string
	ValueName   string
	EnableName  string
}

// MemoryState describes one memory's storage and per-port bindings, the
// fields named by the signal compiler's "mems" emission contract entry.
type MemoryState struct {
	BufferName string
	AddrWidth  uint
	DataWidth  uint
	ReadPorts  []ReadPort
	WritePort  *WritePort
	// Initial holds dense initial contents, nil if the memory has none.
	Initial []*ir.Constant
}

// Module is the complete emission contract for one top-level module: ports,
// state elements and the two per-cycle programs (propagate, posedge) that
// the compiler produces. An Emitter turns this into target source; nothing
// in this package interprets it further.
type Module struct {
	Name    string
	Inputs  []Port
	Outputs []Port
	Regs    []RegisterState
	Mems    []MemoryState
	// Propagate holds, in order, the local temporaries hoisted while
	// compiling, then every register's next value and every memory's
	// read-port address/enable and write-port address/value/enable staging,
	// computed from inputs and current state. It holds no assignment to a
	// read port's value name.
	Propagate []ir.Binding
	// PropagateOutputs are the final assignments to output fields, in
	// declaration order, evaluated after Propagate's bindings.
	PropagateOutputs []ir.Binding
	// Posedge updates state on the implicit clock edge with one
	// reg.value <- reg.next copy per register. It holds no memory updates.
	Posedge []ir.Binding
}

// Emitter is the external collaborator that serializes a Module into target
// simulator source. This package never implements one; it only defines the
// contract Generate hands results to.
type Emitter interface {
	Emit(m Module) error
}
