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
)

// Module is a named hardware unit holding ordered collections of inputs,
// outputs, registers, memories and child instances. Every item is keyed by a
// name unique within its category inside the module.
type Module struct {
	context *Context
	name    string

	inputs      map[string]*Signal
	inputOrder  []string
	outputs     map[string]*Signal
	outputOrder []string

	registers     []*Signal
	registerNames map[string]struct{}

	mems     []*Mem
	memNames map[string]struct{}

	instances     []*Instance
	instanceNames map[string]struct{}
}

// Name returns this module's name.
func (m *Module) Name() string { return m.name }

// Context returns the Context this module was built in.
func (m *Module) Context() *Context { return m.context }

// Inputs returns this module's inputs in declaration order.
func (m *Module) Inputs() []*Signal {
	out := make([]*Signal, len(m.inputOrder))
	for i, name := range m.inputOrder {
		out[i] = m.inputs[name]
	}

	return out
}

// Outputs returns this module's outputs in declaration order.
func (m *Module) Outputs() []*Signal {
	out := make([]*Signal, len(m.outputOrder))
	for i, name := range m.outputOrder {
		out[i] = m.outputs[name]
	}

	return out
}

// Registers returns this module's registers in declaration order.
func (m *Module) Registers() []*Signal {
	return m.registers
}

// Mems returns this module's memories in declaration order.
func (m *Module) Mems() []*Mem {
	return m.mems
}

// Instances returns this module's child instances in declaration order.
func (m *Module) Instances() []*Instance {
	return m.instances
}

// LookupInput returns the input registered under name, if any.
func (m *Module) LookupInput(name string) (*Signal, bool) {
	s, ok := m.inputs[name]
	return s, ok
}

// LookupOutput returns the output registered under name, if any.
func (m *Module) LookupOutput(name string) (*Signal, bool) {
	s, ok := m.outputs[name]
	return s, ok
}

// checkWidth panics with a diagnostic naming the owning module and element
// if w falls outside [1,128].
func checkWidth(m *Module, elem string, w uint) {
	if w < 1 || w > 128 {
		panic(fmt.Sprintf("module %q: %s has invalid bit width %d (must be in [1,128])", m.name, elem, w))
	}
}

func checkFitsWidth(m *Module, elem string, value *big.Int, width uint) {
	if value.Sign() < 0 {
		panic(fmt.Sprintf("module %q: %s has negative value %s", m.name, elem, value.String()))
	}

	bound := new(big.Int).Lsh(big.NewInt(1), width)
	if value.Cmp(bound) >= 0 {
		panic(fmt.Sprintf("module %q: %s value %s does not fit in %d bits", m.name, elem, value.String(), width))
	}
}

// Input adds a new input of the given bit width to this module.
func (m *Module) Input(name string, width uint) *Signal {
	checkWidth(m, fmt.Sprintf("input %q", name), width)

	if _, exists := m.inputs[name]; exists {
		panic(fmt.Sprintf("module %q already has an input called %q", m.name, name))
	}

	s := &Signal{module: m, bitWidth: width, data: &Input{Name: name}}
	m.inputs[name] = s
	m.inputOrder = append(m.inputOrder, name)

	return s
}

// Output adds a new output to this module whose value is source, which must
// belong to this same module.
func (m *Module) Output(name string, source *Signal) *Signal {
	if source.module != m {
		panic(fmt.Sprintf(
			"module %q: output %q is driven by a signal from module %q; cross-module signals must transit an instance port",
			m.name, name, source.module.name))
	}

	if _, exists := m.outputs[name]; exists {
		panic(fmt.Sprintf("module %q already has an output called %q", m.name, name))
	}

	s := &Signal{module: m, bitWidth: source.bitWidth, data: &Output{Name: name, Source: source}}
	m.outputs[name] = s
	m.outputOrder = append(m.outputOrder, name)

	return s
}

// Lit constructs a constant signal of the given bit width. value must fit in
// width unsigned bits.
func (m *Module) Lit(value big.Int, width uint) *Signal {
	checkWidth(m, "literal", width)
	checkFitsWidth(m, "literal", &value, width)

	var v big.Int

	v.Set(&value)

	return m.newSignal(width, &Lit{Value: v})
}

// LitUint64 is a convenience constructor for literals that fit in a uint64.
func (m *Module) LitUint64(value uint64, width uint) *Signal {
	return m.Lit(*new(big.Int).SetUint64(value), width)
}

// Reg adds a new clocked register of the given bit width. Its Next value and
// (optional) Initial value are set afterwards via DriveNext/SetInitial.
func (m *Module) Reg(name string, width uint) *Signal {
	checkWidth(m, fmt.Sprintf("register %q", name), width)

	if _, exists := m.registerNames[name]; exists {
		panic(fmt.Sprintf("module %q already has a register called %q", m.name, name))
	}

	s := m.newSignal(width, &Reg{Name: name})
	m.registerNames[name] = struct{}{}
	m.registers = append(m.registers, s)

	return s
}

// Mem adds a new memory with the given address and data widths.
func (m *Module) Mem(name string, addrWidth, dataWidth uint) *Mem {
	checkWidth(m, fmt.Sprintf("memory %q address", name), addrWidth)
	checkWidth(m, fmt.Sprintf("memory %q data", name), dataWidth)

	if _, exists := m.memNames[name]; exists {
		panic(fmt.Sprintf("module %q already has a memory called %q", m.name, name))
	}

	mem := &Mem{module: m, name: name, addrWidth: addrWidth, dataWidth: dataWidth}
	m.memNames[name] = struct{}{}
	m.mems = append(m.mems, mem)

	return mem
}

// Instance instantiates the module registered under moduleName as a new
// child of m, named instName.
func (m *Module) Instance(instName, moduleName string) *Instance {
	if _, exists := m.instanceNames[instName]; exists {
		panic(fmt.Sprintf("module %q already has an instance called %q", m.name, instName))
	}

	target, ok := m.context.LookupModule(moduleName)
	if !ok {
		panic(fmt.Sprintf("module %q: instance %q refers to unknown module %q", m.name, instName, moduleName))
	}

	inst := &Instance{
		parent:             m,
		instantiatedModule: target,
		name:               instName,
		drivenInputs:       make(map[string]*Signal),
	}
	m.instanceNames[instName] = struct{}{}
	m.instances = append(m.instances, inst)

	return inst
}

func (m *Module) newSignal(width uint, data Data) *Signal {
	return &Signal{module: m, bitWidth: width, data: data}
}
