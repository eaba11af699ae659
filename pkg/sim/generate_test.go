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

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hdlforge/hdlforge/pkg/graph"
	"github.com/hdlforge/hdlforge/pkg/validate"
)

// recordingEmitter captures the Module handed to it and nothing else; it
// exists purely to observe what Generate produces without depending on any
// real target-language renderer.
type recordingEmitter struct {
	module Module
	called bool
	err    error
}

func (e *recordingEmitter) Emit(m Module) error {
	e.module = m
	e.called = true

	return e.err
}

func bindingNames(t *testing.T, names []string, want string) bool {
	t.Helper()

	for _, n := range names {
		if n == want {
			return true
		}
	}

	return false
}

func TestGenerateInverter(t *testing.T) {
	ctx := graph.NewContext()
	m := ctx.Module("inverter")
	a := m.Input("a", 1)
	m.Output("out", a.Not())

	var e recordingEmitter
	require.NoError(t, Generate(m, Options{}, &e))
	require.True(t, e.called)

	assert.Equal(t, "inverter", e.module.Name)
	require.Len(t, e.module.Inputs, 1)
	assert.Equal(t, Port{Name: "a", BitWidth: 1}, e.module.Inputs[0])
	require.Len(t, e.module.Outputs, 1)
	assert.Equal(t, Port{Name: "out", BitWidth: 1}, e.module.Outputs[0])

	require.Len(t, e.module.PropagateOutputs, 1)
	assert.Equal(t, "out", e.module.PropagateOutputs[0].Name)
	assert.Empty(t, e.module.Regs)
	assert.Empty(t, e.module.Mems)
}

func TestGenerateHierarchyPassThrough(t *testing.T) {
	ctx := graph.NewContext()
	child := ctx.Module("buffer")
	in := child.Input("in", 8)
	child.Output("out", in)

	top := ctx.Module("top")
	inst := top.Instance("buf0", "buffer")
	driver := top.Input("driver", 8)
	inst.DriveInput("in", driver)
	top.Output("out", inst.Output("out"))

	var e recordingEmitter
	require.NoError(t, Generate(top, Options{}, &e))
	require.True(t, e.called)

	assert.Equal(t, "top", e.module.Name)
	require.Len(t, e.module.Inputs, 1)
	assert.Equal(t, "driver", e.module.Inputs[0].Name)
	require.Len(t, e.module.PropagateOutputs, 1)
	assert.Equal(t, "out", e.module.PropagateOutputs[0].Name)
}

func TestGenerateEightBitAdderWithCarryOut(t *testing.T) {
	ctx := graph.NewContext()
	m := ctx.Module("adder8")
	a := m.Input("a", 8)
	b := m.Input("b", 8)

	zero := m.LitUint64(0, 1)
	wideA := zero.Concat(a)
	wideB := zero.Concat(b)
	sum9 := wideA.Add(wideB)

	m.Output("sum", sum9.Bits(7, 0))
	m.Output("carry_out", sum9.Bits(8, 8))

	var e recordingEmitter
	require.NoError(t, Generate(m, Options{}, &e))
	require.True(t, e.called)

	require.Len(t, e.module.Outputs, 2)
	assert.Equal(t, Port{Name: "sum", BitWidth: 8}, e.module.Outputs[0])
	assert.Equal(t, Port{Name: "carry_out", BitWidth: 1}, e.module.Outputs[1])
	require.Len(t, e.module.PropagateOutputs, 2)
}

func TestGenerateRegisterFeedbackCounter(t *testing.T) {
	ctx := graph.NewContext()
	m := ctx.Module("counter")
	counter := m.Reg("counter", 4)
	counter.DriveNext(counter.Add(m.LitUint64(1, 4)))
	counter.SetInitial(*big.NewInt(0))
	m.Output("out", counter)

	var e recordingEmitter
	require.NoError(t, Generate(m, Options{}, &e))
	require.True(t, e.called)

	require.Len(t, e.module.Regs, 1)
	reg := e.module.Regs[0]
	assert.Equal(t, uint(4), reg.BitWidth)
	require.NotNil(t, reg.Initial)
	assert.Equal(t, "0", reg.Initial.Value.String())

	require.Len(t, e.module.Propagate, 2,
		"the counter is read by both the output and its own next value, so its read is hoisted ahead of the next-value binding")
	assert.Equal(t, "__temp_0", e.module.Propagate[0].Name)
	assert.Equal(t, reg.NextName, e.module.Propagate[1].Name)

	require.Len(t, e.module.Posedge, 1)
	assert.Equal(t, reg.ValueName, e.module.Posedge[0].Name)
}

func TestGenerateCombinationalLoopAbortsBeforeEmitting(t *testing.T) {
	ctx := graph.NewContext()
	child := ctx.Module("child")
	in := child.Input("in", 4)
	child.Output("out", in.Not())

	parent := ctx.Module("parent")
	inst := parent.Instance("i0", "child")
	loopback := inst.Output("out")
	inst.DriveInput("in", loopback)

	var e recordingEmitter
	err := Generate(parent, Options{}, &e)
	require.Error(t, err)

	loopErr, ok := err.(*validate.LoopError)
	require.True(t, ok, "Generate must surface validate's own error type, not wrap or replace it")
	assert.Equal(t, "parent", loopErr.Root)
	assert.Equal(t, "child", loopErr.Module)
	assert.Equal(t, "out", loopErr.Output)

	assert.False(t, e.called, "a validation failure must never reach the Emitter")
}

func TestGenerateMemoryRoundTrip(t *testing.T) {
	ctx := graph.NewContext()
	m := ctx.Module("ram16x8")
	mem := m.Mem("ram", 4, 8)

	readAddr := m.Input("read_addr", 4)
	readEnable := m.Input("read_enable", 1)
	writeAddr := m.Input("write_addr", 4)
	writeValue := m.Input("write_value", 8)
	writeEnable := m.Input("write_enable", 1)

	mem.WritePortSet(writeAddr, writeValue, writeEnable)
	readValue := mem.ReadPort(readAddr, readEnable)
	m.Output("read_value", readValue)

	var e recordingEmitter
	require.NoError(t, Generate(m, Options{}, &e))
	require.True(t, e.called)

	require.Len(t, e.module.Mems, 1)
	memState := e.module.Mems[0]
	assert.Equal(t, uint(4), memState.AddrWidth)
	assert.Equal(t, uint(8), memState.DataWidth)

	require.Len(t, memState.ReadPorts, 1)
	require.NotNil(t, memState.WritePort)

	var propagateNames []string
	for _, b := range e.module.Propagate {
		propagateNames = append(propagateNames, b.Name)
	}

	assert.True(t, bindingNames(t, propagateNames, memState.ReadPorts[0].AddressName))
	assert.True(t, bindingNames(t, propagateNames, memState.ReadPorts[0].EnableName))
	assert.True(t, bindingNames(t, propagateNames, memState.WritePort.AddressName))
	assert.True(t, bindingNames(t, propagateNames, memState.WritePort.ValueName))
	assert.True(t, bindingNames(t, propagateNames, memState.WritePort.EnableName))
}

func TestGenerateMemoryWithInitialContents(t *testing.T) {
	ctx := graph.NewContext()
	m := ctx.Module("rom4x4")
	mem := m.Mem("rom", 2, 4)
	addr := m.Input("addr", 2)
	en := m.Input("en", 1)
	out := mem.ReadPort(addr, en)
	mem.SetInitialContents([]*big.Int{big.NewInt(1), big.NewInt(2), big.NewInt(3), big.NewInt(4)})
	m.Output("out", out)

	var e recordingEmitter
	require.NoError(t, Generate(m, Options{}, &e))

	require.Len(t, e.module.Mems, 1)
	require.Len(t, e.module.Mems[0].Initial, 4)
	assert.Equal(t, "1", e.module.Mems[0].Initial[0].Value.String())
	assert.Equal(t, "4", e.module.Mems[0].Initial[3].Value.String())
	assert.Nil(t, e.module.Mems[0].WritePort)
}

func TestGenerateWrapsEmitterError(t *testing.T) {
	ctx := graph.NewContext()
	m := ctx.Module("m")
	m.Output("out", m.LitUint64(1, 1))

	e := &recordingEmitter{err: assert.AnError}
	err := Generate(m, Options{}, e)
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestGenerateTracingOptionHasNoEffectOnOutput(t *testing.T) {
	ctx := graph.NewContext()
	m := ctx.Module("m")
	m.Output("out", m.LitUint64(1, 1))

	var withTracing, withoutTracing recordingEmitter
	require.NoError(t, Generate(m, Options{Tracing: true}, &withTracing))
	require.NoError(t, Generate(m, Options{Tracing: false}, &withoutTracing))

	assert.Equal(t, len(withoutTracing.module.PropagateOutputs), len(withTracing.module.PropagateOutputs))
}
