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
package validate

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hdlforge/hdlforge/pkg/graph"
)

func buildValidAdder() *graph.Module {
	ctx := graph.NewContext()
	m := ctx.Module("adder")

	a := m.Input("a", 8)
	b := m.Input("b", 8)
	m.Output("sum", a.Add(b))

	return m
}

func TestValidModulePasses(t *testing.T) {
	m := buildValidAdder()
	assert.NoError(t, Module(m))
}

func TestUndrivenRegisterFails(t *testing.T) {
	ctx := graph.NewContext()
	m := ctx.Module("counter")
	r := m.Reg("count", 4)
	m.Output("out", r)

	err := Module(m)
	require.Error(t, err)

	structural, ok := err.(*StructuralError)
	require.True(t, ok)
	assert.Equal(t, "counter", structural.Root)
	assert.Equal(t, "counter", structural.Module)
	assert.Contains(t, structural.Detail, "count")
}

func TestUndrivenInstanceInputFails(t *testing.T) {
	ctx := graph.NewContext()
	child := ctx.Module("child")
	in := child.Input("in", 8)
	child.Output("out", in)

	parent := ctx.Module("parent")
	parent.Instance("i0", "child")

	err := Module(parent)
	require.Error(t, err)

	structural, ok := err.(*StructuralError)
	require.True(t, ok)
	assert.Equal(t, "parent", structural.Root)
	assert.Contains(t, structural.Detail, "in")
	assert.Contains(t, structural.Detail, "i0")
}

func TestUndrivenInstanceInputNestedReportsCorrectRoot(t *testing.T) {
	ctx := graph.NewContext()
	grandchild := ctx.Module("grandchild")
	in := grandchild.Input("in", 4)
	grandchild.Output("out", in)

	child := ctx.Module("child")
	child.Instance("g0", "grandchild")

	parent := ctx.Module("parent")
	parent.Instance("c0", "child")

	err := Module(parent)
	require.Error(t, err)

	structural, ok := err.(*StructuralError)
	require.True(t, ok)
	assert.Equal(t, "parent", structural.Root, "root stays the top-level module across recursion")
	assert.Equal(t, "child", structural.Module, "module is where the undriven instance was found")
}

func TestMemoryWithoutReadPortsFails(t *testing.T) {
	ctx := graph.NewContext()
	m := ctx.Module("m")
	mem := m.Mem("mem", 2, 8)
	_ = mem

	err := Module(m)
	require.Error(t, err)

	structural, ok := err.(*StructuralError)
	require.True(t, ok)
	assert.Contains(t, structural.Detail, "read ports")
}

func TestMemoryWithoutInitialOrWritePortFails(t *testing.T) {
	ctx := graph.NewContext()
	m := ctx.Module("m")
	mem := m.Mem("mem", 2, 8)
	addr := m.Input("addr", 2)
	enable := m.Input("enable", 1)
	mem.ReadPort(addr, enable)

	err := Module(m)
	require.Error(t, err)

	structural, ok := err.(*StructuralError)
	require.True(t, ok)
	assert.Contains(t, structural.Detail, "initial contents")
}

func TestMemoryWithInitialContentsOnlyPasses(t *testing.T) {
	ctx := graph.NewContext()
	m := ctx.Module("m")
	mem := m.Mem("mem", 1, 8)
	addr := m.Input("addr", 1)
	enable := m.Input("enable", 1)
	mem.ReadPort(addr, enable)
	mem.SetInitialContents([]*big.Int{big.NewInt(0), big.NewInt(1)})

	assert.NoError(t, Module(m))
}

func TestMemoryWithWritePortOnlyPasses(t *testing.T) {
	ctx := graph.NewContext()
	m := ctx.Module("m")
	mem := m.Mem("mem", 1, 8)
	addr := m.Input("addr", 1)
	enable := m.Input("enable", 1)
	value := m.Input("value", 8)
	mem.ReadPort(addr, enable)
	mem.WritePortSet(addr, value, enable)

	assert.NoError(t, Module(m))
}

// buildCombinationalLoop wires a child instance whose output feeds back,
// through the parent, into its own input.
func buildCombinationalLoop() *graph.Module {
	ctx := graph.NewContext()
	child := ctx.Module("child")
	in := child.Input("in", 4)
	child.Output("out", in.Not())

	parent := ctx.Module("parent")
	inst := parent.Instance("i0", "child")
	loopback := inst.Output("out")
	inst.DriveInput("in", loopback)

	return parent
}

func TestCombinationalLoopDetected(t *testing.T) {
	m := buildCombinationalLoop()

	err := Module(m)
	require.Error(t, err)

	loopErr, ok := err.(*LoopError)
	require.True(t, ok)
	assert.Equal(t, "parent", loopErr.Root)
	assert.Equal(t, "child", loopErr.Module)
	assert.Equal(t, "out", loopErr.Output)
}

func TestNoLoopThroughTwoDistinctInstancesOfSameModule(t *testing.T) {
	ctx := graph.NewContext()
	child := ctx.Module("child")
	in := child.Input("in", 4)
	child.Output("out", in.Not())

	parent := ctx.Module("parent")
	inst1 := parent.Instance("i1", "child")
	inst2 := parent.Instance("i2", "child")

	driver := parent.Input("driver", 4)
	inst1.DriveInput("in", driver)
	inst2.DriveInput("in", inst1.Output("out"))

	assert.NoError(t, Module(parent), "feeding one instance's output into a different instance is not a loop")
}

func TestErrorMessages(t *testing.T) {
	structural := &StructuralError{Root: "top", Module: "top", Detail: "something is wrong"}
	assert.Contains(t, structural.Error(), "top")
	assert.Contains(t, structural.Error(), "something is wrong")

	loop := &LoopError{Root: "top", Module: "child", Output: "out"}
	msg := loop.Error()
	assert.Contains(t, msg, "top")
	assert.Contains(t, msg, "child")
	assert.Contains(t, msg, "out")
}
