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

// Package gather walks a validated module hierarchy once, starting from its
// outputs, to discover every state element (register and memory) actually
// reachable, count how many times each signal is referenced along the way,
// and allocate their emission names (component F). A register or memory
// instantiated more than once in the hierarchy is a distinct state element
// per instantiation path, so every key here is a (modctx.Context, signal)
// pair rather than a bare signal.
package gather

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/hdlforge/hdlforge/pkg/graph"
	"github.com/hdlforge/hdlforge/pkg/modctx"
	"github.com/hdlforge/hdlforge/pkg/util"
	"github.com/hdlforge/hdlforge/pkg/util/stack"
)

// RegisterState is a reachable register and its allocated emission names.
type RegisterState struct {
	Context   *modctx.Context
	Signal    *graph.Signal
	Data      *graph.Reg
	ValueName string
	NextName  string
}

// ReadPortNames names one memory read port's address/enable/value bindings.
type ReadPortNames struct {
	AddressName, EnableName, ValueName string
}

// MemoryState is a reachable memory and its allocated emission names. Names
// are reserved for every read port of the memory as soon as any one of them
// is reached, keyed by the (address, enable) signal pair identifying the port (the
// caller resolves read-port identity the same way the compiler does, via
// MemReadPortOutput.Address/Enable).
type MemoryState struct {
	Context          *modctx.Context
	Mem              *graph.Mem
	Name             string
	ReadPorts        map[graph.ReadPortRef]ReadPortNames
	WriteAddressName string
	WriteValueName   string
	WriteEnableName  string
}

// Result is the full output of a Gather pass: every reachable register and
// memory with allocated names, plus the fan-out reference count of every
// signal visited, keyed the same (context, signal) way so the compiler can
// decide which sub-expressions to hoist into a temporary.
type Result struct {
	Registers []*RegisterState
	Memories  []*MemoryState
	RefCounts map[stateKey]uint32
}

// RefCount returns how many times signal was referenced while exploring ctx,
// or 0 if it was never visited.
func (r *Result) RefCount(ctx *modctx.Context, signal *graph.Signal) uint32 {
	return r.RefCounts[stateKey{ctx, signal}]
}

type stateKey struct {
	ctx    *modctx.Context
	signal *graph.Signal
}

type gatherer struct {
	regs      *util.HashMap[regKey, *RegisterState]
	mems      *util.HashMap[memKey, *MemoryState]
	refCounts map[stateKey]uint32
	regOrder  []*RegisterState
	memOrder  []*MemoryState
}

// regKey and memKey adapt (context, node) pairs to util.Hasher via
// pointer-address hashing, the same technique modctx.Context uses to
// hash-cons instance paths.
type regKey struct {
	ctx    *modctx.Context
	signal *graph.Signal
}

func (k regKey) Equals(other regKey) bool {
	return k.ctx == other.ctx && k.signal == other.signal
}

func (k regKey) Hash() uint64 {
	return ptrHash(k.ctx)*31 + ptrHash(k.signal)
}

type memKey struct {
	ctx *modctx.Context
	mem *graph.Mem
}

func (k memKey) Equals(other memKey) bool {
	return k.ctx == other.ctx && k.mem == other.mem
}

func (k memKey) Hash() uint64 {
	return ptrHash(k.ctx)*31 + ptrHash(k.mem)
}

func ptrHash(p any) uint64 {
	s := fmt.Sprintf("%p", p)

	var h uint64 = 14695981039346656037

	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= 1099511628211
	}

	return h
}

type frame struct {
	ctx    *modctx.Context
	signal *graph.Signal
}

// Module gathers every state element and reference count reachable from
// top's outputs, descending into an instance's outputs only where a signal
// reached this way reads them. The caller must have already run validate.Module
// successfully; this pass assumes every register's Next and every
// instance's inputs are driven.
func Module(ctx *modctx.Context) *Result {
	g := &gatherer{
		regs:      util.NewHashMap[regKey, *RegisterState](16),
		mems:      util.NewHashMap[memKey, *MemoryState](16),
		refCounts: make(map[stateKey]uint32),
	}

	for _, out := range ctx.Module().Outputs() {
		g.gather(frame{ctx, out})
	}

	log.Debug("gathered ", len(g.regOrder), " registers and ", len(g.memOrder), " memories")

	return &Result{Registers: g.regOrder, Memories: g.memOrder, RefCounts: g.refCounts}
}

func (g *gatherer) gather(start frame) {
	work := stack.New[frame]()
	work.Push(start)

	for !work.IsEmpty() {
		f := work.Pop()
		key := stateKey{f.ctx, f.signal}
		g.refCounts[key]++

		if g.refCounts[key] > 1 {
			continue
		}

		switch d := f.signal.Data().(type) {
		case *graph.Lit:

		case *graph.Input:
			if driver, parent, ok := f.ctx.ResolveInput(f.signal); ok {
				work.Push(frame{parent, driver})
			}

		case *graph.Output:
			work.Push(frame{f.ctx, d.Source})

		case *graph.Reg:
			hk := regKey{f.ctx, f.signal}
			valueName := fmt.Sprintf("__reg_%s_%d", d.Name, g.regs.Size())
			state := &RegisterState{
				Context: f.ctx, Signal: f.signal, Data: d,
				ValueName: valueName, NextName: valueName + "_next",
			}
			g.regs.Insert(hk, state)
			g.regOrder = append(g.regOrder, state)
			work.Push(frame{f.ctx, d.Next.Unwrap()})

		case *graph.UnOp:
			work.Push(frame{f.ctx, d.Source})

		case *graph.SimpleBinOp:
			work.Push(frame{f.ctx, d.Lhs})
			work.Push(frame{f.ctx, d.Rhs})

		case *graph.AdditiveBinOp:
			work.Push(frame{f.ctx, d.Lhs})
			work.Push(frame{f.ctx, d.Rhs})

		case *graph.ComparisonBinOp:
			work.Push(frame{f.ctx, d.Lhs})
			work.Push(frame{f.ctx, d.Rhs})

		case *graph.ShiftBinOp:
			work.Push(frame{f.ctx, d.Lhs})
			work.Push(frame{f.ctx, d.Rhs})

		case *graph.Mul:
			work.Push(frame{f.ctx, d.Lhs})
			work.Push(frame{f.ctx, d.Rhs})

		case *graph.MulSigned:
			work.Push(frame{f.ctx, d.Lhs})
			work.Push(frame{f.ctx, d.Rhs})

		case *graph.Bits:
			work.Push(frame{f.ctx, d.Source})

		case *graph.Repeat:
			work.Push(frame{f.ctx, d.Source})

		case *graph.Concat:
			work.Push(frame{f.ctx, d.Lhs})
			work.Push(frame{f.ctx, d.Rhs})

		case *graph.Mux:
			work.Push(frame{f.ctx, d.Cond})
			work.Push(frame{f.ctx, d.WhenTrue})
			work.Push(frame{f.ctx, d.WhenFalse})

		case *graph.InstanceOutput:
			childCtx := f.ctx.Child(d.Instance)

			out, ok := d.Instance.InstantiatedModule().LookupOutput(d.Name)
			if !ok {
				panic(fmt.Sprintf("InstanceOutput references unknown output %q", d.Name))
			}

			work.Push(frame{childCtx, out})

		case *graph.MemReadPortOutput:
			hk := memKey{f.ctx, d.Mem}

			state, exists := g.mems.Get(hk)
			if !exists {
				state = g.newMemoryState(f.ctx, d.Mem)
				g.mems.Insert(hk, state)
				g.memOrder = append(g.memOrder, state)
			}

			for _, rp := range d.Mem.ReadPorts() {
				work.Push(frame{f.ctx, rp.Address})
				work.Push(frame{f.ctx, rp.Enable})
			}

			if addr, val, en, ok := d.Mem.WritePort(); ok {
				work.Push(frame{f.ctx, addr})
				work.Push(frame{f.ctx, val})
				work.Push(frame{f.ctx, en})
			}

		default:
			panic(fmt.Sprintf("gather: unhandled signal variant %T", d))
		}
	}
}

func (g *gatherer) newMemoryState(ctx *modctx.Context, mem *graph.Mem) *MemoryState {
	memName := fmt.Sprintf("%s_%d", mem.Name(), g.mems.Size())
	readPorts := make(map[graph.ReadPortRef]ReadPortNames, len(mem.ReadPorts()))

	for i, rp := range mem.ReadPorts() {
		prefix := fmt.Sprintf("%s_read_port_%d_", memName, i)
		readPorts[rp] = ReadPortNames{
			AddressName: prefix + "address",
			EnableName:  prefix + "enable",
			ValueName:   prefix + "value",
		}
	}

	writePrefix := memName + "_write_port_"

	return &MemoryState{
		Context: ctx, Mem: mem, Name: memName, ReadPorts: readPorts,
		WriteAddressName: writePrefix + "address",
		WriteValueName:   writePrefix + "value",
		WriteEnableName:  writePrefix + "enable",
	}
}
