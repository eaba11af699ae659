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

// Package compile lowers a signal into the flat per-cycle expression IR
// (component H). It walks the signal tree iteratively with an explicit
// Enter/Leave work stack rather than recursing, memoizes one Expr per
// (context, signal) it has already compiled, and hoists the result into a
// named temporary whenever the gatherer recorded more than one reference to
// that (context, signal) pair — common-subexpression elimination by
// fan-out, exactly where the original graph has the fan-out to justify it.
package compile

import (
	"fmt"
	"math/big"

	log "github.com/sirupsen/logrus"

	"github.com/hdlforge/hdlforge/pkg/gather"
	"github.com/hdlforge/hdlforge/pkg/graph"
	"github.com/hdlforge/hdlforge/pkg/ir"
	"github.com/hdlforge/hdlforge/pkg/modctx"
	"github.com/hdlforge/hdlforge/pkg/util/stack"
)

// Compiler lowers signals against one Gather result, memoizing across every
// call to Signal so that sinks sharing a sub-expression (e.g. an output and
// a register's next value both reading the same comparison) reuse its
// compiled form rather than re-lowering it.
type Compiler struct {
	result *gather.Result
	regs   map[regLookupKey]*gather.RegisterState
	mems   map[memLookupKey]*gather.MemoryState
	memo   map[exprKey]ir.Expr
}

type exprKey struct {
	ctx    *modctx.Context
	signal *graph.Signal
}

type regLookupKey struct {
	ctx    *modctx.Context
	signal *graph.Signal
}

type memLookupKey struct {
	ctx *modctx.Context
	mem *graph.Mem
}

// New creates a Compiler against the state elements and reference counts
// produced by gather.Module.
func New(result *gather.Result) *Compiler {
	regs := make(map[regLookupKey]*gather.RegisterState, len(result.Registers))
	for _, r := range result.Registers {
		regs[regLookupKey{r.Context, r.Signal}] = r
	}

	mems := make(map[memLookupKey]*gather.MemoryState, len(result.Memories))
	for _, m := range result.Memories {
		mems[memLookupKey{m.Context, m.Mem}] = m
	}

	return &Compiler{result: result, regs: regs, mems: mems, memo: make(map[exprKey]ir.Expr)}
}

type frameKind uint8

const (
	enter frameKind = iota
	leave
)

type frame struct {
	kind   frameKind
	ctx    *modctx.Context
	signal *graph.Signal
}

// Signal lowers signal (evaluated in ctx) to an expression, appending any
// hoisted temporaries to a in the order they were produced. Every sink
// compiled into the same generated statement sequence (every output and
// every register's next-value expression making up one module's
// combinational phase) must share both this Compiler and this
// AssignmentContext: a temporary hoisted while compiling one sink is memoized
// and may be handed back verbatim, as a Ref into a, while compiling a later
// sink that happens to reference the same sub-expression, and that Ref is
// only valid against the AssignmentContext it was actually appended to.
func (c *Compiler) Signal(ctx *modctx.Context, signal *graph.Signal, a *ir.AssignmentContext) ir.Expr {
	work := stack.New[frame]()
	work.Push(frame{kind: enter, ctx: ctx, signal: signal})

	var results []ir.Expr

	pop := func() ir.Expr {
		n := len(results)
		v := results[n-1]
		results = results[:n-1]

		return v
	}

	for !work.IsEmpty() {
		f := work.Pop()
		key := exprKey{f.ctx, f.signal}

		var produced ir.Expr

		haveResult := false

		if f.kind == enter {
			if cached, ok := c.memo[key]; ok {
				results = append(results, cached)
				continue
			}

			switch d := f.signal.Data().(type) {
			case *graph.Lit:
				produced = fromConstant(d.Value, f.signal.BitWidth())
				haveResult = true

			case *graph.Input:
				if driver, parent, ok := f.ctx.ResolveInput(f.signal); ok {
					work.Push(frame{kind: enter, ctx: parent, signal: driver})
					continue
				}

				targetType := ir.FromBitWidth(f.signal.BitWidth())
				ref := &ir.Ref{Name: d.Name, Scope: ir.Member, Type: targetType}
				produced = c.genMask(ref, f.signal.BitWidth(), targetType)
				haveResult = true

			case *graph.Reg:
				state := c.regState(key)
				produced = &ir.Ref{Name: state.ValueName, Scope: ir.Member, Type: ir.FromBitWidth(f.signal.BitWidth())}
				haveResult = true

			case *graph.UnOp, *graph.SimpleBinOp, *graph.AdditiveBinOp, *graph.ComparisonBinOp,
				*graph.ShiftBinOp, *graph.Mul, *graph.MulSigned, *graph.Bits, *graph.Repeat,
				*graph.Concat, *graph.Mux:
				work.Push(frame{kind: leave, ctx: f.ctx, signal: f.signal})
				c.pushOperands(work, f.ctx, f.signal)

				continue

			case *graph.InstanceOutput:
				childCtx := f.ctx.Child(d.Instance)

				out, ok := d.Instance.InstantiatedModule().LookupOutput(d.Name)
				if !ok {
					panic(fmt.Sprintf("InstanceOutput references unknown output %q", d.Name))
				}

				work.Push(frame{kind: enter, ctx: childCtx, signal: out})

				continue

			case *graph.Output:
				work.Push(frame{kind: enter, ctx: f.ctx, signal: d.Source})
				continue

			case *graph.MemReadPortOutput:
				mem := c.memState(f.ctx, d.Mem)
				names := mem.ReadPorts[graph.ReadPortRef{Address: d.Address, Enable: d.Enable}]
				produced = &ir.Ref{Name: names.ValueName, Scope: ir.Member, Type: ir.FromBitWidth(f.signal.BitWidth())}
				haveResult = true

			default:
				panic(fmt.Sprintf("compile: unhandled signal variant %T", d))
			}
		} else {
			produced = c.leave(f, pop, a)
			haveResult = true
		}

		if !haveResult {
			continue
		}

		if c.result.RefCount(f.ctx, f.signal) > 1 {
			produced = a.GenTemp(produced)
		}

		c.memo[key] = produced
		results = append(results, produced)
	}

	log.Debug("compiled signal into ", len(a.Bindings()), " bindings so far")

	return pop()
}

func (c *Compiler) pushOperands(work *stack.Stack[frame], ctx *modctx.Context, signal *graph.Signal) {
	push := func(s *graph.Signal) { work.Push(frame{kind: enter, ctx: ctx, signal: s}) }

	switch d := signal.Data().(type) {
	case *graph.UnOp:
		push(d.Source)
	case *graph.SimpleBinOp:
		push(d.Lhs)
		push(d.Rhs)
	case *graph.AdditiveBinOp:
		push(d.Lhs)
		push(d.Rhs)
	case *graph.ComparisonBinOp:
		push(d.Lhs)
		push(d.Rhs)
	case *graph.ShiftBinOp:
		push(d.Lhs)
		push(d.Rhs)
	case *graph.Mul:
		push(d.Lhs)
		push(d.Rhs)
	case *graph.MulSigned:
		push(d.Lhs)
		push(d.Rhs)
	case *graph.Bits:
		push(d.Source)
	case *graph.Repeat:
		push(d.Source)
	case *graph.Concat:
		push(d.Lhs)
		push(d.Rhs)
	case *graph.Mux:
		push(d.Cond)
		push(d.WhenTrue)
		push(d.WhenFalse)
	}
}

func (c *Compiler) regState(key exprKey) *gather.RegisterState {
	state, ok := c.regs[regLookupKey{key.ctx, key.signal}]
	if !ok {
		panic("compile: register was not gathered before being compiled")
	}

	return state
}

func (c *Compiler) memState(ctx *modctx.Context, mem *graph.Mem) *gather.MemoryState {
	state, ok := c.mems[memLookupKey{ctx, mem}]
	if !ok {
		panic("compile: memory was not gathered before being compiled")
	}

	return state
}

func fromConstant(value big.Int, bitWidth uint) *ir.Constant {
	return &ir.Constant{Value: value, Type: ir.FromBitWidth(bitWidth)}
}

func u32Const(n uint) *ir.Constant {
	return &ir.Constant{Value: *big.NewInt(int64(n)), Type: ir.U32}
}

func zeroConst(t ir.ValueType) *ir.Constant {
	return &ir.Constant{Value: *big.NewInt(0), Type: t}
}
