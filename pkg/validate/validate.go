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
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/hdlforge/hdlforge/pkg/graph"
	"github.com/hdlforge/hdlforge/pkg/modctx"
	"github.com/hdlforge/hdlforge/pkg/util/stack"
)

// Module runs all three structural passes against top: undriven-element
// detection, memory sanity, and combinational-loop detection. It returns the
// first violation found, as either a *StructuralError or a *LoopError.
func Module(top *graph.Module) error {
	log.Debug("validating module hierarchy rooted at ", top.Name())

	if err := detectUndriven(top, top); err != nil {
		return err
	}

	if err := detectMemErrors(top, top); err != nil {
		return err
	}

	return detectCombinationalLoops(modctx.Root(top), top)
}

func detectUndriven(m, root *graph.Module) error {
	for _, reg := range m.Registers() {
		data, _ := reg.Data().(*graph.Reg)
		if !data.Next.HasValue() {
			return &StructuralError{
				Root: root.Name(), Module: m.Name(),
				Detail: fmt.Sprintf(
					"module %q contains a register called %q which is not driven", m.Name(), data.Name),
			}
		}
	}

	for _, inst := range m.Instances() {
		target := inst.InstantiatedModule()
		for _, in := range target.Inputs() {
			data, _ := in.Data().(*graph.Input)
			if _, driven := inst.DrivenInputs()[data.Name]; !driven {
				return &StructuralError{
					Root: root.Name(), Module: m.Name(),
					Detail: fmt.Sprintf(
						"module %q contains an instance of module %q called %q whose input %q is not driven",
						m.Name(), target.Name(), inst.Name(), data.Name),
				}
			}
		}

		if err := detectUndriven(target, root); err != nil {
			return err
		}
	}

	return nil
}

func detectMemErrors(m, root *graph.Module) error {
	for _, mem := range m.Mems() {
		if len(mem.ReadPorts()) == 0 {
			return &StructuralError{
				Root: root.Name(), Module: m.Name(),
				Detail: fmt.Sprintf(
					"module %q contains a memory called %q which doesn't have any read ports", m.Name(), mem.Name()),
			}
		}

		_, _, _, hasWrite := mem.WritePort()
		if mem.InitialContents() == nil && !hasWrite {
			return &StructuralError{
				Root: root.Name(), Module: m.Name(),
				Detail: fmt.Sprintf(
					"module %q contains a memory called %q which doesn't have initial contents or a write port specified; at least one of the two is required",
					m.Name(), mem.Name()),
			}
		}
	}

	for _, inst := range m.Instances() {
		if err := detectMemErrors(inst.InstantiatedModule(), root); err != nil {
			return err
		}
	}

	return nil
}

type frame struct {
	ctx    *modctx.Context
	signal *graph.Signal
}

func detectCombinationalLoops(c *modctx.Context, root *graph.Module) error {
	for _, inst := range c.Module().Instances() {
		child := c.Child(inst)

		for _, out := range child.Module().Outputs() {
			data, _ := out.Data().(*graph.Output)
			if err := traceSignal(child, data.Source, child, data.Source, child.Module().Name(), data.Name, root); err != nil {
				return err
			}
		}

		if err := detectCombinationalLoops(child, root); err != nil {
			return err
		}
	}

	return nil
}

func traceSignal(
	ctx *modctx.Context, signal *graph.Signal, sourceCtx *modctx.Context, sourceDriver *graph.Signal,
	originModule, originOutput string, root *graph.Module,
) error {
	work := stack.New[frame]()
	work.Push(frame{ctx, signal})

	for !work.IsEmpty() {
		f := work.Pop()

		switch d := f.signal.Data().(type) {
		case *graph.Lit, *graph.Reg, *graph.MemReadPortOutput:

		case *graph.Input:
			if driver, parent, ok := f.ctx.ResolveInput(f.signal); ok {
				work.Push(frame{parent, driver})
			}

		case *graph.Output:
			if f.ctx == sourceCtx && d.Source == sourceDriver {
				return &LoopError{Root: root.Name(), Module: originModule, Output: originOutput}
			}

			work.Push(frame{f.ctx, d.Source})

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

			// Push the Output node itself, not its Source directly, so the
			// *graph.Output case below gets a chance to compare it against
			// sourceDriver before descending further.
			work.Push(frame{childCtx, out})

		default:
			panic(fmt.Sprintf("traceSignal: unhandled signal variant %T", d))
		}
	}

	return nil
}
