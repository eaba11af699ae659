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

// Package sim ties the validator, gatherer and signal compiler together into
// a single Generate entry point, translating their output into the flat
// emission contract (Module) an external Emitter renders into target source.
package sim

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/hdlforge/hdlforge/pkg/compile"
	"github.com/hdlforge/hdlforge/pkg/gather"
	"github.com/hdlforge/hdlforge/pkg/graph"
	"github.com/hdlforge/hdlforge/pkg/ir"
	"github.com/hdlforge/hdlforge/pkg/modctx"
	"github.com/hdlforge/hdlforge/pkg/validate"
)

// Generate validates top, gathers its state elements, lowers every output
// and every register's and memory port's driving expression, and hands the
// resulting Module to emit. It returns the first validation error found; an
// already-constructed graph can never fail during gathering or compilation,
// since those passes assume a validated hierarchy.
func Generate(top *graph.Module, opts Options, emit Emitter) error {
	log.Debug("generating simulator for module ", top.Name())

	if err := validate.Module(top); err != nil {
		return err
	}

	rootCtx := modctx.Root(top)
	result := gather.Module(rootCtx)

	c := compile.New(result)
	a := ir.NewAssignmentContext("__temp_")

	module := Module{
		Name:    top.Name(),
		Inputs:  ports(top.Inputs()),
		Outputs: ports(top.Outputs()),
	}

	for _, out := range top.Outputs() {
		data, _ := out.Data().(*graph.Output)
		expr := c.Signal(rootCtx, out, a)
		module.PropagateOutputs = append(module.PropagateOutputs, ir.Binding{Name: data.Name, Expr: expr})
	}

	for _, reg := range result.Registers {
		nextExpr := c.Signal(reg.Context, reg.Data.Next.Unwrap(), a)
		module.Propagate = append(module.Propagate, ir.Binding{Name: reg.NextName, Expr: nextExpr})

		module.Posedge = append(module.Posedge, ir.Binding{
			Name: reg.ValueName,
			Expr: &ir.Ref{Name: reg.NextName, Scope: ir.Member, Type: ir.FromBitWidth(reg.Signal.BitWidth())},
		})

		var initial *ir.Constant
		if reg.Data.Initial.HasValue() {
			v := reg.Data.Initial.Unwrap()
			initial = &ir.Constant{Value: v, Type: ir.FromBitWidth(reg.Signal.BitWidth())}
		}

		module.Regs = append(module.Regs, RegisterState{
			ValueName: reg.ValueName, NextName: reg.NextName,
			BitWidth: reg.Signal.BitWidth(), Initial: initial,
		})
	}

	for _, mem := range result.Memories {
		state := MemoryState{
			BufferName: mem.Name, AddrWidth: mem.Mem.AddrWidth(), DataWidth: mem.Mem.DataWidth(),
		}

		for _, rp := range mem.Mem.ReadPorts() {
			names := mem.ReadPorts[rp]

			addrExpr := c.Signal(mem.Context, rp.Address, a)
			enableExpr := c.Signal(mem.Context, rp.Enable, a)
			module.Propagate = append(module.Propagate,
				ir.Binding{Name: names.AddressName, Expr: addrExpr},
				ir.Binding{Name: names.EnableName, Expr: enableExpr},
			)

			state.ReadPorts = append(state.ReadPorts, ReadPort{
				AddressName: names.AddressName, EnableName: names.EnableName, ValueName: names.ValueName,
			})
		}

		if address, value, enable, ok := mem.Mem.WritePort(); ok {
			addrExpr := c.Signal(mem.Context, address, a)
			valueExpr := c.Signal(mem.Context, value, a)
			enableExpr := c.Signal(mem.Context, enable, a)
			module.Propagate = append(module.Propagate,
				ir.Binding{Name: mem.WriteAddressName, Expr: addrExpr},
				ir.Binding{Name: mem.WriteValueName, Expr: valueExpr},
				ir.Binding{Name: mem.WriteEnableName, Expr: enableExpr},
			)

			state.WritePort = &WritePort{
				AddressName: mem.WriteAddressName, ValueName: mem.WriteValueName, EnableName: mem.WriteEnableName,
			}
		}

		if contents := mem.Mem.InitialContents(); contents != nil {
			dataType := ir.FromBitWidth(mem.Mem.DataWidth())
			state.Initial = make([]*ir.Constant, len(contents))

			for i, v := range contents {
				state.Initial[i] = &ir.Constant{Value: *v, Type: dataType}
			}
		}

		module.Mems = append(module.Mems, state)
	}

	// Temporaries hoisted while compiling any sink come first, since every
	// later binding and every output may refer to them.
	module.Propagate = append(append([]ir.Binding{}, a.Bindings()...), module.Propagate...)

	log.Debug("lowered module ", top.Name(), " into ",
		len(module.Propagate), " propagate bindings and ", len(module.Posedge), " posedge bindings")

	if opts.Tracing {
		log.Debug("tracing requested for module ", top.Name(), " but has no effect on the emitted IR")
	}

	if err := emit.Emit(module); err != nil {
		return fmt.Errorf("emitting module %q: %w", top.Name(), err)
	}

	return nil
}

func ports(signals []*graph.Signal) []Port {
	out := make([]Port, len(signals))

	for i, s := range signals {
		var name string

		switch d := s.Data().(type) {
		case *graph.Input:
			name = d.Name
		case *graph.Output:
			name = d.Name
		default:
			panic(fmt.Sprintf("sim: port signal has unexpected variant %T", d))
		}

		out[i] = Port{Name: name, BitWidth: s.BitWidth()}
	}

	return out
}
