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

// Package graph is the graph arena, signal algebra and module/instance/
// register/memory hierarchy (components A, B and C). A Context owns every
// node created through it; all builder calls validate their constraints
// immediately and panic with a single-line diagnostic on failure, since a
// malformed builder call is a programmer error rather than a recoverable
// condition.
package graph

import (
	"math/big"

	"github.com/hdlforge/hdlforge/pkg/util"
)

// Signal is a node in the combinational/sequential graph. It carries an
// immutable bit width and a tagged variant (Data) selecting its kind. The
// variant types are exported, in the style of the teacher's hir.Term
// interface (*hir.Add, *hir.Cast, *hir.Constant, ...), so that the
// validator, gatherer and signal compiler — each its own package — can
// type-switch on them without Signal itself growing every downstream
// concern.
type Signal struct {
	module   *Module
	bitWidth uint
	data     Data
}

// Data is the tagged-variant interface every concrete Signal kind
// implements.
type Data interface {
	isSignalData()
}

// Module returns the module this signal is rooted in (invariant (i) of the
// data model: every Signal belongs to exactly one Module).
func (s *Signal) Module() *Module { return s.module }

// BitWidth returns this signal's declared bit width, always in [1,128].
func (s *Signal) BitWidth() uint { return s.bitWidth }

// Data returns this signal's tagged variant.
func (s *Signal) Data() Data { return s.data }

// ============================================================================
// Variants
// ============================================================================

// Lit is a constant signal; Value never has bits set above the owning
// Signal's BitWidth.
type Lit struct {
	Value big.Int
}

func (*Lit) isSignalData() {}

// Input is a module input. A module definition is a template that may be
// instantiated many times, so the signal driving an Input is a property of
// the Instance, not of the Input node itself; callers resolve it through
// Instance.DrivenInputs (invariant (ii): each input is driven exactly once
// per instance).
type Input struct {
	Name string
}

func (*Input) isSignalData() {}

// Output is a module output; its BitWidth always equals Source's.
type Output struct {
	Name   string
	Source *Signal
}

func (*Output) isSignalData() {}

// Reg is a clocked register. Next is a write-once cell that must be
// assigned before validation; Initial is empty if the register has no reset
// value.
type Reg struct {
	Name    string
	Next    util.Option[*Signal]
	Initial util.Option[big.Int]
}

func (*Reg) isSignalData() {}

// UnOpKind identifies the single supported unary signal operator.
type UnOpKind uint8

// Not is the only unary operator in the algebra.
const Not UnOpKind = 0

// UnOp applies a unary operator; BitWidth equals Source's.
type UnOp struct {
	Op     UnOpKind
	Source *Signal
}

func (*UnOp) isSignalData() {}

// SimpleBinOpKind identifies a bitwise binary operator whose operands and
// result share a single bit width.
type SimpleBinOpKind uint8

// The bitwise operator set.
const (
	BitAnd SimpleBinOpKind = iota
	BitOr
	BitXor
)

// SimpleBinOp is a bitwise binary operator; Lhs and Rhs share BitWidth,
// which the result also preserves.
type SimpleBinOp struct {
	Op       SimpleBinOpKind
	Lhs, Rhs *Signal
}

func (*SimpleBinOp) isSignalData() {}

// AdditiveBinOpKind identifies wraparound addition/subtraction.
type AdditiveBinOpKind uint8

// The additive operator set.
const (
	Add AdditiveBinOpKind = iota
	Sub
)

// AdditiveBinOp is wraparound addition or subtraction; Lhs and Rhs share
// BitWidth, which the result also preserves.
type AdditiveBinOp struct {
	Op       AdditiveBinOpKind
	Lhs, Rhs *Signal
}

func (*AdditiveBinOp) isSignalData() {}

// ComparisonBinOpKind identifies one of the ten comparison operators; the
// signed variants interpret their equal-width operands as two's complement.
type ComparisonBinOpKind uint8

// The comparison operator set.
const (
	Eq ComparisonBinOpKind = iota
	Ne
	Lt
	Le
	Gt
	Ge
	LtS
	LeS
	GtS
	GeS
)

// IsSigned reports whether this comparison interprets its operands as two's
// complement.
func (op ComparisonBinOpKind) IsSigned() bool {
	switch op {
	case LtS, LeS, GtS, GeS:
		return true
	default:
		return false
	}
}

// ComparisonBinOp compares Lhs and Rhs, which share a bit width; the
// owning Signal's BitWidth is always 1.
type ComparisonBinOp struct {
	Op       ComparisonBinOpKind
	Lhs, Rhs *Signal
}

func (*ComparisonBinOp) isSignalData() {}

// ShiftBinOpKind identifies a shift operator. Shl and Shr are logical;
// ShrArith is arithmetic (sign-filling).
type ShiftBinOpKind uint8

// The shift operator set.
const (
	Shl ShiftBinOpKind = iota
	Shr
	ShrArith
)

// ShiftBinOp shifts Lhs by the unsigned count held in Rhs (whose bit width
// need not match Lhs's); the owning Signal's BitWidth equals Lhs's.
type ShiftBinOp struct {
	Op       ShiftBinOpKind
	Lhs, Rhs *Signal
}

func (*ShiftBinOp) isSignalData() {}

// Mul is unsigned multiplication; the owning Signal's BitWidth equals
// Lhs.BitWidth() + Rhs.BitWidth().
type Mul struct {
	Lhs, Rhs *Signal
}

func (*Mul) isSignalData() {}

// MulSigned is two's-complement multiplication; the owning Signal's
// BitWidth equals Lhs.BitWidth() + Rhs.BitWidth().
type MulSigned struct {
	Lhs, Rhs *Signal
}

func (*MulSigned) isSignalData() {}

// Bits slices Source[High:Low] inclusive; the owning Signal's BitWidth
// equals High-Low+1.
type Bits struct {
	Source    *Signal
	High, Low uint
}

func (*Bits) isSignalData() {}

// Repeat concatenates Source with itself Count times; the owning Signal's
// BitWidth equals Source.BitWidth() * Count.
type Repeat struct {
	Source *Signal
	Count  uint
}

func (*Repeat) isSignalData() {}

// Concat places Lhs in the high-order bits and Rhs in the low-order bits;
// the owning Signal's BitWidth equals Lhs.BitWidth() + Rhs.BitWidth().
type Concat struct {
	Lhs, Rhs *Signal
}

func (*Concat) isSignalData() {}

// Mux selects WhenTrue or WhenFalse based on Cond, which must have
// BitWidth() == 1; WhenTrue and WhenFalse share a bit width, which the
// owning Signal preserves.
type Mux struct {
	Cond, WhenTrue, WhenFalse *Signal
}

func (*Mux) isSignalData() {}

// InstanceOutput references a child instance's named output.
type InstanceOutput struct {
	Instance *Instance
	Name     string
}

func (*InstanceOutput) isSignalData() {}

// MemReadPortOutput is the latched read value of one of Mem's read ports,
// identified by its (Address, Enable) pair.
type MemReadPortOutput struct {
	Mem             *Mem
	Address, Enable *Signal
}

func (*MemReadPortOutput) isSignalData() {}
