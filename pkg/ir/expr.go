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
package ir

import "math/big"

// Scope distinguishes a Ref into the simulated module's persistent state
// (its fields) from a Ref into a binding introduced during this cycle's
// evaluation (a local).
type Scope uint8

// The two scopes a Ref can resolve against.
const (
	Member Scope = iota
	Local
)

// UnOp identifies the single supported unary operator.
type UnOp uint8

// Not is logical/bitwise negation, depending on the operand's ValueType.
const Not UnOp = 0

// InfixBinOp identifies the infix binary operators available in the target
// language's expression grammar.
type InfixBinOp uint8

// The infix operator set the compiler ever emits.
const (
	BitAnd InfixBinOp = iota
	BitOr
	BitXor
	Eq
	Ne
	Lt
	Le
	Gt
	Ge
	Shl
	Shr
	Mul
)

// Expr is a node in the lowered expression tree. It is a plain, read-only
// tree: nothing in this package mutates an Expr after construction, and
// nothing here knows how to render one as text.
type Expr interface {
	// ValueType reports the container type this expression evaluates to.
	ValueType() ValueType
	isExpr()
}

// Constant is a literal value of a known ValueType. Values are held as
// big.Int (following the same width-bounded-integer convention the graph
// package uses for Signal literals) rather than a native machine integer,
// since U128/I128 have no native Go representation.
type Constant struct {
	Value big.Int
	Type  ValueType
}

func (c *Constant) ValueType() ValueType { return c.Type }
func (*Constant) isExpr()                {}

// Ref names a value already bound either as module state (Member) or as a
// local produced earlier in the same AssignmentContext (Local).
type Ref struct {
	Name  string
	Scope Scope
	Type  ValueType
}

func (r *Ref) ValueType() ValueType { return r.Type }
func (*Ref) isExpr()                {}

// UnOpExpr applies a unary operator to a single operand.
type UnOpExpr struct {
	Op     UnOp
	Source Expr
	Type   ValueType
}

func (u *UnOpExpr) ValueType() ValueType { return u.Type }
func (*UnOpExpr) isExpr()                {}

// InfixBinOpExpr applies an infix binary operator to two operands. Both
// operands share a ValueType, except for Shl and Shr, whose right operand is
// a U32 shift amount whatever the left operand's type. Comparison operators
// produce Bool regardless of their operands' type; all others preserve the
// left operand's type.
type InfixBinOpExpr struct {
	Op       InfixBinOp
	Lhs, Rhs Expr
	Type     ValueType
}

func (b *InfixBinOpExpr) ValueType() ValueType { return b.Type }
func (*InfixBinOpExpr) isExpr()                {}

// UnaryMemberCall models a method-style call taking one explicit argument
// beyond its receiver, e.g. `lhs.wrapping_add(rhs)` or `x.checked_shl(n)`.
// The target-language rendering of `Name` is entirely the Emitter's concern;
// this IR only records which operation was requested.
type UnaryMemberCall struct {
	Target Expr
	Name   string
	Arg    Expr
	Type   ValueType
}

func (c *UnaryMemberCall) ValueType() ValueType { return c.Type }
func (*UnaryMemberCall) isExpr()                {}

// BinaryFunctionCall models a free-function call taking two arguments, e.g.
// `min(lhs, rhs)`.
type BinaryFunctionCall struct {
	Name     string
	Lhs, Rhs Expr
	Type     ValueType
}

func (c *BinaryFunctionCall) ValueType() ValueType { return c.Type }
func (*BinaryFunctionCall) isExpr()                {}

// Ternary is a condition/then/else expression; Cond must be Bool and Then /
// Else must share a ValueType, which this node also reports.
type Ternary struct {
	Cond, Then, Else Expr
	Type             ValueType
}

func (t *Ternary) ValueType() ValueType { return t.Type }
func (*Ternary) isExpr()                {}

// Cast narrows or widens Src into Target. A cast into Bool goes through
// gen_cast's special case (compile.genCast) and never produces a bare Cast
// node, so Target is never Bool; Src may still be Bool, e.g. when a 1-bit
// operand is widened to U32.
type Cast struct {
	Src    Expr
	Target ValueType
}

func (c *Cast) ValueType() ValueType { return c.Target }
func (*Cast) isExpr()                {}
