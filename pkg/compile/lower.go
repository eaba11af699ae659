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
package compile

import (
	"fmt"
	"math"
	"math/big"

	"github.com/hdlforge/hdlforge/pkg/graph"
	"github.com/hdlforge/hdlforge/pkg/ir"
)

// leave produces the expression for a compound signal once all of its
// operands have already been compiled and are available, in push order, from
// pop. Each case below mirrors one arm of kaze's Frame::Leave match, operand
// for operand: the order operands are popped here must match the order their
// Enter frames were pushed in pushOperands, since that push order determines
// which operand's compiled expression lands on top of the results stack
// first.
func (c *Compiler) leave(f frame, pop func() ir.Expr, a *ir.AssignmentContext) ir.Expr {
	switch d := f.signal.Data().(type) {
	case *graph.UnOp:
		source := pop()
		targetType := ir.FromBitWidth(f.signal.BitWidth())
		expr := &ir.UnOpExpr{Op: ir.Not, Source: source, Type: targetType}

		return c.genMask(expr, f.signal.BitWidth(), targetType)

	case *graph.SimpleBinOp:
		lhs := pop()
		rhs := pop()
		targetType := ir.FromBitWidth(f.signal.BitWidth())

		return &ir.InfixBinOpExpr{Op: toInfixSimple(d.Op), Lhs: lhs, Rhs: rhs, Type: targetType}

	case *graph.AdditiveBinOp:
		sourceBitWidth := d.Lhs.BitWidth()
		sourceType := ir.FromBitWidth(sourceBitWidth)
		lhs := pop()
		rhs := pop()
		opInputType := widenBool(sourceType)
		lhs = c.genCast(lhs, sourceType, opInputType)
		rhs = c.genCast(rhs, sourceType, opInputType)

		name := "wrapping_add"
		if d.Op == graph.Sub {
			name = "wrapping_sub"
		}

		expr := ir.Expr(&ir.UnaryMemberCall{Target: lhs, Name: name, Arg: rhs, Type: opInputType})

		targetBitWidth := f.signal.BitWidth()
		targetType := ir.FromBitWidth(targetBitWidth)
		expr = c.genCast(expr, opInputType, targetType)

		return c.genMask(expr, targetBitWidth, targetType)

	case *graph.ComparisonBinOp:
		sourceBitWidth := d.Lhs.BitWidth()
		sourceType := ir.FromBitWidth(sourceBitWidth)
		lhs := pop()
		rhs := pop()

		if d.Op.IsSigned() {
			sourceTypeSigned := sourceType.ToSigned()
			lhs = c.genCast(lhs, sourceType, sourceTypeSigned)
			rhs = c.genCast(rhs, sourceType, sourceTypeSigned)
			lhs = c.genSignExtendShifts(lhs, sourceBitWidth, sourceTypeSigned)
			rhs = c.genSignExtendShifts(rhs, sourceBitWidth, sourceTypeSigned)
		}

		return &ir.InfixBinOpExpr{Op: toInfixCompare(d.Op), Lhs: lhs, Rhs: rhs, Type: ir.Bool}

	case *graph.ShiftBinOp:
		return c.leaveShift(f.signal, d, pop)

	case *graph.Mul:
		lhsType := ir.FromBitWidth(d.Lhs.BitWidth())
		rhsType := ir.FromBitWidth(d.Rhs.BitWidth())
		lhs := pop()
		rhs := pop()
		targetType := ir.FromBitWidth(f.signal.BitWidth())
		lhs = c.genCast(lhs, lhsType, targetType)
		rhs = c.genCast(rhs, rhsType, targetType)

		return &ir.InfixBinOpExpr{Op: ir.Mul, Lhs: lhs, Rhs: rhs, Type: targetType}

	case *graph.MulSigned:
		lhsBitWidth := d.Lhs.BitWidth()
		rhsBitWidth := d.Rhs.BitWidth()
		lhsType := ir.FromBitWidth(lhsBitWidth)
		rhsType := ir.FromBitWidth(rhsBitWidth)
		lhs := pop()
		rhs := pop()

		targetBitWidth := f.signal.BitWidth()
		targetType := ir.FromBitWidth(targetBitWidth)
		targetTypeSigned := targetType.ToSigned()

		lhs = c.genCast(lhs, lhsType, targetTypeSigned)
		rhs = c.genCast(rhs, rhsType, targetTypeSigned)
		lhs = c.genSignExtendShifts(lhs, lhsBitWidth, targetTypeSigned)
		rhs = c.genSignExtendShifts(rhs, rhsBitWidth, targetTypeSigned)

		expr := ir.Expr(&ir.InfixBinOpExpr{Op: ir.Mul, Lhs: lhs, Rhs: rhs, Type: targetTypeSigned})
		expr = c.genCast(expr, targetTypeSigned, targetType)

		return c.genMask(expr, targetBitWidth, targetType)

	case *graph.Bits:
		expr := pop()
		expr = c.genShiftRight(expr, d.Low)
		targetBitWidth := f.signal.BitWidth()
		targetType := ir.FromBitWidth(targetBitWidth)
		expr = c.genCast(expr, ir.FromBitWidth(d.Source.BitWidth()), targetType)

		return c.genMask(expr, targetBitWidth, targetType)

	case *graph.Repeat:
		expr := pop()
		targetType := ir.FromBitWidth(f.signal.BitWidth())
		expr = c.genCast(expr, ir.FromBitWidth(d.Source.BitWidth()), targetType)

		if d.Count > 1 {
			sourceExpr := ir.Expr(a.GenTemp(expr))

			for i := uint(1); i < d.Count; i++ {
				rhs := c.genShiftLeft(sourceExpr, i*d.Source.BitWidth())
				expr = &ir.InfixBinOpExpr{Op: ir.BitOr, Lhs: expr, Rhs: rhs, Type: targetType}
			}
		}

		return expr

	case *graph.Concat:
		lhsType := ir.FromBitWidth(d.Lhs.BitWidth())
		rhsBitWidth := d.Rhs.BitWidth()
		rhsType := ir.FromBitWidth(rhsBitWidth)
		lhs := pop()
		rhs := pop()
		targetType := ir.FromBitWidth(f.signal.BitWidth())
		lhs = c.genCast(lhs, lhsType, targetType)
		rhs = c.genCast(rhs, rhsType, targetType)
		lhs = c.genShiftLeft(lhs, rhsBitWidth)

		return &ir.InfixBinOpExpr{Op: ir.BitOr, Lhs: lhs, Rhs: rhs, Type: targetType}

	case *graph.Mux:
		cond := pop()
		whenTrue := pop()
		whenFalse := pop()

		return &ir.Ternary{Cond: cond, Then: whenTrue, Else: whenFalse, Type: whenTrue.ValueType()}

	default:
		panic(fmt.Sprintf("compile: unhandled compound signal variant %T", d))
	}
}

func (c *Compiler) leaveShift(signal *graph.Signal, d *graph.ShiftBinOp, pop func() ir.Expr) ir.Expr {
	lhsSourceBitWidth := d.Lhs.BitWidth()
	lhsSourceType := ir.FromBitWidth(lhsSourceBitWidth)
	rhsSourceType := ir.FromBitWidth(d.Rhs.BitWidth())

	lhs := pop()
	rhs := pop()

	lhsOpInputType := widenBool(lhsSourceType)
	lhs = c.genCast(lhs, lhsSourceType, lhsOpInputType)

	chainType := lhsOpInputType

	if d.Op == graph.ShrArith {
		chainType = lhsOpInputType.ToSigned()
		lhs = c.genCast(lhs, lhsOpInputType, chainType)
		lhs = c.genSignExtendShifts(lhs, lhsSourceBitWidth, chainType)
	}

	rhsOpInputType := widenBool(rhsSourceType)
	rhs = c.genCast(rhs, rhsSourceType, rhsOpInputType)
	rhs = ir.Expr(&ir.BinaryFunctionCall{
		Name: "std::cmp::min", Lhs: rhs, Rhs: u32MaxConst(rhsOpInputType), Type: rhsOpInputType,
	})
	// Mirrors kaze's gen_cast(rhs, lhs_op_input_type, ValueType::U32) literally: the
	// source type threaded through here is the shift amount's own input type, not
	// lhs's, but both are always an unsigned container, and it only changes whether
	// the no-op short-circuit fires when the two happen to already agree with U32.
	rhs = c.genCast(rhs, lhsOpInputType, ir.U32)

	methodName := "checked_shl"
	if d.Op != graph.Shl {
		methodName = "checked_shr"
	}

	expr := ir.Expr(&ir.UnaryMemberCall{Target: lhs, Name: methodName, Arg: rhs, Type: chainType})

	var fallback ir.Expr
	if d.Op == graph.ShrArith {
		fallback = &ir.InfixBinOpExpr{
			Lhs: lhs, Rhs: u32Const(lhsOpInputType.BitWidth() - 1), Op: ir.Shr, Type: chainType,
		}
	} else {
		fallback = zeroConst(lhsOpInputType)
	}

	expr = &ir.UnaryMemberCall{Target: expr, Name: "unwrap_or", Arg: fallback, Type: chainType}

	opOutputType := lhsOpInputType
	if d.Op == graph.ShrArith {
		expr = c.genCast(expr, chainType, opOutputType)
	}

	targetBitWidth := signal.BitWidth()
	targetType := ir.FromBitWidth(targetBitWidth)
	expr = c.genCast(expr, opOutputType, targetType)

	return c.genMask(expr, targetBitWidth, targetType)
}

func toInfixSimple(op graph.SimpleBinOpKind) ir.InfixBinOp {
	switch op {
	case graph.BitAnd:
		return ir.BitAnd
	case graph.BitOr:
		return ir.BitOr
	case graph.BitXor:
		return ir.BitXor
	default:
		panic(fmt.Sprintf("compile: unhandled SimpleBinOpKind %d", op))
	}
}

func toInfixCompare(op graph.ComparisonBinOpKind) ir.InfixBinOp {
	switch op {
	case graph.Eq:
		return ir.Eq
	case graph.Ne:
		return ir.Ne
	case graph.Lt, graph.LtS:
		return ir.Lt
	case graph.Le, graph.LeS:
		return ir.Le
	case graph.Gt, graph.GtS:
		return ir.Gt
	case graph.Ge, graph.GeS:
		return ir.Ge
	default:
		panic(fmt.Sprintf("compile: unhandled ComparisonBinOpKind %d", op))
	}
}

func widenBool(t ir.ValueType) ir.ValueType {
	if t == ir.Bool {
		return ir.U32
	}

	return t
}

// genMask ANDs expr with a constant of targetType whose low bitWidth bits are
// set, a no-op once bitWidth already fills the container.
func (c *Compiler) genMask(expr ir.Expr, bitWidth uint, targetType ir.ValueType) ir.Expr {
	if bitWidth == targetType.BitWidth() {
		return expr
	}

	mask := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), bitWidth), big.NewInt(1))

	return &ir.InfixBinOpExpr{
		Lhs: expr, Rhs: &ir.Constant{Value: *mask, Type: targetType}, Op: ir.BitAnd, Type: targetType,
	}
}

func (c *Compiler) genShiftLeft(expr ir.Expr, shift uint) ir.Expr {
	if shift == 0 {
		return expr
	}

	return &ir.InfixBinOpExpr{Lhs: expr, Rhs: u32Const(shift), Op: ir.Shl, Type: expr.ValueType()}
}

func (c *Compiler) genShiftRight(expr ir.Expr, shift uint) ir.Expr {
	if shift == 0 {
		return expr
	}

	return &ir.InfixBinOpExpr{Lhs: expr, Rhs: u32Const(shift), Op: ir.Shr, Type: expr.ValueType()}
}

// genCast converts expr from sourceType to targetType, a no-op if they
// already agree. A cast into Bool becomes a != 0 comparison rather than a
// bare Cast node, since the target language has no Bool-sized integer
// container to cast into directly.
func (c *Compiler) genCast(expr ir.Expr, sourceType, targetType ir.ValueType) ir.Expr {
	if sourceType == targetType {
		return expr
	}

	if targetType == ir.Bool {
		expr = c.genMask(expr, 1, sourceType)

		return &ir.InfixBinOpExpr{Lhs: expr, Rhs: zeroConst(sourceType), Op: ir.Ne, Type: ir.Bool}
	}

	return &ir.Cast{Src: expr, Target: targetType}
}

// genSignExtendShifts sign-extends a value that occupies only the low
// sourceBitWidth bits of targetType's container by shifting it up against the
// container's own sign bit and back down, which is arithmetic once targetType
// is signed.
func (c *Compiler) genSignExtendShifts(expr ir.Expr, sourceBitWidth uint, targetType ir.ValueType) ir.Expr {
	shift := targetType.BitWidth() - sourceBitWidth
	expr = c.genShiftLeft(expr, shift)

	return c.genShiftRight(expr, shift)
}

func u32MaxConst(t ir.ValueType) *ir.Constant {
	return &ir.Constant{Value: *big.NewInt(int64(math.MaxUint32)), Type: t}
}
