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

	"github.com/hdlforge/hdlforge/pkg/util"
)

func sameModule(op string, a, b *Signal) {
	if a.module != b.module {
		panic(fmt.Sprintf("%s: operands belong to different modules (%q and %q)", op, a.module.name, b.module.name))
	}
}

func requireEqualWidth(op string, a, b *Signal) {
	if a.bitWidth != b.bitWidth {
		panic(fmt.Sprintf("%s: operand widths disagree (%d and %d)", op, a.bitWidth, b.bitWidth))
	}
}

func requireWidth(op string, s *Signal, want uint) {
	if s.bitWidth != want {
		panic(fmt.Sprintf("%s: expected %d bits, got %d", op, want, s.bitWidth))
	}
}

// Not returns the bitwise complement of s.
func (s *Signal) Not() *Signal {
	return s.module.newSignal(s.bitWidth, &UnOp{Op: Not, Source: s})
}

func (s *Signal) simpleBinOp(op string, kind SimpleBinOpKind, rhs *Signal) *Signal {
	sameModule(op, s, rhs)
	requireEqualWidth(op, s, rhs)

	return s.module.newSignal(s.bitWidth, &SimpleBinOp{Op: kind, Lhs: s, Rhs: rhs})
}

// BitAnd returns the bitwise AND of s and rhs, which must share a module and
// bit width.
func (s *Signal) BitAnd(rhs *Signal) *Signal { return s.simpleBinOp("BitAnd", BitAnd, rhs) }

// BitOr returns the bitwise OR of s and rhs, which must share a module and
// bit width.
func (s *Signal) BitOr(rhs *Signal) *Signal { return s.simpleBinOp("BitOr", BitOr, rhs) }

// BitXor returns the bitwise XOR of s and rhs, which must share a module and
// bit width.
func (s *Signal) BitXor(rhs *Signal) *Signal { return s.simpleBinOp("BitXor", BitXor, rhs) }

func (s *Signal) additiveBinOp(op string, kind AdditiveBinOpKind, rhs *Signal) *Signal {
	sameModule(op, s, rhs)
	requireEqualWidth(op, s, rhs)

	return s.module.newSignal(s.bitWidth, &AdditiveBinOp{Op: kind, Lhs: s, Rhs: rhs})
}

// Add returns the wraparound sum of s and rhs, which must share a module and
// bit width.
func (s *Signal) Add(rhs *Signal) *Signal { return s.additiveBinOp("Add", Add, rhs) }

// Sub returns the wraparound difference s - rhs; s and rhs must share a
// module and bit width.
func (s *Signal) Sub(rhs *Signal) *Signal { return s.additiveBinOp("Sub", Sub, rhs) }

func (s *Signal) comparisonBinOp(op string, kind ComparisonBinOpKind, rhs *Signal) *Signal {
	sameModule(op, s, rhs)
	requireEqualWidth(op, s, rhs)

	return s.module.newSignal(1, &ComparisonBinOp{Op: kind, Lhs: s, Rhs: rhs})
}

// Eq returns a 1-bit signal asserted when s equals rhs.
func (s *Signal) Eq(rhs *Signal) *Signal { return s.comparisonBinOp("Eq", Eq, rhs) }

// Ne returns a 1-bit signal asserted when s does not equal rhs.
func (s *Signal) Ne(rhs *Signal) *Signal { return s.comparisonBinOp("Ne", Ne, rhs) }

// Lt returns a 1-bit signal asserted when s is unsigned-less-than rhs.
func (s *Signal) Lt(rhs *Signal) *Signal { return s.comparisonBinOp("Lt", Lt, rhs) }

// Le returns a 1-bit signal asserted when s is unsigned-less-than-or-equal
// to rhs.
func (s *Signal) Le(rhs *Signal) *Signal { return s.comparisonBinOp("Le", Le, rhs) }

// Gt returns a 1-bit signal asserted when s is unsigned-greater-than rhs.
func (s *Signal) Gt(rhs *Signal) *Signal { return s.comparisonBinOp("Gt", Gt, rhs) }

// Ge returns a 1-bit signal asserted when s is unsigned-greater-than-or-equal
// to rhs.
func (s *Signal) Ge(rhs *Signal) *Signal { return s.comparisonBinOp("Ge", Ge, rhs) }

// LtS returns a 1-bit signal asserted when s is signed-less-than rhs.
func (s *Signal) LtS(rhs *Signal) *Signal { return s.comparisonBinOp("LtS", LtS, rhs) }

// LeS returns a 1-bit signal asserted when s is signed-less-than-or-equal to
// rhs.
func (s *Signal) LeS(rhs *Signal) *Signal { return s.comparisonBinOp("LeS", LeS, rhs) }

// GtS returns a 1-bit signal asserted when s is signed-greater-than rhs.
func (s *Signal) GtS(rhs *Signal) *Signal { return s.comparisonBinOp("GtS", GtS, rhs) }

// GeS returns a 1-bit signal asserted when s is signed-greater-than-or-equal
// to rhs.
func (s *Signal) GeS(rhs *Signal) *Signal { return s.comparisonBinOp("GeS", GeS, rhs) }

func (s *Signal) shiftBinOp(op string, kind ShiftBinOpKind, amount *Signal) *Signal {
	sameModule(op, s, amount)

	return s.module.newSignal(s.bitWidth, &ShiftBinOp{Op: kind, Lhs: s, Rhs: amount})
}

// Shl returns s logically shifted left by the unsigned count in amount,
// which need not share s's bit width; bits shifted off the top are
// discarded and vacated low bits are zero-filled. Shift counts at or beyond
// s's bit width yield zero.
func (s *Signal) Shl(amount *Signal) *Signal { return s.shiftBinOp("Shl", Shl, amount) }

// Shr returns s logically shifted right by the unsigned count in amount;
// vacated high bits are zero-filled. Shift counts at or beyond s's bit width
// yield zero.
func (s *Signal) Shr(amount *Signal) *Signal { return s.shiftBinOp("Shr", Shr, amount) }

// ShrArith returns s arithmetically shifted right by the unsigned count in
// amount; vacated high bits are filled with s's sign bit. Shift counts at or
// beyond s's bit width yield all-sign-bit.
func (s *Signal) ShrArith(amount *Signal) *Signal { return s.shiftBinOp("ShrArith", ShrArith, amount) }

// Mul returns the unsigned product of s and rhs, widened to
// s.BitWidth() + rhs.BitWidth() bits; s and rhs must share a module but may
// differ in width. Panics if the widened result would exceed 128 bits.
func (s *Signal) Mul(rhs *Signal) *Signal {
	sameModule("Mul", s, rhs)

	width := s.bitWidth + rhs.bitWidth
	checkWidth(s.module, "Mul result", width)

	return s.module.newSignal(width, &Mul{Lhs: s, Rhs: rhs})
}

// MulSigned returns the two's-complement product of s and rhs, widened to
// s.BitWidth() + rhs.BitWidth() bits; s and rhs must share a module but may
// differ in width. Panics if the widened result would exceed 128 bits.
func (s *Signal) MulSigned(rhs *Signal) *Signal {
	sameModule("MulSigned", s, rhs)

	width := s.bitWidth + rhs.bitWidth
	checkWidth(s.module, "MulSigned result", width)

	return s.module.newSignal(width, &MulSigned{Lhs: s, Rhs: rhs})
}

// Bits slices the inclusive range [low, high] out of s. Panics if
// high < low or high is not a valid bit index of s.
func (s *Signal) Bits(high, low uint) *Signal {
	if high < low {
		panic(fmt.Sprintf("Bits: high (%d) must be >= low (%d)", high, low))
	}

	if high >= s.bitWidth {
		panic(fmt.Sprintf("Bits: high (%d) out of range for a %d-bit signal", high, s.bitWidth))
	}

	return s.module.newSignal(high-low+1, &Bits{Source: s, High: high, Low: low})
}

// Bit slices out the single bit at index, equivalent to Bits(index, index).
func (s *Signal) Bit(index uint) *Signal {
	return s.Bits(index, index)
}

// Repeat concatenates count copies of s. Panics if count is zero or the
// resulting width would exceed 128 bits.
func (s *Signal) Repeat(count uint) *Signal {
	if count == 0 {
		panic("Repeat: count must be at least 1")
	}

	width := s.bitWidth * count
	checkWidth(s.module, "Repeat result", width)

	return s.module.newSignal(width, &Repeat{Source: s, Count: count})
}

// Concat places s in the high-order bits and rhs in the low-order bits,
// yielding a signal s.BitWidth() + rhs.BitWidth() bits wide. s and rhs must
// share a module.
func (s *Signal) Concat(rhs *Signal) *Signal {
	sameModule("Concat", s, rhs)

	width := s.bitWidth + rhs.bitWidth
	checkWidth(s.module, "Concat result", width)

	return s.module.newSignal(width, &Concat{Lhs: s, Rhs: rhs})
}

// Mux selects whenTrue if s is 1, whenFalse if s is 0. s must be exactly 1
// bit wide and whenTrue/whenFalse must share a module and bit width.
func (s *Signal) Mux(whenTrue, whenFalse *Signal) *Signal {
	requireWidth("Mux", s, 1)
	sameModule("Mux", s, whenTrue)
	sameModule("Mux", s, whenFalse)
	requireEqualWidth("Mux", whenTrue, whenFalse)

	return s.module.newSignal(whenTrue.bitWidth, &Mux{Cond: s, WhenTrue: whenTrue, WhenFalse: whenFalse})
}

// DriveNext sets a register's clocked next-state value. Panics if s is not a
// Reg, if Next has already been set, or if next does not match s's module
// and bit width.
func (s *Signal) DriveNext(next *Signal) {
	reg, ok := s.data.(*Reg)
	if !ok {
		panic("DriveNext: signal is not a register")
	}

	if reg.Next.HasValue() {
		panic(fmt.Sprintf("register %q: next value already driven", reg.Name))
	}

	sameModule(fmt.Sprintf("register %q", reg.Name), s, next)
	requireEqualWidth(fmt.Sprintf("register %q", reg.Name), s, next)

	reg.Next = util.Some(next)
}

// SetInitial gives a register an initial (reset) value. Panics if s is not a
// Reg, if an initial value has already been set, or if value does not fit in
// s's bit width.
func (s *Signal) SetInitial(value big.Int) {
	reg, ok := s.data.(*Reg)
	if !ok {
		panic("SetInitial: signal is not a register")
	}

	if reg.Initial.HasValue() {
		panic(fmt.Sprintf("register %q: initial value already set", reg.Name))
	}

	checkFitsWidth(s.module, fmt.Sprintf("register %q initial value", reg.Name), &value, s.bitWidth)

	v := *new(big.Int).Set(&value)
	reg.Initial = util.Some(v)
}
