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

import "testing"

func Test_FromBitWidth(t *testing.T) {
	cases := []struct {
		width uint
		want  ValueType
	}{
		{1, Bool},
		{2, U32},
		{32, U32},
		{33, U64},
		{64, U64},
		{65, U128},
		{128, U128},
	}

	for _, c := range cases {
		if got := FromBitWidth(c.width); got != c.want {
			t.Errorf("FromBitWidth(%d) = %v, want %v", c.width, got, c.want)
		}
	}
}

func Test_FromBitWidth_PanicsOnZero(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for zero bit width")
		}
	}()

	FromBitWidth(0)
}

func Test_FromBitWidth_PanicsAboveMax(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for bit width above 128")
		}
	}()

	FromBitWidth(129)
}

func Test_ValueType_BitWidth(t *testing.T) {
	cases := []struct {
		t    ValueType
		want uint
	}{
		{Bool, 1},
		{U32, 32},
		{I32, 32},
		{U64, 64},
		{I64, 64},
		{U128, 128},
		{I128, 128},
	}

	for _, c := range cases {
		if got := c.t.BitWidth(); got != c.want {
			t.Errorf("%v.BitWidth() = %d, want %d", c.t, got, c.want)
		}
	}
}

func Test_ValueType_IsSigned(t *testing.T) {
	signed := []ValueType{I32, I64, I128}
	unsigned := []ValueType{Bool, U32, U64, U128}

	for _, v := range signed {
		if !v.IsSigned() {
			t.Errorf("%v.IsSigned() = false, want true", v)
		}
	}

	for _, v := range unsigned {
		if v.IsSigned() {
			t.Errorf("%v.IsSigned() = true, want false", v)
		}
	}
}

func Test_ValueType_ToSigned(t *testing.T) {
	cases := []struct {
		t    ValueType
		want ValueType
	}{
		{U32, I32},
		{I32, I32},
		{U64, I64},
		{I64, I64},
		{U128, I128},
		{I128, I128},
	}

	for _, c := range cases {
		if got := c.t.ToSigned(); got != c.want {
			t.Errorf("%v.ToSigned() = %v, want %v", c.t, got, c.want)
		}
	}
}

func Test_ValueType_ToSigned_PanicsOnBool(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic converting Bool to signed")
		}
	}()

	Bool.ToSigned()
}

func Test_ValueType_String(t *testing.T) {
	cases := map[ValueType]string{
		Bool: "bool", U32: "u32", U64: "u64", U128: "u128", I32: "i32", I64: "i64", I128: "i128",
	}

	for vt, want := range cases {
		if got := vt.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", vt, got, want)
		}
	}
}
