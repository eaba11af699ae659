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

// Package validate checks a module hierarchy is well-formed before it is
// handed to the gatherer and signal compiler (component D): every register
// and instance input is driven, every memory has at least one read port and
// either initial contents or a write port, and no signal forms a
// combinational loop with itself.
package validate

import "fmt"

// StructuralError reports an undriven register/input or a malformed memory.
// Module and Detail identify where the problem was found; root is the
// top-level module validation was invoked on.
type StructuralError struct {
	Root, Module, Detail string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("cannot generate code for module %q: %s", e.Root, e.Detail)
}

// LoopError reports an output whose value transitively depends on itself
// through purely combinational paths.
type LoopError struct {
	Root, Module, Output string
}

func (e *LoopError) Error() string {
	return fmt.Sprintf(
		"cannot generate code for module %q because module %q contains an output called %q which forms a combinational loop with itself",
		e.Root, e.Module, e.Output)
}
