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

import "fmt"

// Binding is a single (local-name, expression) pair produced during
// lowering. The Emitter renders bindings in order as local variable
// declarations before the statement that consumes them.
type Binding struct {
	Name string
	Expr Expr
}

// AssignmentContext accumulates the ordered list of local bindings produced
// while lowering every sink that shares it (outputs, register next values and
// memory port expressions). Ordering is preserved so the Emitter can emit
// statements in dependency order; nothing here ever reorders or drops a
// binding once appended.
type AssignmentContext struct {
	bindings []Binding
	counter  uint
	prefix   string
}

// NewAssignmentContext creates an empty context. prefix namespaces the
// generated temp names (e.g. "t" yields "t0", "t1", ...); a single counter
// per context keeps every name it hands out distinct.
func NewAssignmentContext(prefix string) *AssignmentContext {
	return &AssignmentContext{prefix: prefix}
}

// Bindings returns the accumulated bindings in insertion order.
func (a *AssignmentContext) Bindings() []Binding {
	return a.bindings
}

// GenTemp appends a new binding for e under a fresh local name and returns a
// Ref to it. Every caller that needs to share one evaluation of e across
// multiple consumers (CSE-by-fan-out, or a multi-use helper value such as
// Repeat's hoisted source) must go through here rather than re-emitting e.
func (a *AssignmentContext) GenTemp(e Expr) *Ref {
	name := fmt.Sprintf("%s%d", a.prefix, a.counter)
	a.counter++
	a.bindings = append(a.bindings, Binding{Name: name, Expr: e})

	return &Ref{Name: name, Scope: Local, Type: e.ValueType()}
}
