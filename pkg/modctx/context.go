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

// Package modctx gives every instantiation path through the module
// hierarchy a single, stable identity (component E). Two walks that arrive
// at the same chain of instances always observe the same *Context, so the
// validator and gatherer can key their per-(context, signal) bookkeeping on
// pointer identity rather than reconstructing and comparing paths.
package modctx

import (
	"fmt"

	"github.com/hdlforge/hdlforge/pkg/graph"
	"github.com/hdlforge/hdlforge/pkg/util"
)

// Context is one node of the instantiation tree: either the root (the
// top-level module being elaborated) or a child reached by descending into
// one of its instances.
type Context struct {
	parent   *Context
	instance *graph.Instance
	module   *graph.Module
	children *util.HashMap[childKey, *Context]
}

// Root creates the context for the top-level module, from which every other
// Context in an elaboration is reached via Child.
func Root(module *graph.Module) *Context {
	return &Context{
		module:   module,
		children: util.NewHashMap[childKey, *Context](1),
	}
}

// Module returns the module this context is elaborating.
func (c *Context) Module() *graph.Module {
	return c.module
}

// Parent returns the enclosing context and true, or (nil, false) at the
// root.
func (c *Context) Parent() (*Context, bool) {
	if c.parent == nil {
		return nil, false
	}

	return c.parent, true
}

// Instance returns the instance this context was reached through and true,
// or (nil, false) at the root.
func (c *Context) Instance() (*graph.Instance, bool) {
	if c.instance == nil {
		return nil, false
	}

	return c.instance, true
}

// Child returns the context reached by descending into inst, which must be
// one of c's module's instances. Repeated calls with the same inst return
// the identical *Context (hash-consed), so pointer equality tells the
// validator and gatherer whether two walks reached the same place.
func (c *Context) Child(inst *graph.Instance) *Context {
	key := childKey{c, inst}

	if existing, ok := c.children.Get(key); ok {
		return existing
	}

	child := &Context{
		parent:   c,
		instance: inst,
		module:   inst.InstantiatedModule(),
		children: util.NewHashMap[childKey, *Context](1),
	}

	c.children.Insert(key, child)

	return child
}

// ResolveInput follows input, which must belong to c's module, to the
// signal driving it and the context that signal lives in. If input is
// driven in this instantiation it returns (driver, c.parent, true) — the
// driver is always a signal of the parent module, evaluated in the parent's
// context. It returns ok=false at the root, where no enclosing instance
// drives this module's inputs (the top-level module's inputs are driven by
// the external Emitter/harness, not by another signal in this graph).
func (c *Context) ResolveInput(input *graph.Signal) (*graph.Signal, *Context, bool) {
	if _, ok := input.Data().(*graph.Input); !ok {
		panic("ResolveInput: signal is not an Input")
	}

	if c.instance == nil {
		return nil, nil, false
	}

	in, _ := input.Data().(*graph.Input)

	if owned, ok := c.module.LookupInput(in.Name); !ok || owned != input {
		panic("ResolveInput: input does not belong to this context's module")
	}

	driver, ok := c.instance.DrivenInputs()[in.Name]
	if !ok {
		return nil, nil, false
	}

	return driver, c.parent, true
}

// childKey hash-conses a (parent, instance) pair by pointer identity.
type childKey struct {
	parent   *Context
	instance *graph.Instance
}

// Equals implements util.Hasher.
func (k childKey) Equals(other childKey) bool {
	return k.parent == other.parent && k.instance == other.instance
}

// Hash implements util.Hasher using pointer-address based hashing; distinct
// pointers may collide but the bucket equality check in util.HashMap
// resolves that correctly.
func (k childKey) Hash() uint64 {
	return ptrHash(k.parent)*31 + ptrHash(k.instance)
}

func ptrHash(p any) uint64 {
	s := fmt.Sprintf("%p", p)

	var h uint64 = 14695981039346656037

	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= 1099511628211
	}

	return h
}
